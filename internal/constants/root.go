package constants

import "time"

const (
	AppName            = "habitforge"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/habitforge/habitforge.toml"
	DefaultDBPath      = "~/.config/habitforge/habitforge.db"
	Version            = "v0.3.0"

	// KeyringDatabase as the database setting reads the PostgreSQL
	// connection string from the OS keyring.
	KeyringDatabase = "keyring"

	// Notify constants
	NotifierLockfileName   = "habitforge-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.habitforge"

	// ReminderTagPrefix prefixes the scheduler tag that groups every pending
	// reminder belonging to one habit.
	ReminderTagPrefix = "habit_"

	// RefreshSchedule is how often serve looks for habits edited by other
	// commands.
	RefreshSchedule = "@every 5m"

	// Sweep constants
	DefaultSweepSchedule   = "0 0 0 * * *"
	DefaultSweepMaxRetries = 5
	SweepInitialInterval   = 500 * time.Millisecond
	SweepMaxInterval       = 30 * time.Second

	// Stats constants
	DefaultRateWindowDays = 30
	DefaultHistoryDays    = 14

	// Journal constants
	MinMood     = 1
	MaxMood     = 5
	DefaultMood = 3
)
