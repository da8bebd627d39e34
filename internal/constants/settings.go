package constants

const (
	// Config keys
	SettingTimezone        = "timezone"
	SettingDatabase        = "database"
	SettingSweepSchedule   = "sweep_schedule"
	SettingSweepMaxRetries = "sweep_max_retries"
	SettingDigestSchedule  = "digest_schedule"
	SettingMetricsAddr     = "metrics_addr"
	SettingNotifier        = "notifier"

	// Default config values
	DefaultTimezone    = "Local" // Use system local timezone by default
	DefaultNotifier    = NotifierLog
	DefaultMetricsAddr = ""

	// DefaultDigestSchedule sends the open-habits digest at 20:00
	DefaultDigestSchedule = "0 0 20 * * *"
	// ScheduleOff disables an optional periodic job
	ScheduleOff = "off"

	// Notifier kinds
	NotifierLog  = "log"
	NotifierTray = "tray"
)
