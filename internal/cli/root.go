package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitforge/internal/backup"
	"github.com/julianstephens/habitforge/internal/config"
	"github.com/julianstephens/habitforge/internal/constants"
	"github.com/julianstephens/habitforge/internal/habits"
	"github.com/julianstephens/habitforge/internal/keyring"
	"github.com/julianstephens/habitforge/internal/logger"
	"github.com/julianstephens/habitforge/internal/models"
	"github.com/julianstephens/habitforge/internal/storage"
	"github.com/julianstephens/habitforge/internal/storage/postgres"
	"github.com/julianstephens/habitforge/internal/storage/sqlite"
	"github.com/julianstephens/habitforge/internal/utils"
)

type Context struct {
	Store  storage.Provider
	Config config.Config
	// ConfigPath is where Config was read from, or would be.
	ConfigPath string
	// Clock returns the current instant; tests replace it.
	Clock func() time.Time
}

// Now returns the current instant in the configured timezone.
func (c *Context) Now() time.Time {
	clock := c.Clock
	if clock == nil {
		clock = time.Now
	}
	loc, err := c.Config.Location()
	if err != nil {
		loc = time.Local
	}
	return clock().In(loc)
}

// Today returns the current date in the configured timezone.
func (c *Context) Today() string {
	return utils.FormatDate(c.Now())
}

// Habits builds a habit service over the context's store. One-off commands
// pass nil hooks; serve passes its reminder engine.
func (c *Context) Habits(hooks habits.Hooks) *habits.Service {
	return habits.NewService(c.Store, hooks, habits.WithClock(c.Now))
}

// PerformAutomaticBackup snapshots a SQLite database before a destructive
// command. Failures are logged and do not stop the command.
func (c *Context) PerformAutomaticBackup() {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return
	}
	snap, err := backup.NewManager(c.Store.GetConfigPath()).Create(context.Background())
	if err != nil {
		logger.Warn("Automatic backup failed", "error", err)
		return
	}
	logger.Debug("Automatic backup created", "path", snap.Path)
}

// IsPostgres reports whether database names a PostgreSQL connection.
func IsPostgres(database string) bool {
	return strings.HasPrefix(database, "postgres://") ||
		strings.HasPrefix(database, "postgresql://") ||
		strings.Contains(database, "host=")
}

// NewProvider picks the storage backend for database. The literal value
// "keyring" reads a PostgreSQL connection string from the OS keyring, which
// may carry a password; connection strings given anywhere else may not.
func NewProvider(database string) (storage.Provider, error) {
	if database == constants.KeyringDatabase {
		connStr, err := keyring.GetConnectionString()
		if err != nil {
			if errors.Is(err, keyring.ErrNotFound) {
				return nil, fmt.Errorf("no connection string found in keyring. Use '%s keyring set' to store one", constants.AppName)
			}
			return nil, err
		}
		if _, err := postgres.ValidateConnString(connStr); err != nil && !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return nil, err
		}
		return postgres.New(connStr), nil
	}

	if IsPostgres(database) {
		if _, err := postgres.ValidateConnString(database); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("PostgreSQL connection strings with embedded credentials are not allowed; store it with '%s keyring set' and use database = %q, or use .pgpass", constants.AppName, constants.KeyringDatabase)
			}
			return nil, err
		}
		return postgres.New(database), nil
	}

	path, err := config.ExpandHome(database)
	if err != nil {
		return nil, err
	}
	return sqlite.NewStore(path), nil
}

// ParseWeekdays parses a comma-separated list of weekdays into three-letter codes.
func ParseWeekdays(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	dayMap := map[string]string{
		"sun": "SUN", "sunday": "SUN",
		"mon": "MON", "monday": "MON",
		"tue": "TUE", "tuesday": "TUE",
		"wed": "WED", "wednesday": "WED",
		"thu": "THU", "thursday": "THU",
		"fri": "FRI", "friday": "FRI",
		"sat": "SAT", "saturday": "SAT",
	}

	var days []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		code, ok := dayMap[part]
		if !ok {
			return nil, fmt.Errorf("invalid weekday: %s", part)
		}
		days = append(days, code)
	}
	return days, nil
}

// FormatFrequency formats a habit's frequency for display.
func FormatFrequency(h models.Habit) string {
	switch h.Frequency {
	case models.FrequencyDaily:
		return "daily"
	case models.FrequencyWeekly:
		if len(h.DaysOfWeek) == 0 {
			return "weekly (no days)"
		}
		return "weekly on " + strings.Join(h.DaysOfWeek, ",")
	default:
		return strings.ToLower(string(h.Frequency))
	}
}

var (
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	missedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	unknownStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	// HeaderStyle is used for section titles.
	HeaderStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	// MutedStyle renders secondary details.
	MutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// StatusMarker renders a one-character marker for a day status.
func StatusMarker(s models.DayStatus) string {
	switch s {
	case models.DayDone:
		return doneStyle.Render("✓")
	case models.DayMissed:
		return missedStyle.Render("✗")
	default:
		return unknownStyle.Render("·")
	}
}
