package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/habitforge/internal/cli"
	"github.com/julianstephens/habitforge/internal/cli/habits"
	"github.com/julianstephens/habitforge/internal/cli/journal"
	"github.com/julianstephens/habitforge/internal/cli/system"
	"github.com/julianstephens/habitforge/internal/config"
	"github.com/julianstephens/habitforge/internal/constants"
	apperrors "github.com/julianstephens/habitforge/internal/errors"
	"github.com/julianstephens/habitforge/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." default:"${config_path}"`
	DB      string `name:"db" help:"SQLite path, PostgreSQL connection string without password, or \"keyring\". Overrides the config file."`
	Debug   bool   `help:"Enable debug logging to stderr."`

	Init    system.InitCmd     `cmd:"" help:"Initialize habitforge storage."`
	Habit   habits.HabitCmd    `cmd:"" help:"Manage habits."`
	Mark    habits.MarkCmd     `cmd:"" help:"Mark a habit done for a day."`
	Miss    habits.MissCmd     `cmd:"" help:"Mark a habit missed for a day."`
	Undo    habits.UndoCmd     `cmd:"" help:"Clear a habit's mark for a day."`
	Today   habits.TodayCmd    `cmd:"" help:"Show the habits due today." default:"1"`
	Streak  habits.StreakCmd   `cmd:"" help:"Show a habit's current streak."`
	Stats   habits.StatsCmd    `cmd:"" help:"Show completion statistics."`
	Journal journal.JournalCmd `cmd:"" help:"Write and read journal entries."`
	Quote   journal.QuoteCmd   `cmd:"" help:"Show the quote of the day."`
	Sweep   system.SweepCmd    `cmd:"" help:"Run the daily reset sweep once."`
	Serve   system.ServeCmd    `cmd:"" help:"Run the reminder scheduler and periodic jobs."`
	Backup  system.BackupCmd   `cmd:"" help:"Manage SQLite database snapshots."`
	Keyring system.KeyringCmd  `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
	Doctor  system.DoctorCmd   `cmd:"" help:"Run health checks on the configuration and database."`
}

func options() []kong.Option {
	return []kong.Option{
		kong.Name(constants.AppName),
		kong.Description("Habit tracker with streaks and reminders"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":      constants.Version,
			"config_path":  constants.DefaultConfigPath,
			"default_mood": strconv.Itoa(constants.DefaultMood),
			"history_days": strconv.Itoa(constants.DefaultHistoryDays),
		},
	}
}

func main() {
	ctx := kong.Parse(&CLI, options()...)

	command := ctx.Command()

	configPath, err := config.ExpandHome(CLI.Config)
	if err != nil {
		apperrors.Fatal(err)
	}
	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: filepath.Dir(configPath),
		Stderr:    strings.HasPrefix(command, "serve"),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		apperrors.Fatal(err)
	}
	if CLI.DB != "" {
		cfg.Database = CLI.DB
	}

	appCtx := &cli.Context{Config: cfg, ConfigPath: configPath}

	// Keyring commands manage the credentials the store would need.
	if !strings.HasPrefix(command, "keyring") {
		store, err := cli.NewProvider(cfg.Database)
		if err != nil {
			apperrors.Fatal(err)
		}
		appCtx.Store = store

		// Doctor reports an unreachable database instead of exiting on it.
		if !strings.HasPrefix(command, "init") && !strings.HasPrefix(command, "doctor") {
			if err := store.Load(); err != nil {
				apperrors.Fatal(err)
			}
		}
		defer store.Close()
	}

	if err := ctx.Run(appCtx); err != nil {
		apperrors.Fatal(err)
	}
}
