package system

import (
	"context"
	"fmt"

	"github.com/julianstephens/habitforge/internal/backup"
	"github.com/julianstephens/habitforge/internal/cli"
	"github.com/julianstephens/habitforge/internal/config"
	habitsvc "github.com/julianstephens/habitforge/internal/habits"
	"github.com/julianstephens/habitforge/internal/storage/sqlite"
)

type DoctorCmd struct{}

type check struct {
	name string
	// needsDB checks are skipped when the database cannot be loaded.
	needsDB bool
	// warnOnly checks never fail the command.
	warnOnly bool
	opensDB  bool
	run      func(*cli.Context) error
}

var checks = []check{
	{name: "Configuration", run: checkConfig},
	{name: "Database reachable", opensDB: true, run: checkDBReachable},
	{name: "Habit integrity", needsDB: true, run: checkHabitsIntegrity},
	{name: "Backups present", needsDB: true, warnOnly: true, run: checkBackupsPresent},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	dbReachable := false

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			fmt.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}

		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
			if c.opensDB {
				dbReachable = true
			}
		case c.warnOnly:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	fmt.Println()
	if hasError {
		return fmt.Errorf("diagnostics failed")
	}
	fmt.Println("All checks passed.")
	return nil
}

func checkConfig(ctx *cli.Context) error {
	if err := ctx.Config.Validate(); err != nil {
		return err
	}
	if _, err := config.ParseSchedule(ctx.Config.SweepSchedule); err != nil {
		return fmt.Errorf("sweep schedule: %w", err)
	}
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	return ctx.Store.Load()
}

func checkHabitsIntegrity(ctx *cli.Context) error {
	habits, err := ctx.Store.GetAllHabits(context.Background(), true)
	if err != nil {
		return err
	}

	svc := ctx.Habits(nil)
	var bad int
	for _, h := range habits {
		if err := svc.Validate(h); err != nil {
			fmt.Printf("   habit %d (%s): %v\n", h.ID, h.Name, err)
			bad++
			continue
		}
		if h.HasInvertedRange() {
			fmt.Printf("   habit %d (%s): end date %s precedes start date %s, never due\n", h.ID, h.Name, h.EndDate, h.StartDate)
		}
		if err := habitsvc.ReminderError(h); err != nil {
			fmt.Printf("   habit %d (%s): reminder %q is not HH:MM, no reminder will fire\n", h.ID, h.Name, h.ReminderTime)
		}
	}
	if bad > 0 {
		return fmt.Errorf("%d of %d habits are invalid", bad, len(habits))
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return nil
	}
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	snaps, err := mgr.List()
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		return fmt.Errorf("no backups found in %s", mgr.Dir())
	}
	return nil
}
