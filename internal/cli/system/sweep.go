package system

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/habitforge/internal/cli"
	"github.com/julianstephens/habitforge/internal/constants"
	"github.com/julianstephens/habitforge/internal/sweep"
)

type SweepCmd struct {
	Force bool `help:"Required. The sweep clears today's completions for daily habits."`
}

func (c *SweepCmd) Run(ctx *cli.Context) error {
	// Run by hand mid-day the sweep would wipe legitimate marks.
	if !c.Force {
		return errors.New("sweep removes today's completed marks for daily habits; re-run with --force to proceed")
	}

	ctx.PerformAutomaticBackup()
	res, err := newSweeper(ctx).RunWithRetry(context.Background())
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	fmt.Printf("Swept %s: checked %d daily habits, reset %d records\n", res.Date, res.Checked, res.Reset)
	return nil
}

func newSweeper(ctx *cli.Context) *sweep.Sweeper {
	return sweep.New(ctx.Store,
		sweep.WithClock(ctx.Now),
		sweep.WithRetry(ctx.Config.SweepMaxRetries, constants.SweepInitialInterval, constants.SweepMaxInterval),
	)
}
