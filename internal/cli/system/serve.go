package system

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julianstephens/habitforge/internal/cli"
	"github.com/julianstephens/habitforge/internal/constants"
	"github.com/julianstephens/habitforge/internal/logger"
	"github.com/julianstephens/habitforge/internal/metrics"
	"github.com/julianstephens/habitforge/internal/notifier"
	"github.com/julianstephens/habitforge/internal/reminder"
	"github.com/julianstephens/habitforge/internal/scheduler"
)

type ServeCmd struct {
	MetricsAddr string `help:"Address for the /metrics endpoint. Overrides metrics_addr from the config file."`
}

// Daemon is the long-running part of serve: the scheduler with the
// reminder engine, sweep, digest and resync jobs registered on it.
type Daemon struct {
	Scheduler *scheduler.Scheduler
	Engine    *reminder.Engine
}

// NewDaemon wires the jobs for ctx without starting anything.
func NewDaemon(ctx *cli.Context, n notifier.Notifier) (*Daemon, error) {
	loc, err := ctx.Config.Location()
	if err != nil {
		return nil, err
	}

	sched := scheduler.New(loc)
	engine := reminder.NewEngine(ctx.Store, ctx.Store, sched, n, reminder.WithClock(ctx.Now))
	sched.Handle(engine.HandleTask)

	if _, err := newSweeper(ctx).Register(sched.Cron(), ctx.Config.SweepSchedule); err != nil {
		return nil, err
	}

	if ctx.Config.DigestEnabled() {
		_, err := sched.Cron().AddFunc(ctx.Config.DigestSchedule, func() {
			open, err := engine.Digest(context.Background())
			if err != nil {
				logger.Warn("Digest failed", "error", err)
				return
			}
			logger.Debug("Digest sent", "open", open)
		})
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", constants.SettingDigestSchedule, ctx.Config.DigestSchedule, err)
		}
	}

	if _, err := sched.Cron().AddFunc(constants.RefreshSchedule, func() {
		if _, err := engine.Refresh(context.Background()); err != nil {
			logger.Warn("Reminder refresh failed", "error", err)
		}
	}); err != nil {
		return nil, err
	}

	return &Daemon{Scheduler: sched, Engine: engine}, nil
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	n, err := notifier.New(ctx.Config.Notifier)
	if err != nil {
		return err
	}
	d, err := NewDaemon(ctx, n)
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d.Scheduler.Start()
	defer d.Scheduler.Stop()

	// Scheduled tasks do not survive a restart.
	if _, err := d.Engine.Resync(runCtx); err != nil {
		logger.Warn("Initial reminder resync failed", "error", err)
	}

	addr := c.MetricsAddr
	if addr == "" {
		addr = ctx.Config.MetricsAddr
	}
	var srv *http.Server
	if addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		srv = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server stopped", "addr", addr, "error", err)
			}
		}()
		logger.Info("Serving metrics", "addr", addr)
	}

	logger.Info("Habitforge running", "database", ctx.Store.GetConfigPath(), "sweep", ctx.Config.SweepSchedule)
	fmt.Printf("%s is running. Press Ctrl+C to stop.\n", constants.AppName)

	<-runCtx.Done()
	logger.Info("Shutting down")

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Metrics server shutdown failed", "error", err)
		}
	}
	return nil
}
