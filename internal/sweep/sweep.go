// Package sweep is the midnight reconciliation job for daily habits.
package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/robfig/cron/v3"

	"github.com/julianstephens/habitforge/internal/constants"
	apperrors "github.com/julianstephens/habitforge/internal/errors"
	"github.com/julianstephens/habitforge/internal/logger"
	"github.com/julianstephens/habitforge/internal/metrics"
	"github.com/julianstephens/habitforge/internal/models"
	"github.com/julianstephens/habitforge/internal/utils"
)

type Store interface {
	GetAllHabits(ctx context.Context, includeArchived bool) ([]models.Habit, error)
	GetCompletionsForDate(ctx context.Context, date string) ([]models.CompletionRecord, error)
	DeleteCompletion(ctx context.Context, habitID int64, date string) error
}

type Result struct {
	Date    string
	Checked int
	Reset   int
}

type Sweeper struct {
	store           Store
	now             func() time.Time
	maxTries        uint
	initialInterval time.Duration
	maxInterval     time.Duration
}

type Option func(*Sweeper)

func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) { s.now = now }
}

// WithRetry sets the attempt budget and backoff bounds for RunWithRetry.
func WithRetry(maxTries int, initial, maxInterval time.Duration) Option {
	return func(s *Sweeper) {
		if maxTries > 0 {
			s.maxTries = uint(maxTries)
		}
		s.initialInterval = initial
		s.maxInterval = maxInterval
	}
}

func New(store Store, opts ...Option) *Sweeper {
	s := &Sweeper{
		store:           store,
		now:             time.Now,
		maxTries:        constants.DefaultSweepMaxRetries,
		initialInterval: constants.SweepInitialInterval,
		maxInterval:     constants.SweepMaxInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run makes one pass: every completed record dated today that belongs to an
// active daily habit is removed. Store failures come back wrapped as
// errors.ErrTransient. A second pass over the same data removes nothing.
func (s *Sweeper) Run(ctx context.Context) (Result, error) {
	res := Result{Date: utils.FormatDate(s.now())}

	habits, err := s.store.GetAllHabits(ctx, false)
	if err != nil {
		return res, apperrors.Transient(fmt.Errorf("failed to load habits: %w", err))
	}

	daily := make(map[int64]bool, len(habits))
	for _, h := range habits {
		if h.Frequency == models.FrequencyDaily {
			daily[h.ID] = true
		}
	}

	records, err := s.store.GetCompletionsForDate(ctx, res.Date)
	if err != nil {
		return res, apperrors.Transient(fmt.Errorf("failed to load completions: %w", err))
	}

	for _, rec := range records {
		if !daily[rec.HabitID] {
			continue
		}
		res.Checked++
		if !rec.IsCompleted {
			continue
		}
		if err := s.store.DeleteCompletion(ctx, rec.HabitID, rec.Date); err != nil {
			return res, apperrors.Transient(fmt.Errorf("failed to reset habit %d: %w", rec.HabitID, err))
		}
		res.Reset++
		metrics.SweepReset.Inc()
		logger.Info("Reset stray completion", "habit_id", rec.HabitID, "date", rec.Date)
	}

	return res, nil
}

// RunWithRetry repeats Run with exponential backoff while it fails
// transiently. Any other error stops the retries at once.
func (s *Sweeper) RunWithRetry(ctx context.Context) (Result, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.initialInterval
	b.MaxInterval = s.maxInterval

	attempt := 0
	res, err := backoff.Retry(ctx, func() (Result, error) {
		attempt++
		res, err := s.Run(ctx)
		if err == nil {
			return res, nil
		}
		if !apperrors.Is(err, apperrors.ErrTransient) {
			return res, backoff.Permanent(err)
		}
		return res, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(s.maxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			metrics.SweepRuns.WithLabelValues("retry").Inc()
			logger.Warn("Daily sweep failed, retrying", "attempt", attempt, "next", next, "error", err)
		}),
	)
	if err != nil {
		metrics.SweepRuns.WithLabelValues("failed").Inc()
		logger.Error("Daily sweep gave up", "attempts", attempt, "error", err)
		return res, err
	}

	metrics.SweepRuns.WithLabelValues("success").Inc()
	logger.Info("Daily sweep complete", "date", res.Date, "checked", res.Checked, "reset", res.Reset, "attempts", attempt)
	return res, nil
}

// Register adds the sweep to c under spec.
func (s *Sweeper) Register(c *cron.Cron, spec string) (cron.EntryID, error) {
	id, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
		defer cancel()
		_, _ = s.RunWithRetry(ctx)
	})
	if err != nil {
		return 0, fmt.Errorf("invalid sweep schedule %q: %w", spec, err)
	}
	return id, nil
}
