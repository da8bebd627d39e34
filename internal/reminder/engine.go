// Package reminder schedules one-shot habit reminders and handles them when
// they fire. Every failure is logged and absorbed; callers never see one.
package reminder

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/julianstephens/habitforge/internal/constants"
	"github.com/julianstephens/habitforge/internal/due"
	apperrors "github.com/julianstephens/habitforge/internal/errors"
	"github.com/julianstephens/habitforge/internal/logger"
	"github.com/julianstephens/habitforge/internal/metrics"
	"github.com/julianstephens/habitforge/internal/models"
	"github.com/julianstephens/habitforge/internal/notifier"
	"github.com/julianstephens/habitforge/internal/utils"
)

// TaskScheduler runs a payload once after a delay. CancelByTag must not
// return until no task carrying tag can still fire.
type TaskScheduler interface {
	ScheduleOneShot(delay time.Duration, payload string, tag string) (string, error)
	CancelByTag(tag string) int
}

type HabitReader interface {
	GetHabit(ctx context.Context, id int64) (models.Habit, error)
	GetAllHabits(ctx context.Context, includeArchived bool) ([]models.Habit, error)
}

type CompletionReader interface {
	GetCompletion(ctx context.Context, habitID int64, date string) (models.CompletionRecord, error)
}

type Engine struct {
	habits      HabitReader
	completions CompletionReader
	scheduler   TaskScheduler
	notifier    notifier.Notifier
	now         func() time.Time

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
	// derived holds the definition each habit's pending reminder was
	// computed from, keyed by habit id.
	derived map[int64]string
}

type Option func(*Engine)

// WithClock overrides the engine's notion of the current instant. The clock's
// location decides what "today" means.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(habits HabitReader, completions CompletionReader, scheduler TaskScheduler, n notifier.Notifier, opts ...Option) *Engine {
	e := &Engine{
		habits:      habits,
		completions: completions,
		scheduler:   scheduler,
		notifier:    n,
		now:         time.Now,
		locks:       make(map[int64]*sync.Mutex),
		derived:     make(map[int64]string),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Tag is the scheduler tag shared by every reminder of one habit.
func Tag(habitID int64) string {
	return constants.ReminderTagPrefix + strconv.FormatInt(habitID, 10)
}

func (e *Engine) lock(habitID int64) func() {
	e.mu.Lock()
	l, ok := e.locks[habitID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[habitID] = l
	}
	e.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func fingerprint(h models.Habit) string {
	return strings.TrimSpace(h.ReminderTime) + "|" + strings.TrimSpace(h.StartDate)
}

func (e *Engine) derivedFrom(habitID int64) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fp, ok := e.derived[habitID]
	return fp, ok
}

func (e *Engine) record(h models.Habit) {
	e.mu.Lock()
	e.derived[h.ID] = fingerprint(h)
	e.mu.Unlock()
}

func (e *Engine) forget(habitID int64) {
	e.mu.Lock()
	delete(e.derived, habitID)
	e.mu.Unlock()
}

// derivable reports whether h's reminder time and start date parse. A habit
// that fails leaves whatever is already scheduled for it untouched.
func (e *Engine) derivable(h models.Habit) bool {
	_, _, err := ComputeFireTime(h.ReminderTime, h.StartDate, e.now())
	if err == nil {
		return true
	}
	reason := "invalid_time"
	if apperrors.Is(err, apperrors.ErrInvalidDate) {
		reason = "invalid_date"
	}
	metrics.RemindersSkipped.WithLabelValues(reason).Inc()
	logger.Warn("Reminder not scheduled", "habit_id", h.ID, "reminder_time", h.ReminderTime, "start_date", h.StartDate, "error", err)
	return false
}

// rederive must be called with the habit's lock held.
func (e *Engine) rederive(ctx context.Context, h models.Habit) bool {
	e.cancel(h.ID)
	e.record(h)
	return e.schedule(ctx, h)
}

// OnCreate schedules the first reminder of a new habit.
func (e *Engine) OnCreate(ctx context.Context, h models.Habit) {
	if !h.HasReminder() || h.Archived {
		metrics.RemindersSkipped.WithLabelValues("no_time").Inc()
		return
	}

	unlock := e.lock(h.ID)
	defer unlock()
	if e.derivable(h) {
		e.record(h)
		e.schedule(ctx, h)
	}
}

// OnUpdate replaces the habit's pending reminder. Without a reminder time, or
// with one that does not parse, the existing schedule is left alone; an
// archived habit only has it cancelled.
func (e *Engine) OnUpdate(ctx context.Context, h models.Habit) {
	unlock := e.lock(h.ID)
	defer unlock()

	if h.Archived {
		e.cancel(h.ID)
		e.forget(h.ID)
		return
	}
	if !h.HasReminder() {
		metrics.RemindersSkipped.WithLabelValues("no_time").Inc()
		return
	}
	if e.derivable(h) {
		e.rederive(ctx, h)
	}
}

// OnDelete cancels every pending reminder of the habit.
func (e *Engine) OnDelete(_ context.Context, habitID int64) {
	unlock := e.lock(habitID)
	defer unlock()
	e.cancel(habitID)
	e.forget(habitID)
}

// Resync re-derives the pending reminder of every active habit. It is run at
// process start since scheduled tasks do not survive a restart.
func (e *Engine) Resync(ctx context.Context) (int, error) {
	habits, err := e.habits.GetAllHabits(ctx, false)
	if err != nil {
		return 0, fmt.Errorf("failed to load habits: %w", err)
	}

	scheduled := 0
	for _, h := range habits {
		if !h.HasReminder() {
			continue
		}
		unlock := e.lock(h.ID)
		if e.derivable(h) && e.rederive(ctx, h) {
			scheduled++
		}
		unlock()
	}

	logger.Info("Reminders resynced", "habits", len(habits), "scheduled", scheduled)
	return scheduled, nil
}

// Refresh picks up edits made outside this process. Only habits whose
// reminder time or start date changed since they were last derived are
// rescheduled, so a reminder that already fired is not scheduled again.
// Habits that were archived or deleted have their reminder cancelled.
func (e *Engine) Refresh(ctx context.Context) (int, error) {
	habits, err := e.habits.GetAllHabits(ctx, false)
	if err != nil {
		return 0, fmt.Errorf("failed to load habits: %w", err)
	}

	active := make(map[int64]bool, len(habits))
	changed := 0
	for _, h := range habits {
		active[h.ID] = true
		if !h.HasReminder() {
			continue
		}
		if fp, ok := e.derivedFrom(h.ID); ok && fp == fingerprint(h) {
			continue
		}
		unlock := e.lock(h.ID)
		if e.derivable(h) {
			e.rederive(ctx, h)
			changed++
		}
		unlock()
	}

	e.mu.Lock()
	var gone []int64
	for id := range e.derived {
		if !active[id] {
			gone = append(gone, id)
		}
	}
	e.mu.Unlock()

	for _, id := range gone {
		unlock := e.lock(id)
		e.cancel(id)
		e.forget(id)
		unlock()
		changed++
	}

	if changed > 0 {
		logger.Info("Reminders refreshed", "changed", changed)
	}
	return changed, nil
}

func (e *Engine) cancel(habitID int64) {
	n := e.scheduler.CancelByTag(Tag(habitID))
	if n > 0 {
		metrics.RemindersCancelled.Add(float64(n))
		logger.Debug("Cancelled pending reminders", "habit_id", habitID, "count", n)
	}
}

func (e *Engine) schedule(_ context.Context, h models.Habit) bool {
	now := e.now()
	log := logger.With("habit_id", h.ID, "reminder_time", h.ReminderTime, "start_date", h.StartDate)

	fireAt, ok, err := ComputeFireTime(h.ReminderTime, h.StartDate, now)
	if err != nil {
		log.Warn("Reminder not scheduled", "error", err)
		return false
	}
	if !ok {
		reason := "elapsed"
		if h.StartDate < utils.FormatDate(now) {
			reason = "past_start"
		}
		metrics.RemindersSkipped.WithLabelValues(reason).Inc()
		log.Debug("No reminder to schedule", "reason", reason)
		return false
	}

	taskID, err := e.scheduler.ScheduleOneShot(fireAt.Sub(now), strconv.FormatInt(h.ID, 10), Tag(h.ID))
	if err != nil {
		metrics.RemindersSkipped.WithLabelValues("scheduler_error").Inc()
		log.Warn("Reminder not scheduled", "error", err)
		return false
	}

	metrics.RemindersScheduled.Inc()
	log.Info("Reminder scheduled", "task_id", taskID, "fire_at", fireAt.Format(time.RFC3339))
	return true
}

// HandleTask is the scheduler callback. The payload is the habit id.
func (e *Engine) HandleTask(payload string) {
	id, err := strconv.ParseInt(strings.TrimSpace(payload), 10, 64)
	if err != nil {
		logger.Warn("Ignoring reminder task with bad payload", "payload", payload)
		return
	}
	if err := e.Fire(context.Background(), id); err != nil {
		logger.Error("Reminder callback failed", "habit_id", id, "error", err)
	}
}

// Fire re-reads the habit and today's completion before notifying, so a habit
// that was completed, archived or deleted after scheduling stays quiet. A task
// derived from a reminder time or start date the habit no longer has is
// dropped and the reminder is derived again from the current definition.
func (e *Engine) Fire(ctx context.Context, habitID int64) error {
	unlock := e.lock(habitID)
	defer unlock()

	h, err := e.habits.GetHabit(ctx, habitID)
	if apperrors.Is(err, apperrors.ErrNotFound) {
		metrics.RemindersFired.WithLabelValues("gone").Inc()
		return nil
	}
	if err != nil {
		metrics.RemindersFired.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to load habit: %w", err)
	}
	if h.Archived || !h.HasReminder() {
		metrics.RemindersFired.WithLabelValues("gone").Inc()
		return nil
	}
	if fp, ok := e.derivedFrom(habitID); ok && fp != fingerprint(h) && e.derivable(h) {
		metrics.RemindersFired.WithLabelValues("stale").Inc()
		logger.Info("Dropping reminder derived from an old definition", "habit_id", habitID, "reminder_time", h.ReminderTime, "start_date", h.StartDate)
		e.rederive(ctx, h)
		return nil
	}

	today := utils.FormatDate(e.now())
	rec, err := e.completions.GetCompletion(ctx, habitID, today)
	switch {
	case err == nil && rec.IsCompleted:
		metrics.RemindersFired.WithLabelValues("completed").Inc()
		logger.Debug("Habit already completed, reminder suppressed", "habit_id", habitID, "date", today)
		return nil
	case err != nil && !apperrors.Is(err, apperrors.ErrNotFound):
		metrics.RemindersFired.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to check completion: %w", err)
	}

	msg := notifier.Message{HabitID: h.ID, Title: h.Name, Body: "not done yet today"}
	if err := e.notifier.Notify(ctx, msg); err != nil {
		metrics.RemindersFired.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to notify: %w", err)
	}
	metrics.RemindersFired.WithLabelValues("notified").Inc()
	return nil
}

// Digest sends one message summarising how many habits due today are still
// open. Nothing is sent when every due habit is done.
func (e *Engine) Digest(ctx context.Context) (int, error) {
	today := utils.FormatDate(e.now())
	dueToday, err := due.NewSelector(e.habits).DueOn(ctx, today)
	if err != nil {
		return 0, err
	}

	open := 0
	for _, h := range dueToday {
		rec, err := e.completions.GetCompletion(ctx, h.ID, today)
		if err == nil && rec.IsCompleted {
			continue
		}
		if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
			return 0, fmt.Errorf("failed to check completion: %w", err)
		}
		open++
	}

	if open == 0 {
		return 0, nil
	}

	msg := notifier.Message{Title: "Habits", Body: fmt.Sprintf("%d of %d due today still open", open, len(dueToday))}
	if err := e.notifier.Notify(ctx, msg); err != nil {
		return open, fmt.Errorf("failed to notify: %w", err)
	}
	return open, nil
}
