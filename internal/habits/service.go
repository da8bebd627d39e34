// Package habits is the write path for habit definitions and completion
// marks. Every mutation is persisted first and then handed to the reminder
// hooks, whose failures are theirs to absorb.
package habits

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/julianstephens/habitforge/internal/due"
	apperrors "github.com/julianstephens/habitforge/internal/errors"
	"github.com/julianstephens/habitforge/internal/logger"
	"github.com/julianstephens/habitforge/internal/models"
	"github.com/julianstephens/habitforge/internal/storage"
	"github.com/julianstephens/habitforge/internal/streak"
	"github.com/julianstephens/habitforge/internal/utils"
)

// Store is the persistence the service needs.
type Store interface {
	storage.HabitStore
	storage.CompletionLog
}

// Hooks receives habit lifecycle events after they are persisted.
// *reminder.Engine satisfies it.
type Hooks interface {
	OnCreate(ctx context.Context, h models.Habit)
	OnUpdate(ctx context.Context, h models.Habit)
	OnDelete(ctx context.Context, habitID int64)
}

// NopHooks ignores every event. One-off CLI commands use it since their
// scheduler would not outlive the process.
type NopHooks struct{}

func (NopHooks) OnCreate(context.Context, models.Habit) {}
func (NopHooks) OnUpdate(context.Context, models.Habit) {}
func (NopHooks) OnDelete(context.Context, int64)        {}

// Input is the user-editable part of a habit. ReminderTime is stored as
// given; a malformed value only means no reminder gets scheduled.
type Input struct {
	Name         string   `validate:"required,max=100"`
	Description  string   `validate:"max=500"`
	Frequency    string   `validate:"required,oneof=DAILY WEEKLY"`
	ReminderTime string
	StartDate    string   `validate:"required,datetime=2006-01-02"`
	EndDate      string   `validate:"omitempty,datetime=2006-01-02"`
	DaysOfWeek   []string `validate:"omitempty,dive,oneof=SUN MON TUE WED THU FRI SAT"`
}

// InputFrom returns the editable fields of h, for partial edits.
func InputFrom(h models.Habit) Input {
	return Input{
		Name:         h.Name,
		Description:  h.Description,
		Frequency:    string(h.Frequency),
		ReminderTime: h.ReminderTime,
		StartDate:    h.StartDate,
		EndDate:      h.EndDate,
		DaysOfWeek:   append([]string(nil), h.DaysOfWeek...),
	}
}

func (in Input) normalize() Input {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Frequency = strings.ToUpper(strings.TrimSpace(in.Frequency))
	in.ReminderTime = strings.TrimSpace(in.ReminderTime)
	in.StartDate = strings.TrimSpace(in.StartDate)
	in.EndDate = strings.TrimSpace(in.EndDate)
	days := make([]string, 0, len(in.DaysOfWeek))
	for _, d := range in.DaysOfWeek {
		if d = strings.ToUpper(strings.TrimSpace(d)); d != "" {
			days = append(days, d)
		}
	}
	in.DaysOfWeek = days
	return in
}

func (in Input) apply(h *models.Habit) {
	h.Name = in.Name
	h.Description = in.Description
	h.Frequency = models.Frequency(in.Frequency)
	h.ReminderTime = in.ReminderTime
	h.StartDate = in.StartDate
	h.EndDate = in.EndDate
	h.DaysOfWeek = nil
	if h.Frequency == models.FrequencyWeekly {
		h.DaysOfWeek = in.DaysOfWeek
	}
}

type Service struct {
	store    Store
	hooks    Hooks
	streaks  *streak.Calculator
	validate *validator.Validate
	now      func() time.Time
}

type Option func(*Service)

// WithClock sets the clock used for "today". Its location matters.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(store Store, hooks Hooks, opts ...Option) *Service {
	if hooks == nil {
		hooks = NopHooks{}
	}
	s := &Service{
		store:    store,
		hooks:    hooks,
		streaks:  streak.NewCalculator(store),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the current date in the service's clock location.
func (s *Service) Today() string {
	return utils.FormatDate(s.now())
}

func (s *Service) check(in Input) (Input, error) {
	in = in.normalize()
	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return in, fmt.Errorf("%w: %s", apperrors.ErrInvalidInput, strings.Join(fields, ", "))
		}
		return in, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	return in, nil
}

// Validate checks a stored habit against the same rules Add and Update apply.
func (s *Service) Validate(h models.Habit) error {
	_, err := s.check(InputFrom(h))
	return err
}

func warnInverted(h models.Habit) {
	if h.HasInvertedRange() {
		logger.Warn("Habit end date precedes its start date; it will never be due",
			"habit_id", h.ID, "start_date", h.StartDate, "end_date", h.EndDate)
	}
}

// ReminderError reports why h's reminder time cannot be scheduled, or nil
// when it is empty or well formed.
func ReminderError(h models.Habit) error {
	if !h.HasReminder() {
		return nil
	}
	_, _, err := utils.ParseClock(h.ReminderTime)
	return err
}

func warnReminder(h models.Habit) {
	if err := ReminderError(h); err != nil {
		logger.Warn("Habit saved without a usable reminder", "habit_id", h.ID, "reminder_time", h.ReminderTime, "error", err)
	}
}

// Add validates and stores a new habit, then schedules its reminder.
func (s *Service) Add(ctx context.Context, in Input) (models.Habit, error) {
	in, err := s.check(in)
	if err != nil {
		return models.Habit{}, err
	}

	var h models.Habit
	in.apply(&h)
	h.CreatedAt = s.now()

	id, err := s.store.AddHabit(ctx, h)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to add habit: %w", err)
	}
	h.ID = id
	warnInverted(h)
	warnReminder(h)

	s.hooks.OnCreate(ctx, h)
	return h, nil
}

// Update replaces the editable fields of an existing habit.
func (s *Service) Update(ctx context.Context, id int64, in Input) (models.Habit, error) {
	in, err := s.check(in)
	if err != nil {
		return models.Habit{}, err
	}

	h, err := s.store.GetHabit(ctx, id)
	if err != nil {
		return models.Habit{}, err
	}
	in.apply(&h)

	if err := s.store.UpdateHabit(ctx, h); err != nil {
		return models.Habit{}, fmt.Errorf("failed to update habit: %w", err)
	}
	warnInverted(h)
	warnReminder(h)

	s.hooks.OnUpdate(ctx, h)
	return h, nil
}

// Archive hides the habit from due lists and cancels its reminder. Its
// completion history is kept.
func (s *Service) Archive(ctx context.Context, id int64) error {
	if err := s.store.ArchiveHabit(ctx, id); err != nil {
		return err
	}
	h, err := s.store.GetHabit(ctx, id)
	if err != nil {
		return err
	}
	s.hooks.OnUpdate(ctx, h)
	return nil
}

// Delete removes the habit together with its completion records.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteHabit(ctx, id); err != nil {
		return err
	}
	s.hooks.OnDelete(ctx, id)
	return nil
}

func (s *Service) resolveDate(date string) (string, error) {
	if date == "" {
		return s.Today(), nil
	}
	if !utils.ValidateDateFormat(date) {
		return "", fmt.Errorf("%w: %q (expected YYYY-MM-DD)", apperrors.ErrInvalidDate, date)
	}
	return date, nil
}

func (s *Service) mark(ctx context.Context, id int64, date string, completed bool, note string) (models.CompletionRecord, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return models.CompletionRecord{}, err
	}
	if _, err := s.store.GetHabit(ctx, id); err != nil {
		return models.CompletionRecord{}, err
	}

	rec := models.CompletionRecord{
		HabitID:     id,
		Date:        date,
		IsCompleted: completed,
		Note:        note,
		CompletedAt: s.now(),
	}
	if err := s.store.UpsertCompletion(ctx, rec); err != nil {
		return models.CompletionRecord{}, fmt.Errorf("failed to record completion: %w", err)
	}
	return rec, nil
}

// MarkComplete records the habit as done on date. An empty date means today.
func (s *Service) MarkComplete(ctx context.Context, id int64, date, note string) (models.CompletionRecord, error) {
	return s.mark(ctx, id, date, true, note)
}

// MarkMissed records an explicit miss on date, replacing any earlier mark.
func (s *Service) MarkMissed(ctx context.Context, id int64, date string) (models.CompletionRecord, error) {
	return s.mark(ctx, id, date, false, "")
}

// Undo removes the mark for date so the day reads as not acted on.
// Undoing an unmarked day is a no-op.
func (s *Service) Undo(ctx context.Context, id int64, date string) error {
	date, err := s.resolveDate(date)
	if err != nil {
		return err
	}
	return s.store.DeleteCompletion(ctx, id, date)
}

// IsCompletedOn reports whether a completed record exists for (id, date).
func (s *Service) IsCompletedOn(ctx context.Context, id int64, date string) (bool, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return false, err
	}
	rec, err := s.store.GetCompletion(ctx, id, date)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return rec.IsCompleted, nil
}

// TodayItem is one due habit with its state for the day.
type TodayItem struct {
	Habit     models.Habit
	Status    models.DayStatus
	Completed bool
	Streak    int
}

// TodayView lists the habits due today.
type TodayView struct {
	Date      string
	Items     []TodayItem
	Completed int
	Total     int
}

// TodayStatus selects the habits due today and attaches completion state
// and current streak to each.
func (s *Service) TodayStatus(ctx context.Context) (TodayView, error) {
	today := s.Today()
	habits, err := due.NewSelector(s.store).DueOn(ctx, today)
	if err != nil {
		return TodayView{}, err
	}

	view := TodayView{Date: today, Items: make([]TodayItem, 0, len(habits)), Total: len(habits)}
	for _, h := range habits {
		item := TodayItem{Habit: h, Status: models.DayUnknown}

		rec, err := s.store.GetCompletion(ctx, h.ID, today)
		switch {
		case err == nil:
			item.Status = models.Status(&rec)
			item.Completed = rec.IsCompleted
		case !apperrors.Is(err, apperrors.ErrNotFound):
			return TodayView{}, err
		}

		item.Streak, err = s.streaks.CurrentStreak(ctx, h.ID, today)
		if err != nil {
			return TodayView{}, err
		}
		if item.Completed {
			view.Completed++
		}
		view.Items = append(view.Items, item)
	}
	return view, nil
}
