// Package due decides which habits are active on a calendar date.
package due

import (
	"context"
	"fmt"

	"github.com/julianstephens/habitforge/internal/models"
	"github.com/julianstephens/habitforge/internal/utils"
)

// IsDue reports whether h is active on date (YYYY-MM-DD). Bounds are
// inclusive and compared as ISO strings. An unparseable date is never due.
func IsDue(h models.Habit, date string) bool {
	if h.Archived {
		return false
	}
	if date < h.StartDate {
		return false
	}
	if h.EndDate != "" && date > h.EndDate {
		return false
	}

	switch h.Frequency {
	case models.FrequencyDaily:
		return utils.ValidateDateFormat(date)
	case models.FrequencyWeekly:
		t, err := utils.ParseDate(date)
		if err != nil {
			return false
		}
		return h.OnWeekday(utils.WeekdayCode(t))
	default:
		return false
	}
}

// Select returns the habits due on date, preserving input order.
func Select(habits []models.Habit, date string) []models.Habit {
	selected := make([]models.Habit, 0, len(habits))
	for _, h := range habits {
		if IsDue(h, date) {
			selected = append(selected, h)
		}
	}
	return selected
}

type HabitLister interface {
	GetAllHabits(ctx context.Context, includeArchived bool) ([]models.Habit, error)
}

// Selector reads the current habit set on every call; nothing is cached.
type Selector struct {
	habits HabitLister
}

func NewSelector(habits HabitLister) *Selector {
	return &Selector{habits: habits}
}

// DueOn returns the non-archived habits due on date, newest first.
func (s *Selector) DueOn(ctx context.Context, date string) ([]models.Habit, error) {
	if !utils.ValidateDateFormat(date) {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
	}

	habits, err := s.habits.GetAllHabits(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load habits: %w", err)
	}
	return Select(habits, date), nil
}
