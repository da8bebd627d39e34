// Package streak derives streaks and completion statistics from the completion log.
package streak

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/habitforge/internal/constants"
	"github.com/julianstephens/habitforge/internal/due"
	"github.com/julianstephens/habitforge/internal/models"
	"github.com/julianstephens/habitforge/internal/utils"
)

// walkWindow is how many days of history one range query fetches while walking back.
const walkWindow = 62

type CompletionReader interface {
	CountCompleted(ctx context.Context, habitID int64) (int, error)
	GetCompletionsInRange(ctx context.Context, habitID int64, start, end string) ([]models.CompletionRecord, error)
}

type Calculator struct {
	log CompletionReader
}

func NewCalculator(log CompletionReader) *Calculator {
	return &Calculator{log: log}
}

// CurrentStreak counts consecutive completed days ending at asOf. A missing or
// not-completed record on asOf itself is neutral: the walk starts from the day
// before instead. The walk stops at the first absent or not-completed day.
func (c *Calculator) CurrentStreak(ctx context.Context, habitID int64, asOf string) (int, error) {
	cursor, err := utils.ParseDate(asOf)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", asOf, err)
	}

	winStart := cursor.AddDate(0, 0, -(walkWindow - 1))
	window, err := c.window(ctx, habitID, winStart, cursor)
	if err != nil {
		return 0, err
	}

	if rec, ok := window[asOf]; !ok || !rec.IsCompleted {
		cursor = cursor.AddDate(0, 0, -1)
	}

	streak := 0
	for {
		if cursor.Before(winStart) {
			winStart = cursor.AddDate(0, 0, -(walkWindow - 1))
			if window, err = c.window(ctx, habitID, winStart, cursor); err != nil {
				return 0, err
			}
		}

		rec, ok := window[utils.FormatDate(cursor)]
		if !ok || !rec.IsCompleted {
			return streak, nil
		}
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
}

func (c *Calculator) window(ctx context.Context, habitID int64, start, end time.Time) (map[string]models.CompletionRecord, error) {
	recs, err := c.log.GetCompletionsInRange(ctx, habitID, utils.FormatDate(start), utils.FormatDate(end))
	if err != nil {
		return nil, fmt.Errorf("failed to load completions: %w", err)
	}
	byDate := make(map[string]models.CompletionRecord, len(recs))
	for _, r := range recs {
		byDate[r.Date] = r
	}
	return byDate, nil
}

// TotalCompletions counts every completed record for the habit.
func (c *Calculator) TotalCompletions(ctx context.Context, habitID int64) (int, error) {
	n, err := c.log.CountCompleted(ctx, habitID)
	if err != nil {
		return 0, fmt.Errorf("failed to count completions: %w", err)
	}
	return n, nil
}

type Summary struct {
	HabitID       int64   `json:"habit_id"`
	CurrentStreak int     `json:"current_streak"`
	Total         int     `json:"total"`
	WindowDays    int     `json:"window_days"`
	DueDays       int     `json:"due_days"`
	CompletedDue  int     `json:"completed_due"`
	Rate          float64 `json:"rate"` // CompletedDue / DueDays, 0 when nothing was due
}

// Summary combines the current streak, the lifetime total and the completion
// rate over the trailing rate window ending at asOf. Only days on which the
// habit was scheduled count toward the rate.
func (c *Calculator) Summary(ctx context.Context, h models.Habit, asOf string) (Summary, error) {
	s := Summary{HabitID: h.ID, WindowDays: constants.DefaultRateWindowDays}

	var err error
	if s.CurrentStreak, err = c.CurrentStreak(ctx, h.ID, asOf); err != nil {
		return Summary{}, err
	}
	if s.Total, err = c.TotalCompletions(ctx, h.ID); err != nil {
		return Summary{}, err
	}

	start, err := utils.AddDays(asOf, -(s.WindowDays - 1))
	if err != nil {
		return Summary{}, err
	}
	history, err := c.History(ctx, h.ID, start, asOf)
	if err != nil {
		return Summary{}, err
	}

	// rate follows the schedule even after the habit is archived
	scheduled := h
	scheduled.Archived = false
	for _, day := range history {
		if !due.IsDue(scheduled, day.Date) {
			continue
		}
		s.DueDays++
		if day.Status == models.DayDone {
			s.CompletedDue++
		}
	}
	if s.DueDays > 0 {
		s.Rate = float64(s.CompletedDue) / float64(s.DueDays)
	}
	return s, nil
}

type Day struct {
	Date   string           `json:"date"`
	Status models.DayStatus `json:"status"`
}

// History returns one entry per calendar day from start to end inclusive.
func (c *Calculator) History(ctx context.Context, habitID int64, start, end string) ([]Day, error) {
	from, err := utils.ParseDate(start)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	to, err := utils.ParseDate(end)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", end, err)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("end date %s is before start date %s", end, start)
	}

	byDate, err := c.window(ctx, habitID, from, to)
	if err != nil {
		return nil, err
	}

	var days []Day
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		date := utils.FormatDate(d)
		var rec *models.CompletionRecord
		if r, ok := byDate[date]; ok {
			rec = &r
		}
		days = append(days, Day{Date: date, Status: models.Status(rec)})
	}
	return days, nil
}
