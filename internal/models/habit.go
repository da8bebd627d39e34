package models

import (
	"slices"
	"strings"
	"time"
)

type Frequency string

const (
	FrequencyDaily  Frequency = "DAILY"
	FrequencyWeekly Frequency = "WEEKLY"
)

// WeekdayCodes maps time.Weekday to the three-letter codes stored on weekly habits.
var WeekdayCodes = [7]string{"SUN", "MON", "TUE", "WED", "THU", "FRI", "SAT"}

// Habit represents a recurring practice to track
type Habit struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Frequency    Frequency `json:"frequency"`
	ReminderTime string    `json:"reminder_time,omitempty"` // HH:MM format, empty means no reminder
	StartDate    string    `json:"start_date"`              // YYYY-MM-DD format, inclusive
	EndDate      string    `json:"end_date,omitempty"`      // YYYY-MM-DD format, inclusive, empty means open-ended
	DaysOfWeek   []string  `json:"days_of_week,omitempty"`  // weekday codes, only used for WEEKLY
	Archived     bool      `json:"archived"`
	CreatedAt    time.Time `json:"created_at"`
}

// HasReminder reports whether a reminder time-of-day is configured.
func (h *Habit) HasReminder() bool {
	return strings.TrimSpace(h.ReminderTime) != ""
}

// OnWeekday reports whether code is one of the habit's selected weekdays.
func (h *Habit) OnWeekday(code string) bool {
	return slices.Contains(h.DaysOfWeek, strings.ToUpper(code))
}

// HasInvertedRange reports whether the end date precedes the start date.
// Such habits are never due; they are stored as entered.
func (h *Habit) HasInvertedRange() bool {
	return h.EndDate != "" && h.EndDate < h.StartDate
}

// JoinDays encodes weekday codes for storage.
func JoinDays(days []string) string {
	return strings.Join(days, ",")
}

// SplitDays decodes weekday codes from storage.
func SplitDays(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	days := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			days = append(days, p)
		}
	}
	return days
}
