package models

import "time"

// CompletionRecord is the per-(habit, date) marker. A record with IsCompleted
// false is an explicit miss; no record at all means the day was not acted on.
type CompletionRecord struct {
	HabitID     int64     `json:"habit_id"`
	Date        string    `json:"date"` // YYYY-MM-DD format
	IsCompleted bool      `json:"is_completed"`
	Note        string    `json:"note,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}

// DayStatus is the tri-state view of a single day in a habit's history.
type DayStatus string

const (
	DayDone    DayStatus = "done"
	DayMissed  DayStatus = "missed"
	DayUnknown DayStatus = "unknown"
)

// Status maps an optional record onto a DayStatus.
func Status(rec *CompletionRecord) DayStatus {
	switch {
	case rec == nil:
		return DayUnknown
	case rec.IsCompleted:
		return DayDone
	default:
		return DayMissed
	}
}

// MonthlyCompletionStat is the number of completed records in one calendar month.
type MonthlyCompletionStat struct {
	Month          string `json:"month"` // YYYY-MM format
	CompletedCount int    `json:"completed_count"`
}
