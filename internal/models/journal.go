package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/habitforge/internal/constants"
)

type JournalEntry struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	Mood      int       `json:"mood"`               // 1-5 scale
	Date      string    `json:"date"`               // YYYY-MM-DD format
	HabitID   *int64    `json:"habit_id,omitempty"` // optional link to a habit
	CreatedAt time.Time `json:"created_at"`
}

func (e *JournalEntry) Validate() error {
	if strings.TrimSpace(e.Content) == "" {
		return fmt.Errorf("journal content cannot be empty")
	}

	if e.Mood < constants.MinMood || e.Mood > constants.MaxMood {
		return fmt.Errorf("mood must be between %d and %d, got %d", constants.MinMood, constants.MaxMood, e.Mood)
	}

	if _, err := time.Parse(constants.DateFormat, e.Date); err != nil {
		return fmt.Errorf("invalid date format (expected YYYY-MM-DD): %w", err)
	}

	return nil
}
