package storage

import (
	"context"

	"github.com/julianstephens/habitforge/internal/models"
)

// HabitStore persists habit definitions.
type HabitStore interface {
	AddHabit(ctx context.Context, h models.Habit) (int64, error)
	GetHabit(ctx context.Context, id int64) (models.Habit, error)
	// GetAllHabits returns habits newest first (created_at, then id, descending).
	GetAllHabits(ctx context.Context, includeArchived bool) ([]models.Habit, error)
	UpdateHabit(ctx context.Context, h models.Habit) error
	ArchiveHabit(ctx context.Context, id int64) error
	// DeleteHabit removes the habit and every completion record it owns.
	// Journal entries linked to it are kept with the link cleared.
	DeleteHabit(ctx context.Context, id int64) error
}

// CompletionLog stores at most one record per (habit, date).
type CompletionLog interface {
	// GetCompletion returns errors.ErrNotFound when no record exists.
	GetCompletion(ctx context.Context, habitID int64, date string) (models.CompletionRecord, error)
	UpsertCompletion(ctx context.Context, rec models.CompletionRecord) error
	// DeleteCompletion is a no-op when the record is absent.
	DeleteCompletion(ctx context.Context, habitID int64, date string) error
	CountCompleted(ctx context.Context, habitID int64) (int, error)
	// GetCompletionsInRange returns records with start <= date <= end, oldest first.
	GetCompletionsInRange(ctx context.Context, habitID int64, start, end string) ([]models.CompletionRecord, error)
	GetCompletionsForDate(ctx context.Context, date string) ([]models.CompletionRecord, error)
	// MonthlyCompletionStats returns completed counts per month, newest month first.
	MonthlyCompletionStats(ctx context.Context) ([]models.MonthlyCompletionStat, error)
}

type JournalStore interface {
	AddJournalEntry(ctx context.Context, e models.JournalEntry) (int64, error)
	GetJournalEntry(ctx context.Context, id int64) (models.JournalEntry, error)
	UpdateJournalEntry(ctx context.Context, e models.JournalEntry) error
	// GetJournalEntriesInRange returns entries newest first.
	GetJournalEntriesInRange(ctx context.Context, start, end string) ([]models.JournalEntry, error)
	GetJournalEntriesForDate(ctx context.Context, date string) ([]models.JournalEntry, error)
	GetJournalEntriesForHabit(ctx context.Context, habitID int64) ([]models.JournalEntry, error)
	DeleteJournalEntry(ctx context.Context, id int64) error
}

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	HabitStore
	CompletionLog
	JournalStore

	// Utils
	GetConfigPath() string
}
