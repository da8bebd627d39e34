package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "github.com/julianstephens/habitforge/internal/errors"
	"github.com/julianstephens/habitforge/internal/models"
)

const journalColumns = `id, content, mood, date, habit_id, created_at`

func scanJournalEntry(row rowScanner) (models.JournalEntry, error) {
	var e models.JournalEntry
	var habitID sql.NullInt64
	var createdAt string

	if err := row.Scan(&e.ID, &e.Content, &e.Mood, &e.Date, &habitID, &createdAt); err != nil {
		return models.JournalEntry{}, err
	}
	if habitID.Valid {
		id := habitID.Int64
		e.HabitID = &id
	}

	var err error
	if e.CreatedAt, err = parseTimestamp("created_at", createdAt); err != nil {
		return models.JournalEntry{}, err
	}
	return e, nil
}

func nullableHabitID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func (s *Store) AddJournalEntry(ctx context.Context, e models.JournalEntry) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}

	row, err := s.queryRow(ctx, `
		INSERT INTO journal_entries (content, mood, date, habit_id, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`,
		e.Content, e.Mood, e.Date, nullableHabitID(e.HabitID), formatTimestamp(e.CreatedAt),
	)
	if err != nil {
		return 0, err
	}

	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to insert journal entry: %w", err)
	}
	return id, nil
}

func (s *Store) GetJournalEntry(ctx context.Context, id int64) (models.JournalEntry, error) {
	row, err := s.queryRow(ctx, `SELECT `+journalColumns+` FROM journal_entries WHERE id = ?`, id)
	if err != nil {
		return models.JournalEntry{}, err
	}

	e, err := scanJournalEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.JournalEntry{}, fmt.Errorf("journal entry %d: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return models.JournalEntry{}, fmt.Errorf("failed to get journal entry: %w", err)
	}
	return e, nil
}

// UpdateJournalEntry rewrites content, mood, date and habit link. created_at is kept.
func (s *Store) UpdateJournalEntry(ctx context.Context, e models.JournalEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}

	result, err := s.exec(ctx, `
		UPDATE journal_entries SET content = ?, mood = ?, date = ?, habit_id = ?
		WHERE id = ?`,
		e.Content, e.Mood, e.Date, nullableHabitID(e.HabitID), e.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update journal entry: %w", err)
	}
	return requireRow(result, "journal entry", e.ID)
}

func (s *Store) GetJournalEntriesInRange(ctx context.Context, start, end string) ([]models.JournalEntry, error) {
	return s.queryJournal(ctx, `
		SELECT `+journalColumns+`
		FROM journal_entries
		WHERE date >= ? AND date <= ?
		ORDER BY date DESC, created_at DESC, id DESC`, start, end)
}

func (s *Store) GetJournalEntriesForDate(ctx context.Context, date string) ([]models.JournalEntry, error) {
	return s.queryJournal(ctx, `
		SELECT `+journalColumns+`
		FROM journal_entries
		WHERE date = ?
		ORDER BY created_at DESC, id DESC`, date)
}

func (s *Store) GetJournalEntriesForHabit(ctx context.Context, habitID int64) ([]models.JournalEntry, error) {
	return s.queryJournal(ctx, `
		SELECT `+journalColumns+`
		FROM journal_entries
		WHERE habit_id = ?
		ORDER BY created_at DESC, id DESC`, habitID)
}

func (s *Store) queryJournal(ctx context.Context, query string, args ...any) ([]models.JournalEntry, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal entries: %w", err)
	}
	defer rows.Close()

	var entries []models.JournalEntry
	for rows.Next() {
		e, err := scanJournalEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal entries: %w", err)
	}
	return entries, nil
}

func (s *Store) DeleteJournalEntry(ctx context.Context, id int64) error {
	result, err := s.exec(ctx, `DELETE FROM journal_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete journal entry: %w", err)
	}
	return requireRow(result, "journal entry", id)
}
