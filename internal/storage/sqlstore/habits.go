package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "github.com/julianstephens/habitforge/internal/errors"
	"github.com/julianstephens/habitforge/internal/models"
)

const habitColumns = `id, name, description, frequency, reminder_time, start_date, end_date, days_of_week, is_archived, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHabit(row rowScanner) (models.Habit, error) {
	var h models.Habit
	var frequency, days, createdAt string

	err := row.Scan(&h.ID, &h.Name, &h.Description, &frequency, &h.ReminderTime,
		&h.StartDate, &h.EndDate, &days, &h.Archived, &createdAt)
	if err != nil {
		return models.Habit{}, err
	}

	h.Frequency = models.Frequency(frequency)
	h.DaysOfWeek = models.SplitDays(days)
	h.CreatedAt, err = parseTimestamp("created_at", createdAt)
	if err != nil {
		return models.Habit{}, err
	}
	return h, nil
}

func (s *Store) AddHabit(ctx context.Context, h models.Habit) (int64, error) {
	row, err := s.queryRow(ctx, `
		INSERT INTO habits (name, description, frequency, reminder_time, start_date, end_date, days_of_week, is_archived, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		h.Name, h.Description, string(h.Frequency), h.ReminderTime, h.StartDate, h.EndDate,
		models.JoinDays(h.DaysOfWeek), h.Archived, formatTimestamp(h.CreatedAt),
	)
	if err != nil {
		return 0, err
	}

	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to insert habit: %w", err)
	}
	return id, nil
}

func (s *Store) GetHabit(ctx context.Context, id int64) (models.Habit, error) {
	row, err := s.queryRow(ctx, `SELECT `+habitColumns+` FROM habits WHERE id = ?`, id)
	if err != nil {
		return models.Habit{}, err
	}

	h, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, fmt.Errorf("habit %d: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to get habit: %w", err)
	}
	return h, nil
}

func (s *Store) GetAllHabits(ctx context.Context, includeArchived bool) ([]models.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits`
	if !includeArchived {
		query += ` WHERE is_archived = ?`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	var args []any
	if !includeArchived {
		args = append(args, false)
	}

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query habits: %w", err)
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating habits: %w", err)
	}
	return habits, nil
}

func (s *Store) UpdateHabit(ctx context.Context, h models.Habit) error {
	result, err := s.exec(ctx, `
		UPDATE habits SET
			name = ?, description = ?, frequency = ?, reminder_time = ?,
			start_date = ?, end_date = ?, days_of_week = ?, is_archived = ?
		WHERE id = ?`,
		h.Name, h.Description, string(h.Frequency), h.ReminderTime,
		h.StartDate, h.EndDate, models.JoinDays(h.DaysOfWeek), h.Archived, h.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update habit: %w", err)
	}
	return requireRow(result, "habit", h.ID)
}

func (s *Store) ArchiveHabit(ctx context.Context, id int64) error {
	result, err := s.exec(ctx, `UPDATE habits SET is_archived = ? WHERE id = ?`, true, id)
	if err != nil {
		return fmt.Errorf("failed to archive habit: %w", err)
	}
	return requireRow(result, "habit", id)
}

func (s *Store) DeleteHabit(ctx context.Context, id int64) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Explicit cascade so the result does not depend on foreign key enforcement.
	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM habit_completions WHERE habit_id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete completions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, s.rebind(`UPDATE journal_entries SET habit_id = NULL WHERE habit_id = ?`), id); err != nil {
		return fmt.Errorf("failed to unlink journal entries: %w", err)
	}

	result, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM habits WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	if err := requireRow(result, "habit", id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit habit delete: %w", err)
	}
	return nil
}

func requireRow(result sql.Result, kind string, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, apperrors.ErrNotFound)
	}
	return nil
}
