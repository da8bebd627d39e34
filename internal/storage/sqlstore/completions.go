package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "github.com/julianstephens/habitforge/internal/errors"
	"github.com/julianstephens/habitforge/internal/models"
)

const completionColumns = `habit_id, date, is_completed, note, completed_at`

func scanCompletion(row rowScanner) (models.CompletionRecord, error) {
	var rec models.CompletionRecord
	var completedAt string

	if err := row.Scan(&rec.HabitID, &rec.Date, &rec.IsCompleted, &rec.Note, &completedAt); err != nil {
		return models.CompletionRecord{}, err
	}

	t, err := parseTimestamp("completed_at", completedAt)
	if err != nil {
		return models.CompletionRecord{}, err
	}
	rec.CompletedAt = t
	return rec, nil
}

func (s *Store) GetCompletion(ctx context.Context, habitID int64, date string) (models.CompletionRecord, error) {
	row, err := s.queryRow(ctx, `SELECT `+completionColumns+` FROM habit_completions WHERE habit_id = ? AND date = ?`, habitID, date)
	if err != nil {
		return models.CompletionRecord{}, err
	}

	rec, err := scanCompletion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CompletionRecord{}, fmt.Errorf("completion for habit %d on %s: %w", habitID, date, apperrors.ErrNotFound)
	}
	if err != nil {
		return models.CompletionRecord{}, fmt.Errorf("failed to get completion: %w", err)
	}
	return rec, nil
}

func (s *Store) UpsertCompletion(ctx context.Context, rec models.CompletionRecord) error {
	_, err := s.exec(ctx, `
		INSERT INTO habit_completions (habit_id, date, is_completed, note, completed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (habit_id, date) DO UPDATE SET
			is_completed = excluded.is_completed,
			note = excluded.note,
			completed_at = excluded.completed_at`,
		rec.HabitID, rec.Date, rec.IsCompleted, rec.Note, formatTimestamp(rec.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert completion: %w", err)
	}
	return nil
}

func (s *Store) DeleteCompletion(ctx context.Context, habitID int64, date string) error {
	if _, err := s.exec(ctx, `DELETE FROM habit_completions WHERE habit_id = ? AND date = ?`, habitID, date); err != nil {
		return fmt.Errorf("failed to delete completion: %w", err)
	}
	return nil
}

func (s *Store) CountCompleted(ctx context.Context, habitID int64) (int, error) {
	row, err := s.queryRow(ctx, `SELECT COUNT(*) FROM habit_completions WHERE habit_id = ? AND is_completed = ?`, habitID, true)
	if err != nil {
		return 0, err
	}

	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count completions: %w", err)
	}
	return n, nil
}

func (s *Store) GetCompletionsInRange(ctx context.Context, habitID int64, start, end string) ([]models.CompletionRecord, error) {
	rows, err := s.query(ctx, `
		SELECT `+completionColumns+` FROM habit_completions
		WHERE habit_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC`, habitID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query completions: %w", err)
	}
	return collectCompletions(rows)
}

func (s *Store) GetCompletionsForDate(ctx context.Context, date string) ([]models.CompletionRecord, error) {
	rows, err := s.query(ctx, `
		SELECT `+completionColumns+` FROM habit_completions
		WHERE date = ?
		ORDER BY habit_id ASC`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query completions: %w", err)
	}
	return collectCompletions(rows)
}

func collectCompletions(rows *sql.Rows) ([]models.CompletionRecord, error) {
	defer rows.Close()

	var records []models.CompletionRecord
	for rows.Next() {
		rec, err := scanCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan completion: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating completions: %w", err)
	}
	return records, nil
}

func (s *Store) MonthlyCompletionStats(ctx context.Context) ([]models.MonthlyCompletionStat, error) {
	rows, err := s.query(ctx, `
		SELECT SUBSTR(date, 1, 7) AS month, COUNT(*)
		FROM habit_completions
		WHERE is_completed = ?
		GROUP BY SUBSTR(date, 1, 7)
		ORDER BY month DESC`, true)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly stats: %w", err)
	}
	defer rows.Close()

	var stats []models.MonthlyCompletionStat
	for rows.Next() {
		var st models.MonthlyCompletionStat
		if err := rows.Scan(&st.Month, &st.CompletedCount); err != nil {
			return nil, fmt.Errorf("failed to scan monthly stat: %w", err)
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating monthly stats: %w", err)
	}
	return stats, nil
}
