package postgres

import (
	"context"
	"os"
	"testing"

	apperrors "github.com/julianstephens/habitforge/internal/errors"
	"github.com/julianstephens/habitforge/internal/models"
)

// TestStore_Integration runs against a real database.
// Example: POSTGRES_TEST_URL="postgres://habitforge@localhost:5432/habitforge_test?sslmode=disable"
func TestStore_Integration(t *testing.T) {
	connStr := os.Getenv("POSTGRES_TEST_URL")
	if connStr == "" {
		t.Skip("POSTGRES_TEST_URL not set, skipping PostgreSQL integration test")
	}

	ctx := context.Background()
	store := New(connStr)
	if err := store.Init(); err != nil {
		t.Fatalf("Failed to initialize store: %v", err)
	}
	defer store.Close()

	id, err := store.AddHabit(ctx, models.Habit{Name: "Integration", Frequency: models.FrequencyDaily, StartDate: "2026-01-01"})
	if err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}
	defer store.DeleteHabit(ctx, id)

	t.Run("Completions", func(t *testing.T) {
		for _, d := range []string{"2026-01-02", "2026-01-03"} {
			if err := store.UpsertCompletion(ctx, models.CompletionRecord{HabitID: id, Date: d, IsCompleted: true}); err != nil {
				t.Fatalf("UpsertCompletion failed: %v", err)
			}
		}
		if err := store.UpsertCompletion(ctx, models.CompletionRecord{HabitID: id, Date: "2026-01-03", IsCompleted: false}); err != nil {
			t.Fatalf("UpsertCompletion replace failed: %v", err)
		}

		n, err := store.CountCompleted(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		if n != 1 {
			t.Errorf("CountCompleted = %d, want 1", n)
		}

		recs, err := store.GetCompletionsInRange(ctx, id, "2026-01-01", "2026-01-31")
		if err != nil {
			t.Fatal(err)
		}
		if len(recs) != 2 || recs[0].Date != "2026-01-02" {
			t.Errorf("unexpected range: %+v", recs)
		}
	})

	t.Run("Delete cascades", func(t *testing.T) {
		if err := store.DeleteHabit(ctx, id); err != nil {
			t.Fatalf("DeleteHabit failed: %v", err)
		}
		if _, err := store.GetCompletion(ctx, id, "2026-01-02"); !apperrors.Is(err, apperrors.ErrNotFound) {
			t.Errorf("expected completions to be removed, got %v", err)
		}
	})
}
