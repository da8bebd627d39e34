package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/habitforge/internal/cli"
	"github.com/julianstephens/habitforge/internal/config"
	"github.com/julianstephens/habitforge/internal/models"
	"github.com/julianstephens/habitforge/internal/storage/sqlite"
)

func setupTestContext(t *testing.T) *cli.Context {
	t.Helper()

	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := config.Default()
	cfg.Timezone = "UTC"
	return &cli.Context{
		Store:  store,
		Config: cfg,
		Clock:  func() time.Time { return time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC) },
	}
}

func TestJournalAddAndList(t *testing.T) {
	ctx := setupTestContext(t)
	bg := context.Background()

	habitID, err := ctx.Store.AddHabit(bg, models.Habit{Name: "Run", Frequency: models.FrequencyDaily, StartDate: "2026-01-01"})
	if err != nil {
		t.Fatal(err)
	}

	if err := (&JournalAddCmd{Content: "  felt strong  ", Mood: 4, Habit: habitID}).Run(ctx); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := (&JournalAddCmd{Content: "rest day", Mood: 2, Date: "2026-01-03"}).Run(ctx); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	entries, err := ctx.Store.GetJournalEntriesInRange(bg, "2026-01-01", "2026-01-05")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Date != "2026-01-05" || entries[0].Content != "felt strong" {
		t.Errorf("unexpected newest entry: %+v", entries[0])
	}
	if entries[0].HabitID == nil || *entries[0].HabitID != habitID {
		t.Errorf("expected link to habit %d", habitID)
	}

	if err := (&JournalListCmd{Days: 7}).Run(ctx); err != nil {
		t.Errorf("list failed: %v", err)
	}
	if err := (&JournalListCmd{Days: 0}).Run(ctx); err == nil {
		t.Error("expected days=0 to fail")
	}
}

func TestJournalAddValidation(t *testing.T) {
	ctx := setupTestContext(t)

	tests := []struct {
		name string
		cmd  JournalAddCmd
	}{
		{"empty content", JournalAddCmd{Content: "   ", Mood: 3}},
		{"mood too high", JournalAddCmd{Content: "ok", Mood: 6}},
		{"bad date", JournalAddCmd{Content: "ok", Mood: 3, Date: "Jan 5"}},
		{"unknown habit", JournalAddCmd{Content: "ok", Mood: 3, Habit: 77}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cmd.Run(ctx); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestJournalDelete(t *testing.T) {
	ctx := setupTestContext(t)

	id, err := ctx.Store.AddJournalEntry(context.Background(), models.JournalEntry{Content: "x", Mood: 3, Date: "2026-01-05"})
	if err != nil {
		t.Fatal(err)
	}
	if err := (&JournalDeleteCmd{ID: id}).Run(ctx); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := (&JournalDeleteCmd{ID: id}).Run(ctx); err == nil {
		t.Error("expected deleting twice to fail")
	}
}

func TestJournalEdit(t *testing.T) {
	ctx := setupTestContext(t)
	bg := context.Background()

	habitID, err := ctx.Store.AddHabit(bg, models.Habit{Name: "Run", Frequency: models.FrequencyDaily, StartDate: "2026-01-01"})
	if err != nil {
		t.Fatal(err)
	}
	id, err := ctx.Store.AddJournalEntry(bg, models.JournalEntry{Content: "tired", Mood: 2, Date: "2026-01-05"})
	if err != nil {
		t.Fatal(err)
	}

	content := "  tired but ran anyway "
	mood := 4
	if err := (&JournalEditCmd{ID: id, Content: &content, Mood: &mood, Habit: &habitID}).Run(ctx); err != nil {
		t.Fatalf("edit failed: %v", err)
	}

	got, err := ctx.Store.GetJournalEntry(bg, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Content != "tired but ran anyway" || got.Mood != 4 || got.Date != "2026-01-05" {
		t.Errorf("unexpected entry after edit: %+v", got)
	}
	if got.HabitID == nil || *got.HabitID != habitID {
		t.Errorf("expected link to habit %d", habitID)
	}

	var unlink int64
	if err := (&JournalEditCmd{ID: id, Habit: &unlink}).Run(ctx); err != nil {
		t.Fatalf("unlink failed: %v", err)
	}
	if got, _ := ctx.Store.GetJournalEntry(bg, id); got.HabitID != nil {
		t.Errorf("expected habit link to be cleared, got %d", *got.HabitID)
	}

	badMood := 0
	missingHabit := int64(77)
	tests := []struct {
		name string
		cmd  JournalEditCmd
	}{
		{"unknown entry", JournalEditCmd{ID: 999, Content: &content}},
		{"mood out of range", JournalEditCmd{ID: id, Mood: &badMood}},
		{"unknown habit", JournalEditCmd{ID: id, Habit: &missingHabit}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cmd.Run(ctx); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestJournalListFilters(t *testing.T) {
	ctx := setupTestContext(t)
	bg := context.Background()

	habitID, err := ctx.Store.AddHabit(bg, models.Habit{Name: "Run", Frequency: models.FrequencyDaily, StartDate: "2026-01-01"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ctx.Store.AddJournalEntry(bg, models.JournalEntry{Content: "ran", Mood: 4, Date: "2025-11-01", HabitID: &habitID}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		cmd     JournalListCmd
		wantErr bool
	}{
		{"by habit", JournalListCmd{Habit: habitID}, false},
		{"by date", JournalListCmd{On: "2025-11-01"}, false},
		{"bad date", JournalListCmd{On: "Nov 1"}, true},
		{"unknown habit", JournalListCmd{Habit: 77}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Run(ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("Run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestQuoteCmd(t *testing.T) {
	ctx := setupTestContext(t)

	if err := (&QuoteCmd{}).Run(ctx); err != nil {
		t.Errorf("quote for today failed: %v", err)
	}
	if err := (&QuoteCmd{On: "2026-02-01"}).Run(ctx); err != nil {
		t.Errorf("quote for date failed: %v", err)
	}
	if err := (&QuoteCmd{On: "someday"}).Run(ctx); err == nil {
		t.Error("expected a bad date to be rejected")
	}
}
