package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/habitforge/internal/models"
	"github.com/julianstephens/habitforge/internal/storage/sqlite"
)

func setupTestDB(t *testing.T) (string, *sqlite.Store) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "habits.db")
	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if _, err := store.AddHabit(context.Background(), models.Habit{Name: "Read", Frequency: models.FrequencyDaily, StartDate: "2026-01-01"}); err != nil {
		t.Fatalf("failed to add habit: %v", err)
	}
	return dbPath, store
}

func countHabits(t *testing.T, dbPath string) int {
	t.Helper()

	store := sqlite.NewStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatalf("failed to load %s: %v", dbPath, err)
	}
	defer store.Close()

	habits, err := store.GetAllHabits(context.Background(), true)
	if err != nil {
		t.Fatal(err)
	}
	return len(habits)
}

func fixedClock(start time.Time) func() time.Time {
	next := start
	return func() time.Time {
		t := next
		next = next.Add(time.Hour)
		return t
	}
}

func TestCreate(t *testing.T) {
	dbPath, _ := setupTestDB(t)

	mgr := NewManager(dbPath)
	snap, err := mgr.Create(context.Background())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if filepath.Dir(snap.Path) != filepath.Join(filepath.Dir(dbPath), DirName) {
		t.Errorf("snapshot written outside the backup dir: %s", snap.Path)
	}
	if snap.Size == 0 {
		t.Error("expected a non-empty snapshot")
	}
	if n := countHabits(t, snap.Path); n != 1 {
		t.Errorf("snapshot holds %d habits, want 1", n)
	}
}

func TestCreateSameSecond(t *testing.T) {
	dbPath, _ := setupTestDB(t)

	mgr := NewManager(dbPath)
	at := time.Date(2026, 1, 5, 12, 0, 0, 0, time.Local)
	mgr.now = func() time.Time { return at }

	first, err := mgr.Create(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	second, err := mgr.Create(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if first.Path == second.Path {
		t.Fatalf("snapshots collided: %s", first.Path)
	}

	snaps, err := mgr.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(snaps) != 2 {
		t.Errorf("expected 2 snapshots, got %d", len(snaps))
	}
}

func TestCreateMissingDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := mgr.Create(context.Background()); err == nil {
		t.Error("expected an error for a missing database")
	}
}

func TestListAndRotation(t *testing.T) {
	dbPath, _ := setupTestDB(t)

	mgr := NewManager(dbPath)
	mgr.keep = 3
	mgr.now = fixedClock(time.Date(2026, 1, 5, 8, 0, 0, 0, time.Local))

	for i := 0; i < 5; i++ {
		if _, err := mgr.Create(context.Background()); err != nil {
			t.Fatalf("Create #%d failed: %v", i+1, err)
		}
	}

	// Unrelated files are ignored.
	if err := os.WriteFile(filepath.Join(mgr.Dir(), "notes.txt"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	snaps, err := mgr.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(snaps) != 3 {
		t.Fatalf("expected 3 snapshots after rotation, got %d", len(snaps))
	}
	for i := 1; i < len(snaps); i++ {
		if !snaps[i-1].TakenAt.After(snaps[i].TakenAt) {
			t.Errorf("snapshots not newest first: %v then %v", snaps[i-1].TakenAt, snaps[i].TakenAt)
		}
	}
	if want := time.Date(2026, 1, 5, 12, 0, 0, 0, time.Local); !snaps[0].TakenAt.Equal(want) {
		t.Errorf("newest = %v, want %v", snaps[0].TakenAt, want)
	}
}

func TestListWithoutDirectory(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "habits.db"))
	snaps, err := mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(snaps) != 0 {
		t.Errorf("expected no snapshots, got %d", len(snaps))
	}
}

func TestRestore(t *testing.T) {
	dbPath, store := setupTestDB(t)
	ctx := context.Background()

	mgr := NewManager(dbPath)
	mgr.now = fixedClock(time.Date(2026, 1, 5, 8, 0, 0, 0, time.Local))

	snap, err := mgr.Create(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := store.AddHabit(ctx, models.Habit{Name: "Run", Frequency: models.FrequencyDaily, StartDate: "2026-01-01"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	previous, err := mgr.Restore(ctx, snap.Path)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if n := countHabits(t, dbPath); n != 1 {
		t.Errorf("restored database holds %d habits, want 1", n)
	}
	if n := countHabits(t, previous.Path); n != 2 {
		t.Errorf("pre-restore snapshot holds %d habits, want 2", n)
	}
}

func TestRestoreRejectsForeignFile(t *testing.T) {
	dbPath, _ := setupTestDB(t)

	bogus := filepath.Join(t.TempDir(), "bogus.db")
	if err := os.WriteFile(bogus, []byte("not a database"), 0600); err != nil {
		t.Fatal(err)
	}

	mgr := NewManager(dbPath)
	if _, err := mgr.Restore(context.Background(), bogus); err == nil {
		t.Error("expected restore of a non-database file to fail")
	}
	if _, err := mgr.Restore(context.Background(), filepath.Join(t.TempDir(), "missing.db")); err == nil {
		t.Error("expected restore of a missing file to fail")
	}
	if n := countHabits(t, dbPath); n != 1 {
		t.Errorf("failed restore changed the database: %d habits", n)
	}
}
