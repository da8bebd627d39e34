package migration

import (
	"context"
	"database/sql"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/habitforge/migrations"
)

func setupTestDB(t *testing.T) *sql.DB {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func TestGetCurrentVersion(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	runner := NewRunner(db, fstest.MapFS{}, DialectSQLite)

	version, err := runner.GetCurrentVersion(ctx)
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 0 {
		t.Errorf("expected version 0, got %d", version)
	}

	if err := runner.SetVersion(ctx, 5); err != nil {
		t.Fatalf("SetVersion failed: %v", err)
	}

	version, err = runner.GetCurrentVersion(ctx)
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 5 {
		t.Errorf("expected version 5, got %d", version)
	}
}

func TestReadMigrationFiles(t *testing.T) {
	db := setupTestDB(t)

	tests := []struct {
		name    string
		files   fstest.MapFS
		want    []int
		wantErr string
	}{
		{
			name: "sorted by version",
			files: fstest.MapFS{
				"002_second.sql": {Data: []byte("SELECT 2;")},
				"001_first.sql":  {Data: []byte("SELECT 1;")},
				"README.md":      {Data: []byte("ignored")},
			},
			want: []int{1, 2},
		},
		{
			name:    "bad filename",
			files:   fstest.MapFS{"first.sql": {Data: []byte("SELECT 1;")}},
			wantErr: "invalid migration filename",
		},
		{
			name:    "version zero",
			files:   fstest.MapFS{"000_zero.sql": {Data: []byte("SELECT 1;")}},
			wantErr: "version must be at least 1",
		},
		{
			name: "duplicate version",
			files: fstest.MapFS{
				"001_a.sql":  {Data: []byte("SELECT 1;")},
				"0001_b.sql": {Data: []byte("SELECT 1;")},
			},
			wantErr: "duplicate migration version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewRunner(db, tt.files, DialectSQLite).ReadMigrationFiles()
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadMigrationFiles failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d migrations, got %d", len(tt.want), len(got))
			}
			for i, v := range tt.want {
				if got[i].Version != v {
					t.Errorf("migration %d: expected version %d, got %d", i, v, got[i].Version)
				}
			}
		})
	}
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	files := fstest.MapFS{
		"001_create.sql": {Data: []byte("CREATE TABLE things (id INTEGER PRIMARY KEY);")},
		"002_alter.sql":  {Data: []byte("ALTER TABLE things ADD COLUMN name TEXT;")},
	}
	runner := NewRunner(db, files, DialectSQLite)

	var logs []string
	applied, err := runner.ApplyMigrations(ctx, func(s string) { logs = append(logs, s) })
	if err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}
	if applied != 2 {
		t.Errorf("expected 2 migrations applied, got %d", applied)
	}
	if len(logs) == 0 {
		t.Error("expected progress messages")
	}

	applied, err = runner.ApplyMigrations(ctx, nil)
	if err != nil {
		t.Fatalf("second ApplyMigrations failed: %v", err)
	}
	if applied != 0 {
		t.Errorf("expected no migrations on second run, got %d", applied)
	}

	if err := runner.ValidateVersion(ctx); err != nil {
		t.Errorf("ValidateVersion failed after migrating: %v", err)
	}
}

func TestApplyMigrationsRollsBackFailure(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	files := fstest.MapFS{
		"001_ok.sql":     {Data: []byte("CREATE TABLE ok (id INTEGER);")},
		"002_broken.sql": {Data: []byte("CREATE TABLE broken (;")},
	}
	runner := NewRunner(db, files, DialectSQLite)

	applied, err := runner.ApplyMigrations(ctx, nil)
	if err == nil {
		t.Fatal("expected error from broken migration")
	}
	if applied != 1 {
		t.Errorf("expected 1 migration applied before failure, got %d", applied)
	}

	version, err := runner.GetCurrentVersion(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if version != 1 {
		t.Errorf("expected version to stay at 1, got %d", version)
	}
}

func TestValidateVersionRejectsNewerDatabase(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	files := fstest.MapFS{"001_a.sql": {Data: []byte("SELECT 1;")}}
	runner := NewRunner(db, files, DialectSQLite)
	if err := runner.SetVersion(ctx, 9); err != nil {
		t.Fatal(err)
	}

	err := runner.ValidateVersion(ctx)
	if err == nil || !strings.Contains(err.Error(), "newer than supported") {
		t.Errorf("expected newer-version error, got %v", err)
	}
}

func TestEmbeddedSQLiteMigrationsApply(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	sub, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(db, sub, DialectSQLite)
	if _, err := runner.ApplyMigrations(ctx, nil); err != nil {
		t.Fatalf("embedded migrations failed: %v", err)
	}

	for _, table := range []string{"habits", "habit_completions", "journal_entries"} {
		var n int
		if err := db.QueryRow("SELECT count(*) FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&n); err != nil {
			t.Fatal(err)
		}
		if n != 1 {
			t.Errorf("expected table %s to exist", table)
		}
	}
}
