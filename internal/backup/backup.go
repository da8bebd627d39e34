// Package backup keeps rotated snapshots of the SQLite habit database next
// to it, in a "backups" directory.
package backup

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/habitforge/internal/constants"
	"github.com/julianstephens/habitforge/internal/logger"
)

const (
	// MaxSnapshots is how many snapshots survive rotation
	MaxSnapshots = 14
	DirName      = "backups"

	filePrefix  = constants.AppName + "-"
	fileSuffix  = ".db"
	stampLayout = "20060102-150405"
)

type Snapshot struct {
	Path    string
	TakenAt time.Time
	Size    int64
}

type Manager struct {
	dbPath string
	dir    string
	keep   int
	now    func() time.Time
}

func NewManager(dbPath string) *Manager {
	return &Manager{
		dbPath: dbPath,
		dir:    filepath.Join(filepath.Dir(dbPath), DirName),
		keep:   MaxSnapshots,
		now:    time.Now,
	}
}

func (m *Manager) Dir() string {
	return m.dir
}

// Create writes a consistent copy of the database with VACUUM INTO and
// prunes snapshots beyond the retention limit.
func (m *Manager) Create(ctx context.Context) (Snapshot, error) {
	snap, err := m.create(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	if err := m.prune(); err != nil {
		logger.Warn("Failed to rotate old snapshots", "dir", m.dir, "error", err)
	}
	return snap, nil
}

func (m *Manager) create(ctx context.Context) (Snapshot, error) {
	if _, err := os.Stat(m.dbPath); err != nil {
		return Snapshot{}, fmt.Errorf("database does not exist: %s", m.dbPath)
	}
	if err := os.MkdirAll(m.dir, 0700); err != nil {
		return Snapshot{}, fmt.Errorf("failed to create backup directory: %w", err)
	}

	takenAt := m.now()
	path, err := m.freeName(takenAt)
	if err != nil {
		return Snapshot{}, err
	}

	src, err := sql.Open("sqlite", "file:"+m.dbPath+"?mode=ro")
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to open database: %w", err)
	}
	defer src.Close()

	if _, err := src.ExecContext(ctx, "VACUUM INTO ?", path); err != nil {
		return Snapshot{}, fmt.Errorf("failed to snapshot database: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Path: path, TakenAt: takenAt, Size: info.Size()}, nil
}

// freeName picks an unused file name for a snapshot taken at t. Snapshots
// within the same second get a numeric suffix.
func (m *Manager) freeName(t time.Time) (string, error) {
	base := filePrefix + t.Format(stampLayout)
	path := filepath.Join(m.dir, base+fileSuffix)
	for n := 1; n <= 100; n++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		}
		path = filepath.Join(m.dir, fmt.Sprintf("%s-%d%s", base, n, fileSuffix))
	}
	return "", fmt.Errorf("failed to generate unique snapshot name in %s", m.dir)
}

// List returns the snapshots in the backup directory, newest first. Files
// that do not follow the naming scheme are ignored.
func (m *Manager) List() ([]Snapshot, error) {
	entries, err := os.ReadDir(m.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var snaps []Snapshot
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}

		stamp := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
		if len(stamp) < len(stampLayout) {
			continue
		}
		takenAt, err := time.ParseInLocation(stampLayout, stamp[:len(stampLayout)], time.Local)
		if err != nil {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		snaps = append(snaps, Snapshot{Path: filepath.Join(m.dir, name), TakenAt: takenAt, Size: info.Size()})
	}

	sort.SliceStable(snaps, func(i, j int) bool {
		if snaps[i].TakenAt.Equal(snaps[j].TakenAt) {
			return snaps[i].Path > snaps[j].Path
		}
		return snaps[i].TakenAt.After(snaps[j].TakenAt)
	})
	return snaps, nil
}

func (m *Manager) prune() error {
	snaps, err := m.List()
	if err != nil {
		return err
	}
	for i := m.keep; i < len(snaps); i++ {
		if err := os.Remove(snaps[i].Path); err != nil {
			return fmt.Errorf("failed to remove old snapshot %s: %w", snaps[i].Path, err)
		}
	}
	return nil
}

// Restore replaces the database with the snapshot at path. The current
// database is snapshotted first. The store must be closed by the caller.
func (m *Manager) Restore(ctx context.Context, path string) (Snapshot, error) {
	if err := verify(ctx, path); err != nil {
		return Snapshot{}, fmt.Errorf("snapshot %s is not a habit database: %w", path, err)
	}

	var previous Snapshot
	if _, err := os.Stat(m.dbPath); err == nil {
		if previous, err = m.create(ctx); err != nil {
			return Snapshot{}, fmt.Errorf("failed to snapshot current database before restore: %w", err)
		}
	}

	tmp := m.dbPath + ".restore.tmp"
	if err := copyFile(path, tmp); err != nil {
		os.Remove(tmp)
		return Snapshot{}, fmt.Errorf("failed to copy snapshot: %w", err)
	}
	if err := os.Rename(tmp, m.dbPath); err != nil {
		os.Remove(tmp)
		return Snapshot{}, fmt.Errorf("failed to restore database: %w", err)
	}
	return previous, nil
}

// verify checks that path opens as SQLite and carries the habits table.
func verify(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return err
	}
	defer db.Close()

	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'habits'`).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("habits table missing")
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
