package system

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/julianstephens/habitforge/internal/backup"
	"github.com/julianstephens/habitforge/internal/cli"
	"github.com/julianstephens/habitforge/internal/storage/sqlite"
)

type BackupCmd struct {
	Create  BackupCreateCmd  `cmd:"" help:"Create a snapshot of the database." default:"1"`
	List    BackupListCmd    `cmd:"" help:"List available snapshots."`
	Restore BackupRestoreCmd `cmd:"" help:"Restore the database from a snapshot."`
}

func manager(ctx *cli.Context) (*backup.Manager, error) {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return nil, errors.New("backups are only supported for SQLite databases")
	}
	return backup.NewManager(ctx.Store.GetConfigPath()), nil
}

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}
	snap, err := mgr.Create(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("Created backup: %s\n", snap.Path)
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}
	snaps, err := mgr.List()
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		fmt.Printf("No backups found in %s\n", mgr.Dir())
		return nil
	}

	fmt.Printf("Backups in %s:\n\n", mgr.Dir())
	for _, s := range snaps {
		fmt.Printf("  %s  %s  %.1f KB\n", s.TakenAt.Format("2006-01-02 15:04:05"), filepath.Base(s.Path), float64(s.Size)/1024)
	}
	return nil
}

type BackupRestoreCmd struct {
	Path string `arg:"" help:"Snapshot file, or its name inside the backup directory."`
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}

	path := c.Path
	if filepath.Base(path) == path {
		path = filepath.Join(mgr.Dir(), path)
	}

	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	previous, err := mgr.Restore(context.Background(), path)
	if err != nil {
		return err
	}

	if previous.Path != "" {
		fmt.Printf("Saved current database as: %s\n", filepath.Base(previous.Path))
	}
	fmt.Printf("Restored database from: %s\n", path)
	return nil
}
