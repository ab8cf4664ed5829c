// Package migrator applies embedded goose migrations.
package migrator

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

// Goose entry points, replaced in tests.
var (
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return goose.UpContext(ctx, db, dir, opts...)
	}
	gooseDownContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return goose.DownContext(ctx, db, dir, opts...)
	}
	gooseStatusContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return goose.StatusContext(ctx, db, dir, opts...)
	}
)

// Command names accepted by Run.
const (
	CommandUp     = "up"
	CommandDown   = "down"
	CommandStatus = "status"
)

// RunMigrations applies every pending migration in files against db.
func RunMigrations(ctx context.Context, db *sql.DB, files fs.FS) error {
	return Run(ctx, db, files, CommandUp)
}

// Run executes a goose command against db using the migrations in files.
// Supported commands are up, down (one step) and status.
func Run(ctx context.Context, db *sql.DB, files fs.FS, command string) error {
	goose.SetBaseFS(files)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	var err error
	switch command {
	case CommandUp:
		err = gooseUpContext(ctx, db, ".")
	case CommandDown:
		err = gooseDownContext(ctx, db, ".")
	case CommandStatus:
		err = gooseStatusContext(ctx, db, ".")
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}
	if err != nil {
		return fmt.Errorf("failed to run migrations %s: %w", command, err)
	}
	return nil
}
