package database

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"strings"
)

// MigrationSource is the filesystem holding the .up.sql files at its root,
// typically an embed.FS.
type MigrationSource interface {
	fs.ReadDirFS
	fs.ReadFileFS
}

// RunMigrations applies the pending .up.sql files from migrations in filename
// order, recording each in schema_migrations. Connection failures are retried;
// SQL errors are returned immediately.
func RunMigrations(ctx context.Context, pool TxBeginner, migrations MigrationSource, logger *slog.Logger) error {
	return withRetry(ctx, "run migrations", logger, isConnectionError, func(ctx context.Context) error {
		return runMigrationsOnce(ctx, pool, migrations, logger)
	})
}

const (
	createMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`
	migrationApplied = `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`
	recordMigration  = `INSERT INTO schema_migrations (version) VALUES ($1)`
)

func runMigrationsOnce(ctx context.Context, pool TxBeginner, migrations MigrationSource, logger *slog.Logger) error {
	if _, err := pool.Exec(ctx, createMigrationsTable); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	names, err := upMigrations(migrations)
	if err != nil {
		return err
	}

	for _, name := range names {
		var applied bool
		if err := pool.QueryRow(ctx, migrationApplied, name).Scan(&applied); err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if applied {
			logger.Debug("migration already applied", slog.String("version", name))
			continue
		}
		if err := applyMigration(ctx, pool, migrations, name); err != nil {
			return err
		}
		logger.Info("migration applied", slog.String("version", name))
	}
	return nil
}

// upMigrations lists the .up.sql files at the root of src in filename order.
func upMigrations(src MigrationSource) ([]string, error) {
	entries, err := src.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

// applyMigration runs one file and records its version in a single
// transaction.
func applyMigration(ctx context.Context, pool TxBeginner, src MigrationSource, name string) error {
	content, err := src.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", name, err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx for migration %s: %w", name, err)
	}
	if _, err := tx.Exec(ctx, string(content)); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("execute migration %s: %w", name, err)
	}
	if _, err := tx.Exec(ctx, recordMigration, name); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("record migration %s: %w", name, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit migration %s: %w", name, err)
	}
	return nil
}
