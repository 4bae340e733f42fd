package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"quickinvoice/pkg/logger"
)

//go:embed migrations/*.up.sql
var embeddedMigrations embed.FS

const migrationsDir = "migrations"

// Migration is one forward-only schema step.
type Migration struct {
	Name string
	SQL  string
}

// LoadMigrations returns the embedded migrations in lexical order.
func LoadMigrations() ([]Migration, error) {
	entries, err := fs.ReadDir(embeddedMigrations, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	out := make([]Migration, 0, len(names))
	for _, name := range names {
		body, err := fs.ReadFile(embeddedMigrations, migrationsDir+"/"+name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		out = append(out, Migration{Name: strings.TrimSuffix(name, ".up.sql"), SQL: string(body)})
	}
	return out, nil
}

// Migrate applies pending migrations, each in its own transaction.
// Applied names are recorded in schema_migrations.
func Migrate(ctx context.Context, txm *TxManager) error {
	migrations, err := LoadMigrations()
	if err != nil {
		return err
	}

	const ensure = `CREATE TABLE IF NOT EXISTS schema_migrations (
		name       TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`
	if _, err := txm.GetQuerier(ctx).Exec(ctx, ensure); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	for _, m := range migrations {
		err := txm.RunInTransaction(ctx, func(ctx context.Context) error {
			q := txm.GetQuerier(ctx)

			tag, err := q.Exec(ctx, `INSERT INTO schema_migrations (name) VALUES ($1) ON CONFLICT DO NOTHING`, m.Name)
			if err != nil {
				return fmt.Errorf("record migration: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return nil
			}

			if _, err := q.Exec(ctx, m.SQL); err != nil {
				return fmt.Errorf("apply migration %s: %w", m.Name, err)
			}
			logger.Info(ctx, "migration applied", "name", m.Name)
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}
