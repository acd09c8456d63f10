//go:build postgres

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type migration struct {
	version int
	name    string
	stmts   []string
}

// migrations mirror the SQLite set: version 1 is the canonical properties
// table, version 2 adds the alias columns the candidate allow-lists
// recognize as stored generated columns.
var migrations = []migration{
	{
		version: 1,
		name:    "create_properties",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS properties (
				id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
				name TEXT NOT NULL,
				city TEXT,
				country TEXT,
				latitude DOUBLE PRECISION NOT NULL,
				longitude DOUBLE PRECISION NOT NULL,
				max_guests INTEGER NOT NULL DEFAULT 0,
				property_type TEXT,
				nightly_rate DOUBLE PRECISION,
				currency TEXT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
			`CREATE INDEX IF NOT EXISTS idx_properties_geo ON properties(latitude, longitude)`,
		},
	},
	{
		version: 2,
		name:    "alias_columns",
		stmts: []string{
			`ALTER TABLE properties ADD COLUMN IF NOT EXISTS capacity INTEGER GENERATED ALWAYS AS (max_guests) STORED`,
			`ALTER TABLE properties ADD COLUMN IF NOT EXISTS sleeps INTEGER GENERATED ALWAYS AS (max_guests) STORED`,
			`ALTER TABLE properties ADD COLUMN IF NOT EXISTS lat DOUBLE PRECISION GENERATED ALWAYS AS (latitude) STORED`,
			`ALTER TABLE properties ADD COLUMN IF NOT EXISTS lng DOUBLE PRECISION GENERATED ALWAYS AS (longitude) STORED`,
		},
	},
}

func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version BIGINT PRIMARY KEY, name TEXT NOT NULL, applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW())`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	applied := map[int]bool{}
	rows, err := pool.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("query applied migrations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return err
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.version] {
			continue
		}
		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}
		for _, stmt := range m.stmts {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				_ = tx.Rollback(ctx)
				return fmt.Errorf("migration %d_%s failed: %w", m.version, m.name, err)
			}
		}
		if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations(version, name) VALUES($1, $2)`, m.version, m.name); err != nil {
			_ = tx.Rollback(ctx)
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Status reports applied versus known migrations for the given connection
// string.
func Status(connStr string) (string, error) {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return "", err
	}
	defer pool.Close()
	var applied, latest int
	_ = pool.QueryRow(ctx, `SELECT COUNT(1) FROM schema_migrations`).Scan(&applied)
	_ = pool.QueryRow(ctx, `SELECT COALESCE(MAX(version),0) FROM schema_migrations`).Scan(&latest)
	return fmt.Sprintf("applied=%d latest=%d known=%d", applied, latest, len(migrations)), nil
}
