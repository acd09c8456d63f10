//go:build sqlite

package sqlite

import (
	"database/sql"
	"fmt"
	"time"
)

type migration struct {
	version int
	name    string
	stmts   []string
}

// migrations are applied in order inside one transaction each. Version 2
// adds the alias columns the candidate allow-lists recognize, as virtual
// generated columns so they stay in sync with the canonical ones.
var migrations = []migration{
	{
		version: 1,
		name:    "create_properties",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS properties (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				city TEXT,
				country TEXT,
				latitude REAL NOT NULL,
				longitude REAL NOT NULL,
				max_guests INTEGER NOT NULL DEFAULT 0,
				property_type TEXT,
				nightly_rate REAL,
				currency TEXT,
				created_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_properties_geo ON properties(latitude, longitude)`,
		},
	},
	{
		version: 2,
		name:    "alias_columns",
		stmts: []string{
			`ALTER TABLE properties ADD COLUMN capacity INTEGER GENERATED ALWAYS AS (max_guests) VIRTUAL`,
			`ALTER TABLE properties ADD COLUMN sleeps INTEGER GENERATED ALWAYS AS (max_guests) VIRTUAL`,
			`ALTER TABLE properties ADD COLUMN lat REAL GENERATED ALWAYS AS (latitude) VIRTUAL`,
			`ALTER TABLE properties ADD COLUMN lng REAL GENERATED ALWAYS AS (longitude) VIRTUAL`,
		},
	},
}

func runMigrations(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY, name TEXT NOT NULL, applied_at TEXT NOT NULL)`); err != nil {
		return err
	}

	applied := map[int]bool{}
	rows, err := db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return err
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
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		for _, stmt := range m.stmts {
			if _, err := tx.Exec(stmt); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d_%s failed: %w", m.version, m.name, err)
			}
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations(version, name, applied_at) VALUES(?, ?, ?)`,
			m.version, m.name, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}

// Status reports applied versus known migrations for the given DSN.
func Status(dsn string) (string, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return "", err
	}
	defer db.Close()
	var applied int
	_ = db.QueryRow(`SELECT COUNT(1) FROM schema_migrations`).Scan(&applied)
	var latest int
	_ = db.QueryRow(`SELECT COALESCE(MAX(version),0) FROM schema_migrations`).Scan(&latest)
	return fmt.Sprintf("applied=%d latest=%d known=%d", applied, latest, len(migrations)), nil
}
