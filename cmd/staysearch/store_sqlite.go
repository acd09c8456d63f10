//go:build sqlite && !postgres

package main

import (
	"os"

	"staysearch/internal/observability"
	"staysearch/internal/storage"
	sqlitestore "staysearch/internal/storage/sqlite"
)

// selectStore returns a SQLite-backed store when built with the 'sqlite' tag.
// Configure with env var SQLITE_DSN (e.g., file:staysearch.db?cache=shared&_fk=1).
func selectStore(logger observability.Logger, limits storage.Limits) storage.Store {
	dsn := os.Getenv("SQLITE_DSN")
	if dsn == "" {
		dsn = "file:staysearch.db?cache=shared&_fk=1"
	}
	st, err := sqlitestore.NewLimits(dsn, limits)
	if err != nil {
		logger.Error("sqlite init failed; falling back to memory store", "error", err)
		return storage.NewMemoryStoreLimits(limits)
	}
	logger.Info("using sqlite store", "dsn", dsn)
	return st
}
