//go:build sqlite && postgres

package main

import (
	"os"

	"staysearch/internal/observability"
	"staysearch/internal/storage"
	pgstore "staysearch/internal/storage/postgres"
	sqlitestore "staysearch/internal/storage/sqlite"
)

// selectStore picks PostgreSQL if DATABASE_URL is set, otherwise SQLite.
func selectStore(logger observability.Logger, limits storage.Limits) storage.Store {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		st, err := pgstore.NewLimits(url, limits)
		if err != nil {
			logger.Error("postgres init failed; falling back to sqlite", "error", err)
		} else {
			logger.Info("using postgres store")
			return st
		}
	}
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
