//go:build !sqlite && !postgres

package main

import (
	"os"

	"staysearch/internal/observability"
	"staysearch/internal/storage"
)

// selectStore returns the in-memory store when built without a database tag.
// If a DSN is set, we log a hint to rebuild with the matching tag.
func selectStore(logger observability.Logger, limits storage.Limits) storage.Store {
	if os.Getenv("SQLITE_DSN") != "" {
		logger.Warn("SQLITE_DSN set, but binary not built with -tags sqlite; using in-memory store")
	}
	if os.Getenv("DATABASE_URL") != "" {
		logger.Warn("DATABASE_URL set, but binary not built with -tags postgres; using in-memory store")
	}
	logger.Info("using in-memory store")
	return storage.NewMemoryStoreLimits(limits)
}
