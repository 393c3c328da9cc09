package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/event-portal/internal/persistence/sqlite"
)

// SQLiteHarness provides a migrated temporary SQLite storage for
// integration-style persistence tests.
type SQLiteHarness struct {
	Storage *sqlite.Storage

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary file that is
// migrated automatically and seeded with data. Callers may optionally invoke
// Close, but the helper also registers a cleanup callback with tb.
func NewSQLiteHarness(tb testing.TB, data sqlite.SeedData) *SQLiteHarness {
	tb.Helper()

	dir := tb.TempDir()
	path := filepath.Join(dir, "portal.db")

	storage, err := sqlite.Open(path)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	ctx := context.Background()
	if err := storage.Migrate(ctx); err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}
	if err := storage.Seed(ctx, data); err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to seed storage: %v", err)
	}

	harness := &SQLiteHarness{
		Storage: storage,
		cleanup: func() {
			_ = storage.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
