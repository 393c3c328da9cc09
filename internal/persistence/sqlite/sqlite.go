// Package sqlite stores the raw attendance, session and feedback rows that
// feed the analytics reports.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	"github.com/example/event-portal/internal/persistence"
	"github.com/example/event-portal/internal/persistence/sqlite/migration"
)

//go:embed schema/*.sql
var schemaFiles embed.FS

// Storage is a SQLite backed persistence.ReportRepository.
type Storage struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ persistence.ReportRepository = (*Storage)(nil)

// Open connects to the database named by dsn. Call Migrate before use.
func Open(dsn string) (*Storage, error) {
	return OpenWithLogger(context.Background(), dsn, nil)
}

// OpenWithLogger connects to the database named by dsn and logs migrations with logger.
func OpenWithLogger(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := migration.OpenDatabase(ctx, migration.DefaultSQLiteConfig(dsn))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", dsn, err)
	}
	return &Storage{db: db, logger: logger}, nil
}

// Close releases the connection pool.
func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate applies the embedded schema scripts.
func (s *Storage) Migrate(ctx context.Context) error {
	return migration.NewManager(s.db, schemaFiles, "schema", s.logger).Run(ctx)
}
