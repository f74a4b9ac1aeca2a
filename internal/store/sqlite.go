package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store backed by SQLite. Intended for local runs and
// tests; use ":memory:" for an in-memory database.
type SQLiteStore struct {
	sqlStore
}

// OpenSQLite opens (or creates) a SQLite database at cfg.Database.
func OpenSQLite(ctx context.Context, cfg Config, logger *slog.Logger) (*SQLiteStore, error) {
	path := cfg.Database
	if path == "" {
		path = ":memory:"
	}

	dsn := path + "?_pragma=foreign_keys(1)"
	if path != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// The in-memory database vanishes when its only connection closes.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	return &SQLiteStore{sqlStore: newSQLStore(db, logger, nil)}, nil
}

// Migrate applies pending migrations from the embedded sqlite directory.
func (s *SQLiteStore) Migrate() error {
	return migrate(s.db, "sqlite")
}

var _ Store = (*SQLiteStore)(nil)
