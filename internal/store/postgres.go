package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore implements Store backed by PostgreSQL via the pgx stdlib
// driver.
type PostgresStore struct {
	sqlStore
}

// OpenPostgres establishes a PostgreSQL connection and verifies it with a
// ping.
func OpenPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*PostgresStore, error) {
	dsn := buildPostgresDSN(cfg)

	if logger != nil {
		logger.Debug("connecting to postgres", slog.String("host", cfg.Host), slog.String("dbname", cfg.DBName))
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &PostgresStore{sqlStore: newSQLStore(db, logger, rebindPostgres)}, nil
}

// NewPostgresStoreFromDB wraps an existing connection. Used by tests that
// supply a mock database.
func NewPostgresStoreFromDB(db *sql.DB, logger *slog.Logger) *PostgresStore {
	return &PostgresStore{sqlStore: newSQLStore(db, logger, rebindPostgres)}
}

// Migrate applies pending migrations from the embedded postgres directory.
func (s *PostgresStore) Migrate() error {
	return migrate(s.db, "postgres")
}

// buildPostgresDSN constructs a key=value connection string.
func buildPostgresDSN(cfg Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	sslmode := "disable"
	if cfg.Options != nil {
		if mode, ok := cfg.Options["sslmode"]; ok {
			sslmode = mode
		}
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s", host, port, cfg.DBName, sslmode)
	if cfg.User != "" {
		dsn += fmt.Sprintf(" user=%s", cfg.User)
	}
	if cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", cfg.Password)
	}

	return dsn
}

var _ Store = (*PostgresStore)(nil)
