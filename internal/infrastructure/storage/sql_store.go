package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"QueChoisir/internal/ports"
)

const settingsTable = "app_settings"

// SQLStore persists named settings blobs into SQLite or Postgres.
type SQLStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.KeyValueStore = (*SQLStore)(nil)

// OpenSQLite opens (or creates) a SQLite database file and prepares the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite pragma: %w", err)
	}
	return newSQLStore(ctx, db, sq.Question)
}

// OpenPostgres connects to Postgres and prepares the schema.
func OpenPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return newSQLStore(ctx, db, sq.Dollar)
}

func newSQLStore(ctx context.Context, db *sql.DB, placeholders sq.PlaceholderFormat) (*SQLStore, error) {
	s := &SQLStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholders),
	}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	schema := `CREATE TABLE IF NOT EXISTS ` + settingsTable + ` (
		name       TEXT PRIMARY KEY,
		payload    TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create %s: %w", settingsTable, err)
	}
	return nil
}

// Get returns the stored payload or ports.ErrNotFound.
func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	query, args, err := s.builder.
		Select("payload").
		From(settingsTable).
		Where(sq.Eq{"name": key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var payload string
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("query setting %s: %w", key, err)
	}

	return []byte(payload), nil
}

// Set upserts the payload under key.
func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	query, args, err := s.builder.
		Insert(settingsTable).
		Columns("name", "payload").
		Values(key, string(value)).
		Suffix("ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = CURRENT_TIMESTAMP").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}

	return nil
}

// Close releases the database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
