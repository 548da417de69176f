package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type Dialect int

const (
	DialectPostgres Dialect = iota
	DialectSQLite
)

type sqlQueries struct {
	schema string
	get    string
	put    string
}

var dialectQueries = map[Dialect]sqlQueries{
	DialectPostgres: {
		schema: `CREATE TABLE IF NOT EXISTS blobs (
			key        TEXT PRIMARY KEY,
			value      BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		get: `SELECT value FROM blobs WHERE key = $1`,
		put: `
			INSERT INTO blobs (key, value, updated_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (key)
			DO UPDATE SET
				value = EXCLUDED.value,
				updated_at = NOW()`,
	},
	DialectSQLite: {
		schema: `CREATE TABLE IF NOT EXISTS blobs (
			key        TEXT PRIMARY KEY,
			value      BLOB NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		get: `SELECT value FROM blobs WHERE key = ?`,
		put: `
			INSERT INTO blobs (key, value, updated_at)
			VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT (key)
			DO UPDATE SET
				value = excluded.value,
				updated_at = CURRENT_TIMESTAMP`,
	},
}

// SQLStore keeps blobs in a single key/value table.
type SQLStore struct {
	DB      *sql.DB
	queries sqlQueries
}

func NewSQLStore(db *sql.DB, dialect Dialect) (*SQLStore, error) {
	q, ok := dialectQueries[dialect]
	if !ok {
		return nil, fmt.Errorf("unsupported sql dialect %d", dialect)
	}
	if _, err := db.Exec(q.schema); err != nil {
		return nil, fmt.Errorf("create blobs table: %w", err)
	}
	return &SQLStore{DB: db, queries: q}, nil
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.DB.QueryRowContext(ctx, s.queries.get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLStore) Put(ctx context.Context, key string, value []byte) error {
	if _, err := s.DB.ExecContext(ctx, s.queries.put, key, value); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	return s.DB.Close()
}
