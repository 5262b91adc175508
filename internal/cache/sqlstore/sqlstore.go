// Package sqlstore is a cache backend persisting entries in a SQL table,
// either in a local SQLite file or in a shared Postgres database.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // registers the "sqlite" driver
)

// Dialect names a supported database.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

var queries = map[Dialect]struct {
	driver, schema, get, set string
}{
	SQLite: {
		driver: "sqlite",
		schema: `CREATE TABLE IF NOT EXISTS cache (key TEXT PRIMARY KEY, value TEXT)`,
		get:    `SELECT value FROM cache WHERE key = ?`,
		set:    `INSERT INTO cache (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
	},
	Postgres: {
		driver: "pgx",
		schema: `CREATE TABLE IF NOT EXISTS cache (key TEXT PRIMARY KEY, value TEXT)`,
		get:    `SELECT value FROM cache WHERE key = $1`,
		set:    `INSERT INTO cache (key, value) VALUES ($1, $2) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
	},
}

// Store is a SQL-backed cache.
type Store struct {
	db      *sql.DB
	dialect Dialect

	schemaOnce sync.Once
	schemaErr  error
}

// Open connects to dsn. For SQLite the dsn is a file path whose parent
// directories are created; for Postgres it is a connection string.
func Open(ctx context.Context, dialect Dialect, dsn string) (*Store, error) {
	q, ok := queries[dialect]
	if !ok {
		return nil, fmt.Errorf("unsupported cache dialect %q", dialect)
	}
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("cache dsn is required")
	}
	if dialect == SQLite {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}

	db, err := sql.Open(q.driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if dialect == SQLite {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
	}
	return &Store{db: db, dialect: dialect}, nil
}

// DefaultPath is the SQLite file used when no path is configured: cache.db
// under the user's cache directory.
func DefaultPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "pybridge", "cache.db"), nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, queries[s.dialect].schema)
	})
	return s.schemaErr
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return "", false, fmt.Errorf("ensure schema: %w", err)
	}
	var value string
	err := s.db.QueryRowContext(ctx, queries[s.dialect].get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.ensureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	_, err := s.db.ExecContext(ctx, queries[s.dialect].set, key, value)
	return err
}

func (s *Store) Close() error { return s.db.Close() }
