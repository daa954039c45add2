package engagement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteKVSchema = `
CREATE TABLE IF NOT EXISTS engagement_kv (
	scope TEXT NOT NULL,
	key   TEXT NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY (scope, key)
);`

// SQLiteKV keeps keys in an embedded database, partitioned by scope.
type SQLiteKV struct {
	db    *sql.DB
	scope string
}

// OpenSQLiteKV opens (and migrates) the database at path.
func OpenSQLiteKV(path, scope string) (*SQLiteKV, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("engagement: sqlite path must not be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("engagement: create sqlite dir: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("engagement: open sqlite: %w", err)
	}
	if _, err := db.Exec(sqliteKVSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("engagement: migrate sqlite: %w", err)
	}
	return NewSQLiteKV(db, scope)
}

// NewSQLiteKV wraps an already-migrated database handle.
func NewSQLiteKV(db *sql.DB, scope string) (*SQLiteKV, error) {
	if db == nil {
		return nil, errors.New("engagement: db must not be nil")
	}
	if strings.TrimSpace(scope) == "" {
		scope = defaultScope
	}
	return &SQLiteKV{db: db, scope: scope}, nil
}

func (s *SQLiteKV) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM engagement_kv WHERE scope = ? AND key = ?`, s.scope, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("engagement: sqlite get %q: %w", key, err)
	}
	return v, true, nil
}

func (s *SQLiteKV) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO engagement_kv (scope, key, value) VALUES (?, ?, ?)
		 ON CONFLICT(scope, key) DO UPDATE SET value = excluded.value`, s.scope, key, value)
	if err != nil {
		return fmt.Errorf("engagement: sqlite set %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteKV) Close() error {
	return s.db.Close()
}
