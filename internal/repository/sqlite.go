package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "embed"

	"github.com/mattn/go-sqlite3"

	"character-chat/internal/domain"
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists collection records in a local SQLite file.
// Feature selections are stored as a JSON array.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("repository: OpenSQLite: path must not be empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("repository: OpenSQLite: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("repository: OpenSQLite: %w", err)
	}
	// One writer keeps SQLITE_BUSY out of concurrent submissions.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteMigrations); err != nil {
		db.Close()
		return nil, fmt.Errorf("repository: OpenSQLite: migrate: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Backend() string { return "sqlite" }

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) SaveEmail(ctx context.Context, rec domain.EmailRecord) (domain.EmailRecord, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO email_collection (id, email, source, user_agent, ip_address, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Email, rec.Source, rec.UserAgent, nullString(rec.IPAddress), rec.CreatedAt.UTC())
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return domain.EmailRecord{}, fmt.Errorf("repository: SaveEmail: %w", domain.ErrDuplicate)
		}
		return domain.EmailRecord{}, fmt.Errorf("repository: SaveEmail: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return rec, nil
}

func (s *SQLiteStore) SaveSurvey(ctx context.Context, resp domain.SurveyResponse) (domain.SurveyResponse, error) {
	features := resp.SelectedFeatures
	if features == nil {
		features = []string{}
	}
	encoded, err := json.Marshal(features)
	if err != nil {
		return domain.SurveyResponse{}, fmt.Errorf("repository: SaveSurvey: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO survey_responses (id, selected_features, custom_input, user_agent, ip_address, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		resp.ID, string(encoded), nullString(resp.CustomInput), nullString(resp.UserAgent),
		nullString(resp.IPAddress), resp.CreatedAt.UTC())
	if err != nil {
		return domain.SurveyResponse{}, fmt.Errorf("repository: SaveSurvey: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return resp, nil
}

func isSQLiteUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}
