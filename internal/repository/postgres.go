package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "embed"

	"github.com/lib/pq"

	"character-chat/internal/domain"
)

// Connection pool settings for the Postgres store.
const (
	DefaultMaxOpenConns    = 10
	DefaultMaxIdleConns    = 10
	DefaultConnMaxLifetime = 5 * time.Minute
)

// pgUniqueViolation is the SQLSTATE raised when a UNIQUE constraint rejects a row.
const pgUniqueViolation = "23505"

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore persists collection records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres connects to dsn, verifies the connection and applies migrations.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("repository: OpenPostgres: dsn must not be empty")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("repository: OpenPostgres: %w", err)
	}
	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("repository: OpenPostgres: ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, postgresMigrations); err != nil {
		db.Close()
		return nil, fmt.Errorf("repository: OpenPostgres: migrate: %w", err)
	}
	slog.Debug("postgres collection store ready")
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Backend() string { return "postgres" }

func (s *PostgresStore) Close() error { return s.db.Close() }

func (s *PostgresStore) SaveEmail(ctx context.Context, rec domain.EmailRecord) (domain.EmailRecord, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO email_collection (id, email, source, user_agent, ip_address, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, rec.Email, rec.Source, rec.UserAgent, nullString(rec.IPAddress), rec.CreatedAt.UTC())
	if err != nil {
		if isPostgresUniqueViolation(err) {
			return domain.EmailRecord{}, fmt.Errorf("repository: SaveEmail: %w", domain.ErrDuplicate)
		}
		return domain.EmailRecord{}, fmt.Errorf("repository: SaveEmail: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return rec, nil
}

func (s *PostgresStore) SaveSurvey(ctx context.Context, resp domain.SurveyResponse) (domain.SurveyResponse, error) {
	features := resp.SelectedFeatures
	if features == nil {
		features = []string{}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO survey_responses (id, selected_features, custom_input, user_agent, ip_address, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		resp.ID, pq.Array(features), nullString(resp.CustomInput), nullString(resp.UserAgent),
		nullString(resp.IPAddress), resp.CreatedAt.UTC())
	if err != nil {
		return domain.SurveyResponse{}, fmt.Errorf("repository: SaveSurvey: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return resp, nil
}

func isPostgresUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
