// Package store provides storage backends for CoachPipe.
//
// This file implements the PostgreSQL-backed session record store.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/BTreeMap/CoachPipe/internal/models"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	// Apply options
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresStore invoked", "DSN_set", cfg.DSN != "")

	// Determine DSN (required)
	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	slog.Debug("Opening Postgres database connection")
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	// Configure connection pool for better performance
	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	// Run migrations to ensure the session_records table exists
	slog.Debug("Running Postgres migrations")
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")

	return &PostgresStore{db: db}, nil
}

// SaveSessionRecord stores or replaces the record for (uid, session).
func (s *PostgresStore) SaveSessionRecord(rec models.SessionRecord) error {
	if err := rec.Validate(); err != nil {
		slog.Error("PostgresStore SaveSessionRecord validation failed", "error", err, "uid", rec.UserProfile.UID)
		return fmt.Errorf("invalid session record: %w", err)
	}

	profileJSON, err := json.Marshal(rec.UserProfile)
	if err != nil {
		slog.Error("PostgresStore SaveSessionRecord profile marshal failed", "error", err, "uid", rec.UserProfile.UID)
		return err
	}
	historyJSON, err := json.Marshal(rec.ChatHistory)
	if err != nil {
		slog.Error("PostgresStore SaveSessionRecord history marshal failed", "error", err, "uid", rec.UserProfile.UID)
		return err
	}
	progressJSON, err := json.Marshal(rec.Progress)
	if err != nil {
		slog.Error("PostgresStore SaveSessionRecord progress marshal failed", "error", err, "uid", rec.UserProfile.UID)
		return err
	}

	query := `
		INSERT INTO session_records
			(uid, session_number, current_state, path_chosen, profile, chat_history, progress, started_at, saved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (uid, session_number) DO UPDATE SET
			current_state = EXCLUDED.current_state,
			path_chosen = EXCLUDED.path_chosen,
			profile = EXCLUDED.profile,
			chat_history = EXCLUDED.chat_history,
			progress = EXCLUDED.progress,
			started_at = EXCLUDED.started_at,
			saved_at = EXCLUDED.saved_at`
	_, err = s.db.Exec(query,
		rec.UserProfile.UID, rec.SessionInfo.SessionNumber,
		string(rec.SessionInfo.CurrentState), string(rec.SessionInfo.PathChosen),
		string(profileJSON), string(historyJSON), string(progressJSON),
		rec.SessionInfo.StartedAt, rec.SessionInfo.SavedAt)
	if err != nil {
		slog.Error("PostgresStore SaveSessionRecord failed", "error", err, "uid", rec.UserProfile.UID, "session", rec.SessionInfo.SessionNumber)
		return fmt.Errorf("failed to save session record: %w", err)
	}
	slog.Debug("PostgresStore SaveSessionRecord succeeded", "uid", rec.UserProfile.UID, "session", rec.SessionInfo.SessionNumber)
	return nil
}

func (s *PostgresStore) GetSessionRecord(uid string, session int) (*models.SessionRecord, error) {
	row := s.db.QueryRow(`
		SELECT uid, session_number, current_state, path_chosen, profile, chat_history, progress, started_at, saved_at
		FROM session_records WHERE uid = $1 AND session_number = $2`, uid, session)
	return scanSessionRecord(row, uid)
}

func (s *PostgresStore) LatestSessionRecord(uid string) (*models.SessionRecord, error) {
	row := s.db.QueryRow(`
		SELECT uid, session_number, current_state, path_chosen, profile, chat_history, progress, started_at, saved_at
		FROM session_records WHERE uid = $1 ORDER BY session_number DESC LIMIT 1`, uid)
	return scanSessionRecord(row, uid)
}

func (s *PostgresStore) ListSessions(uid string) ([]models.SessionInfo, error) {
	rows, err := s.db.Query(`
		SELECT session_number, current_state, path_chosen, started_at, saved_at
		FROM session_records WHERE uid = $1 ORDER BY session_number`, uid)
	if err != nil {
		slog.Error("PostgresStore ListSessions query failed", "error", err, "uid", uid)
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var infos []models.SessionInfo
	for rows.Next() {
		var info models.SessionInfo
		var state, path string
		if err := rows.Scan(&info.SessionNumber, &state, &path, &info.StartedAt, &info.SavedAt); err != nil {
			slog.Error("PostgresStore ListSessions scan failed", "error", err, "uid", uid)
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		info.CurrentState = models.StateType(state)
		info.PathChosen = models.PathChoice(path)
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		slog.Error("PostgresStore ListSessions rows iteration failed", "error", err, "uid", uid)
		return nil, err
	}
	slog.Debug("PostgresStore ListSessions succeeded", "uid", uid, "count", len(infos))
	return infos, nil
}

// ClearSessionRecords deletes all records (for tests).
func (s *PostgresStore) ClearSessionRecords() error {
	_, err := s.db.Exec("DELETE FROM session_records")
	if err != nil {
		slog.Error("PostgresStore ClearSessionRecords failed", "error", err)
		return err
	}
	slog.Debug("PostgresStore ClearSessionRecords succeeded")
	return nil
}

// Close closes the Postgres database connection.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing Postgres database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close Postgres database", "error", err)
	}
	return err
}
