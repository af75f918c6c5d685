// Package store provides storage backends for CoachPipe.
//
// This file implements the SQLite-backed session record store.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/BTreeMap/CoachPipe/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// Constants for SQLite store configuration
const (
	// DefaultDirPermissions defines the default permissions for database directories
	DefaultDirPermissions = 0755
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	// Apply options
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	// Determine DSN (required)
	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	// Ensure the directory exists
	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	slog.Debug("Opening SQLite database connection")
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}

	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	// Run migrations to ensure tables exist
	slog.Debug("Running SQLite migrations")
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

// SaveSessionRecord stores or replaces the record for (uid, session).
func (s *SQLiteStore) SaveSessionRecord(rec models.SessionRecord) error {
	if err := rec.Validate(); err != nil {
		slog.Error("SQLiteStore SaveSessionRecord validation failed", "error", err, "uid", rec.UserProfile.UID)
		return fmt.Errorf("invalid session record: %w", err)
	}

	profileJSON, err := json.Marshal(rec.UserProfile)
	if err != nil {
		slog.Error("SQLiteStore SaveSessionRecord profile marshal failed", "error", err, "uid", rec.UserProfile.UID)
		return err
	}
	historyJSON, err := json.Marshal(rec.ChatHistory)
	if err != nil {
		slog.Error("SQLiteStore SaveSessionRecord history marshal failed", "error", err, "uid", rec.UserProfile.UID)
		return err
	}
	progressJSON, err := json.Marshal(rec.Progress)
	if err != nil {
		slog.Error("SQLiteStore SaveSessionRecord progress marshal failed", "error", err, "uid", rec.UserProfile.UID)
		return err
	}

	query := `
		INSERT OR REPLACE INTO session_records
			(uid, session_number, current_state, path_chosen, profile, chat_history, progress, started_at, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.Exec(query,
		rec.UserProfile.UID, rec.SessionInfo.SessionNumber,
		string(rec.SessionInfo.CurrentState), string(rec.SessionInfo.PathChosen),
		string(profileJSON), string(historyJSON), string(progressJSON),
		rec.SessionInfo.StartedAt, rec.SessionInfo.SavedAt)
	if err != nil {
		slog.Error("SQLiteStore SaveSessionRecord failed", "error", err, "uid", rec.UserProfile.UID, "session", rec.SessionInfo.SessionNumber)
		return fmt.Errorf("failed to save session record: %w", err)
	}
	slog.Debug("SQLiteStore SaveSessionRecord succeeded", "uid", rec.UserProfile.UID, "session", rec.SessionInfo.SessionNumber)
	return nil
}

func (s *SQLiteStore) GetSessionRecord(uid string, session int) (*models.SessionRecord, error) {
	row := s.db.QueryRow(`
		SELECT uid, session_number, current_state, path_chosen, profile, chat_history, progress, started_at, saved_at
		FROM session_records WHERE uid = ? AND session_number = ?`, uid, session)
	return scanSessionRecord(row, uid)
}

func (s *SQLiteStore) LatestSessionRecord(uid string) (*models.SessionRecord, error) {
	row := s.db.QueryRow(`
		SELECT uid, session_number, current_state, path_chosen, profile, chat_history, progress, started_at, saved_at
		FROM session_records WHERE uid = ? ORDER BY session_number DESC LIMIT 1`, uid)
	return scanSessionRecord(row, uid)
}

func (s *SQLiteStore) ListSessions(uid string) ([]models.SessionInfo, error) {
	rows, err := s.db.Query(`
		SELECT session_number, current_state, path_chosen, started_at, saved_at
		FROM session_records WHERE uid = ? ORDER BY session_number`, uid)
	if err != nil {
		slog.Error("SQLiteStore ListSessions query failed", "error", err, "uid", uid)
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var infos []models.SessionInfo
	for rows.Next() {
		var info models.SessionInfo
		var state, path string
		if err := rows.Scan(&info.SessionNumber, &state, &path, &info.StartedAt, &info.SavedAt); err != nil {
			slog.Error("SQLiteStore ListSessions scan failed", "error", err, "uid", uid)
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		info.CurrentState = models.StateType(state)
		info.PathChosen = models.PathChoice(path)
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		slog.Error("SQLiteStore ListSessions rows iteration failed", "error", err, "uid", uid)
		return nil, err
	}
	slog.Debug("SQLiteStore ListSessions succeeded", "uid", uid, "count", len(infos))
	return infos, nil
}

// ClearSessionRecords deletes all records (for tests).
func (s *SQLiteStore) ClearSessionRecords() error {
	_, err := s.db.Exec("DELETE FROM session_records")
	if err != nil {
		slog.Error("SQLiteStore ClearSessionRecords failed", "error", err)
		return err
	}
	slog.Debug("SQLiteStore ClearSessionRecords succeeded")
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close SQLite database", "error", err)
	}
	return err
}
