package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/BTreeMap/CoachPipe/internal/models"
)

// scanSessionRecord scans one session_records row, shared by the SQLite
// and Postgres stores. A missing row maps to models.ErrSessionNotFound.
func scanSessionRecord(row *sql.Row, uid string) (*models.SessionRecord, error) {
	var rec models.SessionRecord
	var recUID, state, path, profileJSON, historyJSON, progressJSON string

	err := row.Scan(&recUID, &rec.SessionInfo.SessionNumber, &state, &path,
		&profileJSON, &historyJSON, &progressJSON, &rec.SessionInfo.StartedAt, &rec.SessionInfo.SavedAt)
	if errors.Is(err, sql.ErrNoRows) {
		slog.Debug("session record not found", "uid", uid)
		return nil, models.ErrSessionNotFound
	}
	if err != nil {
		slog.Error("session record scan failed", "error", err, "uid", uid)
		return nil, fmt.Errorf("failed to scan session record: %w", err)
	}

	rec.SessionInfo.CurrentState = models.StateType(state)
	rec.SessionInfo.PathChosen = models.PathChoice(path)
	if err := json.Unmarshal([]byte(profileJSON), &rec.UserProfile); err != nil {
		slog.Error("session record profile unmarshal failed", "error", err, "uid", uid)
		return nil, fmt.Errorf("failed to decode user profile: %w", err)
	}
	if historyJSON != "" {
		if err := json.Unmarshal([]byte(historyJSON), &rec.ChatHistory); err != nil {
			slog.Error("session record history unmarshal failed", "error", err, "uid", uid)
			return nil, fmt.Errorf("failed to decode chat history: %w", err)
		}
	}
	if progressJSON != "" {
		if err := json.Unmarshal([]byte(progressJSON), &rec.Progress); err != nil {
			slog.Error("session record progress unmarshal failed", "error", err, "uid", uid)
			return nil, fmt.Errorf("failed to decode session progress: %w", err)
		}
	}
	return &rec, nil
}
