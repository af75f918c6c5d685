// Package api provides HTTP handlers for CoachPipe endpoints.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/BTreeMap/CoachPipe/internal/models"
)

type createSessionRequest struct {
	UID           string `json:"uid,omitempty"`
	SessionNumber int    `json:"session_number"`
}

type turnRequest struct {
	UID   string `json:"uid"`
	Input string `json:"input"`
}

type replyRequest struct {
	UID     string `json:"uid"`
	Content string `json:"content"`
}

type endSessionRequest struct {
	UID string `json:"uid"`
}

func (s *Server) createSessionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.createSessionHandler: processing request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.createSessionHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	result, err := s.runner.StartSession(r.Context(), req.UID, req.SessionNumber)
	if err != nil {
		if errors.Is(err, models.ErrInvalidSessionNumber) {
			writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
			return
		}
		slog.Error("Server.createSessionHandler: failed to start session", "error", err, "uid", req.UID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to start session"))
		return
	}

	slog.Info("Server.createSessionHandler: session started", "uid", result.UID, "session", result.SessionNumber)
	writeJSONResponse(w, http.StatusCreated, models.Success(result))
}

func (s *Server) turnHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.turnHandler: processing request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.turnHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if req.UID == "" || req.Input == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("uid and input are required"))
		return
	}

	result, err := s.runner.ProcessTurn(r.Context(), req.UID, req.Input)
	if err != nil {
		if errors.Is(err, models.ErrSessionNotFound) {
			writeJSONResponse(w, http.StatusNotFound, models.Error("No active session for participant"))
			return
		}
		slog.Error("Server.turnHandler: failed to process turn", "error", err, "uid", req.UID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to process turn"))
		return
	}

	writeJSONResponse(w, http.StatusOK, models.Success(result))
}

func (s *Server) replyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.replyHandler: processing request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req replyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.replyHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if req.UID == "" || req.Content == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("uid and content are required"))
		return
	}

	report, err := s.runner.RecordReply(r.Context(), req.UID, req.Content)
	if err != nil {
		if errors.Is(err, models.ErrSessionNotFound) {
			writeJSONResponse(w, http.StatusNotFound, models.Error("No active session for participant"))
			return
		}
		slog.Error("Server.replyHandler: failed to record reply", "error", err, "uid", req.UID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to record reply"))
		return
	}

	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Reply recorded", report))
}

func (s *Server) endSessionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.endSessionHandler: processing request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req endSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.endSessionHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	if err := s.runner.EndSession(req.UID); err != nil {
		if errors.Is(err, models.ErrSessionNotFound) {
			writeJSONResponse(w, http.StatusNotFound, models.Error("No active session for participant"))
			return
		}
		slog.Error("Server.endSessionHandler: failed to end session", "error", err, "uid", req.UID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to end session"))
		return
	}

	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Session ended", nil))
}

func (s *Server) recordHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.recordHandler: processing request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	uid := r.URL.Query().Get("uid")
	if uid == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("uid is required"))
		return
	}

	sessionParam := r.URL.Query().Get("session")
	var rec *models.SessionRecord
	var err error
	if sessionParam == "" {
		rec, err = s.store.LatestSessionRecord(uid)
	} else {
		var n int
		n, err = strconv.Atoi(sessionParam)
		if err != nil {
			writeJSONResponse(w, http.StatusBadRequest, models.Error("session must be a number"))
			return
		}
		rec, err = s.store.GetSessionRecord(uid, n)
	}
	if err != nil {
		if errors.Is(err, models.ErrSessionNotFound) {
			writeJSONResponse(w, http.StatusNotFound, models.Error("Session record not found"))
			return
		}
		slog.Error("Server.recordHandler: failed to load record", "error", err, "uid", uid)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load session record"))
		return
	}

	writeJSONResponse(w, http.StatusOK, models.Success(rec))
}
