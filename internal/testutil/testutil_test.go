package testutil

import (
	"net/http"
	"testing"
)

func TestNewTestServer(t *testing.T) {
	server := NewTestServer()
	if server == nil {
		t.Fatal("NewTestServer returned nil")
	}
	if server.Handler() == nil {
		t.Error("expected server handler to be created")
	}
}

func TestPostJSONAndDecodeOK(t *testing.T) {
	handler := NewTestServer().Handler()

	rr := PostJSON(t, handler, "/sessions", map[string]any{"session_number": 1})
	result := DecodeOK(t, rr, http.StatusCreated)

	if uid := ResultString(t, result, "uid"); uid == "" {
		t.Error("expected a minted uid in the result")
	}
	if state := ResultString(t, result, "state"); state == "" {
		t.Error("expected an initial state in the result")
	}
}

func TestGetReturnsRecorder(t *testing.T) {
	handler := NewTestServer().Handler()

	rr := Get(t, handler, "/records")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("GET /records without uid: status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
