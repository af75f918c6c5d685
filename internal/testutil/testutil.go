// Package testutil provides shared helpers for exercising the coaching API
// in tests. It wires the in-memory store and the heuristic evaluator so no
// database or model key is needed.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BTreeMap/CoachPipe/internal/api"
	"github.com/BTreeMap/CoachPipe/internal/models"
	"github.com/BTreeMap/CoachPipe/internal/session"
	"github.com/BTreeMap/CoachPipe/internal/smarteval"
	"github.com/BTreeMap/CoachPipe/internal/store"
)

// NewTestServer builds an API server backed by in-memory dependencies.
func NewTestServer() *api.Server {
	st := store.NewInMemoryStore()
	runner := session.NewRunner(st, smarteval.HeuristicEvaluator{})
	return api.NewServer(runner, st)
}

// PostJSON sends a JSON POST through the handler and returns the recorder.
func PostJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request body for %s: %v", path, err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// Get sends a GET through the handler and returns the recorder.
func Get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// DecodeOK asserts the HTTP status code and the "ok" envelope status, then
// returns the decoded result payload (nil when the response carries none).
func DecodeOK(t *testing.T, rr *httptest.ResponseRecorder, wantCode int) map[string]any {
	t.Helper()
	if rr.Code != wantCode {
		t.Fatalf("status code = %d, want %d (body: %s)", rr.Code, wantCode, rr.Body.String())
	}

	var resp struct {
		Status  string         `json:"status"`
		Message string         `json:"message"`
		Result  map[string]any `json:"result"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response envelope: %v (body: %s)", err, rr.Body.String())
	}
	if resp.Status != string(models.APIStatusOK) {
		t.Fatalf("envelope status = %q (message %q), want %q", resp.Status, resp.Message, models.APIStatusOK)
	}
	return resp.Result
}

// ResultString pulls a string field out of a decoded result payload.
func ResultString(t *testing.T, result map[string]any, key string) string {
	t.Helper()
	val, ok := result[key].(string)
	if !ok {
		t.Fatalf("result[%q] = %v, want a string", key, result[key])
	}
	return val
}
