package main

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/BTreeMap/CoachPipe/internal/testutil"
)

// Drives a first-session opening over the HTTP surface: create, converse,
// record the coach reply, read the persisted record back, end the session.
func TestServerSessionLifecycle(t *testing.T) {
	handler := testutil.NewTestServer().Handler()

	rr := testutil.PostJSON(t, handler, "/sessions", map[string]any{"session_number": 1})
	created := testutil.DecodeOK(t, rr, http.StatusCreated)
	uid := testutil.ResultString(t, created, "uid")
	if uid == "" {
		t.Fatal("expected a minted uid")
	}
	if state := testutil.ResultString(t, created, "state"); state != "greetings" {
		t.Fatalf("initial state = %q, want greetings", state)
	}

	rr = testutil.PostJSON(t, handler, "/replies", map[string]any{
		"uid":     uid,
		"content": "Welcome! I'm your health coach for this four-session program. What's your name?",
	})
	report := testutil.DecodeOK(t, rr, http.StatusOK)
	if valid, ok := report["valid"].(bool); !ok || !valid {
		t.Errorf("greeting reply flagged as boundary violation: %v", report)
	}

	rr = testutil.PostJSON(t, handler, "/turns", map[string]any{"uid": uid, "input": "Hi, I'm Dana!"})
	turn := testutil.DecodeOK(t, rr, http.StatusOK)
	if state := testutil.ResultString(t, turn, "state"); state != "program_details" {
		t.Fatalf("state after introduction = %q, want program_details", state)
	}

	rr = testutil.Get(t, handler, fmt.Sprintf("/records?uid=%s&session=1", uid))
	record := testutil.DecodeOK(t, rr, http.StatusOK)
	profile, ok := record["user_profile"].(map[string]any)
	if !ok {
		t.Fatalf("record missing user_profile: %v", record)
	}
	if name, _ := profile["name"].(string); name != "Dana" {
		t.Errorf("persisted name = %q, want Dana", name)
	}

	rr = testutil.PostJSON(t, handler, "/sessions/end", map[string]any{"uid": uid})
	testutil.DecodeOK(t, rr, http.StatusOK)

	rr = testutil.PostJSON(t, handler, "/turns", map[string]any{"uid": uid, "input": "hello again"})
	if rr.Code != http.StatusNotFound {
		t.Errorf("turn after end: status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}
