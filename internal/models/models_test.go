package models

import (
	"errors"
	"strings"
	"testing"
)

func TestFlowForSession(t *testing.T) {
	tests := []struct {
		n    int
		want FlowType
	}{
		{1, FlowSession1},
		{2, FlowSession2},
		{3, FlowSession3},
		{4, FlowSession4},
	}
	for _, tc := range tests {
		ft, err := FlowForSession(tc.n)
		if err != nil {
			t.Errorf("FlowForSession(%d) error: %v", tc.n, err)
		}
		if ft != tc.want {
			t.Errorf("FlowForSession(%d) = %s, want %s", tc.n, ft, tc.want)
		}
		if ft.SessionNumber() != tc.n {
			t.Errorf("%s.SessionNumber() = %d, want %d", ft, ft.SessionNumber(), tc.n)
		}
	}

	for _, n := range []int{0, 5, -1} {
		if _, err := FlowForSession(n); !errors.Is(err, ErrInvalidSessionNumber) {
			t.Errorf("FlowForSession(%d) error = %v, want ErrInvalidSessionNumber", n, err)
		}
	}
}

func TestIsValidFlowType(t *testing.T) {
	if !IsValidFlowType(FlowSession3) {
		t.Error("session3 rejected")
	}
	if IsValidFlowType(FlowType("session9")) {
		t.Error("unknown flow accepted")
	}
}

func TestGoalValidate(t *testing.T) {
	confidence := 8
	valid := Goal{
		Description:    "Walk for 30 minutes every Tuesday",
		Confidence:     &confidence,
		Status:         GoalStatusActive,
		SessionCreated: 1,
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid goal rejected: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*Goal)
		wantErr error
	}{
		{"empty description", func(g *Goal) { g.Description = "  " }, ErrEmptyGoalDescription},
		{"overlong description", func(g *Goal) { g.Description = strings.Repeat("x", MaxGoalDescriptionLength+1) }, ErrGoalDescriptionLong},
		{"bad status", func(g *Goal) { g.Status = "paused" }, ErrInvalidGoalStatus},
		{"confidence too high", func(g *Goal) { c := 11; g.Confidence = &c }, ErrInvalidConfidence},
		{"confidence too low", func(g *Goal) { c := 0; g.Confidence = &c }, ErrInvalidConfidence},
		{"bad session", func(g *Goal) { g.SessionCreated = 5 }, ErrInvalidSessionNumber},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := valid
			tc.mutate(&g)
			if err := g.Validate(); !errors.Is(err, tc.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestUserProfileValidate(t *testing.T) {
	p := UserProfile{UID: "u1", Goals: []Goal{
		{Description: "Walk daily", Status: GoalStatusActive, SessionCreated: 1},
	}}
	if err := p.Validate(); err != nil {
		t.Errorf("valid profile rejected: %v", err)
	}

	p.UID = ""
	if err := p.Validate(); !errors.Is(err, ErrEmptyUID) {
		t.Errorf("Validate() = %v, want ErrEmptyUID", err)
	}

	p.UID = "u1"
	p.Goals[0].Status = "paused"
	if err := p.Validate(); !errors.Is(err, ErrInvalidGoalStatus) {
		t.Errorf("Validate() = %v, want wrapped goal error", err)
	}
}

func TestActiveGoals(t *testing.T) {
	p := UserProfile{UID: "u1", Goals: []Goal{
		{Description: "a", Status: GoalStatusActive, SessionCreated: 1},
		{Description: "b", Status: GoalStatusCompleted, SessionCreated: 1},
		{Description: "c", Status: GoalStatusDropped, SessionCreated: 2},
		{Description: "d", Status: GoalStatusActive, SessionCreated: 2},
	}}
	active := p.ActiveGoals()
	if len(active) != 2 {
		t.Fatalf("ActiveGoals returned %d goals, want 2", len(active))
	}
	if active[0].Description != "a" || active[1].Description != "d" {
		t.Errorf("ActiveGoals = %v", active)
	}
}

func TestSessionRecordValidate(t *testing.T) {
	rec := SessionRecord{
		UserProfile: UserProfile{UID: "u1"},
		SessionInfo: SessionInfo{SessionNumber: 2, CurrentState: "greetings", PathChosen: PathSame},
		ChatHistory: []ChatMessage{{Role: "user", Content: "hi"}},
	}
	if err := rec.Validate(); err != nil {
		t.Errorf("valid record rejected: %v", err)
	}

	bad := rec
	bad.SessionInfo.SessionNumber = 0
	if err := bad.Validate(); !errors.Is(err, ErrInvalidSessionNumber) {
		t.Errorf("Validate() = %v, want ErrInvalidSessionNumber", err)
	}

	bad = rec
	bad.SessionInfo.PathChosen = "sideways"
	if err := bad.Validate(); !errors.Is(err, ErrInvalidPathChoice) {
		t.Errorf("Validate() = %v, want ErrInvalidPathChoice", err)
	}

	bad = rec
	bad.ChatHistory = []ChatMessage{{Content: "missing role"}}
	if err := bad.Validate(); !errors.Is(err, ErrEmptyChatRole) {
		t.Errorf("Validate() = %v, want ErrEmptyChatRole", err)
	}
}
