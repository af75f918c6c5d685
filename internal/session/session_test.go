package session

import (
	"context"
	"testing"

	"github.com/BTreeMap/CoachPipe/internal/models"
	"github.com/BTreeMap/CoachPipe/internal/smarteval"
)

// runTurn processes one input and applies the recommended transition the
// way the runner does.
func runTurn(t *testing.T, m Machine, input string, history []models.ChatMessage) models.StateResult {
	t.Helper()
	res := m.ProcessInput(context.Background(), input, history)
	if res.NextState != "" {
		m.SetState(res.NextState)
	}
	return res
}

func newMachine(t *testing.T, ft models.FlowType) Machine {
	t.Helper()
	m, err := New(ft, NewRecord("test-uid", ft), smarteval.HeuristicEvaluator{})
	if err != nil {
		t.Fatalf("New(%s) failed: %v", ft, err)
	}
	return m
}

func TestNewMachineForEachFlow(t *testing.T) {
	tests := []struct {
		flow      models.FlowType
		wantState models.StateType
	}{
		{models.FlowSession1, models.StateS1Greetings},
		{models.FlowSession2, models.StateFUGreetings},
		{models.FlowSession3, models.StateFUGreetings},
		{models.FlowSession4, models.StateS4Greetings},
	}
	for _, tc := range tests {
		m := newMachine(t, tc.flow)
		if m.Flow() != tc.flow {
			t.Errorf("flow %s: Flow() = %s", tc.flow, m.Flow())
		}
		if m.State() != tc.wantState {
			t.Errorf("flow %s: initial state = %s, want %s", tc.flow, m.State(), tc.wantState)
		}
	}
}

func TestNewUnknownFlow(t *testing.T) {
	rec := NewRecord("test-uid", models.FlowSession1)
	if _, err := New(models.FlowType("session9"), rec, smarteval.HeuristicEvaluator{}); err == nil {
		t.Error("expected error for unregistered flow")
	}
}

func TestSeedFromProfileQueuesUnansweredDiscovery(t *testing.T) {
	rec := NewRecord("test-uid", models.FlowSession2)
	rec.SeedFromProfile(models.UserProfile{
		UID:  "test-uid",
		Name: "Dana",
		Goals: []models.Goal{
			{Description: "Walk daily", Status: models.GoalStatusActive, SessionCreated: 1},
			{Description: "Old goal", Status: models.GoalStatusDropped, SessionCreated: 1},
		},
		DiscoveryAnswers: map[string]string{
			"general_about": "busy parent",
			"current_sleep": "6 hours",
		},
	})

	if rec.UserName != "Dana" {
		t.Errorf("UserName = %q, want Dana", rec.UserName)
	}
	if len(rec.PreviousGoals) != 1 || rec.PreviousGoals[0].Description != "Walk daily" {
		t.Errorf("PreviousGoals = %v, want only the active goal", rec.PreviousGoals)
	}

	want := []string{"current_exercise", "current_eating", "free_time"}
	if len(rec.DiscoveryQueue) != len(want) {
		t.Fatalf("DiscoveryQueue = %v, want %v", rec.DiscoveryQueue, want)
	}
	for i, topic := range want {
		if rec.DiscoveryQueue[i] != topic {
			t.Errorf("DiscoveryQueue[%d] = %q, want %q", i, rec.DiscoveryQueue[i], topic)
		}
	}
}

func TestSnapshotRecomputesGoalStatusByPath(t *testing.T) {
	previous := []models.Goal{
		{Description: "Walk daily", Status: models.GoalStatusActive, SessionCreated: 1},
		{Description: "Sleep 8 hours", Status: models.GoalStatusActive, SessionCreated: 1},
	}

	tests := []struct {
		name        string
		path        models.PathChoice
		goalsToKeep []string
		wantStatus  map[string]models.GoalStatus
	}{
		{
			name: "new path drops all previous goals",
			path: models.PathNew,
			wantStatus: map[string]models.GoalStatus{
				"Walk daily":    models.GoalStatusDropped,
				"Sleep 8 hours": models.GoalStatusDropped,
			},
		},
		{
			name:        "different path keeps only named goals",
			path:        models.PathDifferent,
			goalsToKeep: []string{"Walk daily"},
			wantStatus: map[string]models.GoalStatus{
				"Walk daily":    models.GoalStatusActive,
				"Sleep 8 hours": models.GoalStatusDropped,
			},
		},
		{
			name: "same path keeps everything active",
			path: models.PathSame,
			wantStatus: map[string]models.GoalStatus{
				"Walk daily":    models.GoalStatusActive,
				"Sleep 8 hours": models.GoalStatusActive,
			},
		},
		{
			name: "unset path keeps everything active",
			wantStatus: map[string]models.GoalStatus{
				"Walk daily":    models.GoalStatusActive,
				"Sleep 8 hours": models.GoalStatusActive,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := NewRecord("test-uid", models.FlowSession2)
			rec.PreviousGoals = previous
			rec.PathChosen = tc.path
			rec.GoalsToKeep = tc.goalsToKeep

			snap := rec.Snapshot(models.StateFUEndSession, nil)
			if len(snap.UserProfile.Goals) != len(previous) {
				t.Fatalf("snapshot has %d goals, want %d", len(snap.UserProfile.Goals), len(previous))
			}
			for _, g := range snap.UserProfile.Goals {
				if g.Status != tc.wantStatus[g.Description] {
					t.Errorf("goal %q status = %s, want %s", g.Description, g.Status, tc.wantStatus[g.Description])
				}
			}
		})
	}
}

func TestSeedFromProfileRetainsRetiredGoals(t *testing.T) {
	rec := NewRecord("test-uid", models.FlowSession3)
	rec.SeedFromProfile(models.UserProfile{
		UID: "test-uid",
		Goals: []models.Goal{
			{Description: "Walk daily", Status: models.GoalStatusActive, SessionCreated: 1},
			{Description: "Old goal", Status: models.GoalStatusDropped, SessionCreated: 1},
			{Description: "Done goal", Status: models.GoalStatusCompleted, SessionCreated: 2},
		},
	})

	if len(rec.RetiredGoals) != 2 {
		t.Fatalf("RetiredGoals = %v, want the dropped and completed goals", rec.RetiredGoals)
	}

	// Retired history writes through the snapshot untouched.
	snap := rec.Snapshot(models.StateFUGreetings, nil)
	status := make(map[string]models.GoalStatus)
	for _, g := range snap.UserProfile.Goals {
		status[g.Description] = g.Status
	}
	if status["Old goal"] != models.GoalStatusDropped || status["Done goal"] != models.GoalStatusCompleted {
		t.Errorf("retired statuses = %v", status)
	}
}

func TestRestoreFromRecordRoundTrip(t *testing.T) {
	rec := NewRecord("test-uid", models.FlowSession2)
	rec.UserName = "Dana"
	rec.PreviousGoals = []models.Goal{
		{Description: "Walk daily", Status: models.GoalStatusActive, SessionCreated: 1},
	}
	rec.RetiredGoals = []models.Goal{
		{Description: "Old goal", Status: models.GoalStatusDropped, SessionCreated: 1},
	}
	rec.PathChosen = models.PathNew
	stress := 4
	rec.StressLevel = &stress
	confidence := 8
	rec.Confidence = &confidence
	rec.markAsked("greeting")
	rec.markAsked("stress_level")
	rec.ExploredLowConfidence = true
	rec.TrackingDiscussed = true
	rec.TurnCount = 9
	if !rec.Goals.Store("Get 8 hours of sleep on weeknights", &confidence, nil, 1) {
		t.Fatal("goal was not stored")
	}

	snap := rec.Snapshot(models.StateFUConfidenceCheck, nil)

	restored := NewRecord("test-uid", models.FlowSession2)
	restored.RestoreFromRecord(snap)

	if restored.UserName != "Dana" {
		t.Errorf("UserName = %q, want Dana", restored.UserName)
	}
	if restored.PathChosen != models.PathNew {
		t.Errorf("PathChosen = %s, want %s", restored.PathChosen, models.PathNew)
	}
	if restored.StressLevel == nil || *restored.StressLevel != 4 {
		t.Errorf("StressLevel = %v, want 4", restored.StressLevel)
	}
	if restored.Confidence == nil || *restored.Confidence != 8 {
		t.Errorf("Confidence = %v, want 8", restored.Confidence)
	}
	if !restored.hasAsked("greeting") || !restored.hasAsked("stress_level") {
		t.Errorf("QuestionsAsked = %v", restored.QuestionsAsked)
	}
	if !restored.ExploredLowConfidence || !restored.TrackingDiscussed {
		t.Error("one-shot flags were not restored")
	}
	if restored.TurnCount != 9 {
		t.Errorf("TurnCount = %d, want 9", restored.TurnCount)
	}

	// The goal set mid-session reloads into the book, not PreviousGoals.
	if restored.Goals.Len() != 1 || restored.Goals.Entries()[0].Text != "Get 8 hours of sleep on weeknights" {
		t.Errorf("book entries = %v", restored.Goals.Entries())
	}
	if len(restored.PreviousGoals) != 0 {
		t.Errorf("PreviousGoals = %v, want none on the new path", restored.PreviousGoals)
	}

	// The carried goal the new path dropped stays dropped across another
	// snapshot instead of vanishing.
	resnap := restored.Snapshot(models.StateFUConfidenceCheck, nil)
	status := make(map[string]models.GoalStatus)
	for _, g := range resnap.UserProfile.Goals {
		status[g.Description] = g.Status
	}
	if status["Walk daily"] != models.GoalStatusDropped {
		t.Errorf("carried goal after round trip = %v", status)
	}
	if status["Old goal"] != models.GoalStatusDropped {
		t.Errorf("retired goal after round trip = %v", status)
	}
	if status["Get 8 hours of sleep on weeknights"] != models.GoalStatusActive {
		t.Errorf("session goal after round trip = %v", status)
	}
}

func TestSnapshotStampsStressOnSessionGoals(t *testing.T) {
	rec := NewRecord("test-uid", models.FlowSession2)
	stress := 6
	rec.StressLevel = &stress
	rec.PreviousGoals = []models.Goal{
		{Description: "Walk daily", Status: models.GoalStatusActive, SessionCreated: 1},
	}
	if !rec.Goals.Store("Get 8 hours of sleep on weeknights", nil, nil, 0) {
		t.Fatal("goal was not stored")
	}

	snap := rec.Snapshot(models.StateFUEndSession, nil)
	for _, g := range snap.UserProfile.Goals {
		switch g.Description {
		case "Get 8 hours of sleep on weeknights":
			if g.StressAtCreation == nil || *g.StressAtCreation != 6 {
				t.Errorf("StressAtCreation = %v, want 6", g.StressAtCreation)
			}
		case "Walk daily":
			// Carried goals keep the stress from the session that set them.
			if g.StressAtCreation != nil {
				t.Errorf("carried goal StressAtCreation = %v, want unset", g.StressAtCreation)
			}
		}
	}
}

func TestSnapshotIncludesSessionGoals(t *testing.T) {
	rec := NewRecord("test-uid", models.FlowSession3)
	if !rec.Goals.Store("Walk for 30 minutes every Tuesday and Thursday", nil, nil, 1) {
		t.Fatal("goal was not stored")
	}

	snap := rec.Snapshot(models.StateFUEndSession, []models.ChatMessage{
		{Role: "user", Content: "hi"},
	})
	if err := snap.Validate(); err != nil {
		t.Fatalf("snapshot failed validation: %v", err)
	}
	if snap.SessionInfo.SessionNumber != 3 {
		t.Errorf("SessionNumber = %d, want 3", snap.SessionInfo.SessionNumber)
	}
	if snap.SessionInfo.CurrentState != models.StateFUEndSession {
		t.Errorf("CurrentState = %s, want %s", snap.SessionInfo.CurrentState, models.StateFUEndSession)
	}
	if len(snap.UserProfile.Goals) != 1 {
		t.Fatalf("snapshot has %d goals, want 1", len(snap.UserProfile.Goals))
	}
	g := snap.UserProfile.Goals[0]
	if g.Status != models.GoalStatusActive {
		t.Errorf("new goal status = %s, want active", g.Status)
	}
	if g.SessionCreated != 3 {
		t.Errorf("SessionCreated = %d, want 3", g.SessionCreated)
	}
	if len(snap.ChatHistory) != 1 {
		t.Errorf("ChatHistory has %d messages, want 1", len(snap.ChatHistory))
	}
}
