package session

import (
	"strings"
	"testing"

	"github.com/BTreeMap/CoachPipe/internal/models"
	"github.com/BTreeMap/CoachPipe/internal/smarteval"
)

func newFollowUpMachine(t *testing.T, ft models.FlowType, previous ...models.Goal) Machine {
	t.Helper()
	rec := NewRecord("test-uid", ft)
	rec.UserName = "Dana"
	rec.PreviousGoals = previous
	m, err := New(ft, rec, smarteval.HeuristicEvaluator{})
	if err != nil {
		t.Fatalf("New(%s) failed: %v", ft, err)
	}
	return m
}

func walkGoal() models.Goal {
	return models.Goal{Description: "Walk for 30 minutes every Tuesday", Status: models.GoalStatusActive, SessionCreated: 1}
}

func TestFollowUpEndSessionLatch(t *testing.T) {
	m := newFollowUpMachine(t, models.FlowSession2)
	m.SetState(models.StateFUEndSession)
	m.Record().FinalGoodbyeGiven = true

	res := m.ProcessInput(t.Context(), "wait, one more thing", nil)
	if res.NextState != "" {
		t.Errorf("latched session recommended transition to %s", res.NextState)
	}
	if res.TriggerRetrieval {
		t.Error("latched session turn should not trigger retrieval")
	}
}

func TestFollowUpPathSelection(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantPath  models.PathChoice
		wantState models.StateType
	}{
		{
			name:      "same goal",
			input:     "keep the same goal please",
			wantPath:  models.PathSame,
			wantState: models.StateFUSameSuccessesChallenges,
		},
		{
			name:      "keep plus add",
			input:     "keep it plus add a new one",
			wantPath:  models.PathDifferent,
			wantState: models.StateFUDifferentKeepingAndNew,
		},
		{
			name:      "completely new",
			input:     "something completely different",
			wantPath:  models.PathNew,
			wantState: models.StateFUJustNewGoals,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := newFollowUpMachine(t, models.FlowSession2, walkGoal())
			m.SetState(models.StateFUGoalsForNextWeek)

			runTurn(t, m, tc.input, nil)
			rec := m.Record()
			if rec.PathChosen != tc.wantPath {
				t.Errorf("PathChosen = %s, want %s", rec.PathChosen, tc.wantPath)
			}
			if m.State() != tc.wantState {
				t.Errorf("state = %s, want %s", m.State(), tc.wantState)
			}
		})
	}
}

func TestFollowUpSamePathWidensToAdd(t *testing.T) {
	m := newFollowUpMachine(t, models.FlowSession2, walkGoal())
	m.SetState(models.StateFUGoalsForNextWeek)
	m.Record().PathChosen = models.PathSame

	runTurn(t, m, "actually I also want to add one", nil)
	rec := m.Record()
	if rec.PathChosen != models.PathDifferent {
		t.Errorf("PathChosen = %s, want %s after widening", rec.PathChosen, models.PathDifferent)
	}
	if len(rec.GoalsToKeep) != 1 || rec.GoalsToKeep[0] != walkGoal().Description {
		t.Errorf("GoalsToKeep = %v, want the previous goal carried over", rec.GoalsToKeep)
	}
	if m.State() != models.StateFUDifferentKeepingAndNew {
		t.Errorf("state = %s, want %s", m.State(), models.StateFUDifferentKeepingAndNew)
	}
}

func TestFollowUpAmbiguousPathStays(t *testing.T) {
	m := newFollowUpMachine(t, models.FlowSession2, walkGoal())
	m.SetState(models.StateFUGoalsForNextWeek)

	res := runTurn(t, m, "hmm let me think", nil)
	if res.NextState != "" {
		t.Errorf("ambiguous path reply recommended transition to %s", res.NextState)
	}
	if m.Record().PathChosen != "" {
		t.Errorf("PathChosen = %s, want unset", m.Record().PathChosen)
	}
}

// TestFollowUpRefinementAccumulatesFragments verifies fragments join across
// turns and the refinement cap finalizes the goal even when it never
// becomes fully measurable.
func TestFollowUpRefinementAccumulatesFragments(t *testing.T) {
	m := newFollowUpMachine(t, models.FlowSession3)
	rec := m.Record()
	rec.PathChosen = models.PathNew
	rec.GoalFragments = []string{"go swimming at the pool"}
	m.SetState(models.StateFURefineGoal)

	fragments := []string{
		"the community pool near work",
		"probably in the evenings",
		"with my sister most weeks",
	}
	for i, fragment := range fragments {
		runTurn(t, m, fragment, nil)
		if i < len(fragments)-1 {
			if m.State() != models.StateFURefineGoal {
				t.Fatalf("fragment %d: left refinement early, state = %s", i, m.State())
			}
		}
	}

	if m.State() != models.StateFUConfidenceCheck {
		t.Fatalf("state = %s, want %s after refinement cap", m.State(), models.StateFUConfidenceCheck)
	}
	if rec.Goals.Len() != 1 {
		t.Fatalf("goals stored = %d, want 1", rec.Goals.Len())
	}
	if rec.GoalFragments != nil {
		t.Errorf("GoalFragments = %v, want cleared after finalize", rec.GoalFragments)
	}
	if !strings.Contains(rec.Goals.Entries()[0].Text, "pool") {
		t.Errorf("stored goal %q lost the accumulated fragments", rec.Goals.Entries()[0].Text)
	}
}

func TestFollowUpSmartGoalSkipsRefinement(t *testing.T) {
	m := newFollowUpMachine(t, models.FlowSession2)
	m.Record().PathChosen = models.PathNew
	m.SetState(models.StateFUJustNewGoals)

	runTurn(t, m, "I want to walk for 30 minutes every Tuesday and Thursday", nil)
	if m.State() != models.StateFUConfidenceCheck {
		t.Fatalf("state = %s, want %s for an already-SMART goal", m.State(), models.StateFUConfidenceCheck)
	}
	rec := m.Record()
	if rec.Goals.Len() != 1 {
		t.Fatalf("goals stored = %d, want 1", rec.Goals.Len())
	}
	// Storage uses the condensed phrasing, filler stripped.
	if strings.Contains(strings.ToLower(rec.Goals.Entries()[0].Text), "i want to") {
		t.Errorf("stored goal %q kept the filler phrase", rec.Goals.Entries()[0].Text)
	}
}

func TestFollowUpConfidenceRouting(t *testing.T) {
	t.Run("seven is low and explores first", func(t *testing.T) {
		m := newFollowUpMachine(t, models.FlowSession2)
		m.SetState(models.StateFUConfidenceCheck)

		runTurn(t, m, "7", nil)
		if m.State() != models.StateFULowConfidence {
			t.Errorf("state = %s, want %s for confidence 7", m.State(), models.StateFULowConfidence)
		}
		if !m.Record().ExploredLowConfidence {
			t.Error("ExploredLowConfidence not set")
		}
	})

	t.Run("high confidence on same path ends session", func(t *testing.T) {
		m := newFollowUpMachine(t, models.FlowSession2, walkGoal())
		m.Record().PathChosen = models.PathSame
		m.SetState(models.StateFUConfidenceCheck)

		runTurn(t, m, "9", nil)
		if m.State() != models.StateFUEndSession {
			t.Errorf("state = %s, want %s", m.State(), models.StateFUEndSession)
		}
		if !m.Record().FinalGoodbyeGiven {
			t.Error("FinalGoodbyeGiven not latched")
		}
	})

	t.Run("high confidence on new path asks about tracking", func(t *testing.T) {
		m := newFollowUpMachine(t, models.FlowSession2)
		m.Record().PathChosen = models.PathNew
		m.SetState(models.StateFUConfidenceCheck)

		runTurn(t, m, "8", nil)
		if m.State() != models.StateFURememberGoal {
			t.Errorf("state = %s, want %s", m.State(), models.StateFURememberGoal)
		}
	})
}

func TestFollowUpStressRoutesToDiscoveryBacklog(t *testing.T) {
	m := newFollowUpMachine(t, models.FlowSession2)
	m.Record().DiscoveryQueue = []string{"current_eating", "free_time"}
	m.SetState(models.StateFUStressLevel)

	runTurn(t, m, "about a 4", nil)
	if m.State() != models.StateFUDiscoveryQuestions {
		t.Errorf("state = %s, want %s with discovery backlog", m.State(), models.StateFUDiscoveryQuestions)
	}
	if m.Record().StressLevel == nil || *m.Record().StressLevel != 4 {
		t.Errorf("StressLevel = %v, want 4", m.Record().StressLevel)
	}
}

func TestFollowUpMoreGoalsDeclineEndsSession(t *testing.T) {
	m := newFollowUpMachine(t, models.FlowSession3)
	m.SetState(models.StateFUMoreGoalsCheck)

	res := runTurn(t, m, "nope, that covers it", nil)
	if m.State() != models.StateFUEndSession {
		t.Fatalf("state = %s, want %s", m.State(), models.StateFUEndSession)
	}
	if !m.Record().FinalGoodbyeGiven {
		t.Error("FinalGoodbyeGiven not latched")
	}
	if !strings.Contains(res.Context, "Session 3") {
		t.Errorf("goodbye directive %q missing session number", res.Context)
	}
}
