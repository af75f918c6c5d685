package session

import (
	"strings"
	"testing"

	"github.com/BTreeMap/CoachPipe/internal/models"
)

// TestSession1FullConversation walks the onboarding flow end to end:
// greeting, program Q&A, all five discovery questions, a vague first goal
// refined into a SMART one, confidence, tracking, and wrap-up.
func TestSession1FullConversation(t *testing.T) {
	m := newMachine(t, models.FlowSession1)

	steps := []struct {
		input     string
		wantState models.StateType
	}{
		{models.StartSessionSentinel, models.StateS1Greetings},
		{"Hi, I'm Dana!", models.StateS1ProgramDetails},
		{"Yes, I have one question", models.StateS1AnsweringQuestion},
		{"No, I'm ready to start", models.StateS1PromptTalkAboutSelf},
		{"Sounds good", models.StateS1GettingToKnowYou},
		// Intro turn plus the five discovery answers.
		{"Happy to share", models.StateS1GettingToKnowYou},
		{"I spend most of my days at a desk job", models.StateS1GettingToKnowYou},
		{"I rarely exercise these days", models.StateS1GettingToKnowYou},
		{"About 6 hours of sleep a night", models.StateS1GettingToKnowYou},
		{"Lots of takeout meals", models.StateS1GettingToKnowYou},
		{"Mostly video games", models.StateS1Goals},
		{"I want to walk more", models.StateS1CheckSmart},
		{"ok", models.StateS1RefineGoal},
		{"I will walk for 30 minutes every Tuesday and Thursday", models.StateS1ConfidenceCheck},
		{"I'd say 8", models.StateS1HighConfidence},
		{"No, just this one for now", models.StateS1RememberGoal},
		{"I'll set a reminder on my phone", models.StateS1RememberGoal},
		{"No, that's all. Bye!", models.StateS1EndSession},
		{"thanks", models.StateS1EndSession},
	}

	for i, step := range steps {
		runTurn(t, m, step.input, nil)
		if m.State() != step.wantState {
			t.Fatalf("step %d (%q): state = %s, want %s", i, step.input, m.State(), step.wantState)
		}
	}

	rec := m.Record()
	if rec.UserName != "Dana" {
		t.Errorf("UserName = %q, want Dana", rec.UserName)
	}
	if rec.Goals.Len() != 1 {
		t.Fatalf("goals stored = %d, want 1", rec.Goals.Len())
	}
	entry := rec.Goals.Entries()[0]
	if !strings.Contains(entry.Text, "30 minutes") {
		t.Errorf("stored goal %q missing the refined detail", entry.Text)
	}
	if entry.Confidence == nil || *entry.Confidence != 8 {
		t.Errorf("stored confidence = %v, want 8", entry.Confidence)
	}
	if len(rec.DiscoveryAnswers) != 5 {
		t.Errorf("discovery answers recorded = %d, want 5", len(rec.DiscoveryAnswers))
	}
	if got := rec.DiscoveryAnswers["current_sleep"]; got != "About 6 hours of sleep a night" {
		t.Errorf("current_sleep = %q", got)
	}
	if !rec.TrackingDiscussed {
		t.Error("TrackingDiscussed = false after tracking turn")
	}
}

func TestSession1SentinelStaysInGreetings(t *testing.T) {
	m := newMachine(t, models.FlowSession1)
	res := m.ProcessInput(t.Context(), models.StartSessionSentinel, nil)
	if res.NextState != "" {
		t.Errorf("sentinel recommended transition to %s", res.NextState)
	}
	if res.Context == "" {
		t.Error("sentinel turn returned empty directive")
	}
}

func TestSession1ProgramQuestionSkipsRetrieval(t *testing.T) {
	m := newMachine(t, models.FlowSession1)
	m.SetState(models.StateS1ProgramDetails)

	res := runTurn(t, m, "Yes, how long are the sessions?", nil)
	if m.State() != models.StateS1AnsweringQuestion {
		t.Fatalf("state = %s, want %s", m.State(), models.StateS1AnsweringQuestion)
	}
	if res.TriggerRetrieval {
		t.Error("program Q&A turn should not trigger retrieval")
	}
	if !strings.Contains(res.Context, ProgramInfo) {
		t.Error("directive missing program info")
	}
}

func TestSession1LowConfidenceAtSeven(t *testing.T) {
	m := newMachine(t, models.FlowSession1)
	rec := m.Record()
	rec.CurrentGoal = "Walk for 30 minutes every Tuesday and Thursday"
	rec.Goals.Store(rec.CurrentGoal, nil, nil, 0)
	m.SetState(models.StateS1ConfidenceCheck)

	runTurn(t, m, "maybe a 7", nil)
	if m.State() != models.StateS1LowConfidence {
		t.Errorf("state = %s, want %s for confidence 7", m.State(), models.StateS1LowConfidence)
	}
	if rec.Confidence == nil || *rec.Confidence != 7 {
		t.Errorf("Confidence = %v, want 7", rec.Confidence)
	}
}

func TestSession1ConfidenceNeedsNumber(t *testing.T) {
	m := newMachine(t, models.FlowSession1)
	m.SetState(models.StateS1ConfidenceCheck)

	res := runTurn(t, m, "pretty confident I guess", nil)
	if m.State() != models.StateS1ConfidenceCheck {
		t.Errorf("state = %s, want to stay in confidence check", m.State())
	}
	if res.NextState != "" {
		t.Errorf("non-numeric confidence recommended transition to %s", res.NextState)
	}
}

func TestSession1RefinementCapAcceptsGoal(t *testing.T) {
	m := newMachine(t, models.FlowSession1)
	rec := m.Record()
	rec.CurrentGoal = "get in better shape somehow soon"
	m.SetState(models.StateS1RefineGoal)

	// Fragments that never become measurable; the cap forces acceptance.
	inputs := []string{
		"I want to move my body each evening",
		"I want to go walking in the evenings",
		"I want to walk around the local park",
		"I want to walk with a friend after dinner",
	}
	for i, input := range inputs {
		runTurn(t, m, input, nil)
		if i < len(inputs)-1 && m.State() != models.StateS1RefineGoal {
			t.Fatalf("input %d (%q): left refinement early, state = %s", i, input, m.State())
		}
	}
	if m.State() != models.StateS1ConfidenceCheck {
		t.Fatalf("state = %s, want %s after hitting the refinement cap", m.State(), models.StateS1ConfidenceCheck)
	}
	if rec.Goals.Len() != 1 {
		t.Errorf("goals stored = %d, want 1", rec.Goals.Len())
	}
}

func TestSession1EndSessionWithoutGoalReturnsToGoals(t *testing.T) {
	m := newMachine(t, models.FlowSession1)
	m.SetState(models.StateS1EndSession)

	runTurn(t, m, "bye", nil)
	if m.State() != models.StateS1Goals {
		t.Errorf("state = %s, want %s when no goal was set", m.State(), models.StateS1Goals)
	}
}
