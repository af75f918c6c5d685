package smarteval

import (
	"context"
	"errors"
	"testing"
)

type fakeJudge struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeJudge) EvaluateGoal(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

const fullVerdict = `{
	"specific": {"met": true, "issue": ""},
	"measurable": {"met": false, "issue": "No numbers or quantities"},
	"achievable": {"met": true, "issue": ""},
	"relevant": {"met": true, "issue": ""},
	"timebound": {"met": false, "issue": "No frequency or deadline"},
	"suggestions": "Add how often and for how long"
}`

func TestLLMEvaluatorParsesVerdict(t *testing.T) {
	judge := &fakeJudge{response: fullVerdict}
	e := NewLLMEvaluator(judge)

	analysis := e.Evaluate(t.Context(), "walk more")
	if analysis.IsSmart {
		t.Error("IsSmart = true with two criteria unmet")
	}
	if !analysis.Specific || analysis.Measurable || !analysis.Achievable || !analysis.Relevant || analysis.TimeBound {
		t.Errorf("criteria flags wrong: %+v", analysis)
	}
	if len(analysis.Missing) != 2 || analysis.Missing[0] != "MEASURABLE" || analysis.Missing[1] != "TIMEBOUND" {
		t.Errorf("Missing = %v", analysis.Missing)
	}
	if analysis.Feedback != "Add how often and for how long" {
		t.Errorf("Feedback = %q", analysis.Feedback)
	}
	if len(judge.prompts) != 1 {
		t.Fatalf("judge called %d times, want 1", len(judge.prompts))
	}
}

func TestLLMEvaluatorStripsCodeFences(t *testing.T) {
	judge := &fakeJudge{response: "```json\n" + fullVerdict + "\n```"}
	e := NewLLMEvaluator(judge)

	analysis := e.Evaluate(t.Context(), "walk more")
	if len(analysis.Missing) != 2 {
		t.Errorf("fenced verdict not parsed: Missing = %v", analysis.Missing)
	}
}

func TestLLMEvaluatorFallsBackOnError(t *testing.T) {
	judge := &fakeJudge{err: errors.New("model unavailable")}
	e := NewLLMEvaluator(judge)

	// The heuristic should take over without surfacing an error.
	analysis := e.Evaluate(t.Context(), "Walk for 30 minutes every Tuesday and Thursday")
	if !analysis.IsSmart {
		t.Errorf("heuristic fallback: IsSmart = false, analysis = %+v", analysis)
	}
}

func TestLLMEvaluatorFallsBackOnMalformedJSON(t *testing.T) {
	judge := &fakeJudge{response: "Sure! That goal looks great to me."}
	e := NewLLMEvaluator(judge)

	analysis := e.Evaluate(t.Context(), "eat better")
	if analysis.IsSmart {
		t.Error("vague goal should fail the heuristic fallback")
	}
}

func TestLLMEvaluatorFallsBackOnMissingFields(t *testing.T) {
	judge := &fakeJudge{response: `{"specific": {"met": true}, "suggestions": "ok"}`}
	e := NewLLMEvaluator(judge)

	analysis := e.Evaluate(t.Context(), "Walk for 30 minutes every Tuesday and Thursday")
	if !analysis.IsSmart {
		t.Error("partial verdict should fall back to the heuristic")
	}
}

func TestHeuristicCheck(t *testing.T) {
	tests := []struct {
		goal        string
		wantSmart   bool
		wantMissing []string
	}{
		{
			goal:      "Walk for 30 minutes every Tuesday and Thursday",
			wantSmart: true,
		},
		{
			goal:        "exercise more",
			wantSmart:   false,
			wantMissing: []string{"SPECIFIC", "MEASURABLE", "TIMEBOUND"},
		},
		{
			goal:        "walk every day",
			wantSmart:   false,
			wantMissing: []string{"MEASURABLE"},
		},
		{
			goal:        "walk 30 minutes sometime",
			wantSmart:   false,
			wantMissing: []string{"TIMEBOUND"},
		},
	}

	for _, tc := range tests {
		analysis := HeuristicCheck(tc.goal)
		if analysis.IsSmart != tc.wantSmart {
			t.Errorf("HeuristicCheck(%q).IsSmart = %t, want %t", tc.goal, analysis.IsSmart, tc.wantSmart)
		}
		if len(analysis.Missing) != len(tc.wantMissing) {
			t.Errorf("HeuristicCheck(%q).Missing = %v, want %v", tc.goal, analysis.Missing, tc.wantMissing)
			continue
		}
		for i, m := range tc.wantMissing {
			if analysis.Missing[i] != m {
				t.Errorf("HeuristicCheck(%q).Missing[%d] = %s, want %s", tc.goal, i, analysis.Missing[i], m)
			}
		}
	}
}

func TestHeuristicNumbersAnchorVagueWords(t *testing.T) {
	// "more" alone is vague, but a number makes it concrete.
	vague := HeuristicCheck("run more every week")
	if vague.Specific {
		t.Error("vague goal without numbers marked specific")
	}
	anchored := HeuristicCheck("run 5 more kilometers every week")
	if !anchored.Specific {
		t.Error("numbered goal still marked vague")
	}
}

func TestConciseGoal(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"I want to walk 30 minutes every Tuesday", "Walk 30 minutes every tuesday"},
		{"my goal is to sleep 8 hours nightly", "Sleep 8 hours nightly"},
		{"walk daily", "Walk daily"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := ConciseGoal(tc.input); got != tc.want {
			t.Errorf("ConciseGoal(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
