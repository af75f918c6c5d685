package goal

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/BTreeMap/CoachPipe/internal/models"
)

func TestIsStorable(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"Walk for 30 minutes every Tuesday and Thursday", true},
		{"Get 8 hours of sleep on weeknights", true},
		{"yes", false},
		{"that's all for me", false},
		{"how about walking instead?", false},
		{"walk daily", false}, // too short
	}
	for _, tc := range tests {
		if got := IsStorable(tc.input); got != tc.want {
			t.Errorf("IsStorable(%q) = %t, want %t", tc.input, got, tc.want)
		}
	}
}

func TestBookStoreDeduplicates(t *testing.T) {
	b := NewBook(1)

	// Both texts share the leading 50 characters, so they count as the
	// same goal and the longer wording wins.
	shorter := "Walk for 30 minutes every Tuesday and Thursday evening"
	longer := "Walk for 30 minutes every Tuesday and Thursday evenings after dinner"

	if !b.Store(shorter, nil, nil, 0) {
		t.Fatal("first store rejected")
	}
	confidence := 8
	if !b.Store(longer, &confidence, nil, 2) {
		t.Fatal("longer duplicate rejected")
	}

	if b.Len() != 1 {
		t.Fatalf("Len = %d, want 1 after dedup", b.Len())
	}
	e := b.Entries()[0]
	if e.Text != longer {
		t.Errorf("shorter text won: %q", e.Text)
	}
	if e.Confidence == nil || *e.Confidence != 8 {
		t.Errorf("confidence not refreshed: %v", e.Confidence)
	}

	// A genuinely different goal appends.
	if !b.Store("Get 8 hours of sleep on weeknights", nil, nil, 0) {
		t.Fatal("second goal rejected")
	}
	if b.Len() != 2 {
		t.Errorf("Len = %d, want 2", b.Len())
	}
}

func TestBookStoreShorterTextKeepsLonger(t *testing.T) {
	b := NewBook(2)
	long := "Walk for 30 minutes every Tuesday and Thursday evenings after dinner"
	b.Store(long, nil, nil, 0)
	b.Store("Walk for 30 minutes every Tuesday and Thursday evening", nil, nil, 0)

	if b.Len() != 1 {
		t.Fatalf("Len = %d, want 1", b.Len())
	}
	if b.Entries()[0].Text != long {
		t.Errorf("longer text lost: %q", b.Entries()[0].Text)
	}
}

func TestBookStoreRejectsNonGoals(t *testing.T) {
	b := NewBook(1)
	if b.Store("no thanks", nil, nil, 0) {
		t.Error("non-goal was stored")
	}
	if b.Len() != 0 {
		t.Errorf("Len = %d, want 0", b.Len())
	}
}

func TestSetLastConfidence(t *testing.T) {
	b := NewBook(1)
	b.SetLastConfidence(5) // empty book: no-op

	b.Store("Walk for 30 minutes every Tuesday", nil, nil, 0)
	b.SetLastConfidence(9)
	if c := b.Entries()[0].Confidence; c == nil || *c != 9 {
		t.Errorf("Confidence = %v, want 9", c)
	}
}

func TestEnhance(t *testing.T) {
	tests := []struct {
		base     string
		fragment string
		want     string
	}{
		{"walk after dinner", "for 30 minutes", "walk after dinner for 30 minutes"},
		{"walk after dinner", "every week", "walk after dinner every week"},
		{"walk after dinner", "actually yoga sounds better", "actually yoga sounds better"},
	}
	for _, tc := range tests {
		if got := Enhance(tc.base, tc.fragment); got != tc.want {
			t.Errorf("Enhance(%q, %q) = %q, want %q", tc.base, tc.fragment, got, tc.want)
		}
	}
}

func TestSummary(t *testing.T) {
	b := NewBook(1)
	if b.Summary() != "No goals set yet." {
		t.Errorf("empty Summary = %q", b.Summary())
	}

	confidence := 8
	b.Store("Walk for 30 minutes every Tuesday", &confidence, nil, 0)
	s := b.Summary()
	if !strings.Contains(s, "1. Walk for 30 minutes every Tuesday") {
		t.Errorf("Summary missing numbered goal: %q", s)
	}
	if !strings.Contains(s, "(Confidence: 8/10)") {
		t.Errorf("Summary missing confidence: %q", s)
	}
}

func TestExtractFromCoachResponse(t *testing.T) {
	tests := []struct {
		name  string
		coach string
		user  string
		want  string
	}{
		{
			name:  "explicit goal statement",
			coach: "Perfect, so your goal is: walk for 30 minutes, 3 times per week.",
			want:  "Walk for 30 minutes, 3 times per week",
		},
		{
			name:  "walking goal rebuilt from parts",
			coach: "Okay, so you'll be walking for 30 minutes, three times a week.",
			want:  "Walk for 30 minutes, 3 times per week",
		},
		{
			name:  "sleep goal with days from user side",
			coach: "So just to make sure I have it: 8 hours of sleep.",
			user:  "yes, on Monday and Wednesday",
			want:  "Get 8 hours of sleep on Monday and Wednesday each week",
		},
		{
			name:  "not summarizing",
			coach: "How did your week go?",
			want:  "",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractFromCoachResponse(tc.coach, tc.user); got != tc.want {
				t.Errorf("ExtractFromCoachResponse = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestCoachAccepted(t *testing.T) {
	tests := []struct {
		response string
		want     bool
	}{
		{"That's a solid goal! On a scale of 1-10, how confident are you?", true},
		{"Great goal, Dana! How will you track your progress?", true},
		{"Could you tell me more about when you'd like to walk?", false},
	}
	for _, tc := range tests {
		if got := CoachAccepted(tc.response); got != tc.want {
			t.Errorf("CoachAccepted(%q) = %t, want %t", tc.response, got, tc.want)
		}
	}
}

type fakeRewriter struct {
	response string
	err      error
}

func (f fakeRewriter) RewordGoal(context.Context, string) (string, error) {
	return f.response, f.err
}

func TestReword(t *testing.T) {
	original := "ok i guess i can live with walking 30 minutes on tuesdays"

	t.Run("uses rewritten text", func(t *testing.T) {
		got := Reword(t.Context(), fakeRewriter{response: `"Walk 30 minutes every Tuesday"`}, original, RewordContext{})
		if got != "Walk 30 minutes every Tuesday" {
			t.Errorf("Reword = %q", got)
		}
	})

	t.Run("falls back on error", func(t *testing.T) {
		got := Reword(t.Context(), fakeRewriter{err: errors.New("unavailable")}, original, RewordContext{})
		if got != original {
			t.Errorf("Reword = %q, want original", got)
		}
	})

	t.Run("falls back on empty result", func(t *testing.T) {
		got := Reword(t.Context(), fakeRewriter{response: "  "}, original, RewordContext{})
		if got != original {
			t.Errorf("Reword = %q, want original", got)
		}
	})

	t.Run("nil rewriter returns original", func(t *testing.T) {
		if got := Reword(t.Context(), nil, original, RewordContext{}); got != original {
			t.Errorf("Reword = %q, want original", got)
		}
	})
}

func TestBookReload(t *testing.T) {
	b := NewBook(2)
	b.Store("Walk for 30 minutes every Tuesday", nil, nil, 0)

	confidence := 7
	restored := []Entry{
		{Text: "Get 8 hours of sleep on weeknights", Confidence: &confidence, SessionCreated: 2, Status: models.GoalStatusActive},
		{Text: "walk daily", SessionCreated: 1, Status: models.GoalStatusDropped},
	}
	b.Reload(restored)

	// Reload replaces everything and skips the storability filter, so the
	// short dropped goal comes back exactly as persisted.
	if b.Len() != 2 {
		t.Fatalf("Len = %d, want 2 after reload", b.Len())
	}
	entries := b.Entries()
	if entries[0].Text != "Get 8 hours of sleep on weeknights" || entries[0].Confidence == nil || *entries[0].Confidence != 7 {
		t.Errorf("first entry = %+v", entries[0])
	}
	if entries[1].Text != "walk daily" || entries[1].Status != models.GoalStatusDropped {
		t.Errorf("second entry = %+v", entries[1])
	}

	// The book keeps working after a reload.
	if !b.Store("Drink 8 glasses of water every day this week", nil, nil, 0) {
		t.Fatal("store after reload rejected")
	}
	if b.Len() != 3 {
		t.Errorf("Len = %d, want 3", b.Len())
	}
}

func TestEntryStatusDefaultsActive(t *testing.T) {
	b := NewBook(3)
	b.Store("Walk for 30 minutes every Tuesday", nil, nil, 0)
	if b.Entries()[0].Status != models.GoalStatusActive {
		t.Errorf("Status = %s, want active", b.Entries()[0].Status)
	}
	if b.Entries()[0].SessionCreated != 3 {
		t.Errorf("SessionCreated = %d, want 3", b.Entries()[0].SessionCreated)
	}
}
