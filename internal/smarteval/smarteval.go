// Package smarteval evaluates health goals against the SMART criteria.
//
// The primary strategy asks a language model to judge the goal with a
// strict-criteria JSON prompt; any failure along that path (call error,
// malformed JSON, missing fields) falls back silently to a keyword
// heuristic so a session turn never stalls on evaluation.
package smarteval

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/BTreeMap/CoachPipe/internal/classify"
	"github.com/BTreeMap/CoachPipe/internal/models"
)

// GoalJudge is the single capability this package needs from a language
// model client: send an evaluation prompt, get the raw completion back.
type GoalJudge interface {
	EvaluateGoal(ctx context.Context, prompt string) (string, error)
}

// Evaluator judges whether a goal is SMART.
type Evaluator interface {
	Evaluate(ctx context.Context, goal string) models.SmartAnalysis
}

// LLMEvaluator evaluates goals with a language model and falls back to the
// heuristic when the model path fails.
type LLMEvaluator struct {
	judge GoalJudge
}

// NewLLMEvaluator creates an evaluator backed by the given judge.
func NewLLMEvaluator(judge GoalJudge) *LLMEvaluator {
	return &LLMEvaluator{judge: judge}
}

const evaluationPromptTemplate = `Evaluate if this goal is SMART (Specific, Measurable, Achievable, Relevant, Time-bound).

Goal: %q

STRICT CRITERIA:
- Specific: Must have a clear, detailed action (not vague like "eat better" or "exercise more")
- Measurable: Must include numbers, frequency, or quantifiable metrics (e.g., "30 minutes", "3 times", "2000 calories")
- Achievable: Should be realistic for a typical person
- Relevant: Related to health/wellness
- Time-bound: Must specify when/how often (e.g., "daily", "3x per week", "by Friday", "for 2 weeks")

Respond ONLY with a JSON object in this exact format:
{
    "specific": {"met": true/false, "issue": "reason if not met"},
    "measurable": {"met": true/false, "issue": "reason if not met"},
    "achievable": {"met": true/false, "issue": "reason if not met"},
    "relevant": {"met": true/false, "issue": "reason if not met"},
    "timebound": {"met": true/false, "issue": "reason if not met"},
    "suggestions": "specific suggestions to make it SMART"
}`

type criterionVerdict struct {
	Met   bool   `json:"met"`
	Issue string `json:"issue"`
}

type llmVerdict struct {
	Specific    *criterionVerdict `json:"specific"`
	Measurable  *criterionVerdict `json:"measurable"`
	Achievable  *criterionVerdict `json:"achievable"`
	Relevant    *criterionVerdict `json:"relevant"`
	Timebound   *criterionVerdict `json:"timebound"`
	Suggestions string            `json:"suggestions"`
}

// Evaluate judges the goal with the language model, falling back to
// HeuristicCheck on any failure along the model path.
func (e *LLMEvaluator) Evaluate(ctx context.Context, goal string) models.SmartAnalysis {
	slog.Debug("smarteval.Evaluate invoked", "goal", goal)

	analysis, err := e.evaluateWithModel(ctx, goal)
	if err != nil {
		slog.Debug("smarteval.Evaluate falling back to heuristic", "error", err)
		return HeuristicCheck(goal)
	}
	slog.Debug("smarteval.Evaluate model verdict", "is_smart", analysis.IsSmart, "missing", analysis.Missing)
	return analysis
}

func (e *LLMEvaluator) evaluateWithModel(ctx context.Context, goal string) (models.SmartAnalysis, error) {
	prompt := fmt.Sprintf(evaluationPromptTemplate, goal)
	response, err := e.judge.EvaluateGoal(ctx, prompt)
	if err != nil {
		return models.SmartAnalysis{}, fmt.Errorf("model call failed: %w", err)
	}

	response = stripCodeFences(response)

	var v llmVerdict
	if err := json.Unmarshal([]byte(response), &v); err != nil {
		return models.SmartAnalysis{}, fmt.Errorf("failed to parse model verdict: %w", err)
	}
	if v.Specific == nil || v.Measurable == nil || v.Achievable == nil || v.Relevant == nil || v.Timebound == nil {
		return models.SmartAnalysis{}, fmt.Errorf("model verdict missing criteria fields")
	}

	analysis := models.SmartAnalysis{
		Specific:   v.Specific.Met,
		Measurable: v.Measurable.Met,
		Achievable: v.Achievable.Met,
		Relevant:   v.Relevant.Met,
		TimeBound:  v.Timebound.Met,
		Feedback:   v.Suggestions,
	}
	analysis.IsSmart = analysis.Specific && analysis.Measurable && analysis.Achievable && analysis.Relevant && analysis.TimeBound

	// Missing criteria are reported uppercase so directives can embed them
	// directly.
	for _, c := range []struct {
		name string
		v    *criterionVerdict
	}{
		{"SPECIFIC", v.Specific},
		{"MEASURABLE", v.Measurable},
		{"ACHIEVABLE", v.Achievable},
		{"RELEVANT", v.Relevant},
		{"TIMEBOUND", v.Timebound},
	} {
		if !c.v.Met {
			analysis.Missing = append(analysis.Missing, c.name)
			if c.v.Issue != "" {
				analysis.Issues = append(analysis.Issues, c.v.Issue)
			}
		}
	}
	return analysis, nil
}

// stripCodeFences removes markdown code fences some models wrap JSON in.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = s[7:]
	}
	if strings.HasPrefix(s, "```") {
		s = s[3:]
	}
	if strings.HasSuffix(s, "```") {
		s = s[:len(s)-3]
	}
	return strings.TrimSpace(s)
}

// HeuristicEvaluator applies HeuristicCheck directly, for callers running
// without a language model.
type HeuristicEvaluator struct{}

// Evaluate implements Evaluator.
func (HeuristicEvaluator) Evaluate(_ context.Context, goal string) models.SmartAnalysis {
	return HeuristicCheck(goal)
}

// HeuristicCheck is a keyword-based SMART check. Achievable and Relevant
// are always considered met; the heuristic only has signal for the other
// three criteria.
func HeuristicCheck(goal string) models.SmartAnalysis {
	lower := strings.ToLower(goal)

	hasNumbers := classify.HasNumbers(goal)
	hasTimeframe := containsAny(lower, classify.TimeWords)
	hasAction := containsAny(lower, classify.ActionVerbs) || containsAny(lower, classify.ActivityNames)
	hasSpecificDays := containsAny(lower, classify.DaysOfWeek)
	// Vague wording only counts against the goal when there are no numbers
	// to anchor it.
	hasVague := containsAny(lower, classify.VagueWords) && !hasNumbers

	analysis := models.SmartAnalysis{
		Specific:   hasAction && !hasVague,
		Measurable: hasNumbers,
		Achievable: true,
		Relevant:   true,
		TimeBound:  hasTimeframe || hasSpecificDays,
		Feedback:   "Make it more specific with numbers and a clear timeframe",
	}
	analysis.IsSmart = hasNumbers &&
		(hasTimeframe || hasSpecificDays) &&
		hasAction &&
		!hasVague &&
		len(strings.Fields(goal)) >= 5

	if !analysis.Specific {
		analysis.Missing = append(analysis.Missing, "SPECIFIC")
		analysis.Issues = append(analysis.Issues, "Use specific action verbs or activity names, avoid vague words")
	}
	if !analysis.Measurable {
		analysis.Missing = append(analysis.Missing, "MEASURABLE")
		analysis.Issues = append(analysis.Issues, "Include specific numbers or quantities")
	}
	if !analysis.TimeBound {
		analysis.Missing = append(analysis.Missing, "TIMEBOUND")
		analysis.Issues = append(analysis.Issues, "Specify frequency or deadline")
	}
	return analysis
}

// ConciseGoal rewords a goal for storage: filler phrases removed, spacing
// collapsed, first letter capitalized.
func ConciseGoal(fullGoal string) string {
	concise := strings.ToLower(fullGoal)
	for _, phrase := range classify.GoalFillerPhrases {
		concise = strings.ReplaceAll(concise, phrase, "")
	}
	concise = strings.Join(strings.Fields(concise), " ")
	if concise != "" {
		concise = strings.ToUpper(concise[:1]) + concise[1:]
	}
	return strings.TrimSpace(concise)
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
