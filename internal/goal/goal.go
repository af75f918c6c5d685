// Package goal manages goal accumulation across a coaching session:
// storing completed goals without duplicates, merging refinement fragments,
// and recognizing when the coach has summarized or accepted a goal.
package goal

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/BTreeMap/CoachPipe/internal/classify"
	"github.com/BTreeMap/CoachPipe/internal/models"
)

// SimilarityPrefixLen is how many leading characters two goal texts must
// share to be treated as the same goal.
const SimilarityPrefixLen = 50

// Entry is one accumulated goal within a session, before it is promoted
// into the participant's profile at save time.
type Entry struct {
	Text               string
	Confidence         *int
	Analysis           *models.SmartAnalysis
	RefinementAttempts int
	SessionCreated     int
	Status             models.GoalStatus
}

// Book accumulates goals during a session.
type Book struct {
	entries       []Entry
	sessionNumber int
}

// NewBook creates an empty goal book for the given session.
func NewBook(sessionNumber int) *Book {
	return &Book{sessionNumber: sessionNumber}
}

// Entries returns the accumulated goals in insertion order.
func (b *Book) Entries() []Entry {
	return b.entries
}

// Len returns the number of accumulated goals.
func (b *Book) Len() int {
	return len(b.entries)
}

// IsStorable reports whether text qualifies as a goal worth keeping:
// long enough, not a question, not a conversational filler reply.
func IsStorable(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))

	if len(strings.Fields(text)) < models.MinGoalWords {
		return false
	}
	nonGoal := []string{
		"no", "yes", "maybe", "i dont know", "i don't know", "not sure",
		"just want to stick", "thats all", "that's all", "nothing else",
		"im good", "i'm good", "no more", "nope", "nah", "keep it",
	}
	for _, phrase := range nonGoal {
		if strings.Contains(lower, phrase) {
			return false
		}
	}
	if strings.HasPrefix(lower, "no ") || strings.HasPrefix(lower, "yes ") || strings.HasPrefix(lower, "maybe ") {
		return false
	}
	if strings.Contains(text, "?") {
		return false
	}
	for _, phrase := range []string{"how about", "what if", "maybe we", "could we"} {
		if strings.Contains(lower, phrase) {
			return false
		}
	}
	return true
}

// Store records a goal, deduplicating on the leading SimilarityPrefixLen
// characters. When a similar goal already exists, the longer text wins and
// the confidence is refreshed. Returns false when the text does not
// qualify as a goal.
func (b *Book) Store(text string, confidence *int, analysis *models.SmartAnalysis, attempts int) bool {
	if !IsStorable(text) {
		slog.Debug("goal.Store rejected non-goal text", "text", text)
		return false
	}

	prefix := prefixOf(text)
	for i := range b.entries {
		if prefixOf(b.entries[i].Text) == prefix {
			if len(text) > len(b.entries[i].Text) {
				b.entries[i].Text = text
				b.entries[i].Analysis = analysis
				b.entries[i].RefinementAttempts = attempts
			}
			if confidence != nil {
				b.entries[i].Confidence = confidence
			}
			slog.Debug("goal.Store updated existing goal", "goal", b.entries[i].Text)
			return true
		}
	}

	b.entries = append(b.entries, Entry{
		Text:               text,
		Confidence:         confidence,
		Analysis:           analysis,
		RefinementAttempts: attempts,
		SessionCreated:     b.sessionNumber,
		Status:             models.GoalStatusActive,
	})
	slog.Info("goal.Store recorded new goal", "goal", text, "session", b.sessionNumber)
	return true
}

// Reload replaces the book's contents with previously persisted goals,
// bypassing the storability filter. Used when a resumed session restores
// the goals it had already set before the interruption.
func (b *Book) Reload(entries []Entry) {
	b.entries = append(b.entries[:0], entries...)
	slog.Debug("goal.Reload restored goals", "count", len(b.entries), "session", b.sessionNumber)
}

// SetLastConfidence updates the most recently stored goal's confidence.
func (b *Book) SetLastConfidence(confidence int) {
	if len(b.entries) == 0 {
		return
	}
	c := confidence
	b.entries[len(b.entries)-1].Confidence = &c
}

func prefixOf(text string) string {
	if len(text) > SimilarityPrefixLen {
		return text[:SimilarityPrefixLen]
	}
	return text
}

// Enhance merges a refinement fragment into a base goal. Fragments that
// add timing or numbers are appended; anything else replaces the base.
func Enhance(baseGoal, fragment string) string {
	lower := strings.ToLower(fragment)

	timeIndicators := []string{"week", "month", "day", "by", "within", "in"}
	hasTime := false
	for _, ind := range timeIndicators {
		if strings.Contains(lower, ind) {
			hasTime = true
			break
		}
	}

	if hasTime || classify.HasNumbers(fragment) {
		return strings.TrimSpace(baseGoal + " " + fragment)
	}
	return strings.TrimSpace(fragment)
}

// Summary formats the accumulated goals into a numbered readable list.
func (b *Book) Summary() string {
	if len(b.entries) == 0 {
		return "No goals set yet."
	}
	var sb strings.Builder
	for i, e := range b.entries {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(strconv.Itoa(i+1) + ". " + e.Text)
		if e.Confidence != nil {
			sb.WriteString(" (Confidence: " + strconv.Itoa(*e.Confidence) + "/10)")
		}
		if e.Status != models.GoalStatusActive && e.Status != "" {
			sb.WriteString(" [" + strings.ToUpper(string(e.Status)) + "]")
		}
	}
	return sb.String()
}

// Rewriter rewords a messy conversational goal into clean SMART phrasing.
// Implementations call a language model; callers fall back to the original
// text on any failure.
type Rewriter interface {
	RewordGoal(ctx context.Context, prompt string) (string, error)
}

// RewordContext carries optional context for the rewording prompt.
type RewordContext struct {
	Confidence      *int
	CurrentExercise string
	CurrentSleep    string
}

const rewordPromptTemplate = `Rewrite this goal into a clear, concise, SMART format. Remove conversational filler and make it action-oriented.

Original goal: %q%s

Requirements:
- Start with an action verb (e.g., "Walk", "Get", "Exercise", "Eat", "Complete")
- Be specific about what, when, and how often
- Keep it under 20 words
- Remove phrases like "I want to", "ok", "lets", "i can live with that", "maybe", "like"
- Make it clear and measurable
- If it mentions progression (like "increment by 10 mins"), include that

Return ONLY the reworded goal, nothing else.`

// Reword asks the rewriter for a clean version of the goal, returning the
// original text when the call fails or the result is empty or too long.
func Reword(ctx context.Context, rw Rewriter, goalText string, rc RewordContext) string {
	if rw == nil {
		return goalText
	}

	var ctxLines strings.Builder
	if rc.Confidence != nil {
		ctxLines.WriteString("\nConfidence level: " + strconv.Itoa(*rc.Confidence) + "/10")
	}
	if rc.CurrentExercise != "" {
		ctxLines.WriteString("\nCurrent exercise: " + rc.CurrentExercise)
	}
	if rc.CurrentSleep != "" {
		ctxLines.WriteString("\nCurrent sleep: " + rc.CurrentSleep)
	}

	prompt := fmt.Sprintf(rewordPromptTemplate, goalText, ctxLines.String())

	reworded, err := rw.RewordGoal(ctx, prompt)
	if err != nil {
		slog.Debug("goal.Reword falling back to original text", "error", err)
		return goalText
	}
	reworded = strings.Trim(strings.TrimSpace(reworded), `"'`)
	if reworded == "" || len(strings.Fields(reworded)) > 25 {
		return goalText
	}
	return reworded
}

// Coach-summary indicators: phrases the coach uses when restating the goal
// back to the participant.
var summaryIndicators = []string{
	"so you're thinking",
	"okay, so",
	"perfect, so",
	"so your goal is",
	"that sounds like",
	"let me make sure i understand",
	"let me make sure i have",
	"your smart goal is",
	"your complete goal",
	"so monday",
	"so just to make sure",
}

var (
	goalStatementRe = regexp.MustCompile(`(?i)(?:your (?:complete )?(?:smart )?goal (?:is|right):)\s*(.+?)(?:\.|$)`)
	walkRe          = regexp.MustCompile(`walk(?:ing)? for (\d+) minutes?,\s*(\d+|three|two|four|five) times? (?:a|per) week`)
	hoursRe         = regexp.MustCompile(`(\d+)\s*hours?`)
	sleepFreqRe     = regexp.MustCompile(`(\d+)\s*(?:times?|days?|nights?)\s*(?:per |a |this |each )?week`)
)

var wordToNum = map[string]string{
	"one": "1", "two": "2", "three": "3", "four": "4",
	"five": "5", "six": "6", "seven": "7",
}

// ExtractFromCoachResponse recovers a refined goal when the coach is
// summarizing it back. It tries an explicit "your goal is:" statement
// first, then rebuilds walking and sleep goals from their numeric parts.
// Returns "" when the coach is not summarizing or nothing extractable is
// present.
func ExtractFromCoachResponse(coachResponse, userInput string) string {
	coachLower := strings.ToLower(coachResponse)
	userLower := strings.ToLower(userInput)

	summarizing := false
	for _, ind := range summaryIndicators {
		if strings.Contains(coachLower, ind) {
			summarizing = true
			break
		}
	}
	if !summarizing {
		return ""
	}

	if m := goalStatementRe.FindStringSubmatch(coachLower); m != nil {
		text := strings.TrimSpace(m[1])
		if text != "" {
			return strings.ToUpper(text[:1]) + text[1:]
		}
	}

	if m := walkRe.FindStringSubmatch(coachLower); m != nil {
		minutes, freq := m[1], m[2]
		if n, ok := wordToNum[strings.ToLower(freq)]; ok {
			freq = n
		}
		return "Walk for " + minutes + " minutes, " + freq + " times per week"
	}

	var hours, freq string
	if m := hoursRe.FindStringSubmatch(coachLower); m != nil {
		hours = m[1]
	}
	if m := sleepFreqRe.FindStringSubmatch(coachLower); m != nil {
		freq = m[1]
	}

	var days []string
	seen := map[string]bool{}
	for _, day := range classify.DaysOfWeek {
		if (strings.Contains(userLower, day) || strings.Contains(coachLower, day)) && !seen[day] {
			seen[day] = true
			days = append(days, strings.ToUpper(day[:1])+day[1:])
		}
	}

	if hours != "" && (freq != "" || len(days) > 0) {
		if len(days) >= 2 {
			var daysStr string
			if len(days) == 2 {
				daysStr = days[0] + " and " + days[1]
			} else {
				daysStr = strings.Join(days[:len(days)-1], ", ") + ", and " + days[len(days)-1]
			}
			return "Get " + hours + " hours of sleep on " + daysStr + " each week"
		}
		if freq != "" {
			return "Get " + hours + " hours of sleep " + freq + " nights per week"
		}
	}

	return ""
}

var acceptancePatterns = []*regexp.Regexp{
	regexp.MustCompile(`you've got a clear.*goal`),
	regexp.MustCompile(`that's a solid goal`),
	regexp.MustCompile(`solid starting point`),
	regexp.MustCompile(`fantastic.*goal`),
	regexp.MustCompile(`excellent.*goal`),
	regexp.MustCompile(`perfect.*goal`),
	regexp.MustCompile(`great goal`),
	regexp.MustCompile(`this is going to`),
	regexp.MustCompile(`you're all set`),
	regexp.MustCompile(`how will you remind`),
	regexp.MustCompile(`how will you track`),
	regexp.MustCompile(`what.*remind yourself`),
	regexp.MustCompile(`on a scale.*confident`),
}

// CoachAccepted reports whether the coach's response confirms the goal and
// moves the conversation forward.
func CoachAccepted(coachResponse string) bool {
	lower := strings.ToLower(coachResponse)
	for _, re := range acceptancePatterns {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}
