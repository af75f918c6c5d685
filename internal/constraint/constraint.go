// Package constraint validates drafted coach responses against program
// boundaries. The program runs exactly four sessions one week apart with
// no contact in between, so any response promising check-ins, reminders,
// or mid-week contact is flagged before it reaches the participant.
package constraint

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/BTreeMap/CoachPipe/internal/models"
)

// forbiddenPromises match contact the coach cannot deliver between
// sessions.
var forbiddenPromises = []*regexp.Regexp{
	// Check-in promises
	regexp.MustCompile(`(?i)\b(check in|checking in|check-in)\b.*\b(with you|tomorrow|this week|soon|later)\b`),
	regexp.MustCompile(`(?i)\b(i'll|i will|let me)\s+(check in|reach out|follow up|contact you)\b`),
	regexp.MustCompile(`(?i)\b(send|email|text|call|message)\s+you\b`),

	// Mid-week contact
	regexp.MustCompile(`(?i)\b(touch base|connect)\s+(with you|tomorrow|this week|midweek|mid-week)\b`),
	regexp.MustCompile(`(?i)\b(hear from|talk to)\s+you\s+(before|tomorrow|this week|soon)\b`),

	// Reminder promises
	regexp.MustCompile(`(?i)\b(send|set)\s+(you\s+)?(a\s+)?reminders?\b`),
	regexp.MustCompile(`(?i)\b(remind you|i'll remind)\b`),

	// Daily or between-session contact
	regexp.MustCompile(`(?i)\b(daily|everyday|every day)\s+(check-?in|update|contact)\b`),
	regexp.MustCompile(`(?i)\b(between sessions?|before next session)\b.*\b(contact|reach out|check in)\b`),
}

// acceptablePhrases are the self-tracking alternatives the coach should
// use instead.
var acceptablePhrases = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bat\s+(our\s+)?next\s+session\b`),
	regexp.MustCompile(`(?i)\bnext\s+week\b`),
	regexp.MustCompile(`(?i)\bsee you\s+(next week|at session \d+)\b`),
	regexp.MustCompile(`(?i)\b(track|monitor|record)\s+(your|yourself)\b`),
	regexp.MustCompile(`(?i)\byou\s+can\s+(track|use|set)\b`),
	regexp.MustCompile(`(?i)\bremind yourself\b`),
	regexp.MustCompile(`(?i)\bset\s+(your own|personal)\s+reminders?\b`),
}

// Check scans a drafted response for forbidden promises and reports what
// it found, along with whether the response already uses the acceptable
// self-tracking alternatives.
func Check(response string) models.ConstraintReport {
	report := models.ConstraintReport{Valid: true}

	for _, re := range forbiddenPromises {
		if m := re.FindString(response); m != "" {
			report.Violations = append(report.Violations, fmt.Sprintf("Found forbidden promise: '%s'", m))
		}
	}
	report.Valid = len(report.Violations) == 0

	for _, re := range acceptablePhrases {
		if re.MatchString(response) {
			report.HasGoodAlternatives = true
			break
		}
	}

	if !report.Valid {
		report.Suggestions = []string{
			"Instead of promising to check in, suggest:",
			"  - 'We'll discuss your progress at next week's session'",
			"  - 'Track your progress this week using [method]'",
			"  - 'Set reminders on your phone to help you remember'",
			"  - 'I look forward to hearing how it goes next week'",
		}
		slog.Debug("constraint.Check flagged response", "violations", len(report.Violations))
	}

	return report
}

// CorrectionPrompt builds the rewrite instruction for a response that
// violated the program boundaries. The caller decides whether to send it
// back through the model.
func CorrectionPrompt(originalResponse string, violations []string) string {
	var sb strings.Builder
	sb.WriteString("The following response violates program constraints:\n\n")
	sb.WriteString("\"" + originalResponse + "\"\n\n")
	sb.WriteString("Violations:\n")
	for _, v := range violations {
		sb.WriteString("- " + v + "\n")
	}
	sb.WriteString(`
Remember:
- This is a 4-session program with sessions exactly 1 week apart
- NO contact between sessions (no check-ins, calls, emails, or messages)
- Participants track their own progress between sessions

Please rewrite the response to:
1. Remove any promises of check-ins or contact between sessions
2. Emphasize participant's responsibility for self-tracking
3. Refer to "next week's session" instead of "checking in"
4. Encourage self-accountability methods

Rewrite:`)
	return sb.String()
}
