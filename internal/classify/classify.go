// Package classify provides pure-function input classifiers for session
// flows, plus the shared keyword tables they and the goal evaluator use.
//
// Everything here operates on raw user text with no I/O and no state, so
// every function is safe to call from any flow at any point in a turn.
package classify

import (
	"regexp"
	"strings"
)

// TimeWords are time-frame markers used for SMART time-bound checks and
// goal-fragment merging.
var TimeWords = []string{
	"day", "week", "month", "year", "daily", "weekly", "monthly",
	"per week", "per day", "times", "every", "each", "by", "for",
	"tuesday", "wednesday", "thursday", "friday", "saturday", "sunday", "monday",
}

// DaysOfWeek lists weekday names in lowercase.
var DaysOfWeek = []string{
	"monday", "tuesday", "wednesday", "thursday",
	"friday", "saturday", "sunday",
}

// ActionVerbs are concrete activity verbs that mark a goal as actionable.
var ActionVerbs = []string{
	"walk", "run", "exercise", "eat", "drink", "sleep", "reduce",
	"increase", "practice", "meditate", "stretch", "play",
}

// ActivityNames are named activities treated the same as action verbs.
var ActivityNames = []string{
	"pokemon go", "yoga", "gym", "swimming", "biking", "hiking",
}

// VagueWords undermine measurability unless numbers are present.
var VagueWords = []string{
	"more", "better", "less", "healthier", "improve",
}

// affirmativeWords and negativeWords are substring markers, matching the
// loose reading participants actually type.
var affirmativeWords = []string{
	"yes", "yeah", "yep", "sure", "yup", "ok", "okay", "i do", "i have",
}

var negativeWords = []string{
	"no", "nope", "nah", "not really", "don't", "dont", "no questions",
}

var moreWords = []string{
	"yes", "yeah", "another", "more", "add", "one more", "i'd like", "i want",
}

var doneWords = []string{
	"no", "nope", "just", "only", "focus on", "stick with", "that's all", "thats all", "done", "good",
}

// nonGoalPhrases indicate the participant is not stating a goal.
var nonGoalPhrases = []string{
	"no", "yes", "maybe", "i dont know", "i don't know", "not sure",
	"just want to stick", "thats all", "that's all", "nothing else",
	"im good", "i'm good", "no more", "nope", "nah",
}

// GoalKeywords signal goal intent inside free text.
var GoalKeywords = []string{
	"want to", "goal is", "goal:", "would like to", "hoping to",
	"trying to", "plan to", "i want", "my goal",
}

// GoalFillerPhrases are stripped when rewording a goal concisely.
var GoalFillerPhrases = []string{
	"i want to", "i would like to", "i'm going to", "i will",
	"my goal is to", "the goal is to", "i plan to",
}

var digitsRe = regexp.MustCompile(`\d+`)

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// IsAffirmative reports whether the input reads as agreement.
func IsAffirmative(text string) bool {
	return containsAny(strings.ToLower(strings.TrimSpace(text)), affirmativeWords)
}

// IsNegative reports whether the input reads as refusal or decline.
func IsNegative(text string) bool {
	return containsAny(strings.ToLower(strings.TrimSpace(text)), negativeWords)
}

// WantsMore reports whether the participant wants to add another goal or
// question.
func WantsMore(text string) bool {
	return containsAny(strings.ToLower(strings.TrimSpace(text)), moreWords)
}

// IsDone reports whether the participant signals they are finished adding.
func IsDone(text string) bool {
	return containsAny(strings.ToLower(strings.TrimSpace(text)), doneWords)
}

// ExtractFirstInteger returns the first run of digits in the text as an
// integer. The second return is false when the text contains no digits.
func ExtractFirstInteger(text string) (int, bool) {
	m := digitsRe.FindString(text)
	if m == "" {
		return 0, false
	}
	n := 0
	for _, c := range m {
		n = n*10 + int(c-'0')
	}
	return n, true
}

// HasNumbers reports whether the text contains any digits.
func HasNumbers(text string) bool {
	return digitsRe.MatchString(text)
}

// MinGoalWords is the default minimum word count for a goal statement.
const MinGoalWords = 4

// IsLikelyGoal reports whether the text reads as a goal statement rather
// than a short reply or a description of the participant's situation.
func IsLikelyGoal(text string, minWords int) bool {
	lower := strings.ToLower(strings.TrimSpace(text))

	if containsAny(lower, nonGoalPhrases) {
		return false
	}
	if len(strings.Fields(text)) < minWords {
		return false
	}
	if strings.HasPrefix(lower, "no ") || strings.HasPrefix(lower, "yes ") || strings.HasPrefix(lower, "maybe ") {
		return false
	}

	// Situation statements ("I have a busy schedule") are not goals unless
	// the participant expresses intent.
	situationPhrases := []string{"i have", "i am", "i'm", "my life", "my schedule"}
	if containsAny(lower, situationPhrases) &&
		!strings.Contains(lower, "want") && !strings.Contains(lower, "goal") && !strings.Contains(lower, "like to") {
		return false
	}

	return true
}

// ContainsGoalKeywords reports whether the text carries explicit goal intent.
func ContainsGoalKeywords(text string) bool {
	return containsAny(strings.ToLower(text), GoalKeywords)
}

// IsGoalQuestion reports whether the text is a question or hedge about a
// goal rather than a goal statement.
func IsGoalQuestion(text string) bool {
	lower := strings.ToLower(text)
	indicators := []string{"?", "how about", "what if", "maybe", "would", "could", "should"}
	return containsAny(lower, indicators) || strings.HasSuffix(text, "?")
}

// IsTooShortForGoal reports whether the text has fewer than minWords words.
func IsTooShortForGoal(text string, minWords int) bool {
	return len(strings.Fields(text)) < minWords
}

// ExtractName pulls a participant name out of an introduction. It handles
// the common self-introduction patterns and falls back to treating a short
// bare reply as the name itself. Returns "" when no name is found.
func ExtractName(text string) string {
	lower := strings.ToLower(strings.TrimSpace(text))

	markers := []string{"i'm", "im", "my name is", "call me", "i am"}
	if containsAny(lower, markers) {
		words := strings.Fields(text)
		for i, w := range words {
			switch strings.ToLower(w) {
			case "i'm", "im", "name", "call", "i", "am":
				// Take the first word after the marker that isn't filler.
				for j := i + 1; j < len(words); j++ {
					candidate := strings.Trim(words[j], ".,!?")
					switch strings.ToLower(candidate) {
					case "is", "a", "the", "and", "but", "so", "me", "am":
					default:
						return candidate
					}
				}
			}
		}
	}

	if len(strings.Fields(text)) <= 3 && len(text) < 30 {
		cleaned := strings.TrimSpace(strings.Trim(text, ".,!?"))
		greetings := []string{"hello", "hi", "hey", "good", "morning", "afternoon"}
		if cleaned != "" && !containsAny(lower, greetings) {
			return cleaned
		}
	}

	return ""
}
