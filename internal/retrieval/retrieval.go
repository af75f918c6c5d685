// Package retrieval selects conversation context for the coach prompt.
//
// It picks relevant older exchanges by keyword overlap, always keeps the
// most recent turns, builds the persistent-memory summary, and gates
// document search on the per-turn retrieval decision made by the session
// state machine.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/BTreeMap/CoachPipe/internal/models"
)

// Defaults for context window sizing.
const (
	// DefaultRecentMessages is how many trailing turns are always included.
	DefaultRecentMessages = 6
	// DefaultRelevantHistory is how many older exchanges may be cherry-picked.
	DefaultRelevantHistory = 4
)

// healthKeywords drive the overlap score between the current message and
// older user turns.
var healthKeywords = []string{
	"goal", "exercise", "eat", "sleep", "weight", "health",
	"walk", "run", "diet", "nutrition", "water", "stress",
	"challenge", "success", "difficult", "accomplished",
}

type scoredExchange struct {
	score    int
	index    int
	messages [2]models.ChatMessage
}

// SelectRelevantHistory cherry-picks older user/assistant exchanges whose
// topic overlaps the current message. The trailing recentMessages turns are
// never candidates; they are included wholesale by BuildContext.
func SelectRelevantHistory(history []models.ChatMessage, currentMessage, userName string, recentMessages, maxRelevant int) []models.ChatMessage {
	if len(history) <= recentMessages {
		return nil
	}
	older := history[:len(history)-recentMessages]

	currentLower := strings.ToLower(currentMessage)
	nameLower := strings.ToLower(strings.TrimSpace(userName))

	var currentKeywords []string
	for _, k := range healthKeywords {
		if strings.Contains(currentLower, k) {
			currentKeywords = append(currentKeywords, k)
		}
	}

	var exchanges []scoredExchange
	for i := 0; i+1 < len(older); i += 2 {
		userMsg, assistantMsg := older[i], older[i+1]
		if userMsg.Role != "user" || assistantMsg.Role != "assistant" {
			continue
		}
		userLower := strings.ToLower(userMsg.Content)

		overlap := 0
		for _, k := range currentKeywords {
			if strings.Contains(userLower, k) {
				overlap++
			}
		}
		personalRef := nameLower != "" &&
			(strings.Contains(currentLower, nameLower) || strings.Contains(userLower, nameLower))

		if overlap == 0 && !personalRef {
			continue
		}
		score := overlap
		if personalRef {
			score += 2
		}
		exchanges = append(exchanges, scoredExchange{
			score:    score,
			index:    i,
			messages: [2]models.ChatMessage{userMsg, assistantMsg},
		})
	}

	sort.SliceStable(exchanges, func(i, j int) bool { return exchanges[i].score > exchanges[j].score })
	if len(exchanges) > maxRelevant {
		exchanges = exchanges[:maxRelevant]
	}
	// Restore chronological order for the selected exchanges.
	sort.Slice(exchanges, func(i, j int) bool { return exchanges[i].index < exchanges[j].index })

	var selected []models.ChatMessage
	for _, e := range exchanges {
		selected = append(selected, e.messages[0], e.messages[1])
	}
	slog.Debug("relevant history selected", "candidates", len(older)/2, "selected", len(exchanges))
	return selected
}

// BuildContext assembles the message window for the coach: bracketed
// relevant older exchanges first, then the trailing recent turns.
func BuildContext(history []models.ChatMessage, currentMessage, userName string) []models.ChatMessage {
	var messages []models.ChatMessage

	relevant := SelectRelevantHistory(history, currentMessage, userName, DefaultRecentMessages, DefaultRelevantHistory)
	if len(relevant) > 0 {
		messages = append(messages, models.ChatMessage{
			Role:    "user",
			Content: "[Earlier conversation context - relevant to current topic]",
		})
		messages = append(messages, relevant...)
		messages = append(messages, models.ChatMessage{
			Role:    "user",
			Content: "[End of earlier context - returning to recent conversation]",
		})
	}

	recent := history
	if len(recent) > DefaultRecentMessages {
		recent = recent[len(recent)-DefaultRecentMessages:]
	}
	messages = append(messages, recent...)
	return messages
}

// MemorySummary builds the persistent-memory block for the system prompt:
// participant name, stored goals with confidence, and the goal currently
// being refined if it hasn't been stored yet.
func MemorySummary(profile models.UserProfile, currentGoal string) string {
	var parts []string

	if profile.Name != "" {
		parts = append(parts, "Participant name: "+profile.Name)
	}

	active := profile.ActiveGoals()
	if len(active) > 0 {
		var sb strings.Builder
		fmt.Fprintf(&sb, "\nGoals set (%d total):", len(active))
		for i, g := range active {
			confidence := "N/A"
			if g.Confidence != nil {
				confidence = fmt.Sprintf("%d/10", *g.Confidence)
			}
			fmt.Fprintf(&sb, "\n  %d. %s (Confidence: %s)", i+1, g.Description, confidence)
		}
		parts = append(parts, sb.String())
	}

	if currentGoal != "" && !goalStored(active, currentGoal) {
		parts = append(parts, "\nCurrent goal being refined: "+currentGoal)
	}

	return strings.Join(parts, "\n")
}

func goalStored(goals []models.Goal, text string) bool {
	for _, g := range goals {
		if g.Description == text {
			return true
		}
	}
	return false
}

// Searcher finds stored turns similar to a query.
type Searcher interface {
	Search(ctx context.Context, uid, query string, limit int) ([]Result, error)
}

// Result is one retrieved turn with its similarity distance.
type Result struct {
	Content  string
	Distance float64
}

// Gate runs search only when the state machine asked for retrieval this
// turn.
type Gate struct {
	searcher Searcher
	limit    int
}

// NewGate wraps a searcher. limit <= 0 falls back to DefaultRelevantHistory.
func NewGate(searcher Searcher, limit int) *Gate {
	if limit <= 0 {
		limit = DefaultRelevantHistory
	}
	return &Gate{searcher: searcher, limit: limit}
}

// Retrieve honors the per-turn decision: when the machine disabled
// retrieval (latched end states, static informational replies), it
// returns nothing without touching the index.
func (g *Gate) Retrieve(ctx context.Context, res models.StateResult, uid, query string) ([]Result, error) {
	if !res.TriggerRetrieval || g.searcher == nil {
		slog.Debug("retrieval gated off", "uid", uid, "trigger", res.TriggerRetrieval)
		return nil, nil
	}
	results, err := g.searcher.Search(ctx, uid, query, g.limit)
	if err != nil {
		slog.Error("retrieval search failed", "error", err, "uid", uid)
		return nil, err
	}
	slog.Debug("retrieval search succeeded", "uid", uid, "results", len(results))
	return results, nil
}
