// Package session implements the conversation state machines for the four
// coaching sessions.
//
// Each session flow is a Machine that consumes one user turn at a time and
// returns a StateResult: a recommended next state, a directive for the
// response generator, and whether retrieval should run. Machines never
// advance themselves; the caller applies the recommended state with
// SetState after the turn completes.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/BTreeMap/CoachPipe/internal/goal"
	"github.com/BTreeMap/CoachPipe/internal/models"
	"github.com/BTreeMap/CoachPipe/internal/smarteval"
)

// Machine drives one session's conversation flow.
type Machine interface {
	// Flow identifies which session this machine runs.
	Flow() models.FlowType
	// State returns the current conversational state.
	State() models.StateType
	// SetState moves the machine to a new state. Callers apply the
	// NextState recommended by ProcessInput; the machine never advances
	// itself.
	SetState(s models.StateType)
	// ProcessInput consumes one user turn and returns the state
	// recommendation and generation directive for it.
	ProcessInput(ctx context.Context, input string, history []models.ChatMessage) models.StateResult
	// PromptAddition returns the state-specific system prompt text for
	// the response generator.
	PromptAddition() string
	// Record exposes the working conversation data.
	Record() *Record
}

// Factory constructs a Machine over a working record.
type Factory func(rec *Record, eval smarteval.Evaluator) Machine

var registry = make(map[models.FlowType]Factory)

// Register associates a FlowType with a Machine factory.
func Register(ft models.FlowType, f Factory) {
	registry[ft] = f
}

// New builds the machine for a flow over the given record.
func New(ft models.FlowType, rec *Record, eval smarteval.Evaluator) (Machine, error) {
	slog.Debug("session.New invoked", "flow", ft, "uid", rec.UID)
	f, ok := registry[ft]
	if !ok {
		return nil, fmt.Errorf("no machine registered for flow %s", ft)
	}
	return f(rec, eval), nil
}

func init() {
	Register(models.FlowSession1, newSession1)
	Register(models.FlowSession2, newFollowUp)
	Register(models.FlowSession3, newFollowUp)
	Register(models.FlowSession4, newSession4)
}

// Discovery topics in the order session 1 walks through them. Follow-up
// sessions revisit whatever is still unanswered.
var discoveryTopics = []string{
	"general_about",
	"current_exercise",
	"current_sleep",
	"current_eating",
	"free_time",
}

// Record is the working conversation data for one session. It accumulates
// as turns are processed and is converted to a models.SessionRecord at
// save time.
type Record struct {
	UID      string
	UserName string
	Flow     models.FlowType

	// Carried forward from earlier sessions. PreviousGoals holds the goals
	// still in play; RetiredGoals holds completed and dropped history,
	// which writes through each snapshot unchanged so it is never lost.
	PreviousGoals    []models.Goal
	RetiredGoals     []models.Goal
	DiscoveryAnswers map[string]string

	// Goal work for this session.
	Goals              *goal.Book
	Analysis           *models.SmartAnalysis
	CurrentGoal        string
	GoalFragments      []string
	RefinementAttempts int
	Confidence         *int
	StressLevel        *int
	PathChosen         models.PathChoice
	GoalsToKeep        []string
	GoalsToKeepKnown   bool

	// Discovery follow-up queue for sessions 2 and 3.
	DiscoveryQueue []string
	DiscoveryIndex int

	// Conversation bookkeeping.
	QuestionsAsked        map[string]bool
	StuckCounts           map[string]int
	ExploredLowConfidence bool
	TrackingDiscussed     bool
	FinalGoodbyeGiven     bool
	TurnCount             int
	LastCoachResponse     string

	// Session 4 check-in details.
	GoalsAchieved         *bool
	WhatHappened          string
	ImprovementsDiscussed bool
	HasChanges            bool
	ChangeDescription     string

	StartedAt time.Time
}

// NewRecord creates a fresh working record for a participant starting the
// given session.
func NewRecord(uid string, ft models.FlowType) *Record {
	return &Record{
		UID:              uid,
		Flow:             ft,
		Goals:            goal.NewBook(ft.SessionNumber()),
		DiscoveryAnswers: make(map[string]string),
		QuestionsAsked:   make(map[string]bool),
		StuckCounts:      make(map[string]int),
		StartedAt:        time.Now(),
	}
}

// SeedFromProfile carries a prior session's profile into this record:
// name, goals, discovery answers, and the queue of discovery topics still
// unanswered. Active goals become this session's PreviousGoals; completed
// and dropped goals are retained as retired history.
func (r *Record) SeedFromProfile(p models.UserProfile) {
	r.UserName = p.Name
	r.PreviousGoals = p.ActiveGoals()
	r.RetiredGoals = r.RetiredGoals[:0]
	for _, g := range p.Goals {
		if g.Status == models.GoalStatusCompleted || g.Status == models.GoalStatusDropped {
			r.RetiredGoals = append(r.RetiredGoals, g)
		}
	}
	for k, v := range p.DiscoveryAnswers {
		r.DiscoveryAnswers[k] = v
	}
	r.DiscoveryQueue = r.DiscoveryQueue[:0]
	for _, topic := range discoveryTopics {
		if _, ok := r.DiscoveryAnswers[topic]; !ok {
			r.DiscoveryQueue = append(r.DiscoveryQueue, topic)
		}
	}
}

// RestoreFromRecord rebuilds the working record from a snapshot of this
// same session, so a resumed conversation continues with the goal work,
// path decision, and one-shot flags it had when interrupted. Goals the
// interrupted session had already set reload into the goal book; carried
// goals keep the statuses the last snapshot gave them.
func (r *Record) RestoreFromRecord(rec models.SessionRecord) {
	n := r.Flow.SessionNumber()
	r.UserName = rec.UserProfile.Name
	for k, v := range rec.UserProfile.DiscoveryAnswers {
		r.DiscoveryAnswers[k] = v
	}
	r.StressLevel = rec.UserProfile.LastStressLevel
	r.StartedAt = rec.SessionInfo.StartedAt
	r.PathChosen = rec.SessionInfo.PathChosen

	r.PreviousGoals = r.PreviousGoals[:0]
	r.RetiredGoals = r.RetiredGoals[:0]
	var entries []goal.Entry
	for _, g := range rec.UserProfile.Goals {
		switch {
		case g.SessionCreated >= n:
			entries = append(entries, goal.Entry{
				Text:           g.Description,
				Confidence:     g.Confidence,
				SessionCreated: g.SessionCreated,
				Status:         g.Status,
			})
		case g.Status == models.GoalStatusActive:
			r.PreviousGoals = append(r.PreviousGoals, g)
		default:
			r.RetiredGoals = append(r.RetiredGoals, g)
		}
	}
	r.Goals.Reload(entries)

	p := rec.Progress
	r.CurrentGoal = p.CurrentGoal
	r.GoalFragments = append(r.GoalFragments[:0], p.GoalFragments...)
	r.RefinementAttempts = p.RefinementAttempts
	r.Confidence = p.Confidence
	r.GoalsToKeep = append(r.GoalsToKeep[:0], p.GoalsToKeep...)
	r.GoalsToKeepKnown = p.GoalsToKeepKnown
	for _, q := range p.AskedQuestions {
		r.QuestionsAsked[q] = true
	}
	for k, v := range p.StuckCounts {
		r.StuckCounts[k] = v
	}
	r.ExploredLowConfidence = p.ExploredLowConfidence
	r.TrackingDiscussed = p.TrackingDiscussed
	r.FinalGoodbyeGiven = p.FinalGoodbyeGiven
	r.DiscoveryQueue = append(r.DiscoveryQueue[:0], p.DiscoveryQueue...)
	r.DiscoveryIndex = p.DiscoveryIndex
	r.TurnCount = p.TurnCount
	r.GoalsAchieved = p.GoalsAchieved
	r.WhatHappened = p.WhatHappened
	r.ImprovementsDiscussed = p.ImprovementsDiscussed
	r.HasChanges = p.HasChanges
	r.ChangeDescription = p.ChangeDescription
}

func (r *Record) markAsked(key string) {
	r.QuestionsAsked[key] = true
}

func (r *Record) hasAsked(key string) bool {
	return r.QuestionsAsked[key]
}

func (r *Record) bump(key string) int {
	n := r.StuckCounts[key]
	r.StuckCounts[key] = n + 1
	return n
}

// keptGoal reports whether a carried goal was named among the goals to
// keep on the "different" path.
func (r *Record) keptGoal(description string) bool {
	for _, k := range r.GoalsToKeep {
		if k == description {
			return true
		}
	}
	return false
}

// Snapshot converts the working record into a persistable SessionRecord.
// Carried goal statuses are recomputed here from the chosen path: a "new"
// path drops all previous goals, a "different" path keeps only the goals
// named, and a "same" (or unset) path keeps everything active. Retired
// history writes through untouched, and goals set this session are active.
func (r *Record) Snapshot(state models.StateType, history []models.ChatMessage) models.SessionRecord {
	now := time.Now()
	n := r.Flow.SessionNumber()

	var goals []models.Goal
	for _, prev := range r.PreviousGoals {
		g := prev
		switch r.PathChosen {
		case models.PathNew:
			g.Status = models.GoalStatusDropped
		case models.PathDifferent:
			if r.keptGoal(prev.Description) {
				g.Status = models.GoalStatusActive
			} else {
				g.Status = models.GoalStatusDropped
			}
		default:
			g.Status = models.GoalStatusActive
		}
		g.UpdatedAt = now
		goals = append(goals, g)
	}
	goals = append(goals, r.RetiredGoals...)
	for _, e := range r.Goals.Entries() {
		status := e.Status
		if status == "" {
			status = models.GoalStatusActive
		}
		created := e.SessionCreated
		if created == 0 {
			created = n
		}
		goals = append(goals, models.Goal{
			Description:      e.Text,
			Confidence:       e.Confidence,
			Status:           status,
			SessionCreated:   created,
			StressAtCreation: r.StressLevel,
			CreatedAt:        r.StartedAt,
			UpdatedAt:        now,
		})
	}

	return models.SessionRecord{
		UserProfile: models.UserProfile{
			UID:              r.UID,
			Name:             r.UserName,
			Goals:            goals,
			DiscoveryAnswers: r.DiscoveryAnswers,
			LastStressLevel:  r.StressLevel,
		},
		SessionInfo: models.SessionInfo{
			SessionNumber: n,
			CurrentState:  state,
			PathChosen:    r.PathChosen,
			StartedAt:     r.StartedAt,
			SavedAt:       now,
		},
		Progress:    r.progress(),
		ChatHistory: history,
	}
}

// progress captures the resumable working state for persistence.
func (r *Record) progress() models.SessionProgress {
	var asked []string
	for q, v := range r.QuestionsAsked {
		if v {
			asked = append(asked, q)
		}
	}
	var stuck map[string]int
	if len(r.StuckCounts) > 0 {
		stuck = make(map[string]int, len(r.StuckCounts))
		for k, v := range r.StuckCounts {
			stuck[k] = v
		}
	}
	return models.SessionProgress{
		CurrentGoal:           r.CurrentGoal,
		GoalFragments:         r.GoalFragments,
		RefinementAttempts:    r.RefinementAttempts,
		Confidence:            r.Confidence,
		GoalsToKeep:           r.GoalsToKeep,
		GoalsToKeepKnown:      r.GoalsToKeepKnown,
		AskedQuestions:        asked,
		StuckCounts:           stuck,
		ExploredLowConfidence: r.ExploredLowConfidence,
		TrackingDiscussed:     r.TrackingDiscussed,
		FinalGoodbyeGiven:     r.FinalGoodbyeGiven,
		DiscoveryQueue:        r.DiscoveryQueue,
		DiscoveryIndex:        r.DiscoveryIndex,
		TurnCount:             r.TurnCount,
		GoalsAchieved:         r.GoalsAchieved,
		WhatHappened:          r.WhatHappened,
		ImprovementsDiscussed: r.ImprovementsDiscussed,
		HasChanges:            r.HasChanges,
		ChangeDescription:     r.ChangeDescription,
	}
}

// lastAssistantText returns the most recent assistant message in the
// transcript, or the record's cached last coach response when the
// transcript has none.
func (r *Record) lastAssistantText(history []models.ChatMessage) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == "assistant" {
			return history[i].Content
		}
	}
	return r.LastCoachResponse
}

// Coach phrase scanners. These sniff the assistant's own prior text to
// detect when the generated conversation has moved ahead of the state
// machine.

var coachWrapUpPhrases = []string{
	"good luck", "have a great week",
	"i'm really looking forward", "looking forward to hearing",
	"see you next", "i'll see you",
	"have a wonderful",
}

var coachGoodbyePhrases = []string{
	"best of luck", "good luck", "have a wonderful",
	"see you at our next session", "see you next week",
	"talk to you next", "until next session",
	"i'll see you", "see you in one week",
	"excited for you to try", "take care",
	"looking forward to hearing",
}

var coachWrapUpQuestions = []string{
	"anything else", "is there anything else",
	"before we wrap", "before we finish",
	"ready to wrap", "all set",
}

var coachQuestionPrompts = []string{
	"do you have any questions",
	"any questions",
	"does that help clarify",
	"does that answer your question",
	"anything else you",
	"is there anything",
}

func textHasAny(text string, phrases []string) bool {
	lower := strings.ToLower(text)
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func coachWrappedUp(text string) bool    { return textHasAny(text, coachWrapUpPhrases) }
func coachSaidGoodbye(text string) bool  { return textHasAny(text, coachGoodbyePhrases) }
func coachAskedWrapUp(text string) bool  { return textHasAny(text, coachWrapUpQuestions) }
func coachAskedAboutQs(text string) bool { return textHasAny(text, coachQuestionPrompts) }

var trackingPhrases = []string{
	"how will you remember", "how will you track",
	"remind yourself", "system or reminder",
}

// historyMentionsTracking scans the last ten assistant messages for a
// tracking-method question.
func historyMentionsTracking(history []models.ChatMessage) bool {
	start := len(history) - 10
	if start < 0 {
		start = 0
	}
	for _, msg := range history[start:] {
		if msg.Role != "assistant" {
			continue
		}
		if textHasAny(msg.Content, trackingPhrases) {
			return true
		}
	}
	return false
}

var userEndPhrases = []string{
	"no", "nope", "nah", "that's all", "thats all",
	"nothing else", "im good", "i'm good", "all set",
	"ready", "see you", "bye", "thanks",
}

func userReadyToEnd(text string) bool {
	return textHasAny(text, userEndPhrases)
}

// stay builds a result that keeps the machine in its current state.
func stay(context string) models.StateResult {
	return models.StateResult{Context: context, TriggerRetrieval: true}
}

// moveTo builds a result recommending a transition.
func moveTo(next models.StateType, context string) models.StateResult {
	return models.StateResult{NextState: next, Context: context, TriggerRetrieval: true}
}

// displayName returns the participant's name or a neutral fallback for
// prompt text.
func (r *Record) displayName() string {
	if r.UserName != "" {
		return r.UserName
	}
	return "them"
}
