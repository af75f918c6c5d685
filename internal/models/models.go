// Package models defines the core data structures for CoachPipe.
//
// It includes typed session records, goals, and the per-turn state result
// shared across the session, store, and API modules.
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// FlowType identifies one of the four coaching session flows.
type FlowType string

const (
	// FlowSession1 is the onboarding session: introductions, discovery, first goal.
	FlowSession1 FlowType = "session1"
	// FlowSession2 is the first follow-up: goal check-in and path selection.
	FlowSession2 FlowType = "session2"
	// FlowSession3 is the second follow-up, same shape as session 2.
	FlowSession3 FlowType = "session3"
	// FlowSession4 is the closing session: reinforcement and wrap-up.
	FlowSession4 FlowType = "session4"
)

// SessionNumber returns the 1-based session number for a flow type.
func (f FlowType) SessionNumber() int {
	switch f {
	case FlowSession1:
		return 1
	case FlowSession2:
		return 2
	case FlowSession3:
		return 3
	case FlowSession4:
		return 4
	default:
		return 0
	}
}

// FlowForSession maps a session number back to its flow type.
func FlowForSession(n int) (FlowType, error) {
	switch n {
	case 1:
		return FlowSession1, nil
	case 2:
		return FlowSession2, nil
	case 3:
		return FlowSession3, nil
	case 4:
		return FlowSession4, nil
	default:
		return "", fmt.Errorf("%w: %d", ErrInvalidSessionNumber, n)
	}
}

// IsValidFlowType checks if the given flow type is supported.
func IsValidFlowType(f FlowType) bool {
	switch f {
	case FlowSession1, FlowSession2, FlowSession3, FlowSession4:
		return true
	default:
		return false
	}
}

// StateType represents a conversational state within a session flow.
// Each flow defines its own constants; see states.go.
type StateType string

// PathChoice records how a follow-up session relates to the previous
// session's goals.
type PathChoice string

const (
	// PathSame continues the previous goals unchanged.
	PathSame PathChoice = "same"
	// PathDifferent keeps a subset of previous goals and adds new ones.
	PathDifferent PathChoice = "different"
	// PathNew replaces the previous goals entirely.
	PathNew PathChoice = "new"
)

// GoalStatus tracks a goal across sessions.
type GoalStatus string

const (
	// GoalStatusActive marks a goal the participant is currently working on.
	GoalStatusActive GoalStatus = "active"
	// GoalStatusCompleted marks a goal the participant reported achieving.
	GoalStatusCompleted GoalStatus = "completed"
	// GoalStatusDropped marks a goal abandoned when the participant chose a new path.
	GoalStatusDropped GoalStatus = "dropped"
)

// Validation constants for input validation
const (
	// MaxGoalDescriptionLength bounds stored goal text.
	MaxGoalDescriptionLength = 500
	// MinGoalWords is the minimum word count for a storable goal.
	MinGoalWords = 4
	// MaxConfidence is the top of the 1-10 confidence scale.
	MaxConfidence = 10
	// SessionCount is the number of sessions in the program.
	SessionCount = 4
)

// Error variables for better error handling and testability
var (
	ErrEmptyUID             = errors.New("participant uid cannot be empty")
	ErrInvalidSessionNumber = errors.New("session number out of range")
	ErrInvalidGoalStatus    = errors.New("invalid goal status")
	ErrEmptyGoalDescription = errors.New("goal description cannot be empty")
	ErrGoalDescriptionLong  = errors.New("goal description exceeds maximum length")
	ErrInvalidConfidence    = errors.New("confidence must be between 1 and 10")
	ErrInvalidPathChoice    = errors.New("invalid path choice")
	ErrEmptyChatRole        = errors.New("chat message role cannot be empty")
	ErrSessionNotFound      = errors.New("session record not found")
)

// Goal is a single health goal as it evolves across the four sessions.
type Goal struct {
	ID             int        `json:"id"`
	Description    string     `json:"description"`
	Confidence     *int       `json:"confidence,omitempty"`
	Status         GoalStatus `json:"status"`
	SessionCreated int        `json:"session_created"`
	// StressAtCreation is the participant's reported stress level in the
	// session that set the goal, when one was given.
	StressAtCreation *int      `json:"stress_at_creation,omitempty"`
	CreatedAt        time.Time `json:"created_at,omitempty"`
	UpdatedAt        time.Time `json:"updated_at,omitempty"`
}

// Validate checks the goal fields for validity.
func (g *Goal) Validate() error {
	if strings.TrimSpace(g.Description) == "" {
		return ErrEmptyGoalDescription
	}
	if len(g.Description) > MaxGoalDescriptionLength {
		return ErrGoalDescriptionLong
	}
	switch g.Status {
	case GoalStatusActive, GoalStatusCompleted, GoalStatusDropped:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidGoalStatus, g.Status)
	}
	if g.Confidence != nil && (*g.Confidence < 1 || *g.Confidence > MaxConfidence) {
		return fmt.Errorf("%w: %d", ErrInvalidConfidence, *g.Confidence)
	}
	if g.SessionCreated < 1 || g.SessionCreated > SessionCount {
		return fmt.Errorf("%w: %d", ErrInvalidSessionNumber, g.SessionCreated)
	}
	return nil
}

// UserProfile carries everything known about a participant across sessions.
type UserProfile struct {
	UID                string            `json:"uid"`
	Name               string            `json:"name,omitempty"`
	Goals              []Goal            `json:"goals"`
	DiscoveryAnswers   map[string]string `json:"discovery_questions,omitempty"`
	LastStressLevel    *int              `json:"last_stress_level,omitempty"`
}

// ActiveGoals returns the goals still in play: anything not completed or dropped.
func (p *UserProfile) ActiveGoals() []Goal {
	var active []Goal
	for _, g := range p.Goals {
		if g.Status != GoalStatusCompleted && g.Status != GoalStatusDropped {
			active = append(active, g)
		}
	}
	return active
}

// Validate checks the profile fields for validity.
func (p *UserProfile) Validate() error {
	if strings.TrimSpace(p.UID) == "" {
		return ErrEmptyUID
	}
	for i := range p.Goals {
		if err := p.Goals[i].Validate(); err != nil {
			return fmt.Errorf("goal %d: %w", i, err)
		}
	}
	return nil
}

// ChatMessage is one turn of the conversation transcript.
type ChatMessage struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// Validate checks the chat message fields.
func (m *ChatMessage) Validate() error {
	if m.Role == "" {
		return ErrEmptyChatRole
	}
	return nil
}

// SessionInfo describes one session's progress and outcome.
type SessionInfo struct {
	SessionNumber int        `json:"session_number"`
	CurrentState  StateType  `json:"current_state"`
	PathChosen    PathChoice `json:"path_chosen,omitempty"`
	StartedAt     time.Time  `json:"started_at,omitempty"`
	SavedAt       time.Time  `json:"saved_at,omitempty"`
}

// SessionProgress is the mid-session working state saved with every
// snapshot: the goal being refined, the path decision details, and the
// one-shot conversation flags. Resuming an interrupted session restores
// all of it so the machine continues exactly where it stopped.
type SessionProgress struct {
	CurrentGoal           string         `json:"current_goal,omitempty"`
	GoalFragments         []string       `json:"goal_fragments,omitempty"`
	RefinementAttempts    int            `json:"refinement_attempts,omitempty"`
	Confidence            *int           `json:"confidence,omitempty"`
	GoalsToKeep           []string       `json:"goals_to_keep,omitempty"`
	GoalsToKeepKnown      bool           `json:"goals_to_keep_known,omitempty"`
	AskedQuestions        []string       `json:"asked_questions,omitempty"`
	StuckCounts           map[string]int `json:"stuck_counts,omitempty"`
	ExploredLowConfidence bool           `json:"explored_low_confidence,omitempty"`
	TrackingDiscussed     bool           `json:"tracking_discussed,omitempty"`
	FinalGoodbyeGiven     bool           `json:"final_goodbye_given,omitempty"`
	DiscoveryQueue        []string       `json:"discovery_queue,omitempty"`
	DiscoveryIndex        int            `json:"discovery_index,omitempty"`
	TurnCount             int            `json:"turn_count,omitempty"`
	GoalsAchieved         *bool          `json:"goals_achieved,omitempty"`
	WhatHappened          string         `json:"what_happened,omitempty"`
	ImprovementsDiscussed bool           `json:"improvements_discussed,omitempty"`
	HasChanges            bool           `json:"has_changes,omitempty"`
	ChangeDescription     string         `json:"change_description,omitempty"`
}

// SessionRecord is the persisted unit: one participant's profile, session
// progress, and transcript at the end of a session.
type SessionRecord struct {
	UserProfile UserProfile     `json:"user_profile"`
	SessionInfo SessionInfo     `json:"session_info"`
	Progress    SessionProgress `json:"progress"`
	ChatHistory []ChatMessage   `json:"chat_history"`
}

// Validate checks the record for validity before persistence.
func (r *SessionRecord) Validate() error {
	if err := r.UserProfile.Validate(); err != nil {
		return fmt.Errorf("user profile: %w", err)
	}
	if r.SessionInfo.SessionNumber < 1 || r.SessionInfo.SessionNumber > SessionCount {
		return fmt.Errorf("%w: %d", ErrInvalidSessionNumber, r.SessionInfo.SessionNumber)
	}
	if r.SessionInfo.PathChosen != "" {
		switch r.SessionInfo.PathChosen {
		case PathSame, PathDifferent, PathNew:
		default:
			return fmt.Errorf("%w: %q", ErrInvalidPathChoice, r.SessionInfo.PathChosen)
		}
	}
	for i := range r.ChatHistory {
		if err := r.ChatHistory[i].Validate(); err != nil {
			return fmt.Errorf("chat message %d: %w", i, err)
		}
	}
	return nil
}

// StateResult is what a session state machine returns for one user turn.
// An empty NextState means the machine stays in its current state. Context
// is a directive for the downstream response generator, and
// TriggerRetrieval tells the caller whether document retrieval should run
// for this turn.
type StateResult struct {
	NextState        StateType `json:"next_state,omitempty"`
	Context          string    `json:"context"`
	TriggerRetrieval bool      `json:"trigger_retrieval"`
}

// SmartAnalysis is the outcome of evaluating a goal against the five SMART
// criteria.
type SmartAnalysis struct {
	IsSmart    bool     `json:"is_smart"`
	Specific   bool     `json:"specific"`
	Measurable bool     `json:"measurable"`
	Achievable bool     `json:"achievable"`
	Relevant   bool     `json:"relevant"`
	TimeBound  bool     `json:"time_bound"`
	Missing    []string `json:"missing,omitempty"`
	Issues     []string `json:"issues,omitempty"`
	Feedback   string   `json:"feedback,omitempty"`
}

// ConstraintReport lists coaching-boundary violations found in a drafted
// assistant response.
type ConstraintReport struct {
	Valid               bool     `json:"valid"`
	Violations          []string `json:"violations,omitempty"`
	Suggestions         []string `json:"suggestions,omitempty"`
	HasGoodAlternatives bool     `json:"has_good_alternatives"`
}
