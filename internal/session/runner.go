package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/BTreeMap/CoachPipe/internal/constraint"
	"github.com/BTreeMap/CoachPipe/internal/models"
	"github.com/BTreeMap/CoachPipe/internal/retrieval"
	"github.com/BTreeMap/CoachPipe/internal/smarteval"
	"github.com/BTreeMap/CoachPipe/internal/store"
)

// TurnResult is what the runner hands back for one processed turn: the
// machine's decision plus everything the downstream response generator
// needs. ContextWindow, MemorySummary, and Recalled are populated only on
// turns where the machine asked for retrieval.
type TurnResult struct {
	UID            string               `json:"uid"`
	SessionNumber  int                  `json:"session_number"`
	State          models.StateType     `json:"state"`
	Result         models.StateResult   `json:"result"`
	PromptAddition string               `json:"prompt_addition"`
	ContextWindow  []models.ChatMessage `json:"context_window,omitempty"`
	MemorySummary  string               `json:"memory_summary,omitempty"`
	Recalled       []retrieval.Result   `json:"recalled,omitempty"`
}

type activeSession struct {
	machine Machine
	history []models.ChatMessage
}

// Runner coordinates live session machines: it seeds new sessions from the
// participant's latest record, applies state transitions the machines
// request, and persists a snapshot after every turn so a session can be
// resumed mid-conversation.
type Runner struct {
	mu     sync.Mutex
	store  store.Store
	eval   smarteval.Evaluator
	active map[string]*activeSession
	index  *retrieval.HistoryIndex
	gate   *retrieval.Gate
}

// RunnerOption configures optional runner collaborators.
type RunnerOption func(*Runner)

// WithHistoryIndex attaches the embedded history index. Turns are indexed
// as they are recorded and searched on turns where the machine asks for
// retrieval.
func WithHistoryIndex(idx *retrieval.HistoryIndex) RunnerOption {
	return func(r *Runner) {
		r.index = idx
		r.gate = retrieval.NewGate(idx, 0)
	}
}

// NewRunner creates a runner over the given store and evaluator.
func NewRunner(st store.Store, eval smarteval.Evaluator, opts ...RunnerOption) *Runner {
	r := &Runner{store: st, eval: eval, active: make(map[string]*activeSession)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// StartSession begins (or resumes) the numbered session for a participant.
// An empty uid mints a new participant identifier. The returned TurnResult
// comes from feeding the machine the start-session sentinel.
func (r *Runner) StartSession(ctx context.Context, uid string, sessionNumber int) (*TurnResult, error) {
	ft, err := models.FlowForSession(sessionNumber)
	if err != nil {
		return nil, err
	}
	if uid == "" {
		uid = store.NewUID()
		slog.Info("new participant registered", "uid", uid)
	}
	slog.Debug("Runner.StartSession", "uid", uid, "session", sessionNumber)

	rec := NewRecord(uid, ft)
	var history []models.ChatMessage
	var resumeState models.StateType

	// A saved record for this exact session resumes it; otherwise the
	// latest earlier record seeds the profile.
	if saved, err := r.store.GetSessionRecord(uid, sessionNumber); err == nil {
		rec.RestoreFromRecord(*saved)
		history = saved.ChatHistory
		resumeState = saved.SessionInfo.CurrentState
	} else if !errors.Is(err, models.ErrSessionNotFound) {
		return nil, fmt.Errorf("failed to load session record: %w", err)
	} else if latest, err := r.store.LatestSessionRecord(uid); err == nil {
		rec.SeedFromProfile(latest.UserProfile)
	} else if !errors.Is(err, models.ErrSessionNotFound) {
		return nil, fmt.Errorf("failed to load latest record: %w", err)
	}

	machine, err := New(ft, rec, r.eval)
	if err != nil {
		return nil, err
	}
	if resumeState != "" {
		machine.SetState(resumeState)
	}

	r.mu.Lock()
	r.active[uid] = &activeSession{machine: machine, history: history}
	r.mu.Unlock()

	if resumeState != "" {
		slog.Info("session resumed", "uid", uid, "session", sessionNumber, "state", resumeState)
		turn := &TurnResult{
			UID:           uid,
			SessionNumber: sessionNumber,
			State:         machine.State(),
			Result: models.StateResult{
				Context:          "Session resumed. Pick up the conversation where it left off.",
				TriggerRetrieval: true,
			},
			PromptAddition: machine.PromptAddition(),
		}
		r.attachRetrieval(ctx, turn, machine.Record(), history, "")
		return turn, nil
	}
	return r.ProcessTurn(ctx, uid, models.StartSessionSentinel)
}

// ProcessTurn runs one user input through the participant's machine,
// applies the requested transition, and snapshots the session.
func (r *Runner) ProcessTurn(ctx context.Context, uid, input string) (*TurnResult, error) {
	r.mu.Lock()
	as, ok := r.active[uid]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: no active session for %s", models.ErrSessionNotFound, uid)
	}

	machine := as.machine
	if input != models.StartSessionSentinel {
		as.history = append(as.history, models.ChatMessage{
			Role: "user", Content: input, Timestamp: time.Now(),
		})
		r.indexTurn(ctx, uid, input)
	}

	result := machine.ProcessInput(ctx, input, as.history)
	if result.NextState != "" {
		machine.SetState(result.NextState)
	}

	if err := r.save(machine, as); err != nil {
		return nil, err
	}

	slog.Debug("Runner.ProcessTurn", "uid", uid, "state", machine.State(), "retrieval", result.TriggerRetrieval)
	turn := &TurnResult{
		UID:            uid,
		SessionNumber:  machine.Flow().SessionNumber(),
		State:          machine.State(),
		Result:         result,
		PromptAddition: machine.PromptAddition(),
	}
	r.attachRetrieval(ctx, turn, machine.Record(), as.history, input)
	return turn, nil
}

// RecordReply appends the generated assistant message to the session
// transcript, indexes it for later recall, and snapshots the session. The
// reply is checked against the coaching boundaries; violations are
// reported to the caller, who decides whether to regenerate.
func (r *Runner) RecordReply(ctx context.Context, uid, content string) (models.ConstraintReport, error) {
	r.mu.Lock()
	as, ok := r.active[uid]
	r.mu.Unlock()
	if !ok {
		return models.ConstraintReport{}, fmt.Errorf("%w: no active session for %s", models.ErrSessionNotFound, uid)
	}

	report := constraint.Check(content)
	if !report.Valid {
		slog.Warn("coach reply violates coaching boundaries", "uid", uid, "violations", report.Violations)
	}

	as.history = append(as.history, models.ChatMessage{
		Role: "assistant", Content: content, Timestamp: time.Now(),
	})
	r.indexTurn(ctx, uid, content)
	if err := r.save(as.machine, as); err != nil {
		return report, err
	}
	return report, nil
}

// indexTurn embeds one turn into the history index when one is attached.
// Indexing failures degrade recall but never fail the turn.
func (r *Runner) indexTurn(ctx context.Context, uid, content string) {
	if r.index == nil {
		return
	}
	if err := r.index.Add(ctx, uid, content); err != nil {
		slog.Warn("failed to index turn", "error", err, "uid", uid)
	}
}

// attachRetrieval fills the turn's coach-context fields when the machine
// asked for retrieval: the keyword-selected conversation window, the
// persistent-memory summary, and any index recalls.
func (r *Runner) attachRetrieval(ctx context.Context, turn *TurnResult, rec *Record, history []models.ChatMessage, input string) {
	if !turn.Result.TriggerRetrieval {
		return
	}
	turn.ContextWindow = retrieval.BuildContext(history, input, rec.UserName)
	turn.MemorySummary = retrieval.MemorySummary(rec.Snapshot(turn.State, nil).UserProfile, rec.CurrentGoal)
	if r.gate != nil {
		recalled, err := r.gate.Retrieve(ctx, turn.Result, turn.UID, input)
		if err != nil {
			slog.Warn("history recall failed", "error", err, "uid", turn.UID)
			return
		}
		turn.Recalled = recalled
	}
}

// History returns a copy of the active session's transcript.
func (r *Runner) History(uid string) ([]models.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	as, ok := r.active[uid]
	if !ok {
		return nil, fmt.Errorf("%w: no active session for %s", models.ErrSessionNotFound, uid)
	}
	history := make([]models.ChatMessage, len(as.history))
	copy(history, as.history)
	return history, nil
}

// EndSession snapshots a final time and releases the live machine.
func (r *Runner) EndSession(uid string) error {
	r.mu.Lock()
	as, ok := r.active[uid]
	delete(r.active, uid)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: no active session for %s", models.ErrSessionNotFound, uid)
	}
	if err := r.save(as.machine, as); err != nil {
		return err
	}
	slog.Info("session ended", "uid", uid, "session", as.machine.Flow().SessionNumber())
	return nil
}

func (r *Runner) save(machine Machine, as *activeSession) error {
	snapshot := machine.Record().Snapshot(machine.State(), as.history)
	if err := r.store.SaveSessionRecord(snapshot); err != nil {
		slog.Error("Runner session snapshot failed", "error", err, "uid", machine.Record().UID)
		return fmt.Errorf("failed to save session snapshot: %w", err)
	}
	return nil
}
