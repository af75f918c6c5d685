package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/BTreeMap/CoachPipe/internal/classify"
	"github.com/BTreeMap/CoachPipe/internal/models"
	"github.com/BTreeMap/CoachPipe/internal/smarteval"
)

// followUpRefinementCap bounds refinement rounds per goal in the
// follow-up sessions.
const followUpRefinementCap = 3

// followUp runs sessions 2 and 3, which share one flow: check in on last
// week's goals, capture stress, then branch on whether the participant
// keeps, extends, or replaces their goals. Goal refinement accumulates
// fragments across turns and evaluates the joined text.
type followUp struct {
	rec   *Record
	eval  smarteval.Evaluator
	state models.StateType
}

func newFollowUp(rec *Record, eval smarteval.Evaluator) Machine {
	if rec.Flow != models.FlowSession2 && rec.Flow != models.FlowSession3 {
		rec.Flow = models.FlowSession2
	}
	return &followUp{rec: rec, eval: eval, state: models.StateFUGreetings}
}

func (m *followUp) Flow() models.FlowType       { return m.rec.Flow }
func (m *followUp) State() models.StateType     { return m.state }
func (m *followUp) SetState(s models.StateType) { m.state = s }
func (m *followUp) Record() *Record             { return m.rec }

func (m *followUp) sessionNumber() int { return m.rec.Flow.SessionNumber() }

func (m *followUp) evaluate(ctx context.Context, text string) models.SmartAnalysis {
	analysis := m.eval.Evaluate(ctx, text)
	m.rec.Analysis = &analysis
	return analysis
}

// endWithGoodbye latches the session shut. Once the goodbye is given, the
// machine never produces another substantive turn.
func (m *followUp) endWithGoodbye(context string) models.StateResult {
	m.rec.FinalGoodbyeGiven = true
	return moveTo(models.StateFUEndSession, context)
}

func (m *followUp) ProcessInput(ctx context.Context, input string, history []models.ChatMessage) models.StateResult {
	r := m.rec
	r.TurnCount++
	lower := strings.ToLower(strings.TrimSpace(input))
	if lastCoach := r.lastAssistantText(history); lastCoach != "" {
		r.LastCoachResponse = lastCoach
	}

	slog.Debug("followUp.ProcessInput", "session", m.sessionNumber(), "state", m.state, "uid", r.UID, "turn", r.TurnCount)

	if m.state == models.StateFUEndSession && r.FinalGoodbyeGiven {
		return models.StateResult{
			Context:          "Session already ended. Politely acknowledge but don't continue conversation.",
			TriggerRetrieval: false,
		}
	}

	switch m.state {
	case models.StateFUGreetings:
		if strings.TrimSpace(input) == models.StartSessionSentinel {
			return stay(fmt.Sprintf("Welcome %s back warmly. Keep it brief.", r.displayName()))
		}
		r.markAsked("greeting")
		return moveTo(models.StateFUCheckInGoals, "Acknowledge briefly. Move to check-in.")

	case models.StateFUCheckInGoals:
		r.markAsked("check_in")
		return moveTo(models.StateFUStressLevel, "Acknowledge briefly. Ask stress level (1-10 scale).")

	case models.StateFUStressLevel:
		return m.handleStressLevel(input)

	case models.StateFUDiscoveryQuestions:
		return m.handleDiscoveryQuestions(input)

	case models.StateFUGoalCompletion:
		r.markAsked("goal_completion")
		return moveTo(models.StateFUGoalsForNextWeek,
			"Acknowledge their progress. Ask about next week's goals (same, keep some + add new, or completely new).")

	case models.StateFUGoalsForNextWeek:
		return m.handleGoalsForNextWeek(lower)

	case models.StateFUSameSuccessesChallenges:
		if r.hasAsked("successes_challenges") {
			return moveTo(models.StateFUSameAnythingToChange,
				"Acknowledge their response briefly (1 sentence). Ask: 'Is there anything about this goal that needs to be changed or worked on?'")
		}
		r.markAsked("successes_challenges")
		return stay("Ask: What went well? What was challenging?")

	case models.StateFUSameAnythingToChange:
		wantsChange := textHasAny(lower, []string{"yes", "yeah", "change", "modify", "adjust", "different", "worry", "concerned", "fear", "harder"})
		noChange := textHasAny(lower, []string{"no", "nope", "good", "fine", "keep", "same"})
		switch {
		case wantsChange:
			return moveTo(models.StateFUSameWhatConcerns,
				"They want to make changes. Ask what concerns they have or what solutions they're thinking about.")
		case noChange:
			return m.endWithGoodbye("They're happy with the goal as-is. Give final goodbye.")
		default:
			return stay("Clarify: Do they want to change anything about their goal? Yes or no?")
		}

	case models.StateFUSameWhatConcerns:
		return moveTo(models.StateFUSameExploreSolutions,
			"Acknowledge their concerns. Ask what solutions or adjustments they're thinking about.")

	case models.StateFUSameExploreSolutions:
		return m.handleExploreSolutions(ctx, input, lower)

	case models.StateFUDifferentWhichGoals:
		return m.handleWhichGoals(lower)

	case models.StateFUDifferentKeepingAndNew:
		return m.handleNewGoalCandidate(ctx, input,
			"Ask what new goal they'd like to add. Get more detail about what they want to focus on.")

	case models.StateFUJustNewGoals:
		return m.handleNewGoalCandidate(ctx, input,
			"Ask what goal they'd like to focus on.")

	case models.StateFURefineGoal:
		return m.handleRefineGoal(ctx, input, lower)

	case models.StateFUConfidenceCheck:
		return m.handleConfidenceCheck(input)

	case models.StateFULowConfidence:
		return moveTo(models.StateFUMakeAchievable, "Explore what would make it achievable.")

	case models.StateFUHighConfidence:
		return moveTo(models.StateFURememberGoal, "Ask about tracking.")

	case models.StateFUMakeAchievable:
		if r.PathChosen == models.PathSame {
			return m.endWithGoodbye("Acknowledge adjustments. Give final goodbye.")
		}
		return moveTo(models.StateFURememberGoal, "Ask about tracking.")

	case models.StateFURememberGoal:
		r.TrackingDiscussed = true
		return moveTo(models.StateFUMoreGoalsCheck, "Acknowledge tracking. Ask if they want another goal.")

	case models.StateFUMoreGoalsCheck:
		if classify.WantsMore(input) {
			r.CurrentGoal = ""
			r.RefinementAttempts = 0
			r.GoalFragments = nil
			return moveTo(models.StateFUJustNewGoals, "Ask what other goal.")
		}
		return m.endWithGoodbye(fmt.Sprintf("Give final goodbye for Session %d.", m.sessionNumber()))

	case models.StateFUEndSession:
		return models.StateResult{
			Context:          "Session already complete. Politely acknowledge but don't extend conversation.",
			TriggerRetrieval: false,
		}
	}

	return stay("")
}

func (m *followUp) handleStressLevel(input string) models.StateResult {
	r := m.rec
	stress, ok := classify.ExtractFirstInteger(input)
	if !ok {
		return stay("Ask for stress level as a number (1-10).")
	}

	r.StressLevel = &stress
	r.markAsked("stress_level")

	if len(r.DiscoveryQueue) > 0 {
		return moveTo(models.StateFUDiscoveryQuestions,
			fmt.Sprintf("Note stress: %d/10. Ask ONE discovery question.", stress))
	}
	return moveTo(models.StateFUGoalCompletion,
		fmt.Sprintf("Note stress: %d/10. Ask about goal completion.", stress))
}

func (m *followUp) handleDiscoveryQuestions(input string) models.StateResult {
	r := m.rec
	if r.DiscoveryIndex < len(r.DiscoveryQueue) {
		r.DiscoveryAnswers[r.DiscoveryQueue[r.DiscoveryIndex]] = strings.TrimSpace(input)
		r.DiscoveryIndex++
	}

	// At most two discovery catch-up questions per follow-up session.
	if r.DiscoveryIndex < 2 && r.DiscoveryIndex < len(r.DiscoveryQueue) {
		return stay("Acknowledge briefly. Ask ONE more discovery question.")
	}
	return moveTo(models.StateFUGoalCompletion, "Acknowledge. Ask about goal completion.")
}

func (m *followUp) keepAllPreviousGoals() {
	r := m.rec
	r.GoalsToKeep = r.GoalsToKeep[:0]
	for _, g := range r.PreviousGoals {
		r.GoalsToKeep = append(r.GoalsToKeep, g.Description)
	}
}

func (m *followUp) handleGoalsForNextWeek(lower string) models.StateResult {
	r := m.rec
	hasSame := textHasAny(lower, []string{"same", "current", "keep", "continue", "stick", "focusing"})
	hasAdd := textHasAny(lower, []string{"add", "plus", "also", "another", "new", "and"})
	hasDifferent := textHasAny(lower, []string{"different", "change", "fresh", "switch"})

	// Widening an already-chosen "same" path into keep-and-add.
	if r.PathChosen == models.PathSame && hasAdd {
		r.PathChosen = models.PathDifferent
		m.keepAllPreviousGoals()
		r.GoalsToKeepKnown = true
		return moveTo(models.StateFUDifferentKeepingAndNew, "They want to add a new goal. Ask what new goal.")
	}

	if r.PathChosen == "" {
		switch {
		case hasAdd:
			r.PathChosen = models.PathDifferent
			m.keepAllPreviousGoals()
			r.GoalsToKeepKnown = true
			return moveTo(models.StateFUDifferentKeepingAndNew,
				"They want to keep current goals and add new. Ask what new goal.")
		case hasSame && !hasDifferent:
			r.PathChosen = models.PathSame
			m.keepAllPreviousGoals()
			return moveTo(models.StateFUSameSuccessesChallenges,
				"Keeping same goal. Ask what went well and what was challenging.")
		case hasDifferent && !hasSame:
			r.PathChosen = models.PathNew
			return moveTo(models.StateFUJustNewGoals, "New goals. Ask what they'd like to focus on.")
		default:
			return stay("Clarify: same goal, keep some + add new, or completely new?")
		}
	}
	return stay("Path already chosen. Continue.")
}

func (m *followUp) handleExploreSolutions(ctx context.Context, input, lower string) models.StateResult {
	r := m.rec
	hasSpecificChange := textHasAny(lower, []string{"30", "20", "15", "mins", "minutes", "reduce", "instead", "maybe"})
	if !hasSpecificChange {
		return stay("Guide them toward a specific adjustment. What would make it more achievable?")
	}

	slog.Debug("followUp goal modification proposed", "uid", r.UID)
	candidate := strings.TrimSpace(input)
	r.CurrentGoal = candidate
	r.RefinementAttempts = 0
	r.GoalFragments = []string{candidate}

	analysis := m.evaluate(ctx, candidate)
	if analysis.IsSmart {
		m.finalizeGoal(candidate)
		return moveTo(models.StateFUConfidenceCheck, "Modified goal is SMART! Ask confidence (1-10).")
	}
	return moveTo(models.StateFURefineGoal,
		fmt.Sprintf("Modified goal missing: %s. Help refine it.", strings.Join(analysis.Missing, ", ")))
}

func (m *followUp) handleWhichGoals(lower string) models.StateResult {
	r := m.rec
	if r.GoalsToKeepKnown {
		return moveTo(models.StateFUDifferentKeepingAndNew, "Process their new goal idea.")
	}

	var mentioned []string
	for _, prev := range r.PreviousGoals {
		for _, word := range strings.Fields(strings.ToLower(prev.Description)) {
			if len(word) > 4 && strings.Contains(lower, word) {
				mentioned = append(mentioned, prev.Description)
				break
			}
		}
	}
	if textHasAny(lower, []string{"all", "both", "current", "same"}) {
		mentioned = mentioned[:0]
		for _, prev := range r.PreviousGoals {
			mentioned = append(mentioned, prev.Description)
		}
	}

	if len(mentioned) == 0 {
		return stay("Ask which specific previous goals they want to keep.")
	}
	r.GoalsToKeep = mentioned
	r.GoalsToKeepKnown = true
	return moveTo(models.StateFUDifferentKeepingAndNew,
		fmt.Sprintf("Noted keeping: %s. Now ask what new goal they want to add.", strings.Join(mentioned, ", ")))
}

// handleNewGoalCandidate is shared by the keep-and-add and all-new paths:
// take a substantial goal description, evaluate it, and route to either
// confidence or refinement.
func (m *followUp) handleNewGoalCandidate(ctx context.Context, input, askAgain string) models.StateResult {
	r := m.rec
	candidate := strings.TrimSpace(input)

	if !classify.IsLikelyGoal(candidate, classify.MinGoalWords) {
		return stay(askAgain)
	}

	r.CurrentGoal = candidate
	r.RefinementAttempts = 0
	r.GoalFragments = []string{candidate}

	analysis := m.evaluate(ctx, candidate)
	if analysis.IsSmart {
		m.finalizeGoal(candidate)
		return moveTo(models.StateFUConfidenceCheck, "Goal is SMART! Ask confidence (1-10).")
	}
	return moveTo(models.StateFURefineGoal,
		fmt.Sprintf("Goal needs refinement. Missing: %s. Guide them to make it more specific.", strings.Join(analysis.Missing, ", ")))
}

// finalizeGoal condenses the accumulated goal text, stores it, and clears
// the fragment buffer for the next goal.
func (m *followUp) finalizeGoal(fullGoal string) {
	r := m.rec
	concise := smarteval.ConciseGoal(fullGoal)
	r.CurrentGoal = concise
	r.Goals.Store(concise, nil, r.Analysis, r.RefinementAttempts)
	r.GoalFragments = nil
}

var conversationalPhrases = []string{
	"like i said", "i told you", "as i mentioned", "i already said",
	"its going to be fun", "it's fun", "i want to do this", "i will want to",
	"that makes sense", "i understand", "i like", "because",
}

func isAffirmationOnly(lower string) bool {
	switch lower {
	case "yes", "yeah", "yep", "no", "nope", "ok", "okay", "correct", "right":
		return true
	}
	return false
}

func (m *followUp) handleRefineGoal(ctx context.Context, input, lower string) models.StateResult {
	r := m.rec
	candidate := strings.TrimSpace(input)

	affirmation := isAffirmationOnly(lower)
	conversational := textHasAny(lower, conversationalPhrases)

	// The coach sometimes jumps ahead and asks for confidence while the
	// machine is still refining. Capture the number and move on.
	if classify.HasNumbers(input) && strings.Contains(strings.ToLower(r.LastCoachResponse), "confident") {
		if confidence, ok := classify.ExtractFirstInteger(input); ok {
			r.Confidence = &confidence
			m.finalizeGoal(strings.Join(r.GoalFragments, " "))
			r.Goals.SetLastConfidence(confidence)
			return moveTo(models.StateFUConfidenceCheck,
				fmt.Sprintf("Confidence captured as %d. Transition to handle confidence level.", confidence))
		}
	}

	if !affirmation && !conversational && len(strings.Fields(candidate)) >= 2 {
		appended := false
		for _, part := range r.GoalFragments {
			if part == candidate {
				appended = true
				break
			}
		}
		if !appended {
			r.GoalFragments = append(r.GoalFragments, candidate)
		}

		completeGoal := strings.Join(r.GoalFragments, " ")
		analysis := m.evaluate(ctx, completeGoal)
		r.RefinementAttempts++

		switch {
		case analysis.IsSmart:
			m.finalizeGoal(completeGoal)
			return moveTo(models.StateFUConfidenceCheck, "Goal is SMART! Ask confidence (1-10).")
		case r.RefinementAttempts >= followUpRefinementCap:
			m.finalizeGoal(completeGoal)
			return moveTo(models.StateFUConfidenceCheck,
				fmt.Sprintf("Move to confidence check after %d attempts.", followUpRefinementCap))
		default:
			r.CurrentGoal = completeGoal
			return stay(fmt.Sprintf("Building goal: '%s'. Still missing: %s. Ask specific questions to get those details. DO NOT ask about confidence yet.",
				completeGoal, strings.Join(analysis.Missing, ", ")))
		}
	}

	if affirmation {
		if len(r.GoalFragments) == 0 {
			return stay("Ask them to describe their goal.")
		}
		completeGoal := strings.Join(r.GoalFragments, " ")
		analysis := m.evaluate(ctx, completeGoal)
		if analysis.IsSmart || r.RefinementAttempts >= followUpRefinementCap {
			m.finalizeGoal(completeGoal)
			return moveTo(models.StateFUConfidenceCheck, "Goal confirmed. Ask confidence (1-10).")
		}
		return stay(fmt.Sprintf("Still missing: %s. Ask for those details.", strings.Join(analysis.Missing, ", ")))
	}

	return stay("That was conversational. Continue refining. Ask specific questions to make the goal SMART (numbers, frequency, timeframe). DO NOT ask about confidence.")
}

func (m *followUp) routeConfidence(confidence int) models.StateResult {
	r := m.rec
	if confidence <= 7 {
		if r.ExploredLowConfidence {
			return moveTo(models.StateFUMakeAchievable, "Help make goal more achievable.")
		}
		r.ExploredLowConfidence = true
		return moveTo(models.StateFULowConfidence, "Low confidence. Explore what would help increase it.")
	}
	if r.PathChosen == models.PathSame {
		return m.endWithGoodbye("High confidence on same goal! Give final goodbye.")
	}
	return moveTo(models.StateFURememberGoal, "High confidence! Acknowledge briefly, then ask about tracking method.")
}

func (m *followUp) handleConfidenceCheck(input string) models.StateResult {
	r := m.rec
	if r.Confidence != nil {
		// Already captured; this turn is a follow-up response.
		return m.routeConfidence(*r.Confidence)
	}

	confidence, ok := classify.ExtractFirstInteger(input)
	if !ok {
		return stay("Ask for confidence as a number (1-10). Be clear and direct.")
	}
	r.Confidence = &confidence
	r.Goals.SetLastConfidence(confidence)
	return m.routeConfidence(confidence)
}

// PromptAddition returns the state-specific system prompt text for the
// response generator.
func (m *followUp) PromptAddition() string {
	r := m.rec
	n := m.sessionNumber()

	var prevGoals strings.Builder
	if len(r.PreviousGoals) == 1 {
		fmt.Fprintf(&prevGoals, "\nTheir previous goal: %q", r.PreviousGoals[0].Description)
	} else if len(r.PreviousGoals) > 1 {
		prevGoals.WriteString("\nTheir previous goals:")
		for i, g := range r.PreviousGoals {
			fmt.Fprintf(&prevGoals, "\n  %d. %q", i+1, g.Description)
		}
	}

	var sb strings.Builder
	if r.StressLevel != nil {
		fmt.Fprintf(&sb, "\nStress level: %d/10", *r.StressLevel)
	}
	if len(r.GoalsToKeep) > 0 {
		fmt.Fprintf(&sb, "\nGoals keeping: %s", strings.Join(r.GoalsToKeep, ", "))
	}
	if r.Goals.Len() > 0 {
		fmt.Fprintf(&sb, "\nNew goals set: %d", r.Goals.Len())
	}
	sessionContext := sb.String()

	switch m.state {
	case models.StateFUGreetings:
		return fmt.Sprintf(`
Welcome %s back to Session %d.

Be warm and brief. Just say hi and ask how their week was.
NO markdown, emojis, or extra questions.
%s`, r.displayName(), n, prevGoals.String())

	case models.StateFUCheckInGoals:
		return fmt.Sprintf(`
Ask about their goal from last week.
%s

CRITICAL: Ask ONLY about how it went with their goal. ONE question.
NO stress questions, NO other topics.
Example: "How did it go with [goal]?"
%s`, prevGoals.String(), sessionContext)

	case models.StateFUStressLevel:
		return `
Ask ONLY about stress level (1-10).

"On a scale of 1 to 10, how stressed were you this week?"

CRITICAL: Do NOT ask about their goals, challenges, or anything else. Just stress level.
` + sessionContext

	case models.StateFUDiscoveryQuestions:
		pending := r.DiscoveryQueue
		if len(pending) > 3 {
			pending = pending[:3]
		}
		return fmt.Sprintf(`
Ask ONE discovery question.
Available: %s

Pick most relevant. Be conversational.
%s`, strings.Join(pending, ", "), sessionContext)

	case models.StateFUGoalCompletion:
		return `
Ask about goal completion.

CRITICAL: Ask this ONCE. Accept their answer. Do NOT ask follow-up questions about details.
Example: "Did you complete your goal?"
` + sessionContext

	case models.StateFUGoalsForNextWeek:
		return `
Ask what they want to focus on next week.

Three options:
1. Same goal as last week
2. Keep that goal AND add a new one
3. Completely new goals

Be clear and simple.
` + sessionContext

	case models.StateFUSameSuccessesChallenges:
		return `
They're keeping the same goal.

FIRST response (when you haven't asked yet): Acknowledge their choice briefly (1 sentence), then ask: "What went well this week? What was challenging?"

SECOND response (after they answer): Acknowledge what they shared in 1-2 sentences. DO NOT ask follow-up questions. DO NOT ask about modifying goals. DO NOT explore further. Just acknowledge and validate.

CRITICAL:
- NO questions about stress, confidence, modifications, or next steps
- NO exploring challenges in depth
- Just brief acknowledgment (1-2 sentences max)
- If they mention wanting to change something, acknowledge it but let them lead
` + sessionContext

	case models.StateFUSameAnythingToChange:
		return `
Ask if anything about their goal needs to be changed or worked on.

Keep it simple and direct: "Is there anything about this goal that needs to be changed or worked on?"
` + sessionContext

	case models.StateFUSameWhatConcerns:
		return `
They want to make changes. Ask what concerns they have or what solutions they're thinking about.

"What concerns do you have about the goal? Or what adjustments are you thinking about making?"
` + sessionContext

	case models.StateFUSameExploreSolutions:
		return `
Explore what specific adjustments would make the goal more achievable.

Guide them toward a concrete modification. Ask: "What would make it more achievable?"
` + sessionContext

	case models.StateFUDifferentWhichGoals:
		return fmt.Sprintf(`
They want to keep some goals and add new ones.

FIRST TIME: Ask which of their previous goals they want to keep.
%s

AFTER IDENTIFIED: They're describing their new goal idea - transition to asking for specifics.

Be conversational.
%s`, prevGoals.String(), sessionContext)

	case models.StateFUDifferentKeepingAndNew:
		keeping := "  - (identifying)"
		if len(r.GoalsToKeep) > 0 {
			var lines []string
			for _, g := range r.GoalsToKeep {
				lines = append(lines, "  - "+g)
			}
			keeping = strings.Join(lines, "\n")
		}
		return fmt.Sprintf(`
They're adding a new goal while keeping previous ones.

Goals they're keeping:
%s

If they haven't stated a clear new goal yet: Ask "What new goal would you like to add?"

If they've stated a general idea but it's not SMART yet: Guide them to make it specific with numbers and timeframe.

CRITICAL: Help them turn vague ideas into SMART goals. Ask clarifying questions to get:
- Specific action
- Measurable amount (how much, how many, how long)
- Timeframe (how often, which days)
%s`, keeping, sessionContext)

	case models.StateFUJustNewGoals:
		return `
Ask about new goal.

"What would you like to focus on?"
` + sessionContext

	case models.StateFURefineGoal:
		var missing []string
		if r.Analysis != nil {
			missing = r.Analysis.Missing
		}
		return fmt.Sprintf(`
Goal needs refinement to be SMART.

Complete goal so far: %s
Missing criteria: %s
Refinement attempts: %d/%d

CRITICAL: Your job is ONLY to help refine the goal. DO NOT ask about confidence yet.

Ask specific questions to get missing information:
- If missing SPECIFIC: "What exactly will you do?" (e.g., "play Pokemon Go", "walk")
- If missing MEASURABLE: "How much/many? How long?" (e.g., "1 hour", "3 times")
- If missing TIMEBOUND: "How often? Which days? When?" (e.g., "Tuesday, Thursday, Friday", "daily")

Keep questions simple and focused. One question at a time.
%s`, strings.Join(r.GoalFragments, " "), strings.Join(missing, ", "),
			r.RefinementAttempts, followUpRefinementCap, sessionContext)

	case models.StateFUConfidenceCheck:
		captured := "not yet captured"
		if r.Confidence != nil {
			captured = fmt.Sprintf("%d", *r.Confidence)
		}
		return fmt.Sprintf(`
Ask about confidence level ONCE, then move on.

Current goal: %s
Confidence already captured: %s

IF confidence not yet captured:
  Ask: "On a scale of 1 to 10, how confident are you that you can achieve this goal?"
  Wait for number.

IF confidence already captured and this is a follow-up response:
  Acknowledge VERY briefly (1 sentence max).
  DO NOT explore further.
  DO NOT ask follow-up questions.
  The system will automatically transition to the next appropriate state.

CRITICAL: Once you have the confidence number, you're done in this state.
%s`, r.CurrentGoal, captured, sessionContext)

	case models.StateFULowConfidence:
		return `
Low confidence. Explore what would help.
` + sessionContext

	case models.StateFUHighConfidence:
		return `
High confidence! Celebrate.
` + sessionContext

	case models.StateFUMakeAchievable:
		return `
Help make goal more achievable.
` + sessionContext

	case models.StateFURememberGoal:
		return `
Ask how they'll remember/track the goal.
` + sessionContext

	case models.StateFUMoreGoalsCheck:
		return `
Ask if they want to set another goal.

"Would you like to set another goal for this week?"

CRITICAL:
- This is a simple YES or NO question
- If YES -> they'll add another goal
- If NO -> session ends
- Don't ask "anything else" or continue conversation
- Wait for clear yes/no response
` + sessionContext

	case models.StateFUEndSession:
		var goalLines []string
		for _, g := range r.GoalsToKeep {
			goalLines = append(goalLines, "  - "+g)
		}
		for _, e := range r.Goals.Entries() {
			goalLines = append(goalLines, "  - "+e.Text)
		}
		goals := "  - (continuing previous goals)"
		if len(goalLines) > 0 {
			goals = strings.Join(goalLines, "\n")
		}
		return fmt.Sprintf(`
FINAL GOODBYE FOR SESSION %d.

CRITICAL INSTRUCTIONS:
- This is the FINAL message of Session %d
- DO NOT ask any questions
- DO NOT ask "Is there anything else?"
- DO NOT prompt for more conversation
- Give a warm, conclusive goodbye

Your goals for next week:
%s

Say something like:
"Great work today, %s! You'll be working on [briefly mention their goal(s)]. I'll see you next week at Session %d. Take care!"

Keep it to 2-3 sentences maximum. End definitively.
%s`, n, n, goals, r.displayName(), n+1, sessionContext)
	}

	return sessionContext
}
