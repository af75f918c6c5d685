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

// session4RefinementCap bounds refinement rounds for a new goal set in
// the closing session.
const session4RefinementCap = 4

// session4 runs the closing session: reinforce last week's goals, debrief
// on what happened, pick a focus for life after the program, and give the
// final farewell.
type session4 struct {
	rec   *Record
	eval  smarteval.Evaluator
	state models.StateType
}

func newSession4(rec *Record, eval smarteval.Evaluator) Machine {
	rec.Flow = models.FlowSession4
	return &session4{rec: rec, eval: eval, state: models.StateS4Greetings}
}

func (m *session4) Flow() models.FlowType       { return models.FlowSession4 }
func (m *session4) State() models.StateType     { return m.state }
func (m *session4) SetState(s models.StateType) { m.state = s }
func (m *session4) Record() *Record             { return m.rec }

func (m *session4) evaluate(ctx context.Context, text string) models.SmartAnalysis {
	analysis := m.eval.Evaluate(ctx, text)
	m.rec.Analysis = &analysis
	return analysis
}

func (m *session4) setAchieved(v bool) {
	achieved := v
	m.rec.GoalsAchieved = &achieved
}

// farewell latches the session shut with the given goodbye directive.
func (m *session4) farewell(context string, generate bool) models.StateResult {
	m.rec.FinalGoodbyeGiven = true
	res := moveTo(models.StateS4EndSession, context)
	res.TriggerRetrieval = generate
	return res
}

func (m *session4) ProcessInput(ctx context.Context, input string, history []models.ChatMessage) models.StateResult {
	r := m.rec
	r.TurnCount++
	lower := strings.ToLower(strings.TrimSpace(input))
	if lastCoach := r.lastAssistantText(history); lastCoach != "" {
		r.LastCoachResponse = lastCoach
	}

	slog.Debug("session4.ProcessInput", "state", m.state, "uid", r.UID, "turn", r.TurnCount)

	if m.state == models.StateS4EndSession && r.FinalGoodbyeGiven {
		return models.StateResult{
			Context:          "Session already ended. Politely acknowledge but don't continue conversation.",
			TriggerRetrieval: false,
		}
	}

	switch m.state {
	case models.StateS4Greetings:
		if strings.TrimSpace(input) == models.StartSessionSentinel {
			return stay(fmt.Sprintf("Welcome %s to Session 4. Keep it brief and warm.", r.displayName()))
		}
		r.markAsked("greeting")
		return moveTo(models.StateS4ReinforceGoal, "Acknowledge briefly. Move to reinforcing goals from last session.")

	case models.StateS4ReinforceGoal:
		if textHasAny(lower, []string{"hit both", "achieved both", "did both", "completed both", "yes", "yup", "yeah", "both", "all"}) {
			m.setAchieved(true)
			return moveTo(models.StateS4WhatHappened,
				"Great! They achieved goals. Ask: 'That's fantastic! What happened that made it work so well for you?'")
		}
		return moveTo(models.StateS4CheckInGoals, "Acknowledge briefly. Ask: 'How did achieving those goals go this week?'")

	case models.StateS4CheckInGoals:
		return m.handleCheckInGoals(lower)

	case models.StateS4WhatHappened:
		r.WhatHappened = input
		return moveTo(models.StateS4WhatCanBeDone, "Acknowledge their success. Ask what can be done to make things even better.")

	case models.StateS4WhatCanBeDone:
		return m.handleWhatCanBeDone(input, lower)

	case models.StateS4StressLevel:
		return m.handleStressLevel(input)

	case models.StateS4StressHighWhatHappened:
		r.WhatHappened = input
		return moveTo(models.StateS4StressHighAnythingToTalk,
			"Acknowledge their challenges. Ask if there's anything they'd like to discuss.")

	case models.StateS4StressHighAnythingToTalk:
		return moveTo(models.StateS4WhatsTheFocusToday, "Provide support. Move to focus selection.")

	case models.StateS4StressLowWhatHappened:
		r.WhatHappened = input
		return moveTo(models.StateS4WhatsTheFocusToday, "Acknowledge what happened. Move to focus selection.")

	case models.StateS4WhatsTheFocusToday:
		return m.handleFocusToday(ctx, input, lower)

	case models.StateS4CurrentGoalsAnythingChange:
		return m.handleAnythingToChange(input, lower)

	case models.StateS4SmartYesPath:
		if r.CurrentGoal != "" {
			r.Goals.Store(r.CurrentGoal, nil, r.Analysis, r.RefinementAttempts)
			r.CurrentGoal = ""
		}
		return moveTo(models.StateS4ConfidenceCheck, "Goal accepted and is SMART. Acknowledge briefly. Move to confidence check.")

	case models.StateS4SmartNoPath:
		return m.handleSmartNoPath(ctx, input)

	case models.StateS4ConfidenceCheck:
		confidence, ok := classify.ExtractFirstInteger(input)
		if !ok || confidence < 1 || confidence > models.MaxConfidence {
			return stay("Didn't get valid confidence level (1-10). Ask again.")
		}
		r.Confidence = &confidence
		r.Goals.SetLastConfidence(confidence)
		return m.routeConfidence(confidence)

	case models.StateS4LowConfidenceWhatSuccesses:
		return m.handleLowConfidenceSuccesses(input)

	case models.StateS4LowConfidenceMoreAchievable:
		if m.rec.bump("achievable_discussion") >= 1 {
			return moveTo(models.StateS4HowWillYouRemember,
				"Acknowledged adjustments. Ask: 'How will you remember to work on these goals and keep them going after our program ends?'")
		}
		return stay("Help them think through adjustments. Keep it brief - one more exchange max.")

	case models.StateS4HighConfidencePath:
		return moveTo(models.StateS4HowWillYouRemember,
			"Acknowledge high confidence briefly (1 sentence). Ask: 'How will you remember to work on these goals and keep them going after our program ends?'")

	case models.StateS4HowWillYouRemember:
		return m.handleHowWillYouRemember(lower)

	case models.StateS4AnyFinalQuestions:
		return m.handleFinalQuestions(input, lower)

	case models.StateS4EndSession:
		return m.farewell("Give the final farewell. This is the end of all 4 sessions. Warm, brief (2-3 sentences), and truly final.", false)
	}

	return stay("")
}

func (m *session4) handleCheckInGoals(lower string) models.StateResult {
	r := m.rec
	if !r.hasAsked("check_in_goals") {
		r.markAsked("check_in_goals")
		return stay("Ask: 'How did it go with your goals this past week?'")
	}

	positive := textHasAny(lower, []string{
		"yes", "great", "good", "achieved", "completed", "did it", "success",
		"both", "all", "accomplished", "hit", "met", "well", "worked",
	})
	negative := textHasAny(lower, []string{
		"no", "not really", "didn't", "couldn't", "failed", "hard",
		"difficult", "missed", "partially", "one", "only one",
	})
	explicitYes := textHasAny(lower, []string{"hit both", "achieved both", "did both", "both goals", "all goals"})
	explicitNo := textHasAny(lower, []string{"didn't hit", "missed", "only hit one", "couldn't do"})

	slog.Debug("session4 check-in signals", "positive", positive, "negative", negative,
		"explicit_yes", explicitYes, "explicit_no", explicitNo)

	switch {
	case explicitYes:
		m.setAchieved(true)
		return moveTo(models.StateS4WhatHappened, "Goals were achieved! Ask: 'What happened that made it work so well for you this week?'")
	case explicitNo:
		m.setAchieved(false)
		return moveTo(models.StateS4StressLevel, "Goals weren't achieved. Ask: 'On a scale of 1-10, what was your stress level this past week?'")
	case positive && !negative:
		m.setAchieved(true)
		return moveTo(models.StateS4WhatHappened, "Goals were achieved! Ask: 'What happened that made it work so well for you this week?'")
	case negative && !positive:
		m.setAchieved(false)
		return moveTo(models.StateS4StressLevel, "Goals weren't achieved. Ask: 'On a scale of 1-10, what was your stress level this past week?'")
	default:
		if m.rec.bump("check_in_clarification") >= 2 {
			// Still ambiguous after two attempts; assume positive and move on.
			m.setAchieved(true)
			return moveTo(models.StateS4WhatHappened, "Move forward assuming goals were achieved. Ask: 'What helped you stay on track this week?'")
		}
		return stay("Not clear if goals were achieved. Ask directly: 'Were you able to complete both of your goals this week?'")
	}
}

func (m *session4) handleWhatCanBeDone(input, lower string) models.StateResult {
	r := m.rec
	r.ImprovementsDiscussed = true

	hasChange := textHasAny(lower, []string{
		"increase", "decrease", "more", "less", "up", "down", "adjust",
		"change", "bump", "add", "different",
	})
	hasKeep := textHasAny(lower, []string{"keep", "same", "continue", "maintaining", "stay", "just keep"})

	switch {
	case hasChange && classify.IsLikelyGoal(input, classify.MinGoalWords):
		r.PathChosen = models.PathSame
		r.HasChanges = true
		r.ChangeDescription = input
		return moveTo(models.StateS4ConfidenceCheck,
			"Acknowledge the change briefly. Ask: 'On a scale of 1-10, how confident are you about achieving this adjusted goal?'")
	case hasKeep:
		r.PathChosen = models.PathSame
		return moveTo(models.StateS4CurrentGoalsAnythingChange,
			"They want to continue current goals. Ask: 'Is there anything that needs to change with your current goals, or are you good with keeping them as they are?'")
	default:
		return moveTo(models.StateS4WhatsTheFocusToday,
			"Acknowledged improvements. Ask: 'Would you like to continue working on these same goals, or would you prefer to set new goals for yourself?'")
	}
}

func (m *session4) handleStressLevel(input string) models.StateResult {
	r := m.rec
	stress, ok := classify.ExtractFirstInteger(input)
	if !ok || stress < 1 || stress > 10 {
		return stay("Didn't get valid stress level (1-10). Ask: 'On a scale of 1-10, what was your stress level this past week?'")
	}

	r.StressLevel = &stress
	r.markAsked("stress_level")
	if stress >= 7 {
		return moveTo(models.StateS4StressHighWhatHappened,
			fmt.Sprintf("High stress (%d/10). Ask what happened with empathy.", stress))
	}
	return moveTo(models.StateS4StressLowWhatHappened,
		fmt.Sprintf("Lower stress (%d/10). Ask what happened with their goals.", stress))
}

func (m *session4) handleFocusToday(ctx context.Context, input, lower string) models.StateResult {
	r := m.rec

	// Already on the new-goals path and the goal just arrived.
	if r.PathChosen == models.PathNew && classify.IsLikelyGoal(input, classify.MinGoalWords) {
		r.CurrentGoal = strings.TrimSpace(input)
		r.RefinementAttempts = 0

		analysis := m.evaluate(ctx, r.CurrentGoal)
		if analysis.IsSmart {
			return moveTo(models.StateS4SmartYesPath, "Goal is SMART. Acknowledge and move forward.")
		}
		return moveTo(models.StateS4SmartNoPath,
			fmt.Sprintf("Goal is not SMART. Missing: %s. Help refine it.", strings.Join(analysis.Missing, ", ")))
	}

	confidence, hasNumber := classify.ExtractFirstInteger(input)
	isConfidence := hasNumber && confidence >= 0 && confidence <= models.MaxConfidence
	isConfirming := textHasAny(lower, []string{"good", "fine", "yes", "perfect", "right", "correct", "keep", "stay"})

	// Coming back from the improvements discussion with a confidence
	// number means they are continuing current goals.
	if r.ImprovementsDiscussed && isConfidence {
		r.PathChosen = models.PathSame
		r.Confidence = &confidence
		r.HasChanges = true
		r.markAsked("confidence_check")
		if confidence < 7 {
			return moveTo(models.StateS4LowConfidenceWhatSuccesses,
				fmt.Sprintf("Confidence noted (%d/10). Explore successes to build confidence.", confidence))
		}
		return moveTo(models.StateS4HighConfidencePath,
			fmt.Sprintf("High confidence (%d/10)! Move forward to tracking.", confidence))
	}
	if r.ImprovementsDiscussed && isConfirming {
		return stay("Acknowledge their confirmation. Ask: 'On a scale of 1-10, how confident are you feeling about sticking with these goals?'")
	}

	hasCurrent := textHasAny(lower, []string{"current", "same", "keep", "continue", "existing", "maintaining", "focus", "working"})
	hasNew := textHasAny(lower, []string{"new", "different", "something else"})
	hasModify := textHasAny(lower, []string{"challenge", "more", "increase", "add", "adjust", "bump", "up", "raise"})

	switch {
	case hasCurrent && !hasNew:
		r.PathChosen = models.PathSame
		r.markAsked("focus_selection")
		if r.ChangeDescription != "" {
			return moveTo(models.StateS4ConfidenceCheck,
				"Confirm the change briefly. Ask: 'On a scale of 1-10, how confident are you about achieving this adjusted goal?'")
		}
		return moveTo(models.StateS4CurrentGoalsAnythingChange,
			"They chose current goals. Ask: 'Is there anything that needs to change with your current goals to help you be successful?'")
	case hasNew && !hasCurrent:
		r.PathChosen = models.PathNew
		r.markAsked("focus_selection")
		// Stay here until they state the goal itself.
		return stay("They want new goals. Ask: 'What would you like to focus on?'")
	case hasModify || (hasCurrent && hasNew):
		r.PathChosen = models.PathSame
		r.HasChanges = true
		r.ChangeDescription = input
		r.markAsked("focus_selection")
		return moveTo(models.StateS4ConfidenceCheck,
			"Acknowledge the adjustment. Ask: 'On a scale of 1-10, how confident are you about achieving this adjusted goal?'")
	default:
		return stay("Not clear which path they want. Ask directly: 'Would you like to continue working on your current goals, or would you prefer to set completely new goals?'")
	}
}

func (m *session4) handleAnythingToChange(input, lower string) models.StateResult {
	r := m.rec
	if !r.hasAsked("anything_to_change") {
		r.markAsked("anything_to_change")
		return stay("Ask: 'Is there anything that needs to change with your current goals to help you be successful?'")
	}

	hasNoChange := textHasAny(lower, []string{"no", "same", "keep", "good", "fine", "ready", "nothing"})
	hasChange := textHasAny(lower, []string{"yes", "change", "adjust", "modify", "increase", "decrease", "more", "less", "challenge"})

	confidence, hasNumber := classify.ExtractFirstInteger(input)
	isConfidence := hasNumber && confidence >= 0 && confidence <= models.MaxConfidence

	describingChange := len(strings.Fields(input)) > 5 &&
		textHasAny(lower, []string{"want", "going", "planning", "will"})

	count := r.bump("change_discussion")

	switch {
	case isConfidence:
		// Jumped straight to confidence; accept it.
		r.Confidence = &confidence
		r.HasChanges = false
		r.markAsked("confidence_check")
		if confidence < 7 {
			return moveTo(models.StateS4LowConfidenceWhatSuccesses,
				fmt.Sprintf("Confidence noted (%d/10). Explore successes to build confidence.", confidence))
		}
		return moveTo(models.StateS4HighConfidencePath,
			fmt.Sprintf("High confidence (%d/10)! Move forward to tracking.", confidence))
	case hasChange || describingChange:
		r.HasChanges = true
		if describingChange {
			r.ChangeDescription = input
			return moveTo(models.StateS4ConfidenceCheck,
				"Acknowledge their change briefly (1 sentence). Then ask: 'On a scale of 1-10, how confident are you about achieving this adjusted goal?'")
		}
		if count >= 2 {
			return moveTo(models.StateS4ConfidenceCheck,
				"Changes discussed. Ask: 'On a scale of 1-10, how confident are you about achieving these goals?'")
		}
		return stay("Acknowledge their desire to change. Ask: 'What would you like to adjust?'")
	case hasNoChange || classify.IsNegative(input):
		r.HasChanges = false
		return moveTo(models.StateS4ConfidenceCheck,
			"No changes needed. Ask: 'On a scale of 1-10, how confident are you about achieving these goals?'")
	case count >= 3:
		r.HasChanges = true
		return moveTo(models.StateS4ConfidenceCheck,
			"Acknowledge what they've shared. Ask: 'On a scale of 1-10, how confident are you about achieving these goals?'")
	default:
		if count >= 2 {
			return stay("Continue briefly, then ask: 'On a scale of 1-10, how confident are you about achieving these goals?'")
		}
		return stay("Listen to their thoughts on potential changes. Guide them toward clarity on what they want to adjust.")
	}
}

func (m *session4) handleSmartNoPath(ctx context.Context, input string) models.StateResult {
	r := m.rec
	if !classify.IsLikelyGoal(input, classify.MinGoalWords) {
		return stay("Encourage them to refine their goal. Ask specific questions about what's missing to make it SMART.")
	}

	r.CurrentGoal = strings.TrimSpace(input)
	r.RefinementAttempts++

	analysis := m.evaluate(ctx, r.CurrentGoal)
	if analysis.IsSmart || r.RefinementAttempts >= session4RefinementCap {
		r.Goals.Store(r.CurrentGoal, nil, r.Analysis, r.RefinementAttempts)
		r.CurrentGoal = ""
		return moveTo(models.StateS4ConfidenceCheck, "Goal refined and accepted. Move to confidence check.")
	}
	return stay(fmt.Sprintf("Still needs work. Missing: %s. Help refine with specific questions.", strings.Join(analysis.Missing, ", ")))
}

func (m *session4) routeConfidence(confidence int) models.StateResult {
	if confidence < 7 {
		return moveTo(models.StateS4LowConfidenceWhatSuccesses,
			fmt.Sprintf("Low confidence (%d/10). Explore successes.", confidence))
	}
	return moveTo(models.StateS4HighConfidencePath,
		fmt.Sprintf("Good confidence (%d/10). Move forward.", confidence))
}

func (m *session4) handleLowConfidenceSuccesses(input string) models.StateResult {
	r := m.rec

	// A number here means they restated confidence; honor it.
	if confidence, ok := classify.ExtractFirstInteger(input); ok && confidence >= 1 && confidence <= models.MaxConfidence {
		r.Confidence = &confidence
		if confidence >= 7 {
			return moveTo(models.StateS4HighConfidencePath, "High confidence! Transition to tracking.")
		}
	}

	if !r.hasAsked("what_successes") {
		r.markAsked("what_successes")
		return stay("Low confidence. Ask: 'What successes have you had so far, even small ones, that show you can do this?'")
	}

	if r.bump("success_discussion") >= 1 {
		return moveTo(models.StateS4LowConfidenceMoreAchievable,
			"Acknowledged their successes and support. Ask: 'How can we adjust your goal to make it feel more achievable? Would scaling it back help build your confidence?'")
	}
	return stay("Briefly acknowledge. Ask one more question about their support system or what's helped them succeed before.")
}

var goodbyeWords = []string{"bye", "goodbye", "thank you", "thanks", "see you"}

func (m *session4) handleHowWillYouRemember(lower string) models.StateResult {
	r := m.rec
	if !r.hasAsked("tracking_method") {
		r.markAsked("tracking_method")
		r.TrackingDiscussed = true
		return moveTo(models.StateS4AnyFinalQuestions,
			"Ask: 'How will you remember to work on these goals and keep them going after our program ends?'")
	}
	if textHasAny(lower, goodbyeWords) {
		return m.farewell("Brief goodbye only. Maximum 1 sentence.", false)
	}
	return stay("Acknowledge their tracking plan briefly.")
}

func (m *session4) handleFinalQuestions(input, lower string) models.StateResult {
	r := m.rec
	if !r.hasAsked("final_questions") {
		r.markAsked("final_questions")
		return stay("Ask: 'Do you have any final questions or anything else you'd like to discuss before we end?'")
	}
	if classify.IsNegative(input) || strings.Contains(lower, "no") {
		// Generate the full program farewell.
		return m.farewell("Give final farewell for the entire 4-session program. Warm, encouraging, brief (2-3 sentences). This is THE END.", true)
	}
	if textHasAny(lower, goodbyeWords) {
		return m.farewell("Brief goodbye only. Maximum 1 sentence.", false)
	}
	return stay("Answer their question thoughtfully, then ask: 'Is there anything else before we finish?'")
}

// PromptAddition returns the state-specific system prompt text for the
// response generator.
func (m *session4) PromptAddition() string {
	r := m.rec

	var prevGoals strings.Builder
	if len(r.PreviousGoals) > 0 {
		prevGoals.WriteString("\nGoals from last session:")
		for i, g := range r.PreviousGoals {
			fmt.Fprintf(&prevGoals, "\n  %d. %q", i+1, g.Description)
		}
	}

	var sb strings.Builder
	if r.StressLevel != nil {
		fmt.Fprintf(&sb, "\nStress level: %d/10", *r.StressLevel)
	}
	if r.GoalsAchieved != nil {
		fmt.Fprintf(&sb, "\nGoals achieved last week: %t", *r.GoalsAchieved)
	}
	if r.Goals.Len() > 0 {
		fmt.Fprintf(&sb, "\nNew goals set: %d", r.Goals.Len())
	}
	sessionContext := sb.String()

	switch m.state {
	case models.StateS4Greetings:
		return fmt.Sprintf(`
Welcome %s to Session 4, the FINAL session of the program.

Be warm and brief. Say hi and acknowledge this is the last session together.
NO markdown, emojis, or extra questions.
%s`, r.displayName(), prevGoals.String())

	case models.StateS4ReinforceGoal:
		return fmt.Sprintf(`
Reinforce the goals from last session.
%s

Briefly remind them what they committed to, then ask how it went this week.
ONE question only.
%s`, prevGoals.String(), sessionContext)

	case models.StateS4CheckInGoals:
		return fmt.Sprintf(`
Ask how it went with their goals this past week.
%s

CRITICAL: Ask ONLY about the goals. ONE question.
%s`, prevGoals.String(), sessionContext)

	case models.StateS4WhatHappened:
		return `
They achieved their goals. Ask what happened that made it work so well.

Be curious and celebratory. ONE question.
` + sessionContext

	case models.StateS4WhatCanBeDone:
		return `
Ask what could be done to make things even better going forward.

Keep it open-ended and brief.
` + sessionContext

	case models.StateS4StressLevel:
		return `
Ask ONLY about stress level (1-10).

"On a scale of 1 to 10, what was your stress level this past week?"

CRITICAL: Do NOT ask about anything else. Just stress level.
` + sessionContext

	case models.StateS4StressHighWhatHappened:
		return `
Their stress was high this week. Ask what happened, with empathy.

Be gentle. ONE question.
` + sessionContext

	case models.StateS4StressHighAnythingToTalk:
		return `
Offer support. Ask if there's anything they'd like to talk through.

Keep it brief and caring.
` + sessionContext

	case models.StateS4StressLowWhatHappened:
		return `
Stress was manageable. Ask what happened with their goals this week.

ONE question.
` + sessionContext

	case models.StateS4WhatsTheFocusToday:
		return `
Help them pick the focus for life after the program.

Two options:
1. Continue working on their current goals
2. Set completely new goals

Be clear and simple. ONE question.
` + sessionContext

	case models.StateS4CurrentGoalsAnythingChange:
		return fmt.Sprintf(`
They're continuing their current goals.
%s

Ask: "Is there anything that needs to change with your current goals to help you be successful?"
%s`, prevGoals.String(), sessionContext)

	case models.StateS4NewGoalsSmartCheck, models.StateS4SmartNoPath:
		var missing []string
		if r.Analysis != nil {
			missing = r.Analysis.Missing
		}
		return fmt.Sprintf(`
Goal needs refinement to be SMART.

Current goal: %s
Missing criteria: %s
Refinement attempts: %d/%d

Ask specific questions to get missing information (numbers, frequency, timeframe).
DO NOT ask about confidence yet.
%s`, r.CurrentGoal, strings.Join(missing, ", "), r.RefinementAttempts, session4RefinementCap, sessionContext)

	case models.StateS4SmartYesPath:
		return `
Goal is SMART. Acknowledge it briefly and positively, then move on.
` + sessionContext

	case models.StateS4ConfidenceCheck:
		return `
Ask about confidence level ONCE, then move on.

Ask: "On a scale of 1 to 10, how confident are you about achieving these goals?"
Wait for the number. Do not explore further.
` + sessionContext

	case models.StateS4LowConfidenceWhatSuccesses:
		return `
Confidence is low. Build it up from evidence.

Ask: "What successes have you had so far, even small ones, that show you can do this?"
` + sessionContext

	case models.StateS4LowConfidenceMoreAchievable:
		return `
Help adjust the goal to feel more achievable.

Ask: "How can we adjust your goal to make it feel more achievable? Would scaling it back help?"
` + sessionContext

	case models.StateS4HighConfidencePath:
		return `
High confidence! Celebrate briefly (1 sentence), then ask how they'll keep
the goals going after the program ends.
` + sessionContext

	case models.StateS4HowWillYouRemember:
		return `
Ask: "How will you remember to work on these goals and keep them going after our program ends?"

This is about life AFTER the program. There are no more sessions.
` + sessionContext

	case models.StateS4AnyFinalQuestions:
		return `
Ask: "Do you have any final questions or anything else you'd like to discuss before we end?"

If they ask a question, answer it thoughtfully, then ask if there's anything else.
` + sessionContext

	case models.StateS4EndSession:
		return fmt.Sprintf(`
FINAL FAREWELL FOR THE ENTIRE 4-SESSION PROGRAM.

CRITICAL INSTRUCTIONS:
- This is THE LAST message of the whole program
- DO NOT ask any questions
- DO NOT mention a next session - there is none
- Emphasize they now own their goals and their tracking
- Warm, encouraging, brief (2-3 sentences)

Say something like:
"It's been wonderful working with you, %s. You've built real momentum - keep it going. Take care!"
%s`, r.displayName(), sessionContext)
	}

	return sessionContext
}
