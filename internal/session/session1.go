package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/BTreeMap/CoachPipe/internal/classify"
	"github.com/BTreeMap/CoachPipe/internal/goal"
	"github.com/BTreeMap/CoachPipe/internal/models"
	"github.com/BTreeMap/CoachPipe/internal/smarteval"
)

// ProgramInfo is the program description the coach explains during
// onboarding and uses to answer program questions.
const ProgramInfo = `This is a 4-week health and wellness coaching program designed to help you achieve your personal health goals.
- Weekly 1-on-1 coaching sessions
- Personalized goal setting and tracking
- Evidence-based behavior change strategies
- Nutrition and exercise guidance
- Accountability and support throughout your journey`

// session1RefinementCap bounds how many refinement rounds the onboarding
// session spends on a single goal before accepting it as-is.
const session1RefinementCap = 4

// session1 runs the onboarding flow: introductions, program Q&A,
// discovery, and the participant's first SMART goal.
type session1 struct {
	rec   *Record
	eval  smarteval.Evaluator
	state models.StateType
}

func newSession1(rec *Record, eval smarteval.Evaluator) Machine {
	rec.Flow = models.FlowSession1
	return &session1{rec: rec, eval: eval, state: models.StateS1Greetings}
}

func (m *session1) Flow() models.FlowType       { return models.FlowSession1 }
func (m *session1) State() models.StateType     { return m.state }
func (m *session1) SetState(s models.StateType) { m.state = s }
func (m *session1) Record() *Record             { return m.rec }

func (m *session1) evaluate(ctx context.Context, text string) models.SmartAnalysis {
	analysis := m.eval.Evaluate(ctx, text)
	m.rec.Analysis = &analysis
	return analysis
}

// storeGoal records the current goal with its analysis and refinement
// count. A nil confidence leaves any existing confidence in place.
func (m *session1) storeGoal(confidence *int) {
	r := m.rec
	if r.CurrentGoal == "" {
		return
	}
	r.Goals.Store(r.CurrentGoal, confidence, r.Analysis, r.RefinementAttempts)
}

func (m *session1) ProcessInput(ctx context.Context, input string, history []models.ChatMessage) models.StateResult {
	r := m.rec
	r.TurnCount++
	lower := strings.ToLower(strings.TrimSpace(input))
	lastCoach := r.lastAssistantText(history)
	if lastCoach != "" {
		r.LastCoachResponse = lastCoach
	}

	slog.Debug("session1.ProcessInput", "state", m.state, "uid", r.UID, "turn", r.TurnCount)

	// If a goal is stored and both sides are already saying goodbye, end
	// regardless of where the state machine is.
	if m.state != models.StateS1EndSession && r.Goals.Len() > 0 &&
		userReadyToEnd(lower) && coachSaidGoodbye(lastCoach) {
		return moveTo(models.StateS1EndSession,
			"Both sides are wrapping up. Provide a warm closing with a brief summary. Confirm next session is in 1 week.")
	}

	switch m.state {
	case models.StateS1Greetings:
		return m.handleGreetings(input, lower)
	case models.StateS1ProgramDetails:
		return m.handleProgramDetails(input, lower)
	case models.StateS1QuestionsAboutProgram:
		return m.handleQuestionsAboutProgram(input, lower)
	case models.StateS1AwaitingYesNo:
		return m.handleAwaitingYesNo(input, lower, lastCoach)
	case models.StateS1AnsweringQuestion:
		return m.handleAnsweringQuestion(input, lower)
	case models.StateS1PromptTalkAboutSelf:
		return moveTo(models.StateS1GettingToKnowYou,
			"Transition to discovery. Explain you'll ask questions to know them.")
	case models.StateS1GettingToKnowYou:
		return m.handleGettingToKnowYou(input, lower)
	case models.StateS1Goals:
		return m.handleGoals(ctx, input)
	case models.StateS1CheckSmart:
		return m.handleCheckSmart()
	case models.StateS1RefineGoal:
		return m.handleRefineGoal(ctx, input, lower, lastCoach)
	case models.StateS1ConfidenceCheck:
		return m.handleConfidenceCheck(input)
	case models.StateS1LowConfidence:
		if strings.Contains(lower, "rework") || strings.Contains(lower, "change") || strings.Contains(lower, "different") {
			return moveTo(models.StateS1Goals, "They want to rework the goal. Ask what they'd like to achieve instead.")
		}
		return moveTo(models.StateS1AskMoreGoals, "Acknowledge their plan to make it more doable. Ask about another goal.")
	case models.StateS1HighConfidence:
		return m.handleHighConfidence(input, lower, history)
	case models.StateS1AskMoreGoals:
		return m.handleAskMoreGoals(input, lower, lastCoach, history)
	case models.StateS1RememberGoal:
		return m.handleRememberGoal(input, lower, lastCoach)
	case models.StateS1EndSession:
		if r.Goals.Len() == 0 {
			return moveTo(models.StateS1Goals, "No goals stored yet. Make sure there is a clear goal before ending.")
		}
		return stay("Session complete. Provide brief, warm confirmation if needed, but session is ending.")
	}

	return stay("")
}

func (m *session1) handleGreetings(input, lower string) models.StateResult {
	if strings.TrimSpace(input) == models.StartSessionSentinel {
		return stay("First message. Introduce yourself as Nala and ask for their name.")
	}

	if name := classify.ExtractName(input); name != "" {
		m.rec.UserName = name
	}

	name := m.rec.UserName
	if name == "" {
		name = "Not provided"
	}
	return moveTo(models.StateS1ProgramDetails,
		fmt.Sprintf("User's name: %s\n\nExplain program details.", name))
}

func (m *session1) handleProgramDetails(input, lower string) models.StateResult {
	if textHasAny(lower, []string{"yes", "yeah", "yep", "sure", "i do", "i have"}) {
		res := moveTo(models.StateS1AnsweringQuestion,
			fmt.Sprintf("Program Info:\n%s\n\nAnswer their question.", ProgramInfo))
		res.TriggerRetrieval = false
		return res
	}
	if textHasAny(lower, []string{"no", "nope", "nah", "don't", "dont", "no questions"}) {
		return moveTo(models.StateS1PromptTalkAboutSelf, "No questions. Transition to discovery.")
	}
	return moveTo(models.StateS1AwaitingYesNo, "Ask if they have questions about the program.")
}

func (m *session1) handleQuestionsAboutProgram(input, lower string) models.StateResult {
	isAsking := strings.Contains(input, "?") || len(strings.Fields(input)) > 3
	noMore := textHasAny(lower, []string{
		"no", "nope", "ready", "let's start", "im good", "i'm good",
		"that's all", "thats all", "no questions", "none",
	})

	switch {
	case noMore:
		return moveTo(models.StateS1PromptTalkAboutSelf, "User has no more questions. Transition to discovery phase.")
	case isAsking:
		res := moveTo(models.StateS1AnsweringQuestion,
			fmt.Sprintf("Program Info:\n%s\n\nAnswer their question about the program.", ProgramInfo))
		res.TriggerRetrieval = false
		return res
	default:
		return stay("Ask if they have any questions about the program.")
	}
}

func (m *session1) handleAwaitingYesNo(input, lower, lastCoach string) models.StateResult {
	coachLower := strings.ToLower(lastCoach)
	coachAsking := coachAskedAboutQs(lastCoach)

	if textHasAny(lower, []string{"yes", "yeah", "yep", "sure", "i do"}) {
		if coachAsking && textHasAny(coachLower, []string{"does that help", "clarify", "answer your question"}) {
			return moveTo(models.StateS1PromptTalkAboutSelf, "User's question was answered. Transition to discovery phase.")
		}
		if len(strings.Fields(input)) > 1 || strings.Contains(input, "?") {
			res := moveTo(models.StateS1AnsweringQuestion,
				fmt.Sprintf("Program Info:\n%s\n\nAnswer their question.", ProgramInfo))
			res.TriggerRetrieval = false
			return res
		}
		res := moveTo(models.StateS1QuestionsAboutProgram, "User has questions. Ask what they'd like to know.")
		res.TriggerRetrieval = false
		return res
	}

	if textHasAny(lower, []string{"no", "nope", "nah", "don't", "dont", "no questions"}) {
		return moveTo(models.StateS1PromptTalkAboutSelf, "User has no questions. Transition to discovery phase.")
	}

	if strings.Contains(input, "?") || len(strings.Fields(input)) <= 3 {
		res := moveTo(models.StateS1AnsweringQuestion,
			fmt.Sprintf("Program Info:\n%s\n\nAnswer their question about: %s", ProgramInfo, input))
		res.TriggerRetrieval = false
		return res
	}
	return stay("Ask user to clarify: do they have questions about the program? (yes/no)")
}

func (m *session1) handleAnsweringQuestion(input, lower string) models.StateResult {
	hasMore := textHasAny(lower, []string{"yes", "yeah", "another", "one more", "what about", "how about"})
	noMore := textHasAny(lower, []string{
		"no", "nope", "ready", "let's start", "im good", "i'm good", "that's all", "thats all",
	})

	switch {
	case hasMore:
		res := moveTo(models.StateS1QuestionsAboutProgram,
			fmt.Sprintf("Program Info:\n%s\n\nUser has another question. Ask what they'd like to know.", ProgramInfo))
		res.TriggerRetrieval = false
		return res
	case noMore:
		return moveTo(models.StateS1PromptTalkAboutSelf, "User ready to start. Transition to discovery phase.")
	default:
		return moveTo(models.StateS1AwaitingYesNo, "Ask if they have any other questions about the program before starting.")
	}
}

var discoveryQuestionPrompts = map[string]string{
	"general_about":    "Ask: 'Tell me a bit about yourself - what's important to you right now?'",
	"current_exercise": "Ask: 'What does your current exercise routine look like?'",
	"current_sleep":    "Ask: 'How are your sleep habits? How many hours do you typically get per night?'",
	"current_eating":   "Ask: 'What are your current eating habits like? Walk me through a typical day.'",
	"free_time":        "Ask: 'What do you like to do in your free time?'",
}

func (m *session1) discoverySummary() string {
	r := m.rec
	get := func(topic string) string {
		if v, ok := r.DiscoveryAnswers[topic]; ok {
			return v
		}
		return "Not shared"
	}
	return fmt.Sprintf(`- About: %s
- Exercise: %s
- Sleep: %s
- Eating: %s
- Free time: %s`,
		get("general_about"), get("current_exercise"), get("current_sleep"),
		get("current_eating"), get("free_time"))
}

func (m *session1) handleGettingToKnowYou(input, lower string) models.StateResult {
	r := m.rec

	statingGoal := classify.ContainsGoalKeywords(input)
	minDiscoveryComplete := r.DiscoveryIndex >= 3

	if statingGoal && len(strings.Fields(input)) > 4 && minDiscoveryComplete {
		return moveTo(models.StateS1Goals, fmt.Sprintf(`User stated a goal after discovery!
Discovery info:
%s

User's goal statement: %q

IMPORTANT: Acknowledge their goal and help them make it SMART.`, m.discoverySummary(), input))
	}

	// Record the answer to the previous question and advance the pointer.
	// Index 0 is the intro turn; later indices map to the ordered topics.
	if r.DiscoveryIndex >= 1 && r.DiscoveryIndex <= len(discoveryTopics) {
		r.DiscoveryAnswers[discoveryTopics[r.DiscoveryIndex-1]] = strings.TrimSpace(input)
	}
	if r.DiscoveryIndex <= len(discoveryTopics) {
		r.DiscoveryIndex++
	}

	var remaining []string
	for _, topic := range discoveryTopics {
		if _, ok := r.DiscoveryAnswers[topic]; !ok {
			remaining = append(remaining, topic)
		}
	}

	if len(remaining) == 0 {
		return moveTo(models.StateS1Goals, fmt.Sprintf(`Discovery complete!
Info gathered:
%s

Now transition to goal setting. Ask: "What specific health or wellness goal would you like to focus on?"`, m.discoverySummary()))
	}

	next := remaining[0]
	covered := len(discoveryTopics) - len(remaining)
	return stay(fmt.Sprintf(`Discovery - next question: %s
Covered: %d/5
Remaining: %s

Acknowledge their response warmly, then ask:
%s`, next, covered, strings.Join(remaining, ", "), discoveryQuestionPrompts[next]))
}

func (m *session1) handleGoals(ctx context.Context, input string) models.StateResult {
	r := m.rec
	candidate := strings.TrimSpace(input)

	if !classify.IsLikelyGoal(candidate, classify.MinGoalWords) {
		return stay("Not a clear goal. Ask them to describe what they'd like to achieve.")
	}

	r.CurrentGoal = candidate
	r.RefinementAttempts = 0

	analysis := m.evaluate(ctx, candidate)
	if analysis.IsSmart {
		m.storeGoal(nil)
		return moveTo(models.StateS1ConfidenceCheck,
			fmt.Sprintf("Goal is SMART! Celebrate.\nGoal: %s", candidate))
	}
	return moveTo(models.StateS1CheckSmart, fmt.Sprintf(`SMART Analysis:
Goal: %q
Is SMART: No
Missing: %s
Suggestions: %s

Explain what's missing and guide refinement.`, candidate, strings.Join(analysis.Missing, ", "), analysis.Feedback))
}

func (m *session1) handleCheckSmart() models.StateResult {
	r := m.rec
	if r.Analysis != nil && r.Analysis.IsSmart {
		m.storeGoal(nil)
		return moveTo(models.StateS1ConfidenceCheck, "Goal is SMART! Celebrate and ask for confidence level.")
	}

	var missing, feedback string
	if r.Analysis != nil {
		missing = strings.Join(r.Analysis.Missing, ", ")
		feedback = r.Analysis.Feedback
	}
	return moveTo(models.StateS1RefineGoal, fmt.Sprintf(`Goal needs refinement.
Missing: %s
Suggestions: %s

Guide them to make it more SMART. Be specific about what's missing.`, missing, feedback))
}

var movingForwardPhrases = []string{
	"notes", "calendar", "reminder", "app", "track", "write down",
	"thanks", "thank you", "sounds good", "perfect", "great",
	"see you", "bye", "goodbye", "todo list", "planner",
}

func (m *session1) handleRefineGoal(ctx context.Context, input, lower, lastCoach string) models.StateResult {
	r := m.rec
	candidate := strings.TrimSpace(input)

	// When the coach is summarizing the goal back, rebuild the goal text
	// from the pieces scattered across both sides of the exchange.
	if rebuilt := goal.ExtractFromCoachResponse(lastCoach, input); rebuilt != "" {
		r.CurrentGoal = rebuilt
		r.RefinementAttempts++

		analysis := m.evaluate(ctx, rebuilt)
		if analysis.IsSmart {
			m.storeGoal(nil)
			return moveTo(models.StateS1ConfidenceCheck,
				fmt.Sprintf("Refined goal is SMART: '%s'\nAsk for confidence level (1-10 scale).", rebuilt))
		}
		return stay(fmt.Sprintf("Goal refined to: '%s' but still needs work.\nContinue helping them make it more specific.", rebuilt))
	}

	coachAccepted := goal.CoachAccepted(lastCoach)
	likelyGoal := classify.IsLikelyGoal(candidate, classify.MinGoalWords)
	movingForward := textHasAny(lower, movingForwardPhrases)

	if (movingForward || coachAccepted) && r.CurrentGoal != "" {
		if r.Goals.Len() == 0 {
			confidence := 8
			m.storeGoal(&confidence)
		}
		if movingForward && textHasAny(lower, []string{"todo", "calendar", "reminder", "track", "note"}) {
			return moveTo(models.StateS1RememberGoal, fmt.Sprintf(`User described tracking method: %q
Goal: %q
Acknowledge their tracking plan and ask if there's anything else before wrapping up.`, input, r.CurrentGoal))
		}
		return moveTo(models.StateS1ConfidenceCheck,
			fmt.Sprintf("Goal accepted: %q\nAsk for confidence level (1-10 scale).", r.CurrentGoal))
	}

	if likelyGoal {
		if classify.IsGoalQuestion(candidate) {
			return stay("User asking a question. Answer and help them finalize the goal statement.")
		}

		r.CurrentGoal = goal.Enhance(r.CurrentGoal, candidate)
		r.RefinementAttempts++

		analysis := m.evaluate(ctx, r.CurrentGoal)
		if analysis.IsSmart {
			m.storeGoal(nil)
			return moveTo(models.StateS1ConfidenceCheck,
				fmt.Sprintf("Refined goal is SMART: '%s'\nAsk for confidence level.", r.CurrentGoal))
		}
		if r.RefinementAttempts >= session1RefinementCap {
			m.storeGoal(nil)
			return moveTo(models.StateS1ConfidenceCheck,
				fmt.Sprintf("After %d attempts, move forward with: '%s'\nAsk for confidence.", r.RefinementAttempts, r.CurrentGoal))
		}
		return stay(fmt.Sprintf(`Refinement attempt %d.
Goal: %q
Still missing: %s

Ask specific question to get the missing piece. What exactly do they need to add?`,
			r.RefinementAttempts, r.CurrentGoal, strings.Join(analysis.Missing, ", ")))
	}

	if textHasAny(lower, []string{"stick with", "keep", "thats all", "that's all"}) {
		if r.CurrentGoal != "" {
			m.storeGoal(nil)
			return moveTo(models.StateS1ConfidenceCheck,
				fmt.Sprintf("User keeping: '%s'. Check confidence.", r.CurrentGoal))
		}
		return stay("Encourage them to state a goal.")
	}
	return stay("Ask user to refine their goal.")
}

func (m *session1) handleConfidenceCheck(input string) models.StateResult {
	r := m.rec
	confidence, ok := classify.ExtractFirstInteger(input)
	if !ok {
		return stay("Ask for numeric confidence (1-10)")
	}

	r.Confidence = &confidence
	r.Goals.SetLastConfidence(confidence)

	if confidence <= 7 {
		return moveTo(models.StateS1LowConfidence,
			fmt.Sprintf("Confidence %d/10. Explore what would make the goal feel more doable.", confidence))
	}
	return moveTo(models.StateS1HighConfidence,
		fmt.Sprintf("Confidence %d/10. Celebrate, then ask about another goal.", confidence))
}

var noMoreGoalsPhrases = []string{
	"no", "nope", "just", "only", "focus on", "stick with", "that's all", "thats all",
}

func (m *session1) handleHighConfidence(input, lower string, history []models.ChatMessage) models.StateResult {
	// The coach's celebration usually carries the "another goal?" question
	// with it, so classify the reply directly instead of burning a turn.
	wantsMore := textHasAny(lower, []string{"yes", "yeah", "yep", "sure", "another", "one more", "i'd like", "i want"})
	noMore := textHasAny(lower, noMoreGoalsPhrases)

	switch {
	case wantsMore:
		return moveTo(models.StateS1Goals, "Great! Ask about their next goal.")
	case noMore:
		if m.rec.TrackingDiscussed || historyMentionsTracking(history) {
			return moveTo(models.StateS1EndSession, "No more goals and tracking discussed. Wrap up session.")
		}
		return moveTo(models.StateS1RememberGoal, "No more goals. Ask how they'll track/remember their goal.")
	default:
		return moveTo(models.StateS1AskMoreGoals, "Celebrate their confidence. Ask if they'd like to set another goal.")
	}
}

func (m *session1) handleAskMoreGoals(input, lower, lastCoach string, history []models.ChatMessage) models.StateResult {
	r := m.rec
	wantsMore := textHasAny(lower, []string{"yes", "yeah", "yep", "sure", "another", "one more", "i'd like", "i want"})
	noMore := textHasAny(lower, noMoreGoalsPhrases)
	wrappedUp := coachWrappedUp(lastCoach)

	confirmingEnd := false
	switch lower {
	case "are we done", "is that it", "are we finished", "ok", "thanks", "thank you":
		confirmingEnd = true
	}

	switch {
	case wantsMore:
		return moveTo(models.StateS1Goals, "Great! Ask about their next goal.")
	case wrappedUp && (noMore || confirmingEnd):
		return moveTo(models.StateS1EndSession, "Session complete. Confirm and close warmly.")
	case noMore:
		if !r.TrackingDiscussed && historyMentionsTracking(history) {
			r.TrackingDiscussed = true
		}
		if r.TrackingDiscussed || wrappedUp {
			return moveTo(models.StateS1EndSession, "No more goals and tracking discussed. Wrap up session.")
		}
		return moveTo(models.StateS1RememberGoal, "No more goals. Ask how they'll track/remember their goal.")
	default:
		return stay("Ask user to clarify: would they like to set another goal or focus on this one?")
	}
}

var trackingMethodWords = []string{
	"calendar", "reminder", "app", "note", "journal", "planner", "todo",
	"phone", "alarm", "schedule", "write", "set",
}

func (m *session1) handleRememberGoal(input, lower, lastCoach string) models.StateResult {
	r := m.rec

	describedTracking := textHasAny(lower, trackingMethodWords)
	if describedTracking {
		r.TrackingDiscussed = true
	}

	askedWrapUp := coachAskedWrapUp(lastCoach) || r.hasAsked("wrap_up")
	saidGoodbye := coachSaidGoodbye(lastCoach)

	if saidGoodbye || (askedWrapUp && userReadyToEnd(lower)) {
		var descriptions []string
		for _, e := range r.Goals.Entries() {
			descriptions = append(descriptions, e.Text)
		}
		return moveTo(models.StateS1EndSession, fmt.Sprintf(`Session wrapping up naturally.
Goal(s): %s

Provide warm closing with brief summary. Confirm next session is in 1 week.`, strings.Join(descriptions, ", ")))
	}

	if describedTracking && !askedWrapUp {
		r.markAsked("wrap_up")
		return stay("Acknowledge tracking plan and ask: 'Is there anything else you'd like to talk about before we wrap up today?'")
	}
	if !describedTracking && !r.TrackingDiscussed {
		return stay("Ask about their tracking plan. How will they remember their goal?")
	}
	return stay("Acknowledge and prepare to wrap up session.")
}

// PromptAddition returns the state-specific system prompt text for the
// response generator.
func (m *session1) PromptAddition() string {
	r := m.rec

	var sb strings.Builder
	if r.DiscoveryIndex > 0 {
		fmt.Fprintf(&sb, "\nDiscovery questions asked: %d", r.DiscoveryIndex)
	}
	if r.Goals.Len() > 0 {
		fmt.Fprintf(&sb, "\nGoals set: %d", r.Goals.Len())
	}
	if r.CurrentGoal != "" {
		fmt.Fprintf(&sb, "\nCurrent goal: %s", r.CurrentGoal)
	}
	sessionContext := sb.String()

	switch m.state {
	case models.StateS1Greetings:
		return `
You are beginning Session 1. Warmly greet the participant and introduce yourself as Nala, their AI health coach.

IMPORTANT:
- ASK FOR THEIR NAME explicitly!
- Be warm and natural
- NO markdown (no #, **, emojis)

Example: "Hello! I'm Nala, your health and wellness coach. What's your name?"

Be enthusiastic about working with them.` + sessionContext

	case models.StateS1ProgramDetails:
		return fmt.Sprintf(`
Explain the program details. Here is the program information:

%s

IMPORTANT:
- Keep it conversational
- NO markdown or emojis
- After explaining, ask if they have questions

Do NOT ask about goals yet.%s`, ProgramInfo, sessionContext)

	case models.StateS1QuestionsAboutProgram:
		return `
Answer questions about the program. After answering, ask if they have more questions.
NO markdown or emojis.` + sessionContext

	case models.StateS1AwaitingYesNo:
		return `
Ask user to clarify: do they have questions about the program? (yes/no)
NO markdown or emojis.` + sessionContext

	case models.StateS1AnsweringQuestion:
		return fmt.Sprintf(`
Answer their question about the program.

Program info:
%s

After answering, ask if they have any other questions.
NO markdown or emojis.%s`, ProgramInfo, sessionContext)

	case models.StateS1PromptTalkAboutSelf:
		return `
Transition to discovery phase. Explain you'd like to learn more about them.

IMPORTANT:
- Do NOT ask about goals yet!
- NO markdown or emojis

Say something like: "Before we dive into goal setting, I'd love to get to know you better."

Then ask: "Tell me a bit about yourself?" ` + sessionContext

	case models.StateS1GettingToKnowYou:
		return `
Ask discovery questions ONE AT A TIME in this SPECIFIC ORDER:
1. Tell me about yourself? (general context)
2. What does your current exercise routine look like? (frequency, types, duration)
3. How are your sleep habits? (hours per night, quality)
4. What are your current eating habits like? (meal patterns, typical foods)
5. What do you like to do in your free time? (hobbies, interests)

CRITICAL RULES:
- Check the context to see which questions have been covered
- NEVER re-ask a question that was already answered
- Ask questions in the order listed above
- If user mentions wanting something ("I want to lose weight"), acknowledge it but continue with discovery questions until at least 3 are complete
- Then you can transition to goal setting
- NO markdown or emojis
- ONE question at a time
- Listen and acknowledge before moving on

The system tracks which questions have been asked. Follow the sequence.` + sessionContext

	case models.StateS1Goals:
		return `
Guide them to articulate their goals. Ask open-ended questions:
- What would you like to achieve?
- What changes are you hoping to make?

Help them express goals clearly.
NO markdown or emojis.` + sessionContext

	case models.StateS1CheckSmart:
		return `
The system evaluated the goal against SMART criteria.
DO NOT ask if they think it's SMART.

If NOT SMART:
- Provide specific feedback on what's missing
- Guide them to refine it
- Be encouraging

If SMART:
- Celebrate!
- Confirm they're happy with it
- Then move to confidence check

NO markdown or emojis.` + sessionContext

	case models.StateS1RefineGoal:
		return `
Work collaboratively to make the goal SMART:
- More Specific
- Measurable with metrics
- Achievable and realistic
- Relevant to their life
- Time-bound with a deadline

CRITICAL: Make sure the goal includes a TIMEFRAME (next week, next month, for 2 weeks, etc.)

NO markdown or emojis.` + sessionContext

	case models.StateS1ConfidenceCheck:
		return `
Ask them to rate confidence in achieving this goal (1-10 scale).
- 1 = Very low confidence
- 10 = Very high confidence

Frame it positively: "On a scale of 1 to 10, how confident do you feel about achieving this goal?"

NO markdown or emojis.` + sessionContext

	case models.StateS1LowConfidence:
		return `
They have low confidence (<=7). This is okay!
Explore what would make it more achievable.
Ask: "What would make this goal feel more doable?"

NO markdown or emojis.` + sessionContext

	case models.StateS1HighConfidence:
		return `
Great confidence (>7)! Celebrate it.
NO markdown or emojis.` + sessionContext

	case models.StateS1AskMoreGoals:
		return `
Ask if they'd like to set another goal for this week.

Be encouraging but not pushy. Something like:
"That's a great goal! Would you like to set one more goal to work on this week, or would you prefer to focus just on this one?"

NO markdown or emojis.` + sessionContext

	case models.StateS1RememberGoal:
		return `
Help them create a plan for remembering/tracking their goal.
Ask: "How will you remember to work on your goal?"

Suggest strategies:
- Phone reminders
- Writing it down
- Telling someone
- Scheduling specific times

After they describe their tracking method, ask: "Is there anything else you'd like to talk about before we wrap up today?"

NO markdown or emojis.` + sessionContext

	case models.StateS1EndSession:
		return `
Wrap up Session 1 warmly. Summarize:
- Their goal(s)
- Their confidence level(s)
- Their tracking plan

If they are missing any of the summary just continue without it. The session will be ending right after this so do not ask questions.

IMPORTANT:
- Emphasize THEY track their own progress
- Next session is in 1 week
- DO NOT promise to check in before then
- Express enthusiasm about next week
- Do not ask questions at this point. Only statements.
- NO markdown or emojis

Example: "I'm excited to hear how your first week goes. Remember to track your progress using [method]. See you next week at Session 2!"
` + sessionContext
	}

	return sessionContext
}
