package models

// Session 1 states: onboarding, discovery, and the first SMART goal.
const (
	StateS1Greetings             StateType = "greetings"
	StateS1ProgramDetails        StateType = "program_details"
	StateS1QuestionsAboutProgram StateType = "questions_about_program"
	StateS1AwaitingYesNo         StateType = "awaiting_yes_no"
	StateS1AnsweringQuestion     StateType = "answering_question"
	StateS1PromptTalkAboutSelf   StateType = "prompt_talk_about_self"
	StateS1GettingToKnowYou      StateType = "getting_to_know_you"
	StateS1Goals                 StateType = "goals"
	StateS1CheckSmart            StateType = "check_smart"
	StateS1RefineGoal            StateType = "refine_goal"
	StateS1ConfidenceCheck       StateType = "confidence_check"
	StateS1LowConfidence         StateType = "low_confidence"
	StateS1HighConfidence        StateType = "high_confidence"
	StateS1AskMoreGoals          StateType = "ask_more_goals"
	StateS1RememberGoal          StateType = "remember_goal"
	StateS1EndSession            StateType = "end_session"
)

// Follow-up session states, shared by sessions 2 and 3. The flow opens
// with a check-in, branches on how the participant wants to handle last
// week's goals, and closes through refinement and confidence checks.
const (
	StateFUGreetings                  StateType = "greetings"
	StateFUCheckInGoals               StateType = "check_in_goals"
	StateFUStressLevel                StateType = "stress_level"
	StateFUDiscoveryQuestions         StateType = "discovery_questions"
	StateFUGoalCompletion             StateType = "goal_completion"
	StateFUGoalsForNextWeek           StateType = "goals_for_next_week"
	StateFUSameSuccessesChallenges    StateType = "same_goals_successes_challenges"
	StateFUSameAnythingToChange       StateType = "same_anything_to_change"
	StateFUSameWhatConcerns           StateType = "same_what_concerns"
	StateFUSameExploreSolutions       StateType = "same_explore_solutions"
	StateFUDifferentWhichGoals        StateType = "different_which_goals"
	StateFUDifferentKeepingAndNew     StateType = "different_keeping_and_new"
	StateFUJustNewGoals               StateType = "just_new_goals"
	StateFURefineGoal                 StateType = "refine_goal"
	StateFUConfidenceCheck            StateType = "confidence_check"
	StateFULowConfidence              StateType = "low_confidence"
	StateFUHighConfidence             StateType = "high_confidence"
	StateFUMakeAchievable             StateType = "make_achievable"
	StateFURememberGoal               StateType = "remember_goal"
	StateFUMoreGoalsCheck             StateType = "more_goals_check"
	StateFUEndSession                 StateType = "end_session"
)

// Session 4 states: final check-in, stress debrief, focus selection, and
// program wrap-up.
const (
	StateS4Greetings                   StateType = "greetings"
	StateS4ReinforceGoal               StateType = "reinforce_goal_from_last_session"
	StateS4CheckInGoals                StateType = "check_in_goals"
	StateS4WhatHappened                StateType = "what_happened"
	StateS4WhatCanBeDone               StateType = "what_can_be_done_to_make_it_better"
	StateS4StressLevel                 StateType = "stress_level"
	StateS4StressHighWhatHappened      StateType = "stress_high_what_happened"
	StateS4StressHighAnythingToTalk    StateType = "stress_high_anything_we_can_talk_about"
	StateS4StressLowWhatHappened       StateType = "stress_low_what_happened"
	StateS4WhatsTheFocusToday          StateType = "whats_the_focus_today"
	StateS4CurrentGoalsAnythingChange  StateType = "current_goals_anything_needing_to_change"
	StateS4NewGoalsSmartCheck          StateType = "new_goals_smart_check"
	StateS4SmartYesPath                StateType = "smart_yes_path"
	StateS4SmartNoPath                 StateType = "smart_no_path"
	StateS4ConfidenceCheck             StateType = "confidence_check"
	StateS4LowConfidenceWhatSuccesses  StateType = "low_confidence_what_successes"
	StateS4LowConfidenceMoreAchievable StateType = "low_confidence_how_can_we_make_it_more_achievable"
	StateS4HighConfidencePath          StateType = "high_confidence_path"
	StateS4HowWillYouRemember          StateType = "how_will_you_remember_to_do_your_goal"
	StateS4AnyFinalQuestions           StateType = "any_final_questions"
	StateS4EndSession                  StateType = "end_session"
)

// StartSessionSentinel is the synthetic first input the caller sends to
// open a session before any real user text arrives.
const StartSessionSentinel = "[START_SESSION]"
