package models

import "time"

// Phase is the coarse position of a training session in its lifecycle.
type Phase string

const (
	PhaseIdle            Phase = "idle"
	PhaseSelectingAction Phase = "selecting_action"
	PhaseLoggingSteps    Phase = "logging_steps"
	PhaseReviewPending   Phase = "review_pending"
)

// OutcomeKind styles the outcome message.
type OutcomeKind string

const (
	OutcomeKindNone    OutcomeKind = ""
	OutcomeKindSuccess OutcomeKind = "success"
	OutcomeKindError   OutcomeKind = "error"
)

// Outcome is the message shown after a review is accepted or rejected.
type Outcome struct {
	Message string      `json:"message"`
	Kind    OutcomeKind `json:"kind"`
}

// SessionState is the serialisable snapshot of a training session. It is what
// the session repositories store between requests.
type SessionState struct {
	ID             string     `json:"id"`
	SelectedAction ActionType `json:"selected_action"`
	ParamValues    Params     `json:"param_values"`
	Sequence       []Step     `json:"sequence"`
	GoalName       string     `json:"goal_name"`
	ReviewPending  bool       `json:"review_pending"`
	ReviewGoalName string     `json:"review_goal_name"`
	Outcome        Outcome    `json:"outcome"`
	Warning        string     `json:"warning,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
