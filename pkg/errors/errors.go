package errors

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
)

// TrainingError is a user-facing warning raised by the training controller.
// Operations that return one have not mutated the session.
type TrainingError struct {
	Action    string
	Parameter string
	Message   string
}

func NewTrainingError(msg string) *TrainingError {
	return &TrainingError{Message: msg}
}

func (e *TrainingError) Error() string {
	path := []string{}
	if e.Parameter != "" {
		path = append(path, fmt.Sprintf("parameter '%s'", e.Parameter))
	}
	if e.Action != "" {
		path = append(path, fmt.Sprintf("action '%s'", e.Action))
	}

	if len(path) == 0 {
		return e.Message
	}

	return strings.Join(path, " -> ") + ": " + e.Message
}

func (e *TrainingError) AddAction(action string) *TrainingError {
	e.Action = action
	return e
}

func (e *TrainingError) AddParameter(name string) *TrainingError {
	e.Parameter = name
	return e
}

// ToHTTPError converts the warning into a 400 carrying the bare message as
// meta so clients can show it as an alert.
func (e *TrainingError) ToHTTPError() *httperror.HTTPError {
	return httperror.NewHTTPError(http.StatusBadRequest, e.Error()).
		AddMetaValue("warning", e.Message).
		AddMetaValue("action", e.Action).
		AddMetaValue("parameter", e.Parameter)
}

func IsTrainingError(err error) bool {
	_, ok := err.(*TrainingError)
	return ok
}

// AsTrainingError returns the TrainingError behind err, if any.
func AsTrainingError(err error) (*TrainingError, bool) {
	trainingErr, ok := err.(*TrainingError)
	return trainingErr, ok
}

// Warnings raised by the controller.
const (
	MessageFillAllParameters = "Please fill in all parameter fields for the step."
	MessageGoalNameRequired  = "Please provide a name for this capability."
	MessageSequenceRequired  = "Please log at least one step before finishing."
	MessageSelectAction      = "Please select an action type before logging a step."
	MessageReviewPending     = "Please accept or reject the pending capability first."
	MessageNoReviewPending   = "There is no capability waiting for review."
)
