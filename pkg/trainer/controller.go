// Package trainer implements the training session controller: the state behind
// the page where a user assembles approve/swap/deposit steps and confirms them
// as a named capability.
package trainer

import (
	"fmt"
	"strings"
	"time"

	"github.com/renning22/fmcp/pkg/errors"
	"github.com/renning22/fmcp/pkg/models"
)

const (
	successMessageFormat = "Success! Capability '%s' created (Simulation). You can now restart training."
	discardMessage       = "Okay, training sequence discarded. Please restart the training process."
)

// Controller holds one training session. It is not safe for concurrent use;
// callers serialise access per session.
type Controller struct {
	id             string
	selectedAction models.ActionType
	region         *ParamRegion
	fields         map[string]*ParamInput
	sequence       []models.Step
	goalName       string
	logStepEnabled bool
	finishEnabled  bool
	review         *Verification
	outcome        models.Outcome
	warning        string
	createdAt      time.Time
	updatedAt      time.Time
	now            func() time.Time
}

// New returns a controller in its initial state.
func New(id string) *Controller {
	c := &Controller{id: id, now: time.Now}
	c.createdAt = c.now().UTC()
	c.Reset()
	return c
}

// Restore rebuilds a controller from a stored snapshot.
func Restore(state models.SessionState) *Controller {
	c := &Controller{id: state.ID, now: time.Now}
	c.Reset()
	c.createdAt = state.CreatedAt
	c.updatedAt = state.UpdatedAt

	if state.SelectedAction.IsValid() {
		c.selectedAction = state.SelectedAction
		c.RenderParams(state.SelectedAction)
		for _, pair := range state.ParamValues.Pairs() {
			if input, ok := c.fields[pair.Name]; ok {
				input.Value = pair.Value
			}
		}
	}

	for _, step := range state.Sequence {
		c.sequence = append(c.sequence, models.Step{ActionType: step.ActionType, Params: step.Params.Clone()})
	}
	c.updateSequenceDisplay()

	c.goalName = state.GoalName
	if state.ReviewPending {
		// the sequence cannot change while a review is open, so the summary
		// rebuilt here is the one the user was shown
		if review, err := buildVerification(state.ReviewGoalName, c.sequence); err == nil {
			c.review = review
		}
	}
	c.outcome = state.Outcome
	c.warning = state.Warning
	return c
}

// Snapshot returns the serialisable state of the session.
func (c *Controller) Snapshot() models.SessionState {
	state := models.SessionState{
		ID:             c.id,
		SelectedAction: c.selectedAction,
		ParamValues:    models.NewParams(),
		Sequence:       c.Sequence(),
		GoalName:       c.goalName,
		ReviewPending:  c.review != nil,
		Outcome:        c.outcome,
		Warning:        c.warning,
		CreatedAt:      c.createdAt,
		UpdatedAt:      c.updatedAt,
	}
	for _, input := range c.region.Inputs() {
		state.ParamValues.Set(input.Definition.Name, input.Value)
	}
	if c.review != nil {
		state.ReviewGoalName = c.review.GoalName
	}
	return state
}

func (c *Controller) ID() string {
	return c.id
}

// Phase derives where the session is in its lifecycle.
func (c *Controller) Phase() models.Phase {
	switch {
	case c.review != nil:
		return models.PhaseReviewPending
	case len(c.sequence) > 0:
		return models.PhaseLoggingSteps
	case c.selectedAction != "":
		return models.PhaseSelectingAction
	default:
		return models.PhaseIdle
	}
}

// SelectAction handles a change of the action-type selector. Values outside the
// fixed set leave the selector empty.
func (c *Controller) SelectAction(key string) error {
	if err := c.begin(); err != nil {
		return err
	}

	actionType, _ := models.ParseActionType(key)
	c.selectedAction = actionType
	c.RenderParams(actionType)
	return nil
}

// RenderParams replaces the parameter region with inputs for actionType. An
// empty or unknown action leaves the region empty and step logging disabled.
func (c *Controller) RenderParams(actionType models.ActionType) {
	c.region = nil
	c.fields = map[string]*ParamInput{}
	c.logStepEnabled = false

	if !actionType.IsValid() {
		return
	}

	c.region = renderRegion(actionType)
	for _, input := range c.region.inputs {
		c.fields[input.Definition.Name] = input
	}
	c.logStepEnabled = true
}

// SetParam types a value into a rendered parameter input.
func (c *Controller) SetParam(name, value string) error {
	if err := c.begin(); err != nil {
		return err
	}

	input, ok := c.fields[name]
	if !ok {
		return c.warn(errors.NewTrainingError("unknown parameter").AddAction(string(c.selectedAction)).AddParameter(name))
	}
	input.Value = value
	return nil
}

// SetGoalName types into the goal-name input.
func (c *Controller) SetGoalName(value string) error {
	if err := c.begin(); err != nil {
		return err
	}
	c.goalName = value
	return nil
}

// LogStep appends the current parameter values as a step. Every parameter is
// mandatory after trimming; values are not otherwise checked.
func (c *Controller) LogStep() error {
	if err := c.begin(); err != nil {
		return err
	}

	if c.selectedAction == "" || !c.logStepEnabled || len(c.fields) == 0 {
		return c.warn(errors.NewTrainingError(errors.MessageSelectAction))
	}

	params := models.NewParams()
	for _, input := range c.region.inputs {
		value := strings.TrimSpace(input.Value)
		if value == "" {
			return c.warn(errors.NewTrainingError(errors.MessageFillAllParameters).AddAction(string(c.selectedAction)).AddParameter(input.Definition.Name))
		}
		params.Set(input.Definition.Name, value)
	}

	c.sequence = append(c.sequence, models.Step{ActionType: c.selectedAction, Params: params})
	c.updateSequenceDisplay()

	for _, input := range c.region.inputs {
		input.Value = ""
	}
	return nil
}

// SequenceLines renders the step list, one line per step.
func (c *Controller) SequenceLines() []string {
	lines := make([]string, 0, len(c.sequence))
	for i, step := range c.sequence {
		lines = append(lines, step.Line(i+1))
	}
	return lines
}

func (c *Controller) updateSequenceDisplay() {
	c.finishEnabled = len(c.sequence) > 0
}

// Finish opens the review of the assembled sequence under the goal name.
func (c *Controller) Finish() error {
	if err := c.begin(); err != nil {
		return err
	}

	goalName := strings.TrimSpace(c.goalName)
	if goalName == "" {
		return c.warn(errors.NewTrainingError(errors.MessageGoalNameRequired))
	}
	if len(c.sequence) == 0 {
		return c.warn(errors.NewTrainingError(errors.MessageSequenceRequired))
	}

	review, err := buildVerification(goalName, c.sequence)
	if err != nil {
		return err
	}

	c.review = review
	c.outcome = models.Outcome{}
	return nil
}

// Confirm answers the open review. Accepting keeps the success message and
// resets everything else; rejecting is a full reset plus the discard message.
func (c *Controller) Confirm(accept bool) error {
	c.touch()
	c.warning = ""
	if c.review == nil {
		return c.warn(errors.NewTrainingError(errors.MessageNoReviewPending))
	}

	goalName := c.review.GoalName
	c.review = nil

	if !accept {
		c.Reset()
		c.outcome = models.Outcome{Message: discardMessage, Kind: models.OutcomeKindError}
		return nil
	}

	c.outcome = models.Outcome{Message: fmt.Sprintf(successMessageFormat, goalName), Kind: models.OutcomeKindSuccess}
	c.sequence = nil
	c.updateSequenceDisplay()
	c.selectedAction = ""
	c.RenderParams("")
	c.goalName = ""
	return nil
}

// Reset returns the session to its initial state. Calling it repeatedly has
// the same effect as calling it once.
func (c *Controller) Reset() {
	c.sequence = nil
	c.updateSequenceDisplay()
	c.selectedAction = ""
	c.RenderParams("")
	c.goalName = ""
	c.review = nil
	c.outcome = models.Outcome{}
	c.warning = ""
	c.touch()
}

// Sequence returns a copy of the logged steps.
func (c *Controller) Sequence() []models.Step {
	steps := make([]models.Step, 0, len(c.sequence))
	for _, step := range c.sequence {
		steps = append(steps, models.Step{ActionType: step.ActionType, Params: step.Params.Clone()})
	}
	return steps
}

func (c *Controller) SelectedAction() models.ActionType { return c.selectedAction }
func (c *Controller) GoalName() string                  { return c.goalName }
func (c *Controller) LogStepEnabled() bool              { return c.logStepEnabled }
func (c *Controller) FinishEnabled() bool               { return c.finishEnabled }
func (c *Controller) Outcome() models.Outcome           { return c.outcome }
func (c *Controller) ReviewPending() bool               { return c.review != nil }

// Review returns the open verification, or nil when the modal is hidden.
func (c *Controller) Review() *Verification {
	return c.review
}

// Inputs returns the rendered parameter inputs in display order.
func (c *Controller) Inputs() []*ParamInput {
	return c.region.Inputs()
}

// Input looks up a rendered input by parameter name.
func (c *Controller) Input(name string) (*ParamInput, bool) {
	input, ok := c.fields[name]
	return input, ok
}

// Warning returns the last warning raised, if it has not been taken yet.
func (c *Controller) Warning() string {
	return c.warning
}

// TakeWarning returns the pending warning and clears it, so it is shown once.
func (c *Controller) TakeWarning() string {
	warning := c.warning
	c.warning = ""
	return warning
}

// begin starts handling a page event; the open review blocks everything but
// the accept/reject buttons.
func (c *Controller) begin() error {
	c.touch()
	c.warning = ""
	if c.review != nil {
		return c.warn(errors.NewTrainingError(errors.MessageReviewPending))
	}
	return nil
}

func (c *Controller) warn(err *errors.TrainingError) error {
	c.warning = err.Message
	return err
}

func (c *Controller) touch() {
	c.updatedAt = c.now().UTC()
}
