package trainer

import "github.com/renning22/fmcp/pkg/models"

// View is everything the page (or an API client) needs to draw the session.
type View struct {
	SessionID      string              `json:"session_id"`
	Phase          models.Phase        `json:"phase"`
	ActionTypes    []models.ActionType `json:"action_types"`
	SelectedAction models.ActionType   `json:"selected_action"`
	Params         []InputView         `json:"params"`
	LogStepEnabled bool                `json:"log_step_enabled"`
	Sequence       []models.Step       `json:"sequence"`
	SequenceLines  []string            `json:"sequence_lines"`
	GoalName       string              `json:"goal_name"`
	FinishEnabled  bool                `json:"finish_enabled"`
	ModalVisible   bool                `json:"modal_visible"`
	Review         *Verification       `json:"review,omitempty"`
	Outcome        models.Outcome      `json:"outcome"`
	Warning        string              `json:"warning,omitempty"`
}

// InputView is a rendered parameter input.
type InputView struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Label       string           `json:"label"`
	Kind        models.InputKind `json:"kind"`
	Placeholder string           `json:"placeholder"`
	Step        string           `json:"step,omitempty"`
	Value       string           `json:"value"`
}

// View snapshots the controller for rendering. It does not consume the warning.
func (c *Controller) View() View {
	view := View{
		SessionID:      c.id,
		Phase:          c.Phase(),
		ActionTypes:    append([]models.ActionType(nil), models.ActionTypes...),
		SelectedAction: c.selectedAction,
		Params:         make([]InputView, 0, len(c.region.Inputs())),
		LogStepEnabled: c.logStepEnabled,
		Sequence:       c.Sequence(),
		SequenceLines:  c.SequenceLines(),
		GoalName:       c.goalName,
		FinishEnabled:  c.finishEnabled,
		ModalVisible:   c.review != nil,
		Review:         c.review,
		Outcome:        c.outcome,
		Warning:        c.warning,
	}

	for _, input := range c.region.Inputs() {
		view.Params = append(view.Params, InputView{
			ID:          input.ID(),
			Name:        input.Definition.Name,
			Label:       input.Definition.Label,
			Kind:        input.Definition.Kind,
			Placeholder: input.Definition.Placeholder,
			Step:        input.StepAttr(),
			Value:       input.Value,
		})
	}

	return view
}
