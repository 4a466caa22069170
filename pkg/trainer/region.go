package trainer

import "github.com/renning22/fmcp/pkg/models"

// ParamInput is one rendered parameter input inside the parameter region.
type ParamInput struct {
	Definition models.ParameterDefinition
	Value      string
}

// ID is the element id the input is rendered with.
func (i *ParamInput) ID() string {
	return "param-" + i.Definition.Name
}

// StepAttr is the html step attribute; numeric inputs accept any decimal.
func (i *ParamInput) StepAttr() string {
	if i.Definition.Kind == models.InputKindNumber {
		return "any"
	}
	return ""
}

// ParamRegion is the rendered parameter-input container. The controller only
// ever holds references into the current region; re-rendering replaces it.
type ParamRegion struct {
	actionType models.ActionType
	inputs     []*ParamInput
}

func renderRegion(actionType models.ActionType) *ParamRegion {
	definitions := actionType.Parameters()
	region := &ParamRegion{
		actionType: actionType,
		inputs:     make([]*ParamInput, 0, len(definitions)),
	}
	for _, definition := range definitions {
		region.inputs = append(region.inputs, &ParamInput{Definition: definition})
	}
	return region
}

func (r *ParamRegion) Inputs() []*ParamInput {
	if r == nil {
		return nil
	}
	return r.inputs
}
