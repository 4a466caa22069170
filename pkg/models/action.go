package models

import "github.com/Gobusters/ectolinq"

// ActionType is one of the fixed kinds of on-chain action a step can represent.
type ActionType string

const (
	ActionTypeApprove ActionType = "approve"
	ActionTypeSwap    ActionType = "swap"
	ActionTypeDeposit ActionType = "deposit"
)

// InputKind is the kind of input rendered for a parameter.
type InputKind string

const (
	InputKindText   InputKind = "text"
	InputKindNumber InputKind = "number"
)

// ParameterDefinition describes one input of an action.
//
// Example:
//
//	{
//	  "name": "amountIn",
//	  "label": "Amount In",
//	  "kind": "number",
//	  "placeholder": "e.g., 100"
//	}
type ParameterDefinition struct {
	Name        string    `json:"name"`
	Label       string    `json:"label"`
	Kind        InputKind `json:"kind"`
	Placeholder string    `json:"placeholder"`
}

// ActionDefinition binds an action type to its ordered parameter list.
type ActionDefinition struct {
	Type       ActionType            `json:"type"`
	Parameters []ParameterDefinition `json:"parameters"`
}

// ActionTypes lists the action types in the order the selector shows them.
var ActionTypes = []ActionType{ActionTypeApprove, ActionTypeSwap, ActionTypeDeposit}

var actionDefinitions = map[ActionType][]ParameterDefinition{
	ActionTypeApprove: {
		{Name: "tokenAddress", Label: "Token Address", Kind: InputKindText, Placeholder: "e.g., 0x..."},
		{Name: "spenderAddress", Label: "Spender Address", Kind: InputKindText, Placeholder: "e.g., 0x..."},
		{Name: "amount", Label: "Amount", Kind: InputKindText, Placeholder: "e.g., 1000 or MAX"},
	},
	ActionTypeSwap: {
		{Name: "tokenInAddress", Label: "Input Token Address", Kind: InputKindText, Placeholder: "e.g., 0x..."},
		{Name: "tokenOutAddress", Label: "Output Token Address", Kind: InputKindText, Placeholder: "e.g., 0x..."},
		{Name: "amountIn", Label: "Amount In", Kind: InputKindNumber, Placeholder: "e.g., 100"},
		{Name: "dexRouterAddress", Label: "DEX Router Address", Kind: InputKindText, Placeholder: "e.g., 0x..."},
	},
	ActionTypeDeposit: {
		{Name: "tokenAddress", Label: "Token Address", Kind: InputKindText, Placeholder: "e.g., 0x..."},
		{Name: "contractAddress", Label: "Staking Contract Address", Kind: InputKindText, Placeholder: "e.g., 0x..."},
		{Name: "amount", Label: "Amount", Kind: InputKindNumber, Placeholder: "e.g., 50"},
	},
}

// ParseActionType maps a selector value to a known action type.
func ParseActionType(key string) (ActionType, bool) {
	actionType := ActionType(key)
	if !ectolinq.Contains(ActionTypes, actionType) {
		return "", false
	}
	return actionType, true
}

// IsValid reports whether the action type is part of the fixed set.
func (a ActionType) IsValid() bool {
	_, ok := actionDefinitions[a]
	return ok
}

// Parameters returns a copy of the action's parameter definitions, or nil for
// an unknown action type.
func (a ActionType) Parameters() []ParameterDefinition {
	params, ok := actionDefinitions[a]
	if !ok {
		return nil
	}
	return append([]ParameterDefinition(nil), params...)
}

// ActionDefinitions returns the full schema table in selector order.
func ActionDefinitions() []ActionDefinition {
	return ectolinq.Map(ActionTypes, func(actionType ActionType) ActionDefinition {
		return ActionDefinition{Type: actionType, Parameters: actionType.Parameters()}
	})
}
