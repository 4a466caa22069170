package trainer

import (
	"strings"

	"github.com/renning22/fmcp/pkg/models"
)

// Verification is the content of the confirmation overlay.
type Verification struct {
	GoalName string             `json:"goal_name"`
	Steps    []VerificationStep `json:"steps"`
	Summary  string             `json:"summary"`
}

// VerificationStep is one block of the summary.
type VerificationStep struct {
	Index      int               `json:"index"`
	ActionType models.ActionType `json:"action_type"`
	Params     string            `json:"params"`
	Block      string            `json:"block"`
}

func buildVerification(goalName string, sequence []models.Step) (*Verification, error) {
	review := &Verification{
		GoalName: goalName,
		Steps:    make([]VerificationStep, 0, len(sequence)),
	}

	blocks := make([]string, 0, len(sequence))
	for i, step := range sequence {
		params, err := step.Params.Indented()
		if err != nil {
			return nil, err
		}
		block, err := step.SummaryBlock(i + 1)
		if err != nil {
			return nil, err
		}
		review.Steps = append(review.Steps, VerificationStep{
			Index:      i + 1,
			ActionType: step.ActionType,
			Params:     params,
			Block:      block,
		})
		blocks = append(blocks, block)
	}

	review.Summary = strings.Join(blocks, "\n\n")
	return review, nil
}
