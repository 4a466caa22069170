package training

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/renning22/fmcp/internal/repositories/session"
	"github.com/renning22/fmcp/pkg/errors"
	"github.com/renning22/fmcp/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() *Service {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	return NewService(session.NewMemoryRepository(time.Hour, logger), time.Second, logger)
}

func strPtr(s string) *string {
	return &s
}

func approveInput() FormInput {
	return FormInput{Params: map[string]string{
		"tokenAddress":   " 0xT ",
		"spenderAddress": "0xS",
		"amount":         "MAX",
	}}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	view, err := svc.Create(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, view.SessionID)
	assert.Equal(t, models.PhaseIdle, view.Phase)
	assert.Empty(t, view.Params)
	assert.False(t, view.LogStepEnabled)
	assert.False(t, view.FinishEnabled)

	loaded, err := svc.Get(ctx, view.SessionID)
	require.NoError(t, err)
	assert.Equal(t, view.SessionID, loaded.SessionID)
}

func TestUnknownSession(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	_, err := svc.Get(ctx, "missing")
	assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))

	_, err = svc.SelectAction(ctx, "missing", "swap", nil)
	assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))

	err = svc.Delete(ctx, "missing")
	assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
}

func TestFullFlowAccept(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	view, err := svc.Create(ctx)
	require.NoError(t, err)
	id := view.SessionID

	view, err = svc.SelectAction(ctx, id, "approve", nil)
	require.NoError(t, err)
	require.Len(t, view.Params, 3)
	assert.True(t, view.LogStepEnabled)

	view, err = svc.LogStep(ctx, id, approveInput())
	require.NoError(t, err)
	require.Len(t, view.SequenceLines, 1)
	assert.Equal(t, "1. Action: approve, Params: { tokenAddress: 0xT, spenderAddress: 0xS, amount: MAX }", view.SequenceLines[0])
	assert.True(t, view.FinishEnabled)
	for _, param := range view.Params {
		assert.Empty(t, param.Value)
	}

	view, err = svc.Finish(ctx, id, FormInput{GoalName: strPtr("  Approve Max  ")})
	require.NoError(t, err)
	assert.True(t, view.ModalVisible)
	require.NotNil(t, view.Review)
	assert.Equal(t, "Approve Max", view.Review.GoalName)
	assert.Equal(t, models.PhaseReviewPending, view.Phase)

	view, err = svc.Verify(ctx, id, true)
	require.NoError(t, err)
	assert.False(t, view.ModalVisible)
	assert.Equal(t, models.OutcomeKindSuccess, view.Outcome.Kind)
	assert.Equal(t, "Success! Capability 'Approve Max' created (Simulation). You can now restart training.", view.Outcome.Message)
	assert.Empty(t, view.Sequence)
	assert.Empty(t, view.GoalName)
	assert.Empty(t, view.SelectedAction)
}

func TestFullFlowReject(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	view, err := svc.Create(ctx)
	require.NoError(t, err)
	id := view.SessionID

	_, err = svc.SelectAction(ctx, id, "approve", nil)
	require.NoError(t, err)
	_, err = svc.LogStep(ctx, id, approveInput())
	require.NoError(t, err)
	_, err = svc.Finish(ctx, id, FormInput{GoalName: strPtr("Nope")})
	require.NoError(t, err)

	view, err = svc.Verify(ctx, id, false)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeKindError, view.Outcome.Kind)
	assert.Equal(t, "Okay, training sequence discarded. Please restart the training process.", view.Outcome.Message)
	assert.Empty(t, view.Sequence)
	assert.Equal(t, models.PhaseIdle, view.Phase)
}

func TestLogStepWarningKeepsTypedValues(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	view, err := svc.Create(ctx)
	require.NoError(t, err)
	id := view.SessionID

	_, err = svc.SelectAction(ctx, id, "swap", nil)
	require.NoError(t, err)

	view, err = svc.LogStep(ctx, id, FormInput{
		Params:   map[string]string{"tokenInAddress": "0xA", "tokenOutAddress": "   "},
		GoalName: strPtr("Swap it"),
	})
	require.Error(t, err)
	assert.True(t, errors.IsTrainingError(err))
	assert.Equal(t, errors.MessageFillAllParameters, view.Warning)
	assert.Empty(t, view.Sequence)
	assert.Equal(t, "Swap it", view.GoalName)

	// the page shows the warning once
	rendered, err := svc.Render(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, errors.MessageFillAllParameters, rendered.Warning)
	assert.Equal(t, "0xA", rendered.Params[0].Value)

	rendered, err = svc.Render(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, rendered.Warning)
}

func TestLogStepUnknownParameter(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	view, err := svc.Create(ctx)
	require.NoError(t, err)
	id := view.SessionID

	_, err = svc.SelectAction(ctx, id, "deposit", nil)
	require.NoError(t, err)

	_, err = svc.LogStep(ctx, id, FormInput{Params: map[string]string{"amountIn": "5"}})
	trainingErr, ok := errors.AsTrainingError(err)
	require.True(t, ok)
	assert.Equal(t, "amountIn", trainingErr.Parameter)
}

func TestFinishWarnings(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	view, err := svc.Create(ctx)
	require.NoError(t, err)
	id := view.SessionID

	view, err = svc.Finish(ctx, id, FormInput{GoalName: strPtr("")})
	require.Error(t, err)
	assert.Equal(t, errors.MessageGoalNameRequired, view.Warning)

	view, err = svc.Finish(ctx, id, FormInput{GoalName: strPtr("Goal")})
	require.Error(t, err)
	assert.Equal(t, errors.MessageSequenceRequired, view.Warning)
	assert.False(t, view.ModalVisible)
}

func TestRefusedFinishKeepsTypedParams(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	view, err := svc.Create(ctx)
	require.NoError(t, err)
	id := view.SessionID

	_, err = svc.SelectAction(ctx, id, "deposit", nil)
	require.NoError(t, err)

	view, err = svc.Finish(ctx, id, FormInput{
		Params:   map[string]string{"tokenAddress": "0xT", "amount": "50"},
		GoalName: strPtr(""),
	})
	require.Error(t, err)
	assert.Equal(t, errors.MessageGoalNameRequired, view.Warning)

	values := map[string]string{}
	for _, param := range view.Params {
		values[param.Name] = param.Value
	}
	assert.Equal(t, map[string]string{"tokenAddress": "0xT", "contractAddress": "", "amount": "50"}, values)

	loaded, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, view.Params, loaded.Params)
}

func TestReviewBlocksOtherEvents(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	view, err := svc.Create(ctx)
	require.NoError(t, err)
	id := view.SessionID

	_, err = svc.SelectAction(ctx, id, "approve", nil)
	require.NoError(t, err)
	_, err = svc.LogStep(ctx, id, approveInput())
	require.NoError(t, err)
	_, err = svc.Finish(ctx, id, FormInput{GoalName: strPtr("Goal")})
	require.NoError(t, err)

	view, err = svc.SelectAction(ctx, id, "swap", nil)
	require.Error(t, err)
	assert.Equal(t, errors.MessageReviewPending, view.Warning)
	assert.Equal(t, models.ActionTypeApprove, view.SelectedAction)
	assert.True(t, view.ModalVisible)
}

func TestVerifyWithoutReview(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	view, err := svc.Create(ctx)
	require.NoError(t, err)

	view, err = svc.Verify(ctx, view.SessionID, true)
	require.Error(t, err)
	assert.Equal(t, errors.MessageNoReviewPending, view.Warning)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	view, err := svc.Create(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, view.SessionID))
	_, err = svc.Get(ctx, view.SessionID)
	assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
}

func TestConcurrentLogStepsAreSerialised(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	view, err := svc.Create(ctx)
	require.NoError(t, err)
	id := view.SessionID

	_, err = svc.SelectAction(ctx, id, "approve", nil)
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.LogStep(ctx, id, approveInput())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	view, err = svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Len(t, view.Sequence, workers)
	assert.Equal(t, "8. Action: approve, Params: { tokenAddress: 0xT, spenderAddress: 0xS, amount: MAX }", view.SequenceLines[workers-1])
}

func TestActionDefinitions(t *testing.T) {
	svc := newService()

	definitions := svc.ActionDefinitions()
	require.Len(t, definitions, 3)
	assert.Equal(t, models.ActionTypeApprove, definitions[0].Type)
}
