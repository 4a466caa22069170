package training

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/renning22/fmcp/internal/repositories/session"
	appctx "github.com/renning22/fmcp/pkg/context"
	"github.com/renning22/fmcp/pkg/errors"
	"github.com/renning22/fmcp/pkg/metrics"
	"github.com/renning22/fmcp/pkg/models"
	"github.com/renning22/fmcp/pkg/tracing"
	"github.com/renning22/fmcp/pkg/trainer"
)

// Operation names used for logs and metrics.
const (
	OperationCreate       = "create"
	OperationRender       = "render"
	OperationSelectAction = "select_action"
	OperationLogStep      = "log_step"
	OperationFinish       = "finish"
	OperationVerify       = "verify"
	OperationDelete       = "delete"
)

// FormInput is what the user typed into the page before pressing a button.
type FormInput struct {
	Params   map[string]string
	GoalName *string
}

// Service runs page events against stored training sessions. Every event
// holds the session lock across load, mutate and save.
type Service struct {
	logger      ectologger.Logger
	repo        session.SessionRepository
	lockTimeout time.Duration
}

func NewService(repo session.SessionRepository, lockTimeout time.Duration, logger ectologger.Logger) *Service {
	return &Service{
		logger:      logger,
		repo:        repo,
		lockTimeout: lockTimeout,
	}
}

// Create starts a new training session in its initial state.
func (s *Service) Create(ctx context.Context) (trainer.View, error) {
	ctx, span := tracing.StartSpan(ctx, "training.Create")
	defer span.End()
	defer s.observe(OperationCreate, time.Now())

	c := trainer.New(uuid.New().String())
	ctx = appctx.SetSessionID(ctx, c.ID())

	if err := s.repo.Save(ctx, c.Snapshot()); err != nil {
		return trainer.View{}, err
	}

	metrics.RecordSessionCreated()
	s.logger.WithContext(ctx).WithField("session_id", c.ID()).Info("Started training session")

	return c.View(), nil
}

// Get returns the current view of a session without changing it.
func (s *Service) Get(ctx context.Context, id string) (trainer.View, error) {
	ctx, span := tracing.StartSpan(ctx, "training.Get")
	defer span.End()

	state, err := s.repo.Get(ctx, id)
	if err != nil {
		return trainer.View{}, err
	}
	return trainer.Restore(state).View(), nil
}

// Render returns the view for drawing the page. A pending warning is handed
// out once and then cleared.
func (s *Service) Render(ctx context.Context, id string) (trainer.View, error) {
	var warning string
	view, err := s.update(ctx, OperationRender, id, func(c *trainer.Controller) error {
		warning = c.TakeWarning()
		return nil
	})
	view.Warning = warning
	return view, err
}

// SelectAction switches the action type and re-renders the parameter inputs.
func (s *Service) SelectAction(ctx context.Context, id, actionType string, goalName *string) (trainer.View, error) {
	return s.update(ctx, OperationSelectAction, id, func(c *trainer.Controller) error {
		if err := setGoalName(c, goalName); err != nil {
			return err
		}
		if err := c.SelectAction(actionType); err != nil {
			return err
		}

		s.logger.WithContext(ctx).WithFields(map[string]any{
			"session_id":  id,
			"action_type": c.SelectedAction(),
		}).Debug("Selected action")
		return nil
	})
}

// LogStep types the given values into the parameter inputs and logs a step.
func (s *Service) LogStep(ctx context.Context, id string, input FormInput) (trainer.View, error) {
	return s.update(ctx, OperationLogStep, id, func(c *trainer.Controller) error {
		if err := setGoalName(c, input.GoalName); err != nil {
			return err
		}
		if err := typeParams(c, input.Params); err != nil {
			return err
		}

		if err := c.LogStep(); err != nil {
			return err
		}

		metrics.RecordStepLogged(string(c.SelectedAction()))
		s.logger.WithContext(ctx).WithFields(map[string]any{
			"session_id":  id,
			"action_type": c.SelectedAction(),
			"steps":       len(c.Sequence()),
		}).Info("Logged training step")
		return nil
	})
}

// Finish opens the review of the sequence under the given goal name. Typed
// parameter values are kept so a refused finish does not lose them.
func (s *Service) Finish(ctx context.Context, id string, input FormInput) (trainer.View, error) {
	return s.update(ctx, OperationFinish, id, func(c *trainer.Controller) error {
		if err := setGoalName(c, input.GoalName); err != nil {
			return err
		}
		if err := typeParams(c, input.Params); err != nil {
			return err
		}
		if err := c.Finish(); err != nil {
			return err
		}

		s.logger.WithContext(ctx).WithFields(map[string]any{
			"session_id": id,
			"goal_name":  c.Review().GoalName,
			"steps":      len(c.Review().Steps),
		}).Info("Capability ready for review")
		return nil
	})
}

// Verify answers the open review.
func (s *Service) Verify(ctx context.Context, id string, accept bool) (trainer.View, error) {
	return s.update(ctx, OperationVerify, id, func(c *trainer.Controller) error {
		var goalName string
		if review := c.Review(); review != nil {
			goalName = review.GoalName
		}

		if err := c.Confirm(accept); err != nil {
			return err
		}

		metrics.RecordCapability(accept)
		s.logger.WithContext(ctx).WithFields(map[string]any{
			"session_id": id,
			"goal_name":  goalName,
			"accepted":   accept,
		}).Info("Capability reviewed")
		return nil
	})
}

// Delete ends a session.
func (s *Service) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "training.Delete")
	defer span.End()
	defer s.observe(OperationDelete, time.Now())

	ctx = appctx.SetSessionID(ctx, id)
	unlock, err := s.lock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	metrics.RecordSessionDeleted()
	s.logger.WithContext(ctx).WithField("session_id", id).Info("Ended training session")
	return nil
}

// update runs fn against the stored session under its lock. Warnings are
// returned alongside the view and saved so a page can show them once; any
// other error leaves the stored session untouched.
func (s *Service) update(ctx context.Context, operation, id string, fn func(c *trainer.Controller) error) (trainer.View, error) {
	ctx, span := tracing.StartSpan(ctx, "training."+operation)
	defer span.End()
	defer s.observe(operation, time.Now())

	ctx = appctx.SetSessionID(ctx, id)
	tracing.Annotate(ctx, map[string]string{"session.id": id, "training.operation": operation})

	unlock, err := s.lock(ctx, id)
	if err != nil {
		tracing.RecordError(ctx, err)
		return trainer.View{}, err
	}
	defer unlock()

	state, err := s.repo.Get(ctx, id)
	if err != nil {
		tracing.RecordError(ctx, err)
		return trainer.View{}, err
	}

	c := trainer.Restore(state)
	opErr := fn(c)
	if opErr != nil && !errors.IsTrainingError(opErr) {
		tracing.RecordError(ctx, opErr)
		return trainer.View{}, opErr
	}
	if opErr != nil {
		metrics.RecordWarning(operation)
		tracing.AddEvent(ctx, "training.warning", c.Warning())
		s.logger.WithContext(ctx).WithError(opErr).WithFields(map[string]any{
			"session_id": id,
			"operation":  operation,
		}).Debug("Training warning")
	}

	if err := s.repo.Save(ctx, c.Snapshot()); err != nil {
		return trainer.View{}, err
	}

	return c.View(), opErr
}

func (s *Service) lock(ctx context.Context, id string) (session.Unlock, error) {
	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()
	return s.repo.Lock(lockCtx, id)
}

func (s *Service) observe(operation string, start time.Time) {
	metrics.RecordOperation(operation, time.Since(start).Seconds())
}

// ActionDefinitions returns the schema table behind the parameter inputs.
func (s *Service) ActionDefinitions() []models.ActionDefinition {
	return models.ActionDefinitions()
}

func setGoalName(c *trainer.Controller, goalName *string) error {
	if goalName == nil {
		return nil
	}
	return c.SetGoalName(*goalName)
}

// typeParams fills the rendered inputs in display order. An unknown name is
// refused before any input changes.
func typeParams(c *trainer.Controller, params map[string]string) error {
	for name, value := range params {
		if _, ok := c.Input(name); !ok {
			return c.SetParam(name, value)
		}
	}
	for _, field := range c.Inputs() {
		if value, ok := params[field.Definition.Name]; ok {
			if err := c.SetParam(field.Definition.Name, value); err != nil {
				return err
			}
		}
	}
	return nil
}
