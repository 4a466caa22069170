package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/renning22/fmcp/internal/services/training"
	"github.com/renning22/fmcp/pkg/utils"
)

// APIHandler exposes training sessions as JSON for scripted clients
type APIHandler struct {
	svc *training.Service
}

// NewAPIHandler creates a new training API handler
func NewAPIHandler(svc *training.Service) *APIHandler {
	return &APIHandler{svc: svc}
}

// SelectActionRequest is the request body for choosing an action type
type SelectActionRequest struct {
	ActionType string  `json:"action_type" validate:"max=64"`
	GoalName   *string `json:"goal_name"`
}

// LogStepRequest is the request body for logging a step
type LogStepRequest struct {
	Params   map[string]string `json:"params" validate:"required"`
	GoalName *string           `json:"goal_name"`
}

// FinishRequest is the request body for opening the review
type FinishRequest struct {
	Params   map[string]string `json:"params"`
	GoalName *string           `json:"goal_name"`
}

// VerifyRequest is the request body for answering the review
type VerifyRequest struct {
	Accept *bool `json:"accept" validate:"required"`
}

// RegisterRoutes registers the training API routes
func (h *APIHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/actions", h.ListActions)

	sessions := g.Group("/sessions")
	sessions.POST("", h.Create)
	sessions.GET("/:id", h.Get)
	sessions.DELETE("/:id", h.Delete)
	sessions.PUT("/:id/action", h.SelectAction)
	sessions.POST("/:id/steps", h.LogStep)
	sessions.POST("/:id/finish", h.Finish)
	sessions.POST("/:id/verify", h.Verify)
}

// ListActions handles GET /actions
func (h *APIHandler) ListActions(c echo.Context) error {
	return SuccessResponse(c, h.svc.ActionDefinitions())
}

// Create handles POST /sessions
func (h *APIHandler) Create(c echo.Context) error {
	view, err := h.svc.Create(c.Request().Context())
	if err != nil {
		return err
	}
	return CreatedResponse(c, view)
}

// Get handles GET /sessions/:id
func (h *APIHandler) Get(c echo.Context) error {
	id, err := SessionID(c)
	if err != nil {
		return err
	}

	view, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return SuccessResponse(c, view)
}

// Delete handles DELETE /sessions/:id
func (h *APIHandler) Delete(c echo.Context) error {
	id, err := SessionID(c)
	if err != nil {
		return err
	}

	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return NoContentResponse(c)
}

// SelectAction handles PUT /sessions/:id/action
func (h *APIHandler) SelectAction(c echo.Context) error {
	id, err := SessionID(c)
	if err != nil {
		return err
	}

	req, err := utils.BindRequest[SelectActionRequest](c)
	if err != nil {
		return err
	}

	view, err := h.svc.SelectAction(c.Request().Context(), id, req.ActionType, req.GoalName)
	if err != nil {
		return err
	}
	return SuccessResponse(c, view)
}

// LogStep handles POST /sessions/:id/steps
func (h *APIHandler) LogStep(c echo.Context) error {
	id, err := SessionID(c)
	if err != nil {
		return err
	}

	req, err := utils.BindRequest[LogStepRequest](c)
	if err != nil {
		return err
	}

	view, err := h.svc.LogStep(c.Request().Context(), id, training.FormInput{
		Params:   req.Params,
		GoalName: req.GoalName,
	})
	if err != nil {
		return err
	}
	return SuccessResponse(c, view)
}

// Finish handles POST /sessions/:id/finish
func (h *APIHandler) Finish(c echo.Context) error {
	id, err := SessionID(c)
	if err != nil {
		return err
	}

	req, err := utils.BindRequest[FinishRequest](c)
	if err != nil {
		return err
	}

	view, err := h.svc.Finish(c.Request().Context(), id, training.FormInput{
		Params:   req.Params,
		GoalName: req.GoalName,
	})
	if err != nil {
		return err
	}
	return SuccessResponse(c, view)
}

// Verify handles POST /sessions/:id/verify
func (h *APIHandler) Verify(c echo.Context) error {
	id, err := SessionID(c)
	if err != nil {
		return err
	}

	req, err := utils.BindRequest[VerifyRequest](c)
	if err != nil {
		return err
	}

	view, err := h.svc.Verify(c.Request().Context(), id, *req.Accept)
	if err != nil {
		return err
	}
	return SuccessResponse(c, view)
}
