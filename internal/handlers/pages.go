package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/renning22/fmcp/internal/services/training"
	"github.com/renning22/fmcp/pkg/errors"
)

const (
	trainingTemplate = "training.html"
	paramFieldPrefix = "param-"
	goalNameField    = "goal_name"
	actionTypeField  = "action_type"
	acceptField      = "accept"
)

// PageHandler serves the training page. Every form post redirects back to
// the page, which shows any warning once.
type PageHandler struct {
	svc *training.Service
}

// NewPageHandler creates a new training page handler
func NewPageHandler(svc *training.Service) *PageHandler {
	return &PageHandler{svc: svc}
}

// RegisterRoutes registers the page routes
func (h *PageHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Start)

	page := e.Group("/training")
	page.GET("/:id", h.Show)
	page.POST("/:id/action", h.SelectAction)
	page.POST("/:id/steps", h.LogStep)
	page.POST("/:id/finish", h.Finish)
	page.POST("/:id/verify", h.Verify)
}

// Start handles GET /. Each visit starts a fresh training session.
func (h *PageHandler) Start(c echo.Context) error {
	view, err := h.svc.Create(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, pagePath(view.SessionID))
}

// Show handles GET /training/:id
func (h *PageHandler) Show(c echo.Context) error {
	id, err := SessionID(c)
	if err != nil {
		return err
	}

	view, err := h.svc.Render(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, trainingTemplate, view)
}

// SelectAction handles POST /training/:id/action
func (h *PageHandler) SelectAction(c echo.Context) error {
	id, form, err := parseForm(c)
	if err != nil {
		return err
	}

	_, err = h.svc.SelectAction(c.Request().Context(), id, form.Get(actionTypeField), goalName(form))
	return redirectBack(c, id, err)
}

// LogStep handles POST /training/:id/steps
func (h *PageHandler) LogStep(c echo.Context) error {
	id, form, err := parseForm(c)
	if err != nil {
		return err
	}

	_, err = h.svc.LogStep(c.Request().Context(), id, formInput(form))
	return redirectBack(c, id, err)
}

// Finish handles POST /training/:id/finish
func (h *PageHandler) Finish(c echo.Context) error {
	id, form, err := parseForm(c)
	if err != nil {
		return err
	}

	_, err = h.svc.Finish(c.Request().Context(), id, formInput(form))
	return redirectBack(c, id, err)
}

// Verify handles POST /training/:id/verify
func (h *PageHandler) Verify(c echo.Context) error {
	id, form, err := parseForm(c)
	if err != nil {
		return err
	}

	accept, err := strconv.ParseBool(form.Get(acceptField))
	if err != nil {
		return BadRequest("accept must be true or false")
	}

	_, err = h.svc.Verify(c.Request().Context(), id, accept)
	return redirectBack(c, id, err)
}

func parseForm(c echo.Context) (string, url.Values, error) {
	id, err := SessionID(c)
	if err != nil {
		return "", nil, err
	}

	form, err := c.FormParams()
	if err != nil {
		return "", nil, BadRequest("invalid form")
	}
	return id, form, nil
}

// redirectBack sends the browser back to the page. Warnings were stored with
// the session and are shown there.
func redirectBack(c echo.Context, id string, err error) error {
	if err != nil && !errors.IsTrainingError(err) {
		return err
	}
	return c.Redirect(http.StatusSeeOther, pagePath(id))
}

// formInput collects the param-* fields and the goal name of a page post.
func formInput(form url.Values) training.FormInput {
	params := map[string]string{}
	for key, values := range form {
		if name, ok := strings.CutPrefix(key, paramFieldPrefix); ok && len(values) > 0 {
			params[name] = values[0]
		}
	}
	return training.FormInput{
		Params:   params,
		GoalName: goalName(form),
	}
}

func goalName(form url.Values) *string {
	values, ok := form[goalNameField]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

func pagePath(id string) string {
	return "/training/" + id
}
