package middleware

import (
	"net/http"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	"github.com/renning22/fmcp/pkg/context"
	"github.com/renning22/fmcp/pkg/errors"
	"github.com/renning22/fmcp/pkg/tracing"
)

// ErrorTemplate is the template rendered for errors on page routes.
const ErrorTemplate = "error.html"

type ErrorResponse struct {
	Code      int            `json:"-"`
	Message   string         `json:"message"`
	RequestID string         `json:"request_id"`
	TraceID   string         `json:"trace_id"`
	Meta      map[string]any `json:"meta"`
}

// Error renders errors as JSON for the API and as an error page for
// everything else. Training warnings become 400s carrying meta.warning.
func Error(logger ectologger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		ctx := c.Request().Context()
		// Check if the response is already committed
		if c.Response().Committed {
			return
		}

		res := ToErrorResponse(c, err)
		if res.Code >= http.StatusInternalServerError {
			logger.WithContext(ctx).WithError(err).Error("api is returning an error")
		} else {
			logger.WithContext(ctx).WithError(err).Debug("api is returning an error")
		}

		if wantsJSON(c) || c.Echo().Renderer == nil {
			_ = c.JSON(res.Code, res)
			return
		}

		if renderErr := c.Render(res.Code, ErrorTemplate, res); renderErr != nil {
			logger.WithContext(ctx).WithError(renderErr).Error("failed to render error page")
			_ = c.JSON(res.Code, res)
		}
	}
}

// ToErrorResponse maps err onto the response body the error handler writes.
func ToErrorResponse(c echo.Context, err error) ErrorResponse {
	ctx := c.Request().Context()

	// Default response
	code := http.StatusInternalServerError
	message := "Internal Server Error"
	meta := map[string]any{}

	if trainingErr, ok := errors.AsTrainingError(err); ok {
		err = trainingErr.ToHTTPError()
	}

	// Handle specific Echo errors
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(code)
		}
	}

	if ok := httperror.IsHTTPError(err); ok {
		httperr := httperror.ToHTTPError(err)
		code = httperror.GetStatusCode(err)
		message = httperr.Error()
		if httperr.Meta != nil {
			meta = httperr.Meta
		}
	}

	return ErrorResponse{
		Code:      code,
		Message:   message,
		RequestID: context.GetRequestID(ctx),
		TraceID:   tracing.GetTraceID(ctx),
		Meta:      meta,
	}
}

func wantsJSON(c echo.Context) bool {
	req := c.Request()
	if strings.HasPrefix(req.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(req.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}
