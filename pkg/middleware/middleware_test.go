package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	appctx "github.com/renning22/fmcp/pkg/context"
	"github.com/renning22/fmcp/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEcho() *echo.Echo {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})

	e := echo.New()
	e.HTTPErrorHandler = Error(logger)
	e.Use(Context())
	e.Use(Logger(logger))
	return e
}

func serve(e *echo.Echo, req *http.Request) (*httptest.ResponseRecorder, ErrorResponse) {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var res ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &res)
	return rec, res
}

func TestContextSetsRequestAndSessionID(t *testing.T) {
	e := newTestEcho()

	var requestID, sessionID string
	e.GET("/api/v1/sessions/:id", func(c echo.Context) error {
		ctx := c.Request().Context()
		requestID = appctx.GetRequestID(ctx)
		sessionID = appctx.GetSessionID(ctx)
		return c.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/abc", nil)
	req.Header.Set(echo.HeaderXRequestID, "req-1")
	rec, _ := serve(e, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "req-1", requestID)
	assert.Equal(t, "abc", sessionID)
	assert.Equal(t, "req-1", rec.Header().Get(echo.HeaderXRequestID))
}

func TestContextGeneratesRequestID(t *testing.T) {
	e := newTestEcho()
	e.GET("/", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	rec, _ := serve(e, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestErrorTrainingWarning(t *testing.T) {
	e := newTestEcho()
	e.POST("/api/v1/steps", func(c echo.Context) error {
		return errors.NewTrainingError(errors.MessageFillAllParameters).AddAction("swap").AddParameter("amountIn")
	})

	rec, res := serve(e, httptest.NewRequest(http.MethodPost, "/api/v1/steps", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errors.MessageFillAllParameters, res.Meta["warning"])
	assert.Equal(t, "swap", res.Meta["action"])
	assert.Equal(t, "amountIn", res.Meta["parameter"])
	assert.NotEmpty(t, res.RequestID)
}

func TestErrorHTTPError(t *testing.T) {
	e := newTestEcho()
	e.GET("/api/v1/missing", func(c echo.Context) error {
		return httperror.NewHTTPError(http.StatusNotFound, "training session x not found")
	})

	rec, res := serve(e, httptest.NewRequest(http.MethodGet, "/api/v1/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, res.Message, "training session x not found")
}

func TestErrorEchoError(t *testing.T) {
	e := newTestEcho()

	rec, res := serve(e, httptest.NewRequest(http.MethodGet, "/api/v1/nothing-here", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, res.Message)
}

func TestErrorWithoutRendererFallsBackToJSON(t *testing.T) {
	e := newTestEcho()
	e.GET("/page", func(c echo.Context) error {
		return httperror.NewHTTPError(http.StatusConflict, "busy")
	})

	rec, res := serve(e, httptest.NewRequest(http.MethodGet, "/page", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
	assert.Contains(t, res.Message, "busy")
}
