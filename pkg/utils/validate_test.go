package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRequest struct {
	Name   string `json:"name" form:"name" validate:"required,max=8"`
	Accept *bool  `json:"accept" form:"accept" validate:"required"`
}

func TestValidate(t *testing.T) {
	accept := false

	_, err := Validate(testRequest{Name: "ok", Accept: &accept})
	assert.NoError(t, err)

	_, err = Validate(testRequest{Accept: &accept})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'Name' failed rule 'required'")

	_, err = Validate(testRequest{Name: "much too long"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rule 'max=8'")
	assert.Contains(t, err.Error(), "field 'Accept' failed rule 'required'")
}

func TestBindRequest(t *testing.T) {
	e := echo.New()

	t.Run("json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"swap","accept":true}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		c := e.NewContext(req, httptest.NewRecorder())

		v, err := BindRequest[testRequest](c)
		require.NoError(t, err)
		assert.Equal(t, "swap", v.Name)
		require.NotNil(t, v.Accept)
		assert.True(t, *v.Accept)
	})

	t.Run("invalid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		c := e.NewContext(req, httptest.NewRecorder())

		_, err := BindRequest[testRequest](c)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
	})

	t.Run("failed validation", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"accept":false}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		c := e.NewContext(req, httptest.NewRecorder())

		_, err := BindRequest[testRequest](c)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
	})
}
