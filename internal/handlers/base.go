package handlers

import (
	"net/http"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"
	"github.com/renning22/fmcp/pkg/middleware"
)

// SessionID extracts the training session ID from the path
func SessionID(c echo.Context) (string, error) {
	id := strings.TrimSpace(c.Param(middleware.SessionIDParam))
	if id == "" {
		return "", httperror.NewHTTPError(http.StatusBadRequest, "missing session id")
	}
	return id, nil
}

// SuccessResponse returns a 200 OK with data
func SuccessResponse(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, data)
}

// CreatedResponse returns a 201 Created with data
func CreatedResponse(c echo.Context, data any) error {
	return c.JSON(http.StatusCreated, data)
}

// NoContentResponse returns a 204 No Content
func NoContentResponse(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

// BadRequest returns a 400 Bad Request error
func BadRequest(message string) error {
	return httperror.NewHTTPError(http.StatusBadRequest, message)
}
