package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/renning22/fmcp/pkg/context"
)

// SessionIDParam is the route parameter naming the training session.
const SessionIDParam = "id"

func Context() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			req := c.Request()

			// get request id from header
			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.New().String()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			ctx := req.Context()
			ctx = context.SetRequestID(ctx, requestID)
			ctx = context.SetMethod(ctx, req.Method)
			ctx = context.SetRoute(ctx, req.URL.Path)
			ctx = context.SetRemoteIP(ctx, c.RealIP())

			if sessionID := c.Param(SessionIDParam); sessionID != "" {
				ctx = context.SetSessionID(ctx, sessionID)
			}

			c.SetRequest(req.WithContext(ctx))

			return next(c)
		}
	}
}
