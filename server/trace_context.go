package server

import (
	"github.com/labstack/echo/v4"

	"github.com/gaborage/adapter-bricks/logger"
	"github.com/gaborage/adapter-bricks/trace"
)

// TraceContext stores the request id set by the RequestID middleware (or sent
// by the caller) as the trace id of the request context, so that outbound
// httpclient calls forward it without depending on Echo.
func TraceContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			h := c.Response().Header()
			if h.Get(echo.HeaderXRequestID) == "" {
				h = req.Header
			}
			ctx, traceID := trace.FromHeader(req.Context(), h, echo.HeaderXRequestID)
			c.Response().Header().Set(echo.HeaderXRequestID, traceID)

			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}

// UpstreamStats installs a per-request counter that httpclient updates on
// every upstream attempt. The request logger reports the totals.
func UpstreamStats() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			c.SetRequest(req.WithContext(logger.WithUpstreamCounter(req.Context())))
			return next(c)
		}
	}
}
