package server

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gaborage/adapter-bricks/logger"
	"github.com/gaborage/adapter-bricks/trace"
)

// Logger returns a request logging middleware. Each request produces one
// summary line whose level follows the response status: error for 5xx, warn
// for 4xx, info otherwise. Health probes are not logged.
func Logger(log logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Path() == HealthPath || c.Request().URL.Path == HealthPath {
				return next(c)
			}

			start := time.Now()
			err := next(c)
			if err != nil {
				// Let Echo render the error now so the logged status is final.
				c.Error(err)
			}
			latency := time.Since(start)

			req := c.Request()
			ctx := req.Context()
			status := c.Response().Status

			event := levelFor(log.WithContext(ctx), status, err).
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("remote_ip", c.RealIP()).
				Int("status", status).
				Dur("latency", latency).
				Int64("upstream_attempts", logger.UpstreamAttempts(ctx)).
				Dur("upstream_elapsed", logger.UpstreamElapsed(ctx))

			if jobRunID, ok := trace.JobRunIDFromContext(ctx); ok {
				event = event.Str("job_run_id", jobRunID)
			}
			if err != nil {
				event = event.Err(err)
			}
			event.Msg("Request completed")

			return nil
		}
	}
}

func levelFor(log logger.Logger, status int, err error) logger.LogEvent {
	switch {
	case status >= 500 || (err != nil && status == 0):
		return log.Error()
	case status >= 400:
		return log.Warn()
	default:
		return log.Info()
	}
}
