package server

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/gaborage/adapter-bricks/config"
	"github.com/gaborage/adapter-bricks/logger"
)

// DefaultServiceName names server spans when the app name is not configured.
const DefaultServiceName = "adapter"

// SetupMiddlewares configures and registers all HTTP middlewares for the Echo server.
func SetupMiddlewares(e *echo.Echo, log logger.Logger, cfg *config.Config) {
	// Request ID
	e.Use(middleware.RequestID())

	// Make the request id the trace id seen by outbound calls
	e.Use(TraceContext())

	// Count upstream attempts made while serving the request
	e.Use(UpstreamStats())

	// OpenTelemetry server spans
	service := cfg.App.Name
	if service == "" {
		service = DefaultServiceName
	}
	e.Use(otelecho.Middleware(service, otelecho.WithSkipper(func(c echo.Context) bool {
		return c.Path() == HealthPath
	})))

	// Logger middleware with zerolog
	e.Use(Logger(log))

	// Recovery
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			log.Error().
				Err(err).
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Bytes("stack", stack).
				Msg("Panic recovered")
			return err
		},
	}))

	// Body limit
	if cfg.Server.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))
	}

	// Rate limit
	e.Use(RateLimit(cfg.Server.RateLimit))
}
