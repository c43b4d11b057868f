package server

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

const (
	BurstMultiplier  = 2
	RateLimitCleanup = time.Minute * 3
)

// RateLimit returns a per client IP rate limiting middleware allowing
// requestsPerSecond with bursts of twice that (at least 1).
// If requestsPerSecond is 0 or negative, rate limiting is disabled.
func RateLimit(requestsPerSecond float64) echo.MiddlewareFunc {
	if requestsPerSecond <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	burst := int(math.Ceil(requestsPerSecond * BurstMultiplier))
	if burst < 1 {
		burst = 1
	}

	config := middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == HealthPath
		},
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(requestsPerSecond),
				Burst:     burst,
				ExpiresIn: RateLimitCleanup,
			},
		),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return writeEnvelope(c, http.StatusForbidden, fmt.Sprintf("Rate limit identifier error: %v", err))
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return writeEnvelope(c, http.StatusTooManyRequests, "Too many requests")
		},
	}

	return middleware.RateLimiterWithConfig(config)
}
