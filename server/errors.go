package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gaborage/adapter-bricks/adapter"
	"github.com/gaborage/adapter-bricks/logger"
)

// errorHandler renders errors that escaped the handlers (unknown routes,
// oversized bodies, rate limiting) as errored envelopes carrying the HTTP status.
func errorHandler(err error, c echo.Context, log logger.Logger) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	msg := adapter.MsgDefaultError

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		switch m := he.Message.(type) {
		case string:
			msg = m
		case error:
			msg = m.Error()
		default:
			msg = fmt.Sprint(m)
		}
	} else if err != nil && err.Error() != "" {
		msg = err.Error()
	}

	if status >= http.StatusInternalServerError {
		log.WithContext(c.Request().Context()).Error().Err(err).Msg("Unhandled request error")
	}

	_ = writeEnvelope(c, status, msg)
}

// writeEnvelope writes an errored envelope with the given status.
func writeEnvelope(c echo.Context, status int, msg string) error {
	env := adapter.Errored(adapter.DefaultJobRunID, errors.New(msg))
	env.StatusCode = status

	if c.Request().Method == http.MethodHead {
		return c.NoContent(status)
	}
	return c.JSON(status, env)
}
