package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/gaborage/adapter-bricks/adapter"
	"github.com/gaborage/adapter-bricks/logger"
	"github.com/gaborage/adapter-bricks/trace"
	"github.com/gaborage/adapter-bricks/validation"
)

// ExecuteFunc runs one adapter request and reports the outcome through
// callback. Implementations usually validate input, call the upstream with
// httpclient and finish with adapter.Respond.
type ExecuteFunc func(ctx context.Context, input map[string]any, callback adapter.Callback)

// responder writes the first envelope reported for a request and drops the rest.
type responder struct {
	c        echo.Context
	log      logger.Logger
	jobRunID string

	once sync.Once
	err  error
}

// write reports whether this call produced the response.
func (r *responder) write(statusCode int, envelope any) bool {
	first := false
	r.once.Do(func() {
		first = true
		r.err = r.c.JSON(statusCode, envelope)
	})
	return first
}

func (r *responder) callback(statusCode int, envelope any) {
	if !r.write(statusCode, envelope) {
		r.log.Warn().
			Str("job_run_id", r.jobRunID).
			Int("status", statusCode).
			Msg("Duplicate adapter callback ignored")
	}
}

// Bridge returns the handler for adapter requests. The body is decoded into
// a generic object and handed to execute together with a callback that writes
// the status code and envelope exactly once. A request that cannot be decoded,
// or whose execution panics or never reports back, gets an errored envelope.
func Bridge(log logger.Logger, execute ExecuteFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		ctx := req.Context()
		reqLog := log.WithContext(ctx)

		body, err := io.ReadAll(req.Body)
		if err != nil {
			// Oversized bodies surface as *echo.HTTPError from the body limit reader.
			var he *echo.HTTPError
			if errors.As(err, &he) {
				return he
			}
			return writeErrored(c, adapter.DefaultJobRunID, adapter.New(adapter.KindInvalidRequest, fmt.Sprintf("Invalid request body: %v", err)))
		}

		input, err := validation.DecodeRequest(body)
		if err != nil {
			reqLog.Warn().Err(err).Msg("Rejected adapter request")
			return writeErrored(c, adapter.DefaultJobRunID, err)
		}

		jobRunID := validation.JobRunID(input)
		ctx = trace.WithJobRunID(ctx, jobRunID)
		c.SetRequest(req.WithContext(ctx))

		r := &responder{c: c, log: reqLog, jobRunID: jobRunID}
		if execute == nil {
			adapter.ErrorCallback(jobRunID, nil, r.callback)
			return r.err
		}

		if perr := run(ctx, execute, input, r.callback); perr != nil {
			reqLog.Error().
				Err(perr).
				Str("job_run_id", jobRunID).
				Msg("Adapter execution panicked")
			r.write(http.StatusInternalServerError, adapter.Errored(jobRunID, perr))
			return r.err
		}

		if r.write(http.StatusInternalServerError, adapter.Errored(jobRunID, nil)) {
			reqLog.Error().
				Str("job_run_id", jobRunID).
				Msg("Adapter finished without reporting a result")
		}
		return r.err
	}
}

// run calls execute and converts a panic into an error.
func run(ctx context.Context, execute ExecuteFunc, input map[string]any, cb adapter.Callback) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if e, ok := rec.(error); ok {
				err = e
				return
			}
			err = fmt.Errorf("%v", rec)
		}
	}()
	execute(ctx, input, cb)
	return nil
}

func writeErrored(c echo.Context, jobRunID string, err error) error {
	env := adapter.Errored(jobRunID, err)
	return c.JSON(http.StatusInternalServerError, env)
}
