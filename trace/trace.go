// Package trace carries request correlation values through a context: the
// trace id propagated to upstream APIs and the job run id of the adapter
// request being served.
package trace

import (
	"context"
	nethttp "net/http"
	"strings"

	"github.com/google/uuid"
)

// contextKey is the type for context keys to avoid collisions
type contextKey string

const (
	traceIDKey  contextKey = "trace_id"
	jobRunIDKey contextKey = "job_run_id"

	// HeaderXRequestID is the standard header name for request tracing
	HeaderXRequestID = "X-Request-ID"
)

// WithTraceID adds a trace ID to the context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// IDFromContext returns a trace ID from context if present
func IDFromContext(ctx context.Context) (string, bool) {
	if traceID, ok := ctx.Value(traceIDKey).(string); ok && traceID != "" {
		return traceID, true
	}
	return "", false
}

// EnsureTraceID returns an existing trace ID from context or generates a new one
func EnsureTraceID(ctx context.Context) string {
	if traceID, ok := IDFromContext(ctx); ok {
		return traceID
	}
	return NewID()
}

// NewID generates a random trace id.
func NewID() string {
	return uuid.New().String()
}

// WithJobRunID adds the correlation id of the adapter request to the context.
func WithJobRunID(ctx context.Context, jobRunID string) context.Context {
	return context.WithValue(ctx, jobRunIDKey, jobRunID)
}

// JobRunIDFromContext returns the job run id if present
func JobRunIDFromContext(ctx context.Context) (string, bool) {
	if id, ok := ctx.Value(jobRunIDKey).(string); ok && id != "" {
		return id, true
	}
	return "", false
}

// FromHeader stores the trace id found in header h of an inbound request,
// generating one when absent, and returns the id that was stored.
func FromHeader(ctx context.Context, h nethttp.Header, header string) (context.Context, string) {
	if header == "" {
		header = HeaderXRequestID
	}
	id := strings.TrimSpace(h.Get(header))
	if id == "" {
		id = EnsureTraceID(ctx)
	}
	return WithTraceID(ctx, id), id
}
