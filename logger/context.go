package logger

import (
	"context"
	"sync/atomic"
	"time"
)

type contextKey string

const (
	// upstreamCounterKey tracks upstream HTTP attempts made while serving one request
	upstreamCounterKey contextKey = "upstream_attempt_counter"
	// upstreamElapsedKey tracks the total time spent waiting on upstream responses
	upstreamElapsedKey contextKey = "upstream_elapsed_nanos"
)

// WithUpstreamCounter returns a context that accumulates upstream attempt
// counts and elapsed time. The server installs one per inbound request.
func WithUpstreamCounter(ctx context.Context) context.Context {
	counter := int64(0)
	elapsed := int64(0)
	ctx = context.WithValue(ctx, upstreamCounterKey, &counter)
	ctx = context.WithValue(ctx, upstreamElapsedKey, &elapsed)
	return ctx
}

// RecordUpstreamAttempt counts one attempt and adds its duration. It is a
// no-op on contexts without a counter.
func RecordUpstreamAttempt(ctx context.Context, d time.Duration) {
	if counter, ok := ctx.Value(upstreamCounterKey).(*int64); ok && counter != nil {
		atomic.AddInt64(counter, 1)
	}
	if elapsed, ok := ctx.Value(upstreamElapsedKey).(*int64); ok && elapsed != nil {
		atomic.AddInt64(elapsed, int64(d))
	}
}

// UpstreamAttempts returns the attempt count recorded in ctx.
func UpstreamAttempts(ctx context.Context) int64 {
	if counter, ok := ctx.Value(upstreamCounterKey).(*int64); ok && counter != nil {
		return atomic.LoadInt64(counter)
	}
	return 0
}

// UpstreamElapsed returns the total upstream time recorded in ctx.
func UpstreamElapsed(ctx context.Context) time.Duration {
	if elapsed, ok := ctx.Value(upstreamElapsedKey).(*int64); ok && elapsed != nil {
		return time.Duration(atomic.LoadInt64(elapsed))
	}
	return 0
}
