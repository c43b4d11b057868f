package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"time"
)

const (
	// DefaultAttempts is the number of tries made before giving up
	DefaultAttempts = 3

	// DefaultRetryDelay is the constant delay between attempts
	DefaultRetryDelay = 1 * time.Second

	errorKey = "error"
)

// FailurePredicate reports whether a decoded payload is an application-level
// failure that should be retried like a transport failure.
type FailurePredicate func(payload any) bool

// Never is the default predicate: no payload is a failure.
func Never(any) bool { return false }

// SleepFunc waits d between attempts. It returns ctx.Err() when the context
// ends first.
type SleepFunc func(ctx context.Context, d time.Duration) error

// RetryPolicy bounds the attempt loop. The delay is constant: no backoff and
// no jitter.
type RetryPolicy struct {
	Attempts         int
	Delay            time.Duration
	FailurePredicate FailurePredicate
}

// DefaultRetryPolicy returns 3 attempts, one second apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts:         DefaultAttempts,
		Delay:            DefaultRetryDelay,
		FailurePredicate: Never,
	}
}

// normalized clamps the attempt budget to at least one try and fills in the
// default predicate.
func (p RetryPolicy) normalized() RetryPolicy {
	if p.Attempts < 1 {
		p.Attempts = 1
	}
	if p.Delay < 0 {
		p.Delay = 0
	}
	if p.FailurePredicate == nil {
		p.FailurePredicate = Never
	}
	return p
}

// timerSleep is the default SleepFunc.
func timerSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// isApplicationFailure reports a payload whose error field is truthy or that
// the predicate rejects.
func isApplicationFailure(data any, predicate FailurePredicate) bool {
	if obj, ok := data.(map[string]any); ok && truthy(obj[errorKey]) {
		return true
	}
	return predicate != nil && predicate(data)
}

// truthy applies loose truthiness to a decoded JSON value: null, false, 0,
// NaN and "" are false; everything else, including empty objects, is true.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case string:
		return t != ""
	default:
		return true
	}
}

// decodeBody returns the JSON value of body, the body as a string when it is
// not JSON, or nil when it is empty.
func decodeBody(body []byte) any {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return string(body)
	}
	return data
}

// compactBody serializes body for error messages: compacted when it is JSON,
// quoted as a JSON string otherwise.
func compactBody(body []byte) string {
	if trimmed := bytes.TrimSpace(body); json.Valid(trimmed) {
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err == nil {
			return buf.String()
		}
	}
	quoted, _ := json.Marshal(string(body))
	return string(quoted)
}
