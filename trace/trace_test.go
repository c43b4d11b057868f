package trace

import (
	"context"
	nethttp "net/http"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var uuidPattern = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-4[a-f0-9]{3}-[89ab][a-f0-9]{3}-[a-f0-9]{12}$`)

func TestHeaderConstants(t *testing.T) {
	assert.Equal(t, "X-Request-ID", HeaderXRequestID)
}

func TestEnsureTraceID_UsesExisting(t *testing.T) {
	ctx := WithTraceID(context.Background(), "existing-trace-id")
	assert.Equal(t, "existing-trace-id", EnsureTraceID(ctx))
}

func TestEnsureTraceID_GeneratesWhenMissing(t *testing.T) {
	got := EnsureTraceID(context.Background())
	assert.Regexp(t, uuidPattern, got)
	assert.NotEqual(t, got, EnsureTraceID(context.Background()))
}

func TestIDFromContext_Missing(t *testing.T) {
	_, ok := IDFromContext(context.Background())
	assert.False(t, ok)

	_, ok = IDFromContext(WithTraceID(context.Background(), ""))
	assert.False(t, ok, "empty ids are treated as missing")
}

func TestJobRunID_ContextRoundTrip(t *testing.T) {
	ctx := WithJobRunID(context.Background(), "278c97ffadb54a5bbb93cfec5f7b5503")
	out, ok := JobRunIDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "278c97ffadb54a5bbb93cfec5f7b5503", out)

	_, ok = JobRunIDFromContext(context.Background())
	assert.False(t, ok)
}

func TestFromHeader(t *testing.T) {
	t.Run("uses inbound header", func(t *testing.T) {
		h := nethttp.Header{}
		h.Set(HeaderXRequestID, " inbound-id ")

		ctx, id := FromHeader(context.Background(), h, "")
		assert.Equal(t, "inbound-id", id)
		got, ok := IDFromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, "inbound-id", got)
	})

	t.Run("custom header name", func(t *testing.T) {
		h := nethttp.Header{}
		h.Set("X-Correlation-ID", "corr-1")

		_, id := FromHeader(context.Background(), h, "X-Correlation-ID")
		assert.Equal(t, "corr-1", id)
	})

	t.Run("generates when missing", func(t *testing.T) {
		ctx, id := FromHeader(context.Background(), nethttp.Header{}, "")
		assert.Regexp(t, uuidPattern, id)
		got, _ := IDFromContext(ctx)
		assert.Equal(t, id, got)
	})
}
