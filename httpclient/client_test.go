package httpclient

import (
	"context"
	"errors"
	nethttp "net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/gaborage/adapter-bricks/adapter"
	"github.com/gaborage/adapter-bricks/config"
	"github.com/gaborage/adapter-bricks/internal/testutil"
	"github.com/gaborage/adapter-bricks/logger"
	"github.com/gaborage/adapter-bricks/payload"
	"github.com/gaborage/adapter-bricks/testing/fixtures"
	"github.com/gaborage/adapter-bricks/testing/mocks"
	adaptertrace "github.com/gaborage/adapter-bricks/trace"
)

const (
	testAPIKeyHeader = "X-API-Key"
)

// rejectNonSuccess is the predicate used against /customError.
func rejectNonSuccess(data any) bool {
	obj, ok := data.(map[string]any)
	return !ok || obj["result"] != "success"
}

// recordingSleep records every requested delay without waiting.
type recordingSleep struct {
	delays []time.Duration
}

func (s *recordingSleep) sleep(ctx context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return ctx.Err()
}

func newTestBuilder(sleep *recordingSleep) *Builder {
	return NewBuilder(logger.Nop()).WithSleep(sleep.sleep)
}

func requireAdapterError(t *testing.T, err error, kind adapter.Kind, message string) {
	t.Helper()
	require.Error(t, err)
	var adapterErr *adapter.Error
	require.True(t, errors.As(err, &adapterErr), "expected *adapter.Error, got %T", err)
	assert.Equal(t, kind, adapterErr.Kind)
	if message != "" {
		assert.Equal(t, message, adapterErr.Message)
	}
}

func TestNewClient(t *testing.T) {
	c, ok := NewClient(logger.Nop()).(*client)
	require.True(t, ok)

	assert.Equal(t, DefaultTimeout, c.config.Timeout)
	assert.Equal(t, 3, c.config.Retry.Attempts)
	assert.Equal(t, time.Second, c.config.Retry.Delay)
	assert.Equal(t, HeaderXRequestID, c.config.TraceIDHeader)
	assert.Equal(t, DefaultMaxPayloadLogBytes, c.config.MaxPayloadLogBytes)
	assert.False(t, c.config.LogPayloads)
	assert.Nil(t, c.config.Limiter)
}

func TestBuilder(t *testing.T) {
	t.Run("nil logger", func(t *testing.T) {
		assert.NotNil(t, NewBuilder(nil).Build())
	})

	t.Run("options", func(t *testing.T) {
		transport := nethttp.DefaultTransport
		c := NewBuilder(logger.Nop()).
			WithTimeout(5*time.Second).
			WithRetries(5, 250*time.Millisecond).
			WithRateLimit(10, 0).
			WithBasicAuth("user", "pass").
			WithDefaultHeader(testAPIKeyHeader, "key").
			WithTraceIDHeader("X-Correlation-ID").
			WithPayloadLogging(true, 64).
			WithHTTPClient(&nethttp.Client{Timeout: time.Minute}).
			WithTransport(transport).
			Build().(*client)

		assert.Equal(t, 5*time.Second, c.config.Timeout)
		assert.Equal(t, 5, c.config.Retry.Attempts)
		assert.Equal(t, 250*time.Millisecond, c.config.Retry.Delay)
		require.NotNil(t, c.config.Limiter)
		assert.Equal(t, 1, c.config.Limiter.Burst())
		assert.Equal(t, &BasicAuth{Username: "user", Password: "pass"}, c.config.BasicAuth)
		assert.Equal(t, "key", c.config.DefaultHeaders[testAPIKeyHeader])
		assert.Equal(t, "X-Correlation-ID", c.config.TraceIDHeader)
		assert.True(t, c.config.LogPayloads)
		assert.Equal(t, 64, c.config.MaxPayloadLogBytes)
		assert.Equal(t, time.Minute, c.httpClient.Timeout)
		assert.Equal(t, transport, c.httpClient.Transport)
	})

	t.Run("empty and nil values keep defaults", func(t *testing.T) {
		c := NewBuilder(logger.Nop()).
			WithTraceIDHeader("").
			WithTraceIDGenerator(nil).
			WithSleep(nil).
			WithRateLimit(0, 5).
			WithPayloadLogging(true, 0).
			Build().(*client)

		assert.Equal(t, HeaderXRequestID, c.config.TraceIDHeader)
		assert.NotNil(t, c.config.NewTraceID)
		assert.NotNil(t, c.config.Sleep)
		assert.Nil(t, c.config.Limiter)
		assert.Equal(t, DefaultMaxPayloadLogBytes, c.config.MaxPayloadLogBytes)
	})

	t.Run("from config", func(t *testing.T) {
		c := NewBuilder(logger.Nop()).FromConfig(config.RequestConfig{
			Timeout:     1500 * time.Millisecond,
			Retries:     4,
			Delay:       2 * time.Second,
			RateLimit:   3,
			Burst:       2,
			LogPayloads: true,
		}).Build().(*client)

		assert.Equal(t, 1500*time.Millisecond, c.config.Timeout)
		assert.Equal(t, 4, c.config.Retry.Attempts)
		assert.Equal(t, 2*time.Second, c.config.Retry.Delay)
		require.NotNil(t, c.config.Limiter)
		assert.Equal(t, 2, c.config.Limiter.Burst())
		assert.True(t, c.config.LogPayloads)
	})
}

func TestClientReturnsResult(t *testing.T) {
	server := fixtures.NewUpstreamServer(t)
	sleep := &recordingSleep{}
	c := newTestBuilder(sleep).Build()

	resp, err := c.Get(context.Background(), &Request{URL: server.URL(fixtures.PathSuccess)})
	require.NoError(t, err)

	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]any{"result": "success", "value": 1.0}, resp.Data)
	assert.Equal(t, 1, resp.Stats.Attempts)
	assert.Equal(t, int64(1), resp.Stats.CallCount)
	assert.Greater(t, resp.Stats.ElapsedTime, time.Duration(0))
	assert.Zero(t, server.ErrorCount())
	assert.Empty(t, sleep.delays)

	var decoded struct {
		Result string `json:"result"`
		Value  int    `json:"value"`
	}
	require.NoError(t, resp.Decode(&decoded))
	assert.Equal(t, "success", decoded.Result)
	assert.Equal(t, 1, decoded.Value)

	resp, err = c.Get(context.Background(), &Request{URL: server.URL(fixtures.PathSuccess)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Stats.CallCount)
}

func TestClientHTTPMethods(t *testing.T) {
	server := fixtures.NewUpstreamServer(t)
	c := newTestBuilder(&recordingSleep{}).Build()
	req := &Request{URL: server.URL(fixtures.PathEcho)}
	ctx := context.Background()

	calls := map[string]func(context.Context, *Request) (*Response, error){
		nethttp.MethodGet:    c.Get,
		nethttp.MethodPost:   c.Post,
		nethttp.MethodPut:    c.Put,
		nethttp.MethodPatch:  c.Patch,
		nethttp.MethodDelete: c.Delete,
	}

	for method, call := range calls {
		t.Run(method, func(t *testing.T) {
			resp, err := call(ctx, req)
			require.NoError(t, err)
			assert.Equal(t, method, resp.Data.(map[string]any)["method"])
		})
	}
}

func TestClientRetries(t *testing.T) {
	server := fixtures.NewUpstreamServer(t)

	t.Run("returns an error from an endpoint", func(t *testing.T) {
		server.Reset()
		sleep := &recordingSleep{}
		c := newTestBuilder(sleep).WithRetries(1, 0).Build()

		_, err := c.Get(context.Background(), &Request{URL: server.URL(fixtures.PathError)})
		requireAdapterError(t, err, adapter.KindRequestFailed, testutil.UpstreamErrorMessage)
		assert.Equal(t, int64(1), server.ErrorCount())
		assert.Empty(t, sleep.delays)
	})

	t.Run("accepts custom retry amounts", func(t *testing.T) {
		server.Reset()
		sleep := &recordingSleep{}
		c := newTestBuilder(sleep).WithRetries(9, 5*time.Millisecond).Build()

		_, err := c.Get(context.Background(), &Request{URL: server.URL(fixtures.PathError)})
		requireAdapterError(t, err, adapter.KindRequestFailed, testutil.UpstreamErrorMessage)
		assert.Equal(t, int64(9), server.ErrorCount())
		require.Len(t, sleep.delays, 8)
		for _, d := range sleep.delays {
			assert.Equal(t, 5*time.Millisecond, d, "delay is constant")
		}
	})

	t.Run("retries errored statuses", func(t *testing.T) {
		server.Reset()
		sleep := &recordingSleep{}
		c := newTestBuilder(sleep).WithRetries(3, 0).Build()

		resp, err := c.Get(context.Background(), &Request{URL: server.URL(fixtures.PathErrorsTwice)})
		require.NoError(t, err)
		assert.Equal(t, int64(2), server.ErrorCount())
		assert.Equal(t, 3, resp.Stats.Attempts)
		assert.Equal(t, "success", resp.Data.(map[string]any)["result"])
		assert.Len(t, sleep.delays, 2)
	})

	t.Run("retries custom errors", func(t *testing.T) {
		server.Reset()
		sleep := &recordingSleep{}
		c := newTestBuilder(sleep).
			WithRetries(3, 0).
			WithFailurePredicate(rejectNonSuccess).
			Build()

		_, err := c.Get(context.Background(), &Request{URL: server.URL(fixtures.PathCustomError)})
		requireAdapterError(t, err, adapter.KindInvalidResponse, testutil.CustomErrorMessage)
		assert.Equal(t, int64(3), server.ErrorCount())
		assert.Len(t, sleep.delays, 2)
	})

	t.Run("retries payloads carrying an error field", func(t *testing.T) {
		server.Reset()
		c := newTestBuilder(&recordingSleep{}).WithRetries(2, 0).Build()

		_, err := c.Get(context.Background(), &Request{URL: server.URL(fixtures.PathApplicationError)})
		requireAdapterError(t, err, adapter.KindInvalidResponse,
			testutil.ApplicationErrorMessage)
		assert.Equal(t, int64(2), server.ErrorCount())
	})

	t.Run("predicate accepts a successful payload", func(t *testing.T) {
		server.Reset()
		c := newTestBuilder(&recordingSleep{}).WithFailurePredicate(rejectNonSuccess).Build()

		resp, err := c.Get(context.Background(), &Request{URL: server.URL(fixtures.PathSuccess)})
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Stats.Attempts)
		assert.Zero(t, server.ErrorCount())
	})

	t.Run("attempts below one mean a single try", func(t *testing.T) {
		server.Reset()
		c := newTestBuilder(&recordingSleep{}).WithRetries(0, 0).Build()

		_, err := c.Get(context.Background(), &Request{URL: server.URL(fixtures.PathError)})
		requireAdapterError(t, err, adapter.KindRequestFailed, testutil.UpstreamErrorMessage)
		assert.Equal(t, int64(1), server.ErrorCount())
	})

	t.Run("per request policy overrides the client", func(t *testing.T) {
		server.Reset()
		sleep := &recordingSleep{}
		c := newTestBuilder(sleep).WithRetries(1, 0).Build()

		_, err := c.Get(context.Background(), &Request{
			URL:   server.URL(fixtures.PathCustomError),
			Retry: &RetryPolicy{Attempts: 4, Delay: time.Millisecond, FailurePredicate: rejectNonSuccess},
		})
		requireAdapterError(t, err, adapter.KindInvalidResponse, testutil.CustomErrorMessage)
		assert.Equal(t, int64(4), server.ErrorCount())
		assert.Equal(t, []time.Duration{time.Millisecond, time.Millisecond, time.Millisecond}, sleep.delays)
	})
}

func TestClientTimeout(t *testing.T) {
	server := fixtures.NewUpstreamServer(t)
	server.SetSlowDelay(500 * time.Millisecond)
	c := newTestBuilder(&recordingSleep{}).
		WithTimeout(20*time.Millisecond).
		WithRetries(2, 0).
		Build()

	_, err := c.Get(context.Background(), &Request{URL: server.URL(fixtures.PathSlow)})
	requireAdapterError(t, err, adapter.KindRequestFailed, "timeout error: request timeout (timeout: 20ms)")
	assert.Equal(t, int64(2), server.Calls())

	server.Reset()
	resp, err := c.Get(context.Background(), &Request{
		URL:     server.URL(fixtures.PathSlow),
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err, "per request timeout overrides the client")
	assert.Equal(t, 1, resp.Stats.Attempts)
}

func TestClientCancellation(t *testing.T) {
	server := fixtures.NewUpstreamServer(t)

	t.Run("canceled while sleeping", func(t *testing.T) {
		server.Reset()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		c := NewBuilder(logger.Nop()).
			WithRetries(5, time.Hour).
			WithSleep(func(ctx context.Context, _ time.Duration) error {
				cancel()
				return ctx.Err()
			}).
			Build()

		_, err := c.Get(ctx, &Request{URL: server.URL(fixtures.PathError)})
		requireAdapterError(t, err, adapter.KindCanceled, "request canceled: context canceled")
		assert.Equal(t, int64(1), server.ErrorCount())
	})

	t.Run("default sleep honours the context", func(t *testing.T) {
		server.Reset()
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		c := NewBuilder(logger.Nop()).WithRetries(3, time.Hour).Build()

		start := time.Now()
		_, err := c.Get(ctx, &Request{URL: server.URL(fixtures.PathError)})
		requireAdapterError(t, err, adapter.KindCanceled, "")
		assert.Less(t, time.Since(start), 5*time.Second)
	})

	t.Run("rate limiter with a canceled context", func(t *testing.T) {
		server.Reset()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		c := newTestBuilder(&recordingSleep{}).WithRateLimit(1, 1).Build()

		_, err := c.Get(ctx, &Request{URL: server.URL(fixtures.PathSuccess)})
		requireAdapterError(t, err, adapter.KindCanceled, "")
		assert.Zero(t, server.Calls())
	})
}

func TestClientRequestValidation(t *testing.T) {
	c := newTestBuilder(&recordingSleep{}).Build()
	ctx := context.Background()

	t.Run("nil request", func(t *testing.T) {
		_, err := c.Get(ctx, nil)
		requireAdapterError(t, err, adapter.KindInvalidRequest, "validation error: request cannot be nil (field: request)")
	})

	t.Run("empty URL", func(t *testing.T) {
		_, err := c.Get(ctx, &Request{URL: ""})
		requireAdapterError(t, err, adapter.KindInvalidRequest, "validation error: URL cannot be empty (field: url)")
	})

	t.Run("unparseable URL", func(t *testing.T) {
		_, err := c.Get(ctx, &Request{URL: "http://[::1"})
		requireAdapterError(t, err, adapter.KindInvalidRequest, "")
	})

	t.Run("unencodable JSON body", func(t *testing.T) {
		_, err := c.Post(ctx, &Request{URL: "http://example.com", JSON: map[string]any{"bad": make(chan int)}})
		requireAdapterError(t, err, adapter.KindInvalidRequest, "")
	})
}

func TestClientRequestShape(t *testing.T) {
	server := fixtures.NewUpstreamServer(t)

	c := newTestBuilder(&recordingSleep{}).
		WithDefaultHeader(testAPIKeyHeader, "default-key").
		WithDefaultHeader("Accept", "application/json").
		Build()

	ctx := adaptertrace.WithTraceID(context.Background(), "trace-from-context")
	resp, err := c.Post(ctx, &Request{
		URL:     server.URL(fixtures.PathEcho) + "?fixed=1",
		Headers: map[string]string{testAPIKeyHeader: "request-key"},
		Query:   map[string]string{"fsym": "ETH", "tsyms": "USD"},
		JSON:    map[string]any{"base": "ETH"},
		Auth:    &BasicAuth{Username: "user", Password: "pass"},
	})
	require.NoError(t, err)

	echoed := resp.Data.(map[string]any)
	headers := echoed["headers"].(map[string]any)
	assert.Equal(t, nethttp.MethodPost, echoed["method"])
	assert.Equal(t, map[string]any{"fixed": "1", "fsym": "ETH", "tsyms": "USD"}, echoed["query"])
	assert.JSONEq(t, `{"base":"ETH"}`, echoed["body"].(string))
	assert.Equal(t, jsonContentType, headers["content-type"])
	assert.Equal(t, "request-key", headers["x-api-key"], "request headers override defaults")
	assert.Equal(t, "application/json", headers["accept"])
	assert.Equal(t, "trace-from-context", headers["x-request-id"])
	assert.Equal(t, "Basic dXNlcjpwYXNz", headers["authorization"])
}

func TestClientRawBodyWinsOverJSON(t *testing.T) {
	server := fixtures.NewUpstreamServer(t)
	c := newTestBuilder(&recordingSleep{}).Build()

	resp, err := c.Post(context.Background(), &Request{
		URL:     server.URL(fixtures.PathEcho),
		Headers: map[string]string{"Content-Type": "text/plain"},
		Body:    []byte("raw"),
		JSON:    map[string]any{"ignored": true},
	})
	require.NoError(t, err)

	echoed := resp.Data.(map[string]any)
	assert.Equal(t, "raw", echoed["body"])
	assert.Equal(t, "text/plain", echoed["headers"].(map[string]any)["content-type"])
}

func TestTraceIDPropagation(t *testing.T) {
	server := fixtures.NewUpstreamServer(t)

	t.Run("same id on every attempt", func(t *testing.T) {
		var seen []string
		c := newTestBuilder(&recordingSleep{}).
			WithRetries(3, 0).
			WithTraceIDGenerator(func() string { return "generated-id" }).
			WithRequestInterceptor(func(_ context.Context, req *nethttp.Request) error {
				seen = append(seen, req.Header.Get(HeaderXRequestID))
				return nil
			}).
			Build()

		_, err := c.Get(context.Background(), &Request{URL: server.URL(fixtures.PathError)})
		require.Error(t, err)
		assert.Equal(t, []string{"generated-id", "generated-id", "generated-id"}, seen)
	})

	t.Run("extractor wins over context", func(t *testing.T) {
		c := newTestBuilder(&recordingSleep{}).
			WithTraceIDHeader("X-Correlation-ID").
			WithTraceIDExtractor(func(context.Context) (string, bool) { return "extracted", true }).
			Build()

		ctx := adaptertrace.WithTraceID(context.Background(), "from-context")
		resp, err := c.Get(ctx, &Request{URL: server.URL(fixtures.PathEcho)})
		require.NoError(t, err)

		headers := resp.Data.(map[string]any)["headers"].(map[string]any)
		assert.Equal(t, "extracted", headers["x-correlation-id"])
		assert.NotContains(t, headers, "x-request-id")
	})

	t.Run("explicit header is kept", func(t *testing.T) {
		c := newTestBuilder(&recordingSleep{}).Build()

		resp, err := c.Get(context.Background(), &Request{
			URL:     server.URL(fixtures.PathEcho),
			Headers: map[string]string{HeaderXRequestID: "caller-id"},
		})
		require.NoError(t, err)
		assert.Equal(t, "caller-id", resp.Data.(map[string]any)["headers"].(map[string]any)["x-request-id"])
	})
}

func TestClientInterceptors(t *testing.T) {
	server := fixtures.NewUpstreamServer(t)

	t.Run("request and response interceptors run per attempt", func(t *testing.T) {
		server.Reset()
		var requests, responses atomic.Int32
		c := newTestBuilder(&recordingSleep{}).
			WithRetries(3, 0).
			WithRequestInterceptor(func(_ context.Context, req *nethttp.Request) error {
				requests.Add(1)
				req.Header.Set("X-Signed", "yes")
				return nil
			}).
			WithResponseInterceptor(func(_ context.Context, _ *nethttp.Request, resp *nethttp.Response) error {
				responses.Add(1)
				return nil
			}).
			Build()

		_, err := c.Get(context.Background(), &Request{URL: server.URL(fixtures.PathErrorsTwice)})
		require.NoError(t, err)
		assert.Equal(t, int32(3), requests.Load())
		assert.Equal(t, int32(3), responses.Load())
	})

	t.Run("request interceptor error is not retried", func(t *testing.T) {
		server.Reset()
		sleep := &recordingSleep{}
		c := newTestBuilder(sleep).
			WithRetries(3, 0).
			WithRequestInterceptor(func(context.Context, *nethttp.Request) error {
				return errors.New("signing failed")
			}).
			Build()

		_, err := c.Get(context.Background(), &Request{URL: server.URL(fixtures.PathSuccess)})
		requireAdapterError(t, err, adapter.KindInvalidRequest,
			"interceptor error: request interceptor failed (stage: request): signing failed")
		assert.Zero(t, server.Calls())
		assert.Empty(t, sleep.delays)
	})

	t.Run("response interceptor error is not retried", func(t *testing.T) {
		server.Reset()
		c := newTestBuilder(&recordingSleep{}).
			WithRetries(3, 0).
			WithResponseInterceptor(func(context.Context, *nethttp.Request, *nethttp.Response) error {
				return errors.New("unexpected signature")
			}).
			Build()

		_, err := c.Get(context.Background(), &Request{URL: server.URL(fixtures.PathSuccess)})
		requireAdapterError(t, err, adapter.KindInvalidRequest, "")
		assert.Equal(t, int64(1), server.Calls())
	})
}

func TestClientSpans(t *testing.T) {
	server := fixtures.NewUpstreamServer(t)

	newTracedClient := func(recorder *tracetest.SpanRecorder) Client {
		tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
		return newTestBuilder(&recordingSleep{}).
			WithRetries(3, 0).
			WithTracerProvider(tp).
			Build()
	}

	t.Run("one span with an event per attempt", func(t *testing.T) {
		server.Reset()
		recorder := tracetest.NewSpanRecorder()

		_, err := newTracedClient(recorder).Get(context.Background(), &Request{
			URL:   server.URL(fixtures.PathErrorsTwice),
			Query: map[string]string{"api_key": "secret"},
		})
		require.NoError(t, err)

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		span := spans[0]
		assert.Equal(t, SpanName, span.Name())
		assert.Len(t, span.Events(), 3)
		assert.NotEqual(t, codes.Error, span.Status().Code)

		for _, attr := range span.Attributes() {
			if attr.Key == "url.full" {
				assert.NotContains(t, attr.Value.AsString(), "secret")
			}
		}
	})

	t.Run("exhaustion marks the span as failed", func(t *testing.T) {
		server.Reset()
		recorder := tracetest.NewSpanRecorder()

		_, err := newTracedClient(recorder).Get(context.Background(), &Request{URL: server.URL(fixtures.PathError)})
		require.Error(t, err)

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status().Code)
		assert.Equal(t, adapter.KindRequestFailed.String(), spans[0].Status().Description)
		assert.Len(t, spans[0].Events(), 4, "three attempts plus the recorded error")
	})
}

func TestClientRecordsUpstreamAttempts(t *testing.T) {
	server := fixtures.NewUpstreamServer(t)
	c := newTestBuilder(&recordingSleep{}).WithRetries(3, 0).Build()

	ctx := logger.WithUpstreamCounter(context.Background())
	_, err := c.Get(ctx, &Request{URL: server.URL(fixtures.PathErrorsTwice)})
	require.NoError(t, err)

	assert.Equal(t, int64(3), logger.UpstreamAttempts(ctx))
	assert.Greater(t, logger.UpstreamElapsed(ctx), time.Duration(0))
}

func TestClientLogsRetries(t *testing.T) {
	server := fixtures.NewUpstreamServer(t)
	fakeLog := &fakeLogger{}
	c := NewBuilder(fakeLog).
		WithSleep((&recordingSleep{}).sleep).
		WithRetries(3, 0).
		Build()

	_, err := c.Get(context.Background(), &Request{URL: server.URL(fixtures.PathErrorsTwice)})
	require.NoError(t, err)

	warnings := fakeLog.eventsByLevel("warn")
	require.Len(t, warnings, 2)
	assert.Equal(t, 2, warnings[0].fields["attempt"])
	assert.Equal(t, 3, warnings[1].fields["attempt"])
	assert.Len(t, fakeLog.eventsByLevel("info"), 6, "one request and one response line per attempt")
}

func TestResponseUpstream(t *testing.T) {
	resp := &Response{
		StatusCode: nethttp.StatusOK,
		Data:       map[string]any{"price": 1850.5},
	}

	var upstream adapter.Upstream = resp
	assert.Equal(t, nethttp.StatusOK, upstream.Status())

	withResult := resp.WithResult(1850.5)
	assert.Equal(t, map[string]any{"price": 1850.5, "result": 1850.5}, withResult.Data)
	assert.Equal(t, map[string]any{"price": 1850.5}, resp.Data, "original is not modified")

	envelope := adapter.Success("42", withResult)
	assert.Equal(t, "42", envelope.JobRunID)
	assert.Equal(t, 1850.5, envelope.Result)
	assert.Equal(t, nethttp.StatusOK, envelope.StatusCode)

	scalar := (&Response{Data: "plain"}).WithResult(7)
	assert.Equal(t, map[string]any{"result": 7}, scalar.Data)
}

func TestNilResponse(t *testing.T) {
	var resp *Response

	assert.Equal(t, 0, resp.Status())
	assert.Nil(t, resp.Payload())
	assert.Equal(t, map[string]any{"result": 3}, resp.WithResult(3).Data)

	_, err := payload.ExtractNumber(resp, payload.P("result"))
	require.Error(t, err)
	assert.True(t, adapter.IsKind(err, adapter.KindResultNotFound))

	cb := mocks.NewMockCallback()
	cb.On("Call", nethttp.StatusOK, mock.AnythingOfType("adapter.SuccessEnvelope")).Return().Once()

	adapter.Respond("8", resp, nil, cb.Func())

	cb.AssertExpectations(t)
	last, ok := cb.Last()
	require.True(t, ok)
	env := last.Envelope.(adapter.SuccessEnvelope)
	assert.Equal(t, "8", env.JobRunID)
	assert.Equal(t, map[string]any{"result": nil}, env.Data)
}
