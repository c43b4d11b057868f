package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	nethttp "net/http"
	"net/url"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/gaborage/adapter-bricks/adapter"
	"github.com/gaborage/adapter-bricks/config"
	"github.com/gaborage/adapter-bricks/logger"
	adaptertrace "github.com/gaborage/adapter-bricks/trace"
)

const (
	// DefaultTimeout bounds each attempt
	DefaultTimeout = 3 * time.Second

	// DefaultMaxPayloadLogBytes caps logged body previews
	DefaultMaxPayloadLogBytes = 1024

	// SpanName names the span wrapping one call, retries included
	SpanName = "adapter.request"

	tracerName      = "github.com/gaborage/adapter-bricks/httpclient"
	contentType     = "Content-Type"
	jsonContentType = "application/json"
)

// client implements the Client interface
type client struct {
	httpClient           *nethttp.Client
	logger               logger.Logger
	config               *Config
	tracer               trace.Tracer
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
	callCount            atomic.Int64
}

// NewClient creates a client with the default configuration: 3s per attempt,
// 3 attempts, 1s apart.
func NewClient(log logger.Logger) Client {
	return NewBuilder(log).Build()
}

// Builder provides a fluent interface for configuring the client
type Builder struct {
	config     *Config
	logger     logger.Logger
	httpClient *nethttp.Client
	transport  nethttp.RoundTripper
}

// NewBuilder creates a new client builder
func NewBuilder(log logger.Logger) *Builder {
	if log == nil {
		log = logger.Nop()
	}
	return &Builder{
		config: &Config{
			Timeout:              DefaultTimeout,
			Retry:                DefaultRetryPolicy(),
			Sleep:                timerSleep,
			RequestInterceptors:  []RequestInterceptor{},
			ResponseInterceptors: []ResponseInterceptor{},
			DefaultHeaders:       make(map[string]string),
			LogPayloads:          false,
			MaxPayloadLogBytes:   DefaultMaxPayloadLogBytes,
			TraceIDHeader:        HeaderXRequestID,
			NewTraceID:           adaptertrace.NewID,
		},
		logger: log,
	}
}

// FromConfig applies the request section of the loaded configuration.
func (b *Builder) FromConfig(cfg config.RequestConfig) *Builder {
	if cfg.Timeout > 0 {
		b.WithTimeout(cfg.Timeout)
	}
	b.WithRetries(cfg.Retries, cfg.Delay)
	if cfg.RateLimit > 0 {
		b.WithRateLimit(cfg.RateLimit, cfg.Burst)
	}
	return b.WithPayloadLogging(cfg.LogPayloads, 0)
}

// WithTimeout sets the per-attempt timeout
func (b *Builder) WithTimeout(timeout time.Duration) *Builder {
	b.config.Timeout = timeout
	return b
}

// WithRetries sets the total number of attempts and the constant delay between them
func (b *Builder) WithRetries(attempts int, delay time.Duration) *Builder {
	b.config.Retry.Attempts = attempts
	b.config.Retry.Delay = delay
	return b
}

// WithFailurePredicate marks payloads that must be retried as failures
func (b *Builder) WithFailurePredicate(predicate FailurePredicate) *Builder {
	b.config.Retry.FailurePredicate = predicate
	return b
}

// WithSleep replaces the delay between attempts
func (b *Builder) WithSleep(sleep SleepFunc) *Builder {
	if sleep != nil {
		b.config.Sleep = sleep
	}
	return b
}

// WithRateLimit throttles attempts to rps per second with the given burst
func (b *Builder) WithRateLimit(rps float64, burst int) *Builder {
	if rps <= 0 {
		b.config.Limiter = nil
		return b
	}
	if burst < 1 {
		burst = 1
	}
	b.config.Limiter = rate.NewLimiter(rate.Limit(rps), burst)
	return b
}

// WithBasicAuth sets basic authentication credentials
func (b *Builder) WithBasicAuth(username, password string) *Builder {
	b.config.BasicAuth = &BasicAuth{
		Username: username,
		Password: password,
	}
	return b
}

// WithDefaultHeader adds a default header that will be sent with all requests
func (b *Builder) WithDefaultHeader(key, value string) *Builder {
	b.config.DefaultHeaders[key] = value
	return b
}

// WithRequestInterceptor adds a request interceptor
func (b *Builder) WithRequestInterceptor(interceptor RequestInterceptor) *Builder {
	b.config.RequestInterceptors = append(b.config.RequestInterceptors, interceptor)
	return b
}

// WithResponseInterceptor adds a response interceptor
func (b *Builder) WithResponseInterceptor(interceptor ResponseInterceptor) *Builder {
	b.config.ResponseInterceptors = append(b.config.ResponseInterceptors, interceptor)
	return b
}

// WithHTTPClient sends requests through httpClient. Its own Timeout still
// applies on top of the per-attempt timeout.
func (b *Builder) WithHTTPClient(httpClient *nethttp.Client) *Builder {
	b.httpClient = httpClient
	return b
}

// WithTransport sets the round tripper of the underlying http.Client
func (b *Builder) WithTransport(transport nethttp.RoundTripper) *Builder {
	b.transport = transport
	return b
}

// WithTraceIDHeader sets the header carrying the trace id. Empty keeps X-Request-ID.
func (b *Builder) WithTraceIDHeader(header string) *Builder {
	if header != "" {
		b.config.TraceIDHeader = header
	}
	return b
}

// WithTraceIDGenerator replaces the generator used when the context has no trace id
func (b *Builder) WithTraceIDGenerator(gen func() string) *Builder {
	if gen != nil {
		b.config.NewTraceID = gen
	}
	return b
}

// WithTraceIDExtractor sets a custom trace id lookup, consulted before the context
func (b *Builder) WithTraceIDExtractor(extractor func(ctx context.Context) (string, bool)) *Builder {
	b.config.TraceIDExtractor = extractor
	return b
}

// WithPayloadLogging enables debug previews of request and response bodies.
// maxBytes <= 0 keeps the 1024 byte default.
func (b *Builder) WithPayloadLogging(enabled bool, maxBytes int) *Builder {
	b.config.LogPayloads = enabled
	if maxBytes > 0 {
		b.config.MaxPayloadLogBytes = maxBytes
	}
	return b
}

// WithTracerProvider sets the provider of the request spans
func (b *Builder) WithTracerProvider(tp trace.TracerProvider) *Builder {
	b.config.TracerProvider = tp
	return b
}

// Build creates the client with the configured options
func (b *Builder) Build() Client {
	httpClient := b.httpClient
	if httpClient == nil {
		httpClient = &nethttp.Client{}
	}
	if b.transport != nil {
		clone := *httpClient
		clone.Transport = b.transport
		httpClient = &clone
	}

	tp := b.config.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	return &client{
		httpClient:           httpClient,
		logger:               b.logger,
		config:               b.config,
		tracer:               tp.Tracer(tracerName),
		requestInterceptors:  b.config.RequestInterceptors,
		responseInterceptors: b.config.ResponseInterceptors,
	}
}

// Get performs a GET request
func (c *client) Get(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodGet, req)
}

// Post performs a POST request
func (c *client) Post(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodPost, req)
}

// Put performs a PUT request
func (c *client) Put(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodPut, req)
}

// Patch performs a PATCH request
func (c *client) Patch(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodPatch, req)
}

// Delete performs a DELETE request
func (c *client) Delete(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodDelete, req)
}

// Do sends the request until it succeeds or the attempt budget is spent.
// Attempts are strictly sequential with a constant delay between them.
// Every error returned is an *adapter.Error.
func (c *client) Do(ctx context.Context, method string, req *Request) (*Response, error) {
	if err := c.validateRequest(req); err != nil {
		return nil, toAdapterError(err)
	}

	body, err := requestBody(req)
	if err != nil {
		return nil, toAdapterError(err)
	}
	target, err := requestURL(req)
	if err != nil {
		return nil, toAdapterError(err)
	}

	policy := c.config.Retry
	if req.Retry != nil {
		policy = *req.Retry
	}
	policy = policy.normalized()

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.config.Timeout
	}

	traceID := c.resolveTraceID(ctx)
	log := c.logger.WithContext(ctx)

	ctx, span := c.tracer.Start(ctx, SpanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.full", redactURL(target)),
			attribute.Int("adapter.retry.max_attempts", policy.Attempts),
		),
	)
	defer span.End()

	start := time.Now()
	callCount := c.callCount.Add(1)

	var lastErr error
	for attempt := 1; attempt <= policy.Attempts; attempt++ {
		if attempt > 1 {
			log.Warn().
				Str("request_id", traceID).
				Int("attempt", attempt).
				Dur("delay", policy.Delay).
				Err(lastErr).
				Msg("REST client retry")
			if err := c.config.Sleep(ctx, policy.Delay); err != nil {
				return nil, c.fail(span, adapter.Newf(adapter.KindCanceled, "request canceled: %v", err))
			}
		}

		if c.config.Limiter != nil {
			if err := c.config.Limiter.Wait(ctx); err != nil {
				kind := adapter.KindRequestFailed
				if ctx.Err() != nil {
					kind = adapter.KindCanceled
				}
				return nil, c.fail(span, adapter.Newf(kind, "rate limit wait failed: %v", err))
			}
		}

		attemptStart := time.Now()
		resp, err := c.attempt(ctx, log, method, target, body, req, timeout, traceID, attempt, policy.FailurePredicate)
		logger.RecordUpstreamAttempt(ctx, time.Since(attemptStart))
		recordAttempt(span, attempt, resp, err)

		if err == nil {
			resp.Stats = Stats{
				ElapsedTime: time.Since(start),
				CallCount:   callCount,
				Attempts:    attempt,
			}
			span.SetAttributes(
				attribute.Int("http.response.status_code", resp.StatusCode),
				attribute.Int("adapter.retry.attempts", attempt),
			)
			return resp, nil
		}

		lastErr = err
		if !isRetryable(err) {
			break
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, c.fail(span, adapter.Newf(adapter.KindCanceled, "request canceled: %v", ctxErr))
		}
	}

	return nil, c.fail(span, toAdapterError(lastErr))
}

// attempt performs one send and classifies the outcome.
func (c *client) attempt(
	ctx context.Context,
	log logger.Logger,
	method, target string,
	body []byte,
	req *Request,
	timeout time.Duration,
	traceID string,
	attempt int,
	predicate FailurePredicate,
) (*Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := c.buildRequest(attemptCtx, method, target, body, req, traceID)
	if err != nil {
		return nil, err
	}

	c.logRequest(log, httpReq, body, traceID, attempt)

	sent := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if isTimeout(err) && ctx.Err() == nil {
			return nil, NewTimeoutError("request timeout", timeout)
		}
		return nil, NewNetworkError("request execution failed", err)
	}

	resp, err := c.buildResponse(attemptCtx, httpReq, httpResp)
	if err != nil {
		if isTimeout(err) && ctx.Err() == nil {
			return nil, NewTimeoutError("response timeout", timeout)
		}
		return nil, err
	}
	resp.Stats.ElapsedTime = time.Since(sent)
	c.logResponse(log, resp, traceID, attempt)

	if !IsSuccessStatus(resp.StatusCode) {
		return nil, NewHTTPError(resp.StatusCode, resp.Body)
	}
	if isApplicationFailure(resp.Data, predicate) {
		return nil, NewApplicationError(resp.StatusCode, resp.Body)
	}
	return resp, nil
}

// validateRequest validates the request before sending
func (c *client) validateRequest(req *Request) error {
	if req == nil {
		return NewValidationError("request cannot be nil", "request")
	}
	if req.URL == "" {
		return NewValidationError("URL cannot be empty", "url")
	}
	return nil
}

// requestBody returns Body, or JSON marshaled when Body is nil.
func requestBody(req *Request) ([]byte, error) {
	if req.Body != nil || req.JSON == nil {
		return req.Body, nil
	}
	body, err := json.Marshal(req.JSON)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("JSON body cannot be encoded: %v", err), "json")
	}
	return body, nil
}

// requestURL merges Query into the query string of URL.
func requestURL(req *Request) (string, error) {
	u, err := url.Parse(req.URL)
	if err != nil {
		return "", NewValidationError(fmt.Sprintf("invalid URL: %v", err), "url")
	}
	if len(req.Query) == 0 {
		return u.String(), nil
	}
	q := u.Query()
	for key, value := range req.Query {
		q.Set(key, value)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// resolveTraceID picks the trace id once per call: extractor, context, then generator.
func (c *client) resolveTraceID(ctx context.Context) string {
	if c.config.TraceIDExtractor != nil {
		if id, ok := c.config.TraceIDExtractor(ctx); ok && id != "" {
			return id
		}
	}
	if id, ok := adaptertrace.IDFromContext(ctx); ok && id != "" {
		return id
	}
	if c.config.NewTraceID != nil {
		return c.config.NewTraceID()
	}
	return adaptertrace.NewID()
}

// applyHeaders applies headers to the HTTP request
func (c *client) applyHeaders(httpReq *nethttp.Request, req *Request, body []byte, traceID string) {
	// Apply default headers first
	for key, value := range c.config.DefaultHeaders {
		httpReq.Header.Set(key, value)
	}

	// Apply request-specific headers (these override defaults)
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if httpReq.Header.Get(contentType) == "" && body != nil {
		httpReq.Header.Set(contentType, jsonContentType)
	}

	if header := c.config.TraceIDHeader; header != "" && httpReq.Header.Get(header) == "" {
		httpReq.Header.Set(header, traceID)
	}
}

// applyAuth applies authentication to the HTTP request
func (c *client) applyAuth(httpReq *nethttp.Request, req *Request) {
	// Request-specific auth takes precedence
	auth := req.Auth
	if auth == nil {
		auth = c.config.BasicAuth
	}

	if auth != nil {
		httpReq.SetBasicAuth(auth.Username, auth.Password)
	}
}

// buildRequest constructs an *http.Request, applies headers/auth, and runs request interceptors.
func (c *client) buildRequest(ctx context.Context, method, target string, body []byte, req *Request, traceID string) (*nethttp.Request, error) {
	var reader io.Reader = nethttp.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := nethttp.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("failed to create HTTP request: %v", err), "method")
	}

	c.applyHeaders(httpReq, req, body, traceID)
	c.applyAuth(httpReq, req)

	if err := c.runRequestInterceptors(ctx, httpReq); err != nil {
		return nil, NewInterceptorError("request interceptor failed", "request", err)
	}
	return httpReq, nil
}

// buildResponse runs response interceptors, reads body, and builds a Response.
func (c *client) buildResponse(ctx context.Context, httpReq *nethttp.Request, httpResp *nethttp.Response) (*Response, error) {
	defer httpResp.Body.Close()

	if err := c.runResponseInterceptors(ctx, httpReq, httpResp); err != nil {
		return nil, NewInterceptorError("response interceptor failed", "response", err)
	}

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, NewNetworkError("failed to read response body", err)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       respBody,
		Headers:    httpResp.Header,
		Data:       decodeBody(respBody),
	}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// runRequestInterceptors executes all request interceptors
func (c *client) runRequestInterceptors(ctx context.Context, req *nethttp.Request) error {
	for _, interceptor := range c.requestInterceptors {
		if err := interceptor(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

// runResponseInterceptors executes all response interceptors
func (c *client) runResponseInterceptors(ctx context.Context, req *nethttp.Request, resp *nethttp.Response) error {
	for _, interceptor := range c.responseInterceptors {
		if err := interceptor(ctx, req, resp); err != nil {
			return err
		}
	}
	return nil
}

// fail marks the span as failed and returns err.
func (c *client) fail(span trace.Span, err *adapter.Error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Kind.String())
	return err
}

// recordAttempt adds one span event per attempt.
func recordAttempt(span trace.Span, attempt int, resp *Response, err error) {
	attrs := []attribute.KeyValue{attribute.Int("adapter.attempt", attempt)}
	switch {
	case err == nil:
		attrs = append(attrs,
			attribute.String("adapter.outcome", "success"),
			attribute.Int("http.response.status_code", resp.StatusCode))
	default:
		outcome := "transport_failure"
		if IsErrorType(err, ApplicationError) {
			outcome = "application_failure"
		}
		attrs = append(attrs,
			attribute.String("adapter.outcome", outcome),
			attribute.String("error.message", err.Error()))
		var statusErr interface{ StatusCode() int }
		if errors.As(err, &statusErr) {
			attrs = append(attrs, attribute.Int("http.response.status_code", statusErr.StatusCode()))
		}
	}
	span.AddEvent("attempt", trace.WithAttributes(attrs...))
}

// redactURL drops credentials and the query string, which commonly carries API keys.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
