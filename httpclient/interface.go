package httpclient

import (
	"context"
	"encoding/json"
	"maps"
	nethttp "net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	adaptertrace "github.com/gaborage/adapter-bricks/trace"
)

const (
	// HeaderXRequestID is the default header carrying the trace id upstream
	HeaderXRequestID = adaptertrace.HeaderXRequestID

	resultKey = "result"
)

// Client defines the retrying upstream client
type Client interface {
	Get(ctx context.Context, req *Request) (*Response, error)
	Post(ctx context.Context, req *Request) (*Response, error)
	Put(ctx context.Context, req *Request) (*Response, error)
	Patch(ctx context.Context, req *Request) (*Response, error)
	Delete(ctx context.Context, req *Request) (*Response, error)
	Do(ctx context.Context, method string, req *Request) (*Response, error)
}

// Request describes one upstream call. It is never mutated; every attempt
// builds a fresh *http.Request from it.
type Request struct {
	URL     string
	Headers map[string]string
	// Query is merged into the query string of URL.
	Query map[string]string
	Body  []byte
	// JSON is marshaled as the body when Body is nil.
	JSON any
	Auth *BasicAuth
	// Timeout bounds each attempt. Zero uses the client timeout.
	Timeout time.Duration
	// Retry overrides the client policy for this call.
	Retry *RetryPolicy
}

// Response is a successful upstream response with its decoded payload.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    nethttp.Header
	// Data is the JSON-decoded body, the raw body as a string when it is not
	// JSON, or nil when it is empty.
	Data  any
	Stats Stats
}

// Stats contains request execution statistics
type Stats struct {
	ElapsedTime time.Duration
	CallCount   int64
	Attempts    int
}

// Status implements adapter.Upstream. A nil response reports no status.
func (r *Response) Status() int {
	if r == nil {
		return 0
	}
	return r.StatusCode
}

// Payload implements adapter.Upstream. A nil response has no payload.
func (r *Response) Payload() any {
	if r == nil {
		return nil
	}
	return r.Data
}

// Decode unmarshals the raw body into target.
func (r *Response) Decode(target any) error {
	return json.Unmarshal(r.Body, target)
}

// WithResult returns a copy whose payload object carries result. A payload
// that is not an object is replaced by {"result": v}.
func (r *Response) WithResult(v any) *Response {
	if r == nil {
		r = &Response{}
	}
	out := *r
	data := map[string]any{}
	if obj, ok := r.Data.(map[string]any); ok {
		data = maps.Clone(obj)
	}
	data[resultKey] = v
	out.Data = data
	return &out
}

// BasicAuth contains basic authentication credentials
type BasicAuth struct {
	Username string
	Password string
}

// RequestInterceptor is called before sending the request
type RequestInterceptor func(ctx context.Context, req *nethttp.Request) error

// ResponseInterceptor is called after receiving the response
type ResponseInterceptor func(ctx context.Context, req *nethttp.Request, resp *nethttp.Response) error

// Config holds the client configuration assembled by the Builder
type Config struct {
	Timeout              time.Duration
	Retry                RetryPolicy
	Sleep                SleepFunc
	Limiter              *rate.Limiter
	RequestInterceptors  []RequestInterceptor
	ResponseInterceptors []ResponseInterceptor
	BasicAuth            *BasicAuth
	DefaultHeaders       map[string]string
	// LogPayloads enables debug-level logging of headers and body payloads
	LogPayloads bool
	// MaxPayloadLogBytes caps the number of body bytes logged when LogPayloads is enabled
	MaxPayloadLogBytes int
	// TraceIDHeader configures the header name used for trace ID propagation (default: X-Request-ID)
	TraceIDHeader string
	// NewTraceID generates a new trace ID when none is present (default: uuid)
	NewTraceID func() string
	// TraceIDExtractor allows advanced extraction of a trace ID from context; return ok=false to fallback to generator
	TraceIDExtractor func(_ context.Context) (traceID string, ok bool)
	// TracerProvider creates the request spans (default: the global provider)
	TracerProvider trace.TracerProvider
}
