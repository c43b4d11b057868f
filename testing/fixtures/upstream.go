package fixtures

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

// Upstream paths served by UpstreamServer.
const (
	PathSuccess          = "/"
	PathError            = "/error"
	PathErrorsTwice      = "/errorsTwice"
	PathCustomError      = "/customError"
	PathApplicationError = "/applicationError"
	PathSlow             = "/slow"
	PathEcho             = "/echo"

	// ErrorBody is the plain-text body of every failing status.
	ErrorBody = "There was an error"
	// DefaultSlowDelay is how long PathSlow waits before answering.
	DefaultSlowDelay = 200 * time.Millisecond
)

// UpstreamServer is a fake upstream API. Every failing response increments
// an error counter so tests can assert how many attempts were made.
//
// Routes (any method):
//   - /                 200 {"result":"success","value":1}
//   - /error            500 "There was an error", always
//   - /errorsTwice      500 for the first two calls after Reset, then success
//   - /customError      200 {"result":"error","value":1}, counted as an error
//   - /applicationError 200 {"error":"API limit reached","value":1}, counted as an error
//   - /slow             success after SlowDelay, or nothing if the caller gives up first
//   - /echo             200 with the method, query, headers and body it received
type UpstreamServer struct {
	*httptest.Server

	errorCount atomic.Int64
	calls      atomic.Int64
	slowDelay  atomic.Int64
}

// NewUpstreamServer starts the server and closes it when the test ends.
func NewUpstreamServer(tb testing.TB) *UpstreamServer {
	tb.Helper()

	s := &UpstreamServer{}
	s.slowDelay.Store(int64(DefaultSlowDelay))

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Pre(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s.calls.Add(1)
			return next(c)
		}
	})

	e.Any(PathSuccess, s.success)
	e.Any(PathError, s.fail)
	e.Any(PathErrorsTwice, s.errorsTwice)
	e.Any(PathCustomError, s.customError)
	e.Any(PathApplicationError, s.applicationError)
	e.Any(PathSlow, s.slow)
	e.Any(PathEcho, echoRequest)

	s.Server = httptest.NewServer(e)
	tb.Cleanup(s.Close)
	return s
}

// URL returns the absolute URL of path.
func (s *UpstreamServer) URL(path string) string {
	return s.Server.URL + path
}

// ErrorCount returns the number of failing responses served since the last Reset.
func (s *UpstreamServer) ErrorCount() int64 {
	return s.errorCount.Load()
}

// Calls returns the number of requests received since the last Reset.
func (s *UpstreamServer) Calls() int64 {
	return s.calls.Load()
}

// Reset zeroes the counters.
func (s *UpstreamServer) Reset() {
	s.errorCount.Store(0)
	s.calls.Store(0)
}

// SetSlowDelay changes how long PathSlow waits.
func (s *UpstreamServer) SetSlowDelay(d time.Duration) {
	s.slowDelay.Store(int64(d))
}

func (s *UpstreamServer) success(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"result": "success", "value": 1})
}

func (s *UpstreamServer) fail(c echo.Context) error {
	s.errorCount.Add(1)
	return c.String(http.StatusInternalServerError, ErrorBody)
}

func (s *UpstreamServer) errorsTwice(c echo.Context) error {
	if s.errorCount.Load() < 2 {
		return s.fail(c)
	}
	return s.success(c)
}

func (s *UpstreamServer) customError(c echo.Context) error {
	s.errorCount.Add(1)
	return c.JSON(http.StatusOK, map[string]any{"result": "error", "value": 1})
}

func (s *UpstreamServer) applicationError(c echo.Context) error {
	s.errorCount.Add(1)
	return c.JSON(http.StatusOK, map[string]any{"error": "API limit reached", "value": 1})
}

func (s *UpstreamServer) slow(c echo.Context) error {
	timer := time.NewTimer(time.Duration(s.slowDelay.Load()))
	defer timer.Stop()
	select {
	case <-c.Request().Context().Done():
		return nil
	case <-timer.C:
		return s.success(c)
	}
}

func echoRequest(c echo.Context) error {
	req := c.Request()

	query := map[string]string{}
	for key := range req.URL.Query() {
		query[key] = req.URL.Query().Get(key)
	}
	headers := map[string]string{}
	for key, values := range req.Header {
		headers[strings.ToLower(key)] = strings.Join(values, ",")
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"method":  req.Method,
		"query":   query,
		"headers": headers,
		"body":    string(body),
	})
}
