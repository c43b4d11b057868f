package mocks

import (
	"io"
	"net/http"
	"strings"

	"github.com/stretchr/testify/mock"
)

// MockRoundTripper provides a testify-based mock implementation of http.RoundTripper.
// Plug it into httpclient.Builder.WithTransport to script upstream answers
// without a listener.
//
// Example usage:
//
//	rt := &mocks.MockRoundTripper{}
//	rt.OnRoundTrip(mock.Anything).ReturnStatus(http.StatusOK, `{"price": 1850.5}`)
//	client := httpclient.NewBuilder(log).WithTransport(rt).Build()
type MockRoundTripper struct {
	mock.Mock
}

var _ http.RoundTripper = (*MockRoundTripper)(nil)

// RoundTrip implements http.RoundTripper
func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	arguments := m.Called(req)

	var resp *http.Response
	switch r := arguments.Get(0).(type) {
	case cannedResponse:
		resp = NewResponse(r.status, r.body)
	case *http.Response:
		resp = r
	}
	if resp != nil {
		resp.Request = req
	}
	return resp, arguments.Error(1)
}

// cannedResponse is rebuilt on every call so repeated attempts each read a full body.
type cannedResponse struct {
	status int
	body   string
}

// RoundTripCall wraps a RoundTrip expectation with response helpers.
type RoundTripCall struct {
	*mock.Call
}

// OnRoundTrip registers an expectation for requests matching matcher
// (mock.Anything, or a mock.MatchedBy over *http.Request).
func (m *MockRoundTripper) OnRoundTrip(matcher any) *RoundTripCall {
	return &RoundTripCall{Call: m.On("RoundTrip", matcher)}
}

// ReturnStatus answers with status and body. Each invocation gets a fresh
// body reader, so the expectation can serve repeated attempts.
func (c *RoundTripCall) ReturnStatus(status int, body string) *RoundTripCall {
	c.Call.Return(cannedResponse{status: status, body: body}, nil)
	return c
}

// ReturnError fails the round trip with err.
func (c *RoundTripCall) ReturnError(err error) *RoundTripCall {
	c.Call.Return(nil, err)
	return c
}

// NewResponse builds a JSON response with the given status and body.
func NewResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode:    status,
		Status:        http.StatusText(status),
		Header:        http.Header{"Content-Type": []string{"application/json"}},
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: int64(len(body)),
	}
}
