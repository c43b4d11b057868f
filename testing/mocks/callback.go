package mocks

import (
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/gaborage/adapter-bricks/adapter"
)

// MockCallback records the status code and envelope an adapter reports.
//
// Example usage:
//
//	cb := mocks.NewMockCallback()
//	cb.On("Call", 500, mock.AnythingOfType("adapter.ErrorEnvelope")).Return()
//	adapter.ErrorCallback("1", err, cb.Func())
//	cb.AssertExpectations(t)
type MockCallback struct {
	mock.Mock

	mu    sync.Mutex
	calls []CallbackInvocation
}

// CallbackInvocation is one recorded call.
type CallbackInvocation struct {
	StatusCode int
	Envelope   any
}

// NewMockCallback creates a callback that accepts any call unless stricter
// expectations are registered.
func NewMockCallback() *MockCallback {
	return &MockCallback{}
}

// Call records the invocation and checks it against the registered expectations.
// Without expectations every call is accepted.
func (m *MockCallback) Call(statusCode int, envelope any) {
	m.mu.Lock()
	m.calls = append(m.calls, CallbackInvocation{StatusCode: statusCode, Envelope: envelope})
	m.mu.Unlock()

	if len(m.ExpectedCalls) > 0 {
		m.Called(statusCode, envelope)
	}
}

// Func adapts the mock to adapter.Callback.
func (m *MockCallback) Func() adapter.Callback {
	return m.Call
}

// Invocations returns a copy of the recorded calls.
func (m *MockCallback) Invocations() []CallbackInvocation {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CallbackInvocation, len(m.calls))
	copy(out, m.calls)
	return out
}

// Last returns the most recent call, or false when none was made.
func (m *MockCallback) Last() (CallbackInvocation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return CallbackInvocation{}, false
	}
	return m.calls[len(m.calls)-1], true
}
