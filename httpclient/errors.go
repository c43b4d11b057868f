package httpclient

import (
	"errors"
	"fmt"
	"time"

	"github.com/gaborage/adapter-bricks/adapter"
)

// ClientError is the failure of a single attempt. Do never returns one
// directly; exhaustion is reported as an *adapter.Error.
type ClientError interface {
	error
	Type() ErrorType
}

// ErrorType defines the category of client error
type ErrorType string

const (
	NetworkError     ErrorType = "network"
	TimeoutError     ErrorType = "timeout"
	HTTPError        ErrorType = "http"
	ApplicationError ErrorType = "application"
	ValidationError  ErrorType = "validation"
	InterceptorError ErrorType = "interceptor"
)

// networkError represents network-related errors
type networkError struct {
	message string
	wrapped error
}

func (e *networkError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("network error: %s: %v", e.message, e.wrapped)
	}
	return fmt.Sprintf("network error: %s", e.message)
}

func (e *networkError) Type() ErrorType {
	return NetworkError
}

func (e *networkError) Unwrap() error {
	return e.wrapped
}

// timeoutError represents timeout-related errors
type timeoutError struct {
	message string
	timeout time.Duration
}

func (e *timeoutError) Error() string {
	return fmt.Sprintf("timeout error: %s (timeout: %v)", e.message, e.timeout)
}

func (e *timeoutError) Type() ErrorType {
	return TimeoutError
}

// httpError represents a non-2xx upstream status
type httpError struct {
	statusCode int
	body       []byte
}

// Error renders the status and serialized body, e.g. `500 - "There was an error"`.
func (e *httpError) Error() string {
	return fmt.Sprintf("%d - %s", e.statusCode, compactBody(e.body))
}

func (e *httpError) Type() ErrorType {
	return HTTPError
}

func (e *httpError) StatusCode() int {
	return e.statusCode
}

func (e *httpError) Body() []byte {
	return e.body
}

// applicationError is a 2xx response whose payload reports a failure
type applicationError struct {
	statusCode int
	body       []byte
}

func (e *applicationError) Error() string {
	return adapter.MsgInvalidResponse + compactBody(e.body)
}

func (e *applicationError) Type() ErrorType {
	return ApplicationError
}

func (e *applicationError) StatusCode() int {
	return e.statusCode
}

// validationError represents request validation errors
type validationError struct {
	message string
	field   string
}

func (e *validationError) Error() string {
	if e.field != "" {
		return fmt.Sprintf("validation error: %s (field: %s)", e.message, e.field)
	}
	return fmt.Sprintf("validation error: %s", e.message)
}

func (e *validationError) Type() ErrorType {
	return ValidationError
}

// interceptorError represents interceptor-related errors
type interceptorError struct {
	message string
	wrapped error
	stage   string
}

func (e *interceptorError) Error() string {
	return fmt.Sprintf("interceptor error: %s (stage: %s): %v", e.message, e.stage, e.wrapped)
}

func (e *interceptorError) Type() ErrorType {
	return InterceptorError
}

func (e *interceptorError) Unwrap() error {
	return e.wrapped
}

// NewNetworkError creates a new network error
func NewNetworkError(message string, wrapped error) ClientError {
	return &networkError{
		message: message,
		wrapped: wrapped,
	}
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(message string, timeout time.Duration) ClientError {
	return &timeoutError{
		message: message,
		timeout: timeout,
	}
}

// NewHTTPError creates a new HTTP status error
func NewHTTPError(statusCode int, body []byte) ClientError {
	return &httpError{
		statusCode: statusCode,
		body:       body,
	}
}

// NewApplicationError creates an error for a rejected 2xx payload
func NewApplicationError(statusCode int, body []byte) ClientError {
	return &applicationError{
		statusCode: statusCode,
		body:       body,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message, field string) ClientError {
	return &validationError{
		message: message,
		field:   field,
	}
}

// NewInterceptorError creates a new interceptor error
func NewInterceptorError(message, stage string, wrapped error) ClientError {
	return &interceptorError{
		message: message,
		wrapped: wrapped,
		stage:   stage,
	}
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errorType ErrorType) bool {
	if err == nil {
		return false
	}
	var clientErr ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type() == errorType
	}
	return false
}

// IsHTTPStatusError checks if an error is an HTTP error with a specific status code
func IsHTTPStatusError(err error, statusCode int) bool {
	var httpErr *httpError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode() == statusCode
	}
	return false
}

// IsSuccessStatus checks if a status code represents success (2xx)
func IsSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

// isRetryable reports whether another attempt may succeed.
func isRetryable(err error) bool {
	var clientErr ClientError
	if !errors.As(err, &clientErr) {
		return false
	}
	switch clientErr.Type() {
	case NetworkError, TimeoutError, HTTPError, ApplicationError:
		return true
	default:
		return false
	}
}

// toAdapterError normalizes the last attempt error into the public error.
func toAdapterError(err error) *adapter.Error {
	var clientErr ClientError
	if !errors.As(err, &clientErr) {
		return adapter.AsError(err)
	}
	switch clientErr.Type() {
	case ApplicationError:
		return adapter.New(adapter.KindInvalidResponse, clientErr.Error())
	case ValidationError, InterceptorError:
		return adapter.New(adapter.KindInvalidRequest, clientErr.Error())
	default:
		return adapter.New(adapter.KindRequestFailed, clientErr.Error())
	}
}
