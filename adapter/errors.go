package adapter

import (
	"errors"
	"fmt"
)

// Kind classifies an Error. It never reaches the wire; callers that used to
// match on message text can switch on it instead.
type Kind int

const (
	KindUnknown Kind = iota
	KindNoData
	KindMissingParameter
	KindInvalidParameter
	KindResultNotFound
	KindInvalidResult
	KindRequestFailed
	KindInvalidResponse
	KindInvalidRequest
	KindCanceled
)

var kindNames = map[Kind]string{
	KindUnknown:          "unknown",
	KindNoData:           "no_data",
	KindMissingParameter: "missing_parameter",
	KindInvalidParameter: "invalid_parameter",
	KindResultNotFound:   "result_not_found",
	KindInvalidResult:    "invalid_result",
	KindRequestFailed:    "request_failed",
	KindInvalidResponse:  "invalid_response",
	KindInvalidRequest:   "invalid_request",
	KindCanceled:         "canceled",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error messages shared with the node operators' tooling. Do not reword.
const (
	MsgNoData          = "No data supplied"
	MsgMissingParam    = "Required parameter not supplied: "
	MsgInvalidParam    = "Invalid parameter: "
	MsgResultNotFound  = "Result could not be found in path"
	MsgInvalidResult   = "Invalid result"
	MsgInvalidResponse = "Could not retrieve valid data: "
	MsgDefaultError    = "An error occurred"
)

// Error is the only error type returned across the package boundaries of this
// module. The message is the complete description; there is no cause chain.
type Error struct {
	Kind    Kind
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// Is matches another *Error of the same kind and message, so sentinel-style
// comparisons keep working after the error has been copied.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind && e.Message == other.Message
}

// New creates an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NoDataSupplied is returned when the adapter request carries no data object.
func NoDataSupplied() *Error {
	return New(KindNoData, MsgNoData)
}

// MissingParameter names the output key that none of its aliases supplied.
func MissingParameter(key string) *Error {
	return New(KindMissingParameter, MsgMissingParam+key)
}

// InvalidParameter reports a supplied parameter that could not be used.
func InvalidParameter(key, reason string) *Error {
	return New(KindInvalidParameter, MsgInvalidParam+key+" ("+reason+")")
}

// ResultNotFound is returned when a result path resolves to nothing.
func ResultNotFound() *Error {
	return New(KindResultNotFound, MsgResultNotFound)
}

// InvalidResult is returned when a resolved result is zero or not a number.
func InvalidResult() *Error {
	return New(KindInvalidResult, MsgInvalidResult)
}

// InvalidResponse embeds the serialized upstream body that was rejected.
func InvalidResponse(body string) *Error {
	return New(KindInvalidResponse, MsgInvalidResponse+body)
}

// AsError normalizes err into an *Error. Foreign errors keep their message
// under KindUnknown.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var adapterErr *Error
	if errors.As(err, &adapterErr) {
		return adapterErr
	}
	return New(KindUnknown, err.Error())
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var adapterErr *Error
	if errors.As(err, &adapterErr) {
		return adapterErr.Kind == kind
	}
	return false
}
