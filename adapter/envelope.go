package adapter

import (
	"maps"
	"net/http"
)

const (
	// DefaultJobRunID is used when the node did not send an id.
	DefaultJobRunID = "1"
	// StatusErrored is the status field value of an errored envelope.
	StatusErrored = "errored"

	resultKey = "result"
)

// Upstream is the response shape the formatter needs from a transport.
type Upstream interface {
	Status() int
	Payload() any
}

// SuccessEnvelope is written back to the node when the job run succeeded.
type SuccessEnvelope struct {
	JobRunID   string         `json:"jobRunID"`
	Data       map[string]any `json:"data"`
	Result     any            `json:"result"`
	StatusCode int            `json:"statusCode"`
}

// ErrorEnvelope is written back to the node when the job run failed.
type ErrorEnvelope struct {
	JobRunID   string `json:"jobRunID"`
	Status     string `json:"status"`
	Error      string `json:"error"`
	StatusCode int    `json:"statusCode"`
}

// Success builds the success envelope. The upstream payload is copied, never
// modified; a payload without a result field gets an explicit null. An
// upstream reporting status 0 is answered with 200.
func Success(jobRunID string, resp Upstream) SuccessEnvelope {
	if jobRunID == "" {
		jobRunID = DefaultJobRunID
	}

	data := map[string]any{}
	status := http.StatusOK
	if resp != nil {
		if s := resp.Status(); s != 0 {
			status = s
		}
		if obj, ok := resp.Payload().(map[string]any); ok {
			data = maps.Clone(obj)
		}
	}
	if _, ok := data[resultKey]; !ok {
		data[resultKey] = nil
	}

	return SuccessEnvelope{
		JobRunID:   jobRunID,
		Data:       data,
		Result:     data[resultKey],
		StatusCode: status,
	}
}

// Errored builds the errored envelope. The status code is always 500.
func Errored(jobRunID string, err error) ErrorEnvelope {
	if jobRunID == "" {
		jobRunID = DefaultJobRunID
	}
	message := MsgDefaultError
	if err != nil && err.Error() != "" {
		message = err.Error()
	}
	return ErrorEnvelope{
		JobRunID:   jobRunID,
		Status:     StatusErrored,
		Error:      message,
		StatusCode: http.StatusInternalServerError,
	}
}
