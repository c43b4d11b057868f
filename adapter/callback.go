package adapter

import "net/http"

// Callback receives the final status code and envelope of a job run.
type Callback func(statusCode int, envelope any)

// Respond reports the outcome of a job run. cb is invoked exactly once: with
// the errored envelope when err is non-nil, otherwise with the success envelope
// under the upstream status code.
func Respond(jobRunID string, resp Upstream, err error, cb Callback) {
	if cb == nil {
		return
	}
	if err != nil {
		ErrorCallback(jobRunID, err, cb)
		return
	}
	env := Success(jobRunID, resp)
	cb(env.StatusCode, env)
}

// ErrorCallback reports a failed job run with status 500.
func ErrorCallback(jobRunID string, err error, cb Callback) {
	if cb == nil {
		return
	}
	cb(http.StatusInternalServerError, Errored(jobRunID, err))
}
