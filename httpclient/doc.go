// Package httpclient is the retrying request engine adapters use to call
// their upstream API.
//
// Retries
//   - Controlled via Builder.WithRetries(attempts, delay); attempts counts every
//     try, the first one included. Values below 1 mean a single try.
//   - An attempt fails on:
//   - Transport errors (network failures, per-attempt timeouts)
//   - Non-2xx responses
//   - Payloads whose "error" field is truthy, or that the FailurePredicate rejects
//   - Both failure kinds share the same budget and the same constant delay.
//     There is no backoff and no jitter.
//
// Errors
//   - Every error returned by Do is an *adapter.Error.
//   - Exhausted transport failures are KindRequestFailed with the last
//     transport message, e.g. `500 - "There was an error"`.
//   - Exhausted application failures are KindInvalidResponse with the message
//     "Could not retrieve valid data: " followed by the compacted body.
//   - Invalid requests and interceptor errors are KindInvalidRequest and are
//     surfaced immediately. A context canceled between attempts is KindCanceled.
//
// Notes
//   - Request bodies are re-sent by rebuilding the http.Request on each attempt.
//   - The trace id header is resolved once per call and reused by every attempt.
//   - Each call is wrapped in one "adapter.request" span with an event per attempt.
package httpclient
