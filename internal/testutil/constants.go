// Package testutil provides shared constants for tests across adapter-bricks.
// These constants eliminate repeated string literals in test files and ensure consistency.
package testutil

// Test Error Messages
//
// These constants define the exact failure messages adapters report once the
// upstream fixture routes exhaust every attempt.
const (
	// UpstreamErrorMessage is reported after /error fails on every attempt.
	UpstreamErrorMessage = `500 - "There was an error"`

	// CustomErrorMessage is reported when /customError is rejected by a failure predicate.
	CustomErrorMessage = `Could not retrieve valid data: {"result":"error","value":1}`

	// ApplicationErrorMessage is reported when /applicationError keeps returning an error field.
	ApplicationErrorMessage = `Could not retrieve valid data: {"error":"API limit reached","value":1}`

	// TestConnectionRefused is the common network error message for connection failures.
	TestConnectionRefused = "dial tcp: connection refused"
)

// Test Host Configuration
const (
	// TestHost is the loopback address test servers bind to.
	TestHost = "127.0.0.1"
)
