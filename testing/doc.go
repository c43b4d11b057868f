// Package testing provides testing utilities for adapters built on adapter-bricks.
//
// # Mocks
//
// The mocks subpackage provides testify-based mock implementations:
//   - MockRoundTripper scripts upstream answers for httpclient without a listener
//   - MockCallback records the status code and envelope passed to adapter.Callback
//
// # Fixtures
//
// The fixtures subpackage provides UpstreamServer, a fake upstream API on
// httptest with success, failing, flaky, application-error and slow routes,
// and an error counter to assert how many attempts a client made.
//
// # Usage
//
// Import the specific subpackages you need:
//
//	import (
//		"github.com/gaborage/adapter-bricks/testing/mocks"
//		"github.com/gaborage/adapter-bricks/testing/fixtures"
//	)
package testing
