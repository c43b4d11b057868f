package testing

import "time"

// Logger Constants
// These constants define common logger configurations used across test files.
const (
	// TestLoggerLevelDebug is the debug log level used in most tests
	TestLoggerLevelDebug = "debug"
)

// Adapter Request Constants
// Common job run ids and price feed parameters used in adapter tests.
const (
	TestJobRunID      = "278c97ffadb54a5bbb93cfec5f7b5503"
	TestNumericJobRun = 42
	TestBaseETH       = "ETH"
	TestQuoteUSD      = "USD"
)

// Time Duration Constants
// Common time durations used in test synchronization and timeouts.
const (
	// TestEventuallyTimeout is the timeout for require.Eventually assertions (500ms)
	TestEventuallyTimeout = 500 * time.Millisecond
	// TestEventuallyTick is the polling interval for require.Eventually (50ms)
	TestEventuallyTick = 50 * time.Millisecond
)
