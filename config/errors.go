package config

import (
	"fmt"
	"strings"
)

// ConfigError describes one invalid configuration value with an actionable
// hint. Messages are lowercase.
//
//nolint:revive // ConfigError is intentionally named for clarity in external API usage
type ConfigError struct {
	Category string // "missing" or "invalid"
	Field    string // dotted config key, e.g. "request.retries"
	Message  string
	Action   string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	var parts []string
	if e.Category != "" {
		parts = append(parts, fmt.Sprintf("config_%s:", e.Category))
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Action != "" {
		parts = append(parts, e.Action)
	}
	return strings.Join(parts, " ")
}

// NewMissingFieldError reports a required key that is not set.
func NewMissingFieldError(field string) *ConfigError {
	return &ConfigError{
		Category: "missing",
		Field:    field,
		Message:  "required",
		Action:   fmt.Sprintf("set %s env var or add %s to config.yaml", EnvVarFor(field), field),
	}
}

// NewInvalidFieldError reports a value outside its allowed set or range.
func NewInvalidFieldError(field, message string, validOptions []string) *ConfigError {
	err := &ConfigError{
		Category: "invalid",
		Field:    field,
		Message:  message,
	}
	if len(validOptions) > 0 {
		err.Action = fmt.Sprintf("must be one of: %s", strings.Join(validOptions, ", "))
	}
	return err
}

// EnvVarFor returns the environment variable that sets a dotted key.
func EnvVarFor(field string) string {
	if field == keyRequestTimeout {
		return EnvTimeout
	}
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(field, ".", "_"))
}
