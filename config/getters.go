package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	errMsgRequiredKeyMissing   = "required configuration key '%s' is missing"
	errMsgConfigNotInitialized = "configuration not initialized"
)

// GetString retrieves a string value from the configuration or the provided default.
func (c *Config) GetString(key string, defaultVal ...string) string {
	if c == nil || c.k == nil || !c.k.Exists(key) {
		return optionalDefault("", defaultVal...)
	}
	return c.k.String(key)
}

// GetInt retrieves an int value from the configuration or the provided default.
func (c *Config) GetInt(key string, defaultVal ...int) int {
	val, ok := c.rawValue(key)
	if !ok {
		return optionalDefault(0, defaultVal...)
	}
	n, err := toInt(val)
	if err != nil {
		return optionalDefault(0, defaultVal...)
	}
	return n
}

// GetFloat64 retrieves a float64 value from the configuration or the provided default.
func (c *Config) GetFloat64(key string, defaultVal ...float64) float64 {
	val, ok := c.rawValue(key)
	if !ok {
		return optionalDefault(0.0, defaultVal...)
	}
	f, err := toFloat64(val)
	if err != nil {
		return optionalDefault(0.0, defaultVal...)
	}
	return f
}

// GetBool retrieves a bool value from the configuration or the provided default.
func (c *Config) GetBool(key string, defaultVal ...bool) bool {
	val, ok := c.rawValue(key)
	if !ok {
		return optionalDefault(false, defaultVal...)
	}
	b, err := toBool(val)
	if err != nil {
		return optionalDefault(false, defaultVal...)
	}
	return b
}

// GetDuration retrieves a duration ("1.5s", "250ms") or the provided default.
func (c *Config) GetDuration(key string, defaultVal ...time.Duration) time.Duration {
	val, ok := c.rawValue(key)
	if !ok {
		return optionalDefault(time.Duration(0), defaultVal...)
	}
	switch v := val.(type) {
	case time.Duration:
		return v
	case string:
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return optionalDefault(time.Duration(0), defaultVal...)
}

// GetRequiredString retrieves a required, non-blank string value such as an
// upstream API key.
func (c *Config) GetRequiredString(key string) (string, error) {
	if c == nil || c.k == nil || !c.k.Exists(key) {
		return "", fmt.Errorf(errMsgRequiredKeyMissing, key)
	}
	val := strings.TrimSpace(c.k.String(key))
	if val == "" {
		return "", fmt.Errorf("required configuration key '%s' is empty", key)
	}
	return val, nil
}

// GetRequiredInt retrieves a required int value from the configuration.
func (c *Config) GetRequiredInt(key string) (int, error) {
	if c == nil || c.k == nil {
		return 0, errors.New(errMsgConfigNotInitialized)
	}
	val, ok := c.rawValue(key)
	if !ok {
		return 0, fmt.Errorf(errMsgRequiredKeyMissing, key)
	}
	n, err := toInt(val)
	if err != nil {
		return 0, fmt.Errorf("required configuration key '%s' is invalid: %w", key, err)
	}
	return n, nil
}

// Unmarshal decodes a configuration section into out.
func (c *Config) Unmarshal(key string, out any) error {
	if c == nil || c.k == nil {
		return errors.New(errMsgConfigNotInitialized)
	}
	return c.k.Unmarshal(key, out)
}

// Exists checks if a configuration key exists.
func (c *Config) Exists(key string) bool {
	if c == nil || c.k == nil {
		return false
	}
	return c.k.Exists(key)
}

// All returns all configuration as a flattened map.
func (c *Config) All() map[string]any {
	if c == nil || c.k == nil {
		return nil
	}
	return c.k.All()
}

func (c *Config) rawValue(key string) (any, bool) {
	if c == nil || c.k == nil || !c.k.Exists(key) {
		return nil, false
	}
	return c.k.Get(key), true
}

// optionalDefault returns the first override if provided, otherwise the zero value.
func optionalDefault[T any](zero T, overrides ...T) T {
	if len(overrides) > 0 {
		return overrides[0]
	}
	return zero
}
