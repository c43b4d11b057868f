package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/labstack/gommon/bytes"
	"github.com/rs/zerolog"
)

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Validate checks cfg section by section and returns the first *ConfigError.
func Validate(cfg *Config) error {
	checks := []func(*Config) error{
		func(c *Config) error { return validateApp(&c.App) },
		func(c *Config) error { return validateLog(&c.Log) },
		func(c *Config) error { return validateRequest(&c.Request) },
		func(c *Config) error { return validateServer(&c.Server) },
	}
	for _, check := range checks {
		if err := check(cfg); err != nil {
			return err
		}
	}
	return nil
}

func validateApp(cfg *AppConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return NewMissingFieldError("app.name")
	}
	validEnvs := []string{EnvDevelopment, EnvStaging, EnvProduction}
	if !slices.Contains(validEnvs, cfg.Env) {
		return NewInvalidFieldError("app.env", fmt.Sprintf("unknown environment %q", cfg.Env), validEnvs)
	}
	return nil
}

func validateLog(cfg *LogConfig) error {
	if _, err := zerolog.ParseLevel(cfg.Level); err != nil {
		return NewInvalidFieldError("log.level", fmt.Sprintf("unknown level %q", cfg.Level),
			[]string{"trace", "debug", "info", "warn", "error", "fatal", "panic"})
	}
	return nil
}

func validateRequest(cfg *RequestConfig) error {
	switch {
	case cfg.Timeout <= 0:
		return NewInvalidFieldError("request.timeout", "must be positive", nil)
	case cfg.Retries < 1:
		return NewInvalidFieldError("request.retries", "must be at least 1", nil)
	case cfg.Delay < 0:
		return NewInvalidFieldError("request.delay", "must not be negative", nil)
	case cfg.RateLimit < 0:
		return NewInvalidFieldError("request.ratelimit", "must not be negative", nil)
	case cfg.RateLimit > 0 && cfg.Burst < 1:
		return NewInvalidFieldError("request.burst", "must be at least 1 when request.ratelimit is set", nil)
	}
	return nil
}

func validateServer(cfg *ServerConfig) error {
	switch {
	case cfg.Port <= 0 || cfg.Port > 65535:
		return NewInvalidFieldError("server.port", fmt.Sprintf("invalid port %d (must be 1-65535)", cfg.Port), nil)
	case !strings.HasPrefix(cfg.Path, "/"):
		return NewInvalidFieldError("server.path", fmt.Sprintf("path %q must start with /", cfg.Path), nil)
	case cfg.RateLimit < 0:
		return NewInvalidFieldError("server.ratelimit", "must not be negative", nil)
	case cfg.BodyLimit != "" && !validBodyLimit(cfg.BodyLimit):
		return NewInvalidFieldError("server.bodylimit", fmt.Sprintf("invalid size %q", cfg.BodyLimit), []string{"512K", "1M", "10M"})
	case cfg.Timeout.Read <= 0:
		return NewInvalidFieldError("server.timeout.read", "must be positive", nil)
	case cfg.Timeout.Write <= 0:
		return NewInvalidFieldError("server.timeout.write", "must be positive", nil)
	case cfg.Timeout.Shutdown <= 0:
		return NewInvalidFieldError("server.timeout.shutdown", "must be positive", nil)
	}
	return nil
}

func validBodyLimit(limit string) bool {
	_, err := bytes.Parse(limit)
	return err == nil
}
