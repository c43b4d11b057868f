package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/gaborage/adapter-bricks/payload"
)

const (
	// DefaultFile is read by Load when present.
	DefaultFile = "config.yaml"

	// EnvTimeout is the request timeout in milliseconds. It takes precedence
	// over ADAPTER_REQUEST_TIMEOUT.
	EnvTimeout = "TIMEOUT"
	// EnvPrefix marks variables mapped onto dotted keys:
	// ADAPTER_REQUEST_RETRIES becomes request.retries.
	EnvPrefix = "ADAPTER_"

	// DefaultTimeoutMS applies when no valid timeout is configured.
	DefaultTimeoutMS = 3000

	keyRequestTimeout = "request.timeout"
)

// Load reads configuration with priority, highest first:
//  1. Environment variables (TIMEOUT, ADAPTER_*)
//  2. config.yaml in the working directory, if present
//  3. Defaults
func Load() (*Config, error) {
	return LoadFile(DefaultFile)
}

// LoadFile is Load with an explicit YAML path. A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", path, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}
	}

	return finish(k)
}

// LoadFromBytes reads YAML content on top of the defaults, then applies the
// environment. It is meant for embedded configuration and tests.
func LoadFromBytes(content []byte) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	return finish(k)
}

func finish(k *koanf.Koanf) (*Config, error) {
	if err := loadEnvironment(k); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := k.Set(keyRequestTimeout, resolveTimeout(k.Get(keyRequestTimeout))); err != nil {
		return nil, fmt.Errorf("failed to resolve request timeout: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.k = k

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvironment(k *koanf.Koanf) error {
	prefixed := env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
			return strings.ReplaceAll(key, "_", "."), value
		},
	})
	if err := k.Load(prefixed, nil); err != nil {
		return err
	}

	timeout := env.Provider(".", env.Opt{
		Prefix: EnvTimeout,
		TransformFunc: func(key, value string) (string, any) {
			if key != EnvTimeout {
				return "", nil
			}
			return keyRequestTimeout, value
		},
	})
	return k.Load(timeout, nil)
}

// resolveTimeout interprets a raw timeout as milliseconds, using the same
// numeric coercion as upstream payloads ("0x10", " 5000 "). Values that are
// already durations are kept when positive. Timeouts beyond the range of
// time.Duration are clamped to its maximum.
func resolveTimeout(raw any) time.Duration {
	if d, ok := raw.(time.Duration); ok {
		if d > 0 {
			return d
		}
		return DefaultTimeoutMS * time.Millisecond
	}
	ms := payload.ToNumber(raw)
	if ms <= 0 || math.IsNaN(ms) || math.IsInf(ms, 0) {
		return DefaultTimeoutMS * time.Millisecond
	}
	ns := ms * float64(time.Millisecond)
	if ns >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ns)
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name":    "adapter",
		"app.version": "v1.0.0",
		"app.env":     EnvDevelopment,

		"log.level":  "info",
		"log.pretty": false,

		"request.timeout":     DefaultTimeoutMS,
		"request.retries":     3,
		"request.delay":       "1s",
		"request.ratelimit":   0,
		"request.burst":       1,
		"request.logpayloads": false,

		"server.host":             "0.0.0.0",
		"server.port":             8080,
		"server.path":             "/",
		"server.bodylimit":        "1M",
		"server.ratelimit":        0,
		"server.timeout.read":     "15s",
		"server.timeout.write":    "30s",
		"server.timeout.shutdown": "10s",
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}
