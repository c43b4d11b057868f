package config

import (
	"time"

	"github.com/knadh/koanf/v2"
)

// Config is the adapter process configuration. Values the struct does not
// model (upstream API keys, endpoints) stay reachable through the getters.
type Config struct {
	App     AppConfig     `koanf:"app" json:"app" yaml:"app" mapstructure:"app"`
	Log     LogConfig     `koanf:"log" json:"log" yaml:"log" mapstructure:"log"`
	Request RequestConfig `koanf:"request" json:"request" yaml:"request" mapstructure:"request"`
	Server  ServerConfig  `koanf:"server" json:"server" yaml:"server" mapstructure:"server"`

	// k holds the underlying Koanf instance for flexible access to custom configurations
	k *koanf.Koanf `json:"-" yaml:"-" mapstructure:"-"`
}

// AppConfig identifies the adapter.
type AppConfig struct {
	Name    string `koanf:"name" json:"name" yaml:"name" mapstructure:"name"`
	Version string `koanf:"version" json:"version" yaml:"version" mapstructure:"version"`
	Env     string `koanf:"env" json:"env" yaml:"env" mapstructure:"env"`
}

// LogConfig holds logging preferences.
type LogConfig struct {
	Level  string `koanf:"level" json:"level" yaml:"level" mapstructure:"level"`
	Pretty bool   `koanf:"pretty" json:"pretty" yaml:"pretty" mapstructure:"pretty"`
}

// RequestConfig drives the outbound request engine.
//
// Timeout is read in milliseconds (TIMEOUT=5000) and resolved once at load
// time; absent, non-numeric or non-positive values fall back to 3000ms.
type RequestConfig struct {
	Timeout     time.Duration `koanf:"timeout" json:"timeout" yaml:"timeout" mapstructure:"timeout"`
	Retries     int           `koanf:"retries" json:"retries" yaml:"retries" mapstructure:"retries"`
	Delay       time.Duration `koanf:"delay" json:"delay" yaml:"delay" mapstructure:"delay"`
	RateLimit   float64       `koanf:"ratelimit" json:"ratelimit" yaml:"ratelimit" mapstructure:"ratelimit"` // requests per second, 0 disables
	Burst       int           `koanf:"burst" json:"burst" yaml:"burst" mapstructure:"burst"`
	LogPayloads bool          `koanf:"logpayloads" json:"logpayloads" yaml:"logpayloads" mapstructure:"logpayloads"`
}

// ServerConfig holds the inbound HTTP bridge settings.
type ServerConfig struct {
	Host      string        `koanf:"host" json:"host" yaml:"host" mapstructure:"host"`
	Port      int           `koanf:"port" json:"port" yaml:"port" mapstructure:"port"`
	Path      string        `koanf:"path" json:"path" yaml:"path" mapstructure:"path"`
	BodyLimit string        `koanf:"bodylimit" json:"bodylimit" yaml:"bodylimit" mapstructure:"bodylimit"`
	RateLimit float64       `koanf:"ratelimit" json:"ratelimit" yaml:"ratelimit" mapstructure:"ratelimit"` // per client IP, 0 disables
	Timeout   TimeoutConfig `koanf:"timeout" json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// TimeoutConfig holds server timeouts.
type TimeoutConfig struct {
	Read     time.Duration `koanf:"read" json:"read" yaml:"read" mapstructure:"read"`
	Write    time.Duration `koanf:"write" json:"write" yaml:"write" mapstructure:"write"`
	Shutdown time.Duration `koanf:"shutdown" json:"shutdown" yaml:"shutdown" mapstructure:"shutdown"`
}
