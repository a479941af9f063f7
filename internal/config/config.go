// Package config loads and resolves gateway settings.
//
// FILES:
//   - config.go:   Config structs, yaml loading, env overrides
//   - defaults.go: centralized default values
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the fully resolved gateway configuration.
// The gateway client receives this by value; it never reads files or
// environment on its own.
type Config struct {
	Upstream UpstreamConfig `yaml:"upstream"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

// UpstreamConfig describes the task microservice endpoint and the
// transport policy used to reach it.
type UpstreamConfig struct {
	BaseURL   string
	UserAgent string

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	PoolTimeout    time.Duration

	MaxRetries int
	Backoff    []time.Duration

	MaxConnections int
	MaxKeepAlive   int

	HealthCacheTTL time.Duration
}

// upstreamYAML is the file representation of UpstreamConfig. Durations are
// Go duration strings ("5s", "1m30s"); yaml.v3 has no native time.Duration
// support.
type upstreamYAML struct {
	BaseURL        string   `yaml:"base_url"`
	UserAgent      string   `yaml:"user_agent"`
	ConnectTimeout string   `yaml:"connect_timeout"`
	ReadTimeout    string   `yaml:"read_timeout"`
	WriteTimeout   string   `yaml:"write_timeout"`
	PoolTimeout    string   `yaml:"pool_timeout"`
	MaxRetries     *int     `yaml:"max_retries"`
	Backoff        []string `yaml:"backoff"`
	MaxConnections *int     `yaml:"max_connections"`
	MaxKeepAlive   *int     `yaml:"max_keepalive"`
	HealthCacheTTL string   `yaml:"health_cache_ttl"`
}

// UnmarshalYAML overlays file values onto whatever is already set, so
// defaults survive for keys the file omits.
func (u *UpstreamConfig) UnmarshalYAML(node *yaml.Node) error {
	var raw upstreamYAML
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.BaseURL != "" {
		u.BaseURL = raw.BaseURL
	}
	if raw.UserAgent != "" {
		u.UserAgent = raw.UserAgent
	}
	for _, f := range []struct {
		src string
		dst *time.Duration
	}{
		{raw.ConnectTimeout, &u.ConnectTimeout},
		{raw.ReadTimeout, &u.ReadTimeout},
		{raw.WriteTimeout, &u.WriteTimeout},
		{raw.PoolTimeout, &u.PoolTimeout},
		{raw.HealthCacheTTL, &u.HealthCacheTTL},
	} {
		if f.src == "" {
			continue
		}
		d, err := time.ParseDuration(f.src)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", f.src, err)
		}
		*f.dst = d
	}
	if raw.MaxRetries != nil {
		u.MaxRetries = *raw.MaxRetries
	}
	if raw.MaxConnections != nil {
		u.MaxConnections = *raw.MaxConnections
	}
	if raw.MaxKeepAlive != nil {
		u.MaxKeepAlive = *raw.MaxKeepAlive
	}
	if len(raw.Backoff) > 0 {
		backoff := make([]time.Duration, 0, len(raw.Backoff))
		for _, s := range raw.Backoff {
			d, err := time.ParseDuration(s)
			if err != nil {
				return fmt.Errorf("invalid backoff entry %q: %w", s, err)
			}
			backoff = append(backoff, d)
		}
		u.Backoff = backoff
	}
	return nil
}

// ServerConfig configures the demo service binary.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns a Config populated with the package defaults.
func Default() Config {
	return Config{
		Upstream: UpstreamConfig{
			BaseURL:        DefaultTaskServiceBaseURL,
			UserAgent:      DefaultUserAgent,
			ConnectTimeout: DefaultConnectTimeout,
			ReadTimeout:    DefaultReadTimeout,
			WriteTimeout:   DefaultWriteTimeout,
			PoolTimeout:    DefaultPoolTimeout,
			MaxRetries:     DefaultMaxRetries,
			Backoff:        DefaultBackoffSchedule(),
			MaxConnections: DefaultMaxConnections,
			MaxKeepAlive:   DefaultMaxKeepAlive,
			HealthCacheTTL: DefaultHealthCacheTTL,
		},
		Server: ServerConfig{Addr: DefaultServerAddr},
		Log:    LogConfig{Level: "info"},
	}
}

// Load reads a yaml config file over the defaults. Missing file is not an
// error: defaults plus env overrides apply.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables on top of file values.
func (c *Config) applyEnv() {
	if v := os.Getenv("TASK_SERVICE_URL"); v != "" {
		c.Upstream.BaseURL = v
	}
	if v := os.Getenv("GATEWAY_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

func (c *Config) validate() error {
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream.base_url is required")
	}
	if c.Upstream.MaxRetries < 0 {
		return fmt.Errorf("upstream.max_retries must be >= 0, got %d", c.Upstream.MaxRetries)
	}
	if c.Upstream.MaxConnections <= 0 {
		return fmt.Errorf("upstream.max_connections must be > 0, got %d", c.Upstream.MaxConnections)
	}
	if len(c.Upstream.Backoff) == 0 {
		c.Upstream.Backoff = DefaultBackoffSchedule()
	}
	return nil
}
