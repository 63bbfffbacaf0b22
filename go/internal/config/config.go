package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mcdev12/cueroom/go/internal/events"
	"github.com/mcdev12/cueroom/go/internal/roomstate"
)

// fileConfig is the yaml shape. Durations are strings ("10s", "24h") so the
// file stays readable; Load parses them into the typed Config.
type fileConfig struct {
	HTTP struct {
		Addr         string `yaml:"addr"`
		ReadTimeout  string `yaml:"read_timeout"`
		WriteTimeout string `yaml:"write_timeout"`
		IdleTimeout  string `yaml:"idle_timeout"`
	} `yaml:"http"`
	Logging struct {
		Level   string `yaml:"level"`
		Console *bool  `yaml:"console"`
	} `yaml:"logging"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	NATS struct {
		URL           string `yaml:"url"`
		MaxReconnects *int   `yaml:"max_reconnects"`
		ReconnectWait string `yaml:"reconnect_wait"`
	} `yaml:"nats"`
}

// HTTP holds listener settings.
type HTTP struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Logging holds zerolog settings.
type Logging struct {
	Level   string // debug|info|warn|error
	Console bool   // pretty console output instead of JSON
}

// Config is the full service configuration. Secrets and per-deployment
// addresses may be overridden by environment variables after Load.
type Config struct {
	HTTP    HTTP
	Logging Logging
	Redis   roomstate.RedisConfig
	NATS    events.NATSConfig
}

// Load reads the yaml config from CONFIG_PATH (default ./config/config.yaml),
// applies defaults and env overrides, and validates the result. A missing
// file is not an error: defaults plus env cover local development.
func Load() (*Config, error) {
	cfg := &Config{
		HTTP: HTTP{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Logging: Logging{Level: "info", Console: true},
		Redis:   roomstate.DefaultRedisConfig(),
		NATS:    events.DefaultNATSConfig(),
	}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config/config.yaml"
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg.applyFile(fc)
	case errors.Is(err, os.ErrNotExist):
		// fall through to defaults
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(fc fileConfig) {
	if fc.HTTP.Addr != "" {
		c.HTTP.Addr = fc.HTTP.Addr
	}
	c.HTTP.ReadTimeout = parseDurationOr(c.HTTP.ReadTimeout, fc.HTTP.ReadTimeout)
	c.HTTP.WriteTimeout = parseDurationOr(c.HTTP.WriteTimeout, fc.HTTP.WriteTimeout)
	c.HTTP.IdleTimeout = parseDurationOr(c.HTTP.IdleTimeout, fc.HTTP.IdleTimeout)

	if fc.Logging.Level != "" {
		c.Logging.Level = fc.Logging.Level
	}
	if fc.Logging.Console != nil {
		c.Logging.Console = *fc.Logging.Console
	}

	if fc.Redis.Addr != "" {
		c.Redis.Addr = fc.Redis.Addr
	}
	if fc.Redis.Password != "" {
		c.Redis.Password = fc.Redis.Password
	}
	c.Redis.DB = fc.Redis.DB
	c.Redis.TTL = parseDurationOr(c.Redis.TTL, fc.Redis.TTL)

	if fc.NATS.URL != "" {
		c.NATS.URL = fc.NATS.URL
	}
	if fc.NATS.MaxReconnects != nil {
		c.NATS.MaxReconnects = *fc.NATS.MaxReconnects
	}
	c.NATS.ReconnectWait = parseDurationOr(c.NATS.ReconnectWait, fc.NATS.ReconnectWait)
}

func (c *Config) applyEnv() {
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		c.NATS.URL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	if c.Redis.Addr == "" {
		return errors.New("redis.addr is required")
	}
	if c.NATS.URL == "" {
		return errors.New("nats.url is required")
	}
	if c.Redis.TTL <= 0 {
		c.Redis.TTL = 24 * time.Hour
	}
	return nil
}

func parseDurationOr(def time.Duration, s string) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return def
}
