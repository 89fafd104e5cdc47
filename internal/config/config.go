// Package config loads application configuration from an optional YAML
// file and GREENROOM_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "GREENROOM_"

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Session  SessionConfig  `koanf:"session"`
	Admin    AdminConfig    `koanf:"admin"`
	Log      LogConfig      `koanf:"log"`
	Limits   LimitsConfig   `koanf:"limits"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              string        `koanf:"port"`
	MetricsPort       string        `koanf:"metrics_port"`
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	IdleTimeout       time.Duration `koanf:"idle_timeout"`
}

// DatabaseConfig contains PostgreSQL settings.
type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxConns        int           `koanf:"max_conns"`
	MinConns        int           `koanf:"min_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnectTimeout  time.Duration `koanf:"connect_timeout"`
	ConnectAttempts int           `koanf:"connect_attempts"`
}

// SessionConfig contains session store and cookie settings.
type SessionConfig struct {
	Secret       string        `koanf:"secret"`
	TTL          time.Duration `koanf:"ttl"`
	CookieName   string        `koanf:"cookie_name"`
	CookieSecure bool          `koanf:"cookie_secure"`
	CookieDomain string        `koanf:"cookie_domain"`
}

// AdminConfig optionally seeds the first admin account at startup.
// Leaving Email empty disables seeding.
type AdminConfig struct {
	Name     string `koanf:"name"`
	Email    string `koanf:"email"`
	Password string `koanf:"password"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// LimitsConfig contains request throttling settings.
type LimitsConfig struct {
	LoginRPS   float64 `koanf:"login_rps"`
	LoginBurst int     `koanf:"login_burst"`
}

// Default returns the configuration with development defaults applied.
// Values without a safe default (database URL, session secret) stay empty
// and are caught by Validate.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              "8080",
			MetricsPort:       "9090",
			ReadTimeout:       15 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		Database: DatabaseConfig{
			MaxConns:        10,
			MinConns:        2,
			ConnMaxLifetime: time.Hour,
			ConnectTimeout:  30 * time.Second,
			ConnectAttempts: 3,
		},
		Session: SessionConfig{
			TTL:        time.Hour,
			CookieName: "greenroom_session",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Limits: LimitsConfig{
			LoginRPS:   1,
			LoginBurst: 5,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// environment overrides, then validates it. A non-empty path must point
// to a readable file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	// GREENROOM_SERVER_PORT=9000 overrides server.port. Only the first
	// underscore separates the section, so multi-word keys survive.
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".", 1)
	}), nil); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configurations the server cannot safely start with.
// Missing required values fail here, at boot, with a descriptive error
// instead of surfacing as undefined behavior later.
func (c *Config) Validate() error {
	var errs []error

	if c.Database.URL == "" {
		errs = append(errs, errors.New("database.url is required (GREENROOM_DATABASE_URL)"))
	}
	if c.Session.Secret == "" {
		errs = append(errs, errors.New("session.secret is required (GREENROOM_SESSION_SECRET)"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("session.ttl must be positive"))
	}
	if c.Session.CookieName == "" {
		errs = append(errs, errors.New("session.cookie_name must not be empty"))
	}
	if c.Admin.Email != "" && c.Admin.Password == "" {
		errs = append(errs, errors.New("admin.password is required when admin.email is set"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
