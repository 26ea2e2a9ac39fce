// Package config loads the harness configuration from the environment. Command-line flags
// parsed in the main package take precedence over these values.
package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	ServiceURL string `env:"SERVICE_URL, default=http://localhost:80"`

	LogLevel  string `env:"LOG_LEVEL, default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=true"`

	// RequestsPerSecond paces requests to the service. Zero means unlimited.
	RequestsPerSecond float64 `env:"REQUESTS_PER_SECOND, default=0"`

	// StrictRoles makes an unknown role in a scenario an error instead of an
	// unauthenticated session.
	StrictRoles bool `env:"STRICT_ROLES, default=false"`

	// StrictSchemas makes schema mismatches stop the test instead of being reported
	// alongside the other assertions.
	StrictSchemas bool `env:"STRICT_SCHEMAS, default=false"`

	// ProtectedUsernames are never deleted by the user reset.
	ProtectedUsernames []string `env:"PROTECTED_USERNAMES, default=admin"`

	StatusQueryTimeout time.Duration `env:"STATUS_QUERY_TIMEOUT, default=10s"`
}

// Load reads a .env file from the working directory if there is one, and then the process
// environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("load .env file: %w", err)
		}
	}
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads the configuration from an arbitrary source of variables.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that flags may also have overridden.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServiceURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("service URL %q is not an absolute URL", c.ServiceURL)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests per second must not be negative, got %v", c.RequestsPerSecond)
	}
	if c.StatusQueryTimeout <= 0 {
		return fmt.Errorf("status query timeout must be positive, got %s", c.StatusQueryTimeout)
	}
	return nil
}
