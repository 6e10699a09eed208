package config

import (
	"errors"
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: user directory and role mapping
//   - database.go: Postgres and Redis
//   - http.go: HTTP server and cookies
//   - session.go: session lifetime and storage
//   - observability.go: logging and metrics
type AppConfig struct {
	// IsDev controls development mode behavior (seeding, insecure cookies).
	// Set DEV=true or APP_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	Auth AuthConfig

	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	HTTP    HTTPConfig
	Session SessionConfig

	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.detectDevMode()
	c.Auth.Sanitize()
	c.HTTP.Sanitize(c.IsDev)
	c.Session.Sanitize()
	c.Observability.Sanitize()
}

// Validate reports settings that cannot work together. Call it after Sanitize.
func (c *AppConfig) Validate() error {
	return errors.Join(
		c.Auth.Validate(),
		c.HTTP.Validate(),
	)
}

// NeedsPostgres reports whether the configured directory reads from Postgres.
func (c *AppConfig) NeedsPostgres() bool {
	return c.Auth.Directory == DirectoryPostgres
}

// detectDevMode checks APP_ENV as a fallback for DEV.
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		appEnv := strings.ToLower(os.Getenv("APP_ENV"))
		c.IsDev = appEnv == "development" || appEnv == "dev"
	}
}
