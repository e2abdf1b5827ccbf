// Package config loads process configuration from the environment.
package config

import (
	"fmt"

	"github.com/joeshaw/envdecode"
)

// Config is the full configuration of the agency server.
type Config struct {
	Port         int    `env:"PORT,default=8080"`
	DatabasePath string `env:"DATABASE_PATH,default=casting-agency.db"`
	LogLevel     string `env:"LOG_LEVEL,default=info"`

	Auth AuthConfig
}

// AuthConfig holds the values the authorization subsystem consumes. The
// signing algorithm is fixed to RS256 and is not configurable.
type AuthConfig struct {
	// Domain is the identity provider's domain, e.g. "agency.eu.auth0.com".
	Domain string `env:"AUTH0_DOMAIN,required"`

	// Audience is the API identifier tokens must be issued for.
	Audience string `env:"API_AUDIENCE,required"`
}

// Issuer is the expected issuer claim, derived from the provider domain the
// same way the provider mints it.
func (a AuthConfig) Issuer() string {
	return "https://" + a.Domain + "/"
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envdecode.StrictDecode(&cfg); err != nil {
		return nil, fmt.Errorf("decoding environment: %w", err)
	}
	return &cfg, nil
}
