package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads values with defaults", func(t *testing.T) {
		t.Setenv("AUTH0_DOMAIN", "agency.eu.auth0.com")
		t.Setenv("API_AUDIENCE", "https://casting-agency-api/")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, "casting-agency.db", cfg.DatabasePath)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, "agency.eu.auth0.com", cfg.Auth.Domain)
		assert.Equal(t, "https://casting-agency-api/", cfg.Auth.Audience)
	})

	t.Run("overrides from the environment", func(t *testing.T) {
		t.Setenv("AUTH0_DOMAIN", "agency.eu.auth0.com")
		t.Setenv("API_AUDIENCE", "https://casting-agency-api/")
		t.Setenv("PORT", "9999")
		t.Setenv("DATABASE_PATH", "/tmp/agency.db")
		t.Setenv("LOG_LEVEL", "debug")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 9999, cfg.Port)
		assert.Equal(t, "/tmp/agency.db", cfg.DatabasePath)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("fails when required values are missing", func(t *testing.T) {
		t.Setenv("AUTH0_DOMAIN", "")
		t.Setenv("API_AUDIENCE", "")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestAuthConfig_Issuer(t *testing.T) {
	a := AuthConfig{Domain: "agency.eu.auth0.com"}
	assert.Equal(t, "https://agency.eu.auth0.com/", a.Issuer())
}
