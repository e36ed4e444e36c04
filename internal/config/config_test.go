package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		AppEnv:        "development",
		Port:          "3000",
		APIBaseURL:    "http://127.0.0.1:8000/api",
		RedisURL:      "redis://localhost:6379",
		SessionSecret: "0123456789abcdef0123456789abcdef",
	}
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, validate(validConfig()))
}

func TestValidate_MissingRedisURL(t *testing.T) {
	cfg := validConfig()
	cfg.RedisURL = ""

	err := validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_URL")
}

func TestValidate_MissingSessionSecret(t *testing.T) {
	cfg := validConfig()
	cfg.SessionSecret = ""

	err := validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")
}

func TestValidate_ShortSessionSecret(t *testing.T) {
	cfg := validConfig()
	cfg.SessionSecret = "too-short"

	err := validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 16")
}

func TestValidate_RelativeAPIBaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.APIBaseURL = "/api"

	err := validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_BASE_URL")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("SESSION_SECRET", "0123456789abcdef0123456789abcdef")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "http://127.0.0.1:8000/api", cfg.APIBaseURL)
	assert.Equal(t, "info", cfg.LogLevel)
}
