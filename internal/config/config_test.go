package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:            "8390",
		JWTSecret:       "a-long-enough-development-secret-key",
		DBDriver:        "sqlite",
		DBName:          ":memory:",
		MediaDir:        "./media",
		FeedCacheTTLSec: 10,
		Env:             "development",
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateMissingPort(t *testing.T) {
	cfg := validConfig()
	cfg.Port = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateMissingJWTSecret(t *testing.T) {
	cfg := validConfig()
	cfg.JWTSecret = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateUnsupportedDriver(t *testing.T) {
	cfg := validConfig()
	cfg.DBDriver = "oracle"
	assert.Error(t, cfg.Validate())
}

func TestValidateNegativeCacheTTL(t *testing.T) {
	cfg := validConfig()
	cfg.FeedCacheTTLSec = -1
	assert.Error(t, cfg.Validate())
}

func TestValidateProductionRejectsDefaultSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Env = "production"
	cfg.JWTSecret = "your-secret-key-change-in-production"
	assert.Error(t, cfg.Validate())
}

func TestValidateProductionRejectsShortSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Env = "production"
	cfg.JWTSecret = "short"
	assert.Error(t, cfg.Validate())
}

func TestValidateProductionRejectsWeakDBPassword(t *testing.T) {
	cfg := validConfig()
	cfg.Env = "production"
	cfg.DBDriver = "postgres"
	cfg.DBPassword = "password"
	assert.Error(t, cfg.Validate())
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "a-long-enough-development-secret-key")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.FeedCacheTTLSec)
	assert.NotEmpty(t, cfg.Port)
	assert.NotEmpty(t, cfg.MediaDir)
}
