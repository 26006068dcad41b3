package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Port:                 "8080",
		DBPassword:           "password",
		SessionSecret:        "a-development-secret",
		IndexCacheTTLSeconds: 20,
		Env:                  "development",
	}
}

func TestValidateAcceptsDevelopmentDefaults(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidateRequiresPortAndSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Port = ""
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.SessionSecret = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsNegativeCacheTTL(t *testing.T) {
	cfg := validConfig()
	cfg.IndexCacheTTLSeconds = -1
	assert.Error(t, cfg.Validate())
}

func TestValidateProductionStrictness(t *testing.T) {
	cfg := validConfig()
	cfg.Env = "production"
	cfg.SessionSecret = "your-secret-key-change-in-production"
	assert.Error(t, cfg.Validate(), "default secret must be rejected in production")

	cfg.SessionSecret = "short"
	assert.Error(t, cfg.Validate(), "short secret must be rejected in production")

	cfg.SessionSecret = "a-very-long-production-secret-value-123"
	cfg.DBPassword = "password"
	assert.Error(t, cfg.Validate(), "default DB password must be rejected in production")

	cfg.DBPassword = "sufficiently-strong-password"
	assert.NoError(t, cfg.Validate())
}

func TestIndexCacheTTL(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, 20*time.Second, cfg.IndexCacheTTL())

	cfg.IndexCacheTTLSeconds = 0
	assert.Equal(t, time.Duration(0), cfg.IndexCacheTTL())
}
