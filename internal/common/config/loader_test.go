package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createValidConfig() *Config {
	cfg := &Config{}
	cfg.Database.Postgres.Host = "localhost"
	cfg.Database.Postgres.Database = "postforge"
	cfg.Database.Postgres.User = "postforge"
	cfg.Database.Redis.Address = "localhost:6379"
	return cfg
}

// ==========================
// Validation Tests
// ==========================

func TestValidateConfig_MinimalConfigPasses(t *testing.T) {
	assert.NoError(t, validateConfig(createValidConfig()))
}

func TestValidateConfig_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing postgres host", func(c *Config) { c.Database.Postgres.Host = "" }},
		{"missing postgres database", func(c *Config) { c.Database.Postgres.Database = "" }},
		{"missing postgres user", func(c *Config) { c.Database.Postgres.User = "" }},
		{"missing redis address", func(c *Config) { c.Database.Redis.Address = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := createValidConfig()
			tt.mutate(cfg)
			assert.Error(t, validateConfig(cfg))
		})
	}
}

func TestValidateConfig_AlertEmails(t *testing.T) {
	cfg := createValidConfig()
	cfg.Alerting.AWS.SES.Enabled = true
	cfg.Alerting.AWS.SES.FromEmail = "alerts@postforge.io"
	cfg.Alerting.AWS.SES.ToEmails = []string{"oncall@postforge.io"}

	require.NoError(t, validateConfig(cfg))

	cfg.Alerting.AWS.SES.FromEmail = "not-an-address"
	err := validateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "from_email")
}

func TestValidateConfig_AlertRecipients(t *testing.T) {
	cfg := createValidConfig()
	cfg.Alerting.AWS.SES.Enabled = true
	cfg.Alerting.AWS.SES.FromEmail = "alerts@postforge.io"

	err := validateConfig(cfg)
	require.Error(t, err, "enabled ses with no recipients must be rejected")

	cfg.Alerting.AWS.SES.ToEmails = []string{"oncall@postforge.io", "broken-address"}
	err = validateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken-address")
}

func TestValidateConfig_RedirectURL(t *testing.T) {
	cfg := createValidConfig()
	cfg.Providers.LinkedIn.RedirectURL = "https://app.postforge.io/callback"

	require.NoError(t, validateConfig(cfg))

	cfg.Providers.LinkedIn.RedirectURL = "app dot postforge"
	err := validateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redirect_uri")
}

// ==========================
// Defaults Tests
// ==========================

func TestApplyDefaults(t *testing.T) {
	cfg := createValidConfig()
	applyDefaults(cfg)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "https://api.openai.com/v1", cfg.Providers.OpenAI.BaseURL)
	assert.Equal(t, "https://api.stripe.com/v1", cfg.Providers.Stripe.BaseURL)
	assert.Equal(t, 3, cfg.Providers.LinkedIn.MaxRetries)
	assert.Equal(t, 100, cfg.Credits.MonthlyLimit)
	assert.Equal(t, "error-logs", cfg.Database.Elasticsearch.ErrorIndex)
}
