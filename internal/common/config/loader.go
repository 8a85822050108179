// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"postforge/internal/common/validation"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like OPENAI_API_KEY
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig() // ignore error if not found

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile tries .env at several depths so the same code works from the
// repo root, cmd/ and package test directories.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// overrideEmptyConfig fills secrets straight from the environment when the
// config files left them empty.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Providers.OpenAI.APIKey == "" {
		if val := os.Getenv("OPENAI_API_KEY"); val != "" {
			cfg.Providers.OpenAI.APIKey = val
		}
	}
	if cfg.Providers.Anthropic.APIKey == "" {
		if val := os.Getenv("ANTHROPIC_API_KEY"); val != "" {
			cfg.Providers.Anthropic.APIKey = val
		}
	}

	if cfg.Providers.LinkedIn.ClientID == "" {
		if val := os.Getenv("LINKEDIN_CLIENT_ID"); val != "" {
			cfg.Providers.LinkedIn.ClientID = val
		}
	}
	if cfg.Providers.LinkedIn.ClientSecret == "" {
		if val := os.Getenv("LINKEDIN_CLIENT_SECRET"); val != "" {
			cfg.Providers.LinkedIn.ClientSecret = val
		}
	}
	if cfg.Providers.LinkedIn.RedirectURL == "" {
		if val := os.Getenv("LINKEDIN_REDIRECT_URI"); val != "" {
			cfg.Providers.LinkedIn.RedirectURL = val
		}
	}

	if cfg.Providers.Stripe.APIKey == "" {
		if val := os.Getenv("STRIPE_API_KEY"); val != "" {
			cfg.Providers.Stripe.APIKey = val
		}
	}

	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10000
	}

	// Database defaults
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	// Elasticsearch URL fallback
	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}
	if cfg.Database.Elasticsearch.ErrorIndex == "" {
		cfg.Database.Elasticsearch.ErrorIndex = "error-logs"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	// Provider defaults
	applyProviderDefaults(&cfg.Providers.OpenAI, "https://api.openai.com/v1", 60000)
	applyProviderDefaults(&cfg.Providers.Anthropic, "https://api.anthropic.com/v1", 60000)
	applyProviderDefaults(&cfg.Providers.LinkedIn.ProviderConfig, "https://api.linkedin.com/v2", 15000)
	applyProviderDefaults(&cfg.Providers.Stripe, "https://api.stripe.com/v1", 15000)

	if cfg.Credits.MonthlyLimit == 0 {
		cfg.Credits.MonthlyLimit = 100
	}
}

func applyProviderDefaults(p *ProviderConfig, baseURL string, timeout int) {
	if p.BaseURL == "" {
		p.BaseURL = baseURL
	}
	if p.Timeout == 0 {
		p.Timeout = timeout
	}
	if p.MaxRetries == 0 {
		p.MaxRetries = 3
	}
	if p.BaseDelay == 0 {
		p.BaseDelay = 500
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if cfg.Database.Postgres.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}
	if cfg.Database.Postgres.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}

	if cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required")
	}

	if cfg.Alerting.AWS.SES.Enabled {
		if !validation.ValidateEmail(cfg.Alerting.AWS.SES.FromEmail) {
			return fmt.Errorf("alerting.aws.ses.from_email %q is not a valid email address", cfg.Alerting.AWS.SES.FromEmail)
		}
		if len(cfg.Alerting.AWS.SES.ToEmails) == 0 {
			return fmt.Errorf("alerting.aws.ses.to_emails is required when ses is enabled")
		}
		for _, addr := range cfg.Alerting.AWS.SES.ToEmails {
			if !validation.ValidateEmail(addr) {
				return fmt.Errorf("alerting.aws.ses.to_emails entry %q is not a valid email address", addr)
			}
		}
	}

	if cfg.Providers.LinkedIn.RedirectURL != "" && !validation.ValidateURL(cfg.Providers.LinkedIn.RedirectURL) {
		return fmt.Errorf("providers.linkedin.redirect_uri %q is not a valid URL", cfg.Providers.LinkedIn.RedirectURL)
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
