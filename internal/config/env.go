package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	QuotaStoreRedis    = "redis"
	QuotaStorePostgres = "postgres"
	QuotaStoreMemory   = "memory"

	defaultDailyLimit = 5
)

// loads configuration from environment variables
func LoadEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	cfg := &Config{
		Environment:   getenv("ENVIRONMENT", "development"),
		Port:          getenv("PORT", "8080"),
		BaseURL:       getenv("BASE_URL", "http://localhost:8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		QuotaStore:    strings.ToLower(os.Getenv("QUOTA_STORE")),
		DailyLimit:    defaultDailyLimit,
		RateLimit:     getenv("RATE_LIMIT", "30-M"),
		LogFile:       os.Getenv("LOG_FILE"),
		Generator: GeneratorConfig{
			Provider:     strings.ToLower(os.Getenv("GENERATOR_PROVIDER")),
			GeminiKey:    os.Getenv("GEMINI_API_KEY"),
			GeminiModel:  getenv("GEMINI_MODEL", "gemini-2.0-flash"),
			OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
			OpenAIURL:    os.Getenv("OPENAI_BASE_URL"),
			OpenAIModel:  getenv("OPENAI_MODEL", "gpt-4o-mini"),
			AnthropicKey: os.Getenv("ANTHROPIC_API_KEY"),
		},
		Mail: MailConfig{
			Host:         os.Getenv("SMTP_HOST"),
			Port:         587,
			Username:     os.Getenv("SMTP_USERNAME"),
			Password:     os.Getenv("SMTP_PASSWORD"),
			From:         os.Getenv("MAIL_FROM"),
			ContactEmail: os.Getenv("CONTACT_EMAIL"),
		},
		OAuth: OAuthConfig{
			GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			GitHubClientID:     os.Getenv("GITHUB_CLIENT_ID"),
			GitHubClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		},
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET environment variable is required")
	}

	tz := getenv("APP_TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", tz, err)
	}
	cfg.Timezone = loc

	if v := os.Getenv("DAILY_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("DAILY_LIMIT must be a non-negative integer, got %q", v)
		}
		cfg.DailyLimit = n
	}

	if v := os.Getenv("SMTP_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("SMTP_PORT must be an integer, got %q", v)
		}
		cfg.Mail.Port = n
	}

	cfg.EnforcePremiumExpiry, _ = strconv.ParseBool(os.Getenv("ENFORCE_PREMIUM_EXPIRY")) //nolint:errcheck // unset means false

	switch cfg.QuotaStore {
	case "":
		cfg.QuotaStore = QuotaStorePostgres
		if cfg.RedisURL != "" {
			cfg.QuotaStore = QuotaStoreRedis
		}
	case QuotaStoreRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("QUOTA_STORE=redis requires REDIS_URL")
		}
	case QuotaStorePostgres, QuotaStoreMemory:
	default:
		return nil, fmt.Errorf("unsupported QUOTA_STORE %q", cfg.QuotaStore)
	}

	return cfg, nil
}

// reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
