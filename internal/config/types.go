package config

import "time"

type Config struct {
	Environment string
	Port        string
	BaseURL     string

	DatabaseURL string
	RedisURL    string

	JWTSecret     string
	SessionSecret string

	// calendar used when the caller does not send its own timezone
	Timezone *time.Location

	QuotaStore           string
	DailyLimit           int
	EnforcePremiumExpiry bool

	Generator GeneratorConfig
	Mail      MailConfig
	OAuth     OAuthConfig

	// formatted ulule rate, e.g. "30-M"
	RateLimit string
	LogFile   string
}

// selects and configures the text generation provider
type GeneratorConfig struct {
	Provider     string // "gemini", "openai" or "anthropic"
	GeminiKey    string
	GeminiModel  string
	OpenAIKey    string
	OpenAIURL    string // optional OpenAI-compatible proxy base URL
	OpenAIModel  string
	AnthropicKey string
}

type MailConfig struct {
	Host         string
	Port         int
	Username     string
	Password     string
	From         string
	ContactEmail string
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GitHubClientID     string
	GitHubClientSecret string
}

// reports whether SMTP delivery can be attempted
func (m MailConfig) Configured() bool {
	return m.Host != "" && m.From != ""
}
