package llm

import (
	"context"
	"fmt"

	"codeberg.org/promptcraft/server/internal/config"
)

// creates the text generator selected by configuration
// when no provider is named, the first one with a credential wins (gemini, openai, anthropic)
func NewGenerator(ctx context.Context, cfg config.GeneratorConfig) (TextGenerator, error) {
	provider := Provider(cfg.Provider)

	if provider == "" {
		provider = detectProvider(cfg)
	}

	switch provider {
	case ProviderGemini:
		if cfg.GeminiKey == "" {
			return nil, fmt.Errorf("gemini provider selected: %w", ErrNotConfigured)
		}

		return NewGeminiGenerator(ctx, GeminiConfig{
			APIKey: cfg.GeminiKey,
			Model:  cfg.GeminiModel,
		})
	case ProviderOpenAI:
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("openai provider selected: %w", ErrNotConfigured)
		}

		return NewOpenAIGenerator(OpenAIConfig{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.OpenAIURL,
			Model:   cfg.OpenAIModel,
		}), nil
	case ProviderAnthropic:
		if cfg.AnthropicKey == "" {
			return nil, fmt.Errorf("anthropic provider selected: %w", ErrNotConfigured)
		}

		return NewAnthropicGenerator(AnthropicConfig{
			APIKey: cfg.AnthropicKey,
		}), nil
	case "":
		return nil, ErrNotConfigured
	default:
		return nil, fmt.Errorf("unsupported generator provider: %s", provider)
	}
}

// creates the chat-completion client used by the optimize-prompt function, nil when unconfigured
func NewChatCompletionGenerator(cfg config.GeneratorConfig) TextGenerator {
	if cfg.OpenAIKey == "" {
		return nil
	}

	return NewOpenAIGenerator(OpenAIConfig{
		APIKey:  cfg.OpenAIKey,
		BaseURL: cfg.OpenAIURL,
		Model:   cfg.OpenAIModel,
	})
}

func detectProvider(cfg config.GeneratorConfig) Provider {
	switch {
	case cfg.GeminiKey != "":
		return ProviderGemini
	case cfg.OpenAIKey != "":
		return ProviderOpenAI
	case cfg.AnthropicKey != "":
		return ProviderAnthropic
	default:
		return ""
	}
}
