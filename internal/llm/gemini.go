package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

type GeminiConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
}

// generates text with Google's Gemini API
type GeminiGenerator struct {
	client *genai.Client
	config GeminiConfig
}

func NewGeminiGenerator(ctx context.Context, config GeminiConfig) (*GeminiGenerator, error) {
	if config.APIKey == "" {
		return nil, ErrNotConfigured
	}

	if config.Model == "" {
		config.Model = defaultGeminiModel
	}

	if config.Temperature == 0 {
		config.Temperature = defaultTemperature
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiGenerator{
		client: client,
		config: config,
	}, nil
}

func (g *GeminiGenerator) Model() string {
	return g.config.Model
}

func (g *GeminiGenerator) GenerateText(ctx context.Context, req TextGenerationRequest) (*TextGenerationResponse, error) {
	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, msg := range req.Messages {
		role := genai.RoleUser
		if msg.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, genai.Role(role)))
	}

	genConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.config.Temperature),
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = g.config.MaxTokens
	}

	if maxTokens > 0 {
		genConfig.MaxOutputTokens = int32(maxTokens) //nolint:gosec // bounded by config
	}

	if req.SystemPrompt != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}

	result, err := g.client.Models.GenerateContent(ctx, g.config.Model, contents, genConfig)
	if err != nil {
		return nil, fmt.Errorf("API request failed: gemini generate: %w", err)
	}

	text := result.Text()
	if text == "" {
		return nil, fmt.Errorf("no content in response")
	}

	resp := &TextGenerationResponse{Text: text}
	if result.UsageMetadata != nil {
		resp.Usage = Usage{
			InputTokens:  int(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int(result.UsageMetadata.CandidatesTokenCount),
		}
	}

	return resp, nil
}
