package optimizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"codeberg.org/promptcraft/server/internal/llm"
)

// creates an optimizer; a nil generator makes Optimize fail with ErrConfiguration
func New(generator llm.TextGenerator) *Optimizer {
	return &Optimizer{generator: generator}
}

// reports whether a model is configured
func (o *Optimizer) Configured() bool {
	return o.generator != nil
}

// rewrites the prompt with the configured model and returns the model text verbatim
func (o *Optimizer) Optimize(ctx context.Context, prompt string, style Style) (*Result, error) {
	if err := Validate(prompt); err != nil {
		return nil, err
	}

	if _, ok := styleGuidance[style]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStyle, style)
	}

	if o.generator == nil {
		return nil, ErrConfiguration
	}

	resp, err := o.generator.GenerateText(ctx, llm.TextGenerationRequest{
		SystemPrompt: buildInstruction(style),
		Messages: []llm.Message{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			return nil, ErrConfiguration
		}

		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	return &Result{
		Text:   resp.Text,
		Model:  o.generator.Model(),
		Style:  style,
		Source: SourceAI,
	}, nil
}

// like Optimize, but missing configuration or upstream failure degrade to Enhance
func (o *Optimizer) OptimizeOrFallback(ctx context.Context, prompt string, style Style) (*Result, error) {
	result, err := o.Optimize(ctx, prompt, style)

	switch {
	case err == nil:
		return result, nil
	case errors.Is(err, ErrConfiguration), errors.Is(err, ErrUpstream):
		return &Result{
			Text:   Enhance(prompt),
			Model:  "",
			Style:  style,
			Source: SourceFallback,
		}, err
	default:
		return nil, err
	}
}

// rejects empty or whitespace-only prompts
func Validate(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return ErrEmptyPrompt
	}

	return nil
}
