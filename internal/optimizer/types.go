package optimizer

import (
	"errors"
	"fmt"

	"codeberg.org/promptcraft/server/internal/llm"
)

// rewriting style requested by the caller
type Style string

const (
	StyleDetailed       Style = "detailed"
	StyleConcise        Style = "concise"
	StyleCreative       Style = "creative"
	StyleTechnical      Style = "technical"
	StyleConversational Style = "conversational"
)

// where an optimized prompt came from
const (
	SourceAI       = "ai"
	SourceFallback = "fallback"
)

var (
	ErrValidation    = errors.New("invalid optimization request")
	ErrConfiguration = errors.New("text generation is not configured")
	ErrUpstream      = errors.New("text generation failed")
)

// validation failures, both match ErrValidation
var (
	ErrEmptyPrompt  = fmt.Errorf("%w: prompt is required", ErrValidation)
	ErrInvalidStyle = fmt.Errorf("%w: unknown optimization style", ErrValidation)
)

// sends prompts to a text generator with the optimization instruction
type Optimizer struct {
	generator llm.TextGenerator
}

type Result struct {
	Text   string `json:"optimized_prompt"`
	Model  string `json:"model"`
	Style  Style  `json:"style"`
	Source string `json:"source"`
}
