package functions

import (
	"context"

	"codeberg.org/promptcraft/server/internal/mailer"
	"codeberg.org/promptcraft/server/internal/optimizer"
)

type FallbackOptimizer interface {
	OptimizeOrFallback(ctx context.Context, prompt string, style optimizer.Style) (*optimizer.Result, error)
}

type Mailer interface {
	mailer.Sender
	ContactAddress() string
}

// OptimizePromptRequest is the optimize-prompt function input
type OptimizePromptRequest struct {
	Prompt string `json:"prompt"`
	Style  string `json:"style"`
}

// OptimizePromptResponse reports whether the model or the local fallback produced the text
type OptimizePromptResponse struct {
	OptimizedPrompt string `json:"optimizedPrompt"`
	Source          string `json:"source" enums:"ai,fallback"`
}

// SendEmailRequest is the send-email function input; To defaults to the contact address
type SendEmailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Message string `json:"message"`
	Name    string `json:"name"`
	ReplyTo string `json:"replyTo"`
}

// SendEmailResponse acknowledges delivery to the relay
type SendEmailResponse struct {
	Success bool `json:"success"`
}
