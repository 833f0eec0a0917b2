package functions

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"codeberg.org/promptcraft/server/internal/errors"
	"codeberg.org/promptcraft/server/internal/logger"
	"codeberg.org/promptcraft/server/internal/mailer"
	"codeberg.org/promptcraft/server/internal/metrics"
	"codeberg.org/promptcraft/server/internal/optimizer"
	"github.com/gin-gonic/gin"
)

// OptimizePromptHandler godoc
// @Summary Optimize a prompt (function)
// @Description Stateless optimization with no quota. Missing credentials or a failing provider fall back to a deterministic local rewrite.
// @Tags functions
// @Accept json
// @Produce json
// @Param request body OptimizePromptRequest true "Prompt and style"
// @Success 200 {object} OptimizePromptResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /functions/optimize-prompt [post]
func OptimizePromptHandler(opt FallbackOptimizer, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req OptimizePromptRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			errors.BadRequest(c, "prompt is required", nil)
			return
		}

		if err := optimizer.Validate(req.Prompt); err != nil {
			errors.BadRequest(c, "prompt is required", nil)
			return
		}

		style, err := optimizer.ParseStyle(req.Style)
		if err != nil {
			errors.BadRequest(c, "unknown style", err)
			return
		}

		result, err := opt.OptimizeOrFallback(c.Request.Context(), req.Prompt, style)
		if result == nil {
			errors.BadRequest(c, "invalid optimization request", err)
			return
		}

		outcome := metrics.OutcomeSuccess
		if result.Source == optimizer.SourceFallback {
			outcome = metrics.OutcomeFallback
			logger.Warn("optimize-prompt fell back to local rewrite", "error", err)
		}

		m.Optimization(string(style), outcome)

		c.JSON(http.StatusOK, OptimizePromptResponse{
			OptimizedPrompt: result.Text,
			Source:          result.Source,
		})
	}
}

// SendEmailHandler godoc
// @Summary Send an email (function)
// @Description Relays a contact message through SMTP
// @Tags functions
// @Accept json
// @Produce json
// @Param request body SendEmailRequest true "Message"
// @Success 200 {object} SendEmailResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /functions/send-email [post]
func SendEmailHandler(sender Mailer, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SendEmailRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			errors.BadRequest(c, "subject and message are required", nil)
			return
		}

		if strings.TrimSpace(req.Subject) == "" || strings.TrimSpace(req.Message) == "" {
			errors.BadRequest(c, "subject and message are required", nil)
			return
		}

		to := strings.TrimSpace(req.To)
		if to == "" {
			to = sender.ContactAddress()
		}

		err := sender.Send(c.Request.Context(), mailer.Message{
			To:      to,
			Subject: req.Subject,
			Body:    composeBody(req),
			ReplyTo: strings.TrimSpace(req.ReplyTo),
		})

		switch {
		case err == nil:
			m.Email("contact", metrics.OutcomeSuccess)
			c.JSON(http.StatusOK, SendEmailResponse{Success: true})
		case stderrors.Is(err, mailer.ErrInvalidMessage):
			errors.BadRequest(c, "a valid recipient, subject and message are required", nil)
		case stderrors.Is(err, mailer.ErrNotConfigured):
			m.Email("contact", metrics.OutcomeError)
			errors.ConfigurationError(c, "email is not configured", err)
		default:
			m.Email("contact", metrics.OutcomeError)
			errors.UpstreamError(c, "failed to send email", err)
		}
	}
}

func composeBody(req SendEmailRequest) string {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return req.Message
	}

	return fmt.Sprintf("From: %s\n\n%s", name, req.Message)
}
