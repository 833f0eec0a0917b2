package optimize

import (
	stderrors "errors"
	"net/http"
	"time"

	"codeberg.org/promptcraft/server/internal/errors"
	"codeberg.org/promptcraft/server/internal/logger"
	"codeberg.org/promptcraft/server/internal/metrics"
	"codeberg.org/promptcraft/server/internal/optimizer"
	"codeberg.org/promptcraft/server/internal/quota"
	"codeberg.org/promptcraft/server/promptcraft/history"
	"github.com/gin-gonic/gin"
)

// OptimizeHandler godoc
// @Summary Optimize a prompt
// @Description Rewrite a prompt in the requested style. Anonymous and free accounts get a daily quota; premium accounts are unlimited.
// @Tags optimize
// @Accept json
// @Produce json
// @Param X-Timezone header string false "IANA timezone of the caller, used for the daily quota"
// @Param request body Request true "Prompt and style"
// @Success 200 {object} Response
// @Failure 400 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/optimize [post]
// @Security BearerAuth
func OptimizeHandler(
	opt Optimizer,
	gate Gate,
	resolver IdentityResolver,
	recorder HistoryRecorder,
	m *metrics.Metrics,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req Request

		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		style, err := optimizer.ParseStyle(req.Style)
		if err != nil {
			errors.BadRequest(c, "unknown style", err)
			return
		}

		if err := optimizer.Validate(req.Prompt); err != nil {
			errors.BadRequest(c, "prompt is required", nil)
			return
		}

		ctx := c.Request.Context()

		id, err := resolver.Current(c)
		if err != nil {
			errors.InternalError(c, "failed to resolve caller", err)
			return
		}

		decision, err := gate.MayOptimize(ctx, id)
		if err != nil {
			errors.InternalError(c, "failed to check usage", err)
			return
		}

		if !decision.Allowed {
			m.QuotaDenied(id.IsAnonymous())
			m.Optimization(string(style), metrics.OutcomeDenied)
			errors.QuotaExceeded(c, decision.Notice)
			return
		}

		started := time.Now()

		result, err := opt.Optimize(ctx, req.Prompt, style)
		if err != nil {
			m.Optimization(string(style), metrics.OutcomeError)
			respondOptimizeError(c, err)
			return
		}

		m.ObserveGeneration(result.Model, time.Since(started))

		if _, err := gate.Increment(ctx, id); err != nil {
			if stderrors.Is(err, quota.ErrQuotaExceeded) {
				// a concurrent request took the last slot
				m.QuotaDenied(id.IsAnonymous())
				errors.QuotaExceeded(c, quota.UpgradeNotice)
				return
			}

			logger.ErrorErr(err, "failed to record usage", "identity", id.Key())
		}

		if !id.IsAnonymous() && recorder != nil {
			_, err := recorder.Create(ctx, id.UserID, history.CreateEntryRequest{
				OriginalPrompt:  req.Prompt,
				OptimizedPrompt: result.Text,
				Style:           string(style),
				Model:           result.Model,
			})

			if err != nil {
				logger.ErrorErr(err, "failed to save history entry", "user_id", id.UserID)
			}
		}

		usage, err := gate.Usage(ctx, id)
		if err != nil {
			logger.ErrorErr(err, "failed to read usage", "identity", id.Key())
		}

		m.Optimization(string(style), metrics.OutcomeSuccess)

		c.JSON(http.StatusOK, Response{
			OptimizedPrompt: result.Text,
			Model:           result.Model,
			Style:           string(style),
			Usage:           usage,
		})
	}
}

// UsageHandler godoc
// @Summary Get today's usage
// @Description Daily optimization usage for the caller; limit and remaining are -1 for premium accounts
// @Tags optimize
// @Produce json
// @Param X-Timezone header string false "IANA timezone of the caller"
// @Success 200 {object} quota.Decision
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/usage [get]
// @Security BearerAuth
func UsageHandler(gate Gate, resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := resolver.Current(c)
		if err != nil {
			errors.InternalError(c, "failed to resolve caller", err)
			return
		}

		decision, err := gate.Usage(c.Request.Context(), id)
		if err != nil {
			errors.InternalError(c, "failed to read usage", err)
			return
		}

		c.JSON(http.StatusOK, decision)
	}
}

func respondOptimizeError(c *gin.Context, err error) {
	switch {
	case stderrors.Is(err, optimizer.ErrValidation):
		errors.BadRequest(c, "invalid optimization request", err)
	case stderrors.Is(err, optimizer.ErrConfiguration):
		errors.ConfigurationError(c, "prompt optimization is not configured", err)
	case stderrors.Is(err, optimizer.ErrUpstream):
		errors.UpstreamError(c, "failed to optimize prompt", err)
	default:
		errors.InternalError(c, "failed to optimize prompt", err)
	}
}
