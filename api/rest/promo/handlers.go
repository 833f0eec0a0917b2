package promo

import (
	stderrors "errors"
	"net/http"

	"codeberg.org/promptcraft/server/internal/errors"
	"codeberg.org/promptcraft/server/internal/identity"
	"codeberg.org/promptcraft/server/internal/metrics"
	"codeberg.org/promptcraft/server/promptcraft/promocodes"
	"github.com/gin-gonic/gin"
)

// RedeemHandler godoc
// @Summary Redeem a promo code
// @Description Grants premium to the authenticated user
// @Tags promo
// @Accept json
// @Produce json
// @Param request body RedeemRequest true "Promo code"
// @Success 200 {object} RedeemResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/promo/redeem [post]
// @Security BearerAuth
func RedeemHandler(accessor Accessor, redeemer Redeemer, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RedeemRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		user, err := accessor.CurrentUser(c)
		if err != nil {
			if stderrors.Is(err, identity.ErrNotSignedIn) {
				errors.Unauthorized(c, "")
				return
			}

			errors.InternalError(c, "failed to load user", err)
			return
		}

		updated, err := redeemer.Redeem(c.Request.Context(), user, req.Code)

		switch {
		case err == nil:
			m.PromoRedemption(metrics.OutcomeSuccess)
			c.JSON(http.StatusOK, RedeemResponse{User: updated, IsPremium: true})
		case stderrors.Is(err, promocodes.ErrInvalidCode):
			m.PromoRedemption(metrics.OutcomeDenied)
			errors.InvalidPromoCode(c, "promo code is invalid or inactive")
		case stderrors.Is(err, promocodes.ErrCodeExhausted):
			m.PromoRedemption(metrics.OutcomeDenied)
			errors.InvalidPromoCode(c, "promo code has no redemptions left")
		case stderrors.Is(err, promocodes.ErrAlreadyPremium):
			errors.Conflict(c, "account is already premium")
		case stderrors.Is(err, promocodes.ErrAlreadyRedeemed):
			errors.Conflict(c, "promo code already redeemed")
		default:
			m.PromoRedemption(metrics.OutcomeError)
			errors.InternalError(c, "failed to redeem promo code", err)
		}
	}
}
