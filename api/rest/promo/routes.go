package promo

import (
	"codeberg.org/promptcraft/server/internal/metrics"
	"github.com/gin-gonic/gin"
)

// registers promo code routes behind the required-auth middleware
func RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc, accessor Accessor, redeemer Redeemer, m *metrics.Metrics) {
	router.POST("/promo/redeem", requireAuth, RedeemHandler(accessor, redeemer, m))
}
