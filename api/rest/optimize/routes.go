package optimize

import (
	"codeberg.org/promptcraft/server/internal/metrics"
	"github.com/gin-gonic/gin"
)

// registers optimization and usage routes; optionalAuth attaches the signed-in user when present
func RegisterRoutes(
	router *gin.RouterGroup,
	optionalAuth gin.HandlerFunc,
	opt Optimizer,
	gate Gate,
	resolver IdentityResolver,
	recorder HistoryRecorder,
	m *metrics.Metrics,
) {
	router.POST("/optimize", optionalAuth, OptimizeHandler(opt, gate, resolver, recorder, m))
	router.GET("/usage", optionalAuth, UsageHandler(gate, resolver))
}
