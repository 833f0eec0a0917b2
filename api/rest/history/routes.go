package history

import (
	"codeberg.org/promptcraft/server/internal/metrics"
	"github.com/gin-gonic/gin"
)

// registers history routes behind the required-auth middleware
func RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc, repo Repository, m *metrics.Metrics) {
	group := router.Group("/history", requireAuth)
	{
		group.GET("", ListHandler(repo))
		group.DELETE("", ClearHandler(repo, m))
	}
}
