package functions

import (
	"net/http"
	"time"

	"codeberg.org/promptcraft/server/internal/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// serverless-style endpoints are called from any origin
func corsMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodPost, http.MethodOptions},
		AllowHeaders:    []string{"Authorization", "Content-Type", "X-Client-Info", "Apikey"},
		MaxAge:          12 * time.Hour,
	})
}

// registers the function endpoints; preflight requests are answered by the CORS middleware
func RegisterRoutes(router *gin.RouterGroup, opt FallbackOptimizer, sender Mailer, m *metrics.Metrics) {
	group := router.Group("/functions", corsMiddleware())
	{
		group.POST("/optimize-prompt", OptimizePromptHandler(opt, m))
		group.OPTIONS("/optimize-prompt", preflight)
		group.POST("/send-email", SendEmailHandler(sender, m))
		group.OPTIONS("/send-email", preflight)
	}
}

// reached only when the request was not a CORS preflight
func preflight(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
