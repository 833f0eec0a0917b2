package auth

import (
	"github.com/gin-gonic/gin"
)

// registers all authentication routes; providers lists the enabled OAuth providers
func RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc, deps Deps, providers []string) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/magic-link", MagicLinkHandler(deps))
		authGroup.POST("/verify", VerifyHandler(deps))
		authGroup.POST("/login", LoginHandler(deps))
		authGroup.POST("/password", requireAuth, SetPasswordHandler(deps))
		authGroup.POST("/logout", requireAuth, LogoutHandler(deps))
		authGroup.GET("/:provider", BeginAuthHandler(providers))
		authGroup.GET("/:provider/callback", CallbackHandler(deps, providers))
	}
}
