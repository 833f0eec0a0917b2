package users

import (
	"github.com/gin-gonic/gin"
)

// registers account routes behind the required-auth middleware
func RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc, accessor Accessor, ent Entitlements) {
	group := router.Group("/users", requireAuth)
	{
		group.GET("/me", GetCurrentUserHandler(accessor, ent))
		group.PATCH("/me/prefs", UpdatePrefsHandler(accessor, ent))
	}
}
