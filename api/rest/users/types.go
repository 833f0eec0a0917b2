package users

import (
	"context"

	"codeberg.org/promptcraft/server/promptcraft/users"
	"github.com/gin-gonic/gin"
)

type Accessor interface {
	CurrentUser(c *gin.Context) (*users.User, error)
	UpdatePrefs(ctx context.Context, userID string, patch map[string]any) (*users.User, error)
}

// rewrites the mirrored premium signals and reports the authoritative one
type Entitlements interface {
	IsPremium(u *users.User) bool
	Reconcile(ctx context.Context, u *users.User) (*users.User, error)
}

// UserResponse wraps user data with the effective entitlement
type UserResponse struct {
	User      *users.User `json:"user"`
	IsPremium bool        `json:"is_premium"`
}

// UpdatePrefsRequest merges keys into the preference blob
type UpdatePrefsRequest struct {
	Prefs map[string]any `json:"prefs" binding:"required"`
}
