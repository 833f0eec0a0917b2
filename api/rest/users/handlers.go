package users

import (
	stderrors "errors"
	"net/http"

	"codeberg.org/promptcraft/server/internal/errors"
	"codeberg.org/promptcraft/server/internal/identity"
	"codeberg.org/promptcraft/server/internal/logger"
	"codeberg.org/promptcraft/server/promptcraft/users"
	"github.com/gin-gonic/gin"
)

// GetCurrentUserHandler godoc
// @Summary Get current user
// @Description Get the authenticated user's profile, preferences and premium status
// @Tags users
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/users/me [get]
// @Security BearerAuth
func GetCurrentUserHandler(accessor Accessor, ent Entitlements) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, accessor)
		if !ok {
			return
		}

		reconciled, err := ent.Reconcile(c.Request.Context(), user)
		if err != nil {
			// mirrors are advisory; serve the stored user
			logger.ErrorErr(err, "failed to reconcile entitlement", "user_id", user.ID)
		} else {
			user = reconciled
		}

		c.JSON(http.StatusOK, UserResponse{
			User:      user,
			IsPremium: ent.IsPremium(user),
		})
	}
}

// UpdatePrefsHandler godoc
// @Summary Update preferences
// @Description Merge key/values into the authenticated user's preferences. Plan-related keys are managed by the server.
// @Tags users
// @Accept json
// @Produce json
// @Param request body UpdatePrefsRequest true "Preference patch"
// @Success 200 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/users/me/prefs [patch]
// @Security BearerAuth
func UpdatePrefsHandler(accessor Accessor, ent Entitlements) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, accessor)
		if !ok {
			return
		}

		var req UpdatePrefsRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		updated, err := accessor.UpdatePrefs(c.Request.Context(), user.ID, req.Prefs)
		if err != nil {
			if stderrors.Is(err, identity.ErrReservedPref) {
				errors.BadRequest(c, "preference key is managed by the server", err)
				return
			}

			errors.InternalError(c, "failed to update preferences", err)
			return
		}

		c.JSON(http.StatusOK, UserResponse{
			User:      updated,
			IsPremium: ent.IsPremium(updated),
		})
	}
}

func currentUser(c *gin.Context, accessor Accessor) (*users.User, bool) {
	user, err := accessor.CurrentUser(c)

	switch {
	case err == nil:
		return user, true
	case stderrors.Is(err, identity.ErrNotSignedIn):
		errors.Unauthorized(c, "")
	case stderrors.Is(err, users.ErrUserNotFound):
		errors.NotFound(c, "user")
	default:
		errors.InternalError(c, "failed to load user", err)
	}

	return nil, false
}
