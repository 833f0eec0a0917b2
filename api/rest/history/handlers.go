package history

import (
	"net/http"

	"codeberg.org/promptcraft/server/internal/auth"
	"codeberg.org/promptcraft/server/internal/errors"
	"codeberg.org/promptcraft/server/internal/metrics"
	"github.com/gin-gonic/gin"
)

// ListHandler godoc
// @Summary List optimization history
// @Description Returns the signed-in user's 20 most recent optimizations, newest first
// @Tags history
// @Produce json
// @Success 200 {object} ListResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/history [get]
// @Security BearerAuth
func ListHandler(repo Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		entries, err := repo.List(c.Request.Context(), userID)
		if err != nil {
			errors.InternalError(c, "failed to load history", err)
			return
		}

		c.JSON(http.StatusOK, ListResponse{Entries: entries})
	}
}

// ClearHandler godoc
// @Summary Clear optimization history
// @Description Deletes up to 100 of the signed-in user's entries. Best effort: the result reports how many deletes failed.
// @Tags history
// @Produce json
// @Success 200 {object} history.ClearResult
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/history [delete]
// @Security BearerAuth
func ClearHandler(repo Repository, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		result, err := repo.Clear(c.Request.Context(), userID)
		if err != nil {
			errors.InternalError(c, "failed to clear history", err)
			return
		}

		m.HistoryCleared(result.Deleted, result.Failed)
		c.JSON(http.StatusOK, result)
	}
}
