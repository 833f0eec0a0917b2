package auth

import (
	"strings"

	"codeberg.org/promptcraft/server/internal/errors"
	"codeberg.org/promptcraft/server/internal/logger"
	"github.com/gin-gonic/gin"
)

// validates JWT tokens and adds user info to context
func (i *TokenIssuer) Middleware(sessions SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			errors.Unauthorized(c, "authorization header required")
			c.Abort()
			return
		}

		token, ok := bearerToken(authHeader)
		if !ok {
			errors.Unauthorized(c, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := i.Validate(token)
		if err != nil {
			errors.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		if !i.sessionLive(c, sessions, claims) {
			errors.Unauthorized(c, "session has ended")
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// validates JWT if present but doesn't require it
func (i *TokenIssuer) OptionalMiddleware(sessions SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Next()
			return
		}

		claims, err := i.Validate(token)
		if err == nil && i.sessionLive(c, sessions, claims) {
			setClaims(c, claims)
		}

		c.Next()
	}
}

// with a session store wired, every token must reference a live session
func (i *TokenIssuer) sessionLive(c *gin.Context, sessions SessionChecker, claims *Claims) bool {
	if sessions == nil {
		return true
	}

	if claims.ID == "" {
		return false
	}

	exists, err := sessions.SessionExists(c.Request.Context(), claims.ID)
	if err != nil {
		logger.ErrorErr(err, "failed to check session", "session_id", claims.ID)
		return false
	}

	return exists
}

func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}

	return parts[1], true
}

func setClaims(c *gin.Context, claims *Claims) {
	c.Set(contextKeyUserID, claims.UserID)
	c.Set(contextKeyEmail, claims.Email)
	c.Set(contextKeySessionID, claims.ID)
}

// extracts user_id from context after Middleware
func GetUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(contextKeyUserID)
	return userID, userID != ""
}

// extracts the server-side session id from context after Middleware
func GetSessionID(c *gin.Context) (string, bool) {
	sessionID := c.GetString(contextKeySessionID)
	return sessionID, sessionID != ""
}
