package auth

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"codeberg.org/promptcraft/server/internal/auth"
	"codeberg.org/promptcraft/server/internal/errors"
	"codeberg.org/promptcraft/server/internal/logger"
	"codeberg.org/promptcraft/server/internal/mailer"
	"codeberg.org/promptcraft/server/promptcraft/sessions"
	"codeberg.org/promptcraft/server/promptcraft/users"
	"github.com/gin-gonic/gin"
	"github.com/markbates/goth/gothic"
)

const (
	providerEmail    = "email"
	providerPassword = "password"
)

// MagicLinkHandler godoc
// @Summary Request a magic sign-in link
// @Description Emails a one-time link valid for 15 minutes. The account is created on first use.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body MagicLinkRequest true "Email address"
// @Success 202 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/auth/magic-link [post]
func MagicLinkHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req MagicLinkRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		ctx := c.Request.Context()
		email := strings.ToLower(strings.TrimSpace(req.Email))

		user, err := deps.Users.FindOrCreateByEmail(ctx, email)
		if err != nil {
			errors.InternalError(c, "failed to create user", err)
			return
		}

		secret, hash, err := auth.NewMagicSecret()
		if err != nil {
			errors.InternalError(c, "failed to create sign-in link", err)
			return
		}

		if _, err := deps.Sessions.CreateMagicLink(ctx, user.ID, hash, auth.MagicLinkTTL); err != nil {
			errors.InternalError(c, "failed to create sign-in link", err)
			return
		}

		err = deps.Mailer.Send(ctx, mailer.Message{
			To:      email,
			Subject: "Your sign-in link",
			Body:    magicLinkBody(verifyURL(deps.BaseURL, user.ID, secret)),
		})

		if err != nil {
			if stderrors.Is(err, mailer.ErrNotConfigured) {
				errors.ConfigurationError(c, "email sign-in is not configured", err)
				return
			}

			errors.UpstreamError(c, "failed to send sign-in link", err)
			return
		}

		c.JSON(http.StatusAccepted, MessageResponse{Message: "sign-in link sent"})
	}
}

// VerifyHandler godoc
// @Summary Complete magic-link sign-in
// @Description Consumes the one-time secret and returns a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body VerifyRequest true "User id and secret from the link"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/auth/verify [post]
func VerifyHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VerifyRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		// a tampered link must not reach the uuid column
		if !errors.IsValidUUID(req.UserID) {
			errors.Unauthorized(c, "sign-in link is invalid or expired")
			return
		}

		ctx := c.Request.Context()

		if err := deps.Sessions.ConsumeMagicLink(ctx, req.UserID, auth.HashSecret(req.Secret)); err != nil {
			if stderrors.Is(err, sessions.ErrMagicLinkInvalid) {
				errors.Unauthorized(c, "sign-in link is invalid or expired")
				return
			}

			errors.InternalError(c, "failed to verify sign-in link", err)
			return
		}

		user, err := deps.Users.FindByID(ctx, req.UserID)
		if err != nil {
			errors.InternalError(c, "failed to load user", err)
			return
		}

		respondWithSession(c, deps, user, providerEmail)
	}
}

// SetPasswordHandler godoc
// @Summary Set a password
// @Description Enables email/password sign-in for the authenticated account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SetPasswordRequest true "New password"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/auth/password [post]
// @Security BearerAuth
func SetPasswordHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		var req SetPasswordRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			if stderrors.Is(err, auth.ErrPasswordTooShort) {
				errors.BadRequest(c, err.Error(), nil)
				return
			}

			errors.InternalError(c, "failed to set password", err)
			return
		}

		if err := deps.Users.SetPasswordHash(c.Request.Context(), userID, hash); err != nil {
			errors.InternalError(c, "failed to set password", err)
			return
		}

		c.JSON(http.StatusOK, MessageResponse{Message: "password updated"})
	}
}

// LoginHandler godoc
// @Summary Sign in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/auth/login [post]
func LoginHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		user, err := deps.Users.FindByEmail(c.Request.Context(), email)
		if err != nil && !stderrors.Is(err, users.ErrUserNotFound) {
			errors.InternalError(c, "failed to sign in", err)
			return
		}

		// unknown accounts and wrong passwords look the same
		hash := ""
		if user != nil {
			hash = user.PasswordHash
		}

		if err := auth.CheckPassword(hash, req.Password); err != nil {
			errors.Unauthorized(c, auth.ErrPasswordMismatch.Error())
			return
		}

		respondWithSession(c, deps, user, providerPassword)
	}
}

// LogoutHandler godoc
// @Summary Logout
// @Description Ends the server-side session behind the bearer token
// @Tags auth
// @Produce json
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/v1/auth/logout [post]
// @Security BearerAuth
func LogoutHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		if sessionID, ok := auth.GetSessionID(c); ok {
			err := deps.Sessions.Delete(c.Request.Context(), sessionID, userID)
			if err != nil && !stderrors.Is(err, sessions.ErrSessionNotFound) {
				errors.InternalError(c, "failed to end session", err)
				return
			}
		}

		if err := gothic.Logout(c.Writer, c.Request); err != nil {
			logger.ErrorErr(err, "failed to logout user from gothic session")
		}

		c.JSON(http.StatusOK, MessageResponse{Message: "logged out successfully"})
	}
}

// BeginAuthHandler godoc
// @Summary Start OAuth authentication
// @Description Begin OAuth authentication flow with specified provider (google, github)
// @Tags auth
// @Param provider path string true "OAuth provider" Enums(google, github)
// @Success 302 {string} string "Redirect to OAuth provider"
// @Failure 400 {object} errors.ErrorResponse
// @Router /api/v1/auth/{provider} [get]
func BeginAuthHandler(providers []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := c.Param("provider")

		if !slices.Contains(providers, provider) {
			errors.BadRequest(c, "invalid provider", nil)
			return
		}

		// set provider in query for gothic
		q := c.Request.URL.Query()
		q.Add("provider", provider)
		c.Request.URL.RawQuery = q.Encode()

		gothic.BeginAuthHandler(c.Writer, c.Request)
	}
}

// CallbackHandler godoc
// @Summary OAuth callback
// @Description OAuth provider callback. Returns user data and JWT token
// @Tags auth
// @Produce json
// @Param provider path string true "OAuth provider" Enums(google, github)
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/auth/{provider}/callback [get]
func CallbackHandler(deps Deps, providers []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := c.Param("provider")

		if !slices.Contains(providers, provider) {
			errors.BadRequest(c, "invalid provider", nil)
			return
		}

		q := c.Request.URL.Query()
		q.Add("provider", provider)
		c.Request.URL.RawQuery = q.Encode()

		gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
		if err != nil {
			errors.InternalError(c, "authentication failed", err)
			return
		}

		if gothUser.Email == "" {
			errors.BadRequest(c, "provider did not share an email address", nil)
			return
		}

		user, err := deps.Users.FindOrCreateByProvider(
			c.Request.Context(),
			gothUser.Provider,
			gothUser.UserID,
			strings.ToLower(gothUser.Email),
			gothUser.Name,
		)

		if err != nil {
			errors.InternalError(c, "failed to create user", err)
			return
		}

		respondWithSession(c, deps, user, gothUser.Provider)
	}
}

// creates the server-side session and returns a token bound to it
func respondWithSession(c *gin.Context, deps Deps, user *users.User, provider string) {
	session, err := deps.Sessions.Create(
		c.Request.Context(),
		user.ID,
		provider,
		c.Request.UserAgent(),
		deps.Tokens.TTL(),
	)

	if err != nil {
		errors.InternalError(c, "failed to create session", err)
		return
	}

	token, expiresAt, err := deps.Tokens.Issue(user.ID, user.Email, session.ID)
	if err != nil {
		errors.InternalError(c, "failed to generate token", err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		User:      user,
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

func verifyURL(baseURL, userID, secret string) string {
	q := url.Values{}
	q.Set("userId", userID)
	q.Set("secret", secret)

	return strings.TrimRight(baseURL, "/") + "/verify?" + q.Encode()
}

func magicLinkBody(link string) string {
	return fmt.Sprintf("Click the link below to sign in. It expires in %d minutes.\n\n%s\n\nIf you did not request this, you can ignore this email.\n",
		int(auth.MagicLinkTTL.Minutes()), link)
}
