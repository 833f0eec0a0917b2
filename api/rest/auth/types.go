package auth

import (
	"context"
	"time"

	"codeberg.org/promptcraft/server/internal/auth"
	"codeberg.org/promptcraft/server/internal/mailer"
	"codeberg.org/promptcraft/server/promptcraft/sessions"
	"codeberg.org/promptcraft/server/promptcraft/users"
)

type UserStore interface {
	FindOrCreateByEmail(ctx context.Context, email string) (*users.User, error)
	FindOrCreateByProvider(ctx context.Context, provider, providerID, email, name string) (*users.User, error)
	FindByID(ctx context.Context, userID string) (*users.User, error)
	FindByEmail(ctx context.Context, email string) (*users.User, error)
	SetPasswordHash(ctx context.Context, userID, hash string) error
}

type SessionStore interface {
	Create(ctx context.Context, userID, provider, userAgent string, ttl time.Duration) (*sessions.Session, error)
	Delete(ctx context.Context, sessionID, userID string) error
	CreateMagicLink(ctx context.Context, userID, secretHash string, ttl time.Duration) (*sessions.MagicLink, error)
	ConsumeMagicLink(ctx context.Context, userID, secretHash string) error
}

// everything the auth handlers need
type Deps struct {
	Users    UserStore
	Sessions SessionStore
	Mailer   mailer.Sender
	Tokens   *auth.TokenIssuer
	BaseURL  string
}

// AuthResponse returned after a successful sign-in
type AuthResponse struct {
	User      *users.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// MessageResponse for simple success messages
type MessageResponse struct {
	Message string `json:"message"`
}

// MagicLinkRequest starts email sign-in
type MagicLinkRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// VerifyRequest completes email sign-in with the secret from the link
type VerifyRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Secret string `json:"secret" binding:"required"`
}

// SetPasswordRequest adds email/password sign-in to an account
type SetPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

// LoginRequest signs in with email and password
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
