package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// lifetime of issued tokens and their server-side sessions
	TokenTTL = 7 * 24 * time.Hour

	// lifetime of a magic sign-in link
	MagicLinkTTL = 15 * time.Minute

	// shortest password accepted for email/password sign-in
	MinPasswordLength = 8

	contextKeyUserID    = "user_id"
	contextKeyEmail     = "user_email"
	contextKeySessionID = "session_id"
)

// represents JWT claims; RegisteredClaims.ID carries the server-side session id
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// signs and validates bearer tokens
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// reports whether the session behind a token is still live (logout revokes it)
type SessionChecker interface {
	SessionExists(ctx context.Context, sessionID string) (bool, error)
}
