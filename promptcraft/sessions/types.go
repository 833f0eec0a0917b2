package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrMagicLinkInvalid = errors.New("magic link is invalid or expired")
)

type Repository struct {
	db *pgxpool.Pool
}

// server-side record behind an issued token
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Provider  string    `json:"provider"`
	UserAgent string    `json:"user_agent"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// one-time sign-in secret; only its hash is stored
type MagicLink struct {
	ID         string
	UserID     string
	SecretHash string
	ExpiresAt  time.Time
	ConsumedAt *time.Time
	CreatedAt  time.Time
}

// removes expired rows; implemented by Repository
type Purger interface {
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error)
	DeleteExpiredMagicLinks(ctx context.Context, before time.Time) (int64, error)
}
