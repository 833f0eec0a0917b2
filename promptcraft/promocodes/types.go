package promocodes

import (
	"context"
	"errors"
	"time"

	"codeberg.org/promptcraft/server/internal/entitlement"
	"codeberg.org/promptcraft/server/promptcraft/users"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrInvalidCode     = errors.New("promo code is invalid")
	ErrCodeExhausted   = errors.New("promo code has no redemptions left")
	ErrAlreadyPremium  = errors.New("account is already premium")
	ErrAlreadyRedeemed = errors.New("promo code already redeemed by this account")
)

type Repository struct {
	db *pgxpool.Pool
}

// atomically claims a redemption slot and grants premium
type Claimer interface {
	Claim(ctx context.Context, userID, code string, now time.Time) (*time.Time, error)
}

// user lookups plus the mirrors entitlement reconciles
type UserStore interface {
	entitlement.Store
	FindByID(ctx context.Context, userID string) (*users.User, error)
}

type Service struct {
	codes   Claimer
	users   UserStore
	checker *entitlement.Checker
	now     func() time.Time
}

type RedeemRequest struct {
	Code string `json:"code" binding:"required"`
}
