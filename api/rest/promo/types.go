package promo

import (
	"context"

	"codeberg.org/promptcraft/server/promptcraft/users"
	"github.com/gin-gonic/gin"
)

type Redeemer interface {
	Redeem(ctx context.Context, u *users.User, code string) (*users.User, error)
}

type Accessor interface {
	CurrentUser(c *gin.Context) (*users.User, error)
}

// RedeemRequest carries the code to redeem
type RedeemRequest struct {
	Code string `json:"code" binding:"required"`
}

// RedeemResponse is the upgraded account
type RedeemResponse struct {
	User      *users.User `json:"user"`
	IsPremium bool        `json:"is_premium"`
}
