package users

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	PlanFree    = "free"
	PlanPremium = "premium"

	// label mirrored from the plan for clients that only read labels
	LabelPremium = "premium"

	// preference keys written alongside the plan
	PrefPlan          = "plan"
	PrefPromoCode     = "promoCode"
	PrefPremiumExpiry = "premiumExpiry"
)

// handles user database operations
type Repository struct {
	db *pgxpool.Pool
}

// represents an account in the identity backend
type User struct {
	ID               string         `json:"id"`
	Email            string         `json:"email"`
	Name             string         `json:"name"`
	Provider         string         `json:"provider"`
	ProviderID       string         `json:"-"`
	Labels           []string       `json:"labels"`
	Prefs            map[string]any `json:"prefs"`
	Plan             string         `json:"plan"`
	PremiumExpiresAt *time.Time     `json:"premium_expires_at,omitempty"`
	PasswordHash     string         `json:"-"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// reports whether the user carries the given label
func (u *User) HasLabel(label string) bool {
	for _, l := range u.Labels {
		if l == label {
			return true
		}
	}

	return false
}

// returns a preference value as a string, or "" when unset
func (u *User) PrefString(key string) string {
	if u.Prefs == nil {
		return ""
	}

	v, ok := u.Prefs[key].(string)
	if !ok {
		return ""
	}

	return v
}
