package quota

import (
	"context"
	"errors"
	"time"

	"codeberg.org/promptcraft/server/promptcraft/users"
)

const (
	// free optimizations per calendar day
	DefaultDailyLimit = 5

	// Limit/Remaining value reported for premium identities
	Unlimited = -1

	dateLayout = "2006-01-02"

	UpgradeNotice = "You've used all of today's free optimizations. Redeem a promo code or upgrade to premium for unlimited optimizations."
)

var ErrQuotaExceeded = errors.New("daily optimization limit reached")

// daily counter for one identity; Count only means something when Date is today
type UsageRecord struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// persists usage records keyed by identity
type Store interface {
	// returns the stored record, ok=false when none exists
	Get(ctx context.Context, key string) (UsageRecord, bool, error)

	// atomically resets a stale record to today and increments it, unless the
	// count has reached limit (limit < 0 means no ceiling); on refusal the
	// record is left untouched and ErrQuotaExceeded is returned with it
	IncrementWithCeiling(ctx context.Context, key, today string, limit int) (UsageRecord, error)
}

// decides premium status for an account
type PremiumChecker interface {
	IsPremium(u *users.User) bool
}

// the caller of a quota check: a signed-in account or an anonymous device
type Identity struct {
	UserID   string
	DeviceID string
	User     *users.User

	// caller's local calendar; nil uses the gate default
	Location *time.Location
}

// result of a quota check
type Decision struct {
	Allowed   bool   `json:"allowed"`
	Premium   bool   `json:"premium"`
	Today     string `json:"today"`
	Count     int    `json:"count"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
	Notice    string `json:"notice,omitempty"`
}

type Gate struct {
	store      Store
	premium    PremiumChecker
	limit      int
	defaultLoc *time.Location
	now        func() time.Time
}
