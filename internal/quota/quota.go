package quota

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrUnknownIdentity = errors.New("identity has neither an account nor a device id")

// creates a gate enforcing limit optimizations per calendar day
func NewGate(store Store, premium PremiumChecker, limit int, defaultLoc *time.Location) *Gate {
	if defaultLoc == nil {
		defaultLoc = time.UTC
	}

	if limit < 0 {
		limit = DefaultDailyLimit
	}

	return &Gate{
		store:      store,
		premium:    premium,
		limit:      limit,
		defaultLoc: defaultLoc,
		now:        time.Now,
	}
}

// overrides the clock (tests)
func (g *Gate) WithClock(now func() time.Time) *Gate {
	g.now = now
	return g
}

// returns the identity's current calendar date as YYYY-MM-DD
func (g *Gate) Today(id Identity) string {
	loc := id.Location
	if loc == nil {
		loc = g.defaultLoc
	}

	return g.now().In(loc).Format(dateLayout)
}

// decides whether the identity may run another optimization today; never mutates state
func (g *Gate) MayOptimize(ctx context.Context, id Identity) (Decision, error) {
	today := g.Today(id)

	count, err := g.currentCount(ctx, id, today)
	if err != nil {
		return Decision{}, err
	}

	if g.isPremium(id) {
		return Decision{
			Allowed:   true,
			Premium:   true,
			Today:     today,
			Count:     count,
			Limit:     Unlimited,
			Remaining: Unlimited,
		}, nil
	}

	d := Decision{
		Allowed:   count < g.limit,
		Today:     today,
		Count:     count,
		Limit:     g.limit,
		Remaining: max(0, g.limit-count),
	}

	if !d.Allowed {
		d.Notice = UpgradeNotice
	}

	return d, nil
}

// records one successful optimization for the identity
func (g *Gate) Increment(ctx context.Context, id Identity) (UsageRecord, error) {
	if id.IsAnonymous() && id.DeviceID == "" {
		return UsageRecord{}, ErrUnknownIdentity
	}

	today := g.Today(id)

	limit := g.limit
	if g.isPremium(id) {
		limit = Unlimited
	}

	if limit == 0 {
		return UsageRecord{Date: today}, ErrQuotaExceeded
	}

	rec, err := g.store.IncrementWithCeiling(ctx, id.Key(), today, limit)
	if err != nil && !errors.Is(err, ErrQuotaExceeded) {
		return UsageRecord{}, fmt.Errorf("failed to increment usage: %w", err)
	}

	return rec, err
}

// returns the display summary for the identity (same numbers as MayOptimize)
func (g *Gate) Usage(ctx context.Context, id Identity) (Decision, error) {
	return g.MayOptimize(ctx, id)
}

func (g *Gate) isPremium(id Identity) bool {
	return g.premium != nil && id.User != nil && g.premium.IsPremium(id.User)
}

// loads the stored count, treating a record from another day as zero
func (g *Gate) currentCount(ctx context.Context, id Identity, today string) (int, error) {
	if id.IsAnonymous() && id.DeviceID == "" {
		return 0, ErrUnknownIdentity
	}

	rec, ok, err := g.store.Get(ctx, id.Key())
	if err != nil {
		return 0, fmt.Errorf("failed to load usage: %w", err)
	}

	if !ok || rec.Date != today {
		return 0, nil
	}

	return rec.Count, nil
}
