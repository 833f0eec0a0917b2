package quota

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"codeberg.org/promptcraft/server/promptcraft/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// treats plan == premium as premium
type planChecker struct{}

func (planChecker) IsPremium(u *users.User) bool {
	return u != nil && u.Plan == users.PlanPremium
}

func fixedClock(date string) func() time.Time {
	t, err := time.Parse("2006-01-02 15:04", date+" 12:00")
	if err != nil {
		panic(err)
	}

	return func() time.Time { return t }
}

func newTestGate(store Store, date string) *Gate {
	return NewGate(store, planChecker{}, DefaultDailyLimit, time.UTC).WithClock(fixedClock(date))
}

func TestAnonymousFreshIdentity_FiveAllowedThenDenied(t *testing.T) {
	ctx := context.Background()
	gate := newTestGate(NewMemoryStore(), "2024-01-02")
	id := Anonymous("device-1", nil)

	for i := 1; i <= 5; i++ {
		d, err := gate.MayOptimize(ctx, id)
		require.NoError(t, err)
		require.True(t, d.Allowed, "attempt %d should be allowed", i)

		_, err = gate.Increment(ctx, id)
		require.NoError(t, err)
	}

	d, err := gate.MayOptimize(ctx, id)
	require.NoError(t, err)

	assert.False(t, d.Allowed)
	assert.Equal(t, 5, d.Count)
	assert.Equal(t, 0, d.Remaining)
	assert.Equal(t, UpgradeNotice, d.Notice)
}

func TestStaleAccountRecord_IsLogicallyReset(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	user := &users.User{ID: "u1", Plan: users.PlanFree}
	id := Account(user, nil)
	store.Put(id.Key(), UsageRecord{Date: "2024-01-01", Count: 5})

	gate := newTestGate(store, "2024-01-02")

	d, err := gate.MayOptimize(ctx, id)
	require.NoError(t, err)

	assert.True(t, d.Allowed)
	assert.Equal(t, 0, d.Count)

	// reading must not rewrite the stale record
	rec, ok, err := store.Get(ctx, id.Key())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, UsageRecord{Date: "2024-01-01", Count: 5}, rec)

	// the next increment resets then counts
	rec, err = gate.Increment(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, UsageRecord{Date: "2024-01-02", Count: 1}, rec)
}

func TestStaleRecord_AnyCountAllowed(t *testing.T) {
	for _, count := range []int{0, 4, 5, 99} {
		store := NewMemoryStore()
		id := Anonymous("d", nil)
		store.Put(id.Key(), UsageRecord{Date: "2023-12-31", Count: count})

		d, err := newTestGate(store, "2024-01-02").MayOptimize(context.Background(), id)
		require.NoError(t, err)
		assert.True(t, d.Allowed, "stale count %d", count)
	}
}

func TestPremium_AlwaysAllowed(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	user := &users.User{ID: "u1", Plan: users.PlanPremium}
	id := Account(user, nil)
	store.Put(id.Key(), UsageRecord{Date: "2024-01-02", Count: 500})

	gate := newTestGate(store, "2024-01-02")

	d, err := gate.MayOptimize(ctx, id)
	require.NoError(t, err)

	assert.True(t, d.Allowed)
	assert.True(t, d.Premium)
	assert.Equal(t, Unlimited, d.Limit)
	assert.Equal(t, Unlimited, d.Remaining)

	// premium increments are unbounded
	rec, err := gate.Increment(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 501, rec.Count)
}

func TestNonPremiumAtCap_Denied(t *testing.T) {
	store := NewMemoryStore()
	id := Account(&users.User{ID: "u2", Plan: users.PlanFree, Labels: []string{"premium"}}, nil)
	store.Put(id.Key(), UsageRecord{Date: "2024-01-02", Count: 5})

	d, err := newTestGate(store, "2024-01-02").MayOptimize(context.Background(), id)
	require.NoError(t, err)

	assert.False(t, d.Allowed)
}

func TestMayOptimize_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	id := Anonymous("d", nil)
	store.Put(id.Key(), UsageRecord{Date: "2024-01-02", Count: 3})
	gate := newTestGate(store, "2024-01-02")

	first, err := gate.MayOptimize(ctx, id)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		d, err := gate.MayOptimize(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, first, d)
	}
}

func TestIncrement_RefusedAtCeiling(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	id := Anonymous("d", nil)
	store.Put(id.Key(), UsageRecord{Date: "2024-01-02", Count: 5})

	rec, err := newTestGate(store, "2024-01-02").Increment(ctx, id)

	assert.True(t, errors.Is(err, ErrQuotaExceeded))
	assert.Equal(t, 5, rec.Count)
}

func TestIncrement_ConcurrentNeverLosesOrOvershoots(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	gate := newTestGate(store, "2024-01-02")
	id := Anonymous("tabs", nil)

	var wg sync.WaitGroup
	var ok, refused atomic.Int32

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := gate.Increment(ctx, id)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, ErrQuotaExceeded):
				refused.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 5, ok.Load())
	assert.EqualValues(t, 45, refused.Load())

	rec, _, err := store.Get(ctx, id.Key())
	require.NoError(t, err)
	assert.Equal(t, 5, rec.Count)
}

func TestToday_UsesCallerLocation(t *testing.T) {
	// 2024-01-02 02:00 UTC is still 2024-01-01 in New York
	utc := time.Date(2024, 1, 2, 2, 0, 0, 0, time.UTC)
	gate := NewGate(NewMemoryStore(), planChecker{}, 5, time.UTC).WithClock(func() time.Time { return utc })

	ny := time.FixedZone("EST", -5*60*60)

	assert.Equal(t, "2024-01-02", gate.Today(Anonymous("d", nil)))
	assert.Equal(t, "2024-01-01", gate.Today(Anonymous("d", ny)))
}

func TestUnknownIdentity(t *testing.T) {
	gate := newTestGate(NewMemoryStore(), "2024-01-02")

	_, err := gate.MayOptimize(context.Background(), Identity{})
	assert.ErrorIs(t, err, ErrUnknownIdentity)

	_, err = gate.Increment(context.Background(), Identity{})
	assert.ErrorIs(t, err, ErrUnknownIdentity)
}

func TestIdentityKey(t *testing.T) {
	assert.Equal(t, "anon:abc", Anonymous("abc", nil).Key())
	assert.Equal(t, "user:u1", Account(&users.User{ID: "u1"}, nil).Key())
	assert.True(t, Anonymous("abc", nil).IsAnonymous())
	assert.False(t, Account(&users.User{ID: "u1"}, nil).IsAnonymous())
}
