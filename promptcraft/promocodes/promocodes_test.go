package promocodes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/promptcraft/server/internal/entitlement"
	"codeberg.org/promptcraft/server/promptcraft/users"
)

type fakeClaimer struct {
	expiresAt *time.Time
	err       error
	claimed   []string
	store     *fakeUserStore
}

func (f *fakeClaimer) Claim(_ context.Context, userID, code string, _ time.Time) (*time.Time, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.claimed = append(f.claimed, code)

	u := f.store.users[userID]
	u.Plan = users.PlanPremium
	u.PremiumExpiresAt = f.expiresAt
	return f.expiresAt, nil
}

type fakeUserStore struct {
	users map[string]*users.User
}

func (f *fakeUserStore) FindByID(_ context.Context, id string) (*users.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, users.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUserStore) SetLabels(_ context.Context, id string, labels []string) (*users.User, error) {
	f.users[id].Labels = labels
	return f.FindByID(context.Background(), id)
}

func (f *fakeUserStore) UpdatePrefs(_ context.Context, id string, patch map[string]any) (*users.User, error) {
	u := f.users[id]
	if u.Prefs == nil {
		u.Prefs = map[string]any{}
	}
	for k, v := range patch {
		u.Prefs[k] = v
	}
	return f.FindByID(context.Background(), id)
}

func newFixture() (*fakeUserStore, *fakeClaimer, *users.User) {
	u := &users.User{ID: "user-1", Email: "a@example.com", Plan: users.PlanFree, Prefs: map[string]any{}}
	store := &fakeUserStore{users: map[string]*users.User{u.ID: u}}
	claimer := &fakeClaimer{store: store}
	return store, claimer, u
}

func TestRedeem_GrantsPremiumAndReconciles(t *testing.T) {
	store, claimer, u := newFixture()
	svc := NewService(claimer, store, entitlement.New(false))

	updated, err := svc.Redeem(context.Background(), u, "  launch50 ")
	require.NoError(t, err)

	assert.Equal(t, []string{"LAUNCH50"}, claimer.claimed)
	assert.Equal(t, users.PlanPremium, updated.Plan)
	assert.True(t, updated.HasLabel(users.LabelPremium))
	assert.Equal(t, users.PlanPremium, updated.PrefString(users.PrefPlan))
}

func TestRedeem_RejectsPremiumAccounts(t *testing.T) {
	store, claimer, u := newFixture()
	u.Plan = users.PlanPremium

	_, err := NewService(claimer, store, entitlement.New(false)).Redeem(context.Background(), u, "LAUNCH50")
	assert.ErrorIs(t, err, ErrAlreadyPremium)
	assert.Empty(t, claimer.claimed)
}

func TestRedeem_ExpiredPremiumMayRedeemWhenEnforced(t *testing.T) {
	store, claimer, u := newFixture()
	past := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	u.Plan = users.PlanPremium
	u.PremiumExpiresAt = &past

	_, err := NewService(claimer, store, entitlement.New(true)).Redeem(context.Background(), u, "AGAIN")
	require.NoError(t, err)
	assert.Equal(t, []string{"AGAIN"}, claimer.claimed)
}

func TestRedeem_EmptyCode(t *testing.T) {
	store, claimer, u := newFixture()

	_, err := NewService(claimer, store, entitlement.New(false)).Redeem(context.Background(), u, "   ")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestRedeem_PropagatesClaimErrors(t *testing.T) {
	for _, want := range []error{ErrInvalidCode, ErrCodeExhausted, ErrAlreadyRedeemed} {
		store, claimer, u := newFixture()
		claimer.err = want

		_, err := NewService(claimer, store, entitlement.New(false)).Redeem(context.Background(), u, "CODE")
		assert.True(t, errors.Is(err, want))
		assert.Equal(t, users.PlanFree, store.users[u.ID].Plan)
	}
}

func TestExpiryFor(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.Nil(t, expiryFor(now, nil))

	days := 30
	got := expiryFor(now, &days)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, 4, 9, 12, 0, 0, 0, time.UTC), *got)
}

func TestGrantPrefs(t *testing.T) {
	exp := time.Date(2024, 4, 9, 12, 0, 0, 0, time.UTC)

	prefs := grantPrefs("LAUNCH50", &exp)
	assert.Equal(t, "LAUNCH50", prefs[users.PrefPromoCode])
	assert.Equal(t, "2024-04-09T12:00:00Z", prefs[users.PrefPremiumExpiry])

	prefs = grantPrefs("FOREVER", nil)
	assert.Nil(t, prefs[users.PrefPremiumExpiry])
}
