// Package entitlement decides premium status from the account's plan.
//
// The plan column is the only source of truth. The "premium" label and the
// "plan" preference key are mirrors kept for clients that read them; they are
// rewritten by Reconcile and never consulted by IsPremium.
package entitlement

import (
	"context"
	"fmt"
	"slices"
	"time"

	"codeberg.org/promptcraft/server/promptcraft/users"
)

// persists mirrored signals back to the identity backend
type Store interface {
	SetLabels(ctx context.Context, userID string, labels []string) (*users.User, error)
	UpdatePrefs(ctx context.Context, userID string, patch map[string]any) (*users.User, error)
}

type Checker struct {
	enforceExpiry bool
	now           func() time.Time
}

// creates a checker; when enforceExpiry is false the stored expiry is informational only
func New(enforceExpiry bool) *Checker {
	return &Checker{
		enforceExpiry: enforceExpiry,
		now:           time.Now,
	}
}

// overrides the clock (tests)
func (c *Checker) WithClock(now func() time.Time) *Checker {
	c.now = now
	return c
}

// reports whether the user is entitled to unlimited optimizations
func (c *Checker) IsPremium(u *users.User) bool {
	if u == nil || u.Plan != users.PlanPremium {
		return false
	}

	if c.enforceExpiry && u.PremiumExpiresAt != nil && !c.now().Before(*u.PremiumExpiresAt) {
		return false
	}

	return true
}

// returns the plan name the mirrors should carry
func (c *Checker) EffectivePlan(u *users.User) string {
	if c.IsPremium(u) {
		return users.PlanPremium
	}

	return users.PlanFree
}

// rewrites the label and preference mirrors to match the authoritative plan
func (c *Checker) Reconcile(ctx context.Context, store Store, u *users.User) (*users.User, error) {
	if u == nil {
		return nil, fmt.Errorf("reconcile: nil user")
	}

	premium := c.IsPremium(u)

	if premium != u.HasLabel(users.LabelPremium) {
		labels := slices.DeleteFunc(slices.Clone(u.Labels), func(l string) bool {
			return l == users.LabelPremium
		})

		if premium {
			labels = append(labels, users.LabelPremium)
		}

		updated, err := store.SetLabels(ctx, u.ID, labels)
		if err != nil {
			return nil, fmt.Errorf("failed to reconcile labels: %w", err)
		}
		u = updated
	}

	plan := c.EffectivePlan(u)
	if u.PrefString(users.PrefPlan) != plan {
		updated, err := store.UpdatePrefs(ctx, u.ID, map[string]any{users.PrefPlan: plan})
		if err != nil {
			return nil, fmt.Errorf("failed to reconcile prefs: %w", err)
		}
		u = updated
	}

	return u, nil
}

// checker paired with the store its mirrors are written to
type Reconciler struct {
	*Checker
	store Store
}

// binds the checker to a store
func (c *Checker) Bind(store Store) *Reconciler {
	return &Reconciler{Checker: c, store: store}
}

// rewrites the mirrors through the bound store
func (r *Reconciler) Reconcile(ctx context.Context, u *users.User) (*users.User, error) {
	return r.Checker.Reconcile(ctx, r.store, u)
}
