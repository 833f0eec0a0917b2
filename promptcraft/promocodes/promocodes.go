package promocodes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"codeberg.org/promptcraft/server/internal/entitlement"
	"codeberg.org/promptcraft/server/internal/logger"
	"codeberg.org/promptcraft/server/promptcraft/users"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// claims one redemption and writes the premium plan in a single transaction.
// returns the granted expiry, nil when the code never expires.
func (r *Repository) Claim(ctx context.Context, userID, code string, now time.Time) (*time.Time, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	// no-op once committed
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logger.Warn("failed to rollback transaction", "error", err)
		}
	}()

	var durationDays *int

	err = tx.QueryRow(ctx, queryClaimSlot, code).Scan(&durationDays)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.explainRefusal(ctx, tx, code)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to claim promo code: %w", err)
	}

	tag, err := tx.Exec(ctx, queryRecordRedemption, code, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to record redemption: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return nil, ErrAlreadyRedeemed
	}

	expiresAt := expiryFor(now, durationDays)

	prefs, err := json.Marshal(grantPrefs(code, expiresAt))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal prefs: %w", err)
	}

	tag, err = tx.Exec(ctx, queryGrantPremium, userID, expiresAt, string(prefs))
	if err != nil {
		return nil, fmt.Errorf("failed to grant premium: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return nil, users.ErrUserNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return expiresAt, nil
}

// distinguishes an unknown or disabled code from an exhausted one
func (r *Repository) explainRefusal(ctx context.Context, tx pgx.Tx, code string) error {
	var active bool

	err := tx.QueryRow(ctx, queryCodeActive, code).Scan(&active)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && !active) {
		return ErrInvalidCode
	}

	if err != nil {
		return fmt.Errorf("failed to check promo code: %w", err)
	}

	return ErrCodeExhausted
}

func NewService(codes Claimer, store UserStore, checker *entitlement.Checker) *Service {
	return &Service{
		codes:   codes,
		users:   store,
		checker: checker,
		now:     time.Now,
	}
}

// overrides the clock (tests)
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// grants premium to the user through a promo code
func (s *Service) Redeem(ctx context.Context, u *users.User, code string) (*users.User, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, ErrInvalidCode
	}

	if s.checker.IsPremium(u) {
		return nil, ErrAlreadyPremium
	}

	expiresAt, err := s.codes.Claim(ctx, u.ID, code, s.now())
	if err != nil {
		return nil, err
	}

	updated, err := s.users.FindByID(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}

	updated, err = s.checker.Reconcile(ctx, s.users, updated)
	if err != nil {
		return nil, err
	}

	logger.Info("promo code redeemed",
		"user_id", u.ID,
		"code", code,
		"expires_at", expiresAt,
	)

	return updated, nil
}

// codes are case-insensitive and stored upper-case
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func expiryFor(now time.Time, durationDays *int) *time.Time {
	if durationDays == nil {
		return nil
	}

	t := now.UTC().AddDate(0, 0, *durationDays)
	return &t
}

func grantPrefs(code string, expiresAt *time.Time) map[string]any {
	prefs := map[string]any{
		users.PrefPromoCode:     code,
		users.PrefPremiumExpiry: nil,
	}

	if expiresAt != nil {
		prefs[users.PrefPremiumExpiry] = expiresAt.Format(time.RFC3339)
	}

	return prefs
}
