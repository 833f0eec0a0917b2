package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrUserNotFound = errors.New("user not found")

// creates a new user repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// finds the account for an email address, creating it on first sign-in
func (r *Repository) FindOrCreateByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(r.db.QueryRow(ctx, queryFindOrCreateByEmail, email))
}

// finds a user by OAuth identity or creates a new one
func (r *Repository) FindOrCreateByProvider(
	ctx context.Context,
	provider, providerID, email, name string,
) (*User, error) {
	return scanUser(r.db.QueryRow(ctx, queryFindOrCreateByProvider, email, name, provider, providerID))
}

// finds a user by their ID
func (r *Repository) FindByID(ctx context.Context, userID string) (*User, error) {
	return scanUser(r.db.QueryRow(ctx, queryFindByID, userID))
}

// finds a user by email
func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(r.db.QueryRow(ctx, queryFindByEmail, email))
}

// merges the given keys into the user's preference blob
func (r *Repository) UpdatePrefs(ctx context.Context, userID string, patch map[string]any) (*User, error) {
	raw, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal prefs: %w", err)
	}

	return scanUser(r.db.QueryRow(ctx, queryMergePrefs, userID, string(raw)))
}

// replaces the user's label set
func (r *Repository) SetLabels(ctx context.Context, userID string, labels []string) (*User, error) {
	if labels == nil {
		labels = []string{}
	}

	return scanUser(r.db.QueryRow(ctx, queryReplaceLabels, userID, labels))
}

// stores a password hash for email/password sign-in
func (r *Repository) SetPasswordHash(ctx context.Context, userID, hash string) error {
	tag, err := r.db.Exec(ctx, querySetPasswordHash, userID, hash)
	if err != nil {
		return fmt.Errorf("failed to set password: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

func scanUser(row pgx.Row) (*User, error) {
	var user User

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Provider,
		&user.ProviderID,
		&user.Labels,
		&user.Prefs,
		&user.Plan,
		&user.PremiumExpiresAt,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, err
	}

	return &user, nil
}
