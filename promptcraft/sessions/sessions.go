package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// records a new session for an issued token
func (r *Repository) Create(ctx context.Context, userID, provider, userAgent string, ttl time.Duration) (*Session, error) {
	var s Session

	err := r.db.QueryRow(
		ctx,
		queryCreateSession,
		uuid.NewString(),
		userID,
		provider,
		userAgent,
		time.Now().Add(ttl),
	).Scan(
		&s.ID,
		&s.UserID,
		&s.Provider,
		&s.UserAgent,
		&s.ExpiresAt,
		&s.CreatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &s, nil
}

// reports whether an unexpired session with this id exists
func (r *Repository) SessionExists(ctx context.Context, sessionID string) (bool, error) {
	var exists bool

	if err := r.db.QueryRow(ctx, querySessionExists, sessionID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check session: %w", err)
	}

	return exists, nil
}

// ends one of the user's sessions
func (r *Repository) Delete(ctx context.Context, sessionID, userID string) error {
	tag, err := r.db.Exec(ctx, queryDeleteSession, sessionID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}

	return nil
}

func (r *Repository) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, queryDeleteExpiredSessions, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	return tag.RowsAffected(), nil
}

// stores the hash of a freshly generated sign-in secret
func (r *Repository) CreateMagicLink(ctx context.Context, userID, secretHash string, ttl time.Duration) (*MagicLink, error) {
	var m MagicLink

	err := r.db.QueryRow(
		ctx,
		queryCreateMagicLink,
		uuid.NewString(),
		userID,
		secretHash,
		time.Now().Add(ttl),
	).Scan(
		&m.ID,
		&m.UserID,
		&m.SecretHash,
		&m.ExpiresAt,
		&m.ConsumedAt,
		&m.CreatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create magic link: %w", err)
	}

	return &m, nil
}

// marks the link consumed; fails for unknown, expired or reused links
func (r *Repository) ConsumeMagicLink(ctx context.Context, userID, secretHash string) error {
	var id string

	err := r.db.QueryRow(ctx, queryConsumeMagicLink, userID, secretHash, time.Now()).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrMagicLinkInvalid
	}

	if err != nil {
		return fmt.Errorf("failed to consume magic link: %w", err)
	}

	return nil
}

func (r *Repository) DeleteExpiredMagicLinks(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, queryDeleteExpiredMagicLinks, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired magic links: %w", err)
	}

	return tag.RowsAffected(), nil
}
