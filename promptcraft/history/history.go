package history

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"codeberg.org/promptcraft/server/internal/logger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

var ErrEntryNotFound = errors.New("history entry not found")

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// records a successful optimization for a signed-in user
func (r *Repository) Create(ctx context.Context, userID string, req CreateEntryRequest) (*Entry, error) {
	var e Entry

	err := r.db.QueryRow(
		ctx,
		queryCreate,
		uuid.NewString(),
		userID,
		req.OriginalPrompt,
		req.OptimizedPrompt,
		req.Style,
		req.Model,
	).Scan(
		&e.ID,
		&e.UserID,
		&e.OriginalPrompt,
		&e.OptimizedPrompt,
		&e.Style,
		&e.Model,
		&e.CreatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create history entry: %w", err)
	}

	return &e, nil
}

// returns the user's most recent entries, newest first
func (r *Repository) List(ctx context.Context, userID string) ([]Entry, error) {
	rows, err := r.db.Query(ctx, queryList, userID, ListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}

	for rows.Next() {
		var e Entry

		if err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.OriginalPrompt,
			&e.OptimizedPrompt,
			&e.Style,
			&e.Model,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	return entries, nil
}

// deletes up to ClearLimit of the user's entries in parallel.
// failures are counted, never retried or rolled back.
func (r *Repository) Clear(ctx context.Context, userID string) (ClearResult, error) {
	ids, err := r.listIDs(ctx, userID)
	if err != nil {
		return ClearResult{}, err
	}

	result := deleteAll(ctx, ids, func(ctx context.Context, id string) error {
		tag, err := r.db.Exec(ctx, queryDelete, id, userID)
		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return ErrEntryNotFound
		}

		return nil
	})

	if result.Failed > 0 {
		logger.Warn("history clear partially failed",
			"user_id", userID,
			"deleted", result.Deleted,
			"failed", result.Failed,
		)
	}

	return result, nil
}

func (r *Repository) listIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.Query(ctx, queryListIDs, userID, ClearLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history ids: %w", err)
	}
	defer rows.Close()

	var ids []string

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan history id: %w", err)
		}

		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// runs del for every id concurrently; one failure does not stop the others
func deleteAll(ctx context.Context, ids []string, del func(context.Context, string) error) ClearResult {
	var deleted, failed atomic.Int64

	var g errgroup.Group
	g.SetLimit(clearConcurrency)

	for _, id := range ids {
		g.Go(func() error {
			if err := del(ctx, id); err != nil {
				failed.Add(1)
				logger.Debug("failed to delete history entry", "entry_id", id, "error", err)
				return nil
			}

			deleted.Add(1)
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // workers never return errors

	return ClearResult{
		Deleted: int(deleted.Load()),
		Failed:  int(failed.Load()),
	}
}
