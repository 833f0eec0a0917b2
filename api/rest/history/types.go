package history

import (
	"context"

	"codeberg.org/promptcraft/server/promptcraft/history"
)

type Repository interface {
	List(ctx context.Context, userID string) ([]history.Entry, error)
	Clear(ctx context.Context, userID string) (history.ClearResult, error)
}

// ListResponse wraps the newest history entries
type ListResponse struct {
	Entries []history.Entry `json:"entries"`
}
