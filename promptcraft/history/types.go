package history

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	// entries shown by List
	ListLimit = 20

	// entries removed by a single Clear
	ClearLimit = 100

	// concurrent deletes issued by Clear
	clearConcurrency = 10
)

type Repository struct {
	db *pgxpool.Pool
}

// one saved optimization, immutable once written
type Entry struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	OriginalPrompt  string    `json:"original_prompt"`
	OptimizedPrompt string    `json:"optimized_prompt"`
	Style           string    `json:"style"`
	Model           string    `json:"model"`
	CreatedAt       time.Time `json:"created_at"`
}

type CreateEntryRequest struct {
	OriginalPrompt  string
	OptimizedPrompt string
	Style           string
	Model           string
}

// outcome of a best-effort bulk delete
type ClearResult struct {
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
}
