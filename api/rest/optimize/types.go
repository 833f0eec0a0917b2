package optimize

import (
	"context"

	"codeberg.org/promptcraft/server/internal/optimizer"
	"codeberg.org/promptcraft/server/internal/quota"
	"codeberg.org/promptcraft/server/promptcraft/history"
	"github.com/gin-gonic/gin"
)

type Optimizer interface {
	Optimize(ctx context.Context, prompt string, style optimizer.Style) (*optimizer.Result, error)
}

type Gate interface {
	MayOptimize(ctx context.Context, id quota.Identity) (quota.Decision, error)
	Increment(ctx context.Context, id quota.Identity) (quota.UsageRecord, error)
	Usage(ctx context.Context, id quota.Identity) (quota.Decision, error)
}

type IdentityResolver interface {
	Current(c *gin.Context) (quota.Identity, error)
}

type HistoryRecorder interface {
	Create(ctx context.Context, userID string, req history.CreateEntryRequest) (*history.Entry, error)
}

// Request represents the request body for prompt optimization
type Request struct {
	Prompt string `json:"prompt"`
	Style  string `json:"style" example:"detailed"`
}

// Response represents an optimized prompt and the caller's remaining quota
type Response struct {
	OptimizedPrompt string         `json:"optimizedPrompt"`
	Model           string         `json:"model"`
	Style           string         `json:"style"`
	Usage           quota.Decision `json:"usage"`
}
