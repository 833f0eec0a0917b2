package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"codeberg.org/promptcraft/server/internal/auth"
	"codeberg.org/promptcraft/server/internal/config"
	"codeberg.org/promptcraft/server/internal/entitlement"
	"codeberg.org/promptcraft/server/internal/identity"
	"codeberg.org/promptcraft/server/internal/llm"
	"codeberg.org/promptcraft/server/internal/logger"
	"codeberg.org/promptcraft/server/internal/mailer"
	"codeberg.org/promptcraft/server/internal/optimizer"
	"codeberg.org/promptcraft/server/internal/quota"
	"codeberg.org/promptcraft/server/promptcraft/promocodes"
	"codeberg.org/promptcraft/server/promptcraft/users"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// creates and configures all domain services
func InitializeServices(
	ctx context.Context,
	cfg *config.Config,
	db *pgxpool.Pool,
	redisClient *redis.Client,
	userRepo *users.Repository,
) (*Services, error) {
	generator, err := llm.NewGenerator(ctx, cfg.Generator)
	if err != nil {
		if !errors.Is(err, llm.ErrNotConfigured) {
			return nil, fmt.Errorf("failed to create text generator: %w", err)
		}

		// the server still starts; optimize requests fail with a configuration error
		logger.Warn("no text generation credential configured")
		generator = nil
	}

	// the optimize-prompt function prefers the chat-completion provider
	functionsGenerator := llm.NewChatCompletionGenerator(cfg.Generator)
	if functionsGenerator == nil {
		functionsGenerator = generator
	}

	checker := entitlement.New(cfg.EnforcePremiumExpiry)

	store, err := newQuotaStore(cfg, db, redisClient)
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, auth.TokenTTL)
	if err != nil {
		return nil, err
	}

	services := &Services{
		Optimizer:    optimizer.New(generator),
		Functions:    optimizer.New(functionsGenerator),
		Gate:         quota.NewGate(store, checker, cfg.DailyLimit, cfg.Timezone),
		Entitlements: checker.Bind(userRepo),
		Identity:     identity.NewResolver(userRepo, cfg.SessionSecret, strings.HasPrefix(cfg.BaseURL, "https://"), cfg.Timezone),
		Promo:        promocodes.NewService(promocodes.NewRepository(db), userRepo, checker),
		Mailer:       mailer.New(cfg.Mail),
		Tokens:       tokens,
	}

	logger.Info("services initialized",
		"generator", modelName(generator),
		"quota_store", cfg.QuotaStore,
		"daily_limit", cfg.DailyLimit,
		"enforce_premium_expiry", cfg.EnforcePremiumExpiry,
		"mail_configured", services.Mailer.Configured(),
	)

	return services, nil
}

func newQuotaStore(cfg *config.Config, db *pgxpool.Pool, redisClient *redis.Client) (quota.Store, error) {
	switch cfg.QuotaStore {
	case config.QuotaStoreRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("quota store %q requires REDIS_URL", cfg.QuotaStore)
		}

		return quota.NewRedisStore(redisClient), nil
	case config.QuotaStorePostgres:
		return quota.NewPostgresStore(db), nil
	case config.QuotaStoreMemory:
		logger.Warn("using in-memory quota store; usage resets on restart and is not shared between instances")
		return quota.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown quota store %q", cfg.QuotaStore)
	}
}

func modelName(g llm.TextGenerator) string {
	if g == nil {
		return "none"
	}

	return g.Model()
}
