package main

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/promptcraft/server/internal/auth"
	"codeberg.org/promptcraft/server/internal/config"
	"codeberg.org/promptcraft/server/internal/logger"
	"codeberg.org/promptcraft/server/internal/metrics"
	"codeberg.org/promptcraft/server/internal/storage"
	"codeberg.org/promptcraft/server/promptcraft/history"
	"codeberg.org/promptcraft/server/promptcraft/sessions"
	"codeberg.org/promptcraft/server/promptcraft/users"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	// how often expired sessions and magic links are purged
	cleanupCheckInterval = 15 * time.Minute
)

// creates and configures a new server instance with all dependencies
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	db, err := storage.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	if err := storage.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	redisClient, err := newRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		db.Close()
		return nil, err
	}

	providers, err := auth.InitializeProviders(cfg)
	if err != nil {
		closeRedis(redisClient)
		db.Close()
		return nil, fmt.Errorf("failed to initialize OAuth providers: %w", err)
	}

	userRepo := users.NewRepository(db)
	historyRepo := history.NewRepository(db)
	sessionRepo := sessions.NewRepository(db)

	services, err := InitializeServices(ctx, cfg, db, redisClient, userRepo)
	if err != nil {
		closeRedis(redisClient)
		db.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	server := &Server{
		db:             db,
		redis:          redisClient,
		config:         cfg,
		userRepo:       userRepo,
		historyRepo:    historyRepo,
		sessionRepo:    sessionRepo,
		services:       services,
		router:         router,
		cleanupService: sessions.NewCleanupService(sessionRepo, cleanupCheckInterval),
		metrics:        metrics.New(),
		oauthProviders: providers,
	}

	if err := RegisterRoutes(router, server); err != nil {
		closeRedis(redisClient)
		db.Close()
		return nil, err
	}

	logger.Info("server initialized", "oauth_providers", providers)

	return server, nil
}

// connects to redis when a URL is configured; nil otherwise
func newRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

func closeRedis(client *redis.Client) {
	if client != nil {
		client.Close() //nolint:errcheck,gosec // best-effort cleanup
	}
}

// releases connections held by the server
func (s *Server) Close() {
	closeRedis(s.redis)
	s.db.Close()
}
