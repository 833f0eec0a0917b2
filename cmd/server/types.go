package main

import (
	"codeberg.org/promptcraft/server/internal/auth"
	"codeberg.org/promptcraft/server/internal/config"
	"codeberg.org/promptcraft/server/internal/entitlement"
	"codeberg.org/promptcraft/server/internal/identity"
	"codeberg.org/promptcraft/server/internal/mailer"
	"codeberg.org/promptcraft/server/internal/metrics"
	"codeberg.org/promptcraft/server/internal/optimizer"
	"codeberg.org/promptcraft/server/internal/quota"
	"codeberg.org/promptcraft/server/promptcraft/history"
	"codeberg.org/promptcraft/server/promptcraft/promocodes"
	"codeberg.org/promptcraft/server/promptcraft/sessions"
	"codeberg.org/promptcraft/server/promptcraft/users"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// holds all dependencies and state for the API server
type Server struct {
	db             *pgxpool.Pool
	redis          *redis.Client
	config         *config.Config
	userRepo       *users.Repository
	historyRepo    *history.Repository
	sessionRepo    *sessions.Repository
	services       *Services
	router         *gin.Engine
	cleanupService *sessions.CleanupService
	metrics        *metrics.Metrics
	oauthProviders []string
}

// holds the domain services built from configuration
type Services struct {
	Optimizer    *optimizer.Optimizer
	Functions    *optimizer.Optimizer
	Gate         *quota.Gate
	Entitlements *entitlement.Reconciler
	Identity     *identity.Resolver
	Promo        *promocodes.Service
	Mailer       *mailer.SMTPMailer
	Tokens       *auth.TokenIssuer
}
