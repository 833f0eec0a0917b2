package main

import (
	"codeberg.org/promptcraft/server/api/rest/auth"
	"codeberg.org/promptcraft/server/api/rest/functions"
	"codeberg.org/promptcraft/server/api/rest/health"
	"codeberg.org/promptcraft/server/api/rest/history"
	"codeberg.org/promptcraft/server/api/rest/optimize"
	"codeberg.org/promptcraft/server/api/rest/promo"
	"codeberg.org/promptcraft/server/api/rest/users"
	_ "codeberg.org/promptcraft/server/docs"
	"github.com/gin-gonic/gin"
)

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) error {
	rateLimit, err := RateLimitMiddleware(server.config.RateLimit, server.redis)
	if err != nil {
		return err
	}

	// engine-level so preflights for unregistered OPTIONS routes are answered too
	router.Use(CORSMiddleware(server.config.BaseURL, server.config.IsProduction()))

	router.GET("/health", health.Handler(server.db))
	router.GET("/metrics", gin.WrapH(server.metrics.Handler()))

	svc := server.services
	requireAuth := svc.Tokens.Middleware(server.sessionRepo)
	optionalAuth := svc.Tokens.OptionalMiddleware(server.sessionRepo)

	functions.RegisterRoutes(router.Group("", rateLimit), svc.Functions, svc.Mailer, server.metrics)

	v1 := router.Group("/api/v1", rateLimit)

	{
		v1.GET("/ping", health.PingHandler)

		auth.RegisterRoutes(v1, requireAuth, auth.Deps{
			Users:    server.userRepo,
			Sessions: server.sessionRepo,
			Mailer:   svc.Mailer,
			Tokens:   svc.Tokens,
			BaseURL:  server.config.BaseURL,
		}, server.oauthProviders)

		optimize.RegisterRoutes(v1, optionalAuth, svc.Optimizer, svc.Gate, svc.Identity, server.historyRepo, server.metrics)
		history.RegisterRoutes(v1, requireAuth, server.historyRepo, server.metrics)
		users.RegisterRoutes(v1, requireAuth, svc.Identity, svc.Entitlements)
		promo.RegisterRoutes(v1, requireAuth, svc.Identity, svc.Promo, server.metrics)
	}

	return nil
}
