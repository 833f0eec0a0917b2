package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"codeberg.org/promptcraft/server/internal/errors"
	"codeberg.org/promptcraft/server/internal/identity"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// allows the configured site origin (and localhost during development).
// the function endpoints carry their own open CORS policy and are skipped here.
func CORSMiddleware(baseURL string, production bool) gin.HandlerFunc {
	origins := []string{strings.TrimRight(baseURL, "/")}
	if !production {
		origins = append(origins, "http://localhost:3000", "http://localhost:5173")
	}

	site := cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Authorization", "Content-Type", identity.TimezoneHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})

	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/functions/") {
			c.Next()
			return
		}

		site(c)
	}
}

// per-IP request rate limit, shared through redis when available
func RateLimitMiddleware(formatted string, redisClient *redis.Client) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT %q: %w", formatted, err)
	}

	var store limiter.Store

	if redisClient != nil {
		store, err = sredis.NewStoreWithOptions(redisClient, limiter.StoreOptions{
			Prefix: "promptcraft:limiter",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limit store: %w", err)
		}
	} else {
		store = memory.NewStore()
	}

	return mgin.NewMiddleware(
		limiter.New(store, rate),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			errors.TooManyRequests(c, "too many requests, slow down")
		}),
	), nil
}
