// Package identity turns an incoming request into the caller the quota gate
// and handlers act on: a signed-in account or an anonymous device.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"codeberg.org/promptcraft/server/internal/auth"
	"codeberg.org/promptcraft/server/internal/quota"
	"codeberg.org/promptcraft/server/promptcraft/users"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	// IANA zone name sent by clients, e.g. "Europe/Berlin"
	TimezoneHeader = "X-Timezone"

	deviceCookieName = "pc_device"
	deviceIDKey      = "device_id"
	deviceCookieAge  = 365 * 24 * 60 * 60
)

var (
	ErrNotSignedIn  = errors.New("not signed in")
	ErrReservedPref = errors.New("preference key is managed by the server")
)

// preference keys mirrored from the plan; clients may not write them
var reservedPrefs = map[string]bool{
	users.PrefPlan:          true,
	users.PrefPromoCode:     true,
	users.PrefPremiumExpiry: true,
}

// account lookups and preference writes against the identity backend
type UserStore interface {
	FindByID(ctx context.Context, userID string) (*users.User, error)
	UpdatePrefs(ctx context.Context, userID string, patch map[string]any) (*users.User, error)
}

type Resolver struct {
	users      UserStore
	devices    sessions.Store
	defaultLoc *time.Location
}

// creates a resolver; sessionSecret signs the anonymous device cookie
func NewResolver(store UserStore, sessionSecret string, secure bool, defaultLoc *time.Location) *Resolver {
	cookies := sessions.NewCookieStore([]byte(sessionSecret))
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   deviceCookieAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}

	if defaultLoc == nil {
		defaultLoc = time.UTC
	}

	return &Resolver{
		users:      store,
		devices:    cookies,
		defaultLoc: defaultLoc,
	}
}

// resolves the caller; anonymous callers get a device cookie on first visit
func (r *Resolver) Current(c *gin.Context) (quota.Identity, error) {
	loc := r.Location(c)

	if userID, ok := auth.GetUserID(c); ok {
		u, err := r.users.FindByID(c.Request.Context(), userID)
		if err != nil {
			return quota.Identity{}, fmt.Errorf("failed to load current user: %w", err)
		}

		return quota.Account(u, loc), nil
	}

	deviceID, err := r.deviceID(c)
	if err != nil {
		return quota.Identity{}, err
	}

	return quota.Anonymous(deviceID, loc), nil
}

// returns the signed-in user or ErrNotSignedIn
func (r *Resolver) CurrentUser(c *gin.Context) (*users.User, error) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		return nil, ErrNotSignedIn
	}

	return r.users.FindByID(c.Request.Context(), userID)
}

// merges client preferences, refusing keys mirrored from the plan
func (r *Resolver) UpdatePrefs(ctx context.Context, userID string, patch map[string]any) (*users.User, error) {
	for key := range patch {
		if reservedPrefs[key] {
			return nil, fmt.Errorf("%w: %s", ErrReservedPref, key)
		}
	}

	return r.users.UpdatePrefs(ctx, userID, patch)
}

// the caller's calendar, from X-Timezone when it names a known zone
func (r *Resolver) Location(c *gin.Context) *time.Location {
	name := strings.TrimSpace(c.GetHeader(TimezoneHeader))
	if name == "" {
		return r.defaultLoc
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return r.defaultLoc
	}

	return loc
}

func (r *Resolver) deviceID(c *gin.Context) (string, error) {
	// a tampered or stale cookie yields a fresh session and a new device
	session, _ := r.devices.Get(c.Request, deviceCookieName) //nolint:errcheck // handled by minting a new id

	if id, ok := session.Values[deviceIDKey].(string); ok && id != "" {
		return id, nil
	}

	id := uuid.NewString()
	session.Values[deviceIDKey] = id

	if err := session.Save(c.Request, c.Writer); err != nil {
		return "", fmt.Errorf("failed to save device cookie: %w", err)
	}

	return id, nil
}
