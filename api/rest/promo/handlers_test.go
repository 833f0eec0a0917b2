package promo

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"codeberg.org/promptcraft/server/internal/identity"
	"codeberg.org/promptcraft/server/promptcraft/promocodes"
	"codeberg.org/promptcraft/server/promptcraft/users"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAccessor struct {
	user *users.User
}

func (f fakeAccessor) CurrentUser(*gin.Context) (*users.User, error) {
	if f.user == nil {
		return nil, identity.ErrNotSignedIn
	}
	return f.user, nil
}

type fakeRedeemer struct {
	err error
}

func (f fakeRedeemer) Redeem(_ context.Context, u *users.User, _ string) (*users.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	upgraded := *u
	upgraded.Plan = users.PlanPremium
	return &upgraded, nil
}

func redeem(accessor Accessor, redeemer Redeemer, body string) int {
	router := gin.New()
	RegisterRoutes(router.Group(""), func(c *gin.Context) { c.Next() }, accessor, redeemer, nil)

	req := httptest.NewRequest(http.MethodPost, "/promo/redeem", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

func TestRedeemHandler(t *testing.T) {
	user := &users.User{ID: "user-1", Plan: users.PlanFree}

	tests := []struct {
		name     string
		accessor Accessor
		err      error
		body     string
		want     int
	}{
		{"success", fakeAccessor{user}, nil, `{"code":"LAUNCH"}`, http.StatusOK},
		{"missing code", fakeAccessor{user}, nil, `{}`, http.StatusBadRequest},
		{"signed out", fakeAccessor{}, nil, `{"code":"LAUNCH"}`, http.StatusUnauthorized},
		{"invalid", fakeAccessor{user}, promocodes.ErrInvalidCode, `{"code":"NOPE"}`, http.StatusBadRequest},
		{"exhausted", fakeAccessor{user}, promocodes.ErrCodeExhausted, `{"code":"GONE"}`, http.StatusBadRequest},
		{"already premium", fakeAccessor{user}, promocodes.ErrAlreadyPremium, `{"code":"LAUNCH"}`, http.StatusConflict},
		{"already redeemed", fakeAccessor{user}, promocodes.ErrAlreadyRedeemed, `{"code":"LAUNCH"}`, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, redeem(tt.accessor, fakeRedeemer{err: tt.err}, tt.body))
		})
	}
}
