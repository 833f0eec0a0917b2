package functions

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/promptcraft/server/internal/mailer"
	"codeberg.org/promptcraft/server/internal/optimizer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type outbox struct {
	sent []mailer.Message
	err  error
}

func (o *outbox) Send(_ context.Context, msg mailer.Message) error {
	if o.err != nil {
		return o.err
	}
	o.sent = append(o.sent, msg)
	return nil
}

func (o *outbox) ContactAddress() string { return "team@example.com" }

func newRouter(opt FallbackOptimizer, sender Mailer) *gin.Engine {
	router := gin.New()
	RegisterRoutes(router.Group(""), opt, sender, nil)
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://somewhere.example")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestOptimizePrompt_FallbackWithoutCredentials(t *testing.T) {
	router := newRouter(optimizer.New(nil), &outbox{})

	w := postJSON(router, "/functions/optimize-prompt", `{"prompt":"hi"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp OptimizePromptResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, optimizer.SourceFallback, resp.Source)
	assert.True(t, strings.HasPrefix(resp.OptimizedPrompt, "Please help me with the following request: hi."))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestOptimizePrompt_MissingPrompt(t *testing.T) {
	router := newRouter(optimizer.New(nil), &outbox{})

	assert.Equal(t, http.StatusBadRequest, postJSON(router, "/functions/optimize-prompt", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, postJSON(router, "/functions/optimize-prompt", `{"prompt":"  "}`).Code)
	assert.Equal(t, http.StatusBadRequest, postJSON(router, "/functions/optimize-prompt", `not json`).Code)
}

func TestPreflight(t *testing.T) {
	router := newRouter(optimizer.New(nil), &outbox{})

	for _, path := range []string{"/functions/optimize-prompt", "/functions/send-email"} {
		req := httptest.NewRequest(http.MethodOptions, path, nil)
		req.Header.Set("Origin", "https://somewhere.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Less(t, w.Code, 300, path)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"), path)
	}
}

func TestSendEmail(t *testing.T) {
	box := &outbox{}
	router := newRouter(optimizer.New(nil), box)

	w := postJSON(router, "/functions/send-email", `{"subject":"Hello","message":"Great tool","name":"Sam"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	require.Len(t, box.sent, 1)
	assert.Equal(t, "team@example.com", box.sent[0].To)
	assert.Equal(t, "From: Sam\n\nGreat tool", box.sent[0].Body)
}

func TestSendEmail_Statuses(t *testing.T) {
	tests := []struct {
		name string
		err  error
		body string
		want int
	}{
		{"missing message", nil, `{"subject":"Hello"}`, http.StatusBadRequest},
		{"invalid recipient", mailer.ErrInvalidMessage, `{"to":"bad","subject":"s","message":"m"}`, http.StatusBadRequest},
		{"not configured", mailer.ErrNotConfigured, `{"subject":"s","message":"m"}`, http.StatusInternalServerError},
		{"relay failure", errors.New("smtp send failed: refused"), `{"subject":"s","message":"m"}`, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(optimizer.New(nil), &outbox{err: tt.err})
			assert.Equal(t, tt.want, postJSON(router, "/functions/send-email", tt.body).Code)
		})
	}
}
