package tui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"codeberg.org/promptcraft/server/internal/optimizer"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_OptimizeSendsPromptAndKeepsDeviceCookie(t *testing.T) {
	var seenCookie string
	calls := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/api/v1/optimize", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var req optimizeRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "write a poem", req.Prompt)
		assert.Equal(t, "creative", req.Style)

		if c, err := r.Cookie("pc_device"); err == nil {
			seenCookie = c.Value
		}
		http.SetCookie(w, &http.Cookie{Name: "pc_device", Value: "dev-1", Path: "/"})

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(OptimizeResult{ //nolint:errcheck
			OptimizedPrompt: "Write a vivid poem.",
			Model:           "test-model",
			Style:           "creative",
			Usage:           Usage{Limit: 5, Remaining: 4, Count: 1},
		})
	}))
	defer srv.Close()

	c := NewClientFor(srv.URL, "tok")

	res, err := c.Optimize(context.Background(), "write a poem", optimizer.StyleCreative)
	require.NoError(t, err)
	assert.Equal(t, "Write a vivid poem.", res.OptimizedPrompt)
	assert.Equal(t, 4, res.Usage.Remaining)

	_, err = c.Optimize(context.Background(), "write a poem", optimizer.StyleCreative)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "dev-1", seenCookie)
}

func TestClient_ErrorMessageFromServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"quota_exceeded","message":"daily limit reached"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	_, err := NewClientFor(srv.URL, "").Optimize(context.Background(), "hi", optimizer.StyleDetailed)
	require.Error(t, err)
	assert.Equal(t, "daily limit reached", err.Error())
}

func TestClient_UsageWithoutToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"premium":true,"limit":-1,"remaining":-1}`)) //nolint:errcheck
	}))
	defer srv.Close()

	usage, err := NewClientFor(srv.URL+"/", "").Usage(context.Background())
	require.NoError(t, err)
	assert.True(t, usage.Premium)
}

func TestEditor_TabCyclesStyles(t *testing.T) {
	m := NewEditor(NewClientFor("http://localhost", ""))
	assert.Equal(t, optimizer.StyleDetailed, m.Style())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, optimizer.StyleConcise, m.Style())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, optimizer.StyleConversational, m.Style())
}
