package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		category string
	}{
		{"no rows", fmt.Errorf("find user: %w", pgx.ErrNoRows), CategoryNotFound},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), CategoryTimeout},
		{"canceled", context.Canceled, CategoryTimeout},
		{"upstream", fmt.Errorf("API request failed with status 503: overloaded"), CategoryUpstream},
		{"network", fmt.Errorf("dial tcp: connection refused"), CategoryNetwork},
		{"validation", fmt.Errorf("style is invalid"), CategoryValidation},
		{"unknown", fmt.Errorf("boom"), CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, classifyError(tt.err).category)
		})
	}
}

func TestSanitizeError_Production(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")

	assert.Equal(t, "upstream service failed", sanitizeError(fmt.Errorf("API request failed with status 500: secret body")))
	assert.Equal(t, "an error occurred", sanitizeError(fmt.Errorf("boom")))
	assert.Equal(t, "", sanitizeError(nil))
}

func TestSanitizeError_Development(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")

	assert.Equal(t, "boom", sanitizeError(fmt.Errorf("boom")))
}

func TestQuotaExceeded(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	QuotaExceeded(c, "upgrade to premium for unlimited optimizations")

	require.Equal(t, http.StatusTooManyRequests, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, CodeQuotaExceeded, resp.Error)
	assert.Contains(t, resp.Message, "premium")
}

func TestIsValidUUID(t *testing.T) {
	assert.True(t, IsValidUUID("3f2b8c1e-9a4d-4c3b-8e2f-1a2b3c4d5e6f"))
	assert.True(t, IsValidUUID("3F2B8C1E-9A4D-4C3B-8E2F-1A2B3C4D5E6F"))
	assert.False(t, IsValidUUID(""))
	assert.False(t, IsValidUUID("not-a-uuid"))
}
