package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type pinger struct {
	err error
}

func (p pinger) Ping(context.Context) error { return p.err }

func serve(h gin.HandlerFunc) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/", h)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w
}

func TestHandler(t *testing.T) {
	assert.Equal(t, http.StatusOK, serve(Handler(pinger{})).Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(Handler(pinger{err: errors.New("down")})).Code)
	assert.Equal(t, http.StatusOK, serve(Handler(nil)).Code)
}

func TestPingHandler(t *testing.T) {
	w := serve(PingHandler)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}
