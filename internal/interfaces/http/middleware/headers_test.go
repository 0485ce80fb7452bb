package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/orris-inc/billing/internal/infrastructure/ratelimit"
	"github.com/orris-inc/billing/internal/shared/logger"
)

func okEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.POST("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func TestCORS(t *testing.T) {
	engine := okEngine(CORS([]string{"https://admin.example.com/"}))

	tests := []struct {
		name       string
		method     string
		origin     string
		wantStatus int
		wantOrigin string
	}{
		{"allowed origin", http.MethodGet, "https://admin.example.com", http.StatusOK, "https://admin.example.com"},
		{"unknown origin", http.MethodGet, "https://evil.example.com", http.StatusOK, ""},
		{"preflight", http.MethodOptions, "https://admin.example.com", http.StatusNoContent, "https://admin.example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestAPIVersion(t *testing.T) {
	engine := gin.New()
	engine.Use(APIVersion())
	engine.GET("/", func(c *gin.Context) { c.String(http.StatusOK, strconv.Itoa(GetAPIVersion(c))) })

	tests := []struct {
		name   string
		header string
		accept string
	}{
		{"default", "", ""},
		{"header", "1", ""},
		{"vendor accept", "", "application/vnd.billing.v1+json"},
		{"unsupported falls back", "7", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(HeaderAPIVersion, tt.header)
			}
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			assert.Equal(t, "1", w.Header().Get(HeaderAPIVersion))
			assert.Equal(t, "1", w.Body.String())
		})
	}
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string, ...ratelimit.Window) (bool, error) {
	return false, errors.New("redis down")
}

func TestRateLimit(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	limiter := ratelimit.NewMemoryLimiter(func() time.Time { return now })
	windows := []ratelimit.Window{{Duration: time.Minute, Limit: 2}}
	engine := okEngine(Caller(), RateLimit(limiter, "promo", windows, logger.Nop()))

	call := func(userID string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set(HeaderUserID, userID)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call("u1"))
	assert.Equal(t, http.StatusOK, call("u1"))
	assert.Equal(t, http.StatusTooManyRequests, call("u1"))
	assert.Equal(t, http.StatusOK, call("u2"))

	t.Run("fails open", func(t *testing.T) {
		e := okEngine(Caller(), RateLimit(failingLimiter{}, "promo", windows, logger.Nop()))
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		w := httptest.NewRecorder()
		e.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
