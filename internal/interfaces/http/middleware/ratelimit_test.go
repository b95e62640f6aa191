package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type stubLimiter struct {
	allowed   bool
	remaining int
	lastKey   string
}

func (l *stubLimiter) Allow(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	l.lastKey = key
	return l.allowed, nil
}

func (l *stubLimiter) Remaining(context.Context, string, int, time.Duration) (int, error) {
	return l.remaining, nil
}

func newRateLimitedEngine(limiter RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RateLimit(RateLimitConfig{Enabled: true, RequestsPerSecond: 10}, limiter))
	engine.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return engine
}

func TestRateLimitQuotaHeaders(t *testing.T) {
	limiter := &stubLimiter{allowed: true, remaining: 7}
	engine := newRateLimitedEngine(limiter)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Client-ID", "client-1")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("X-RateLimit-Limit"); got != "10" {
		t.Errorf("unexpected limit header: %q", got)
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "7" {
		t.Errorf("unexpected remaining header: %q", got)
	}
	if limiter.lastKey != "ratelimit:client-1:/ping" {
		t.Errorf("unexpected rate limit key: %q", limiter.lastKey)
	}
}

func TestRateLimitRejects(t *testing.T) {
	limiter := &stubLimiter{allowed: false}
	engine := newRateLimitedEngine(limiter)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Errorf("unexpected remaining header: %q", got)
	}
	if got := rec.Header().Get("Retry-After"); got != "1" {
		t.Errorf("unexpected retry-after header: %q", got)
	}
	// 未携带 X-Client-ID 时按匿名客户端限流
	if limiter.lastKey != "ratelimit:anonymous:/ping" {
		t.Errorf("unexpected rate limit key: %q", limiter.lastKey)
	}
}

func TestRateLimitDisabledPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RateLimit(RateLimitConfig{Enabled: false}, nil))
	engine.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("X-RateLimit-Limit"); got != "" {
		t.Errorf("disabled limiter must not set headers, got %q", got)
	}
}
