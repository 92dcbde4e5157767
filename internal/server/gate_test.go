package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mohammad-safakhou/webchat/config"
	"github.com/mohammad-safakhou/webchat/internal/ratelimit"
)

type fakeLimiter struct {
	decision ratelimit.Decision
	err      error
	keys     []string
}

func (f *fakeLimiter) Allow(_ context.Context, key string) (ratelimit.Decision, error) {
	f.keys = append(f.keys, key)
	return f.decision, f.err
}

func gatedServer(limiter AdmissionChecker, cfg config.RateLimitConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	logger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = newHTTPErrorHandler(logger)
	e.Use(RateLimit(limiter, cfg, logger))
	e.POST("/api/chat", func(c echo.Context) error { return c.String(200, "ok") })
	e.GET("/healthz", func(c echo.Context) error { return c.String(200, "ok") })
	return e
}

func gateCfg(failOpen bool) config.RateLimitConfig {
	return config.RateLimitConfig{Enabled: true, Window: 10 * time.Second, Limit: 10, FailOpen: failOpen}
}

func TestGateAdmits(t *testing.T) {
	limiter := &fakeLimiter{decision: ratelimit.Decision{Allowed: true, Limit: 10, Remaining: 9}}
	e := gatedServer(limiter, gateCfg(true))

	req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(limiter.keys) != 1 || limiter.keys[0] != "127.0.0.1" {
		t.Fatalf("keys = %v, want loopback fallback", limiter.keys)
	}
}

func TestGateRejects(t *testing.T) {
	limiter := &fakeLimiter{decision: ratelimit.Decision{Allowed: false, Limit: 10, Remaining: 0, Reset: 1700000000}}
	e := gatedServer(limiter, gateCfg(true))

	req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("X-RateLimit-Limit"); got != "10" {
		t.Errorf("X-RateLimit-Limit = %q, want 10", got)
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Errorf("X-RateLimit-Remaining = %q, want 0", got)
	}
	if got := rec.Header().Get("X-RateLimit-Reset"); got != "1700000000" {
		t.Errorf("X-RateLimit-Reset = %q, want 1700000000", got)
	}
	want := `{"error":"Too many requests"}`
	if body := rec.Body.String(); body != want+"\n" && body != want {
		t.Errorf("body = %q, want %q", body, want)
	}
}

func TestGateUsesForwardedFor(t *testing.T) {
	limiter := &fakeLimiter{decision: ratelimit.Decision{Allowed: true, Limit: 10, Remaining: 9}}
	e := gatedServer(limiter, gateCfg(true))

	req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	req.Header.Set("X-Forwarded-For", " 203.0.113.9 , 10.0.0.1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if len(limiter.keys) != 1 || limiter.keys[0] != "203.0.113.9" {
		t.Fatalf("keys = %v, want first forwarded address", limiter.keys)
	}
}

func TestGateExemptPaths(t *testing.T) {
	limiter := &fakeLimiter{decision: ratelimit.Decision{Allowed: false}}
	e := gatedServer(limiter, gateCfg(true))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for exempt path", rec.Code)
	}
	if len(limiter.keys) != 0 {
		t.Fatalf("limiter consulted for exempt path: %v", limiter.keys)
	}
}

func TestGateFailOpen(t *testing.T) {
	limiter := &fakeLimiter{
		decision: ratelimit.Decision{Allowed: true, Limit: 10, Remaining: 10},
		err:      errors.New("store unreachable"),
	}
	e := gatedServer(limiter, gateCfg(true))

	req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (fail open)", rec.Code)
	}
}

func TestGateFailClosed(t *testing.T) {
	limiter := &fakeLimiter{
		decision: ratelimit.Decision{Allowed: true, Limit: 10, Remaining: 10},
		err:      errors.New("store unreachable"),
	}
	e := gatedServer(limiter, gateCfg(false))

	req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 (fail closed)", rec.Code)
	}
}
