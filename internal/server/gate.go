package server

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mohammad-safakhou/webchat/config"
	"github.com/mohammad-safakhou/webchat/internal/ratelimit"
)

// AdmissionChecker decides whether one request from key is admitted.
type AdmissionChecker interface {
	Allow(ctx context.Context, key string) (ratelimit.Decision, error)
}

// exemptPath reports whether a path bypasses the gate: health, metrics
// and static assets.
func exemptPath(path string) bool {
	switch path {
	case "/healthz", "/metrics", "/favicon.ico":
		return true
	}
	return strings.HasPrefix(path, "/assets/")
}

// clientIP is the first value of X-Forwarded-For, falling back to a
// loopback placeholder when the header is absent.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return "127.0.0.1"
}

// RateLimit gates every non-exempt request behind the sliding-window
// quota. Quota-store errors admit the request when cfg.FailOpen is set:
// availability of the chat feature is preferred over strict enforcement
// during a store outage.
func RateLimit(limiter AdmissionChecker, cfg config.RateLimitConfig, logger *log.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if exemptPath(c.Request().URL.Path) {
				return next(c)
			}

			d, err := limiter.Allow(c.Request().Context(), clientIP(c.Request()))
			if err != nil {
				logger.Printf("rate limiting error: %v", err)
				if cfg.FailOpen {
					return next(c)
				}
				return echo.NewHTTPError(http.StatusServiceUnavailable, "rate limiter unavailable")
			}

			if !d.Allowed {
				rateLimitRejections.Inc()
				h := c.Response().Header()
				h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
				h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
				h.Set("X-RateLimit-Reset", strconv.FormatInt(d.Reset, 10))
				return c.JSON(http.StatusTooManyRequests, HTTPError{Error: "Too many requests"})
			}

			return next(c)
		}
	}
}
