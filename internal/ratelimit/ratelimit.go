// Package ratelimit implements a sliding-window request limiter keyed by
// client identity. Window state lives in a shared store so multiple server
// instances observe a consistent count per key.
package ratelimit

import (
	"context"
	"log"
	"time"

	"github.com/mohammad-safakhou/webchat/config"
)

// Decision reports the outcome of one admission check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     int64 // epoch seconds at which the window frees a slot
}

// Store provides the atomic sliding-window primitive. Record-and-count
// must happen in one atomic step per key so concurrent instances cannot
// both admit the last slot.
type Store interface {
	// Take attempts to record an admission for key at now. It reports
	// whether the event was admitted, the number of admitted events in
	// the window (including this one if admitted), and the timestamp of
	// the oldest admitted event still inside the window.
	Take(ctx context.Context, key string, window time.Duration, limit int, now time.Time) (allowed bool, count int64, oldest time.Time, err error)
}

// Limiter turns store counts into admission decisions.
type Limiter struct {
	store  Store
	limit  int
	window time.Duration
	logger *log.Logger
}

// New creates a Limiter
func New(store Store, cfg config.RateLimitConfig, logger *log.Logger) *Limiter {
	if logger == nil {
		logger = log.New(log.Writer(), "[RATELIMIT] ", log.LstdFlags)
	}
	return &Limiter{store: store, limit: cfg.Limit, window: cfg.Window, logger: logger}
}

// Allow consults the shared window for key. On store failure it returns
// the error alongside a permissive decision; admission policy for that
// case (fail open or closed) belongs to the gate.
func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := time.Now()
	allowed, count, oldest, err := l.store.Take(ctx, key, l.window, l.limit, now)
	if err != nil {
		l.logger.Printf("quota store error for %s: %v", key, err)
		return Decision{
			Allowed:   true,
			Limit:     l.limit,
			Remaining: l.limit,
			Reset:     now.Add(l.window).Unix(),
		}, err
	}

	remaining := l.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	if oldest.IsZero() {
		oldest = now
	}
	return Decision{
		Allowed:   allowed,
		Limit:     l.limit,
		Remaining: remaining,
		Reset:     oldest.Add(l.window).Unix(),
	}, nil
}
