// Package ratelimit implements sliding-window call limits keyed by caller.
package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/orris-inc/billing/internal/shared/biztime"
	"github.com/orris-inc/billing/internal/shared/config"
)

// Window allows at most Limit calls in any trailing Duration.
type Window struct {
	Duration time.Duration
	Limit    int
}

// Limiter records a call for key and reports whether every window still
// admits it. Denied calls count toward the windows too.
type Limiter interface {
	Allow(ctx context.Context, key string, windows ...Window) (bool, error)
}

// PromoWindows returns the enabled windows for promo code calls.
func PromoWindows(cfg config.RateLimitConfig) []Window {
	var windows []Window
	if cfg.PromoPerMinute > 0 {
		windows = append(windows, Window{Duration: time.Minute, Limit: cfg.PromoPerMinute})
	}
	if cfg.PromoPerHour > 0 {
		windows = append(windows, Window{Duration: time.Hour, Limit: cfg.PromoPerHour})
	}
	return windows
}

// New picks the redis limiter when a client is available so limits hold
// across instances.
func New(client redis.UniversalClient, clock biztime.Clock) Limiter {
	if client != nil {
		return NewRedisLimiter(client, clock)
	}
	return NewMemoryLimiter(clock)
}
