package ratelimit

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/orris-inc/billing/internal/shared/biztime"
)

// MemoryLimiter is the single-instance variant used with the memory cache
// backend.
type MemoryLimiter struct {
	mu    sync.Mutex
	calls *gocache.Cache
	clock biztime.Clock
}

func NewMemoryLimiter(clock biztime.Clock) *MemoryLimiter {
	if clock == nil {
		clock = biztime.NowUTC
	}
	return &MemoryLimiter{
		calls: gocache.New(time.Hour, 10*time.Minute),
		clock: clock,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string, windows ...Window) (bool, error) {
	now := l.clock()

	l.mu.Lock()
	defer l.mu.Unlock()

	allowed := true
	for _, w := range windows {
		if w.Limit <= 0 {
			continue
		}
		k := key + ":" + w.Duration.String()
		var times []time.Time
		if v, ok := l.calls.Get(k); ok {
			times = v.([]time.Time)
		}

		cutoff := now.Add(-w.Duration)
		kept := times[:0]
		for _, t := range times {
			if t.After(cutoff) {
				kept = append(kept, t)
			}
		}
		if len(kept) >= w.Limit {
			allowed = false
		}
		kept = append(kept, now)
		l.calls.Set(k, kept, w.Duration+time.Minute)
	}
	return allowed, nil
}
