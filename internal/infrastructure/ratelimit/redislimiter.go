package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/orris-inc/billing/internal/shared/biztime"
)

// RedisLimiter keeps one sorted set per key and window, scored by call time.
type RedisLimiter struct {
	client redis.UniversalClient
	clock  biztime.Clock
	seq    atomic.Uint64
}

func NewRedisLimiter(client redis.UniversalClient, clock biztime.Clock) *RedisLimiter {
	if clock == nil {
		clock = biztime.NowUTC
	}
	return &RedisLimiter{client: client, clock: clock}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, windows ...Window) (bool, error) {
	now := l.clock()
	allowed := true
	for _, w := range windows {
		if w.Limit <= 0 {
			continue
		}
		ok, err := l.checkWindow(ctx, key, w, now)
		if err != nil {
			return false, err
		}
		if !ok {
			allowed = false
		}
	}
	return allowed, nil
}

func (l *RedisLimiter) checkWindow(ctx context.Context, key string, w Window, now time.Time) (bool, error) {
	redisKey := l.key(key, w.Duration)
	windowStart := now.Add(-w.Duration).UnixNano()
	nowNano := now.UnixNano()
	// Unique member so calls landing on the same nanosecond all count.
	member := strconv.FormatInt(nowNano, 10) + "-" + strconv.FormatUint(l.seq.Add(1), 10)

	pipe := l.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(windowStart, 10))
	zcard := pipe.ZCard(ctx, redisKey)
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(nowNano), Member: member})
	pipe.Expire(ctx, redisKey, w.Duration+time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to execute rate limit pipeline: %w", err)
	}

	return zcard.Val() < int64(w.Limit), nil
}

func (l *RedisLimiter) key(identifier string, window time.Duration) string {
	return fmt.Sprintf("ratelimit:%s:%s", identifier, window.String())
}
