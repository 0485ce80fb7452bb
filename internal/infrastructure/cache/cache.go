package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/orris-inc/billing/internal/shared/logger"
)

// Options tune a Cache. Zero values fall back to sensible defaults.
type Options struct {
	DefaultTTL       time.Duration
	DeleteBatchSize  int
	OperationTimeout time.Duration
	// DeleteRetries bounds retries of invalidation calls.
	DeleteRetries uint64
}

func (o Options) withDefaults() Options {
	if o.DefaultTTL <= 0 {
		o.DefaultTTL = 5 * time.Minute
	}
	if o.DeleteBatchSize <= 0 {
		o.DeleteBatchSize = 500
	}
	if o.OperationTimeout <= 0 {
		o.OperationTimeout = 500 * time.Millisecond
	}
	if o.DeleteRetries == 0 {
		o.DeleteRetries = 2
	}
	return o
}

// Cache is a namespaced, JSON-encoded view over a Store. It never returns
// backend errors: a failed read is a miss and a failed write or delete is
// logged and reported as false. The relational store stays authoritative.
type Cache struct {
	store  Store
	prefix string
	opts   Options
	logger logger.Interface
}

func New(store Store, prefix string, opts Options, log logger.Interface) *Cache {
	return &Cache{
		store:  store,
		prefix: prefix,
		opts:   opts.withDefaults(),
		logger: log.With("cache", prefix),
	}
}

func (c *Cache) key(k string) string {
	return c.prefix + k
}

func (c *Cache) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.opts.OperationTimeout)
}

// Get decodes the cached value for key into dest and reports whether it hit.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	opCtx, cancel := c.opContext(ctx)
	defer cancel()

	raw, found, err := c.store.Get(opCtx, c.key(key))
	if err != nil {
		c.logger.Warnw("cache read failed, treating as miss", "key", key, "error", err)
		return false
	}
	if !found {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Warnw("cache entry undecodable, treating as miss", "key", key, "error", err)
		return false
	}
	return true
}

// Set stores value under key. ttl <= 0 uses the default TTL.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) bool {
	if ttl <= 0 {
		ttl = c.opts.DefaultTTL
	}
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warnw("cache value not encodable", "key", key, "error", err)
		return false
	}

	opCtx, cancel := c.opContext(ctx)
	defer cancel()

	if err := c.store.Set(opCtx, c.key(key), raw, ttl); err != nil {
		c.logger.Warnw("cache write failed", "key", key, "error", err)
		return false
	}
	return true
}

func (c *Cache) Delete(ctx context.Context, key string) bool {
	var deleted bool
	err := c.retry(ctx, func(opCtx context.Context) error {
		var err error
		deleted, err = c.store.Delete(opCtx, c.key(key))
		return err
	})
	if err != nil {
		c.logger.Warnw("cache delete failed", "key", key, "error", err)
		return false
	}
	return deleted
}

// DeleteByPattern removes all keys in this namespace matching pattern and
// returns how many were removed. batchSize <= 0 uses the configured size.
func (c *Cache) DeleteByPattern(ctx context.Context, pattern string, batchSize int) int {
	if batchSize <= 0 {
		batchSize = c.opts.DeleteBatchSize
	}
	var count int
	err := c.retry(ctx, func(opCtx context.Context) error {
		n, err := c.store.DeleteByPattern(opCtx, c.key(pattern), batchSize)
		count += n
		return err
	})
	if err != nil {
		c.logger.Warnw("cache pattern delete failed", "pattern", pattern, "deleted", count, "error", err)
	}
	return count
}

// Invalidate deletes exact keys and glob patterns. Entries are read as globs:
// one with an unescaped metacharacter is a pattern, anything else is an exact
// key after its escapes are removed. Build entries with EscapePattern around
// caller-supplied parts.
func (c *Cache) Invalidate(ctx context.Context, keysOrPatterns ...string) {
	for _, k := range keysOrPatterns {
		if key, ok := literalKey(k); ok {
			c.Delete(ctx, key)
		} else {
			c.DeleteByPattern(ctx, k, 0)
		}
	}
}

func (c *Cache) retry(ctx context.Context, op func(context.Context) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	b.MaxInterval = 200 * time.Millisecond

	policy := backoff.WithContext(backoff.WithMaxRetries(b, c.opts.DeleteRetries), ctx)
	return backoff.Retry(func() error {
		opCtx, cancel := c.opContext(ctx)
		defer cancel()
		return op(opCtx)
	}, policy)
}

const globMeta = `*?[]\`

// EscapePattern quotes glob metacharacters so s matches itself literally in
// DeleteByPattern and Invalidate. Redis MATCH and path.Match share the
// backslash escape.
func EscapePattern(s string) string {
	if !strings.ContainsAny(s, globMeta) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		if strings.ContainsRune(globMeta, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// literalKey unescapes s and reports false when s holds an unescaped
// wildcard and so must be matched as a pattern.
func literalKey(s string) (string, bool) {
	if !strings.ContainsAny(s, globMeta) {
		return s, true
	}
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if escaped {
			b.WriteRune(r)
			escaped = false
			continue
		}
		switch r {
		case '\\':
			escaped = true
		case '*', '?', '[':
			return "", false
		default:
			b.WriteRune(r)
		}
	}
	if escaped {
		b.WriteByte('\\')
	}
	return b.String(), true
}

// GetOrLoad returns the cached value for key, or calls load and caches its
// result. Load errors are returned untouched and nothing is cached.
func GetOrLoad[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var cached T
	if c.Get(ctx, key, &cached) {
		return cached, nil
	}
	value, err := load(ctx)
	if err != nil {
		return value, err
	}
	c.Set(ctx, key, value, ttl)
	return value, nil
}
