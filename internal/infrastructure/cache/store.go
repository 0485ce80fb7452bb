package cache

import (
	"context"
	"time"
)

// Store is a raw key-value backend with TTLs and glob deletion. Keys passed
// to a Store are fully qualified; namespacing happens in Cache.
type Store interface {
	// Get returns found=false on a miss.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) (bool, error)
	// DeleteByPattern removes every key matching a Redis-style glob and
	// returns how many were removed. Keys are collected incrementally and
	// deleted in batches of at most batchSize.
	DeleteByPattern(ctx context.Context, pattern string, batchSize int) (int, error)
}
