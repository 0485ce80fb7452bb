package cache

import (
	"context"
	"fmt"
	"path"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore implements Store in process. Used for single-instance
// deployments and tests.
type MemoryStore struct {
	cache *gocache.Cache
}

func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	return &MemoryStore{cache: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.cache.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, false, fmt.Errorf("memory cache: unexpected value type %T for %s", v, key)
	}
	return b, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	s.cache.Set(key, value, ttl)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) (bool, error) {
	_, existed := s.cache.Get(key)
	s.cache.Delete(key)
	return existed, nil
}

// DeleteByPattern matches keys with path.Match, which agrees with Redis globs
// for the *, ? and [...] forms used here. batchSize is ignored.
func (s *MemoryStore) DeleteByPattern(ctx context.Context, pattern string, _ int) (int, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return 0, fmt.Errorf("memory cache: bad pattern %q: %w", pattern, err)
	}
	deleted := 0
	for key := range s.cache.Items() {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		if ok, _ := path.Match(pattern, key); ok {
			s.cache.Delete(key)
			deleted++
		}
	}
	return deleted, nil
}
