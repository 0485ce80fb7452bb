package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/orris-inc/billing/internal/shared/config"
	"github.com/orris-inc/billing/internal/shared/constants"
	"github.com/orris-inc/billing/internal/shared/logger"
)

const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// NewStore builds the configured backend. client may be nil for the memory backend.
func NewStore(cfg *config.CacheConfig, client redis.UniversalClient) (Store, error) {
	switch cfg.Backend {
	case BackendRedis:
		if client == nil {
			return nil, fmt.Errorf("redis cache backend requires a redis client")
		}
		return NewRedisStore(client, cfg.ScanBatchSize), nil
	case BackendMemory, "":
		return NewMemoryStore(time.Minute), nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
}

// Caches holds one Cache per logical namespace. They may share a Store
// because prefixes keep their keys disjoint.
type Caches struct {
	Plans         *Cache
	Promos        *Cache
	Subscriptions *Cache
	Analytics     *Cache
}

func NewCaches(store Store, cfg *config.CacheConfig, log logger.Interface) *Caches {
	opts := func(ttl time.Duration) Options {
		return Options{
			DefaultTTL:       ttl,
			DeleteBatchSize:  cfg.DeleteBatchSize,
			OperationTimeout: cfg.OperationTimeout,
		}
	}
	return &Caches{
		Plans:         New(store, constants.CacheNamespacePlans, opts(cfg.PlanTTL), log),
		Promos:        New(store, constants.CacheNamespacePromos, opts(cfg.PromoTTL), log),
		Subscriptions: New(store, constants.CacheNamespaceSubscriptions, opts(cfg.SubscriptionTTL), log),
		Analytics:     New(store, constants.CacheNamespaceAnalytics, opts(cfg.AnalyticsTTL), log),
	}
}
