package http

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/orris-inc/billing/internal/infrastructure/cache"
	"github.com/orris-inc/billing/internal/infrastructure/config"
	"github.com/orris-inc/billing/internal/infrastructure/ratelimit"
	"github.com/orris-inc/billing/internal/shared/biztime"
	"github.com/orris-inc/billing/internal/shared/logger"
)

// Container holds the infrastructure, repositories, services and handlers
// and wires them together. The CLI builds one for both the HTTP server and
// one-shot commands such as the period-end sweep.
type Container struct {
	engine  *gin.Engine
	db      *gorm.DB
	cfg     *config.Config
	log     logger.Interface
	redis   *redis.Client
	caches  *cache.Caches
	limiter ratelimit.Limiter

	repos    *repositories
	services *Services
	hdlrs    *allHandlers
}

// NewContainer connects the cache backend and builds every service. The
// database must already be open.
func NewContainer(ctx context.Context, cfg *config.Config, db *gorm.DB, log logger.Interface) (*Container, error) {
	c := &Container{
		db:  db,
		cfg: cfg,
		log: log,
	}

	if err := c.initCache(ctx); err != nil {
		return nil, err
	}

	c.repos = newRepositories(db, log)
	c.services = newServices(c.repos, db, c.caches, cfg, biztime.NowUTC, log)
	c.hdlrs = newHandlers(c.services, log)
	return c, nil
}

func (c *Container) initCache(ctx context.Context) error {
	if c.cfg.Cache.Backend == cache.BackendRedis {
		client, err := cache.NewRedisClient(ctx, &c.cfg.Redis)
		if err != nil {
			return err
		}
		c.redis = client
	}

	var client redis.UniversalClient
	if c.redis != nil {
		client = c.redis
	}
	store, err := cache.NewStore(&c.cfg.Cache, client)
	if err != nil {
		return fmt.Errorf("failed to create cache store: %w", err)
	}
	c.caches = cache.NewCaches(store, &c.cfg.Cache, c.log.Named("cache"))
	c.limiter = ratelimit.New(client, biztime.NowUTC)

	c.log.Infow("cache initialized", "backend", c.cfg.Cache.Backend)
	return nil
}

// Services exposes the application services for non-HTTP entry points.
func (c *Container) Services() *Services {
	return c.services
}

// Shutdown releases connections owned by the container. The database is
// owned by the caller.
func (c *Container) Shutdown() {
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.log.Warnw("failed to close redis client", "error", err)
		}
	}
}
