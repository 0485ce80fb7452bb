package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/billing/internal/infrastructure/ratelimit"
	"github.com/orris-inc/billing/internal/interfaces/http/middleware"
	"github.com/orris-inc/billing/internal/interfaces/http/routes"
	"github.com/orris-inc/billing/internal/shared/utils"
)

// Engine returns the gin engine with every route registered, building it on
// first use.
func (c *Container) Engine() *gin.Engine {
	if c.engine == nil {
		c.engine = c.setupRoutes()
	}
	return c.engine
}

func (c *Container) setupRoutes() *gin.Engine {
	engine := gin.New()
	engine.Use(
		middleware.Recovery(c.log),
		middleware.RequestLogger(c.log.Named("http")),
		middleware.SecurityHeaders(),
		middleware.CORS(c.cfg.Server.AllowedOrigins),
		middleware.APIVersion(),
		middleware.Caller(),
	)

	engine.GET("/health", c.health)

	api := engine.Group("/api/v1")
	user := api.Group("")
	user.Use(middleware.RequireUser())
	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdmin())

	groups := routes.Groups{Public: api, User: user, Admin: admin}
	routes.SetupAppRoutes(groups, c.hdlrs.app)
	routes.SetupPlanRoutes(groups, c.hdlrs.plan)
	promoLimit := middleware.RateLimit(c.limiter, "promo", ratelimit.PromoWindows(c.cfg.RateLimit), c.log.Named("ratelimit"))
	routes.SetupPromoCodeRoutes(groups, c.hdlrs.promoCode, promoLimit)
	routes.SetupSubscriptionRoutes(groups, c.hdlrs.subscription)
	routes.SetupAnalyticsRoutes(groups, c.hdlrs.analytics)

	return engine
}

func (c *Container) health(ctx *gin.Context) {
	sqlDB, err := c.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx.Request.Context())
	}
	if err != nil {
		c.log.Warnw("health check failed", "error", err)
		utils.ErrorResponse(ctx, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	utils.SuccessResponse(ctx, http.StatusOK, "ok", nil)
}
