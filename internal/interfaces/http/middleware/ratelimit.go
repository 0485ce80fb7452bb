package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/billing/internal/infrastructure/ratelimit"
	"github.com/orris-inc/billing/internal/shared/logger"
	"github.com/orris-inc/billing/internal/shared/utils"
)

// RateLimit limits calls per caller under scope. Anonymous callers are keyed
// by client IP. When the limiter fails the request is let through.
func RateLimit(limiter ratelimit.Limiter, scope string, windows []ratelimit.Window, log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || len(windows) == 0 {
			c.Next()
			return
		}

		key := scope + ":ip:" + c.ClientIP()
		if caller := CallerFrom(c); !caller.IsAnonymous() {
			key = scope + ":user:" + caller.UserID
		}

		allowed, err := limiter.Allow(c.Request.Context(), key, windows...)
		if err != nil {
			log.Warnw("rate limiter unavailable", "scope", scope, "error", err)
			c.Next()
			return
		}
		if !allowed {
			utils.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
