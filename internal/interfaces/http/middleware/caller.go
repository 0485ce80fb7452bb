package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/billing/internal/shared/auth"
	"github.com/orris-inc/billing/internal/shared/constants"
	"github.com/orris-inc/billing/internal/shared/utils"
)

// Identity headers set by the upstream auth gateway.
const (
	HeaderUserID   = constants.HeaderUserID
	HeaderUserRole = constants.HeaderUserRole
)

const callerKey = "caller"

// Caller attaches the identity from the gateway headers to the request. It
// never rejects; use RequireUser or RequireAdmin on protected groups.
func Caller() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := auth.Caller{
			UserID: strings.TrimSpace(c.GetHeader(HeaderUserID)),
			Role:   strings.TrimSpace(c.GetHeader(HeaderUserRole)),
		}
		c.Set(callerKey, caller)
		if !caller.IsAnonymous() {
			c.Set("user_id", caller.UserID)
		}
		c.Request = c.Request.WithContext(auth.WithCaller(c.Request.Context(), caller))
		c.Next()
	}
}

func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CallerFrom(c).IsAnonymous() {
			utils.ErrorResponse(c, http.StatusUnauthorized, "missing caller identity")
			c.Abort()
			return
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := CallerFrom(c)
		if caller.IsAnonymous() {
			utils.ErrorResponse(c, http.StatusUnauthorized, "missing caller identity")
			c.Abort()
			return
		}
		if !caller.IsAdmin() {
			utils.ErrorResponse(c, http.StatusForbidden, "admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CallerFrom returns the caller attached by Caller, or an anonymous caller.
func CallerFrom(c *gin.Context) auth.Caller {
	if v, ok := c.Get(callerKey); ok {
		if caller, ok := v.(auth.Caller); ok {
			return caller
		}
	}
	return auth.Caller{}
}
