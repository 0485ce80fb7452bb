package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/billing/internal/interfaces/http/middleware"
	"github.com/orris-inc/billing/internal/shared/errors"
)

// bindJSON decodes the body and reports malformed input as a validation
// error. Field rules are enforced by the services.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return errors.NewValidationError("invalid request body", err.Error())
	}
	return nil
}

func bindQuery(c *gin.Context, dst any) error {
	if err := c.ShouldBindQuery(dst); err != nil {
		return errors.NewValidationError("invalid query parameters", err.Error())
	}
	return nil
}

// ownerScope returns the user id a request is restricted to. Admins are not
// restricted.
func ownerScope(c *gin.Context) string {
	caller := middleware.CallerFrom(c)
	if caller.IsAdmin() {
		return ""
	}
	return caller.UserID
}

// actingUser resolves the user a request acts for: admins may name another
// user, everyone else acts for themselves.
func actingUser(c *gin.Context, requested string) string {
	caller := middleware.CallerFrom(c)
	if caller.IsAdmin() && requested != "" {
		return requested
	}
	return caller.UserID
}

func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}

func optionalQuery(c *gin.Context, key string) *string {
	if v := c.Query(key); v != "" {
		return &v
	}
	return nil
}
