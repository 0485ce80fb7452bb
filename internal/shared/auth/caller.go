// Package auth carries the caller identity produced by the upstream
// authentication layer. It performs no authentication itself.
package auth

import (
	"context"
	"strings"

	"github.com/orris-inc/billing/internal/shared/constants"
)

// Caller is the opaque identity attached to a request.
type Caller struct {
	UserID string
	Role   string
}

// IsAdmin checks if the caller has the admin role
func (c Caller) IsAdmin() bool {
	return strings.EqualFold(c.Role, constants.RoleAdmin)
}

// IsAnonymous reports whether no user id was supplied.
func (c Caller) IsAnonymous() bool {
	return c.UserID == ""
}

// CanActFor reports whether the caller may operate on userID's resources.
func (c Caller) CanActFor(userID string) bool {
	return c.IsAdmin() || (c.UserID != "" && c.UserID == userID)
}

type callerKey struct{}

// WithCaller stores the caller in ctx.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFrom returns the caller stored in ctx, if any.
func CallerFrom(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(Caller)
	return c, ok
}
