package usecases

import "context"

// CacheInvalidator clears cached subscription views after a mutation.
// Failures are absorbed by the implementation.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, keysOrPatterns ...string)
}
