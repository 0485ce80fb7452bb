package subscription

import (
	"errors"
	"fmt"
)

var (
	ErrAppNotFound             = errors.New("app not found")
	ErrAppNameExists           = errors.New("app name already exists")
	ErrPlanNotFound            = errors.New("subscription plan not found")
	ErrPlanNotPurchasable      = errors.New("subscription plan is not active")
	ErrPlanNameExists          = errors.New("plan name already exists in app")
	ErrPlanInUse               = errors.New("subscription plan is referenced by subscriptions")
	ErrPlanAppMismatch         = errors.New("plan does not belong to app")
	ErrFeatureNotFound         = errors.New("plan feature not found")
	ErrSubscriptionNotFound    = errors.New("subscription not found")
	ErrSubscriptionTerminal    = errors.New("subscription is already canceled or expired")
	ErrAlreadyScheduled        = errors.New("subscription is already scheduled to cancel")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrInvalidBillingCycle     = errors.New("invalid billing cycle")
	ErrInvalidPrice            = errors.New("invalid price")
	ErrInvalidCurrency         = errors.New("invalid currency")
	ErrConcurrentModification  = errors.New("record was modified concurrently")
)

func ErrInvalidTransition(from, to string) error {
	return fmt.Errorf("%w: from %s to %s", ErrInvalidStatusTransition, from, to)
}
