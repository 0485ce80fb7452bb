package plan

import (
	"errors"

	"github.com/orris-inc/billing/internal/domain/subscription"
	apperrors "github.com/orris-inc/billing/internal/shared/errors"
)

// toAppError maps domain and storage failures onto the API taxonomy.
// AppErrors pass through unchanged.
func toAppError(err error, fallback string) error {
	if err == nil {
		return nil
	}
	if apperrors.IsAppError(err) {
		return err
	}
	switch {
	case errors.Is(err, subscription.ErrPlanNotFound),
		errors.Is(err, subscription.ErrFeatureNotFound),
		errors.Is(err, subscription.ErrAppNotFound):
		return apperrors.NewNotFoundError(err.Error())
	case errors.Is(err, subscription.ErrPlanNameExists),
		errors.Is(err, subscription.ErrInvalidBillingCycle),
		errors.Is(err, subscription.ErrInvalidPrice),
		errors.Is(err, subscription.ErrInvalidCurrency):
		return apperrors.NewBadRequestError(err.Error())
	case errors.Is(err, subscription.ErrPlanInUse),
		errors.Is(err, subscription.ErrConcurrentModification):
		return apperrors.NewConflictError(err.Error())
	}
	return apperrors.NewInternalError(fallback)
}

// invalidInput maps a rejection from a domain constructor or mutator. Known
// sentinels keep their taxonomy; anything else is a validation failure.
func invalidInput(err error) error {
	if errors.Is(err, subscription.ErrFeatureNotFound) || errors.Is(err, subscription.ErrPlanNameExists) ||
		errors.Is(err, subscription.ErrInvalidBillingCycle) || errors.Is(err, subscription.ErrInvalidPrice) ||
		errors.Is(err, subscription.ErrInvalidCurrency) {
		return toAppError(err, "")
	}
	return apperrors.NewValidationError(err.Error())
}
