package promocode

import (
	"errors"

	"github.com/orris-inc/billing/internal/domain/promotion"
	"github.com/orris-inc/billing/internal/domain/subscription"
	apperrors "github.com/orris-inc/billing/internal/shared/errors"
)

// toAppError maps promotion and subscription failures onto the API
// taxonomy. AppErrors pass through unchanged.
func toAppError(err error, fallback string) error {
	if err == nil {
		return nil
	}
	if apperrors.IsAppError(err) {
		return err
	}
	switch {
	case errors.Is(err, promotion.ErrPromoNotFound),
		errors.Is(err, subscription.ErrSubscriptionNotFound),
		errors.Is(err, subscription.ErrPlanNotFound):
		return apperrors.NewNotFoundError(err.Error())
	case errors.Is(err, promotion.ErrUsageLimitReached),
		errors.Is(err, promotion.ErrAlreadyRedeemed):
		return apperrors.NewConflictError(err.Error())
	case promotion.IsVerdict(err):
		return apperrors.NewBadRequestError(err.Error())
	case errors.Is(err, promotion.ErrCodeExists),
		errors.Is(err, promotion.ErrInvalidUsageLimit),
		errors.Is(err, promotion.ErrInvalidDateRange):
		return apperrors.NewBadRequestError(err.Error())
	}
	return apperrors.NewInternalError(fallback)
}

// invalidInput maps a rejection from the promo code constructor or mutator.
func invalidInput(err error) error {
	if errors.Is(err, promotion.ErrCodeExists) || errors.Is(err, promotion.ErrInvalidUsageLimit) ||
		errors.Is(err, promotion.ErrInvalidDateRange) {
		return toAppError(err, "")
	}
	return apperrors.NewValidationError(err.Error())
}
