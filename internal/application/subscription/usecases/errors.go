package usecases

import (
	"context"
	"errors"

	"github.com/orris-inc/billing/internal/domain/subscription"
	apperrors "github.com/orris-inc/billing/internal/shared/errors"
)

// toAppError maps lifecycle failures onto the API taxonomy. AppErrors pass
// through unchanged.
func toAppError(err error, fallback string) error {
	if err == nil {
		return nil
	}
	if apperrors.IsAppError(err) {
		return err
	}
	switch {
	case errors.Is(err, subscription.ErrSubscriptionNotFound),
		errors.Is(err, subscription.ErrPlanNotFound),
		errors.Is(err, subscription.ErrPlanNotPurchasable):
		return apperrors.NewNotFoundError(err.Error())
	case errors.Is(err, subscription.ErrSubscriptionTerminal),
		errors.Is(err, subscription.ErrAlreadyScheduled),
		errors.Is(err, subscription.ErrInvalidStatusTransition),
		errors.Is(err, subscription.ErrPlanAppMismatch):
		return apperrors.NewBadRequestError(err.Error())
	case errors.Is(err, subscription.ErrConcurrentModification):
		return apperrors.NewConflictError(err.Error())
	}
	return apperrors.NewInternalError(fallback)
}

// rejected maps a refusal from a Subscription state method. Known
// sentinels keep their taxonomy; anything else is a bad request.
func rejected(err error) error {
	if errors.Is(err, subscription.ErrSubscriptionTerminal) || errors.Is(err, subscription.ErrAlreadyScheduled) ||
		errors.Is(err, subscription.ErrInvalidStatusTransition) {
		return toAppError(err, "")
	}
	return apperrors.NewBadRequestError(err.Error())
}

// loadSubscription returns ErrSubscriptionNotFound for a missing row and
// a Forbidden error when ownerID is set and does not own it.
func loadSubscription(ctx context.Context, repo subscription.SubscriptionRepository, id, ownerID string) (*subscription.Subscription, error) {
	sub, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, subscription.ErrSubscriptionNotFound
	}
	if ownerID != "" && !sub.BelongsTo(ownerID) {
		return nil, apperrors.NewForbiddenError("subscription does not belong to user")
	}
	return sub, nil
}
