package usecases

import (
	"context"

	"github.com/orris-inc/billing/internal/application/subscription/dto"
	"github.com/orris-inc/billing/internal/domain/subscription"
	vo "github.com/orris-inc/billing/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/billing/internal/shared/biztime"
	"github.com/orris-inc/billing/internal/shared/db"
	apperrors "github.com/orris-inc/billing/internal/shared/errors"
	"github.com/orris-inc/billing/internal/shared/logger"
	"github.com/orris-inc/billing/internal/shared/utils"
)

type UpdateSubscriptionStatusCommand struct {
	SubscriptionID string `json:"subscription_id" validate:"required"`
	Status         string `json:"status" validate:"required"`
}

// UpdateSubscriptionStatusUseCase is the admin override. It still obeys the
// status transition table.
type UpdateSubscriptionStatusUseCase struct {
	subscriptionRepo subscription.SubscriptionRepository
	tx               db.Transactor
	cache            CacheInvalidator
	clock            biztime.Clock
	logger           logger.Interface
}

func NewUpdateSubscriptionStatusUseCase(
	subscriptionRepo subscription.SubscriptionRepository,
	tx db.Transactor,
	cache CacheInvalidator,
	clock biztime.Clock,
	logger logger.Interface,
) *UpdateSubscriptionStatusUseCase {
	return &UpdateSubscriptionStatusUseCase{
		subscriptionRepo: subscriptionRepo,
		tx:               tx,
		cache:            cache,
		clock:            clock,
		logger:           logger,
	}
}

func (uc *UpdateSubscriptionStatusUseCase) Execute(ctx context.Context, cmd UpdateSubscriptionStatusCommand) (*dto.SubscriptionDTO, error) {
	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, err
	}
	target, err := vo.ParseSubscriptionStatus(cmd.Status)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	var (
		sub  *subscription.Subscription
		from vo.SubscriptionStatus
	)
	err = uc.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		loaded, err := loadSubscription(ctx, uc.subscriptionRepo, cmd.SubscriptionID, "")
		if err != nil {
			return err
		}
		from = loaded.Status()
		event, err := loaded.TransitionTo(target, uc.clock())
		if err != nil {
			return rejected(err)
		}
		if err := uc.subscriptionRepo.Update(ctx, loaded); err != nil {
			return err
		}
		if err := uc.subscriptionRepo.AppendEvents(ctx, event.With("source", "admin")); err != nil {
			return err
		}
		sub = loaded
		return nil
	})
	if err != nil {
		uc.logger.Warnw("update subscription status failed",
			"subscription_id", cmd.SubscriptionID,
			"target", cmd.Status,
			"error", err,
		)
		return nil, toAppError(err, "failed to update subscription status")
	}

	uc.cache.Invalidate(ctx, invalidationKeys(sub)...)
	uc.logger.Infow("subscription status updated",
		"subscription_id", sub.ID(),
		"from", from.String(),
		"to", sub.Status().String(),
	)
	return dto.ToSubscriptionDTO(sub), nil
}
