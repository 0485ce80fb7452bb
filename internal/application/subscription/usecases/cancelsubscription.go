package usecases

import (
	"context"

	"github.com/orris-inc/billing/internal/application/subscription/dto"
	"github.com/orris-inc/billing/internal/domain/subscription"
	"github.com/orris-inc/billing/internal/shared/biztime"
	"github.com/orris-inc/billing/internal/shared/db"
	"github.com/orris-inc/billing/internal/shared/logger"
	"github.com/orris-inc/billing/internal/shared/utils"
)

type CancelSubscriptionCommand struct {
	SubscriptionID string `json:"subscription_id" validate:"required"`
	// UserID, when set, must own the subscription.
	UserID    string `json:"user_id,omitempty"`
	Immediate bool   `json:"immediate"`
}

type CancelSubscriptionUseCase struct {
	subscriptionRepo subscription.SubscriptionRepository
	tx               db.Transactor
	cache            CacheInvalidator
	clock            biztime.Clock
	logger           logger.Interface
}

func NewCancelSubscriptionUseCase(
	subscriptionRepo subscription.SubscriptionRepository,
	tx db.Transactor,
	cache CacheInvalidator,
	clock biztime.Clock,
	logger logger.Interface,
) *CancelSubscriptionUseCase {
	return &CancelSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		tx:               tx,
		cache:            cache,
		clock:            clock,
		logger:           logger,
	}
}

// Execute cancels now, or schedules cancellation for the end of the current
// period. A scheduled cancellation leaves the status untouched until the
// period-end sweep.
func (uc *CancelSubscriptionUseCase) Execute(ctx context.Context, cmd CancelSubscriptionCommand) (*dto.SubscriptionDTO, error) {
	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, err
	}

	var sub *subscription.Subscription
	err := uc.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		loaded, err := loadSubscription(ctx, uc.subscriptionRepo, cmd.SubscriptionID, cmd.UserID)
		if err != nil {
			return err
		}
		event, err := loaded.Cancel(cmd.Immediate, uc.clock())
		if err != nil {
			return rejected(err)
		}
		if err := uc.subscriptionRepo.Update(ctx, loaded); err != nil {
			return err
		}
		if err := uc.subscriptionRepo.AppendEvents(ctx, event); err != nil {
			return err
		}
		sub = loaded
		return nil
	})
	if err != nil {
		uc.logger.Warnw("cancel subscription failed", "subscription_id", cmd.SubscriptionID, "error", err)
		return nil, toAppError(err, "failed to cancel subscription")
	}

	uc.cache.Invalidate(ctx, invalidationKeys(sub)...)
	uc.logger.Infow("subscription cancelled",
		"subscription_id", sub.ID(),
		"immediate", cmd.Immediate,
		"status", sub.Status().String(),
		"effective_at", sub.CancellationEffectiveAt(),
	)
	return dto.ToSubscriptionDTO(sub), nil
}
