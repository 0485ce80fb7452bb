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

type RenewSubscriptionUseCase struct {
	subscriptionRepo subscription.SubscriptionRepository
	tx               db.Transactor
	cache            CacheInvalidator
	clock            biztime.Clock
	logger           logger.Interface
}

func NewRenewSubscriptionUseCase(
	subscriptionRepo subscription.SubscriptionRepository,
	tx db.Transactor,
	cache CacheInvalidator,
	clock biztime.Clock,
	logger logger.Interface,
) *RenewSubscriptionUseCase {
	return &RenewSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		tx:               tx,
		cache:            cache,
		clock:            clock,
		logger:           logger,
	}
}

// Execute closes the current period, records a settled payment for the
// next one and advances the period by one billing cycle.
func (uc *RenewSubscriptionUseCase) Execute(ctx context.Context, subscriptionID string) (*dto.RenewResult, error) {
	if err := utils.ValidateID(subscriptionID); err != nil {
		return nil, err
	}

	var (
		sub     *subscription.Subscription
		payment *subscription.Payment
	)
	err := uc.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		loaded, err := loadSubscription(ctx, uc.subscriptionRepo, subscriptionID, "")
		if err != nil {
			return err
		}
		now := uc.clock()
		events, err := loaded.Renew(now)
		if err != nil {
			return rejected(err)
		}
		if err := uc.subscriptionRepo.Update(ctx, loaded); err != nil {
			return err
		}
		if err := uc.subscriptionRepo.AppendEvents(ctx, events...); err != nil {
			return err
		}

		p := subscription.NewSucceededPayment(loaded.ID(), loaded.Amount(), loaded.Currency(),
			loaded.CurrentPeriodStart(), loaded.EndDate(), now)
		if err := uc.subscriptionRepo.CreatePayment(ctx, p); err != nil {
			return err
		}
		sub, payment = loaded, p
		return nil
	})
	if err != nil {
		uc.logger.Warnw("renew subscription failed", "subscription_id", subscriptionID, "error", err)
		return nil, toAppError(err, "failed to renew subscription")
	}

	uc.cache.Invalidate(ctx, invalidationKeys(sub)...)
	uc.logger.Infow("subscription renewed",
		"subscription_id", sub.ID(),
		"period_start", sub.CurrentPeriodStart(),
		"period_end", sub.EndDate(),
		"payment_id", payment.ID(),
	)
	return &dto.RenewResult{
		Subscription: dto.ToSubscriptionDTO(sub),
		Payment:      dto.ToPaymentDTO(payment),
	}, nil
}
