package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/orris-inc/billing/internal/application/subscription/dto"
	"github.com/orris-inc/billing/internal/domain/subscription"
	vo "github.com/orris-inc/billing/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/billing/internal/shared/db"
	"github.com/orris-inc/billing/internal/shared/logger"
)

const defaultSweepBatchSize = 100

// ExpireSubscriptionsUseCase settles subscriptions whose period has ended:
// scheduled cancellations become canceled and non-renewing subscriptions
// expire. It is driven by an external cron through the CLI.
type ExpireSubscriptionsUseCase struct {
	subscriptionRepo subscription.SubscriptionRepository
	tx               db.Transactor
	cache            CacheInvalidator
	batchSize        int
	logger           logger.Interface
}

func NewExpireSubscriptionsUseCase(
	subscriptionRepo subscription.SubscriptionRepository,
	tx db.Transactor,
	cache CacheInvalidator,
	batchSize int,
	logger logger.Interface,
) *ExpireSubscriptionsUseCase {
	if batchSize <= 0 {
		batchSize = defaultSweepBatchSize
	}
	return &ExpireSubscriptionsUseCase{
		subscriptionRepo: subscriptionRepo,
		tx:               tx,
		cache:            cache,
		batchSize:        batchSize,
		logger:           logger,
	}
}

// Execute processes batches until none is left or a batch makes no
// progress. Each subscription is settled in its own transaction so one
// failure does not roll back the others.
func (uc *ExpireSubscriptionsUseCase) Execute(ctx context.Context, now time.Time) (*dto.SweepResult, error) {
	result := &dto.SweepResult{}
	skipped := make(map[string]struct{})

	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		// Skipped rows still match, so widen the window past them.
		limit := uc.batchSize + len(skipped)
		batch, err := uc.subscriptionRepo.FindPeriodEnded(ctx, now, limit)
		if err != nil {
			return result, fmt.Errorf("failed to find ended subscriptions: %w", err)
		}

		progress := 0
		for _, sub := range batch {
			if _, seen := skipped[sub.ID()]; seen {
				continue
			}
			result.Scanned++
			settled, err := uc.settle(ctx, sub, now)
			if err != nil {
				result.Failed++
				skipped[sub.ID()] = struct{}{}
				uc.logger.Errorw("failed to settle ended subscription", "subscription_id", sub.ID(), "error", err)
				continue
			}
			if settled == nil {
				skipped[sub.ID()] = struct{}{}
				continue
			}
			progress++
			switch settled.Status() {
			case vo.StatusCanceled:
				result.Canceled++
			case vo.StatusExpired:
				result.Expired++
			}
		}

		if progress == 0 || len(batch) < limit {
			break
		}
	}

	if result.Scanned > 0 {
		uc.logger.Infow("period-end sweep finished",
			"scanned", result.Scanned,
			"canceled", result.Canceled,
			"expired", result.Expired,
			"failed", result.Failed,
		)
	}
	return result, nil
}

// settle re-reads the subscription inside a transaction and closes its
// period. It returns nil when nothing applied.
func (uc *ExpireSubscriptionsUseCase) settle(ctx context.Context, candidate *subscription.Subscription, now time.Time) (*subscription.Subscription, error) {
	var settled *subscription.Subscription
	err := uc.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		sub, err := loadSubscription(ctx, uc.subscriptionRepo, candidate.ID(), "")
		if err != nil {
			return err
		}
		event := sub.CloseEndedPeriod(now)
		if event == nil {
			return nil
		}
		if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
			return err
		}
		if err := uc.subscriptionRepo.AppendEvents(ctx, event.With("source", "sweep")); err != nil {
			return err
		}
		settled = sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	if settled != nil {
		uc.cache.Invalidate(ctx, invalidationKeys(settled)...)
	}
	return settled, nil
}
