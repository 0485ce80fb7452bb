package usecases

import (
	"context"

	"github.com/orris-inc/billing/internal/application/subscription/dto"
	"github.com/orris-inc/billing/internal/domain/subscription"
	"github.com/orris-inc/billing/internal/infrastructure/cache"
	apperrors "github.com/orris-inc/billing/internal/shared/errors"
	"github.com/orris-inc/billing/internal/shared/logger"
	"github.com/orris-inc/billing/internal/shared/utils"
)

type GetSubscriptionUseCase struct {
	subscriptionRepo subscription.SubscriptionRepository
	cache            *cache.Cache
	logger           logger.Interface
}

func NewGetSubscriptionUseCase(
	subscriptionRepo subscription.SubscriptionRepository,
	subCache *cache.Cache,
	logger logger.Interface,
) *GetSubscriptionUseCase {
	return &GetSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		cache:            subCache,
		logger:           logger,
	}
}

// Execute returns one subscription. When ownerID is set the subscription
// must belong to that user.
func (uc *GetSubscriptionUseCase) Execute(ctx context.Context, subscriptionID, ownerID string) (*dto.SubscriptionDTO, error) {
	if err := utils.ValidateID(subscriptionID); err != nil {
		return nil, err
	}
	result, err := cache.GetOrLoad(ctx, uc.cache, subscriptionKey(subscriptionID), 0,
		func(ctx context.Context) (*dto.SubscriptionDTO, error) {
			sub, err := loadSubscription(ctx, uc.subscriptionRepo, subscriptionID, "")
			if err != nil {
				return nil, toAppError(err, "failed to get subscription")
			}
			return dto.ToSubscriptionDTO(sub), nil
		})
	if err != nil {
		return nil, err
	}
	if ownerID != "" && result.UserID != ownerID {
		return nil, apperrors.NewForbiddenError("subscription does not belong to user")
	}
	return result, nil
}
