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

type ListUserSubscriptionsUseCase struct {
	subscriptionRepo subscription.SubscriptionRepository
	cache            *cache.Cache
	logger           logger.Interface
}

func NewListUserSubscriptionsUseCase(
	subscriptionRepo subscription.SubscriptionRepository,
	subCache *cache.Cache,
	logger logger.Interface,
) *ListUserSubscriptionsUseCase {
	return &ListUserSubscriptionsUseCase{
		subscriptionRepo: subscriptionRepo,
		cache:            subCache,
		logger:           logger,
	}
}

// Execute lists a user's subscriptions, newest first, optionally within one app.
func (uc *ListUserSubscriptionsUseCase) Execute(ctx context.Context, userID string, appID *string) ([]*dto.SubscriptionDTO, error) {
	if err := utils.ValidateID(userID); err != nil {
		return nil, err
	}
	if appID != nil && *appID == "" {
		appID = nil
	}
	return cache.GetOrLoad(ctx, uc.cache, userKey(userID, appID), 0,
		func(ctx context.Context) ([]*dto.SubscriptionDTO, error) {
			subs, err := uc.subscriptionRepo.ListByUser(ctx, userID, appID)
			if err != nil {
				uc.logger.Errorw("failed to list user subscriptions", "user_id", userID, "error", err)
				return nil, apperrors.NewInternalError("failed to list subscriptions")
			}
			return dto.ToSubscriptionDTOList(subs), nil
		})
}
