package usecases

import (
	"context"

	"github.com/orris-inc/billing/internal/application/subscription/dto"
	"github.com/orris-inc/billing/internal/domain/subscription"
	"github.com/orris-inc/billing/internal/infrastructure/cache"
	apperrors "github.com/orris-inc/billing/internal/shared/errors"
	"github.com/orris-inc/billing/internal/shared/logger"
	"github.com/orris-inc/billing/internal/shared/query"
	"github.com/orris-inc/billing/internal/shared/utils"
)

type ListSubscriptionsQuery struct {
	UserID   *string `json:"user_id,omitempty" form:"user_id"`
	AppID    *string `json:"app_id,omitempty" form:"app_id"`
	PlanID   *string `json:"plan_id,omitempty" form:"plan_id"`
	Status   *string `json:"status,omitempty" form:"status" validate:"omitempty,oneof=pending trialing active past_due unpaid paused canceled expired"`
	Page     int     `json:"page" form:"page"`
	PageSize int     `json:"page_size" form:"page_size"`
}

type ListSubscriptionsUseCase struct {
	subscriptionRepo subscription.SubscriptionRepository
	cache            *cache.Cache
	logger           logger.Interface
}

func NewListSubscriptionsUseCase(
	subscriptionRepo subscription.SubscriptionRepository,
	subCache *cache.Cache,
	logger logger.Interface,
) *ListSubscriptionsUseCase {
	return &ListSubscriptionsUseCase{
		subscriptionRepo: subscriptionRepo,
		cache:            subCache,
		logger:           logger,
	}
}

func (uc *ListSubscriptionsUseCase) Execute(ctx context.Context, q ListSubscriptionsQuery) (*dto.ListSubscriptionsResult, error) {
	if err := utils.ValidateStruct(q); err != nil {
		return nil, err
	}
	pf := query.NewPageFilter(q.Page, q.PageSize)
	q.Page, q.PageSize = pf.Page, pf.PageSize

	return cache.GetOrLoad(ctx, uc.cache, listKey(q), 0,
		func(ctx context.Context) (*dto.ListSubscriptionsResult, error) {
			subs, total, err := uc.subscriptionRepo.List(ctx, subscription.SubscriptionFilter{
				UserID:   q.UserID,
				AppID:    q.AppID,
				PlanID:   q.PlanID,
				Status:   q.Status,
				Page:     q.Page,
				PageSize: q.PageSize,
			})
			if err != nil {
				uc.logger.Errorw("failed to list subscriptions", "error", err)
				return nil, apperrors.NewInternalError("failed to list subscriptions")
			}
			return &dto.ListSubscriptionsResult{
				Subscriptions: dto.ToSubscriptionDTOList(subs),
				Total:         total,
				Page:          q.Page,
				PageSize:      q.PageSize,
			}, nil
		})
}
