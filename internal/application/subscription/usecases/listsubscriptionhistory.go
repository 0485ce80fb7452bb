package usecases

import (
	"context"

	"github.com/orris-inc/billing/internal/application/subscription/dto"
	"github.com/orris-inc/billing/internal/domain/subscription"
	"github.com/orris-inc/billing/internal/shared/logger"
	"github.com/orris-inc/billing/internal/shared/utils"
)

// ListSubscriptionHistoryUseCase reads the audit trail and payments of one
// subscription. History is append-only and read rarely, so it is not cached.
type ListSubscriptionHistoryUseCase struct {
	subscriptionRepo subscription.SubscriptionRepository
	logger           logger.Interface
}

func NewListSubscriptionHistoryUseCase(
	subscriptionRepo subscription.SubscriptionRepository,
	logger logger.Interface,
) *ListSubscriptionHistoryUseCase {
	return &ListSubscriptionHistoryUseCase{
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
	}
}

func (uc *ListSubscriptionHistoryUseCase) Events(ctx context.Context, subscriptionID, ownerID string) ([]*dto.SubscriptionEventDTO, error) {
	if err := utils.ValidateID(subscriptionID); err != nil {
		return nil, err
	}
	if _, err := loadSubscription(ctx, uc.subscriptionRepo, subscriptionID, ownerID); err != nil {
		return nil, toAppError(err, "failed to list subscription events")
	}
	events, err := uc.subscriptionRepo.ListEvents(ctx, subscriptionID)
	if err != nil {
		uc.logger.Errorw("failed to list subscription events", "subscription_id", subscriptionID, "error", err)
		return nil, toAppError(err, "failed to list subscription events")
	}
	out := make([]*dto.SubscriptionEventDTO, 0, len(events))
	for _, e := range events {
		out = append(out, dto.ToSubscriptionEventDTO(e))
	}
	return out, nil
}

func (uc *ListSubscriptionHistoryUseCase) Payments(ctx context.Context, subscriptionID, ownerID string) ([]*dto.PaymentDTO, error) {
	if err := utils.ValidateID(subscriptionID); err != nil {
		return nil, err
	}
	if _, err := loadSubscription(ctx, uc.subscriptionRepo, subscriptionID, ownerID); err != nil {
		return nil, toAppError(err, "failed to list payments")
	}
	payments, err := uc.subscriptionRepo.ListPayments(ctx, subscriptionID)
	if err != nil {
		uc.logger.Errorw("failed to list payments", "subscription_id", subscriptionID, "error", err)
		return nil, toAppError(err, "failed to list payments")
	}
	out := make([]*dto.PaymentDTO, 0, len(payments))
	for _, p := range payments {
		out = append(out, dto.ToPaymentDTO(p))
	}
	return out, nil
}
