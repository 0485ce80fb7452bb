package handlers

import (
	"context"
	"time"

	"github.com/orris-inc/billing/internal/application/analytics"
	"github.com/orris-inc/billing/internal/application/promocode"
	subdto "github.com/orris-inc/billing/internal/application/subscription/dto"
	"github.com/orris-inc/billing/internal/application/subscription/usecases"
)

// Function-field mocks. Only the methods a test exercises need a func; the
// rest panic on a nil call.

type mockSubscriptionService struct {
	createFn   func(ctx context.Context, cmd usecases.CreateSubscriptionCommand) (*subdto.SubscriptionDTO, error)
	cancelFn   func(ctx context.Context, cmd usecases.CancelSubscriptionCommand) (*subdto.SubscriptionDTO, error)
	renewFn    func(ctx context.Context, id string) (*subdto.RenewResult, error)
	statusFn   func(ctx context.Context, cmd usecases.UpdateSubscriptionStatusCommand) (*subdto.SubscriptionDTO, error)
	getFn      func(ctx context.Context, id, ownerID string) (*subdto.SubscriptionDTO, error)
	byUserFn   func(ctx context.Context, userID string, appID *string) ([]*subdto.SubscriptionDTO, error)
	listFn     func(ctx context.Context, q usecases.ListSubscriptionsQuery) (*subdto.ListSubscriptionsResult, error)
	eventsFn   func(ctx context.Context, id, ownerID string) ([]*subdto.SubscriptionEventDTO, error)
	paymentsFn func(ctx context.Context, id, ownerID string) ([]*subdto.PaymentDTO, error)
	sweepFn    func(ctx context.Context, now time.Time) (*subdto.SweepResult, error)
}

func (m *mockSubscriptionService) CreateSubscription(ctx context.Context, cmd usecases.CreateSubscriptionCommand) (*subdto.SubscriptionDTO, error) {
	return m.createFn(ctx, cmd)
}

func (m *mockSubscriptionService) CancelSubscription(ctx context.Context, cmd usecases.CancelSubscriptionCommand) (*subdto.SubscriptionDTO, error) {
	return m.cancelFn(ctx, cmd)
}

func (m *mockSubscriptionService) RenewSubscription(ctx context.Context, id string) (*subdto.RenewResult, error) {
	return m.renewFn(ctx, id)
}

func (m *mockSubscriptionService) UpdateStatus(ctx context.Context, cmd usecases.UpdateSubscriptionStatusCommand) (*subdto.SubscriptionDTO, error) {
	return m.statusFn(ctx, cmd)
}

func (m *mockSubscriptionService) GetSubscription(ctx context.Context, id, ownerID string) (*subdto.SubscriptionDTO, error) {
	return m.getFn(ctx, id, ownerID)
}

func (m *mockSubscriptionService) GetUserSubscriptions(ctx context.Context, userID string, appID *string) ([]*subdto.SubscriptionDTO, error) {
	return m.byUserFn(ctx, userID, appID)
}

func (m *mockSubscriptionService) ListSubscriptions(ctx context.Context, q usecases.ListSubscriptionsQuery) (*subdto.ListSubscriptionsResult, error) {
	return m.listFn(ctx, q)
}

func (m *mockSubscriptionService) ListEvents(ctx context.Context, id, ownerID string) ([]*subdto.SubscriptionEventDTO, error) {
	return m.eventsFn(ctx, id, ownerID)
}

func (m *mockSubscriptionService) ListPayments(ctx context.Context, id, ownerID string) ([]*subdto.PaymentDTO, error) {
	return m.paymentsFn(ctx, id, ownerID)
}

func (m *mockSubscriptionService) SweepPeriodEnds(ctx context.Context, now time.Time) (*subdto.SweepResult, error) {
	return m.sweepFn(ctx, now)
}

type mockPromoCodeService struct {
	promoCodeService // unimplemented methods panic

	validateFn func(ctx context.Context, code, userID, planID string) (*promocode.ValidationResult, error)
	applyFn    func(ctx context.Context, cmd promocode.ApplyPromoCodeCommand) (*promocode.RedemptionDTO, error)
	addPlansFn func(ctx context.Context, id string, planIDs []string) (*promocode.PromoCodeDTO, error)
}

func (m *mockPromoCodeService) ValidatePromoCode(ctx context.Context, code, userID, planID string) (*promocode.ValidationResult, error) {
	return m.validateFn(ctx, code, userID, planID)
}

func (m *mockPromoCodeService) ApplyPromoCode(ctx context.Context, cmd promocode.ApplyPromoCodeCommand) (*promocode.RedemptionDTO, error) {
	return m.applyFn(ctx, cmd)
}

func (m *mockPromoCodeService) AddApplicablePlans(ctx context.Context, id string, planIDs []string) (*promocode.PromoCodeDTO, error) {
	return m.addPlansFn(ctx, id, planIDs)
}

type mockAnalyticsService struct {
	getFn func(ctx context.Context, q analytics.Query) (*analytics.Metrics, error)
}

func (m *mockAnalyticsService) GetAnalytics(ctx context.Context, q analytics.Query) (*analytics.Metrics, error) {
	return m.getFn(ctx, q)
}
