package handlers

import (
	"context"
	"time"

	"github.com/orris-inc/billing/internal/application/analytics"
	"github.com/orris-inc/billing/internal/application/app"
	"github.com/orris-inc/billing/internal/application/plan"
	"github.com/orris-inc/billing/internal/application/promocode"
	subdto "github.com/orris-inc/billing/internal/application/subscription/dto"
	"github.com/orris-inc/billing/internal/application/subscription/usecases"
)

// Service contracts consumed by the handlers. The application services
// satisfy them directly.

type appService interface {
	CreateApp(ctx context.Context, cmd app.CreateAppCommand) (*app.AppDTO, error)
	GetApp(ctx context.Context, id string) (*app.AppDTO, error)
	ListApps(ctx context.Context, page, pageSize int) (*app.ListAppsResult, error)
	UpdateAppDisplay(ctx context.Context, id string, cmd app.UpdateAppDisplayCommand) (*app.AppDTO, error)
}

type planService interface {
	CreatePlan(ctx context.Context, cmd plan.CreatePlanCommand) (*plan.PlanDTO, error)
	UpdatePlan(ctx context.Context, id string, cmd plan.UpdatePlanCommand) (*plan.PlanDTO, error)
	ArchivePlan(ctx context.Context, id string) (*plan.PlanDTO, error)
	PurgePlan(ctx context.Context, id string) error
	GetPlan(ctx context.Context, id string) (*plan.PlanDTO, error)
	ListPlans(ctx context.Context, q plan.ListPlansQuery) (*plan.ListPlansResult, error)
	ListPlanOptions(ctx context.Context, appID string) ([]*plan.PlanOption, error)
	AddFeature(ctx context.Context, planID string, in plan.FeatureInput) (*plan.FeatureDTO, error)
	UpdateFeature(ctx context.Context, planID, featureID string, in plan.FeatureInput) (*plan.FeatureDTO, error)
	DeleteFeature(ctx context.Context, planID, featureID string) error
}

type promoCodeService interface {
	CreatePromoCode(ctx context.Context, cmd promocode.CreatePromoCodeCommand) (*promocode.PromoCodeDTO, error)
	UpdatePromoCode(ctx context.Context, id string, cmd promocode.UpdatePromoCodeCommand) (*promocode.PromoCodeDTO, error)
	DeletePromoCode(ctx context.Context, id string) error
	GetPromoCode(ctx context.Context, id string) (*promocode.PromoCodeDTO, error)
	ListPromoCodes(ctx context.Context, q promocode.ListPromoCodesQuery) (*promocode.ListPromoCodesResult, error)
	AddApplicablePlans(ctx context.Context, id string, planIDs []string) (*promocode.PromoCodeDTO, error)
	RemoveApplicablePlans(ctx context.Context, id string, planIDs []string) (*promocode.PromoCodeDTO, error)
	AddApplicableUsers(ctx context.Context, id string, userIDs []string) (*promocode.PromoCodeDTO, error)
	RemoveApplicableUsers(ctx context.Context, id string, userIDs []string) (*promocode.PromoCodeDTO, error)
	ValidatePromoCode(ctx context.Context, code, userID, planID string) (*promocode.ValidationResult, error)
	ApplyPromoCode(ctx context.Context, cmd promocode.ApplyPromoCodeCommand) (*promocode.RedemptionDTO, error)
	ListRedemptions(ctx context.Context, promoCodeID string) ([]*promocode.RedemptionDTO, error)
}

type subscriptionService interface {
	CreateSubscription(ctx context.Context, cmd usecases.CreateSubscriptionCommand) (*subdto.SubscriptionDTO, error)
	CancelSubscription(ctx context.Context, cmd usecases.CancelSubscriptionCommand) (*subdto.SubscriptionDTO, error)
	RenewSubscription(ctx context.Context, id string) (*subdto.RenewResult, error)
	UpdateStatus(ctx context.Context, cmd usecases.UpdateSubscriptionStatusCommand) (*subdto.SubscriptionDTO, error)
	GetSubscription(ctx context.Context, id, ownerID string) (*subdto.SubscriptionDTO, error)
	GetUserSubscriptions(ctx context.Context, userID string, appID *string) ([]*subdto.SubscriptionDTO, error)
	ListSubscriptions(ctx context.Context, q usecases.ListSubscriptionsQuery) (*subdto.ListSubscriptionsResult, error)
	ListEvents(ctx context.Context, id, ownerID string) ([]*subdto.SubscriptionEventDTO, error)
	ListPayments(ctx context.Context, id, ownerID string) ([]*subdto.PaymentDTO, error)
	SweepPeriodEnds(ctx context.Context, now time.Time) (*subdto.SweepResult, error)
}

type analyticsService interface {
	GetAnalytics(ctx context.Context, q analytics.Query) (*analytics.Metrics, error)
}
