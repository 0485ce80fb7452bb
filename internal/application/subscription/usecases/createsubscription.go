package usecases

import (
	"context"

	"github.com/orris-inc/billing/internal/application/subscription/dto"
	"github.com/orris-inc/billing/internal/domain/subscription"
	"github.com/orris-inc/billing/internal/shared/biztime"
	"github.com/orris-inc/billing/internal/shared/db"
	apperrors "github.com/orris-inc/billing/internal/shared/errors"
	"github.com/orris-inc/billing/internal/shared/logger"
	"github.com/orris-inc/billing/internal/shared/utils"
)

type CreateSubscriptionCommand struct {
	PlanID string `json:"plan_id" validate:"required"`
	UserID string `json:"user_id" validate:"required"`
	AppID  string `json:"app_id" validate:"required"`
	// PromoCodeID is recorded on the creation event only. Redeeming the code
	// is a separate call made by the checkout flow once the subscription exists.
	PromoCodeID *string `json:"promo_code_id,omitempty"`
}

type CreateSubscriptionUseCase struct {
	subscriptionRepo subscription.SubscriptionRepository
	planRepo         subscription.PlanRepository
	tx               db.Transactor
	cache            CacheInvalidator
	clock            biztime.Clock
	logger           logger.Interface
}

func NewCreateSubscriptionUseCase(
	subscriptionRepo subscription.SubscriptionRepository,
	planRepo subscription.PlanRepository,
	tx db.Transactor,
	cache CacheInvalidator,
	clock biztime.Clock,
	logger logger.Interface,
) *CreateSubscriptionUseCase {
	return &CreateSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		tx:               tx,
		cache:            cache,
		clock:            clock,
		logger:           logger,
	}
}

func (uc *CreateSubscriptionUseCase) Execute(ctx context.Context, cmd CreateSubscriptionCommand) (*dto.SubscriptionDTO, error) {
	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, err
	}

	var sub *subscription.Subscription
	err := uc.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		plan, err := uc.planRepo.GetByID(ctx, cmd.PlanID)
		if err != nil {
			return err
		}
		if plan == nil {
			return subscription.ErrPlanNotFound
		}
		if !plan.IsPurchasable() {
			return subscription.ErrPlanNotPurchasable
		}
		if plan.AppID() != cmd.AppID {
			return subscription.ErrPlanAppMismatch
		}

		// More than one live subscription per app is allowed but unusual.
		live, err := uc.subscriptionRepo.CountNonTerminalByUserApp(ctx, cmd.UserID, cmd.AppID)
		if err != nil {
			return err
		}
		if live > 0 {
			uc.logger.Warnw("user already has a live subscription in app",
				"user_id", cmd.UserID,
				"app_id", cmd.AppID,
				"count", live,
			)
		}

		now := uc.clock()
		created, err := subscription.NewSubscription(cmd.UserID, plan, now)
		if err != nil {
			return apperrors.NewValidationError(err.Error())
		}
		event, err := created.Start(plan.TrialDays(), now)
		if err != nil {
			return rejected(err)
		}
		if cmd.PromoCodeID != nil && *cmd.PromoCodeID != "" {
			event.With("promo_code_id", *cmd.PromoCodeID)
		}

		if err := uc.subscriptionRepo.Create(ctx, created); err != nil {
			return err
		}
		if err := uc.subscriptionRepo.AppendEvents(ctx, event); err != nil {
			return err
		}
		sub = created
		return nil
	})
	if err != nil {
		uc.logger.Warnw("create subscription failed",
			"plan_id", cmd.PlanID,
			"user_id", cmd.UserID,
			"app_id", cmd.AppID,
			"error", err,
		)
		return nil, toAppError(err, "failed to create subscription")
	}

	uc.cache.Invalidate(ctx, invalidationKeys(sub)...)
	uc.logger.Infow("subscription created",
		"subscription_id", sub.ID(),
		"user_id", sub.UserID(),
		"plan_id", sub.PlanID(),
		"status", sub.Status().String(),
		"end_date", sub.EndDate(),
	)
	return dto.ToSubscriptionDTO(sub), nil
}
