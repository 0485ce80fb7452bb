package promocode

import (
	"context"

	"github.com/orris-inc/billing/internal/domain/promotion"
	"github.com/orris-inc/billing/internal/domain/subscription"
	apperrors "github.com/orris-inc/billing/internal/shared/errors"
	"github.com/orris-inc/billing/internal/shared/utils"
)

// ApplyPromoCode redeems a promo code against a subscription. Eligibility
// is re-evaluated inside the transaction, then the usage counter is bumped
// with a guarded update and the redemption row inserted. Losing the race
// for the last slot or a second redemption by the same user is a Conflict.
func (s *Service) ApplyPromoCode(ctx context.Context, cmd ApplyPromoCodeCommand) (*RedemptionDTO, error) {
	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, err
	}
	if cmd.DiscountAmount.IsNegative() {
		return nil, apperrors.NewBadRequestError("discount amount cannot be negative")
	}

	var (
		redemption *promotion.Redemption
		code       string
	)
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		sub, err := s.subs.GetByID(ctx, cmd.SubscriptionID)
		if err != nil {
			return err
		}
		if sub == nil {
			return subscription.ErrSubscriptionNotFound
		}
		if !sub.BelongsTo(cmd.UserID) {
			return apperrors.NewForbiddenError("subscription does not belong to user")
		}
		if sub.IsTerminal() {
			return apperrors.NewBadRequestError(subscription.ErrSubscriptionTerminal.Error())
		}

		promo, err := s.promos.GetByID(ctx, cmd.PromoCodeID)
		if err != nil {
			return err
		}
		if promo == nil {
			return promotion.ErrPromoNotFound
		}
		code = promo.Code()

		if err := s.evaluate(ctx, promo, cmd.UserID, sub.PlanID(), sub.ID(), sub.Amount()); err != nil {
			return err
		}
		if allowed := promo.DiscountFor(sub.Amount()); cmd.DiscountAmount.GreaterThan(allowed) {
			return apperrors.NewBadRequestError("discount amount exceeds the promo code discount", allowed.StringFixed(2))
		}

		ok, err := s.promos.IncrementUsage(ctx, promo.ID())
		if err != nil {
			return err
		}
		if !ok {
			return promotion.ErrUsageLimitReached
		}

		r := promotion.NewRedemption(promo.ID(), sub.ID(), cmd.UserID, cmd.DiscountAmount, s.clock())
		if err := s.promos.CreateRedemption(ctx, r); err != nil {
			return err
		}
		redemption = r
		return nil
	})
	if err != nil {
		s.logger.Warnw("apply promo code failed",
			"promo_code_id", cmd.PromoCodeID,
			"subscription_id", cmd.SubscriptionID,
			"user_id", cmd.UserID,
			"error", err,
		)
		return nil, toAppError(err, "failed to apply promo code")
	}

	s.cache.Invalidate(ctx, invalidationKeys(cmd.PromoCodeID, code)...)
	s.logger.Infow("promo code applied",
		"promo_code_id", cmd.PromoCodeID,
		"subscription_id", cmd.SubscriptionID,
		"user_id", cmd.UserID,
		"discount", cmd.DiscountAmount.String(),
	)
	return toRedemptionDTO(redemption), nil
}

func (s *Service) ListRedemptions(ctx context.Context, promoCodeID string) ([]*RedemptionDTO, error) {
	if err := utils.ValidateID(promoCodeID); err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, promoCodeID); err != nil {
		return nil, toAppError(err, "failed to list redemptions")
	}
	list, err := s.promos.ListRedemptions(ctx, promoCodeID)
	if err != nil {
		return nil, toAppError(err, "failed to list redemptions")
	}
	out := make([]*RedemptionDTO, 0, len(list))
	for _, r := range list {
		out = append(out, toRedemptionDTO(r))
	}
	return out, nil
}
