package promocode

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/orris-inc/billing/internal/domain/promotion"
	"github.com/orris-inc/billing/internal/domain/subscription"
	"github.com/orris-inc/billing/internal/infrastructure/cache"
	apperrors "github.com/orris-inc/billing/internal/shared/errors"
	"github.com/orris-inc/billing/internal/shared/utils"
)

// ValidatePromoCode evaluates code for userID buying planID. Rule failures
// come back as an invalid result; only lookup and storage failures are
// errors. Results are cached briefly per (code, user, plan), so a valid
// verdict is advisory and ApplyPromoCode re-checks everything.
func (s *Service) ValidatePromoCode(ctx context.Context, rawCode, userID, planID string) (*ValidationResult, error) {
	if userID == "" || planID == "" {
		return nil, apperrors.NewValidationError("user_id and plan_id are required")
	}
	code := promotion.NormalizeCode(rawCode)
	if !promotion.IsWellFormedCode(code) {
		return &ValidationResult{Message: promotion.ErrInvalidCode.Error()}, nil
	}

	return cache.GetOrLoad(ctx, s.cache, validationKey(code, userID, planID), s.cfg.ValidationTTL,
		func(ctx context.Context) (*ValidationResult, error) {
			plan, err := s.plans.GetByID(ctx, planID)
			if err != nil {
				s.logger.Errorw("failed to load plan for promo validation", "plan_id", planID, "error", err)
				return nil, apperrors.NewInternalError("failed to validate promo code")
			}
			if plan == nil {
				return nil, apperrors.NewNotFoundError(subscription.ErrPlanNotFound.Error(), planID)
			}
			price := plan.Price()

			promo, err := s.promos.GetActiveByCode(ctx, code)
			if err != nil {
				s.logger.Errorw("failed to load promo code", "code", utils.MaskCode(code), "error", err)
				return nil, apperrors.NewInternalError("failed to validate promo code")
			}
			if promo == nil {
				return rejected(promotion.ErrPromoNotFound, price), nil
			}

			if err := s.evaluate(ctx, promo, userID, planID, "", price); err != nil {
				if promotion.IsVerdict(err) {
					s.logger.Debugw("promo code rejected", "code", utils.MaskCode(code), "user_id", userID, "plan_id", planID, "reason", err)
					return rejected(err, price), nil
				}
				s.logger.Errorw("failed to evaluate promo code", "code", utils.MaskCode(code), "error", err)
				return nil, apperrors.NewInternalError("failed to validate promo code")
			}

			discount := promo.DiscountFor(price)
			return &ValidationResult{
				IsValid:        true,
				Message:        "promo code is valid",
				PromoCode:      toPromoCodeDTO(promo),
				OriginalPrice:  price,
				DiscountAmount: discount,
				FinalPrice:     price.Sub(discount),
			}, nil
		})
}

// evaluate runs the eligibility rules in their fixed order and returns the
// first failing verdict. excludeSubID keeps the subscription being redeemed
// against out of the first-time check.
func (s *Service) evaluate(ctx context.Context, promo *promotion.PromoCode, userID, planID, excludeSubID string, price decimal.Decimal) error {
	if err := promo.CheckAvailability(s.clock()); err != nil {
		return err
	}
	if err := promo.CheckApplicability(planID, userID); err != nil {
		return err
	}
	if promo.IsFirstTimeOnly() {
		prior, err := s.subs.CountByUser(ctx, userID, excludeSubID)
		if err != nil {
			return err
		}
		if prior > 0 {
			return promotion.ErrFirstTimeOnly
		}
	}
	redeemed, err := s.promos.HasRedeemed(ctx, promo.ID(), userID)
	if err != nil {
		return err
	}
	if redeemed {
		return promotion.ErrAlreadyRedeemed
	}
	return promo.CheckMinimumPurchase(price)
}

func rejected(reason error, price decimal.Decimal) *ValidationResult {
	return &ValidationResult{
		Message:        reason.Error(),
		OriginalPrice:  price,
		DiscountAmount: decimal.Zero,
		FinalPrice:     price,
	}
}
