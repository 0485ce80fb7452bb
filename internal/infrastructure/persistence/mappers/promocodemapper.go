package mappers

import (
	"time"

	"github.com/orris-inc/billing/internal/domain/promotion"
	"github.com/orris-inc/billing/internal/infrastructure/persistence/models"
)

// PromoCodeMapper converts promo codes and redemptions.
type PromoCodeMapper interface {
	ToEntity(model *models.PromoCodeModel, planIDs, userIDs []string) *promotion.PromoCode
	ToModel(entity *promotion.PromoCode) *models.PromoCodeModel
	RedemptionToModel(entity *promotion.Redemption) *models.SubscriptionPromoCodeModel
	RedemptionToEntity(model *models.SubscriptionPromoCodeModel) *promotion.Redemption
}

type promoCodeMapper struct{}

func NewPromoCodeMapper() PromoCodeMapper {
	return &promoCodeMapper{}
}

func (m *promoCodeMapper) ToEntity(model *models.PromoCodeModel, planIDs, userIDs []string) *promotion.PromoCode {
	if model == nil {
		return nil
	}
	return promotion.ReconstructPromoCode(promotion.PromoCodeReconstructParams{
		ID: model.ID,
		Params: promotion.PromoCodeParams{
			Code:              model.Code,
			Description:       model.Description,
			DiscountType:      promotion.DiscountType(model.DiscountType),
			DiscountValue:     model.DiscountValue,
			StartDate:         model.StartDate.UTC(),
			EndDate:           utcPtr(model.EndDate),
			UsageLimit:        model.UsageLimit,
			IsActive:          model.IsActive,
			IsFirstTimeOnly:   model.IsFirstTimeOnly,
			ApplicableTo:      promotion.Applicability(model.ApplicableTo),
			MaxDiscountAmount: model.MaxDiscountAmount,
			MinPurchaseAmount: model.MinPurchaseAmount,
			ApplicablePlanIDs: planIDs,
			ApplicableUserIDs: userIDs,
		},
		UsageCount: model.UsageCount,
		CreatedAt:  model.CreatedAt.UTC(),
		UpdatedAt:  model.UpdatedAt.UTC(),
	})
}

func (m *promoCodeMapper) ToModel(entity *promotion.PromoCode) *models.PromoCodeModel {
	var activeCode *string
	if entity.IsActive() {
		code := entity.Code()
		activeCode = &code
	}
	return &models.PromoCodeModel{
		ID:                entity.ID(),
		Code:              entity.Code(),
		ActiveCode:        activeCode,
		Description:       entity.Description(),
		DiscountType:      entity.DiscountType().String(),
		DiscountValue:     entity.DiscountValue(),
		StartDate:         entity.StartDate(),
		EndDate:           entity.EndDate(),
		UsageLimit:        entity.UsageLimit(),
		UsageCount:        entity.UsageCount(),
		IsActive:          entity.IsActive(),
		IsFirstTimeOnly:   entity.IsFirstTimeOnly(),
		ApplicableTo:      entity.ApplicableTo().String(),
		MaxDiscountAmount: entity.MaxDiscountAmount(),
		MinPurchaseAmount: entity.MinPurchaseAmount(),
		CreatedAt:         entity.CreatedAt(),
		UpdatedAt:         entity.UpdatedAt(),
	}
}

func (m *promoCodeMapper) RedemptionToModel(entity *promotion.Redemption) *models.SubscriptionPromoCodeModel {
	return &models.SubscriptionPromoCodeModel{
		ID:             entity.ID(),
		PromoCodeID:    entity.PromoCodeID(),
		UserID:         entity.UserID(),
		SubscriptionID: entity.SubscriptionID(),
		DiscountAmount: entity.DiscountAmount(),
		AppliedDate:    entity.AppliedDate(),
	}
}

func (m *promoCodeMapper) RedemptionToEntity(model *models.SubscriptionPromoCodeModel) *promotion.Redemption {
	return promotion.ReconstructRedemption(
		model.ID,
		model.PromoCodeID,
		model.SubscriptionID,
		model.UserID,
		model.DiscountAmount,
		model.AppliedDate.UTC(),
	)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
