package promocode

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/orris-inc/billing/internal/domain/promotion"
)

type CreatePromoCodeCommand struct {
	// Code is generated when empty.
	Code              string           `json:"code" validate:"omitempty,max=50"`
	Description       string           `json:"description" validate:"max=500"`
	DiscountType      string           `json:"discount_type" validate:"required,oneof=percentage fixed"`
	DiscountValue     decimal.Decimal  `json:"discount_value"`
	StartDate         *time.Time       `json:"start_date,omitempty"`
	EndDate           *time.Time       `json:"end_date,omitempty"`
	UsageLimit        *int             `json:"usage_limit,omitempty" validate:"omitempty,gte=0"`
	IsActive          *bool            `json:"is_active,omitempty"`
	IsFirstTimeOnly   bool             `json:"is_first_time_only"`
	ApplicableTo      string           `json:"applicable_to" validate:"omitempty,oneof=all specific_plans specific_users"`
	MaxDiscountAmount *decimal.Decimal `json:"max_discount_amount,omitempty"`
	MinPurchaseAmount *decimal.Decimal `json:"min_purchase_amount,omitempty"`
	ApplicablePlanIDs []string         `json:"applicable_plan_ids,omitempty"`
	ApplicableUserIDs []string         `json:"applicable_user_ids,omitempty"`
}

// UpdatePromoCodeCommand is a partial update; nil fields stay unchanged.
type UpdatePromoCodeCommand struct {
	Code              *string          `json:"code,omitempty" validate:"omitempty,max=50"`
	Description       *string          `json:"description,omitempty" validate:"omitempty,max=500"`
	DiscountType      *string          `json:"discount_type,omitempty" validate:"omitempty,oneof=percentage fixed"`
	DiscountValue     *decimal.Decimal `json:"discount_value,omitempty"`
	StartDate         *time.Time       `json:"start_date,omitempty"`
	EndDate           *time.Time       `json:"end_date,omitempty"`
	ClearEndDate      bool             `json:"clear_end_date,omitempty"`
	UsageLimit        *int             `json:"usage_limit,omitempty" validate:"omitempty,gte=0"`
	ClearUsageLimit   bool             `json:"clear_usage_limit,omitempty"`
	IsActive          *bool            `json:"is_active,omitempty"`
	IsFirstTimeOnly   *bool            `json:"is_first_time_only,omitempty"`
	ApplicableTo      *string          `json:"applicable_to,omitempty" validate:"omitempty,oneof=all specific_plans specific_users"`
	MaxDiscountAmount *decimal.Decimal `json:"max_discount_amount,omitempty"`
	MinPurchaseAmount *decimal.Decimal `json:"min_purchase_amount,omitempty"`
}

type ListPromoCodesQuery struct {
	Code         string `json:"code" form:"code"`
	IsActive     *bool  `json:"is_active" form:"is_active"`
	DiscountType string `json:"discount_type" form:"discount_type" validate:"omitempty,oneof=percentage fixed"`
	ApplicableTo string `json:"applicable_to" form:"applicable_to" validate:"omitempty,oneof=all specific_plans specific_users"`
	Page         int    `json:"page" form:"page"`
	PageSize     int    `json:"page_size" form:"page_size"`
}

type ApplyPromoCodeCommand struct {
	SubscriptionID string          `json:"subscription_id" validate:"required"`
	UserID         string          `json:"user_id" validate:"required"`
	PromoCodeID    string          `json:"promo_code_id" validate:"required"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

type PromoCodeDTO struct {
	ID                string           `json:"id"`
	Code              string           `json:"code"`
	Description       string           `json:"description,omitempty"`
	DiscountType      string           `json:"discount_type"`
	DiscountValue     decimal.Decimal  `json:"discount_value"`
	StartDate         time.Time        `json:"start_date"`
	EndDate           *time.Time       `json:"end_date,omitempty"`
	UsageLimit        *int             `json:"usage_limit,omitempty"`
	UsageCount        int              `json:"usage_count"`
	IsActive          bool             `json:"is_active"`
	IsFirstTimeOnly   bool             `json:"is_first_time_only"`
	ApplicableTo      string           `json:"applicable_to"`
	MaxDiscountAmount *decimal.Decimal `json:"max_discount_amount,omitempty"`
	MinPurchaseAmount *decimal.Decimal `json:"min_purchase_amount,omitempty"`
	ApplicablePlanIDs []string         `json:"applicable_plan_ids"`
	ApplicableUserIDs []string         `json:"applicable_user_ids"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

type ListPromoCodesResult struct {
	PromoCodes []*PromoCodeDTO `json:"promo_codes"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
}

// ValidationResult is the verdict for one (code, user, plan) triple. A code
// that cannot be used is reported with IsValid false and a reason, not as
// an error.
type ValidationResult struct {
	IsValid        bool            `json:"is_valid"`
	Message        string          `json:"message"`
	PromoCode      *PromoCodeDTO   `json:"promo_code,omitempty"`
	OriginalPrice  decimal.Decimal `json:"original_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FinalPrice     decimal.Decimal `json:"final_price"`
}

type RedemptionDTO struct {
	ID             string          `json:"id"`
	PromoCodeID    string          `json:"promo_code_id"`
	SubscriptionID string          `json:"subscription_id"`
	UserID         string          `json:"user_id"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	AppliedDate    time.Time       `json:"applied_date"`
}

func toPromoCodeDTO(p *promotion.PromoCode) *PromoCodeDTO {
	planIDs := p.ApplicablePlanIDs()
	if planIDs == nil {
		planIDs = []string{}
	}
	userIDs := p.ApplicableUserIDs()
	if userIDs == nil {
		userIDs = []string{}
	}
	return &PromoCodeDTO{
		ID:                p.ID(),
		Code:              p.Code(),
		Description:       p.Description(),
		DiscountType:      p.DiscountType().String(),
		DiscountValue:     p.DiscountValue(),
		StartDate:         p.StartDate(),
		EndDate:           p.EndDate(),
		UsageLimit:        p.UsageLimit(),
		UsageCount:        p.UsageCount(),
		IsActive:          p.IsActive(),
		IsFirstTimeOnly:   p.IsFirstTimeOnly(),
		ApplicableTo:      p.ApplicableTo().String(),
		MaxDiscountAmount: p.MaxDiscountAmount(),
		MinPurchaseAmount: p.MinPurchaseAmount(),
		ApplicablePlanIDs: planIDs,
		ApplicableUserIDs: userIDs,
		CreatedAt:         p.CreatedAt(),
		UpdatedAt:         p.UpdatedAt(),
	}
}

func toRedemptionDTO(r *promotion.Redemption) *RedemptionDTO {
	return &RedemptionDTO{
		ID:             r.ID(),
		PromoCodeID:    r.PromoCodeID(),
		SubscriptionID: r.SubscriptionID(),
		UserID:         r.UserID(),
		DiscountAmount: r.DiscountAmount(),
		AppliedDate:    r.AppliedDate(),
	}
}
