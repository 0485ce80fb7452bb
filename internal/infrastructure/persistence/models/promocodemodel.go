package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/orris-inc/billing/internal/shared/constants"
)

// PromoCodeModel represents the database persistence model for promo codes.
// ActiveCode mirrors Code while the row is active and is NULL otherwise, so
// the unique index only constrains active codes.
type PromoCodeModel struct {
	ID                string           `gorm:"primaryKey;size:36"`
	Code              string           `gorm:"not null;size:50;index"`
	ActiveCode        *string          `gorm:"size:50;uniqueIndex"`
	Description       string           `gorm:"size:500"`
	DiscountType      string           `gorm:"not null;size:20"`
	DiscountValue     decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	StartDate         time.Time        `gorm:"not null"`
	EndDate           *time.Time
	UsageLimit        *int
	UsageCount        int              `gorm:"not null;default:0"`
	IsActive          bool             `gorm:"not null;index"`
	IsFirstTimeOnly   bool             `gorm:"not null;default:false"`
	ApplicableTo      string           `gorm:"not null;size:20;default:all"`
	MaxDiscountAmount *decimal.Decimal `gorm:"type:decimal(12,2)"`
	MinPurchaseAmount *decimal.Decimal `gorm:"type:decimal(12,2)"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (PromoCodeModel) TableName() string {
	return constants.TablePromoCodes
}

type PromoCodeApplicablePlanModel struct {
	PromoCodeID string `gorm:"primaryKey;size:36"`
	PlanID      string `gorm:"primaryKey;size:36"`
}

func (PromoCodeApplicablePlanModel) TableName() string {
	return constants.TablePromoCodeApplicablePlans
}

type PromoCodeApplicableUserModel struct {
	PromoCodeID string `gorm:"primaryKey;size:36"`
	UserID      string `gorm:"primaryKey;size:64"`
}

func (PromoCodeApplicableUserModel) TableName() string {
	return constants.TablePromoCodeApplicableUsers
}

// SubscriptionPromoCodeModel is a redemption row. Both unique indexes close
// the double-redemption race at the storage layer.
type SubscriptionPromoCodeModel struct {
	ID             string          `gorm:"primaryKey;size:36"`
	PromoCodeID    string          `gorm:"not null;size:36;uniqueIndex:idx_redemption_code_user,priority:1;uniqueIndex:idx_redemption_code_sub,priority:1"`
	UserID         string          `gorm:"not null;size:64;uniqueIndex:idx_redemption_code_user,priority:2"`
	SubscriptionID string          `gorm:"not null;size:36;uniqueIndex:idx_redemption_code_sub,priority:2"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	AppliedDate    time.Time       `gorm:"not null"`
}

func (SubscriptionPromoCodeModel) TableName() string {
	return constants.TableSubscriptionPromoCodes
}

// All returns every model in dependency order for AutoMigrate.
func All() []any {
	return []any{
		&AppModel{},
		&PlanModel{},
		&PlanFeatureModel{},
		&SubscriptionModel{},
		&SubscriptionEventModel{},
		&PaymentModel{},
		&PromoCodeModel{},
		&PromoCodeApplicablePlanModel{},
		&PromoCodeApplicableUserModel{},
		&SubscriptionPromoCodeModel{},
	}
}
