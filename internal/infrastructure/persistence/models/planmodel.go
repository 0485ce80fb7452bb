package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/orris-inc/billing/internal/shared/constants"
)

// PlanModel represents the database persistence model for subscription plans
type PlanModel struct {
	ID           string           `gorm:"primaryKey;size:36"`
	AppID        string           `gorm:"not null;size:36;uniqueIndex:idx_plan_app_name,priority:1"`
	Name         string           `gorm:"not null;size:100;uniqueIndex:idx_plan_app_name,priority:2"`
	Description  string           `gorm:"type:text"`
	Price        decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	AnnualPrice  *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Currency     string           `gorm:"not null;size:3"`
	BillingCycle string           `gorm:"not null;size:20"`
	TrialDays    int              `gorm:"not null;default:0"`
	Status       string           `gorm:"not null;size:20;index"`
	SortPosition int              `gorm:"not null;default:0"`
	Highlight    bool             `gorm:"not null;default:false"`
	Metadata     datatypes.JSON
	Version      int `gorm:"not null;default:1"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Features []PlanFeatureModel `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE"`
}

func (PlanModel) TableName() string {
	return constants.TablePlans
}

// PlanFeatureModel is one row of a plan's feature list.
type PlanFeatureModel struct {
	ID           string `gorm:"primaryKey;size:36"`
	PlanID       string `gorm:"not null;size:36;index"`
	Name         string `gorm:"not null;size:100"`
	Included     bool   `gorm:"not null"`
	Limit        *int64 `gorm:"column:feature_limit"`
	Category     string `gorm:"size:50"`
	SortPosition int    `gorm:"not null;default:0"`
}

func (PlanFeatureModel) TableName() string {
	return constants.TablePlanFeatures
}
