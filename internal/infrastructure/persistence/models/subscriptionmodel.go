package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/orris-inc/billing/internal/shared/constants"
)

// SubscriptionModel represents the database persistence model for subscriptions
type SubscriptionModel struct {
	ID                      string          `gorm:"primaryKey;size:36"`
	UserID                  string          `gorm:"not null;size:64;index:idx_sub_user_app,priority:1"`
	PlanID                  string          `gorm:"not null;size:36;index"`
	AppID                   string          `gorm:"not null;size:36;index:idx_sub_user_app,priority:2"`
	Status                  string          `gorm:"not null;size:20;index"`
	BillingCycle            string          `gorm:"not null;size:20"`
	StartDate               time.Time       `gorm:"not null"`
	CurrentPeriodStart      time.Time       `gorm:"not null"`
	EndDate                 time.Time       `gorm:"not null;index"`
	TrialEndDate            *time.Time
	CancelAtPeriodEnd       bool `gorm:"not null;default:false"`
	CanceledAt              *time.Time
	CancellationEffectiveAt *time.Time
	AutoRenew               bool            `gorm:"not null"`
	Amount                  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency                string          `gorm:"not null;size:3"`
	Version                 int             `gorm:"not null;default:1"`
	CreatedAt               time.Time       `gorm:"index"`
	UpdatedAt               time.Time
}

func (SubscriptionModel) TableName() string {
	return constants.TableSubscriptions
}

// SubscriptionEventModel is an append-only audit row.
type SubscriptionEventModel struct {
	ID             string `gorm:"primaryKey;size:36"`
	SubscriptionID string `gorm:"not null;size:36;index"`
	EventType      string `gorm:"not null;size:30"`
	FromStatus     string `gorm:"size:20"`
	ToStatus       string `gorm:"size:20"`
	Metadata       datatypes.JSON
	CreatedAt      time.Time `gorm:"index"`
}

func (SubscriptionEventModel) TableName() string {
	return constants.TableSubscriptionEvents
}

// PaymentModel records the charge for one billing period.
type PaymentModel struct {
	ID             string          `gorm:"primaryKey;size:36"`
	SubscriptionID string          `gorm:"not null;size:36;index"`
	Amount         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency       string          `gorm:"not null;size:3"`
	Status         string          `gorm:"not null;size:20"`
	PeriodStart    time.Time       `gorm:"not null"`
	PeriodEnd      time.Time       `gorm:"not null"`
	PaidAt         *time.Time
	CreatedAt      time.Time
}

func (PaymentModel) TableName() string {
	return constants.TablePayments
}
