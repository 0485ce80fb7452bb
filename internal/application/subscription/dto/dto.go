package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type SubscriptionDTO struct {
	ID                      string          `json:"id"`
	UserID                  string          `json:"user_id"`
	PlanID                  string          `json:"plan_id"`
	AppID                   string          `json:"app_id"`
	Status                  string          `json:"status"`
	BillingCycle            string          `json:"billing_cycle"`
	StartDate               time.Time       `json:"start_date"`
	CurrentPeriodStart      time.Time       `json:"current_period_start"`
	EndDate                 time.Time       `json:"end_date"`
	TrialEndDate            *time.Time      `json:"trial_end_date,omitempty"`
	CancelAtPeriodEnd       bool            `json:"cancel_at_period_end"`
	CanceledAt              *time.Time      `json:"canceled_at,omitempty"`
	CancellationEffectiveAt *time.Time      `json:"cancellation_effective_at,omitempty"`
	AutoRenew               bool            `json:"auto_renew"`
	IsActive                bool            `json:"is_active"`
	Amount                  decimal.Decimal `json:"amount"`
	Currency                string          `json:"currency"`
	Version                 int             `json:"version"`
	CreatedAt               time.Time       `json:"created_at"`
	UpdatedAt               time.Time       `json:"updated_at"`
}

type ListSubscriptionsResult struct {
	Subscriptions []*SubscriptionDTO `json:"subscriptions"`
	Total         int64              `json:"total"`
	Page          int                `json:"page"`
	PageSize      int                `json:"page_size"`
}

type SubscriptionEventDTO struct {
	ID             string         `json:"id"`
	SubscriptionID string         `json:"subscription_id"`
	EventType      string         `json:"event_type"`
	FromStatus     string         `json:"from_status,omitempty"`
	ToStatus       string         `json:"to_status,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

type PaymentDTO struct {
	ID             string          `json:"id"`
	SubscriptionID string          `json:"subscription_id"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Status         string          `json:"status"`
	PeriodStart    time.Time       `json:"period_start"`
	PeriodEnd      time.Time       `json:"period_end"`
	PaidAt         *time.Time      `json:"paid_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// RenewResult is the renewed subscription together with the payment
// recorded for the new period.
type RenewResult struct {
	Subscription *SubscriptionDTO `json:"subscription"`
	Payment      *PaymentDTO      `json:"payment"`
}

type SweepResult struct {
	Scanned  int `json:"scanned"`
	Canceled int `json:"canceled"`
	Expired  int `json:"expired"`
	Failed   int `json:"failed"`
}
