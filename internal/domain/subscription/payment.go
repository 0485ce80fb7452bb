package subscription

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/orris-inc/billing/internal/shared/id"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Payment records the charge for one billing period. Capture happens
// outside this service, so payments are recorded as already settled.
type Payment struct {
	id             string
	subscriptionID string
	amount         decimal.Decimal
	currency       string
	status         PaymentStatus
	periodStart    time.Time
	periodEnd      time.Time
	paidAt         *time.Time
	createdAt      time.Time
}

func NewSucceededPayment(subscriptionID string, amount decimal.Decimal, currency string, periodStart, periodEnd, now time.Time) *Payment {
	paidAt := now
	return &Payment{
		id:             id.New(),
		subscriptionID: subscriptionID,
		amount:         amount,
		currency:       currency,
		status:         PaymentStatusSucceeded,
		periodStart:    periodStart,
		periodEnd:      periodEnd,
		paidAt:         &paidAt,
		createdAt:      now,
	}
}

func ReconstructPayment(paymentID, subscriptionID string, amount decimal.Decimal, currency string, status PaymentStatus,
	periodStart, periodEnd time.Time, paidAt *time.Time, createdAt time.Time) *Payment {
	return &Payment{
		id:             paymentID,
		subscriptionID: subscriptionID,
		amount:         amount,
		currency:       currency,
		status:         status,
		periodStart:    periodStart,
		periodEnd:      periodEnd,
		paidAt:         paidAt,
		createdAt:      createdAt,
	}
}

func (p *Payment) ID() string { return p.id }
func (p *Payment) SubscriptionID() string { return p.subscriptionID }
func (p *Payment) Amount() decimal.Decimal { return p.amount }
func (p *Payment) Currency() string { return p.currency }
func (p *Payment) Status() PaymentStatus { return p.status }
func (p *Payment) PeriodStart() time.Time { return p.periodStart }
func (p *Payment) PeriodEnd() time.Time { return p.periodEnd }
func (p *Payment) PaidAt() *time.Time { return p.paidAt }
func (p *Payment) CreatedAt() time.Time { return p.createdAt }
