package promotion

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/orris-inc/billing/internal/shared/id"
)

// Redemption links one subscription to one promo code. At most one exists
// per (code, user) and per (code, subscription).
type Redemption struct {
	id             string
	promoCodeID    string
	subscriptionID string
	userID         string
	discountAmount decimal.Decimal
	appliedDate    time.Time
}

func NewRedemption(promoCodeID, subscriptionID, userID string, discount decimal.Decimal, now time.Time) *Redemption {
	return &Redemption{
		id:             id.New(),
		promoCodeID:    promoCodeID,
		subscriptionID: subscriptionID,
		userID:         userID,
		discountAmount: discount,
		appliedDate:    now,
	}
}

func ReconstructRedemption(redemptionID, promoCodeID, subscriptionID, userID string, discount decimal.Decimal, appliedDate time.Time) *Redemption {
	return &Redemption{
		id:             redemptionID,
		promoCodeID:    promoCodeID,
		subscriptionID: subscriptionID,
		userID:         userID,
		discountAmount: discount,
		appliedDate:    appliedDate,
	}
}

func (r *Redemption) ID() string { return r.id }
func (r *Redemption) PromoCodeID() string { return r.promoCodeID }
func (r *Redemption) SubscriptionID() string { return r.subscriptionID }
func (r *Redemption) UserID() string { return r.userID }
func (r *Redemption) DiscountAmount() decimal.Decimal { return r.discountAmount }
func (r *Redemption) AppliedDate() time.Time { return r.appliedDate }
