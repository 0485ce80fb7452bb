package promotion

import "errors"

// Verdict errors carry the human-readable reason shown to the end user when
// a code cannot be used.
var (
	ErrPromoNotFound        = errors.New("promo code not found or inactive")
	ErrPromoNotStarted      = errors.New("promo code is not yet valid")
	ErrPromoExpired         = errors.New("promo code has expired")
	ErrUsageLimitReached    = errors.New("promo code usage limit has been reached")
	ErrNotApplicableToPlan  = errors.New("promo code is not applicable to this plan")
	ErrNotApplicableToUser  = errors.New("promo code is not applicable to this user")
	ErrFirstTimeOnly        = errors.New("promo code is only valid for first-time subscribers")
	ErrAlreadyRedeemed      = errors.New("promo code has already been used by this user")
	ErrBelowMinimumPurchase = errors.New("purchase amount is below the promo code minimum")
)

var (
	ErrInvalidCode          = errors.New("invalid promo code format")
	ErrInvalidDiscountType  = errors.New("invalid discount type")
	ErrInvalidDiscountValue = errors.New("invalid discount value")
	ErrInvalidDateRange     = errors.New("end date must be after start date")
	ErrInvalidApplicability = errors.New("invalid applicability")
	ErrInvalidUsageLimit    = errors.New("usage limit cannot be below current usage")
	ErrCodeExists           = errors.New("an active promo code with this code already exists")
)

var verdicts = []error{
	ErrPromoNotFound,
	ErrPromoNotStarted,
	ErrPromoExpired,
	ErrUsageLimitReached,
	ErrNotApplicableToPlan,
	ErrNotApplicableToUser,
	ErrFirstTimeOnly,
	ErrAlreadyRedeemed,
	ErrBelowMinimumPurchase,
}

// IsVerdict reports whether err explains why a code cannot be used, as
// opposed to a failure to evaluate it.
func IsVerdict(err error) bool {
	for _, v := range verdicts {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}
