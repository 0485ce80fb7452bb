package promotion

import "context"

// Repository persists promo codes, their applicability sets and redemptions.
// Lookups return (nil, nil) when nothing matches.
type Repository interface {
	Create(ctx context.Context, promo *PromoCode) error
	GetByID(ctx context.Context, id string) (*PromoCode, error)
	GetActiveByCode(ctx context.Context, code string) (*PromoCode, error)
	ExistsActiveCode(ctx context.Context, code, excludeID string) (bool, error)
	List(ctx context.Context, filter Filter) ([]*PromoCode, int64, error)
	// Update persists the editable columns and replaces both applicability sets.
	Update(ctx context.Context, promo *PromoCode) error

	// IncrementUsage atomically bumps usage_count when the code is active and
	// below its limit. It reports false when the guard rejected the update.
	IncrementUsage(ctx context.Context, id string) (bool, error)
	// CreateRedemption returns ErrAlreadyRedeemed on a unique-key collision.
	CreateRedemption(ctx context.Context, r *Redemption) error
	HasRedeemed(ctx context.Context, promoCodeID, userID string) (bool, error)
	ListRedemptions(ctx context.Context, promoCodeID string) ([]*Redemption, error)
}

type Filter struct {
	Code         *string
	IsActive     *bool
	DiscountType *string
	ApplicableTo *string
	Page         int
	PageSize     int
}
