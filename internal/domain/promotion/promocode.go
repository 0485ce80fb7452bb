package promotion

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/orris-inc/billing/internal/shared/id"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9_-]{3,50}$`)

// NormalizeCode upper-cases and trims a raw code. Lookups and storage always
// use the normalized form.
func NormalizeCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// IsWellFormedCode reports whether an already normalized code has the
// allowed shape.
func IsWellFormedCode(code string) bool {
	return codePattern.MatchString(code)
}

// PromoCode is a discount rule together with its applicability sets.
type PromoCode struct {
	id                string
	code              string
	description       string
	discountType      DiscountType
	discountValue     decimal.Decimal
	startDate         time.Time
	endDate           *time.Time
	usageLimit        *int
	usageCount        int
	isActive          bool
	isFirstTimeOnly   bool
	applicableTo      Applicability
	maxDiscountAmount *decimal.Decimal
	minPurchaseAmount *decimal.Decimal
	applicablePlanIDs []string
	applicableUserIDs []string
	createdAt         time.Time
	updatedAt         time.Time
}

// PromoCodeParams carries the admin-editable attributes.
type PromoCodeParams struct {
	Code              string
	Description       string
	DiscountType      DiscountType
	DiscountValue     decimal.Decimal
	StartDate         time.Time
	EndDate           *time.Time
	UsageLimit        *int
	IsActive          bool
	IsFirstTimeOnly   bool
	ApplicableTo      Applicability
	MaxDiscountAmount *decimal.Decimal
	MinPurchaseAmount *decimal.Decimal
	ApplicablePlanIDs []string
	ApplicableUserIDs []string
}

func NewPromoCode(p PromoCodeParams, now time.Time) (*PromoCode, error) {
	if p.StartDate.IsZero() {
		p.StartDate = now
	}
	promo := &PromoCode{
		id:        id.New(),
		createdAt: now,
		updatedAt: now,
	}
	if err := promo.apply(p); err != nil {
		return nil, err
	}
	return promo, nil
}

// PromoCodeReconstructParams holds persisted state for ReconstructPromoCode.
type PromoCodeReconstructParams struct {
	ID         string
	Params     PromoCodeParams
	UsageCount int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func ReconstructPromoCode(p PromoCodeReconstructParams) *PromoCode {
	return &PromoCode{
		id:                p.ID,
		code:              p.Params.Code,
		description:       p.Params.Description,
		discountType:      p.Params.DiscountType,
		discountValue:     p.Params.DiscountValue,
		startDate:         p.Params.StartDate,
		endDate:           p.Params.EndDate,
		usageLimit:        p.Params.UsageLimit,
		usageCount:        p.UsageCount,
		isActive:          p.Params.IsActive,
		isFirstTimeOnly:   p.Params.IsFirstTimeOnly,
		applicableTo:      p.Params.ApplicableTo,
		maxDiscountAmount: p.Params.MaxDiscountAmount,
		minPurchaseAmount: p.Params.MinPurchaseAmount,
		applicablePlanIDs: p.Params.ApplicablePlanIDs,
		applicableUserIDs: p.Params.ApplicableUserIDs,
		createdAt:         p.CreatedAt,
		updatedAt:         p.UpdatedAt,
	}
}

func (p *PromoCode) apply(params PromoCodeParams) error {
	code := NormalizeCode(params.Code)
	if !codePattern.MatchString(code) {
		return fmt.Errorf("%w: %q must be 3-50 characters of A-Z, 0-9, _ or -", ErrInvalidCode, params.Code)
	}
	switch params.DiscountType {
	case DiscountTypePercentage:
		if !params.DiscountValue.IsPositive() || params.DiscountValue.GreaterThan(hundred) {
			return fmt.Errorf("%w: percentage must be in (0, 100]", ErrInvalidDiscountValue)
		}
	case DiscountTypeFixed:
		if !params.DiscountValue.IsPositive() {
			return fmt.Errorf("%w: fixed discount must be greater than 0", ErrInvalidDiscountValue)
		}
	default:
		return fmt.Errorf("%w: %s", ErrInvalidDiscountType, params.DiscountType)
	}
	if params.EndDate != nil && !params.EndDate.After(params.StartDate) {
		return ErrInvalidDateRange
	}
	if params.UsageLimit != nil && *params.UsageLimit < p.usageCount {
		return ErrInvalidUsageLimit
	}
	if params.UsageLimit != nil && *params.UsageLimit < 0 {
		return ErrInvalidUsageLimit
	}
	if params.MaxDiscountAmount != nil && params.MaxDiscountAmount.IsNegative() {
		return fmt.Errorf("%w: max discount cannot be negative", ErrInvalidDiscountValue)
	}
	if params.MinPurchaseAmount != nil && params.MinPurchaseAmount.IsNegative() {
		return fmt.Errorf("%w: minimum purchase cannot be negative", ErrInvalidDiscountValue)
	}
	applicableTo := params.ApplicableTo
	if applicableTo == "" {
		applicableTo = ApplicableToAll
	}
	if _, err := ParseApplicability(applicableTo.String()); err != nil {
		return err
	}

	p.code = code
	p.description = params.Description
	p.discountType = params.DiscountType
	p.discountValue = params.DiscountValue
	p.startDate = params.StartDate.UTC()
	p.endDate = params.EndDate
	p.usageLimit = params.UsageLimit
	p.isActive = params.IsActive
	p.isFirstTimeOnly = params.IsFirstTimeOnly
	p.applicableTo = applicableTo
	p.maxDiscountAmount = params.MaxDiscountAmount
	p.minPurchaseAmount = params.MinPurchaseAmount
	p.applicablePlanIDs = lo.Uniq(params.ApplicablePlanIDs)
	p.applicableUserIDs = lo.Uniq(params.ApplicableUserIDs)
	return nil
}

func (p *PromoCode) ID() string { return p.id }
func (p *PromoCode) Code() string { return p.code }
func (p *PromoCode) Description() string { return p.description }
func (p *PromoCode) DiscountType() DiscountType { return p.discountType }
func (p *PromoCode) DiscountValue() decimal.Decimal { return p.discountValue }
func (p *PromoCode) StartDate() time.Time { return p.startDate }
func (p *PromoCode) EndDate() *time.Time { return p.endDate }
func (p *PromoCode) UsageLimit() *int { return p.usageLimit }
func (p *PromoCode) UsageCount() int { return p.usageCount }
func (p *PromoCode) IsActive() bool { return p.isActive }
func (p *PromoCode) IsFirstTimeOnly() bool { return p.isFirstTimeOnly }
func (p *PromoCode) ApplicableTo() Applicability { return p.applicableTo }
func (p *PromoCode) MaxDiscountAmount() *decimal.Decimal { return p.maxDiscountAmount }
func (p *PromoCode) MinPurchaseAmount() *decimal.Decimal { return p.minPurchaseAmount }
func (p *PromoCode) ApplicablePlanIDs() []string { return p.applicablePlanIDs }
func (p *PromoCode) ApplicableUserIDs() []string { return p.applicableUserIDs }
func (p *PromoCode) CreatedAt() time.Time { return p.createdAt }
func (p *PromoCode) UpdatedAt() time.Time { return p.updatedAt }

func (p *PromoCode) Params() PromoCodeParams {
	return PromoCodeParams{
		Code:              p.code,
		Description:       p.description,
		DiscountType:      p.discountType,
		DiscountValue:     p.discountValue,
		StartDate:         p.startDate,
		EndDate:           p.endDate,
		UsageLimit:        p.usageLimit,
		IsActive:          p.isActive,
		IsFirstTimeOnly:   p.isFirstTimeOnly,
		ApplicableTo:      p.applicableTo,
		MaxDiscountAmount: p.maxDiscountAmount,
		MinPurchaseAmount: p.minPurchaseAmount,
		ApplicablePlanIDs: p.applicablePlanIDs,
		ApplicableUserIDs: p.applicableUserIDs,
	}
}

// Update replaces the editable attributes. usageCount is never touched here.
func (p *PromoCode) Update(params PromoCodeParams, now time.Time) error {
	if err := p.apply(params); err != nil {
		return err
	}
	p.updatedAt = now
	return nil
}

func (p *PromoCode) Deactivate(now time.Time) {
	p.isActive = false
	p.updatedAt = now
}

// CheckAvailability runs the code-level checks in order: active, within
// the date window, below the usage limit.
func (p *PromoCode) CheckAvailability(now time.Time) error {
	if !p.isActive {
		return ErrPromoNotFound
	}
	if now.Before(p.startDate) {
		return ErrPromoNotStarted
	}
	if p.endDate != nil && now.After(*p.endDate) {
		return ErrPromoExpired
	}
	if p.usageLimit != nil && p.usageCount >= *p.usageLimit {
		return ErrUsageLimitReached
	}
	return nil
}

// CheckApplicability enforces the specific_plans and specific_users scopes.
func (p *PromoCode) CheckApplicability(planID, userID string) error {
	switch p.applicableTo {
	case ApplicableToSpecificPlans:
		if !lo.Contains(p.applicablePlanIDs, planID) {
			return ErrNotApplicableToPlan
		}
	case ApplicableToSpecificUsers:
		if !lo.Contains(p.applicableUserIDs, userID) {
			return ErrNotApplicableToUser
		}
	}
	return nil
}

func (p *PromoCode) CheckMinimumPurchase(price decimal.Decimal) error {
	if p.minPurchaseAmount != nil && price.LessThan(*p.minPurchaseAmount) {
		return ErrBelowMinimumPurchase
	}
	return nil
}

// DiscountFor returns this code's discount on price.
func (p *PromoCode) DiscountFor(price decimal.Decimal) decimal.Decimal {
	return CalculateDiscount(p.discountType, p.discountValue, p.maxDiscountAmount, price)
}

// AddApplicablePlans merges ids into the plan set, ignoring duplicates.
func (p *PromoCode) AddApplicablePlans(ids []string, now time.Time) []string {
	added := lo.Without(lo.Uniq(ids), p.applicablePlanIDs...)
	p.applicablePlanIDs = append(p.applicablePlanIDs, added...)
	p.updatedAt = now
	return added
}

func (p *PromoCode) AddApplicableUsers(ids []string, now time.Time) []string {
	added := lo.Without(lo.Uniq(ids), p.applicableUserIDs...)
	p.applicableUserIDs = append(p.applicableUserIDs, added...)
	p.updatedAt = now
	return added
}

func (p *PromoCode) RemoveApplicablePlans(ids []string, now time.Time) {
	p.applicablePlanIDs = lo.Without(p.applicablePlanIDs, ids...)
	p.updatedAt = now
}

func (p *PromoCode) RemoveApplicableUsers(ids []string, now time.Time) {
	p.applicableUserIDs = lo.Without(p.applicableUserIDs, ids...)
	p.updatedAt = now
}
