package promotion

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

func ParseDiscountType(value string) (DiscountType, error) {
	t := DiscountType(strings.ToLower(strings.TrimSpace(value)))
	if t != DiscountTypePercentage && t != DiscountTypeFixed {
		return "", fmt.Errorf("%w: %s", ErrInvalidDiscountType, value)
	}
	return t, nil
}

func (t DiscountType) String() string {
	return string(t)
}

type Applicability string

const (
	ApplicableToAll           Applicability = "all"
	ApplicableToSpecificPlans Applicability = "specific_plans"
	ApplicableToSpecificUsers Applicability = "specific_users"
)

func ParseApplicability(value string) (Applicability, error) {
	a := Applicability(strings.ToLower(strings.TrimSpace(value)))
	switch a {
	case ApplicableToAll, ApplicableToSpecificPlans, ApplicableToSpecificUsers:
		return a, nil
	case "":
		return ApplicableToAll, nil
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidApplicability, value)
}

func (a Applicability) String() string {
	return string(a)
}

var hundred = decimal.NewFromInt(100)

// CalculateDiscount returns the discount for price. The result is rounded
// half-up to cents and always lies in [0, price].
func CalculateDiscount(discountType DiscountType, value decimal.Decimal, maxDiscount *decimal.Decimal, price decimal.Decimal) decimal.Decimal {
	if !price.IsPositive() || !value.IsPositive() {
		return decimal.Zero
	}

	var discount decimal.Decimal
	switch discountType {
	case DiscountTypePercentage:
		discount = price.Mul(value).Div(hundred)
		if maxDiscount != nil && discount.GreaterThan(*maxDiscount) {
			discount = *maxDiscount
		}
	case DiscountTypeFixed:
		discount = value
	default:
		return decimal.Zero
	}

	discount = decimal.Min(discount, price)
	if discount.IsNegative() {
		return decimal.Zero
	}
	return discount.Round(2)
}
