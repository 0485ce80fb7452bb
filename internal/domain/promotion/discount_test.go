package promotion

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestCalculateDiscount(t *testing.T) {
	tests := []struct {
		name     string
		kind     DiscountType
		value    string
		max      *decimal.Decimal
		price    string
		expected string
	}{
		{"ten percent", DiscountTypePercentage, "10", nil, "29.99", "3"},
		{"percentage capped by max", DiscountTypePercentage, "50", decPtr("5"), "100", "5"},
		{"full percentage", DiscountTypePercentage, "100", nil, "49.50", "49.5"},
		{"rounds half up", DiscountTypePercentage, "15", nil, "9.99", "1.5"},
		{"fixed below price", DiscountTypeFixed, "5", nil, "20", "5"},
		{"fixed capped at price", DiscountTypeFixed, "50", nil, "20", "20"},
		{"zero price", DiscountTypeFixed, "5", nil, "0", "0"},
		{"unknown type", DiscountType("bogus"), "5", nil, "20", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateDiscount(tt.kind, dec(tt.value), tt.max, dec(tt.price))
			assert.True(t, dec(tt.expected).Equal(got), "want %s got %s", tt.expected, got)
		})
	}
}

func TestCalculateDiscount_Bounds(t *testing.T) {
	prices := []string{"0.01", "1", "9.99", "29.99", "100", "1234.56"}
	values := []string{"0.5", "1", "10", "33.33", "99.99", "100"}
	for _, p := range prices {
		price := dec(p)
		for _, v := range values {
			pct := CalculateDiscount(DiscountTypePercentage, dec(v), decPtr("7.50"), price)
			assert.False(t, pct.IsNegative())
			assert.True(t, pct.LessThanOrEqual(price))
			assert.True(t, pct.LessThanOrEqual(dec("7.50")))

			fixed := CalculateDiscount(DiscountTypeFixed, dec(v), nil, price)
			assert.True(t, fixed.LessThanOrEqual(price))

			again := CalculateDiscount(DiscountTypePercentage, dec(v), decPtr("7.50"), price)
			assert.True(t, pct.Equal(again))
		}
	}
}

func TestParseApplicability(t *testing.T) {
	a, err := ParseApplicability("")
	assert.NoError(t, err)
	assert.Equal(t, ApplicableToAll, a)

	a, err = ParseApplicability("SPECIFIC_PLANS")
	assert.NoError(t, err)
	assert.Equal(t, ApplicableToSpecificPlans, a)

	_, err = ParseApplicability("everyone")
	assert.ErrorIs(t, err, ErrInvalidApplicability)
}
