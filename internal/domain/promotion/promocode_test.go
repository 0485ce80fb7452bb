package promotion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func baseParams() PromoCodeParams {
	return PromoCodeParams{
		Code:          "save10",
		DiscountType:  DiscountTypePercentage,
		DiscountValue: dec("10"),
		StartDate:     now.Add(-time.Hour),
		IsActive:      true,
	}
}

func newPromo(t *testing.T, mutate ...func(*PromoCodeParams)) *PromoCode {
	t.Helper()
	p := baseParams()
	for _, m := range mutate {
		m(&p)
	}
	promo, err := NewPromoCode(p, now)
	require.NoError(t, err)
	return promo
}

func TestNewPromoCode_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*PromoCodeParams)
		wantErr error
	}{
		{"short code", func(p *PromoCodeParams) { p.Code = "ab" }, ErrInvalidCode},
		{"bad characters", func(p *PromoCodeParams) { p.Code = "SAVE 10" }, ErrInvalidCode},
		{"percentage zero", func(p *PromoCodeParams) { p.DiscountValue = dec("0") }, ErrInvalidDiscountValue},
		{"percentage above 100", func(p *PromoCodeParams) { p.DiscountValue = dec("100.01") }, ErrInvalidDiscountValue},
		{"fixed negative", func(p *PromoCodeParams) {
			p.DiscountType = DiscountTypeFixed
			p.DiscountValue = dec("-1")
		}, ErrInvalidDiscountValue},
		{"end before start", func(p *PromoCodeParams) { p.EndDate = timePtr(p.StartDate) }, ErrInvalidDateRange},
		{"unknown type", func(p *PromoCodeParams) { p.DiscountType = "bogo" }, ErrInvalidDiscountType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := baseParams()
			tt.mutate(&p)
			_, err := NewPromoCode(p, now)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewPromoCode_NormalizesCode(t *testing.T) {
	promo := newPromo(t, func(p *PromoCodeParams) { p.Code = "  spring-2024 " })
	assert.Equal(t, "SPRING-2024", promo.Code())
	assert.Equal(t, ApplicableToAll, promo.ApplicableTo())
	assert.Zero(t, promo.UsageCount())
}

func TestPromoCode_CheckAvailability(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*PromoCodeParams)
		usageCount int
		wantErr    error
	}{
		{"available", nil, 0, nil},
		{"inactive", func(p *PromoCodeParams) { p.IsActive = false }, 0, ErrPromoNotFound},
		{"not started", func(p *PromoCodeParams) { p.StartDate = now.Add(time.Hour) }, 0, ErrPromoNotStarted},
		{"expired", func(p *PromoCodeParams) { p.EndDate = timePtr(now.Add(-time.Minute)) }, 0, ErrPromoExpired},
		{"limit reached", func(p *PromoCodeParams) { p.UsageLimit = intPtr(1) }, 1, ErrUsageLimitReached},
		{"inactive wins over expiry", func(p *PromoCodeParams) {
			p.IsActive = false
			p.EndDate = timePtr(now.Add(-time.Minute))
		}, 0, ErrPromoNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := baseParams()
			if tt.mutate != nil {
				tt.mutate(&p)
			}
			promo := ReconstructPromoCode(PromoCodeReconstructParams{
				ID: "p1", Params: p, UsageCount: tt.usageCount, CreatedAt: now, UpdatedAt: now,
			})
			err := promo.CheckAvailability(now)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPromoCode_CheckApplicability(t *testing.T) {
	plans := newPromo(t, func(p *PromoCodeParams) {
		p.ApplicableTo = ApplicableToSpecificPlans
		p.ApplicablePlanIDs = []string{"plan-a"}
	})
	assert.NoError(t, plans.CheckApplicability("plan-a", "anyone"))
	assert.ErrorIs(t, plans.CheckApplicability("plan-b", "anyone"), ErrNotApplicableToPlan)

	users := newPromo(t, func(p *PromoCodeParams) {
		p.ApplicableTo = ApplicableToSpecificUsers
		p.ApplicableUserIDs = []string{"user-1"}
	})
	assert.NoError(t, users.CheckApplicability("plan-b", "user-1"))
	assert.ErrorIs(t, users.CheckApplicability("plan-b", "user-2"), ErrNotApplicableToUser)
}

func TestPromoCode_ApplicableSetMaintenance(t *testing.T) {
	promo := newPromo(t, func(p *PromoCodeParams) { p.ApplicablePlanIDs = []string{"a"} })

	added := promo.AddApplicablePlans([]string{"a", "b", "b", "c"}, now)
	assert.Equal(t, []string{"b", "c"}, added)
	assert.Equal(t, []string{"a", "b", "c"}, promo.ApplicablePlanIDs())

	promo.RemoveApplicablePlans([]string{"b"}, now)
	assert.Equal(t, []string{"a", "c"}, promo.ApplicablePlanIDs())
}

func TestPromoCode_UpdateRejectsLimitBelowUsage(t *testing.T) {
	p := baseParams()
	promo := ReconstructPromoCode(PromoCodeReconstructParams{ID: "p1", Params: p, UsageCount: 5})

	p.UsageLimit = intPtr(3)
	assert.ErrorIs(t, promo.Update(p, now), ErrInvalidUsageLimit)

	p.UsageLimit = intPtr(5)
	assert.NoError(t, promo.Update(p, now))
}

func TestPromoCode_MinimumPurchase(t *testing.T) {
	promo := newPromo(t, func(p *PromoCodeParams) { p.MinPurchaseAmount = decPtr("20") })
	assert.ErrorIs(t, promo.CheckMinimumPurchase(dec("19.99")), ErrBelowMinimumPurchase)
	assert.NoError(t, promo.CheckMinimumPurchase(dec("20")))
}
