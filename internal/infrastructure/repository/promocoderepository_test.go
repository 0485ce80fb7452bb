package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/billing/internal/domain/promotion"
)

func createPromo(t *testing.T, r repos, code string, mutate ...func(*promotion.PromoCodeParams)) *promotion.PromoCode {
	t.Helper()
	params := promotion.PromoCodeParams{
		Code:          code,
		DiscountType:  promotion.DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(20),
		StartDate:     testNow,
		IsActive:      true,
		ApplicableTo:  promotion.ApplicableToAll,
	}
	for _, m := range mutate {
		m(&params)
	}
	promo, err := promotion.NewPromoCode(params, testNow)
	require.NoError(t, err)
	require.NoError(t, r.promos.Create(context.Background(), promo))
	return promo
}

func TestPromoCodeRepository_ActiveCodeUniqueness(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	first := createPromo(t, r, "SUMMER24")

	got, err := r.promos.GetActiveByCode(ctx, "SUMMER24")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first.ID(), got.ID())

	dup, err := promotion.NewPromoCode(first.Params(), testNow)
	require.NoError(t, err)
	assert.ErrorIs(t, r.promos.Create(ctx, dup), promotion.ErrCodeExists)

	first.Deactivate(testNow)
	require.NoError(t, r.promos.Update(ctx, first))

	none, err := r.promos.GetActiveByCode(ctx, "SUMMER24")
	require.NoError(t, err)
	assert.Nil(t, none)

	second := createPromo(t, r, "SUMMER24")
	exists, err := r.promos.ExistsActiveCode(ctx, "SUMMER24", second.ID())
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPromoCodeRepository_Applicability(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	promo := createPromo(t, r, "PLANS", func(p *promotion.PromoCodeParams) {
		p.ApplicableTo = promotion.ApplicableToSpecificPlans
		p.ApplicablePlanIDs = []string{"plan-b", "plan-a"}
	})

	got, err := r.promos.GetByID(ctx, promo.ID())
	require.NoError(t, err)
	assert.Equal(t, []string{"plan-a", "plan-b"}, got.ApplicablePlanIDs())

	got.RemoveApplicablePlans([]string{"plan-a"}, testNow)
	got.AddApplicablePlans([]string{"plan-c"}, testNow)
	require.NoError(t, r.promos.Update(ctx, got))

	reloaded, err := r.promos.GetByID(ctx, promo.ID())
	require.NoError(t, err)
	assert.Equal(t, []string{"plan-b", "plan-c"}, reloaded.ApplicablePlanIDs())
}

func TestPromoCodeRepository_IncrementUsage(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	limit := 2
	promo := createPromo(t, r, "LIMITED", func(p *promotion.PromoCodeParams) { p.UsageLimit = &limit })

	for i := 0; i < 2; i++ {
		ok, err := r.promos.IncrementUsage(ctx, promo.ID())
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := r.promos.IncrementUsage(ctx, promo.ID())
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := r.promos.GetByID(ctx, promo.ID())
	require.NoError(t, err)
	assert.Equal(t, 2, got.UsageCount())
}

func TestPromoCodeRepository_CreateRedemption(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	promo := createPromo(t, r, "ONCE")

	first := promotion.NewRedemption(promo.ID(), "sub-1", "user-1", decimal.RequireFromString("5.00"), testNow)
	require.NoError(t, r.promos.CreateRedemption(ctx, first))

	sameUser := promotion.NewRedemption(promo.ID(), "sub-2", "user-1", decimal.RequireFromString("5.00"), testNow)
	assert.ErrorIs(t, r.promos.CreateRedemption(ctx, sameUser), promotion.ErrAlreadyRedeemed)

	sameSub := promotion.NewRedemption(promo.ID(), "sub-1", "user-2", decimal.RequireFromString("5.00"), testNow)
	assert.ErrorIs(t, r.promos.CreateRedemption(ctx, sameSub), promotion.ErrAlreadyRedeemed)

	redeemed, err := r.promos.HasRedeemed(ctx, promo.ID(), "user-1")
	require.NoError(t, err)
	assert.True(t, redeemed)

	list, err := r.promos.ListRedemptions(ctx, promo.ID())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].DiscountAmount().Equal(decimal.NewFromInt(5)))
}
