package subscription

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/orris-inc/billing/internal/domain/subscription/valueobjects"
)

var fixedNow = time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC)

func validPlanParams() PlanParams {
	return PlanParams{
		AppID:        "app-1",
		Name:         "Pro",
		Price:        decimal.RequireFromString("29.99"),
		Currency:     "usd",
		BillingCycle: vo.BillingCycleMonthly,
		Status:       vo.PlanStatusActive,
	}
}

func newActivePlan(t *testing.T, mutate ...func(*PlanParams)) *Plan {
	t.Helper()
	params := validPlanParams()
	for _, m := range mutate {
		m(&params)
	}
	plan, err := NewPlan(params, fixedNow)
	require.NoError(t, err)
	return plan
}

func TestNewPlan(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*PlanParams)
		wantErr string
	}{
		{name: "valid"},
		{name: "missing app", mutate: func(p *PlanParams) { p.AppID = "" }, wantErr: "app ID is required"},
		{name: "blank name", mutate: func(p *PlanParams) { p.Name = "  " }, wantErr: "plan name is required"},
		{name: "negative price", mutate: func(p *PlanParams) { p.Price = decimal.NewFromInt(-1) }, wantErr: "invalid price"},
		{name: "unknown currency", mutate: func(p *PlanParams) { p.Currency = "ZZZ" }, wantErr: "invalid currency"},
		{name: "bad cycle", mutate: func(p *PlanParams) { p.BillingCycle = "weekly" }, wantErr: "invalid billing cycle"},
		{name: "trial too long", mutate: func(p *PlanParams) { p.TrialDays = 400 }, wantErr: "trial days"},
		{name: "archived on create", mutate: func(p *PlanParams) { p.Status = vo.PlanStatusArchived }, wantErr: "archived"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := validPlanParams()
			if tt.mutate != nil {
				tt.mutate(&params)
			}
			plan, err := NewPlan(params, fixedNow)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, plan.ID())
			assert.Equal(t, "USD", plan.Currency())
			assert.Equal(t, 1, plan.Version())
			assert.True(t, plan.IsPurchasable())
		})
	}
}

func TestNewPlan_DefaultsToDraft(t *testing.T) {
	plan := newActivePlan(t, func(p *PlanParams) { p.Status = "" })
	assert.Equal(t, vo.PlanStatusDraft, plan.Status())
	assert.False(t, plan.IsPurchasable())
}

func TestPlan_UpdateKeepsApp(t *testing.T) {
	plan := newActivePlan(t)
	params := plan.Params()
	params.AppID = "other-app"
	params.Name = "Pro Plus"

	require.NoError(t, plan.Update(params, fixedNow.Add(time.Hour)))
	assert.Equal(t, "app-1", plan.AppID())
	assert.Equal(t, "Pro Plus", plan.Name())
}

func TestPlan_Archive(t *testing.T) {
	plan := newActivePlan(t)
	plan.Archive(fixedNow)
	assert.Equal(t, vo.PlanStatusArchived, plan.Status())
}

func TestReconcileFeatures(t *testing.T) {
	keep := ReconstructPlanFeature("f-keep", "plan-1", FeatureSpec{Name: "Seats"})
	drop := ReconstructPlanFeature("f-drop", "plan-1", FeatureSpec{Name: "Legacy"})

	limit := int64(10)
	diff, err := ReconcileFeatures("plan-1", []*PlanFeature{keep, drop}, []FeatureChange{
		ExistingFeature("f-keep", FeatureSpec{Name: "Seats", Included: true, Limit: &limit}),
		NewFeature(FeatureSpec{Name: "Support", Category: "service"}),
	})
	require.NoError(t, err)

	require.Len(t, diff.Update, 1)
	assert.Equal(t, "f-keep", diff.Update[0].ID())
	assert.Equal(t, &limit, diff.Update[0].Limit())

	require.Len(t, diff.Insert, 1)
	assert.NotEmpty(t, diff.Insert[0].ID())
	assert.Equal(t, "plan-1", diff.Insert[0].PlanID())

	assert.Equal(t, []string{"f-drop"}, diff.Delete)
	require.Len(t, diff.Result, 2)
	assert.Equal(t, "Seats", diff.Result[0].Name())
	assert.Equal(t, "Support", diff.Result[1].Name())
}

func TestReconcileFeatures_Errors(t *testing.T) {
	current := []*PlanFeature{ReconstructPlanFeature("f-1", "plan-1", FeatureSpec{Name: "Seats"})}

	_, err := ReconcileFeatures("plan-1", current, []FeatureChange{
		ExistingFeature("f-unknown", FeatureSpec{Name: "x"}),
	})
	assert.ErrorIs(t, err, ErrFeatureNotFound)

	_, err = ReconcileFeatures("plan-1", current, []FeatureChange{
		ExistingFeature("f-1", FeatureSpec{Name: "a"}),
		ExistingFeature("f-1", FeatureSpec{Name: "b"}),
	})
	assert.Error(t, err)

	_, err = ReconcileFeatures("plan-1", current, []FeatureChange{NewFeature(FeatureSpec{})})
	assert.Error(t, err)
}
