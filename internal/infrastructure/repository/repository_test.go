package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/orris-inc/billing/internal/domain/promotion"
	"github.com/orris-inc/billing/internal/domain/subscription"
	vo "github.com/orris-inc/billing/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/billing/internal/infrastructure/testutil"
	"github.com/orris-inc/billing/internal/shared/logger"
)

var testNow = time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC)

type repos struct {
	db     *gorm.DB
	apps   subscription.AppRepository
	plans  subscription.PlanRepository
	subs   subscription.SubscriptionRepository
	promos promotion.Repository
}

func newRepos(t *testing.T) repos {
	t.Helper()
	db := testutil.NewTestDB(t)
	log := logger.Nop()
	return repos{
		db:     db,
		apps:   NewAppRepository(db, log),
		plans:  NewPlanRepository(db, log),
		subs:   NewSubscriptionRepository(db, log),
		promos: NewPromoCodeRepository(db, log),
	}
}

func createPlan(t *testing.T, r repos, name string, status vo.PlanStatus, features ...subscription.FeatureSpec) *subscription.Plan {
	t.Helper()
	plan, err := subscription.NewPlan(subscription.PlanParams{
		AppID:        "app-1",
		Name:         name,
		Description:  "**fast** plan",
		Price:        decimal.RequireFromString("29.99"),
		Currency:     "USD",
		BillingCycle: vo.BillingCycleMonthly,
		Status:       status,
	}, testNow)
	require.NoError(t, err)

	list := make([]*subscription.PlanFeature, 0, len(features))
	for _, spec := range features {
		f, err := subscription.NewPlanFeature(plan.ID(), spec)
		require.NoError(t, err)
		list = append(list, f)
	}
	plan.SetFeatures(list)

	require.NoError(t, r.plans.Create(context.Background(), plan))
	return plan
}

func createSubscription(t *testing.T, r repos, plan *subscription.Plan, userID string, start time.Time) *subscription.Subscription {
	t.Helper()
	sub, err := subscription.NewSubscription(userID, plan, start)
	require.NoError(t, err)
	_, err = sub.Start(0, start)
	require.NoError(t, err)
	require.NoError(t, r.subs.Create(context.Background(), sub))
	return sub
}
