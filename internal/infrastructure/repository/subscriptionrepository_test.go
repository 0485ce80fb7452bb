package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/billing/internal/domain/subscription"
	vo "github.com/orris-inc/billing/internal/domain/subscription/valueobjects"
)

func TestSubscriptionRepository_CreateGetUpdate(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	plan := createPlan(t, r, "Pro", vo.PlanStatusActive)
	sub := createSubscription(t, r, plan, "user-1", testNow)

	got, err := r.subs.GetByID(ctx, sub.ID())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, vo.StatusActive, got.Status())
	assert.True(t, got.EndDate().Equal(sub.EndDate()))
	assert.Equal(t, 29, got.EndDate().Day())

	stale, err := r.subs.GetByID(ctx, sub.ID())
	require.NoError(t, err)

	_, err = got.Cancel(false, testNow)
	require.NoError(t, err)
	require.NoError(t, r.subs.Update(ctx, got))
	assert.Equal(t, 2, got.Version())

	_, err = stale.Cancel(true, testNow)
	require.NoError(t, err)
	assert.ErrorIs(t, r.subs.Update(ctx, stale), subscription.ErrConcurrentModification)

	reloaded, err := r.subs.GetByID(ctx, sub.ID())
	require.NoError(t, err)
	assert.True(t, reloaded.CancelAtPeriodEnd())
	assert.Equal(t, vo.StatusActive, reloaded.Status())
}

func TestSubscriptionRepository_Queries(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	plan := createPlan(t, r, "Pro", vo.PlanStatusActive)

	a := createSubscription(t, r, plan, "user-1", testNow)
	createSubscription(t, r, plan, "user-1", testNow.AddDate(0, 0, 1))
	createSubscription(t, r, plan, "user-2", testNow)

	_, err := a.Cancel(true, testNow)
	require.NoError(t, err)
	require.NoError(t, r.subs.Update(ctx, a))

	count, err := r.subs.CountByUser(ctx, "user-1", a.ID())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	open, err := r.subs.CountNonTerminalByUserApp(ctx, "user-1", "app-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), open)

	byPlan, err := r.subs.CountByPlanID(ctx, plan.ID())
	require.NoError(t, err)
	assert.Equal(t, int64(3), byPlan)

	mine, err := r.subs.ListByUser(ctx, "user-1", nil)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	status := vo.StatusCanceled.String()
	list, total, err := r.subs.List(ctx, subscription.SubscriptionFilter{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID(), list[0].ID())
}

func TestSubscriptionRepository_FindPeriodEnded(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	plan := createPlan(t, r, "Pro", vo.PlanStatusActive)

	scheduled := createSubscription(t, r, plan, "user-1", testNow)
	_, err := scheduled.Cancel(false, testNow)
	require.NoError(t, err)
	require.NoError(t, r.subs.Update(ctx, scheduled))

	createSubscription(t, r, plan, "user-2", testNow)

	found, err := r.subs.FindPeriodEnded(ctx, testNow.AddDate(0, 0, 1), 10)
	require.NoError(t, err)
	assert.Empty(t, found)

	found, err = r.subs.FindPeriodEnded(ctx, scheduled.EndDate(), 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, scheduled.ID(), found[0].ID())
}

func TestSubscriptionRepository_EventsAndPayments(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	plan := createPlan(t, r, "Pro", vo.PlanStatusActive)
	sub := createSubscription(t, r, plan, "user-1", testNow)

	events, err := sub.Renew(sub.EndDate())
	require.NoError(t, err)
	require.NoError(t, r.subs.AppendEvents(ctx, events...))
	payment := subscription.NewSucceededPayment(sub.ID(), sub.Amount(), sub.Currency(), sub.CurrentPeriodStart(), sub.EndDate(), sub.CurrentPeriodStart())
	require.NoError(t, r.subs.CreatePayment(ctx, payment))

	stored, err := r.subs.ListEvents(ctx, sub.ID())
	require.NoError(t, err)
	require.Len(t, stored, 2)
	types := []subscription.EventType{stored[0].Type(), stored[1].Type()}
	assert.ElementsMatch(t, []subscription.EventType{subscription.EventExpired, subscription.EventRenewed}, types)

	payments, err := r.subs.ListPayments(ctx, sub.ID())
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.True(t, payments[0].Amount().Equal(sub.Amount()))
	assert.Equal(t, subscription.PaymentStatusSucceeded, payments[0].Status())
}
