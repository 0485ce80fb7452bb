package usecases

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/billing/internal/domain/subscription"
	vo "github.com/orris-inc/billing/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/billing/internal/infrastructure/cache"
	"github.com/orris-inc/billing/internal/infrastructure/repository"
	"github.com/orris-inc/billing/internal/infrastructure/testutil"
	"github.com/orris-inc/billing/internal/shared/constants"
	"github.com/orris-inc/billing/internal/shared/db"
	apperrors "github.com/orris-inc/billing/internal/shared/errors"
	"github.com/orris-inc/billing/internal/shared/logger"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 30, 0, 0, time.UTC)
}

func sameTime(t *testing.T, want, got time.Time) {
	t.Helper()
	assert.Truef(t, want.Equal(got), "want %s, got %s", want, got)
}

// recordingCache captures invalidations.
type recordingCache struct {
	mu   sync.Mutex
	keys []string
}

func (c *recordingCache) Invalidate(_ context.Context, keysOrPatterns ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys = append(c.keys, keysOrPatterns...)
}

type fixture struct {
	now   time.Time
	subs  subscription.SubscriptionRepository
	plans subscription.PlanRepository
	tx    db.Transactor
	cache *cache.Cache
	log   logger.Interface

	create  *CreateSubscriptionUseCase
	cancel  *CancelSubscriptionUseCase
	renew   *RenewSubscriptionUseCase
	status  *UpdateSubscriptionStatusUseCase
	get     *GetSubscriptionUseCase
	byUser  *ListUserSubscriptionsUseCase
	list    *ListSubscriptionsUseCase
	history *ListSubscriptionHistoryUseCase
	expire  *ExpireSubscriptionsUseCase
}

func newFixture(t *testing.T, start time.Time) *fixture {
	t.Helper()
	gdb := testutil.NewTestDB(t)
	log := logger.Nop()
	f := &fixture{
		now:   start,
		subs:  repository.NewSubscriptionRepository(gdb, log),
		plans: repository.NewPlanRepository(gdb, log),
		tx:    db.NewTransactionManager(gdb),
		cache: cache.New(cache.NewMemoryStore(time.Minute), constants.CacheNamespaceSubscriptions, cache.Options{DefaultTTL: 5 * time.Minute}, log),
		log:   log,
	}
	clock := func() time.Time { return f.now }
	f.create = NewCreateSubscriptionUseCase(f.subs, f.plans, f.tx, f.cache, clock, log)
	f.cancel = NewCancelSubscriptionUseCase(f.subs, f.tx, f.cache, clock, log)
	f.renew = NewRenewSubscriptionUseCase(f.subs, f.tx, f.cache, clock, log)
	f.status = NewUpdateSubscriptionStatusUseCase(f.subs, f.tx, f.cache, clock, log)
	f.get = NewGetSubscriptionUseCase(f.subs, f.cache, log)
	f.byUser = NewListUserSubscriptionsUseCase(f.subs, f.cache, log)
	f.list = NewListSubscriptionsUseCase(f.subs, f.cache, log)
	f.history = NewListSubscriptionHistoryUseCase(f.subs, log)
	f.expire = NewExpireSubscriptionsUseCase(f.subs, f.tx, f.cache, 2, log)
	return f
}

func (f *fixture) plan(t *testing.T, name string, cycle vo.BillingCycle, trialDays int, status vo.PlanStatus) *subscription.Plan {
	t.Helper()
	p, err := subscription.NewPlan(subscription.PlanParams{
		AppID:        "A1",
		Name:         name,
		Price:        decimal.RequireFromString("29.99"),
		Currency:     "USD",
		BillingCycle: cycle,
		TrialDays:    trialDays,
		Status:       status,
	}, f.now)
	require.NoError(t, err)
	require.NoError(t, f.plans.Create(context.Background(), p))
	return p
}

func (f *fixture) subscribe(t *testing.T, planID, userID string) string {
	t.Helper()
	sub, err := f.create.Execute(context.Background(), CreateSubscriptionCommand{PlanID: planID, UserID: userID, AppID: "A1"})
	require.NoError(t, err)
	return sub.ID
}

func TestCreateSubscription_ProExample(t *testing.T) {
	f := newFixture(t, day(2024, time.March, 15))
	pro := f.plan(t, "Pro", vo.BillingCycleMonthly, 0, vo.PlanStatusActive)

	sub, err := f.create.Execute(context.Background(), CreateSubscriptionCommand{PlanID: pro.ID(), UserID: "user1", AppID: "A1"})
	require.NoError(t, err)
	assert.Equal(t, "active", sub.Status)
	sameTime(t, day(2024, time.March, 15), sub.StartDate)
	sameTime(t, day(2024, time.April, 15), sub.EndDate)
	assert.True(t, decimal.RequireFromString("29.99").Equal(sub.Amount))
	assert.True(t, sub.AutoRenew)

	events, err := f.history.Events(context.Background(), sub.ID, "user1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "created", events[0].EventType)
	assert.Equal(t, "pending", events[0].FromStatus)
	assert.Equal(t, "active", events[0].ToStatus)
}

func TestCreateSubscription_PeriodArithmetic(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		cycle vo.BillingCycle
		want  time.Time
	}{
		{"monthly from Jan 31 in leap year", day(2024, time.January, 31), vo.BillingCycleMonthly, day(2024, time.February, 29)},
		{"monthly from Jan 31", day(2023, time.January, 31), vo.BillingCycleMonthly, day(2023, time.February, 28)},
		{"quarterly from Nov 30", day(2023, time.November, 30), vo.BillingCycleQuarterly, day(2024, time.February, 29)},
		{"yearly from leap day", day(2024, time.February, 29), vo.BillingCycleYearly, day(2025, time.February, 28)},
		{"monthly across year end", day(2023, time.December, 15), vo.BillingCycleMonthly, day(2024, time.January, 15)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.start)
			p := f.plan(t, "Plan", tt.cycle, 0, vo.PlanStatusActive)
			sub, err := f.create.Execute(context.Background(), CreateSubscriptionCommand{PlanID: p.ID(), UserID: "u", AppID: "A1"})
			require.NoError(t, err)
			sameTime(t, tt.want, sub.EndDate)
		})
	}
}

func TestCreateSubscription_Trial(t *testing.T) {
	f := newFixture(t, day(2024, time.May, 1))
	p := f.plan(t, "Trial", vo.BillingCycleMonthly, 14, vo.PlanStatusActive)
	promoID := "promo-1"

	sub, err := f.create.Execute(context.Background(), CreateSubscriptionCommand{PlanID: p.ID(), UserID: "u1", AppID: "A1", PromoCodeID: &promoID})
	require.NoError(t, err)
	assert.Equal(t, "trialing", sub.Status)
	require.NotNil(t, sub.TrialEndDate)
	sameTime(t, day(2024, time.May, 15), *sub.TrialEndDate)

	events, err := f.history.Events(context.Background(), sub.ID, "")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "trial_started", events[0].EventType)
	assert.Equal(t, "promo-1", events[0].Metadata["promo_code_id"])
}

func TestCreateSubscription_Rejections(t *testing.T) {
	f := newFixture(t, day(2024, time.May, 1))
	archived := f.plan(t, "Old", vo.BillingCycleMonthly, 0, vo.PlanStatusArchived)
	active := f.plan(t, "Pro", vo.BillingCycleMonthly, 0, vo.PlanStatusActive)

	tests := []struct {
		name  string
		cmd   CreateSubscriptionCommand
		check func(error) bool
	}{
		{"missing plan", CreateSubscriptionCommand{PlanID: "nope", UserID: "u", AppID: "A1"}, apperrors.IsNotFoundError},
		{"archived plan", CreateSubscriptionCommand{PlanID: archived.ID(), UserID: "u", AppID: "A1"}, apperrors.IsNotFoundError},
		{"plan of another app", CreateSubscriptionCommand{PlanID: active.ID(), UserID: "u", AppID: "A2"}, apperrors.IsBadRequestError},
		{"missing user", CreateSubscriptionCommand{PlanID: active.ID(), AppID: "A1"}, apperrors.IsValidationError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.create.Execute(context.Background(), tt.cmd)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
		})
	}
}

func TestCancelSubscription_Deferred(t *testing.T) {
	f := newFixture(t, day(2024, time.January, 10))
	p := f.plan(t, "Pro", vo.BillingCycleMonthly, 0, vo.PlanStatusActive)
	id := f.subscribe(t, p.ID(), "user1")
	ctx := context.Background()

	f.now = day(2024, time.January, 20)
	sub, err := f.cancel.Execute(ctx, CancelSubscriptionCommand{SubscriptionID: id, UserID: "user1"})
	require.NoError(t, err)
	assert.Equal(t, "active", sub.Status)
	assert.True(t, sub.CancelAtPeriodEnd)
	assert.False(t, sub.AutoRenew)
	require.NotNil(t, sub.CanceledAt)
	sameTime(t, day(2024, time.January, 20), *sub.CanceledAt)
	require.NotNil(t, sub.CancellationEffectiveAt)
	sameTime(t, day(2024, time.February, 10), *sub.CancellationEffectiveAt)

	_, err = f.cancel.Execute(ctx, CancelSubscriptionCommand{SubscriptionID: id, UserID: "user1"})
	assert.True(t, apperrors.IsBadRequestError(err))

	got, err := f.get.Execute(ctx, id, "user1")
	require.NoError(t, err)
	assert.Equal(t, "active", got.Status)
}

func TestCancelSubscription_ImmediateAndOwnership(t *testing.T) {
	f := newFixture(t, day(2024, time.January, 10))
	p := f.plan(t, "Pro", vo.BillingCycleMonthly, 0, vo.PlanStatusActive)
	id := f.subscribe(t, p.ID(), "user1")
	ctx := context.Background()

	_, err := f.cancel.Execute(ctx, CancelSubscriptionCommand{SubscriptionID: id, UserID: "intruder", Immediate: true})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeForbidden, apperrors.GetAppError(err).Type)

	sub, err := f.cancel.Execute(ctx, CancelSubscriptionCommand{SubscriptionID: id, Immediate: true})
	require.NoError(t, err)
	assert.Equal(t, "canceled", sub.Status)
	sameTime(t, *sub.CanceledAt, *sub.CancellationEffectiveAt)

	_, err = f.cancel.Execute(ctx, CancelSubscriptionCommand{SubscriptionID: id, Immediate: true})
	assert.True(t, apperrors.IsBadRequestError(err))

	_, err = f.cancel.Execute(ctx, CancelSubscriptionCommand{SubscriptionID: "missing"})
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestCancelSubscription_InvalidatesCaches(t *testing.T) {
	f := newFixture(t, day(2024, time.January, 10))
	p := f.plan(t, "Pro", vo.BillingCycleMonthly, 0, vo.PlanStatusActive)
	id := f.subscribe(t, p.ID(), "user1")

	rec := &recordingCache{}
	uc := NewCancelSubscriptionUseCase(f.subs, f.tx, rec, func() time.Time { return f.now }, f.log)
	_, err := uc.Execute(context.Background(), CancelSubscriptionCommand{SubscriptionID: id})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"sub:" + id,
		"user:user1:app:*",
		"app:A1:list:*",
		"app:all:list:*",
	}, rec.keys)
}

func TestRenewSubscription(t *testing.T) {
	f := newFixture(t, day(2024, time.January, 31))
	p := f.plan(t, "Pro", vo.BillingCycleMonthly, 0, vo.PlanStatusActive)
	id := f.subscribe(t, p.ID(), "user1")
	ctx := context.Background()

	f.now = day(2024, time.February, 29)
	res, err := f.renew.Execute(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "active", res.Subscription.Status)
	sameTime(t, day(2024, time.February, 29), res.Subscription.CurrentPeriodStart)
	sameTime(t, day(2024, time.March, 31), res.Subscription.EndDate)
	assert.Equal(t, "succeeded", res.Payment.Status)
	assert.True(t, decimal.RequireFromString("29.99").Equal(res.Payment.Amount))
	sameTime(t, day(2024, time.February, 29), res.Payment.PeriodStart)
	sameTime(t, day(2024, time.March, 31), res.Payment.PeriodEnd)

	events, err := f.history.Events(ctx, id, "")
	require.NoError(t, err)
	types := make([]string, 0, len(events))
	for _, e := range events {
		types = append(types, e.EventType)
	}
	assert.ElementsMatch(t, []string{"created", "expired", "renewed"}, types)

	payments, err := f.history.Payments(ctx, id, "user1")
	require.NoError(t, err)
	assert.Len(t, payments, 1)

	_, err = f.cancel.Execute(ctx, CancelSubscriptionCommand{SubscriptionID: id, Immediate: true})
	require.NoError(t, err)
	_, err = f.renew.Execute(ctx, id)
	assert.True(t, apperrors.IsBadRequestError(err))
}

func TestRenewSubscription_KeepsMonthEndAnchor(t *testing.T) {
	f := newFixture(t, day(2024, time.January, 31))
	p := f.plan(t, "Pro", vo.BillingCycleMonthly, 0, vo.PlanStatusActive)
	id := f.subscribe(t, p.ID(), "user1")
	ctx := context.Background()

	periodStart := day(2024, time.February, 29)
	for _, end := range []time.Time{
		day(2024, time.March, 31),
		day(2024, time.April, 30),
		day(2024, time.May, 31),
		day(2024, time.June, 30),
	} {
		f.now = periodStart
		res, err := f.renew.Execute(ctx, id)
		require.NoError(t, err)
		sameTime(t, periodStart, res.Subscription.CurrentPeriodStart)
		sameTime(t, end, res.Subscription.EndDate)
		sameTime(t, end, res.Payment.PeriodEnd)
		periodStart = end
	}

	payments, err := f.history.Payments(ctx, id, "user1")
	require.NoError(t, err)
	assert.Len(t, payments, 4)
}

func TestRenewSubscription_ScheduledCancellationRefused(t *testing.T) {
	f := newFixture(t, day(2024, time.January, 10))
	p := f.plan(t, "Pro", vo.BillingCycleMonthly, 0, vo.PlanStatusActive)
	id := f.subscribe(t, p.ID(), "user1")

	_, err := f.cancel.Execute(context.Background(), CancelSubscriptionCommand{SubscriptionID: id})
	require.NoError(t, err)
	_, err = f.renew.Execute(context.Background(), id)
	assert.True(t, apperrors.IsBadRequestError(err))
}

func TestUpdateSubscriptionStatus(t *testing.T) {
	f := newFixture(t, day(2024, time.January, 10))
	p := f.plan(t, "Pro", vo.BillingCycleMonthly, 0, vo.PlanStatusActive)
	id := f.subscribe(t, p.ID(), "user1")
	ctx := context.Background()

	sub, err := f.status.Execute(ctx, UpdateSubscriptionStatusCommand{SubscriptionID: id, Status: "past_due"})
	require.NoError(t, err)
	assert.Equal(t, "past_due", sub.Status)
	assert.False(t, sub.IsActive)

	tests := []struct {
		name   string
		status string
		check  func(error) bool
	}{
		{"disallowed transition", "expired", apperrors.IsBadRequestError},
		{"unknown status", "frozen", apperrors.IsValidationError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.status.Execute(ctx, UpdateSubscriptionStatusCommand{SubscriptionID: id, Status: tt.status})
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
		})
	}

	sub, err = f.status.Execute(ctx, UpdateSubscriptionStatusCommand{SubscriptionID: id, Status: "active"})
	require.NoError(t, err)
	assert.Equal(t, "active", sub.Status)
}

func TestListUserSubscriptions_ReflectsMutations(t *testing.T) {
	f := newFixture(t, day(2024, time.January, 10))
	p := f.plan(t, "Pro", vo.BillingCycleMonthly, 0, vo.PlanStatusActive)
	ctx := context.Background()
	app := "A1"

	first := f.subscribe(t, p.ID(), "user1")
	subs, err := f.byUser.Execute(ctx, "user1", &app)
	require.NoError(t, err)
	require.Len(t, subs, 1)

	f.now = f.now.Add(time.Hour)
	f.subscribe(t, p.ID(), "user1")
	subs, err = f.byUser.Execute(ctx, "user1", &app)
	require.NoError(t, err)
	assert.Len(t, subs, 2)

	_, err = f.cancel.Execute(ctx, CancelSubscriptionCommand{SubscriptionID: first, Immediate: true})
	require.NoError(t, err)
	got, err := f.get.Execute(ctx, first, "")
	require.NoError(t, err)
	assert.Equal(t, "canceled", got.Status)

	all, err := f.list.Execute(ctx, ListSubscriptionsQuery{AppID: &app})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)

	status := "canceled"
	canceled, err := f.list.Execute(ctx, ListSubscriptionsQuery{AppID: &app, Status: &status})
	require.NoError(t, err)
	require.Len(t, canceled.Subscriptions, 1)
	assert.Equal(t, first, canceled.Subscriptions[0].ID)

	_, err = f.get.Execute(ctx, first, "user2")
	assert.Equal(t, apperrors.ErrorTypeForbidden, apperrors.GetAppError(err).Type)
}

func TestListUserSubscriptions_UserIDWithGlobCharacters(t *testing.T) {
	f := newFixture(t, day(2024, time.January, 10))
	p := f.plan(t, "Pro", vo.BillingCycleMonthly, 0, vo.PlanStatusActive)
	ctx := context.Background()
	app := "A1"

	odd := f.subscribe(t, p.ID(), "u[1]*")
	f.subscribe(t, p.ID(), "u1")
	for _, user := range []string{"u[1]*", "u1"} {
		subs, err := f.byUser.Execute(ctx, user, &app)
		require.NoError(t, err)
		require.Len(t, subs, 1)
		assert.Equal(t, "active", subs[0].Status)
	}

	_, err := f.cancel.Execute(ctx, CancelSubscriptionCommand{SubscriptionID: odd, Immediate: true})
	require.NoError(t, err)

	subs, err := f.byUser.Execute(ctx, "u[1]*", &app)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "canceled", subs[0].Status)

	var cached any
	assert.True(t, f.cache.Get(ctx, userKey("u1", &app), &cached), "other users' lists stay cached")
}

func TestExpireSubscriptions_Sweep(t *testing.T) {
	f := newFixture(t, day(2024, time.January, 1))
	p := f.plan(t, "Pro", vo.BillingCycleMonthly, 0, vo.PlanStatusActive)
	ctx := context.Background()

	scheduled := f.subscribe(t, p.ID(), "u-scheduled")
	_, err := f.cancel.Execute(ctx, CancelSubscriptionCommand{SubscriptionID: scheduled})
	require.NoError(t, err)
	renewing := f.subscribe(t, p.ID(), "u-renewing")

	lapsed, err := subscription.ReconstructSubscription(subscription.SubscriptionReconstructParams{
		ID: "lapsed-1", UserID: "u-lapsed", PlanID: p.ID(), AppID: "A1",
		Status: vo.StatusActive, BillingCycle: vo.BillingCycleMonthly,
		StartDate: day(2024, time.January, 1), CurrentPeriodStart: day(2024, time.January, 1),
		EndDate: day(2024, time.February, 1), AutoRenew: false,
		Amount: p.Price(), Currency: "USD", Version: 1,
		CreatedAt: day(2024, time.January, 1), UpdatedAt: day(2024, time.January, 1),
	})
	require.NoError(t, err)
	require.NoError(t, f.subs.Create(ctx, lapsed))

	f.now = day(2024, time.March, 1)
	future := f.subscribe(t, p.ID(), "u-future")
	_, err = f.cancel.Execute(ctx, CancelSubscriptionCommand{SubscriptionID: future})
	require.NoError(t, err)

	res, err := f.expire.Execute(ctx, day(2024, time.March, 5))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Canceled)
	assert.Equal(t, 1, res.Expired)
	assert.Zero(t, res.Failed)

	states := map[string]string{scheduled: "canceled", "lapsed-1": "expired", renewing: "active", future: "active"}
	for id, want := range states {
		got, err := f.get.Execute(ctx, id, "")
		require.NoError(t, err)
		assert.Equal(t, want, got.Status, id)
	}

	again, err := f.expire.Execute(ctx, day(2024, time.March, 5))
	require.NoError(t, err)
	assert.Zero(t, again.Scanned)
}
