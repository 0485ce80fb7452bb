package analytics

import (
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/orris-inc/billing/internal/domain/subscription"
	vo "github.com/orris-inc/billing/internal/domain/subscription/valueobjects"
)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// Period is a reporting window, start inclusive and end exclusive.
type Period struct {
	Start time.Time
	End   time.Time
}

func (p Period) contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Compute derives every metric from the subscriptions that existed by the
// end of the period. planNames resolves plan ids for the distribution;
// unknown ids are reported under their id.
func Compute(period Period, subs []*subscription.Subscription, planNames map[string]string) *Metrics {
	m := &Metrics{
		PeriodStart:      period.Start,
		PeriodEnd:        period.End,
		PlanDistribution: map[string]PlanShare{},
	}

	mrr := decimal.Zero
	planCounts := map[string]int{}
	trials, conversions := 0, 0

	for _, sub := range subs {
		m.TotalSubscribers++
		if period.contains(sub.CreatedAt()) {
			m.NewSubscribers++
		}
		if sub.Status().CanUseService() {
			m.ActiveSubscriptions++
			planCounts[lo.ValueOr(planNames, sub.PlanID(), sub.PlanID())]++
		}
		if sub.Status() == vo.StatusActive {
			mrr = mrr.Add(MonthlyAmount(sub.Amount(), sub.BillingCycle()))
		}
		if sub.IsTerminal() && period.contains(churnedAt(sub)) {
			m.Churned++
		}
		if sub.TrialEndDate() != nil {
			trials++
			if convertedFromTrial(sub.Status()) {
				conversions++
			}
		}
	}

	m.MonthlyRecurringRevenue = mrr.Round(2)
	m.AnnualRecurringRevenue = mrr.Mul(twelve).Round(2)
	m.AverageRevenuePerUser = ratio(mrr, m.TotalSubscribers).Round(2)
	churnRate := percentage(m.Churned, m.TotalSubscribers)
	m.ChurnRate = churnRate.Round(2)
	m.FreeTrialConversions = conversions
	m.ConversionRate = percentage(conversions, trials).Round(2)
	m.LifetimeValue = LifetimeValue(ratio(mrr, m.TotalSubscribers), churnRate).Round(2)

	names := lo.Keys(planCounts)
	sort.Strings(names)
	for _, name := range names {
		m.PlanDistribution[name] = PlanShare{
			Count:      planCounts[name],
			Percentage: percentage(planCounts[name], m.ActiveSubscriptions).Round(2),
		}
	}
	return m
}

// MonthlyAmount normalizes a per-cycle charge to one month.
func MonthlyAmount(amount decimal.Decimal, cycle vo.BillingCycle) decimal.Decimal {
	months := cycle.Months()
	if months <= 1 {
		return amount
	}
	return amount.Div(decimal.NewFromInt(int64(months)))
}

// LifetimeValue is ARPU divided by the churn fraction. Zero churn yields
// zero rather than an unbounded value.
func LifetimeValue(arpu, churnRatePercent decimal.Decimal) decimal.Decimal {
	if !churnRatePercent.IsPositive() {
		return decimal.Zero
	}
	return arpu.Div(churnRatePercent.Div(hundred))
}

func churnedAt(sub *subscription.Subscription) time.Time {
	if at := sub.CancellationEffectiveAt(); at != nil {
		return *at
	}
	return sub.UpdatedAt()
}

// convertedFromTrial reports whether a subscription that started with a
// trial went on to a paid state.
func convertedFromTrial(status vo.SubscriptionStatus) bool {
	switch status {
	case vo.StatusActive, vo.StatusPastDue, vo.StatusUnpaid, vo.StatusPaused:
		return true
	}
	return false
}

func ratio(total decimal.Decimal, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(count)))
}

func percentage(part, whole int) decimal.Decimal {
	if whole == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(part)).Mul(hundred).Div(decimal.NewFromInt(int64(whole)))
}
