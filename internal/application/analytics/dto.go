package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

type Query struct {
	StartDate time.Time `json:"start_date" form:"start_date"`
	EndDate   time.Time `json:"end_date" form:"end_date"`
	AppID     *string   `json:"app_id,omitempty" form:"app_id"`
}

type PlanShare struct {
	Count      int             `json:"count"`
	Percentage decimal.Decimal `json:"percentage"`
}

// Metrics is the subscription analytics report. Rates are percentages.
type Metrics struct {
	PeriodStart             time.Time            `json:"period_start"`
	PeriodEnd               time.Time            `json:"period_end"`
	AppID                   string               `json:"app_id,omitempty"`
	TotalSubscribers        int                  `json:"total_subscribers"`
	ActiveSubscriptions     int                  `json:"active_subscriptions"`
	NewSubscribers          int                  `json:"new_subscribers"`
	Churned                 int                  `json:"churned"`
	MonthlyRecurringRevenue decimal.Decimal      `json:"monthly_recurring_revenue"`
	AnnualRecurringRevenue  decimal.Decimal      `json:"annual_recurring_revenue"`
	AverageRevenuePerUser   decimal.Decimal      `json:"average_revenue_per_user"`
	ChurnRate               decimal.Decimal      `json:"churn_rate"`
	ConversionRate          decimal.Decimal      `json:"conversion_rate"`
	FreeTrialConversions    int                  `json:"free_trial_conversions"`
	LifetimeValue           decimal.Decimal      `json:"lifetime_value"`
	PlanDistribution        map[string]PlanShare `json:"plan_distribution"`
}
