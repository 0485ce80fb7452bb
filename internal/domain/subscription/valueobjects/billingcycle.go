package valueobjects

import (
	"fmt"
	"strings"
	"time"

	"github.com/orris-inc/billing/internal/shared/biztime"
)

type BillingCycle string

const (
	BillingCycleMonthly   BillingCycle = "monthly"
	BillingCycleQuarterly BillingCycle = "quarterly"
	BillingCycleYearly    BillingCycle = "yearly"
)

var billingCycleMonths = map[BillingCycle]int{
	BillingCycleMonthly:   1,
	BillingCycleQuarterly: 3,
	BillingCycleYearly:    12,
}

// ParseBillingCycle normalizes and validates a billing cycle string.
func ParseBillingCycle(value string) (BillingCycle, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return "", fmt.Errorf("billing cycle cannot be empty")
	}
	cycle := BillingCycle(normalized)
	if !cycle.IsValid() {
		return "", fmt.Errorf("invalid billing cycle: %s", value)
	}
	return cycle, nil
}

func (b BillingCycle) String() string {
	return string(b)
}

func (b BillingCycle) IsValid() bool {
	_, ok := billingCycleMonths[b]
	return ok
}

// Months returns the number of calendar months in one period.
func (b BillingCycle) Months() int {
	return billingCycleMonths[b]
}

// PeriodEnd returns the end of the period that starts at start. Month
// arithmetic clamps to the last day of the target month.
func (b BillingCycle) PeriodEnd(start time.Time) time.Time {
	return biztime.AddMonths(start, b.Months())
}

// NextPeriodEnd returns the end of the period that follows the one ending at
// currentEnd. Ends are counted from anchor and clamped only once, so a
// Jan 31 anchor yields Feb 29, Mar 31, Apr 30 rather than repeating the 29th.
func (b BillingCycle) NextPeriodEnd(anchor, currentEnd time.Time) time.Time {
	return biztime.AddMonths(anchor, biztime.MonthsBetween(anchor, currentEnd)+b.Months())
}
