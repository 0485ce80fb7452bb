package valueobjects

import (
	"fmt"
	"strings"
)

type PlanStatus string

const (
	PlanStatusDraft    PlanStatus = "draft"
	PlanStatusActive   PlanStatus = "active"
	PlanStatusArchived PlanStatus = "archived"
)

func ParsePlanStatus(value string) (PlanStatus, error) {
	s := PlanStatus(strings.ToLower(strings.TrimSpace(value)))
	if !s.IsValid() {
		return "", fmt.Errorf("invalid plan status: %s", value)
	}
	return s, nil
}

func (s PlanStatus) String() string {
	return string(s)
}

func (s PlanStatus) IsValid() bool {
	return s == PlanStatusDraft || s == PlanStatusActive || s == PlanStatusArchived
}

// IsPurchasable reports whether new subscriptions may be created on the plan.
func (s PlanStatus) IsPurchasable() bool {
	return s == PlanStatusActive
}
