package valueobjects

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

type SubscriptionStatus string

const (
	StatusPending  SubscriptionStatus = "pending"
	StatusTrialing SubscriptionStatus = "trialing"
	StatusActive   SubscriptionStatus = "active"
	StatusPastDue  SubscriptionStatus = "past_due"
	StatusUnpaid   SubscriptionStatus = "unpaid"
	StatusPaused   SubscriptionStatus = "paused"
	StatusCanceled SubscriptionStatus = "canceled"
	StatusExpired  SubscriptionStatus = "expired"
)

var transitions = map[SubscriptionStatus][]SubscriptionStatus{
	StatusPending:  {StatusTrialing, StatusActive, StatusCanceled, StatusExpired},
	StatusTrialing: {StatusActive, StatusCanceled, StatusExpired},
	StatusActive:   {StatusPastDue, StatusPaused, StatusCanceled, StatusExpired},
	StatusPastDue:  {StatusActive, StatusUnpaid, StatusCanceled},
	StatusUnpaid:   {StatusActive, StatusCanceled, StatusExpired},
	StatusPaused:   {StatusActive, StatusCanceled, StatusExpired},
	StatusCanceled: {},
	StatusExpired:  {},
}

func ParseSubscriptionStatus(value string) (SubscriptionStatus, error) {
	s := SubscriptionStatus(strings.ToLower(strings.TrimSpace(value)))
	if !s.IsValid() {
		return "", fmt.Errorf("invalid subscription status: %s", value)
	}
	return s, nil
}

func (s SubscriptionStatus) String() string {
	return string(s)
}

func (s SubscriptionStatus) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal reports whether no further transitions are allowed.
func (s SubscriptionStatus) IsTerminal() bool {
	return s == StatusCanceled || s == StatusExpired
}

// CanUseService reports whether the subscriber currently has access.
func (s SubscriptionStatus) CanUseService() bool {
	return s == StatusActive || s == StatusTrialing
}

func (s SubscriptionStatus) CanTransitionTo(target SubscriptionStatus) bool {
	return lo.Contains(transitions[s], target)
}

// AllSubscriptionStatuses lists every known status in lifecycle order.
func AllSubscriptionStatuses() []SubscriptionStatus {
	return []SubscriptionStatus{
		StatusPending, StatusTrialing, StatusActive, StatusPastDue,
		StatusUnpaid, StatusPaused, StatusCanceled, StatusExpired,
	}
}
