package subscription

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	vo "github.com/orris-inc/billing/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/billing/internal/shared/id"
)

// Subscription binds one user to one plan within one app.
type Subscription struct {
	id                      string
	userID                  string
	planID                  string
	appID                   string
	status                  vo.SubscriptionStatus
	billingCycle            vo.BillingCycle
	startDate               time.Time
	currentPeriodStart      time.Time
	endDate                 time.Time
	trialEndDate            *time.Time
	cancelAtPeriodEnd       bool
	canceledAt              *time.Time
	cancellationEffectiveAt *time.Time
	autoRenew               bool
	amount                  decimal.Decimal
	currency                string
	version                 int
	createdAt               time.Time
	updatedAt               time.Time
}

// NewSubscription creates a pending subscription for plan. The first period
// starts at start and ends one billing cycle later.
func NewSubscription(userID string, plan *Plan, start time.Time) (*Subscription, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}
	if !plan.IsPurchasable() {
		return nil, ErrPlanNotPurchasable
	}

	start = start.UTC()
	return &Subscription{
		id:                 id.New(),
		userID:             userID,
		planID:             plan.ID(),
		appID:              plan.AppID(),
		status:             vo.StatusPending,
		billingCycle:       plan.BillingCycle(),
		startDate:          start,
		currentPeriodStart: start,
		endDate:            plan.BillingCycle().PeriodEnd(start),
		autoRenew:          true,
		amount:             plan.Price(),
		currency:           plan.Currency(),
		version:            1,
		createdAt:          start,
		updatedAt:          start,
	}, nil
}

// SubscriptionReconstructParams holds persisted state for ReconstructSubscription.
type SubscriptionReconstructParams struct {
	ID                      string
	UserID                  string
	PlanID                  string
	AppID                   string
	Status                  vo.SubscriptionStatus
	BillingCycle            vo.BillingCycle
	StartDate               time.Time
	CurrentPeriodStart      time.Time
	EndDate                 time.Time
	TrialEndDate            *time.Time
	CancelAtPeriodEnd       bool
	CanceledAt              *time.Time
	CancellationEffectiveAt *time.Time
	AutoRenew               bool
	Amount                  decimal.Decimal
	Currency                string
	Version                 int
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

func ReconstructSubscription(p SubscriptionReconstructParams) (*Subscription, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("subscription ID cannot be empty")
	}
	if !p.Status.IsValid() {
		return nil, fmt.Errorf("invalid subscription status: %s", p.Status)
	}
	return &Subscription{
		id:                      p.ID,
		userID:                  p.UserID,
		planID:                  p.PlanID,
		appID:                   p.AppID,
		status:                  p.Status,
		billingCycle:            p.BillingCycle,
		startDate:               p.StartDate,
		currentPeriodStart:      p.CurrentPeriodStart,
		endDate:                 p.EndDate,
		trialEndDate:            p.TrialEndDate,
		cancelAtPeriodEnd:       p.CancelAtPeriodEnd,
		canceledAt:              p.CanceledAt,
		cancellationEffectiveAt: p.CancellationEffectiveAt,
		autoRenew:               p.AutoRenew,
		amount:                  p.Amount,
		currency:                p.Currency,
		version:                 p.Version,
		createdAt:               p.CreatedAt,
		updatedAt:               p.UpdatedAt,
	}, nil
}

func (s *Subscription) ID() string { return s.id }
func (s *Subscription) UserID() string { return s.userID }
func (s *Subscription) PlanID() string { return s.planID }
func (s *Subscription) AppID() string { return s.appID }
func (s *Subscription) Status() vo.SubscriptionStatus { return s.status }
func (s *Subscription) BillingCycle() vo.BillingCycle { return s.billingCycle }
func (s *Subscription) StartDate() time.Time { return s.startDate }
func (s *Subscription) CurrentPeriodStart() time.Time { return s.currentPeriodStart }
func (s *Subscription) EndDate() time.Time { return s.endDate }
func (s *Subscription) TrialEndDate() *time.Time { return s.trialEndDate }
func (s *Subscription) CancelAtPeriodEnd() bool { return s.cancelAtPeriodEnd }
func (s *Subscription) CanceledAt() *time.Time { return s.canceledAt }
func (s *Subscription) CancellationEffectiveAt() *time.Time { return s.cancellationEffectiveAt }
func (s *Subscription) AutoRenew() bool { return s.autoRenew }
func (s *Subscription) Amount() decimal.Decimal { return s.amount }
func (s *Subscription) Currency() string { return s.currency }
func (s *Subscription) Version() int { return s.version }
func (s *Subscription) CreatedAt() time.Time { return s.createdAt }
func (s *Subscription) UpdatedAt() time.Time { return s.updatedAt }
func (s *Subscription) IsTerminal() bool { return s.status.IsTerminal() }
func (s *Subscription) BelongsTo(userID string) bool { return s.userID == userID }

// SetVersion is used by the persistence layer after a successful update.
func (s *Subscription) SetVersion(version int) {
	s.version = version
}

// Start moves a pending subscription into trialing (when trialDays > 0) or
// active, and returns the audit event for it.
func (s *Subscription) Start(trialDays int, now time.Time) (*SubscriptionEvent, error) {
	if s.status != vo.StatusPending {
		return nil, ErrInvalidTransition(s.status.String(), "started")
	}
	from := s.status
	eventType := EventCreated
	if trialDays > 0 {
		trialEnd := s.startDate.AddDate(0, 0, trialDays)
		s.trialEndDate = &trialEnd
		s.status = vo.StatusTrialing
		eventType = EventTrialStarted
	} else {
		s.status = vo.StatusActive
	}
	s.updatedAt = now
	return NewSubscriptionEvent(s.id, eventType, from, s.status, now), nil
}

// Cancel ends the subscription now, or schedules it for the end of the
// current period. canceledAt always records when the request was made;
// cancellationEffectiveAt records when access ends.
func (s *Subscription) Cancel(immediate bool, now time.Time) (*SubscriptionEvent, error) {
	if s.status.IsTerminal() {
		return nil, ErrSubscriptionTerminal
	}
	from := s.status

	if immediate {
		if !s.status.CanTransitionTo(vo.StatusCanceled) {
			return nil, ErrInvalidTransition(s.status.String(), vo.StatusCanceled.String())
		}
		s.status = vo.StatusCanceled
		s.cancelAtPeriodEnd = false
		s.autoRenew = false
		s.canceledAt = &now
		s.cancellationEffectiveAt = &now
		s.updatedAt = now
		return NewSubscriptionEvent(s.id, EventCanceled, from, s.status, now).
			With("immediate", true), nil
	}

	if s.cancelAtPeriodEnd {
		return nil, ErrAlreadyScheduled
	}
	effective := s.endDate
	s.cancelAtPeriodEnd = true
	s.autoRenew = false
	s.canceledAt = &now
	s.cancellationEffectiveAt = &effective
	s.updatedAt = now
	return NewSubscriptionEvent(s.id, EventCanceled, from, s.status, now).
		With("immediate", false).
		With("effective_at", effective.Format(time.RFC3339)), nil
}

// Renew closes the current period and opens the next one. It returns the
// events for the closed and the new period. The caller records the payment.
func (s *Subscription) Renew(now time.Time) ([]*SubscriptionEvent, error) {
	switch {
	case s.status.IsTerminal():
		return nil, ErrSubscriptionTerminal
	case s.status == vo.StatusPaused, s.status == vo.StatusPending:
		return nil, fmt.Errorf("cannot renew subscription with status %s", s.status)
	case s.cancelAtPeriodEnd:
		return nil, fmt.Errorf("cannot renew subscription scheduled to cancel")
	}

	from := s.status
	closedStart, closedEnd := s.currentPeriodStart, s.endDate
	expired := NewSubscriptionEvent(s.id, EventExpired, from, from, now).
		With("period_start", closedStart.Format(time.RFC3339)).
		With("period_end", closedEnd.Format(time.RFC3339))

	s.currentPeriodStart = closedEnd
	s.endDate = s.billingCycle.NextPeriodEnd(s.startDate, closedEnd)
	s.status = vo.StatusActive
	s.updatedAt = now

	renewed := NewSubscriptionEvent(s.id, EventRenewed, from, s.status, now).
		With("period_start", s.currentPeriodStart.Format(time.RFC3339)).
		With("period_end", s.endDate.Format(time.RFC3339))
	return []*SubscriptionEvent{expired, renewed}, nil
}

// TransitionTo applies an admin status override subject to the state machine.
func (s *Subscription) TransitionTo(target vo.SubscriptionStatus, now time.Time) (*SubscriptionEvent, error) {
	if !target.IsValid() {
		return nil, fmt.Errorf("invalid subscription status: %s", target)
	}
	if !s.status.CanTransitionTo(target) {
		return nil, ErrInvalidTransition(s.status.String(), target.String())
	}
	from := s.status
	s.status = target
	s.updatedAt = now

	eventType := EventStatusChanged
	switch target {
	case vo.StatusCanceled:
		eventType = EventCanceled
		s.canceledAt = &now
		s.cancellationEffectiveAt = &now
		s.autoRenew = false
	case vo.StatusExpired:
		eventType = EventExpired
		s.autoRenew = false
	}
	return NewSubscriptionEvent(s.id, eventType, from, target, now), nil
}

// CloseEndedPeriod settles a subscription whose period has ended: scheduled
// cancellations become canceled and non-renewing ones expire. It returns nil
// when nothing applies.
func (s *Subscription) CloseEndedPeriod(now time.Time) *SubscriptionEvent {
	if s.status.IsTerminal() || now.Before(s.endDate) {
		return nil
	}
	from := s.status
	switch {
	case s.cancelAtPeriodEnd && s.status.CanTransitionTo(vo.StatusCanceled):
		s.status = vo.StatusCanceled
		s.cancelAtPeriodEnd = false
		s.updatedAt = now
		return NewSubscriptionEvent(s.id, EventCanceled, from, s.status, now).With("period_end", true)
	case !s.autoRenew && s.status.CanTransitionTo(vo.StatusExpired):
		s.status = vo.StatusExpired
		s.updatedAt = now
		return NewSubscriptionEvent(s.id, EventExpired, from, s.status, now).With("period_end", true)
	}
	return nil
}
