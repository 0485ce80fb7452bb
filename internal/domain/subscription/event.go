package subscription

import (
	"time"

	vo "github.com/orris-inc/billing/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/billing/internal/shared/id"
)

type EventType string

const (
	EventCreated       EventType = "created"
	EventTrialStarted  EventType = "trial_started"
	EventCanceled      EventType = "canceled"
	EventExpired       EventType = "expired"
	EventRenewed       EventType = "renewed"
	EventStatusChanged EventType = "status_changed"
)

func (t EventType) String() string {
	return string(t)
}

// SubscriptionEvent is an append-only audit record.
type SubscriptionEvent struct {
	id             string
	subscriptionID string
	eventType      EventType
	fromStatus     vo.SubscriptionStatus
	toStatus       vo.SubscriptionStatus
	metadata       map[string]any
	createdAt      time.Time
}

func NewSubscriptionEvent(subscriptionID string, eventType EventType, from, to vo.SubscriptionStatus, now time.Time) *SubscriptionEvent {
	return &SubscriptionEvent{
		id:             id.New(),
		subscriptionID: subscriptionID,
		eventType:      eventType,
		fromStatus:     from,
		toStatus:       to,
		metadata:       make(map[string]any),
		createdAt:      now,
	}
}

func ReconstructSubscriptionEvent(eventID, subscriptionID string, eventType EventType, from, to vo.SubscriptionStatus,
	metadata map[string]any, createdAt time.Time) *SubscriptionEvent {
	if metadata == nil {
		metadata = make(map[string]any)
	}
	return &SubscriptionEvent{
		id:             eventID,
		subscriptionID: subscriptionID,
		eventType:      eventType,
		fromStatus:     from,
		toStatus:       to,
		metadata:       metadata,
		createdAt:      createdAt,
	}
}

// With attaches a metadata entry and returns the event for chaining.
func (e *SubscriptionEvent) With(key string, value any) *SubscriptionEvent {
	e.metadata[key] = value
	return e
}

func (e *SubscriptionEvent) ID() string { return e.id }
func (e *SubscriptionEvent) SubscriptionID() string { return e.subscriptionID }
func (e *SubscriptionEvent) Type() EventType { return e.eventType }
func (e *SubscriptionEvent) FromStatus() vo.SubscriptionStatus { return e.fromStatus }
func (e *SubscriptionEvent) ToStatus() vo.SubscriptionStatus { return e.toStatus }
func (e *SubscriptionEvent) Metadata() map[string]any { return e.metadata }
func (e *SubscriptionEvent) CreatedAt() time.Time { return e.createdAt }
