package subscription

import (
	"context"
	"time"
)

// Repositories return (nil, nil) when a lookup by id finds nothing.

type AppRepository interface {
	Create(ctx context.Context, app *App) error
	GetByID(ctx context.Context, id string) (*App, error)
	Update(ctx context.Context, app *App) error
	List(ctx context.Context, page, pageSize int) ([]*App, int64, error)
	ExistsByName(ctx context.Context, name, excludeID string) (bool, error)
}

type PlanRepository interface {
	// Create persists the plan and all of its features.
	Create(ctx context.Context, plan *Plan) error
	GetByID(ctx context.Context, id string) (*Plan, error)
	// Update persists plan columns with an optimistic version check.
	Update(ctx context.Context, plan *Plan) error
	// Delete physically removes the plan and its features.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter PlanFilter) ([]*Plan, int64, error)
	ExistsByName(ctx context.Context, appID, name, excludeID string) (bool, error)

	GetFeature(ctx context.Context, featureID string) (*PlanFeature, error)
	CreateFeatures(ctx context.Context, features []*PlanFeature) error
	UpdateFeature(ctx context.Context, feature *PlanFeature) error
	DeleteFeatures(ctx context.Context, planID string, featureIDs []string) error
}

type PlanFilter struct {
	AppID           *string
	Status          *string
	Name            *string
	BillingCycle    *string
	SortPosition    *int
	Highlight       *bool
	IncludeInactive bool
	Page            int
	PageSize        int
}

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *Subscription) error
	GetByID(ctx context.Context, id string) (*Subscription, error)
	// Update persists the subscription with an optimistic version check and
	// returns ErrConcurrentModification when the stored version moved on.
	Update(ctx context.Context, sub *Subscription) error
	List(ctx context.Context, filter SubscriptionFilter) ([]*Subscription, int64, error)
	ListByUser(ctx context.Context, userID string, appID *string) ([]*Subscription, error)
	CountByUser(ctx context.Context, userID, excludeID string) (int64, error)
	CountNonTerminalByUserApp(ctx context.Context, userID, appID string) (int64, error)
	CountByPlanID(ctx context.Context, planID string) (int64, error)
	FindPeriodEnded(ctx context.Context, now time.Time, limit int) ([]*Subscription, error)
	// ListCreatedBefore returns every subscription created before until,
	// optionally scoped to one app. Used by analytics.
	ListCreatedBefore(ctx context.Context, until time.Time, appID *string) ([]*Subscription, error)

	AppendEvents(ctx context.Context, events ...*SubscriptionEvent) error
	ListEvents(ctx context.Context, subscriptionID string) ([]*SubscriptionEvent, error)
	CreatePayment(ctx context.Context, payment *Payment) error
	ListPayments(ctx context.Context, subscriptionID string) ([]*Payment, error)
}

type SubscriptionFilter struct {
	UserID   *string
	AppID    *string
	PlanID   *string
	Status   *string
	Page     int
	PageSize int
}
