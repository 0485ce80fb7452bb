// Package subscription wires the subscription lifecycle use cases into one
// service consumed by the HTTP and CLI layers.
package subscription

import (
	"context"
	"time"

	"github.com/orris-inc/billing/internal/application/subscription/dto"
	"github.com/orris-inc/billing/internal/application/subscription/usecases"
	"github.com/orris-inc/billing/internal/domain/subscription"
	"github.com/orris-inc/billing/internal/infrastructure/cache"
	"github.com/orris-inc/billing/internal/shared/biztime"
	"github.com/orris-inc/billing/internal/shared/db"
	"github.com/orris-inc/billing/internal/shared/logger"
)

type Config struct {
	SweepBatchSize int
}

type Service struct {
	create       *usecases.CreateSubscriptionUseCase
	cancel       *usecases.CancelSubscriptionUseCase
	renew        *usecases.RenewSubscriptionUseCase
	updateStatus *usecases.UpdateSubscriptionStatusUseCase
	get          *usecases.GetSubscriptionUseCase
	listByUser   *usecases.ListUserSubscriptionsUseCase
	list         *usecases.ListSubscriptionsUseCase
	history      *usecases.ListSubscriptionHistoryUseCase
	expire       *usecases.ExpireSubscriptionsUseCase
	clock        biztime.Clock
}

func NewService(
	subscriptionRepo subscription.SubscriptionRepository,
	planRepo subscription.PlanRepository,
	tx db.Transactor,
	subCache *cache.Cache,
	cfg Config,
	clock biztime.Clock,
	logger logger.Interface,
) *Service {
	if clock == nil {
		clock = biztime.NowUTC
	}
	return &Service{
		create:       usecases.NewCreateSubscriptionUseCase(subscriptionRepo, planRepo, tx, subCache, clock, logger),
		cancel:       usecases.NewCancelSubscriptionUseCase(subscriptionRepo, tx, subCache, clock, logger),
		renew:        usecases.NewRenewSubscriptionUseCase(subscriptionRepo, tx, subCache, clock, logger),
		updateStatus: usecases.NewUpdateSubscriptionStatusUseCase(subscriptionRepo, tx, subCache, clock, logger),
		get:          usecases.NewGetSubscriptionUseCase(subscriptionRepo, subCache, logger),
		listByUser:   usecases.NewListUserSubscriptionsUseCase(subscriptionRepo, subCache, logger),
		list:         usecases.NewListSubscriptionsUseCase(subscriptionRepo, subCache, logger),
		history:      usecases.NewListSubscriptionHistoryUseCase(subscriptionRepo, logger),
		expire:       usecases.NewExpireSubscriptionsUseCase(subscriptionRepo, tx, subCache, cfg.SweepBatchSize, logger),
		clock:        clock,
	}
}

func (s *Service) CreateSubscription(ctx context.Context, cmd usecases.CreateSubscriptionCommand) (*dto.SubscriptionDTO, error) {
	return s.create.Execute(ctx, cmd)
}

func (s *Service) CancelSubscription(ctx context.Context, cmd usecases.CancelSubscriptionCommand) (*dto.SubscriptionDTO, error) {
	return s.cancel.Execute(ctx, cmd)
}

func (s *Service) RenewSubscription(ctx context.Context, subscriptionID string) (*dto.RenewResult, error) {
	return s.renew.Execute(ctx, subscriptionID)
}

func (s *Service) UpdateStatus(ctx context.Context, cmd usecases.UpdateSubscriptionStatusCommand) (*dto.SubscriptionDTO, error) {
	return s.updateStatus.Execute(ctx, cmd)
}

// GetSubscription loads one subscription; a non-empty ownerID restricts it
// to that user.
func (s *Service) GetSubscription(ctx context.Context, subscriptionID, ownerID string) (*dto.SubscriptionDTO, error) {
	return s.get.Execute(ctx, subscriptionID, ownerID)
}

func (s *Service) GetUserSubscriptions(ctx context.Context, userID string, appID *string) ([]*dto.SubscriptionDTO, error) {
	return s.listByUser.Execute(ctx, userID, appID)
}

func (s *Service) ListSubscriptions(ctx context.Context, q usecases.ListSubscriptionsQuery) (*dto.ListSubscriptionsResult, error) {
	return s.list.Execute(ctx, q)
}

func (s *Service) ListEvents(ctx context.Context, subscriptionID, ownerID string) ([]*dto.SubscriptionEventDTO, error) {
	return s.history.Events(ctx, subscriptionID, ownerID)
}

func (s *Service) ListPayments(ctx context.Context, subscriptionID, ownerID string) ([]*dto.PaymentDTO, error) {
	return s.history.Payments(ctx, subscriptionID, ownerID)
}

// SweepPeriodEnds settles every subscription whose period ended at or
// before now. A zero now means the service clock.
func (s *Service) SweepPeriodEnds(ctx context.Context, now time.Time) (*dto.SweepResult, error) {
	if now.IsZero() {
		now = s.clock()
	}
	return s.expire.Execute(ctx, now)
}
