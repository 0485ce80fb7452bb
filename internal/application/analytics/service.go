// Package analytics computes subscription revenue and retention metrics
// over a reporting window.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/orris-inc/billing/internal/domain/subscription"
	"github.com/orris-inc/billing/internal/infrastructure/cache"
	"github.com/orris-inc/billing/internal/shared/constants"
	apperrors "github.com/orris-inc/billing/internal/shared/errors"
	"github.com/orris-inc/billing/internal/shared/logger"
)

const allApps = "all"

type Service struct {
	subs   subscription.SubscriptionRepository
	plans  subscription.PlanRepository
	cache  *cache.Cache
	logger logger.Interface
}

func NewService(subs subscription.SubscriptionRepository, plans subscription.PlanRepository, analyticsCache *cache.Cache, logger logger.Interface) *Service {
	return &Service{
		subs:   subs,
		plans:  plans,
		cache:  analyticsCache,
		logger: logger,
	}
}

// GetAnalytics returns the report for [StartDate, EndDate). Reports are
// cached per window and app for the analytics TTL and are never
// invalidated by writes.
func (s *Service) GetAnalytics(ctx context.Context, q Query) (*Metrics, error) {
	if q.StartDate.IsZero() || q.EndDate.IsZero() {
		return nil, apperrors.NewValidationError("start_date and end_date are required")
	}
	if !q.EndDate.After(q.StartDate) {
		return nil, apperrors.NewValidationError("end_date must be after start_date")
	}

	period := Period{Start: q.StartDate.UTC(), End: q.EndDate.UTC()}
	appID := allApps
	if q.AppID != nil && *q.AppID != "" {
		appID = *q.AppID
	}

	return cache.GetOrLoad(ctx, s.cache, reportKey(period, appID), 0, func(ctx context.Context) (*Metrics, error) {
		return s.compute(ctx, period, q.AppID, appID)
	})
}

func (s *Service) compute(ctx context.Context, period Period, appFilter *string, appID string) (*Metrics, error) {
	var (
		subs  []*subscription.Subscription
		names map[string]string
	)

	p := pool.New().WithErrors().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		var err error
		subs, err = s.subs.ListCreatedBefore(ctx, period.End, appFilter)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		names, err = s.planNames(ctx, appFilter)
		return err
	})
	if err := p.Wait(); err != nil {
		s.logger.Errorw("failed to load analytics inputs", "app_id", appID, "error", err)
		return nil, apperrors.NewInternalError("failed to compute analytics")
	}

	m := Compute(period, subs, names)
	if appID != allApps {
		m.AppID = appID
	}
	s.logger.Debugw("analytics computed",
		"app_id", appID,
		"start", period.Start,
		"end", period.End,
		"subscribers", m.TotalSubscribers,
	)
	return m, nil
}

// planNames pages through every plan, archived ones included, so churned
// subscriptions on retired plans still resolve.
func (s *Service) planNames(ctx context.Context, appID *string) (map[string]string, error) {
	names := make(map[string]string)
	for page := 1; ; page++ {
		plans, total, err := s.plans.List(ctx, subscription.PlanFilter{
			AppID:           appID,
			IncludeInactive: true,
			Page:            page,
			PageSize:        constants.MaxPageSize,
		})
		if err != nil {
			return nil, err
		}
		for _, p := range plans {
			names[p.ID()] = p.Name()
		}
		if len(plans) == 0 || int64(len(names)) >= total {
			return names, nil
		}
	}
}

func reportKey(p Period, appID string) string {
	return fmt.Sprintf("report:%s:%s:%s", appID, p.Start.Format(time.RFC3339), p.End.Format(time.RFC3339))
}
