// Package plan implements plan management: CRUD, feature reconciliation and
// the plan caches that back public plan listings.
package plan

import (
	"context"
	"time"

	"github.com/orris-inc/billing/internal/domain/subscription"
	vo "github.com/orris-inc/billing/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/billing/internal/infrastructure/cache"
	"github.com/orris-inc/billing/internal/shared/biztime"
	"github.com/orris-inc/billing/internal/shared/constants"
	"github.com/orris-inc/billing/internal/shared/db"
	apperrors "github.com/orris-inc/billing/internal/shared/errors"
	"github.com/orris-inc/billing/internal/shared/logger"
	"github.com/orris-inc/billing/internal/shared/query"
	"github.com/orris-inc/billing/internal/shared/services/markdown"
	"github.com/orris-inc/billing/internal/shared/utils"
)

type Config struct {
	DropdownTTL     time.Duration
	DefaultCurrency string
}

type Service struct {
	apps   subscription.AppRepository
	plans  subscription.PlanRepository
	subs   subscription.SubscriptionRepository
	tx     db.Transactor
	cache  *cache.Cache
	md     markdown.Renderer
	cfg    Config
	clock  biztime.Clock
	logger logger.Interface
}

func NewService(
	apps subscription.AppRepository,
	plans subscription.PlanRepository,
	subs subscription.SubscriptionRepository,
	tx db.Transactor,
	planCache *cache.Cache,
	md markdown.Renderer,
	cfg Config,
	clock biztime.Clock,
	logger logger.Interface,
) *Service {
	if clock == nil {
		clock = biztime.NowUTC
	}
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = constants.DefaultCurrency
	}
	return &Service{
		apps:   apps,
		plans:  plans,
		subs:   subs,
		tx:     tx,
		cache:  planCache,
		md:     md,
		cfg:    cfg,
		clock:  clock,
		logger: logger,
	}
}

func (s *Service) CreatePlan(ctx context.Context, cmd CreatePlanCommand) (*PlanDTO, error) {
	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, err
	}
	cycle, err := vo.ParseBillingCycle(cmd.BillingCycle)
	if err != nil {
		return nil, invalidInput(err)
	}
	currency := cmd.Currency
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}

	var created *subscription.Plan
	err = s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		app, err := s.apps.GetByID(ctx, cmd.AppID)
		if err != nil {
			return err
		}
		if app == nil {
			return subscription.ErrAppNotFound
		}

		exists, err := s.plans.ExistsByName(ctx, cmd.AppID, cmd.Name, "")
		if err != nil {
			return err
		}
		if exists {
			return subscription.ErrPlanNameExists
		}

		p, err := subscription.NewPlan(subscription.PlanParams{
			AppID:        cmd.AppID,
			Name:         cmd.Name,
			Description:  cmd.Description,
			Price:        cmd.Price,
			AnnualPrice:  cmd.AnnualPrice,
			Currency:     currency,
			BillingCycle: cycle,
			TrialDays:    cmd.TrialDays,
			Status:       vo.PlanStatus(cmd.Status),
			SortPosition: cmd.SortPosition,
			Highlight:    cmd.Highlight,
			Metadata:     cmd.Metadata,
		}, s.clock())
		if err != nil {
			return invalidInput(err)
		}

		// Client ids are ignored on create; every feature gets a fresh id
		// bound to the new plan.
		features := make([]*subscription.PlanFeature, 0, len(cmd.Features))
		for _, in := range cmd.Features {
			f, err := subscription.NewPlanFeature(p.ID(), in.spec())
			if err != nil {
				return invalidInput(err)
			}
			features = append(features, f)
		}
		p.SetFeatures(features)

		if err := s.plans.Create(ctx, p); err != nil {
			return err
		}
		created = p
		return nil
	})
	if err != nil {
		s.logger.Warnw("create plan failed", "app_id", cmd.AppID, "name", cmd.Name, "error", err)
		return nil, toAppError(err, "failed to create plan")
	}

	s.cache.Invalidate(ctx, invalidationKeys(created.ID(), created.AppID())...)
	s.logger.Infow("plan created", "plan_id", created.ID(), "app_id", created.AppID(), "features", len(created.Features()))
	return toPlanDTO(created, s.md), nil
}

func (s *Service) UpdatePlan(ctx context.Context, id string, cmd UpdatePlanCommand) (*PlanDTO, error) {
	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, err
	}

	var updated *subscription.Plan
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if cmd.ExpectedVersion != nil && *cmd.ExpectedVersion != p.Version() {
			return subscription.ErrConcurrentModification
		}

		params, err := mergeParams(p.Params(), cmd)
		if err != nil {
			return invalidInput(err)
		}
		if params.Name != p.Name() {
			exists, err := s.plans.ExistsByName(ctx, p.AppID(), params.Name, p.ID())
			if err != nil {
				return err
			}
			if exists {
				return subscription.ErrPlanNameExists
			}
		}

		if err := p.Update(params, s.clock()); err != nil {
			return invalidInput(err)
		}
		if err := s.plans.Update(ctx, p); err != nil {
			return err
		}

		if cmd.Features != nil {
			if err := s.reconcileFeatures(ctx, p, *cmd.Features); err != nil {
				return err
			}
		}
		updated = p
		return nil
	})
	if err != nil {
		s.logger.Warnw("update plan failed", "plan_id", id, "error", err)
		return nil, toAppError(err, "failed to update plan")
	}

	s.cache.Invalidate(ctx, invalidationKeys(updated.ID(), updated.AppID())...)
	s.logger.Infow("plan updated", "plan_id", updated.ID(), "version", updated.Version())
	return toPlanDTO(updated, s.md), nil
}

func (s *Service) reconcileFeatures(ctx context.Context, p *subscription.Plan, inputs []FeatureInput) error {
	changes := make([]subscription.FeatureChange, 0, len(inputs))
	for _, in := range inputs {
		changes = append(changes, in.change())
	}
	diff, err := subscription.ReconcileFeatures(p.ID(), p.Features(), changes)
	if err != nil {
		return invalidInput(err)
	}

	if err := s.plans.DeleteFeatures(ctx, p.ID(), diff.Delete); err != nil {
		return err
	}
	for _, f := range diff.Update {
		if err := s.plans.UpdateFeature(ctx, f); err != nil {
			return err
		}
	}
	if err := s.plans.CreateFeatures(ctx, diff.Insert); err != nil {
		return err
	}
	p.SetFeatures(diff.Result)

	s.logger.Debugw("plan features reconciled",
		"plan_id", p.ID(),
		"inserted", len(diff.Insert),
		"updated", len(diff.Update),
		"deleted", len(diff.Delete),
	)
	return nil
}

func mergeParams(params subscription.PlanParams, cmd UpdatePlanCommand) (subscription.PlanParams, error) {
	if cmd.Name != nil {
		params.Name = *cmd.Name
	}
	if cmd.Description != nil {
		params.Description = *cmd.Description
	}
	if cmd.Price != nil {
		params.Price = *cmd.Price
	}
	if cmd.AnnualPrice != nil {
		params.AnnualPrice = cmd.AnnualPrice
	}
	if cmd.Currency != nil {
		params.Currency = *cmd.Currency
	}
	if cmd.BillingCycle != nil {
		cycle, err := vo.ParseBillingCycle(*cmd.BillingCycle)
		if err != nil {
			return params, err
		}
		params.BillingCycle = cycle
	}
	if cmd.TrialDays != nil {
		params.TrialDays = *cmd.TrialDays
	}
	if cmd.Status != nil {
		status, err := vo.ParsePlanStatus(*cmd.Status)
		if err != nil {
			return params, err
		}
		params.Status = status
	}
	if cmd.SortPosition != nil {
		params.SortPosition = *cmd.SortPosition
	}
	if cmd.Highlight != nil {
		params.Highlight = *cmd.Highlight
	}
	if cmd.Metadata != nil {
		params.Metadata = cmd.Metadata
	}
	return params, nil
}

// ArchivePlan soft-deletes a plan. Subscriptions on it are left untouched.
func (s *Service) ArchivePlan(ctx context.Context, id string) (*PlanDTO, error) {
	var archived *subscription.Plan
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		p.Archive(s.clock())
		if err := s.plans.Update(ctx, p); err != nil {
			return err
		}
		archived = p
		return nil
	})
	if err != nil {
		return nil, toAppError(err, "failed to archive plan")
	}

	s.cache.Invalidate(ctx, invalidationKeys(archived.ID(), archived.AppID())...)
	s.logger.Infow("plan archived", "plan_id", id)
	return toPlanDTO(archived, s.md), nil
}

// PurgePlan physically deletes a plan and its features. Plans referenced by
// any subscription are refused.
func (s *Service) PurgePlan(ctx context.Context, id string) error {
	var appID string
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		count, err := s.subs.CountByPlanID(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return apperrors.NewConflictError("plan is referenced by subscriptions and cannot be purged", id)
		}
		appID = p.AppID()
		return s.plans.Delete(ctx, id)
	})
	if err != nil {
		return toAppError(err, "failed to purge plan")
	}

	s.cache.Invalidate(ctx, invalidationKeys(id, appID)...)
	s.logger.Infow("plan purged", "plan_id", id, "app_id", appID)
	return nil
}

func (s *Service) GetPlan(ctx context.Context, id string) (*PlanDTO, error) {
	if err := utils.ValidateID(id); err != nil {
		return nil, err
	}
	return cache.GetOrLoad(ctx, s.cache, planKey(id), 0, func(ctx context.Context) (*PlanDTO, error) {
		p, err := s.load(ctx, id)
		if err != nil {
			return nil, toAppError(err, "failed to get plan")
		}
		return toPlanDTO(p, s.md), nil
	})
}

func (s *Service) ListPlans(ctx context.Context, q ListPlansQuery) (*ListPlansResult, error) {
	if err := utils.ValidateStruct(q); err != nil {
		return nil, err
	}
	pf := query.NewPageFilter(q.Page, q.PageSize)
	q.Page, q.PageSize = pf.Page, pf.PageSize

	return cache.GetOrLoad(ctx, s.cache, listKey(q), 0, func(ctx context.Context) (*ListPlansResult, error) {
		plans, total, err := s.plans.List(ctx, toFilter(q))
		if err != nil {
			s.logger.Errorw("failed to list plans", "error", err)
			return nil, apperrors.NewInternalError("failed to list plans")
		}
		out := make([]*PlanDTO, 0, len(plans))
		for _, p := range plans {
			out = append(out, toPlanDTO(p, s.md))
		}
		return &ListPlansResult{Plans: out, Total: total, Page: q.Page, PageSize: q.PageSize}, nil
	})
}

// ListPlanOptions returns the active plans of an app in display order.
func (s *Service) ListPlanOptions(ctx context.Context, appID string) ([]*PlanOption, error) {
	if err := utils.ValidateID(appID); err != nil {
		return nil, err
	}
	return cache.GetOrLoad(ctx, s.cache, dropdownKey(appID), s.cfg.DropdownTTL, func(ctx context.Context) ([]*PlanOption, error) {
		active := vo.PlanStatusActive.String()
		plans, _, err := s.plans.List(ctx, subscription.PlanFilter{
			AppID:    &appID,
			Status:   &active,
			Page:     1,
			PageSize: constants.MaxPageSize,
		})
		if err != nil {
			s.logger.Errorw("failed to list plan options", "app_id", appID, "error", err)
			return nil, apperrors.NewInternalError("failed to list plan options")
		}
		options := make([]*PlanOption, 0, len(plans))
		for _, p := range plans {
			options = append(options, &PlanOption{
				ID:           p.ID(),
				Name:         p.Name(),
				Price:        p.Price(),
				BillingCycle: p.BillingCycle().String(),
			})
		}
		return options, nil
	})
}

func (s *Service) load(ctx context.Context, id string) (*subscription.Plan, error) {
	p, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, subscription.ErrPlanNotFound
	}
	return p, nil
}

func toFilter(q ListPlansQuery) subscription.PlanFilter {
	f := subscription.PlanFilter{
		SortPosition:    q.SortPosition,
		Highlight:       q.Highlight,
		IncludeInactive: q.IncludeInactive,
		Page:            q.Page,
		PageSize:        q.PageSize,
	}
	if q.AppID != "" {
		f.AppID = &q.AppID
	}
	if q.Status != "" {
		f.Status = &q.Status
	}
	if q.Name != "" {
		f.Name = &q.Name
	}
	if q.BillingCycle != "" {
		f.BillingCycle = &q.BillingCycle
	}
	return f
}
