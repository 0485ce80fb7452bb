package plan

import (
	"context"

	"github.com/orris-inc/billing/internal/domain/subscription"
	apperrors "github.com/orris-inc/billing/internal/shared/errors"
	"github.com/orris-inc/billing/internal/shared/utils"
)

// AddFeature appends one feature to a plan outside the update path.
func (s *Service) AddFeature(ctx context.Context, planID string, in FeatureInput) (*FeatureDTO, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}

	var (
		added *subscription.PlanFeature
		appID string
	)
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.load(ctx, planID)
		if err != nil {
			return err
		}
		f, err := subscription.NewPlanFeature(p.ID(), in.spec())
		if err != nil {
			return invalidInput(err)
		}
		if err := s.plans.CreateFeatures(ctx, []*subscription.PlanFeature{f}); err != nil {
			return err
		}
		added, appID = f, p.AppID()
		return nil
	})
	if err != nil {
		return nil, toAppError(err, "failed to add plan feature")
	}

	s.cache.Invalidate(ctx, invalidationKeys(planID, appID)...)
	s.logger.Infow("plan feature added", "plan_id", planID, "feature_id", added.ID())
	return toFeatureDTO(added), nil
}

func (s *Service) UpdateFeature(ctx context.Context, planID, featureID string, in FeatureInput) (*FeatureDTO, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}

	var (
		updated *subscription.PlanFeature
		appID   string
	)
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		p, f, err := s.loadFeature(ctx, planID, featureID)
		if err != nil {
			return err
		}
		if err := f.Update(in.spec()); err != nil {
			return invalidInput(err)
		}
		if err := s.plans.UpdateFeature(ctx, f); err != nil {
			return err
		}
		updated, appID = f, p.AppID()
		return nil
	})
	if err != nil {
		return nil, toAppError(err, "failed to update plan feature")
	}

	s.cache.Invalidate(ctx, invalidationKeys(planID, appID)...)
	s.logger.Infow("plan feature updated", "plan_id", planID, "feature_id", featureID)
	return toFeatureDTO(updated), nil
}

// DeleteFeature removes one feature. A plan always keeps at least one.
func (s *Service) DeleteFeature(ctx context.Context, planID, featureID string) error {
	var appID string
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		p, _, err := s.loadFeature(ctx, planID, featureID)
		if err != nil {
			return err
		}
		if len(p.Features()) <= 1 {
			return apperrors.NewBadRequestError("a plan must keep at least one feature")
		}
		appID = p.AppID()
		return s.plans.DeleteFeatures(ctx, planID, []string{featureID})
	})
	if err != nil {
		return toAppError(err, "failed to delete plan feature")
	}

	s.cache.Invalidate(ctx, invalidationKeys(planID, appID)...)
	s.logger.Infow("plan feature deleted", "plan_id", planID, "feature_id", featureID)
	return nil
}

func (s *Service) loadFeature(ctx context.Context, planID, featureID string) (*subscription.Plan, *subscription.PlanFeature, error) {
	p, err := s.load(ctx, planID)
	if err != nil {
		return nil, nil, err
	}
	f, err := s.plans.GetFeature(ctx, featureID)
	if err != nil {
		return nil, nil, err
	}
	if f == nil || f.PlanID() != p.ID() {
		return nil, nil, subscription.ErrFeatureNotFound
	}
	return p, f, nil
}
