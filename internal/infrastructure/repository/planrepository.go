package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/orris-inc/billing/internal/domain/subscription"
	vo "github.com/orris-inc/billing/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/billing/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/billing/internal/infrastructure/persistence/models"
	"github.com/orris-inc/billing/internal/shared/db"
	apperrors "github.com/orris-inc/billing/internal/shared/errors"
	"github.com/orris-inc/billing/internal/shared/logger"
	"github.com/orris-inc/billing/internal/shared/query"
)

type PlanRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.PlanMapper
	logger logger.Interface
}

func NewPlanRepository(db *gorm.DB, logger logger.Interface) subscription.PlanRepository {
	return &PlanRepositoryImpl{
		db:     db,
		mapper: mappers.NewPlanMapper(),
		logger: logger,
	}
}

func (r *PlanRepositoryImpl) Create(ctx context.Context, plan *subscription.Plan) error {
	model, err := r.mapper.ToModel(plan)
	if err != nil {
		return fmt.Errorf("failed to convert plan to model: %w", err)
	}

	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Omit("Features").Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return subscription.ErrPlanNameExists
		}
		r.logger.Errorw("failed to create subscription plan", "name", plan.Name(), "app_id", plan.AppID(), "error", err)
		return fmt.Errorf("failed to create subscription plan: %w", err)
	}

	if err := r.CreateFeatures(ctx, plan.Features()); err != nil {
		return err
	}

	r.logger.Infow("subscription plan created", "plan_id", plan.ID(), "features", len(plan.Features()))
	return nil
}

func (r *PlanRepositoryImpl) GetByID(ctx context.Context, id string) (*subscription.Plan, error) {
	var model models.PlanModel
	err := db.GetTxFromContext(ctx, r.db).
		Preload("Features", orderFeatures).
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get subscription plan", "plan_id", id, "error", err)
		return nil, fmt.Errorf("failed to get subscription plan: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *PlanRepositoryImpl) Update(ctx context.Context, plan *subscription.Plan) error {
	model, err := r.mapper.ToModel(plan)
	if err != nil {
		return fmt.Errorf("failed to convert plan to model: %w", err)
	}

	result := db.GetTxFromContext(ctx, r.db).Model(&models.PlanModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version).
		Updates(map[string]any{
			"name":          model.Name,
			"description":   model.Description,
			"price":         model.Price,
			"annual_price":  model.AnnualPrice,
			"currency":      model.Currency,
			"billing_cycle": model.BillingCycle,
			"trial_days":    model.TrialDays,
			"status":        model.Status,
			"sort_position": model.SortPosition,
			"highlight":     model.Highlight,
			"metadata":      model.Metadata,
			"version":       model.Version + 1,
			"updated_at":    model.UpdatedAt,
		})
	if result.Error != nil {
		if apperrors.IsDuplicateError(result.Error) {
			return subscription.ErrPlanNameExists
		}
		r.logger.Errorw("failed to update subscription plan", "plan_id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update subscription plan: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return r.missingOrStale(ctx, model.ID)
	}

	plan.SetVersion(model.Version + 1)
	return nil
}

func (r *PlanRepositoryImpl) missingOrStale(ctx context.Context, id string) error {
	var count int64
	if err := db.GetTxFromContext(ctx, r.db).Model(&models.PlanModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check subscription plan: %w", err)
	}
	if count == 0 {
		return subscription.ErrPlanNotFound
	}
	return subscription.ErrConcurrentModification
}

func (r *PlanRepositoryImpl) Delete(ctx context.Context, id string) error {
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Where("plan_id = ?", id).Delete(&models.PlanFeatureModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete plan features: %w", err)
	}
	result := tx.Where("id = ?", id).Delete(&models.PlanModel{})
	if result.Error != nil {
		r.logger.Errorw("failed to delete subscription plan", "plan_id", id, "error", result.Error)
		return fmt.Errorf("failed to delete subscription plan: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return subscription.ErrPlanNotFound
	}
	r.logger.Infow("subscription plan deleted", "plan_id", id)
	return nil
}

func (r *PlanRepositoryImpl) List(ctx context.Context, filter subscription.PlanFilter) ([]*subscription.Plan, int64, error) {
	q := db.GetTxFromContext(ctx, r.db).Model(&models.PlanModel{})

	if filter.AppID != nil && *filter.AppID != "" {
		q = q.Where("app_id = ?", *filter.AppID)
	}
	switch {
	case filter.Status != nil && *filter.Status != "":
		q = q.Where("status = ?", *filter.Status)
	case !filter.IncludeInactive:
		q = q.Where("status = ?", vo.PlanStatusActive.String())
	}
	if filter.Name != nil && *filter.Name != "" {
		q = q.Where("name LIKE ?", "%"+*filter.Name+"%")
	}
	if filter.BillingCycle != nil && *filter.BillingCycle != "" {
		q = q.Where("billing_cycle = ?", *filter.BillingCycle)
	}
	if filter.SortPosition != nil {
		q = q.Where("sort_position = ?", *filter.SortPosition)
	}
	if filter.Highlight != nil {
		q = q.Where("highlight = ?", *filter.Highlight)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		r.logger.Errorw("failed to count subscription plans", "error", err)
		return nil, 0, fmt.Errorf("failed to count subscription plans: %w", err)
	}

	pf := query.NewPageFilter(filter.Page, filter.PageSize)
	var list []*models.PlanModel
	err := q.Preload("Features", orderFeatures).
		Order("sort_position ASC, created_at ASC, id ASC").
		Offset(pf.Offset()).Limit(pf.Limit()).
		Find(&list).Error
	if err != nil {
		r.logger.Errorw("failed to list subscription plans", "error", err)
		return nil, 0, fmt.Errorf("failed to list subscription plans: %w", err)
	}

	plans, err := r.mapper.ToEntities(list)
	if err != nil {
		return nil, 0, err
	}
	return plans, total, nil
}

func (r *PlanRepositoryImpl) ExistsByName(ctx context.Context, appID, name, excludeID string) (bool, error) {
	q := db.GetTxFromContext(ctx, r.db).Model(&models.PlanModel{}).
		Where("app_id = ? AND name = ?", appID, name)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check plan name: %w", err)
	}
	return count > 0, nil
}

func (r *PlanRepositoryImpl) GetFeature(ctx context.Context, featureID string) (*subscription.PlanFeature, error) {
	var model models.PlanFeatureModel
	if err := db.GetTxFromContext(ctx, r.db).Where("id = ?", featureID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get plan feature: %w", err)
	}
	return r.mapper.FeatureToEntity(&model), nil
}

func (r *PlanRepositoryImpl) CreateFeatures(ctx context.Context, features []*subscription.PlanFeature) error {
	if len(features) == 0 {
		return nil
	}
	list := make([]*models.PlanFeatureModel, 0, len(features))
	for _, f := range features {
		list = append(list, r.mapper.FeatureToModel(f))
	}
	if err := db.GetTxFromContext(ctx, r.db).Create(&list).Error; err != nil {
		r.logger.Errorw("failed to create plan features", "count", len(list), "error", err)
		return fmt.Errorf("failed to create plan features: %w", err)
	}
	return nil
}

func (r *PlanRepositoryImpl) UpdateFeature(ctx context.Context, feature *subscription.PlanFeature) error {
	model := r.mapper.FeatureToModel(feature)
	result := db.GetTxFromContext(ctx, r.db).Model(&models.PlanFeatureModel{}).
		Where("id = ? AND plan_id = ?", model.ID, model.PlanID).
		Updates(map[string]any{
			"name":          model.Name,
			"included":      model.Included,
			"feature_limit": model.Limit,
			"category":      model.Category,
			"sort_position": model.SortPosition,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update plan feature: %w", result.Error)
	}
	return nil
}

func (r *PlanRepositoryImpl) DeleteFeatures(ctx context.Context, planID string, featureIDs []string) error {
	if len(featureIDs) == 0 {
		return nil
	}
	err := db.GetTxFromContext(ctx, r.db).
		Where("plan_id = ? AND id IN ?", planID, featureIDs).
		Delete(&models.PlanFeatureModel{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete plan features: %w", err)
	}
	return nil
}

func orderFeatures(tx *gorm.DB) *gorm.DB {
	return tx.Order("sort_position ASC, name ASC")
}
