package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/orris-inc/billing/internal/domain/promotion"
	"github.com/orris-inc/billing/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/billing/internal/infrastructure/persistence/models"
	"github.com/orris-inc/billing/internal/shared/db"
	apperrors "github.com/orris-inc/billing/internal/shared/errors"
	"github.com/orris-inc/billing/internal/shared/logger"
	"github.com/orris-inc/billing/internal/shared/query"
)

type PromoCodeRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.PromoCodeMapper
	logger logger.Interface
}

func NewPromoCodeRepository(db *gorm.DB, logger logger.Interface) promotion.Repository {
	return &PromoCodeRepositoryImpl{
		db:     db,
		mapper: mappers.NewPromoCodeMapper(),
		logger: logger,
	}
}

func (r *PromoCodeRepositoryImpl) Create(ctx context.Context, promo *promotion.PromoCode) error {
	model := r.mapper.ToModel(promo)
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return promotion.ErrCodeExists
		}
		r.logger.Errorw("failed to create promo code", "code", promo.Code(), "error", err)
		return fmt.Errorf("failed to create promo code: %w", err)
	}
	if err := r.replaceApplicability(tx, promo); err != nil {
		return err
	}
	r.logger.Infow("promo code created", "id", promo.ID(), "code", promo.Code())
	return nil
}

func (r *PromoCodeRepositoryImpl) GetByID(ctx context.Context, id string) (*promotion.PromoCode, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *PromoCodeRepositoryImpl) GetActiveByCode(ctx context.Context, code string) (*promotion.PromoCode, error) {
	return r.first(ctx, "active_code = ?", code)
}

func (r *PromoCodeRepositoryImpl) first(ctx context.Context, cond string, arg any) (*promotion.PromoCode, error) {
	tx := db.GetTxFromContext(ctx, r.db)
	var model models.PromoCodeModel
	if err := tx.Where(cond, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get promo code", "lookup", arg, "error", err)
		return nil, fmt.Errorf("failed to get promo code: %w", err)
	}
	planIDs, userIDs, err := r.loadApplicability(tx, model.ID)
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntity(&model, planIDs, userIDs), nil
}

func (r *PromoCodeRepositoryImpl) ExistsActiveCode(ctx context.Context, code, excludeID string) (bool, error) {
	q := db.GetTxFromContext(ctx, r.db).Model(&models.PromoCodeModel{}).Where("active_code = ?", code)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check promo code: %w", err)
	}
	return count > 0, nil
}

func (r *PromoCodeRepositoryImpl) List(ctx context.Context, filter promotion.Filter) ([]*promotion.PromoCode, int64, error) {
	tx := db.GetTxFromContext(ctx, r.db)
	q := tx.Model(&models.PromoCodeModel{})

	if filter.Code != nil && *filter.Code != "" {
		q = q.Where("code LIKE ?", "%"+promotion.NormalizeCode(*filter.Code)+"%")
	}
	if filter.IsActive != nil {
		q = q.Where("is_active = ?", *filter.IsActive)
	}
	if filter.DiscountType != nil && *filter.DiscountType != "" {
		q = q.Where("discount_type = ?", *filter.DiscountType)
	}
	if filter.ApplicableTo != nil && *filter.ApplicableTo != "" {
		q = q.Where("applicable_to = ?", *filter.ApplicableTo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		r.logger.Errorw("failed to count promo codes", "error", err)
		return nil, 0, fmt.Errorf("failed to count promo codes: %w", err)
	}

	pf := query.NewPageFilter(filter.Page, filter.PageSize)
	var list []*models.PromoCodeModel
	if err := q.Order("created_at DESC, id ASC").Offset(pf.Offset()).Limit(pf.Limit()).Find(&list).Error; err != nil {
		r.logger.Errorw("failed to list promo codes", "error", err)
		return nil, 0, fmt.Errorf("failed to list promo codes: %w", err)
	}

	promos := make([]*promotion.PromoCode, 0, len(list))
	for _, m := range list {
		planIDs, userIDs, err := r.loadApplicability(tx, m.ID)
		if err != nil {
			return nil, 0, err
		}
		promos = append(promos, r.mapper.ToEntity(m, planIDs, userIDs))
	}
	return promos, total, nil
}

// Update leaves usage_count alone; only IncrementUsage moves it.
func (r *PromoCodeRepositoryImpl) Update(ctx context.Context, promo *promotion.PromoCode) error {
	model := r.mapper.ToModel(promo)
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.Model(&models.PromoCodeModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"code":                model.Code,
			"active_code":         model.ActiveCode,
			"description":         model.Description,
			"discount_type":       model.DiscountType,
			"discount_value":      model.DiscountValue,
			"start_date":          model.StartDate,
			"end_date":            model.EndDate,
			"usage_limit":         model.UsageLimit,
			"is_active":           model.IsActive,
			"is_first_time_only":  model.IsFirstTimeOnly,
			"applicable_to":       model.ApplicableTo,
			"max_discount_amount": model.MaxDiscountAmount,
			"min_purchase_amount": model.MinPurchaseAmount,
			"updated_at":          model.UpdatedAt,
		})
	if result.Error != nil {
		if apperrors.IsDuplicateError(result.Error) {
			return promotion.ErrCodeExists
		}
		r.logger.Errorw("failed to update promo code", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update promo code: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return promotion.ErrPromoNotFound
	}

	return r.replaceApplicability(tx, promo)
}

func (r *PromoCodeRepositoryImpl) IncrementUsage(ctx context.Context, id string) (bool, error) {
	result := db.GetTxFromContext(ctx, r.db).Model(&models.PromoCodeModel{}).
		Where("id = ? AND is_active = ?", id, true).
		Where("usage_limit IS NULL OR usage_count < usage_limit").
		Updates(map[string]any{
			"usage_count": gorm.Expr("usage_count + ?", 1),
			"updated_at":  time.Now().UTC(),
		})
	if result.Error != nil {
		r.logger.Errorw("failed to increment promo code usage", "id", id, "error", result.Error)
		return false, fmt.Errorf("failed to increment promo code usage: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *PromoCodeRepositoryImpl) CreateRedemption(ctx context.Context, redemption *promotion.Redemption) error {
	if err := db.GetTxFromContext(ctx, r.db).Create(r.mapper.RedemptionToModel(redemption)).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return promotion.ErrAlreadyRedeemed
		}
		r.logger.Errorw("failed to record promo code redemption",
			"promo_code_id", redemption.PromoCodeID(),
			"subscription_id", redemption.SubscriptionID(),
			"error", err,
		)
		return fmt.Errorf("failed to record redemption: %w", err)
	}
	return nil
}

func (r *PromoCodeRepositoryImpl) HasRedeemed(ctx context.Context, promoCodeID, userID string) (bool, error) {
	var count int64
	err := db.GetTxFromContext(ctx, r.db).Model(&models.SubscriptionPromoCodeModel{}).
		Where("promo_code_id = ? AND user_id = ?", promoCodeID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check redemption: %w", err)
	}
	return count > 0, nil
}

func (r *PromoCodeRepositoryImpl) ListRedemptions(ctx context.Context, promoCodeID string) ([]*promotion.Redemption, error) {
	var list []*models.SubscriptionPromoCodeModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("promo_code_id = ?", promoCodeID).
		Order("applied_date ASC, id ASC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list redemptions: %w", err)
	}
	out := make([]*promotion.Redemption, 0, len(list))
	for _, m := range list {
		out = append(out, r.mapper.RedemptionToEntity(m))
	}
	return out, nil
}

func (r *PromoCodeRepositoryImpl) loadApplicability(tx *gorm.DB, promoID string) ([]string, []string, error) {
	var planIDs []string
	if err := tx.Model(&models.PromoCodeApplicablePlanModel{}).
		Where("promo_code_id = ?", promoID).Order("plan_id ASC").
		Pluck("plan_id", &planIDs).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load applicable plans: %w", err)
	}
	var userIDs []string
	if err := tx.Model(&models.PromoCodeApplicableUserModel{}).
		Where("promo_code_id = ?", promoID).Order("user_id ASC").
		Pluck("user_id", &userIDs).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load applicable users: %w", err)
	}
	return planIDs, userIDs, nil
}

func (r *PromoCodeRepositoryImpl) replaceApplicability(tx *gorm.DB, promo *promotion.PromoCode) error {
	if err := tx.Where("promo_code_id = ?", promo.ID()).Delete(&models.PromoCodeApplicablePlanModel{}).Error; err != nil {
		return fmt.Errorf("failed to clear applicable plans: %w", err)
	}
	if err := tx.Where("promo_code_id = ?", promo.ID()).Delete(&models.PromoCodeApplicableUserModel{}).Error; err != nil {
		return fmt.Errorf("failed to clear applicable users: %w", err)
	}

	if ids := promo.ApplicablePlanIDs(); len(ids) > 0 {
		rows := make([]models.PromoCodeApplicablePlanModel, 0, len(ids))
		for _, planID := range ids {
			rows = append(rows, models.PromoCodeApplicablePlanModel{PromoCodeID: promo.ID(), PlanID: planID})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to store applicable plans: %w", err)
		}
	}
	if ids := promo.ApplicableUserIDs(); len(ids) > 0 {
		rows := make([]models.PromoCodeApplicableUserModel, 0, len(ids))
		for _, userID := range ids {
			rows = append(rows, models.PromoCodeApplicableUserModel{PromoCodeID: promo.ID(), UserID: userID})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to store applicable users: %w", err)
		}
	}
	return nil
}
