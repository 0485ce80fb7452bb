package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/orris-inc/billing/internal/domain/subscription"
	vo "github.com/orris-inc/billing/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/billing/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/billing/internal/infrastructure/persistence/models"
	"github.com/orris-inc/billing/internal/shared/db"
	"github.com/orris-inc/billing/internal/shared/logger"
	"github.com/orris-inc/billing/internal/shared/query"
)

var terminalStatuses = []string{vo.StatusCanceled.String(), vo.StatusExpired.String()}

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.SubscriptionMapper
	logger logger.Interface
}

func NewSubscriptionRepository(db *gorm.DB, logger logger.Interface) subscription.SubscriptionRepository {
	return &SubscriptionRepositoryImpl{
		db:     db,
		mapper: mappers.NewSubscriptionMapper(),
		logger: logger,
	}
}

func (r *SubscriptionRepositoryImpl) Create(ctx context.Context, sub *subscription.Subscription) error {
	model := r.mapper.ToModel(sub)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create subscription in database", "user_id", model.UserID, "plan_id", model.PlanID, "error", err)
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	r.logger.Infow("subscription created successfully", "id", model.ID, "user_id", model.UserID, "plan_id", model.PlanID)
	return nil
}

func (r *SubscriptionRepositoryImpl) GetByID(ctx context.Context, id string) (*subscription.Subscription, error) {
	var model models.SubscriptionModel
	if err := db.GetTxFromContext(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get subscription by ID", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *SubscriptionRepositoryImpl) Update(ctx context.Context, sub *subscription.Subscription) error {
	model := r.mapper.ToModel(sub)

	result := db.GetTxFromContext(ctx, r.db).Model(&models.SubscriptionModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version).
		Updates(map[string]any{
			"status":                    model.Status,
			"current_period_start":      model.CurrentPeriodStart,
			"end_date":                  model.EndDate,
			"trial_end_date":            model.TrialEndDate,
			"cancel_at_period_end":      model.CancelAtPeriodEnd,
			"canceled_at":               model.CanceledAt,
			"cancellation_effective_at": model.CancellationEffectiveAt,
			"auto_renew":                model.AutoRenew,
			"amount":                    model.Amount,
			"version":                   model.Version + 1,
			"updated_at":                model.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update subscription", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := db.GetTxFromContext(ctx, r.db).Model(&models.SubscriptionModel{}).Where("id = ?", model.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check subscription: %w", err)
		}
		if count == 0 {
			return subscription.ErrSubscriptionNotFound
		}
		r.logger.Warnw("subscription version conflict", "id", model.ID, "version", model.Version)
		return subscription.ErrConcurrentModification
	}

	sub.SetVersion(model.Version + 1)
	return nil
}

func (r *SubscriptionRepositoryImpl) List(ctx context.Context, filter subscription.SubscriptionFilter) ([]*subscription.Subscription, int64, error) {
	q := db.GetTxFromContext(ctx, r.db).Model(&models.SubscriptionModel{})

	if filter.UserID != nil && *filter.UserID != "" {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	if filter.AppID != nil && *filter.AppID != "" {
		q = q.Where("app_id = ?", *filter.AppID)
	}
	if filter.PlanID != nil && *filter.PlanID != "" {
		q = q.Where("plan_id = ?", *filter.PlanID)
	}
	if filter.Status != nil && *filter.Status != "" {
		q = q.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		r.logger.Errorw("failed to count subscriptions", "error", err)
		return nil, 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	pf := query.NewPageFilter(filter.Page, filter.PageSize)
	var list []*models.SubscriptionModel
	if err := q.Order("created_at DESC, id ASC").Offset(pf.Offset()).Limit(pf.Limit()).Find(&list).Error; err != nil {
		r.logger.Errorw("failed to list subscriptions", "error", err)
		return nil, 0, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	subs, err := r.mapper.ToEntities(list)
	if err != nil {
		return nil, 0, err
	}
	return subs, total, nil
}

func (r *SubscriptionRepositoryImpl) ListByUser(ctx context.Context, userID string, appID *string) ([]*subscription.Subscription, error) {
	q := db.GetTxFromContext(ctx, r.db).Where("user_id = ?", userID)
	if appID != nil && *appID != "" {
		q = q.Where("app_id = ?", *appID)
	}

	var list []*models.SubscriptionModel
	if err := q.Order("created_at DESC, id ASC").Find(&list).Error; err != nil {
		r.logger.Errorw("failed to get user subscriptions", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get user subscriptions: %w", err)
	}
	return r.mapper.ToEntities(list)
}

func (r *SubscriptionRepositoryImpl) CountByUser(ctx context.Context, userID, excludeID string) (int64, error) {
	q := db.GetTxFromContext(ctx, r.db).Model(&models.SubscriptionModel{}).Where("user_id = ?", userID)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count user subscriptions: %w", err)
	}
	return count, nil
}

func (r *SubscriptionRepositoryImpl) CountNonTerminalByUserApp(ctx context.Context, userID, appID string) (int64, error) {
	var count int64
	err := db.GetTxFromContext(ctx, r.db).Model(&models.SubscriptionModel{}).
		Where("user_id = ? AND app_id = ? AND status NOT IN ?", userID, appID, terminalStatuses).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count open subscriptions: %w", err)
	}
	return count, nil
}

func (r *SubscriptionRepositoryImpl) CountByPlanID(ctx context.Context, planID string) (int64, error) {
	var count int64
	if err := db.GetTxFromContext(ctx, r.db).Model(&models.SubscriptionModel{}).Where("plan_id = ?", planID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count plan subscriptions: %w", err)
	}
	return count, nil
}

// FindPeriodEnded returns non-terminal subscriptions whose period ended at or
// before now and which will not renew on their own.
func (r *SubscriptionRepositoryImpl) FindPeriodEnded(ctx context.Context, now time.Time, limit int) ([]*subscription.Subscription, error) {
	q := db.GetTxFromContext(ctx, r.db).
		Where("end_date <= ? AND status NOT IN ?", now, terminalStatuses).
		Where("cancel_at_period_end = ? OR auto_renew = ?", true, false).
		Order("end_date ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var list []*models.SubscriptionModel
	if err := q.Find(&list).Error; err != nil {
		r.logger.Errorw("failed to find ended subscriptions", "error", err)
		return nil, fmt.Errorf("failed to find ended subscriptions: %w", err)
	}
	return r.mapper.ToEntities(list)
}

func (r *SubscriptionRepositoryImpl) ListCreatedBefore(ctx context.Context, until time.Time, appID *string) ([]*subscription.Subscription, error) {
	q := db.GetTxFromContext(ctx, r.db).Where("created_at < ?", until)
	if appID != nil && *appID != "" {
		q = q.Where("app_id = ?", *appID)
	}

	var list []*models.SubscriptionModel
	if err := q.Find(&list).Error; err != nil {
		r.logger.Errorw("failed to load subscriptions for analytics", "error", err)
		return nil, fmt.Errorf("failed to load subscriptions: %w", err)
	}
	return r.mapper.ToEntities(list)
}

func (r *SubscriptionRepositoryImpl) AppendEvents(ctx context.Context, events ...*subscription.SubscriptionEvent) error {
	if len(events) == 0 {
		return nil
	}
	list := make([]*models.SubscriptionEventModel, 0, len(events))
	for _, e := range events {
		if e == nil {
			continue
		}
		m, err := r.mapper.EventToModel(e)
		if err != nil {
			return err
		}
		list = append(list, m)
	}
	if len(list) == 0 {
		return nil
	}
	if err := db.GetTxFromContext(ctx, r.db).Create(&list).Error; err != nil {
		r.logger.Errorw("failed to append subscription events", "count", len(list), "error", err)
		return fmt.Errorf("failed to append subscription events: %w", err)
	}
	return nil
}

func (r *SubscriptionRepositoryImpl) ListEvents(ctx context.Context, subscriptionID string) ([]*subscription.SubscriptionEvent, error) {
	var list []*models.SubscriptionEventModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("subscription_id = ?", subscriptionID).
		Order("created_at ASC, id ASC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list subscription events: %w", err)
	}

	events := make([]*subscription.SubscriptionEvent, 0, len(list))
	for _, m := range list {
		e, err := r.mapper.EventToEntity(m)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}

func (r *SubscriptionRepositoryImpl) CreatePayment(ctx context.Context, payment *subscription.Payment) error {
	if err := db.GetTxFromContext(ctx, r.db).Create(r.mapper.PaymentToModel(payment)).Error; err != nil {
		r.logger.Errorw("failed to create payment", "subscription_id", payment.SubscriptionID(), "error", err)
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *SubscriptionRepositoryImpl) ListPayments(ctx context.Context, subscriptionID string) ([]*subscription.Payment, error) {
	var list []*models.PaymentModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("subscription_id = ?", subscriptionID).
		Order("period_start ASC, id ASC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	payments := make([]*subscription.Payment, 0, len(list))
	for _, m := range list {
		payments = append(payments, r.mapper.PaymentToEntity(m))
	}
	return payments, nil
}
