package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/orris-inc/billing/internal/domain/subscription"
	"github.com/orris-inc/billing/internal/infrastructure/persistence/models"
	"github.com/orris-inc/billing/internal/shared/db"
	apperrors "github.com/orris-inc/billing/internal/shared/errors"
	"github.com/orris-inc/billing/internal/shared/logger"
	"github.com/orris-inc/billing/internal/shared/query"
)

type AppRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewAppRepository(db *gorm.DB, logger logger.Interface) subscription.AppRepository {
	return &AppRepositoryImpl{db: db, logger: logger}
}

func (r *AppRepositoryImpl) Create(ctx context.Context, app *subscription.App) error {
	model := appToModel(app)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return subscription.ErrAppNameExists
		}
		r.logger.Errorw("failed to create app", "name", app.Name(), "error", err)
		return fmt.Errorf("failed to create app: %w", err)
	}
	return nil
}

func (r *AppRepositoryImpl) GetByID(ctx context.Context, id string) (*subscription.App, error) {
	var model models.AppModel
	if err := db.GetTxFromContext(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get app", "app_id", id, "error", err)
		return nil, fmt.Errorf("failed to get app: %w", err)
	}
	return appToEntity(&model), nil
}

func (r *AppRepositoryImpl) Update(ctx context.Context, app *subscription.App) error {
	model := appToModel(app)
	err := db.GetTxFromContext(ctx, r.db).Model(&models.AppModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"name":        model.Name,
			"description": model.Description,
			"is_active":   model.IsActive,
			"updated_at":  model.UpdatedAt,
		}).Error
	if err != nil {
		if apperrors.IsDuplicateError(err) {
			return subscription.ErrAppNameExists
		}
		r.logger.Errorw("failed to update app", "app_id", model.ID, "error", err)
		return fmt.Errorf("failed to update app: %w", err)
	}
	return nil
}

func (r *AppRepositoryImpl) List(ctx context.Context, page, pageSize int) ([]*subscription.App, int64, error) {
	q := db.GetTxFromContext(ctx, r.db).Model(&models.AppModel{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count apps: %w", err)
	}

	pf := query.NewPageFilter(page, pageSize)
	var list []*models.AppModel
	if err := q.Order("name ASC").Offset(pf.Offset()).Limit(pf.Limit()).Find(&list).Error; err != nil {
		r.logger.Errorw("failed to list apps", "error", err)
		return nil, 0, fmt.Errorf("failed to list apps: %w", err)
	}

	apps := make([]*subscription.App, 0, len(list))
	for _, m := range list {
		apps = append(apps, appToEntity(m))
	}
	return apps, total, nil
}

func (r *AppRepositoryImpl) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	q := db.GetTxFromContext(ctx, r.db).Model(&models.AppModel{}).Where("name = ?", name)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check app name: %w", err)
	}
	return count > 0, nil
}

func appToModel(app *subscription.App) *models.AppModel {
	return &models.AppModel{
		ID:          app.ID(),
		Name:        app.Name(),
		Description: app.Description(),
		IsActive:    app.IsActive(),
		CreatedAt:   app.CreatedAt(),
		UpdatedAt:   app.UpdatedAt(),
	}
}

func appToEntity(m *models.AppModel) *subscription.App {
	return subscription.ReconstructApp(m.ID, m.Name, m.Description, m.IsActive, m.CreatedAt.UTC(), m.UpdatedAt.UTC())
}
