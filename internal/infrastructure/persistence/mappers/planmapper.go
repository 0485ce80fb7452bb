package mappers

import (
	"fmt"

	"github.com/orris-inc/billing/internal/domain/subscription"
	vo "github.com/orris-inc/billing/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/billing/internal/infrastructure/persistence/models"
)

// PlanMapper handles the conversion between plan entities and persistence models
type PlanMapper interface {
	ToEntity(model *models.PlanModel) (*subscription.Plan, error)
	ToModel(entity *subscription.Plan) (*models.PlanModel, error)
	ToEntities(models []*models.PlanModel) ([]*subscription.Plan, error)
	FeatureToModel(entity *subscription.PlanFeature) *models.PlanFeatureModel
	FeatureToEntity(model *models.PlanFeatureModel) *subscription.PlanFeature
}

type planMapper struct{}

func NewPlanMapper() PlanMapper {
	return &planMapper{}
}

func (m *planMapper) ToEntity(model *models.PlanModel) (*subscription.Plan, error) {
	if model == nil {
		return nil, nil
	}

	billingCycle, err := vo.ParseBillingCycle(model.BillingCycle)
	if err != nil {
		return nil, fmt.Errorf("failed to parse billing cycle: %w", err)
	}
	metadata, err := unmarshalMetadata(model.Metadata)
	if err != nil {
		return nil, err
	}

	features := make([]*subscription.PlanFeature, 0, len(model.Features))
	for i := range model.Features {
		features = append(features, m.FeatureToEntity(&model.Features[i]))
	}

	entity, err := subscription.ReconstructPlan(subscription.PlanReconstructParams{
		ID: model.ID,
		Params: subscription.PlanParams{
			AppID:        model.AppID,
			Name:         model.Name,
			Description:  model.Description,
			Price:        model.Price,
			AnnualPrice:  model.AnnualPrice,
			Currency:     model.Currency,
			BillingCycle: billingCycle,
			TrialDays:    model.TrialDays,
			Status:       vo.PlanStatus(model.Status),
			SortPosition: model.SortPosition,
			Highlight:    model.Highlight,
			Metadata:     metadata,
		},
		Features:  features,
		Version:   model.Version,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct plan entity: %w", err)
	}
	return entity, nil
}

// ToModel maps plan columns. Features are mapped separately.
func (m *planMapper) ToModel(entity *subscription.Plan) (*models.PlanModel, error) {
	if entity == nil {
		return nil, nil
	}
	metadata, err := marshalMetadata(entity.Metadata())
	if err != nil {
		return nil, err
	}
	return &models.PlanModel{
		ID:           entity.ID(),
		AppID:        entity.AppID(),
		Name:         entity.Name(),
		Description:  entity.Description(),
		Price:        entity.Price(),
		AnnualPrice:  entity.AnnualPrice(),
		Currency:     entity.Currency(),
		BillingCycle: entity.BillingCycle().String(),
		TrialDays:    entity.TrialDays(),
		Status:       entity.Status().String(),
		SortPosition: entity.SortPosition(),
		Highlight:    entity.Highlight(),
		Metadata:     metadata,
		Version:      entity.Version(),
		CreatedAt:    entity.CreatedAt(),
		UpdatedAt:    entity.UpdatedAt(),
	}, nil
}

func (m *planMapper) ToEntities(list []*models.PlanModel) ([]*subscription.Plan, error) {
	entities := make([]*subscription.Plan, 0, len(list))
	for _, model := range list {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, fmt.Errorf("failed to map plan %s: %w", model.ID, err)
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

func (m *planMapper) FeatureToModel(entity *subscription.PlanFeature) *models.PlanFeatureModel {
	return &models.PlanFeatureModel{
		ID:           entity.ID(),
		PlanID:       entity.PlanID(),
		Name:         entity.Name(),
		Included:     entity.Included(),
		Limit:        entity.Limit(),
		Category:     entity.Category(),
		SortPosition: entity.SortPosition(),
	}
}

func (m *planMapper) FeatureToEntity(model *models.PlanFeatureModel) *subscription.PlanFeature {
	return subscription.ReconstructPlanFeature(model.ID, model.PlanID, subscription.FeatureSpec{
		Name:         model.Name,
		Included:     model.Included,
		Limit:        model.Limit,
		Category:     model.Category,
		SortPosition: model.SortPosition,
	})
}
