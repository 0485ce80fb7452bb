package mappers

import (
	"fmt"

	"github.com/orris-inc/billing/internal/domain/subscription"
	vo "github.com/orris-inc/billing/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/billing/internal/infrastructure/persistence/models"
)

// SubscriptionMapper converts subscriptions and their audit/payment rows.
type SubscriptionMapper interface {
	ToEntity(model *models.SubscriptionModel) (*subscription.Subscription, error)
	ToModel(entity *subscription.Subscription) *models.SubscriptionModel
	ToEntities(models []*models.SubscriptionModel) ([]*subscription.Subscription, error)
	EventToModel(entity *subscription.SubscriptionEvent) (*models.SubscriptionEventModel, error)
	EventToEntity(model *models.SubscriptionEventModel) (*subscription.SubscriptionEvent, error)
	PaymentToModel(entity *subscription.Payment) *models.PaymentModel
	PaymentToEntity(model *models.PaymentModel) *subscription.Payment
}

type subscriptionMapper struct{}

func NewSubscriptionMapper() SubscriptionMapper {
	return &subscriptionMapper{}
}

func (m *subscriptionMapper) ToEntity(model *models.SubscriptionModel) (*subscription.Subscription, error) {
	if model == nil {
		return nil, nil
	}
	entity, err := subscription.ReconstructSubscription(subscription.SubscriptionReconstructParams{
		ID:                      model.ID,
		UserID:                  model.UserID,
		PlanID:                  model.PlanID,
		AppID:                   model.AppID,
		Status:                  vo.SubscriptionStatus(model.Status),
		BillingCycle:            vo.BillingCycle(model.BillingCycle),
		StartDate:               model.StartDate.UTC(),
		CurrentPeriodStart:      model.CurrentPeriodStart.UTC(),
		EndDate:                 model.EndDate.UTC(),
		TrialEndDate:            utcPtr(model.TrialEndDate),
		CancelAtPeriodEnd:       model.CancelAtPeriodEnd,
		CanceledAt:              utcPtr(model.CanceledAt),
		CancellationEffectiveAt: utcPtr(model.CancellationEffectiveAt),
		AutoRenew:               model.AutoRenew,
		Amount:                  model.Amount,
		Currency:                model.Currency,
		Version:                 model.Version,
		CreatedAt:               model.CreatedAt.UTC(),
		UpdatedAt:               model.UpdatedAt.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct subscription entity: %w", err)
	}
	return entity, nil
}

func (m *subscriptionMapper) ToModel(entity *subscription.Subscription) *models.SubscriptionModel {
	return &models.SubscriptionModel{
		ID:                      entity.ID(),
		UserID:                  entity.UserID(),
		PlanID:                  entity.PlanID(),
		AppID:                   entity.AppID(),
		Status:                  entity.Status().String(),
		BillingCycle:            entity.BillingCycle().String(),
		StartDate:               entity.StartDate(),
		CurrentPeriodStart:      entity.CurrentPeriodStart(),
		EndDate:                 entity.EndDate(),
		TrialEndDate:            entity.TrialEndDate(),
		CancelAtPeriodEnd:       entity.CancelAtPeriodEnd(),
		CanceledAt:              entity.CanceledAt(),
		CancellationEffectiveAt: entity.CancellationEffectiveAt(),
		AutoRenew:               entity.AutoRenew(),
		Amount:                  entity.Amount(),
		Currency:                entity.Currency(),
		Version:                 entity.Version(),
		CreatedAt:               entity.CreatedAt(),
		UpdatedAt:               entity.UpdatedAt(),
	}
}

func (m *subscriptionMapper) ToEntities(list []*models.SubscriptionModel) ([]*subscription.Subscription, error) {
	entities := make([]*subscription.Subscription, 0, len(list))
	for _, model := range list {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

func (m *subscriptionMapper) EventToModel(entity *subscription.SubscriptionEvent) (*models.SubscriptionEventModel, error) {
	metadata, err := marshalMetadata(entity.Metadata())
	if err != nil {
		return nil, err
	}
	return &models.SubscriptionEventModel{
		ID:             entity.ID(),
		SubscriptionID: entity.SubscriptionID(),
		EventType:      entity.Type().String(),
		FromStatus:     entity.FromStatus().String(),
		ToStatus:       entity.ToStatus().String(),
		Metadata:       metadata,
		CreatedAt:      entity.CreatedAt(),
	}, nil
}

func (m *subscriptionMapper) EventToEntity(model *models.SubscriptionEventModel) (*subscription.SubscriptionEvent, error) {
	metadata, err := unmarshalMetadata(model.Metadata)
	if err != nil {
		return nil, err
	}
	return subscription.ReconstructSubscriptionEvent(
		model.ID,
		model.SubscriptionID,
		subscription.EventType(model.EventType),
		vo.SubscriptionStatus(model.FromStatus),
		vo.SubscriptionStatus(model.ToStatus),
		metadata,
		model.CreatedAt.UTC(),
	), nil
}

func (m *subscriptionMapper) PaymentToModel(entity *subscription.Payment) *models.PaymentModel {
	return &models.PaymentModel{
		ID:             entity.ID(),
		SubscriptionID: entity.SubscriptionID(),
		Amount:         entity.Amount(),
		Currency:       entity.Currency(),
		Status:         string(entity.Status()),
		PeriodStart:    entity.PeriodStart(),
		PeriodEnd:      entity.PeriodEnd(),
		PaidAt:         entity.PaidAt(),
		CreatedAt:      entity.CreatedAt(),
	}
}

func (m *subscriptionMapper) PaymentToEntity(model *models.PaymentModel) *subscription.Payment {
	return subscription.ReconstructPayment(
		model.ID,
		model.SubscriptionID,
		model.Amount,
		model.Currency,
		subscription.PaymentStatus(model.Status),
		model.PeriodStart.UTC(),
		model.PeriodEnd.UTC(),
		utcPtr(model.PaidAt),
		model.CreatedAt.UTC(),
	)
}
