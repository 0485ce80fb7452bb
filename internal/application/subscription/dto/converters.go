package dto

import (
	"github.com/orris-inc/billing/internal/domain/subscription"
)

func ToSubscriptionDTO(sub *subscription.Subscription) *SubscriptionDTO {
	if sub == nil {
		return nil
	}
	return &SubscriptionDTO{
		ID:                      sub.ID(),
		UserID:                  sub.UserID(),
		PlanID:                  sub.PlanID(),
		AppID:                   sub.AppID(),
		Status:                  sub.Status().String(),
		BillingCycle:            sub.BillingCycle().String(),
		StartDate:               sub.StartDate(),
		CurrentPeriodStart:      sub.CurrentPeriodStart(),
		EndDate:                 sub.EndDate(),
		TrialEndDate:            sub.TrialEndDate(),
		CancelAtPeriodEnd:       sub.CancelAtPeriodEnd(),
		CanceledAt:              sub.CanceledAt(),
		CancellationEffectiveAt: sub.CancellationEffectiveAt(),
		AutoRenew:               sub.AutoRenew(),
		IsActive:                sub.Status().CanUseService(),
		Amount:                  sub.Amount(),
		Currency:                sub.Currency(),
		Version:                 sub.Version(),
		CreatedAt:               sub.CreatedAt(),
		UpdatedAt:               sub.UpdatedAt(),
	}
}

// ToSubscriptionDTOList returns an empty slice for empty input.
func ToSubscriptionDTOList(subs []*subscription.Subscription) []*SubscriptionDTO {
	out := make([]*SubscriptionDTO, 0, len(subs))
	for _, sub := range subs {
		if sub != nil {
			out = append(out, ToSubscriptionDTO(sub))
		}
	}
	return out
}

func ToSubscriptionEventDTO(e *subscription.SubscriptionEvent) *SubscriptionEventDTO {
	return &SubscriptionEventDTO{
		ID:             e.ID(),
		SubscriptionID: e.SubscriptionID(),
		EventType:      e.Type().String(),
		FromStatus:     e.FromStatus().String(),
		ToStatus:       e.ToStatus().String(),
		Metadata:       e.Metadata(),
		CreatedAt:      e.CreatedAt(),
	}
}

func ToPaymentDTO(p *subscription.Payment) *PaymentDTO {
	if p == nil {
		return nil
	}
	return &PaymentDTO{
		ID:             p.ID(),
		SubscriptionID: p.SubscriptionID(),
		Amount:         p.Amount(),
		Currency:       p.Currency(),
		Status:         string(p.Status()),
		PeriodStart:    p.PeriodStart(),
		PeriodEnd:      p.PeriodEnd(),
		PaidAt:         p.PaidAt(),
		CreatedAt:      p.CreatedAt(),
	}
}
