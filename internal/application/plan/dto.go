package plan

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/orris-inc/billing/internal/domain/subscription"
	"github.com/orris-inc/billing/internal/shared/services/markdown"
)

// FeatureInput describes one feature in a create or update request. ID is
// set for features that already exist on the plan; an empty ID adds a new one.
type FeatureInput struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name" validate:"required,max=100"`
	Included     bool   `json:"included"`
	Limit        *int64 `json:"limit,omitempty" validate:"omitempty,gte=0"`
	Category     string `json:"category" validate:"max=50"`
	SortPosition int    `json:"sort_position"`
}

func (f FeatureInput) spec() subscription.FeatureSpec {
	return subscription.FeatureSpec{
		Name:         f.Name,
		Included:     f.Included,
		Limit:        f.Limit,
		Category:     f.Category,
		SortPosition: f.SortPosition,
	}
}

func (f FeatureInput) change() subscription.FeatureChange {
	if f.ID != "" {
		return subscription.ExistingFeature(f.ID, f.spec())
	}
	return subscription.NewFeature(f.spec())
}

type CreatePlanCommand struct {
	AppID        string           `json:"app_id" validate:"required"`
	Name         string           `json:"name" validate:"required,max=100"`
	Description  string           `json:"description"`
	Price        decimal.Decimal  `json:"price"`
	AnnualPrice  *decimal.Decimal `json:"annual_price,omitempty"`
	Currency     string           `json:"currency"`
	BillingCycle string           `json:"billing_cycle" validate:"required,oneof=monthly quarterly yearly"`
	TrialDays    int              `json:"trial_days" validate:"gte=0"`
	Status       string           `json:"status" validate:"omitempty,oneof=draft active"`
	SortPosition int              `json:"sort_position"`
	Highlight    bool             `json:"highlight"`
	Metadata     map[string]any   `json:"metadata,omitempty"`
	Features     []FeatureInput   `json:"features" validate:"required,min=1,dive"`
}

// UpdatePlanCommand carries a partial update. Nil fields are left unchanged.
// A non-nil Features list replaces the feature set: entries with an ID are
// updated, entries without one are inserted and missing ones are deleted.
type UpdatePlanCommand struct {
	Name         *string          `json:"name,omitempty" validate:"omitempty,max=100"`
	Description  *string          `json:"description,omitempty"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	AnnualPrice  *decimal.Decimal `json:"annual_price,omitempty"`
	Currency     *string          `json:"currency,omitempty"`
	BillingCycle *string          `json:"billing_cycle,omitempty" validate:"omitempty,oneof=monthly quarterly yearly"`
	TrialDays    *int             `json:"trial_days,omitempty" validate:"omitempty,gte=0"`
	Status       *string          `json:"status,omitempty" validate:"omitempty,oneof=draft active archived"`
	SortPosition *int             `json:"sort_position,omitempty"`
	Highlight    *bool            `json:"highlight,omitempty"`
	Metadata     map[string]any   `json:"metadata,omitempty"`
	Features     *[]FeatureInput  `json:"features,omitempty" validate:"omitempty,min=1,dive"`
	// ExpectedVersion rejects the update when the stored plan moved on.
	ExpectedVersion *int `json:"version,omitempty"`
}

type ListPlansQuery struct {
	AppID           string `json:"app_id" form:"app_id"`
	Status          string `json:"status" form:"status" validate:"omitempty,oneof=draft active archived"`
	Name            string `json:"name" form:"name"`
	BillingCycle    string `json:"billing_cycle" form:"billing_cycle" validate:"omitempty,oneof=monthly quarterly yearly"`
	SortPosition    *int   `json:"sort_position" form:"sort_position"`
	Highlight       *bool  `json:"highlight" form:"highlight"`
	IncludeInactive bool   `json:"include_inactive" form:"include_inactive"`
	Page            int    `json:"page" form:"page"`
	PageSize        int    `json:"page_size" form:"page_size"`
}

type FeatureDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Included     bool   `json:"included"`
	Limit        *int64 `json:"limit,omitempty"`
	Category     string `json:"category,omitempty"`
	SortPosition int    `json:"sort_position"`
}

type PlanDTO struct {
	ID              string           `json:"id"`
	AppID           string           `json:"app_id"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	DescriptionHTML string           `json:"description_html"`
	Price           decimal.Decimal  `json:"price"`
	AnnualPrice     *decimal.Decimal `json:"annual_price,omitempty"`
	Currency        string           `json:"currency"`
	BillingCycle    string           `json:"billing_cycle"`
	TrialDays       int              `json:"trial_days"`
	Status          string           `json:"status"`
	SortPosition    int              `json:"sort_position"`
	Highlight       bool             `json:"highlight"`
	Metadata        map[string]any   `json:"metadata,omitempty"`
	Features        []*FeatureDTO    `json:"features"`
	Version         int              `json:"version"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

type ListPlansResult struct {
	Plans    []*PlanDTO `json:"plans"`
	Total    int64      `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
}

// PlanOption is the compact form used by plan pickers.
type PlanOption struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	BillingCycle string          `json:"billing_cycle"`
}

func toFeatureDTO(f *subscription.PlanFeature) *FeatureDTO {
	return &FeatureDTO{
		ID:           f.ID(),
		Name:         f.Name(),
		Included:     f.Included(),
		Limit:        f.Limit(),
		Category:     f.Category(),
		SortPosition: f.SortPosition(),
	}
}

func toPlanDTO(p *subscription.Plan, md markdown.Renderer) *PlanDTO {
	features := make([]*FeatureDTO, 0, len(p.Features()))
	for _, f := range p.Features() {
		features = append(features, toFeatureDTO(f))
	}
	return &PlanDTO{
		ID:              p.ID(),
		AppID:           p.AppID(),
		Name:            p.Name(),
		Description:     p.Description(),
		DescriptionHTML: md.Render(p.Description()),
		Price:           p.Price(),
		AnnualPrice:     p.AnnualPrice(),
		Currency:        p.Currency(),
		BillingCycle:    p.BillingCycle().String(),
		TrialDays:       p.TrialDays(),
		Status:          p.Status().String(),
		SortPosition:    p.SortPosition(),
		Highlight:       p.Highlight(),
		Metadata:        p.Metadata(),
		Features:        features,
		Version:         p.Version(),
		CreatedAt:       p.CreatedAt(),
		UpdatedAt:       p.UpdatedAt(),
	}
}
