package subscription

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	vo "github.com/orris-inc/billing/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/billing/internal/shared/id"
)

const (
	maxPlanNameLength = 100
	maxTrialDays      = 365
)

// Plan is a billing offer scoped to one App. Features are owned by the plan
// and are persisted and deleted together with it.
type Plan struct {
	id           string
	appID        string
	name         string
	description  string
	price        decimal.Decimal
	annualPrice  *decimal.Decimal
	currency     string
	billingCycle vo.BillingCycle
	trialDays    int
	status       vo.PlanStatus
	sortPosition int
	highlight    bool
	metadata     map[string]any
	features     []*PlanFeature
	version      int
	createdAt    time.Time
	updatedAt    time.Time
}

// PlanParams carries the mutable attributes of a plan.
type PlanParams struct {
	AppID        string
	Name         string
	Description  string
	Price        decimal.Decimal
	AnnualPrice  *decimal.Decimal
	Currency     string
	BillingCycle vo.BillingCycle
	TrialDays    int
	Status       vo.PlanStatus
	SortPosition int
	Highlight    bool
	Metadata     map[string]any
}

func NewPlan(p PlanParams, now time.Time) (*Plan, error) {
	if strings.TrimSpace(p.AppID) == "" {
		return nil, fmt.Errorf("plan app ID is required")
	}
	if p.Status == "" {
		p.Status = vo.PlanStatusDraft
	}
	if p.Status == vo.PlanStatusArchived {
		return nil, fmt.Errorf("plan cannot be created archived")
	}

	plan := &Plan{
		id:        id.New(),
		appID:     p.AppID,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}
	if err := plan.apply(p); err != nil {
		return nil, err
	}
	return plan, nil
}

// PlanReconstructParams holds persisted state for ReconstructPlan.
type PlanReconstructParams struct {
	ID        string
	Params    PlanParams
	Features  []*PlanFeature
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReconstructPlan rebuilds a plan from storage without re-running creation rules.
func ReconstructPlan(p PlanReconstructParams) (*Plan, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("plan ID cannot be empty")
	}
	if !p.Params.Status.IsValid() {
		return nil, fmt.Errorf("invalid plan status: %s", p.Params.Status)
	}
	metadata := p.Params.Metadata
	if metadata == nil {
		metadata = make(map[string]any)
	}
	return &Plan{
		id:           p.ID,
		appID:        p.Params.AppID,
		name:         p.Params.Name,
		description:  p.Params.Description,
		price:        p.Params.Price,
		annualPrice:  p.Params.AnnualPrice,
		currency:     p.Params.Currency,
		billingCycle: p.Params.BillingCycle,
		trialDays:    p.Params.TrialDays,
		status:       p.Params.Status,
		sortPosition: p.Params.SortPosition,
		highlight:    p.Params.Highlight,
		metadata:     metadata,
		features:     p.Features,
		version:      p.Version,
		createdAt:    p.CreatedAt,
		updatedAt:    p.UpdatedAt,
	}, nil
}

func (p *Plan) apply(params PlanParams) error {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return fmt.Errorf("plan name is required")
	}
	if len(name) > maxPlanNameLength {
		return fmt.Errorf("plan name too long (max %d characters)", maxPlanNameLength)
	}
	if params.Price.IsNegative() {
		return fmt.Errorf("%w: price cannot be negative", ErrInvalidPrice)
	}
	if params.AnnualPrice != nil && params.AnnualPrice.IsNegative() {
		return fmt.Errorf("%w: annual price cannot be negative", ErrInvalidPrice)
	}
	cur, err := NormalizeCurrency(params.Currency)
	if err != nil {
		return err
	}
	if !params.BillingCycle.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidBillingCycle, params.BillingCycle)
	}
	if params.TrialDays < 0 || params.TrialDays > maxTrialDays {
		return fmt.Errorf("trial days must be between 0 and %d", maxTrialDays)
	}
	if !params.Status.IsValid() {
		return fmt.Errorf("invalid plan status: %s", params.Status)
	}

	p.name = name
	p.description = params.Description
	p.price = params.Price.Round(2)
	if params.AnnualPrice != nil {
		ap := params.AnnualPrice.Round(2)
		p.annualPrice = &ap
	} else {
		p.annualPrice = nil
	}
	p.currency = cur
	p.billingCycle = params.BillingCycle
	p.trialDays = params.TrialDays
	p.status = params.Status
	p.sortPosition = params.SortPosition
	p.highlight = params.Highlight
	p.metadata = params.Metadata
	if p.metadata == nil {
		p.metadata = make(map[string]any)
	}
	return nil
}

// NormalizeCurrency upper-cases and validates an ISO 4217 code.
func NormalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	unit, err := currency.ParseISO(code)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	return unit.String(), nil
}

func (p *Plan) ID() string { return p.id }
func (p *Plan) AppID() string { return p.appID }
func (p *Plan) Name() string { return p.name }
func (p *Plan) Description() string { return p.description }
func (p *Plan) Price() decimal.Decimal { return p.price }
func (p *Plan) AnnualPrice() *decimal.Decimal { return p.annualPrice }
func (p *Plan) Currency() string { return p.currency }
func (p *Plan) BillingCycle() vo.BillingCycle { return p.billingCycle }
func (p *Plan) TrialDays() int { return p.trialDays }
func (p *Plan) Status() vo.PlanStatus { return p.status }
func (p *Plan) SortPosition() int { return p.sortPosition }
func (p *Plan) Highlight() bool { return p.highlight }
func (p *Plan) Metadata() map[string]any { return p.metadata }
func (p *Plan) Features() []*PlanFeature { return p.features }
func (p *Plan) Version() int { return p.version }
func (p *Plan) CreatedAt() time.Time { return p.createdAt }
func (p *Plan) UpdatedAt() time.Time { return p.updatedAt }
func (p *Plan) IsPurchasable() bool { return p.status.IsPurchasable() }
func (p *Plan) Params() PlanParams { return p.params() }
func (p *Plan) SetFeatures(fs []*PlanFeature) { p.features = fs }
func (p *Plan) SetVersion(version int) { p.version = version }

func (p *Plan) params() PlanParams {
	return PlanParams{
		AppID:        p.appID,
		Name:         p.name,
		Description:  p.description,
		Price:        p.price,
		AnnualPrice:  p.annualPrice,
		Currency:     p.currency,
		BillingCycle: p.billingCycle,
		TrialDays:    p.trialDays,
		Status:       p.status,
		SortPosition: p.sortPosition,
		Highlight:    p.highlight,
		Metadata:     p.metadata,
	}
}

// Update replaces the mutable attributes. The owning app cannot change.
func (p *Plan) Update(params PlanParams, now time.Time) error {
	params.AppID = p.appID
	if err := p.apply(params); err != nil {
		return err
	}
	p.updatedAt = now
	return nil
}

// Archive soft-deletes the plan. Existing subscriptions are untouched.
func (p *Plan) Archive(now time.Time) {
	p.status = vo.PlanStatusArchived
	p.updatedAt = now
}
