package subscription

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/orris-inc/billing/internal/shared/id"
)

// PlanFeature is one line of a plan's feature list.
type PlanFeature struct {
	id           string
	planID       string
	name         string
	included     bool
	limit        *int64
	category     string
	sortPosition int
}

// FeatureSpec is the caller-supplied content of a feature.
type FeatureSpec struct {
	Name         string
	Included     bool
	Limit        *int64
	Category     string
	SortPosition int
}

func (s FeatureSpec) validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("feature name is required")
	}
	if s.Limit != nil && *s.Limit < 0 {
		return fmt.Errorf("feature limit cannot be negative")
	}
	return nil
}

func NewPlanFeature(planID string, spec FeatureSpec) (*PlanFeature, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}
	f := &PlanFeature{id: id.New(), planID: planID}
	f.apply(spec)
	return f, nil
}

func ReconstructPlanFeature(featureID, planID string, spec FeatureSpec) *PlanFeature {
	f := &PlanFeature{id: featureID, planID: planID}
	f.apply(spec)
	return f
}

func (f *PlanFeature) apply(spec FeatureSpec) {
	f.name = strings.TrimSpace(spec.Name)
	f.included = spec.Included
	f.limit = spec.Limit
	f.category = spec.Category
	f.sortPosition = spec.SortPosition
}

// Update replaces the feature content in place.
func (f *PlanFeature) Update(spec FeatureSpec) error {
	if err := spec.validate(); err != nil {
		return err
	}
	f.apply(spec)
	return nil
}

func (f *PlanFeature) ID() string { return f.id }
func (f *PlanFeature) PlanID() string { return f.planID }
func (f *PlanFeature) Name() string { return f.name }
func (f *PlanFeature) Included() bool { return f.included }
func (f *PlanFeature) Limit() *int64 { return f.limit }
func (f *PlanFeature) Category() string { return f.category }
func (f *PlanFeature) SortPosition() int { return f.sortPosition }

// FeatureChange is either an existing feature (by id) with new content or a
// brand-new feature. Build one with ExistingFeature or NewFeature.
type FeatureChange struct {
	id   string
	spec FeatureSpec
}

func ExistingFeature(featureID string, spec FeatureSpec) FeatureChange {
	return FeatureChange{id: featureID, spec: spec}
}

func NewFeature(spec FeatureSpec) FeatureChange {
	return FeatureChange{spec: spec}
}

// ExistingID returns the id of the persisted feature, if any.
func (c FeatureChange) ExistingID() (string, bool) {
	return c.id, c.id != ""
}

// FeatureDiff is the outcome of reconciling a plan's features against an
// incoming feature set.
type FeatureDiff struct {
	Insert []*PlanFeature
	Update []*PlanFeature
	Delete []string
	// Result is the full feature list after applying the diff, in input order.
	Result []*PlanFeature
}

// ReconcileFeatures merges changes into the plan's current features. Existing
// ids must belong to the plan. Persisted features absent from changes are
// scheduled for deletion.
func ReconcileFeatures(planID string, current []*PlanFeature, changes []FeatureChange) (*FeatureDiff, error) {
	byID := lo.KeyBy(current, func(f *PlanFeature) string { return f.id })
	diff := &FeatureDiff{}
	seen := make(map[string]struct{}, len(changes))

	for _, c := range changes {
		if err := c.spec.validate(); err != nil {
			return nil, err
		}
		existingID, ok := c.ExistingID()
		if !ok {
			f, err := NewPlanFeature(planID, c.spec)
			if err != nil {
				return nil, err
			}
			diff.Insert = append(diff.Insert, f)
			diff.Result = append(diff.Result, f)
			continue
		}

		existing, found := byID[existingID]
		if !found {
			return nil, fmt.Errorf("%w: %s does not belong to plan %s", ErrFeatureNotFound, existingID, planID)
		}
		if _, dup := seen[existingID]; dup {
			return nil, fmt.Errorf("feature %s listed more than once", existingID)
		}
		seen[existingID] = struct{}{}

		updated := ReconstructPlanFeature(existing.id, planID, c.spec)
		diff.Update = append(diff.Update, updated)
		diff.Result = append(diff.Result, updated)
	}

	for _, f := range current {
		if _, keep := seen[f.id]; !keep {
			diff.Delete = append(diff.Delete, f.id)
		}
	}
	return diff, nil
}
