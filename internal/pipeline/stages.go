package pipeline

import (
	"context"

	"staysearch/internal/domain"
)

// The collaborators below are the shipped, contract-only stage
// implementations. They carry no business logic: availability accepts
// everything, stay rules pass through, pricing just multiplies the stored
// nightly rate, ranking preserves candidate order. Real calendar,
// rule, pricing, and ranking engines replace them through the Pipeline
// With* hooks.

// PassthroughAvailability marks every candidate as available.
type PassthroughAvailability struct{}

func (PassthroughAvailability) FilterAvailable(ctx context.Context, plan domain.SearchPlan, candidates []domain.CandidateProperty) ([]domain.AvailableProperty, error) {
	out := make([]domain.AvailableProperty, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, domain.AvailableProperty{
			CandidateProperty: c,
			Available:         true,
		})
	}
	return out, nil
}

// PassthroughStayRules applies no stay rules.
type PassthroughStayRules struct{}

func (PassthroughStayRules) ApplyStayRules(ctx context.Context, plan domain.SearchPlan, available []domain.AvailableProperty) ([]domain.AvailableProperty, error) {
	out := make([]domain.AvailableProperty, len(available))
	copy(out, available)
	return out, nil
}

// RatePricing prices a stay as nightly rate times nights when the store
// supplied a rate, and 0 otherwise. It never fails.
type RatePricing struct{}

func (RatePricing) Price(ctx context.Context, plan domain.SearchPlan, available []domain.AvailableProperty) ([]domain.PricedProperty, error) {
	out := make([]domain.PricedProperty, 0, len(available))
	for _, a := range available {
		p := domain.PricedProperty{AvailableProperty: a}
		if a.NightlyRate > 0 {
			p.PerNight = a.NightlyRate
			p.TotalPrice = a.NightlyRate * float64(plan.Nights)
		}
		out = append(out, p)
	}
	return out, nil
}

// IdentityRanking keeps the incoming order, which is candidate identity
// order and therefore stable across identical requests.
type IdentityRanking struct{}

func (IdentityRanking) Rank(ctx context.Context, plan domain.SearchPlan, priced []domain.PricedProperty) ([]domain.PricedProperty, error) {
	out := make([]domain.PricedProperty, len(priced))
	copy(out, priced)
	return out, nil
}
