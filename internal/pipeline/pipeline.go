// Package pipeline runs a search as a fixed sequence of stages:
// candidate resolution, availability, stay rules, pricing, ranking, and
// pagination. The orchestrator knows the stage contracts, never their
// internals, so any collaborator satisfying an interface here plugs in
// without touching this package.
package pipeline

import (
	"context"
	"fmt"

	"staysearch/internal/domain"
	"staysearch/internal/planner"
)

// CandidateResolver produces the initial candidate set for a plan. In
// production this is the property store.
type CandidateResolver interface {
	ResolveCandidates(ctx context.Context, plan domain.SearchPlan) ([]domain.CandidateProperty, error)
}

// AvailabilityFilter narrows candidates to those bookable for the plan's
// stay window. It must not mutate the plan or the input slice.
type AvailabilityFilter interface {
	FilterAvailable(ctx context.Context, plan domain.SearchPlan, candidates []domain.CandidateProperty) ([]domain.AvailableProperty, error)
}

// StayRuleFilter enforces listing stay rules (minimum nights, closed
// arrival days, and the like) over available properties.
type StayRuleFilter interface {
	ApplyStayRules(ctx context.Context, plan domain.SearchPlan, available []domain.AvailableProperty) ([]domain.AvailableProperty, error)
}

// PricingEngine attaches a total stay price to each property.
type PricingEngine interface {
	Price(ctx context.Context, plan domain.SearchPlan, available []domain.AvailableProperty) ([]domain.PricedProperty, error)
}

// Ranker orders the priced list for presentation.
type Ranker interface {
	Rank(ctx context.Context, plan domain.SearchPlan, priced []domain.PricedProperty) ([]domain.PricedProperty, error)
}

// Instrumentation receives pipeline measurements: the candidate row count
// of each successful resolution, and the name of any stage that fails.
// Implementations must be safe for concurrent use.
type Instrumentation interface {
	RecordCandidateRows(n int)
	RecordStageFailure(stage string)
}

// Pipeline wires the stage collaborators together.
type Pipeline struct {
	resolver     CandidateResolver
	availability AvailabilityFilter
	stayRules    StayRuleFilter
	pricing      PricingEngine
	ranking      Ranker
	instr        Instrumentation
}

// New builds a pipeline around the given resolver, with the shipped
// pass-through collaborators for every downstream stage.
func New(resolver CandidateResolver) *Pipeline {
	return &Pipeline{
		resolver:     resolver,
		availability: PassthroughAvailability{},
		stayRules:    PassthroughStayRules{},
		pricing:      RatePricing{},
		ranking:      IdentityRanking{},
	}
}

// WithAvailability replaces the availability stage.
func (p *Pipeline) WithAvailability(f AvailabilityFilter) *Pipeline {
	p.availability = f
	return p
}

// WithStayRules replaces the stay-rule stage.
func (p *Pipeline) WithStayRules(f StayRuleFilter) *Pipeline {
	p.stayRules = f
	return p
}

// WithPricing replaces the pricing stage.
func (p *Pipeline) WithPricing(e PricingEngine) *Pipeline {
	p.pricing = e
	return p
}

// WithRanking replaces the ranking stage.
func (p *Pipeline) WithRanking(r Ranker) *Pipeline {
	p.ranking = r
	return p
}

// WithInstrumentation attaches a measurement sink.
func (p *Pipeline) WithInstrumentation(i Instrumentation) *Pipeline {
	p.instr = i
	return p
}

// Search runs the full pipeline for one request. The plan is built first;
// if that fails no stage runs. Stages execute strictly in order and the
// first failure aborts the rest; a failed search never yields partial
// results.
func (p *Pipeline) Search(ctx context.Context, in domain.SearchInput) (domain.SearchResult, error) {
	plan, err := planner.BuildPlan(in)
	if err != nil {
		return domain.SearchResult{}, err
	}

	candidates, err := p.resolver.ResolveCandidates(ctx, plan)
	if err != nil {
		p.stageFailed("candidate")
		return domain.SearchResult{}, fmt.Errorf("candidate stage: %w", err)
	}
	if p.instr != nil {
		p.instr.RecordCandidateRows(len(candidates))
	}

	available, err := p.availability.FilterAvailable(ctx, plan, candidates)
	if err != nil {
		p.stageFailed("availability")
		return domain.SearchResult{}, fmt.Errorf("availability stage: %w", err)
	}

	available, err = p.stayRules.ApplyStayRules(ctx, plan, available)
	if err != nil {
		p.stageFailed("stay_rules")
		return domain.SearchResult{}, fmt.Errorf("stay-rule stage: %w", err)
	}

	priced, err := p.pricing.Price(ctx, plan, available)
	if err != nil {
		p.stageFailed("pricing")
		return domain.SearchResult{}, fmt.Errorf("pricing stage: %w", err)
	}

	ranked, err := p.ranking.Rank(ctx, plan, priced)
	if err != nil {
		p.stageFailed("ranking")
		return domain.SearchResult{}, fmt.Errorf("ranking stage: %w", err)
	}

	return Paginate(plan, ranked), nil
}

func (p *Pipeline) stageFailed(stage string) {
	if p.instr != nil {
		p.instr.RecordStageFailure(stage)
	}
}
