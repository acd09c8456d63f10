package pipeline

import (
	"staysearch/internal/domain"
)

// Paginate slices the ranked list into the plan's page. Total reflects the
// ranked list, not the raw candidate row count, so the metadata always
// matches what the pipeline actually produced. A page past the end yields
// an empty page with correct metadata; paging past the end is not a fault.
func Paginate(plan domain.SearchPlan, ranked []domain.PricedProperty) domain.SearchResult {
	total := len(ranked)
	totalPages := (total + plan.PageSize - 1) / plan.PageSize
	if totalPages < 1 {
		totalPages = 1
	}

	start := (plan.Page - 1) * plan.PageSize
	if start > total {
		start = total
	}
	end := start + plan.PageSize
	if end > total {
		end = total
	}

	page := make([]domain.PricedProperty, end-start)
	copy(page, ranked[start:end])

	return domain.SearchResult{
		Properties: page,
		Pagination: domain.Pagination{
			Page:       plan.Page,
			PageSize:   plan.PageSize,
			Total:      total,
			TotalPages: totalPages,
		},
	}
}
