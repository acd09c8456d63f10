package pipeline

import (
	"fmt"
	"reflect"
	"testing"

	"staysearch/internal/domain"
)

func rankedList(n int) []domain.PricedProperty {
	out := make([]domain.PricedProperty, n)
	for i := range out {
		out[i].ID = int64(i + 1)
		out[i].Name = fmt.Sprintf("prop-%03d", i+1)
	}
	return out
}

func pagePlan(page, pageSize int) domain.SearchPlan {
	return domain.SearchPlan{Page: page, PageSize: pageSize}
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name           string
		total          int
		page, pageSize int
		wantLen        int
		wantFirstID    int64
		wantTotalPages int
	}{
		{"last partial page", 45, 3, 20, 5, 41, 3},
		{"first page", 45, 1, 20, 20, 1, 3},
		{"exact fit", 40, 2, 20, 20, 21, 2},
		{"single page", 7, 1, 20, 7, 1, 1},
		{"page past end", 45, 9, 20, 0, 0, 3},
		{"empty list", 0, 1, 20, 0, 0, 1},
		{"empty list deep page", 0, 5, 20, 0, 0, 1},
		{"page size one", 3, 2, 1, 1, 2, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Paginate(pagePlan(tt.page, tt.pageSize), rankedList(tt.total))

			if len(got.Properties) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(got.Properties), tt.wantLen)
			}
			if tt.wantLen > 0 && got.Properties[0].ID != tt.wantFirstID {
				t.Errorf("first ID = %d, want %d", got.Properties[0].ID, tt.wantFirstID)
			}
			if got.Pagination.Total != tt.total {
				t.Errorf("total = %d, want %d", got.Pagination.Total, tt.total)
			}
			if got.Pagination.TotalPages != tt.wantTotalPages {
				t.Errorf("total_pages = %d, want %d", got.Pagination.TotalPages, tt.wantTotalPages)
			}
			if got.Pagination.Page != tt.page || got.Pagination.PageSize != tt.pageSize {
				t.Errorf("pagination echo = %+v, want page=%d page_size=%d", got.Pagination, tt.page, tt.pageSize)
			}
		})
	}
}

func TestPaginate_Idempotent(t *testing.T) {
	plan := pagePlan(2, 10)
	ranked := rankedList(25)

	first := Paginate(plan, ranked)
	second := Paginate(plan, ranked)
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated pagination of the same ranked list differed")
	}
}

func TestPaginate_DoesNotAliasInput(t *testing.T) {
	plan := pagePlan(1, 10)
	ranked := rankedList(5)

	got := Paginate(plan, ranked)
	got.Properties[0].Name = "mutated"
	if ranked[0].Name == "mutated" {
		t.Error("page slice aliases the ranked list")
	}
}
