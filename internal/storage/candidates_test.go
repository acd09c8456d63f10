package storage

import (
	"testing"

	"staysearch/internal/domain"
	"staysearch/internal/planner"
)

func planWithFilters(t *testing.T, filters map[string]any) domain.SearchPlan {
	t.Helper()
	plan, err := planner.BuildPlan(domain.SearchInput{
		Latitude:  52.3676,
		Longitude: 4.9041,
		CheckIn:   "2026-01-12",
		CheckOut:  "2026-01-14",
		Adults:    2,
		Filters:   filters,
	})
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	return plan
}

func TestBuildCandidateQuery_Defaults(t *testing.T) {
	q := BuildCandidateQuery(planWithFilters(t, nil))

	if q.CapacityColumn != DefaultCapacityColumn {
		t.Errorf("capacity column = %q, want %q", q.CapacityColumn, DefaultCapacityColumn)
	}
	if q.Geo != DefaultGeoColumns {
		t.Errorf("geo columns = %+v, want %+v", q.Geo, DefaultGeoColumns)
	}
	if q.Limit != DefaultCandidateLimit {
		t.Errorf("limit = %d, want %d", q.Limit, DefaultCandidateLimit)
	}
	if q.Guests != 2 {
		t.Errorf("guests = %d, want 2", q.Guests)
	}
	if q.RadiusKm != planner.DefaultRadiusKm {
		t.Errorf("radius = %v, want %v", q.RadiusKm, planner.DefaultRadiusKm)
	}
}

func TestBuildCandidateQueryLimits_ConfiguredCaps(t *testing.T) {
	limits := Limits{Default: 5, Max: 8}
	tests := []struct {
		name  string
		value any
		want  int
	}{
		{"absent uses configured default", nil, 5},
		{"override within ceiling", 7, 7},
		{"override clamped to configured ceiling", 20, 8},
		{"zero uses configured default", 0, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filters := map[string]any{}
			if tt.value != nil {
				filters[OptionCandidateHardLimit] = tt.value
			}
			q := BuildCandidateQueryLimits(planWithFilters(t, filters), limits)
			if q.Limit != tt.want {
				t.Errorf("limit = %d, want %d", q.Limit, tt.want)
			}
		})
	}
}

func TestLimits_Normalize(t *testing.T) {
	// Zero values fall back to the shipped caps.
	l := Limits{}.normalize()
	if l != DefaultLimits() {
		t.Errorf("normalized zero limits = %+v, want %+v", l, DefaultLimits())
	}

	// Default above Max is pulled down, not errored.
	l = Limits{Default: 50, Max: 10}.normalize()
	if l.Default != 10 || l.Max != 10 {
		t.Errorf("normalized inverted limits = %+v, want default=10 max=10", l)
	}
}

func TestBuildCandidateQuery_CapacityAllowList(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"known alias sleeps", "sleeps", "sleeps"},
		{"known alias capacity", "capacity", "capacity"},
		{"known alias max_guests", "max_guests", "max_guests"},
		{"sql injection attempt", "guests; DROP TABLE properties;--", ""},
		{"sneaky identifier", `max_guests" OR 1=1`, ""},
		{"unknown alias", "bedrooms", ""},
		{"non-string ignored", 7, DefaultCapacityColumn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := BuildCandidateQuery(planWithFilters(t, map[string]any{OptionCapacityColumn: tt.value}))
			if q.CapacityColumn != tt.want {
				t.Errorf("capacity column = %q, want %q", q.CapacityColumn, tt.want)
			}
		})
	}
}

func TestBuildCandidateQuery_GeoAllowList(t *testing.T) {
	q := BuildCandidateQuery(planWithFilters(t, map[string]any{OptionGeoColumns: "latlng"}))
	if q.Geo.Lat != "lat" || q.Geo.Lon != "lng" {
		t.Errorf("geo columns = %+v, want lat/lng", q.Geo)
	}

	// Unknown alias keeps the default pair rather than erroring.
	q = BuildCandidateQuery(planWithFilters(t, map[string]any{OptionGeoColumns: "position; DROP TABLE properties"}))
	if q.Geo != DefaultGeoColumns {
		t.Errorf("geo columns = %+v, want default %+v", q.Geo, DefaultGeoColumns)
	}
}

func TestBuildCandidateQuery_LimitClamping(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  int
	}{
		{"absent uses default", nil, DefaultCandidateLimit},
		{"valid override", 200, 200},
		{"float from json", 500.0, 500},
		{"above ceiling clamped", 50000, MaxCandidateLimit},
		{"zero uses default", 0, DefaultCandidateLimit},
		{"negative uses default", -10, DefaultCandidateLimit},
		{"non-numeric uses default", "all", DefaultCandidateLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filters := map[string]any{}
			if tt.value != nil {
				filters[OptionCandidateHardLimit] = tt.value
			}
			q := BuildCandidateQuery(planWithFilters(t, filters))
			if q.Limit != tt.want {
				t.Errorf("limit = %d, want %d", q.Limit, tt.want)
			}
		})
	}
}
