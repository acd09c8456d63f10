package domain

import (
	"math"
	"time"
)

// SearchInput is the raw, caller-supplied search request. Nothing in it is
// trusted; the planner validates and normalizes it into a SearchPlan.
type SearchInput struct {
	// Latitude and Longitude are the center of the search, in decimal degrees.
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	// CheckIn and CheckOut are calendar dates in YYYY-MM-DD form.
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
	// Adults and Children are guest counts. Children is optional.
	Adults   float64 `json:"adults"`
	Children float64 `json:"children"`
	// Page is the 1-based page number.
	Page int `json:"page,omitempty"`
	// PageSize is the number of results per page.
	PageSize int `json:"page_size,omitempty"`
	// Filters carries optional tuning values (radius_km, resolver knobs).
	// Unrecognized keys are preserved and passed through opaquely.
	Filters map[string]any `json:"filters,omitempty"`
}

// Geo is a point in decimal degrees.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// SearchPlan is the validated, normalized form of a search request.
// It is built once per request by the planner and never mutated afterwards.
type SearchPlan struct {
	// CheckIn and CheckOut are date-only values (UTC midnight).
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
	// Nights is the stay length in whole nights; always >= 1.
	Nights int `json:"nights"`
	// Guests is adults + children; always > 0.
	Guests int `json:"guests"`
	// HasChildren reports whether the request included children.
	HasChildren bool `json:"has_children"`
	Geo         Geo  `json:"geo"`
	// RadiusKm is the search radius in kilometers, clamped to [1, 500].
	RadiusKm float64 `json:"radius_km"`
	// Page is >= 1; PageSize is in [1, 100].
	Page     int `json:"page"`
	PageSize int `json:"page_size"`

	options map[string]any
}

// NewSearchPlan is used by the planner to construct a plan with its private
// options bag. The options map must already be a copy the caller will not
// mutate.
func NewSearchPlan(p SearchPlan, options map[string]any) SearchPlan {
	p.options = options
	return p
}

// Option returns the named resolver tuning value from the plan's options bag.
// Values are opaque scalars; consumers must validate them against allow-lists
// before using them for anything other than bound query parameters.
func (p SearchPlan) Option(key string) (any, bool) {
	v, ok := p.options[key]
	return v, ok
}

// OptionString returns the named option as a string, or "" if absent or not
// a string.
func (p SearchPlan) OptionString(key string) string {
	if v, ok := p.options[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// OptionInt returns the named option as an int. JSON decoding produces
// float64 for numbers, so both forms are accepted. Non-numeric and
// non-finite values report ok=false.
func (p SearchPlan) OptionInt(key string) (int, bool) {
	v, ok := p.options[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if isFinite(n) {
			return int(n), true
		}
	}
	return 0, false
}

// OptionFloat returns the named option as a float64, requiring it to be
// finite.
func (p SearchPlan) OptionFloat(key string) (float64, bool) {
	v, ok := p.options[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		if isFinite(n) {
			return n, true
		}
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
