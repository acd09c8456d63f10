// Package planner turns raw search input into a validated, normalized
// SearchPlan. It is pure: no I/O, no clock, no randomness.
package planner

import (
	"errors"
	"math"
	"strings"
	"time"

	"staysearch/internal/domain"
)

const dateLayout = "2006-01-02"

// Normalization bounds. Geography and dates are rejected when invalid;
// pagination and radius are quality-of-service knobs and are clamped
// instead, so a sloppy caller still gets a usable page.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	DefaultRadiusKm = 10.0
	MinRadiusKm     = 1.0
	MaxRadiusKm     = 500.0
)

// BuildPlan validates in and produces a frozen SearchPlan.
// Invalid dates, coordinates, or guest counts fail with a *PlanError
// wrapping the matching sentinel; page, page size, and radius never fail
// and are clamped to their documented bounds.
func BuildPlan(in domain.SearchInput) (domain.SearchPlan, error) {
	checkIn, err := parseDate(in.CheckIn)
	if err != nil {
		return domain.SearchPlan{}, &PlanError{Field: "check_in", Reason: "must be a YYYY-MM-DD date", Err: ErrInvalidCheckIn}
	}
	checkOut, err := parseDate(in.CheckOut)
	if err != nil {
		return domain.SearchPlan{}, &PlanError{Field: "check_out", Reason: "must be a YYYY-MM-DD date", Err: ErrInvalidCheckOut}
	}
	if !checkIn.Before(checkOut) {
		return domain.SearchPlan{}, &PlanError{Field: "check_in", Reason: "check-in must be before check-out", Err: ErrArrivalAfterDeparture}
	}
	nights := int(checkOut.Sub(checkIn).Hours() / 24)
	if nights < 1 {
		return domain.SearchPlan{}, &PlanError{Field: "check_out", Reason: "stay must cover at least one night", Err: ErrStayTooShort}
	}

	if !isFinite(in.Latitude) || in.Latitude < -90 || in.Latitude > 90 {
		return domain.SearchPlan{}, &PlanError{Field: "latitude", Reason: "must be in [-90, 90]", Err: ErrInvalidLatitude}
	}
	if !isFinite(in.Longitude) || in.Longitude < -180 || in.Longitude > 180 {
		return domain.SearchPlan{}, &PlanError{Field: "longitude", Reason: "must be in [-180, 180]", Err: ErrInvalidLongitude}
	}

	if !isFinite(in.Adults) || in.Adults < 0 {
		return domain.SearchPlan{}, &PlanError{Field: "adults", Reason: "must be a non-negative number", Err: ErrInvalidGuestCounts}
	}
	if !isFinite(in.Children) || in.Children < 0 {
		return domain.SearchPlan{}, &PlanError{Field: "children", Reason: "must be a non-negative number", Err: ErrInvalidGuestCounts}
	}
	adults := int(in.Adults)
	children := int(in.Children)
	if adults+children == 0 {
		return domain.SearchPlan{}, &PlanError{Field: "adults", Reason: "at least one guest is required", Err: ErrNoGuests}
	}

	plan := domain.SearchPlan{
		CheckIn:     checkIn,
		CheckOut:    checkOut,
		Nights:      nights,
		Guests:      adults + children,
		HasChildren: children > 0,
		Geo:         domain.Geo{Lat: in.Latitude, Lon: in.Longitude},
		RadiusKm:    normalizeRadius(in.Filters),
		Page:        normalizePage(in.Page),
		PageSize:    normalizePageSize(in.PageSize),
	}

	// Shallow-copy the filter map so later mutation of the caller's input
	// cannot reach into the frozen plan.
	options := make(map[string]any, len(in.Filters))
	for k, v := range in.Filters {
		options[k] = v
	}
	return domain.NewSearchPlan(plan, options), nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	return time.ParseInLocation(dateLayout, s, time.UTC)
}

func normalizePage(page int) int {
	if page < 1 {
		return DefaultPage
	}
	return page
}

// normalizePageSize defaults a missing (zero) page size and clamps explicit
// values into [1, MaxPageSize].
func normalizePageSize(size int) int {
	switch {
	case size == 0:
		return DefaultPageSize
	case size < 1:
		return 1
	case size > MaxPageSize:
		return MaxPageSize
	}
	return size
}

// normalizeRadius reads radius_km (or the legacy radius key) from the filter
// map. Missing, non-numeric, or non-finite values fall back to the default
// rather than erroring.
func normalizeRadius(filters map[string]any) float64 {
	raw, ok := filters["radius_km"]
	if !ok {
		raw, ok = filters["radius"]
	}
	if !ok {
		return DefaultRadiusKm
	}

	var r float64
	switch v := raw.(type) {
	case float64:
		r = v
	case int:
		r = float64(v)
	case int64:
		r = float64(v)
	default:
		return DefaultRadiusKm
	}
	if !isFinite(r) {
		return DefaultRadiusKm
	}
	if r < MinRadiusKm {
		return MinRadiusKm
	}
	if r > MaxRadiusKm {
		return MaxRadiusKm
	}
	return r
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
