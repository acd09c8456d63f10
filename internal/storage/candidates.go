package storage

import (
	"staysearch/internal/domain"
)

// Option keys the resolver recognizes in a plan's options bag. Values under
// these keys select query shape; everything else in the bag is ignored here.
const (
	OptionCapacityColumn     = "capacity_column"
	OptionGeoColumns         = "geo_columns"
	OptionCandidateHardLimit = "candidate_hard_limit"
)

// Candidate result caps. The default applies when the request asks for
// nothing; a per-request override is clamped to the absolute ceiling so no
// request shape can blow up downstream memory. Operators can replace both
// through Limits.
const (
	DefaultCandidateLimit = 1000
	MaxCandidateLimit     = 3000
)

// Limits is the operator-configured cap policy a store resolves candidates
// under. Default applies when a request carries no override; Max is the
// ceiling any override is clamped to.
type Limits struct {
	Default int
	Max     int
}

// DefaultLimits returns the shipped cap policy.
func DefaultLimits() Limits {
	return Limits{Default: DefaultCandidateLimit, Max: MaxCandidateLimit}
}

// normalize fills zero or negative values with the shipped caps and keeps
// Default within Max, so a partially configured policy stays usable.
func (l Limits) normalize() Limits {
	if l.Default < 1 {
		l.Default = DefaultCandidateLimit
	}
	if l.Max < 1 {
		l.Max = MaxCandidateLimit
	}
	if l.Default > l.Max {
		l.Default = l.Max
	}
	return l
}

// capacityColumns is the fixed allow-list of capacity column identifiers.
// Only these aliases may ever reach an identifier position in SQL; anything
// else from the options bag is dropped, which turns injection attempts into
// "no capacity filter".
var capacityColumns = map[string]string{
	"max_guests": "max_guests",
	"capacity":   "capacity",
	"sleeps":     "sleeps",
}

// GeoColumns is a validated latitude/longitude column pair.
type GeoColumns struct {
	Lat string
	Lon string
}

// geoColumnSets is the fixed allow-list of geo column pairs. The default
// schema stores latitude/longitude; the latlng alias exists for externally
// managed property tables.
var geoColumnSets = map[string]GeoColumns{
	"coordinates": {Lat: "latitude", Lon: "longitude"},
	"latlng":      {Lat: "lat", Lon: "lng"},
}

// DefaultCapacityColumn is the capacity filter applied when the request does
// not pick one.
const DefaultCapacityColumn = "max_guests"

// DefaultGeoColumns is the geo pair used when the request does not pick one.
var DefaultGeoColumns = GeoColumns{Lat: "latitude", Lon: "longitude"}

// CandidateQuery is the backend-independent description of one candidate
// resolution: which allow-listed identifiers to use, the bound filter
// values, and the effective row cap. Backends turn it into their own SQL;
// the identifiers here are the only ones that may be spliced into query
// text.
type CandidateQuery struct {
	// CapacityColumn is the validated capacity identifier, or "" when the
	// capacity filter is disabled.
	CapacityColumn string
	// Geo is the validated latitude/longitude column pair.
	Geo GeoColumns
	// Guests is the capacity threshold (bound parameter).
	Guests int
	// Center and RadiusKm define the geospatial filter (bound parameters).
	Center   domain.Geo
	RadiusKm float64
	// Limit is the effective hard cap after clamping any override.
	Limit int
}

// BuildCandidateQuery derives the query description from a plan under the
// shipped cap policy.
func BuildCandidateQuery(plan domain.SearchPlan) CandidateQuery {
	return BuildCandidateQueryLimits(plan, DefaultLimits())
}

// BuildCandidateQueryLimits derives the query description from a plan. All
// identifier choices go through the allow-lists; unknown values degrade to
// the documented defaults (or, for capacity, to no filter at all) instead of
// erroring, since the options bag is a best-effort tuning surface. The cap
// comes from the operator-configured limits.
func BuildCandidateQueryLimits(plan domain.SearchPlan, limits Limits) CandidateQuery {
	limits = limits.normalize()
	q := CandidateQuery{
		CapacityColumn: DefaultCapacityColumn,
		Geo:            DefaultGeoColumns,
		Guests:         plan.Guests,
		Center:         plan.Geo,
		RadiusKm:       plan.RadiusKm,
		Limit:          limits.Default,
	}

	if raw := plan.OptionString(OptionCapacityColumn); raw != "" {
		if col, ok := capacityColumns[raw]; ok {
			q.CapacityColumn = col
		} else {
			// Unknown alias: drop the capacity filter rather than
			// interpreting caller data as an identifier.
			q.CapacityColumn = ""
		}
	}

	if raw := plan.OptionString(OptionGeoColumns); raw != "" {
		if cols, ok := geoColumnSets[raw]; ok {
			q.Geo = cols
		}
	}

	if override, ok := plan.OptionInt(OptionCandidateHardLimit); ok {
		q.Limit = clampLimit(override, limits)
	}
	return q
}

// clampLimit bounds a caller-supplied row cap to [1, limits.Max].
// Non-positive overrides fall back to the configured default.
func clampLimit(n int, limits Limits) int {
	if n < 1 {
		return limits.Default
	}
	if n > limits.Max {
		return limits.Max
	}
	return n
}
