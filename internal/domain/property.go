package domain

import "time"

// Property is a stored listing row. ID is the stable identity candidate
// ordering relies on.
type Property struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	City         string    `json:"city,omitempty"`
	Country      string    `json:"country,omitempty"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	MaxGuests    int       `json:"max_guests,omitempty"`
	PropertyType string    `json:"property_type,omitempty"`
	NightlyRate  float64   `json:"nightly_rate,omitempty"`
	Currency     string    `json:"currency,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateProperty is the input for adding a listing to the store. It also
// carries YAML tags so seed files can use the same field names as the API.
type CreateProperty struct {
	Name         string  `json:"name" yaml:"name"`
	City         string  `json:"city,omitempty" yaml:"city"`
	Country      string  `json:"country,omitempty" yaml:"country"`
	Latitude     float64 `json:"latitude" yaml:"latitude"`
	Longitude    float64 `json:"longitude" yaml:"longitude"`
	MaxGuests    int     `json:"max_guests,omitempty" yaml:"max_guests"`
	PropertyType string  `json:"property_type,omitempty" yaml:"property_type"`
	NightlyRate  float64 `json:"nightly_rate,omitempty" yaml:"nightly_rate"`
	Currency     string  `json:"currency,omitempty" yaml:"currency"`
}

// CandidateProperty is a property that passed the capacity and radius
// filters. Later pipeline stages only ever add information; fields present
// here stay valid through the whole chain.
type CandidateProperty struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	// City and Country are the stored location text for display.
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
	Geo     Geo    `json:"geo"`
	// DistanceKm is the great-circle distance from the search point,
	// rounded to two decimals.
	DistanceKm float64 `json:"distance_km"`
	// Distance is a display form of DistanceKm, e.g. "3.4 km".
	Distance string `json:"distance"`
	// MaxGuests is the stored capacity, 0 when the deployment has no
	// capacity column.
	MaxGuests int `json:"max_guests,omitempty"`
	// PropertyType is optional listing metadata ("apartment", "house", ...).
	PropertyType string `json:"property_type,omitempty"`
	// NightlyRate and Currency are carried for the pricing stage when the
	// store has them; zero rate means unknown.
	NightlyRate float64 `json:"nightly_rate,omitempty"`
	Currency    string  `json:"currency,omitempty"`
}

// AvailableProperty is a candidate the availability stage accepted for the
// plan's stay window.
type AvailableProperty struct {
	CandidateProperty

	Available bool `json:"available"`
	// UnitID identifies the bookable unit when the availability source
	// distinguishes units within a property.
	UnitID string `json:"unit_id,omitempty"`
}

// PricedProperty is an available property with a total price for the stay.
type PricedProperty struct {
	AvailableProperty

	// TotalPrice is the price for the full stay. The shipped pricing stage
	// only multiplies the stored nightly rate by nights; 0 means no rate
	// was available.
	TotalPrice float64 `json:"total_price"`
	// PerNight is the effective per-night price, when known.
	PerNight float64 `json:"per_night,omitempty"`
}

// Pagination describes the slice of the ranked list a SearchResult holds.
// Total counts the ranked list before slicing, not the raw candidate rows.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// SearchResult is the final, read-only outcome of a search.
type SearchResult struct {
	Properties []PricedProperty `json:"properties"`
	Pagination Pagination       `json:"pagination"`
}
