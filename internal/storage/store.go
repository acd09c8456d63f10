// Package storage provides the property store interface, the shared
// candidate query policy, and an in-memory implementation used by the
// default build and the tests. SQLite and PostgreSQL backends live in
// subpackages behind build tags.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"staysearch/internal/domain"
	"staysearch/internal/geo"
)

// Store is the property data store seen by the search pipeline.
type Store interface {
	// ResolveCandidates returns every stored property that satisfies the
	// plan's capacity and radius filters, ordered by ID ascending, capped
	// at the effective hard limit. Identical plan and data produce
	// identical output.
	ResolveCandidates(ctx context.Context, plan domain.SearchPlan) ([]domain.CandidateProperty, error)

	// CreateProperty adds a listing. Used by seeding and tests; the
	// search path itself is read-only.
	CreateProperty(ctx context.Context, in domain.CreateProperty) (domain.Property, error)

	// Close releases any underlying resources.
	Close() error
}

// HealthCheck is implemented by backends with a real connection to ping.
type HealthCheck interface {
	Ping(ctx context.Context) error
}

// MemoryStore is a Store backed by a slice. It is the default backend when
// the binary is built without a database tag, and the workhorse of the unit
// tests.
type MemoryStore struct {
	limits Limits

	mu     sync.RWMutex
	nextID int64
	props  []domain.Property
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store under the shipped cap
// policy.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreLimits(DefaultLimits())
}

// NewMemoryStoreLimits returns an empty in-memory store resolving under the
// given operator-configured cap policy.
func NewMemoryStoreLimits(limits Limits) *MemoryStore {
	return &MemoryStore{limits: limits, nextID: 1}
}

func (m *MemoryStore) CreateProperty(ctx context.Context, in domain.CreateProperty) (domain.Property, error) {
	if in.Name == "" {
		return domain.Property{}, fmt.Errorf("property name required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p := domain.Property{
		ID:           m.nextID,
		Name:         in.Name,
		City:         in.City,
		Country:      in.Country,
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		MaxGuests:    in.MaxGuests,
		PropertyType: in.PropertyType,
		NightlyRate:  in.NightlyRate,
		Currency:     in.Currency,
		CreatedAt:    time.Now().UTC(),
	}
	m.nextID++
	m.props = append(m.props, p)
	return p, nil
}

// ResolveCandidates applies the shared candidate query policy in memory:
// capacity threshold (unless disabled by an unknown column alias), precise
// great-circle radius filter, ID-ascending order, hard cap.
func (m *MemoryStore) ResolveCandidates(ctx context.Context, plan domain.SearchPlan) ([]domain.CandidateProperty, error) {
	if err := ctx.Err(); err != nil {
		return nil, WrapUnavailable(err)
	}
	q := BuildCandidateQueryLimits(plan, m.limits)

	m.mu.RLock()
	defer m.mu.RUnlock()

	ordered := make([]domain.Property, len(m.props))
	copy(ordered, m.props)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	out := make([]domain.CandidateProperty, 0, min(len(ordered), q.Limit))
	for _, p := range ordered {
		if len(out) >= q.Limit {
			break
		}
		if q.CapacityColumn != "" && p.MaxGuests < q.Guests {
			continue
		}
		dist := geo.DistanceKm(q.Center.Lat, q.Center.Lon, p.Latitude, p.Longitude)
		if dist > q.RadiusKm {
			continue
		}
		out = append(out, MapCandidate(p, dist))
	}
	return out, nil
}

// Close is a no-op for MemoryStore as it holds no external resources.
func (m *MemoryStore) Close() error {
	return nil
}

// MapCandidate projects a stored property plus its computed distance into
// the candidate shape all backends return.
func MapCandidate(p domain.Property, distanceKm float64) domain.CandidateProperty {
	rounded := geo.RoundKm(distanceKm)
	return domain.CandidateProperty{
		ID:           p.ID,
		Name:         p.Name,
		City:         p.City,
		Country:      p.Country,
		Geo:          domain.Geo{Lat: p.Latitude, Lon: p.Longitude},
		DistanceKm:   rounded,
		Distance:     fmt.Sprintf("%.1f km", distanceKm),
		MaxGuests:    p.MaxGuests,
		PropertyType: p.PropertyType,
		NightlyRate:  p.NightlyRate,
		Currency:     p.Currency,
	}
}
