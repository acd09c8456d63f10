//go:build sqlite

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // CGO-less SQLite driver

	"staysearch/internal/domain"
	"staysearch/internal/geo"
	"staysearch/internal/storage"
)

// Store is a SQLite-backed property store.
type Store struct {
	db     *sql.DB
	limits storage.Limits
}

var _ storage.Store = (*Store)(nil)
var _ storage.HealthCheck = (*Store)(nil)

// New opens (or creates) the database at dsn and applies pending migrations,
// resolving under the shipped cap policy.
func New(dsn string) (*Store, error) {
	return NewLimits(dsn, storage.DefaultLimits())
}

// NewLimits is New with an operator-configured cap policy.
func NewLimits(dsn string, limits storage.Limits) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000; PRAGMA foreign_keys=ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, limits: limits}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateProperty(ctx context.Context, in domain.CreateProperty) (domain.Property, error) {
	if in.Name == "" {
		return domain.Property{}, errors.New("property name required")
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO properties(name, city, country, latitude, longitude, max_guests, property_type, nightly_rate, currency, created_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Name, in.City, in.Country, in.Latitude, in.Longitude, in.MaxGuests,
		in.PropertyType, in.NightlyRate, in.Currency, now.Format(time.RFC3339))
	if err != nil {
		return domain.Property{}, storage.WrapUnavailable(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Property{}, storage.WrapUnavailable(err)
	}
	return domain.Property{
		ID:           id,
		Name:         in.Name,
		City:         in.City,
		Country:      in.Country,
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		MaxGuests:    in.MaxGuests,
		PropertyType: in.PropertyType,
		NightlyRate:  in.NightlyRate,
		Currency:     in.Currency,
		CreatedAt:    now,
	}, nil
}

// ResolveCandidates runs the shared candidate query against SQLite. The SQL
// does the cheap part: a bounding-box prefilter on the allow-listed geo
// columns plus the capacity threshold, ordered by id. The precise
// great-circle cut happens here in Go, SQLite having no trig functions worth
// relying on, and the hard cap applies to the rows that survive it.
func (s *Store) ResolveCandidates(ctx context.Context, plan domain.SearchPlan) ([]domain.CandidateProperty, error) {
	q := storage.BuildCandidateQueryLimits(plan, s.limits)
	box := geo.Bounds(q.Center.Lat, q.Center.Lon, q.RadiusKm)

	// Identifiers come from the allow-lists in BuildCandidateQuery, never
	// from request data. Everything else is a bound parameter.
	query := fmt.Sprintf(
		`SELECT id, name, city, country, latitude, longitude, max_guests, property_type, nightly_rate, currency
		 FROM properties
		 WHERE %s BETWEEN ? AND ? AND %s BETWEEN ? AND ?`,
		q.Geo.Lat, q.Geo.Lon)
	args := []any{box.MinLat, box.MaxLat, box.MinLon, box.MaxLon}
	if q.CapacityColumn != "" {
		query += fmt.Sprintf(` AND %s >= ?`, q.CapacityColumn)
		args = append(args, q.Guests)
	}
	query += ` ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storage.WrapUnavailable(err)
	}
	defer rows.Close()

	out := make([]domain.CandidateProperty, 0, 16)
	for rows.Next() {
		if len(out) >= q.Limit {
			break
		}
		p, err := scanProperty(rows)
		if err != nil {
			return nil, storage.WrapMalformedRow(err)
		}
		dist := geo.DistanceKm(q.Center.Lat, q.Center.Lon, p.Latitude, p.Longitude)
		if dist > q.RadiusKm {
			continue
		}
		out = append(out, storage.MapCandidate(p, dist))
	}
	if err := rows.Err(); err != nil {
		return nil, storage.WrapUnavailable(err)
	}
	return out, nil
}

func scanProperty(rows *sql.Rows) (domain.Property, error) {
	var p domain.Property
	var city, country, ptype, currency sql.NullString
	var rate sql.NullFloat64
	if err := rows.Scan(&p.ID, &p.Name, &city, &country, &p.Latitude, &p.Longitude,
		&p.MaxGuests, &ptype, &rate, &currency); err != nil {
		return domain.Property{}, err
	}
	p.City = city.String
	p.Country = country.String
	p.PropertyType = ptype.String
	p.NightlyRate = rate.Float64
	p.Currency = currency.String
	return p, nil
}
