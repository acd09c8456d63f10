package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"staysearch/internal/domain"
	"staysearch/internal/observability"
	"staysearch/internal/planner"
	"staysearch/internal/storage"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// handleSearch runs a search. GET encodes the request in query parameters,
// POST in a JSON body; both produce the same SearchInput.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var (
		in  domain.SearchInput
		err error
	)
	switch r.Method {
	case http.MethodGet:
		in, err = searchInputFromQuery(r)
	case http.MethodPost:
		err = decodeJSON(r, &in)
	default:
		s.writeErr(r, w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	if err != nil {
		s.writeErr(r, w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	start := time.Now()
	result, err := s.pipeline.Search(r.Context(), in)
	if err != nil {
		s.recordSearch(searchOutcome(err), start)
		s.writeSearchErr(r, w, err)
		return
	}
	s.recordSearch(observability.SearchOutcomeOK, start)

	s.logger.InfoContext(r.Context(), "search completed",
		"page", result.Pagination.Page,
		"page_size", result.Pagination.PageSize,
		"total", result.Pagination.Total,
	)
	writeJSON(w, http.StatusOK, result)
}

// writeSearchErr maps pipeline failures onto HTTP status codes. Validation
// failures are the caller's fault; store failures are ours or the
// database's.
func (s *Server) writeSearchErr(r *http.Request, w http.ResponseWriter, err error) {
	switch {
	case planner.IsValidationError(err):
		s.writeErr(r, w, http.StatusBadRequest, "invalid search request", err.Error())
	case errors.Is(err, storage.ErrStoreUnavailable):
		s.writeErr(r, w, http.StatusBadGateway, "property store unavailable", err.Error())
	case errors.Is(err, storage.ErrMalformedRow):
		s.writeErr(r, w, http.StatusInternalServerError, "malformed property data", err.Error())
	default:
		s.writeErr(r, w, http.StatusInternalServerError, "search failed", err.Error())
	}
}

func searchOutcome(err error) string {
	if planner.IsValidationError(err) {
		return observability.SearchOutcomeInvalid
	}
	return observability.SearchOutcomeError
}

func (s *Server) recordSearch(outcome string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordSearch(outcome, time.Since(start))
	}
}

// searchInputFromQuery decodes the GET form of a search request. Parse
// failures on numeric parameters are reported here; range checks belong to
// the planner.
func searchInputFromQuery(r *http.Request) (domain.SearchInput, error) {
	q := r.URL.Query()
	var in domain.SearchInput
	var err error

	if in.Latitude, err = parseFloatParam(q.Get("latitude"), "latitude"); err != nil {
		return in, err
	}
	if in.Longitude, err = parseFloatParam(q.Get("longitude"), "longitude"); err != nil {
		return in, err
	}
	in.CheckIn = q.Get("check_in")
	in.CheckOut = q.Get("check_out")
	if v := q.Get("adults"); v != "" {
		if in.Adults, err = parseFloatParam(v, "adults"); err != nil {
			return in, err
		}
	}
	if v := q.Get("children"); v != "" {
		if in.Children, err = parseFloatParam(v, "children"); err != nil {
			return in, err
		}
	}
	if v := q.Get("page"); v != "" {
		if in.Page, err = parseIntParam(v, "page"); err != nil {
			return in, err
		}
	}
	if v := q.Get("page_size"); v != "" {
		if in.PageSize, err = parseIntParam(v, "page_size"); err != nil {
			return in, err
		}
	}
	if v := q.Get("radius_km"); v != "" {
		radius, err := parseFloatParam(v, "radius_km")
		if err != nil {
			return in, err
		}
		in.Filters = map[string]any{"radius_km": radius}
	}
	return in, nil
}

func parseFloatParam(v, name string) (float64, error) {
	if v == "" {
		return 0, errors.New("missing parameter " + name)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.New("parameter " + name + " is not a number")
	}
	return f, nil
}

func parseIntParam(v, name string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New("parameter " + name + " is not an integer")
	}
	return n, nil
}

// handleProperties seeds listings. POST only; the search path never writes.
func (s *Server) handleProperties(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeErr(r, w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	var in domain.CreateProperty
	if err := decodeJSON(r, &in); err != nil {
		s.writeErr(r, w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	p, err := s.store.CreateProperty(r.Context(), in)
	if err != nil {
		if errors.Is(err, storage.ErrStoreUnavailable) {
			s.writeErr(r, w, http.StatusBadGateway, "property store unavailable", err.Error())
			return
		}
		s.writeErr(r, w, http.StatusBadRequest, "create property failed", err.Error())
		return
	}
	s.logger.InfoContext(r.Context(), "property created", "id", p.ID, "name", p.Name)
	writeJSON(w, http.StatusCreated, p)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
