// Package testutil provides helpers for search service integration tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"staysearch/internal/domain"
	searchhttp "staysearch/internal/http"
	"staysearch/internal/observability"
	"staysearch/internal/pipeline"
	"staysearch/internal/storage"
)

// Components holds everything a test server is built from.
type Components struct {
	Server  *httptest.Server
	Store   *storage.MemoryStore
	Metrics *observability.Metrics
	Logger  observability.Logger
}

// NewServer creates a fully wired test server over an in-memory store seeded
// with the given listings. The server is torn down with the test.
func NewServer(t *testing.T, seed []domain.CreateProperty) *Components {
	t.Helper()

	store := storage.NewMemoryStore()
	for _, p := range seed {
		if _, err := store.CreateProperty(context.Background(), p); err != nil {
			t.Fatalf("seed property %q: %v", p.Name, err)
		}
	}

	logger := observability.NewLogger(observability.Config{
		Level:  "error",
		Format: "json",
		Output: io.Discard,
	})
	metrics := observability.NewMetrics(observability.MetricsConfig{
		Namespace: "staysearch",
		Version:   "test",
	})

	mux := http.NewServeMux()
	pl := pipeline.New(store).WithInstrumentation(metrics)
	srv := searchhttp.NewServer(mux, pl, store, logger, metrics)
	srv.RegisterRoutes()

	handler := searchhttp.ApplyMiddlewares(mux,
		searchhttp.RequestIDMiddleware(),
		searchhttp.LoggingMiddleware(logger),
	)
	ts := httptest.NewServer(handler)
	t.Cleanup(func() {
		ts.Close()
		_ = store.Close()
	})

	return &Components{Server: ts, Store: store, Metrics: metrics, Logger: logger}
}

// AmsterdamSeed returns the standard fixture: two Amsterdam listings within
// walking distance of the canal ring, plus one in Paris far outside any
// sensible radius.
func AmsterdamSeed() []domain.CreateProperty {
	return []domain.CreateProperty{
		{Name: "Canal View Loft", City: "Amsterdam", Country: "NL", Latitude: 52.3702, Longitude: 4.8952, MaxGuests: 4, NightlyRate: 140, Currency: "EUR"},
		{Name: "Jordaan Studio", City: "Amsterdam", Country: "NL", Latitude: 52.3747, Longitude: 4.8807, MaxGuests: 2, NightlyRate: 95, Currency: "EUR"},
		{Name: "Montmartre Flat", City: "Paris", Country: "FR", Latitude: 48.8867, Longitude: 2.3431, MaxGuests: 3, NightlyRate: 120, Currency: "EUR"},
	}
}

// URL returns the full URL for a given path.
func (c *Components) URL(path string) string {
	return c.Server.URL + path
}

// GetJSON performs a GET and unmarshals the JSON response into v. Returns
// the status code.
func GetJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	decodeBody(t, resp.Body, v)
	return resp.StatusCode
}

// PostJSON performs a POST with the given body and unmarshals the JSON
// response into v. Returns the status code.
func PostJSON(t *testing.T, url string, body any, v any) int {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	decodeBody(t, resp.Body, v)
	return resp.StatusCode
}

func decodeBody(t *testing.T, body io.Reader, v any) {
	t.Helper()
	if v == nil {
		_, _ = io.Copy(io.Discard, body)
		return
	}
	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("unmarshal response: %v\nbody: %s", err, data)
	}
}
