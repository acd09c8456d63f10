// Package http exposes the search pipeline over HTTP.
package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"

	apidocs "staysearch/docs"
	"staysearch/internal/observability"
	"staysearch/internal/pipeline"
	"staysearch/internal/storage"
)

type apiError struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// Server routes search requests into the pipeline.
type Server struct {
	mux      *http.ServeMux
	pipeline *pipeline.Pipeline
	store    storage.Store
	logger   observability.Logger
	metrics  *observability.Metrics
}

// NewServer creates a Server. metrics may be nil when collection is
// disabled.
func NewServer(mux *http.ServeMux, p *pipeline.Pipeline, store storage.Store, logger observability.Logger, metrics *observability.Metrics) *Server {
	if logger == nil {
		logger = observability.NewLogger(observability.DefaultConfig())
	}
	return &Server{
		mux:      mux,
		pipeline: p,
		store:    store,
		logger:   logger.WithComponent("http"),
		metrics:  metrics,
	}
}

// RegisterRoutes installs all handlers on the server's mux.
func (s *Server) RegisterRoutes() {
	s.mux.HandleFunc("/openapi.yaml", s.handleOpenAPISpec)
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/api/v1/search", s.handleSearch)
	s.mux.HandleFunc("/api/v1/properties", s.handleProperties)
	if s.metrics != nil {
		s.mux.Handle("/metrics", s.metrics.Handler())
	}
}

func (s *Server) handleOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErr(r, w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(apidocs.OpenAPISpec)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErr(r, w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	if hc, ok := s.store.(storage.HealthCheck); ok {
		if err := hc.Ping(r.Context()); err != nil {
			s.writeErr(r, w, http.StatusServiceUnavailable, "store unreachable", err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr logs the failure and reports 5xx responses to Sentry before
// answering the client.
func (s *Server) writeErr(r *http.Request, w http.ResponseWriter, code int, msg, detail string) {
	s.logger.ErrorContext(r.Context(), "http error",
		"status", code,
		"path", r.URL.Path,
		"error", msg,
		"detail", detail,
	)
	if code >= 500 {
		sentry.CaptureMessage(fmt.Sprintf("HTTP %d: %s (detail: %s)", code, msg, detail))
	}
	writeJSON(w, code, apiError{Error: msg, Detail: detail})
}
