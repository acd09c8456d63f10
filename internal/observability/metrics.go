package observability

import (
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// MetricsConfig holds configuration for the metrics subsystem.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	Enabled bool
	// Namespace prefix for all metrics (default: staysearch).
	Namespace string
	// Version is the application version for the info metric.
	Version string
}

// DefaultMetricsConfig returns the default metrics configuration.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{Enabled: true, Namespace: "staysearch", Version: "dev"}
}

// MetricsConfigFromEnv creates a MetricsConfig from environment variables.
// STAYSEARCH_METRICS_ENABLED: true/false (default: true)
// APP_VERSION: version string (default: dev)
func MetricsConfigFromEnv() MetricsConfig {
	cfg := DefaultMetricsConfig()
	if v := os.Getenv("STAYSEARCH_METRICS_ENABLED"); v != "" {
		cfg.Enabled = strings.ToLower(v) == "true" || v == "1"
	}
	if v := os.Getenv("APP_VERSION"); v != "" {
		cfg.Version = v
	}
	return cfg
}

// Search outcomes recorded per request.
const (
	SearchOutcomeOK      = "ok"
	SearchOutcomeInvalid = "invalid"
	SearchOutcomeError   = "error"
)

// Metrics collects service counters. Safe for concurrent use.
type Metrics struct {
	namespace string
	version   string

	mu sync.RWMutex
	// searchCounts is keyed by outcome (ok, invalid, error).
	searchCounts map[string]*atomic.Int64
	// stageFailures is keyed by the pipeline stage that failed.
	stageFailures map[string]*atomic.Int64

	// candidateRows counts rows the resolver returned, summed across
	// searches, to watch how close traffic runs to the hard cap.
	candidateRows atomic.Int64

	searchDurations *durationCollector
}

// durationCollector keeps a sliding window of duration samples so quantiles
// can be computed on demand.
type durationCollector struct {
	mu      sync.Mutex
	samples []float64
	maxSize int
}

func newDurationCollector(maxSize int) *durationCollector {
	return &durationCollector{samples: make([]float64, 0, maxSize), maxSize: maxSize}
}

func (d *durationCollector) add(duration time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.samples) >= d.maxSize {
		copy(d.samples, d.samples[1:])
		d.samples = d.samples[:len(d.samples)-1]
	}
	d.samples = append(d.samples, duration.Seconds())
}

func (d *durationCollector) quantile(q float64) float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.samples) == 0 {
		return 0
	}
	sorted := make([]float64, len(d.samples))
	copy(sorted, d.samples)
	sort.Float64s(sorted)

	idx := q * float64(len(sorted)-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

func (d *durationCollector) sum() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	var total float64
	for _, s := range d.samples {
		total += s
	}
	return total
}

func (d *durationCollector) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.samples)
}

// NewMetrics creates a new Metrics collector.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		namespace:       cfg.Namespace,
		version:         cfg.Version,
		searchCounts:    make(map[string]*atomic.Int64),
		stageFailures:   make(map[string]*atomic.Int64),
		searchDurations: newDurationCollector(1000),
	}
}

// RecordSearch records one search request with its outcome and duration.
func (m *Metrics) RecordSearch(outcome string, duration time.Duration) {
	m.mu.Lock()
	counter, ok := m.searchCounts[outcome]
	if !ok {
		counter = &atomic.Int64{}
		m.searchCounts[outcome] = counter
	}
	m.mu.Unlock()
	counter.Add(1)
	m.searchDurations.add(duration)
}

// RecordStageFailure records a pipeline stage failure by stage name.
func (m *Metrics) RecordStageFailure(stage string) {
	m.mu.Lock()
	counter, ok := m.stageFailures[stage]
	if !ok {
		counter = &atomic.Int64{}
		m.stageFailures[stage] = counter
	}
	m.mu.Unlock()
	counter.Add(1)
}

// RecordCandidateRows adds the number of rows one resolution returned.
func (m *Metrics) RecordCandidateRows(n int) {
	m.candidateRows.Add(int64(n))
}

// Handler returns an http.Handler serving Prometheus text-format metrics.
func (m *Metrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		m.write(w)
	})
}

func (m *Metrics) write(w http.ResponseWriter) {
	fmt.Fprintf(w, "# HELP %s_info Application information\n", m.namespace)
	fmt.Fprintf(w, "# TYPE %s_info gauge\n", m.namespace)
	fmt.Fprintf(w, "%s_info{version=%q} 1\n\n", m.namespace, m.version)

	fmt.Fprintf(w, "# HELP %s_searches_total Total number of search requests by outcome\n", m.namespace)
	fmt.Fprintf(w, "# TYPE %s_searches_total counter\n", m.namespace)
	m.mu.RLock()
	outcomes := make([]string, 0, len(m.searchCounts))
	for k := range m.searchCounts {
		outcomes = append(outcomes, k)
	}
	sort.Strings(outcomes)
	for _, outcome := range outcomes {
		fmt.Fprintf(w, "%s_searches_total{outcome=%q} %d\n", m.namespace, outcome, m.searchCounts[outcome].Load())
	}
	m.mu.RUnlock()
	fmt.Fprintln(w)

	fmt.Fprintf(w, "# HELP %s_stage_failures_total Pipeline stage failures by failing stage\n", m.namespace)
	fmt.Fprintf(w, "# TYPE %s_stage_failures_total counter\n", m.namespace)
	m.mu.RLock()
	stages := make([]string, 0, len(m.stageFailures))
	for k := range m.stageFailures {
		stages = append(stages, k)
	}
	sort.Strings(stages)
	for _, stage := range stages {
		fmt.Fprintf(w, "%s_stage_failures_total{stage=%q} %d\n", m.namespace, stage, m.stageFailures[stage].Load())
	}
	m.mu.RUnlock()
	fmt.Fprintln(w)

	fmt.Fprintf(w, "# HELP %s_search_duration_seconds Search request duration in seconds\n", m.namespace)
	fmt.Fprintf(w, "# TYPE %s_search_duration_seconds summary\n", m.namespace)
	for _, q := range []float64{0.5, 0.9, 0.99} {
		fmt.Fprintf(w, "%s_search_duration_seconds{quantile=\"%.2f\"} %.6f\n", m.namespace, q, m.searchDurations.quantile(q))
	}
	fmt.Fprintf(w, "%s_search_duration_seconds_sum %.6f\n", m.namespace, m.searchDurations.sum())
	fmt.Fprintf(w, "%s_search_duration_seconds_count %d\n\n", m.namespace, m.searchDurations.count())

	fmt.Fprintf(w, "# HELP %s_candidate_rows_total Candidate rows returned by the resolver\n", m.namespace)
	fmt.Fprintf(w, "# TYPE %s_candidate_rows_total counter\n", m.namespace)
	fmt.Fprintf(w, "%s_candidate_rows_total %d\n", m.namespace, m.candidateRows.Load())
}
