package observability

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestDefaultMetricsConfig(t *testing.T) {
	cfg := DefaultMetricsConfig()
	if !cfg.Enabled {
		t.Error("expected metrics enabled by default")
	}
	if cfg.Namespace != "staysearch" {
		t.Errorf("namespace = %q, want staysearch", cfg.Namespace)
	}
}

func TestMetricsConfigFromEnv(t *testing.T) {
	t.Setenv("STAYSEARCH_METRICS_ENABLED", "false")
	t.Setenv("APP_VERSION", "1.2.3")

	cfg := MetricsConfigFromEnv()
	if cfg.Enabled {
		t.Error("expected metrics disabled via env")
	}
	if cfg.Version != "1.2.3" {
		t.Errorf("version = %q, want 1.2.3", cfg.Version)
	}
}

func TestMetrics_Exposition(t *testing.T) {
	m := NewMetrics(MetricsConfig{Namespace: "staysearch", Version: "1.0.0"})
	m.RecordSearch(SearchOutcomeOK, 15*time.Millisecond)
	m.RecordSearch(SearchOutcomeOK, 25*time.Millisecond)
	m.RecordSearch(SearchOutcomeInvalid, 1*time.Millisecond)
	m.RecordCandidateRows(42)
	m.RecordStageFailure("availability")
	m.RecordStageFailure("availability")
	m.RecordStageFailure("pricing")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	for _, want := range []string{
		`staysearch_info{version="1.0.0"} 1`,
		`staysearch_searches_total{outcome="ok"} 2`,
		`staysearch_searches_total{outcome="invalid"} 1`,
		`staysearch_search_duration_seconds_count 3`,
		`staysearch_candidate_rows_total 42`,
		`staysearch_stage_failures_total{stage="availability"} 2`,
		`staysearch_stage_failures_total{stage="pricing"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition missing %q\n%s", want, body)
		}
	}
}

func TestMetrics_HandlerRejectsPost(t *testing.T) {
	m := NewMetrics(DefaultMetricsConfig())
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("POST", "/metrics", nil))
	if rec.Code != 405 {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
