package scraper

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.IncItems()
	m.IncPages()
	m.IncUpsert("inserted")
	m.IncError(errors.New("boom"))
	m.IncRun("completed")
}

func TestMetricsCount(t *testing.T) {
	m := NewMetrics()

	m.IncItems()
	m.IncItems()
	m.IncUpsert("inserted")
	m.IncUpsert("updated")
	m.IncUpsert("updated")
	m.IncError(ErrNavigationTimeout{Err: errors.New("timeout")})
	m.IncRun("partial")

	if got := testutil.ToFloat64(m.ItemsExtracted); got != 2 {
		t.Errorf("items extracted: got %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.UpsertsTotal.WithLabelValues("updated")); got != 2 {
		t.Errorf("updated upserts: got %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ErrorsTotal.WithLabelValues("navigation_timeout")); got != 1 {
		t.Errorf("timeout errors: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.RunsTotal.WithLabelValues("partial")); got != 1 {
		t.Errorf("partial runs: got %v, want 1", got)
	}
}

func TestMetricsHandlerServesRegistry(t *testing.T) {
	m := NewMetrics()
	m.IncItems()
	m.IncRun("completed")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "leadgen_items_extracted_total 1") {
		t.Errorf("items counter not exposed:\n%s", body)
	}
	if !strings.Contains(body, `leadgen_runs_total{status="completed"} 1`) {
		t.Errorf("runs counter not exposed:\n%s", body)
	}
}
