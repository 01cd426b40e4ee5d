package scraper

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the scraper's Prometheus collectors on a dedicated
// registry. All helpers are nil-safe so tests can run without one.
type Metrics struct {
	Registry       *prometheus.Registry
	ItemsExtracted prometheus.Counter
	PagesWalked    prometheus.Counter
	UpsertsTotal   *prometheus.CounterVec
	ErrorsTotal    *prometheus.CounterVec
	RunsTotal      *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	items := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "leadgen_items_extracted_total",
		Help: "Business records successfully extracted.",
	})
	pages := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "leadgen_pages_walked_total",
		Help: "Result pages loaded by the pagination walker.",
	})
	upserts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "leadgen_upserts_total",
		Help: "Records persisted, by insert/update outcome.",
	}, []string{"result"})
	errors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "leadgen_errors_total",
		Help: "Scrape errors by type.",
	}, []string{"error_type"})
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "leadgen_runs_total",
		Help: "Finished runs by terminal status.",
	}, []string{"status"})

	registry.MustRegister(items, pages, upserts, errors, runs)

	return &Metrics{
		Registry:       registry,
		ItemsExtracted: items,
		PagesWalked:    pages,
		UpsertsTotal:   upserts,
		ErrorsTotal:    errors,
		RunsTotal:      runs,
	}
}

// Handler serves the registry for scraping by a Prometheus server.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) IncItems() {
	if m == nil {
		return
	}
	m.ItemsExtracted.Inc()
}

func (m *Metrics) IncPages() {
	if m == nil {
		return
	}
	m.PagesWalked.Inc()
}

func (m *Metrics) IncUpsert(result string) {
	if m == nil {
		return
	}
	m.UpsertsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) IncError(err error) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorTypeLabel(err)).Inc()
}

func (m *Metrics) IncRun(status string) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(status).Inc()
}
