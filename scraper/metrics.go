package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the scraper.
type Metrics struct {
	Registry          *prometheus.Registry
	RequestsTotal     *prometheus.CounterVec
	RequestDuration   prometheus.Histogram
	ItemsScrapedTotal prometheus.Counter
	PagesSkipped      prometheus.Counter
	ItemsSkipped      prometheus.Counter
	DiscoveredPages   prometheus.Gauge
	ErrorsTotal       *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_requests_total",
			Help: "Total HTTP requests issued by the scraper.",
		},
		[]string{"phase"},
	)
	requestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scraper_request_duration_seconds",
			Help:    "HTTP request latency for scraper requests.",
			Buckets: prometheus.DefBuckets,
		},
	)
	itemsScraped := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_items_scraped_total",
			Help: "Total number of books appended to the catalog.",
		},
	)
	pagesSkipped := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_pages_skipped_total",
			Help: "Catalog pages skipped after a fetch or parse failure.",
		},
	)
	itemsSkipped := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_items_skipped_total",
			Help: "Catalog entries skipped after an extraction failure.",
		},
	)
	discovered := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scraper_discovered_pages",
			Help: "Page count reported by the pagination indicator.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_errors_total",
			Help: "Total number of scraper errors by type.",
		},
		[]string{"error_type"},
	)

	registry.MustRegister(requests, requestDuration, itemsScraped, pagesSkipped, itemsSkipped, discovered, errorsTotal)

	return &Metrics{
		Registry:          registry,
		RequestsTotal:     requests,
		RequestDuration:   requestDuration,
		ItemsScrapedTotal: itemsScraped,
		PagesSkipped:      pagesSkipped,
		ItemsSkipped:      itemsSkipped,
		DiscoveredPages:   discovered,
		ErrorsTotal:       errorsTotal,
	}
}

// IncRequest increments the requests total counter.
func (m *Metrics) IncRequest(phase string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(phase).Inc()
}

// ObserveDuration records an HTTP request duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.Observe(d.Seconds())
}

// IncItems increments the items scraped counter.
func (m *Metrics) IncItems() {
	if m == nil {
		return
	}
	m.ItemsScrapedTotal.Inc()
}

// IncPagesSkipped increments the skipped pages counter.
func (m *Metrics) IncPagesSkipped() {
	if m == nil {
		return
	}
	m.PagesSkipped.Inc()
}

// IncItemsSkipped increments the skipped items counter.
func (m *Metrics) IncItemsSkipped() {
	if m == nil {
		return
	}
	m.ItemsSkipped.Inc()
}

// SetDiscoveredPages records the discovered page count.
func (m *Metrics) SetDiscoveredPages(n int) {
	if m == nil {
		return
	}
	m.DiscoveredPages.Set(float64(n))
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
