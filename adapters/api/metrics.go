package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"clinsample/domain/design"
)

const outcomeSuccess = "success"

// Metrics holds the calculation counters on a private registry so several
// servers can coexist in one process
type Metrics struct {
	registry     *prometheus.Registry
	calculations *prometheus.CounterVec
	duration     *prometheus.HistogramVec
}

// NewMetrics registers the calculation collectors on a fresh registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clinsample_calculations_total",
			Help: "Sample size calculations by calculator kind and outcome.",
		}, []string{"kind", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clinsample_calculation_duration_seconds",
			Help:    "Time spent evaluating a single calculation.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"kind"}),
	}
	m.registry.MustRegister(m.calculations, m.duration)
	return m
}

// Handler serves the /metrics scrape endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Observe records one timed calculation
func (m *Metrics) Observe(kind design.Kind, outcome string, elapsed time.Duration) {
	m.Count(kind, outcome)
	m.duration.WithLabelValues(kindLabel(kind)).Observe(elapsed.Seconds())
}

// Count records one calculation outcome: "success" or an error code
func (m *Metrics) Count(kind design.Kind, outcome string) {
	m.calculations.WithLabelValues(kindLabel(kind), strings.ToLower(outcome)).Inc()
}

// kindLabel keeps label cardinality bounded to the known calculators
func kindLabel(kind design.Kind) string {
	if !kind.Valid() {
		return "unknown"
	}
	return string(kind)
}
