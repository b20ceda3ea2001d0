package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	ApplicationsCreated *prometheus.CounterVec
	TestResultsRecorded *prometheus.CounterVec
	SearchesRecorded    prometheus.Counter
	EntriesRevealed     prometheus.Counter
	RequestDuration     *prometheus.HistogramVec
}

// New creates all metrics and registers them with the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates all metrics against the given registerer. Tests pass a
// fresh registry so repeated construction does not panic.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ApplicationsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "seva_applications_created_total",
			Help: "Total number of applications submitted, by kind.",
		}, []string{"kind"}),
		TestResultsRecorded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "seva_test_results_recorded_total",
			Help: "Total number of LL test results recorded, by outcome.",
		}, []string{"outcome"}),
		SearchesRecorded: factory.NewCounter(prometheus.CounterOpts{
			Name: "seva_pan_searches_recorded_total",
			Help: "Total number of PAN search history entries recorded.",
		}),
		EntriesRevealed: factory.NewCounter(prometheus.CounterOpts{
			Name: "seva_history_entries_revealed_total",
			Help: "Total number of history entries made visible by admin reveal.",
		}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "seva_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// IncApplicationsCreated increments the application counter for a kind.
func (m *Metrics) IncApplicationsCreated(kind string) {
	if m == nil {
		return
	}
	m.ApplicationsCreated.WithLabelValues(kind).Inc()
}

// IncTestResultsRecorded increments the test result counter for an outcome.
func (m *Metrics) IncTestResultsRecorded(outcome string) {
	if m == nil {
		return
	}
	m.TestResultsRecorded.WithLabelValues(outcome).Inc()
}

// IncSearchesRecorded increments the search history counter.
func (m *Metrics) IncSearchesRecorded() {
	if m == nil {
		return
	}
	m.SearchesRecorded.Inc()
}

// AddEntriesRevealed adds n revealed entries to the reveal counter.
func (m *Metrics) AddEntriesRevealed(n int64) {
	if m == nil {
		return
	}
	m.EntriesRevealed.Add(float64(n))
}
