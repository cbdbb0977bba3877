// Package metrics exposes Prometheus instrumentation for view builds and
// aggregate queries.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tip-aru/rdmo/internal/aggregate"
	"github.com/tip-aru/rdmo/internal/view"
)

// Query outcomes.
const (
	OutcomeSelected    = "selected"
	OutcomeNoSelection = "no_selection"
	OutcomeNoMatches   = "no_matches"
)

// Metrics holds the collectors of one registry. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	reg *prometheus.Registry

	builds        prometheus.Counter
	buildDuration prometheus.Histogram
	viewRows      prometheus.Gauge
	viewPubs      prometheus.Gauge
	excluded      *prometheus.GaugeVec

	queries       *prometheus.CounterVec
	queryDuration prometheus.Histogram
}

// New registers the rdmo collectors, plus the Go and process collectors, on
// a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		builds: f.NewCounter(prometheus.CounterOpts{
			Name: "rdmo_view_builds_total",
			Help: "Total number of view rebuilds",
		}),
		buildDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "rdmo_view_build_duration_seconds",
			Help:    "Duration of fetch plus view build",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		}),
		viewRows: f.NewGauge(prometheus.GaugeOpts{
			Name: "rdmo_view_rows",
			Help: "Rows in the current view",
		}),
		viewPubs: f.NewGauge(prometheus.GaugeOpts{
			Name: "rdmo_view_publications",
			Help: "Distinct publications in the current view",
		}),
		excluded: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rdmo_view_excluded_records",
			Help: "Records excluded from the current view, by reason",
		}, []string{"reason"}),
		queries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rdmo_queries_total",
			Help: "Aggregate queries served, by outcome",
		}, []string{"outcome"}),
		queryDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "rdmo_query_duration_seconds",
			Help:    "Duration of aggregate queries",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
	}
}

// Registry returns the registry backing m, for serving /metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

// ObserveBuild records a completed view build.
func (m *Metrics) ObserveBuild(stats view.Stats, d time.Duration) {
	if m == nil {
		return
	}
	m.builds.Inc()
	m.buildDuration.Observe(d.Seconds())
	m.viewRows.Set(float64(stats.Rows))
	m.viewPubs.Set(float64(stats.Publications))
	m.excluded.Reset()
	for reason, n := range stats.Excluded {
		m.excluded.WithLabelValues(string(reason)).Set(float64(n))
	}
}

// ObserveQuery records a served aggregate query.
func (m *Metrics) ObserveQuery(resp aggregate.Response, d time.Duration) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(Outcome(resp)).Inc()
	m.queryDuration.Observe(d.Seconds())
}

// Outcome classifies a query response.
func Outcome(resp aggregate.Response) string {
	switch {
	case !resp.Selected || resp.Result == nil:
		return OutcomeNoSelection
	case resp.Result.Rows == 0:
		return OutcomeNoMatches
	default:
		return OutcomeSelected
	}
}
