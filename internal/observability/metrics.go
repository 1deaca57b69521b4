// Package observability provides Prometheus metrics for engine runs.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultNamespace prefixes every metric name when none is given.
const DefaultNamespace = "chartlab"

// Run kinds used as the "kind" label.
const (
	KindSeries = "series"
	KindRank   = "rank"
)

// Metrics holds the Prometheus collectors for one registry.
type Metrics struct {
	gatherer prometheus.Gatherer

	// Run metrics
	RunsTotal   *prometheus.CounterVec
	RunDuration *prometheus.HistogramVec

	// Record flow
	RecordsRead    *prometheus.CounterVec
	RecordsInvalid *prometheus.CounterVec
	RecordsStale   *prometheus.CounterVec

	// Output
	RowsEmitted     *prometheus.CounterVec
	KeysSelected    *prometheus.CounterVec
	EntitiesRanked  *prometheus.CounterVec
	SourceNotLoaded *prometheus.CounterVec
}

// SeriesStats summarises one series run.
type SeriesStats struct {
	Family   string
	Fetched  bool
	Records  int
	Invalid  int
	Retained int
	Rows     int
	Keys     int
	Duration time.Duration
}

// RankStats summarises one ranking run.
type RankStats struct {
	Family   string
	Fetched  bool
	Entities int
	Duration time.Duration
}

// NewMetrics registers the collectors on reg. A nil reg gets a fresh
// private registry.
func NewMetrics(namespace string, reg *prometheus.Registry) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: reg,

		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "runs_total",
			Help:      "Total number of engine runs by family and kind",
		}, []string{"family", "kind"}),
		RunDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "run_duration_seconds",
			Help:      "Engine run duration in seconds",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"family", "kind"}),

		RecordsRead: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "records",
			Name:      "read_total",
			Help:      "Records passed to series runs after category and project filtering",
		}, []string{"family"}),
		RecordsInvalid: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "records",
			Name:      "invalid_datetime_total",
			Help:      "Records dropped because their datetime could not be parsed",
		}, []string{"family"}),
		RecordsStale: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "records",
			Name:      "outside_window_total",
			Help:      "Valid records dropped by the recency window",
		}, []string{"family"}),

		RowsEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "output",
			Name:      "rows_total",
			Help:      "Chart rows emitted by series runs",
		}, []string{"family"}),
		KeysSelected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "output",
			Name:      "keys_total",
			Help:      "Series keys selected by series runs",
		}, []string{"family"}),
		EntitiesRanked: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "output",
			Name:      "entities_total",
			Help:      "Entities returned by ranking runs",
		}, []string{"family"}),
		SourceNotLoaded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "source_not_fetched_total",
			Help:      "Runs that found their source collection unfetched",
		}, []string{"family", "kind"}),
	}
}

// ObserveSeries records one series run.
func (m *Metrics) ObserveSeries(s SeriesStats) {
	m.RunsTotal.WithLabelValues(s.Family, KindSeries).Inc()
	m.RunDuration.WithLabelValues(s.Family, KindSeries).Observe(s.Duration.Seconds())
	if !s.Fetched {
		m.SourceNotLoaded.WithLabelValues(s.Family, KindSeries).Inc()
		return
	}

	m.RecordsRead.WithLabelValues(s.Family).Add(float64(s.Records))
	m.RecordsInvalid.WithLabelValues(s.Family).Add(float64(s.Invalid))
	if stale := s.Records - s.Invalid - s.Retained; stale > 0 {
		m.RecordsStale.WithLabelValues(s.Family).Add(float64(stale))
	}
	m.RowsEmitted.WithLabelValues(s.Family).Add(float64(s.Rows))
	m.KeysSelected.WithLabelValues(s.Family).Add(float64(s.Keys))
}

// ObserveRank records one ranking run.
func (m *Metrics) ObserveRank(s RankStats) {
	m.RunsTotal.WithLabelValues(s.Family, KindRank).Inc()
	m.RunDuration.WithLabelValues(s.Family, KindRank).Observe(s.Duration.Seconds())
	if !s.Fetched {
		m.SourceNotLoaded.WithLabelValues(s.Family, KindRank).Inc()
		return
	}
	m.EntitiesRanked.WithLabelValues(s.Family).Add(float64(s.Entities))
}

// WriteTextfile writes every gathered metric to path in the text exposition
// format, replacing the file atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.gatherer)
}
