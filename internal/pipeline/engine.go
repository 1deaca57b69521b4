// Package pipeline composes labeling, pivoting, accumulation, selection and
// trimming into the series each chart family renders.
package pipeline

import (
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"chart-metrics-lab/internal/cumulative"
	"chart-metrics-lab/internal/domain"
	"chart-metrics-lab/internal/labeling"
	"chart-metrics-lab/internal/logger"
	"chart-metrics-lab/internal/observability"
	"chart-metrics-lab/internal/pivot"
	"chart-metrics-lab/internal/share"
	"chart-metrics-lab/internal/sparse"
	"chart-metrics-lab/internal/topk"
)

// Engine runs family pipelines. It holds no per-call state and is safe for
// concurrent use.
type Engine struct {
	clock   func() time.Time
	log     *logrus.Entry
	metrics *observability.Metrics
}

// NewEngine creates an engine on the wall clock with logging discarded.
func NewEngine() *Engine {
	return &Engine{
		clock: time.Now,
		log:   logger.Discard(),
	}
}

// WithClock sets the time source used by the recency filter.
func (e *Engine) WithClock(clock func() time.Time) *Engine {
	e.clock = clock
	return e
}

// WithLogger sets the logger.
func (e *Engine) WithLogger(l logrus.FieldLogger) *Engine {
	e.log = logger.WithComponent(l, "pipeline")
	return e
}

// WithMetrics records run statistics on m.
func (e *Engine) WithMetrics(m *observability.Metrics) *Engine {
	e.metrics = m
	return e
}

func (e *Engine) observeSeries(s observability.SeriesStats, start time.Time) {
	if e.metrics == nil {
		return
	}
	s.Duration = time.Since(start)
	e.metrics.ObserveSeries(s)
}

// Run builds the series of family f.
//
// Steps: select source → category/project filter → label → recency filter →
// pivot (newest first) → reverse to chronological → optional running totals →
// sparse trim → key selection → optional share conversion.
// A collection that has not been fetched yields an empty result.
func (e *Engine) Run(f Family, req Request) Result {
	start := time.Now()
	stats := observability.SeriesStats{Family: f.Name}
	empty := Result{Rows: domain.Chronological{}}

	metrics := req.metrics(f)
	if len(metrics) == 0 {
		e.observeSeries(stats, start)
		return empty
	}

	g := domain.GranularityFor(req.SelectedLength)
	records, ok := e.selectRecords(f, req, g)
	if !ok {
		e.log.WithField("family", f.Name).Debug("source not fetched")
		e.observeSeries(stats, start)
		return empty
	}

	labeled := labeling.LabelAll(records, g)
	invalid := 0
	for _, r := range labeled {
		if !r.Valid {
			invalid++
		}
	}
	if invalid > 0 {
		e.log.WithFields(logrus.Fields{
			"family":  f.Name,
			"invalid": invalid,
		}).Warn("records with unparseable datetime dropped")
	}

	window := labeling.Window{Days: req.SelectedLength, Slack: f.RecencySlack}
	recent := labeling.FilterRecent(labeled, window, e.clock())

	newest := pivot.Pivot(recent, g, extractor(f, metrics), pivot.Options{
		Sparse:        f.Sparse,
		CarryCategory: f.CarryCategory,
	})
	rows := newest.Chronological()

	if accumulate(f, req) {
		if opts, ok := cumulativeOptions(f, req, metrics, recent); ok {
			rows = cumulative.Accumulate(rows, opts)
		}
	}

	if f.Sparse {
		rows = sparse.CleanChartData(rows, domain.Columns(rows))
	}
	if rows == nil {
		rows = domain.Chronological{}
	}

	amount := req.Amount
	if amount == 0 {
		amount = f.TopN
	}
	keys := topk.TopKeys(rows.NewestFirst(), amount, req.ReverseRank)

	if req.Share {
		rows = domain.Chronological(share.ShareRows(rows))
	}

	e.log.WithFields(logrus.Fields{
		"family":      f.Name,
		"granularity": g.String(),
		"records":     len(records),
		"retained":    len(recent),
		"rows":        len(rows),
		"keys":        len(keys),
	}).Debug("series built")

	e.observeSeries(observability.SeriesStats{
		Family:   f.Name,
		Fetched:  true,
		Records:  len(records),
		Invalid:  invalid,
		Retained: len(recent),
		Rows:     len(rows),
		Keys:     len(keys),
	}, start)

	return Result{Rows: rows, Keys: keys}
}

// selectRecords returns the filtered input records, or false when the
// needed collection has not been fetched.
func (e *Engine) selectRecords(f Family, req Request, g domain.Granularity) ([]domain.MetricRecord, bool) {
	pick := func(ds domain.DataSet) []domain.MetricRecord {
		if f.Source == SourceDefault {
			return ds.Default
		}
		return ds.ForGranularity(g)
	}

	if !f.Bulk {
		src := pick(req.Data)
		if src == nil {
			return nil, false
		}
		return filterRecords(src, req), true
	}

	if req.Bulk == nil {
		return nil, false
	}
	names := make([]string, 0, len(req.Bulk))
	for name := range req.Bulk {
		names = append(names, name)
	}
	sort.Strings(names)

	fetched := false
	var out []domain.MetricRecord
	for _, name := range names {
		src := pick(req.Bulk[name])
		if src == nil {
			continue
		}
		fetched = true
		for _, r := range src {
			r = r.WithProject(name)
			if req.allows(r) {
				out = append(out, r)
			}
		}
	}
	return out, fetched
}

func filterRecords(src []domain.MetricRecord, req Request) []domain.MetricRecord {
	out := make([]domain.MetricRecord, 0, len(src))
	for _, r := range src {
		if req.allows(r) {
			out = append(out, r)
		}
	}
	return out
}

func extractor(f Family, metrics []domain.MetricKey) pivot.Extractor {
	switch f.Columns {
	case ColumnsByMetric:
		return pivot.ByMetric(metrics)
	case ColumnsByEntityMetric:
		return pivot.ByEntityMetric(metrics)
	default:
		return pivot.ByEntity(metrics[0])
	}
}

func accumulate(f Family, req Request) bool {
	switch f.Cumulative {
	case CumulativeAlways:
		return true
	case CumulativeOptional:
		return req.Cumulative
	default:
		return false
	}
}

// cumulativeOptions derives the fold options for f. It reports false when
// the series has nothing that may accumulate.
func cumulativeOptions(f Family, req Request, metrics []domain.MetricKey, records []domain.LabeledRecord) (cumulative.Options, bool) {
	switch f.Columns {
	case ColumnsByMetric:
		return cumulative.Options{
			Eligible:   cumulative.MetricColumns,
			IsExchange: req.IsExchange,
		}, true

	case ColumnsByEntityMetric:
		columnMetric := make(map[string]domain.MetricKey)
		for _, r := range records {
			for _, m := range metrics {
				columnMetric[pivot.EntityMetricColumn(r.Project, m)] = m
			}
		}
		return cumulative.Options{
			Eligible: func(column string) bool {
				return columnMetric[column].Cumulative()
			},
			IsGMV: func(column string) bool {
				return columnMetric[column] == domain.MetricGMV
			},
			IsExchange: req.IsExchange,
		}, true

	default:
		// Columns are entities, so the whole series shares one metric.
		m := metrics[0]
		if !m.Cumulative() || (m == domain.MetricGMV && !req.IsExchange) {
			return cumulative.Options{}, false
		}
		return cumulative.Options{
			IsGMV: func(string) bool { return false },
		}, true
	}
}
