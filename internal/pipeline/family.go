package pipeline

import (
	"chart-metrics-lab/internal/domain"
)

// Source selects which collection of a DataSet a family reads.
type Source int

const (
	// SourceByGranularity reads Daily for lookbacks up to a year, Monthly beyond.
	SourceByGranularity Source = iota
	// SourceDefault reads the ungrouped Default collection.
	SourceDefault
)

// Columns selects what the pivoted columns are.
type Columns int

const (
	// ColumnsByEntity: one column per project, holding the family's first metric.
	ColumnsByEntity Columns = iota
	// ColumnsByMetric: one column per metric of a single-project series.
	ColumnsByMetric
	// ColumnsByEntityMetric: one column per (project, metric) pair.
	ColumnsByEntityMetric
)

// CumulativeMode says when a family shows running totals.
type CumulativeMode int

const (
	CumulativeNever CumulativeMode = iota
	CumulativeOptional
	CumulativeAlways
)

// Family is the fixed configuration of one chart family's series pipeline.
type Family struct {
	Name       string
	Source     Source
	Columns    Columns
	Metrics    []domain.MetricKey // default value keys; Request.Metrics overrides
	Cumulative CumulativeMode
	// Sparse drops zero cells and trims leading periods without signal.
	Sparse bool
	// RecencySlack extends the lookback by this many days (0 or 1).
	RecencySlack int
	// TopN limits Result.Keys when the request does not set Amount. 0 keeps all.
	TopN int
	// Bulk families read Request.Bulk (entity -> DataSet) instead of Request.Data.
	Bulk bool
	// CarryCategory copies the record category onto each row.
	CarryCategory bool
}

// RankFamily configures a single-period ranking chart.
type RankFamily struct {
	Name   string
	Metric domain.MetricKey
	// Keep filters values before ranking. Nil keeps every value.
	Keep func(v float64) bool
}

// Request is the per-render input of a family.
type Request struct {
	Data domain.DataSet
	Bulk map[string]domain.DataSet

	// SelectedLength is the lookback in days. Above a year it also switches
	// the series to monthly granularity.
	SelectedLength int
	Metrics        []domain.MetricKey
	Projects       []string // empty: every project
	Categories     domain.CategorySet

	Cumulative  bool
	IsExchange  bool
	Amount      int  // key/entity limit; 0 uses the family default
	ReverseRank bool // lowest-first key selection for ratio metrics
	Share       bool // convert values to percentage of the row total
}

// Result is a chart-ready series plus the columns to draw, in rank order.
type Result struct {
	Rows domain.Chronological
	Keys []string
}

func (r Request) metrics(f Family) []domain.MetricKey {
	if len(r.Metrics) > 0 {
		return r.Metrics
	}
	return f.Metrics
}

func (r Request) allows(rec domain.MetricRecord) bool {
	if !r.Categories.Allows(rec.Category) {
		return false
	}
	if len(r.Projects) == 0 {
		return true
	}
	for _, p := range r.Projects {
		if p == rec.Project {
			return true
		}
	}
	return false
}
