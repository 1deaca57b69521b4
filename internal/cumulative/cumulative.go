// Package cumulative turns per-period series into running totals.
package cumulative

import (
	"maps"

	"chart-metrics-lab/internal/domain"
)

// Options controls which columns accumulate.
type Options struct {
	// Eligible reports whether a column accumulates. Ineligible columns keep
	// their per-period value. Nil means every column is eligible.
	Eligible func(column string) bool
	// IsGMV identifies GMV columns. Nil matches the column named "gmv".
	IsGMV func(column string) bool
	// IsExchange enables GMV columns. Without it they are dropped from
	// every output row.
	IsExchange bool
}

func (o Options) isGMV(column string) bool {
	if o.IsGMV != nil {
		return o.IsGMV(column)
	}
	return column == string(domain.MetricGMV)
}

// state is the fold accumulator. Each step returns a new state.
type state struct {
	totals map[string]float64
	rows   domain.Chronological
}

// Accumulate replaces each column value with its running total.
// Only columns present in a row are touched: a period where an entity did
// not report stays empty rather than repeating the previous total.
func Accumulate(rows domain.Chronological, opts Options) domain.Chronological {
	if len(rows) == 0 {
		return nil
	}

	s := state{
		totals: make(map[string]float64),
		rows:   make(domain.Chronological, 0, len(rows)),
	}
	for _, row := range rows {
		s = step(s, row, opts)
	}
	return s.rows
}

func step(s state, row domain.PivotedRow, opts Options) state {
	totals := maps.Clone(s.totals)
	out := row.Clone()

	for column, v := range row.Values {
		if !opts.IsExchange && opts.isGMV(column) {
			delete(out.Values, column)
			continue
		}
		if opts.Eligible != nil && !opts.Eligible(column) {
			continue
		}
		totals[column] += v
		out.Values[column] = totals[column]
	}

	return state{
		totals: totals,
		rows:   append(s.rows, out),
	}
}

// MetricColumns is an Eligible predicate for metric-keyed series: a column
// accumulates when it names a flow metric.
func MetricColumns(column string) bool {
	return domain.MetricKey(column).Cumulative()
}
