// Package pivot groups labeled records by period and spreads entities into columns.
package pivot

import (
	"sort"
	"time"

	"chart-metrics-lab/internal/domain"
)

// Cell is one column value contributed by a record.
type Cell struct {
	Column string
	Value  float64
}

// Extractor turns one record into the cells it contributes to its period row.
type Extractor func(r domain.LabeledRecord) []Cell

// Options controls how groups fold into rows.
type Options struct {
	// Sparse drops zero cells. Absent (null) values never produce a cell.
	Sparse bool
	// CarryCategory copies the record category onto the row.
	CarryCategory bool
}

// ByEntity yields one cell per record: column = project, value = metric.
func ByEntity(metric domain.MetricKey) Extractor {
	return func(r domain.LabeledRecord) []Cell {
		v, ok := r.Value(metric)
		if !ok {
			return nil
		}
		return []Cell{{Column: r.Project, Value: v}}
	}
}

// ByMetric yields one cell per present metric: column = metric name.
// Used for single-entity series where each metric is its own line.
func ByMetric(metrics []domain.MetricKey) Extractor {
	return func(r domain.LabeledRecord) []Cell {
		var cells []Cell
		for _, m := range metrics {
			if v, ok := r.Value(m); ok {
				cells = append(cells, Cell{Column: string(m), Value: v})
			}
		}
		return cells
	}
}

// EntityMetricColumn names the column of one (entity, metric) pair.
func EntityMetricColumn(project string, metric domain.MetricKey) string {
	return project + "_" + string(metric)
}

// ByEntityMetric yields one cell per (project, metric) pair.
func ByEntityMetric(metrics []domain.MetricKey) Extractor {
	return func(r domain.LabeledRecord) []Cell {
		var cells []Cell
		for _, m := range metrics {
			if v, ok := r.Value(m); ok {
				cells = append(cells, Cell{Column: EntityMetricColumn(r.Project, m), Value: v})
			}
		}
		return cells
	}
}

type group struct {
	key   string
	order int
	row   domain.PivotedRow
}

// Pivot groups records by period and merges each group into one row.
//
// Records group by the period their label names (UTC day or month), so equal
// labels from different years stay apart. Records with an invalid timestamp
// group under their label. Within a group cells merge in input order and the
// last write wins on a column collision. The row takes label, datetime and
// tooltip from the first record of its group.
//
// Rows come back newest period first; invalid-timestamp rows sort last.
func Pivot(records []domain.LabeledRecord, g domain.Granularity, extract Extractor, opts Options) domain.NewestFirst {
	if len(records) == 0 {
		return nil
	}

	groups := make(map[string]*group)
	for _, r := range records {
		key := periodKey(r, g)
		grp, ok := groups[key]
		if !ok {
			grp = &group{
				key:   key,
				order: len(groups),
				row: domain.PivotedRow{
					Label:        r.Label,
					Datetime:     r.Time,
					TooltipLabel: r.TooltipLabel,
					Values:       make(map[string]float64),
				},
			}
			groups[key] = grp
		}

		if opts.CarryCategory && r.Category != "" {
			grp.row.Category = r.Category
		}
		for _, c := range extract(r) {
			if opts.Sparse && c.Value == 0 {
				continue
			}
			grp.row.Values[c.Column] = c.Value
		}
	}

	ordered := make([]*group, 0, len(groups))
	for _, grp := range groups {
		ordered = append(ordered, grp)
	}
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if !a.row.Datetime.Equal(b.row.Datetime) {
			return a.row.Datetime.After(b.row.Datetime)
		}
		return a.order < b.order
	})

	rows := make(domain.NewestFirst, len(ordered))
	for i, grp := range ordered {
		rows[i] = grp.row
	}
	return rows
}

func periodKey(r domain.LabeledRecord, g domain.Granularity) string {
	if !r.Valid {
		return "invalid|" + r.Label
	}
	return g.PeriodStart(r.Time).Format(time.DateOnly)
}
