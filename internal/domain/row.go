package domain

import (
	"encoding/json"
	"maps"
	"slices"
	"time"
)

// Reserved row keys. A column with one of these names is shadowed on output.
const (
	KeyLabel        = "label"
	KeyDatetime     = "datetime"
	KeyTooltipLabel = "tooltipLabel"
	KeyCategory     = "category"
)

// IsMetadataKey reports whether key is one of the reserved row keys.
func IsMetadataKey(key string) bool {
	switch key {
	case KeyLabel, KeyDatetime, KeyTooltipLabel, KeyCategory:
		return true
	}
	return false
}

// PivotedRow is one period with one column per entity (or per metric).
// A column missing from Values is undefined for that period.
type PivotedRow struct {
	Label        string
	Datetime     time.Time
	TooltipLabel string
	Category     Category // set only by single-entity families
	Values       map[string]float64
}

// Clone returns a deep copy of the row.
func (r PivotedRow) Clone() PivotedRow {
	r.Values = maps.Clone(r.Values)
	if r.Values == nil {
		r.Values = make(map[string]float64)
	}
	return r
}

// Columns returns the row's column names in sorted order.
func (r PivotedRow) Columns() []string {
	return slices.Sorted(maps.Keys(r.Values))
}

// MarshalJSON flattens the row into a single object, the shape charts consume.
func (r PivotedRow) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Values)+4)
	for k, v := range r.Values {
		out[k] = v
	}
	out[KeyLabel] = r.Label
	out[KeyTooltipLabel] = r.TooltipLabel
	if r.Datetime.IsZero() {
		out[KeyDatetime] = nil
	} else {
		out[KeyDatetime] = r.Datetime.UTC().Format(time.RFC3339)
	}
	if r.Category != "" {
		out[KeyCategory] = r.Category
	}
	return json.Marshal(out)
}

// NewestFirst is a pivoted series ordered from the latest period backwards.
// It is the order records arrive in from the fetch layer.
type NewestFirst []PivotedRow

// Chronological is a pivoted series ordered from the oldest period forwards.
// It is the order charts render and cumulative totals are computed in.
type Chronological []PivotedRow

// Chronological returns a reversed copy of s.
func (s NewestFirst) Chronological() Chronological {
	return Chronological(reversed(s))
}

// NewestFirst returns a reversed copy of s.
func (s Chronological) NewestFirst() NewestFirst {
	return NewestFirst(reversed(s))
}

// Columns returns the union of column names across all rows, sorted.
func Columns(rows []PivotedRow) []string {
	seen := make(map[string]struct{})
	for _, r := range rows {
		for k := range r.Values {
			seen[k] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

func reversed(rows []PivotedRow) []PivotedRow {
	if rows == nil {
		return nil
	}
	out := make([]PivotedRow, len(rows))
	for i, r := range rows {
		out[len(rows)-1-i] = r
	}
	return out
}
