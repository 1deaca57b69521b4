// Package sparse trims periods without signal from pivoted series.
package sparse

import "chart-metrics-lab/internal/domain"

// CleanChartData drops the leading rows in which none of keys is positive,
// typically the periods before any entity launched. It returns an empty
// series when no row has signal. Applying it twice equals applying it once.
func CleanChartData(rows domain.Chronological, keys []string) domain.Chronological {
	for i, r := range rows {
		if hasPositive(r, keys) {
			return rows[i:]
		}
	}
	return domain.Chronological{}
}

// HasData reports whether any row has a positive value for any of keys.
// Charts use it to choose between rendering and an empty state.
func HasData(keys []string, rows []domain.PivotedRow) bool {
	for _, r := range rows {
		if hasPositive(r, keys) {
			return true
		}
	}
	return false
}

// StripEmpty returns a copy of row without zero cells.
func StripEmpty(row domain.PivotedRow) domain.PivotedRow {
	out := row.Clone()
	for k, v := range out.Values {
		if v == 0 {
			delete(out.Values, k)
		}
	}
	return out
}

func hasPositive(r domain.PivotedRow, keys []string) bool {
	for _, k := range keys {
		if r.Values[k] > 0 {
			return true
		}
	}
	return false
}
