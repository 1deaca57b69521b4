// Package share converts absolute values into shares of a period total.
package share

import (
	"math"

	"github.com/shopspring/decimal"

	"chart-metrics-lab/internal/domain"
)

// Precision is the number of decimals in a formatted percentage.
const Precision = 2

var hundred = decimal.NewFromInt(100)

// Ratio returns value/total, or 0 when total is not positive or either input
// is not finite.
func Ratio(value, total float64) float64 {
	if !finite(value) || !finite(total) || total <= 0 {
		return 0
	}
	return value / total
}

// GetPercent formats value/total as a fixed-precision percentage, e.g. "25.00%".
// A non-positive total gives "0.00%".
func GetPercent(value, total float64) string {
	if !finite(value) || !finite(total) || total <= 0 {
		return decimal.Zero.StringFixed(Precision) + "%"
	}
	pct := decimal.NewFromFloat(value).Div(decimal.NewFromFloat(total)).Mul(hundred)
	return pct.StringFixed(Precision) + "%"
}

// RowTotal sums every column of the row.
func RowTotal(row domain.PivotedRow) float64 {
	total := 0.0
	for _, v := range row.Values {
		total += v
	}
	return total
}

// ShareRows rewrites every value as its percentage (0-100) of the row total.
// Rows whose total is zero become all zeros.
func ShareRows(rows []domain.PivotedRow) []domain.PivotedRow {
	if rows == nil {
		return nil
	}
	out := make([]domain.PivotedRow, len(rows))
	for i, r := range rows {
		total := RowTotal(r)
		shared := r.Clone()
		for k, v := range r.Values {
			shared.Values[k] = Ratio(v, total) * 100
		}
		out[i] = shared
	}
	return out
}

// ShareStrings formats each column of row as a percentage of the row total,
// the shape percentage-mode downloads use.
func ShareStrings(row domain.PivotedRow) map[string]string {
	total := RowTotal(row)
	out := make(map[string]string, len(row.Values))
	for k, v := range row.Values {
		out[k] = GetPercent(v, total)
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
