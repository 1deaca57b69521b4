package share

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chart-metrics-lab/internal/domain"
)

func TestGetPercent(t *testing.T) {
	tests := []struct {
		value, total float64
		want         string
	}{
		{25, 100, "25.00%"},
		{1, 0, "0.00%"},
		{1, -5, "0.00%"},
		{1, 3, "33.33%"},
		{2, 3, "66.67%"},
		{0, 10, "0.00%"},
		{math.NaN(), 10, "0.00%"},
		{1, math.Inf(1), "0.00%"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, GetPercent(tt.value, tt.total), "GetPercent(%v, %v)", tt.value, tt.total)
	}
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 0.25, Ratio(25, 100))
	assert.Equal(t, 0.0, Ratio(25, 0))
}

func TestShareRows_SumsToHundred(t *testing.T) {
	rows := []domain.PivotedRow{
		{Label: "Jan 1", Values: map[string]float64{"A": 1, "B": 2, "C": 7}},
		{Label: "Jan 2", Values: map[string]float64{"A": 0.1, "B": 0.2}},
		{Label: "Jan 3", Values: map[string]float64{"A": 0, "B": 0}},
	}

	got := ShareRows(rows)

	require.Len(t, got, 3)
	for _, r := range got[:2] {
		sum := 0.0
		for _, v := range r.Values {
			sum += v
		}
		assert.InDelta(t, 100, sum, 1e-9, r.Label)
	}
	assert.Equal(t, map[string]float64{"A": 0, "B": 0}, got[2].Values)
	assert.InDelta(t, 70, got[0].Values["C"], 1e-9)

	// input untouched
	assert.Equal(t, 7.0, rows[0].Values["C"])
}

func TestShareStrings(t *testing.T) {
	row := domain.PivotedRow{Values: map[string]float64{"A": 1, "B": 3}}

	assert.Equal(t, map[string]string{"A": "25.00%", "B": "75.00%"}, ShareStrings(row))
}
