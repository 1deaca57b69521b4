package sparse

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"chart-metrics-lab/internal/domain"
)

func xs(values ...float64) domain.Chronological {
	rows := make(domain.Chronological, len(values))
	for i, v := range values {
		rows[i] = domain.PivotedRow{Values: map[string]float64{"x": v}}
	}
	return rows
}

func TestCleanChartData_TrimsLeadingZeros(t *testing.T) {
	got := CleanChartData(xs(0, 0, 5, 3), []string{"x"})

	assert.Equal(t, xs(5, 3), got)
}

func TestCleanChartData_KeepsInnerZeros(t *testing.T) {
	got := CleanChartData(xs(0, 2, 0, 3), []string{"x"})

	assert.Equal(t, xs(2, 0, 3), got)
}

func TestCleanChartData_NoSignal(t *testing.T) {
	got := CleanChartData(xs(0, 0), []string{"x"})

	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Empty(t, CleanChartData(xs(4), []string{"y"}))
}

func TestCleanChartData_Idempotent(t *testing.T) {
	once := CleanChartData(xs(0, -1, 0, 2, 0, 8), []string{"x"})
	twice := CleanChartData(once, []string{"x"})

	assert.Equal(t, once, twice)
}

func TestCleanChartData_AnyKeyCounts(t *testing.T) {
	rows := domain.Chronological{
		{Values: map[string]float64{"a": 0, "b": 0}},
		{Values: map[string]float64{"a": 0, "b": 1}},
		{Values: map[string]float64{"a": 2}},
	}

	assert.Len(t, CleanChartData(rows, []string{"a", "b"}), 2)
	assert.Len(t, CleanChartData(rows, []string{"a"}), 1)
}

func TestHasData(t *testing.T) {
	assert.True(t, HasData([]string{"x"}, xs(0, 0, 1)))
	assert.False(t, HasData([]string{"x"}, xs(0, -3)))
	assert.False(t, HasData([]string{"y"}, xs(5)))
	assert.False(t, HasData([]string{"x"}, nil))
}

func TestStripEmpty(t *testing.T) {
	row := domain.PivotedRow{Label: "Jan 1", Values: map[string]float64{"a": 0, "b": 2}}

	got := StripEmpty(row)

	assert.Equal(t, map[string]float64{"b": 2}, got.Values)
	assert.Equal(t, "Jan 1", got.Label)
	assert.Len(t, row.Values, 2)
}
