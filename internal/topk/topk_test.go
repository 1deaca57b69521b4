package topk

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chart-metrics-lab/internal/domain"
)

func series(values ...map[string]float64) domain.NewestFirst {
	rows := make(domain.NewestFirst, len(values))
	for i, v := range values {
		rows[i] = domain.PivotedRow{Label: fmt.Sprintf("p%d", i), Values: v}
	}
	return rows
}

func TestTopKeys_ShortSeriesUsesLatestRowOnly(t *testing.T) {
	rows := series(
		map[string]float64{"A": 1, "B": 2, "C": 3},
		map[string]float64{"A": 100, "B": 0, "C": 0},
	)

	assert.Equal(t, []string{"C", "B"}, TopKeys(rows, 2, false))
}

func TestTopKeys_LongSeriesSumsSevenRows(t *testing.T) {
	var values []map[string]float64
	for i := 0; i < 7; i++ {
		values = append(values, map[string]float64{"A": 1, "B": 2})
	}
	// The eighth row is outside the window.
	values = append(values, map[string]float64{"A": 1000})
	rows := series(values...)

	assert.Equal(t, []string{"B", "A"}, TopKeys(rows, 5, false))
}

func TestTopKeys_ReverseReturnsLowest(t *testing.T) {
	rows := series(map[string]float64{"A": 5, "B": 1, "C": 3, "D": 2})

	got := TopKeys(rows, 2, true)

	assert.Equal(t, []string{"B", "D"}, got)
}

func TestTopKeys_Size(t *testing.T) {
	rows := series(map[string]float64{"A": 5, "B": 1, "C": 3})

	assert.Len(t, TopKeys(rows, 2, false), 2)
	assert.Len(t, TopKeys(rows, 10, false), 3)
	assert.Len(t, TopKeys(rows, 0, false), 3)
	assert.Nil(t, TopKeys(nil, 3, false))
}

func TestTopKeys_TiesAreDeterministic(t *testing.T) {
	rows := series(map[string]float64{"B": 1, "A": 1, "C": 1})

	assert.Equal(t, []string{"A", "B", "C"}, TopKeys(rows, 3, true))
	assert.Equal(t, []string{"C", "B", "A"}, TopKeys(rows, 3, false))
}

func TestTopKeys_MissingValuesScoreZero(t *testing.T) {
	rows := series(
		map[string]float64{"A": 4},
		map[string]float64{"B": 9},
	)

	// Only the latest row counts; B is absent there.
	assert.Equal(t, []string{"A", "B"}, TopKeys(rows, 2, false))
}

func TestRank_HighestFirst(t *testing.T) {
	got := Rank([]domain.RankedEntity{
		{Name: "A", Value: 3},
		{Name: "B", Value: 10},
		{Name: "C", Value: 1},
	}, nil)

	require.Len(t, got, 3)
	assert.Equal(t, "B", got[0].Name)
	assert.Equal(t, "A", got[1].Name)
	assert.Equal(t, "C", got[2].Name)
}

func TestRank_PEFilter(t *testing.T) {
	got := Rank([]domain.RankedEntity{
		{Name: "neg", Value: -4},
		{Name: "zero", Value: 0},
		{Name: "ok", Value: 25},
		{Name: "ceiling", Value: 1000},
		{Name: "outlier", Value: 1000.5},
	}, PEFilter)

	names := make([]string, len(got))
	for i, e := range got {
		names[i] = e.Name
	}
	assert.Equal(t, []string{"ceiling", "ok"}, names)
}
