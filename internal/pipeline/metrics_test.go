package pipeline

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"chart-metrics-lab/internal/domain"
	"chart-metrics-lab/internal/observability"
)

func TestEngine_RecordsMetrics(t *testing.T) {
	m := observability.NewMetrics("", nil)
	e := testEngine().WithMetrics(m)

	e.LabelRevenueMetrics(Request{
		SelectedLength: 7,
		Data: domain.DataSet{Daily: []domain.MetricRecord{
			rec(day(1), "A", "", rev(1)),
			rec(day(2), "A", "", rev(2)),
			rec(day(40), "A", "", rev(3)),
			rec("garbage", "A", "", rev(4)),
		}},
	})
	e.LabelTVLMetrics(Request{SelectedLength: 7})
	e.LabelPSData(Request{Data: domain.DataSet{Default: []domain.MetricRecord{
		rec(day(0), "A", "", map[domain.MetricKey]float64{domain.MetricPS: 3}),
	}}})

	assert.Equal(t, 4.0, testutil.ToFloat64(m.RecordsRead.WithLabelValues("revenue")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecordsInvalid.WithLabelValues("revenue")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecordsStale.WithLabelValues("revenue")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RowsEmitted.WithLabelValues("revenue")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SourceNotLoaded.WithLabelValues("tvl", observability.KindSeries)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EntitiesRanked.WithLabelValues("ps")))
}
