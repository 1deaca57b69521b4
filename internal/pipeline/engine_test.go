package pipeline

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chart-metrics-lab/internal/domain"
	"chart-metrics-lab/internal/logger"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func testEngine() *Engine {
	return NewEngine().WithClock(func() time.Time { return fixedNow })
}

// day returns the timestamp n days before fixedNow's date, at midnight UTC.
func day(n int) string {
	d := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -n)
	return d.Format(time.RFC3339)
}

func rec(dt, project string, cat domain.Category, values map[domain.MetricKey]float64) domain.MetricRecord {
	return domain.MetricRecord{Datetime: dt, Project: project, Category: cat, Values: values}
}

func rev(v float64) map[domain.MetricKey]float64 {
	return map[domain.MetricKey]float64{domain.MetricRevenue: v}
}

func labels(rows domain.Chronological) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Label
	}
	return out
}

func TestRun_CumulativeExample(t *testing.T) {
	req := Request{
		Data: domain.DataSet{Daily: []domain.MetricRecord{
			rec(day(0), "A", domain.CategoryDeFi, rev(20)),
			rec(day(0), "B", domain.CategoryDeFi, rev(5)),
			rec(day(1), "A", domain.CategoryDeFi, rev(10)),
			rec(day(1), "B", domain.CategoryDeFi, rev(5)),
		}},
		SelectedLength: 2,
		Cumulative:     true,
	}

	got := testEngine().LabelProjectTop10(req)

	require.Len(t, got.Rows, 2)
	assert.Equal(t, []string{"Jun 14", "Jun 15"}, labels(got.Rows))
	assert.Equal(t, map[string]float64{"A": 10, "B": 5}, got.Rows[0].Values)
	assert.Equal(t, map[string]float64{"A": 30, "B": 10}, got.Rows[1].Values)
	assert.Equal(t, []string{"A", "B"}, got.Keys)
}

func TestRun_MissingSourceIsEmpty(t *testing.T) {
	e := testEngine()

	got := e.LabelRevenueMetrics(Request{SelectedLength: 30})
	assert.NotNil(t, got.Rows)
	assert.Empty(t, got.Rows)
	assert.Empty(t, got.Keys)

	// Monthly lookback with only the daily collection fetched.
	got = e.LabelRevenueMetrics(Request{
		Data:           domain.DataSet{Daily: []domain.MetricRecord{rec(day(1), "A", "", rev(1))}},
		SelectedLength: 730,
	})
	assert.Empty(t, got.Rows)

	assert.Empty(t, e.LabelCompetitiveChart(Request{SelectedLength: 30}).Rows)
}

func TestRun_RecencySlackPerFamily(t *testing.T) {
	data := domain.DataSet{Daily: []domain.MetricRecord{
		rec(day(0), "A", "", rev(1)),
		rec(day(3), "A", "", rev(1)),
		rec(day(4), "A", "", rev(1)),
	}}
	e := testEngine()

	// day(3) is 3.5 days old and rounds to 4.
	withSlack := e.LabelProjectTop10(Request{Data: data, SelectedLength: 3})
	withoutSlack := e.LabelRevenueMetrics(Request{Data: data, SelectedLength: 3})

	assert.Len(t, withSlack.Rows, 2)
	assert.Len(t, withoutSlack.Rows, 1)
}

func TestRun_MonthlyGranularity(t *testing.T) {
	req := Request{
		Data: domain.DataSet{
			Daily: []domain.MetricRecord{rec(day(1), "A", "", rev(1))},
			Monthly: []domain.MetricRecord{
				rec("2024-06-01", "A", "", rev(30)),
				rec("2024-05-01", "A", "", rev(20)),
				rec("2023-01-01", "A", "", rev(10)),
			},
		},
		SelectedLength: 400,
	}

	got := testEngine().LabelRevenueMetrics(req)

	assert.Equal(t, []string{"May 2024", "Jun 2024"}, labels(got.Rows))
	assert.Equal(t, "June 2024", got.Rows[1].TooltipLabel)
}

func TestRun_CategoryFilter(t *testing.T) {
	req := Request{
		Data: domain.DataSet{Daily: []domain.MetricRecord{
			rec(day(0), "uni", domain.CategoryDeFi, rev(3)),
			rec(day(0), "eth", domain.CategoryBlockchain, rev(9)),
		}},
		SelectedLength: 7,
		Categories:     domain.CategorySet{domain.CategoryBlockchain},
	}

	got := testEngine().LabelRevenueMetrics(req)

	require.Len(t, got.Rows, 1)
	assert.Equal(t, map[string]float64{"eth": 9}, got.Rows[0].Values)
}

func TestRun_SparseTrimsLeadingPeriods(t *testing.T) {
	req := Request{
		Data: domain.DataSet{Daily: []domain.MetricRecord{
			rec(day(0), "A", "", rev(4)),
			rec(day(1), "A", "", rev(0)),
			rec(day(2), "A", "", rev(0)),
			rec(day(2), "B", "", nil),
		}},
		SelectedLength: 30,
	}

	got := testEngine().LabelRevenueMetrics(req)

	assert.Equal(t, []string{"Jun 15"}, labels(got.Rows))
}

func TestRun_ProjectDefaultKeepsZeros(t *testing.T) {
	req := Request{
		Data: domain.DataSet{Daily: []domain.MetricRecord{
			rec(day(1), "A", domain.CategoryDeFi, map[domain.MetricKey]float64{domain.MetricRevenue: 0, domain.MetricFees: 2}),
			rec(day(0), "A", domain.CategoryDeFi, map[domain.MetricKey]float64{domain.MetricRevenue: 5, domain.MetricFees: 0}),
		}},
		SelectedLength: 30,
		Metrics:        []domain.MetricKey{domain.MetricRevenue, domain.MetricFees},
		Projects:       []string{"A"},
	}

	got := testEngine().LabelProjectDefaultData(req)

	require.Len(t, got.Rows, 2)
	assert.Equal(t, map[string]float64{"revenue": 0, "fees": 2}, got.Rows[0].Values)
	assert.Equal(t, domain.CategoryDeFi, got.Rows[0].Category)
}

func TestRun_ProjectDefaultCumulativeGMV(t *testing.T) {
	data := domain.DataSet{Daily: []domain.MetricRecord{
		rec(day(0), "A", "", map[domain.MetricKey]float64{domain.MetricRevenue: 2, domain.MetricGMV: 20, domain.MetricTVL: 7}),
		rec(day(1), "A", "", map[domain.MetricKey]float64{domain.MetricRevenue: 1, domain.MetricGMV: 10, domain.MetricTVL: 5}),
	}}
	metrics := []domain.MetricKey{domain.MetricRevenue, domain.MetricGMV, domain.MetricTVL}
	e := testEngine()

	got := e.LabelProjectDefaultData(Request{Data: data, SelectedLength: 30, Metrics: metrics, Cumulative: true})

	require.Len(t, got.Rows, 2)
	for _, r := range got.Rows {
		_, ok := r.Values["gmv"]
		assert.False(t, ok)
	}
	assert.Equal(t, 3.0, got.Rows[1].Values["revenue"])
	assert.Equal(t, 7.0, got.Rows[1].Values["tvl"])

	exchange := e.LabelProjectDefaultData(Request{Data: data, SelectedLength: 30, Metrics: metrics, Cumulative: true, IsExchange: true})
	assert.Equal(t, 30.0, exchange.Rows[1].Values["gmv"])
}

func TestRun_CumulativeIgnoredForStockMetric(t *testing.T) {
	req := Request{
		Data: domain.DataSet{Daily: []domain.MetricRecord{
			rec(day(0), "A", "", map[domain.MetricKey]float64{domain.MetricTVL: 7}),
			rec(day(1), "A", "", map[domain.MetricKey]float64{domain.MetricTVL: 5}),
		}},
		SelectedLength: 30,
		Metrics:        []domain.MetricKey{domain.MetricTVL},
		Cumulative:     true,
	}

	got := testEngine().LabelProjectTop10(req)

	assert.Equal(t, 7.0, got.Rows[1].Values["A"])
}

func TestRun_CumulativeRevenueAlwaysAccumulates(t *testing.T) {
	req := Request{
		Data: domain.DataSet{Daily: []domain.MetricRecord{
			rec(day(0), "A", "", rev(2)),
			rec(day(1), "A", "", rev(1)),
		}},
		SelectedLength: 30,
	}

	got := testEngine().LabelCumulativeRevenueMetrics(req)

	assert.Equal(t, 3.0, got.Rows[1].Values["A"])
}

func TestRun_CompetitiveBulk(t *testing.T) {
	req := Request{
		Bulk: map[string]domain.DataSet{
			"aave": {Daily: []domain.MetricRecord{
				rec(day(0), "", domain.CategoryDeFi, rev(4)),
				rec(day(1), "", domain.CategoryDeFi, rev(2)),
			}},
			"comp": {Daily: []domain.MetricRecord{
				rec(day(0), "", domain.CategoryDeFi, rev(1)),
			}},
			"notfetched": {},
		},
		SelectedLength: 30,
	}

	got := testEngine().LabelCompetitiveChart(req)

	require.Len(t, got.Rows, 2)
	assert.Equal(t, map[string]float64{"aave": 2}, got.Rows[0].Values)
	assert.Equal(t, map[string]float64{"aave": 4, "comp": 1}, got.Rows[1].Values)
	assert.Equal(t, []string{"aave", "comp"}, got.Keys)
}

func TestRun_TopTenLimitsKeys(t *testing.T) {
	var records []domain.MetricRecord
	names := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"}
	for i, n := range names {
		records = append(records, rec(day(0), n, "", rev(float64(i+1))))
	}

	e := testEngine()
	got := e.LabelProjectTop10(Request{Data: domain.DataSet{Daily: records}, SelectedLength: 7})

	require.Len(t, got.Keys, 10)
	assert.Equal(t, "l", got.Keys[0])
	assert.NotContains(t, got.Keys, "a")
	assert.NotContains(t, got.Keys, "b")

	lowest := e.LabelProjectTop10(Request{Data: domain.DataSet{Daily: records}, SelectedLength: 7, Amount: 2, ReverseRank: true})
	assert.Equal(t, []string{"a", "b"}, lowest.Keys)
}

func TestRun_CustomChart(t *testing.T) {
	req := Request{
		Data: domain.DataSet{Default: []domain.MetricRecord{
			rec(day(0), "A", "", map[domain.MetricKey]float64{domain.MetricRevenue: 2, domain.MetricGMV: 10}),
			rec(day(1), "A", "", map[domain.MetricKey]float64{domain.MetricRevenue: 1, domain.MetricGMV: 5}),
			rec(day(1), "B", "", map[domain.MetricKey]float64{domain.MetricRevenue: 3}),
		}},
		SelectedLength: 30,
		Metrics:        []domain.MetricKey{domain.MetricRevenue, domain.MetricGMV},
		Cumulative:     true,
	}

	got := testEngine().LabelCustomChartData(req)

	require.Len(t, got.Rows, 2)
	assert.Equal(t, map[string]float64{"A_revenue": 1, "B_revenue": 3}, got.Rows[0].Values)
	assert.Equal(t, map[string]float64{"A_revenue": 3}, got.Rows[1].Values)
}

func TestRun_Share(t *testing.T) {
	req := Request{
		Data: domain.DataSet{Daily: []domain.MetricRecord{
			rec(day(0), "A", "", rev(1)),
			rec(day(0), "B", "", rev(3)),
		}},
		SelectedLength: 7,
		Share:          true,
	}

	got := testEngine().LabelRevenueMetrics(req)

	require.Len(t, got.Rows, 1)
	assert.InDelta(t, 25, got.Rows[0].Values["A"], 1e-9)
	assert.InDelta(t, 75, got.Rows[0].Values["B"], 1e-9)
	assert.Equal(t, []string{"B", "A"}, got.Keys)
}

func TestRun_InvalidTimestampsLoggedAndDropped(t *testing.T) {
	var buf bytes.Buffer
	l, err := logger.New(logger.Options{Level: "warn", Output: &buf})
	require.NoError(t, err)

	req := Request{
		Data: domain.DataSet{Daily: []domain.MetricRecord{
			rec("nonsense", "A", "", rev(9)),
			rec(day(0), "A", "", rev(1)),
		}},
		SelectedLength: 7,
	}

	got := testEngine().WithLogger(l).LabelRevenueMetrics(req)

	assert.Equal(t, []string{"Jun 15"}, labels(got.Rows))
	assert.Contains(t, buf.String(), "unparseable datetime")
}

func TestRun_NoMetrics(t *testing.T) {
	f := RevenueMetrics
	f.Metrics = nil

	got := testEngine().Run(f, Request{Data: domain.DataSet{Daily: []domain.MetricRecord{}}, SelectedLength: 7})

	assert.Empty(t, got.Rows)
}
