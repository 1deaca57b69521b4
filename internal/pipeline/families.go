package pipeline

import (
	"errors"
	"fmt"
	"sort"

	"chart-metrics-lab/internal/domain"
	"chart-metrics-lab/internal/topk"
)

// ErrUnknownFamily is returned by the lookups for an unregistered name.
var ErrUnknownFamily = errors.New("unknown chart family")

// Series families.
//
// RecencySlack differs between families: the project, competitive, top-10
// and custom charts keep one extra day, the revenue, market and TVL charts
// do not.
var (
	ProjectDefaultData = Family{
		Name:          "project-default",
		Source:        SourceByGranularity,
		Columns:       ColumnsByMetric,
		Metrics:       []domain.MetricKey{domain.MetricRevenue},
		Cumulative:    CumulativeOptional,
		RecencySlack:  1,
		CarryCategory: true,
	}

	CompetitiveChart = Family{
		Name:         "competitive",
		Source:       SourceByGranularity,
		Columns:      ColumnsByEntity,
		Metrics:      []domain.MetricKey{domain.MetricRevenue},
		Cumulative:   CumulativeOptional,
		Sparse:       true,
		RecencySlack: 1,
		Bulk:         true,
	}

	ProjectTop10 = Family{
		Name:         "project-top10",
		Source:       SourceByGranularity,
		Columns:      ColumnsByEntity,
		Metrics:      []domain.MetricKey{domain.MetricRevenue},
		Cumulative:   CumulativeOptional,
		Sparse:       true,
		RecencySlack: 1,
		TopN:         10,
	}

	RevenueMetrics = Family{
		Name:    "revenue",
		Source:  SourceByGranularity,
		Columns: ColumnsByEntity,
		Metrics: []domain.MetricKey{domain.MetricRevenue},
		Sparse:  true,
	}

	CumulativeRevenueMetrics = Family{
		Name:       "cumulative-revenue",
		Source:     SourceByGranularity,
		Columns:    ColumnsByEntity,
		Metrics:    []domain.MetricKey{domain.MetricRevenue},
		Cumulative: CumulativeAlways,
		Sparse:     true,
	}

	MarketMetrics = Family{
		Name:    "market",
		Source:  SourceByGranularity,
		Columns: ColumnsByEntity,
		Metrics: []domain.MetricKey{domain.MetricMarketCap},
		Sparse:  true,
	}

	TVLMetrics = Family{
		Name:    "tvl",
		Source:  SourceByGranularity,
		Columns: ColumnsByEntity,
		Metrics: []domain.MetricKey{domain.MetricTVL},
		Sparse:  true,
	}

	CustomChartData = Family{
		Name:         "custom",
		Source:       SourceDefault,
		Columns:      ColumnsByEntityMetric,
		Metrics:      []domain.MetricKey{domain.MetricRevenue},
		Cumulative:   CumulativeOptional,
		Sparse:       true,
		RecencySlack: 1,
	}
)

// Ranking families.
var (
	PSData = RankFamily{
		Name:   "ps",
		Metric: domain.MetricPS,
	}

	PEData = RankFamily{
		Name:   "pe",
		Metric: domain.MetricPE,
		Keep:   topk.PEFilter,
	}

	TotalTVLData = RankFamily{
		Name:   "total-tvl",
		Metric: domain.MetricTVL,
	}
)

var seriesFamilies = map[string]Family{}
var rankFamilies = map[string]RankFamily{}

func init() {
	for _, f := range []Family{
		ProjectDefaultData,
		CompetitiveChart,
		ProjectTop10,
		RevenueMetrics,
		CumulativeRevenueMetrics,
		MarketMetrics,
		TVLMetrics,
		CustomChartData,
	} {
		seriesFamilies[f.Name] = f
	}
	for _, f := range []RankFamily{PSData, PEData, TotalTVLData} {
		rankFamilies[f.Name] = f
	}
}

// LookupFamily returns the series family registered under name.
func LookupFamily(name string) (Family, error) {
	f, ok := seriesFamilies[name]
	if !ok {
		return Family{}, fmt.Errorf("%w: %q", ErrUnknownFamily, name)
	}
	return f, nil
}

// LookupRankFamily returns the ranking family registered under name.
func LookupRankFamily(name string) (RankFamily, error) {
	f, ok := rankFamilies[name]
	if !ok {
		return RankFamily{}, fmt.Errorf("%w: %q", ErrUnknownFamily, name)
	}
	return f, nil
}

// SeriesFamilyNames lists registered series families, sorted.
func SeriesFamilyNames() []string {
	names := make([]string, 0, len(seriesFamilies))
	for n := range seriesFamilies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// RankFamilyNames lists registered ranking families, sorted.
func RankFamilyNames() []string {
	names := make([]string, 0, len(rankFamilies))
	for n := range rankFamilies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LabelProjectDefaultData charts the metrics of one project, one column per metric.
func (e *Engine) LabelProjectDefaultData(req Request) Result {
	return e.Run(ProjectDefaultData, req)
}

// LabelCompetitiveChart charts one metric across the entities of a bulk fetch.
func (e *Engine) LabelCompetitiveChart(req Request) Result {
	return e.Run(CompetitiveChart, req)
}

// LabelProjectTop10 charts one metric across all projects and selects the top ten.
func (e *Engine) LabelProjectTop10(req Request) Result {
	return e.Run(ProjectTop10, req)
}

// LabelRevenueMetrics charts per-period revenue by project.
func (e *Engine) LabelRevenueMetrics(req Request) Result {
	return e.Run(RevenueMetrics, req)
}

// LabelCumulativeRevenueMetrics charts running revenue totals by project.
func (e *Engine) LabelCumulativeRevenueMetrics(req Request) Result {
	return e.Run(CumulativeRevenueMetrics, req)
}

// LabelMarketMetrics charts market metrics (market cap by default) by project.
func (e *Engine) LabelMarketMetrics(req Request) Result {
	return e.Run(MarketMetrics, req)
}

// LabelTVLMetrics charts total value locked by project.
func (e *Engine) LabelTVLMetrics(req Request) Result {
	return e.Run(TVLMetrics, req)
}

// LabelCustomChartData charts user-picked (project, metric) pairs.
func (e *Engine) LabelCustomChartData(req Request) Result {
	return e.Run(CustomChartData, req)
}

// LabelPSData ranks projects by their latest price-to-sales ratio.
func (e *Engine) LabelPSData(req Request) []domain.RankedEntity {
	return e.Rank(PSData, req)
}

// LabelPEData ranks projects by their latest price-to-earnings ratio,
// ignoring non-positive and outlier values.
func (e *Engine) LabelPEData(req Request) []domain.RankedEntity {
	return e.Rank(PEData, req)
}

// LabelTotalTVLData ranks projects by their latest total value locked.
func (e *Engine) LabelTotalTVLData(req Request) []domain.RankedEntity {
	return e.Rank(TotalTVLData, req)
}
