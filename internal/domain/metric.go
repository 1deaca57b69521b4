package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownMetric is returned when a metric name is not a supported MetricKey.
var ErrUnknownMetric = errors.New("unknown metric")

// MetricKey names one numeric field of a MetricRecord.
// The set is closed: every valid key is listed in AllMetrics.
type MetricKey string

// Supported metric keys (JSON field names of the fetched records).
const (
	MetricRevenue           MetricKey = "revenue"
	MetricSupplySideRevenue MetricKey = "supply_side_revenue"
	MetricProtocolRevenue   MetricKey = "protocol_revenue"
	MetricVolume            MetricKey = "volume"
	MetricTokenIncentives   MetricKey = "token_incentives"
	MetricGMV               MetricKey = "gmv"
	MetricFees              MetricKey = "fees"
	MetricEarnings          MetricKey = "earnings"
	MetricTVL               MetricKey = "tvl"
	MetricPS                MetricKey = "ps"
	MetricPE                MetricKey = "pe"
	MetricMarketCap         MetricKey = "market_cap"
	MetricFDV               MetricKey = "fdv"
	MetricPrice             MetricKey = "price"
	MetricActiveUsers       MetricKey = "active_users"
)

// AllMetrics lists every supported metric key in declaration order.
var AllMetrics = []MetricKey{
	MetricRevenue,
	MetricSupplySideRevenue,
	MetricProtocolRevenue,
	MetricVolume,
	MetricTokenIncentives,
	MetricGMV,
	MetricFees,
	MetricEarnings,
	MetricTVL,
	MetricPS,
	MetricPE,
	MetricMarketCap,
	MetricFDV,
	MetricPrice,
	MetricActiveUsers,
}

// cumulativeMetrics are flow metrics whose running total is meaningful.
var cumulativeMetrics = map[MetricKey]bool{
	MetricRevenue:           true,
	MetricSupplySideRevenue: true,
	MetricProtocolRevenue:   true,
	MetricVolume:            true,
	MetricTokenIncentives:   true,
	MetricGMV:               true,
}

// Valid reports whether k is one of AllMetrics.
func (k MetricKey) Valid() bool {
	for _, m := range AllMetrics {
		if m == k {
			return true
		}
	}
	return false
}

// Cumulative reports whether k may be shown as a running total.
func (k MetricKey) Cumulative() bool {
	return cumulativeMetrics[k]
}

// ParseMetricKey converts a field name into a MetricKey.
func ParseMetricKey(s string) (MetricKey, error) {
	k := MetricKey(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownMetric, s)
	}
	return k, nil
}

// ParseMetricKeys parses a list of field names, failing on the first unknown one.
func ParseMetricKeys(names []string) ([]MetricKey, error) {
	keys := make([]MetricKey, 0, len(names))
	for _, n := range names {
		k, err := ParseMetricKey(n)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}
