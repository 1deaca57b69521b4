package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownCollection is returned for a collection name outside default/daily/monthly.
var ErrUnknownCollection = errors.New("unknown collection")

// DailyThresholdDays is the largest lookback still charted at daily granularity.
const DailyThresholdDays = 365

// Granularity is the period size of a series.
type Granularity int

const (
	Daily Granularity = iota
	Monthly
)

// GranularityFor maps a lookback length to a granularity.
// Anything longer than a year is charted monthly.
func GranularityFor(selectedLength int) Granularity {
	if selectedLength <= DailyThresholdDays {
		return Daily
	}
	return Monthly
}

// String implements fmt.Stringer.
func (g Granularity) String() string {
	if g == Monthly {
		return "monthly"
	}
	return "daily"
}

// PeriodStart truncates t to the start of its UTC day or month.
func (g Granularity) PeriodStart(t time.Time) time.Time {
	t = t.UTC()
	if g == Monthly {
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Collection names one of the record arrays of a DataSet.
type Collection string

const (
	CollectionDefault Collection = "default"
	CollectionDaily   Collection = "daily"
	CollectionMonthly Collection = "monthly"
)

// ParseCollection validates a collection name.
func ParseCollection(s string) (Collection, error) {
	switch Collection(s) {
	case CollectionDefault, CollectionDaily, CollectionMonthly:
		return Collection(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCollection, s)
	}
}

// DataSet is the fetched input of one chart.
// A nil collection has not been fetched yet.
type DataSet struct {
	Default []MetricRecord `json:"default,omitempty"`
	Daily   []MetricRecord `json:"daily,omitempty"`
	Monthly []MetricRecord `json:"monthly,omitempty"`
}

// Collection returns the records of the named collection.
func (d DataSet) Collection(c Collection) []MetricRecord {
	switch c {
	case CollectionDaily:
		return d.Daily
	case CollectionMonthly:
		return d.Monthly
	default:
		return d.Default
	}
}

// ForGranularity returns the daily or monthly collection.
func (d DataSet) ForGranularity(g Granularity) []MetricRecord {
	if g == Monthly {
		return d.Monthly
	}
	return d.Daily
}
