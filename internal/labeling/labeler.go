// Package labeling assigns calendar labels to metric records and filters
// them by lookback window.
package labeling

import (
	"fmt"

	"chart-metrics-lab/internal/domain"
)

// InvalidLabel is used for both labels when a timestamp cannot be parsed.
const InvalidLabel = "Invalid Date"

type monthName struct {
	Short string
	Full  string
}

var months = [12]monthName{
	{"Jan", "January"},
	{"Feb", "February"},
	{"Mar", "March"},
	{"Apr", "April"},
	{"May", "May"},
	{"Jun", "June"},
	{"Jul", "July"},
	{"Aug", "August"},
	{"Sep", "September"},
	{"Oct", "October"},
	{"Nov", "November"},
	{"Dec", "December"},
}

// Label attaches period labels to r.
//
// Daily:   label "Jan 5",    tooltip "January 5 2023"
// Monthly: label "Jan 2023", tooltip "January 2023"
//
// All calendar fields are read in UTC.
func Label(r domain.MetricRecord, g domain.Granularity) domain.LabeledRecord {
	out := domain.LabeledRecord{MetricRecord: r}

	t, ok := domain.ParseDatetime(r.Datetime)
	if !ok {
		out.Label = InvalidLabel
		out.TooltipLabel = InvalidLabel
		return out
	}

	m := months[t.Month()-1]
	out.Time = t
	out.Valid = true
	if g == domain.Monthly {
		out.Label = fmt.Sprintf("%s %d", m.Short, t.Year())
		out.TooltipLabel = fmt.Sprintf("%s %d", m.Full, t.Year())
	} else {
		out.Label = fmt.Sprintf("%s %d", m.Short, t.Day())
		out.TooltipLabel = fmt.Sprintf("%s %d %d", m.Full, t.Day(), t.Year())
	}
	return out
}

// LabelAll labels every record, preserving input order.
func LabelAll(records []domain.MetricRecord, g domain.Granularity) []domain.LabeledRecord {
	if len(records) == 0 {
		return nil
	}
	out := make([]domain.LabeledRecord, len(records))
	for i, r := range records {
		out[i] = Label(r, g)
	}
	return out
}
