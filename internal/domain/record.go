package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// MetricRecord is one entity's metrics for one period, as fetched.
// Values holds only non-null metrics; an absent key means null.
type MetricRecord struct {
	Datetime string   // ISO-8601 or epoch milliseconds, unvalidated
	Project  string   // entity identifier
	Category Category // category tag
	Values   map[MetricKey]float64
}

// Value returns the metric value and whether it was present.
func (r MetricRecord) Value(k MetricKey) (float64, bool) {
	v, ok := r.Values[k]
	return v, ok
}

// WithProject returns a copy of r attributed to project.
// Values is shared: records are never mutated after fetch.
func (r MetricRecord) WithProject(project string) MetricRecord {
	r.Project = project
	return r
}

// UnmarshalJSON decodes the flat backend shape. Unknown fields are ignored,
// null metrics are left absent and numeric strings are accepted.
func (r *MetricRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = MetricRecord{Values: make(map[MetricKey]float64)}
	r.Datetime = rawText(raw["datetime"])
	r.Project = rawText(raw["project"])
	r.Category = Category(rawText(raw["category"]))

	for _, k := range AllMetrics {
		msg, ok := raw[string(k)]
		if !ok {
			continue
		}
		if v, ok := rawNumber(msg); ok {
			r.Values[k] = v
		}
	}
	return nil
}

// MarshalJSON encodes r back into the flat backend shape.
func (r MetricRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Values)+3)
	out["datetime"] = r.Datetime
	out["project"] = r.Project
	if r.Category != "" {
		out["category"] = r.Category
	}
	for k, v := range r.Values {
		out[string(k)] = v
	}
	return json.Marshal(out)
}

// rawText returns a JSON string's contents, or the literal text of any other scalar.
func rawText(msg json.RawMessage) string {
	msg = bytes.TrimSpace(msg)
	if len(msg) == 0 || string(msg) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(msg, &s); err == nil {
		return s
	}
	return string(msg)
}

// rawNumber decodes a JSON number or numeric string.
func rawNumber(msg json.RawMessage) (float64, bool) {
	msg = bytes.TrimSpace(msg)
	if len(msg) == 0 || string(msg) == "null" {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(msg, &v); err == nil {
		return v, true
	}
	var s string
	if err := json.Unmarshal(msg, &s); err != nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// datetimeLayouts are tried in order by ParseDatetime.
var datetimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDatetime parses a record timestamp into UTC.
// Pure digit strings are read as Unix milliseconds.
func ParseDatetime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), true
	}
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// LabeledRecord is a MetricRecord with its period labels attached.
type LabeledRecord struct {
	MetricRecord
	Label        string
	TooltipLabel string
	Time         time.Time // parsed Datetime, zero when invalid
	Valid        bool      // false when Datetime could not be parsed
}
