package labeling

import (
	"math"
	"time"

	"chart-metrics-lab/internal/domain"
)

const msPerDay = float64(24 * time.Hour / time.Millisecond)

// DaysAgo returns how many whole days t lies before now, rounded half up.
// Timestamps in the future give negative values.
func DaysAgo(t, now time.Time) int {
	elapsed := float64(now.Sub(t) / time.Millisecond)
	return int(math.Floor(elapsed/msPerDay + 0.5))
}

// Window is a lookback in days. Slack widens the boundary by whole days.
type Window struct {
	Days  int
	Slack int
}

// Retains reports whether r falls inside the window relative to now.
// Records with an unparseable timestamp are never retained.
func (w Window) Retains(r domain.LabeledRecord, now time.Time) bool {
	if !r.Valid {
		return false
	}
	return DaysAgo(r.Time, now) <= w.Days+w.Slack
}

// FilterRecent keeps the records retained by w, in input order.
func FilterRecent(records []domain.LabeledRecord, w Window, now time.Time) []domain.LabeledRecord {
	var out []domain.LabeledRecord
	for _, r := range records {
		if w.Retains(r, now) {
			out = append(out, r)
		}
	}
	return out
}
