// Package topk selects the entities a chart shows.
package topk

import (
	"sort"

	"chart-metrics-lab/internal/domain"
)

// TrailingWindow is the number of most recent periods a key is scored over.
const TrailingWindow = 7

// PECeiling is the largest P/E ratio treated as real signal.
const PECeiling = 1000

type scoredKey struct {
	key   string
	score float64
}

// TopKeys ranks the columns of rows by their trailing-window sum.
//
// The window is the TrailingWindow most recent rows, or only the most recent
// row when the series has fewer than TrailingWindow+1 rows. Keys sort
// ascending by score with ties broken by name. With reverse the first
// amount keys are returned (lowest first, for ratio metrics where lower is
// better); otherwise the ascending order is reversed before slicing.
// An amount <= 0 returns every key.
func TopKeys(rows domain.NewestFirst, amount int, reverse bool) []string {
	if len(rows) == 0 {
		return nil
	}

	window := rows[:1]
	if len(rows) > TrailingWindow {
		window = rows[:TrailingWindow]
	}

	keys := domain.Columns(rows)
	scored := make([]scoredKey, len(keys))
	for i, k := range keys {
		sum := 0.0
		for _, r := range window {
			sum += r.Values[k]
		}
		scored[i] = scoredKey{key: k, score: sum}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score < scored[j].score
		}
		return scored[i].key < scored[j].key
	})

	if !reverse {
		for i, j := 0, len(scored)-1; i < j; i, j = i+1, j-1 {
			scored[i], scored[j] = scored[j], scored[i]
		}
	}

	if amount > 0 && amount < len(scored) {
		scored = scored[:amount]
	}

	out := make([]string, len(scored))
	for i, s := range scored {
		out[i] = s.key
	}
	return out
}

// Rank orders single-period entities highest value first.
// Entities rejected by keep are dropped first; a nil keep accepts all.
// Ties are broken by name so the output is deterministic.
func Rank(entities []domain.RankedEntity, keep func(v float64) bool) []domain.RankedEntity {
	var out []domain.RankedEntity
	for _, e := range entities {
		if keep == nil || keep(e.Value) {
			out = append(out, e)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value < out[j].Value
		}
		return out[i].Name < out[j].Name
	})
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// PEFilter drops non-positive and outlier P/E ratios, which are data noise.
func PEFilter(v float64) bool {
	return v > 0 && v <= PECeiling
}
