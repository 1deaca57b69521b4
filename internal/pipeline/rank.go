package pipeline

import (
	"time"

	"github.com/sirupsen/logrus"

	"chart-metrics-lab/internal/domain"
	"chart-metrics-lab/internal/observability"
	"chart-metrics-lab/internal/topk"
)

// Rank builds a single-period ranking from the Default collection: the
// latest record of each entity, filtered by f.Keep, highest value first.
// Request.Amount > 0 truncates the list.
func (e *Engine) Rank(f RankFamily, req Request) []domain.RankedEntity {
	start := time.Now()
	if req.Data.Default == nil {
		e.log.WithField("family", f.Name).Debug("source not fetched")
		e.observeRank(observability.RankStats{Family: f.Name}, start)
		return []domain.RankedEntity{}
	}

	type latest struct {
		entity domain.RankedEntity
		ok     bool // metric present on the latest record
	}
	byProject := make(map[string]latest)
	for _, r := range filterRecords(req.Data.Default, req) {
		t, _ := domain.ParseDatetime(r.Datetime)
		prev, seen := byProject[r.Project]
		if seen && t.Before(prev.entity.Datetime) {
			continue
		}
		v, ok := r.Value(f.Metric)
		byProject[r.Project] = latest{
			entity: domain.RankedEntity{
				Name:     r.Project,
				Category: r.Category,
				Value:    v,
				Datetime: t,
			},
			ok: ok,
		}
	}

	entities := make([]domain.RankedEntity, 0, len(byProject))
	for _, l := range byProject {
		if l.ok {
			entities = append(entities, l.entity)
		}
	}

	ranked := topk.Rank(entities, f.Keep)
	if req.Amount > 0 && req.Amount < len(ranked) {
		ranked = ranked[:req.Amount]
	}
	if ranked == nil {
		ranked = []domain.RankedEntity{}
	}

	e.log.WithFields(logrus.Fields{
		"family":   f.Name,
		"entities": len(byProject),
		"ranked":   len(ranked),
	}).Debug("ranking built")

	e.observeRank(observability.RankStats{
		Family:   f.Name,
		Fetched:  true,
		Entities: len(ranked),
	}, start)

	return ranked
}

func (e *Engine) observeRank(s observability.RankStats, start time.Time) {
	if e.metrics == nil {
		return
	}
	s.Duration = time.Since(start)
	e.metrics.ObserveRank(s)
}
