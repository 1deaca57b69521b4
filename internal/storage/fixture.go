package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"chart-metrics-lab/internal/domain"
)

// Fixture is a recorded backend response: flat collections and, for
// competitive charts, per-entity collections.
type Fixture struct {
	domain.DataSet
	Bulk map[string]domain.DataSet `json:"bulk,omitempty"`
}

// DecodeFixture reads a JSON fixture.
func DecodeFixture(r io.Reader) (*Fixture, error) {
	var f Fixture
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &f, nil
}

// Load inserts every record of the fixture into store.
// Bulk records are attributed to their entity name.
func (f *Fixture) Load(ctx context.Context, store RecordStore) error {
	if err := loadDataSet(ctx, store, f.DataSet, ""); err != nil {
		return err
	}

	names := make([]string, 0, len(f.Bulk))
	for name := range f.Bulk {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := loadDataSet(ctx, store, f.Bulk[name], name); err != nil {
			return fmt.Errorf("load bulk %s: %w", name, err)
		}
	}
	return nil
}

func loadDataSet(ctx context.Context, store RecordStore, ds domain.DataSet, project string) error {
	for _, c := range []domain.Collection{domain.CollectionDefault, domain.CollectionDaily, domain.CollectionMonthly} {
		records := ds.Collection(c)
		if records == nil {
			continue
		}
		if project != "" {
			attributed := make([]domain.MetricRecord, len(records))
			for i, r := range records {
				attributed[i] = r.WithProject(project)
			}
			records = attributed
		}
		if err := store.InsertBulk(ctx, c, records); err != nil {
			return fmt.Errorf("insert %s: %w", c, err)
		}
	}
	return nil
}
