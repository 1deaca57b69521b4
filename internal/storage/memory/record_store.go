package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"chart-metrics-lab/internal/domain"
	"chart-metrics-lab/internal/storage"
)

type storedRecord struct {
	collection domain.Collection
	record     domain.MetricRecord
	at         time.Time // zero when the datetime does not parse
	seq        int       // insertion order, breaks ordering ties
}

// RecordStore is an in-memory implementation of storage.RecordStore.
type RecordStore struct {
	mu      sync.RWMutex
	data    map[string]storedRecord // keyed by (collection, project, datetime)
	fetched map[domain.Collection]bool
	seq     int
}

// NewRecordStore creates a new in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		data:    make(map[string]storedRecord),
		fetched: make(map[domain.Collection]bool),
	}
}

// recordKey generates a unique key for a record. Parseable datetimes are
// normalised so equivalent spellings of one instant collide.
func recordKey(c domain.Collection, r domain.MetricRecord) string {
	dt := r.Datetime
	if t, ok := domain.ParseDatetime(dt); ok {
		dt = t.Format(time.RFC3339Nano)
	}
	return fmt.Sprintf("%s|%s|%s", c, r.Project, dt)
}

// InsertBulk adds multiple records. Fails entire batch on duplicate.
func (s *RecordStore) InsertBulk(_ context.Context, collection domain.Collection, records []domain.MetricRecord) error {
	if _, err := domain.ParseCollection(string(collection)); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[string]struct{}, len(records))

	// First pass: check for duplicates (existing + intra-batch)
	for _, r := range records {
		if r.Project == "" {
			return fmt.Errorf("%w: empty project at %q", storage.ErrInvalidInput, r.Datetime)
		}
		key := recordKey(collection, r)

		if _, exists := s.data[key]; exists {
			return fmt.Errorf("%w: %s", storage.ErrDuplicateKey, key)
		}
		if _, exists := batchKeys[key]; exists {
			return fmt.Errorf("%w: %s repeated in batch", storage.ErrDuplicateKey, key)
		}
		batchKeys[key] = struct{}{}
	}

	// Second pass: insert all
	for _, r := range records {
		at, _ := domain.ParseDatetime(r.Datetime)
		s.data[recordKey(collection, r)] = storedRecord{collection: collection, record: r, at: at, seq: s.seq}
		s.seq++
	}
	s.fetched[collection] = true

	return nil
}

// GetDataSet returns the records of projects (all when empty), newest first.
func (s *RecordStore) GetDataSet(_ context.Context, projects []string) (domain.DataSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.dataSet(projectFilter(projects)), nil
}

// GetBulk returns one DataSet per project.
func (s *RecordStore) GetBulk(_ context.Context, projects []string) (map[string]domain.DataSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := projects
	if len(names) == 0 {
		names = s.projects()
	}

	out := make(map[string]domain.DataSet, len(names))
	for _, name := range names {
		out[name] = s.dataSet(projectFilter([]string{name}))
	}
	return out, nil
}

// Projects lists every project with at least one record, sorted.
func (s *RecordStore) Projects(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.projects(), nil
}

func (s *RecordStore) projects() []string {
	seen := make(map[string]struct{})
	for _, sr := range s.data {
		seen[sr.record.Project] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// dataSet must be called with s.mu held.
func (s *RecordStore) dataSet(keep func(string) bool) domain.DataSet {
	byCollection := make(map[domain.Collection][]storedRecord)
	for _, sr := range s.data {
		if !keep(sr.record.Project) {
			continue
		}
		byCollection[sr.collection] = append(byCollection[sr.collection], sr)
	}

	var ds domain.DataSet
	for _, c := range []domain.Collection{domain.CollectionDefault, domain.CollectionDaily, domain.CollectionMonthly} {
		if !s.fetched[c] {
			continue
		}
		records := newestFirst(byCollection[c])
		switch c {
		case domain.CollectionDefault:
			ds.Default = records
		case domain.CollectionDaily:
			ds.Daily = records
		case domain.CollectionMonthly:
			ds.Monthly = records
		}
	}
	return ds
}

// newestFirst orders records by datetime DESC, insertion order ASC.
// Records with an unparseable datetime sort last.
func newestFirst(stored []storedRecord) []domain.MetricRecord {
	sort.Slice(stored, func(i, j int) bool {
		if !stored[i].at.Equal(stored[j].at) {
			return stored[i].at.After(stored[j].at)
		}
		return stored[i].seq < stored[j].seq
	})

	out := make([]domain.MetricRecord, len(stored))
	for i, sr := range stored {
		out[i] = sr.record
	}
	return out
}

func projectFilter(projects []string) func(string) bool {
	if len(projects) == 0 {
		return func(string) bool { return true }
	}
	set := make(map[string]struct{}, len(projects))
	for _, p := range projects {
		set[p] = struct{}{}
	}
	return func(p string) bool {
		_, ok := set[p]
		return ok
	}
}

var _ storage.RecordStore = (*RecordStore)(nil)
