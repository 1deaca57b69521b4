package storage

import (
	"context"
	"errors"

	"chart-metrics-lab/internal/domain"
)

var (
	// ErrDuplicateKey rejects a record whose (collection, project, datetime)
	// is already stored. Stores are append-only.
	ErrDuplicateKey = errors.New("record already stored")

	// ErrInvalidInput rejects a record or collection the store cannot key.
	ErrInvalidInput = errors.New("invalid record")
)

// RecordStore holds fetched metric records until a chart pulls them.
// It stands in for the fetch layer; the engine itself never reads from it.
type RecordStore interface {
	// InsertBulk adds records to a collection atomically.
	// Fails the entire batch with ErrDuplicateKey if any (collection, project,
	// datetime) already exists or repeats within the batch.
	InsertBulk(ctx context.Context, collection domain.Collection, records []domain.MetricRecord) error

	// GetDataSet returns the records of the given projects (all when empty),
	// newest first per collection. A collection that received no inserts is nil.
	GetDataSet(ctx context.Context, projects []string) (domain.DataSet, error)

	// GetBulk returns one DataSet per project, for competitive charts.
	GetBulk(ctx context.Context, projects []string) (map[string]domain.DataSet, error)

	// Projects lists every project with at least one record, sorted.
	Projects(ctx context.Context) ([]string, error)
}
