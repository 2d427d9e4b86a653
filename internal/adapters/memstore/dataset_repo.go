// Package memstore provides the in-memory dataset repository. Analysis
// results live for the lifetime of the process; restarting the service
// starts from an empty store.
package memstore

import (
	"context"
	"sync"

	"github.com/nthds/segyscope/internal/core/domain"
)

// DatasetRepository stores datasets in a map guarded by a RWMutex, with a
// side slice preserving upload order for listings.
type DatasetRepository struct {
	mu    sync.RWMutex
	byID  map[string]*domain.Dataset
	order []string
}

// NewDatasetRepository creates an empty in-memory repository.
func NewDatasetRepository() *DatasetRepository {
	return &DatasetRepository{byID: make(map[string]*domain.Dataset)}
}

// Save stores a dataset. Saving an existing ID overwrites it in place and
// keeps its original position in the listing order.
func (r *DatasetRepository) Save(ctx context.Context, ds *domain.Dataset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[ds.ID]; !exists {
		r.order = append(r.order, ds.ID)
	}
	r.byID[ds.ID] = ds
	return nil
}

// GetByID returns the dataset with the given ID, or domain.ErrNotFound.
func (r *DatasetRepository) GetByID(ctx context.Context, id string) (*domain.Dataset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ds, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return ds, nil
}

// List returns all datasets in upload order.
func (r *DatasetRepository) List(ctx context.Context) ([]domain.Dataset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Dataset, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.byID[id])
	}
	return out, nil
}

// Delete removes a dataset, returning domain.ErrNotFound for unknown IDs.
func (r *DatasetRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Count returns the number of stored datasets.
func (r *DatasetRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
