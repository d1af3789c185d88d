package warehouses

import (
	"context"
	"slices"
	"sync"
)

// MemoryRepository keeps depots in process memory. Used when no database
// is configured.
type MemoryRepository struct {
	mu     sync.RWMutex
	items  []Warehouse
	nextID int64
}

// NewMemoryRepository creates a repository holding seed, with ids assigned
// in order.
func NewMemoryRepository(seed []Warehouse) *MemoryRepository {
	r := &MemoryRepository{nextID: 1}
	for _, w := range seed {
		w.ID = r.nextID
		r.nextID++
		r.items = append(r.items, w)
	}
	return r
}

func (r *MemoryRepository) List(ctx context.Context) ([]Warehouse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.items), nil
}

func (r *MemoryRepository) Create(ctx context.Context, w Warehouse) (Warehouse, error) {
	w, err := Normalize(w)
	if err != nil {
		return Warehouse{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.Code == w.Code {
			return Warehouse{}, ErrDuplicateCode
		}
		if existing.Name == w.Name {
			return Warehouse{}, ErrDuplicateName
		}
	}
	w.ID = r.nextID
	r.nextID++
	r.items = append(r.items, w)
	return w, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := slices.IndexFunc(r.items, func(w Warehouse) bool { return w.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	r.items = slices.Delete(r.items, i, i+1)
	return nil
}

func (r *MemoryRepository) Stats(ctx context.Context) (Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Compute(r.items), nil
}
