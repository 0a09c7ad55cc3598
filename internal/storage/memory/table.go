package memory

import (
	"context"
	"sync"

	"exchange-indexer/internal/storage"
)

// rowSet is a keyed set of records held by value, so reads and writes copy.
type rowSet[T any] interface {
	load(id string) (T, bool)
	store(id string, v T)
}

// table is the committed state of one entity type.
type table[T any] struct {
	mu   sync.RWMutex
	rows map[string]T
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]T)}
}

func (t *table[T]) load(id string) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.rows[id]
	return v, ok
}

func (t *table[T]) store(id string, v T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows[id] = v
}

// overlay stages writes on top of a table until commit.
type overlay[T any] struct {
	base   *table[T]
	staged map[string]T
}

func newOverlay[T any](base *table[T]) *overlay[T] {
	return &overlay[T]{base: base, staged: make(map[string]T)}
}

func (o *overlay[T]) load(id string) (T, bool) {
	if v, ok := o.staged[id]; ok {
		return v, true
	}
	return o.base.load(id)
}

func (o *overlay[T]) store(id string, v T) {
	o.staged[id] = v
}

func (o *overlay[T]) commit() {
	if len(o.staged) == 0 {
		return
	}
	o.base.mu.Lock()
	defer o.base.mu.Unlock()
	for id, v := range o.staged {
		o.base.rows[id] = v
	}
}

// entityStore implements GetByID and Upsert over a rowSet.
type entityStore[T any] struct {
	rows rowSet[T]
	id   func(*T) string
}

// GetByID returns a copy of the record. Returns storage.ErrNotFound if not exists.
func (s *entityStore[T]) GetByID(_ context.Context, id string) (*T, error) {
	v, ok := s.rows.load(id)
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &v, nil
}

// Upsert stores a copy of the record.
func (s *entityStore[T]) Upsert(_ context.Context, rec *T) error {
	if rec == nil || s.id(rec) == "" {
		return storage.ErrInvalidInput
	}
	s.rows.store(s.id(rec), *rec)
	return nil
}
