package storage

import (
	"context"
	"errors"
)

// LoadOrCreate loads the record with the given id, or builds a new one with init
// when the store reports ErrNotFound. The returned bool is true for a new record.
// The new record is not persisted.
func LoadOrCreate[T any](
	ctx context.Context,
	get func(ctx context.Context, id string) (*T, error),
	id string,
	init func() *T,
) (*T, bool, error) {
	rec, err := get(ctx, id)
	if err == nil {
		return rec, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}
	return init(), true, nil
}
