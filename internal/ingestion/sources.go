// Package ingestion feeds decoded exchange events to the indexer.
package ingestion

import (
	"context"

	"exchange-indexer/internal/domain"
)

// Source yields events one at a time in chain order.
type Source interface {
	// Next returns the next event, or io.EOF when a finite source is drained.
	Next(ctx context.Context) (*domain.Event, error)

	Close() error
}

// Acker is implemented by sources that must be told an event was applied
// before it is considered delivered.
type Acker interface {
	Ack(ctx context.Context, ev *domain.Event) error
}
