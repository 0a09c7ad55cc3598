package memory

import (
	"context"
	"sync"

	"exchange-indexer/internal/domain"
	"exchange-indexer/internal/storage"
)

// SinkBatch is one Write call recorded by BucketSink.
type SinkBatch struct {
	Block   uint64
	Buckets domain.Buckets
}

// BucketSink is an in-memory implementation of storage.BucketSink.
type BucketSink struct {
	mu      sync.Mutex
	batches []SinkBatch
}

// NewBucketSink creates an empty sink.
func NewBucketSink() *BucketSink {
	return &BucketSink{}
}

// Write records the buckets.
func (s *BucketSink) Write(_ context.Context, block uint64, b *domain.Buckets) error {
	if b == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.batches = append(s.batches, SinkBatch{Block: block, Buckets: *b})
	return nil
}

// Batches returns all recorded writes in order.
func (s *BucketSink) Batches() []SinkBatch {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]SinkBatch, len(s.batches))
	copy(out, s.batches)
	return out
}

var _ storage.BucketSink = (*BucketSink)(nil)
