package storage

import (
	"context"

	"exchange-indexer/internal/domain"
)

// TokenStore provides access to tokens storage.
type TokenStore interface {
	// GetByID retrieves a token by address. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.Token, error)

	// Upsert inserts or replaces the token.
	Upsert(ctx context.Context, t *domain.Token) error
}

// PairStore provides access to pairs storage.
type PairStore interface {
	// GetByID retrieves a pair by address. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.Pair, error)

	// Upsert inserts or replaces the pair.
	Upsert(ctx context.Context, p *domain.Pair) error
}

// FactoryStore provides access to the factory singleton.
type FactoryStore interface {
	GetByID(ctx context.Context, id string) (*domain.Factory, error)
	Upsert(ctx context.Context, f *domain.Factory) error
}

// BundleStore provides access to the ETH price bundle.
type BundleStore interface {
	GetByID(ctx context.Context, id string) (*domain.Bundle, error)
	Upsert(ctx context.Context, b *domain.Bundle) error
}

// FactoryDayDataStore provides access to factory day buckets.
type FactoryDayDataStore interface {
	// GetByID retrieves a bucket by its day index key. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.FactoryDayData, error)
	Upsert(ctx context.Context, d *domain.FactoryDayData) error
}

// PairDayDataStore provides access to pair day buckets.
type PairDayDataStore interface {
	GetByID(ctx context.Context, id string) (*domain.PairDayData, error)
	Upsert(ctx context.Context, d *domain.PairDayData) error
}

// PairHourDataStore provides access to pair hour buckets.
type PairHourDataStore interface {
	GetByID(ctx context.Context, id string) (*domain.PairHourData, error)
	Upsert(ctx context.Context, d *domain.PairHourData) error
}

// TokenDayDataStore provides access to token day buckets.
type TokenDayDataStore interface {
	GetByID(ctx context.Context, id string) (*domain.TokenDayData, error)
	Upsert(ctx context.Context, d *domain.TokenDayData) error
}

// Stores groups every entity store of one storage backend.
// Inside Repository.InTx the stores share the transaction.
type Stores interface {
	Tokens() TokenStore
	Pairs() PairStore
	Factories() FactoryStore
	Bundles() BundleStore
	FactoryDays() FactoryDayDataStore
	PairDays() PairDayDataStore
	PairHours() PairHourDataStore
	TokenDays() TokenDayDataStore
	Cursor() CursorStore
}

// Repository is a storage backend with atomic multi-store writes.
type Repository interface {
	Stores

	// InTx runs fn against a transactional view of the stores.
	// Writes made through tx are committed only if fn returns nil.
	InTx(ctx context.Context, fn func(tx Stores) error) error
}

// BucketSink receives bucket snapshots after the event that touched them committed.
type BucketSink interface {
	// Write appends the buckets, versioned by block number.
	Write(ctx context.Context, block uint64, buckets *domain.Buckets) error
}
