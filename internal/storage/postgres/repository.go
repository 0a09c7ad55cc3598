package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"exchange-indexer/internal/storage"
)

// Repository is a PostgreSQL implementation of storage.Repository.
type Repository struct {
	pool *Pool
	*stores
}

// NewRepository creates a repository whose stores run on the pool.
func NewRepository(pool *Pool) *Repository {
	return &Repository{pool: pool, stores: newStores(pool)}
}

// InTx runs fn inside a single database transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
func (r *Repository) InTx(ctx context.Context, fn func(tx storage.Stores) error) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(newStores(tx))
	})
}

// stores binds every store to one querier.
type stores struct {
	tokens      *TokenStore
	pairs       *PairStore
	factories   *FactoryStore
	bundles     *BundleStore
	factoryDays *FactoryDayDataStore
	pairDays    *PairDayDataStore
	pairHours   *PairHourDataStore
	tokenDays   *TokenDayDataStore
	cursor      *CursorStore
}

func newStores(db querier) *stores {
	return &stores{
		tokens:      &TokenStore{db: db},
		pairs:       &PairStore{db: db},
		factories:   &FactoryStore{db: db},
		bundles:     &BundleStore{db: db},
		factoryDays: &FactoryDayDataStore{db: db},
		pairDays:    &PairDayDataStore{db: db},
		pairHours:   &PairHourDataStore{db: db},
		tokenDays:   &TokenDayDataStore{db: db},
		cursor:      &CursorStore{db: db},
	}
}

func (s *stores) Tokens() storage.TokenStore { return s.tokens }
func (s *stores) Pairs() storage.PairStore { return s.pairs }
func (s *stores) Factories() storage.FactoryStore { return s.factories }
func (s *stores) Bundles() storage.BundleStore { return s.bundles }
func (s *stores) FactoryDays() storage.FactoryDayDataStore { return s.factoryDays }
func (s *stores) PairDays() storage.PairDayDataStore { return s.pairDays }
func (s *stores) PairHours() storage.PairHourDataStore { return s.pairHours }
func (s *stores) TokenDays() storage.TokenDayDataStore { return s.tokenDays }
func (s *stores) Cursor() storage.CursorStore { return s.cursor }

var _ storage.Repository = (*Repository)(nil)
