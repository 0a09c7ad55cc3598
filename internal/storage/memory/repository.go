package memory

import (
	"context"
	"sync"

	"exchange-indexer/internal/domain"
	"exchange-indexer/internal/storage"
)

// Repository is an in-memory implementation of storage.Repository.
// Transactions are serialized; writes inside InTx are staged in an overlay
// and become visible only after fn returns nil.
type Repository struct {
	txMu sync.Mutex

	tokens      *table[domain.Token]
	pairs       *table[domain.Pair]
	factories   *table[domain.Factory]
	bundles     *table[domain.Bundle]
	factoryDays *table[domain.FactoryDayData]
	pairDays    *table[domain.PairDayData]
	pairHours   *table[domain.PairHourData]
	tokenDays   *table[domain.TokenDayData]
	cursor      *table[storage.Cursor]

	*view
}

// NewRepository creates an empty in-memory repository.
func NewRepository() *Repository {
	r := &Repository{
		tokens:      newTable[domain.Token](),
		pairs:       newTable[domain.Pair](),
		factories:   newTable[domain.Factory](),
		bundles:     newTable[domain.Bundle](),
		factoryDays: newTable[domain.FactoryDayData](),
		pairDays:    newTable[domain.PairDayData](),
		pairHours:   newTable[domain.PairHourData](),
		tokenDays:   newTable[domain.TokenDayData](),
		cursor:      newTable[storage.Cursor](),
	}
	r.view = &view{
		tokens:      &TokenStore{entityStore[domain.Token]{rows: r.tokens, id: tokenID}},
		pairs:       &PairStore{entityStore[domain.Pair]{rows: r.pairs, id: pairID}},
		factories:   &FactoryStore{entityStore[domain.Factory]{rows: r.factories, id: factoryID}},
		bundles:     &BundleStore{entityStore[domain.Bundle]{rows: r.bundles, id: bundleID}},
		factoryDays: &FactoryDayDataStore{entityStore[domain.FactoryDayData]{rows: r.factoryDays, id: factoryDayID}},
		pairDays:    &PairDayDataStore{entityStore[domain.PairDayData]{rows: r.pairDays, id: pairDayID}},
		pairHours:   &PairHourDataStore{entityStore[domain.PairHourData]{rows: r.pairHours, id: pairHourID}},
		tokenDays:   &TokenDayDataStore{entityStore[domain.TokenDayData]{rows: r.tokenDays, id: tokenDayID}},
		cursor:      &CursorStore{rows: r.cursor},
	}
	return r
}

// InTx runs fn against staged copies of every table and commits them when fn succeeds.
func (r *Repository) InTx(ctx context.Context, fn func(tx storage.Stores) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.txMu.Lock()
	defer r.txMu.Unlock()

	tokens := newOverlay(r.tokens)
	pairs := newOverlay(r.pairs)
	factories := newOverlay(r.factories)
	bundles := newOverlay(r.bundles)
	factoryDays := newOverlay(r.factoryDays)
	pairDays := newOverlay(r.pairDays)
	pairHours := newOverlay(r.pairHours)
	tokenDays := newOverlay(r.tokenDays)
	cursor := newOverlay(r.cursor)

	tx := &view{
		tokens:      &TokenStore{entityStore[domain.Token]{rows: tokens, id: tokenID}},
		pairs:       &PairStore{entityStore[domain.Pair]{rows: pairs, id: pairID}},
		factories:   &FactoryStore{entityStore[domain.Factory]{rows: factories, id: factoryID}},
		bundles:     &BundleStore{entityStore[domain.Bundle]{rows: bundles, id: bundleID}},
		factoryDays: &FactoryDayDataStore{entityStore[domain.FactoryDayData]{rows: factoryDays, id: factoryDayID}},
		pairDays:    &PairDayDataStore{entityStore[domain.PairDayData]{rows: pairDays, id: pairDayID}},
		pairHours:   &PairHourDataStore{entityStore[domain.PairHourData]{rows: pairHours, id: pairHourID}},
		tokenDays:   &TokenDayDataStore{entityStore[domain.TokenDayData]{rows: tokenDays, id: tokenDayID}},
		cursor:      &CursorStore{rows: cursor},
	}

	if err := fn(tx); err != nil {
		return err
	}

	tokens.commit()
	pairs.commit()
	factories.commit()
	bundles.commit()
	factoryDays.commit()
	pairDays.commit()
	pairHours.commit()
	tokenDays.commit()
	cursor.commit()
	return nil
}

// view binds a set of stores to either committed tables or a transaction's overlays.
type view struct {
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

func (v *view) Tokens() storage.TokenStore { return v.tokens }
func (v *view) Pairs() storage.PairStore { return v.pairs }
func (v *view) Factories() storage.FactoryStore { return v.factories }
func (v *view) Bundles() storage.BundleStore { return v.bundles }
func (v *view) FactoryDays() storage.FactoryDayDataStore { return v.factoryDays }
func (v *view) PairDays() storage.PairDayDataStore { return v.pairDays }
func (v *view) PairHours() storage.PairHourDataStore { return v.pairHours }
func (v *view) TokenDays() storage.TokenDayDataStore { return v.tokenDays }
func (v *view) Cursor() storage.CursorStore { return v.cursor }

func tokenID(t *domain.Token) string { return t.ID }
func pairID(p *domain.Pair) string { return p.ID }
func factoryID(f *domain.Factory) string { return f.ID }
func bundleID(b *domain.Bundle) string { return b.ID }
func factoryDayID(d *domain.FactoryDayData) string { return d.ID }
func pairDayID(d *domain.PairDayData) string { return d.ID }
func pairHourID(d *domain.PairHourData) string { return d.ID }
func tokenDayID(d *domain.TokenDayData) string { return d.ID }

var _ storage.Repository = (*Repository)(nil)
