package postgres

import (
	"context"
	"fmt"

	"exchange-indexer/internal/domain"
	"exchange-indexer/internal/storage"
)

// FactoryStore is a PostgreSQL implementation of storage.FactoryStore.
type FactoryStore struct {
	db querier
}

// GetByID retrieves the factory. Returns ErrNotFound if not exists.
func (s *FactoryStore) GetByID(ctx context.Context, id string) (*domain.Factory, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, pair_count, total_volume_usd, untracked_volume_usd,
		       total_liquidity_usd, total_transactions
		FROM factories
		WHERE id = $1
	`, id)

	var f domain.Factory
	err := row.Scan(&f.ID, &f.PairCount, &f.TotalVolumeUSD, &f.UntrackedVolumeUSD, &f.TotalLiquidityUSD, &f.TotalTransactions)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get factory %s: %w", id, err)
	}
	return &f, nil
}

// Upsert inserts or replaces the factory.
func (s *FactoryStore) Upsert(ctx context.Context, f *domain.Factory) error {
	if f == nil || f.ID == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO factories (
			id, pair_count, total_volume_usd, untracked_volume_usd,
			total_liquidity_usd, total_transactions, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (id) DO UPDATE
		SET pair_count = EXCLUDED.pair_count,
		    total_volume_usd = EXCLUDED.total_volume_usd,
		    untracked_volume_usd = EXCLUDED.untracked_volume_usd,
		    total_liquidity_usd = EXCLUDED.total_liquidity_usd,
		    total_transactions = EXCLUDED.total_transactions,
		    updated_at = NOW()
	`, f.ID, f.PairCount, f.TotalVolumeUSD, f.UntrackedVolumeUSD, f.TotalLiquidityUSD, f.TotalTransactions)
	if err != nil {
		return fmt.Errorf("upsert factory %s: %w", f.ID, err)
	}
	return nil
}

// BundleStore is a PostgreSQL implementation of storage.BundleStore.
type BundleStore struct {
	db querier
}

// GetByID retrieves the bundle. Returns ErrNotFound if not exists.
func (s *BundleStore) GetByID(ctx context.Context, id string) (*domain.Bundle, error) {
	var b domain.Bundle
	err := s.db.QueryRow(ctx, `SELECT id, eth_price_usd FROM bundles WHERE id = $1`, id).Scan(&b.ID, &b.EthPriceUSD)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get bundle %s: %w", id, err)
	}
	return &b, nil
}

// Upsert inserts or replaces the bundle.
func (s *BundleStore) Upsert(ctx context.Context, b *domain.Bundle) error {
	if b == nil || b.ID == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO bundles (id, eth_price_usd, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE
		SET eth_price_usd = EXCLUDED.eth_price_usd,
		    updated_at = NOW()
	`, b.ID, b.EthPriceUSD)
	if err != nil {
		return fmt.Errorf("upsert bundle %s: %w", b.ID, err)
	}
	return nil
}

var (
	_ storage.FactoryStore = (*FactoryStore)(nil)
	_ storage.BundleStore  = (*BundleStore)(nil)
)
