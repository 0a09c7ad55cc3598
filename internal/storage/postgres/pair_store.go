package postgres

import (
	"context"
	"fmt"

	"exchange-indexer/internal/domain"
	"exchange-indexer/internal/storage"
)

// PairStore is a PostgreSQL implementation of storage.PairStore.
type PairStore struct {
	db querier
}

// GetByID retrieves a pair by address. Returns ErrNotFound if not exists.
func (s *PairStore) GetByID(ctx context.Context, id string) (*domain.Pair, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, token0, token1, reserve0, reserve1, total_supply, reserve_usd,
		       tracked_reserve_usd, token0_price, token1_price, volume_token0, volume_token1,
		       volume_usd, untracked_volume_usd, tx_count, created_at_timestamp, created_at_block
		FROM pairs
		WHERE id = $1
	`, id)

	var p domain.Pair
	err := row.Scan(
		&p.ID, &p.Token0, &p.Token1, &p.Reserve0, &p.Reserve1, &p.TotalSupply, &p.ReserveUSD,
		&p.TrackedReserveUSD, &p.Token0Price, &p.Token1Price, &p.VolumeToken0, &p.VolumeToken1,
		&p.VolumeUSD, &p.UntrackedVolumeUSD, &p.TxCount, &p.CreatedAtTimestamp, &p.CreatedAtBlock,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get pair %s: %w", id, err)
	}
	return &p, nil
}

// Upsert inserts or replaces the pair. Token references and creation fields
// are immutable after the first insert.
func (s *PairStore) Upsert(ctx context.Context, p *domain.Pair) error {
	if p == nil || p.ID == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO pairs (
			id, token0, token1, reserve0, reserve1, total_supply, reserve_usd,
			tracked_reserve_usd, token0_price, token1_price, volume_token0, volume_token1,
			volume_usd, untracked_volume_usd, tx_count, created_at_timestamp, created_at_block, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW())
		ON CONFLICT (id) DO UPDATE
		SET reserve0 = EXCLUDED.reserve0,
		    reserve1 = EXCLUDED.reserve1,
		    total_supply = EXCLUDED.total_supply,
		    reserve_usd = EXCLUDED.reserve_usd,
		    tracked_reserve_usd = EXCLUDED.tracked_reserve_usd,
		    token0_price = EXCLUDED.token0_price,
		    token1_price = EXCLUDED.token1_price,
		    volume_token0 = EXCLUDED.volume_token0,
		    volume_token1 = EXCLUDED.volume_token1,
		    volume_usd = EXCLUDED.volume_usd,
		    untracked_volume_usd = EXCLUDED.untracked_volume_usd,
		    tx_count = EXCLUDED.tx_count,
		    updated_at = NOW()
	`,
		p.ID, p.Token0, p.Token1, p.Reserve0, p.Reserve1, p.TotalSupply, p.ReserveUSD,
		p.TrackedReserveUSD, p.Token0Price, p.Token1Price, p.VolumeToken0, p.VolumeToken1,
		p.VolumeUSD, p.UntrackedVolumeUSD, p.TxCount, p.CreatedAtTimestamp, p.CreatedAtBlock,
	)
	if err != nil {
		return fmt.Errorf("upsert pair %s: %w", p.ID, err)
	}
	return nil
}

var _ storage.PairStore = (*PairStore)(nil)
