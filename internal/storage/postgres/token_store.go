package postgres

import (
	"context"
	"fmt"

	"exchange-indexer/internal/domain"
	"exchange-indexer/internal/storage"
)

// TokenStore is a PostgreSQL implementation of storage.TokenStore.
type TokenStore struct {
	db querier
}

// GetByID retrieves a token by address. Returns ErrNotFound if not exists.
func (s *TokenStore) GetByID(ctx context.Context, id string) (*domain.Token, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, symbol, name, decimals, total_supply, trade_volume, trade_volume_usd,
		       untracked_volume_usd, tx_count, total_liquidity, derived_usd
		FROM tokens
		WHERE id = $1
	`, id)

	var t domain.Token
	err := row.Scan(
		&t.ID, &t.Symbol, &t.Name, &t.Decimals, &t.TotalSupply, &t.TradeVolume, &t.TradeVolumeUSD,
		&t.UntrackedVolumeUSD, &t.TxCount, &t.TotalLiquidity, &t.DerivedUSD,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get token %s: %w", id, err)
	}
	return &t, nil
}

// Upsert inserts or replaces the token.
func (s *TokenStore) Upsert(ctx context.Context, t *domain.Token) error {
	if t == nil || t.ID == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO tokens (
			id, symbol, name, decimals, total_supply, trade_volume, trade_volume_usd,
			untracked_volume_usd, tx_count, total_liquidity, derived_usd, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		ON CONFLICT (id) DO UPDATE
		SET symbol = EXCLUDED.symbol,
		    name = EXCLUDED.name,
		    decimals = EXCLUDED.decimals,
		    total_supply = EXCLUDED.total_supply,
		    trade_volume = EXCLUDED.trade_volume,
		    trade_volume_usd = EXCLUDED.trade_volume_usd,
		    untracked_volume_usd = EXCLUDED.untracked_volume_usd,
		    tx_count = EXCLUDED.tx_count,
		    total_liquidity = EXCLUDED.total_liquidity,
		    derived_usd = EXCLUDED.derived_usd,
		    updated_at = NOW()
	`,
		t.ID, t.Symbol, t.Name, t.Decimals, t.TotalSupply, t.TradeVolume, t.TradeVolumeUSD,
		t.UntrackedVolumeUSD, t.TxCount, t.TotalLiquidity, t.DerivedUSD,
	)
	if err != nil {
		return fmt.Errorf("upsert token %s: %w", t.ID, err)
	}
	return nil
}

var _ storage.TokenStore = (*TokenStore)(nil)
