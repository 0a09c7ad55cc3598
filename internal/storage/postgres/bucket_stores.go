package postgres

import (
	"context"
	"fmt"

	"exchange-indexer/internal/domain"
	"exchange-indexer/internal/storage"
)

// FactoryDayDataStore is a PostgreSQL implementation of storage.FactoryDayDataStore.
type FactoryDayDataStore struct {
	db querier
}

// GetByID retrieves a factory day bucket. Returns ErrNotFound if not exists.
func (s *FactoryDayDataStore) GetByID(ctx context.Context, id string) (*domain.FactoryDayData, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, date, daily_volume_usd, daily_volume_untracked, daily_txns,
		       total_volume_usd, total_liquidity_usd, total_transactions
		FROM factory_day_data
		WHERE id = $1
	`, id)

	var d domain.FactoryDayData
	err := row.Scan(
		&d.ID, &d.Date, &d.DailyVolumeUSD, &d.DailyVolumeUntracked, &d.DailyTxns,
		&d.TotalVolumeUSD, &d.TotalLiquidityUSD, &d.TotalTransactions,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get factory day %s: %w", id, err)
	}
	return &d, nil
}

// Upsert inserts or replaces the bucket.
func (s *FactoryDayDataStore) Upsert(ctx context.Context, d *domain.FactoryDayData) error {
	if d == nil || d.ID == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO factory_day_data (
			id, date, daily_volume_usd, daily_volume_untracked, daily_txns,
			total_volume_usd, total_liquidity_usd, total_transactions
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET daily_volume_usd = EXCLUDED.daily_volume_usd,
		    daily_volume_untracked = EXCLUDED.daily_volume_untracked,
		    daily_txns = EXCLUDED.daily_txns,
		    total_volume_usd = EXCLUDED.total_volume_usd,
		    total_liquidity_usd = EXCLUDED.total_liquidity_usd,
		    total_transactions = EXCLUDED.total_transactions
	`,
		d.ID, d.Date, d.DailyVolumeUSD, d.DailyVolumeUntracked, d.DailyTxns,
		d.TotalVolumeUSD, d.TotalLiquidityUSD, d.TotalTransactions,
	)
	if err != nil {
		return fmt.Errorf("upsert factory day %s: %w", d.ID, err)
	}
	return nil
}

// PairDayDataStore is a PostgreSQL implementation of storage.PairDayDataStore.
type PairDayDataStore struct {
	db querier
}

// GetByID retrieves a pair day bucket. Returns ErrNotFound if not exists.
func (s *PairDayDataStore) GetByID(ctx context.Context, id string) (*domain.PairDayData, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, date, pair_address, token0, token1, reserve0, reserve1, total_supply,
		       reserve_usd, daily_volume_token0, daily_volume_token1, daily_volume_usd, daily_txns
		FROM pair_day_data
		WHERE id = $1
	`, id)

	var d domain.PairDayData
	err := row.Scan(
		&d.ID, &d.Date, &d.PairAddress, &d.Token0, &d.Token1, &d.Reserve0, &d.Reserve1, &d.TotalSupply,
		&d.ReserveUSD, &d.DailyVolumeToken0, &d.DailyVolumeToken1, &d.DailyVolumeUSD, &d.DailyTxns,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get pair day %s: %w", id, err)
	}
	return &d, nil
}

// Upsert inserts or replaces the bucket. Relationship fields keep their
// first written value.
func (s *PairDayDataStore) Upsert(ctx context.Context, d *domain.PairDayData) error {
	if d == nil || d.ID == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO pair_day_data (
			id, date, pair_address, token0, token1, reserve0, reserve1, total_supply,
			reserve_usd, daily_volume_token0, daily_volume_token1, daily_volume_usd, daily_txns
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE
		SET reserve0 = EXCLUDED.reserve0,
		    reserve1 = EXCLUDED.reserve1,
		    total_supply = EXCLUDED.total_supply,
		    reserve_usd = EXCLUDED.reserve_usd,
		    daily_volume_token0 = EXCLUDED.daily_volume_token0,
		    daily_volume_token1 = EXCLUDED.daily_volume_token1,
		    daily_volume_usd = EXCLUDED.daily_volume_usd,
		    daily_txns = EXCLUDED.daily_txns
	`,
		d.ID, d.Date, d.PairAddress, d.Token0, d.Token1, d.Reserve0, d.Reserve1, d.TotalSupply,
		d.ReserveUSD, d.DailyVolumeToken0, d.DailyVolumeToken1, d.DailyVolumeUSD, d.DailyTxns,
	)
	if err != nil {
		return fmt.Errorf("upsert pair day %s: %w", d.ID, err)
	}
	return nil
}

// PairHourDataStore is a PostgreSQL implementation of storage.PairHourDataStore.
type PairHourDataStore struct {
	db querier
}

// GetByID retrieves a pair hour bucket. Returns ErrNotFound if not exists.
func (s *PairHourDataStore) GetByID(ctx context.Context, id string) (*domain.PairHourData, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, hour_start_unix, pair, reserve0, reserve1, total_supply, reserve_usd,
		       hourly_volume_token0, hourly_volume_token1, hourly_volume_usd, hourly_txns
		FROM pair_hour_data
		WHERE id = $1
	`, id)

	var d domain.PairHourData
	err := row.Scan(
		&d.ID, &d.HourStartUnix, &d.Pair, &d.Reserve0, &d.Reserve1, &d.TotalSupply, &d.ReserveUSD,
		&d.HourlyVolumeToken0, &d.HourlyVolumeToken1, &d.HourlyVolumeUSD, &d.HourlyTxns,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get pair hour %s: %w", id, err)
	}
	return &d, nil
}

// Upsert inserts or replaces the bucket.
func (s *PairHourDataStore) Upsert(ctx context.Context, d *domain.PairHourData) error {
	if d == nil || d.ID == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO pair_hour_data (
			id, hour_start_unix, pair, reserve0, reserve1, total_supply, reserve_usd,
			hourly_volume_token0, hourly_volume_token1, hourly_volume_usd, hourly_txns
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE
		SET reserve0 = EXCLUDED.reserve0,
		    reserve1 = EXCLUDED.reserve1,
		    total_supply = EXCLUDED.total_supply,
		    reserve_usd = EXCLUDED.reserve_usd,
		    hourly_volume_token0 = EXCLUDED.hourly_volume_token0,
		    hourly_volume_token1 = EXCLUDED.hourly_volume_token1,
		    hourly_volume_usd = EXCLUDED.hourly_volume_usd,
		    hourly_txns = EXCLUDED.hourly_txns
	`,
		d.ID, d.HourStartUnix, d.Pair, d.Reserve0, d.Reserve1, d.TotalSupply, d.ReserveUSD,
		d.HourlyVolumeToken0, d.HourlyVolumeToken1, d.HourlyVolumeUSD, d.HourlyTxns,
	)
	if err != nil {
		return fmt.Errorf("upsert pair hour %s: %w", d.ID, err)
	}
	return nil
}

// TokenDayDataStore is a PostgreSQL implementation of storage.TokenDayDataStore.
type TokenDayDataStore struct {
	db querier
}

// GetByID retrieves a token day bucket. Returns ErrNotFound if not exists.
func (s *TokenDayDataStore) GetByID(ctx context.Context, id string) (*domain.TokenDayData, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, date, token, price_usd, total_liquidity_token, total_liquidity_usd,
		       daily_volume_token, daily_volume_usd, daily_txns
		FROM token_day_data
		WHERE id = $1
	`, id)

	var d domain.TokenDayData
	err := row.Scan(
		&d.ID, &d.Date, &d.Token, &d.PriceUSD, &d.TotalLiquidityToken, &d.TotalLiquidityUSD,
		&d.DailyVolumeToken, &d.DailyVolumeUSD, &d.DailyTxns,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get token day %s: %w", id, err)
	}
	return &d, nil
}

// Upsert inserts or replaces the bucket.
func (s *TokenDayDataStore) Upsert(ctx context.Context, d *domain.TokenDayData) error {
	if d == nil || d.ID == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO token_day_data (
			id, date, token, price_usd, total_liquidity_token, total_liquidity_usd,
			daily_volume_token, daily_volume_usd, daily_txns
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE
		SET price_usd = EXCLUDED.price_usd,
		    total_liquidity_token = EXCLUDED.total_liquidity_token,
		    total_liquidity_usd = EXCLUDED.total_liquidity_usd,
		    daily_volume_token = EXCLUDED.daily_volume_token,
		    daily_volume_usd = EXCLUDED.daily_volume_usd,
		    daily_txns = EXCLUDED.daily_txns
	`,
		d.ID, d.Date, d.Token, d.PriceUSD, d.TotalLiquidityToken, d.TotalLiquidityUSD,
		d.DailyVolumeToken, d.DailyVolumeUSD, d.DailyTxns,
	)
	if err != nil {
		return fmt.Errorf("upsert token day %s: %w", d.ID, err)
	}
	return nil
}

var (
	_ storage.FactoryDayDataStore = (*FactoryDayDataStore)(nil)
	_ storage.PairDayDataStore    = (*PairDayDataStore)(nil)
	_ storage.PairHourDataStore   = (*PairHourDataStore)(nil)
	_ storage.TokenDayDataStore   = (*TokenDayDataStore)(nil)
)
