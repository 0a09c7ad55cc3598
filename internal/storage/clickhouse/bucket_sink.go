package clickhouse

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"exchange-indexer/internal/domain"
	"exchange-indexer/internal/storage"
)

// columnScale matches Decimal(76, 18) in the snapshot tables.
const columnScale = 18

// BucketSink implements storage.BucketSink using ClickHouse.
// Every write appends a new row version; ReplacingMergeTree collapses
// rows of the same bucket to the one with the highest block.
type BucketSink struct {
	conn *Conn
}

// NewBucketSink creates a new BucketSink.
func NewBucketSink(conn *Conn) *BucketSink {
	return &BucketSink{conn: conn}
}

// Compile-time interface check.
var _ storage.BucketSink = (*BucketSink)(nil)

// Write appends one row per bucket, grouped into a batch per table.
func (s *BucketSink) Write(ctx context.Context, block uint64, b *domain.Buckets) error {
	if b == nil {
		return storage.ErrInvalidInput
	}
	if err := s.writeFactoryDays(ctx, block, b.FactoryDays); err != nil {
		return err
	}
	if err := s.writePairDays(ctx, block, b.PairDays); err != nil {
		return err
	}
	if err := s.writePairHours(ctx, block, b.PairHours); err != nil {
		return err
	}
	return s.writeTokenDays(ctx, block, b.TokenDays)
}

func (s *BucketSink) writeFactoryDays(ctx context.Context, block uint64, rows []*domain.FactoryDayData) error {
	if len(rows) == 0 {
		return nil
	}
	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO factory_day_snapshots (
			id, date, block_number, daily_volume_usd, daily_volume_untracked, daily_txns,
			total_volume_usd, total_liquidity_usd, total_transactions
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare factory day batch: %w", err)
	}
	for _, d := range rows {
		err = batch.Append(
			d.ID, d.Date, block, scaled(d.DailyVolumeUSD), scaled(d.DailyVolumeUntracked), d.DailyTxns,
			scaled(d.TotalVolumeUSD), scaled(d.TotalLiquidityUSD), d.TotalTransactions,
		)
		if err != nil {
			return fmt.Errorf("append factory day %s: %w", d.ID, err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send factory day batch: %w", err)
	}
	return nil
}

func (s *BucketSink) writePairDays(ctx context.Context, block uint64, rows []*domain.PairDayData) error {
	if len(rows) == 0 {
		return nil
	}
	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO pair_day_snapshots (
			id, date, block_number, pair_address, token0, token1,
			reserve0, reserve1, total_supply, reserve_usd,
			daily_volume_token0, daily_volume_token1, daily_volume_usd, daily_txns
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare pair day batch: %w", err)
	}
	for _, d := range rows {
		err = batch.Append(
			d.ID, d.Date, block, d.PairAddress, d.Token0, d.Token1,
			scaled(d.Reserve0), scaled(d.Reserve1), scaled(d.TotalSupply), scaled(d.ReserveUSD),
			scaled(d.DailyVolumeToken0), scaled(d.DailyVolumeToken1), scaled(d.DailyVolumeUSD), d.DailyTxns,
		)
		if err != nil {
			return fmt.Errorf("append pair day %s: %w", d.ID, err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send pair day batch: %w", err)
	}
	return nil
}

func (s *BucketSink) writePairHours(ctx context.Context, block uint64, rows []*domain.PairHourData) error {
	if len(rows) == 0 {
		return nil
	}
	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO pair_hour_snapshots (
			id, hour_start_unix, block_number, pair,
			reserve0, reserve1, total_supply, reserve_usd,
			hourly_volume_token0, hourly_volume_token1, hourly_volume_usd, hourly_txns
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare pair hour batch: %w", err)
	}
	for _, d := range rows {
		err = batch.Append(
			d.ID, d.HourStartUnix, block, d.Pair,
			scaled(d.Reserve0), scaled(d.Reserve1), scaled(d.TotalSupply), scaled(d.ReserveUSD),
			scaled(d.HourlyVolumeToken0), scaled(d.HourlyVolumeToken1), scaled(d.HourlyVolumeUSD), d.HourlyTxns,
		)
		if err != nil {
			return fmt.Errorf("append pair hour %s: %w", d.ID, err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send pair hour batch: %w", err)
	}
	return nil
}

func (s *BucketSink) writeTokenDays(ctx context.Context, block uint64, rows []*domain.TokenDayData) error {
	if len(rows) == 0 {
		return nil
	}
	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO token_day_snapshots (
			id, date, block_number, token, price_usd,
			total_liquidity_token, total_liquidity_usd,
			daily_volume_token, daily_volume_usd, daily_txns
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare token day batch: %w", err)
	}
	for _, d := range rows {
		err = batch.Append(
			d.ID, d.Date, block, d.Token, scaled(d.PriceUSD),
			scaled(d.TotalLiquidityToken), scaled(d.TotalLiquidityUSD),
			scaled(d.DailyVolumeToken), scaled(d.DailyVolumeUSD), d.DailyTxns,
		)
		if err != nil {
			return fmt.Errorf("append token day %s: %w", d.ID, err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send token day batch: %w", err)
	}
	return nil
}

func scaled(d decimal.Decimal) decimal.Decimal {
	return d.Round(columnScale)
}
