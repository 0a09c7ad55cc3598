// Package rollup maintains the day and hour bucket records of the factory,
// pairs and tokens.
//
// Every update follows the same steps: derive the period index from the
// event timestamp, load or create the bucket, copy the owner's current
// cumulative fields, count the event once and persist. Volume fields are
// left to the caller, which adds to the returned bucket and persists again
// inside the same transaction.
package rollup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"exchange-indexer/internal/bucketid"
	"exchange-indexer/internal/domain"
	"exchange-indexer/internal/numeric"
	"exchange-indexer/internal/observability"
	"exchange-indexer/internal/storage"
)

// Bucket dimensions, used as metric labels.
const (
	DimensionFactoryDay = "factory_day"
	DimensionPairDay    = "pair_day"
	DimensionPairHour   = "pair_hour"
	DimensionTokenDay   = "token_day"
)

// Options configures an Engine.
type Options struct {
	Logger zerolog.Logger
}

// Engine updates bucket records through a storage view.
type Engine struct {
	stores    storage.Stores
	factoryID string
	logger    zerolog.Logger
}

// NewEngine creates an engine for the factory, reading and writing through stores.
func NewEngine(stores storage.Stores, factoryID string, opts Options) *Engine {
	return &Engine{
		stores:    stores,
		factoryID: strings.ToLower(factoryID),
		logger:    opts.Logger.With().Str("component", "rollup").Logger(),
	}
}

// WithStores returns a copy of the engine bound to stores, normally a transaction view.
func (e *Engine) WithStores(stores storage.Stores) *Engine {
	cp := *e
	cp.stores = stores
	return &cp
}

// UpdateFactoryDayData counts ev in the factory's day bucket.
func (e *Engine) UpdateFactoryDayData(ctx context.Context, ev *domain.Event) (*domain.FactoryDayData, error) {
	factory, err := e.stores.Factories().GetByID(ctx, e.factoryID)
	if err != nil {
		return nil, ownerError("factory", e.factoryID, err)
	}

	day := bucketid.DayIndex(ev.BlockTimestamp)
	id := bucketid.FactoryDayID(day)

	bucket, created, err := storage.LoadOrCreate(ctx, e.stores.FactoryDays().GetByID, id, func() *domain.FactoryDayData {
		return &domain.FactoryDayData{
			ID:                   id,
			Date:                 day * bucketid.DaySeconds,
			DailyVolumeUSD:       numeric.Zero,
			DailyVolumeUntracked: numeric.Zero,
		}
	})
	if err != nil {
		return nil, fmt.Errorf("load factory day %s: %w", id, err)
	}

	bucket.TotalVolumeUSD = factory.TotalVolumeUSD
	bucket.TotalLiquidityUSD = factory.TotalLiquidityUSD
	bucket.TotalTransactions = factory.TotalTransactions
	bucket.DailyTxns++

	if err := e.stores.FactoryDays().Upsert(ctx, bucket); err != nil {
		return nil, fmt.Errorf("save factory day %s: %w", id, err)
	}
	e.created(created, DimensionFactoryDay, id)
	return bucket, nil
}

// UpdatePairDayData counts ev in the day bucket of the emitting pair.
func (e *Engine) UpdatePairDayData(ctx context.Context, ev *domain.Event) (*domain.PairDayData, error) {
	pairID := strings.ToLower(ev.Address)
	pair, err := e.stores.Pairs().GetByID(ctx, pairID)
	if err != nil {
		return nil, ownerError("pair", pairID, err)
	}

	day := bucketid.DayIndex(ev.BlockTimestamp)
	id := bucketid.PairDayID(pairID, day)

	bucket, created, err := storage.LoadOrCreate(ctx, e.stores.PairDays().GetByID, id, func() *domain.PairDayData {
		return &domain.PairDayData{
			ID:                id,
			Date:              day * bucketid.DaySeconds,
			PairAddress:       pairID,
			Token0:            pair.Token0,
			Token1:            pair.Token1,
			DailyVolumeToken0: numeric.Zero,
			DailyVolumeToken1: numeric.Zero,
			DailyVolumeUSD:    numeric.Zero,
		}
	})
	if err != nil {
		return nil, fmt.Errorf("load pair day %s: %w", id, err)
	}

	bucket.Reserve0 = pair.Reserve0
	bucket.Reserve1 = pair.Reserve1
	bucket.TotalSupply = pair.TotalSupply
	bucket.ReserveUSD = pair.ReserveUSD
	bucket.DailyTxns++

	if err := e.stores.PairDays().Upsert(ctx, bucket); err != nil {
		return nil, fmt.Errorf("save pair day %s: %w", id, err)
	}
	e.created(created, DimensionPairDay, id)
	return bucket, nil
}

// UpdatePairHourData counts ev in the hour bucket of the emitting pair.
func (e *Engine) UpdatePairHourData(ctx context.Context, ev *domain.Event) (*domain.PairHourData, error) {
	pairID := strings.ToLower(ev.Address)
	pair, err := e.stores.Pairs().GetByID(ctx, pairID)
	if err != nil {
		return nil, ownerError("pair", pairID, err)
	}

	hour := bucketid.HourIndex(ev.BlockTimestamp)
	id := bucketid.PairHourID(pairID, hour)

	bucket, created, err := storage.LoadOrCreate(ctx, e.stores.PairHours().GetByID, id, func() *domain.PairHourData {
		return &domain.PairHourData{
			ID:                 id,
			HourStartUnix:      hour * bucketid.HourSeconds,
			Pair:               pairID,
			HourlyVolumeToken0: numeric.Zero,
			HourlyVolumeToken1: numeric.Zero,
			HourlyVolumeUSD:    numeric.Zero,
		}
	})
	if err != nil {
		return nil, fmt.Errorf("load pair hour %s: %w", id, err)
	}

	bucket.Reserve0 = pair.Reserve0
	bucket.Reserve1 = pair.Reserve1
	bucket.TotalSupply = pair.TotalSupply
	bucket.ReserveUSD = pair.ReserveUSD
	bucket.HourlyTxns++

	if err := e.stores.PairHours().Upsert(ctx, bucket); err != nil {
		return nil, fmt.Errorf("save pair hour %s: %w", id, err)
	}
	e.created(created, DimensionPairHour, id)
	return bucket, nil
}

// UpdateTokenDayData counts ev in the token's day bucket.
// token is the caller's current copy; it is not reloaded.
func (e *Engine) UpdateTokenDayData(ctx context.Context, token *domain.Token, ev *domain.Event) (*domain.TokenDayData, error) {
	if token == nil {
		return nil, domain.EntityNotFound("token", "")
	}

	day := bucketid.DayIndex(ev.BlockTimestamp)
	id := bucketid.TokenDayID(token.ID, day)

	bucket, created, err := storage.LoadOrCreate(ctx, e.stores.TokenDays().GetByID, id, func() *domain.TokenDayData {
		return &domain.TokenDayData{
			ID:               id,
			Date:             day * bucketid.DaySeconds,
			Token:            token.ID,
			DailyVolumeToken: numeric.Zero,
			DailyVolumeUSD:   numeric.Zero,
		}
	})
	if err != nil {
		return nil, fmt.Errorf("load token day %s: %w", id, err)
	}

	bucket.PriceUSD = token.DerivedUSD
	bucket.TotalLiquidityToken = token.TotalLiquidity
	bucket.TotalLiquidityUSD = token.TotalLiquidity.Mul(token.DerivedUSD)
	bucket.DailyTxns++

	if err := e.stores.TokenDays().Upsert(ctx, bucket); err != nil {
		return nil, fmt.Errorf("save token day %s: %w", id, err)
	}
	e.created(created, DimensionTokenDay, id)
	return bucket, nil
}

func (e *Engine) created(created bool, dimension, id string) {
	if !created {
		return
	}
	observability.RecordBucketCreated(dimension)
	e.logger.Debug().Str("dimension", dimension).Str("bucket", id).Msg("bucket created")
}

func ownerError(kind, id string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return domain.EntityNotFound(kind, id)
	}
	return fmt.Errorf("load %s %s: %w", kind, id, err)
}
