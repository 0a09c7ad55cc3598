package rollup

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exchange-indexer/internal/domain"
	"exchange-indexer/internal/observability"
	"exchange-indexer/internal/storage"
	"exchange-indexer/internal/storage/memory"
)

const (
	factoryID = "0xfactory"
	pairID    = "0xpair"
	token0    = "0xtoken0"
	token1    = "0xtoken1"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func event(ts int64) *domain.Event {
	return &domain.Event{
		Kind:           domain.EventSwap,
		BlockNumber:    uint64(ts),
		BlockTimestamp: ts,
		TxHash:         "0xtx",
		Address:        pairID,
	}
}

func seed(t *testing.T) (*memory.Repository, *Engine) {
	t.Helper()
	ctx := context.Background()
	repo := memory.NewRepository()

	require.NoError(t, repo.Factories().Upsert(ctx, &domain.Factory{
		ID:                factoryID,
		TotalVolumeUSD:    d("1000"),
		TotalLiquidityUSD: d("500"),
		TotalTransactions: 7,
	}))
	require.NoError(t, repo.Pairs().Upsert(ctx, &domain.Pair{
		ID:          pairID,
		Token0:      token0,
		Token1:      token1,
		Reserve0:    d("100"),
		Reserve1:    d("200"),
		TotalSupply: d("50"),
		ReserveUSD:  d("500"),
		Token1Price: d("2.0"),
	}))

	return repo, NewEngine(repo, factoryID, Options{Logger: zerolog.Nop()})
}

func TestPairBuckets_EndToEnd(t *testing.T) {
	ctx := context.Background()
	repo, engine := seed(t)

	day, err := engine.UpdatePairDayData(ctx, event(90000))
	require.NoError(t, err)
	hour, err := engine.UpdatePairHourData(ctx, event(90000))
	require.NoError(t, err)

	assert.Equal(t, "0xpair-1", day.ID)
	assert.Equal(t, int64(86400), day.Date)
	assert.Equal(t, int64(1), day.DailyTxns)
	assert.Equal(t, token0, day.Token0)
	assert.Equal(t, token1, day.Token1)
	assert.Equal(t, pairID, day.PairAddress)
	assert.True(t, day.Reserve0.Equal(d("100")))
	assert.True(t, day.Reserve1.Equal(d("200")))
	assert.True(t, day.TotalSupply.Equal(d("50")))
	assert.True(t, day.ReserveUSD.Equal(d("500")))

	assert.Equal(t, "0xpair-25", hour.ID)
	assert.Equal(t, int64(90000), hour.HourStartUnix)
	assert.Equal(t, int64(1), hour.HourlyTxns)
	assert.Equal(t, pairID, hour.Pair)

	// Reserves move before the second event.
	require.NoError(t, repo.Pairs().Upsert(ctx, &domain.Pair{
		ID:          pairID,
		Token0:      token0,
		Token1:      token1,
		Reserve0:    d("110"),
		Reserve1:    d("190"),
		TotalSupply: d("50"),
		ReserveUSD:  d("510"),
	}))

	day, err = engine.UpdatePairDayData(ctx, event(95000))
	require.NoError(t, err)
	hour, err = engine.UpdatePairHourData(ctx, event(95000))
	require.NoError(t, err)

	assert.Equal(t, "0xpair-1", day.ID)
	assert.Equal(t, int64(2), day.DailyTxns)
	assert.True(t, day.Reserve0.Equal(d("110")))
	assert.True(t, day.ReserveUSD.Equal(d("510")))

	assert.Equal(t, "0xpair-26", hour.ID, "95000 falls in hour 26")
	assert.Equal(t, int64(1), hour.HourlyTxns)

	stored, err := repo.PairDays().GetByID(ctx, "0xpair-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.DailyTxns)
}

func TestPairHour_SameHourUpdatesInPlace(t *testing.T) {
	ctx := context.Background()
	_, engine := seed(t)

	for i := int64(0); i < 3; i++ {
		hour, err := engine.UpdatePairHourData(ctx, event(90000+i*100))
		require.NoError(t, err)
		assert.Equal(t, "0xpair-25", hour.ID)
		assert.Equal(t, i+1, hour.HourlyTxns)
	}
}

func TestPairDay_RelationshipFrozenAtCreation(t *testing.T) {
	ctx := context.Background()
	repo, engine := seed(t)

	_, err := engine.UpdatePairDayData(ctx, event(90000))
	require.NoError(t, err)

	pair, err := repo.Pairs().GetByID(ctx, pairID)
	require.NoError(t, err)
	pair.Token0 = "0xother"
	require.NoError(t, repo.Pairs().Upsert(ctx, pair))

	day, err := engine.UpdatePairDayData(ctx, event(90001))
	require.NoError(t, err)
	assert.Equal(t, token0, day.Token0)
}

func TestFactoryDay(t *testing.T) {
	ctx := context.Background()
	repo, engine := seed(t)

	day, err := engine.UpdateFactoryDayData(ctx, event(90000))
	require.NoError(t, err)

	assert.Equal(t, "1", day.ID)
	assert.Equal(t, int64(86400), day.Date)
	assert.Equal(t, int64(1), day.DailyTxns)
	assert.Equal(t, int64(7), day.TotalTransactions)
	assert.True(t, day.TotalLiquidityUSD.Equal(d("500")))
	assert.True(t, day.TotalVolumeUSD.Equal(d("1000")))
	assert.True(t, day.DailyVolumeUSD.IsZero())

	factory, err := repo.Factories().GetByID(ctx, factoryID)
	require.NoError(t, err)
	factory.TotalTransactions = 8
	require.NoError(t, repo.Factories().Upsert(ctx, factory))

	day, err = engine.UpdateFactoryDayData(ctx, event(172799))
	require.NoError(t, err)
	assert.Equal(t, "1", day.ID)
	assert.Equal(t, int64(2), day.DailyTxns)
	assert.Equal(t, int64(8), day.TotalTransactions)

	next, err := engine.UpdateFactoryDayData(ctx, event(172800))
	require.NoError(t, err)
	assert.Equal(t, "2", next.ID)
	assert.Equal(t, int64(1), next.DailyTxns)
}

func TestTokenDay(t *testing.T) {
	ctx := context.Background()
	_, engine := seed(t)

	token := &domain.Token{ID: token0, DerivedUSD: d("3"), TotalLiquidity: d("10")}

	day, err := engine.UpdateTokenDayData(ctx, token, event(90000))
	require.NoError(t, err)
	assert.Equal(t, "0xtoken0-1", day.ID)
	assert.Equal(t, token0, day.Token)
	assert.Equal(t, int64(1), day.DailyTxns)
	assert.True(t, day.PriceUSD.Equal(d("3")))
	assert.True(t, day.TotalLiquidityToken.Equal(d("10")))
	assert.True(t, day.TotalLiquidityUSD.Equal(d("30")))

	token.DerivedUSD = d("4")
	day, err = engine.UpdateTokenDayData(ctx, token, event(90500))
	require.NoError(t, err)
	assert.Equal(t, int64(2), day.DailyTxns)
	assert.True(t, day.PriceUSD.Equal(d("4")))
	assert.True(t, day.TotalLiquidityUSD.Equal(d("40")))
}

func TestNegativeTimestampFloors(t *testing.T) {
	ctx := context.Background()
	_, engine := seed(t)

	hour, err := engine.UpdatePairHourData(ctx, event(-1))
	require.NoError(t, err)
	assert.Equal(t, "0xpair--1", hour.ID)
	assert.Equal(t, int64(-3600), hour.HourStartUnix)
}

func TestMissingOwner(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()
	engine := NewEngine(repo, factoryID, Options{})

	_, err := engine.UpdatePairDayData(ctx, event(90000))
	require.ErrorIs(t, err, domain.ErrEntityNotFound)
	_, err = engine.UpdatePairHourData(ctx, event(90000))
	require.ErrorIs(t, err, domain.ErrEntityNotFound)
	_, err = engine.UpdateFactoryDayData(ctx, event(90000))
	require.ErrorIs(t, err, domain.ErrEntityNotFound)

	_, err = repo.PairDays().GetByID(ctx, "0xpair-1")
	require.ErrorIs(t, err, storage.ErrNotFound)
	_, err = repo.PairHours().GetByID(ctx, "0xpair-25")
	require.ErrorIs(t, err, storage.ErrNotFound)
	_, err = repo.FactoryDays().GetByID(ctx, "1")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestWithStores_RollbackDiscardsBuckets(t *testing.T) {
	ctx := context.Background()
	repo, engine := seed(t)

	err := repo.InTx(ctx, func(tx storage.Stores) error {
		_, err := engine.WithStores(tx).UpdatePairDayData(ctx, event(90000))
		require.NoError(t, err)
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	_, err = repo.PairDays().GetByID(ctx, "0xpair-1")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestBucketCreationMetric(t *testing.T) {
	ctx := context.Background()
	_, engine := seed(t)

	counter := observability.DefaultMetrics.BucketsCreated.WithLabelValues(DimensionPairHour)
	before := testutil.ToFloat64(counter)

	_, err := engine.UpdatePairHourData(ctx, event(7200))
	require.NoError(t, err)
	_, err = engine.UpdatePairHourData(ctx, event(7201))
	require.NoError(t, err)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
