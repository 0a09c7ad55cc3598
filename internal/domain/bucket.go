package domain

import "github.com/shopspring/decimal"

// FactoryDayData is the per-day rollup of the factory. ID is the bare day index.
type FactoryDayData struct {
	ID                   string
	Date                 int64 // day start, Unix seconds
	DailyVolumeUSD       decimal.Decimal
	DailyVolumeUntracked decimal.Decimal
	DailyTxns            int64
	TotalVolumeUSD       decimal.Decimal // snapshot
	TotalLiquidityUSD    decimal.Decimal // snapshot
	TotalTransactions    int64           // snapshot
}

// PairDayData is the per-day rollup of a pair. ID is "<pair>-<dayIndex>".
type PairDayData struct {
	ID                string
	Date              int64 // day start, Unix seconds
	PairAddress       string
	Token0            string
	Token1            string
	Reserve0          decimal.Decimal // snapshot
	Reserve1          decimal.Decimal // snapshot
	TotalSupply       decimal.Decimal // snapshot
	ReserveUSD        decimal.Decimal // snapshot
	DailyVolumeToken0 decimal.Decimal
	DailyVolumeToken1 decimal.Decimal
	DailyVolumeUSD    decimal.Decimal
	DailyTxns         int64
}

// PairHourData is the per-hour rollup of a pair. ID is "<pair>-<hourIndex>".
type PairHourData struct {
	ID                 string
	HourStartUnix      int64
	Pair               string
	Reserve0           decimal.Decimal // snapshot
	Reserve1           decimal.Decimal // snapshot
	TotalSupply        decimal.Decimal // snapshot
	ReserveUSD         decimal.Decimal // snapshot
	HourlyVolumeToken0 decimal.Decimal
	HourlyVolumeToken1 decimal.Decimal
	HourlyVolumeUSD    decimal.Decimal
	HourlyTxns         int64
}

// TokenDayData is the per-day rollup of a token. ID is "<token>-<dayIndex>".
type TokenDayData struct {
	ID                  string
	Date                int64 // day start, Unix seconds
	Token               string
	PriceUSD            decimal.Decimal // snapshot of DerivedUSD
	TotalLiquidityToken decimal.Decimal // snapshot
	TotalLiquidityUSD   decimal.Decimal // snapshot
	DailyVolumeToken    decimal.Decimal
	DailyVolumeUSD      decimal.Decimal
	DailyTxns           int64
}

// Buckets collects the rollup records touched by one event.
type Buckets struct {
	FactoryDays []*FactoryDayData
	PairDays    []*PairDayData
	PairHours   []*PairHourData
	TokenDays   []*TokenDayData
}

// Empty reports whether no bucket was touched.
func (b *Buckets) Empty() bool {
	return b == nil || len(b.FactoryDays)+len(b.PairDays)+len(b.PairHours)+len(b.TokenDays) == 0
}
