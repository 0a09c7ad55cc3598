package domain

import "github.com/shopspring/decimal"

// Pair represents a constant-product liquidity pool.
// Corresponds to pairs table in PostgreSQL.
type Pair struct {
	ID                 string          // lowercase hex pair address
	Token0             string          // token0 id
	Token1             string          // token1 id
	Reserve0           decimal.Decimal // token0 units
	Reserve1           decimal.Decimal // token1 units
	TotalSupply        decimal.Decimal // LP token supply
	ReserveUSD         decimal.Decimal // reserves valued at derived prices
	TrackedReserveUSD  decimal.Decimal // reserves counted toward factory liquidity
	Token0Price        decimal.Decimal // reserve0 / reserve1
	Token1Price        decimal.Decimal // reserve1 / reserve0
	VolumeToken0       decimal.Decimal
	VolumeToken1       decimal.Decimal
	VolumeUSD          decimal.Decimal // tracked volume
	UntrackedVolumeUSD decimal.Decimal
	TxCount            int64
	CreatedAtTimestamp int64 // Unix seconds
	CreatedAtBlock     uint64
}
