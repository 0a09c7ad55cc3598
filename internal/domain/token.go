package domain

import "github.com/shopspring/decimal"

// Token represents an ERC20 token traded on the exchange.
// Corresponds to tokens table in PostgreSQL.
type Token struct {
	ID                 string          // lowercase hex address
	Symbol             string          // ERC20 symbol, "unknown" when the call fails
	Name               string          // ERC20 name, "unknown" when the call fails
	Decimals           int32           // ERC20 decimals
	TotalSupply        decimal.Decimal // scaled total supply at creation
	TradeVolume        decimal.Decimal // cumulative volume in token units
	TradeVolumeUSD     decimal.Decimal // cumulative tracked volume
	UntrackedVolumeUSD decimal.Decimal // cumulative volume regardless of whitelist
	TxCount            int64           // swaps, mints and burns touching the token
	TotalLiquidity     decimal.Decimal // token units locked across all pairs
	DerivedUSD         decimal.Decimal // USD price; zero means unpriced
}
