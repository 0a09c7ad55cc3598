package domain

import "github.com/shopspring/decimal"

// Factory is the singleton aggregate of one exchange deployment.
type Factory struct {
	ID                 string // fixed factory address
	PairCount          int64
	TotalVolumeUSD     decimal.Decimal // tracked
	UntrackedVolumeUSD decimal.Decimal
	TotalLiquidityUSD  decimal.Decimal // tracked
	TotalTransactions  int64
}

// BundleID is the id of the singleton Bundle record.
const BundleID = "1"

// Bundle holds the reference ETH price, refreshed on every sync.
type Bundle struct {
	ID          string
	EthPriceUSD decimal.Decimal
}
