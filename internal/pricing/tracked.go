package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"exchange-indexer/internal/domain"
	"exchange-indexer/internal/numeric"
)

var half = decimal.New(5, -1)

// Tracker applies the whitelist policy to trade and liquidity amounts.
// Prices are the tokens' DerivedUSD.
type Tracker struct {
	whitelist map[string]struct{}
}

// NewTracker builds a tracker over the whitelist.
func NewTracker(whitelist []string) *Tracker {
	set := make(map[string]struct{}, len(whitelist))
	for _, id := range whitelist {
		set[strings.ToLower(id)] = struct{}{}
	}
	return &Tracker{whitelist: set}
}

// Whitelisted reports whether the token counts toward tracked totals.
func (t *Tracker) Whitelisted(tokenID string) bool {
	_, ok := t.whitelist[tokenID]
	return ok
}

// TrackedVolumeUSD returns the USD volume of a swap that counts toward tracked totals.
//
//	both whitelisted:  (amount0*price0 + amount1*price1) / 2
//	only token0:       amount0*price0
//	only token1:       amount1*price1
//	neither:           0
func (t *Tracker) TrackedVolumeUSD(amount0 decimal.Decimal, token0 *domain.Token, amount1 decimal.Decimal, token1 *domain.Token) decimal.Decimal {
	in0, in1 := t.Whitelisted(token0.ID), t.Whitelisted(token1.ID)
	v0 := amount0.Mul(token0.DerivedUSD)
	v1 := amount1.Mul(token1.DerivedUSD)

	switch {
	case in0 && in1:
		return v0.Add(v1).Mul(half)
	case in0:
		return v0
	case in1:
		return v1
	default:
		return numeric.Zero
	}
}

// TrackedLiquidityUSD returns the USD value of reserves that counts toward tracked liquidity.
// A single whitelisted side is doubled on the assumption that both sides hold equal value.
func (t *Tracker) TrackedLiquidityUSD(amount0 decimal.Decimal, token0 *domain.Token, amount1 decimal.Decimal, token1 *domain.Token) decimal.Decimal {
	in0, in1 := t.Whitelisted(token0.ID), t.Whitelisted(token1.ID)
	v0 := amount0.Mul(token0.DerivedUSD)
	v1 := amount1.Mul(token1.DerivedUSD)

	switch {
	case in0 && in1:
		return v0.Add(v1)
	case in0:
		return v0.Mul(numeric.Two)
	case in1:
		return v1.Mul(numeric.Two)
	default:
		return numeric.Zero
	}
}
