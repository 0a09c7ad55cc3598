// Package numeric provides the decimal helpers shared by pricing and rollups.
// All monetary, reserve and price values are shopspring decimals; counters are int64.
package numeric

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// DivisionPrecision is the number of fractional digits kept by quotients.
const DivisionPrecision = 18

var (
	Zero = decimal.Zero
	One  = decimal.NewFromInt(1)
	Two  = decimal.NewFromInt(2)
)

// ConvertTokenToDecimal scales a raw base-unit amount by 10^decimals.
// A nil amount is zero; zero decimals returns the raw value unchanged.
func ConvertTokenToDecimal(raw *big.Int, decimals int32) decimal.Decimal {
	if raw == nil {
		return Zero
	}
	if decimals <= 0 {
		return decimal.NewFromBigInt(raw, 0)
	}
	return decimal.NewFromBigInt(raw, -decimals)
}

// SafeDiv returns a/b, or zero when b is zero.
func SafeDiv(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return Zero
	}
	return a.DivRound(b, DivisionPrecision)
}

// ParseDecimal parses s; the empty string is zero.
func ParseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("parse decimal %q: %w", s, err)
	}
	return d, nil
}

// ParseBigInt parses a base-10 integer string; the empty string is zero.
func ParseBigInt(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("parse integer %q", s)
	}
	return v, nil
}
