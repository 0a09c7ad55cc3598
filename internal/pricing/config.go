// Package pricing derives USD prices for tokens and decides which trade
// amounts count toward tracked volume and liquidity.
package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid pricing config")

// Config holds the per-deployment pricing constants.
type Config struct {
	// Whitelist is searched in order; earlier entries win.
	Whitelist []string

	// MinimumLiquidityUSD is the reserveUSD a pool must exceed to price a token.
	MinimumLiquidityUSD decimal.Decimal

	// StablecoinID is priced at exactly 1 USD.
	StablecoinID string

	// ReferencePairID is the base-asset/stablecoin pool used for the ETH price.
	ReferencePairID string
}

// Validate checks required fields and lowercases all ids.
func (c *Config) Validate() error {
	if len(c.Whitelist) == 0 {
		return fmt.Errorf("%w: whitelist is empty", ErrInvalidConfig)
	}
	if c.StablecoinID == "" {
		return fmt.Errorf("%w: stablecoin is required", ErrInvalidConfig)
	}
	if c.ReferencePairID == "" {
		return fmt.Errorf("%w: reference pair is required", ErrInvalidConfig)
	}
	if c.MinimumLiquidityUSD.IsNegative() {
		return fmt.Errorf("%w: minimum liquidity must not be negative", ErrInvalidConfig)
	}

	seen := make(map[string]struct{}, len(c.Whitelist))
	for i, id := range c.Whitelist {
		id = strings.ToLower(strings.TrimSpace(id))
		if id == "" {
			return fmt.Errorf("%w: whitelist entry %d is empty", ErrInvalidConfig, i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate whitelist entry %s", ErrInvalidConfig, id)
		}
		seen[id] = struct{}{}
		c.Whitelist[i] = id
	}
	c.StablecoinID = strings.ToLower(strings.TrimSpace(c.StablecoinID))
	c.ReferencePairID = strings.ToLower(strings.TrimSpace(c.ReferencePairID))
	return nil
}
