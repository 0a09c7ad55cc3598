// Package evm adapts on-chain contract calls used during indexing:
// factory pair lookups and ERC20 token metadata.
package evm

import (
	"context"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ZeroAddress is returned by a registry when no pair exists.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// ErrRegistryQueryFailed is returned when a pair registry lookup cannot complete.
// It is never used to signal a missing pair.
var ErrRegistryQueryFailed = errors.New("registry query failed")

// ErrInvalidAddress is returned for a malformed hex address argument.
var ErrInvalidAddress = errors.New("invalid address")

// PairRegistry resolves the pair deployed for two tokens.
// Lookups are unordered in their token arguments.
type PairRegistry interface {
	// GetPair returns the lowercase pair address, or ZeroAddress if none exists.
	GetPair(ctx context.Context, tokenA, tokenB string) (string, error)
}

// PairRecorder is implemented by registries that can learn pairs from
// PairCreated logs instead of querying the factory.
type PairRecorder interface {
	Remember(tokenA, tokenB, pair string)
}

// NormalizeAddress lowercases a hex address after validating it.
func NormalizeAddress(addr string) (string, error) {
	if !common.IsHexAddress(addr) {
		return "", ErrInvalidAddress
	}
	return strings.ToLower(common.HexToAddress(addr).Hex()), nil
}
