// Package stub provides map-backed chain adapters for tests and offline replay.
package stub

import (
	"context"
	"math/big"
	"strings"
	"sync"

	"exchange-indexer/internal/evm"
)

// PairRegistry implements evm.PairRegistry from a map of known pairs.
// Unknown token pairs resolve to evm.ZeroAddress.
type PairRegistry struct {
	mu    sync.RWMutex
	pairs map[[2]string]string

	// Err, when set, is returned by every lookup.
	Err error
}

// NewPairRegistry creates an empty stub registry.
func NewPairRegistry() *PairRegistry {
	return &PairRegistry{pairs: make(map[[2]string]string)}
}

// GetPair returns the registered pair for the unordered token pair.
func (r *PairRegistry) GetPair(_ context.Context, tokenA, tokenB string) (string, error) {
	if r.Err != nil {
		return "", r.Err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if pair, ok := r.pairs[key(tokenA, tokenB)]; ok {
		return pair, nil
	}
	return evm.ZeroAddress, nil
}

// Remember registers a pair. Offline replay feeds PairCreated logs here.
func (r *PairRegistry) Remember(tokenA, tokenB, pair string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pairs[key(tokenA, tokenB)] = strings.ToLower(pair)
}

func key(a, b string) [2]string {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if b < a {
		a, b = b, a
	}
	return [2]string{a, b}
}

// TokenMetadata implements evm.TokenMetadataSource from a map.
// Unknown tokens get the same defaults a failing contract would.
type TokenMetadata struct {
	Tokens map[string]*evm.TokenMetadata
}

// NewTokenMetadata creates an empty stub metadata source.
func NewTokenMetadata() *TokenMetadata {
	return &TokenMetadata{Tokens: make(map[string]*evm.TokenMetadata)}
}

// Add registers metadata for a token.
func (m *TokenMetadata) Add(token, symbol, name string, decimals int32) {
	m.Tokens[strings.ToLower(token)] = &evm.TokenMetadata{
		Symbol:      symbol,
		Name:        name,
		Decimals:    decimals,
		TotalSupply: new(big.Int),
	}
}

// TokenMetadata returns a copy of the registered metadata or defaults.
func (m *TokenMetadata) TokenMetadata(_ context.Context, token string) (*evm.TokenMetadata, error) {
	md, ok := m.Tokens[strings.ToLower(token)]
	if !ok {
		return &evm.TokenMetadata{
			Symbol:      evm.UnknownSymbol,
			Name:        evm.UnknownName,
			Decimals:    evm.DefaultDecimals,
			TotalSupply: new(big.Int),
		}, nil
	}
	cp := *md
	return &cp, nil
}

var (
	_ evm.PairRegistry        = (*PairRegistry)(nil)
	_ evm.PairRecorder        = (*PairRegistry)(nil)
	_ evm.TokenMetadataSource = (*TokenMetadata)(nil)
)
