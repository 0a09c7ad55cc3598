package evm

import (
	"context"
	"strings"
	"sync"
)

// CachedRegistry memoizes non-zero pair lookups of another registry.
// A deployed pair address never changes, while a missing pair may be
// created later, so zero answers and errors are not cached.
type CachedRegistry struct {
	next PairRegistry

	mu    sync.RWMutex
	pairs map[[2]string]string
}

// NewCachedRegistry wraps next.
func NewCachedRegistry(next PairRegistry) *CachedRegistry {
	return &CachedRegistry{next: next, pairs: make(map[[2]string]string)}
}

// GetPair returns the cached pair or asks the wrapped registry.
func (c *CachedRegistry) GetPair(ctx context.Context, tokenA, tokenB string) (string, error) {
	key := pairKey(tokenA, tokenB)

	c.mu.RLock()
	pair, ok := c.pairs[key]
	c.mu.RUnlock()
	if ok {
		return pair, nil
	}

	pair, err := c.next.GetPair(ctx, tokenA, tokenB)
	if err != nil {
		return "", err
	}
	if pair != ZeroAddress {
		c.mu.Lock()
		c.pairs[key] = pair
		c.mu.Unlock()
	}
	return pair, nil
}

// Remember records a pair learned from a PairCreated log.
func (c *CachedRegistry) Remember(tokenA, tokenB, pair string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pairs[pairKey(tokenA, tokenB)] = strings.ToLower(pair)
}

func pairKey(a, b string) [2]string {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if b < a {
		a, b = b, a
	}
	return [2]string{a, b}
}

var (
	_ PairRegistry = (*CachedRegistry)(nil)
	_ PairRecorder = (*CachedRegistry)(nil)
)
