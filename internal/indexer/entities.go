package indexer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"exchange-indexer/internal/domain"
	"exchange-indexer/internal/storage"
)

// loadPair loads the emitting pair and both of its tokens.
func (h *handler) loadPair(ctx context.Context) (*domain.Pair, *domain.Token, *domain.Token, error) {
	pairID := strings.ToLower(h.ev.Address)
	pair, err := h.stores.Pairs().GetByID(ctx, pairID)
	if err != nil {
		return nil, nil, nil, ownerError("pair", pairID, err)
	}

	token0, err := h.stores.Tokens().GetByID(ctx, pair.Token0)
	if err != nil {
		return nil, nil, nil, ownerError("token", pair.Token0, err)
	}
	token1, err := h.stores.Tokens().GetByID(ctx, pair.Token1)
	if err != nil {
		return nil, nil, nil, ownerError("token", pair.Token1, err)
	}
	return pair, token0, token1, nil
}

func (h *handler) loadFactory(ctx context.Context) (*domain.Factory, error) {
	f, err := h.stores.Factories().GetByID(ctx, h.p.factoryID)
	if err != nil {
		return nil, ownerError("factory", h.p.factoryID, err)
	}
	return f, nil
}

func (h *handler) savePair(ctx context.Context, p *domain.Pair) error {
	if err := h.stores.Pairs().Upsert(ctx, p); err != nil {
		return storeError("save pair "+p.ID, err)
	}
	return nil
}

func (h *handler) saveFactory(ctx context.Context, f *domain.Factory) error {
	if err := h.stores.Factories().Upsert(ctx, f); err != nil {
		return storeError("save factory", err)
	}
	return nil
}

func (h *handler) saveTokens(ctx context.Context, tokens ...*domain.Token) error {
	for _, t := range tokens {
		if err := h.stores.Tokens().Upsert(ctx, t); err != nil {
			return storeError("save token "+t.ID, err)
		}
	}
	return nil
}

func ownerError(kind, id string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return domain.EntityNotFound(kind, id)
	}
	return storeError(fmt.Sprintf("load %s %s", kind, id), err)
}
