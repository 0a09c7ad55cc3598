package memory

import (
	"context"

	"exchange-indexer/internal/domain"
	"exchange-indexer/internal/storage"
)

// TokenStore is an in-memory implementation of storage.TokenStore.
type TokenStore struct{ entityStore[domain.Token] }

// PairStore is an in-memory implementation of storage.PairStore.
type PairStore struct{ entityStore[domain.Pair] }

// FactoryStore is an in-memory implementation of storage.FactoryStore.
type FactoryStore struct{ entityStore[domain.Factory] }

// BundleStore is an in-memory implementation of storage.BundleStore.
type BundleStore struct{ entityStore[domain.Bundle] }

// FactoryDayDataStore is an in-memory implementation of storage.FactoryDayDataStore.
type FactoryDayDataStore struct{ entityStore[domain.FactoryDayData] }

// PairDayDataStore is an in-memory implementation of storage.PairDayDataStore.
type PairDayDataStore struct{ entityStore[domain.PairDayData] }

// PairHourDataStore is an in-memory implementation of storage.PairHourDataStore.
type PairHourDataStore struct{ entityStore[domain.PairHourData] }

// TokenDayDataStore is an in-memory implementation of storage.TokenDayDataStore.
type TokenDayDataStore struct{ entityStore[domain.TokenDayData] }

const cursorKey = "cursor"

// CursorStore is an in-memory implementation of storage.CursorStore.
type CursorStore struct {
	rows rowSet[storage.Cursor]
}

// GetCursor returns the last processed position.
func (s *CursorStore) GetCursor(_ context.Context) (*storage.Cursor, error) {
	c, ok := s.rows.load(cursorKey)
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &c, nil
}

// SetCursor saves the last processed position.
func (s *CursorStore) SetCursor(_ context.Context, c *storage.Cursor) error {
	if c == nil {
		return storage.ErrInvalidInput
	}
	s.rows.store(cursorKey, *c)
	return nil
}

var (
	_ storage.TokenStore          = (*TokenStore)(nil)
	_ storage.PairStore           = (*PairStore)(nil)
	_ storage.FactoryStore        = (*FactoryStore)(nil)
	_ storage.BundleStore         = (*BundleStore)(nil)
	_ storage.FactoryDayDataStore = (*FactoryDayDataStore)(nil)
	_ storage.PairDayDataStore    = (*PairDayDataStore)(nil)
	_ storage.PairHourDataStore   = (*PairHourDataStore)(nil)
	_ storage.TokenDayDataStore   = (*TokenDayDataStore)(nil)
	_ storage.CursorStore         = (*CursorStore)(nil)
)
