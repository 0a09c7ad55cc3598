package postgres

import (
	"context"
	"fmt"

	"exchange-indexer/internal/storage"
)

// CursorStore is a PostgreSQL implementation of storage.CursorStore.
// The indexer_cursor table holds a single row with id = 1.
type CursorStore struct {
	db querier
}

// GetCursor returns the last processed position.
func (s *CursorStore) GetCursor(ctx context.Context) (*storage.Cursor, error) {
	row := s.db.QueryRow(ctx, `
		SELECT block_number, log_index, tx_hash
		FROM indexer_cursor
		WHERE id = 1
	`)

	var c storage.Cursor
	if err := row.Scan(&c.BlockNumber, &c.LogIndex, &c.TxHash); err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get cursor: %w", err)
	}
	return &c, nil
}

// SetCursor saves the last processed position.
func (s *CursorStore) SetCursor(ctx context.Context, c *storage.Cursor) error {
	if c == nil {
		return storage.ErrInvalidInput
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO indexer_cursor (id, block_number, log_index, tx_hash, updated_at)
		VALUES (1, $1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE
		SET block_number = EXCLUDED.block_number,
		    log_index = EXCLUDED.log_index,
		    tx_hash = EXCLUDED.tx_hash,
		    updated_at = NOW()
	`, c.BlockNumber, c.LogIndex, c.TxHash)
	if err != nil {
		return fmt.Errorf("set cursor: %w", err)
	}
	return nil
}

var _ storage.CursorStore = (*CursorStore)(nil)
