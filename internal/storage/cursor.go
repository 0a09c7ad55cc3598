package storage

import "context"

// Cursor is the position of the last event committed to the store.
type Cursor struct {
	BlockNumber uint64
	LogIndex    uint32
	TxHash      string
}

// Covers reports whether an event at (block, logIndex) is at or before the cursor.
func (c *Cursor) Covers(block uint64, logIndex uint32) bool {
	if c == nil {
		return false
	}
	if block != c.BlockNumber {
		return block < c.BlockNumber
	}
	return logIndex <= c.LogIndex
}

// CursorStore persists the indexing position.
// This enables resumption after restarts without double-counting events.
type CursorStore interface {
	// GetCursor returns the last processed position.
	// Returns ErrNotFound if nothing has been processed yet.
	GetCursor(ctx context.Context) (*Cursor, error)

	// SetCursor saves the last processed position.
	SetCursor(ctx context.Context, c *Cursor) error
}
