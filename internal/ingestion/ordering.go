package ingestion

import (
	"errors"
	"fmt"
	"sort"

	"exchange-indexer/internal/domain"
)

// ErrInvalidOrdering is returned when events are not in chain order.
var ErrInvalidOrdering = errors.New("events are not in deterministic order")

// SortEvents orders events by (block ASC, log_index ASC, tx_hash ASC).
// The log index is unique within a block; the hash only breaks ties in
// malformed input so the result stays deterministic.
func SortEvents(events []*domain.Event) {
	sort.Slice(events, func(i, j int) bool {
		return compareEvents(events[i], events[j]) < 0
	})
}

// ValidateOrdering checks that events are strictly increasing.
func ValidateOrdering(events []*domain.Event) error {
	for i := 1; i < len(events); i++ {
		if compareEvents(events[i-1], events[i]) >= 0 {
			return fmt.Errorf("%w: %s does not follow %s", ErrInvalidOrdering, events[i].ID(), events[i-1].ID())
		}
	}
	return nil
}

// compareEvents returns:
//   - negative if a < b
//   - zero if a == b
//   - positive if a > b
func compareEvents(a, b *domain.Event) int {
	if a.BlockNumber != b.BlockNumber {
		if a.BlockNumber < b.BlockNumber {
			return -1
		}
		return 1
	}
	if a.LogIndex != b.LogIndex {
		if a.LogIndex < b.LogIndex {
			return -1
		}
		return 1
	}
	if a.TxHash != b.TxHash {
		if a.TxHash < b.TxHash {
			return -1
		}
		return 1
	}
	return 0
}
