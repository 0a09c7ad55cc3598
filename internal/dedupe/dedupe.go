// Package dedupe detects redelivered events under at-least-once ingestion.
//
// Ids are checked before an event is applied and marked only after it
// committed, so a crash between the two leaves the id unmarked and the
// redelivery is applied.
package dedupe

import "context"

// Deduper remembers event ids.
type Deduper interface {
	// Seen reports whether id was marked. It does not mark.
	Seen(ctx context.Context, id string) (alreadySeen bool, err error)

	// MarkSeen records id as applied.
	MarkSeen(ctx context.Context, id string) error
}
