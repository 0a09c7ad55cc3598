package ingestion

import (
	"errors"
	"testing"

	"exchange-indexer/internal/domain"
)

func TestSortEvents(t *testing.T) {
	// Intentionally unordered events
	events := []*domain.Event{
		{BlockNumber: 200, LogIndex: 0, TxHash: "0x2"},
		{BlockNumber: 100, LogIndex: 1, TxHash: "0x1"},
		{BlockNumber: 100, LogIndex: 0, TxHash: "0x1"},
		{BlockNumber: 300, LogIndex: 0, TxHash: "0x1"},
		{BlockNumber: 100, LogIndex: 2, TxHash: "0x0"},
	}

	SortEvents(events)

	expected := []struct {
		block    uint64
		logIndex uint32
	}{
		{100, 0},
		{100, 1},
		{100, 2},
		{200, 0},
		{300, 0},
	}

	for i, exp := range expected {
		if events[i].BlockNumber != exp.block || events[i].LogIndex != exp.logIndex {
			t.Errorf("Index %d: got (%d, %d), want (%d, %d)",
				i, events[i].BlockNumber, events[i].LogIndex, exp.block, exp.logIndex)
		}
	}
}

func TestSortEvents_Empty(t *testing.T) {
	var events []*domain.Event
	SortEvents(events) // Should not panic
}

func TestSortEvents_TxHashBreaksTies(t *testing.T) {
	events := []*domain.Event{
		{BlockNumber: 1, LogIndex: 0, TxHash: "0xb"},
		{BlockNumber: 1, LogIndex: 0, TxHash: "0xa"},
	}
	SortEvents(events)
	if events[0].TxHash != "0xa" {
		t.Errorf("expected 0xa first, got %s", events[0].TxHash)
	}
}

func TestValidateOrdering(t *testing.T) {
	tests := []struct {
		name    string
		events  []*domain.Event
		wantErr bool
	}{
		{"empty", nil, false},
		{"single", []*domain.Event{{BlockNumber: 1}}, false},
		{"ordered", []*domain.Event{{BlockNumber: 1, LogIndex: 0}, {BlockNumber: 1, LogIndex: 1}, {BlockNumber: 2}}, false},
		{"reversed", []*domain.Event{{BlockNumber: 2}, {BlockNumber: 1}}, true},
		{"duplicate", []*domain.Event{{BlockNumber: 1, LogIndex: 3}, {BlockNumber: 1, LogIndex: 3}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOrdering(tt.events)
			if tt.wantErr && !errors.Is(err, ErrInvalidOrdering) {
				t.Errorf("expected ErrInvalidOrdering, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
