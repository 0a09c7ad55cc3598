package domain

import (
	"errors"
	"testing"
)

func TestEventID(t *testing.T) {
	ev := &Event{BlockNumber: 120, TxHash: "0xabc", LogIndex: 7}
	if got := ev.ID(); got != "120:0xabc:7" {
		t.Errorf("ID() = %q, want %q", got, "120:0xabc:7")
	}
}

func TestEventKindValid(t *testing.T) {
	for _, k := range []EventKind{EventPairCreated, EventSync, EventSwap, EventMint, EventBurn, EventTransfer} {
		if !k.Valid() {
			t.Errorf("%s should be valid", k)
		}
	}
	if EventKind("APPROVAL").Valid() {
		t.Error("APPROVAL should not be valid")
	}
}

func TestEntityNotFound(t *testing.T) {
	err := EntityNotFound("pair", "0x01")
	if !errors.Is(err, ErrEntityNotFound) {
		t.Fatalf("errors.Is(%v, ErrEntityNotFound) = false", err)
	}
	if err.Error() != "entity not found: pair 0x01" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestEventValidate(t *testing.T) {
	tests := []struct {
		name    string
		ev      Event
		wantErr bool
	}{
		{"sync ok", Event{Kind: EventSync, Address: "0xp", Sync: &Sync{}}, false},
		{"pair created ok", Event{Kind: EventPairCreated, Address: "0xf", PairCreated: &PairCreated{Token0: "0xa", Token1: "0xb", Pair: "0xp"}}, false},
		{"unknown kind", Event{Kind: "APPROVAL", Address: "0xp"}, true},
		{"no address", Event{Kind: EventSync, Sync: &Sync{}}, true},
		{"payload mismatch", Event{Kind: EventSwap, Address: "0xp", Sync: &Sync{}}, true},
		{"pair created without pair", Event{Kind: EventPairCreated, Address: "0xf", PairCreated: &PairCreated{Token0: "0xa", Token1: "0xb"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ev.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidEvent) {
				t.Errorf("expected ErrInvalidEvent, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
