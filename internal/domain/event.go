package domain

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrInvalidEvent is returned by Event.Validate.
var ErrInvalidEvent = errors.New("invalid event")

// EventKind identifies the exchange log an Event was decoded from.
type EventKind string

const (
	EventPairCreated EventKind = "PAIR_CREATED"
	EventSync        EventKind = "SYNC"
	EventSwap        EventKind = "SWAP"
	EventMint        EventKind = "MINT"
	EventBurn        EventKind = "BURN"
	EventTransfer    EventKind = "TRANSFER"
)

// Valid reports whether k is a known kind.
func (k EventKind) Valid() bool {
	switch k {
	case EventPairCreated, EventSync, EventSwap, EventMint, EventBurn, EventTransfer:
		return true
	}
	return false
}

// Event is one decoded chain log delivered to the indexer.
// Exactly one payload pointer matching Kind is set.
type Event struct {
	Kind           EventKind
	BlockNumber    uint64
	BlockTimestamp int64  // Unix seconds
	TxHash         string // lowercase hex
	LogIndex       uint32 // position of the log within the block
	Address        string // emitting contract, lowercase hex

	// Variant selects the pair registry used for price discovery.
	Variant string

	PairCreated *PairCreated
	Sync        *Sync
	Swap        *Swap
	Mint        *Mint
	Burn        *Burn
	Transfer    *Transfer
}

// ID returns "<block>:<tx>:<log_index>", the replay identity of the event.
func (e *Event) ID() string {
	return fmt.Sprintf("%d:%s:%d", e.BlockNumber, e.TxHash, e.LogIndex)
}

// Validate checks the envelope and that the payload matches Kind.
func (e *Event) Validate() error {
	if !e.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEvent, e.Kind)
	}
	if e.Address == "" {
		return fmt.Errorf("%w: %s has no address", ErrInvalidEvent, e.ID())
	}

	var ok bool
	switch e.Kind {
	case EventPairCreated:
		ok = e.PairCreated != nil && e.PairCreated.Pair != "" && e.PairCreated.Token0 != "" && e.PairCreated.Token1 != ""
	case EventSync:
		ok = e.Sync != nil
	case EventSwap:
		ok = e.Swap != nil
	case EventMint:
		ok = e.Mint != nil
	case EventBurn:
		ok = e.Burn != nil
	case EventTransfer:
		ok = e.Transfer != nil
	}
	if !ok {
		return fmt.Errorf("%w: %s missing %s payload", ErrInvalidEvent, e.ID(), e.Kind)
	}
	return nil
}

// PairCreated is emitted by a factory when a new pair is deployed.
type PairCreated struct {
	Token0 string
	Token1 string
	Pair   string
}

// Sync carries the pair reserves after a state change, in raw base units.
type Sync struct {
	Reserve0 *big.Int
	Reserve1 *big.Int
}

// Swap carries raw swap amounts.
type Swap struct {
	Sender     string
	To         string
	Amount0In  *big.Int
	Amount1In  *big.Int
	Amount0Out *big.Int
	Amount1Out *big.Int
}

// Mint carries raw amounts added to a pair.
type Mint struct {
	Sender  string
	Amount0 *big.Int
	Amount1 *big.Int
}

// Burn carries raw amounts removed from a pair.
type Burn struct {
	Sender  string
	To      string
	Amount0 *big.Int
	Amount1 *big.Int
}

// Transfer is an LP token transfer emitted by a pair.
type Transfer struct {
	From  string
	To    string
	Value *big.Int
}
