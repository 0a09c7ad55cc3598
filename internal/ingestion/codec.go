package ingestion

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"exchange-indexer/internal/domain"
	"exchange-indexer/internal/numeric"
)

// wireEvent is the JSON form of an event. Amounts are base-10 strings.
type wireEvent struct {
	Kind           string `json:"kind"`
	BlockNumber    uint64 `json:"block_number"`
	BlockTimestamp int64  `json:"block_timestamp"`
	TxHash         string `json:"tx_hash"`
	LogIndex       uint32 `json:"log_index"`
	Address        string `json:"address"`
	Variant        string `json:"variant,omitempty"`

	PairCreated *wirePairCreated `json:"pair_created,omitempty"`
	Sync        *wireSync        `json:"sync,omitempty"`
	Swap        *wireSwap        `json:"swap,omitempty"`
	Mint        *wireMint        `json:"mint,omitempty"`
	Burn        *wireBurn        `json:"burn,omitempty"`
	Transfer    *wireTransfer    `json:"transfer,omitempty"`
}

type wirePairCreated struct {
	Token0 string `json:"token0"`
	Token1 string `json:"token1"`
	Pair   string `json:"pair"`
}

type wireSync struct {
	Reserve0 string `json:"reserve0"`
	Reserve1 string `json:"reserve1"`
}

type wireSwap struct {
	Sender     string `json:"sender"`
	To         string `json:"to"`
	Amount0In  string `json:"amount0_in"`
	Amount1In  string `json:"amount1_in"`
	Amount0Out string `json:"amount0_out"`
	Amount1Out string `json:"amount1_out"`
}

type wireMint struct {
	Sender  string `json:"sender"`
	Amount0 string `json:"amount0"`
	Amount1 string `json:"amount1"`
}

type wireBurn struct {
	Sender  string `json:"sender"`
	To      string `json:"to"`
	Amount0 string `json:"amount0"`
	Amount1 string `json:"amount1"`
}

type wireTransfer struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Value string `json:"value"`
}

// DecodeEvent parses and validates one JSON event. Addresses are lowercased.
func DecodeEvent(data []byte) (*domain.Event, error) {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}

	ev := &domain.Event{
		Kind:           domain.EventKind(strings.ToUpper(w.Kind)),
		BlockNumber:    w.BlockNumber,
		BlockTimestamp: w.BlockTimestamp,
		TxHash:         strings.ToLower(w.TxHash),
		LogIndex:       w.LogIndex,
		Address:        strings.ToLower(w.Address),
		Variant:        w.Variant,
	}

	var p amountParser
	switch {
	case w.PairCreated != nil:
		ev.PairCreated = &domain.PairCreated{
			Token0: strings.ToLower(w.PairCreated.Token0),
			Token1: strings.ToLower(w.PairCreated.Token1),
			Pair:   strings.ToLower(w.PairCreated.Pair),
		}
	case w.Sync != nil:
		ev.Sync = &domain.Sync{
			Reserve0: p.parse("reserve0", w.Sync.Reserve0),
			Reserve1: p.parse("reserve1", w.Sync.Reserve1),
		}
	case w.Swap != nil:
		ev.Swap = &domain.Swap{
			Sender:     strings.ToLower(w.Swap.Sender),
			To:         strings.ToLower(w.Swap.To),
			Amount0In:  p.parse("amount0_in", w.Swap.Amount0In),
			Amount1In:  p.parse("amount1_in", w.Swap.Amount1In),
			Amount0Out: p.parse("amount0_out", w.Swap.Amount0Out),
			Amount1Out: p.parse("amount1_out", w.Swap.Amount1Out),
		}
	case w.Mint != nil:
		ev.Mint = &domain.Mint{
			Sender:  strings.ToLower(w.Mint.Sender),
			Amount0: p.parse("amount0", w.Mint.Amount0),
			Amount1: p.parse("amount1", w.Mint.Amount1),
		}
	case w.Burn != nil:
		ev.Burn = &domain.Burn{
			Sender:  strings.ToLower(w.Burn.Sender),
			To:      strings.ToLower(w.Burn.To),
			Amount0: p.parse("amount0", w.Burn.Amount0),
			Amount1: p.parse("amount1", w.Burn.Amount1),
		}
	case w.Transfer != nil:
		ev.Transfer = &domain.Transfer{
			From:  strings.ToLower(w.Transfer.From),
			To:    strings.ToLower(w.Transfer.To),
			Value: p.parse("value", w.Transfer.Value),
		}
	}
	if p.err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidEvent, ev.ID(), p.err)
	}

	if err := ev.Validate(); err != nil {
		return nil, err
	}
	return ev, nil
}

// EncodeEvent renders ev in the form DecodeEvent reads.
func EncodeEvent(ev *domain.Event) ([]byte, error) {
	w := wireEvent{
		Kind:           string(ev.Kind),
		BlockNumber:    ev.BlockNumber,
		BlockTimestamp: ev.BlockTimestamp,
		TxHash:         ev.TxHash,
		LogIndex:       ev.LogIndex,
		Address:        ev.Address,
		Variant:        ev.Variant,
	}

	switch {
	case ev.PairCreated != nil:
		w.PairCreated = &wirePairCreated{Token0: ev.PairCreated.Token0, Token1: ev.PairCreated.Token1, Pair: ev.PairCreated.Pair}
	case ev.Sync != nil:
		w.Sync = &wireSync{Reserve0: str(ev.Sync.Reserve0), Reserve1: str(ev.Sync.Reserve1)}
	case ev.Swap != nil:
		w.Swap = &wireSwap{
			Sender:     ev.Swap.Sender,
			To:         ev.Swap.To,
			Amount0In:  str(ev.Swap.Amount0In),
			Amount1In:  str(ev.Swap.Amount1In),
			Amount0Out: str(ev.Swap.Amount0Out),
			Amount1Out: str(ev.Swap.Amount1Out),
		}
	case ev.Mint != nil:
		w.Mint = &wireMint{Sender: ev.Mint.Sender, Amount0: str(ev.Mint.Amount0), Amount1: str(ev.Mint.Amount1)}
	case ev.Burn != nil:
		w.Burn = &wireBurn{Sender: ev.Burn.Sender, To: ev.Burn.To, Amount0: str(ev.Burn.Amount0), Amount1: str(ev.Burn.Amount1)}
	case ev.Transfer != nil:
		w.Transfer = &wireTransfer{From: ev.Transfer.From, To: ev.Transfer.To, Value: str(ev.Transfer.Value)}
	}

	return json.Marshal(w)
}

// amountParser keeps the first parse error so payloads decode in one pass.
type amountParser struct {
	err error
}

func (p *amountParser) parse(field, s string) *big.Int {
	v, err := numeric.ParseBigInt(s)
	if err != nil {
		if p.err == nil {
			p.err = fmt.Errorf("%s: %w", field, err)
		}
		return new(big.Int)
	}
	if v.Sign() < 0 && p.err == nil {
		p.err = fmt.Errorf("%s: negative amount %s", field, s)
	}
	return v
}

func str(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
