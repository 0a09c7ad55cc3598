package ingestion

import (
	"errors"
	"math/big"
	"testing"

	"exchange-indexer/internal/domain"
)

func TestDecodeEvent_Swap(t *testing.T) {
	data := []byte(`{"kind":"swap","block_number":10,"block_timestamp":90000,"tx_hash":"0xABC","log_index":4,
		"address":"0xPAIR","variant":"sushiswap",
		"swap":{"sender":"0xS","to":"0xT","amount0_in":"1000000000000000000000000","amount1_in":"0","amount0_out":"","amount1_out":"42"}}`)

	ev, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ev.Kind != domain.EventSwap {
		t.Errorf("Kind = %s", ev.Kind)
	}
	if ev.Address != "0xpair" || ev.TxHash != "0xabc" {
		t.Errorf("addresses not lowercased: %s %s", ev.Address, ev.TxHash)
	}
	if ev.Variant != "sushiswap" {
		t.Errorf("Variant = %q", ev.Variant)
	}
	want, _ := new(big.Int).SetString("1000000000000000000000000", 10)
	if ev.Swap.Amount0In.Cmp(want) != 0 {
		t.Errorf("Amount0In = %s", ev.Swap.Amount0In)
	}
	if ev.Swap.Amount0Out.Sign() != 0 {
		t.Errorf("empty amount should decode as zero, got %s", ev.Swap.Amount0Out)
	}
	if ev.Swap.Amount1Out.Int64() != 42 {
		t.Errorf("Amount1Out = %s", ev.Swap.Amount1Out)
	}
}

func TestDecodeEvent_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown kind", `{"kind":"approval","address":"0xp"}`},
		{"payload mismatch", `{"kind":"SYNC","address":"0xp","swap":{}}`},
		{"bad amount", `{"kind":"SYNC","address":"0xp","sync":{"reserve0":"1.5","reserve1":"1"}}`},
		{"negative amount", `{"kind":"SYNC","address":"0xp","sync":{"reserve0":"-1","reserve1":"1"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeEvent([]byte(tt.data))
			if !errors.Is(err, domain.ErrInvalidEvent) {
				t.Errorf("expected ErrInvalidEvent, got %v", err)
			}
		})
	}

	if _, err := DecodeEvent([]byte(`{`)); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestEncodeDecodeEvent(t *testing.T) {
	ev := &domain.Event{
		Kind:           domain.EventPairCreated,
		BlockNumber:    7,
		BlockTimestamp: 1600000000,
		TxHash:         "0xtx",
		LogIndex:       2,
		Address:        "0xfactory",
		PairCreated:    &domain.PairCreated{Token0: "0xa", Token1: "0xb", Pair: "0xp"},
	}

	data, err := EncodeEvent(ev)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID() != ev.ID() || *got.PairCreated != *ev.PairCreated {
		t.Errorf("got %+v, want %+v", got, ev)
	}
}
