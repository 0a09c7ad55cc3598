package stub

import (
	"context"
	"errors"
	"testing"

	"exchange-indexer/internal/evm"
)

func TestPairRegistry(t *testing.T) {
	reg := NewPairRegistry()
	reg.Remember("0xBB", "0xaa", "0xPAIR")
	ctx := context.Background()

	for _, args := range [][2]string{{"0xaa", "0xbb"}, {"0xbb", "0xaa"}} {
		got, err := reg.GetPair(ctx, args[0], args[1])
		if err != nil {
			t.Fatalf("GetPair failed: %v", err)
		}
		if got != "0xpair" {
			t.Errorf("GetPair(%s, %s) = %s, want 0xpair", args[0], args[1], got)
		}
	}

	got, err := reg.GetPair(ctx, "0xaa", "0xcc")
	if err != nil {
		t.Fatalf("GetPair failed: %v", err)
	}
	if got != evm.ZeroAddress {
		t.Errorf("unknown pair = %s, want zero address", got)
	}

	reg.Err = evm.ErrRegistryQueryFailed
	if _, err := reg.GetPair(ctx, "0xaa", "0xbb"); !errors.Is(err, evm.ErrRegistryQueryFailed) {
		t.Errorf("expected injected error, got %v", err)
	}
}

func TestTokenMetadata(t *testing.T) {
	md := NewTokenMetadata()
	md.Add("0xAA", "AAA", "Token A", 6)
	ctx := context.Background()

	got, err := md.TokenMetadata(ctx, "0xaa")
	if err != nil {
		t.Fatalf("TokenMetadata failed: %v", err)
	}
	if got.Symbol != "AAA" || got.Decimals != 6 {
		t.Errorf("unexpected metadata: %+v", got)
	}

	def, err := md.TokenMetadata(ctx, "0xff")
	if err != nil {
		t.Fatalf("TokenMetadata failed: %v", err)
	}
	if def.Symbol != evm.UnknownSymbol || def.Decimals != evm.DefaultDecimals {
		t.Errorf("unexpected defaults: %+v", def)
	}
}
