package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"exchange-indexer/internal/domain"
)

func tok(id string, price int64) *domain.Token {
	return &domain.Token{ID: id, DerivedUSD: decimal.NewFromInt(price)}
}

func TestTracker(t *testing.T) {
	tracker := NewTracker([]string{"0xW1", "0xw2"})

	// amount0=10 @ $2 = 20, amount1=5 @ $4 = 20
	a0, a1 := decimal.NewFromInt(10), decimal.NewFromInt(5)

	tests := []struct {
		name          string
		token0        *domain.Token
		token1        *domain.Token
		wantVolume    string
		wantLiquidity string
	}{
		{"both whitelisted", tok("0xw1", 2), tok("0xw2", 4), "20", "40"},
		{"only token0", tok("0xw1", 2), tok("0xx", 4), "20", "40"},
		{"only token1", tok("0xx", 2), tok("0xw2", 4), "20", "40"},
		{"neither", tok("0xx", 2), tok("0xy", 4), "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vol := tracker.TrackedVolumeUSD(a0, tt.token0, a1, tt.token1)
			if !vol.Equal(decimal.RequireFromString(tt.wantVolume)) {
				t.Errorf("volume = %s, want %s", vol, tt.wantVolume)
			}
			liq := tracker.TrackedLiquidityUSD(a0, tt.token0, a1, tt.token1)
			if !liq.Equal(decimal.RequireFromString(tt.wantLiquidity)) {
				t.Errorf("liquidity = %s, want %s", liq, tt.wantLiquidity)
			}
		})
	}
}

func TestTracker_AsymmetricAmounts(t *testing.T) {
	tracker := NewTracker([]string{"0xw1", "0xw2"})

	// 3 @ $1 and 1 @ $2 average to 2.5.
	vol := tracker.TrackedVolumeUSD(decimal.NewFromInt(3), tok("0xw1", 1), decimal.NewFromInt(1), tok("0xw2", 2))
	if !vol.Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("volume = %s, want 2.5", vol)
	}
}
