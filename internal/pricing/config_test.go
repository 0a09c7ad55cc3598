package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func validConfig() Config {
	return Config{
		Whitelist:           []string{"0xWETH", " 0xusdc "},
		MinimumLiquidityUSD: decimal.NewFromInt(10),
		StablecoinID:        "0xUSDC",
		ReferencePairID:     "0xREF",
	}
}

func TestConfigValidate_Normalizes(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Whitelist[0] != "0xweth" || cfg.Whitelist[1] != "0xusdc" {
		t.Errorf("whitelist not normalized: %v", cfg.Whitelist)
	}
	if cfg.StablecoinID != "0xusdc" {
		t.Errorf("StablecoinID = %q", cfg.StablecoinID)
	}
	if cfg.ReferencePairID != "0xref" {
		t.Errorf("ReferencePairID = %q", cfg.ReferencePairID)
	}
}

func TestConfigValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty whitelist", func(c *Config) { c.Whitelist = nil }},
		{"empty entry", func(c *Config) { c.Whitelist = []string{"0xa", " "} }},
		{"duplicate entry", func(c *Config) { c.Whitelist = []string{"0xA", "0xa"} }},
		{"no stablecoin", func(c *Config) { c.StablecoinID = "" }},
		{"no reference pair", func(c *Config) { c.ReferencePairID = "" }},
		{"negative minimum", func(c *Config) { c.MinimumLiquidityUSD = decimal.NewFromInt(-1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
