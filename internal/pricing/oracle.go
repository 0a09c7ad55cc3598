package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"exchange-indexer/internal/domain"
	"exchange-indexer/internal/evm"
	"exchange-indexer/internal/numeric"
	"exchange-indexer/internal/observability"
	"exchange-indexer/internal/storage"
)

// ErrUnknownVariant is returned for an exchange variant without a registry.
var ErrUnknownVariant = errors.New("unknown exchange variant")

// OracleOptions configures an Oracle.
type OracleOptions struct {
	Logger zerolog.Logger
}

// Oracle derives USD prices from indexed pairs.
// It reads through the stores it is bound to; bind it to a transaction
// view with WithStores so staged reserves are visible.
type Oracle struct {
	cfg        Config
	registries map[string]evm.PairRegistry
	pairs      storage.PairStore
	tokens     storage.TokenStore
	logger     zerolog.Logger
}

// NewOracle creates an oracle. cfg is validated and normalized.
// registries maps an exchange variant to its pair registry.
func NewOracle(stores storage.Stores, cfg Config, registries map[string]evm.PairRegistry, opts OracleOptions) (*Oracle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(registries) == 0 {
		return nil, fmt.Errorf("%w: no pair registries", ErrInvalidConfig)
	}

	return &Oracle{
		cfg:        cfg,
		registries: registries,
		pairs:      stores.Pairs(),
		tokens:     stores.Tokens(),
		logger:     opts.Logger.With().Str("component", "price_oracle").Logger(),
	}, nil
}

// WithStores returns a copy of the oracle reading from stores.
func (o *Oracle) WithStores(stores storage.Stores) *Oracle {
	cp := *o
	cp.pairs = stores.Pairs()
	cp.tokens = stores.Tokens()
	return &cp
}

// Config returns the normalized configuration.
func (o *Oracle) Config() Config {
	return o.cfg
}

// Registry returns the pair registry of variant.
func (o *Oracle) Registry(variant string) (evm.PairRegistry, bool) {
	r, ok := o.registries[variant]
	return r, ok
}

// EthPriceInUSD returns the stablecoin-side spot price of the reference pair,
// or zero while the pair is not indexed. Only store failures are returned.
func (o *Oracle) EthPriceInUSD(ctx context.Context) (decimal.Decimal, error) {
	pair, err := o.pairs.GetByID(ctx, o.cfg.ReferencePairID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return numeric.Zero, nil
		}
		return numeric.Zero, fmt.Errorf("load reference pair: %w", err)
	}

	switch o.cfg.StablecoinID {
	case pair.Token0:
		return pair.Token0Price, nil
	case pair.Token1:
		return pair.Token1Price, nil
	default:
		o.logger.Warn().
			Str("pair", pair.ID).
			Str("stablecoin", o.cfg.StablecoinID).
			Msg("reference pair does not contain the stablecoin")
		return numeric.Zero, nil
	}
}

// FindUsdPerToken derives a USD price for token through the first whitelisted
// pool on the variant's registry whose reserveUSD exceeds the liquidity
// threshold. Zero means no qualifying pool was found.
func (o *Oracle) FindUsdPerToken(ctx context.Context, token, variant string) (decimal.Decimal, error) {
	price, err := o.findUsdPerToken(ctx, strings.ToLower(token), variant)
	switch {
	case err != nil:
		observability.RecordPriceLookup(observability.PriceError)
	case price.IsZero():
		observability.RecordPriceLookup(observability.PriceNoPrice)
	default:
		observability.RecordPriceLookup(observability.PricePriced)
	}
	return price, err
}

func (o *Oracle) findUsdPerToken(ctx context.Context, token, variant string) (decimal.Decimal, error) {
	if token == o.cfg.StablecoinID {
		return numeric.One, nil
	}

	registry, ok := o.registries[variant]
	if !ok {
		return numeric.Zero, fmt.Errorf("%w: %q", ErrUnknownVariant, variant)
	}

	for _, candidate := range o.cfg.Whitelist {
		if candidate == token {
			continue
		}

		address, err := registry.GetPair(ctx, token, candidate)
		if err != nil {
			observability.RecordRegistryLookup(variant, "error")
			if !errors.Is(err, evm.ErrRegistryQueryFailed) {
				err = fmt.Errorf("%w: %v", evm.ErrRegistryQueryFailed, err)
			}
			return numeric.Zero, fmt.Errorf("price %s via %s: %w", token, candidate, err)
		}
		if address == evm.ZeroAddress {
			observability.RecordRegistryLookup(variant, "no_pair")
			continue
		}
		observability.RecordRegistryLookup(variant, "pair")

		pair, err := o.pairs.GetByID(ctx, strings.ToLower(address))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				o.logger.Debug().Str("pair", address).Msg("registered pair not indexed yet")
				continue
			}
			return numeric.Zero, fmt.Errorf("load pair %s: %w", address, err)
		}

		if !pair.ReserveUSD.GreaterThan(o.cfg.MinimumLiquidityUSD) {
			continue
		}

		switch token {
		case pair.Token0:
			other, err := o.loadToken(ctx, pair.Token1)
			if err != nil {
				return numeric.Zero, err
			}
			return pair.Token1Price.Mul(other.DerivedUSD), nil
		case pair.Token1:
			other, err := o.loadToken(ctx, pair.Token0)
			if err != nil {
				return numeric.Zero, err
			}
			return pair.Token0Price.Mul(other.DerivedUSD), nil
		}
	}

	return numeric.Zero, nil
}

func (o *Oracle) loadToken(ctx context.Context, id string) (*domain.Token, error) {
	t, err := o.tokens.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, domain.EntityNotFound("token", id)
		}
		return nil, fmt.Errorf("load token %s: %w", id, err)
	}
	return t, nil
}
