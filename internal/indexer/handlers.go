package indexer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"exchange-indexer/internal/domain"
	"exchange-indexer/internal/evm"
	"exchange-indexer/internal/numeric"
	"exchange-indexer/internal/pricing"
	"exchange-indexer/internal/rollup"
	"exchange-indexer/internal/storage"
)

// lpDecimals is the precision of pair liquidity tokens.
const lpDecimals = 18

var half = decimal.New(5, -1)

// handler applies one event through a transaction view.
type handler struct {
	p       *Processor
	stores  storage.Stores
	oracle  *pricing.Oracle
	engine  *rollup.Engine
	ev      *domain.Event
	variant string
	result  txResult
}

func (p *Processor) bind(tx storage.Stores, ev *domain.Event) *handler {
	return &handler{
		p:       p,
		stores:  tx,
		oracle:  p.oracle.WithStores(tx),
		engine:  p.engine.WithStores(tx),
		ev:      ev,
		variant: p.variant(ev),
	}
}

func (h *handler) handle(ctx context.Context) error {
	switch h.ev.Kind {
	case domain.EventPairCreated:
		return h.pairCreated(ctx)
	case domain.EventSync:
		return h.sync(ctx)
	case domain.EventSwap:
		return h.swap(ctx)
	case domain.EventMint, domain.EventBurn:
		return h.liquidityChange(ctx)
	case domain.EventTransfer:
		return h.transfer(ctx)
	default:
		return fmt.Errorf("%w: unhandled kind %q", domain.ErrInvalidEvent, h.ev.Kind)
	}
}

func (h *handler) pairCreated(ctx context.Context) error {
	pc := h.ev.PairCreated
	pairID := strings.ToLower(pc.Pair)

	if _, err := h.stores.Pairs().GetByID(ctx, pairID); err == nil {
		h.p.logger.Warn().Str("pair", pairID).Msg("pair already exists, PairCreated ignored")
		return nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return storeError("load pair "+pairID, err)
	}

	factory, created, err := storage.LoadOrCreate(ctx, h.stores.Factories().GetByID, h.p.factoryID, func() *domain.Factory {
		return &domain.Factory{ID: h.p.factoryID}
	})
	if err != nil {
		return storeError("load factory", err)
	}
	if created {
		h.p.logger.Info().Str("factory", factory.ID).Msg("factory created")
	}
	factory.PairCount++

	token0, err := h.tokenOrCreate(ctx, pc.Token0)
	if err != nil {
		return err
	}
	token1, err := h.tokenOrCreate(ctx, pc.Token1)
	if err != nil {
		return err
	}

	pair := &domain.Pair{
		ID:                 pairID,
		Token0:             token0.ID,
		Token1:             token1.ID,
		CreatedAtTimestamp: h.ev.BlockTimestamp,
		CreatedAtBlock:     h.ev.BlockNumber,
	}

	if err := h.saveFactory(ctx, factory); err != nil {
		return err
	}
	if err := h.saveTokens(ctx, token0, token1); err != nil {
		return err
	}
	if err := h.savePair(ctx, pair); err != nil {
		return err
	}

	h.result.created = pair
	return nil
}

// tokenOrCreate loads a token or builds it from on-chain metadata.
func (h *handler) tokenOrCreate(ctx context.Context, id string) (*domain.Token, error) {
	id = strings.ToLower(id)

	t, err := h.stores.Tokens().GetByID(ctx, id)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, storeError("load token "+id, err)
	}

	md, err := h.p.metadata.TokenMetadata(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("token metadata %s: %w", id, err)
	}

	return &domain.Token{
		ID:          id,
		Symbol:      md.Symbol,
		Name:        md.Name,
		Decimals:    md.Decimals,
		TotalSupply: numeric.ConvertTokenToDecimal(md.TotalSupply, md.Decimals),
	}, nil
}

func (h *handler) sync(ctx context.Context) error {
	pair, token0, token1, err := h.loadPair(ctx)
	if err != nil {
		return err
	}
	factory, err := h.loadFactory(ctx)
	if err != nil {
		return err
	}

	// Take the pair's previous contribution out of the totals.
	factory.TotalLiquidityUSD = factory.TotalLiquidityUSD.Sub(pair.TrackedReserveUSD)
	token0.TotalLiquidity = token0.TotalLiquidity.Sub(pair.Reserve0)
	token1.TotalLiquidity = token1.TotalLiquidity.Sub(pair.Reserve1)

	pair.Reserve0 = numeric.ConvertTokenToDecimal(h.ev.Sync.Reserve0, token0.Decimals)
	pair.Reserve1 = numeric.ConvertTokenToDecimal(h.ev.Sync.Reserve1, token1.Decimals)
	pair.Token0Price = numeric.SafeDiv(pair.Reserve0, pair.Reserve1)
	pair.Token1Price = numeric.SafeDiv(pair.Reserve1, pair.Reserve0)

	// Prices below read the new reserves.
	if err := h.savePair(ctx, pair); err != nil {
		return err
	}

	ethPrice, err := h.oracle.EthPriceInUSD(ctx)
	if err != nil {
		return err
	}
	if err := h.stores.Bundles().Upsert(ctx, &domain.Bundle{ID: domain.BundleID, EthPriceUSD: ethPrice}); err != nil {
		return storeError("save bundle", err)
	}
	h.result.ethPrice = &ethPrice

	derived0, err := h.oracle.FindUsdPerToken(ctx, token0.ID, h.variant)
	if err != nil {
		return err
	}
	derived1, err := h.oracle.FindUsdPerToken(ctx, token1.ID, h.variant)
	if err != nil {
		return err
	}
	token0.DerivedUSD = derived0
	token1.DerivedUSD = derived1

	pair.TrackedReserveUSD = h.p.tracker.TrackedLiquidityUSD(pair.Reserve0, token0, pair.Reserve1, token1)
	pair.ReserveUSD = pair.Reserve0.Mul(derived0).Add(pair.Reserve1.Mul(derived1))

	factory.TotalLiquidityUSD = factory.TotalLiquidityUSD.Add(pair.TrackedReserveUSD)
	token0.TotalLiquidity = token0.TotalLiquidity.Add(pair.Reserve0)
	token1.TotalLiquidity = token1.TotalLiquidity.Add(pair.Reserve1)

	if err := h.savePair(ctx, pair); err != nil {
		return err
	}
	if err := h.saveFactory(ctx, factory); err != nil {
		return err
	}
	return h.saveTokens(ctx, token0, token1)
}

func (h *handler) swap(ctx context.Context) error {
	pair, token0, token1, err := h.loadPair(ctx)
	if err != nil {
		return err
	}
	factory, err := h.loadFactory(ctx)
	if err != nil {
		return err
	}

	s := h.ev.Swap
	amount0 := numeric.ConvertTokenToDecimal(s.Amount0In, token0.Decimals).
		Add(numeric.ConvertTokenToDecimal(s.Amount0Out, token0.Decimals))
	amount1 := numeric.ConvertTokenToDecimal(s.Amount1In, token1.Decimals).
		Add(numeric.ConvertTokenToDecimal(s.Amount1Out, token1.Decimals))

	// Untracked volume averages both legs regardless of the whitelist.
	untracked := amount0.Mul(token0.DerivedUSD).Add(amount1.Mul(token1.DerivedUSD)).Mul(half)
	tracked := h.p.tracker.TrackedVolumeUSD(amount0, token0, amount1, token1)

	token0.TradeVolume = token0.TradeVolume.Add(amount0)
	token0.TradeVolumeUSD = token0.TradeVolumeUSD.Add(tracked)
	token0.UntrackedVolumeUSD = token0.UntrackedVolumeUSD.Add(untracked)
	token1.TradeVolume = token1.TradeVolume.Add(amount1)
	token1.TradeVolumeUSD = token1.TradeVolumeUSD.Add(tracked)
	token1.UntrackedVolumeUSD = token1.UntrackedVolumeUSD.Add(untracked)

	pair.VolumeToken0 = pair.VolumeToken0.Add(amount0)
	pair.VolumeToken1 = pair.VolumeToken1.Add(amount1)
	pair.VolumeUSD = pair.VolumeUSD.Add(tracked)
	pair.UntrackedVolumeUSD = pair.UntrackedVolumeUSD.Add(untracked)

	factory.TotalVolumeUSD = factory.TotalVolumeUSD.Add(tracked)
	factory.UntrackedVolumeUSD = factory.UntrackedVolumeUSD.Add(untracked)

	if err := h.countTransaction(ctx, pair, token0, token1, factory); err != nil {
		return err
	}

	b := &h.result.buckets
	if err := h.rollups(ctx, token0, token1); err != nil {
		return err
	}

	pairDay, pairHour, factoryDay := b.PairDays[0], b.PairHours[0], b.FactoryDays[0]
	pairDay.DailyVolumeToken0 = pairDay.DailyVolumeToken0.Add(amount0)
	pairDay.DailyVolumeToken1 = pairDay.DailyVolumeToken1.Add(amount1)
	pairDay.DailyVolumeUSD = pairDay.DailyVolumeUSD.Add(tracked)
	if err := h.stores.PairDays().Upsert(ctx, pairDay); err != nil {
		return storeError("save pair day", err)
	}

	pairHour.HourlyVolumeToken0 = pairHour.HourlyVolumeToken0.Add(amount0)
	pairHour.HourlyVolumeToken1 = pairHour.HourlyVolumeToken1.Add(amount1)
	pairHour.HourlyVolumeUSD = pairHour.HourlyVolumeUSD.Add(tracked)
	if err := h.stores.PairHours().Upsert(ctx, pairHour); err != nil {
		return storeError("save pair hour", err)
	}

	factoryDay.DailyVolumeUSD = factoryDay.DailyVolumeUSD.Add(tracked)
	factoryDay.DailyVolumeUntracked = factoryDay.DailyVolumeUntracked.Add(untracked)
	if err := h.stores.FactoryDays().Upsert(ctx, factoryDay); err != nil {
		return storeError("save factory day", err)
	}

	amounts := []decimal.Decimal{amount0, amount1}
	tokens := []*domain.Token{token0, token1}
	for i, day := range b.TokenDays {
		day.DailyVolumeToken = day.DailyVolumeToken.Add(amounts[i])
		day.DailyVolumeUSD = day.DailyVolumeUSD.Add(amounts[i].Mul(tokens[i].DerivedUSD))
		if err := h.stores.TokenDays().Upsert(ctx, day); err != nil {
			return storeError("save token day", err)
		}
	}
	return nil
}

// liquidityChange handles Mint and Burn: both count as a transaction.
func (h *handler) liquidityChange(ctx context.Context) error {
	pair, token0, token1, err := h.loadPair(ctx)
	if err != nil {
		return err
	}
	factory, err := h.loadFactory(ctx)
	if err != nil {
		return err
	}

	if err := h.countTransaction(ctx, pair, token0, token1, factory); err != nil {
		return err
	}
	return h.rollups(ctx, token0, token1)
}

// transfer tracks LP supply: mints come from the zero address, burns
// are sent to it by the pair.
func (h *handler) transfer(ctx context.Context) error {
	pairID := strings.ToLower(h.ev.Address)
	pair, err := h.stores.Pairs().GetByID(ctx, pairID)
	if err != nil {
		return ownerError("pair", pairID, err)
	}

	t := h.ev.Transfer
	from, to := strings.ToLower(t.From), strings.ToLower(t.To)
	value := numeric.ConvertTokenToDecimal(t.Value, lpDecimals)

	changed := false
	if from == evm.ZeroAddress {
		pair.TotalSupply = pair.TotalSupply.Add(value)
		changed = true
	}
	if to == evm.ZeroAddress && from == pair.ID {
		pair.TotalSupply = pair.TotalSupply.Sub(value)
		changed = true
	}
	if !changed {
		return nil
	}
	return h.savePair(ctx, pair)
}

// countTransaction bumps the tx counters of a swap, mint or burn and saves the entities.
func (h *handler) countTransaction(ctx context.Context, pair *domain.Pair, token0, token1 *domain.Token, factory *domain.Factory) error {
	pair.TxCount++
	token0.TxCount++
	token1.TxCount++
	factory.TotalTransactions++

	if err := h.savePair(ctx, pair); err != nil {
		return err
	}
	if err := h.saveFactory(ctx, factory); err != nil {
		return err
	}
	return h.saveTokens(ctx, token0, token1)
}

// rollups counts the event in every bucket it touches and collects them.
func (h *handler) rollups(ctx context.Context, token0, token1 *domain.Token) error {
	pairDay, err := h.engine.UpdatePairDayData(ctx, h.ev)
	if err != nil {
		return err
	}
	pairHour, err := h.engine.UpdatePairHourData(ctx, h.ev)
	if err != nil {
		return err
	}
	factoryDay, err := h.engine.UpdateFactoryDayData(ctx, h.ev)
	if err != nil {
		return err
	}
	token0Day, err := h.engine.UpdateTokenDayData(ctx, token0, h.ev)
	if err != nil {
		return err
	}
	token1Day, err := h.engine.UpdateTokenDayData(ctx, token1, h.ev)
	if err != nil {
		return err
	}

	b := &h.result.buckets
	b.PairDays = append(b.PairDays, pairDay)
	b.PairHours = append(b.PairHours, pairHour)
	b.FactoryDays = append(b.FactoryDays, factoryDay)
	b.TokenDays = append(b.TokenDays, token0Day, token1Day)
	return nil
}
