// Package indexer applies decoded exchange events to the entity store.
//
// Each event is handled inside one store transaction: entity totals,
// prices, rollup buckets and the cursor commit together or not at all.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"exchange-indexer/internal/dedupe"
	"exchange-indexer/internal/domain"
	"exchange-indexer/internal/evm"
	"exchange-indexer/internal/observability"
	"exchange-indexer/internal/pricing"
	"exchange-indexer/internal/rollup"
	"exchange-indexer/internal/storage"
)

// Skip reasons, used as metric labels.
const (
	SkipReplayed  = "replayed"
	SkipDuplicate = "duplicate"
)

// errStore marks failures of the underlying store.
var errStore = errors.New("store failure")

// Options configures a Processor.
type Options struct {
	Logger zerolog.Logger

	// FactoryID is the factory entity every pair is counted under.
	FactoryID string

	// DefaultVariant prices events that carry no variant.
	DefaultVariant string

	// Deduper, when set, drops redelivered events before they reach the store.
	// Ids are marked only after their transaction committed.
	Deduper dedupe.Deduper

	// Sink, when set, receives the buckets of each committed event.
	Sink storage.BucketSink
}

// Processor handles events one at a time in chain order. Concurrent
// OnEvent calls are serialized.
type Processor struct {
	mu sync.Mutex

	repo           storage.Repository
	oracle         *pricing.Oracle
	tracker        *pricing.Tracker
	engine         *rollup.Engine
	metadata       evm.TokenMetadataSource
	deduper        dedupe.Deduper
	sink           storage.BucketSink
	factoryID      string
	defaultVariant string
	logger         zerolog.Logger
}

// NewProcessor creates a processor writing to repo.
func NewProcessor(repo storage.Repository, oracle *pricing.Oracle, metadata evm.TokenMetadataSource, opts Options) (*Processor, error) {
	if repo == nil || oracle == nil || metadata == nil {
		return nil, errors.New("indexer: repository, oracle and metadata source are required")
	}

	factoryID := strings.ToLower(strings.TrimSpace(opts.FactoryID))
	if factoryID == "" {
		return nil, errors.New("indexer: factory id is required")
	}
	if _, ok := oracle.Registry(opts.DefaultVariant); !ok {
		return nil, fmt.Errorf("indexer: default variant %q: %w", opts.DefaultVariant, pricing.ErrUnknownVariant)
	}

	logger := opts.Logger.With().Str("component", "indexer").Logger()

	return &Processor{
		repo:           repo,
		oracle:         oracle,
		tracker:        pricing.NewTracker(oracle.Config().Whitelist),
		engine:         rollup.NewEngine(repo, factoryID, rollup.Options{Logger: opts.Logger}),
		metadata:       metadata,
		deduper:        opts.Deduper,
		sink:           opts.Sink,
		factoryID:      factoryID,
		defaultVariant: opts.DefaultVariant,
		logger:         logger,
	}, nil
}

// OnEvent applies ev. Events at or before the stored cursor are skipped.
// A returned error means nothing from ev was committed.
func (p *Processor) OnEvent(ctx context.Context, ev *domain.Event) error {
	if err := ev.Validate(); err != nil {
		observability.RecordEventError(string(ev.Kind), "invalid_event")
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	id := ev.ID()
	log := p.logger.With().Str("event", id).Str("kind", string(ev.Kind)).Logger()

	if p.deduper != nil {
		seen, err := p.deduper.Seen(ctx, id)
		if err != nil {
			observability.RecordEventError(string(ev.Kind), "dedupe")
			return fmt.Errorf("dedupe %s: %w", id, err)
		}
		if seen {
			observability.RecordEventSkipped(SkipDuplicate)
			log.Debug().Msg("duplicate delivery skipped")
			return nil
		}
	}

	var (
		result  *txResult
		skipped bool
	)
	err := p.repo.InTx(ctx, func(tx storage.Stores) error {
		cur, err := tx.Cursor().GetCursor(ctx)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return storeError("load cursor", err)
		}
		if cur.Covers(ev.BlockNumber, ev.LogIndex) {
			skipped = true
			return nil
		}

		h := p.bind(tx, ev)
		if err := h.handle(ctx); err != nil {
			return err
		}

		if err := tx.Cursor().SetCursor(ctx, &storage.Cursor{
			BlockNumber: ev.BlockNumber,
			LogIndex:    ev.LogIndex,
			TxHash:      ev.TxHash,
		}); err != nil {
			return storeError("save cursor", err)
		}

		result = &h.result
		return nil
	})
	if err != nil {
		errType := classify(err)
		observability.RecordEventError(string(ev.Kind), errType)
		log.Error().Err(err).Str("error_type", errType).Msg("event failed")
		return fmt.Errorf("process %s %s: %w", ev.Kind, id, err)
	}

	// A crash before the mark is caught by the cursor on redelivery.
	if p.deduper != nil {
		if err := p.deduper.MarkSeen(context.WithoutCancel(ctx), id); err != nil {
			log.Warn().Err(err).Msg("failed to mark event as seen")
		}
	}

	if skipped {
		observability.RecordEventSkipped(SkipReplayed)
		log.Debug().Msg("event at or before cursor skipped")
		return nil
	}

	p.afterCommit(ctx, ev, result, log)
	observability.RecordEventProcessed(string(ev.Kind), ev.BlockNumber, time.Since(start))
	return nil
}

func (p *Processor) afterCommit(ctx context.Context, ev *domain.Event, result *txResult, log zerolog.Logger) {
	if result.created != nil {
		if registry, ok := p.oracle.Registry(p.variant(ev)); ok {
			if rec, ok := registry.(evm.PairRecorder); ok {
				rec.Remember(result.created.Token0, result.created.Token1, result.created.ID)
			}
		}
		log.Info().
			Str("pair", result.created.ID).
			Str("token0", result.created.Token0).
			Str("token1", result.created.Token1).
			Msg("pair created")
	}

	if result.ethPrice != nil {
		observability.UpdateEthPrice(result.ethPrice.InexactFloat64())
	}

	if p.sink != nil && !result.buckets.Empty() {
		if err := p.sink.Write(ctx, ev.BlockNumber, &result.buckets); err != nil {
			observability.RecordSinkError()
			log.Warn().Err(err).Msg("bucket sink write failed")
		}
	}
}

func (p *Processor) variant(ev *domain.Event) string {
	if ev.Variant == "" {
		return p.defaultVariant
	}
	return ev.Variant
}

// txResult is what a committed event leaves behind for post-commit work.
type txResult struct {
	buckets  domain.Buckets
	ethPrice *decimal.Decimal
	created  *domain.Pair
}

func storeError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, errStore, err)
}

// classify maps an event failure to a metric label.
func classify(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, domain.ErrEntityNotFound):
		return "entity_not_found"
	case errors.Is(err, evm.ErrRegistryQueryFailed):
		return "registry"
	case errors.Is(err, pricing.ErrUnknownVariant):
		return "unknown_variant"
	case errors.Is(err, errStore):
		return "store"
	default:
		return "other"
	}
}
