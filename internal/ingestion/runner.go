package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"exchange-indexer/internal/domain"
)

// Handler applies one event.
type Handler interface {
	OnEvent(ctx context.Context, ev *domain.Event) error
}

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	Logger zerolog.Logger

	// ProgressEvery logs progress after this many events. Default: 1000.
	ProgressEvery int
}

// RunResult contains statistics from a run.
type RunResult struct {
	Events    int
	LastBlock uint64
	Duration  time.Duration
}

// Runner pulls events from a source and hands them to the handler in order.
// The first handler error stops the run; the failed event is not acked.
type Runner struct {
	source        Source
	handler       Handler
	progressEvery int
	logger        zerolog.Logger
}

// NewRunner creates a new ingestion runner.
func NewRunner(source Source, handler Handler, opts RunnerOptions) *Runner {
	progressEvery := opts.ProgressEvery
	if progressEvery <= 0 {
		progressEvery = 1000
	}

	return &Runner{
		source:        source,
		handler:       handler,
		progressEvery: progressEvery,
		logger:        opts.Logger.With().Str("component", "runner").Logger(),
	}
}

// Run blocks until the source is drained, ctx is cancelled or an event fails.
// A drained source returns a nil error.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	start := time.Now()
	result := &RunResult{}
	acker, _ := r.source.(Acker)

	r.logger.Info().Msg("runner started")

	for {
		ev, err := r.source.Next(ctx)
		if err != nil {
			result.Duration = time.Since(start)
			if errors.Is(err, io.EOF) {
				r.logger.Info().
					Int("events", result.Events).
					Uint64("last_block", result.LastBlock).
					Dur("duration", result.Duration).
					Msg("source drained")
				return result, nil
			}
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			return result, fmt.Errorf("next event: %w", err)
		}

		if err := r.handler.OnEvent(ctx, ev); err != nil {
			result.Duration = time.Since(start)
			return result, fmt.Errorf("event %s: %w", ev.ID(), err)
		}

		if acker != nil {
			if err := acker.Ack(ctx, ev); err != nil {
				result.Duration = time.Since(start)
				return result, err
			}
		}

		result.Events++
		result.LastBlock = ev.BlockNumber
		if result.Events%r.progressEvery == 0 {
			r.logger.Info().
				Int("events", result.Events).
				Uint64("block", ev.BlockNumber).
				Msg("progress")
		}
	}
}
