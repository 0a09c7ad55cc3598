package dedupe

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Memory is a single-process Deduper with per-id expiry.
type Memory struct {
	logger  zerolog.Logger
	ttl     time.Duration
	now     func() time.Time
	mu      sync.Mutex
	items   map[string]time.Time
	stopCh  chan struct{}
	stopped bool
}

// MemoryOptions configures a Memory deduper.
type MemoryOptions struct {
	Logger zerolog.Logger

	// TTL is how long an id stays marked.
	TTL time.Duration

	// JanitorEvery is the sweep interval for expired ids; zero disables the sweeper.
	JanitorEvery time.Duration
}

// NewMemory creates an in-memory deduper.
func NewMemory(opts MemoryOptions) *Memory {
	m := &Memory{
		logger: opts.Logger.With().Str("component", "dedupe_memory").Logger(),
		ttl:    opts.TTL,
		now:    time.Now,
		items:  make(map[string]time.Time, 1024),
		stopCh: make(chan struct{}),
	}

	if opts.JanitorEvery > 0 {
		go m.janitor(opts.JanitorEvery)
	}
	return m
}

// Seen implements Deduper.
func (m *Memory) Seen(_ context.Context, id string) (bool, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	exp, ok := m.items[id]
	return ok && exp.After(now), nil
}

// MarkSeen implements Deduper.
func (m *Memory) MarkSeen(_ context.Context, id string) error {
	exp := m.now().Add(m.ttl)

	m.mu.Lock()
	m.items[id] = exp
	m.mu.Unlock()
	return nil
}

// Len returns the number of marked ids, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *Memory) janitor(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-t.C:
			m.sweep()
		}
	}
}

func (m *Memory) sweep() {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, exp := range m.items {
		if !exp.After(now) {
			delete(m.items, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Debug().Int("removed", removed).Msg("expired ids swept")
	}
}

// Close stops the sweeper. Safe to call more than once.
func (m *Memory) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.stopped {
		close(m.stopCh)
		m.stopped = true
	}
}

var _ Deduper = (*Memory)(nil)
