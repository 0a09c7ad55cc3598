package ingestion

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"exchange-indexer/internal/domain"
)

// ErrUndecodable is returned by KafkaSource.Next for a message that is not a valid event.
var ErrUndecodable = errors.New("undecodable message")

// KafkaConfig holds consumer settings.
type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// kafkaReader is the subset of *kafka.Reader the source uses.
type kafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSource consumes JSON events from a topic. Offsets are committed
// only through Ack, so an event that failed is delivered again after a restart.
type KafkaSource struct {
	reader          kafkaReader
	logger          zerolog.Logger
	skipUndecodable bool

	mu      sync.Mutex
	pending map[string]kafka.Message
}

// KafkaSourceOptions configures a KafkaSource.
type KafkaSourceOptions struct {
	Logger zerolog.Logger

	// SkipUndecodable commits and skips messages that fail to decode.
	// By default Next returns ErrUndecodable and leaves the offset uncommitted.
	SkipUndecodable bool
}

// NewKafkaSource creates a consumer group reader for cfg.
func NewKafkaSource(cfg KafkaConfig, opts KafkaSourceOptions) (*KafkaSource, error) {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" || cfg.GroupID == "" {
		return nil, errors.New("kafka source requires brokers, topic and group id")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.Topic,
		GroupID:        cfg.GroupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // commit synchronously from Ack
		StartOffset:    kafka.FirstOffset,
	})
	return newKafkaSource(reader, opts), nil
}

func newKafkaSource(reader kafkaReader, opts KafkaSourceOptions) *KafkaSource {
	return &KafkaSource{
		reader:          reader,
		logger:          opts.Logger.With().Str("component", "kafka_source").Logger(),
		skipUndecodable: opts.SkipUndecodable,
		pending:         make(map[string]kafka.Message),
	}
}

// Next implements Source. An undecodable message stops consumption with
// ErrUndecodable unless SkipUndecodable is set.
func (s *KafkaSource) Next(ctx context.Context) (*domain.Event, error) {
	for {
		msg, err := s.reader.FetchMessage(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch kafka message: %w", err)
		}

		ev, err := DecodeEvent(msg.Value)
		if err != nil {
			if !s.skipUndecodable {
				return nil, fmt.Errorf("partition %d offset %d: %w: %w", msg.Partition, msg.Offset, ErrUndecodable, err)
			}
			s.logger.Error().
				Err(err).
				Int("partition", msg.Partition).
				Int64("offset", msg.Offset).
				Msg("skipping undecodable message")
			if cerr := s.reader.CommitMessages(ctx, msg); cerr != nil {
				return nil, fmt.Errorf("commit bad message: %w", cerr)
			}
			continue
		}

		s.mu.Lock()
		s.pending[ev.ID()] = msg
		s.mu.Unlock()
		return ev, nil
	}
}

// Ack commits the offset of ev.
func (s *KafkaSource) Ack(ctx context.Context, ev *domain.Event) error {
	id := ev.ID()

	s.mu.Lock()
	msg, ok := s.pending[id]
	delete(s.pending, id)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("ack %s: message not pending", id)
	}
	if err := s.reader.CommitMessages(ctx, msg); err != nil {
		return fmt.Errorf("commit %s: %w", id, err)
	}
	return nil
}

// Close implements Source.
func (s *KafkaSource) Close() error {
	return s.reader.Close()
}

var (
	_ Source = (*KafkaSource)(nil)
	_ Acker  = (*KafkaSource)(nil)
)
