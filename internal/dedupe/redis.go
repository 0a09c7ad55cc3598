package dedupe

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix is used when RedisOptions.Prefix is empty.
const DefaultRedisPrefix = "exchange-indexer:dedupe:"

// RedisOptions configures a Redis deduper.
type RedisOptions struct {
	Prefix string
	TTL    time.Duration
}

// Redis is a Deduper shared by every indexer instance. Marks expire after the TTL.
type Redis struct {
	client goredis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedis creates a Redis deduper over client.
func NewRedis(client goredis.UniversalClient, opts RedisOptions) (*Redis, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if opts.TTL <= 0 {
		return nil, fmt.Errorf("redis dedupe ttl must be positive, got %s", opts.TTL)
	}

	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix, ttl: opts.TTL}, nil
}

// Seen implements Deduper.
func (d *Redis) Seen(ctx context.Context, id string) (bool, error) {
	n, err := d.client.Exists(ctx, d.prefix+id).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", id, err)
	}
	return n > 0, nil
}

// MarkSeen implements Deduper. Marking twice only refreshes the TTL.
func (d *Redis) MarkSeen(ctx context.Context, id string) error {
	if err := d.client.Set(ctx, d.prefix+id, 1, d.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", id, err)
	}
	return nil
}

// Connect opens a client and checks it with PING.
func Connect(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

var _ Deduper = (*Redis)(nil)
