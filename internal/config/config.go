// Package config loads the indexer configuration from a YAML file.
//
// ${VAR} and ${VAR:-default} references are expanded from the environment
// before parsing; a .env file in the working directory is loaded first
// when present.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"exchange-indexer/internal/evm"
	"exchange-indexer/internal/pricing"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid config")

// Dedupe backends.
const (
	DedupeNone   = "none"
	DedupeMemory = "memory"
	DedupeRedis  = "redis"
)

type Config struct {
	Logging    LoggingConfig `yaml:"logging"`
	Metrics    MetricsConfig `yaml:"metrics"`
	Stores     StoresConfig  `yaml:"stores"`
	Ingest     IngestConfig  `yaml:"ingest"`
	Dedupe     DedupeConfig  `yaml:"dedupe"`
	Chain      ChainConfig   `yaml:"chain"`
	Deployment Deployment    `yaml:"deployment"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // json|console
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type PostgresConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
}

type ClickHouseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type StoresConfig struct {
	Postgres   PostgresConfig   `yaml:"postgres"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	Redis      RedisConfig      `yaml:"redis"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	GroupID string   `yaml:"group_id"`

	// SkipUndecodable commits and skips malformed messages instead of stopping.
	SkipUndecodable bool `yaml:"skip_undecodable"`
}

// Enabled reports whether a kafka consumer is configured.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

type IngestConfig struct {
	// File is a JSON Lines replay file. It takes precedence over Kafka.
	File  string      `yaml:"file"`
	Kafka KafkaConfig `yaml:"kafka"`
}

type DedupeConfig struct {
	Backend string        `yaml:"backend"` // none|memory|redis
	TTL     time.Duration `yaml:"ttl"`
	Prefix  string        `yaml:"prefix"`
}

type ChainConfig struct {
	// RPCURL enables on-chain registry and metadata lookups. Empty means offline.
	RPCURL string `yaml:"rpc_url"`
}

// Deployment holds the per-exchange constants.
type Deployment struct {
	Name string `yaml:"name"`

	// FactoryID is the id of the factory entity all pairs are counted under.
	FactoryID string `yaml:"factory_id"`

	// Registries maps an exchange variant to its factory contract address.
	Registries map[string]string `yaml:"registries"`

	// DefaultVariant prices events that carry no variant.
	DefaultVariant string `yaml:"default_variant"`

	Whitelist           []string `yaml:"whitelist"`
	MinimumLiquidityUSD string   `yaml:"minimum_liquidity_usd"`
	Stablecoin          string   `yaml:"stablecoin"`
	ReferencePair       string   `yaml:"reference_pair"`
}

// Variants returns the registry variants in sorted order.
func (d Deployment) Variants() []string {
	out := make([]string, 0, len(d.Registries))
	for v := range d.Registries {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// PricingConfig builds the validated pricing constants.
func (d Deployment) PricingConfig() (pricing.Config, error) {
	minimum, err := decimal.NewFromString(d.MinimumLiquidityUSD)
	if err != nil {
		return pricing.Config{}, fmt.Errorf("%w: minimum_liquidity_usd %q", ErrInvalid, d.MinimumLiquidityUSD)
	}

	cfg := pricing.Config{
		Whitelist:           append([]string(nil), d.Whitelist...),
		MinimumLiquidityUSD: minimum,
		StablecoinID:        d.Stablecoin,
		ReferencePairID:     d.ReferencePair,
	}
	if err := cfg.Validate(); err != nil {
		return pricing.Config{}, err
	}
	return cfg, nil
}

// Load reads, expands and validates the config at path.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse expands, decodes and validates raw YAML. Unknown keys are rejected.
func Parse(b []byte) (*Config, error) {
	expanded := os.Expand(string(b), lookupEnv)

	dec := yaml.NewDecoder(bytes.NewBufferString(expanded))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// lookupEnv resolves NAME or NAME:-default.
func lookupEnv(key string) string {
	name, def, hasDefault := strings.Cut(key, ":-")
	if v, ok := os.LookupEnv(name); ok && v != "" {
		return v
	}
	if hasDefault {
		return def
	}
	return ""
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9090"
	}
	if c.Dedupe.Backend == "" {
		c.Dedupe.Backend = DedupeNone
	}
	if c.Dedupe.TTL == 0 {
		c.Dedupe.TTL = 24 * time.Hour
	}
	if c.Deployment.MinimumLiquidityUSD == "" {
		c.Deployment.MinimumLiquidityUSD = "0"
	}
	if c.Deployment.DefaultVariant == "" && len(c.Deployment.Registries) == 1 {
		c.Deployment.DefaultVariant = c.Deployment.Variants()[0]
	}
}

// Validate checks the config for missing or inconsistent values.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: logging.level: %v", ErrInvalid, err)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("%w: logging.format must be json or console, got %q", ErrInvalid, c.Logging.Format)
	}

	switch c.Dedupe.Backend {
	case DedupeNone, DedupeMemory:
	case DedupeRedis:
		if c.Stores.Redis.Addr == "" {
			return fmt.Errorf("%w: dedupe.backend redis requires stores.redis.addr", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown dedupe.backend %q", ErrInvalid, c.Dedupe.Backend)
	}
	if c.Dedupe.TTL < 0 {
		return fmt.Errorf("%w: dedupe.ttl must not be negative", ErrInvalid)
	}

	pg := c.Stores.Postgres
	if pg.MinConns < 0 || pg.MaxConns < 0 || (pg.MaxConns > 0 && pg.MinConns > pg.MaxConns) {
		return fmt.Errorf("%w: stores.postgres pool size min %d max %d", ErrInvalid, pg.MinConns, pg.MaxConns)
	}

	k := c.Ingest.Kafka
	if k.Enabled() && (k.Topic == "" || k.GroupID == "") {
		return fmt.Errorf("%w: ingest.kafka requires topic and group_id", ErrInvalid)
	}

	return c.Deployment.validate(c.Chain.RPCURL != "")
}

func (d *Deployment) validate(online bool) error {
	if strings.TrimSpace(d.FactoryID) == "" {
		return fmt.Errorf("%w: deployment.factory_id is required", ErrInvalid)
	}
	if len(d.Registries) == 0 {
		return fmt.Errorf("%w: deployment.registries is empty", ErrInvalid)
	}
	if _, ok := d.Registries[d.DefaultVariant]; !ok {
		return fmt.Errorf("%w: deployment.default_variant %q has no registry", ErrInvalid, d.DefaultVariant)
	}

	// Factory contracts are only called when an RPC endpoint is configured.
	if online {
		for variant, addr := range d.Registries {
			if _, err := evm.NormalizeAddress(addr); err != nil {
				return fmt.Errorf("%w: registry %s: %v", ErrInvalid, variant, err)
			}
		}
	}

	if _, err := d.PricingConfig(); err != nil {
		if errors.Is(err, ErrInvalid) {
			return err
		}
		return fmt.Errorf("%w: deployment %s: %w", ErrInvalid, d.Name, err)
	}
	return nil
}
