package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"

	"exchange-indexer/internal/config"
	"exchange-indexer/internal/dedupe"
	"exchange-indexer/internal/evm"
	"exchange-indexer/internal/evm/stub"
	"exchange-indexer/internal/indexer"
	"exchange-indexer/internal/ingestion"
	"exchange-indexer/internal/observability"
	"exchange-indexer/internal/pricing"
	"exchange-indexer/internal/storage"
	chstore "exchange-indexer/internal/storage/clickhouse"
	"exchange-indexer/internal/storage/memory"
	"exchange-indexer/internal/storage/migrations"
	pgstore "exchange-indexer/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "configs/exchange.yaml", "Path to the deployment config")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	input := flag.String("input", "", "JSON Lines event file (overrides ingest.file and Kafka)")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus metrics HTTP address (overrides metrics.addr, \"off\" to disable)")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if *input != "" {
		cfg.Ingest.File = *input
	}
	if *metricsAddr != "" {
		cfg.Metrics.Addr = *metricsAddr
	}

	logger, err := config.NewLogger(cfg.Logging, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "setup logger: %v\n", err)
		os.Exit(1)
	}
	logger = logger.With().Str("service", "indexer").Str("deployment", cfg.Deployment.Name).Logger()

	if cfg.Metrics.Addr != "off" {
		go serveMetrics(cfg.Metrics.Addr, logger)
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)

	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("initiating graceful shutdown")
		cancel()

		select {
		case sig := <-sigCh:
			logger.Warn().Str("signal", sig.String()).Msg("second signal, forcing shutdown")
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Error().Msg("graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	err = run(ctx, cfg, *useMemory, logger)

	done <- err
	cancel()

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("indexer stopped")
	}

	logger.Info().Msg("shutdown complete")
}

func serveMetrics(addr string, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.Handle("/health", observability.HealthHandler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info().Str("addr", addr).Msg("starting metrics server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}

func run(ctx context.Context, cfg *config.Config, useMemory bool, logger zerolog.Logger) error {
	repo, closeRepo, err := openRepository(ctx, cfg, useMemory, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	var sink storage.BucketSink
	if dsn := cfg.Stores.ClickHouse.DSN; dsn != "" {
		conn, err := migrations.RunClickhouse(ctx, dsn)
		if err != nil {
			return fmt.Errorf("prepare clickhouse: %w", err)
		}
		defer conn.Close()
		sink = chstore.NewBucketSink(conn)
		logger.Info().Msg("clickhouse bucket sink enabled")
	}

	registries, metadata, closeChain, err := openChain(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeChain()

	pricingCfg, err := cfg.Deployment.PricingConfig()
	if err != nil {
		return err
	}
	oracle, err := pricing.NewOracle(repo, pricingCfg, registries, pricing.OracleOptions{Logger: logger})
	if err != nil {
		return fmt.Errorf("create oracle: %w", err)
	}

	deduper, closeDeduper, err := openDeduper(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeDeduper()

	processor, err := indexer.NewProcessor(repo, oracle, metadata, indexer.Options{
		Logger:         logger,
		FactoryID:      cfg.Deployment.FactoryID,
		DefaultVariant: cfg.Deployment.DefaultVariant,
		Deduper:        deduper,
		Sink:           sink,
	})
	if err != nil {
		return fmt.Errorf("create processor: %w", err)
	}

	source, err := openSource(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := source.Close(); err != nil {
			logger.Warn().Err(err).Msg("close source")
		}
	}()

	runner := ingestion.NewRunner(source, processor, ingestion.RunnerOptions{Logger: logger})
	_, err = runner.Run(ctx)
	return err
}

func openRepository(ctx context.Context, cfg *config.Config, useMemory bool, logger zerolog.Logger) (storage.Repository, func(), error) {
	if useMemory {
		logger.Warn().Msg("using in-memory storage, state is lost on exit")
		return memory.NewRepository(), func() {}, nil
	}

	pg := cfg.Stores.Postgres
	if pg.DSN == "" {
		return nil, nil, errors.New("stores.postgres.dsn is required (use --use-memory for in-memory storage)")
	}

	pool, err := pgstore.NewPool(ctx, pg.DSN, pgstore.PoolOptions{
		MaxConns:        pg.MaxConns,
		MinConns:        pg.MinConns,
		MaxConnLifetime: pg.MaxConnLifetime,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := migrations.RunPostgres(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrate postgres: %w", err)
	}
	return pgstore.NewRepository(pool), pool.Close, nil
}

// openChain builds one registry per variant. Without an RPC endpoint the
// registries only know pairs seen in PairCreated events.
func openChain(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (map[string]evm.PairRegistry, evm.TokenMetadataSource, func(), error) {
	registries := make(map[string]evm.PairRegistry, len(cfg.Deployment.Registries))

	if cfg.Chain.RPCURL == "" {
		logger.Warn().Msg("no rpc url configured, using offline registries and default token metadata")
		for _, variant := range cfg.Deployment.Variants() {
			registries[variant] = stub.NewPairRegistry()
		}
		return registries, stub.NewTokenMetadata(), func() {}, nil
	}

	client, err := ethclient.DialContext(ctx, cfg.Chain.RPCURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("dial rpc: %w", err)
	}

	for _, variant := range cfg.Deployment.Variants() {
		reg, err := evm.NewFactoryRegistry(client, cfg.Deployment.Registries[variant])
		if err != nil {
			client.Close()
			return nil, nil, nil, fmt.Errorf("registry %s: %w", variant, err)
		}
		registries[variant] = evm.NewCachedRegistry(reg)
	}

	metadata, err := evm.NewERC20Metadata(client, evm.ERC20MetadataOptions{Logger: logger})
	if err != nil {
		client.Close()
		return nil, nil, nil, err
	}
	return registries, metadata, client.Close, nil
}

func openDeduper(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (dedupe.Deduper, func(), error) {
	switch cfg.Dedupe.Backend {
	case config.DedupeMemory:
		d := dedupe.NewMemory(dedupe.MemoryOptions{Logger: logger, TTL: cfg.Dedupe.TTL})
		return d, d.Close, nil
	case config.DedupeRedis:
		r := cfg.Stores.Redis
		client, err := dedupe.Connect(ctx, r.Addr, r.Password, r.DB)
		if err != nil {
			return nil, nil, err
		}
		d, err := dedupe.NewRedis(client, dedupe.RedisOptions{Prefix: cfg.Dedupe.Prefix, TTL: cfg.Dedupe.TTL})
		if err != nil {
			client.Close()
			return nil, nil, err
		}
		closeFn := func() {
			if err := client.Close(); err != nil {
				logger.Warn().Err(err).Msg("close redis")
			}
		}
		return d, closeFn, nil
	default:
		return nil, func() {}, nil
	}
}

func openSource(cfg *config.Config, logger zerolog.Logger) (ingestion.Source, error) {
	if cfg.Ingest.File != "" {
		src, err := ingestion.NewFileSource(cfg.Ingest.File)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("file", cfg.Ingest.File).Int("events", src.Len()).Msg("replaying event file")
		return src, nil
	}

	k := cfg.Ingest.Kafka
	if !k.Enabled() {
		return nil, errors.New("no event source configured: set ingest.file, --input or ingest.kafka.brokers")
	}
	return ingestion.NewKafkaSource(ingestion.KafkaConfig{
		Brokers: k.Brokers,
		Topic:   k.Topic,
		GroupID: k.GroupID,
	}, ingestion.KafkaSourceOptions{Logger: logger, SkipUndecodable: k.SkipUndecodable})
}
