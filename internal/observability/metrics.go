// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Price lookup results. A zero price is a valid outcome, not an error.
const (
	PricePriced  = "priced"
	PriceNoPrice = "no_price"
	PriceError   = "error"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Indexing metrics
	EventsProcessed       *prometheus.CounterVec
	EventsSkipped         *prometheus.CounterVec
	EventProcessingErrors *prometheus.CounterVec
	HighestBlockSeen      prometheus.Gauge

	// Rollup metrics
	BucketsCreated *prometheus.CounterVec

	// Pricing metrics
	RegistryLookups *prometheus.CounterVec
	PriceLookups    *prometheus.CounterVec
	EthPriceUSD     prometheus.Gauge

	// Latency metrics
	EventProcessingLatency *prometheus.HistogramVec
	RPCCallLatency         *prometheus.HistogramVec

	// Sink metrics
	SinkWriteErrors prometheus.Counter

	// Health metrics
	LastSuccessfulEvent prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "exchange_indexer"
	}

	return &Metrics{
		EventsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "events_processed_total",
			Help:      "Total number of events committed by kind",
		}, []string{"kind"}),
		EventsSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "events_skipped_total",
			Help:      "Total number of replayed events skipped by reason",
		}, []string{"reason"}),
		EventProcessingErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "event_processing_errors_total",
			Help:      "Total number of event processing errors by kind and type",
		}, []string{"kind", "error_type"}),
		HighestBlockSeen: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "highest_block_seen",
			Help:      "Highest block number committed",
		}),

		BucketsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rollup",
			Name:      "buckets_created_total",
			Help:      "Total number of rollup buckets created by dimension",
		}, []string{"dimension"}),

		RegistryLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "registry_lookups_total",
			Help:      "Total number of pair registry lookups by variant and result",
		}, []string{"variant", "result"}),
		PriceLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "price_lookups_total",
			Help:      "Total number of token price derivations by result",
		}, []string{"result"}),
		EthPriceUSD: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "eth_price_usd",
			Help:      "Last reference ETH price in USD",
		}),

		EventProcessingLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "event_processing_latency_seconds",
			Help:      "Event processing latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "evm",
			Name:      "rpc_call_latency_seconds",
			Help:      "Contract call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),

		SinkWriteErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sink",
			Name:      "write_errors_total",
			Help:      "Total number of failed bucket snapshot writes",
		}),

		LastSuccessfulEvent: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_event_timestamp",
			Help:      "Unix timestamp of the last committed event",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// HealthHandler answers 200 OK for liveness probes.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordEventProcessed records a committed event.
func RecordEventProcessed(kind string, block uint64, elapsed time.Duration) {
	DefaultMetrics.EventsProcessed.WithLabelValues(kind).Inc()
	DefaultMetrics.EventProcessingLatency.WithLabelValues(kind).Observe(elapsed.Seconds())
	DefaultMetrics.HighestBlockSeen.Set(float64(block))
	DefaultMetrics.LastSuccessfulEvent.SetToCurrentTime()
}

// RecordEventSkipped records an event dropped by the replay guard.
func RecordEventSkipped(reason string) {
	DefaultMetrics.EventsSkipped.WithLabelValues(reason).Inc()
}

// RecordEventError records an event processing error.
func RecordEventError(kind, errorType string) {
	DefaultMetrics.EventProcessingErrors.WithLabelValues(kind, errorType).Inc()
}

// RecordBucketCreated records the creation of a rollup bucket.
func RecordBucketCreated(dimension string) {
	DefaultMetrics.BucketsCreated.WithLabelValues(dimension).Inc()
}

// RecordRegistryLookup records a pair registry lookup.
func RecordRegistryLookup(variant, result string) {
	DefaultMetrics.RegistryLookups.WithLabelValues(variant, result).Inc()
}

// RecordPriceLookup records the outcome of a token price derivation.
func RecordPriceLookup(result string) {
	DefaultMetrics.PriceLookups.WithLabelValues(result).Inc()
}

// UpdateEthPrice sets the reference ETH price gauge.
func UpdateEthPrice(price float64) {
	DefaultMetrics.EthPriceUSD.Set(price)
}

// RecordRPCLatency records contract call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordSinkError records a failed bucket snapshot write.
func RecordSinkError() {
	DefaultMetrics.SinkWriteErrors.Inc()
}
