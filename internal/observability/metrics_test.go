package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordEventProcessed(t *testing.T) {
	before := testutil.ToFloat64(DefaultMetrics.EventsProcessed.WithLabelValues("SWAP"))

	RecordEventProcessed("SWAP", 12345, 3*time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(DefaultMetrics.EventsProcessed.WithLabelValues("SWAP")))
	assert.Equal(t, float64(12345), testutil.ToFloat64(DefaultMetrics.HighestBlockSeen))
	assert.Greater(t, testutil.ToFloat64(DefaultMetrics.LastSuccessfulEvent), float64(0))
}

func TestRecordPriceLookup(t *testing.T) {
	priced := testutil.ToFloat64(DefaultMetrics.PriceLookups.WithLabelValues(PricePriced))
	noPrice := testutil.ToFloat64(DefaultMetrics.PriceLookups.WithLabelValues(PriceNoPrice))

	RecordPriceLookup(PricePriced)
	RecordPriceLookup(PriceNoPrice)
	RecordPriceLookup(PriceNoPrice)

	assert.Equal(t, priced+1, testutil.ToFloat64(DefaultMetrics.PriceLookups.WithLabelValues(PricePriced)))
	assert.Equal(t, noPrice+2, testutil.ToFloat64(DefaultMetrics.PriceLookups.WithLabelValues(PriceNoPrice)))
}

func TestRecordBucketCreated(t *testing.T) {
	before := testutil.ToFloat64(DefaultMetrics.BucketsCreated.WithLabelValues("pair_hour"))
	RecordBucketCreated("pair_hour")
	assert.Equal(t, before+1, testutil.ToFloat64(DefaultMetrics.BucketsCreated.WithLabelValues("pair_hour")))
}

func TestHandlers(t *testing.T) {
	RecordEventError("SYNC", "store")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "exchange_indexer_indexer_event_processing_errors_total")

	rec = httptest.NewRecorder()
	HealthHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
