package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordResponse(200)
	m.RecordRateLimitRetry()
	m.RecordSync("cached")
	m.RecordProjectFetch(true)
	m.RecordCollectionWrite("starred", "add")

	samples, err := m.Snapshot()
	assert.NoError(t, err)
	assert.Nil(t, samples)
}

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.RecordResponse(200)
	m.RecordResponse(200)
	m.RecordResponse(429)
	m.RecordRateLimitRetry()
	m.RecordProjectFetch(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("429")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rateLimitRetries))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.projectsFetched.WithLabelValues("error")))
}

func TestMetrics_Snapshot(t *testing.T) {
	m := New()
	m.RecordSync("refreshed")
	m.RecordRateLimitRetry()

	samples, err := m.Snapshot()
	require.NoError(t, err)
	require.Len(t, samples, 2)

	assert.Equal(t, "figfiles_rate_limit_retries_total", samples[0].Name)
	assert.Equal(t, 1.0, samples[0].Value)
	assert.Equal(t, `figfiles_syncs_total{source="refreshed"}`, samples[1].Name)
	assert.Equal(t, 1.0, samples[1].Value)
}
