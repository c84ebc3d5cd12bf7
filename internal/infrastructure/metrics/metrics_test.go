package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestChainCallCounters(t *testing.T) {
	m := NewMetrics()

	m.ObserveChainCall("getEnvelopeInfo", time.Now(), nil)
	m.ObserveChainCall("getEnvelopeInfo", time.Now(), nil)
	m.ObserveChainCall("getEnvelopeInfo", time.Now(), errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.chainCalls.WithLabelValues("getEnvelopeInfo", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.chainCalls.WithLabelValues("getEnvelopeInfo", "error")))
}

func TestIndexerGaugeKeepsLastSuccess(t *testing.T) {
	m := NewMetrics()

	m.IndexerRun(12, nil)
	m.IndexerRun(0, errors.New("node down"))

	assert.Equal(t, 12.0, testutil.ToFloat64(m.indexedEnvelopes))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.indexerRuns.WithLabelValues("error")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveChainCall("x", time.Now(), nil)
		m.CacheLookup("envelope", true)
		m.Classified("expired")
		m.IndexerRun(1, nil)
	})
}
