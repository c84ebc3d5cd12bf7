package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
)

var Module = fx.Module("metrics",
	fx.Provide(NewMetrics),
)

// Metrics groups the service collectors on a dedicated registry.
type Metrics struct {
	Registry *prometheus.Registry

	chainCalls       *prometheus.CounterVec
	chainLatency     *prometheus.HistogramVec
	cacheLookups     *prometheus.CounterVec
	statuses         *prometheus.CounterVec
	indexerRuns      *prometheus.CounterVec
	indexedEnvelopes prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		chainCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "redenvelope",
			Subsystem: "chain",
			Name:      "calls_total",
			Help:      "Contract and node calls by method and outcome.",
		}, []string{"method", "outcome"}),
		chainLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "redenvelope",
			Subsystem: "chain",
			Name:      "call_duration_seconds",
			Help:      "Latency of contract and node calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "redenvelope",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Redis cache lookups by kind and result.",
		}, []string{"kind", "result"}),
		statuses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "redenvelope",
			Name:      "classified_total",
			Help:      "Envelope statuses served.",
		}, []string{"status"}),
		indexerRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "redenvelope",
			Subsystem: "indexer",
			Name:      "runs_total",
			Help:      "Indexer sync runs by outcome.",
		}, []string{"outcome"}),
		indexedEnvelopes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "redenvelope",
			Subsystem: "indexer",
			Name:      "envelopes_synced",
			Help:      "Envelopes refreshed by the last sync run.",
		}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.chainCalls,
		m.chainLatency,
		m.cacheLookups,
		m.statuses,
		m.indexerRuns,
		m.indexedEnvelopes,
	)
	return m
}

// ObserveChainCall records one call. A nil receiver is a no-op so callers
// built without metrics keep working.
func (m *Metrics) ObserveChainCall(method string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.chainCalls.WithLabelValues(method, outcome(err)).Inc()
	m.chainLatency.WithLabelValues(method).Observe(time.Since(started).Seconds())
}

func (m *Metrics) CacheLookup(kind string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) Classified(status string) {
	if m == nil {
		return
	}
	m.statuses.WithLabelValues(status).Inc()
}

func (m *Metrics) IndexerRun(synced int, err error) {
	if m == nil {
		return
	}
	m.indexerRuns.WithLabelValues(outcome(err)).Inc()
	if err == nil {
		m.indexedEnvelopes.Set(float64(synced))
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
