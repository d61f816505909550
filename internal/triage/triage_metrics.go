package triage

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Adityad84/neural-track/internal/oracle"
)

// Metrics holds Prometheus metrics for the triage subsystem.
type Metrics struct {
	IngestsTotal       *prometheus.CounterVec
	IngestDuration     prometheus.Histogram
	OracleOutcomes     *prometheus.CounterVec
	OracleDuration     prometheus.Histogram
	DispatchesTotal    *prometheus.CounterVec
	DispatchDuration   prometheus.Histogram
	DispatchQueueDepth prometheus.Gauge
	DispatchesDropped  prometheus.Counter
}

// NewMetrics registers and returns triage metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		IngestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "neuraltrack_ingests_total",
			Help: "Total ingested defect events by normalized severity.",
		}, []string{"severity"}),
		IngestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "neuraltrack_ingest_duration_seconds",
			Help:    "Duration of the synchronous ingest path (classify + persist).",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 0.1s .. ~51s
		}),
		OracleOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "neuraltrack_oracle_calls_total",
			Help: "Total oracle classification attempts by outcome.",
		}, []string{"outcome"}),
		OracleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "neuraltrack_oracle_call_duration_seconds",
			Help:    "Duration of individual oracle calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 9), // 0.25s .. ~64s
		}),
		DispatchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "neuraltrack_dispatches_total",
			Help: "Total alert dispatch attempts by outcome.",
		}, []string{"outcome"}),
		DispatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "neuraltrack_dispatch_duration_seconds",
			Help:    "Duration of alert dispatch attempts in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 0.1s .. ~51s
		}),
		DispatchQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "neuraltrack_dispatch_queue_depth",
			Help: "Current number of queued alert dispatch jobs.",
		}),
		DispatchesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "neuraltrack_dispatches_dropped_total",
			Help: "Dispatch jobs dropped because the queue was full.",
		}),
	}

	reg.MustRegister(
		m.IngestsTotal,
		m.IngestDuration,
		m.OracleOutcomes,
		m.OracleDuration,
		m.DispatchesTotal,
		m.DispatchDuration,
		m.DispatchQueueDepth,
		m.DispatchesDropped,
	)
	return m
}

// OracleObserver adapts the metrics to the oracle client's observer hook.
func (m *Metrics) OracleObserver() oracle.ObserverFunc {
	return func(outcome oracle.Outcome, dur time.Duration) {
		m.OracleOutcomes.WithLabelValues(string(outcome)).Inc()
		m.OracleDuration.Observe(dur.Seconds())
	}
}
