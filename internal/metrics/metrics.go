// Package metrics defines logchain's Prometheus instrumentation and an
// adapter feeding the storage wrapper's MetricsHook.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	pebblestore "github.com/rahulshendre/secure-logchain/internal/storage/pebble"
)

// Append outcome labels.
const (
	OutcomeOK             = "ok"
	OutcomeRejected       = "rejected"
	OutcomeUnreachable    = "unreachable"
	OutcomeCostEstimation = "cost_estimation"
	OutcomeAbsent         = "absent"
)

// Metrics holds all Prometheus collectors.
type Metrics struct {
	AppendsTotal       *prometheus.CounterVec
	ReadsTotal         *prometheus.CounterVec
	ProbeCallsTotal    prometheus.Counter
	LinesDroppedTotal  prometheus.Counter
	QuotaRefusalsTotal prometheus.Counter
	QueueDepth         prometheus.Gauge

	StorageReadSeconds   prometheus.Histogram
	StorageCommitSeconds prometheus.Histogram
}

// New creates and registers collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AppendsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logchain_appends_total",
				Help: "Ledger append attempts by outcome",
			},
			[]string{"outcome"},
		),
		ReadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logchain_reads_total",
				Help: "Ledger read-by-index calls by outcome",
			},
			[]string{"outcome"},
		),
		ProbeCallsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "logchain_probe_calls_total",
				Help: "Read calls issued during index discovery",
			},
		),
		LinesDroppedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "logchain_lines_dropped_total",
				Help: "Pending lines evicted from the full ingestion queue",
			},
		),
		QuotaRefusalsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "logchain_quota_refusals_total",
				Help: "Dispatch attempts refused by the daily quota",
			},
		),
		QueueDepth: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "logchain_queue_depth",
				Help: "Pending lines currently queued",
			},
		),
		StorageReadSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "logchain_storage_read_seconds",
				Help:    "Local store point-read latency",
				Buckets: prometheus.DefBuckets,
			},
		),
		StorageCommitSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "logchain_storage_commit_seconds",
				Help:    "Local store batch commit latency",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// NewNop returns metrics bound to a throwaway registry, for tests and
// callers that do not export.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

// StorageHook adapts Metrics to the storage wrapper's hook surface.
func (m *Metrics) StorageHook() pebblestore.MetricsHook {
	return storageHook{m}
}

type storageHook struct{ m *Metrics }

func (h storageHook) ObserveRead(elapsed time.Duration, _ int) {
	h.m.StorageReadSeconds.Observe(elapsed.Seconds())
}

func (h storageHook) ObserveBatchCommit(elapsed time.Duration, _ int) {
	h.m.StorageCommitSeconds.Observe(elapsed.Seconds())
}
