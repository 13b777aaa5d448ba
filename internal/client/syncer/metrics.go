package syncer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the engine's Prometheus collectors.
type Metrics struct {
	Passes      *prometheus.CounterVec
	Applied     *prometheus.CounterVec
	Pulled      *prometheus.CounterVec
	QueueDepth  prometheus.Gauge
	LastSuccess prometheus.Gauge
}

// NewMetrics registers the collectors with reg. A nil reg creates them
// unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Passes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "giftkeeper",
			Subsystem: "sync",
			Name:      "passes_total",
			Help:      "Sync passes by kind (drain, full) and result (ok, failed, skipped).",
		}, []string{"kind", "result"}),
		Applied: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "giftkeeper",
			Subsystem: "sync",
			Name:      "queue_entries_total",
			Help:      "Queue entries processed by result (applied, failed, dropped).",
		}, []string{"result"}),
		Pulled: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "giftkeeper",
			Subsystem: "sync",
			Name:      "pulled_records_total",
			Help:      "Remote records merged locally by entity type and outcome.",
		}, []string{"entity_type", "outcome"}),
		QueueDepth: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "giftkeeper",
			Subsystem: "sync",
			Name:      "queue_depth",
			Help:      "Pending queue entries after the last pass.",
		}),
		LastSuccess: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "giftkeeper",
			Subsystem: "sync",
			Name:      "last_success_timestamp_seconds",
			Help:      "Start time of the last successful full reconciliation.",
		}),
	}
}
