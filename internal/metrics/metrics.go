// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/joseph-ayodele/receipts-inbox/internal/entity"
)

var (
	// FieldSource counts which source won each field.
	FieldSource = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "receipts_field_source_total",
			Help: "Reconciled fields by winning source",
		},
		[]string{"field", "source"},
	)

	// ModelCalls counts completion outcomes: ok, error, timeout, disabled.
	ModelCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "receipts_model_calls_total",
			Help: "Model extraction attempts by outcome",
		},
		[]string{"outcome"},
	)

	// SinkSaves counts persistence outcomes: saved, duplicate, error.
	SinkSaves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "receipts_sink_saves_total",
			Help: "Receipt sink writes by outcome",
		},
		[]string{"sink", "outcome"},
	)

	// MessagesProcessed counts pipeline runs: success, failed.
	MessagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "receipts_messages_processed_total",
			Help: "Messages run through the extraction pipeline",
		},
		[]string{"status"},
	)

	PipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "receipts_pipeline_duration_seconds",
			Help:    "End-to-end pipeline latency per message",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 14), // 5ms to ~40s
		},
	)
)

// RecordProvenance adds one observation per field.
func RecordProvenance(p entity.Provenance) {
	for field, src := range p {
		FieldSource.WithLabelValues(field, string(src)).Inc()
	}
}

func RecordModelCall(outcome string) {
	ModelCalls.WithLabelValues(outcome).Inc()
}

func RecordSinkSave(sink, outcome string) {
	SinkSaves.WithLabelValues(sink, outcome).Inc()
}

// RecordMessage observes one pipeline run.
func RecordMessage(status string, d time.Duration) {
	MessagesProcessed.WithLabelValues(status).Inc()
	PipelineDuration.Observe(d.Seconds())
}
