// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "token_wizard"

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Submission metrics
	SubmissionsTotal   *prometheus.CounterVec
	SubmissionDuration prometheus.Histogram

	// Storage metrics
	StorageUploadsTotal   *prometheus.CounterVec
	StorageUploadDuration *prometheus.HistogramVec

	// Authority metrics
	RevocationsTotal *prometheus.CounterVec

	// Latency metrics
	RPCCallLatency *prometheus.HistogramVec
}

// NewMetrics creates a Metrics instance registered with reg.
// A nil reg falls back to the default registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		SubmissionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "issuance",
			Name:      "submissions_total",
			Help:      "Total number of token submissions by outcome",
		}, []string{"outcome"}),
		SubmissionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "issuance",
			Name:      "submission_duration_seconds",
			Help:      "End-to-end submission duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		}),

		StorageUploadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "uploads_total",
			Help:      "Total number of upload attempts by backend, payload kind and outcome",
		}, []string{"backend", "kind", "outcome"}),
		StorageUploadDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "upload_duration_seconds",
			Help:      "Upload latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend"}),

		RevocationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "authority",
			Name:      "revocations_total",
			Help:      "Total number of authority revocations by authority and outcome",
		}, []string{"authority", "outcome"}),

		RPCCallLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// RecordSubmission records the outcome and duration of a submission.
func (m *Metrics) RecordSubmission(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.SubmissionsTotal.WithLabelValues(outcome).Inc()
	m.SubmissionDuration.Observe(seconds)
}

// RecordUpload records one upload attempt against a storage backend.
func (m *Metrics) RecordUpload(backend, kind string, seconds float64, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.StorageUploadsTotal.WithLabelValues(backend, kind, outcome).Inc()
	m.StorageUploadDuration.WithLabelValues(backend).Observe(seconds)
}

// RecordRevocation records the outcome of one authority revocation.
func (m *Metrics) RecordRevocation(authority, outcome string) {
	if m == nil {
		return
	}
	m.RevocationsTotal.WithLabelValues(authority, outcome).Inc()
}

// RecordRPCLatency records RPC call latency.
func (m *Metrics) RecordRPCLatency(method string, seconds float64) {
	if m == nil {
		return
	}
	m.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}
