package metrics

import (
	"database/sql"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const (
	metricPrefix = "aquasmart_"

	resultSuccess  = "success"
	resultError    = "error"
	resultEmpty    = "empty"
	resultRejected = "rejected"
)

var (
	registerOnce sync.Once

	backendRequests *prometheus.CounterVec
	backendLatency  *prometheus.HistogramVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec

	aggregationBuckets *prometheus.HistogramVec
	droppedReadings    prometheus.Counter

	requestsSubmitted *prometheus.CounterVec
)

// Init registers metrics. db is optional and enables audit gauges.
func Init(db *sql.DB, logger zerolog.Logger) {
	registerOnce.Do(func() {
		backendRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "backend_requests_total",
				Help: "Total backend requests by operation and result",
			},
			[]string{"operation", "result"},
		)
		backendLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "backend_latency_seconds",
				Help:    "Backend request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "result"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total exports by report, format and result",
			},
			[]string{"report", "format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"report", "format"},
		)

		aggregationBuckets = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "aggregation_buckets",
				Help:    "Buckets produced per consumption aggregation before downsampling",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
			},
			[]string{"granularity"},
		)
		droppedReadings = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "dropped_readings_total",
				Help: "Readings dropped because their timestamp could not be parsed",
			},
		)

		requestsSubmitted = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "requests_submitted_total",
				Help: "Flow-change requests and error reports by kind and result",
			},
			[]string{"kind", "result"},
		)

		prometheus.MustRegister(
			backendRequests,
			backendLatency,
			exportTotal,
			exportLatency,
			aggregationBuckets,
			droppedReadings,
			requestsSubmitted,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveBackendRequest records a backend call.
func ObserveBackendRequest(operation, result string, duration time.Duration) {
	if operation == "" {
		operation = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if backendRequests != nil {
		backendRequests.WithLabelValues(operation, result).Inc()
	}
	if backendLatency != nil {
		backendLatency.WithLabelValues(operation, result).Observe(duration.Seconds())
	}
}

// ObserveExport records export latency and result.
func ObserveExport(report, format, result string, duration time.Duration) {
	if report == "" {
		report = "unknown"
	}
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(report, format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(report, format).Observe(duration.Seconds())
	}
}

// ObserveAggregation records the bucket count of an aggregation.
func ObserveAggregation(granularity string, buckets, dropped int) {
	if granularity == "" {
		granularity = "unknown"
	}
	if aggregationBuckets != nil {
		aggregationBuckets.WithLabelValues(granularity).Observe(float64(buckets))
	}
	if dropped > 0 && droppedReadings != nil {
		droppedReadings.Add(float64(dropped))
	}
}

// IncRequestSubmitted counts submitted flow-change requests and error reports.
func IncRequestSubmitted(kind, result string) {
	if kind == "" {
		kind = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if requestsSubmitted != nil {
		requestsSubmitted.WithLabelValues(kind, result).Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess  = resultSuccess
	ResultError    = resultError
	ResultEmpty    = resultEmpty
	ResultRejected = resultRejected
)
