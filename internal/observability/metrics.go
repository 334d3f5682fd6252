// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Analytics metrics
	AnalyticsRequests *prometheus.CounterVec
	AnalyticsDuration *prometheus.HistogramVec
	SnapshotsLoaded   prometheus.Counter
	HoldersAnalysed   *prometheus.CounterVec

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec

	// Cache metrics
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Ingestion metrics
	SnapshotsImported prometheus.Counter

	// Health metrics
	LastSuccessfulAnalysis prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered with reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "holder_flow"
	}
	f := promauto.With(reg)

	return &Metrics{
		AnalyticsRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analytics",
			Name:      "requests_total",
			Help:      "Total number of analytics computations by feature and status",
		}, []string{"feature", "status"}),
		AnalyticsDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analytics",
			Name:      "duration_seconds",
			Help:      "Analytics computation duration in seconds, including the snapshot fetch",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"feature"}),
		SnapshotsLoaded: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analytics",
			Name:      "snapshots_loaded_total",
			Help:      "Total number of position snapshots read for analysis",
		}),
		HoldersAnalysed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analytics",
			Name:      "holders_analysed_total",
			Help:      "Total number of holder series analysed by feature",
		}, []string{"feature"}),

		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status code",
		}, []string{"route", "code"}),

		CacheHits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total number of result cache hits by feature",
		}, []string{"feature"}),
		CacheMisses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total number of result cache misses by feature",
		}, []string{"feature"}),

		DBQueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		SnapshotsImported: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "snapshots_imported_total",
			Help:      "Total number of position snapshots imported",
		}),

		LastSuccessfulAnalysis: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_analysis_timestamp",
			Help:      "Unix timestamp of last successful analytics computation",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is registered with the default Prometheus registry.
var DefaultMetrics = NewMetrics("", prometheus.DefaultRegisterer)

// RecordAnalytics records one analytics computation.
func (m *Metrics) RecordAnalytics(feature string, seconds float64, holders int, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.AnalyticsRequests.WithLabelValues(feature, status).Inc()
	m.AnalyticsDuration.WithLabelValues(feature).Observe(seconds)
	if err == nil {
		m.HoldersAnalysed.WithLabelValues(feature).Add(float64(holders))
	}
}

// RecordCache records a cache lookup.
func (m *Metrics) RecordCache(feature string, hit bool) {
	if hit {
		m.CacheHits.WithLabelValues(feature).Inc()
		return
	}
	m.CacheMisses.WithLabelValues(feature).Inc()
}

// RecordDBQuery records database query metrics.
func (m *Metrics) RecordDBQuery(database, operation string, seconds float64, err error) {
	m.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		m.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordHTTP records a served HTTP request.
func (m *Metrics) RecordHTTP(route string, code int) {
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
