// Package metrics exposes Prometheus instrumentation for the season
// processing worker.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	// APICallsTotal tracks FTC Events API calls by endpoint and status
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ftcinsight_api_calls_total",
			Help: "Total number of FTC Events API calls",
		},
		[]string{"endpoint", "status"},
	)

	// APICallDuration tracks API call latency
	APICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ftcinsight_api_call_duration_seconds",
			Help:    "FTC Events API call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// CacheOpsTotal tracks response cache hits and misses
	CacheOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ftcinsight_cache_ops_total",
			Help: "Total response cache operations by result",
		},
		[]string{"result"},
	)

	// EventsProcessedTotal tracks processed events by final status
	EventsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ftcinsight_events_processed_total",
			Help: "Total events processed by status",
		},
		[]string{"status"},
	)

	// MatchesIngestedTotal tracks matches ingested per season
	MatchesIngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ftcinsight_matches_ingested_total",
			Help: "Total matches ingested",
		},
		[]string{"season"},
	)

	// SeasonProcessingDuration tracks full season processing runs
	SeasonProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ftcinsight_season_processing_duration_seconds",
			Help:    "Season processing duration in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		},
		[]string{"season"},
	)

	// EpaComputeDuration tracks the rating computation phase per season
	EpaComputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ftcinsight_epa_compute_duration_seconds",
			Help:    "EPA rating computation duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
	)

	// DBWritesTotal tracks database upserts by table
	DBWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ftcinsight_db_writes_total",
			Help: "Total database rows written by table",
		},
		[]string{"table"},
	)

	// ErrorsTotal tracks errors by component
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ftcinsight_errors_total",
			Help: "Total errors by component",
		},
		[]string{"component"},
	)

	// LastSyncTimestamp records when the last successful sync finished
	LastSyncTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ftcinsight_last_sync_timestamp_seconds",
			Help: "Unix timestamp of the last successful sync",
		},
	)
)

// RecordAPICall records an API call with its duration
func RecordAPICall(endpoint, status string, duration float64) {
	APICallsTotal.WithLabelValues(endpoint, status).Inc()
	APICallDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordCacheHit records a response cache hit
func RecordCacheHit() {
	CacheOpsTotal.WithLabelValues("hit").Inc()
}

// RecordCacheMiss records a response cache miss
func RecordCacheMiss() {
	CacheOpsTotal.WithLabelValues("miss").Inc()
}

// RecordEventProcessed records one processed event by final status
func RecordEventProcessed(status string) {
	EventsProcessedTotal.WithLabelValues(status).Inc()
}

// RecordMatchesIngested records a batch of ingested matches for a season
func RecordMatchesIngested(season, count int) {
	MatchesIngestedTotal.WithLabelValues(fmt.Sprintf("%d", season)).Add(float64(count))
}

// RecordSeasonProcessed records a completed season processing run
func RecordSeasonProcessed(season int, duration time.Duration) {
	SeasonProcessingDuration.WithLabelValues(fmt.Sprintf("%d", season)).Observe(duration.Seconds())
	LastSyncTimestamp.SetToCurrentTime()
}

// RecordDBWrites records rows written to a table
func RecordDBWrites(table string, count int) {
	DBWritesTotal.WithLabelValues(table).Add(float64(count))
}

// RecordError records an error in a component
func RecordError(component string) {
	ErrorsTotal.WithLabelValues(component).Inc()
}

// StartMetricsServer starts the Prometheus metrics HTTP server
func StartMetricsServer(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	addr := fmt.Sprintf(":%d", port)
	log.Info().Str("addr", addr).Msg("Starting metrics server")

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error().Err(err).Msg("Metrics server failed")
		}
	}()
}
