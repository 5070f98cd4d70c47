// Package metrics provides Prometheus metrics for the note-scoring engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager manages all Prometheus metrics for the scoring engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	// Core Business Metrics - scoring throughput and quality
	notesScored        *prometheus.CounterVec
	scoringErrors      prometheus.Counter
	scoringLatency     prometheus.Histogram
	validationFailures prometheus.Counter

	// Scorer Cache Metrics - factory cache behavior
	scorerCacheSize   prometheus.Gauge
	scorerCacheHits   prometheus.Counter
	scorerCacheMisses prometheus.Counter

	// Community Metrics - scale indicators
	communityPasses    prometheus.Counter
	communityNoteCount prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "opennotes",
		subsystem:        "scoring",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.notesScored = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "notes_scored_total",
			Help:      "Total number of notes scored, by tier",
		},
		[]string{"tier"},
	)

	m.scoringErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoring_errors_total",
		Help:      "Total number of scorer invocation failures",
	})

	m.scoringLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoring_latency_milliseconds",
		Help:      "Histogram of per-note scoring latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.validationFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "validation_failures_total",
		Help:      "Total number of community passes with insufficient rating volume",
	})

	m.scorerCacheSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scorer_cache_size",
		Help:      "Current number of cached scorer instances",
	})

	m.scorerCacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scorer_cache_hits_total",
		Help:      "Total number of scorer cache hits",
	})

	m.scorerCacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scorer_cache_misses_total",
		Help:      "Total number of scorer cache misses (constructions)",
	})

	m.communityPasses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "community_passes_total",
		Help:      "Total number of community-wide scoring passes",
	})

	m.communityNoteCount = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "community_note_count",
		Help:      "Distribution of note counts across community passes",
		Buckets:   []float64{10, 50, 200, 500, 2000, 10000, 50000, 200000},
	})
}

// Handler returns an HTTP handler serving the custom registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}

// RecordNoteScored increments the scored-notes counter for a tier.
func RecordNoteScored(tier string) {
	globalManager.notesScored.WithLabelValues(tier).Inc()
}

// RecordScoringError increments the scoring error counter.
func RecordScoringError() {
	globalManager.scoringErrors.Inc()
}

// RecordScoringLatency records per-note scoring latency in milliseconds.
func RecordScoringLatency(latencyMs float64) {
	globalManager.scoringLatency.Observe(latencyMs)
}

// RecordValidationFailure increments the sufficiency-failure counter.
func RecordValidationFailure() {
	globalManager.validationFailures.Inc()
}

// UpdateScorerCacheSize sets the scorer cache size gauge.
func UpdateScorerCacheSize(size int) {
	globalManager.scorerCacheSize.Set(float64(size))
}

// RecordScorerCacheHit increments the cache hit counter.
func RecordScorerCacheHit() {
	globalManager.scorerCacheHits.Inc()
}

// RecordScorerCacheMiss increments the cache miss counter.
func RecordScorerCacheMiss() {
	globalManager.scorerCacheMisses.Inc()
}

// RecordCommunityPass records one community-wide scoring pass and its
// note count.
func RecordCommunityPass(noteCount int) {
	globalManager.communityPasses.Inc()
	globalManager.communityNoteCount.Observe(float64(noteCount))
}
