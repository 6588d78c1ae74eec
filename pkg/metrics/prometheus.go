// Package metrics provides Prometheus metrics for the lipik pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Cycle Metrics - One reporting cycle end to end
	cycleDuration   prometheus.Histogram
	cyclesCompleted prometheus.Counter
	cyclesSkipped   prometheus.Counter
	cycleErrors     prometheus.Counter

	// Fetch Metrics - Upstream document retrieval
	documentsFetched *prometheus.CounterVec
	fetchErrors      *prometheus.CounterVec

	// Resolution Metrics - Name resolution quality
	namesResolvedExact  prometheus.Counter
	namesResolvedFuzzy  prometheus.Counter
	nameResolutionFails prometheus.Counter

	// Validation Metrics - Upstream format drift
	schemaMismatches     *prometheus.CounterVec
	deltaInconsistencies prometheus.Counter

	// Snapshot Metrics - Published output
	primaryAuthoritative prometheus.Gauge
	snapshotLastUnix     prometheus.Gauge
	regionsComposed      prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "lipik",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	m.cycleDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cycle_duration_seconds",
		Help:      "Histogram of end-to-end reporting cycle duration in seconds",
		Buckets:   m.histogramBuckets,
	})

	m.cyclesCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cycles_completed_total",
		Help:      "Total number of reporting cycles that published a snapshot",
	})

	m.cyclesSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cycles_skipped_total",
		Help:      "Total number of cycles skipped because the day was already fetched",
	})

	m.cycleErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cycle_errors_total",
		Help:      "Total number of cycles that failed before publishing",
	})

	m.documentsFetched = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "documents_fetched_total",
			Help:      "Total number of upstream documents fetched, by document key",
		},
		[]string{"document"},
	)

	m.fetchErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "fetch_errors_total",
			Help:      "Total number of upstream fetch failures, by document key",
		},
		[]string{"document"},
	)

	m.namesResolvedExact = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "names_resolved_exact_total",
		Help:      "Total number of region names resolved by exact match",
	})

	m.namesResolvedFuzzy = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "names_resolved_fuzzy_total",
		Help:      "Total number of region names that needed fuzzy matching (upstream typo indicator)",
	})

	m.nameResolutionFails = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "name_resolution_failures_total",
		Help:      "Total number of region names that resolved to nothing",
	})

	m.schemaMismatches = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "schema_mismatches_total",
			Help:      "Total number of table validation failures, by layout name",
		},
		[]string{"layout"},
	)

	m.deltaInconsistencies = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "delta_inconsistencies_total",
		Help:      "Total number of reported change figures that disagreed with derived ones",
	})

	m.primaryAuthoritative = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "primary_source_authoritative",
		Help:      "Whether the primary source won the last freshness arbitration (1) or the secondary did (0)",
	})

	m.snapshotLastUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_last_published_unix",
		Help:      "Unix timestamp of the last published snapshot",
	})

	m.regionsComposed = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "regions_composed",
		Help:      "Number of regions in the last composed snapshot",
	})
}

// RecordCycleDuration records the wall time of one reporting cycle.
func RecordCycleDuration(seconds float64) {
	globalManager.cycleDuration.Observe(seconds)
}

// RecordCycleCompleted increments the completed cycles counter.
func RecordCycleCompleted() {
	globalManager.cyclesCompleted.Inc()
}

// RecordCycleSkipped increments the skipped cycles counter.
func RecordCycleSkipped() {
	globalManager.cyclesSkipped.Inc()
}

// RecordCycleError increments the failed cycles counter.
func RecordCycleError() {
	globalManager.cycleErrors.Inc()
}

// RecordDocumentFetched increments the fetch counter for one document.
func RecordDocumentFetched(document string) {
	globalManager.documentsFetched.WithLabelValues(document).Inc()
}

// RecordFetchError increments the fetch error counter for one document.
func RecordFetchError(document string) {
	globalManager.fetchErrors.WithLabelValues(document).Inc()
}

// RecordNameResolvedExact increments the exact resolution counter.
func RecordNameResolvedExact() {
	globalManager.namesResolvedExact.Inc()
}

// RecordNameResolvedFuzzy increments the fuzzy resolution counter.
func RecordNameResolvedFuzzy() {
	globalManager.namesResolvedFuzzy.Inc()
}

// RecordNameResolutionFailure increments the resolution failure counter.
func RecordNameResolutionFailure() {
	globalManager.nameResolutionFails.Inc()
}

// RecordSchemaMismatch increments the validation failure counter for a layout.
func RecordSchemaMismatch(layout string) {
	globalManager.schemaMismatches.WithLabelValues(layout).Inc()
}

// RecordDeltaInconsistency increments the delta disagreement counter.
func RecordDeltaInconsistency() {
	globalManager.deltaInconsistencies.Inc()
}

// UpdatePrimaryAuthoritative records which source won the arbitration.
func UpdatePrimaryAuthoritative(primary bool) {
	if primary {
		globalManager.primaryAuthoritative.Set(1)
	} else {
		globalManager.primaryAuthoritative.Set(0)
	}
}

// UpdateSnapshotLastPublished sets the last publish timestamp.
func UpdateSnapshotLastPublished(unix int64) {
	globalManager.snapshotLastUnix.Set(float64(unix))
}

// UpdateRegionsComposed sets the region count of the last snapshot.
func UpdateRegionsComposed(count int) {
	globalManager.regionsComposed.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
