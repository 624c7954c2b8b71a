// Package metrics provides Prometheus metrics for the podium analysis service.
package metrics

import (
	"fmt"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline stage names used as label values.
const (
	StageLoad      = "load"
	StageAggregate = "aggregate"
	StageChart     = "chart"
	StageModel     = "model"
	StageInsight   = "insight"
)

var knownStages = map[string]struct{}{
	StageLoad:      {},
	StageAggregate: {},
	StageChart:     {},
	StageModel:     {},
	StageInsight:   {},
}

// Manager manages all Prometheus metrics for the podium service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer
	// gatherer is set on managers installed by Configure.
	gatherer *prometheus.Registry

	// Dataset metrics
	recordsLoaded prometheus.Gauge
	rowsRead      prometheus.Gauge
	rowsDropped   prometheus.Gauge
	countries     prometheus.Gauge

	// Store metrics
	storeQueryLatency prometheus.Histogram

	// Pipeline metrics
	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec
	modelAccuracy prometheus.Gauge
	chartBytes    prometheus.Gauge
	pipelineRuns  prometheus.Counter

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec
	errorLatency        *prometheus.HistogramVec

	// Process metrics, sampled while serving
	processMemory     prometheus.Gauge
	processGoroutines prometheus.Gauge
	gcPause           prometheus.Histogram
}

// Global metrics manager instance.
var global atomic.Pointer[Manager] //nolint:gochecknoglobals // intentional global for singleton metrics manager

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	Configure()
}

// Configure replaces the global manager with one built from opts on a fresh
// custom registry, which keeps the default Go collectors out. Metrics
// recorded before the call are discarded; call it before serving.
func Configure(opts ...Option) {
	registry := prometheus.NewRegistry()
	m := NewManager(append(opts, WithPrometheusRegistry(registry))...)
	m.gatherer = registry
	global.Store(m)
}

func manager() *Manager { return global.Load() }

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "podium",
		subsystem:        "analysis",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.recordsLoaded = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "records_loaded",
		Help:        "Medal records kept after cleaning",
		ConstLabels: labels,
	})

	m.rowsRead = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "rows_read",
		Help:        "Rows read from the source CSV before cleaning",
		ConstLabels: labels,
	})

	m.rowsDropped = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "rows_dropped",
		Help:        "Rows dropped because of missing values",
		ConstLabels: labels,
	})

	m.countries = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "countries_ranked",
		Help:        "Countries present in the medal standings",
		ConstLabels: labels,
	})

	m.storeQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "store",
		Name:        "query_latency_milliseconds",
		Help:        "Standings store query latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.stageDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "stage_duration_milliseconds",
			Help:        "Pipeline stage duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"stage"},
	)

	m.stageErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "stage_errors_total",
			Help:        "Pipeline stage failures",
			ConstLabels: labels,
		},
		[]string{"stage"},
	)

	m.modelAccuracy = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "model_accuracy_ratio",
		Help:        "Accuracy of the last fitted classifier on its test split",
		ConstLabels: labels,
	})

	m.chartBytes = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "chart_bytes",
		Help:        "Size of the last rendered chart image",
		ConstLabels: labels,
	})

	m.pipelineRuns = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "pipeline_runs_total",
		Help:        "Completed analysis pipeline runs",
		ConstLabels: labels,
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests by endpoint and method",
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_request_duration_milliseconds",
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "errors_by_type_total",
			Help:        "Total number of errors by type",
			ConstLabels: labels,
		},
		[]string{"error_type", "severity"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "errors_by_endpoint_total",
			Help:        "Total number of errors by endpoint",
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.errorLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "error_latency_milliseconds",
			Help:        "Latency of operations that resulted in errors",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"component", "error_type"},
	)

	m.processMemory = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "process",
		Name:        "heap_alloc_bytes",
		Help:        "Heap bytes allocated by the serving process",
		ConstLabels: labels,
	})

	m.processGoroutines = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "process",
		Name:        "goroutines",
		Help:        "Number of goroutines",
		ConstLabels: labels,
	})

	m.gcPause = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "process",
		Name:        "gc_pause_milliseconds",
		Help:        "Average GC pause in milliseconds, sampled periodically",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100},
		ConstLabels: labels,
	})
}

// ObserveStage records the duration of a pipeline stage.
func (m *Manager) ObserveStage(stage string, durationMs float64) error {
	if _, ok := knownStages[stage]; !ok {
		return fmt.Errorf("observe %q: %w", stage, ErrUnknownStage)
	}
	if m.enabled {
		m.stageDuration.WithLabelValues(stage).Observe(durationMs)
	}
	return nil
}

// StageFailed increments the failure counter of a stage.
func (m *Manager) StageFailed(stage string) error {
	if _, ok := knownStages[stage]; !ok {
		return fmt.Errorf("fail %q: %w", stage, ErrUnknownStage)
	}
	if m.enabled {
		m.stageErrors.WithLabelValues(stage).Inc()
	}
	return nil
}

// Dataset sets the load statistics gauges.
func (m *Manager) Dataset(read, kept, dropped int) {
	if !m.enabled {
		return
	}
	m.rowsRead.Set(float64(read))
	m.recordsLoaded.Set(float64(kept))
	m.rowsDropped.Set(float64(dropped))
}

// RecordStageDuration records a pipeline stage duration on the global manager.
// Unknown stages are ignored.
func RecordStageDuration(stage string, durationMs float64) {
	_ = manager().ObserveStage(stage, durationMs)
}

// RecordStageError increments the failure counter of a stage on the global manager.
func RecordStageError(stage string) {
	_ = manager().StageFailed(stage)
}

// UpdateDataset sets the dataset gauges on the global manager.
func UpdateDataset(read, kept, dropped int) {
	manager().Dataset(read, kept, dropped)
}

// UpdateCountries sets the number of ranked countries.
func UpdateCountries(count int) {
	if m := manager(); m.enabled {
		m.countries.Set(float64(count))
	}
}

// RecordStoreQueryLatency records a standings lookup latency.
func RecordStoreQueryLatency(latencyMs float64) {
	if m := manager(); m.enabled {
		m.storeQueryLatency.Observe(latencyMs)
	}
}

// UpdateModelAccuracy sets the accuracy gauge.
func UpdateModelAccuracy(accuracy float64) {
	if m := manager(); m.enabled {
		m.modelAccuracy.Set(accuracy)
	}
}

// UpdateChartBytes sets the rendered chart size gauge.
func UpdateChartBytes(size int64) {
	if m := manager(); m.enabled {
		m.chartBytes.Set(float64(size))
	}
}

// RecordPipelineRun increments the completed pipeline counter.
func RecordPipelineRun() {
	if m := manager(); m.enabled {
		m.pipelineRuns.Inc()
	}
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if m := manager(); m.enabled {
		m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if m := manager(); m.enabled {
		m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
	}
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	if m := manager(); m.enabled {
		m.errorRateByType.WithLabelValues(errorType, severity).Inc()
	}
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if m := manager(); m.enabled {
		m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	if m := manager(); m.enabled {
		m.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
	}
}

// UpdateProcessMemory sets the heap allocation gauge.
func UpdateProcessMemory(bytes uint64) {
	if m := manager(); m.enabled {
		m.processMemory.Set(float64(bytes))
	}
}

// UpdateGoroutines sets the number of goroutines.
func UpdateGoroutines(count int) {
	if m := manager(); m.enabled {
		m.processGoroutines.Set(float64(count))
	}
}

// RecordGCPause records an average GC pause in milliseconds.
func RecordGCPause(pauseMs float64) {
	if m := manager(); m.enabled {
		m.gcPause.Observe(pauseMs)
	}
}

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return manager().gatherer
}
