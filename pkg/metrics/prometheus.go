// Package metrics provides Prometheus metrics for the merit evaluation service.
package metrics

import (
	"context"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the merit service.
type Manager struct {
	namespace       string
	subsystem       string
	latencyBuckets  []float64
	scoreBuckets    []float64
	refreshInterval time.Duration
	constLabels     map[string]string
	registry        prometheus.Registerer

	// Evaluation
	evaluations       *prometheus.CounterVec
	duplicates        prometheus.Counter
	evaluationErrors  prometheus.Counter
	evaluationLatency prometheus.Histogram
	compositeScores   prometheus.Histogram
	academicCapped    prometheus.Counter

	// Ranking store
	rankingUpdates       prometheus.Counter
	rankingSize          prometheus.Gauge
	rankingUpdateLatency prometheus.Histogram
	rankingQueryLatency  prometheus.Histogram

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec

	// Runtime
	memoryUsage    prometheus.Gauge
	goroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:       "merit",
		subsystem:       "admission",
		latencyBuckets:  prometheus.DefBuckets,
		scoreBuckets:    prometheus.LinearBuckets(10, 10, 10),
		refreshInterval: defaultRefreshInterval,
		registry:        prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts(m.counterOpts(name, help))
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
		Buckets:     buckets,
	}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.evaluations = auto.NewCounterVec(
		m.counterOpts("evaluations_total", "Total number of applications evaluated, by ruleset version"),
		[]string{"ruleset"},
	)
	m.duplicates = auto.NewCounter(m.counterOpts("applications_duplicate_total", "Total number of resubmitted application ids"))
	m.evaluationErrors = auto.NewCounter(m.counterOpts("evaluation_errors_total", "Total number of applications that could not be evaluated"))
	m.evaluationLatency = auto.NewHistogram(m.histogramOpts("evaluation_latency_milliseconds", "Evaluation latency in milliseconds", m.latencyBuckets))
	m.compositeScores = auto.NewHistogram(m.histogramOpts("composite_score", "Distribution of composite scores", m.scoreBuckets))
	m.academicCapped = auto.NewCounter(m.counterOpts("academic_capped_total", "Evaluations whose academic total exceeded the ceiling"))

	m.rankingUpdates = auto.NewCounter(m.counterOpts("ranking_updates_total", "Total number of ranking upserts"))
	m.rankingSize = auto.NewGauge(m.gaugeOpts("ranking_size", "Number of applications in the ranking"))
	m.rankingUpdateLatency = auto.NewHistogram(m.histogramOpts("ranking_update_latency_milliseconds", "Ranking upsert latency in milliseconds", m.latencyBuckets))
	m.rankingQueryLatency = auto.NewHistogram(m.histogramOpts("ranking_query_latency_milliseconds", "Ranking query latency in milliseconds", m.latencyBuckets))

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Current size of the application queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Maximum queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("queue_utilization_ratio", "Queue utilization ratio (current size / capacity)"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("queue_enqueue_total", "Total number of applications enqueued"))
	m.queueDequeued = auto.NewCounter(m.counterOpts("queue_dequeue_total", "Total number of applications dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total", "Total number of rejected enqueues"))

	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Configured number of evaluation workers"))
	m.workerActiveCount = auto.NewGauge(m.gaugeOpts("worker_active_count", "Number of workers currently evaluating"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogramOpts("worker_processing_latency_milliseconds", "Worker processing latency in milliseconds", m.latencyBuckets))
	m.workerErrors = auto.NewCounter(m.counterOpts("worker_errors_total", "Total number of worker errors"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.latencyBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)

	m.memoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap memory in use in bytes"))
	m.goroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
}

// RunSampler refreshes the runtime gauges every refresh interval until ctx
// is done.
func (m *Manager) RunSampler(ctx context.Context) {
	ticker := time.NewTicker(m.refreshInterval)
	defer ticker.Stop()
	for {
		m.sample()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (m *Manager) sample() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.memoryUsage.Set(float64(ms.HeapInuse))
	m.goroutineCount.Set(float64(runtime.NumGoroutine()))
}

// RunSampler refreshes the global runtime gauges until ctx is done.
func RunSampler(ctx context.Context) {
	globalManager.RunSampler(ctx)
}

// RecordEvaluation counts one evaluation under the given ruleset version.
func RecordEvaluation(ruleset string) {
	globalManager.evaluations.WithLabelValues(ruleset).Inc()
}

// RecordDuplicate increments the duplicate submissions counter.
func RecordDuplicate() {
	globalManager.duplicates.Inc()
}

// RecordEvaluationError increments the evaluation errors counter.
func RecordEvaluationError() {
	globalManager.evaluationErrors.Inc()
}

// RecordEvaluationLatency records evaluation latency in milliseconds.
func RecordEvaluationLatency(latencyMs float64) {
	globalManager.evaluationLatency.Observe(latencyMs)
}

// RecordCompositeScore observes one composite score.
func RecordCompositeScore(score float64) {
	globalManager.compositeScores.Observe(score)
}

// RecordAcademicCapped counts an academic total that hit the ceiling.
func RecordAcademicCapped() {
	globalManager.academicCapped.Inc()
}

// RecordRankingUpdate increments the ranking updates counter.
func RecordRankingUpdate() {
	globalManager.rankingUpdates.Inc()
}

// UpdateRankingSize sets the number of ranked applications.
func UpdateRankingSize(count int) {
	globalManager.rankingSize.Set(float64(count))
}

// RecordRankingUpdateLatency records ranking upsert latency.
func RecordRankingUpdateLatency(latencyMs float64) {
	globalManager.rankingUpdateLatency.Observe(latencyMs)
}

// RecordRankingQueryLatency records ranking query latency.
func RecordRankingQueryLatency(latencyMs float64) {
	globalManager.rankingQueryLatency.Observe(latencyMs)
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// AddActiveWorkers adjusts the number of busy workers by delta.
func AddActiveWorkers(delta int) {
	globalManager.workerActiveCount.Add(float64(delta))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
