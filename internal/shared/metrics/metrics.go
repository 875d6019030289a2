package metrics

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "applygen"

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var registry = prometheus.NewRegistry()

var (
	auto = promauto.With(registry)

	batchStartedTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "batch_started_total",
		Help:      "Total batches started",
	})
	batchCompletedTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "batch_completed_total",
		Help:      "Total batches completed",
	})
	batchFailedTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "batch_failed_total",
		Help:      "Total batches failed",
	})
	batchDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "batch_duration_ms",
		Help:      "Batch duration in milliseconds",
		Buckets:   []float64{1000, 5000, 15000, 30000, 60000, 120000, 300000, 600000},
	})
	candidateTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "candidate_total",
		Help:      "Candidates processed by outcome",
	}, []string{"outcome"})
	renderFailedTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "render_failed_total",
		Help:      "Documents that failed to render by kind",
	}, []string{"kind"})
	llmRequestsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "llm_requests_total",
		Help:      "Generation service calls by purpose and outcome",
	}, []string{"purpose", "outcome"})
	jobsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "batch_jobs_total",
		Help:      "Queued batch jobs by worker outcome",
	}, []string{"outcome"})
	httpRequestsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})
)

// IncBatchStarted increments the started counter.
func IncBatchStarted() {
	batchStartedTotal.Inc()
}

// IncBatchCompleted increments the completed counter.
func IncBatchCompleted() {
	batchCompletedTotal.Inc()
}

// IncBatchFailed increments the failed counter.
func IncBatchFailed() {
	batchFailedTotal.Inc()
}

// ObserveBatchDurationMs records a batch duration in milliseconds.
func ObserveBatchDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	batchDuration.Observe(value)
}

// IncCandidate counts one candidate task by outcome.
func IncCandidate(outcome string) {
	candidateTotal.WithLabelValues(outcome).Inc()
}

// IncRenderFailed counts one document render failure.
func IncRenderFailed(kind string) {
	renderFailedTotal.WithLabelValues(kind).Inc()
}

// IncLLMRequest counts one generation service call.
func IncLLMRequest(purpose, outcome string) {
	llmRequestsTotal.WithLabelValues(purpose, outcome).Inc()
}

// IncJob counts one queued job by worker outcome (received, completed, failed, dropped).
func IncJob(outcome string) {
	jobsTotal.WithLabelValues(outcome).Inc()
}

// ObserveHTTPRequest counts one served HTTP request.
func ObserveHTTPRequest(route, method string, status int) {
	httpRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
}

// Registry exposes the metrics registry, mainly for tests.
func Registry() *prometheus.Registry {
	return registry
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
