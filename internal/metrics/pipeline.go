package metrics

import "github.com/prometheus/client_golang/prometheus"

// Answer-pipeline Prometheus metrics.
var (
	GenerationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voceria",
			Name:      "generation_requests_total",
			Help:      "Total number of generation requests",
		},
		[]string{"model", "status"},
	)

	GenerationRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "voceria",
			Name:      "generation_request_duration_seconds",
			Help:      "Generation request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		},
		[]string{"model"},
	)

	ResponseCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voceria",
			Name:      "response_cache_total",
			Help:      "Response cache hits and misses by tier",
		},
		[]string{"tier", "result"}, // tier: "remote"/"local", result: "hit"/"miss"
	)

	ContextCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voceria",
			Name:      "context_cache_total",
			Help:      "Context cache hits and misses",
		},
		[]string{"result"},
	)

	HallucinationRisk = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "voceria",
			Name:      "hallucination_risk",
			Help:      "Distribution of verification hallucination risk",
			Buckets:   []float64{0, 0.1, 0.2, 0.3, 0.5, 0.7, 0.9, 1},
		},
	)

	SanitizerChangesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voceria",
			Name:      "sanitizer_changes_total",
			Help:      "Total sanitizer transforms applied",
		},
		[]string{"kind"},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers Prometheus pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(GenerationRequestsTotal)
	prometheus.MustRegister(GenerationRequestDuration)
	prometheus.MustRegister(ResponseCacheTotal)
	prometheus.MustRegister(ContextCacheTotal)
	prometheus.MustRegister(HallucinationRisk)
	prometheus.MustRegister(SanitizerChangesTotal)
	pipelineMetricsRegistered = true
}
