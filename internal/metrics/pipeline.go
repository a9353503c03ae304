package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval and agent pipeline Prometheus metrics.
var (
	RetrievalRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "askdex",
			Name:      "retrieval_requests_total",
			Help:      "Total number of retrieval requests",
		},
		[]string{"path"}, // "enhanced" / "basic"
	)

	RetrievalFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "askdex",
			Name:      "retrieval_fallbacks_total",
			Help:      "Enhanced retrievals degraded to the basic path",
		},
	)

	RetrievalCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "askdex",
			Name:      "retrieval_candidate_pool_size",
			Help:      "Unique candidate pool size after variant merge",
			Buckets:   []float64{5, 10, 15, 25, 50, 100, 200},
		},
	)

	AgentAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "askdex",
			Name:      "agent_attempts_total",
			Help:      "Agent attempts by outcome",
		},
		[]string{"outcome"}, // "success" / "error"
	)

	AgentRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "askdex",
			Name:      "agent_retries_total",
			Help:      "Agent retries by error kind",
		},
		[]string{"kind"},
	)

	AgentSessionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "askdex",
			Name:      "agent_session_duration_seconds",
			Help:      "Wall-clock duration of full agent sessions",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 240, 480},
		},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers retrieval and agent metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(RetrievalRequestsTotal)
	prometheus.MustRegister(RetrievalFallbacksTotal)
	prometheus.MustRegister(RetrievalCandidates)
	prometheus.MustRegister(AgentAttemptsTotal)
	prometheus.MustRegister(AgentRetriesTotal)
	prometheus.MustRegister(AgentSessionDuration)
	pipelineMetricsRegistered = true
}
