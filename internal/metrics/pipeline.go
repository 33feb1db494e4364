package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval pipeline metrics: live quotes, decisions, generation and the index.
var (
	QuoteFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quoterag",
			Name:      "quote_fetch_total",
			Help:      "Live quote lookups by source and outcome",
		},
		[]string{"source", "result"}, // found, absent, error
	)

	QuoteFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "quoterag",
			Name:      "quote_fetch_duration_seconds",
			Help:      "Live quote lookup duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8},
		},
		[]string{"source"},
	)

	DecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quoterag",
			Name:      "decisions_total",
			Help:      "Answers produced per decision branch",
		},
		[]string{"branch"},
	)

	GenerationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quoterag",
			Name:      "generation_requests_total",
			Help:      "Text generation requests by outcome",
		},
		[]string{"model", "status"},
	)

	IndexDocuments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "quoterag",
			Name:      "index_documents",
			Help:      "Documents currently held by the embedding index",
		},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers the retrieval pipeline collectors. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(QuoteFetchTotal)
	prometheus.MustRegister(QuoteFetchDuration)
	prometheus.MustRegister(DecisionsTotal)
	prometheus.MustRegister(GenerationRequestsTotal)
	prometheus.MustRegister(IndexDocuments)
	pipelineMetricsRegistered = true
}
