package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AnalysisTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safesphere_analysis_total",
			Help: "Total severity analyses by source path",
		},
		[]string{"source"},
	)

	AnalysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "safesphere_analysis_duration_seconds",
			Help:    "Analysis duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"endpoint"},
	)

	SeverityScores = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "safesphere_severity_score",
			Help:    "Distribution of severity scores",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		},
	)

	// FallbackTotal counts every time a component abandoned the external
	// path and served its local or neutral default.
	FallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safesphere_fallback_total",
			Help: "Fallbacks to local/default results by component",
		},
		[]string{"component"},
	)

	LLMTokensUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safesphere_llm_tokens_used",
			Help: "Total LLM tokens used",
		},
		[]string{"model", "type"},
	)

	RetrievalChunks = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "safesphere_retrieval_chunks",
			Help:    "Number of policy chunks retrieved per question",
			Buckets: []float64{0, 1, 2, 3, 4, 8},
		},
	)

	ChatAnswers = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safesphere_chat_answers_total",
			Help: "Chat answers by outcome",
		},
		[]string{"outcome"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safesphere_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safesphere_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	CaseGraphWrites = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "safesphere_case_graph_writes_total",
			Help: "Total complaint edges recorded in the case graph",
		},
	)

	DocumentsIngested = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "safesphere_documents_ingested_total",
			Help: "Total policy documents ingested",
		},
	)

	// CalibrationDelta tracks |AI score - heuristic score| whenever the
	// AI path succeeds, so drift between model and fallback is visible.
	CalibrationDelta = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "safesphere_calibration_score_delta",
			Help:    "Absolute difference between AI and heuristic severity scores",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 6},
		},
	)
)

func Init() {
	prometheus.MustRegister(AnalysisTotal)
	prometheus.MustRegister(AnalysisDuration)
	prometheus.MustRegister(SeverityScores)
	prometheus.MustRegister(FallbackTotal)
	prometheus.MustRegister(LLMTokensUsed)
	prometheus.MustRegister(RetrievalChunks)
	prometheus.MustRegister(ChatAnswers)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(CaseGraphWrites)
	prometheus.MustRegister(DocumentsIngested)
	prometheus.MustRegister(CalibrationDelta)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
