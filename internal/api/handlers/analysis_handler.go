package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/safesphere/backend/internal/analysis"
	"github.com/safesphere/backend/internal/cache/redis"
	"github.com/safesphere/backend/internal/evaluation"
	"github.com/safesphere/backend/internal/metrics"
	"github.com/safesphere/backend/internal/storage/models"
	"github.com/safesphere/backend/internal/storage/sqlite"
	"github.com/safesphere/backend/pkg/logger"
	"github.com/safesphere/backend/pkg/utils"
)

const analysisCacheTTL = time.Hour

type AnalysisHandler struct {
	analyzer    *analysis.Analyzer
	db          *sqlite.Client
	cache       *redis.Client
	calibration *evaluation.Recorder
}

func NewAnalysisHandler(analyzer *analysis.Analyzer, db *sqlite.Client, cache *redis.Client, calibration *evaluation.Recorder) *AnalysisHandler {
	return &AnalysisHandler{
		analyzer:    analyzer,
		db:          db,
		cache:       cache,
		calibration: calibration,
	}
}

type analyzeRequest struct {
	Description string `json:"description"`
	Category    string `json:"category"`
	UserID      string `json:"user_id"`
	ComplaintID string `json:"complaint_id"`
	OrgID       string `json:"org_id"`
}

type analyzeResponse struct {
	ID        string                    `json:"id"`
	Analysis  analysis.SeverityAnalysis `json:"analysis"`
	Source    analysis.Source           `json:"source"`
	LatencyMS int                       `json:"latency_ms"`
}

// HandleAnalyze runs the full analysis pipeline for a submitted
// complaint: cache lookup, severity analysis, persistence, calibration.
func (h *AnalysisHandler) HandleAnalyze(c *fiber.Ctx) error {
	start := time.Now()

	req, ok, err := parseAnalyzeRequest(c)
	if !ok {
		return err
	}

	category := analysis.Category(req.Category)
	cacheKey := utils.HashString(req.Category + "|" + req.Description)

	if h.cache != nil {
		var cached analyzeResponse
		found, err := h.cache.GetAnalysis(c.Context(), cacheKey, &cached)
		if err == nil && found {
			metrics.CacheHits.WithLabelValues("analysis").Inc()
			cached.LatencyMS = int(time.Since(start).Milliseconds())
			return c.JSON(cached)
		}
		metrics.CacheMisses.WithLabelValues("analysis").Inc()
	}

	outcome := h.analyzer.Analyze(c.Context(), req.Description, category)

	recordID := uuid.New().String()
	latencyMS := int(time.Since(start).Milliseconds())

	metrics.AnalysisTotal.WithLabelValues(string(outcome.Source)).Inc()
	metrics.SeverityScores.Observe(float64(outcome.Analysis.SeverityScore))
	metrics.AnalysisDuration.WithLabelValues("analysis").Observe(time.Since(start).Seconds())

	if h.db != nil {
		record := &models.AnalysisRecord{
			ID:                recordID,
			UserID:            req.UserID,
			ComplaintID:       req.ComplaintID,
			OrgID:             req.OrgID,
			Category:          string(outcome.Analysis.Category),
			SeverityScore:     outcome.Analysis.SeverityScore,
			RiskLevel:         string(outcome.Analysis.RiskLevel),
			Sentiment:         string(outcome.Analysis.Sentiment),
			Keywords:          outcome.Analysis.Keywords,
			EmotionalState:    outcome.Analysis.EmotionalState,
			RecommendedAction: outcome.Analysis.RecommendedAction,
			Source:            string(outcome.Source),
			LatencyMS:         latencyMS,
			CreatedAt:         time.Now(),
		}
		err := h.db.InsertAnalysis(record)
		if err != nil {
			logger.Warn("Failed to persist analysis", zap.Error(err))
		}
	}

	if h.calibration != nil && outcome.Source == analysis.SourceAI {
		h.calibration.Record(recordID, outcome.Local, outcome.Analysis)
	}

	resp := analyzeResponse{
		ID:        recordID,
		Analysis:  outcome.Analysis,
		Source:    outcome.Source,
		LatencyMS: latencyMS,
	}

	if h.cache != nil {
		err := h.cache.SetAnalysis(c.Context(), cacheKey, resp, analysisCacheTTL)
		if err != nil {
			logger.Debug("Failed to cache analysis", zap.Error(err))
		}
	}

	return c.JSON(resp)
}

// HandleLiveAnalyze serves the as-you-type preview. Nothing is
// persisted and no calibration sample is taken.
func (h *AnalysisHandler) HandleLiveAnalyze(c *fiber.Ctx) error {
	start := time.Now()

	req, ok, err := parseAnalyzeRequest(c)
	if !ok {
		return err
	}

	outcome := h.analyzer.Analyze(c.Context(), req.Description, analysis.Category(req.Category))

	metrics.AnalysisTotal.WithLabelValues(string(outcome.Source)).Inc()
	metrics.AnalysisDuration.WithLabelValues("analysis_live").Observe(time.Since(start).Seconds())

	return c.JSON(analyzeResponse{
		ID:        uuid.New().String(),
		Analysis:  outcome.Analysis,
		Source:    outcome.Source,
		LatencyMS: int(time.Since(start).Milliseconds()),
	})
}

// parseAnalyzeRequest validates the analyze payload. On rejection it
// writes the 400 response itself and reports ok=false; the error it
// returns carries any failure from writing that response.
func parseAnalyzeRequest(c *fiber.Ctx) (req analyzeRequest, ok bool, err error) {
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return req, false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Description == "" {
		return req, false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Description is required",
		})
	}

	if !analysis.Category(req.Category).Valid() {
		return req, false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Category must be one of: verbal, physical, cyber, quid_pro_quo",
		})
	}

	return req, true, nil
}

func (h *AnalysisHandler) GetHistory(c *fiber.Ctx) error {
	userID := c.Query("user_id")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_id is required",
		})
	}

	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	if h.db == nil {
		return c.JSON(fiber.Map{"history": []interface{}{}})
	}

	records, err := h.db.GetAnalysisHistory(userID, limit)
	if err != nil {
		logger.Error("Failed to fetch analysis history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch history",
		})
	}

	return c.JSON(fiber.Map{"history": records})
}

func (h *AnalysisHandler) HandleFeedback(c *fiber.Ctx) error {
	var req struct {
		RecordID string `json:"record_id"`
		Helpful  bool   `json:"helpful"`
		Comment  string `json:"comment"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.RecordID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "record_id is required",
		})
	}

	if h.db != nil {
		err := h.db.StoreFeedback(&models.Feedback{
			RecordID:  req.RecordID,
			Helpful:   req.Helpful,
			Comment:   req.Comment,
			CreatedAt: time.Now(),
		})
		if err != nil {
			logger.Error("Failed to store feedback", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to store feedback",
			})
		}
	}

	return c.JSON(fiber.Map{"status": "recorded"})
}
