package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/safesphere/backend/internal/analysis"
	"github.com/safesphere/backend/internal/escalation"
	"github.com/safesphere/backend/internal/graph/neo4j"
	"github.com/safesphere/backend/internal/metrics"
	"github.com/safesphere/backend/pkg/logger"
)

// CaseHandler serves the ICC-facing case endpoints: credibility and
// comparison assessments, escalation plans and the case graph.
type CaseHandler struct {
	analyzer *analysis.Analyzer
	planner  *escalation.Planner
	graph    *neo4j.Client
}

func NewCaseHandler(analyzer *analysis.Analyzer, planner *escalation.Planner, graph *neo4j.Client) *CaseHandler {
	return &CaseHandler{
		analyzer: analyzer,
		planner:  planner,
		graph:    graph,
	}
}

func (h *CaseHandler) HandleCredibility(c *fiber.Ctx) error {
	start := time.Now()

	var req struct {
		ComplainantStatement string   `json:"complainant_statement"`
		AccusedStatement     string   `json:"accused_statement"`
		EvidenceSummaries    []string `json:"evidence_summaries"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.ComplainantStatement == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "complainant_statement is required",
		})
	}

	assessment := h.analyzer.AssessCredibility(c.Context(), req.ComplainantStatement, req.AccusedStatement, req.EvidenceSummaries)

	metrics.AnalysisDuration.WithLabelValues("credibility").Observe(time.Since(start).Seconds())

	return c.JSON(assessment)
}

func (h *CaseHandler) HandleComparison(c *fiber.Ctx) error {
	start := time.Now()

	var req struct {
		ComplainantStatement string `json:"complainant_statement"`
		AccusedStatement     string `json:"accused_statement"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.ComplainantStatement == "" || req.AccusedStatement == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Both complainant_statement and accused_statement are required",
		})
	}

	comparison := h.analyzer.CompareStatements(c.Context(), req.ComplainantStatement, req.AccusedStatement)

	metrics.AnalysisDuration.WithLabelValues("comparison").Observe(time.Since(start).Seconds())

	return c.JSON(comparison)
}

func (h *CaseHandler) HandleEscalation(c *fiber.Ctx) error {
	var req struct {
		Category      string `json:"category"`
		SeverityScore int    `json:"severity_score"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if !analysis.Category(req.Category).Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Category must be one of: verbal, physical, cyber, quid_pro_quo",
		})
	}

	if req.SeverityScore < 1 || req.SeverityScore > 10 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "severity_score must be between 1 and 10",
		})
	}

	riskLevel := analysis.RiskLevelForScore(req.SeverityScore)
	plan := h.planner.PlanEscalation(c.Context(), analysis.Category(req.Category), req.SeverityScore, riskLevel)

	return c.JSON(fiber.Map{
		"risk_level": riskLevel,
		"plan":       plan,
	})
}

// HandleRecordCase writes the complaint edge into the case graph. This
// is the only write path into the graph; analysis endpoints never touch
// it.
func (h *CaseHandler) HandleRecordCase(c *fiber.Ctx) error {
	var req struct {
		ComplaintID   string `json:"complaint_id"`
		ComplainantID string `json:"complainant_id"`
		AccusedID     string `json:"accused_id"`
		OrgID         string `json:"org_id"`
		RiskLevel     string `json:"risk_level"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.ComplaintID == "" || req.ComplainantID == "" || req.AccusedID == "" || req.OrgID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "complaint_id, complainant_id, accused_id and org_id are required",
		})
	}

	if h.graph == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Case graph is unavailable",
		})
	}

	err := h.graph.RecordComplaint(c.Context(), neo4j.CaseEdge{
		ComplaintID:   req.ComplaintID,
		ComplainantID: req.ComplainantID,
		AccusedID:     req.AccusedID,
		OrgID:         req.OrgID,
		RiskLevel:     req.RiskLevel,
	})
	if err != nil {
		logger.Error("Failed to record case", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to record case",
		})
	}

	return c.JSON(fiber.Map{"status": "recorded"})
}

func (h *CaseHandler) GetAccusationPattern(c *fiber.Ctx) error {
	accusedID := c.Params("accused_id")
	orgID := c.Query("org_id")

	if accusedID == "" || orgID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "accused_id and org_id are required",
		})
	}

	if h.graph == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Case graph is unavailable",
		})
	}

	pattern, err := h.graph.RepeatAccusations(c.Context(), accusedID, orgID)
	if err != nil {
		logger.Error("Failed to query accusation pattern", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to query accusation pattern",
		})
	}

	return c.JSON(fiber.Map{
		"accused_id":       pattern.AccusedID,
		"complaint_count":  pattern.ComplaintCount,
		"distinct_filers":  pattern.DistinctFilers,
		"highest_risk":     pattern.HighestRisk,
		"first_complaint":  pattern.FirstComplaint,
		"latest_complaint": pattern.LatestComplaint,
	})
}
