package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/safesphere/backend/internal/metrics"
	"github.com/safesphere/backend/internal/rag"
	"github.com/safesphere/backend/internal/storage/models"
	"github.com/safesphere/backend/internal/storage/sqlite"
	"github.com/safesphere/backend/pkg/logger"
)

type ChatHandler struct {
	answerer *rag.Answerer
	db       *sqlite.Client
}

func NewChatHandler(answerer *rag.Answerer, db *sqlite.Client) *ChatHandler {
	return &ChatHandler{
		answerer: answerer,
		db:       db,
	}
}

// HandleAsk answers a policy question. The answerer never fails, so
// this endpoint only ever 400s on a malformed request.
func (h *ChatHandler) HandleAsk(c *fiber.Ctx) error {
	start := time.Now()

	var req struct {
		Question string `json:"question"`
		UserID   string `json:"user_id"`
		OrgID    string `json:"org_id"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Question is required",
		})
	}

	result := h.answerer.Answer(c.Context(), req.Question, req.OrgID)
	latencyMS := int(time.Since(start).Milliseconds())

	metrics.AnalysisDuration.WithLabelValues("chat").Observe(time.Since(start).Seconds())

	messageID := uuid.New().String()

	if h.db != nil {
		err := h.db.InsertChat(&models.ChatRecord{
			ID:            messageID,
			UserID:        req.UserID,
			OrgID:         req.OrgID,
			Question:      req.Question,
			Answer:        result.Answer,
			ContextChunks: result.ContextChunks,
			FallbackUsed:  result.FallbackUsed,
			LatencyMS:     latencyMS,
			CreatedAt:     time.Now(),
		})
		if err != nil {
			logger.Warn("Failed to persist chat record", zap.Error(err))
		}
	}

	return c.JSON(fiber.Map{
		"message_id":     messageID,
		"answer":         result.Answer,
		"context_chunks": result.ContextChunks,
		"fallback_used":  result.FallbackUsed,
		"latency_ms":     latencyMS,
	})
}
