package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/safesphere/backend/internal/ingestion"
	"github.com/safesphere/backend/pkg/logger"
)

type KnowledgeHandler struct {
	processor *ingestion.Processor
}

func NewKnowledgeHandler(processor *ingestion.Processor) *KnowledgeHandler {
	return &KnowledgeHandler{processor: processor}
}

// UploadDocument ingests one policy document into the org's knowledge
// base. Content is HTML or plain text; plain text passes through the
// cleaner unchanged.
func (h *KnowledgeHandler) UploadDocument(c *fiber.Ctx) error {
	var req struct {
		OrgID   string `json:"org_id"`
		Title   string `json:"title"`
		Content string `json:"content"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.OrgID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "org_id is required",
		})
	}

	if req.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Content is required",
		})
	}

	docID, chunks, err := h.processor.ProcessDocument(c.Context(), req.OrgID, req.Title, req.Content)
	if err != nil {
		logger.Error("Failed to ingest document", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to ingest document",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"doc_id": docID,
		"chunks": chunks,
	})
}
