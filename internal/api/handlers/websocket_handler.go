package handlers

import (
	"context"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/safesphere/backend/internal/rag"
	"github.com/safesphere/backend/internal/storage/models"
	"github.com/safesphere/backend/internal/storage/sqlite"
	"github.com/safesphere/backend/pkg/logger"
)

// WebSocketHandler streams chat answers over a socket. Delivery is
// word-chunked to mimic token streaming; the answer itself is produced
// in full before streaming starts, so a dropped socket never loses a
// persisted record.
type WebSocketHandler struct {
	answerer *rag.Answerer
	db       *sqlite.Client
}

func NewWebSocketHandler(answerer *rag.Answerer, db *sqlite.Client) *WebSocketHandler {
	return &WebSocketHandler{
		answerer: answerer,
		db:       db,
	}
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg struct {
			Type    string `json:"type"`
			Content string `json:"content"`
			UserID  string `json:"user_id"`
			OrgID   string `json:"org_id"`
		}

		err := c.ReadJSON(&msg)
		if err != nil {
			logger.Debug("WebSocket read ended", zap.Error(err))
			break
		}

		if msg.Type != "question" || msg.Content == "" {
			continue
		}

		err = h.streamAnswer(c, msg.Content, msg.UserID, msg.OrgID)
		if err != nil {
			logger.Error("Failed to stream answer", zap.Error(err))
			h.sendError(c, "Failed to process question")
		}
	}
}

func (h *WebSocketHandler) streamAnswer(c *websocket.Conn, question, userID, orgID string) error {
	ctx := context.Background()
	start := time.Now()

	h.sendChunk(c, "status", "Looking that up...")

	result := h.answerer.Answer(ctx, question, orgID)
	latencyMS := int(time.Since(start).Milliseconds())

	messageID := uuid.New().String()

	if h.db != nil {
		err := h.db.InsertChat(&models.ChatRecord{
			ID:            messageID,
			UserID:        userID,
			OrgID:         orgID,
			Question:      question,
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

	words := splitIntoWords(result.Answer)
	for i, word := range words {
		chunk := word
		if i < len(words)-1 {
			chunk += " "
		}

		err := h.sendChunk(c, "chunk", chunk)
		if err != nil {
			return err
		}
	}

	return c.WriteJSON(map[string]interface{}{
		"type":           "complete",
		"message_id":     messageID,
		"context_chunks": result.ContextChunks,
		"fallback_used":  result.FallbackUsed,
		"latency_ms":     latencyMS,
	})
}

func (h *WebSocketHandler) sendChunk(c *websocket.Conn, msgType, content string) error {
	return c.WriteJSON(map[string]interface{}{
		"type":    msgType,
		"content": content,
	})
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	c.WriteJSON(map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	})
}

func splitIntoWords(text string) []string {
	words := []string{}
	currentWord := ""

	for _, char := range text {
		if char == ' ' || char == '\n' {
			if currentWord != "" {
				words = append(words, currentWord)
				currentWord = ""
			}
			if char == '\n' {
				words = append(words, "\n")
			}
		} else {
			currentWord += string(char)
		}
	}

	if currentWord != "" {
		words = append(words, currentWord)
	}

	return words
}
