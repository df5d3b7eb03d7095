package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/safesphere/backend/internal/storage/models"
	"github.com/safesphere/backend/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS analysis_history (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		complaint_id TEXT,
		org_id TEXT,
		category TEXT NOT NULL,
		severity_score INTEGER NOT NULL,
		risk_level TEXT NOT NULL,
		sentiment TEXT NOT NULL,
		keywords TEXT,
		emotional_state TEXT,
		recommended_action TEXT,
		source TEXT NOT NULL,
		latency_ms INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_analysis_user ON analysis_history(user_id);
	CREATE INDEX IF NOT EXISTS idx_analysis_complaint ON analysis_history(complaint_id);
	CREATE INDEX IF NOT EXISTS idx_analysis_created ON analysis_history(created_at);

	CREATE TABLE IF NOT EXISTS chat_history (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		org_id TEXT,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		context_chunks INTEGER,
		fallback_used INTEGER DEFAULT 0,
		latency_ms INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chat_user ON chat_history(user_id);
	CREATE INDEX IF NOT EXISTS idx_chat_created ON chat_history(created_at);

	CREATE TABLE IF NOT EXISTS knowledge_docs (
		id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL,
		title TEXT NOT NULL,
		chunk_count INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_knowledge_org ON knowledge_docs(org_id);

	CREATE TABLE IF NOT EXISTS feedback (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		record_id TEXT NOT NULL,
		helpful INTEGER NOT NULL,
		comment TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_feedback_record ON feedback(record_id);

	CREATE TABLE IF NOT EXISTS calibration_samples (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		analysis_id TEXT NOT NULL,
		heuristic_score INTEGER NOT NULL,
		ai_score INTEGER NOT NULL,
		score_delta INTEGER NOT NULL,
		risk_agreement INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_calibration_created ON calibration_samples(created_at);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) InsertAnalysis(record *models.AnalysisRecord) error {
	keywordsJSON, _ := json.Marshal(record.Keywords)

	query := `
		INSERT INTO analysis_history (id, user_id, complaint_id, org_id, category, severity_score,
			risk_level, sentiment, keywords, emotional_state, recommended_action, source, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.Exec(
		query,
		record.ID,
		record.UserID,
		record.ComplaintID,
		record.OrgID,
		record.Category,
		record.SeverityScore,
		record.RiskLevel,
		record.Sentiment,
		string(keywordsJSON),
		record.EmotionalState,
		record.RecommendedAction,
		record.Source,
		record.LatencyMS,
		record.CreatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert analysis record: %w", err)
	}

	logger.Debug("Analysis recorded",
		zap.String("analysis_id", record.ID),
		zap.Int("severity_score", record.SeverityScore),
		zap.String("source", record.Source),
	)

	return nil
}

func (c *Client) GetAnalysisHistory(userID string, limit int) ([]models.AnalysisRecord, error) {
	query := `
		SELECT id, complaint_id, category, severity_score, risk_level, sentiment, keywords, source, created_at
		FROM analysis_history
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := c.db.Query(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis history: %w", err)
	}
	defer rows.Close()

	var records []models.AnalysisRecord
	for rows.Next() {
		var r models.AnalysisRecord
		var keywordsJSON string
		var createdAt int64

		err := rows.Scan(&r.ID, &r.ComplaintID, &r.Category, &r.SeverityScore,
			&r.RiskLevel, &r.Sentiment, &keywordsJSON, &r.Source, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		json.Unmarshal([]byte(keywordsJSON), &r.Keywords)
		r.UserID = userID
		r.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, r)
	}

	return records, nil
}

func (c *Client) InsertChat(record *models.ChatRecord) error {
	fallbackUsed := 0
	if record.FallbackUsed {
		fallbackUsed = 1
	}

	query := `
		INSERT INTO chat_history (id, user_id, org_id, question, answer, context_chunks, fallback_used, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.Exec(
		query,
		record.ID,
		record.UserID,
		record.OrgID,
		record.Question,
		record.Answer,
		record.ContextChunks,
		fallbackUsed,
		record.LatencyMS,
		record.CreatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert chat record: %w", err)
	}

	return nil
}

func (c *Client) InsertKnowledgeDoc(doc *models.KnowledgeDoc) error {
	query := `INSERT INTO knowledge_docs (id, org_id, title, chunk_count, created_at) VALUES (?, ?, ?, ?, ?)`

	_, err := c.db.Exec(query, doc.ID, doc.OrgID, doc.Title, doc.ChunkCount, doc.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert knowledge doc: %w", err)
	}

	logger.Info("Knowledge document registered",
		zap.String("doc_id", doc.ID),
		zap.String("org_id", doc.OrgID),
		zap.Int("chunks", doc.ChunkCount),
	)

	return nil
}

func (c *Client) StoreFeedback(feedback *models.Feedback) error {
	query := `INSERT INTO feedback (record_id, helpful, comment, created_at) VALUES (?, ?, ?, ?)`

	helpful := 0
	if feedback.Helpful {
		helpful = 1
	}

	_, err := c.db.Exec(query, feedback.RecordID, helpful, feedback.Comment, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to store feedback: %w", err)
	}

	logger.Info("Feedback stored",
		zap.String("record_id", feedback.RecordID),
		zap.Bool("helpful", feedback.Helpful),
	)

	return nil
}

func (c *Client) InsertCalibrationSample(sample *models.CalibrationSample) error {
	riskAgreement := 0
	if sample.RiskAgreement {
		riskAgreement = 1
	}

	query := `
		INSERT INTO calibration_samples (analysis_id, heuristic_score, ai_score, score_delta, risk_agreement, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.Exec(query, sample.AnalysisID, sample.HeuristicScore, sample.AIScore,
		sample.ScoreDelta, riskAgreement, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to insert calibration sample: %w", err)
	}

	return nil
}
