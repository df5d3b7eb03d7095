package models

import "time"

// AnalysisRecord is the persisted form of a severity analysis. The
// surrounding application treats it as an opaque attachment to a
// complaint; nothing here feeds back into later analyses.
type AnalysisRecord struct {
	ID                string
	UserID            string
	ComplaintID       string
	OrgID             string
	Category          string
	SeverityScore     int
	RiskLevel         string
	Sentiment         string
	Keywords          []string
	EmotionalState    string
	RecommendedAction string
	Source            string
	LatencyMS         int
	CreatedAt         time.Time
}

type ChatRecord struct {
	ID            string
	UserID        string
	OrgID         string
	Question      string
	Answer        string
	ContextChunks int
	FallbackUsed  bool
	LatencyMS     int
	CreatedAt     time.Time
}

type KnowledgeDoc struct {
	ID         string
	OrgID      string
	Title      string
	ChunkCount int
	CreatedAt  time.Time
}

type Feedback struct {
	ID        int
	RecordID  string
	Helpful   bool
	Comment   string
	CreatedAt time.Time
}

// CalibrationSample records how far an AI-produced severity score
// diverged from the keyword heuristic for the same input.
type CalibrationSample struct {
	ID             int
	AnalysisID     string
	HeuristicScore int
	AIScore        int
	ScoreDelta     int
	RiskAgreement  bool
	CreatedAt      time.Time
}
