package analysis

// Category is the complaint category fixed at submission time.
type Category string

const (
	CategoryVerbal     Category = "verbal"
	CategoryPhysical   Category = "physical"
	CategoryCyber      Category = "cyber"
	CategoryQuidProQuo Category = "quid_pro_quo"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryVerbal, CategoryPhysical, CategoryCyber, CategoryQuidProQuo:
		return true
	}
	return false
}

type Sentiment string

const (
	SentimentNegative   Sentiment = "negative"
	SentimentDistressed Sentiment = "distressed"
	SentimentNeutral    Sentiment = "neutral"
	SentimentMixed      Sentiment = "mixed"
)

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// RiskLevelForScore is the single source of truth for the score-to-risk
// banding. AI-sourced analyses never carry their own risk level through;
// it is always re-derived here.
func RiskLevelForScore(score int) RiskLevel {
	switch {
	case score >= 9:
		return RiskCritical
	case score >= 7:
		return RiskHigh
	case score >= 4:
		return RiskMedium
	default:
		return RiskLow
	}
}

// SeverityAnalysis is the advisory record attached to a complaint. It is
// computed per request and never mutated afterwards.
type SeverityAnalysis struct {
	Sentiment         Sentiment `json:"sentiment"`
	SeverityScore     int       `json:"severity_score"`
	Category          Category  `json:"category"`
	Keywords          []string  `json:"keywords"`
	RiskLevel         RiskLevel `json:"risk_level"`
	EmotionalState    string    `json:"emotional_state"`
	RecommendedAction string    `json:"recommended_action"`
}

// CredibilityDimensions are the six scored axes of a credibility
// assessment, each in [0, 10].
type CredibilityDimensions struct {
	Consistency         float64 `json:"consistency"`
	Specificity         float64 `json:"specificity"`
	Plausibility        float64 `json:"plausibility"`
	Corroboration       float64 `json:"corroboration"`
	EmotionalCongruence float64 `json:"emotional_congruence"`
	TimelineCoherence   float64 `json:"timeline_coherence"`
}

type CredibilityAssessment struct {
	OverallScore float64               `json:"overall_score"`
	Dimensions   CredibilityDimensions `json:"dimensions"`
	Summary      string                `json:"summary"`
	Flags        []string              `json:"flags"`
}

type Contradiction struct {
	Topic              string `json:"topic"`
	ComplainantVersion string `json:"complainant_version"`
	AccusedVersion     string `json:"accused_version"`
}

type Leaning string

const (
	LeaningComplainant  Leaning = "complainant"
	LeaningAccused      Leaning = "accused"
	LeaningInconclusive Leaning = "inconclusive"
)

type StatementComparison struct {
	Contradictions     []Contradiction `json:"contradictions"`
	Agreements         []string        `json:"agreements"`
	EvidenceGaps       []string        `json:"evidence_gaps"`
	Summary            string          `json:"summary"`
	CredibilityLeaning Leaning         `json:"credibility_leaning"`
}

// Source records which path produced an analysis. Callers see the same
// record shape either way; the source exists for logging and metrics.
type Source string

const (
	SourceAI        Source = "ai"
	SourceHeuristic Source = "heuristic"
)

// Outcome bundles the selected analysis with the keyword baseline that
// was computed alongside it. Local is always populated.
type Outcome struct {
	Analysis SeverityAnalysis
	Local    SeverityAnalysis
	Source   Source
}
