package analysis

// Classify is the deterministic keyword classifier. It never fails,
// never calls out, and is the fallback for every other analysis path:
// when the AI provider is down this function is what keeps intake safe.
// Unknown categories are accepted and simply get no category floor.
func Classify(description string, category Category) SeverityAnalysis {
	res := scoreDescription(description, category)

	return SeverityAnalysis{
		Sentiment:         sentimentForScore(res.score),
		SeverityScore:     res.score,
		Category:          category,
		Keywords:          res.matched,
		RiskLevel:         RiskLevelForScore(res.score),
		EmotionalState:    emotionalStateForScore(res.score),
		RecommendedAction: recommendedActionForScore(res.score),
	}
}

func sentimentForScore(score int) Sentiment {
	switch {
	case score >= 8:
		return SentimentDistressed
	case score >= 5:
		return SentimentNegative
	default:
		return SentimentMixed
	}
}

// Phrase tables are banded at 9, 7, 5 and 3.

func emotionalStateForScore(score int) string {
	switch {
	case score >= 9:
		return "acute distress with fear for personal safety"
	case score >= 7:
		return "significant distress and anxiety"
	case score >= 5:
		return "notable discomfort and unease"
	case score >= 3:
		return "mild discomfort"
	default:
		return "low emotional distress indicated"
	}
}

func recommendedActionForScore(score int) string {
	switch {
	case score >= 9:
		return "Escalate to the ICC immediately and ensure the complainant's safety"
	case score >= 7:
		return "Prioritise for ICC review within 48 hours"
	case score >= 5:
		return "Schedule an ICC review and gather additional details"
	case score >= 3:
		return "Document the incident and monitor for recurrence"
	default:
		return "Record for reference and offer support resources"
	}
}
