package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFences(t *testing.T) {
	raw := `{"a": 1}`

	assert.Equal(t, raw, stripCodeFences(raw))
	assert.Equal(t, raw, stripCodeFences("```json\n"+raw+"\n```"))
	assert.Equal(t, raw, stripCodeFences("```\n"+raw+"\n```"))
	assert.Equal(t, raw, stripCodeFences("  \n```json\n"+raw+"\n```\n  "))
}

func TestParseSeverityPayload(t *testing.T) {
	valid := `{"sentiment": "distressed", "severity_score": 9, "keywords": ["assault"], "emotional_state": "acute distress", "recommended_action": "escalate to ICC"}`

	got, err := parseSeverityPayload(valid, CategoryPhysical)
	require.NoError(t, err)

	assert.Equal(t, 9, got.SeverityScore)
	assert.Equal(t, SentimentDistressed, got.Sentiment)
	assert.Equal(t, CategoryPhysical, got.Category)
	assert.Equal(t, RiskCritical, got.RiskLevel)
}

func TestParseSeverityPayloadIgnoresModelRiskLevel(t *testing.T) {
	// The model's own risk_level field is never trusted; the level is
	// re-derived from the score.
	raw := `{"sentiment": "negative", "severity_score": 9, "risk_level": "low", "keywords": [], "emotional_state": "distress", "recommended_action": "escalate"}`

	got, err := parseSeverityPayload(raw, CategoryVerbal)
	require.NoError(t, err)

	assert.Equal(t, RiskCritical, got.RiskLevel)
}

func TestParseSeverityPayloadTruncatesKeywords(t *testing.T) {
	raw := `{"sentiment": "negative", "severity_score": 5, "keywords": ["a","b","c","d","e","f","g"], "emotional_state": "unease", "recommended_action": "review"}`

	got, err := parseSeverityPayload(raw, CategoryVerbal)
	require.NoError(t, err)

	assert.Len(t, got.Keywords, 5)
}

func TestParseSeverityPayloadRejections(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "the situation seems serious"},
		{"missing sentiment", `{"severity_score": 5, "emotional_state": "x", "recommended_action": "y"}`},
		{"missing score", `{"sentiment": "negative", "emotional_state": "x", "recommended_action": "y"}`},
		{"unknown sentiment", `{"sentiment": "angry", "severity_score": 5, "emotional_state": "x", "recommended_action": "y"}`},
		{"fractional score", `{"sentiment": "negative", "severity_score": 7.5, "emotional_state": "x", "recommended_action": "y"}`},
		{"score too high", `{"sentiment": "negative", "severity_score": 11, "emotional_state": "x", "recommended_action": "y"}`},
		{"score too low", `{"sentiment": "negative", "severity_score": 0, "emotional_state": "x", "recommended_action": "y"}`},
		{"empty descriptive field", `{"sentiment": "negative", "severity_score": 5, "emotional_state": "", "recommended_action": "y"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseSeverityPayload(tt.raw, CategoryVerbal)
			assert.Error(t, err)
		})
	}
}

func TestParseCredibilityPayload(t *testing.T) {
	valid := `{"overall_score": 6.5, "dimensions": {"consistency": 7, "specificity": 6, "plausibility": 8, "corroboration": 4, "emotional_congruence": 7, "timeline_coherence": 7}, "summary": "Largely consistent account.", "flags": ["no witnesses"]}`

	got, err := parseCredibilityPayload(valid)
	require.NoError(t, err)

	assert.Equal(t, 6.5, got.OverallScore)
	assert.Equal(t, 7.0, got.Dimensions.Consistency)
	assert.Equal(t, []string{"no witnesses"}, got.Flags)
}

func TestParseCredibilityPayloadNilFlagsBecomeEmpty(t *testing.T) {
	raw := `{"overall_score": 5, "dimensions": {"consistency": 5, "specificity": 5, "plausibility": 5, "corroboration": 5, "emotional_congruence": 5, "timeline_coherence": 5}, "summary": "ok"}`

	got, err := parseCredibilityPayload(raw)
	require.NoError(t, err)

	assert.NotNil(t, got.Flags)
	assert.Empty(t, got.Flags)
}

func TestParseCredibilityPayloadRejections(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing dimensions", `{"overall_score": 5, "summary": "ok"}`},
		{"missing one dimension", `{"overall_score": 5, "dimensions": {"consistency": 5, "specificity": 5, "plausibility": 5, "corroboration": 5, "emotional_congruence": 5}, "summary": "ok"}`},
		{"dimension out of range", `{"overall_score": 5, "dimensions": {"consistency": 11, "specificity": 5, "plausibility": 5, "corroboration": 5, "emotional_congruence": 5, "timeline_coherence": 5}, "summary": "ok"}`},
		{"overall out of range", `{"overall_score": -1, "dimensions": {"consistency": 5, "specificity": 5, "plausibility": 5, "corroboration": 5, "emotional_congruence": 5, "timeline_coherence": 5}, "summary": "ok"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseCredibilityPayload(tt.raw)
			assert.Error(t, err)
		})
	}
}

func TestParseComparisonPayload(t *testing.T) {
	valid := `{"contradictions": [{"topic": "location", "complainant_version": "in his office", "accused_version": "in the open workspace"}], "agreements": ["a meeting took place"], "evidence_gaps": ["no calendar entry submitted"], "summary": "Accounts diverge on location.", "credibility_leaning": "inconclusive"}`

	got, err := parseComparisonPayload(valid)
	require.NoError(t, err)

	require.Len(t, got.Contradictions, 1)
	assert.Equal(t, "location", got.Contradictions[0].Topic)
	assert.Equal(t, LeaningInconclusive, got.CredibilityLeaning)
}

func TestParseComparisonPayloadNilSlicesBecomeEmpty(t *testing.T) {
	raw := `{"summary": "ok", "credibility_leaning": "complainant"}`

	got, err := parseComparisonPayload(raw)
	require.NoError(t, err)

	assert.NotNil(t, got.Contradictions)
	assert.NotNil(t, got.Agreements)
	assert.NotNil(t, got.EvidenceGaps)
}

func TestParseComparisonPayloadRejections(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing summary", `{"credibility_leaning": "accused"}`},
		{"unknown leaning", `{"summary": "ok", "credibility_leaning": "both"}`},
		{"contradiction missing field", `{"summary": "ok", "credibility_leaning": "accused", "contradictions": [{"topic": "time"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseComparisonPayload(tt.raw)
			assert.Error(t, err)
		})
	}
}
