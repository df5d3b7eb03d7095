package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// The model is asked for strict JSON but routinely wraps it in Markdown
// code fences; strip those before parsing. Anything else malformed is a
// parse failure and the caller falls back.
func stripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// severityPayload mirrors the JSON shape requested from the model.
// Pointer fields distinguish "absent" from zero values so that a
// missing field is rejected instead of silently defaulted.
type severityPayload struct {
	Sentiment         *string  `json:"sentiment"`
	SeverityScore     *float64 `json:"severity_score"`
	Keywords          []string `json:"keywords"`
	EmotionalState    *string  `json:"emotional_state"`
	RecommendedAction *string  `json:"recommended_action"`
}

// parseSeverityPayload validates an externally-sourced analysis. The
// category always echoes the input and the risk level is re-derived
// from the score; neither is trusted from the model.
func parseSeverityPayload(raw string, category Category) (*SeverityAnalysis, error) {
	var payload severityPayload
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &payload); err != nil {
		return nil, fmt.Errorf("unparseable analysis payload: %w", err)
	}

	if payload.Sentiment == nil || payload.SeverityScore == nil ||
		payload.EmotionalState == nil || payload.RecommendedAction == nil {
		return nil, fmt.Errorf("analysis payload missing required fields")
	}

	sentiment := Sentiment(*payload.Sentiment)
	switch sentiment {
	case SentimentNegative, SentimentDistressed, SentimentNeutral, SentimentMixed:
	default:
		return nil, fmt.Errorf("unknown sentiment %q", *payload.Sentiment)
	}

	rawScore := *payload.SeverityScore
	if rawScore != math.Trunc(rawScore) {
		return nil, fmt.Errorf("severity score %v is not an integer", rawScore)
	}
	score := int(rawScore)
	if score < 1 || score > 10 {
		return nil, fmt.Errorf("severity score %d out of range", score)
	}

	if *payload.EmotionalState == "" || *payload.RecommendedAction == "" {
		return nil, fmt.Errorf("analysis payload has empty descriptive fields")
	}

	keywords := payload.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}

	return &SeverityAnalysis{
		Sentiment:         sentiment,
		SeverityScore:     score,
		Category:          category,
		Keywords:          keywords,
		RiskLevel:         RiskLevelForScore(score),
		EmotionalState:    *payload.EmotionalState,
		RecommendedAction: *payload.RecommendedAction,
	}, nil
}

type credibilityPayload struct {
	OverallScore *float64 `json:"overall_score"`
	Dimensions   *struct {
		Consistency         *float64 `json:"consistency"`
		Specificity         *float64 `json:"specificity"`
		Plausibility        *float64 `json:"plausibility"`
		Corroboration       *float64 `json:"corroboration"`
		EmotionalCongruence *float64 `json:"emotional_congruence"`
		TimelineCoherence   *float64 `json:"timeline_coherence"`
	} `json:"dimensions"`
	Summary *string  `json:"summary"`
	Flags   []string `json:"flags"`
}

func parseCredibilityPayload(raw string) (*CredibilityAssessment, error) {
	var payload credibilityPayload
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &payload); err != nil {
		return nil, fmt.Errorf("unparseable credibility payload: %w", err)
	}

	if payload.OverallScore == nil || payload.Dimensions == nil || payload.Summary == nil {
		return nil, fmt.Errorf("credibility payload missing required fields")
	}

	d := payload.Dimensions
	dims := []*float64{
		d.Consistency, d.Specificity, d.Plausibility,
		d.Corroboration, d.EmotionalCongruence, d.TimelineCoherence,
	}
	for _, dim := range dims {
		if dim == nil {
			return nil, fmt.Errorf("credibility payload missing a dimension")
		}
		if *dim < 0 || *dim > 10 {
			return nil, fmt.Errorf("credibility dimension %v out of range", *dim)
		}
	}
	if *payload.OverallScore < 0 || *payload.OverallScore > 10 {
		return nil, fmt.Errorf("overall credibility score %v out of range", *payload.OverallScore)
	}

	flags := payload.Flags
	if flags == nil {
		flags = []string{}
	}

	return &CredibilityAssessment{
		OverallScore: *payload.OverallScore,
		Dimensions: CredibilityDimensions{
			Consistency:         *d.Consistency,
			Specificity:         *d.Specificity,
			Plausibility:        *d.Plausibility,
			Corroboration:       *d.Corroboration,
			EmotionalCongruence: *d.EmotionalCongruence,
			TimelineCoherence:   *d.TimelineCoherence,
		},
		Summary: *payload.Summary,
		Flags:   flags,
	}, nil
}

type comparisonPayload struct {
	Contradictions []struct {
		Topic              *string `json:"topic"`
		ComplainantVersion *string `json:"complainant_version"`
		AccusedVersion     *string `json:"accused_version"`
	} `json:"contradictions"`
	Agreements         []string `json:"agreements"`
	EvidenceGaps       []string `json:"evidence_gaps"`
	Summary            *string  `json:"summary"`
	CredibilityLeaning *string  `json:"credibility_leaning"`
}

func parseComparisonPayload(raw string) (*StatementComparison, error) {
	var payload comparisonPayload
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &payload); err != nil {
		return nil, fmt.Errorf("unparseable comparison payload: %w", err)
	}

	if payload.Summary == nil || payload.CredibilityLeaning == nil {
		return nil, fmt.Errorf("comparison payload missing required fields")
	}

	leaning := Leaning(*payload.CredibilityLeaning)
	switch leaning {
	case LeaningComplainant, LeaningAccused, LeaningInconclusive:
	default:
		return nil, fmt.Errorf("unknown credibility leaning %q", *payload.CredibilityLeaning)
	}

	contradictions := make([]Contradiction, 0, len(payload.Contradictions))
	for _, c := range payload.Contradictions {
		if c.Topic == nil || c.ComplainantVersion == nil || c.AccusedVersion == nil {
			return nil, fmt.Errorf("contradiction entry missing fields")
		}
		contradictions = append(contradictions, Contradiction{
			Topic:              *c.Topic,
			ComplainantVersion: *c.ComplainantVersion,
			AccusedVersion:     *c.AccusedVersion,
		})
	}

	agreements := payload.Agreements
	if agreements == nil {
		agreements = []string{}
	}
	gaps := payload.EvidenceGaps
	if gaps == nil {
		gaps = []string{}
	}

	return &StatementComparison{
		Contradictions:     contradictions,
		Agreements:         agreements,
		EvidenceGaps:       gaps,
		Summary:            *payload.Summary,
		CredibilityLeaning: leaning,
	}, nil
}
