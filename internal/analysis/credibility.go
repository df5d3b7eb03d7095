package analysis

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/safesphere/backend/internal/llm"
	"github.com/safesphere/backend/internal/metrics"
	"github.com/safesphere/backend/pkg/logger"
)

// There is no safe keyword heuristic for weighing two conflicting
// narratives, so the fallback for credibility and comparison is a fixed
// neutral record. The all-5s / inconclusive values are deliberately
// synthetic: downstream consumers must read them as "no analysis was
// possible", never as "verified neutral".

const neutralCredibilitySummary = "Automated credibility analysis was not available for this case. The neutral scores below carry no evidential weight; the ICC should evaluate both statements directly."

const neutralComparisonSummary = "Automated statement comparison was not available for this case. Both statements should be reviewed side by side by the ICC."

const neutralDimensionScore = 5.0

func NeutralCredibility() CredibilityAssessment {
	return CredibilityAssessment{
		OverallScore: neutralDimensionScore,
		Dimensions: CredibilityDimensions{
			Consistency:         neutralDimensionScore,
			Specificity:         neutralDimensionScore,
			Plausibility:        neutralDimensionScore,
			Corroboration:       neutralDimensionScore,
			EmotionalCongruence: neutralDimensionScore,
			TimelineCoherence:   neutralDimensionScore,
		},
		Summary: neutralCredibilitySummary,
		Flags:   []string{},
	}
}

func NeutralComparison() StatementComparison {
	return StatementComparison{
		Contradictions:     []Contradiction{},
		Agreements:         []string{},
		EvidenceGaps:       []string{},
		Summary:            neutralComparisonSummary,
		CredibilityLeaning: LeaningInconclusive,
	}
}

const credibilitySystemPrompt = `You are assisting a trained ICC (Internal Complaints Committee) investigating a workplace harassment case. Assess the credibility of the two statements below. This is advisory input for human investigators, never a verdict.

Score each dimension 0-10 (10 = strongly supports credibility of the complainant's account):
consistency, specificity, plausibility, corroboration, emotional_congruence, timeline_coherence.

Respond with ONLY a JSON object, no prose:
{"overall_score": <0-10>, "dimensions": {"consistency": <0-10>, "specificity": <0-10>, "plausibility": <0-10>, "corroboration": <0-10>, "emotional_congruence": <0-10>, "timeline_coherence": <0-10>}, "summary": "<2-3 sentences>", "flags": ["notable concerns, may be empty"]}`

// AssessCredibility returns the model's assessment or the fixed neutral
// record on any failure. It never returns an error.
func (a *Analyzer) AssessCredibility(ctx context.Context, complainant, accused string, evidence []string) CredibilityAssessment {
	if a.llm == nil || !a.llm.Configured() {
		return NeutralCredibility()
	}

	evidenceList := "none provided"
	if len(evidence) > 0 {
		evidenceList = "- " + strings.Join(evidence, "\n- ")
	}

	userPrompt := fmt.Sprintf("Complainant's statement:\n%s\n\nRespondent's statement:\n%s\n\nEvidence submitted:\n%s",
		complainant, accused, evidenceList)

	resp, err := a.llm.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: credibilitySystemPrompt,
		UserPrompt:   userPrompt,
		Temperature:  0.2,
		MaxTokens:    600,
	})
	if err != nil {
		logger.Warn("credibility assessment unavailable, returning neutral record", zap.Error(err))
		metrics.FallbackTotal.WithLabelValues("credibility").Inc()
		return NeutralCredibility()
	}

	metrics.LLMTokensUsed.WithLabelValues(a.llm.Model(), "credibility").Add(float64(resp.Usage.TotalTokens))

	assessment, err := parseCredibilityPayload(resp.Content)
	if err != nil {
		logger.Warn("credibility payload rejected, returning neutral record", zap.Error(err))
		metrics.FallbackTotal.WithLabelValues("credibility").Inc()
		return NeutralCredibility()
	}

	return *assessment
}

const comparisonSystemPrompt = `You are assisting a trained ICC (Internal Complaints Committee) investigating a workplace harassment case. Compare the complainant's and respondent's statements side by side.

Respond with ONLY a JSON object, no prose:
{"contradictions": [{"topic": "<what they disagree about>", "complainant_version": "<their account>", "accused_version": "<their account>"}], "agreements": ["points both accounts agree on"], "evidence_gaps": ["missing evidence that would resolve the dispute"], "summary": "<2-3 sentences>", "credibility_leaning": "complainant|accused|inconclusive"}`

// CompareStatements returns the model's side-by-side comparison or the
// fixed neutral record on any failure. It never returns an error.
func (a *Analyzer) CompareStatements(ctx context.Context, complainant, accused string) StatementComparison {
	if a.llm == nil || !a.llm.Configured() {
		return NeutralComparison()
	}

	userPrompt := fmt.Sprintf("Complainant's statement:\n%s\n\nRespondent's statement:\n%s", complainant, accused)

	resp, err := a.llm.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: comparisonSystemPrompt,
		UserPrompt:   userPrompt,
		Temperature:  0.2,
		MaxTokens:    800,
	})
	if err != nil {
		logger.Warn("statement comparison unavailable, returning neutral record", zap.Error(err))
		metrics.FallbackTotal.WithLabelValues("comparison").Inc()
		return NeutralComparison()
	}

	metrics.LLMTokensUsed.WithLabelValues(a.llm.Model(), "comparison").Add(float64(resp.Usage.TotalTokens))

	comparison, err := parseComparisonPayload(resp.Content)
	if err != nil {
		logger.Warn("comparison payload rejected, returning neutral record", zap.Error(err))
		metrics.FallbackTotal.WithLabelValues("comparison").Inc()
		return NeutralComparison()
	}

	return *comparison
}
