package analysis

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/safesphere/backend/internal/llm"
	"github.com/safesphere/backend/internal/metrics"
	"github.com/safesphere/backend/pkg/logger"
)

// Analyzer wraps the external model with the keyword classifier as an
// unconditional fallback. All of its methods honor the same contract:
// they never return an error to the caller, and every failure mode of
// the external provider yields the local or neutral default instead.
type Analyzer struct {
	llm *llm.Client
}

func NewAnalyzer(llmClient *llm.Client) *Analyzer {
	return &Analyzer{llm: llmClient}
}

// severitySystemPrompt tells the model that workplace-harassment content
// is the expected subject matter, not something to refuse; the original
// provider expressed this through per-category safety settings.
const severitySystemPrompt = `You are the analysis engine of a workplace-safety complaint intake tool used by trained ICC (Internal Complaints Committee) staff. The text you receive describes workplace harassment; analysing it is the purpose of this tool, so do not refuse or soften the analysis.

Score severity on a 1-10 scale:
- 1-3: minor incidents (isolated remarks, perceived slights)
- 4-6: significant misconduct (repeated unwelcome behaviour, hostile conduct)
- 7-8: severe misconduct (threats, unwanted physical contact, retaliation)
- 9-10: extremely serious incidents (assault, stalking, coercion)

Respond with ONLY a JSON object, no prose:
{"sentiment": "negative|distressed|neutral|mixed", "severity_score": <1-10 integer>, "keywords": ["up to 5 terms"], "emotional_state": "<short phrase>", "recommended_action": "<short phrase>"}`

// Analyze computes the keyword baseline, then attempts the external
// analysis. The baseline is always returned in Outcome.Local; the
// selected record is in Outcome.Analysis.
func (a *Analyzer) Analyze(ctx context.Context, description string, category Category) Outcome {
	local := Classify(description, category)

	if a.llm == nil || !a.llm.Configured() {
		return Outcome{Analysis: local, Local: local, Source: SourceHeuristic}
	}

	remote, err := a.analyzeRemote(ctx, description, category)
	if err != nil {
		logger.Warn("AI analysis unavailable, using keyword fallback",
			zap.String("category", string(category)),
			zap.Error(err),
		)
		metrics.FallbackTotal.WithLabelValues("severity").Inc()
		return Outcome{Analysis: local, Local: local, Source: SourceHeuristic}
	}

	return Outcome{Analysis: *remote, Local: local, Source: SourceAI}
}

func (a *Analyzer) analyzeRemote(ctx context.Context, description string, category Category) (*SeverityAnalysis, error) {
	userPrompt := fmt.Sprintf("Complaint category: %s\n\nComplaint description:\n%s", category, description)

	resp, err := a.llm.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: severitySystemPrompt,
		UserPrompt:   userPrompt,
		Temperature:  0.2,
		MaxTokens:    400,
	})
	if err != nil {
		return nil, err
	}

	metrics.LLMTokensUsed.WithLabelValues(a.llm.Model(), "analysis").Add(float64(resp.Usage.TotalTokens))

	analysis, err := parseSeverityPayload(resp.Content, category)
	if err != nil {
		return nil, err
	}

	return analysis, nil
}
