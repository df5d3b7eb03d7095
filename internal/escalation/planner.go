package escalation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/safesphere/backend/internal/analysis"
	"github.com/safesphere/backend/internal/llm"
	"github.com/safesphere/backend/internal/metrics"
	"github.com/safesphere/backend/pkg/logger"
)

// Planner produces the procedural escalation plan attached to a case.
// Like the analyzers, it never fails: if the model cannot produce a
// usable plan, the fixed plan for the case's risk level is returned.
type Planner struct {
	llmClient *llm.Client
}

type Plan struct {
	Steps             []Step `json:"steps"`
	RequiresICCReview bool   `json:"requires_icc_review"`
	Rationale         string `json:"rationale"`
}

type Step struct {
	Order         int    `json:"order"`
	Action        string `json:"action"`
	Owner         string `json:"owner"`
	DeadlineHours int    `json:"deadline_hours"`
}

func NewPlanner(llmClient *llm.Client) *Planner {
	return &Planner{llmClient: llmClient}
}

const planSystemPrompt = `You are assisting an Internal Complaints Committee (ICC) operating under the POSH Act, 2013. Given a complaint category, severity score and risk level, produce a procedural escalation plan.

Rules:
1. Steps must be procedural (notify, document, schedule, protect), never investigative conclusions.
2. Deadlines follow the Act: acknowledgment within 7 days, inquiry completion within 90 days.
3. High and critical risk always requires ICC review.
4. Never recommend confronting the respondent directly.

Return strict JSON only:
{
  "steps": [
    {"order": 1, "action": "...", "owner": "icc_chair", "deadline_hours": 24}
  ],
  "requires_icc_review": true,
  "rationale": "one sentence"
}

Valid owners: icc_chair, icc_member, hr, complainant_liaison.`

// PlanEscalation returns the escalation plan for a case. The returned
// plan is always usable; err is never returned.
func (p *Planner) PlanEscalation(ctx context.Context, category analysis.Category, severityScore int, riskLevel analysis.RiskLevel) *Plan {
	if p.llmClient == nil || !p.llmClient.Configured() {
		return defaultPlan(riskLevel)
	}

	userPrompt := fmt.Sprintf(`Category: %s
Severity score: %d
Risk level: %s

Produce the escalation plan. Return JSON only.`, category, severityScore, riskLevel)

	resp, err := p.llmClient.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: planSystemPrompt,
		UserPrompt:   userPrompt,
		Temperature:  0.1,
		MaxTokens:    800,
	})
	if err != nil {
		logger.Warn("Escalation planning failed, using default plan",
			zap.String("risk_level", string(riskLevel)),
			zap.Error(err),
		)
		metrics.FallbackTotal.WithLabelValues("escalation").Inc()
		return defaultPlan(riskLevel)
	}

	plan, err := parsePlan(resp.Content, riskLevel)
	if err != nil {
		logger.Warn("Escalation plan response unusable, using default plan", zap.Error(err))
		metrics.FallbackTotal.WithLabelValues("escalation").Inc()
		return defaultPlan(riskLevel)
	}

	logger.Info("Escalation plan created",
		zap.Int("steps", len(plan.Steps)),
		zap.Bool("requires_icc_review", plan.RequiresICCReview),
	)

	return plan
}

func parsePlan(content string, riskLevel analysis.RiskLevel) (*Plan, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var plan Plan
	err := json.Unmarshal([]byte(content), &plan)
	if err != nil {
		return nil, fmt.Errorf("failed to parse plan: %w", err)
	}

	if len(plan.Steps) == 0 {
		return nil, fmt.Errorf("plan has no steps")
	}
	for _, step := range plan.Steps {
		if step.Action == "" {
			return nil, fmt.Errorf("plan step missing action")
		}
	}

	// High and critical risk goes to the ICC regardless of what the
	// model said.
	if riskLevel == analysis.RiskHigh || riskLevel == analysis.RiskCritical {
		plan.RequiresICCReview = true
	}

	return &plan, nil
}

func defaultPlan(riskLevel analysis.RiskLevel) *Plan {
	switch riskLevel {
	case analysis.RiskCritical:
		return &Plan{
			Steps: []Step{
				{Order: 1, Action: "Notify ICC chair immediately and open a case file", Owner: "icc_chair", DeadlineHours: 4},
				{Order: 2, Action: "Assess complainant safety and arrange interim protection measures", Owner: "icc_chair", DeadlineHours: 24},
				{Order: 3, Action: "Issue written acknowledgment to the complainant", Owner: "complainant_liaison", DeadlineHours: 48},
				{Order: 4, Action: "Convene ICC to decide on interim relief including possible transfer or leave", Owner: "icc_chair", DeadlineHours: 72},
			},
			RequiresICCReview: true,
			Rationale:         "Critical-risk complaints require immediate ICC attention and interim protection.",
		}
	case analysis.RiskHigh:
		return &Plan{
			Steps: []Step{
				{Order: 1, Action: "Notify ICC chair and open a case file", Owner: "icc_chair", DeadlineHours: 24},
				{Order: 2, Action: "Issue written acknowledgment to the complainant", Owner: "complainant_liaison", DeadlineHours: 72},
				{Order: 3, Action: "Schedule initial ICC review of the complaint", Owner: "icc_member", DeadlineHours: 168},
			},
			RequiresICCReview: true,
			Rationale:         "High-risk complaints go to the ICC within the statutory acknowledgment window.",
		}
	case analysis.RiskMedium:
		return &Plan{
			Steps: []Step{
				{Order: 1, Action: "Record the complaint and assign an ICC member for preliminary review", Owner: "icc_member", DeadlineHours: 72},
				{Order: 2, Action: "Issue written acknowledgment to the complainant", Owner: "complainant_liaison", DeadlineHours: 168},
			},
			RequiresICCReview: false,
			Rationale:         "Medium-risk complaints enter the standard ICC intake queue.",
		}
	default:
		return &Plan{
			Steps: []Step{
				{Order: 1, Action: "Record the complaint and acknowledge receipt", Owner: "hr", DeadlineHours: 168},
			},
			RequiresICCReview: false,
			Rationale:         "Low-risk complaints are recorded and acknowledged through HR intake.",
		}
	}
}
