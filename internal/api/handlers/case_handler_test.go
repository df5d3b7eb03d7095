package handlers

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safesphere/backend/internal/analysis"
	"github.com/safesphere/backend/internal/escalation"
)

func testCaseApp() *fiber.App {
	h := NewCaseHandler(analysis.NewAnalyzer(nil), escalation.NewPlanner(nil), nil)

	app := fiber.New()
	app.Post("/api/v1/cases/credibility", h.HandleCredibility)
	app.Post("/api/v1/cases/comparison", h.HandleComparison)
	app.Post("/api/v1/cases/escalation", h.HandleEscalation)
	app.Post("/api/v1/cases/record", h.HandleRecordCase)
	app.Get("/api/v1/cases/patterns/:accused_id", h.GetAccusationPattern)

	return app
}

func postCase(t *testing.T, app *fiber.App, path, body string) (map[string]interface{}, int) {
	t.Helper()

	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &parsed))
	return parsed, resp.StatusCode
}

func TestHandleCredibilityNeutralWithoutProvider(t *testing.T) {
	app := testCaseApp()

	body := `{"complainant_statement": "He touched me without consent.", "accused_statement": "Nothing happened."}`
	got, status := postCase(t, app, "/api/v1/cases/credibility", body)

	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 5.0, got["overall_score"])
}

func TestHandleCredibilityRequiresComplainantStatement(t *testing.T) {
	app := testCaseApp()

	_, status := postCase(t, app, "/api/v1/cases/credibility", `{"accused_statement": "x"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestHandleComparisonNeutralWithoutProvider(t *testing.T) {
	app := testCaseApp()

	body := `{"complainant_statement": "a", "accused_statement": "b"}`
	got, status := postCase(t, app, "/api/v1/cases/comparison", body)

	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "inconclusive", got["credibility_leaning"])
}

func TestHandleComparisonRequiresBothStatements(t *testing.T) {
	app := testCaseApp()

	_, status := postCase(t, app, "/api/v1/cases/comparison", `{"complainant_statement": "a"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestHandleEscalation(t *testing.T) {
	app := testCaseApp()

	got, status := postCase(t, app, "/api/v1/cases/escalation", `{"category": "physical", "severity_score": 9}`)

	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "critical", got["risk_level"])

	plan, ok := got["plan"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, plan["requires_icc_review"])
}

func TestHandleEscalationValidation(t *testing.T) {
	app := testCaseApp()

	tests := []struct {
		name string
		body string
	}{
		{"bad category", `{"category": "other", "severity_score": 5}`},
		{"score too low", `{"category": "verbal", "severity_score": 0}`},
		{"score too high", `{"category": "verbal", "severity_score": 11}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, status := postCase(t, app, "/api/v1/cases/escalation", tt.body)
			assert.Equal(t, fiber.StatusBadRequest, status)
		})
	}
}

func TestHandleRecordCaseUnavailableWithoutGraph(t *testing.T) {
	app := testCaseApp()

	body := `{"complaint_id": "c1", "complainant_id": "p1", "accused_id": "p2", "org_id": "o1", "risk_level": "high"}`
	_, status := postCase(t, app, "/api/v1/cases/record", body)

	assert.Equal(t, fiber.StatusServiceUnavailable, status)
}

func TestGetAccusationPatternRequiresOrgID(t *testing.T) {
	app := testCaseApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/cases/patterns/p2", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
