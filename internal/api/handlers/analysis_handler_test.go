package handlers

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/safesphere/backend/internal/analysis"
	"github.com/safesphere/backend/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

// Handlers run against a nil database, cache and provider: everything
// must still answer from the local path.
func testAnalysisApp() *fiber.App {
	h := NewAnalysisHandler(analysis.NewAnalyzer(nil), nil, nil, nil)

	app := fiber.New()
	app.Post("/api/v1/analysis", h.HandleAnalyze)
	app.Post("/api/v1/analysis/live", h.HandleLiveAnalyze)
	app.Get("/api/v1/analysis/history", h.GetHistory)
	app.Post("/api/v1/feedback", h.HandleFeedback)

	return app
}

func postAnalysis(t *testing.T, app *fiber.App, path, body string) (*analyzeResponse, int) {
	t.Helper()

	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	if resp.StatusCode != fiber.StatusOK {
		return nil, resp.StatusCode
	}

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var parsed analyzeResponse
	require.NoError(t, json.Unmarshal(raw, &parsed))
	return &parsed, resp.StatusCode
}

func TestHandleAnalyzeHeuristicPath(t *testing.T) {
	app := testAnalysisApp()

	body := `{"description": "He cornered me and threatened to fire me", "category": "verbal", "user_id": "u1", "org_id": "o1"}`
	got, status := postAnalysis(t, app, "/api/v1/analysis", body)

	require.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, analysis.SourceHeuristic, got.Source)
	assert.Equal(t, 7, got.Analysis.SeverityScore)
	assert.Equal(t, analysis.RiskHigh, got.Analysis.RiskLevel)
}

func TestHandleAnalyzeValidation(t *testing.T) {
	app := testAnalysisApp()

	tests := []struct {
		name string
		body string
	}{
		{"missing description", `{"category": "verbal"}`},
		{"missing category", `{"description": "something happened"}`},
		{"unknown category", `{"description": "something happened", "category": "financial"}`},
		{"malformed json", `{"description":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, status := postAnalysis(t, app, "/api/v1/analysis", tt.body)
			assert.Equal(t, fiber.StatusBadRequest, status)
		})
	}
}

func TestHandleLiveAnalyze(t *testing.T) {
	app := testAnalysisApp()

	body := `{"description": "He made an awkward joke once, probably a misunderstanding", "category": "verbal"}`
	got, status := postAnalysis(t, app, "/api/v1/analysis/live", body)

	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 2, got.Analysis.SeverityScore)
	assert.Equal(t, analysis.RiskLow, got.Analysis.RiskLevel)
}

func TestGetHistoryRequiresUserID(t *testing.T) {
	app := testAnalysisApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/analysis/history", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/v1/analysis/history?user_id=u1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestHandleFeedbackRequiresRecordID(t *testing.T) {
	app := testAnalysisApp()

	req := httptest.NewRequest("POST", "/api/v1/feedback", strings.NewReader(`{"helpful": true}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
