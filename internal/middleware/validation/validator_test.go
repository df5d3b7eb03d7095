package validation

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testApp() *fiber.App {
	app := fiber.New()
	app.Use(Middleware(Config{
		MaxQuestionLength:    50,
		MaxDescriptionLength: 100,
		Logger:               zap.NewNop(),
	}))

	handler := func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	}
	app.Post("/api/v1/analysis", handler)
	app.Post("/api/v1/chat/ask", handler)
	app.Post("/api/v1/knowledge/documents", handler)
	app.Get("/api/v1/analysis/history", handler)
	app.Get("/api/v1/cases/patterns/:accused_id", handler)
	app.Get("/api/v1/health", handler)

	return app
}

func postJSON(app *fiber.App, path, body string) int {
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		return -1
	}
	return resp.StatusCode
}

func TestRejectsUnsupportedContentType(t *testing.T) {
	app := testApp()

	req := httptest.NewRequest("POST", "/api/v1/chat/ask", strings.NewReader("question=hi"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestChatQuestionValidation(t *testing.T) {
	app := testApp()

	tests := []struct {
		name string
		body string
		want int
	}{
		{"valid question", `{"question": "How do I file a complaint?"}`, fiber.StatusOK},
		{"missing question", `{"user_id": "u1"}`, fiber.StatusBadRequest},
		{"blank question", `{"question": "   "}`, fiber.StatusBadRequest},
		{"oversized question", `{"question": "` + strings.Repeat("a", 60) + `"}`, fiber.StatusBadRequest},
		{"script injection", `{"question": "<script>alert(1)</script>"}`, fiber.StatusBadRequest},
		{"malformed json", `{"question":`, fiber.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, postJSON(app, "/api/v1/chat/ask", tt.body))
		})
	}
}

func TestAnalysisDescriptionLengthCap(t *testing.T) {
	app := testApp()

	ok := `{"description": "short", "category": "verbal"}`
	tooLong := `{"description": "` + strings.Repeat("a", 150) + `", "category": "verbal"}`

	assert.Equal(t, fiber.StatusOK, postJSON(app, "/api/v1/analysis", ok))
	assert.Equal(t, fiber.StatusBadRequest, postJSON(app, "/api/v1/analysis", tooLong))
}

func TestAnalysisDescriptionNotContentScreened(t *testing.T) {
	// Complaint text is free form; words that look like markup or SQL
	// must not be rejected.
	app := testApp()

	body := `{"description": "he said he would delete my access and select someone else", "category": "verbal"}`

	assert.Equal(t, fiber.StatusOK, postJSON(app, "/api/v1/analysis", body))
}

func TestKnowledgeDocumentValidation(t *testing.T) {
	app := testApp()

	assert.Equal(t, fiber.StatusOK, postJSON(app, "/api/v1/knowledge/documents", `{"org_id": "o1", "content": "<p>policy</p>"}`))
	assert.Equal(t, fiber.StatusBadRequest, postJSON(app, "/api/v1/knowledge/documents", `{"org_id": "o1"}`))
}

func TestGetRoutesBypassBodyValidation(t *testing.T) {
	// History and pattern lookups share path prefixes with the POST
	// endpoints but carry no body; they must reach their handlers.
	app := testApp()

	for _, path := range []string{
		"/api/v1/analysis/history?user_id=u1",
		"/api/v1/cases/patterns/a1?org_id=o1",
	} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, path)
	}
}

func TestNilLoggerDefaultsToNop(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware(Config{}))
	app.Post("/api/v1/chat/ask", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	assert.Equal(t, fiber.StatusBadRequest, postJSON(app, "/api/v1/chat/ask", `{"question": "<script>alert(1)</script>"}`))
}

func TestUnmatchedPathsPassThrough(t *testing.T) {
	app := testApp()

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
