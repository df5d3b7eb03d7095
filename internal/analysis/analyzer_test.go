package analysis

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/safesphere/backend/internal/llm"
	"github.com/safesphere/backend/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

func TestAnalyzeWithoutProviderMatchesClassifier(t *testing.T) {
	analyzer := NewAnalyzer(nil)
	description := "He cornered me and threatened to fire me"

	outcome := analyzer.Analyze(context.Background(), description, CategoryVerbal)

	// The fallback must be exactly the classifier's output, untouched.
	assert.Equal(t, Classify(description, CategoryVerbal), outcome.Analysis)
	assert.Equal(t, outcome.Local, outcome.Analysis)
	assert.Equal(t, SourceHeuristic, outcome.Source)
}

// fakeCompletionServer answers the chat completions API with a fixed
// handler, so a configured client can be driven through its failure
// paths without a real provider.
func fakeCompletionServer(t *testing.T, handler http.HandlerFunc) *llm.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return llm.NewClientWithBaseURL("test-key", srv.URL+"/v1", "gpt-4o-mini", "text-embedding-3-small", 0.2, 400, 5)
}

func TestAnalyzeWithConfiguredProviderFallsBack(t *testing.T) {
	description := "He cornered me and threatened to fire me"
	want := Classify(description, CategoryVerbal)

	t.Run("model returns prose instead of the payload", func(t *testing.T) {
		client := fakeCompletionServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"cmpl-1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"The severity here is clearly high, escalate at once."},"finish_reason":"stop"}],"usage":{"prompt_tokens":10,"completion_tokens":12,"total_tokens":22}}`))
		})

		outcome := NewAnalyzer(client).Analyze(context.Background(), description, CategoryVerbal)

		assert.Equal(t, want, outcome.Analysis)
		assert.Equal(t, SourceHeuristic, outcome.Source)
	})

	t.Run("provider errors on every attempt", func(t *testing.T) {
		client := fakeCompletionServer(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream unavailable", http.StatusInternalServerError)
		})

		outcome := NewAnalyzer(client).Analyze(context.Background(), description, CategoryVerbal)

		assert.Equal(t, want, outcome.Analysis)
		assert.Equal(t, outcome.Local, outcome.Analysis)
		assert.Equal(t, SourceHeuristic, outcome.Source)
	})
}

func TestAssessCredibilityWithoutProviderIsNeutral(t *testing.T) {
	analyzer := NewAnalyzer(nil)

	got := analyzer.AssessCredibility(context.Background(), "statement a", "statement b", nil)

	assert.Equal(t, NeutralCredibility(), got)
	assert.Equal(t, 5.0, got.OverallScore)
	assert.Equal(t, 5.0, got.Dimensions.Consistency)
	assert.Equal(t, 5.0, got.Dimensions.TimelineCoherence)
	assert.NotNil(t, got.Flags)
	assert.Empty(t, got.Flags)
	assert.NotEmpty(t, got.Summary)
}

func TestCompareStatementsWithoutProviderIsNeutral(t *testing.T) {
	analyzer := NewAnalyzer(nil)

	got := analyzer.CompareStatements(context.Background(), "statement a", "statement b")

	assert.Equal(t, NeutralComparison(), got)
	assert.Equal(t, LeaningInconclusive, got.CredibilityLeaning)
	assert.NotNil(t, got.Contradictions)
	assert.Empty(t, got.Contradictions)
	assert.NotEmpty(t, got.Summary)
}

func TestCategoryValid(t *testing.T) {
	assert.True(t, CategoryVerbal.Valid())
	assert.True(t, CategoryPhysical.Valid())
	assert.True(t, CategoryCyber.Valid())
	assert.True(t, CategoryQuidProQuo.Valid())
	assert.False(t, Category("").Valid())
	assert.False(t, Category("other").Valid())
}
