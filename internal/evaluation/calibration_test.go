package evaluation

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/safesphere/backend/internal/analysis"
	"github.com/safesphere/backend/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

func TestRecordWithoutDatabaseIsANoOp(t *testing.T) {
	r := NewRecorder(nil)

	local := analysis.SeverityAnalysis{SeverityScore: 4, RiskLevel: analysis.RiskMedium}
	ai := analysis.SeverityAnalysis{SeverityScore: 7, RiskLevel: analysis.RiskHigh}

	assert.NotPanics(t, func() {
		r.Record("a1", local, ai)
		r.Record("a2", ai, local)
	})
}
