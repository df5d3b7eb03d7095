package evaluation

import (
	"time"

	"go.uber.org/zap"

	"github.com/safesphere/backend/internal/analysis"
	"github.com/safesphere/backend/internal/metrics"
	"github.com/safesphere/backend/internal/storage/models"
	"github.com/safesphere/backend/internal/storage/sqlite"
	"github.com/safesphere/backend/pkg/logger"
)

// Recorder tracks how far AI-produced severity scores drift from the
// keyword heuristic. Samples are only taken when the AI path succeeds;
// heuristic-sourced analyses have nothing to compare against.
type Recorder struct {
	db *sqlite.Client
}

func NewRecorder(db *sqlite.Client) *Recorder {
	return &Recorder{db: db}
}

// Record stores one calibration sample. Failures are logged and
// swallowed; calibration must never affect the request path.
func (r *Recorder) Record(analysisID string, local, ai analysis.SeverityAnalysis) {
	delta := ai.SeverityScore - local.SeverityScore
	if delta < 0 {
		delta = -delta
	}

	metrics.CalibrationDelta.Observe(float64(delta))

	if r.db == nil {
		return
	}

	sample := &models.CalibrationSample{
		AnalysisID:     analysisID,
		HeuristicScore: local.SeverityScore,
		AIScore:        ai.SeverityScore,
		ScoreDelta:     delta,
		RiskAgreement:  local.RiskLevel == ai.RiskLevel,
		CreatedAt:      time.Now(),
	}

	err := r.db.InsertCalibrationSample(sample)
	if err != nil {
		logger.Warn("Failed to store calibration sample",
			zap.String("analysis_id", analysisID),
			zap.Error(err),
		)
		return
	}

	logger.Debug("Calibration sample recorded",
		zap.Int("delta", delta),
		zap.Bool("risk_agreement", sample.RiskAgreement),
	)
}
