package anomaly

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/outlier/pkg/alg/stats"
)

func TestBuildReport_DegenerateSpike(t *testing.T) {
	t.Parallel()

	stream := append(make([]float64, 50), 100.0)

	res, err := Run(stream, DefaultOptions())
	require.NoError(t, err)

	report := BuildReport(stream, res)

	require.Len(t, report.Anomalies, 1)

	rec := report.Anomalies[0]
	assert.Equal(t, 50, rec.Index)
	assert.InDelta(t, 100.0, rec.Value, 1e-12)
	assert.True(t, rec.Degenerate)
	assert.InDelta(t, stats.ZScoreMaxSentinel, rec.ZScore, 1e-12)

	assert.Equal(t, 51, report.Summary.TotalPoints)
	assert.Equal(t, 1, report.Summary.Evaluated)
	assert.Equal(t, 1, report.Summary.TotalAnomalies)
	assert.InDelta(t, 100.0, report.Summary.AnomalyRate, 1e-9)
	assert.Equal(t, 1, report.Summary.DegenerateWindows)
	assert.InDelta(t, stats.ZScoreMaxSentinel, report.Summary.HighestAbsZScore, 1e-12)
	assert.InDelta(t, 100.0, report.Summary.Max, 1e-12)
	assert.InDelta(t, 0.0, report.Summary.Min, 1e-12)
}

func TestBuildReport_SerializesWithoutInfinities(t *testing.T) {
	t.Parallel()

	stream := append(make([]float64, 10), -3.0, 0, 0)

	res, err := Run(stream, Options{WindowSize: 10, Threshold: 3})
	require.NoError(t, err)

	data, err := json.Marshal(BuildReport(stream, res))
	require.NoError(t, err)

	assert.Contains(t, string(data), `"z_score":-100`)
	assert.NotContains(t, string(data), "means")
}

func TestBuildReport_NoEvaluatedSamples(t *testing.T) {
	t.Parallel()

	stream := []float64{1, 2, 3}

	res, err := Run(stream, Options{WindowSize: 10, Threshold: 3})
	require.NoError(t, err)

	report := BuildReport(stream, res)

	assert.Empty(t, report.Anomalies)
	assert.NotNil(t, report.Anomalies)
	assert.Zero(t, report.Summary.Evaluated)
	assert.Zero(t, report.Summary.AnomalyRate)
	assert.Zero(t, report.Summary.HighestAbsZScore)
	assert.InDelta(t, 2.0, report.Summary.Mean, 1e-12)
}

func TestReport_WithGroundTruth(t *testing.T) {
	t.Parallel()

	stream := jitter(120)
	stream[60] = 50
	stream[90] = 50

	res, err := Run(stream, Options{WindowSize: 20, Threshold: 3})
	require.NoError(t, err)

	report := BuildReport(stream, res).WithGroundTruth([]int{60, 90, 110})

	assert.Equal(t, []int{60, 90}, report.AnomalyIndices())
	require.NotNil(t, report.Evaluation)
	assert.Equal(t, 2, report.Evaluation.TruePositives)
	assert.Equal(t, 1, report.Evaluation.FalseNegatives)
	assert.Equal(t, []int{60, 90, 110}, report.Injected)
}
