package observability_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/outlier/pkg/observability"
)

func TestPrometheusSnapshot_ExposesDetectionMetrics(t *testing.T) {
	t.Parallel()

	snapshot, err := observability.NewPrometheusSnapshot()
	require.NoError(t, err)

	cfg := observability.DefaultConfig()
	cfg.MetricReaders = append(cfg.MetricReaders, snapshot.Reader())

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	dm, err := observability.NewDetectionMetrics(providers.Meter)
	require.NoError(t, err)

	dm.RecordRun(context.Background(), observability.DetectionStats{
		Mode:      "windowed",
		Samples:   100,
		Evaluated: 50,
		Anomalies: 4,
		Duration:  time.Millisecond,
	})

	var buf bytes.Buffer

	n, err := snapshot.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	body := buf.String()
	assert.Contains(t, body, "target_info")
	assert.Contains(t, body, "outlier_anomalies")
	assert.Contains(t, body, `mode="windowed"`)

	path := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, snapshot.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "outlier_anomalies")

	require.NoError(t, providers.Shutdown(context.Background()))
}
