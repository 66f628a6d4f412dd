package visualize_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/outlier/pkg/anomaly"
	"github.com/Sumatoshi-tech/outlier/pkg/visualize"
)

// spikyReport builds a report over a flat-then-spiky stream: 20 ones, a
// spike at 20, jitter afterwards, and a second spike at 40.
func spikyReport(t *testing.T) *anomaly.Report {
	t.Helper()

	stream := make([]float64, 60)
	for i := range stream {
		stream[i] = 1
		if i > 20 {
			stream[i] += 0.01 * float64(i%3)
		}
	}

	stream[20] = 50
	stream[40] = 80

	opts := anomaly.DefaultOptions()
	opts.WindowSize = 5

	res, err := anomaly.Run(stream, opts)
	require.NoError(t, err)

	return anomaly.BuildReport(stream, res)
}

func render(t *testing.T, format visualize.Format, opts visualize.Options, report *anomaly.Report) string {
	t.Helper()

	r, err := visualize.New(format, opts)
	require.NoError(t, err)

	var buf bytes.Buffer

	require.NoError(t, r.Render(&buf, report))

	return buf.String()
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want visualize.Format
	}{
		{"text", visualize.FormatText},
		{"JSON", visualize.FormatJSON},
		{" yaml ", visualize.FormatYAML},
		{"plot", visualize.FormatPlot},
		{"html", visualize.FormatPlot},
	}

	for _, tt := range tests {
		got, err := visualize.ParseFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := visualize.ParseFormat("csv")
	require.ErrorIs(t, err, visualize.ErrUnknownFormat)
}

func TestNew_Unknown(t *testing.T) {
	t.Parallel()

	_, err := visualize.New("svg", visualize.DefaultOptions())
	require.ErrorIs(t, err, visualize.ErrUnknownFormat)

	_, err = visualize.New(visualize.FormatPlot, visualize.Options{Theme: "sepia"})
	require.ErrorIs(t, err, visualize.ErrUnknownFormat)
}

func TestParseTheme(t *testing.T) {
	t.Parallel()

	theme, err := visualize.ParseTheme("")
	require.NoError(t, err)
	assert.Equal(t, visualize.ThemeDark, theme)

	theme, err = visualize.ParseTheme("Light")
	require.NoError(t, err)
	assert.Equal(t, visualize.ThemeLight, theme)
}

func TestTextRenderer(t *testing.T) {
	t.Parallel()

	report := spikyReport(t)
	require.NotEmpty(t, report.Anomalies)

	out := render(t, visualize.FormatText, visualize.Options{}, report)

	assert.Contains(t, out, "=== ANOMALY DETECTION ===")
	assert.Contains(t, out, "Mode: windowed | Window: 5 | Threshold: 3")
	assert.Contains(t, out, "Samples: 60")
	assert.Contains(t, out, "flat window")
	assert.Contains(t, out, "Total: ")
	assert.NotContains(t, out, "\x1b[", "colors must be off")
	assert.NotContains(t, out, "Evaluation:")
}

func TestTextRenderer_MaxRowsAndEvaluation(t *testing.T) {
	t.Parallel()

	report := spikyReport(t).WithGroundTruth([]int{20, 40})

	out := render(t, visualize.FormatText, visualize.Options{MaxRows: 1}, report)

	assert.Contains(t, out, "not shown")
	assert.Contains(t, out, "Evaluation: precision")
}

func TestTextRenderer_NoAnomalies(t *testing.T) {
	t.Parallel()

	res, err := anomaly.Run([]float64{1, 2, 3}, anomaly.DefaultOptions())
	require.NoError(t, err)

	out := render(t, visualize.FormatText, visualize.Options{}, anomaly.BuildReport([]float64{1, 2, 3}, res))

	assert.Contains(t, out, "No anomalies detected")
	assert.Contains(t, out, "Evaluated: 0")
	assert.NotContains(t, out, "Highest |z|")
}

func TestTextRenderer_Colors(t *testing.T) {
	t.Parallel()

	out := render(t, visualize.FormatText, visualize.Options{Color: true}, spikyReport(t))

	// fatih/color also honours NO_COLOR and terminal detection, so only
	// check the plain content survives.
	assert.Contains(t, out, "ANOMALY DETECTION")
}

func TestJSONRenderer(t *testing.T) {
	t.Parallel()

	report := spikyReport(t).WithGroundTruth([]int{20})
	out := render(t, visualize.FormatJSON, visualize.DefaultOptions(), report)

	var decoded struct {
		Options struct {
			Mode       string  `json:"mode"`
			WindowSize int     `json:"window_size"`
			Threshold  float64 `json:"threshold"`
		} `json:"options"`
		Samples    []float64           `json:"samples"`
		Anomalies  []anomaly.Record    `json:"anomalies"`
		Summary    anomaly.Summary     `json:"summary"`
		Evaluation *anomaly.Evaluation `json:"evaluation"`
	}

	require.NoError(t, json.Unmarshal([]byte(out), &decoded))

	assert.Equal(t, "windowed", decoded.Options.Mode)
	assert.Equal(t, 5, decoded.Options.WindowSize)
	assert.Len(t, decoded.Samples, 60)
	assert.Equal(t, report.Anomalies, decoded.Anomalies)
	assert.Equal(t, report.Summary.TotalAnomalies, decoded.Summary.TotalAnomalies)
	require.NotNil(t, decoded.Evaluation)
	assert.NotContains(t, out, "Inf")
}

func TestYAMLRenderer(t *testing.T) {
	t.Parallel()

	report := spikyReport(t)
	out := render(t, visualize.FormatYAML, visualize.DefaultOptions(), report)

	var decoded map[string]any

	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Contains(t, decoded, "summary")
	assert.Contains(t, decoded, "anomalies")
	assert.NotContains(t, decoded, "evaluation")
	assert.True(t, strings.HasPrefix(out, "options:"))
}

func TestPlotRenderer(t *testing.T) {
	t.Parallel()

	for _, theme := range []visualize.Theme{visualize.ThemeDark, visualize.ThemeLight} {
		out := render(t, visualize.FormatPlot, visualize.Options{Theme: theme, Band: true}, spikyReport(t))

		assert.Contains(t, out, "<html")
		assert.Contains(t, out, "outlier report")
		assert.Contains(t, out, "Stream with Anomalies")
		assert.Contains(t, out, "Upper bound")
		assert.Contains(t, out, "+threshold")
	}

	out := render(t, visualize.FormatPlot, visualize.Options{Band: false}, spikyReport(t))
	assert.NotContains(t, out, "Upper bound")
}
