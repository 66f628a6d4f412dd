package visualize

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/outlier/pkg/alg/stats"
	"github.com/Sumatoshi-tech/outlier/pkg/anomaly"
)

const (
	chartWidth       = "100%"
	signalHeight     = "520px"
	scoreHeight      = "320px"
	lineWidth        = 2
	anomalySymbol    = 10
	dataZoomEnd      = 100
	missingValue     = "-"
	pageTitle        = "outlier report"
	bandOpacity      = 0.6
	anomalySeriesTag = "Anomalies"
)

type plotRenderer struct {
	theme themeConfig
	band  bool
}

func newPlotRenderer(o Options) (Renderer, error) {
	theme, err := ParseTheme(string(o.Theme))
	if err != nil {
		return nil, err
	}

	return plotRenderer{theme: getThemeConfig(theme), band: o.Band}, nil
}

// Render writes a standalone HTML page with the signal chart and the
// z-score chart.
func (p plotRenderer) Render(w io.Writer, report *anomaly.Report) error {
	page := components.NewPage()
	page.PageTitle = pageTitle
	page.BackgroundColor = p.theme.Background
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(p.signalChart(report), p.scoreChart(report))

	err := page.Render(w)
	if err != nil {
		return fmt.Errorf("render plot: %w", err)
	}

	return nil
}

func (p plotRenderer) baseOptions(title, subtitle, height, yName string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			Width:           chartWidth,
			Height:          height,
			BackgroundColor: p.theme.Background,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:         title,
			Subtitle:      subtitle,
			Left:          "center",
			TitleStyle:    &opts.TextStyle{Color: p.theme.Text},
			SubtitleStyle: &opts.TextStyle{Color: p.theme.TextMuted},
		}),
		charts.WithLegendOpts(opts.Legend{
			Show:      opts.Bool(true),
			Top:       "12%",
			Left:      "center",
			TextStyle: &opts.TextStyle{Color: p.theme.TextMuted},
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(
			opts.DataZoom{Type: "slider", Start: 0, End: dataZoomEnd},
			opts.DataZoom{Type: "inside"},
		),
		charts.WithXAxisOpts(opts.XAxis{
			Name:      "Index",
			AxisLabel: &opts.AxisLabel{Color: p.theme.TextMuted},
			AxisLine:  &opts.AxisLine{LineStyle: &opts.LineStyle{Color: p.theme.Axis}},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:      yName,
			AxisLabel: &opts.AxisLabel{Color: p.theme.TextMuted},
			AxisLine:  &opts.AxisLine{LineStyle: &opts.LineStyle{Color: p.theme.Axis}},
			SplitLine: &opts.SplitLine{
				Show:      opts.Bool(true),
				LineStyle: &opts.LineStyle{Color: p.theme.Grid},
			},
		}),
		charts.WithGridOpts(opts.Grid{
			Top:          "25%",
			Bottom:       "15%",
			Left:         "5%",
			Right:        "5%",
			ContainLabel: opts.Bool(true),
		}),
	}
}

func (p plotRenderer) signalChart(report *anomaly.Report) *charts.Line {
	n := len(report.Samples)

	flagged := make(map[int]bool, len(report.Anomalies))
	for _, rec := range report.Anomalies {
		flagged[rec.Index] = true
	}

	signal := make([]opts.LineData, n)
	marks := make([]opts.LineData, n)

	for i, v := range report.Samples {
		signal[i] = opts.LineData{Value: v}

		if flagged[i] {
			marks[i] = opts.LineData{Value: v, Symbol: "circle", SymbolSize: anomalySymbol}
		} else {
			marks[i] = opts.LineData{Value: missingValue}
		}
	}

	subtitle := fmt.Sprintf("%s baseline, threshold %s", report.Options.Mode, formatFloat(report.Options.Threshold))
	if report.Options.Mode != anomaly.ModeGlobal {
		subtitle = fmt.Sprintf("window %d, threshold %s", report.Options.WindowSize, formatFloat(report.Options.Threshold))
	}

	line := charts.NewLine()
	line.SetGlobalOptions(p.baseOptions("Stream with Anomalies", subtitle, signalHeight, "Value")...)
	line.SetXAxis(indexLabels(n))

	line.AddSeries("Stream", signal,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: p.theme.Signal}),
		charts.WithLineStyleOpts(opts.LineStyle{Width: lineWidth}),
	)

	if p.band && len(report.Means) == n && len(report.StdDevs) == n {
		upper, lower := bandData(report)

		for _, s := range []struct {
			name string
			data []opts.LineData
		}{{"Upper bound", upper}, {"Lower bound", lower}} {
			line.AddSeries(s.name, s.data,
				charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
				charts.WithItemStyleOpts(opts.ItemStyle{Color: p.theme.Band}),
				charts.WithLineStyleOpts(opts.LineStyle{Width: 1, Type: "dashed", Opacity: opts.Float(bandOpacity)}),
			)
		}
	}

	line.AddSeries(anomalySeriesTag, marks,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: p.theme.Anomaly}),
		charts.WithLineStyleOpts(opts.LineStyle{Width: 0, Opacity: opts.Float(0)}),
	)

	return line
}

func (p plotRenderer) scoreChart(report *anomaly.Report) *charts.Line {
	n := len(report.Samples)
	scores := make([]opts.LineData, n)

	for i := range n {
		if i >= len(report.Scores) || math.IsNaN(report.Scores[i]) {
			scores[i] = opts.LineData{Value: missingValue}

			continue
		}

		scores[i] = opts.LineData{
			Value: stats.CapZScore(report.Scores[i]),
		}
	}

	threshold := report.Options.Threshold

	line := charts.NewLine()
	line.SetGlobalOptions(p.baseOptions("Z-Scores",
		"Samples beyond the dashed lines are flagged", scoreHeight, "z")...)
	line.SetXAxis(indexLabels(n))
	line.AddSeries("z-score", scores,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: p.theme.Score}),
		charts.WithLineStyleOpts(opts.LineStyle{Width: 1}),
		charts.WithMarkLineNameYAxisItemOpts(
			opts.MarkLineNameYAxisItem{Name: "+threshold", YAxis: threshold},
			opts.MarkLineNameYAxisItem{Name: "-threshold", YAxis: -threshold},
		),
	)

	return line
}

// bandData returns mean ± threshold·σ per sample, "-" where no baseline exists.
func bandData(report *anomaly.Report) (upper, lower []opts.LineData) {
	n := len(report.Samples)
	upper = make([]opts.LineData, n)
	lower = make([]opts.LineData, n)
	k := report.Options.Threshold

	for i := range n {
		mean, sd := report.Means[i], report.StdDevs[i]
		if math.IsNaN(mean) || math.IsNaN(sd) {
			upper[i] = opts.LineData{Value: missingValue}
			lower[i] = opts.LineData{Value: missingValue}

			continue
		}

		upper[i] = opts.LineData{Value: mean + k*sd}
		lower[i] = opts.LineData{Value: mean - k*sd}
	}

	return upper, lower
}

func indexLabels(n int) []string {
	labels := make([]string, n)
	for i := range n {
		labels[i] = strconv.Itoa(i)
	}

	return labels
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
