package visualize

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/outlier/pkg/anomaly"
)

const (
	msgNoAnomalies   = "No anomalies detected"
	degenerateMarker = "flat window"
	precisionDigits  = 4
)

type textRenderer struct {
	maxRows int

	header *color.Color
	bad    *color.Color
	good   *color.Color
	muted  *color.Color
}

func newTextRenderer(o Options) textRenderer {
	r := textRenderer{
		maxRows: o.MaxRows,
		header:  color.New(color.FgCyan, color.Bold),
		bad:     color.New(color.FgRed),
		good:    color.New(color.FgGreen),
		muted:   color.New(color.FgHiBlack),
	}

	if !o.Color {
		for _, c := range []*color.Color{r.header, r.bad, r.good, r.muted} {
			c.DisableColor()
		}
	}

	return r
}

// Render writes a summary block followed by the anomaly table.
func (r textRenderer) Render(w io.Writer, report *anomaly.Report) error {
	var b strings.Builder

	r.writeSummary(&b, report)
	b.WriteString("\n")

	if len(report.Anomalies) == 0 {
		b.WriteString(r.good.Sprint(msgNoAnomalies))
		b.WriteString("\n")
	} else {
		b.WriteString(r.anomalyTable(report.Anomalies))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	if err != nil {
		return fmt.Errorf("write text report: %w", err)
	}

	return nil
}

func (r textRenderer) writeSummary(b *strings.Builder, report *anomaly.Report) {
	s := report.Summary
	o := report.Options

	b.WriteString(r.header.Sprint("=== ANOMALY DETECTION ==="))
	b.WriteString("\n")

	params := []string{"Mode: " + string(o.Mode)}
	if o.Mode != anomaly.ModeGlobal {
		params = append(params, "Window: "+strconv.Itoa(o.WindowSize))
	}

	params = append(params, "Threshold: "+formatFloat(o.Threshold))
	b.WriteString(strings.Join(params, " | "))
	b.WriteString("\n")

	count := r.good.Sprint(humanize.Comma(int64(s.TotalAnomalies)))
	if s.TotalAnomalies > 0 {
		count = r.bad.Sprint(humanize.Comma(int64(s.TotalAnomalies)))
	}

	fmt.Fprintf(b, "Samples: %s | Evaluated: %s | Anomalies: %s (%.1f%%) | Degenerate windows: %s\n",
		humanize.Comma(int64(s.TotalPoints)), humanize.Comma(int64(s.Evaluated)),
		count, s.AnomalyRate, humanize.Comma(int64(s.DegenerateWindows)))

	if s.TotalPoints > 0 {
		fmt.Fprintf(b, "Stream: mean %s | stddev %s | min %s | max %s\n",
			round(s.Mean), round(s.StdDev), round(s.Min), round(s.Max))
	}

	if s.Evaluated > 0 {
		fmt.Fprintf(b, "Highest |z|: %.2f | P95 |z|: %.2f\n", s.HighestAbsZScore, s.P95AbsZScore)
	}

	if e := report.Evaluation; e != nil {
		fmt.Fprintf(b, "Evaluation: precision %.2f | recall %.2f | F1 %.2f %s\n",
			e.Precision, e.Recall, e.F1,
			r.muted.Sprintf("(TP %d, FP %d, FN %d)", e.TruePositives, e.FalsePositives, e.FalseNegatives))
	}
}

func (r textRenderer) anomalyTable(records []anomaly.Record) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false

	tbl.AppendHeader(table.Row{"#", "Index", "Value", "Z-Score"})

	shown := records
	if r.maxRows > 0 && len(shown) > r.maxRows {
		shown = shown[:r.maxRows]
	}

	for i, rec := range shown {
		z := fmt.Sprintf("%+.2f", rec.ZScore)
		if rec.Degenerate {
			z = r.muted.Sprintf("%s (%s)", z, degenerateMarker)
		}

		tbl.AppendRow(table.Row{i + 1, rec.Index, round(rec.Value), z})
	}

	footer := fmt.Sprintf("Total: %s anomalies", humanize.Comma(int64(len(records))))
	if hidden := len(records) - len(shown); hidden > 0 {
		footer += fmt.Sprintf(", %s not shown", humanize.Comma(int64(hidden)))
	}

	tbl.AppendFooter(table.Row{footer})

	return tbl.Render()
}

func round(v float64) string {
	return strconv.FormatFloat(v, 'g', precisionDigits, 64)
}
