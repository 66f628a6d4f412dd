package anomaly

import (
	"math"

	"github.com/Sumatoshi-tech/outlier/pkg/alg/stats"
)

// percentMultiplier converts fractions to percentages.
const percentMultiplier = 100

// --- Data Types ---.

// Record describes one flagged sample.
type Record struct {
	Index int     `json:"index"   yaml:"index"`
	Value float64 `json:"value"   yaml:"value"`
	// ZScore is capped at ±stats.ZScoreMaxSentinel so it stays serializable;
	// Degenerate marks the capped (infinite) case.
	ZScore     float64 `json:"z_score"    yaml:"z_score"`
	Degenerate bool    `json:"degenerate" yaml:"degenerate"`
}

// Summary holds aggregate statistics for one detection run.
type Summary struct {
	TotalPoints       int     `json:"total_points"        yaml:"total_points"`
	Evaluated         int     `json:"evaluated"           yaml:"evaluated"`
	TotalAnomalies    int     `json:"total_anomalies"     yaml:"total_anomalies"`
	AnomalyRate       float64 `json:"anomaly_rate"        yaml:"anomaly_rate"`
	DegenerateWindows int     `json:"degenerate_windows"  yaml:"degenerate_windows"`
	HighestAbsZScore  float64 `json:"highest_abs_z_score" yaml:"highest_abs_z_score"`
	P95AbsZScore      float64 `json:"p95_abs_z_score"     yaml:"p95_abs_z_score"`
	Mean              float64 `json:"mean"                yaml:"mean"`
	StdDev            float64 `json:"stddev"              yaml:"stddev"`
	Min               float64 `json:"min"                 yaml:"min"`
	Max               float64 `json:"max"                 yaml:"max"`
}

// Report is what visualizers consume: the stream, the flagged records, and
// the statistics around them.
type Report struct {
	Options   Options   `json:"options"   yaml:"options"`
	Samples   []float64 `json:"samples"   yaml:"samples"`
	Anomalies []Record  `json:"anomalies" yaml:"anomalies"`
	Summary   Summary   `json:"summary"   yaml:"summary"`

	// Injected and Evaluation are set when ground truth is known.
	Injected   []int       `json:"injected,omitempty"   yaml:"injected,omitempty"`
	Evaluation *Evaluation `json:"evaluation,omitempty" yaml:"evaluation,omitempty"`

	// Per-sample scores and baselines (NaN where not evaluated); used for
	// plotting only.
	Scores  []float64 `json:"-" yaml:"-"`
	Means   []float64 `json:"-" yaml:"-"`
	StdDevs []float64 `json:"-" yaml:"-"`
}

// BuildReport assembles a Report from a stream and its detection result.
// Every record index is a valid index into stream.
func BuildReport(stream []float64, res *Result) *Report {
	records := make([]Record, 0, len(res.Indices))

	for _, idx := range res.Indices {
		if idx < 0 || idx >= len(stream) {
			continue
		}

		z := res.Scores[idx]

		records = append(records, Record{
			Index:      idx,
			Value:      stream[idx],
			ZScore:     stats.CapZScore(z),
			Degenerate: math.IsInf(z, 0),
		})
	}

	return &Report{
		Options:   res.Options,
		Samples:   stream,
		Anomalies: records,
		Summary:   summarize(stream, res, len(records)),
		Scores:    res.Scores,
		Means:     res.Means,
		StdDevs:   res.StdDevs,
	}
}

// WithGroundTruth attaches the indices known to be anomalous and scores the
// report against them.
func (r *Report) WithGroundTruth(injected []int) *Report {
	r.Injected = injected
	eval := Evaluate(r.AnomalyIndices(), injected)
	r.Evaluation = &eval

	return r
}

// AnomalyIndices returns the flagged indices in ascending order.
func (r *Report) AnomalyIndices() []int {
	out := make([]int, len(r.Anomalies))

	for i, rec := range r.Anomalies {
		out[i] = rec.Index
	}

	return out
}

func summarize(stream []float64, res *Result, flagged int) Summary {
	mean, stddev := stats.MeanStdDev(stream)

	absScores := make([]float64, 0, res.Evaluated)

	for _, z := range res.Scores {
		if math.IsNaN(z) {
			continue
		}

		absScores = append(absScores, math.Abs(stats.CapZScore(z)))
	}

	var rate float64
	if res.Evaluated > 0 {
		rate = float64(flagged) / float64(res.Evaluated) * percentMultiplier
	}

	_, highest := stats.Bounds(absScores)
	lo, hi := stats.Bounds(stream)

	return Summary{
		TotalPoints:       len(stream),
		Evaluated:         res.Evaluated,
		TotalAnomalies:    flagged,
		AnomalyRate:       rate,
		DegenerateWindows: res.Degenerate,
		HighestAbsZScore:  highest,
		P95AbsZScore:      stats.Percentile(absScores, stats.PercentileP95),
		Mean:              mean,
		StdDev:            stddev,
		Min:               lo,
		Max:               hi,
	}
}
