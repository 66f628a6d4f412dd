// Package anomaly flags outliers in a one-dimensional numeric stream by
// z-score. The primary path compares each sample with the mean and population
// standard deviation of the windowSize samples immediately before it; a
// global baseline compares every sample with whole-stream statistics.
//
// A constant window has zero stddev. A sample equal to it scores 0; any other
// sample scores ±Inf and is flagged at every threshold.
package anomaly

import (
	"math"

	"github.com/Sumatoshi-tech/outlier/pkg/alg/stats"
)

// ComputeZScores returns the windowed z-score of every sample. For index i
// the window is values[i-window:i]; the first window indices have no full
// window and score NaN. Degenerate windows score 0 or ±Inf.
func ComputeZScores(values []float64, window int) ([]float64, error) {
	err := validateWindow(window)
	if err != nil {
		return nil, err
	}

	err = validateSamples(values)
	if err != nil {
		return nil, err
	}

	return windowedScores(values, window), nil
}

// ComputeGlobalZScores returns the z-score of every sample against the mean
// and population stddev of the whole stream.
func ComputeGlobalZScores(values []float64) ([]float64, error) {
	err := validateSamples(values)
	if err != nil {
		return nil, err
	}

	scores, _, _ := globalScores(values)

	return scores, nil
}

// windowedScores expects validated input. It scores through the same
// [Stream] that backs [Run], so batch and online results cannot drift apart.
func windowedScores(values []float64, window int) []float64 {
	scores := make([]float64, len(values))
	detector := &Stream{window: stats.NewRollingStats(window), threshold: math.Inf(1)}

	for i, v := range values {
		verdict := detector.advance(v)
		if verdict.Ready {
			scores[i] = verdict.ZScore
		} else {
			scores[i] = math.NaN()
		}
	}

	return scores
}

// globalScores expects validated input.
func globalScores(values []float64) (scores []float64, mean, stddev float64) {
	mean, stddev = stats.MeanStdDev(values)
	scores = make([]float64, len(values))

	for i, v := range values {
		scores[i], _ = zScore(v, mean, stddev)
	}

	return scores, mean, stddev
}

// FlagScores returns the indices whose absolute z-score exceeds threshold,
// in ascending order. NaN scores are never flagged.
func FlagScores(scores []float64, threshold float64) []int {
	var anomalies []int

	for i, score := range scores {
		if exceeds(score, threshold) {
			anomalies = append(anomalies, i)
		}
	}

	return anomalies
}
