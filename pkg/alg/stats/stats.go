// Package stats holds the numeric kernels behind anomaly scoring.
// Standard deviations are population (÷n, not ÷(n−1)).
package stats

import (
	"math"
	"slices"
)

// ZScoreMaxSentinel stands in for an infinite z-score wherever a finite
// number is required, e.g. in serialized reports.
const ZScoreMaxSentinel = 100.0

// PercentileP95 is the rank reported for the |z| distribution.
const PercentileP95 = 0.95

// CapZScore clamps z to ±ZScoreMaxSentinel. Infinities map to the sentinel.
func CapZScore(z float64) float64 {
	return max(-ZScoreMaxSentinel, min(z, ZScoreMaxSentinel))
}

// Mean returns the arithmetic mean of values, summed with Neumaier
// compensation so long streams of large magnitudes keep their low bits.
// Returns 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum, comp float64

	for _, v := range values {
		t := sum + v
		if math.Abs(sum) >= math.Abs(v) {
			comp += (sum - t) + v
		} else {
			comp += (v - t) + sum
		}

		sum = t
	}

	return (sum + comp) / float64(len(values))
}

// MeanStdDev returns the mean and population standard deviation using two
// passes. A constant slice reports its value as the mean and an exact zero
// stddev, so callers can compare against zero safely.
// Returns (0, 0) for an empty slice.
func MeanStdDev(values []float64) (mean, stddev float64) {
	if len(values) == 0 {
		return 0, 0
	}

	first := values[0]
	constant := true

	for _, v := range values[1:] {
		if v != first {
			constant = false

			break
		}
	}

	if constant {
		return first, 0
	}

	mean = Mean(values)

	var sumSq float64

	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}

	return mean, math.Sqrt(sumSq / float64(len(values)))
}

// Bounds returns the smallest and largest element. Returns (0, 0) for an
// empty slice.
func Bounds(values []float64) (lo, hi float64) {
	if len(values) == 0 {
		return 0, 0
	}

	lo, hi = values[0], values[0]

	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	return lo, hi
}

// Percentile returns the p-th percentile (p in [0, 1]) with linear
// interpolation between closest ranks. values is left untouched.
// Returns 0 for an empty slice.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := slices.Sorted(slices.Values(values))

	rank, frac := math.Modf(max(0, min(p, 1)) * float64(len(sorted)-1))
	i := int(rank)

	if frac == 0 || i+1 >= len(sorted) {
		return sorted[i]
	}

	return sorted[i] + (sorted[i+1]-sorted[i])*frac
}
