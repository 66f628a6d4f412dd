package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapZScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		z    float64
		want float64
	}{
		{name: "inside", z: -3.5, want: -3.5},
		{name: "above", z: 250, want: ZScoreMaxSentinel},
		{name: "positive_inf", z: math.Inf(1), want: ZScoreMaxSentinel},
		{name: "negative_inf", z: math.Inf(-1), want: -ZScoreMaxSentinel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, CapZScore(tt.z), 0)
		})
	}
}

func TestMean(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.0, Mean(nil), 0)
	assert.InDelta(t, 2.5, Mean([]float64{1, 2, 3, 4}), 1e-12)

	// Naive summation loses the small terms entirely.
	values := []float64{1e16, 1, 1, 1, 1, -1e16}
	assert.InDelta(t, 4.0/6.0, Mean(values), 1e-12)
}

func TestMeanStdDev(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		values     []float64
		wantMean   float64
		wantStdDev float64
	}{
		{name: "empty", values: nil},
		{name: "single", values: []float64{7}, wantMean: 7},
		{name: "population", values: []float64{2, 4, 4, 4, 5, 5, 7, 9}, wantMean: 5, wantStdDev: 2},
		{name: "symmetric", values: []float64{-1, 1}, wantMean: 0, wantStdDev: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mean, stddev := MeanStdDev(tt.values)
			assert.InDelta(t, tt.wantMean, mean, 1e-12)
			assert.InDelta(t, tt.wantStdDev, stddev, 1e-12)
		})
	}
}

func TestMeanStdDev_ConstantIsExact(t *testing.T) {
	t.Parallel()

	values := []float64{0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1}

	mean, stddev := MeanStdDev(values)
	assert.Equal(t, 0.1, mean) //nolint:testifylint // exactness is the point.
	assert.Zero(t, stddev)
}

func TestBounds(t *testing.T) {
	t.Parallel()

	lo, hi := Bounds(nil)
	assert.Zero(t, lo)
	assert.Zero(t, hi)

	lo, hi = Bounds([]float64{3, -2, 8, 0})
	assert.InDelta(t, -2.0, lo, 0)
	assert.InDelta(t, 8.0, hi, 0)
}

func TestPercentile(t *testing.T) {
	t.Parallel()

	values := []float64{5, 1, 4, 2, 3}

	tests := []struct {
		name string
		p    float64
		want float64
	}{
		{name: "min", p: 0, want: 1},
		{name: "median", p: 0.5, want: 3},
		{name: "max", p: 1, want: 5},
		{name: "interpolated", p: 0.9, want: 4.6},
		{name: "clamped", p: 2, want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, Percentile(values, tt.p), 1e-12)
		})
	}

	assert.Equal(t, []float64{5, 1, 4, 2, 3}, values)
	assert.Zero(t, Percentile(nil, PercentileP95))
}
