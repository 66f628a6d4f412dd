package stats

import "math"

// cancellationRatio is the one-step drop in M2 beyond which the incremental
// result is discarded and the window recomputed.
const cancellationRatio = 1e-4

// RollingStats maintains the mean and population standard deviation of the
// most recent N observations in a fixed-size circular buffer.
//
// Updates use Welford's recurrence extended with a replace step, so every Push
// is O(1). Each time the ring wraps the accumulators are recomputed from the
// buffer with the two-pass formula, which bounds rounding drift on long streams
// at an amortized O(1) cost. The same recompute runs immediately when evicting
// a sample collapses M2 by more than [cancellationRatio]: the accumulators were
// then dominated by that sample and the small residue left behind is rounding
// noise, not the spread of the remaining window. A trailing run of identical values is tracked
// separately so a constant window reports an exact mean and a zero stddev.
//
// RollingStats is not safe for concurrent use.
type RollingStats struct {
	buf   []float64
	head  int
	count int
	mean  float64
	m2    float64
	last  float64
	run   int
}

// NewRollingStats creates a window holding up to size observations.
// Sizes below 1 are treated as 1.
func NewRollingStats(size int) *RollingStats {
	return &RollingStats{buf: make([]float64, max(size, 1))}
}

// Push adds v to the window, evicting the oldest observation once full.
func (r *RollingStats) Push(v float64) {
	if r.count > 0 && v == r.last {
		r.run++
	} else {
		r.run = 1
	}

	r.last = v

	if r.count < len(r.buf) {
		r.buf[r.head] = v
		r.count++

		delta := v - r.mean
		r.mean += delta / float64(r.count)
		r.m2 += delta * (v - r.mean)
	} else {
		old := r.buf[r.head]
		r.buf[r.head] = v

		prevMean, prevM2 := r.mean, r.m2
		r.mean += (v - old) / float64(r.count)
		r.m2 += (v - old) * (v - r.mean + old - prevMean)

		if r.m2 < prevM2*cancellationRatio {
			r.head = (r.head + 1) % len(r.buf)
			r.resync()

			return
		}
	}

	r.head = (r.head + 1) % len(r.buf)

	if r.head == 0 {
		r.resync()
	}

	if r.m2 < 0 {
		r.m2 = 0
	}
}

func (r *RollingStats) resync() {
	window := r.buf[:r.count]
	mean := Mean(window)

	var sumSq float64

	for _, v := range window {
		diff := v - mean
		sumSq += diff * diff
	}

	r.mean, r.m2 = mean, sumSq
}

// Len returns the number of observations currently in the window.
func (r *RollingStats) Len() int {
	return r.count
}

// Cap returns the window size.
func (r *RollingStats) Cap() int {
	return len(r.buf)
}

// Full reports whether the window holds Cap observations.
func (r *RollingStats) Full() bool {
	return r.count == len(r.buf)
}

// Constant reports whether every observation in the window is identical.
// An empty window is not constant.
func (r *RollingStats) Constant() bool {
	return r.count > 0 && r.run >= r.count
}

// Mean returns the arithmetic mean of the window (0 when empty).
func (r *RollingStats) Mean() float64 {
	if r.Constant() {
		return r.last
	}

	return r.mean
}

// Variance returns the population variance of the window (0 when empty).
func (r *RollingStats) Variance() float64 {
	if r.count == 0 || r.Constant() {
		return 0
	}

	return r.m2 / float64(r.count)
}

// StdDev returns the population standard deviation of the window.
func (r *RollingStats) StdDev() float64 {
	return math.Sqrt(r.Variance())
}

// Values returns a copy of the window contents, oldest first.
func (r *RollingStats) Values() []float64 {
	out := make([]float64, 0, r.count)

	start := 0
	if r.Full() {
		start = r.head
	}

	for i := range r.count {
		out = append(out, r.buf[(start+i)%len(r.buf)])
	}

	return out
}
