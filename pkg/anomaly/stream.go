package anomaly

import (
	"fmt"
	"math"

	"github.com/Sumatoshi-tech/outlier/pkg/alg/stats"
)

// MaxSampleMagnitude bounds |sample|. Squared deviations of larger values
// overflow float64 once summed, which would turn every stddev into +Inf.
const MaxSampleMagnitude = 1e140

// Verdict is the outcome of evaluating one sample against its trailing window.
type Verdict struct {
	Index int
	Value float64

	// Ready is false until the window holds windowSize prior samples.
	// Mean, StdDev and ZScore are zero when Ready is false.
	Ready bool

	Mean   float64
	StdDev float64
	ZScore float64

	// Degenerate marks a constant window (zero stddev). A differing value
	// then scores ±Inf and is always anomalous.
	Degenerate bool
	Anomalous  bool
}

// Stream is the online form of the windowed detector: samples are pushed one
// at a time and each is judged against the windowSize samples before it.
// A Stream is not safe for concurrent use.
type Stream struct {
	window    *stats.RollingStats
	threshold float64
	next      int
}

// NewStream creates an online detector.
func NewStream(windowSize int, threshold float64) (*Stream, error) {
	err := validateWindow(windowSize)
	if err != nil {
		return nil, err
	}

	err = validateThreshold(threshold)
	if err != nil {
		return nil, err
	}

	return &Stream{
		window:    stats.NewRollingStats(windowSize),
		threshold: threshold,
	}, nil
}

// Push evaluates value and then slides it into the window. A non-finite
// value, or one beyond [MaxSampleMagnitude], is rejected with
// [ErrInvalidInput] and leaves the Stream unchanged.
func (s *Stream) Push(value float64) (Verdict, error) {
	err := validateSample(s.next, value)
	if err != nil {
		return Verdict{}, err
	}

	return s.advance(value), nil
}

// advance scores a validated value and slides it into the window.
func (s *Stream) advance(value float64) Verdict {
	verdict := Verdict{Index: s.next, Value: value}

	if s.window.Full() {
		mean, stddev := s.window.Mean(), s.window.StdDev()

		verdict.Ready = true
		verdict.Mean = mean
		verdict.StdDev = stddev
		verdict.ZScore, verdict.Degenerate = zScore(value, mean, stddev)
		verdict.Anomalous = exceeds(verdict.ZScore, s.threshold)
	}

	s.window.Push(value)
	s.next++

	return verdict
}

// Count returns the number of samples pushed so far.
func (s *Stream) Count() int {
	return s.next
}

// WindowSize returns the configured window length.
func (s *Stream) WindowSize() int {
	return s.window.Cap()
}

// zScore returns (value-mean)/stddev. A zero stddev is degenerate: an equal
// value scores 0 and a differing value scores ±Inf.
func zScore(value, mean, stddev float64) (z float64, degenerate bool) {
	if stddev == 0 {
		diff := value - mean
		if diff == 0 {
			return 0, true
		}

		return math.Copysign(math.Inf(1), diff), true
	}

	return (value - mean) / stddev, false
}

// exceeds reports |z| > threshold. NaN never exceeds.
func exceeds(z, threshold float64) bool {
	return math.Abs(z) > threshold
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func validateWindow(windowSize int) error {
	if windowSize < 1 {
		return fmt.Errorf("%w: window size must be >= 1, got %d", ErrInvalidArgument, windowSize)
	}

	return nil
}

func validateThreshold(threshold float64) error {
	if !isFinite(threshold) || threshold <= 0 {
		return fmt.Errorf("%w: threshold must be a positive finite number, got %v", ErrInvalidArgument, threshold)
	}

	return nil
}

func validateSamples(samples []float64) error {
	for i, v := range samples {
		err := validateSample(i, v)
		if err != nil {
			return err
		}
	}

	return nil
}

func validateSample(index int, v float64) error {
	if !isFinite(v) {
		return fmt.Errorf("%w: sample %d is %v", ErrInvalidInput, index, v)
	}

	if math.Abs(v) > MaxSampleMagnitude {
		return fmt.Errorf("%w: sample %d is %g, magnitude above %g", ErrInvalidInput, index, v, MaxSampleMagnitude)
	}

	return nil
}
