package anomaly

import (
	"fmt"
	"math"
	"strings"
)

// Default detector settings.
const (
	DefaultWindowSize = 50
	DefaultThreshold  = 3.0
)

// Mode selects the baseline a sample is compared with.
type Mode string

const (
	// ModeWindowed compares each sample with its trailing window.
	ModeWindowed Mode = "windowed"
	// ModeGlobal compares each sample with whole-stream statistics.
	ModeGlobal Mode = "global"
)

// ParseMode converts a mode name, case-insensitively. Empty means windowed.
func ParseMode(name string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(name))) {
	case "", ModeWindowed:
		return ModeWindowed, nil
	case ModeGlobal:
		return ModeGlobal, nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q (want %s or %s)", ErrInvalidArgument, name, ModeWindowed, ModeGlobal)
	}
}

// Detect returns the ascending indices i >= windowSize whose z-score against
// stream[i-windowSize:i] exceeds threshold in magnitude. A stream no longer
// than windowSize yields no indices. The input is never modified.
func Detect(stream []float64, windowSize int, threshold float64) ([]int, error) {
	err := validateWindow(windowSize)
	if err != nil {
		return nil, err
	}

	err = validateThreshold(threshold)
	if err != nil {
		return nil, err
	}

	err = validateSamples(stream)
	if err != nil {
		return nil, err
	}

	if len(stream) <= windowSize {
		return nil, nil
	}

	return FlagScores(windowedScores(stream, windowSize), threshold), nil
}

// DetectGlobal returns the ascending indices whose z-score against the mean
// and population stddev of the entire stream exceeds threshold in magnitude.
func DetectGlobal(stream []float64, threshold float64) ([]int, error) {
	err := validateThreshold(threshold)
	if err != nil {
		return nil, err
	}

	err = validateSamples(stream)
	if err != nil {
		return nil, err
	}

	scores, _, _ := globalScores(stream)

	return FlagScores(scores, threshold), nil
}

// Options configures [Run].
type Options struct {
	Mode       Mode    `json:"mode"        yaml:"mode"`
	WindowSize int     `json:"window_size" yaml:"window_size"`
	Threshold  float64 `json:"threshold"   yaml:"threshold"`
}

// DefaultOptions returns windowed detection with a 50-sample window and a
// threshold of 3 standard deviations.
func DefaultOptions() Options {
	return Options{
		Mode:       ModeWindowed,
		WindowSize: DefaultWindowSize,
		Threshold:  DefaultThreshold,
	}
}

// Validate checks the options without looking at any data.
func (o Options) Validate() error {
	_, err := ParseMode(string(o.Mode))
	if err != nil {
		return err
	}

	if o.Mode != ModeGlobal {
		err = validateWindow(o.WindowSize)
		if err != nil {
			return err
		}
	}

	return validateThreshold(o.Threshold)
}

// Result is the full outcome of [Run]: flagged indices plus the per-sample
// baseline each decision was made against.
type Result struct {
	Options Options

	// Indices are the flagged samples, ascending.
	Indices []int

	// Scores, Means and StdDevs are indexed like the input stream. Samples
	// that were not evaluated hold NaN.
	Scores  []float64
	Means   []float64
	StdDevs []float64

	// Evaluated counts samples that had a baseline.
	Evaluated int
	// Degenerate counts evaluated samples whose baseline had zero stddev.
	Degenerate int
}

// Run validates opts and stream, then detects with the selected mode.
func Run(stream []float64, opts Options) (*Result, error) {
	mode, err := ParseMode(string(opts.Mode))
	if err != nil {
		return nil, err
	}

	opts.Mode = mode

	err = opts.Validate()
	if err != nil {
		return nil, err
	}

	err = validateSamples(stream)
	if err != nil {
		return nil, err
	}

	if mode == ModeGlobal {
		return runGlobal(stream, opts), nil
	}

	return runWindowed(stream, opts)
}

func runWindowed(stream []float64, opts Options) (*Result, error) {
	detector, err := NewStream(opts.WindowSize, opts.Threshold)
	if err != nil {
		return nil, err
	}

	res := newResult(opts, len(stream))

	for _, v := range stream {
		verdict, pushErr := detector.Push(v)
		if pushErr != nil {
			return nil, pushErr
		}

		if !verdict.Ready {
			continue
		}

		res.record(verdict.Index, verdict.ZScore, verdict.Mean, verdict.StdDev, verdict.Degenerate)

		if verdict.Anomalous {
			res.Indices = append(res.Indices, verdict.Index)
		}
	}

	return res, nil
}

func runGlobal(stream []float64, opts Options) *Result {
	scores, mean, stddev := globalScores(stream)
	res := newResult(opts, len(stream))

	for i, z := range scores {
		res.record(i, z, mean, stddev, stddev == 0)
	}

	res.Indices = FlagScores(scores, opts.Threshold)

	return res
}

func newResult(opts Options, n int) *Result {
	res := &Result{
		Options: opts,
		Scores:  make([]float64, n),
		Means:   make([]float64, n),
		StdDevs: make([]float64, n),
	}

	for i := range n {
		res.Scores[i] = math.NaN()
		res.Means[i] = math.NaN()
		res.StdDevs[i] = math.NaN()
	}

	return res
}

func (r *Result) record(i int, z, mean, stddev float64, degenerate bool) {
	r.Scores[i] = z
	r.Means[i] = mean
	r.StdDevs[i] = stddev
	r.Evaluated++

	if degenerate {
		r.Degenerate++
	}
}
