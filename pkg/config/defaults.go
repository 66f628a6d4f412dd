package config

import (
	"github.com/Sumatoshi-tech/outlier/pkg/anomaly"
	"github.com/Sumatoshi-tech/outlier/pkg/generator"
)

// Detector defaults.
const (
	DefaultDetectorMode       = string(anomaly.ModeWindowed)
	DefaultDetectorWindowSize = anomaly.DefaultWindowSize
	DefaultDetectorThreshold  = anomaly.DefaultThreshold
)

// Generator defaults.
const (
	DefaultGeneratorPoints      = generator.DefaultPoints
	DefaultGeneratorAnomalyRate = generator.DefaultAnomalyRate
	DefaultGeneratorFrequency   = generator.DefaultFrequency
	DefaultGeneratorNoise       = generator.DefaultNoise
	DefaultGeneratorSpikeMin    = generator.DefaultSpikeMin
	DefaultGeneratorSpikeMax    = generator.DefaultSpikeMax
	DefaultGeneratorSeed        = generator.DefaultSeed
)

// Input defaults.
const (
	DefaultInputMaxSize = "256MB"
	DefaultInputColumn  = 0
)

// Output defaults.
const (
	DefaultOutputFormat = "text"
	DefaultOutputPath   = ""
	DefaultOutputTheme  = "dark"
	DefaultOutputBand   = true
)

// Logging defaults.
const (
	DefaultLoggingLevel  = "info"
	DefaultLoggingFormat = "text"
)

// Telemetry defaults.
const (
	DefaultTelemetryOTLPEndpoint = ""
	DefaultTelemetryOTLPInsecure = false
	DefaultTelemetryMetricsPath  = ""
)
