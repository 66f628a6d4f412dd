// Package commands implements CLI command handlers for outlier.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/outlier/pkg/config"
	"github.com/Sumatoshi-tech/outlier/pkg/visualize"
)

// Flag names shared by every detection command.
const (
	flagConfig    = "config"
	flagMode      = "mode"
	flagWindow    = "window"
	flagThreshold = "threshold"
	flagFormat    = "format"
	flagOutput    = "output"
	flagTheme     = "theme"
	flagNoBand    = "no-band"
	flagNoColor   = "no-color"
	flagMaxRows   = "max-rows"
	flagMetrics   = "metrics-out"
	flagVerbose   = "verbose"
	flagQuiet     = "quiet"
)

// detectionOptions holds the flags shared by demo and detect. Flags only
// override the loaded configuration when they were set explicitly.
type detectionOptions struct {
	configPath string

	mode      string
	window    int
	threshold float64

	format  string
	output  string
	theme   string
	noBand  bool
	noColor bool
	maxRows int

	metricsPath string

	verbose bool
	quiet   bool
}

func (o *detectionOptions) register(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringVarP(&o.configPath, flagConfig, "c", "", "Config file (default: .outlier.yaml in CWD or $HOME)")

	flags.StringVarP(&o.mode, flagMode, "m", config.DefaultDetectorMode, "Baseline: windowed or global")
	flags.IntVarP(&o.window, flagWindow, "w", config.DefaultDetectorWindowSize, "Trailing window size in samples")
	flags.Float64VarP(&o.threshold, flagThreshold, "t", config.DefaultDetectorThreshold, "Flag samples with |z| above this")

	flags.StringVarP(&o.format, flagFormat, "f", config.DefaultOutputFormat, "Output format: text, json, yaml, plot")
	flags.StringVarP(&o.output, flagOutput, "o", config.DefaultOutputPath, "Write the report to this file instead of stdout")
	flags.StringVar(&o.theme, flagTheme, config.DefaultOutputTheme, "Plot theme: dark or light")
	flags.BoolVar(&o.noBand, flagNoBand, false, "Omit the mean ± threshold·σ band from plots")
	flags.BoolVar(&o.noColor, flagNoColor, false, "Disable colored text output")
	flags.IntVar(&o.maxRows, flagMaxRows, 0, "Show at most this many anomalies in text output (0 = all)")

	flags.StringVar(&o.metricsPath, flagMetrics, config.DefaultTelemetryMetricsPath,
		"Write a Prometheus text snapshot of run metrics to this file")

	flags.BoolVarP(&o.verbose, flagVerbose, "v", false, "Debug logging")
	flags.BoolVarP(&o.quiet, flagQuiet, "q", false, "Only log errors")
}

// load reads the configuration and applies explicitly set flags on top.
func (o *detectionOptions) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()

	if flags.Changed(flagMode) {
		cfg.Detector.Mode = o.mode
	}

	if flags.Changed(flagWindow) {
		cfg.Detector.WindowSize = o.window
	}

	if flags.Changed(flagThreshold) {
		cfg.Detector.Threshold = o.threshold
	}

	if flags.Changed(flagFormat) {
		cfg.Output.Format = o.format
	}

	if flags.Changed(flagOutput) {
		cfg.Output.Path = o.output
	}

	if flags.Changed(flagTheme) {
		cfg.Output.Theme = o.theme
	}

	if o.noBand {
		cfg.Output.Band = false
	}

	if flags.Changed(flagMetrics) {
		cfg.Telemetry.MetricsPath = o.metricsPath
	}

	switch {
	case o.verbose:
		cfg.Logging.Level = slog.LevelDebug.String()
	case o.quiet:
		cfg.Logging.Level = slog.LevelError.String()
	}

	err = cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	return cfg, nil
}

// renderer builds the report renderer selected by cfg.
func (o *detectionOptions) renderer(cfg *config.Config, toFile bool) (visualize.Renderer, error) {
	format, err := visualize.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}

	theme, err := visualize.ParseTheme(cfg.Output.Theme)
	if err != nil {
		return nil, err
	}

	return visualize.New(format, visualize.Options{
		Theme:   theme,
		Band:    cfg.Output.Band,
		Color:   !o.noColor && !toFile,
		MaxRows: o.maxRows,
	})
}
