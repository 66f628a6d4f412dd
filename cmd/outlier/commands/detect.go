package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/outlier/pkg/config"
	"github.com/Sumatoshi-tech/outlier/pkg/observability"
	"github.com/Sumatoshi-tech/outlier/pkg/streamio"
)

const (
	flagColumn  = "column"
	flagMaxSize = "max-size"
)

// DetectCommand runs the detector over a stream read from a file or stdin.
type DetectCommand struct {
	detection detectionOptions

	column  int
	maxSize string
}

// NewDetectCommand creates the detect command.
func NewDetectCommand() *cobra.Command {
	dc := &DetectCommand{}

	cmd := &cobra.Command{
		Use:   "detect [file]",
		Short: "Detect anomalies in a stream of numbers",
		Long: `Read samples from file (or stdin when file is omitted or "-") and flag the
ones whose z-score against the trailing window exceeds the threshold.

Input is one number per line (CSV lines use --column), a JSON array, or a JSON
object with a "samples" array. Files ending in .lz4 or .sz are decompressed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: dc.run,
	}

	dc.detection.register(cmd)

	cmd.Flags().IntVar(&dc.column, flagColumn, config.DefaultInputColumn, "0-based field of comma-separated lines")
	cmd.Flags().StringVar(&dc.maxSize, flagMaxSize, config.DefaultInputMaxSize, "Reject inputs larger than this (e.g. 64MB)")

	return cmd
}

func (dc *DetectCommand) run(cmd *cobra.Command, args []string) error {
	cfg, err := dc.detection.load(cmd)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed(flagColumn) {
		cfg.Input.Column = dc.column
	}

	if cmd.Flags().Changed(flagMaxSize) {
		cfg.Input.MaxSize = dc.maxSize
	}

	path := streamio.StdinPath
	if len(args) > 0 {
		path = args[0]
	}

	readOpts := streamio.Options{MaxSize: cfg.Input.MaxSize, Column: cfg.Input.Column}

	var samples []float64

	if path == streamio.StdinPath {
		samples, err = streamio.Read(cmd.InOrStdin(), streamio.CompressionNone, readOpts)
	} else {
		samples, err = streamio.ReadFile(path, readOpts)
	}

	if err != nil {
		return fmt.Errorf("read samples: %w", err)
	}

	return runDetection(cmd.Context(), &dc.detection, cfg, observability.ModeDetect,
		samples, nil, cmd.OutOrStdout(), cmd.ErrOrStderr())
}
