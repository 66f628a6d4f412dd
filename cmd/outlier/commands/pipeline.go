package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/outlier/pkg/anomaly"
	"github.com/Sumatoshi-tech/outlier/pkg/config"
	"github.com/Sumatoshi-tech/outlier/pkg/observability"
	"github.com/Sumatoshi-tech/outlier/pkg/version"
)

// telemetry bundles the providers a command run reports through.
type telemetry struct {
	observability.Providers

	metrics     *observability.DetectionMetrics
	snapshot    *observability.PrometheusSnapshot
	metricsPath string
}

func startTelemetry(cfg *config.Config, mode observability.AppMode, logOutput io.Writer) (*telemetry, error) {
	level, err := cfg.Logging.SlogLevel()
	if err != nil {
		return nil, err
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Environment = cfg.Telemetry.Environment
	obsCfg.Mode = mode
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Telemetry.OTLPHeaders)
	obsCfg.LogLevel = level
	obsCfg.LogJSON = cfg.Logging.JSON()
	obsCfg.LogOutput = logOutput

	tel := &telemetry{metricsPath: cfg.Telemetry.MetricsPath}

	if tel.metricsPath != "" {
		tel.snapshot, err = observability.NewPrometheusSnapshot()
		if err != nil {
			return nil, err
		}

		obsCfg.MetricReaders = append(obsCfg.MetricReaders, tel.snapshot.Reader())
	}

	tel.Providers, err = observability.Init(obsCfg)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	tel.metrics, err = observability.NewDetectionMetrics(tel.Meter)
	if err != nil {
		return nil, errors.Join(err, tel.Shutdown(context.Background()))
	}

	return tel, nil
}

// close writes the metrics snapshot, if requested, and flushes exporters.
func (t *telemetry) close(ctx context.Context) error {
	var snapshotErr error

	if t.snapshot != nil {
		snapshotErr = t.snapshot.WriteFile(t.metricsPath)
		if snapshotErr == nil {
			t.Logger.DebugContext(ctx, "metrics snapshot written", "path", t.metricsPath)
		}
	}

	return errors.Join(snapshotErr, t.Shutdown(ctx))
}

// detectRun carries one detection from samples to report.
type detectRun struct {
	cfg *config.Config
	tel *telemetry

	// injected, when non-nil, is the ground truth the report is scored against.
	injected []int
}

func (r *detectRun) execute(ctx context.Context, stream []float64) (*anomaly.Report, error) {
	opts := r.cfg.Detector.Options()

	ctx, span := r.tel.Tracer.Start(ctx, "outlier.detect", trace.WithAttributes(
		attribute.String("detector.mode", string(opts.Mode)),
		attribute.Int("detector.window_size", opts.WindowSize),
		attribute.Float64("detector.threshold", opts.Threshold),
		attribute.Int("stream.length", len(stream)),
	))
	defer span.End()

	start := time.Now()
	res, err := anomaly.Run(stream, opts)
	elapsed := time.Since(start)

	stats := observability.DetectionStats{
		Mode:     string(opts.Mode),
		Samples:  len(stream),
		Duration: elapsed,
		Err:      err,
	}

	if err != nil {
		r.tel.metrics.RecordRun(ctx, stats)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.tel.Logger.ErrorContext(ctx, "detection failed", "error", err)

		return nil, fmt.Errorf("detect: %w", err)
	}

	stats.Evaluated = res.Evaluated
	stats.Anomalies = len(res.Indices)
	stats.Degenerate = res.Degenerate
	r.tel.metrics.RecordRun(ctx, stats)

	report := anomaly.BuildReport(stream, res)
	if r.injected != nil {
		report.WithGroundTruth(r.injected)
	}

	span.SetAttributes(
		attribute.Int("report.anomalies", report.Summary.TotalAnomalies),
		attribute.Int("report.degenerate", report.Summary.DegenerateWindows),
	)

	r.tel.Logger.InfoContext(ctx, "detection finished",
		"mode", opts.Mode,
		"samples", len(stream),
		"evaluated", res.Evaluated,
		"anomalies", len(res.Indices),
		"duration", elapsed,
	)

	return report, nil
}

// openOutput returns the report destination: path when set, else fallback.
func openOutput(path string, fallback io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return fallback, func() error { return nil }, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}

	return f, f.Close, nil
}

// runDetection wires config, telemetry, and output around one detection.
func runDetection(
	ctx context.Context,
	opts *detectionOptions,
	cfg *config.Config,
	mode observability.AppMode,
	stream []float64,
	injected []int,
	stdout, stderr io.Writer,
) (err error) {
	tel, err := startTelemetry(cfg, mode, stderr)
	if err != nil {
		return err
	}

	defer func() {
		closeErr := tel.close(context.WithoutCancel(ctx))
		if closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close telemetry: %w", closeErr))
		}
	}()

	toFile := cfg.Output.Path != "" && cfg.Output.Path != "-"

	renderer, err := opts.renderer(cfg, toFile)
	if err != nil {
		return err
	}

	run := &detectRun{cfg: cfg, tel: tel, injected: injected}

	report, err := run.execute(ctx, stream)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(cfg.Output.Path, stdout)
	if err != nil {
		return err
	}

	renderErr := renderer.Render(out, report)
	if renderErr != nil {
		renderErr = fmt.Errorf("render report: %w", renderErr)
	}

	return errors.Join(renderErr, closeOut())
}
