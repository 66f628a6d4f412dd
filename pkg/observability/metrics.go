package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRunsTotal       = "outlier.runs.total"
	metricRunDuration     = "outlier.run.duration.seconds"
	metricErrorsTotal     = "outlier.errors.total"
	metricSamplesTotal    = "outlier.samples.total"
	metricEvaluatedTotal  = "outlier.samples.evaluated.total"
	metricAnomaliesTotal  = "outlier.anomalies.total"
	metricDegenerateTotal = "outlier.windows.degenerate.total"

	attrStatus = "status"

	// StatusOK marks a run that produced a result.
	StatusOK = "ok"
	// StatusError marks a run that failed validation or I/O.
	StatusError = "error"
)

// durationBucketBoundaries covers 100µs to 60s: a million-sample stream
// finishes in well under a second.
var durationBucketBoundaries = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 60}

// metricBuilder collects the first instrument creation error so a batch of
// instruments needs a single check.
type metricBuilder struct {
	meter metric.Meter
	err   error
}

func (b *metricBuilder) counter(name, desc, unit string) metric.Int64Counter {
	c, err := b.meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	b.setErr(name, err)

	return c
}

func (b *metricBuilder) histogram(name, desc, unit string, bounds ...float64) metric.Float64Histogram {
	h, err := b.meter.Float64Histogram(name,
		metric.WithDescription(desc),
		metric.WithUnit(unit),
		metric.WithExplicitBucketBoundaries(bounds...),
	)
	b.setErr(name, err)

	return h
}

func (b *metricBuilder) setErr(name string, err error) {
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("create %s: %w", name, err)
	}
}

// DetectionMetrics holds the OTel instruments for detector runs.
type DetectionMetrics struct {
	runsTotal       metric.Int64Counter
	runDuration     metric.Float64Histogram
	errorsTotal     metric.Int64Counter
	samplesTotal    metric.Int64Counter
	evaluatedTotal  metric.Int64Counter
	anomaliesTotal  metric.Int64Counter
	degenerateTotal metric.Int64Counter
}

// DetectionStats describes one finished run, decoupled from detector types.
type DetectionStats struct {
	Mode       string
	Samples    int
	Evaluated  int
	Anomalies  int
	Degenerate int
	Duration   time.Duration
	Err        error
}

// NewDetectionMetrics creates detection instruments from the given meter.
func NewDetectionMetrics(mt metric.Meter) (*DetectionMetrics, error) {
	b := &metricBuilder{meter: mt}

	dm := &DetectionMetrics{
		runsTotal:   b.counter(metricRunsTotal, "Total detector runs", "{run}"),
		runDuration: b.histogram(metricRunDuration, "Detector run duration in seconds", "s", durationBucketBoundaries...),
		errorsTotal: b.counter(metricErrorsTotal, "Total failed detector runs", "{run}"),
		samplesTotal: b.counter(metricSamplesTotal,
			"Total samples received", "{sample}"),
		evaluatedTotal: b.counter(metricEvaluatedTotal,
			"Total samples scored against a baseline", "{sample}"),
		anomaliesTotal: b.counter(metricAnomaliesTotal,
			"Total samples flagged as anomalous", "{sample}"),
		degenerateTotal: b.counter(metricDegenerateTotal,
			"Total evaluated samples whose baseline had zero spread", "{sample}"),
	}

	if b.err != nil {
		return nil, b.err
	}

	return dm, nil
}

// RecordRun records a completed run.
func (dm *DetectionMetrics) RecordRun(ctx context.Context, stats DetectionStats) {
	status := StatusOK
	if stats.Err != nil {
		status = StatusError
	}

	modeAttr := attribute.String(attrMode, stats.Mode)
	attrs := metric.WithAttributes(modeAttr, attribute.String(attrStatus, status))

	dm.runsTotal.Add(ctx, 1, attrs)
	dm.runDuration.Record(ctx, stats.Duration.Seconds(), attrs)

	if stats.Err != nil {
		dm.errorsTotal.Add(ctx, 1, metric.WithAttributes(modeAttr))

		return
	}

	modeOnly := metric.WithAttributes(modeAttr)

	dm.samplesTotal.Add(ctx, int64(stats.Samples), modeOnly)
	dm.evaluatedTotal.Add(ctx, int64(stats.Evaluated), modeOnly)
	dm.anomaliesTotal.Add(ctx, int64(stats.Anomalies), modeOnly)
	dm.degenerateTotal.Add(ctx, int64(stats.Degenerate), modeOnly)
}
