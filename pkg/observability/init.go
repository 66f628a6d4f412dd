package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

const instrumentationName = "outlier"

// Providers holds the initialized observability providers.
type Providers struct {
	Tracer trace.Tracer
	Meter  metric.Meter
	Logger *slog.Logger

	// Shutdown flushes pending telemetry once; later calls return the first
	// result. Call it before the process exits.
	Shutdown func(ctx context.Context) error
}

// Init wires tracing, metrics, and structured logging for one process.
// Without an OTLP endpoint or extra metric readers every provider is a no-op
// and only the logger produces output.
func Init(cfg Config) (Providers, error) {
	ctx := context.Background()

	res, err := buildResource(cfg)
	if err != nil {
		return Providers{}, err
	}

	var closers shutdownStack

	tp, err := buildTracerProvider(ctx, cfg, res, &closers)
	if err != nil {
		return Providers{}, fmt.Errorf("build tracer provider: %w", err)
	}

	mp, err := buildMeterProvider(ctx, cfg, res, &closers)
	if err != nil {
		return Providers{}, errors.Join(fmt.Errorf("build meter provider: %w", err), closers.run(ctx))
	}

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return Providers{
		Tracer:   tp.Tracer(instrumentationName),
		Meter:    mp.Meter(instrumentationName),
		Logger:   buildLogger(cfg),
		Shutdown: closers.once(cfg.shutdownTimeout()),
	}, nil
}

func (c Config) shutdownTimeout() time.Duration {
	if c.ShutdownTimeoutSec <= 0 {
		return defaultShutdownTimeoutSec * time.Second
	}

	return time.Duration(c.ShutdownTimeoutSec) * time.Second
}

// shutdownStack collects provider shutdowns in creation order.
type shutdownStack []func(context.Context) error

func (s *shutdownStack) push(fn func(context.Context) error) {
	*s = append(*s, fn)
}

// run shuts down in reverse creation order and joins the errors.
func (s shutdownStack) run(ctx context.Context) error {
	errs := make([]error, 0, len(s))

	for i := len(s) - 1; i >= 0; i-- {
		errs = append(errs, s[i](ctx))
	}

	return errors.Join(errs...)
}

func (s shutdownStack) once(timeout time.Duration) func(context.Context) error {
	var (
		done sync.Once
		err  error
	)

	return func(ctx context.Context) error {
		done.Do(func() {
			deadlineCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			err = s.run(deadlineCtx)
		})

		return err
	}
}

func buildResource(cfg Config) (*resource.Resource, error) {
	kvs := []attribute.KeyValue{semconv.ServiceName(cfg.ServiceName)}

	if cfg.ServiceVersion != "" {
		kvs = append(kvs, semconv.ServiceVersion(cfg.ServiceVersion))
	}

	if cfg.Environment != "" {
		kvs = append(kvs, semconv.DeploymentEnvironment(cfg.Environment))
	}

	if cfg.Mode != "" {
		kvs = append(kvs, attribute.String("app.mode", string(cfg.Mode)))
	}

	res, err := resource.New(context.Background(), resource.WithAttributes(kvs...))
	if err != nil {
		return nil, fmt.Errorf("build otel resource: %w", err)
	}

	return res, nil
}

func buildTracerProvider(
	ctx context.Context, cfg Config, res *resource.Resource, closers *shutdownStack,
) (trace.TracerProvider, error) {
	if cfg.OTLPEndpoint == "" {
		return nooptrace.NewTracerProvider(), nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.OTLPInsecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	if len(cfg.OTLPHeaders) > 0 {
		opts = append(opts, otlptracegrpc.WithHeaders(cfg.OTLPHeaders))
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	// Dropped attributes are only reported while debugging traces.
	var filterLogger *slog.Logger
	if cfg.DebugTrace {
		filterLogger = slog.New(slog.NewTextHandler(logOutput(cfg), &slog.HandlerOptions{Level: slog.LevelWarn}))
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(NewAttributeFilter(sdktrace.NewBatchSpanProcessor(exporter), filterLogger)),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(selectSampler(cfg)),
	)
	closers.push(tp.Shutdown)

	return tp, nil
}

func selectSampler(cfg Config) sdktrace.Sampler {
	switch {
	case cfg.DebugTrace:
		return sdktrace.AlwaysSample()
	case cfg.SampleRatio > 0:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))
	default:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
}

func buildMeterProvider(
	ctx context.Context, cfg Config, res *resource.Resource, closers *shutdownStack,
) (metric.MeterProvider, error) {
	readers := cfg.MetricReaders

	if cfg.OTLPEndpoint != "" {
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint)}
		if cfg.OTLPInsecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}

		if len(cfg.OTLPHeaders) > 0 {
			opts = append(opts, otlpmetricgrpc.WithHeaders(cfg.OTLPHeaders))
		}

		exporter, err := otlpmetricgrpc.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("create metric exporter: %w", err)
		}

		readers = append(readers[:len(readers):len(readers)], sdkmetric.NewPeriodicReader(exporter))
	}

	if len(readers) == 0 {
		return noopmetric.NewMeterProvider(), nil
	}

	opts := make([]sdkmetric.Option, 0, len(readers)+1)
	opts = append(opts, sdkmetric.WithResource(res))

	for _, reader := range readers {
		opts = append(opts, sdkmetric.WithReader(reader))
	}

	mp := sdkmetric.NewMeterProvider(opts...)
	closers.push(mp.Shutdown)

	return mp, nil
}

func buildLogger(cfg Config) *slog.Logger {
	out := logOutput(cfg)
	handlerOpts := &slog.HandlerOptions{Level: cfg.LogLevel}

	var inner slog.Handler = slog.NewTextHandler(out, handlerOpts)
	if cfg.LogJSON {
		inner = slog.NewJSONHandler(out, handlerOpts)
	}

	return slog.New(NewTracingHandler(inner, cfg.ServiceName, cfg.Environment, cfg.Mode))
}

func logOutput(cfg Config) io.Writer {
	if cfg.LogOutput == nil {
		return os.Stderr
	}

	return cfg.LogOutput
}

// ParseOTLPHeaders parses "key=value,key=value" as used by
// OTEL_EXPORTER_OTLP_HEADERS. Pairs without '=' are skipped; nil is returned
// when nothing usable remains.
func ParseOTLPHeaders(raw string) map[string]string {
	var headers map[string]string

	for pair := range strings.SplitSeq(raw, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}

		if headers == nil {
			headers = make(map[string]string)
		}

		headers[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}

	return headers
}
