package observability

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// PrometheusSnapshot collects OTel instruments into a private Prometheus
// registry so a one-shot command can dump them in text exposition format
// before it exits.
type PrometheusSnapshot struct {
	registry *prometheus.Registry
	exporter *promexporter.Exporter
}

// NewPrometheusSnapshot creates an exporter bound to a fresh registry. Pass
// [PrometheusSnapshot.Reader] in [Config.MetricReaders] before calling [Init].
func NewPrometheusSnapshot() (*PrometheusSnapshot, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	return &PrometheusSnapshot{registry: registry, exporter: exporter}, nil
}

// Reader returns the metric reader to attach to the meter provider.
func (s *PrometheusSnapshot) Reader() sdkmetric.Reader {
	return s.exporter
}

// WriteTo writes every gathered metric family in text exposition format.
func (s *PrometheusSnapshot) WriteTo(w io.Writer) (int64, error) {
	families, err := s.registry.Gather()
	if err != nil {
		return 0, fmt.Errorf("gather metrics: %w", err)
	}

	var total int64

	for _, family := range families {
		n, writeErr := expfmt.MetricFamilyToText(w, family)
		total += int64(n)

		if writeErr != nil {
			return total, fmt.Errorf("write %s: %w", family.GetName(), writeErr)
		}
	}

	return total, nil
}

// WriteFile writes the snapshot to path.
func (s *PrometheusSnapshot) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create metrics file: %w", err)
	}

	_, writeErr := s.WriteTo(f)

	return errors.Join(writeErr, f.Close())
}
