// Package visualize renders detection reports as terminal text, JSON, YAML,
// or an interactive HTML chart.
package visualize

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Sumatoshi-tech/outlier/pkg/anomaly"
)

// Format names a report rendering.
type Format string

// Supported formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatPlot Format = "plot"
)

// ErrUnknownFormat is returned for an unsupported format or theme name.
var ErrUnknownFormat = errors.New("unknown output format")

// Renderer writes a report to w.
type Renderer interface {
	Render(w io.Writer, report *anomaly.Report) error
}

// Options tunes rendering. Fields a format does not use are ignored.
type Options struct {
	// Theme selects the plot palette.
	Theme Theme
	// Band draws the mean ± threshold·σ envelope on plots.
	Band bool
	// Color enables ANSI colors in text output.
	Color bool
	// MaxRows caps the anomaly table in text output; 0 means no cap.
	MaxRows int
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() Options {
	return Options{Theme: ThemeDark, Band: true, Color: true}
}

// ParseFormat converts a format name, case-insensitively.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))

	switch f {
	case FormatText, FormatJSON, FormatYAML, FormatPlot:
		return f, nil
	case "html":
		return FormatPlot, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// New returns the renderer for format.
func New(format Format, opts Options) (Renderer, error) {
	switch format {
	case FormatText:
		return newTextRenderer(opts), nil
	case FormatJSON:
		return jsonRenderer{}, nil
	case FormatYAML:
		return yamlRenderer{}, nil
	case FormatPlot:
		return newPlotRenderer(opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
