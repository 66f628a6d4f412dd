package visualize

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/outlier/pkg/anomaly"
)

const yamlIndent = 2

type jsonRenderer struct{}

// Render writes the report as indented JSON.
func (jsonRenderer) Render(w io.Writer, report *anomaly.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	err := enc.Encode(report)
	if err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}

	return nil
}

type yamlRenderer struct{}

// Render writes the report as a YAML document.
func (yamlRenderer) Render(w io.Writer, report *anomaly.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(yamlIndent)

	err := enc.Encode(report)
	if err != nil {
		return fmt.Errorf("encode yaml report: %w", err)
	}

	err = enc.Close()
	if err != nil {
		return fmt.Errorf("close yaml encoder: %w", err)
	}

	return nil
}
