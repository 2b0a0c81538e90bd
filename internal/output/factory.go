// Package output provides formatters for plugin discovery and manifest
// validation reports.
package output

import (
	"fmt"
	"io"

	"github.com/luminor-dev/luminor/internal/application/services"
	"github.com/luminor-dev/luminor/internal/domain/manifest"
)

// Formatter renders reports in one output format.
type Formatter interface {
	// FormatDiscovery writes the plugin inventory.
	FormatDiscovery(plugins []services.DiscoveredPlugin) error

	// FormatValidation writes manifest validation results.
	FormatValidation(results []manifest.ValidationResult) error
}

// NewFormatter returns a formatter for the given format name.
func NewFormatter(format string, writer io.Writer) (Formatter, error) {
	switch format {
	case "table":
		return NewTableFormatter(writer), nil
	case "json":
		return NewJSONFormatter(writer), nil
	case "yaml":
		return NewYAMLFormatter(writer), nil
	case "sarif":
		return NewSARIFFormatter(writer), nil
	default:
		return nil, fmt.Errorf(
			"unknown format: %s (supported: %v)",
			format, SupportedFormats(),
		)
	}
}

// SupportedFormats returns list of available format names.
func SupportedFormats() []string {
	return []string{"table", "json", "yaml", "sarif"}
}

// pluginRow is the serializable view of one discovered plugin shared by
// the json and yaml formatters.
type pluginRow struct {
	ID                 string   `json:"id" yaml:"id"`
	Name               string   `json:"name,omitempty" yaml:"name,omitempty"`
	Version            string   `json:"version,omitempty" yaml:"version,omitempty"`
	GoverningPrinciple string   `json:"governing_principle,omitempty" yaml:"governing_principle,omitempty"`
	Dir                string   `json:"dir" yaml:"dir"`
	Intents            []string `json:"intents,omitempty" yaml:"intents,omitempty"`
	Permissions        []string `json:"permissions,omitempty" yaml:"permissions,omitempty"`
	Errors             []string `json:"errors,omitempty" yaml:"errors,omitempty"`
	Warnings           []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Valid              bool     `json:"valid" yaml:"valid"`
}

func toRows(plugins []services.DiscoveredPlugin) []pluginRow {
	rows := make([]pluginRow, 0, len(plugins))
	for _, dp := range plugins {
		row := pluginRow{
			ID:       dp.ID,
			Dir:      dp.Dir,
			Errors:   dp.Errors,
			Warnings: dp.Warnings,
			Valid:    dp.IsValid,
		}
		if m := dp.Manifest; m != nil {
			row.Name = m.Plugin.Name
			row.Version = m.Plugin.Version
			row.GoverningPrinciple = m.Consciousness.GoverningPrinciple
			for _, intent := range m.Capabilities.Intents {
				row.Intents = append(row.Intents, intent.Pattern)
			}
			row.Permissions = m.Capabilities.Permissions.Required
		}
		rows = append(rows, row)
	}
	return rows
}
