package output

import (
	"encoding/json"
	"io"

	"github.com/luminor-dev/luminor/internal/application/services"
	"github.com/luminor-dev/luminor/internal/domain/manifest"
)

// JSONFormatter renders reports as indented JSON.
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// FormatDiscovery writes the plugin inventory as JSON.
func (f *JSONFormatter) FormatDiscovery(plugins []services.DiscoveredPlugin) error {
	return f.write(map[string]any{"plugins": toRows(plugins)})
}

// FormatValidation writes manifest validation results as JSON.
func (f *JSONFormatter) FormatValidation(results []manifest.ValidationResult) error {
	return f.write(map[string]any{"results": results})
}

func (f *JSONFormatter) write(payload any) error {
	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
