package output

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/luminor-dev/luminor/internal/application/services"
	"github.com/luminor-dev/luminor/internal/domain/manifest"
)

// YAMLFormatter renders reports as YAML.
type YAMLFormatter struct {
	writer io.Writer
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(w io.Writer) *YAMLFormatter {
	return &YAMLFormatter{writer: w}
}

// FormatDiscovery writes the plugin inventory as YAML.
func (f *YAMLFormatter) FormatDiscovery(plugins []services.DiscoveredPlugin) error {
	return f.write(map[string]any{"plugins": toRows(plugins)})
}

// FormatValidation writes manifest validation results as YAML.
func (f *YAMLFormatter) FormatValidation(results []manifest.ValidationResult) error {
	return f.write(map[string]any{"results": results})
}

func (f *YAMLFormatter) write(payload any) error {
	encoder := yaml.NewEncoder(f.writer)
	encoder.SetIndent(2)

	if err := encoder.Encode(payload); err != nil {
		return err
	}
	return encoder.Close()
}
