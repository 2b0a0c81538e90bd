package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/luminor-dev/luminor/internal/application/services"
	"github.com/luminor-dev/luminor/internal/domain/manifest"
)

func sampleDiscovery() []services.DiscoveredPlugin {
	return []services.DiscoveredPlugin{
		{
			ID:      "flow-guardian",
			Dir:     "plugins/flowguardian",
			IsValid: true,
			Manifest: &manifest.Manifest{
				ManifestVersion: "1.0.0",
				Plugin: manifest.PluginInfo{
					ID:      "flow-guardian",
					Name:    "Flow Guardian",
					Version: "0.1.0",
				},
				Consciousness: manifest.Consciousness{
					GoverningPrinciple: "protect user attention",
				},
				Capabilities: manifest.Capabilities{
					Intents: []manifest.Intent{
						{Pattern: "block distractions", Handler: "block_distractions"},
					},
					Permissions: manifest.PermissionSpec{
						Required: []string{"system.notifications"},
					},
				},
			},
		},
		{
			Dir:    "plugins/broken",
			Errors: []string{"plugin: missing required field"},
		},
	}
}

func sampleValidation() []manifest.ValidationResult {
	return []manifest.ValidationResult{
		{
			Path:     "plugins/flowguardian/manifest.yaml",
			Valid:    true,
			Warnings: []string{"elevated permissions without forbidden actions"},
		},
		{
			Path:   "plugins/broken/manifest.yaml",
			Valid:  false,
			Errors: []string{"plugin: missing required field", "consciousness: missing"},
		},
	}
}

func TestNewFormatter(t *testing.T) {
	var buf bytes.Buffer
	for _, format := range SupportedFormats() {
		_, err := NewFormatter(format, &buf)
		require.NoError(t, err, "format %s", format)
	}

	_, err := NewFormatter("xml", &buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestTableFormatDiscovery(t *testing.T) {
	var buf bytes.Buffer
	f := NewTableFormatter(&buf)
	f.EnableColor = false

	require.NoError(t, f.FormatDiscovery(sampleDiscovery()))
	out := buf.String()

	assert.Contains(t, out, "flow-guardian")
	assert.Contains(t, out, "0.1.0")
	assert.Contains(t, out, "invalid")
	assert.Contains(t, out, "missing required field")
	assert.Contains(t, out, "protect user attention")
}

func TestTableFormatDiscoveryEmpty(t *testing.T) {
	var buf bytes.Buffer
	f := NewTableFormatter(&buf)
	f.EnableColor = false

	require.NoError(t, f.FormatDiscovery(nil))
	assert.Contains(t, buf.String(), "No plugins discovered")
}

func TestTableFormatValidation(t *testing.T) {
	var buf bytes.Buffer
	f := NewTableFormatter(&buf)
	f.EnableColor = false

	require.NoError(t, f.FormatValidation(sampleValidation()))
	out := buf.String()

	assert.Contains(t, out, "VALID")
	assert.Contains(t, out, "INVALID")
	assert.Contains(t, out, "warning:")
	assert.Contains(t, out, "error:")
}

func TestJSONFormatDiscovery(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(&buf).FormatDiscovery(sampleDiscovery()))

	var payload struct {
		Plugins []struct {
			ID          string   `json:"id"`
			Valid       bool     `json:"valid"`
			Intents     []string `json:"intents"`
			Permissions []string `json:"permissions"`
		} `json:"plugins"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &payload))
	require.Len(t, payload.Plugins, 2)
	assert.Equal(t, "flow-guardian", payload.Plugins[0].ID)
	assert.True(t, payload.Plugins[0].Valid)
	assert.Equal(t, []string{"block distractions"}, payload.Plugins[0].Intents)
	assert.False(t, payload.Plugins[1].Valid)
}

func TestYAMLFormatValidation(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLFormatter(&buf).FormatValidation(sampleValidation()))

	var payload struct {
		Results []struct {
			Valid  bool     `yaml:"valid"`
			Errors []string `yaml:"errors"`
		} `yaml:"results"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &payload))
	require.Len(t, payload.Results, 2)
	assert.True(t, payload.Results[0].Valid)
	assert.Len(t, payload.Results[1].Errors, 2)
}

func TestSARIFFormatValidation(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewSARIFFormatter(&buf).FormatValidation(sampleValidation()))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "2.1.0", doc["version"])

	out := buf.String()
	assert.Contains(t, out, "manifest-error")
	assert.Contains(t, out, "manifest-warning")
	assert.Contains(t, out, "missing required field")

	// Two errors and one warning across the results.
	assert.Equal(t, 2, strings.Count(out, `"manifest-error"`)-1, "rule id appears once per result plus the rule definition")
}

func TestSARIFFormatDiscovery(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewSARIFFormatter(&buf).FormatDiscovery(sampleDiscovery()))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	runs, ok := doc["runs"].([]any)
	require.True(t, ok)
	require.Len(t, runs, 1)
}
