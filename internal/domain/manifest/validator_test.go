package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validManifest = `
manifest_version: "1.0.0"
plugin:
  id: "test-plugin"
  name: "Test Plugin"
  version: "1.0.0"
  description: "A test plugin"
  author:
    name: "Test Author"
consciousness:
  governing_principle: "protect_attention"
  sacred_promise: "I will protect your focus"
capabilities:
  intents:
    - pattern: "test pattern"
      handler: "handle_test"
boundaries:
  forbidden_actions:
    - "share data externally"
`

func Test_Validator_ValidManifest(t *testing.T) {
	v := MustNewValidator()

	result := v.ValidateBytes([]byte(validManifest))

	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	require.NotNil(t, result.Manifest)
	assert.Equal(t, "test-plugin", result.Manifest.Plugin.ID)
	assert.Equal(t, "protect_attention", result.Manifest.Consciousness.GoverningPrinciple)

	handler, ok := result.Manifest.HandlerFor("test pattern")
	require.True(t, ok)
	assert.Equal(t, "handle_test", handler)
}

func Test_Validator_MissingSections(t *testing.T) {
	tests := []struct {
		name        string
		drop        string
		errContains string
	}{
		{name: "missing plugin", drop: "plugin", errContains: "plugin"},
		{name: "missing consciousness", drop: "consciousness", errContains: "consciousness"},
		{name: "missing capabilities", drop: "capabilities", errContains: "capabilities"},
		{name: "missing boundaries", drop: "boundaries", errContains: "boundaries"},
		{name: "missing manifest_version", drop: "manifest_version", errContains: "manifest_version"},
	}

	v := MustNewValidator()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.ValidateBytes([]byte(dropSection(validManifest, tt.drop)))

			assert.False(t, result.Valid)
			assert.True(t, anyContains(result.Errors, tt.errContains),
				"expected an error naming %q, got %v", tt.errContains, result.Errors)
		})
	}
}

// dropSection removes a top-level YAML section by name.
func dropSection(doc, section string) string {
	lines := strings.Split(doc, "\n")
	var out []string
	dropping := false
	for _, line := range lines {
		if strings.HasPrefix(line, section+":") {
			dropping = true
			continue
		}
		if dropping {
			if line != "" && !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") {
				dropping = false
			} else {
				continue
			}
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func anyContains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}

func Test_Validator_CollectsAllErrors(t *testing.T) {
	v := MustNewValidator()

	// Missing consciousness, capabilities, and boundaries at once: every
	// problem must surface in a single call.
	truncated := `
manifest_version: "1.0.0"
plugin:
  id: "bad-plugin"
  name: "Bad Plugin"
`
	result := v.ValidateBytes([]byte(truncated))

	assert.False(t, result.Valid)
	assert.True(t, anyContains(result.Errors, "consciousness"))
	assert.True(t, anyContains(result.Errors, "capabilities"))
	assert.True(t, anyContains(result.Errors, "boundaries"))
}

func Test_Validator_MalformedPluginID(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		valid bool
	}{
		{name: "uppercase", id: "Flow-Guardian", valid: false},
		{name: "underscore", id: "flow_guardian", valid: false},
		{name: "path separator", id: "../escape", valid: false},
		{name: "leading dash", id: "-guardian", valid: false},
		{name: "well formed", id: "flow-guardian2", valid: true},
	}

	v := MustNewValidator()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := strings.Replace(validManifest, `id: "test-plugin"`,
				`id: "`+tt.id+`"`, 1)
			result := v.ValidateBytes([]byte(doc))

			assert.Equal(t, tt.valid, result.Valid)
			if !tt.valid {
				assert.True(t, anyContains(result.Errors, "plugin id"),
					"expected an error naming the plugin id, got %v", result.Errors)
			}
		})
	}
}

func Test_Validator_ParseFailure(t *testing.T) {
	v := MustNewValidator()

	result := v.ValidateBytes([]byte("{not: [valid: yaml"))

	assert.False(t, result.Valid)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "parse")
}

func Test_Validator_SemanticWarnings(t *testing.T) {
	v := MustNewValidator()

	underConstrained := `
manifest_version: "1.0.0"
plugin:
  id: "test-plugin"
  name: "Test Plugin"
  version: "1.0.0"
  description: "A test plugin"
  author:
    name: "Test Author"
consciousness:
  governing_principle: "protect_attention"
  sacred_promise: "I will protect your focus"
capabilities:
  intents:
    - pattern: "test pattern"
      handler: "handle_test"
  permissions:
    required:
      - "network.internet"
boundaries:
  forbidden_actions: []
`
	result := v.ValidateBytes([]byte(underConstrained))

	// Warnings never flip validity.
	assert.True(t, result.Valid)
	assert.True(t, result.HasWarnings())
	assert.True(t, anyContains(result.Warnings, "network.internet"),
		"expected a warning naming the risky permission, got %v", result.Warnings)
}

func Test_Validator_UnknownPermissionWarns(t *testing.T) {
	v := MustNewValidator()

	doc := strings.Replace(validManifest,
		"boundaries:",
		"  permissions:\n    required:\n      - \"quantum.entangle\"\nboundaries:", 1)

	result := v.ValidateBytes([]byte(doc))

	assert.True(t, result.Valid)
	assert.True(t, anyContains(result.Warnings, "quantum.entangle"))
}

func Test_Validator_NonSemverVersionWarns(t *testing.T) {
	v := MustNewValidator()

	doc := strings.Replace(validManifest, `manifest_version: "1.0.0"`, `manifest_version: "one"`, 1)
	result := v.ValidateBytes([]byte(doc))

	assert.True(t, result.Valid)
	assert.True(t, anyContains(result.Warnings, "manifest_version"))
}

func Test_Validator_JSONManifest(t *testing.T) {
	v := MustNewValidator()

	jsonDoc := `{
  "manifest_version": "1.0.0",
  "plugin": {
    "id": "json-plugin",
    "name": "JSON Plugin",
    "version": "1.0.0",
    "description": "Declared in JSON",
    "author": {"name": "Test Author"}
  },
  "consciousness": {
    "governing_principle": "preserve_privacy",
    "sacred_promise": "Your data stays local"
  },
  "capabilities": {
    "intents": [{"pattern": "scrub history", "handler": "handle_scrub"}]
  },
  "boundaries": {
    "forbidden_actions": ["upload anything"]
  }
}`
	result := v.ValidateBytes([]byte(jsonDoc))

	assert.True(t, result.Valid, "errors: %v", result.Errors)
	require.NotNil(t, result.Manifest)
	assert.Equal(t, "json-plugin", result.Manifest.Plugin.ID)
}

func Test_Validator_ValidateManifestFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validManifest), 0o600))

	v := MustNewValidator()
	result := v.ValidateManifest(path)

	assert.True(t, result.Valid)
	assert.Equal(t, path, result.Path)

	missing := v.ValidateManifest(filepath.Join(dir, "nope.yaml"))
	assert.False(t, missing.Valid)
	assert.Contains(t, missing.Errors[0], "read")
}

func Test_FindManifest(t *testing.T) {
	dir := t.TempDir()

	_, found := FindManifest(dir)
	assert.False(t, found)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"), []byte("{}"), 0o600))
	path, found := FindManifest(dir)
	require.True(t, found)
	assert.Equal(t, filepath.Join(dir, "manifest.json"), path)

	// YAML wins over JSON when both are present.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.yaml"), []byte(""), 0o600))
	path, found = FindManifest(dir)
	require.True(t, found)
	assert.Equal(t, filepath.Join(dir, "manifest.yaml"), path)
}

func Test_ResourceLimits_WithDefaults(t *testing.T) {
	limits := ResourceLimits{}.WithDefaults()
	assert.Equal(t, 256, limits.MaxMemoryMB)
	assert.Equal(t, 10, limits.MaxCPUPercent)
	assert.Equal(t, 100, limits.MaxStorageMB)

	declared := ResourceLimits{MaxMemoryMB: 128}.WithDefaults()
	assert.Equal(t, 128, declared.MaxMemoryMB)
	assert.Equal(t, 10, declared.MaxCPUPercent)
}
