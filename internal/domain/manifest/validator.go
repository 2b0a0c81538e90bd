package manifest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	goyaml "github.com/goccy/go-yaml"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/luminor-dev/luminor/internal/domain/permissions"
	"github.com/luminor-dev/luminor/internal/domain/values"
)

// manifestSchema is the structural contract for manifest files. Missing
// required keys surface as one error each so a single validation run
// reports every problem.
const manifestSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["manifest_version", "plugin", "consciousness", "capabilities", "boundaries"],
  "properties": {
    "manifest_version": {"type": "string", "minLength": 1},
    "plugin": {
      "type": "object",
      "required": ["id", "name", "version", "description", "author"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "name": {"type": "string", "minLength": 1},
        "version": {"type": "string", "minLength": 1},
        "description": {"type": "string"},
        "author": {
          "type": "object",
          "required": ["name"],
          "properties": {
            "name": {"type": "string", "minLength": 1},
            "email": {"type": "string"}
          }
        }
      }
    },
    "consciousness": {
      "type": "object",
      "required": ["governing_principle", "sacred_promise"],
      "properties": {
        "governing_principle": {"type": "string", "minLength": 1},
        "sacred_promise": {"type": "string"}
      }
    },
    "capabilities": {
      "type": "object",
      "required": ["intents"],
      "properties": {
        "intents": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["pattern", "handler"],
            "properties": {
              "pattern": {"type": "string", "minLength": 1},
              "handler": {"type": "string", "minLength": 1}
            }
          }
        },
        "permissions": {
          "type": "object",
          "properties": {
            "required": {"type": "array", "items": {"type": "string"}}
          }
        }
      }
    },
    "boundaries": {
      "type": "object",
      "required": ["forbidden_actions"],
      "properties": {
        "forbidden_actions": {"type": "array", "items": {"type": "string"}},
        "resource_limits": {"type": "object"}
      }
    }
  }
}`

// ValidationResult is the outcome of validating one manifest. Problems are
// always data, never exceptions: errors flip Valid, warnings never do.
type ValidationResult struct {
	Path     string    `json:"path,omitempty" yaml:"path,omitempty"`
	Valid    bool      `json:"valid" yaml:"valid"`
	Errors   []string  `json:"errors,omitempty" yaml:"errors,omitempty"`
	Warnings []string  `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Manifest *Manifest `json:"manifest,omitempty" yaml:"manifest,omitempty"`
}

// HasWarnings reports whether the semantic pass flagged anything.
func (r ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Validator validates plugin manifests. Construct once and reuse: the
// schema is compiled and lint expressions are cached across calls.
type Validator struct {
	schema *jsonschema.Schema
	linter *Linter
}

// Option configures a Validator.
type Option func(*Validator)

// WithRiskTable overrides the risk policy used by the semantic lint pass.
func WithRiskTable(table permissions.RiskTable) Option {
	return func(v *Validator) {
		v.linter = NewLinter(table)
	}
}

// NewValidator compiles the manifest schema and the built-in lint rules.
func NewValidator(opts ...Option) (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	if err := compiler.AddResource("manifest.schema.json", bytes.NewReader([]byte(manifestSchema))); err != nil {
		return nil, fmt.Errorf("failed to add manifest schema resource: %w", err)
	}

	schema, err := compiler.Compile("manifest.schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile manifest schema: %w", err)
	}

	v := &Validator{
		schema: schema,
		linter: NewLinter(permissions.DefaultRiskTable()),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// MustNewValidator creates a Validator or panics. The schema and rules are
// compile-time constants, so failure here is a programming error.
func MustNewValidator(opts ...Option) *Validator {
	v, err := NewValidator(opts...)
	if err != nil {
		panic(err)
	}
	return v
}

// ValidateManifest validates the manifest file at path.
func (v *Validator) ValidateManifest(path string) ValidationResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return ValidationResult{
			Path:   path,
			Valid:  false,
			Errors: []string{fmt.Sprintf("failed to read manifest: %v", err)},
		}
	}

	result := v.ValidateBytes(data)
	result.Path = filepath.Clean(path)
	return result
}

// ValidateBytes validates raw manifest content. The structural phase
// collects every schema violation; the semantic phase appends warnings
// whenever a typed manifest could be decoded, even for invalid manifests,
// so diagnostics stay as complete as possible.
func (v *Validator) ValidateBytes(data []byte) ValidationResult {
	var result ValidationResult

	// Parse phase. JSON manifests parse fine here too: YAML is a superset.
	var doc map[string]interface{}
	if err := goyaml.Unmarshal(data, &doc); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to parse manifest: %v", err))
		return result
	}

	// Structural phase: collect all schema violations, never fail fast.
	if err := v.schema.Validate(normalizeDoc(doc)); err != nil {
		if verr, ok := err.(*jsonschema.ValidationError); ok {
			result.Errors = append(result.Errors, collectSchemaErrors(verr)...)
		} else {
			result.Errors = append(result.Errors, fmt.Sprintf("structural validation failed: %v", err))
		}
	}

	// Typed decode. Strict first so typos in known sections surface; a
	// strict failure falls back to a lenient decode with a warning, keeping
	// manifests from newer manifest_versions loadable.
	m, strictErr := decodeStrict(data)
	if strictErr != nil {
		lenient, lenientErr := decodeLenient(data)
		if lenientErr != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to decode manifest: %v", lenientErr))
		} else {
			m = lenient
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("manifest contains fields this host does not recognize: %v", strictErr))
		}
	}
	result.Manifest = m

	// The plugin id names the workspace directory, so it must be a valid
	// identifier, not just a non-empty string. The schema already reports
	// absent ids; this catches malformed ones.
	if m != nil && m.Plugin.ID != "" {
		if _, err := values.NewPluginID(m.Plugin.ID); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("/plugin/id: %v", err))
		}
	}

	// Semantic phase: warnings only, validity unchanged.
	if m != nil {
		result.Warnings = append(result.Warnings, v.linter.Lint(m)...)
	}

	result.Valid = len(result.Errors) == 0
	return result
}

func decodeStrict(data []byte) (*Manifest, error) {
	var m Manifest
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

func decodeLenient(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// collectSchemaErrors flattens a schema validation error tree into one
// message per leaf cause, each naming the offending location.
func collectSchemaErrors(err *jsonschema.ValidationError) []string {
	var messages []string

	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			location := e.InstanceLocation
			if location == "" {
				location = "(root)"
			}
			messages = append(messages, fmt.Sprintf("%s: %s", location, e.Message))
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}

	walk(err)
	return messages
}

// normalizeDoc converts YAML-decoded values into the shapes the JSON Schema
// validator expects. goccy/go-yaml decodes map keys as strings already; the
// main normalization is unsigned and sized integers.
func normalizeDoc(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = normalizeDoc(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = normalizeDoc(item)
		}
		return out
	case uint64:
		return int64(val)
	case int:
		return int64(val)
	case uint:
		return int64(val)
	default:
		return v
	}
}

// FindManifest locates the manifest file inside a plugin directory.
func FindManifest(pluginDir string) (string, bool) {
	for _, name := range FileNames {
		candidate := filepath.Join(pluginDir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

// Summary renders a one-line description of the result for logs.
func (r ValidationResult) Summary() string {
	state := "valid"
	if !r.Valid {
		state = "invalid"
	}
	parts := []string{state}
	if len(r.Errors) > 0 {
		parts = append(parts, fmt.Sprintf("%d errors", len(r.Errors)))
	}
	if len(r.Warnings) > 0 {
		parts = append(parts, fmt.Sprintf("%d warnings", len(r.Warnings)))
	}
	return strings.Join(parts, ", ")
}
