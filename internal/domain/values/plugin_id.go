// Package values contains domain value objects that encapsulate
// primitive types with validation and such.
package values

import (
	"fmt"
	"regexp"
	"strings"
)

// Plugin IDs are lowercase alphanumeric with dashes, like directory names.
var pluginIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// PluginID represents a validated plugin identifier.
// Enforces non-empty, trimmed, filesystem-safe identifiers.
type PluginID struct {
	value string
}

// NewPluginID creates a PluginID with validation
func NewPluginID(id string) (PluginID, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return PluginID{}, fmt.Errorf("plugin id cannot be empty")
	}
	if !pluginIDPattern.MatchString(id) {
		return PluginID{}, fmt.Errorf("plugin id %q is invalid (must be lowercase alphanumeric with dashes)", id)
	}
	return PluginID{value: id}, nil
}

// MustNewPluginID creates a PluginID or panics
func MustNewPluginID(id string) PluginID {
	p, err := NewPluginID(id)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the string representation
func (p PluginID) String() string {
	return p.value
}

// IsEmpty returns true if this is the zero value
func (p PluginID) IsEmpty() bool {
	return p.value == ""
}

// Equals checks if two plugin IDs are equal
func (p PluginID) Equals(other PluginID) bool {
	return p.value == other.value
}

// MarshalJSON implements json.Marshaler
func (p PluginID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (p *PluginID) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 {
		return fmt.Errorf("invalid plugin id JSON")
	}
	s = s[1 : len(s)-1]

	id, err := NewPluginID(s)
	if err != nil {
		return err
	}
	*p = id
	return nil
}
