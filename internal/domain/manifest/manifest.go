// Package manifest defines the declarative plugin manifest and its
// two-phase validator: a structural pass driven by a JSON Schema that
// collects every problem, and a semantic lint pass that only ever produces
// warnings.
package manifest

import "github.com/luminor-dev/luminor/internal/domain/permissions"

// FileNames lists the manifest file names probed inside a plugin
// directory, in order of preference.
var FileNames = []string{"manifest.yaml", "manifest.json"}

// Manifest is the contract between a plugin author and the host. The
// top-level keys are versioned via ManifestVersion and must stay
// backward-compatible.
type Manifest struct {
	ManifestVersion string        `yaml:"manifest_version" json:"manifest_version"`
	Plugin          PluginInfo    `yaml:"plugin" json:"plugin"`
	Consciousness   Consciousness `yaml:"consciousness" json:"consciousness"`
	Capabilities    Capabilities  `yaml:"capabilities" json:"capabilities"`
	Boundaries      Boundaries    `yaml:"boundaries" json:"boundaries"`
}

// PluginInfo identifies the plugin.
type PluginInfo struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Version     string `yaml:"version" json:"version"`
	Description string `yaml:"description" json:"description"`
	Author      Author `yaml:"author" json:"author"`
}

// Author identifies who wrote the plugin.
type Author struct {
	Name  string `yaml:"name" json:"name"`
	Email string `yaml:"email,omitempty" json:"email,omitempty"`
}

// Consciousness carries the plugin's display-only self-description. These
// strings are opaque free text: they appear in consent prompts and reports
// and are never used in authorization decisions.
type Consciousness struct {
	GoverningPrinciple string `yaml:"governing_principle" json:"governing_principle"`
	SacredPromise      string `yaml:"sacred_promise" json:"sacred_promise"`
}

// Capabilities declares what the plugin can do: the ordered intent list and
// the permissions it requires.
type Capabilities struct {
	Intents     []Intent       `yaml:"intents" json:"intents"`
	Permissions PermissionSpec `yaml:"permissions,omitempty" json:"permissions,omitempty"`
}

// Intent is one (pattern, handler) pair the plugin declares it can fulfill.
type Intent struct {
	Pattern string `yaml:"pattern" json:"pattern"`
	Handler string `yaml:"handler" json:"handler"`
}

// PermissionSpec lists required permission tokens.
type PermissionSpec struct {
	Required []string `yaml:"required,omitempty" json:"required,omitempty"`
}

// Boundaries declares what the plugin must never do, plus its resource
// envelope.
type Boundaries struct {
	ForbiddenActions []string       `yaml:"forbidden_actions" json:"forbidden_actions"`
	ResourceLimits   ResourceLimits `yaml:"resource_limits,omitempty" json:"resource_limits,omitempty"`
}

// ResourceLimits is the declared resource envelope. It is a logical
// contract reported for observability; hard enforcement belongs to an
// external process supervisor.
type ResourceLimits struct {
	MaxMemoryMB   int `yaml:"max_memory_mb,omitempty" json:"max_memory_mb,omitempty"`
	MaxCPUPercent int `yaml:"max_cpu_percent,omitempty" json:"max_cpu_percent,omitempty"`
	MaxStorageMB  int `yaml:"max_storage_mb,omitempty" json:"max_storage_mb,omitempty"`
}

// WithDefaults fills unset limits, mirroring what the sandbox assumes when
// a manifest stays silent.
func (r ResourceLimits) WithDefaults() ResourceLimits {
	if r.MaxMemoryMB == 0 {
		r.MaxMemoryMB = 256
	}
	if r.MaxCPUPercent == 0 {
		r.MaxCPUPercent = 10
	}
	if r.MaxStorageMB == 0 {
		r.MaxStorageMB = 100
	}
	return r
}

// HandlerFor returns the declared handler name for an intent pattern.
func (m *Manifest) HandlerFor(pattern string) (string, bool) {
	for _, intent := range m.Capabilities.Intents {
		if intent.Pattern == pattern {
			return intent.Handler, true
		}
	}
	return "", false
}

// DeclaresPattern reports whether the manifest declares the intent pattern.
func (m *Manifest) DeclaresPattern(pattern string) bool {
	_, ok := m.HandlerFor(pattern)
	return ok
}

// RequiredPermissions returns the declared permission tokens as a Grant,
// silently skipping tokens the host does not recognize (the lint pass warns
// about those).
func (m *Manifest) RequiredPermissions() permissions.Grant {
	grant := permissions.NewGrant()
	for _, token := range m.Capabilities.Permissions.Required {
		if perm, err := permissions.Parse(token); err == nil {
			grant.Add(perm)
		}
	}
	return grant
}

// ManagerConfig derives the permission-manager configuration for this
// plugin.
func (m *Manifest) ManagerConfig() permissions.ManagerConfig {
	return permissions.ManagerConfig{
		PluginID:           m.Plugin.ID,
		GoverningPrinciple: m.Consciousness.GoverningPrinciple,
		SacredPromise:      m.Consciousness.SacredPromise,
		Required:           m.RequiredPermissions(),
		ForbiddenActions:   m.Boundaries.ForbiddenActions,
	}
}
