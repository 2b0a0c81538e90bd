// Package ports defines interfaces for infrastructure dependencies.
// These are the "ports" in hexagonal architecture - abstractions that
// the application layer depends on but doesn't implement.
package ports

import (
	"context"
	"log/slog"

	"github.com/luminor-dev/luminor/internal/domain/permissions"
)

// HandlerFunc is the signature every plugin intent handler implements.
// The payload carries conversation context; the returned value is the
// handler's opaque result, serialized by the caller.
type HandlerFunc func(ctx context.Context, host Host, payload map[string]any) (any, error)

// Plugin is the contract a compiled-in plugin implements. Metadata
// returned here must match the plugin's manifest; the loader rejects
// plugins where the two disagree.
type Plugin interface {
	// PluginID returns the manifest plugin id.
	PluginID() string

	// PluginVersion returns the manifest plugin version.
	PluginVersion() string

	// GoverningPrinciple returns the declared guiding principle.
	GoverningPrinciple() string

	// Handlers maps manifest handler names to their implementations.
	Handlers() map[string]HandlerFunc
}

// Host is the restricted surface a plugin sees during execution. Every
// method checks the plugin's declared boundaries before acting.
type Host interface {
	// WorkspacePath returns the plugin's isolated workspace root.
	WorkspacePath() string

	// ReadFile reads a file confined to the plugin workspace.
	ReadFile(relPath string) ([]byte, error)

	// WriteFile writes a file confined to the plugin workspace.
	WriteFile(relPath string, data []byte) error

	// Require checks an action against the plugin's permission boundary.
	// Returns a SandboxViolationError or ConsentRequiredError when the
	// action may not proceed.
	Require(action string, perm permissions.Permission) error

	// Log emits a structured log line attributed to the plugin.
	Log(level slog.Level, msg string, args ...any)
}

// PluginRegistry resolves compiled-in plugin implementations by id.
type PluginRegistry interface {
	// Lookup returns the implementation for a plugin id, if registered.
	Lookup(pluginID string) (Plugin, bool)

	// IDs returns all registered plugin ids.
	IDs() []string
}

// ConsentPrompter asks the user for a permission decision.
type ConsentPrompter interface {
	// Ask presents a rendered consent prompt and returns the decision.
	Ask(ctx context.Context, req permissions.PermissionRequest, prompt string) (permissions.ConsentDecision, error)

	// IsInteractive reports whether the prompter can actually ask.
	IsInteractive() bool
}

// IntentExecutor executes intents the core system handles itself.
type IntentExecutor interface {
	// Execute runs a core intent and returns its opaque result.
	Execute(ctx context.Context, intent string, query string) (map[string]any, error)
}
