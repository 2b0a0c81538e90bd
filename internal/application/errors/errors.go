// Package apperrors defines application-level error types.
package apperrors

import (
	"fmt"

	"github.com/luminor-dev/luminor/internal/domain/permissions"
)

// ManifestError indicates a plugin manifest failed validation. The plugin
// is excluded from routing; diagnostics are preserved for the operator.
type ManifestError struct {
	PluginID string
	Errors   []string
}

func (e *ManifestError) Error() string {
	return fmt.Sprintf("manifest for plugin %s is invalid (%d errors)", e.PluginID, len(e.Errors))
}

// NewManifestError creates a new manifest error.
func NewManifestError(pluginID string, errs []string) *ManifestError {
	return &ManifestError{
		PluginID: pluginID,
		Errors:   errs,
	}
}

// SandboxViolationError indicates a plugin attempted an action outside its
// declared boundaries.
type SandboxViolationError struct {
	PluginID string
	Action   string
	Reason   string
}

func (e *SandboxViolationError) Error() string {
	return fmt.Sprintf("sandbox violation by plugin %s: %s", e.PluginID, e.Reason)
}

// NewSandboxViolation creates a new sandbox violation error.
func NewSandboxViolation(pluginID, action, reason string) *SandboxViolationError {
	return &SandboxViolationError{
		PluginID: pluginID,
		Action:   action,
		Reason:   reason,
	}
}

// ConsentRequiredError indicates an action needs an explicit user decision
// before it may proceed. It carries the request and the rendered prompt so
// the conversation layer can ask and resume.
type ConsentRequiredError struct {
	Request permissions.PermissionRequest
	Prompt  string
}

func (e *ConsentRequiredError) Error() string {
	return fmt.Sprintf("consent required for plugin %s: %s (%s)",
		e.Request.PluginID, e.Request.Action, e.Request.Permission)
}

// NewConsentRequired creates a new consent-required error.
func NewConsentRequired(req permissions.PermissionRequest, prompt string) *ConsentRequiredError {
	return &ConsentRequiredError{
		Request: req,
		Prompt:  prompt,
	}
}

// PluginRuntimeError wraps a failure inside a plugin handler. It is caught
// at the sandbox boundary and must never crash the host or sibling plugins.
type PluginRuntimeError struct {
	Cause    error
	PluginID string
	Handler  string
}

func (e *PluginRuntimeError) Error() string {
	return fmt.Sprintf("plugin %s handler %s failed: %v", e.PluginID, e.Handler, e.Cause)
}

func (e *PluginRuntimeError) Unwrap() error {
	return e.Cause
}

// NewPluginRuntimeError creates a new plugin runtime error.
func NewPluginRuntimeError(pluginID, handler string, cause error) *PluginRuntimeError {
	return &PluginRuntimeError{
		PluginID: pluginID,
		Handler:  handler,
		Cause:    cause,
	}
}
