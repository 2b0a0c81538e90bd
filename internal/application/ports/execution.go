package ports

import "context"

// Error types appearing in ExecutionResult.ErrorType.
const (
	ErrorTypeViolation       = "violation"
	ErrorTypeConsentRequired = "consent_required"
	ErrorTypeError           = "error"
)

// ExecutionResult is the uniform envelope every sandboxed execution
// produces. Failures are data here: a plugin fault fills Error and
// ErrorType instead of propagating.
type ExecutionResult struct {
	Result    any    `json:"result,omitempty"`
	PluginID  string `json:"plugin_id"`
	Error     string `json:"error,omitempty"`
	ErrorType string `json:"error_type,omitempty"`

	// Prompt carries the rendered consent prompt when ErrorType is
	// consent_required, so a front end can show the user what to approve.
	Prompt  string `json:"prompt,omitempty"`
	Success bool   `json:"success"`
}

// PluginSandbox executes intents for one plugin inside its boundary.
type PluginSandbox interface {
	// Execute runs the handler declared for the intent pattern. It never
	// returns an error: every failure mode is folded into the envelope.
	Execute(ctx context.Context, pattern string, payload map[string]any) ExecutionResult

	// PluginID returns the owning plugin's id.
	PluginID() string
}

// SandboxFactory creates sandboxes on demand. The router creates one per
// plugin lazily, on first execution.
type SandboxFactory interface {
	Create(ctx context.Context, pluginID string) (PluginSandbox, error)
}
