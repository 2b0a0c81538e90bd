// Package sandbox executes compiled-in plugins behind their manifest
// boundaries: an isolated workspace, permission checks on every host call,
// panic containment and a hard timeout. No failure inside a plugin ever
// crosses Execute as an error; everything folds into the result envelope.
package sandbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	apperrors "github.com/luminor-dev/luminor/internal/application/errors"
	"github.com/luminor-dev/luminor/internal/application/ports"
	"github.com/luminor-dev/luminor/internal/domain/manifest"
	"github.com/luminor-dev/luminor/internal/domain/permissions"
)

// DefaultTimeout bounds a single handler invocation.
const DefaultTimeout = 30 * time.Second

// workspace subdirectories created for every plugin.
var workspaceDirs = []string{"data", "cache", "logs"}

// Config carries host-side sandbox settings shared by all plugins.
type Config struct {
	// WorkspaceRoot is the directory plugin workspaces are created under.
	WorkspaceRoot string

	// Timeout bounds each handler invocation. Zero means DefaultTimeout.
	Timeout time.Duration

	// Store persists consent decisions. Nil means in-memory only.
	Store permissions.ConsentStore

	// Prompter asks the user for consent. Nil means consent can never be
	// obtained at execution time; medium and high risk actions fail with
	// a consent_required envelope instead.
	Prompter ports.ConsentPrompter

	// Risks overrides the default permission risk policy.
	Risks permissions.RiskTable
}

// Stats counts what happened inside one sandbox.
type Stats struct {
	Executions int `json:"executions"`
	Successes  int `json:"successes"`
	Violations int `json:"violations"`
	Errors     int `json:"errors"`
}

// Sandbox runs one plugin's handlers inside its declared boundary.
type Sandbox struct {
	plugin    ports.Plugin
	manifest  *manifest.Manifest
	manager   *permissions.Manager
	prompter  ports.ConsentPrompter
	logger    *slog.Logger
	workspace string
	timeout   time.Duration

	mu    sync.Mutex
	stats Stats
}

// New creates a sandbox for a plugin, verifying that the implementation
// matches its manifest and materializing the workspace on disk.
func New(cfg Config, plugin ports.Plugin, m *manifest.Manifest, logger *slog.Logger) (*Sandbox, error) {
	if plugin.PluginID() != m.Plugin.ID {
		return nil, fmt.Errorf("plugin identity mismatch: implementation reports %s, manifest declares %s",
			plugin.PluginID(), m.Plugin.ID)
	}
	if logger == nil {
		logger = slog.Default()
	}

	workspace := filepath.Join(cfg.WorkspaceRoot, m.Plugin.ID)
	for _, dir := range workspaceDirs {
		if err := os.MkdirAll(filepath.Join(workspace, dir), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create workspace for plugin %s: %w", m.Plugin.ID, err)
		}
	}

	store := cfg.Store
	if store == nil {
		store = permissions.NewMemoryConsentStore()
	}
	risks := cfg.Risks
	if risks == nil {
		risks = permissions.DefaultRiskTable()
	}

	mgrCfg := m.ManagerConfig()
	mgrCfg.Risks = risks
	mgrCfg.Store = store

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Sandbox{
		plugin:    plugin,
		manifest:  m,
		manager:   permissions.NewManager(mgrCfg),
		prompter:  cfg.Prompter,
		logger:    logger.With("plugin", m.Plugin.ID),
		workspace: workspace,
		timeout:   timeout,
	}, nil
}

// PluginID returns the owning plugin's id.
func (s *Sandbox) PluginID() string {
	return s.manifest.Plugin.ID
}

// Workspace returns the plugin's workspace root.
func (s *Sandbox) Workspace() string {
	return s.workspace
}

// BoundariesReport renders the plugin's declared boundary for display:
// permissions, forbidden actions and the resource envelope.
func (s *Sandbox) BoundariesReport() string {
	limits := s.manifest.Boundaries.ResourceLimits.WithDefaults()
	return fmt.Sprintf("%s\nResource limits: %d MB memory, %d%% CPU, %d MB storage\n",
		s.manager.BoundariesSummary(), limits.MaxMemoryMB, limits.MaxCPUPercent, limits.MaxStorageMB)
}

// Stats returns a snapshot of the sandbox counters.
func (s *Sandbox) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Execute runs the handler declared for an intent pattern. An undeclared
// pattern is a violation and the handler is never invoked. Handler panics,
// errors and timeouts all become failure envelopes.
func (s *Sandbox) Execute(ctx context.Context, pattern string, payload map[string]any) ports.ExecutionResult {
	s.count(func(st *Stats) { st.Executions++ })

	handlerName, ok := s.manifest.HandlerFor(pattern)
	if !ok {
		s.count(func(st *Stats) { st.Violations++ })
		s.logger.Warn("rejected undeclared intent", "pattern", pattern)
		return s.failure(fmt.Sprintf("intent %q is not declared in the plugin manifest", pattern), ports.ErrorTypeViolation)
	}

	handler, ok := s.plugin.Handlers()[handlerName]
	if !ok {
		s.count(func(st *Stats) { st.Errors++ })
		return s.failure(fmt.Sprintf("handler %q declared but not implemented", handlerName), ports.ErrorTypeError)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type outcome struct {
		result any
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: apperrors.NewPluginRuntimeError(
					s.PluginID(), handlerName, fmt.Errorf("panic: %v", r))}
			}
		}()
		result, err := handler(ctx, s.host(), payload)
		done <- outcome{result: result, err: err}
	}()

	select {
	case <-ctx.Done():
		s.count(func(st *Stats) { st.Errors++ })
		s.logger.Warn("handler timed out", "handler", handlerName, "timeout", s.timeout)
		return s.failure(fmt.Sprintf("handler %s exceeded the %s execution limit", handlerName, s.timeout), ports.ErrorTypeError)
	case o := <-done:
		if o.err != nil {
			return s.classifyFailure(o.err)
		}
		s.count(func(st *Stats) { st.Successes++ })
		return ports.ExecutionResult{
			Success:  true,
			PluginID: s.PluginID(),
			Result:   o.result,
		}
	}
}

// classifyFailure maps a handler error to the envelope error type.
func (s *Sandbox) classifyFailure(err error) ports.ExecutionResult {
	var violation *apperrors.SandboxViolationError
	if errors.As(err, &violation) {
		s.count(func(st *Stats) { st.Violations++ })
		s.logger.Warn("boundary violation", "action", violation.Action, "reason", violation.Reason)
		return s.failure(violation.Reason, ports.ErrorTypeViolation)
	}

	var consent *apperrors.ConsentRequiredError
	if errors.As(err, &consent) {
		s.count(func(st *Stats) { st.Violations++ })
		result := s.failure(consent.Error(), ports.ErrorTypeConsentRequired)
		result.Prompt = consent.Prompt
		return result
	}

	s.count(func(st *Stats) { st.Errors++ })
	s.logger.Error("handler failed", "error", err)
	return s.failure(err.Error(), ports.ErrorTypeError)
}

func (s *Sandbox) failure(msg, errorType string) ports.ExecutionResult {
	return ports.ExecutionResult{
		Success:   false,
		PluginID:  s.PluginID(),
		Error:     msg,
		ErrorType: errorType,
	}
}

func (s *Sandbox) count(fn func(*Stats)) {
	s.mu.Lock()
	fn(&s.stats)
	s.mu.Unlock()
}

// require checks an action against the plugin's boundary, prompting for
// consent when risk policy demands it.
func (s *Sandbox) require(action string, perm permissions.Permission) error {
	allowed, reason := s.manager.CanPerform(action, perm)
	if !allowed {
		return apperrors.NewSandboxViolation(s.PluginID(), action, reason)
	}

	if !s.manager.NeedsConsent(perm) {
		return nil
	}

	req := s.manager.RequestPermission(action, perm, map[string]string{
		"reason": fmt.Sprintf("requested during %q", action),
	})
	prompt := s.manager.GenerateConsentPrompt(req)

	if s.prompter == nil || !s.prompter.IsInteractive() {
		return apperrors.NewConsentRequired(req, prompt)
	}

	decision, err := s.prompter.Ask(context.Background(), req, prompt)
	if err != nil {
		return apperrors.NewConsentRequired(req, prompt)
	}
	if !decision.Granted {
		return apperrors.NewSandboxViolation(s.PluginID(), action,
			fmt.Sprintf("user declined permission %s", perm))
	}
	if decision.Remember {
		if err := s.manager.RecordConsent(req, decision); err != nil {
			s.logger.Warn("failed to persist consent", "permission", perm, "error", err)
		}
	}
	return nil
}

// host builds the restricted surface handed to handlers.
func (s *Sandbox) host() ports.Host {
	return &pluginHost{sandbox: s}
}

// pluginHost is the ports.Host implementation backed by one sandbox.
type pluginHost struct {
	sandbox *Sandbox
}

func (h *pluginHost) WorkspacePath() string {
	return h.sandbox.workspace
}

// resolve confines a relative path to the workspace. Escapes via "..",
// absolute paths or symlinked prefixes are violations.
func (h *pluginHost) resolve(relPath string) (string, error) {
	if filepath.IsAbs(relPath) {
		return "", apperrors.NewSandboxViolation(h.sandbox.PluginID(), "access "+relPath,
			"absolute paths are not permitted inside the workspace")
	}
	full := filepath.Join(h.sandbox.workspace, filepath.Clean(relPath))
	rel, err := filepath.Rel(h.sandbox.workspace, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", apperrors.NewSandboxViolation(h.sandbox.PluginID(), "access "+relPath,
			fmt.Sprintf("path %q escapes the plugin workspace", relPath))
	}
	return full, nil
}

func (h *pluginHost) ReadFile(relPath string) ([]byte, error) {
	if err := h.sandbox.require("read file "+relPath, permissions.FilesystemRead); err != nil {
		return nil, err
	}
	full, err := h.resolve(relPath)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(full)
}

func (h *pluginHost) WriteFile(relPath string, data []byte) error {
	if err := h.sandbox.require("write file "+relPath, permissions.FilesystemWrite); err != nil {
		return err
	}
	full, err := h.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", relPath, err)
	}
	return os.WriteFile(full, data, 0o640)
}

func (h *pluginHost) Require(action string, perm permissions.Permission) error {
	return h.sandbox.require(action, perm)
}

func (h *pluginHost) Log(level slog.Level, msg string, args ...any) {
	h.sandbox.logger.Log(context.Background(), level, msg, args...)
	h.sandbox.appendLog(level, msg, args)
}

// appendLog mirrors plugin log lines into the workspace as JSON lines, so
// a plugin's activity can be reviewed after the fact.
func (s *Sandbox) appendLog(level slog.Level, msg string, args []any) {
	entry := map[string]any{
		"ts":    time.Now().Format(time.RFC3339),
		"level": level.String(),
		"msg":   msg,
	}
	for i := 0; i+1 < len(args); i += 2 {
		if key, ok := args[i].(string); ok {
			entry[key] = args[i+1]
		}
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return
	}

	path := filepath.Join(s.workspace, "logs", "plugin.log")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return
	}
	defer f.Close()
	f.Write(append(line, '\n'))
}
