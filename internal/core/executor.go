// Package core implements the built-in intent engine: the handlers that
// run when no plugin claims a query. The real system integrations live
// behind the backends map so tests and the default build stay hermetic.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/luminor-dev/luminor/internal/domain/routing"
	"github.com/luminor-dev/luminor/internal/version"
)

// Backend executes one core intent against the underlying system.
type Backend func(ctx context.Context, query string) (map[string]any, error)

// LocalExecutor implements ports.IntentExecutor with in-process backends.
// Intents without a registered backend get an acknowledgment response, so
// the conversation loop keeps working on systems where the integration is
// not available.
type LocalExecutor struct {
	logger   *slog.Logger
	backends map[string]Backend
}

// NewLocalExecutor creates an executor with no live backends.
func NewLocalExecutor(logger *slog.Logger) *LocalExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalExecutor{
		logger:   logger,
		backends: make(map[string]Backend),
	}
}

// RegisterBackend installs the real implementation for a core intent.
func (e *LocalExecutor) RegisterBackend(intent string, backend Backend) {
	e.backends[intent] = backend
}

// Execute runs a core intent and returns its opaque result.
func (e *LocalExecutor) Execute(ctx context.Context, intent string, query string) (map[string]any, error) {
	if intent == routing.IntentUnknown {
		return e.unknown(query), nil
	}

	if backend, ok := e.backends[intent]; ok {
		result, err := backend(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("intent %s: %w", intent, err)
		}
		return result, nil
	}

	e.logger.Debug("no backend for intent, acknowledging", "intent", intent)
	return map[string]any{
		"success": true,
		"intent":  intent,
		"message": e.acknowledge(intent, query),
	}, nil
}

// unknown is the answer for queries nothing could route.
func (e *LocalExecutor) unknown(query string) map[string]any {
	return map[string]any{
		"success": false,
		"intent":  routing.IntentUnknown,
		"message": fmt.Sprintf("I don't understand %q yet. Try asking to install, remove or search for a package, or check system health.", strings.TrimSpace(query)),
	}
}

func (e *LocalExecutor) acknowledge(intent, query string) string {
	switch intent {
	case "install":
		return fmt.Sprintf("I would install the package from %q, but no package backend is configured.", query)
	case "remove":
		return fmt.Sprintf("I would remove the package from %q, but no package backend is configured.", query)
	case "search":
		return fmt.Sprintf("I would search for packages matching %q, but no package backend is configured.", query)
	case "health_check":
		return fmt.Sprintf("luminor %s is running. No system health backend is configured.", version.Version)
	default:
		return fmt.Sprintf("Understood %q as intent %s, but no backend is configured for it.", query, intent)
	}
}
