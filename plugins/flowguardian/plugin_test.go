package flowguardian

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luminor-dev/luminor/internal/application/ports"
	"github.com/luminor-dev/luminor/internal/domain/manifest"
	"github.com/luminor-dev/luminor/internal/domain/permissions"
	"github.com/luminor-dev/luminor/internal/infrastructure/sandbox"
)

func loadManifest(t *testing.T) *manifest.Manifest {
	t.Helper()
	validator, err := manifest.NewValidator()
	require.NoError(t, err)

	res := validator.ValidateManifest("manifest.yaml")
	require.True(t, res.Valid, "manifest must be valid: %v", res.Errors)
	require.NotNil(t, res.Manifest)
	return res.Manifest
}

func TestManifestMatchesImplementation(t *testing.T) {
	m := loadManifest(t)
	p := &Plugin{}

	assert.Equal(t, p.PluginID(), m.Plugin.ID)
	assert.Equal(t, p.PluginVersion(), m.Plugin.Version)
	assert.Equal(t, p.GoverningPrinciple(), m.Consciousness.GoverningPrinciple)

	handlers := p.Handlers()
	for _, intent := range m.Capabilities.Intents {
		assert.Contains(t, handlers, intent.Handler, "intent %q has no handler", intent.Pattern)
	}
}

func TestFocusSessionEndToEnd(t *testing.T) {
	m := loadManifest(t)
	sb, err := sandbox.New(sandbox.Config{WorkspaceRoot: t.TempDir()}, &Plugin{}, m, nil)
	require.NoError(t, err)

	// Notifications are low risk: no consent needed, no prompter wired.
	result := sb.Execute(context.Background(), "block distractions", map[string]any{"query": "block distractions"})
	require.True(t, result.Success, "unexpected failure: %s", result.Error)

	result = sb.Execute(context.Background(), "start focus session", map[string]any{"minutes": 50})
	require.True(t, result.Success, "unexpected failure: %s", result.Error)

	result = sb.Execute(context.Background(), "focus status", nil)
	require.True(t, result.Success, "unexpected failure: %s", result.Error)
	status, ok := result.Result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, status["blocking"])
}

func TestForbiddenActionDenied(t *testing.T) {
	m := loadManifest(t)
	manager := permissions.NewManager(m.ManagerConfig())

	allowed, reason := manager.CanPerform("share data externally to cloud", permissions.SystemNotifications)
	assert.False(t, allowed)
	assert.Contains(t, reason, "share data externally")
}

func TestUndeclaredIntentRejected(t *testing.T) {
	m := loadManifest(t)
	sb, err := sandbox.New(sandbox.Config{WorkspaceRoot: t.TempDir()}, &Plugin{}, m, nil)
	require.NoError(t, err)

	result := sb.Execute(context.Background(), "read personal files", nil)
	assert.False(t, result.Success)
	assert.Equal(t, ports.ErrorTypeViolation, result.ErrorType)
}
