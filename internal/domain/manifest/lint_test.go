package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luminor-dev/luminor/internal/domain/permissions"
)

func lintedManifest(perms, forbidden []string) *Manifest {
	return &Manifest{
		ManifestVersion: "1.0.0",
		Plugin: PluginInfo{
			ID:      "test-plugin",
			Name:    "Test Plugin",
			Version: "1.0.0",
		},
		Capabilities: Capabilities{
			Intents:     []Intent{{Pattern: "test pattern", Handler: "handle_test"}},
			Permissions: PermissionSpec{Required: perms},
		},
		Boundaries: Boundaries{ForbiddenActions: forbidden},
	}
}

func Test_Linter_RuleEnvironment(t *testing.T) {
	l := NewLinter(permissions.DefaultRiskTable())

	// Rules reference environment fields by their expr tag names; a clean
	// manifest fires nothing.
	warnings := l.Lint(lintedManifest([]string{"network.internet"}, []string{"share data externally"}))
	assert.Empty(t, warnings)

	warnings = l.Lint(lintedManifest([]string{"network.internet"}, nil))
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "under-constrained")
}

func Test_Linter_BadRuleReportsItself(t *testing.T) {
	l := NewLinter(permissions.DefaultRiskTable())

	// An identifier outside the environment is a type-check failure; the
	// rule reports itself as a warning instead of aborting the pass.
	l.rules = append(l.rules, LintRule{
		Name:    "references-nothing",
		When:    "no_such_field > 0",
		Message: func(LintEnv) string { return "never" },
	})

	warnings := l.Lint(lintedManifest(nil, []string{"share data externally"}))
	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[len(warnings)-1], "references-nothing")
	assert.Contains(t, warnings[len(warnings)-1], "failed to compile")
}
