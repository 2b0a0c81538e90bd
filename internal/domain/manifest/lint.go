package manifest

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/luminor-dev/luminor/internal/domain/permissions"
)

// LintEnv is the environment a lint rule's condition is evaluated against.
// Everything a rule can look at is precomputed here; rules never touch the
// manifest directly. The expr tags are the identifiers rules reference.
type LintEnv struct {
	ManifestVersionOK   bool     `expr:"manifest_version_ok"`
	PluginVersionOK     bool     `expr:"plugin_version_ok"`
	IntentCount         int      `expr:"intent_count"`
	ForbiddenActions    []string `expr:"forbidden_actions"`
	RequiredPermissions []string `expr:"required_permissions"`
	ElevatedPermissions []string `expr:"elevated_permissions"`
	UnknownPermissions  []string `expr:"unknown_permissions"`
}

// LintRule pairs a boolean condition over the LintEnv with a message
// renderer. Rules only produce warnings: the structural phase owns
// validity.
type LintRule struct {
	Name    string
	When    string
	Message func(env LintEnv) string
}

// builtinRules is the semantic lint policy shipped with the host.
func builtinRules() []LintRule {
	return []LintRule{
		{
			Name: "under-constrained-trust-boundary",
			When: "len(elevated_permissions) > 0 && len(forbidden_actions) == 0",
			Message: func(env LintEnv) string {
				return fmt.Sprintf(
					"plugin requires elevated-risk permissions (%s) but declares no forbidden_actions; the trust boundary is under-constrained",
					strings.Join(env.ElevatedPermissions, ", "))
			},
		},
		{
			Name: "unknown-permission-tokens",
			When: "len(unknown_permissions) > 0",
			Message: func(env LintEnv) string {
				return fmt.Sprintf(
					"required permissions not recognized by this host: %s",
					strings.Join(env.UnknownPermissions, ", "))
			},
		},
		{
			Name: "manifest-version-not-semver",
			When: "!manifest_version_ok",
			Message: func(env LintEnv) string {
				return "manifest_version is not a valid semantic version"
			},
		},
		{
			Name: "plugin-version-not-semver",
			When: "!plugin_version_ok",
			Message: func(env LintEnv) string {
				return "plugin.version is not a valid semantic version"
			},
		},
		{
			Name: "no-declared-intents",
			When: "intent_count == 0",
			Message: func(env LintEnv) string {
				return "plugin declares no intents and can never win routing"
			},
		},
	}
}

// Linter evaluates lint rules against manifests. Rule conditions are
// compiled expressions cached across calls, the same discipline the
// expectation evaluator uses for profile checks.
type Linter struct {
	risks permissions.RiskTable
	rules []LintRule

	cacheMu      sync.RWMutex
	programCache map[string]*vm.Program
}

// NewLinter creates a linter with the built-in rules and the given risk
// policy.
func NewLinter(risks permissions.RiskTable) *Linter {
	return &Linter{
		risks:        risks,
		rules:        builtinRules(),
		programCache: make(map[string]*vm.Program),
	}
}

// Lint evaluates every rule against the manifest and returns one warning
// per firing rule. A rule that fails to compile or evaluate reports itself
// as a warning rather than aborting the pass.
func (l *Linter) Lint(m *Manifest) []string {
	env := l.buildEnv(m)

	var warnings []string
	for _, rule := range l.rules {
		program, err := l.getOrCompile(rule.When)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("lint rule %s failed to compile: %v", rule.Name, err))
			continue
		}

		out, err := expr.Run(program, env)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("lint rule %s failed to evaluate: %v", rule.Name, err))
			continue
		}

		if fired, ok := out.(bool); ok && fired {
			warnings = append(warnings, rule.Message(env))
		}
	}
	return warnings
}

func (l *Linter) buildEnv(m *Manifest) LintEnv {
	env := LintEnv{
		ManifestVersionOK:   isSemver(m.ManifestVersion),
		PluginVersionOK:     isSemver(m.Plugin.Version),
		IntentCount:         len(m.Capabilities.Intents),
		ForbiddenActions:    m.Boundaries.ForbiddenActions,
		RequiredPermissions: m.Capabilities.Permissions.Required,
	}

	for _, token := range m.Capabilities.Permissions.Required {
		perm, err := permissions.Parse(token)
		if err != nil {
			env.UnknownPermissions = append(env.UnknownPermissions, token)
			continue
		}
		if l.risks.RiskOf(perm) >= permissions.RiskLevelMedium {
			env.ElevatedPermissions = append(env.ElevatedPermissions, token)
		}
	}

	return env
}

func (l *Linter) getOrCompile(condition string) (*vm.Program, error) {
	l.cacheMu.RLock()
	if program, found := l.programCache[condition]; found {
		l.cacheMu.RUnlock()
		return program, nil
	}
	l.cacheMu.RUnlock()

	program, err := expr.Compile(condition, expr.Env(LintEnv{}), expr.AsBool())
	if err != nil {
		return nil, err
	}

	l.cacheMu.Lock()
	l.programCache[condition] = program
	l.cacheMu.Unlock()
	return program, nil
}

func isSemver(version string) bool {
	if version == "" {
		return false
	}
	_, err := semver.NewVersion(version)
	return err == nil
}
