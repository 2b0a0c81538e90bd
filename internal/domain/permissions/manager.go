package permissions

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/luminor-dev/luminor/internal/domain/values"
)

// ManagerConfig carries everything the Manager needs from a plugin's
// manifest. It deliberately avoids depending on the manifest type so the
// manifest package can use this package's risk table during linting.
type ManagerConfig struct {
	PluginID           string
	GoverningPrinciple string
	SacredPromise      string
	Required           Grant    // capabilities.permissions.required
	ForbiddenActions   []string // boundaries.forbidden_actions
	Risks              RiskTable
	Store              ConsentStore
}

// Manager decides whether an action+permission pair is allowed, whether it
// requires user consent, and renders consent prompts. It never blocks: the
// consent conversation itself belongs to the caller.
type Manager struct {
	pluginID           string
	governingPrinciple string
	sacredPromise      string
	required           Grant
	forbidden          []string
	risks              RiskTable
	store              ConsentStore

	mu    sync.Mutex
	audit []PermissionRequest
}

// NewManager creates a permission manager for one plugin.
func NewManager(cfg ManagerConfig) *Manager {
	risks := cfg.Risks
	if risks == nil {
		risks = DefaultRiskTable()
	}
	store := cfg.Store
	if store == nil {
		store = NewMemoryConsentStore()
	}
	return &Manager{
		pluginID:           cfg.PluginID,
		governingPrinciple: cfg.GoverningPrinciple,
		sacredPromise:      cfg.SacredPromise,
		required:           cfg.Required,
		forbidden:          cfg.ForbiddenActions,
		risks:              risks,
		store:              store,
	}
}

// PluginID returns the id of the plugin this manager guards.
func (m *Manager) PluginID() string {
	return m.pluginID
}

// CanPerform reports whether the plugin may perform the described action
// under the given permission, and why.
//
// The order is a hard contract: forbidden actions are denied before any
// permission is considered, so a granted permission can never override a
// declared boundary.
func (m *Manager) CanPerform(action string, perm Permission) (bool, string) {
	if phrase, forbidden := m.matchForbidden(action); forbidden {
		return false, fmt.Sprintf("action %q is forbidden by plugin boundaries (matches %q)", action, phrase)
	}

	if !m.required.Contains(perm) {
		return false, fmt.Sprintf("plugin lacks permission %q for action %q", perm, action)
	}

	return true, "action permitted within declared boundaries"
}

// matchForbidden checks the action description against every declared
// forbidden phrase. Matching is deliberately a case-insensitive substring
// check: the deny guarantee depends on these exact, auditable semantics.
func (m *Manager) matchForbidden(action string) (string, bool) {
	lowered := strings.ToLower(action)
	for _, phrase := range m.forbidden {
		if phrase == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(phrase)) {
			return phrase, true
		}
	}
	return "", false
}

// NeedsConsent reports whether using the permission requires an explicit
// user decision right now. High risk always prompts, low risk never does,
// medium risk prompts unless a grant was recorded this session.
func (m *Manager) NeedsConsent(perm Permission) bool {
	switch m.risks.RiskOf(perm) {
	case RiskLevelHigh:
		return true
	case RiskLevelLow:
		return false
	default:
		granted, err := m.store.IsGranted(m.pluginID, perm)
		if err != nil {
			// A broken store must fail closed.
			return true
		}
		return !granted
	}
}

// RiskOf exposes the effective risk classification for a permission.
func (m *Manager) RiskOf(perm Permission) RiskLevel {
	return m.risks.RiskOf(perm)
}

// RequestPermission creates a formal permission request and appends it to
// the audit log. It does not decide anything.
func (m *Manager) RequestPermission(action string, perm Permission, context map[string]string) PermissionRequest {
	req := PermissionRequest{
		ID:         values.NewRequestID(),
		PluginID:   m.pluginID,
		Permission: perm,
		Action:     action,
		Context:    context,
		Timestamp:  time.Now(),
	}

	m.mu.Lock()
	m.audit = append(m.audit, req)
	m.mu.Unlock()

	return req
}

// RecordConsent stores the user's decision for a request. Granted decisions
// satisfy future NeedsConsent checks for medium-risk permissions; high-risk
// permissions prompt every time regardless.
func (m *Manager) RecordConsent(req PermissionRequest, decision ConsentDecision) error {
	return m.store.Record(req.PluginID, req.Permission, decision.Granted)
}

// GenerateConsentPrompt renders the user-facing consent text for a request.
// Pure formatter: no state changes, no blocking.
func (m *Manager) GenerateConsentPrompt(req PermissionRequest) string {
	risk := m.risks.RiskOf(req.Permission)

	var b strings.Builder
	fmt.Fprintf(&b, "Permission request from plugin %q\n\n", m.pluginID)
	fmt.Fprintf(&b, "Governing principle: %s\n", m.governingPrinciple)
	fmt.Fprintf(&b, "Sacred promise: %q\n\n", m.sacredPromise)
	fmt.Fprintf(&b, "Action:     %s\n", req.Action)
	fmt.Fprintf(&b, "Permission: %s\n", req.Permission)
	fmt.Fprintf(&b, "Risk level: %s\n\n", strings.ToUpper(risk.String()))
	fmt.Fprintf(&b, "What this means: %s\n", req.Permission.Describe())

	if reason, ok := req.Context["reason"]; ok && reason != "" {
		fmt.Fprintf(&b, "\nWhy now: %s\n", reason)
	}

	return b.String()
}

// AuditLog returns a copy of every permission request seen so far.
func (m *Manager) AuditLog() []PermissionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PermissionRequest, len(m.audit))
	copy(out, m.audit)
	return out
}

// BoundariesSummary renders a human-readable summary of the plugin's
// declared permissions and forbidden actions.
func (m *Manager) BoundariesSummary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Permission boundaries for %s\n", m.pluginID)
	fmt.Fprintf(&b, "Governing principle: %s\n\n", m.governingPrinciple)

	b.WriteString("Granted permissions:\n")
	perms := make([]string, len(m.required))
	for i, p := range m.required {
		perms[i] = string(p)
	}
	sort.Strings(perms)
	for _, p := range perms {
		perm := Permission(p)
		fmt.Fprintf(&b, "  - %s (risk: %s)\n      %s\n", perm, m.risks.RiskOf(perm), perm.Describe())
	}
	if len(perms) == 0 {
		b.WriteString("  (none)\n")
	}

	b.WriteString("\nForbidden actions:\n")
	for _, action := range m.forbidden {
		fmt.Fprintf(&b, "  - %s\n", action)
	}
	if len(m.forbidden) == 0 {
		b.WriteString("  (none)\n")
	}

	m.mu.Lock()
	fmt.Fprintf(&b, "\nAudit: %d permission requests this session\n", len(m.audit))
	m.mu.Unlock()

	return b.String()
}
