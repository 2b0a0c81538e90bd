// Package flowguardian is the built-in example plugin: it guards focus
// sessions by muting notifications and remembering session state in its
// workspace. Its manifest lives next to this file and must be installed
// into the plugins directory for discovery.
package flowguardian

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/luminor-dev/luminor/internal/application/ports"
	"github.com/luminor-dev/luminor/internal/domain/permissions"
	"github.com/luminor-dev/luminor/internal/infrastructure/registry"
)

const stateFile = "data/session.json"

// Plugin implements ports.Plugin.
type Plugin struct{}

func init() {
	registry.Register(&Plugin{})
}

func (p *Plugin) PluginID() string           { return "flow-guardian" }
func (p *Plugin) PluginVersion() string      { return "0.1.0" }
func (p *Plugin) GoverningPrinciple() string { return "protect user attention" }

func (p *Plugin) Handlers() map[string]ports.HandlerFunc {
	return map[string]ports.HandlerFunc{
		"block_distractions": p.blockDistractions,
		"start_focus":        p.startFocus,
		"focus_status":       p.focusStatus,
	}
}

// session is what we persist between invocations.
type session struct {
	StartedAt time.Time `json:"started_at"`
	Minutes   int       `json:"minutes"`
	Blocking  bool      `json:"blocking"`
}

func (p *Plugin) blockDistractions(_ context.Context, host ports.Host, payload map[string]any) (any, error) {
	if err := host.Require("mute desktop notifications", permissions.SystemNotifications); err != nil {
		return nil, err
	}

	s, err := loadSession(host)
	if err != nil {
		return nil, err
	}
	s.Blocking = true
	if err := saveSession(host, s); err != nil {
		return nil, err
	}

	host.Log(slog.LevelInfo, "distractions blocked", "query", payload["query"])
	return map[string]any{
		"success": true,
		"message": "Distractions are blocked. Notifications stay silent until the session ends.",
	}, nil
}

func (p *Plugin) startFocus(_ context.Context, host ports.Host, payload map[string]any) (any, error) {
	if err := host.Require("mute desktop notifications", permissions.SystemNotifications); err != nil {
		return nil, err
	}

	minutes := 25
	if v, ok := payload["minutes"].(int); ok && v > 0 {
		minutes = v
	}

	s := session{StartedAt: time.Now(), Minutes: minutes, Blocking: true}
	if err := saveSession(host, s); err != nil {
		return nil, err
	}

	host.Log(slog.LevelInfo, "focus session started", "minutes", minutes)
	return map[string]any{
		"success": true,
		"message": fmt.Sprintf("Focus session started for %d minutes. You've got this.", minutes),
	}, nil
}

func (p *Plugin) focusStatus(_ context.Context, host ports.Host, _ map[string]any) (any, error) {
	s, err := loadSession(host)
	if err != nil {
		return nil, err
	}

	if s.StartedAt.IsZero() {
		return map[string]any{
			"success": true,
			"message": "No focus session is active.",
		}, nil
	}

	elapsed := time.Since(s.StartedAt).Round(time.Minute)
	return map[string]any{
		"success":  true,
		"blocking": s.Blocking,
		"message":  fmt.Sprintf("Focus session running for %s of %d minutes.", elapsed, s.Minutes),
	}, nil
}

func loadSession(host ports.Host) (session, error) {
	var s session
	data, err := host.ReadFile(stateFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: no state yet.
			return s, nil
		}
		return session{}, err
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return session{}, fmt.Errorf("corrupt session state: %w", err)
	}
	return s, nil
}

func saveSession(host ports.Host, s session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return host.WriteFile(stateFile, data)
}
