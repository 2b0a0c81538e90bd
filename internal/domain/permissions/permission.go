// Package permissions defines the permission tokens plugins may request,
// their risk classification, and the manager that decides whether a plugin
// action is allowed and whether it needs user consent.
package permissions

import (
	"fmt"
	"strings"
)

// Permission is a named system-capability token gating what an action may do.
type Permission string

const (
	// Filesystem permissions
	FilesystemRead  Permission = "filesystem.read"
	FilesystemWrite Permission = "filesystem.write"
	FilesystemWatch Permission = "filesystem.watch"

	// Network permissions
	NetworkLocal    Permission = "network.local"
	NetworkInternet Permission = "network.internet"

	// Process permissions
	ProcessSpawn   Permission = "process.spawn"
	ProcessMonitor Permission = "process.monitor"

	// System permissions
	SystemNotifications Permission = "system.notifications"
	SystemInfo          Permission = "system.info"

	// Configuration permissions
	ConfigurationRead  Permission = "configuration.read"
	ConfigurationWrite Permission = "configuration.write"
)

// All lists every known permission token in a stable order.
func All() []Permission {
	return []Permission{
		FilesystemRead,
		FilesystemWrite,
		FilesystemWatch,
		NetworkLocal,
		NetworkInternet,
		ProcessSpawn,
		ProcessMonitor,
		SystemNotifications,
		SystemInfo,
		ConfigurationRead,
		ConfigurationWrite,
	}
}

// Parse converts a string to a Permission, validating it against the known set.
func Parse(s string) (Permission, error) {
	p := Permission(strings.TrimSpace(s))
	if !p.Known() {
		return "", fmt.Errorf("unknown permission: %q", s)
	}
	return p, nil
}

// Known returns true if this is a recognized permission token.
func (p Permission) Known() bool {
	for _, known := range All() {
		if p == known {
			return true
		}
	}
	return false
}

// String returns the wire representation of the permission.
func (p Permission) String() string {
	return string(p)
}

// Describe returns a human-readable explanation of what granting this
// permission means. Used in consent prompts and boundaries reports.
func (p Permission) Describe() string {
	switch p {
	case FilesystemRead:
		return "Read files on your system (cannot modify them)"
	case FilesystemWrite:
		return "Create or modify files on your system"
	case FilesystemWatch:
		return "Monitor when files change (passive observation)"
	case NetworkLocal:
		return "Communicate within your local network only"
	case NetworkInternet:
		return "Access the internet (could share data externally)"
	case ProcessSpawn:
		return "Start new programs or scripts"
	case ProcessMonitor:
		return "See what programs are running (cannot control them)"
	case SystemNotifications:
		return "Show you notifications"
	case SystemInfo:
		return "Read system information (OS version, hardware, etc)"
	case ConfigurationRead:
		return "Read your system configuration"
	case ConfigurationWrite:
		return "MODIFY your system configuration (requires rebuild)"
	default:
		return "Unknown permission: " + string(p)
	}
}

// RiskLevel classifies how dangerous a permission is. It drives the consent
// requirement: high risk always prompts, low risk never does.
type RiskLevel int

const (
	// RiskLevelLow represents read-only or local, reversible operations.
	RiskLevelLow RiskLevel = iota
	// RiskLevelMedium represents network access or spawning processes.
	RiskLevelMedium
	// RiskLevelHigh represents system configuration changes.
	RiskLevelHigh
)

// String returns a human-readable representation of the risk level.
func (r RiskLevel) String() string {
	switch r {
	case RiskLevelLow:
		return "low"
	case RiskLevelMedium:
		return "medium"
	case RiskLevelHigh:
		return "high"
	default:
		return "unknown"
	}
}

// ParseRiskLevel converts a string to a RiskLevel.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return RiskLevelLow, nil
	case "medium":
		return RiskLevelMedium, nil
	case "high":
		return RiskLevelHigh, nil
	default:
		return RiskLevelLow, fmt.Errorf("invalid risk level: %q", s)
	}
}

// RiskTable maps permissions to risk levels. The mapping is policy
// configuration, not algorithmic logic: callers may override entries from
// system config, and unknown permissions default to medium.
type RiskTable map[Permission]RiskLevel

// DefaultRiskTable returns the built-in risk policy.
func DefaultRiskTable() RiskTable {
	return RiskTable{
		FilesystemRead:      RiskLevelLow,
		FilesystemWrite:     RiskLevelLow,
		FilesystemWatch:     RiskLevelLow,
		NetworkLocal:        RiskLevelLow,
		NetworkInternet:     RiskLevelMedium,
		ProcessSpawn:        RiskLevelMedium,
		ProcessMonitor:      RiskLevelLow,
		SystemNotifications: RiskLevelLow,
		SystemInfo:          RiskLevelLow,
		ConfigurationRead:   RiskLevelLow,
		ConfigurationWrite:  RiskLevelHigh,
	}
}

// RiskOf returns the risk level for a permission. Permissions absent from
// the table are treated as medium risk: they exist but policy has not
// classified them, so they get the prompt-unless-granted path.
func (t RiskTable) RiskOf(p Permission) RiskLevel {
	if level, ok := t[p]; ok {
		return level
	}
	return RiskLevelMedium
}

// Merge applies overrides on top of the table, returning a new table.
func (t RiskTable) Merge(overrides map[string]string) (RiskTable, error) {
	merged := make(RiskTable, len(t)+len(overrides))
	for p, level := range t {
		merged[p] = level
	}
	for token, levelStr := range overrides {
		perm, err := Parse(token)
		if err != nil {
			return nil, fmt.Errorf("risk override: %w", err)
		}
		level, err := ParseRiskLevel(levelStr)
		if err != nil {
			return nil, fmt.Errorf("risk override for %s: %w", token, err)
		}
		merged[perm] = level
	}
	return merged, nil
}
