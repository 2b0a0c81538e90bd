// Package config loads the host configuration file (~/.luminor/config.yaml)
// and derives the effective security policy from it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/luminor-dev/luminor/internal/domain/permissions"
)

// Config represents the global configuration file (~/.luminor/config.yaml).
type Config struct {
	// PluginsDir is scanned for plugin manifests.
	PluginsDir string `yaml:"plugins_dir"`

	// WorkspaceRoot is where per-plugin workspaces are created.
	WorkspaceRoot string `yaml:"workspace_root"`

	// ConsentFile persists remembered consent decisions.
	ConsentFile string `yaml:"consent_file"`

	// Security configures the permission policy.
	Security SecurityConfig `yaml:"security"`

	// SandboxTimeoutSeconds bounds one handler invocation. 0 uses the
	// sandbox default.
	SandboxTimeoutSeconds int `yaml:"sandbox_timeout_seconds"`
}

// SecurityConfig configures permission risk policy.
type SecurityConfig struct {
	// Level defines the security policy: "strict", "standard", or "permissive"
	// - strict: medium-risk permissions prompt every time
	// - standard: medium-risk permissions prompt until granted (default)
	// - permissive: medium-risk permissions never prompt
	Level string `yaml:"level"`

	// RiskOverrides reclassifies individual permissions, e.g.
	// "network.internet: high".
	RiskOverrides map[string]string `yaml:"risk_overrides"`
}

// SecurityLevel represents the security enforcement level.
type SecurityLevel string

const (
	SecurityLevelStrict     SecurityLevel = "strict"
	SecurityLevelStandard   SecurityLevel = "standard"
	SecurityLevelPermissive SecurityLevel = "permissive"
)

// GetSecurityLevel returns the configured security level, defaulting to
// Standard.
func (c *SecurityConfig) GetSecurityLevel() SecurityLevel {
	switch c.Level {
	case "strict":
		return SecurityLevelStrict
	case "permissive":
		return SecurityLevelPermissive
	default:
		return SecurityLevelStandard
	}
}

// DefaultConfig returns a Config with safe defaults for all fields. Used
// when no config file exists, so the host works out of the box.
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	base := filepath.Join(home, ".luminor")
	return &Config{
		PluginsDir:    filepath.Join(base, "plugins"),
		WorkspaceRoot: filepath.Join(base, "workspaces"),
		ConsentFile:   filepath.Join(base, "consent.yaml"),
		Security: SecurityConfig{
			Level: string(SecurityLevelStandard),
		},
	}
}

// Load loads the configuration from the specified path. A missing file
// returns DefaultConfig.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// SandboxTimeout returns the configured handler timeout, or zero when the
// sandbox default should apply.
func (c *Config) SandboxTimeout() time.Duration {
	if c.SandboxTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.SandboxTimeoutSeconds) * time.Second
}

// EffectiveRiskTable builds the risk policy: defaults, then per-permission
// overrides, then the security level. Strict upgrades medium to high so
// every elevated action prompts; permissive downgrades medium to low.
// High never drops.
func (c *Config) EffectiveRiskTable() (permissions.RiskTable, error) {
	table, err := permissions.DefaultRiskTable().Merge(c.Security.RiskOverrides)
	if err != nil {
		return nil, fmt.Errorf("invalid risk overrides: %w", err)
	}

	switch c.Security.GetSecurityLevel() {
	case SecurityLevelStrict:
		for perm, risk := range table {
			if risk == permissions.RiskLevelMedium {
				table[perm] = permissions.RiskLevelHigh
			}
		}
	case SecurityLevelPermissive:
		for perm, risk := range table {
			if risk == permissions.RiskLevelMedium {
				table[perm] = permissions.RiskLevelLow
			}
		}
	}
	return table, nil
}
