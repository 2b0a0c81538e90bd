package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luminor-dev/luminor/internal/domain/permissions"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.PluginsDir)
	assert.NotEmpty(t, cfg.WorkspaceRoot)
	assert.Equal(t, SecurityLevelStandard, cfg.Security.GetSecurityLevel())
	assert.Equal(t, time.Duration(0), cfg.SandboxTimeout())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `plugins_dir: /opt/luminor/plugins
sandbox_timeout_seconds: 5
security:
  level: strict
  risk_overrides:
    system.info: high
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/opt/luminor/plugins", cfg.PluginsDir)
	assert.Equal(t, 5*time.Second, cfg.SandboxTimeout())
	assert.Equal(t, SecurityLevelStrict, cfg.Security.GetSecurityLevel())

	// Unset fields keep defaults.
	assert.NotEmpty(t, cfg.WorkspaceRoot)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("plugins_dir: [oops"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestEffectiveRiskTable(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		overrides map[string]string
		perm      permissions.Permission
		want      permissions.RiskLevel
	}{
		{"standard keeps medium", "standard", nil, permissions.NetworkInternet, permissions.RiskLevelMedium},
		{"strict raises medium", "strict", nil, permissions.NetworkInternet, permissions.RiskLevelHigh},
		{"permissive lowers medium", "permissive", nil, permissions.NetworkInternet, permissions.RiskLevelLow},
		{"strict keeps high", "strict", nil, permissions.ConfigurationWrite, permissions.RiskLevelHigh},
		{"permissive keeps high", "permissive", nil, permissions.ConfigurationWrite, permissions.RiskLevelHigh},
		{"override applies", "standard", map[string]string{"system.info": "high"}, permissions.SystemInfo, permissions.RiskLevelHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Security.Level = tt.level
			cfg.Security.RiskOverrides = tt.overrides

			table, err := cfg.EffectiveRiskTable()
			require.NoError(t, err)
			assert.Equal(t, tt.want, table.RiskOf(tt.perm))
		})
	}
}

func TestEffectiveRiskTableBadOverride(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Security.RiskOverrides = map[string]string{"network.internet": "catastrophic"}

	_, err := cfg.EffectiveRiskTable()
	require.Error(t, err)
}
