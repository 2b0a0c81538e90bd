package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/luminor-dev/luminor/internal/application/services"
	"github.com/luminor-dev/luminor/internal/config"
	"github.com/luminor-dev/luminor/internal/core"
	"github.com/luminor-dev/luminor/internal/domain/manifest"
	"github.com/luminor-dev/luminor/internal/infrastructure/consent"
	"github.com/luminor-dev/luminor/internal/infrastructure/registry"
	"github.com/luminor-dev/luminor/internal/infrastructure/sandbox"

	// Compiled-in plugins register themselves on import.
	_ "github.com/luminor-dev/luminor/plugins/flowguardian"
)

// host wires the full stack for one command invocation.
type host struct {
	cfg        *config.Config
	loader     *services.PluginLoader
	discovered []services.DiscoveredPlugin
	router     *services.ConsciousnessRouter
	executor   *core.LocalExecutor
}

// loadConfig reads the config file and applies viper overrides, so flags
// and LUMINOR_* environment variables win over the file.
func loadConfig() (*config.Config, error) {
	path := viper.ConfigFileUsed()
	if path == "" {
		path = cfgFile
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if v := viper.GetString("plugins_dir"); v != "" {
		cfg.PluginsDir = v
	}
	if v := viper.GetString("workspace_root"); v != "" {
		cfg.WorkspaceRoot = v
	}
	if v := viper.GetString("consent_file"); v != "" {
		cfg.ConsentFile = v
	}
	if v := viper.GetString("security.level"); v != "" {
		cfg.Security.Level = v
	}
	return cfg, nil
}

// newHost discovers plugins and builds the router with all of its
// infrastructure.
func newHost(ctx context.Context) (*host, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	risks, err := cfg.EffectiveRiskTable()
	if err != nil {
		return nil, err
	}

	validator, err := manifest.NewValidator(manifest.WithRiskTable(risks))
	if err != nil {
		return nil, fmt.Errorf("failed to build manifest validator: %w", err)
	}

	logger := slog.Default()
	loader := services.NewPluginLoader(cfg.PluginsDir, validator, logger)
	discovered, err := loader.DiscoverPlugins(ctx)
	if err != nil {
		return nil, err
	}

	manifests := make(map[string]*manifest.Manifest)
	for _, dp := range services.ValidPlugins(discovered) {
		manifests[dp.ID] = dp.Manifest
	}

	factory := sandbox.NewFactory(sandbox.Config{
		WorkspaceRoot: cfg.WorkspaceRoot,
		Timeout:       cfg.SandboxTimeout(),
		Store:         consent.NewFileStore(cfg.ConsentFile),
		Prompter:      consent.NewTerminalPrompter(),
		Risks:         risks,
	}, registry.Default, manifests, logger)

	executor := core.NewLocalExecutor(logger)
	router := services.NewConsciousnessRouter(discovered, executor, factory, logger)

	return &host{
		cfg:        cfg,
		loader:     loader,
		discovered: discovered,
		router:     router,
		executor:   executor,
	}, nil
}
