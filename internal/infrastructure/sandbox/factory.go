package sandbox

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/luminor-dev/luminor/internal/application/ports"
	"github.com/luminor-dev/luminor/internal/domain/manifest"
)

// Factory builds sandboxes on demand from validated manifests and the
// compiled-in plugin registry. It implements ports.SandboxFactory.
type Factory struct {
	cfg       Config
	registry  ports.PluginRegistry
	manifests map[string]*manifest.Manifest
	logger    *slog.Logger
}

// NewFactory creates a sandbox factory over validated manifests keyed by
// plugin id.
func NewFactory(cfg Config, registry ports.PluginRegistry, manifests map[string]*manifest.Manifest, logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{
		cfg:       cfg,
		registry:  registry,
		manifests: manifests,
		logger:    logger,
	}
}

// Create builds a sandbox for the plugin id. It fails when the manifest
// was never discovered or no implementation is registered for the id.
func (f *Factory) Create(ctx context.Context, pluginID string) (ports.PluginSandbox, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m, ok := f.manifests[pluginID]
	if !ok {
		return nil, fmt.Errorf("no validated manifest for plugin %s", pluginID)
	}
	impl, ok := f.registry.Lookup(pluginID)
	if !ok {
		return nil, fmt.Errorf("no implementation registered for plugin %s", pluginID)
	}

	sb, err := New(f.cfg, impl, m, f.logger)
	if err != nil {
		return nil, err
	}
	f.logger.Debug("created sandbox", "plugin", pluginID, "workspace", sb.Workspace())
	return sb, nil
}
