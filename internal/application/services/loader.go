// Package services contains application-layer orchestration: plugin
// discovery and the consciousness router.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/luminor-dev/luminor/internal/domain/manifest"
	"github.com/luminor-dev/luminor/internal/domain/permissions"
)

// DiscoveredPlugin is the loader's view of one plugin directory: its
// validation outcome plus the manifest when one could be decoded.
// Invalid plugins stay in the inventory so operators can see why they
// were excluded; only valid ones are eligible for routing.
type DiscoveredPlugin struct {
	Manifest *manifest.Manifest
	Dir      string
	ID       string
	Errors   []string
	Warnings []string
	IsValid  bool
}

// PluginLoader discovers plugins by scanning a directory for manifests
// and validating each one.
type PluginLoader struct {
	validator  *manifest.Validator
	logger     *slog.Logger
	pluginsDir string
}

// NewPluginLoader creates a loader for the given plugins directory.
func NewPluginLoader(pluginsDir string, validator *manifest.Validator, logger *slog.Logger) *PluginLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &PluginLoader{
		pluginsDir: pluginsDir,
		validator:  validator,
		logger:     logger,
	}
}

// DiscoverPlugins scans the immediate children of the plugins directory
// and validates every manifest found. Directories without a manifest are
// skipped. One malformed manifest never aborts discovery of the rest.
// Results are ordered by directory name for stable output.
func (l *PluginLoader) DiscoverPlugins(ctx context.Context) ([]DiscoveredPlugin, error) {
	entries, err := os.ReadDir(l.pluginsDir)
	if err != nil {
		if os.IsNotExist(err) {
			l.logger.Debug("plugins directory does not exist", "dir", l.pluginsDir)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read plugins directory %s: %w", l.pluginsDir, err)
	}

	var dirs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(l.pluginsDir, entry.Name())
		if _, ok := manifest.FindManifest(dir); !ok {
			l.logger.Debug("skipping directory without manifest", "dir", dir)
			continue
		}
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	g, ctx := errgroup.WithContext(ctx)

	// Each goroutine writes to a unique index - no mutex needed
	results := make([]DiscoveredPlugin, len(dirs))

	for i, dir := range dirs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = l.loadOne(dir)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, dp := range results {
		if dp.IsValid {
			l.logger.Info("discovered plugin", "id", dp.ID, "dir", dp.Dir)
		} else {
			l.logger.Warn("invalid plugin manifest", "dir", dp.Dir, "errors", len(dp.Errors))
		}
	}

	return results, nil
}

// loadOne validates a single plugin directory. Validation failures are
// recorded on the result, not returned as errors.
func (l *PluginLoader) loadOne(dir string) DiscoveredPlugin {
	path, ok := manifest.FindManifest(dir)
	if !ok {
		return DiscoveredPlugin{Dir: dir, Errors: []string{"no manifest found"}}
	}

	res := l.validator.ValidateManifest(path)

	dp := DiscoveredPlugin{
		Dir:      dir,
		Manifest: res.Manifest,
		Errors:   res.Errors,
		Warnings: res.Warnings,
		IsValid:  res.Valid,
	}
	if res.Manifest != nil {
		dp.ID = res.Manifest.Plugin.ID
	}
	return dp
}

// ValidPlugins filters discovery results down to routable plugins.
func ValidPlugins(discovered []DiscoveredPlugin) []DiscoveredPlugin {
	var valid []DiscoveredPlugin
	for _, dp := range discovered {
		if dp.IsValid && dp.Manifest != nil {
			valid = append(valid, dp)
		}
	}
	return valid
}

// PluginsByPrinciple returns valid plugins whose governing principle
// matches exactly.
func PluginsByPrinciple(discovered []DiscoveredPlugin, principle string) []DiscoveredPlugin {
	var matched []DiscoveredPlugin
	for _, dp := range ValidPlugins(discovered) {
		if dp.Manifest.Consciousness.GoverningPrinciple == principle {
			matched = append(matched, dp)
		}
	}
	return matched
}

// RequiredPermissions aggregates the declared permission grants of all
// valid plugins, keyed by plugin id.
func RequiredPermissions(discovered []DiscoveredPlugin) map[string]permissions.Grant {
	grants := make(map[string]permissions.Grant)
	for _, dp := range ValidPlugins(discovered) {
		grants[dp.ID] = dp.Manifest.RequiredPermissions()
	}
	return grants
}
