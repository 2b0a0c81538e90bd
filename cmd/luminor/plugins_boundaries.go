package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luminor-dev/luminor/internal/application/services"
	"github.com/luminor-dev/luminor/internal/domain/permissions"
)

func init() {
	pluginsCmd.AddCommand(newPluginsBoundariesCmd())
}

func newPluginsBoundariesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "boundaries <plugin-id>",
		Short:   "Show a plugin's declared boundaries",
		Long:    `Show the permissions a plugin declared, their risk classification, its forbidden actions and its resource envelope.`,
		Example: `  luminor plugins boundaries flow-guardian`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := newHost(cmd.Context())
			if err != nil {
				return err
			}

			pluginID := args[0]
			for _, dp := range services.ValidPlugins(h.discovered) {
				if dp.ID != pluginID {
					continue
				}

				risks, err := h.cfg.EffectiveRiskTable()
				if err != nil {
					return err
				}
				mgrCfg := dp.Manifest.ManagerConfig()
				mgrCfg.Risks = risks
				manager := permissions.NewManager(mgrCfg)

				limits := dp.Manifest.Boundaries.ResourceLimits.WithDefaults()
				fmt.Println(manager.BoundariesSummary())
				fmt.Printf("Resource limits: %d MB memory, %d%% CPU, %d MB storage\n",
					limits.MaxMemoryMB, limits.MaxCPUPercent, limits.MaxStorageMB)
				return nil
			}
			return fmt.Errorf("no valid plugin with id %s", pluginID)
		},
	}
}
