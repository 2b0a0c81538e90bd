package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luminor-dev/luminor/internal/application/services"
	"github.com/luminor-dev/luminor/internal/output"
)

func init() {
	pluginsCmd.AddCommand(newPluginsListCmd())
}

func newPluginsListCmd() *cobra.Command {
	var format string
	var principle string

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List discovered plugins",
		Long:    `List every plugin found in the plugins directory, including invalid ones and why they were rejected.`,
		Example: `  luminor plugins list
  luminor plugins list --format json
  luminor plugins list --principle "protect user attention"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := newHost(cmd.Context())
			if err != nil {
				return err
			}

			plugins := h.discovered
			if principle != "" {
				plugins = services.PluginsByPrinciple(plugins, principle)
			}

			formatter, err := output.NewFormatter(format, os.Stdout)
			if err != nil {
				return err
			}
			if err := formatter.FormatDiscovery(plugins); err != nil {
				return fmt.Errorf("failed to render plugin list: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "output format: table, json, yaml, sarif")
	cmd.Flags().StringVar(&principle, "principle", "", "only plugins with this exact governing principle")
	return cmd
}
