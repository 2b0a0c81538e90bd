package main

import (
	"github.com/spf13/cobra"
)

// pluginsCmd represents the plugins command
var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "Manage plugins",
	Long:  `Inspect the plugins installed in the plugins directory: list them, validate their manifests and review their declared boundaries.`,
}

func init() {
	rootCmd.AddCommand(pluginsCmd)
}
