package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luminor-dev/luminor/internal/version"
)

// versionCmd implements the version command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of luminor",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("luminor version %s\n", version.Full())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
