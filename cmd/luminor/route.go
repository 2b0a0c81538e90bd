package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/luminor-dev/luminor/internal/application/services"
	"github.com/luminor-dev/luminor/internal/domain/routing"
)

func init() {
	rootCmd.AddCommand(newRouteCmd())
}

func newRouteCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "route <query>...",
		Short: "Show how a query would be routed, without executing it",
		Example: `  luminor route "block distractions"
  luminor route install firefox --json
  luminor route`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := newHost(cmd.Context())
			if err != nil {
				return err
			}

			if len(args) == 0 {
				printRoutingReport(h)
				return nil
			}

			query := strings.Join(args, " ")
			match := h.router.Route(query)

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(match)
			}

			fmt.Printf("query:      %s\n", query)
			fmt.Printf("handler:    %s\n", match.HandlerType)
			if match.IsPlugin() {
				fmt.Printf("plugin:     %s\n", match.HandlerID)
			}
			fmt.Printf("intent:     %s\n", match.IntentPattern)
			fmt.Printf("confidence: %.2f\n", match.Confidence)

			if match.IntentPattern == routing.IntentUnknown {
				for _, s := range h.router.Suggestions(query, 3) {
					fmt.Printf("maybe try:  %s (%s)\n", s.PluginID, s.Description)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the route decision as JSON")
	return cmd
}

// printRoutingReport summarizes the routing tables when no query is given.
func printRoutingReport(h *host) {
	valid := services.ValidPlugins(h.discovered)
	patterns := 0
	for _, dp := range valid {
		patterns += len(dp.Manifest.Capabilities.Intents)
	}

	fmt.Printf("core intents:    %d\n", routing.CoreIntentCount())
	fmt.Printf("valid plugins:   %d (of %d discovered)\n", len(valid), len(h.discovered))
	fmt.Printf("plugin patterns: %d\n", patterns)
	fmt.Printf("cached routes:   %d\n", h.router.CacheSize())
}
