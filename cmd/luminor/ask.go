package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/luminor-dev/luminor/internal/application/ports"
	"github.com/luminor-dev/luminor/internal/application/services"
)

func init() {
	rootCmd.AddCommand(newAskCmd())
}

func newAskCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "ask <query>...",
		Short: "Route a natural language request and execute it",
		Long: `Route a natural language request to the plugin or built-in intent that
claims it, and execute the handler. Plugin execution happens inside the
sandbox; if the plugin needs a risky permission you will be asked first.`,
		Example: `  luminor ask "block distractions"
  luminor ask install firefox`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := newHost(cmd.Context())
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			answer, err := h.router.Execute(cmd.Context(), query, nil)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(answer)
			}

			printAnswer(answer)
			if !answer.Result.Success {
				return fmt.Errorf("request failed (%s)", answer.Result.ErrorType)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full answer as JSON")
	return cmd
}

func printAnswer(answer *services.Answer) {
	if answer.Route.IsPlugin() {
		fmt.Printf("handled by plugin %s (intent %q, confidence %.2f)\n",
			answer.Route.HandlerID, answer.Route.IntentPattern, answer.Route.Confidence)
	} else {
		fmt.Printf("handled by core intent %q (confidence %.2f)\n",
			answer.Route.IntentPattern, answer.Route.Confidence)
	}

	result := answer.Result
	if !result.Success {
		fmt.Printf("error (%s): %s\n", result.ErrorType, result.Error)
		if result.ErrorType == ports.ErrorTypeConsentRequired {
			if result.Prompt != "" {
				fmt.Println()
				fmt.Println(result.Prompt)
			}
			fmt.Println("No terminal was available to ask. To grant this permission:")
			fmt.Println("  1. Re-run interactively and approve when prompted")
			fmt.Println("  2. Pre-record the grant in the consent file")
		}
		return
	}

	switch v := result.Result.(type) {
	case map[string]any:
		if msg, ok := v["message"].(string); ok {
			fmt.Println(msg)
			return
		}
		pretty, err := json.MarshalIndent(v, "", "  ")
		if err == nil {
			fmt.Println(string(pretty))
			return
		}
		fmt.Printf("%v\n", v)
	case string:
		fmt.Println(v)
	case nil:
		fmt.Println("done")
	default:
		fmt.Printf("%v\n", v)
	}
}
