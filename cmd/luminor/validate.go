package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luminor-dev/luminor/internal/domain/manifest"
	"github.com/luminor-dev/luminor/internal/output"
)

func init() {
	rootCmd.AddCommand(newValidateCmd())
}

func newValidateCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "validate <manifest-or-plugin-dir>...",
		Short: "Validate plugin manifests",
		Long: `Validate one or more plugin manifests. Every structural problem is
reported in a single run; semantic concerns are warnings and never make a
manifest invalid. The exit code is non-zero when any manifest is invalid.`,
		Example: `  luminor validate plugins/flowguardian
  luminor validate manifest.yaml --format sarif`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			risks, err := cfg.EffectiveRiskTable()
			if err != nil {
				return err
			}
			validator, err := manifest.NewValidator(manifest.WithRiskTable(risks))
			if err != nil {
				return fmt.Errorf("failed to build manifest validator: %w", err)
			}

			results := make([]manifest.ValidationResult, 0, len(args))
			for _, arg := range args {
				results = append(results, validateTarget(validator, arg))
			}

			formatter, err := output.NewFormatter(format, os.Stdout)
			if err != nil {
				return err
			}
			if err := formatter.FormatValidation(results); err != nil {
				return fmt.Errorf("failed to render validation report: %w", err)
			}

			for _, res := range results {
				if !res.Valid {
					return fmt.Errorf("%d manifest(s) failed validation", countInvalid(results))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "output format: table, json, yaml, sarif")
	return cmd
}

// validateTarget accepts either a manifest file or a plugin directory.
func validateTarget(validator *manifest.Validator, path string) manifest.ValidationResult {
	info, err := os.Stat(path)
	if err != nil {
		return manifest.ValidationResult{
			Path:   path,
			Valid:  false,
			Errors: []string{fmt.Sprintf("cannot access %s: %v", path, err)},
		}
	}

	if info.IsDir() {
		found, ok := manifest.FindManifest(path)
		if !ok {
			return manifest.ValidationResult{
				Path:   path,
				Valid:  false,
				Errors: []string{fmt.Sprintf("no %s found in %s", manifest.FileNames[0], path)},
			}
		}
		path = found
	}
	return validator.ValidateManifest(path)
}

func countInvalid(results []manifest.ValidationResult) int {
	n := 0
	for _, res := range results {
		if !res.Valid {
			n++
		}
	}
	return n
}
