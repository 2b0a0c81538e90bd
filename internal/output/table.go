package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/luminor-dev/luminor/internal/application/services"
	"github.com/luminor-dev/luminor/internal/domain/manifest"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// TableFormatter renders reports as human-readable tables.
type TableFormatter struct {
	writer      io.Writer
	EnableColor bool
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{
		writer:      w,
		EnableColor: true,
	}
}

func (f *TableFormatter) colorize(text, code string) string {
	if !f.EnableColor {
		return text
	}
	return code + text + colorReset
}

// FormatDiscovery writes the plugin inventory as a table.
//
//nolint:errcheck // best-effort terminal output
func (f *TableFormatter) FormatDiscovery(plugins []services.DiscoveredPlugin) error {
	if len(plugins) == 0 {
		fmt.Fprintln(f.writer, "No plugins discovered.")
		return nil
	}

	w := tabwriter.NewWriter(f.writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, f.colorize("ID\tVERSION\tSTATUS\tINTENTS\tPRINCIPLE", colorBold))

	for _, dp := range plugins {
		status := f.colorize("valid", colorGreen)
		if !dp.IsValid {
			status = f.colorize("invalid", colorRed)
		} else if len(dp.Warnings) > 0 {
			status = f.colorize("warnings", colorYellow)
		}

		id := dp.ID
		version := "-"
		intents := 0
		principle := "-"
		if m := dp.Manifest; m != nil {
			version = m.Plugin.Version
			intents = len(m.Capabilities.Intents)
			principle = m.Consciousness.GoverningPrinciple
		}
		if id == "" {
			id = dp.Dir
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", id, version, status, intents, principle)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for _, dp := range plugins {
		if len(dp.Errors) == 0 && len(dp.Warnings) == 0 {
			continue
		}
		fmt.Fprintln(f.writer)
		fmt.Fprintln(f.writer, f.colorize(dp.Dir, colorBold))
		for _, e := range dp.Errors {
			fmt.Fprintf(f.writer, "  %s %s\n", f.colorize("error:", colorRed), e)
		}
		for _, warning := range dp.Warnings {
			fmt.Fprintf(f.writer, "  %s %s\n", f.colorize("warning:", colorYellow), warning)
		}
	}
	return nil
}

// FormatValidation writes manifest validation results.
//
//nolint:errcheck // best-effort terminal output
func (f *TableFormatter) FormatValidation(results []manifest.ValidationResult) error {
	for i, res := range results {
		if i > 0 {
			fmt.Fprintln(f.writer, f.colorize(strings.Repeat("─", 60), colorGray))
		}

		verdict := f.colorize("VALID", colorGreen)
		if !res.Valid {
			verdict = f.colorize("INVALID", colorRed)
		}
		fmt.Fprintf(f.writer, "%s  %s\n", verdict, res.Path)

		for _, e := range res.Errors {
			fmt.Fprintf(f.writer, "  %s %s\n", f.colorize("error:", colorRed), e)
		}
		for _, warning := range res.Warnings {
			fmt.Fprintf(f.writer, "  %s %s\n", f.colorize("warning:", colorYellow), warning)
		}
	}
	return nil
}
