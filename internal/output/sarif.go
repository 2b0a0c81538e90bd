package output

import (
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"

	"github.com/luminor-dev/luminor/internal/application/services"
	"github.com/luminor-dev/luminor/internal/domain/manifest"
	"github.com/luminor-dev/luminor/internal/version"
)

// SARIF rule ids for manifest diagnostics.
const (
	ruleManifestError   = "manifest-error"
	ruleManifestWarning = "manifest-warning"
)

// SARIFFormatter renders validation reports as SARIF 2.1.0 JSON, one
// result per error or warning, located at the manifest file.
type SARIFFormatter struct {
	writer io.Writer
}

// NewSARIFFormatter creates a new SARIF formatter.
func NewSARIFFormatter(writer io.Writer) *SARIFFormatter {
	return &SARIFFormatter{writer: writer}
}

// FormatDiscovery writes the invalid-plugin diagnostics of the inventory
// as SARIF. Valid plugins produce no results.
func (f *SARIFFormatter) FormatDiscovery(plugins []services.DiscoveredPlugin) error {
	results := make([]manifest.ValidationResult, 0, len(plugins))
	for _, dp := range plugins {
		path, _ := manifest.FindManifest(dp.Dir)
		results = append(results, manifest.ValidationResult{
			Path:     path,
			Valid:    dp.IsValid,
			Errors:   dp.Errors,
			Warnings: dp.Warnings,
			Manifest: dp.Manifest,
		})
	}
	return f.FormatValidation(results)
}

// FormatValidation writes manifest validation results as SARIF.
func (f *SARIFFormatter) FormatValidation(results []manifest.ValidationResult) error {
	report := sarif.NewReport()

	run := sarif.NewRunWithInformationURI("luminor", "https://github.com/luminor-dev/luminor")
	ver := version.Version
	run.Tool.Driver.Version = &ver

	f.addRules(run)
	for _, res := range results {
		f.addResults(run, res)
	}

	report.AddRun(run)

	if err := report.Write(f.writer); err != nil {
		return fmt.Errorf("failed to write SARIF output: %w", err)
	}
	_, err := f.writer.Write([]byte("\n"))
	return err
}

func (f *SARIFFormatter) addRules(run *sarif.Run) {
	errRule := sarif.NewReportingDescriptor().WithID(ruleManifestError)
	errRule.WithName("ManifestError")
	errRule.WithShortDescription(&sarif.MultiformatMessageString{
		Text: ptrString("Plugin manifest failed structural validation"),
	})
	errRule.WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: "error"})
	run.Tool.Driver.AddRule(errRule)

	warnRule := sarif.NewReportingDescriptor().WithID(ruleManifestWarning)
	warnRule.WithName("ManifestWarning")
	warnRule.WithShortDescription(&sarif.MultiformatMessageString{
		Text: ptrString("Plugin manifest has a semantic concern"),
	})
	warnRule.WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: "warning"})
	run.Tool.Driver.AddRule(warnRule)
}

func (f *SARIFFormatter) addResults(run *sarif.Run, res manifest.ValidationResult) {
	for _, msg := range res.Errors {
		result := sarif.NewRuleResult(ruleManifestError)
		result.Level = "error"
		result.Message = sarif.NewTextMessage(msg)
		result.Locations = []*sarif.Location{f.location(res.Path)}
		run.AddResult(result)
	}
	for _, msg := range res.Warnings {
		result := sarif.NewRuleResult(ruleManifestWarning)
		result.Level = "warning"
		result.Message = sarif.NewTextMessage(msg)
		result.Locations = []*sarif.Location{f.location(res.Path)}
		run.AddResult(result)
	}
}

func (f *SARIFFormatter) location(path string) *sarif.Location {
	if path == "" {
		path = "manifest.yaml"
	}
	return sarif.NewLocation().WithPhysicalLocation(
		sarif.NewPhysicalLocation().WithArtifactLocation(
			sarif.NewSimpleArtifactLocation(path),
		),
	)
}

func ptrString(s string) *string {
	return &s
}
