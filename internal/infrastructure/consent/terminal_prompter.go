// Package consent provides the interactive consent prompter and the
// file-backed decision store.
package consent

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/luminor-dev/luminor/internal/domain/permissions"
)

// consent choices offered by the prompter.
const (
	choiceAllowOnce   = "allow"
	choiceAllowAlways = "always"
	choiceDeny        = "deny"
)

// TerminalPrompter asks for permission decisions on an interactive
// terminal.
type TerminalPrompter struct{}

// NewTerminalPrompter creates a new TerminalPrompter.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{}
}

// IsInteractive checks if we're running in an interactive terminal.
func (p *TerminalPrompter) IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// Ask presents the rendered consent prompt and returns the decision.
// Denial is the default: any error during prompting denies.
func (p *TerminalPrompter) Ask(ctx context.Context, req permissions.PermissionRequest, prompt string) (permissions.ConsentDecision, error) {
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, prompt)

	choice := choiceDeny
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title(fmt.Sprintf("Allow plugin %s to use %s?", req.PluginID, req.Permission)).
			Options(
				huh.NewOption("Allow once", choiceAllowOnce),
				huh.NewOption("Allow and remember", choiceAllowAlways),
				huh.NewOption("Deny", choiceDeny).Selected(true),
			).
			Value(&choice),
	))
	if err := form.RunWithContext(ctx); err != nil {
		return permissions.ConsentDecision{
			Granted:   false,
			Reason:    fmt.Sprintf("prompt failed: %v", err),
			Timestamp: time.Now(),
		}, err
	}

	return permissions.ConsentDecision{
		Granted:   choice != choiceDeny,
		Remember:  choice == choiceAllowAlways,
		Timestamp: time.Now(),
	}, nil
}
