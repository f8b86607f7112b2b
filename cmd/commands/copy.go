package commands

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/pluqqy/pluqqy-studio/internal/cli"
)

// copyToClipboard is replaced in tests
var copyToClipboard = clipboard.WriteAll

// NewCopyCommand creates the copy command
func NewCopyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "copy <project-id> <page-number>",
		Short: "Copy the text of a page to the clipboard",
		Long: `Copy the script text of one page to the system clipboard.

Examples:
  studio copy 3f2a9c1e 1`,
		Args:    cobra.ExactArgs(2),
		Aliases: []string{"clip"},
		PreRunE: requireProject,
		RunE:    runCopy,
	}
}

func runCopy(cmd *cobra.Command, args []string) error {
	projectID := args[0]
	if err := cli.ValidateProjectID(projectID); err != nil {
		return err
	}
	number, err := cli.ParsePageNumber(args[1])
	if err != nil {
		return err
	}

	cc, svc, err := connect()
	if err != nil {
		return err
	}

	ctx, cancel := cc.RequestContext(cmd.Context())
	defer cancel()
	page, err := svc.GetPage(ctx, projectID, number)
	if err != nil {
		return fmt.Errorf("failed to load page %d: %w", number, err)
	}

	if strings.TrimSpace(page.ScriptText) == "" {
		cli.PrintWarning("Page %d has no text to copy", number)
		return nil
	}

	if err := copyToClipboard(page.ScriptText); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}

	cli.PrintSuccess("Page %d copied to clipboard", number)

	lines := strings.Split(page.ScriptText, "\n")
	preview := lines[0]
	if len(lines) > 1 {
		preview += " ..."
	}
	cli.PrintInfo("Preview: %s", cli.TruncateString(preview, 80))

	return nil
}
