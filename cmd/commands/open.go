package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pluqqy/pluqqy-studio/internal/cli"
	"github.com/pluqqy/pluqqy-studio/pkg/session"
)

// NewOpenCommand creates the open command
func NewOpenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "open <project-id>",
		Short: "Open an existing project in the studio",
		Long: `Open an existing storybook project for editing.

Edits to the title, the page text and the page fields are saved
automatically shortly after you stop typing.

Examples:
  studio open 3f2a9c1e-5d4b-4c1a-9e8f-2b7d6a0c4e11`,
		Args:    cobra.ExactArgs(1),
		PreRunE: requireProject,
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID := args[0]
			if err := cli.ValidateProjectID(projectID); err != nil {
				return err
			}

			cc, svc, err := connect()
			if err != nil {
				return err
			}

			ctx, cancel := cc.RequestContext(cmd.Context())
			_, err = svc.GetProject(ctx, projectID)
			cancel()
			if err != nil {
				return fmt.Errorf("failed to open project %s: %w", projectID, err)
			}

			return runStudio(cc, svc, cc.SessionOptions(projectID, session.EntryExisting, ""))
		},
	}
}
