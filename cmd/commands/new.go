package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pluqqy/pluqqy-studio/internal/cli"
	"github.com/pluqqy/pluqqy-studio/pkg/session"
)

var (
	newPrompt string
	newTitle  string
	newNoTUI  bool
)

// NewNewCommand creates the new command
func NewNewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a storybook project and open it in the studio",
		Long: `Create a new storybook project on the content service.

With --prompt the studio opens with the story idea filled in, ready to pick
characters and a style. Without it the studio starts from a blank concept.

Examples:
  # Start from a story idea
  studio new --prompt "A fox who learns to fly"

  # Create the project only
  studio new --title "Moon Garden" --no-tui`,
		Args:    cobra.NoArgs,
		PreRunE: requireProject,
		RunE:    runNew,
	}

	cmd.Flags().StringVarP(&newPrompt, "prompt", "p", "", "Story idea to start from")
	cmd.Flags().StringVarP(&newTitle, "title", "t", "", "Project title")
	cmd.Flags().BoolVar(&newNoTUI, "no-tui", false, "Create the project without opening the studio")

	return cmd
}

func runNew(cmd *cobra.Command, args []string) error {
	cc, svc, err := connect()
	if err != nil {
		return err
	}

	prompt := strings.TrimSpace(newPrompt)
	ctx, cancel := cc.RequestContext(cmd.Context())
	project, err := svc.CreateProject(ctx, strings.TrimSpace(newTitle), prompt)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	cli.PrintSuccess("Created project %s", project.ID)
	if newNoTUI {
		return nil
	}

	entry := session.EntryBlank
	if prompt != "" {
		entry = session.EntryPrompt
	}
	return runStudio(cc, svc, cc.SessionOptions(project.ID, entry, prompt))
}
