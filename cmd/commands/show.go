package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pluqqy/pluqqy-studio/internal/cli"
)

var showOutput string

// NewShowCommand creates the show command
func NewShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <project-id>",
		Short: "Display a project and its pages",
		Long: `Display a storybook project with a summary of every page.

Examples:
  # Page table
  studio show 3f2a9c1e

  # Full project as JSON
  studio show 3f2a9c1e -o json`,
		Args:    cobra.ExactArgs(1),
		PreRunE: requireProject,
		RunE:    runShow,
	}

	cmd.Flags().StringVarP(&showOutput, "output", "o", "text", "Output format (text, json, yaml)")

	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	projectID := args[0]
	if err := cli.ValidateProjectID(projectID); err != nil {
		return err
	}
	format := strings.ToLower(showOutput)
	if err := cli.ValidateOutputFormat(format); err != nil {
		return err
	}

	cc, svc, err := connect()
	if err != nil {
		return err
	}

	ctx, cancel := cc.RequestContext(cmd.Context())
	defer cancel()
	project, err := svc.GetProject(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to load project %s: %w", projectID, err)
	}

	if cli.OutputFormat(format) == cli.FormatText {
		cli.WriteProject(cmd.OutOrStdout(), project)
		return nil
	}
	return cli.OutputResults(cmd.OutOrStdout(), format, project)
}
