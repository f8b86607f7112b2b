package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pluqqy/pluqqy-studio/internal/cli"
	"github.com/pluqqy/pluqqy-studio/pkg/models"
)

var (
	pageText       string
	pageStyle      string
	pageCharacters string
	pageForce      bool
)

// NewPageCommand creates the page command and its subcommands
func NewPageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "page",
		Short: "Add or delete pages of a project",
	}

	cmd.AddCommand(newPageAddCommand())
	cmd.AddCommand(newPageDeleteCommand())

	return cmd
}

func newPageAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <project-id>",
		Short: "Append a page to a project",
		Long: `Append a page after the last page of a project.

Examples:
  studio page add 3f2a9c1e --text "The fox looked up at the geese."
  studio page add 3f2a9c1e --style minimalist --characters fox,owl`,
		Args:    cobra.ExactArgs(1),
		PreRunE: requireProject,
		RunE:    runPageAdd,
	}

	cmd.Flags().StringVar(&pageText, "text", "", "Page text")
	cmd.Flags().StringVar(&pageStyle, "style", "", "Image style id")
	cmd.Flags().StringVar(&pageCharacters, "characters", "", "Comma separated character ids")

	return cmd
}

func runPageAdd(cmd *cobra.Command, args []string) error {
	projectID := args[0]
	if err := cli.ValidateProjectID(projectID); err != nil {
		return err
	}
	if pageStyle != "" && models.ArtStyleIndex(pageStyle) < 0 {
		return fmt.Errorf("unknown style: %s", pageStyle)
	}

	cc, svc, err := connect()
	if err != nil {
		return err
	}

	ctx, cancel := cc.RequestContext(cmd.Context())
	defer cancel()
	page, err := svc.AddPage(ctx, projectID, models.PageContent{
		ScriptText:   pageText,
		ImageStyle:   pageStyle,
		CharacterIDs: models.ParseCharacterIDs(pageCharacters),
	})
	if err != nil {
		return fmt.Errorf("failed to add page: %w", err)
	}

	cli.PrintSuccess("Added page %d", page.Number)
	return nil
}

func newPageDeleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <project-id> <page-number>",
		Short: "Delete a page from a project",
		Long: `Delete one page. The pages after it move up by one.

Examples:
  studio page delete 3f2a9c1e 2
  studio page delete 3f2a9c1e 2 --force`,
		Args:    cobra.ExactArgs(2),
		Aliases: []string{"rm"},
		PreRunE: requireProject,
		RunE:    runPageDelete,
	}

	cmd.Flags().BoolVarP(&pageForce, "force", "f", false, "Delete without confirmation")

	return cmd
}

func runPageDelete(cmd *cobra.Command, args []string) error {
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
	project, err := svc.GetProject(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to load project %s: %w", projectID, err)
	}
	count := project.PageCount()
	if number > count {
		return fmt.Errorf("page %d does not exist (project has %d page(s))", number, count)
	}

	if !pageForce {
		confirmed, err := cli.Confirm(fmt.Sprintf("Delete page %d of '%s'?", number, project.Title), false)
		if err != nil {
			return err
		}
		if !confirmed {
			cli.PrintInfo("Deletion cancelled")
			return nil
		}
	}

	if err := svc.DeletePage(ctx, projectID, number); err != nil {
		return fmt.Errorf("failed to delete page %d: %w", number, err)
	}

	cli.PrintSuccess("Deleted page %d, %d page(s) remain", number, count-1)
	return nil
}
