package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pluqqy/pluqqy-studio/internal/cli"
	"github.com/pluqqy/pluqqy-studio/pkg/files"
)

// NewInitCommand creates the init command
func NewInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a studio workspace",
		Long: `Creates the .studio folder with default settings in the current directory.

The settings file points the studio at a content service. Values can be
overridden from a .env file or STUDIO_* environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := newCommandContext()
			abs, err := filepath.Abs(cc.Dir)
			if err != nil {
				return fmt.Errorf("failed to determine current directory: %w", err)
			}

			cli.PrintInfo("Initializing studio workspace in %s...", abs)
			if err := files.InitProjectStructure(cc.Dir); err != nil {
				return fmt.Errorf("failed to initialize workspace: %w", err)
			}

			cli.PrintSuccess("Created %s", filepath.Join(files.StudioDir, files.SettingsFile))
			cli.PrintInfo("Run 'studio serve' for a local content service, then 'studio new'.")
			return nil
		},
	}
}
