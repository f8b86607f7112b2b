package commands

import (
	"fmt"
	"log/slog"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pluqqy/pluqqy-studio/internal/cli"
	"github.com/pluqqy/pluqqy-studio/pkg/content"
	"github.com/pluqqy/pluqqy-studio/pkg/files"
	"github.com/pluqqy/pluqqy-studio/pkg/session"
	"github.com/pluqqy/pluqqy-studio/pkg/tui"
)

// newCommandContext resolves the workspace of every command
var newCommandContext = func() *cli.CommandContext {
	return cli.NewCommandContext(".")
}

// runProgram drives the terminal UI until it quits
var runProgram = func(m tea.Model) (tea.Model, error) {
	return tea.NewProgram(m, tea.WithAltScreen()).Run()
}

func requireProject(cmd *cobra.Command, args []string) error {
	return newCommandContext().ValidateProject()
}

// connect loads the settings and the content service client
func connect() (*cli.CommandContext, content.Service, error) {
	cc := newCommandContext()
	if _, err := cc.LoadSettings(); err != nil {
		return nil, nil, fmt.Errorf("failed to load settings: %w", err)
	}
	svc, err := cc.Service()
	if err != nil {
		return nil, nil, err
	}
	return cc, svc, nil
}

// runStudio opens the editing studio for a project and blocks until the
// user leaves it
func runStudio(cc *cli.CommandContext, svc content.Service, opts session.Options) error {
	logPath := cc.Settings.UI.LogFile
	if !filepath.IsAbs(logPath) {
		logPath = filepath.Join(cc.Dir, files.StudioDir, logPath)
	}
	closeLog, err := cli.LogToFile(logPath)
	if err != nil {
		return err
	}
	defer closeLog()

	slog.Info("opening studio", "project", opts.ProjectID, "entry", opts.Entry.String())

	studio := tui.NewStudio(svc, opts, cc.SyncOptions()...)
	if _, err := runProgram(tui.NewApp(studio)); err != nil {
		return fmt.Errorf("failed to start the terminal user interface: %w", err)
	}

	slog.Info("studio closed", "project", opts.ProjectID)
	cli.PrintInfo("Reopen with 'studio open %s'", opts.ProjectID)
	return nil
}
