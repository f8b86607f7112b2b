package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// App is the root bubbletea model. It owns global keys and window sizing and
// routes everything else to the studio screen.
type App struct {
	studio *Studio
	width  int
	height int
}

func NewApp(studio *Studio) *App {
	return &App{studio: studio}
}

// Studio returns the hosted screen
func (a *App) Studio() *Studio {
	return a.studio
}

func (a *App) Init() tea.Cmd {
	return a.studio.Init()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.studio.SetSize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		// Global keybindings
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}
	}

	_, cmd := a.studio.Update(msg)
	return a, cmd
}

func (a *App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Loading..."
	}
	return a.studio.View()
}
