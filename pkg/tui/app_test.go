package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pluqqy/pluqqy-studio/pkg/content/contenttest"
)

func TestApp_WindowSizeAndQuit(t *testing.T) {
	fake := contenttest.NewFake()
	fake.SeedPages("p1", "Moon", "one")
	h := startStudio(t, fake, existing("p1"))
	app := NewApp(h.studio)

	assert.Equal(t, "Loading...", app.View())

	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 120, h.studio.width)
	assert.Contains(t, app.View(), "Page 1 of 1")

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_RoutesToStudio(t *testing.T) {
	fake := contenttest.NewFake()
	fake.SeedPages("p1", "Moon", "one")
	h := startStudio(t, fake, existing("p1"))
	app := NewApp(h.studio)

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("!")})
	assert.Equal(t, "one!", h.studio.textArea.Value())
	assert.Same(t, h.studio, app.Studio())
}
