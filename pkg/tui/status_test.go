package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestStatusManager_ShowAndClear(t *testing.T) {
	sm := NewStatusManager()

	_, _, ok := sm.GetStatus()
	assert.False(t, ok)

	cmd := sm.ShowSuccess("Saved")
	assert.NotNil(t, cmd)
	text, statusType, ok := sm.GetStatus()
	assert.True(t, ok)
	assert.Equal(t, "✓ Saved", text)
	assert.Equal(t, StatusTypeSuccess, statusType)

	sm.HandleClear(ClearStatusMsg{seq: sm.seq})
	_, _, ok = sm.GetStatus()
	assert.False(t, ok)
}

func TestStatusManager_OlderClearKeepsNewerMessage(t *testing.T) {
	sm := NewStatusManager()
	sm.ShowError("first")
	stale := ClearStatusMsg{seq: sm.seq}
	sm.ShowInfo("second")

	sm.HandleClear(stale)
	text, statusType, ok := sm.GetStatus()
	assert.True(t, ok)
	assert.Equal(t, "ℹ second", text)
	assert.Equal(t, StatusTypeInfo, statusType)
}

func TestStatusManager_ExpiredMessageFallsBackToPersistent(t *testing.T) {
	now := time.Now()
	sm := NewStatusManager()
	sm.now = func() time.Time { return now }

	sm.SetPersistentMessage("Saving before exit...", StatusTypeInfo)
	sm.ShowWarning("Nothing to copy")
	text, _, _ := sm.GetStatus()
	assert.Equal(t, "⚠️ Nothing to copy", text)

	now = now.Add(3 * time.Second)
	text, statusType, ok := sm.GetStatus()
	assert.True(t, ok)
	assert.Equal(t, "ℹ Saving before exit...", text)
	assert.Equal(t, StatusTypeInfo, statusType)

	sm.ClearPersistentMessage()
	_, _, ok = sm.GetStatus()
	assert.False(t, ok)
}

func TestConfirmation_KeyHandling(t *testing.T) {
	tests := []struct {
		name      string
		key       tea.KeyMsg
		confirmed bool
		cancelled bool
	}{
		{"yes", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")}, true, false},
		{"upper yes", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Y")}, true, false},
		{"no", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")}, false, true},
		{"escape", tea.KeyMsg{Type: tea.KeyEsc}, false, true},
		{"other key", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var confirmed, cancelled bool
			m := NewConfirmation()
			m.ShowInline("Delete page 2?", true,
				func() tea.Cmd { confirmed = true; return nil },
				func() tea.Cmd { cancelled = true; return nil },
			)

			m.Update(tt.key)
			assert.Equal(t, tt.confirmed, confirmed)
			assert.Equal(t, tt.cancelled, cancelled)
			assert.Equal(t, !tt.confirmed && !tt.cancelled, m.Active())
		})
	}
}

func TestConfirmation_View(t *testing.T) {
	m := NewConfirmation()
	assert.Empty(t, m.View())

	m.ShowInline("Delete page 2?", true, nil, nil)
	assert.Contains(t, m.View(), "Delete page 2?")

	m.Show(ConfirmationConfig{
		Title:   "Delete page",
		Message: "Page 2 will be removed",
		Details: []string{"Later pages move up"},
		Type:    ConfirmTypeDialog,
	}, nil, nil)
	view := m.View()
	assert.Contains(t, view, "Delete page")
	assert.Contains(t, view, "Later pages move up")
	assert.Contains(t, view, "(yes / no)")
}
