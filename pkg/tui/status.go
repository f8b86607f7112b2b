package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// StatusFeedback represents a temporary status message
type StatusFeedback struct {
	Message   string
	Icon      string
	ShowUntil time.Time
	Type      StatusType
}

// StatusType represents the type of status message
type StatusType int

const (
	StatusTypeSuccess StatusType = iota
	StatusTypeWarning
	StatusTypeError
	StatusTypeInfo
)

// StatusManager manages temporary status messages
type StatusManager struct {
	CurrentStatus     *StatusFeedback
	DefaultDuration   time.Duration
	PersistentMessage string
	PersistentType    StatusType

	// seq identifies the message the next clear tick belongs to
	seq int
	now func() time.Time
}

// NewStatusManager creates a new status manager
func NewStatusManager() *StatusManager {
	return &StatusManager{
		DefaultDuration: 2 * time.Second,
		now:             time.Now,
	}
}

// ShowFeedback displays a status message with an icon
func (sm *StatusManager) ShowFeedback(icon, message string, statusType StatusType) tea.Cmd {
	sm.seq++
	sm.CurrentStatus = &StatusFeedback{
		Message:   message,
		Icon:      icon,
		ShowUntil: sm.now().Add(sm.DefaultDuration),
		Type:      statusType,
	}

	seq := sm.seq
	return tea.Tick(sm.DefaultDuration, func(time.Time) tea.Msg {
		return ClearStatusMsg{seq: seq}
	})
}

// ShowSuccess shows a success message
func (sm *StatusManager) ShowSuccess(message string) tea.Cmd {
	return sm.ShowFeedback("✓", message, StatusTypeSuccess)
}

// ShowWarning shows a warning message
func (sm *StatusManager) ShowWarning(message string) tea.Cmd {
	return sm.ShowFeedback("⚠️", message, StatusTypeWarning)
}

// ShowError shows an error message
func (sm *StatusManager) ShowError(message string) tea.Cmd {
	return sm.ShowFeedback("×", message, StatusTypeError)
}

// ShowInfo shows an info message
func (sm *StatusManager) ShowInfo(message string) tea.Cmd {
	return sm.ShowFeedback("ℹ", message, StatusTypeInfo)
}

// SetPersistentMessage sets a message that persists until cleared
func (sm *StatusManager) SetPersistentMessage(message string, statusType StatusType) {
	sm.PersistentMessage = message
	sm.PersistentType = statusType
}

// ClearPersistentMessage clears the persistent message
func (sm *StatusManager) ClearPersistentMessage() {
	sm.PersistentMessage = ""
}

// HandleClear drops the temporary message a ClearStatusMsg was scheduled for.
// A newer message survives the tick of an older one.
func (sm *StatusManager) HandleClear(msg ClearStatusMsg) {
	if msg.seq == sm.seq {
		sm.CurrentStatus = nil
	}
}

// IsActive checks if a status is currently showing
func (sm *StatusManager) IsActive() bool {
	if sm.CurrentStatus == nil {
		return false
	}
	if sm.now().After(sm.CurrentStatus.ShowUntil) {
		sm.CurrentStatus = nil
		return false
	}
	return true
}

// GetStatus returns the current status message if active
func (sm *StatusManager) GetStatus() (string, StatusType, bool) {
	if sm.IsActive() {
		return fmt.Sprintf("%s %s", sm.CurrentStatus.Icon, sm.CurrentStatus.Message), sm.CurrentStatus.Type, true
	}

	if sm.PersistentMessage != "" {
		icon := "ℹ"
		switch sm.PersistentType {
		case StatusTypeSuccess:
			icon = "✓"
		case StatusTypeWarning:
			icon = "⚠"
		case StatusTypeError:
			icon = "×"
		}
		return fmt.Sprintf("%s %s", icon, sm.PersistentMessage), sm.PersistentType, true
	}

	return "", StatusTypeInfo, false
}

// ClearStatusMsg is sent to clear the status
type ClearStatusMsg struct {
	seq int
}

// renderStatus styles a status line by type
func renderStatus(text string, statusType StatusType) string {
	switch statusType {
	case StatusTypeSuccess:
		return SuccessStyle.Render(text)
	case StatusTypeWarning:
		return WarningStyle.Render(text)
	case StatusTypeError:
		return ErrorStyle.Render(text)
	}
	return DescriptionStyle.Render(text)
}
