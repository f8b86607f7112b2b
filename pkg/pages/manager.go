// Package pages adds and removes pages of a project.
//
// The manager never touches field controllers. After a structural change the
// caller reloads the project and re-derives its controllers.
package pages

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pluqqy/pluqqy-studio/pkg/content"
	"github.com/pluqqy/pluqqy-studio/pkg/models"
)

// ErrBusy is returned when a structural operation is already running
var ErrBusy = errors.New("another page operation is in progress")

// AddedMsg reports the outcome of Add
type AddedMsg struct {
	Page models.Page
	Err  error
}

// DeletedMsg reports the outcome of Delete
type DeletedMsg struct {
	Number int
	// NextIndex is the 0-based page index the view should move to
	NextIndex int
	Err       error
}

// Manager runs page add and delete operations for one project
type Manager struct {
	svc       content.Service
	projectID string
	timeout   time.Duration

	Adding   bool
	Deleting bool
	LastErr  error
}

// NewManager creates a manager for projectID
func NewManager(svc content.Service, projectID string, timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Manager{svc: svc, projectID: projectID, timeout: timeout}
}

// Busy reports whether an operation is running
func (m *Manager) Busy() bool {
	return m.Adding || m.Deleting
}

// Add appends a page holding pc
func (m *Manager) Add(pc models.PageContent) tea.Cmd {
	if m.Busy() {
		m.LastErr = ErrBusy
		return nil
	}
	m.Adding = true
	m.LastErr = nil

	svc, id, timeout := m.svc, m.projectID, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		page, err := svc.AddPage(ctx, id, pc)
		return AddedMsg{Page: page, Err: err}
	}
}

// Delete removes page number n. viewed is the 0-based index on screen and
// count the number of pages before the deletion; they decide where the view
// lands afterwards.
func (m *Manager) Delete(n, viewed, count int) tea.Cmd {
	if m.Busy() {
		m.LastErr = ErrBusy
		return nil
	}
	if n < 1 || n > count {
		m.LastErr = fmt.Errorf("page %d does not exist", n)
		return nil
	}
	m.Deleting = true
	m.LastErr = nil

	svc, id, timeout := m.svc, m.projectID, m.timeout
	next := IndexAfterDelete(viewed, n-1, count)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		err := svc.DeletePage(ctx, id, n)
		return DeletedMsg{Number: n, NextIndex: next, Err: err}
	}
}

// HandleMessage records the outcome of a finished operation. The caller still
// reacts to the message to reload the project.
func (m *Manager) HandleMessage(msg tea.Msg) (bool, tea.Cmd) {
	switch msg := msg.(type) {
	case AddedMsg:
		m.Adding = false
		if msg.Err != nil {
			m.LastErr = fmt.Errorf("failed to add page: %w", msg.Err)
			slog.Warn("add page failed", "project", m.projectID, "error", msg.Err)
			return true, nil
		}
		slog.Info("page added", "project", m.projectID, "page", msg.Page.Number)
		return true, nil

	case DeletedMsg:
		m.Deleting = false
		if msg.Err != nil {
			m.LastErr = fmt.Errorf("failed to delete page %d: %w", msg.Number, msg.Err)
			slog.Warn("delete page failed", "project", m.projectID, "page", msg.Number, "error", msg.Err)
			return true, nil
		}
		slog.Info("page deleted", "project", m.projectID, "page", msg.Number)
		return true, nil
	}
	return false, nil
}

// IndexAfterDelete returns the page index to show after the page at deleted
// was removed from count pages while viewed was on screen. Pages after the
// deleted one move down by one, so the view follows the page it was on.
func IndexAfterDelete(viewed, deleted, count int) int {
	remaining := count - 1
	if remaining <= 0 {
		return 0
	}
	switch {
	case deleted < viewed:
		viewed--
	case deleted == viewed && viewed >= remaining:
		viewed = max(0, viewed-1)
	}
	return min(max(viewed, 0), remaining-1)
}
