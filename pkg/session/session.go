// Package session holds the editing-session state machine of the studio:
// which mode governs the screen, which configuration section needs attention,
// whether the chat panel shows, and the transition from configuring to
// generated.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pluqqy/pluqqy-studio/pkg/content"
	"github.com/pluqqy/pluqqy-studio/pkg/models"
)

const (
	generatingText = "Creating your story..."
	thinkingText   = "Thinking..."
)

// ProjectLoadedMsg carries the result of a project fetch
type ProjectLoadedMsg struct {
	seq     int
	Project *models.Project
	Err     error
}

// GeneratedMsg carries the result of a generation request
type GeneratedMsg struct {
	Project *models.Project
	Err     error
}

// ChatRepliedMsg carries the service's answer to a chat message
type ChatRepliedMsg struct {
	Reply models.ChatReply
	Err   error
}

// Options describe how a session starts
type Options struct {
	ProjectID string
	Entry     EntryChannel
	// Prompt seeds the concept for EntryPrompt sessions
	Prompt         string
	RequestTimeout time.Duration
}

// Session is the editing-session state of one studio screen. It is driven
// from a bubbletea Update loop and is not safe for concurrent use.
type Session struct {
	svc     content.Service
	timeout time.Duration

	ProjectID   string
	Entry       EntryChannel
	Mode        Mode
	Attention   Section
	ChatVisible bool
	Config      Config
	Transcript  []Entry

	Project    *models.Project
	ActivePage int
	Loading    bool
	LoadErr    error
	Generating bool
	Chatting   bool

	hasGenerated bool
	loadSeq      int
}

// New creates a session in the initial state of its entry channel
func New(svc content.Service, opts Options) *Session {
	s := &Session{
		svc:       svc,
		timeout:   opts.RequestTimeout,
		ProjectID: opts.ProjectID,
		Entry:     opts.Entry,
		Config:    Config{Style: models.ArtStyles[0].ID},
	}
	if s.timeout <= 0 {
		s.timeout = 10 * time.Second
	}

	switch opts.Entry {
	case EntryPrompt:
		s.Mode = ModeConfiguring
		s.Attention = SectionCharacters
		s.Config.Concept = strings.TrimSpace(opts.Prompt)
	case EntryBlank:
		s.Mode = ModeConfiguring
		s.Attention = SectionConcept
	default:
		s.Mode = ModeEditing
		s.Attention = SectionNone
		s.ChatVisible = true
	}
	return s
}

// HasGenerated reports whether the project went through generation. It never
// goes back to false.
func (s *Session) HasGenerated() bool {
	return s.hasGenerated
}

// ConfigEditable reports whether the configuration sections accept edits
func (s *Session) ConfigEditable() bool {
	return !s.hasGenerated && !s.Generating
}

// PageCount returns the number of pages of the loaded project
func (s *Session) PageCount() int {
	return s.Project.PageCount()
}

// PageNumber returns the 1-based number of the active page, or 0 when the
// project has no pages
func (s *Session) PageNumber() int {
	if s.PageCount() == 0 {
		return 0
	}
	return s.ActivePage + 1
}

// CurrentPage returns the active page
func (s *Session) CurrentPage() (models.Page, bool) {
	if s.PageCount() == 0 {
		return models.Page{}, false
	}
	return s.Project.Pages[s.ActivePage], true
}

// Load fetches the project. Responses of earlier loads are ignored.
func (s *Session) Load() tea.Cmd {
	if s.ProjectID == "" {
		return nil
	}
	s.loadSeq++
	s.Loading = true

	svc, id, seq, timeout := s.svc, s.ProjectID, s.loadSeq, s.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		p, err := svc.GetProject(ctx, id)
		return ProjectLoadedMsg{seq: seq, Project: p, Err: err}
	}
}

// ApplyProject replaces the loaded project and recomputes the mode. A project
// holding pages is in editing mode whatever the entry channel said.
func (s *Session) ApplyProject(p *models.Project) {
	s.Project = p
	if p == nil {
		return
	}

	if s.Config.Concept == "" && p.Prompt != "" {
		s.Config.Concept = p.Prompt
	}
	if p.Generated() {
		s.markGenerated()
	}
	if s.hasGenerated {
		s.Mode = ModeEditing
	} else {
		s.Mode = ModeConfiguring
	}
	s.SelectPage(s.ActivePage)
}

func (s *Session) markGenerated() {
	s.hasGenerated = true
	s.ChatVisible = true
}

// SelectPage moves the active page, clamped to the page range
func (s *Session) SelectPage(index int) {
	n := s.PageCount()
	switch {
	case n == 0 || index < 0:
		s.ActivePage = 0
	case index >= n:
		s.ActivePage = n - 1
	default:
		s.ActivePage = index
	}
}

// NextPage moves one page forward and reports whether the page changed
func (s *Session) NextPage() bool {
	prev := s.ActivePage
	s.SelectPage(prev + 1)
	return s.ActivePage != prev
}

// PrevPage moves one page back and reports whether the page changed
func (s *Session) PrevPage() bool {
	prev := s.ActivePage
	s.SelectPage(prev - 1)
	return s.ActivePage != prev
}

// Focus moves attention to a configuration section
func (s *Session) Focus(section Section) {
	s.Attention = section
}

// FocusNext cycles attention through the configuration sections
func (s *Session) FocusNext(delta int) {
	idx := 0
	for i, sec := range Sections {
		if sec == s.Attention {
			idx = i + delta
			break
		}
	}
	n := len(Sections)
	s.Attention = Sections[((idx%n)+n)%n]
}

// SetConcept edits the story concept
func (s *Session) SetConcept(concept string) bool {
	if !s.ConfigEditable() {
		return false
	}
	s.Config.Concept = concept
	return true
}

// SetCharacters edits the character selection from a comma separated list
func (s *Session) SetCharacters(raw string) bool {
	if !s.ConfigEditable() {
		return false
	}
	s.Config.CharacterIDs = models.ParseCharacterIDs(raw)
	return true
}

// CycleStyle moves the art style selection, wrapping at both ends
func (s *Session) CycleStyle(delta int) bool {
	if !s.ConfigEditable() {
		return false
	}
	s.Config.Style = models.CycleArtStyle(s.Config.Style, delta)
	return true
}

// ToggleChat shows or hides the chat panel
func (s *Session) ToggleChat() {
	s.ChatVisible = !s.ChatVisible
}

// CanGenerate reports whether Generate would start a request
func (s *Session) CanGenerate() bool {
	if s.Generating || s.Chatting || s.ProjectID == "" {
		return false
	}
	// A failed generation leaves an editing session without pages. Allow a retry.
	return s.Mode == ModeConfiguring || (s.Project != nil && s.PageCount() == 0)
}

// Generate starts the first-time generation with the current configuration.
// The session switches to editing mode at once and shows a provisional
// transcript entry until the service answers.
func (s *Session) Generate() tea.Cmd {
	if !s.CanGenerate() {
		return nil
	}
	if strings.TrimSpace(s.Config.Concept) == "" {
		s.Attention = SectionConcept
		return nil
	}

	s.Mode = ModeEditing
	s.markGenerated()
	s.Generating = true
	s.Attention = SectionNone
	s.Transcript = append(s.Transcript, Entry{Role: RoleAssistant, Text: generatingText, Provisional: true})

	req := models.GenerationRequest{
		Concept:      strings.TrimSpace(s.Config.Concept),
		CharacterIDs: models.NormalizeCharacterIDs(s.Config.CharacterIDs),
		Style:        s.Config.Style,
	}
	svc, id, timeout := s.svc, s.ProjectID, s.timeout
	slog.Info("generation requested", "project", id, "style", req.Style, "characters", len(req.CharacterIDs))
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		p, err := svc.Generate(ctx, id, req)
		return GeneratedMsg{Project: p, Err: err}
	}
}

// SendChat sends one message to the studio assistant
func (s *Session) SendChat(message string) tea.Cmd {
	message = strings.TrimSpace(message)
	if message == "" || !s.ChatVisible || s.Chatting || s.Generating || s.ProjectID == "" {
		return nil
	}

	s.Chatting = true
	s.Transcript = append(s.Transcript,
		Entry{Role: RoleUser, Text: message},
		Entry{Role: RoleAssistant, Text: thinkingText, Provisional: true},
	)

	svc, id, timeout := s.svc, s.ProjectID, s.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		reply, err := svc.Chat(ctx, id, message)
		return ChatRepliedMsg{Reply: reply, Err: err}
	}
}

// HandleMessage applies the session's own async results
func (s *Session) HandleMessage(msg tea.Msg) (bool, tea.Cmd) {
	switch msg := msg.(type) {
	case ProjectLoadedMsg:
		if msg.seq != s.loadSeq {
			return true, nil
		}
		s.Loading = false
		if msg.Err != nil {
			s.LoadErr = fmt.Errorf("failed to load project: %w", msg.Err)
			slog.Warn("project load failed", "project", s.ProjectID, "error", msg.Err)
			return true, nil
		}
		s.LoadErr = nil
		s.ApplyProject(msg.Project)
		return true, nil

	case GeneratedMsg:
		s.Generating = false
		s.dropProvisional()
		if msg.Err != nil {
			s.Transcript = append(s.Transcript, Entry{Role: RoleError, Text: "Generation failed: " + msg.Err.Error()})
			slog.Warn("generation failed", "project", s.ProjectID, "error", msg.Err)
			return true, nil
		}
		s.ActivePage = 0
		s.ApplyProject(msg.Project)
		s.Transcript = append(s.Transcript, Entry{
			Role: RoleAssistant,
			Text: fmt.Sprintf("Your story is ready with %d pages. Ask me for changes any time.", s.PageCount()),
		})
		return true, nil

	case ChatRepliedMsg:
		s.Chatting = false
		s.dropProvisional()
		if msg.Err != nil {
			s.Transcript = append(s.Transcript, Entry{Role: RoleError, Text: "Message failed: " + msg.Err.Error()})
			return true, nil
		}
		s.Transcript = append(s.Transcript, Entry{Role: RoleAssistant, Text: msg.Reply.AssistantMessage})
		if msg.Reply.Action == models.ChatActionEdit {
			return true, s.Load()
		}
		return true, nil
	}
	return false, nil
}

func (s *Session) dropProvisional() {
	kept := s.Transcript[:0]
	for _, e := range s.Transcript {
		if !e.Provisional {
			kept = append(kept, e)
		}
	}
	s.Transcript = kept
}
