package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pluqqy/pluqqy-studio/pkg/content"
	"github.com/pluqqy/pluqqy-studio/pkg/fieldsync"
	"github.com/pluqqy/pluqqy-studio/pkg/models"
	"github.com/pluqqy/pluqqy-studio/pkg/pages"
	"github.com/pluqqy/pluqqy-studio/pkg/session"
)

type focusArea int

const (
	focusTitle focusArea = iota
	focusConcept
	focusCharacters
	focusStyle
	focusText
	focusImagePrompt
	focusBackground
	focusPageCharacters
	focusPageStyle
	focusChat
)

var sectionFocus = map[session.Section]focusArea{
	session.SectionConcept:    focusConcept,
	session.SectionCharacters: focusCharacters,
	session.SectionArtStyle:   focusStyle,
}

// Studio is the editing screen of one project. It composes the session
// state machine, the field sync registry and the page manager, and owns the
// widgets that display them.
type Studio struct {
	session  *session.Session
	registry *fieldsync.Registry
	pages    *pages.Manager
	status   *StatusManager
	confirm  *ConfirmationModel
	keys     keyMap
	spinner  spinner.Model

	titleInput      textinput.Model
	conceptInput    textinput.Model
	charactersInput textinput.Model
	textArea        textarea.Model
	promptInput     textinput.Model
	backgroundInput textinput.Model
	pageCharsInput  textinput.Model
	chatInput       textinput.Model
	transcript      viewport.Model

	focus focusArea

	// shownFields is the page content last written into the field widgets
	shownFields models.PageFields
	fieldsFrom  int

	// pendingOp runs once every controller is idle
	pendingOp   func() tea.Cmd
	reloadPages bool

	copyText func(string) error

	width       int
	height      int
	laidOutMode session.Mode
	laidOutChat bool
}

// NewStudio creates the studio screen for opts. syncOpts configure the field
// controllers.
func NewStudio(svc content.Service, opts session.Options, syncOpts ...fieldsync.Option) *Studio {
	s := &Studio{
		session:  session.New(svc, opts),
		registry: fieldsync.NewRegistry(svc, syncOpts...),
		pages:    pages.NewManager(svc, opts.ProjectID, opts.RequestTimeout),
		status:   NewStatusManager(),
		confirm:  NewConfirmation(),
		keys:     defaultKeyMap(),
		copyText: clipboard.WriteAll,
	}

	s.spinner = spinner.New(spinner.WithSpinner(spinner.Dot))
	s.spinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorActive))

	s.titleInput = newInput("Untitled story", 120)
	s.conceptInput = newInput("A shy dragon who learns to bake...", 500)
	s.charactersInput = newInput("fox, owl", 200)
	s.promptInput = newInput("What the illustration shows", 500)
	s.backgroundInput = newInput("Where the page takes place", 300)
	s.pageCharsInput = newInput("fox, owl", 200)
	s.chatInput = newInput("Ask for a change...", 500)

	s.textArea = textarea.New()
	s.textArea.Placeholder = "Write this page..."
	s.textArea.ShowLineNumbers = false
	s.textArea.CharLimit = 0

	s.transcript = viewport.New(40, 10)

	s.conceptInput.SetValue(s.session.Config.Concept)
	s.focus = s.defaultFocus()
	s.applyFocus()
	s.SetSize(100, 30)
	return s
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Prompt = ""
	ti.PlaceholderStyle = PlaceholderStyle
	return ti
}

// Session exposes the session state, mainly for tests and the app shell
func (s *Studio) Session() *session.Session { return s.session }

// Registry exposes the field controllers
func (s *Studio) Registry() *fieldsync.Registry { return s.registry }

func (s *Studio) Init() tea.Cmd {
	return tea.Batch(s.session.Load(), s.spinner.Tick)
}

func (s *Studio) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.SetSize(msg.Width, msg.Height)
		return s, nil

	case tea.KeyMsg:
		cmds = append(cmds, s.handleKey(msg))

	case ClearStatusMsg:
		s.status.HandleClear(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case session.ProjectLoadedMsg:
		s.session.HandleMessage(msg)
		switch {
		case s.session.Loading:
			// a newer load is still on its way
		case s.session.LoadErr != nil:
			cmds = append(cmds, s.status.ShowError(s.session.LoadErr.Error()))
		default:
			cmds = append(cmds, s.syncRegistry())
		}

	case session.GeneratedMsg:
		_, cmd := s.session.HandleMessage(msg)
		cmds = append(cmds, cmd)
		if msg.Err != nil {
			cmds = append(cmds, s.status.ShowError("Generation failed"))
		} else {
			s.reloadPages = true
			cmds = append(cmds, s.syncRegistry(), s.registry.Title.Load())
			s.setFocus(focusText)
		}
		s.refreshTranscript()

	case session.ChatRepliedMsg:
		_, cmd := s.session.HandleMessage(msg)
		if msg.Err == nil && msg.Reply.Action == models.ChatActionEdit {
			s.reloadPages = true
		}
		cmds = append(cmds, cmd)
		s.refreshTranscript()

	case pages.AddedMsg:
		s.pages.HandleMessage(msg)
		if msg.Err != nil {
			cmds = append(cmds, s.status.ShowError(s.pages.LastErr.Error()))
		} else {
			s.session.ActivePage = msg.Page.Number - 1
			cmds = append(cmds, s.status.ShowSuccess(fmt.Sprintf("Added page %d", msg.Page.Number)))
		}
		s.reloadPages = true
		cmds = append(cmds, s.session.Load())

	case pages.DeletedMsg:
		s.pages.HandleMessage(msg)
		if msg.Err != nil {
			cmds = append(cmds, s.status.ShowError(s.pages.LastErr.Error()))
		} else {
			s.session.ActivePage = msg.NextIndex
			cmds = append(cmds, s.status.ShowSuccess(fmt.Sprintf("Deleted page %d", msg.Number)))
		}
		s.reloadPages = true
		cmds = append(cmds, s.session.Load())

	default:
		cmds = append(cmds, s.registry.Update(msg), s.forwardToFocused(msg))
	}

	s.syncInputs()
	if err := s.registry.BackgroundErr(); err != nil {
		cmds = append(cmds, s.status.ShowError(fmt.Sprintf("An earlier edit was not saved: %v", err)))
	}
	s.ensureFocus()
	if s.session.Mode != s.laidOutMode || s.session.ChatVisible != s.laidOutChat {
		s.SetSize(s.width, s.height)
	}
	cmds = append(cmds, s.runPending())
	return s, tea.Batch(cmds...)
}

// syncRegistry points the field controllers at the loaded project and the
// active page
func (s *Studio) syncRegistry() tea.Cmd {
	if s.session.Project == nil {
		return nil
	}
	page := s.session.PageNumber()
	if s.registry.ProjectID() != s.session.ProjectID {
		s.reloadPages = false
		return s.registry.SetProject(s.session.ProjectID, page)
	}
	if s.reloadPages {
		s.reloadPages = false
		return s.registry.Reload(page)
	}
	return s.registry.SetPage(page)
}

// whenIdle flushes every pending edit and runs op once no write is left.
// Page numbers shift under structural changes, so nothing may still be
// addressed to the old numbering when op starts.
func (s *Studio) whenIdle(label string, op func() tea.Cmd) tea.Cmd {
	if s.pendingOp != nil || s.pages.Busy() {
		return s.status.ShowWarning(pages.ErrBusy.Error())
	}
	s.pendingOp = op
	s.status.SetPersistentMessage(label, StatusTypeInfo)
	return tea.Batch(s.registry.FlushAll(), s.runPending())
}

// quit exits once everything is saved. A failed write asks first.
func (s *Studio) quit() tea.Cmd {
	if !s.registry.Unsaved() {
		return tea.Quit
	}
	s.confirm.ShowInline("Some edits were not saved. Quit anyway?", true, func() tea.Cmd {
		return tea.Quit
	}, nil)
	return nil
}

func (s *Studio) runPending() tea.Cmd {
	if s.pendingOp == nil || !s.registry.Idle() {
		return nil
	}
	op := s.pendingOp
	s.pendingOp = nil
	s.status.ClearPersistentMessage()
	return op()
}

// Blocked reports whether input is held back by a running structural change
func (s *Studio) Blocked() bool {
	return s.pendingOp != nil || s.pages.Busy()
}

func (s *Studio) handleKey(msg tea.KeyMsg) tea.Cmd {
	if s.confirm.Active() {
		return s.confirm.Update(msg)
	}
	if s.Blocked() {
		return nil
	}

	switch {
	case key.Matches(msg, s.keys.Quit):
		return s.whenIdle("Saving before exit...", s.quit)
	case key.Matches(msg, s.keys.Save):
		return s.registry.FlushAll()
	case key.Matches(msg, s.keys.Reload):
		s.reloadPages = true
		return tea.Batch(s.session.Load(), s.registry.Title.Load())
	case key.Matches(msg, s.keys.NextFocus):
		return s.moveFocus(1)
	case key.Matches(msg, s.keys.PrevFocus):
		return s.moveFocus(-1)
	case key.Matches(msg, s.keys.ToggleChat):
		s.session.ToggleChat()
		s.SetSize(s.width, s.height)
		return nil
	case key.Matches(msg, s.keys.Generate):
		return s.generate()
	}

	if s.session.Mode == session.ModeEditing {
		switch {
		case key.Matches(msg, s.keys.NextPage):
			if s.session.NextPage() {
				return s.registry.SetPage(s.session.PageNumber())
			}
			return nil
		case key.Matches(msg, s.keys.PrevPage):
			if s.session.PrevPage() {
				return s.registry.SetPage(s.session.PageNumber())
			}
			return nil
		case key.Matches(msg, s.keys.AddPage):
			return s.addPage()
		case key.Matches(msg, s.keys.DeletePage):
			return s.confirmDelete()
		case key.Matches(msg, s.keys.Copy):
			return s.copyPageText()
		}
	}

	return s.updateFocused(msg)
}

func (s *Studio) generate() tea.Cmd {
	if !s.session.CanGenerate() {
		return nil
	}
	cmd := s.session.Generate()
	if cmd == nil {
		s.setFocus(sectionFocus[s.session.Attention])
		return s.status.ShowWarning("Describe your story idea first")
	}
	s.setFocus(focusChat)
	s.refreshTranscript()
	return cmd
}

func (s *Studio) addPage() tea.Cmd {
	style := s.shownFields.ImageStyle
	if style == "" {
		style = s.session.Config.Style
	}
	return s.whenIdle("Saving before adding a page...", func() tea.Cmd {
		return s.pages.Add(models.PageContent{ImageStyle: style})
	})
}

func (s *Studio) confirmDelete() tea.Cmd {
	n := s.session.PageNumber()
	if n == 0 {
		return s.status.ShowWarning("There is no page to delete")
	}
	count := s.session.PageCount()
	width := 60
	if s.width > 0 {
		width = min(width, max(s.width-4, 30))
	}
	details := []string{"Unsaved edits are saved first"}
	if n < count {
		details = append(details, fmt.Sprintf("Pages after %d move up by one", n))
	}
	s.confirm.Show(ConfirmationConfig{
		Title:       "Delete page",
		Message:     fmt.Sprintf("Page %d of %d will be removed", n, count),
		Warning:     "This cannot be undone",
		Details:     details,
		Destructive: true,
		Type:        ConfirmTypeDialog,
		Width:       width,
	}, func() tea.Cmd {
		return s.whenIdle("Saving before deleting a page...", func() tea.Cmd {
			return s.pages.Delete(n, s.session.ActivePage, s.session.PageCount())
		})
	}, nil)
	return nil
}

func (s *Studio) copyPageText() tea.Cmd {
	text := s.registry.Text.Value()
	if strings.TrimSpace(text) == "" {
		return s.status.ShowWarning("Nothing to copy")
	}
	if err := s.copyText(text); err != nil {
		return s.status.ShowError(fmt.Sprintf("Failed to copy: %v", err))
	}
	return s.status.ShowSuccess(fmt.Sprintf("Copied page %d to clipboard", s.session.PageNumber()))
}

// updateFocused feeds a key to the focused widget and forwards the edit to
// its owner
func (s *Studio) updateFocused(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	hasPage := s.session.PageNumber() > 0

	switch s.focus {
	case focusTitle:
		if s.session.Project == nil {
			return nil
		}
		s.titleInput, cmd = s.titleInput.Update(msg)
		if v := s.titleInput.Value(); v != s.registry.Title.Value() {
			cmd = tea.Batch(cmd, s.registry.Title.SetLocal(v))
		}

	case focusConcept:
		if key.Matches(msg, s.keys.Send) {
			return s.generate()
		}
		if !s.session.ConfigEditable() {
			return nil
		}
		s.conceptInput, cmd = s.conceptInput.Update(msg)
		s.session.SetConcept(s.conceptInput.Value())

	case focusCharacters:
		if key.Matches(msg, s.keys.Send) {
			return s.generate()
		}
		if !s.session.ConfigEditable() {
			return nil
		}
		s.charactersInput, cmd = s.charactersInput.Update(msg)
		s.session.SetCharacters(s.charactersInput.Value())

	case focusStyle:
		switch {
		case key.Matches(msg, s.keys.StyleNext):
			s.session.CycleStyle(1)
		case key.Matches(msg, s.keys.StylePrev):
			s.session.CycleStyle(-1)
		case key.Matches(msg, s.keys.Send):
			return s.generate()
		}

	case focusText:
		if !hasPage {
			return nil
		}
		s.textArea, cmd = s.textArea.Update(msg)
		if v := s.textArea.Value(); v != s.registry.Text.Value() {
			cmd = tea.Batch(cmd, s.registry.Text.SetLocal(v))
		}

	case focusImagePrompt, focusBackground, focusPageCharacters:
		if !hasPage {
			return nil
		}
		input := s.fieldInput(s.focus)
		*input, cmd = input.Update(msg)
		cmd = tea.Batch(cmd, s.editFields())

	case focusPageStyle:
		if !hasPage {
			return nil
		}
		delta := 0
		switch {
		case key.Matches(msg, s.keys.StyleNext):
			delta = 1
		case key.Matches(msg, s.keys.StylePrev):
			delta = -1
		}
		if delta != 0 {
			fields := s.shownFields
			fields.ImageStyle = models.CycleArtStyle(fields.ImageStyle, delta)
			s.shownFields = fields
			cmd = s.registry.Fields.SetLocal(fields)
		}

	case focusChat:
		if key.Matches(msg, s.keys.Send) {
			cmd = s.session.SendChat(s.chatInput.Value())
			if cmd != nil {
				s.chatInput.Reset()
				s.refreshTranscript()
			}
			return cmd
		}
		s.chatInput, cmd = s.chatInput.Update(msg)
	}
	return cmd
}

func (s *Studio) fieldInput(f focusArea) *textinput.Model {
	switch f {
	case focusImagePrompt:
		return &s.promptInput
	case focusBackground:
		return &s.backgroundInput
	case focusPageCharacters:
		return &s.pageCharsInput
	}
	return nil
}

// editFields sends the page content widgets to the fields controller when
// they changed
func (s *Studio) editFields() tea.Cmd {
	fields := models.PageFields{
		ImagePrompt:           s.promptInput.Value(),
		ImageStyle:            s.shownFields.ImageStyle,
		CharacterIDs:          models.ParseCharacterIDs(s.pageCharsInput.Value()),
		BackgroundDescription: s.backgroundInput.Value(),
	}
	if fields.Equal(s.shownFields) {
		return nil
	}
	s.shownFields = fields
	return s.registry.Fields.SetLocal(fields)
}

// forwardToFocused passes non-key messages such as cursor blinks to the
// focused widget
func (s *Studio) forwardToFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch s.focus {
	case focusTitle:
		s.titleInput, cmd = s.titleInput.Update(msg)
	case focusConcept:
		s.conceptInput, cmd = s.conceptInput.Update(msg)
	case focusCharacters:
		s.charactersInput, cmd = s.charactersInput.Update(msg)
	case focusText:
		s.textArea, cmd = s.textArea.Update(msg)
	case focusImagePrompt, focusBackground, focusPageCharacters:
		input := s.fieldInput(s.focus)
		*input, cmd = input.Update(msg)
	case focusChat:
		s.chatInput, cmd = s.chatInput.Update(msg)
	}
	return cmd
}

// syncInputs shows values that changed outside the widgets: loads, echoes
// and re-keyed controllers. Local edits already match their controller.
func (s *Studio) syncInputs() {
	if v := s.registry.Title.Value(); v != s.titleInput.Value() {
		s.titleInput.SetValue(v)
	}
	if v := s.registry.Text.Value(); v != s.textArea.Value() {
		s.textArea.SetValue(v)
	}

	f := s.registry.Fields
	if f.ID() != s.fieldsFrom || !f.Value().Equal(s.shownFields) {
		s.fieldsFrom = f.ID()
		s.shownFields = f.Value()
		s.promptInput.SetValue(s.shownFields.ImagePrompt)
		s.backgroundInput.SetValue(s.shownFields.BackgroundDescription)
		s.pageCharsInput.SetValue(models.FormatCharacterIDs(s.shownFields.CharacterIDs))
	}

	if c := s.session.Config.Concept; c != s.conceptInput.Value() {
		s.conceptInput.SetValue(c)
	}
}

func (s *Studio) refreshTranscript() {
	width := max(s.transcript.Width, 10)
	var b strings.Builder
	for i, e := range s.session.Transcript {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(renderEntry(e, width))
	}
	s.transcript.SetContent(b.String())
	s.transcript.GotoBottom()
}

func (s *Studio) focusOrder() []focusArea {
	if s.session.Mode == session.ModeConfiguring {
		return []focusArea{focusTitle, focusConcept, focusCharacters, focusStyle}
	}
	order := []focusArea{focusTitle, focusText, focusImagePrompt, focusBackground, focusPageCharacters, focusPageStyle}
	if s.session.ChatVisible {
		order = append(order, focusChat)
	}
	return order
}

func (s *Studio) defaultFocus() focusArea {
	if s.session.Mode == session.ModeConfiguring {
		if f, ok := sectionFocus[s.session.Attention]; ok {
			return f
		}
		return focusConcept
	}
	return focusText
}

func (s *Studio) moveFocus(delta int) tea.Cmd {
	order := s.focusOrder()
	idx := 0
	for i, f := range order {
		if f == s.focus {
			idx = i + delta
			break
		}
	}
	n := len(order)
	return s.setFocus(order[((idx%n)+n)%n])
}

func (s *Studio) setFocus(f focusArea) tea.Cmd {
	s.focus = f
	for section, area := range sectionFocus {
		if area == f {
			s.session.Focus(section)
		}
	}
	return s.applyFocus()
}

// ensureFocus moves focus back onto the screen after a mode change or a
// hidden chat panel
func (s *Studio) ensureFocus() {
	for _, f := range s.focusOrder() {
		if f == s.focus {
			return
		}
	}
	s.focus = s.defaultFocus()
	s.applyFocus()
}

func (s *Studio) applyFocus() tea.Cmd {
	inputs := map[focusArea]*textinput.Model{
		focusTitle:          &s.titleInput,
		focusConcept:        &s.conceptInput,
		focusCharacters:     &s.charactersInput,
		focusImagePrompt:    &s.promptInput,
		focusBackground:     &s.backgroundInput,
		focusPageCharacters: &s.pageCharsInput,
		focusChat:           &s.chatInput,
	}
	var cmd tea.Cmd
	for area, input := range inputs {
		if area == s.focus {
			cmd = input.Focus()
		} else {
			input.Blur()
		}
	}
	if s.focus == focusText {
		cmd = s.textArea.Focus()
	} else {
		s.textArea.Blur()
	}
	return cmd
}

// SetSize lays the panes out for the terminal size
func (s *Studio) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.laidOutMode = s.session.Mode
	s.laidOutChat = s.session.ChatVisible

	chatWidth := 0
	if s.session.Mode == session.ModeEditing && s.session.ChatVisible {
		chatWidth = max(width/3, 30)
	}
	editorWidth := max(width-chatWidth-4, 20)
	inputWidth := max(editorWidth-18, 10)

	s.titleInput.Width = max(width-24, 10)
	s.conceptInput.Width = inputWidth
	s.charactersInput.Width = inputWidth
	s.promptInput.Width = inputWidth
	s.backgroundInput.Width = inputWidth
	s.pageCharsInput.Width = inputWidth

	s.textArea.SetWidth(editorWidth - 2)
	s.textArea.SetHeight(max(height-18, 3))

	if chatWidth > 0 {
		s.transcript.Width = chatWidth - 4
		s.transcript.Height = max(height-12, 3)
		s.chatInput.Width = chatWidth - 6
	}
	s.refreshTranscript()
}
