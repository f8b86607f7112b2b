package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/pluqqy/pluqqy-studio/pkg/fieldsync"
	"github.com/pluqqy/pluqqy-studio/pkg/models"
	"github.com/pluqqy/pluqqy-studio/pkg/session"
)

func (s *Studio) View() string {
	if s.session.Project == nil {
		return s.loadingView()
	}

	var body string
	if s.session.Mode == session.ModeConfiguring {
		body = s.configureView()
	} else {
		body = s.editView()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		s.headerView(),
		body,
		s.footerView(),
	)
}

func (s *Studio) loadingView() string {
	if s.session.LoadErr != nil {
		return lipgloss.JoinVertical(lipgloss.Left,
			ErrorStyle.Render("× "+s.session.LoadErr.Error()),
			"",
			HelpStyle.Render("^r retry • ctrl+c quit"),
		)
	}
	return fmt.Sprintf("%s Loading project...", s.spinner.View())
}

func (s *Studio) headerView() string {
	label := GetActiveHeaderStyle(s.focus == focusTitle).Render("Title: ")
	badge := saveBadge(s.registry.Title.Status())
	if err := s.registry.Title.Err(); err != nil {
		badge = ErrorStyle.Render("× " + err.Error())
	}

	left := BrandStyle.Render("studio") + "  " + label + s.titleInput.View()
	gap := max(s.width-lipgloss.Width(left)-lipgloss.Width(badge)-2, 1)
	return ContentPaddingStyle.Render(left + strings.Repeat(" ", gap) + badge)
}

func (s *Studio) configureView() string {
	editable := s.session.ConfigEditable()

	section := func(area focusArea, title, body, hint string) string {
		active := s.focus == area
		var b strings.Builder
		b.WriteString(GetActiveHeaderStyle(active).Render(title))
		b.WriteString("\n")
		b.WriteString(body)
		if hint != "" {
			b.WriteString("\n")
			b.WriteString(DescriptionStyle.Render(hint))
		}
		return GetBorderStyle(active).
			Width(max(s.width-4, 20)).
			Padding(0, 1).
			Render(b.String())
	}

	style := s.session.Config.Style
	styleLine := "‹ " + styleTitle(style) + " ›"
	if i := models.ArtStyleIndex(style); i >= 0 {
		styleLine += "  " + DescriptionStyle.Render(models.ArtStyles[i].Description)
	}

	parts := []string{
		section(focusConcept, "Story idea", s.conceptInput.View(), "What is your story about?"),
		section(focusCharacters, "Characters", s.charactersInput.View(), "Comma separated, optional"),
		section(focusStyle, "Art style", styleLine, "←/→ to choose"),
	}
	if !editable {
		parts = append(parts, WarningStyle.Render("Configuration is locked once the story has been generated."))
	} else {
		parts = append(parts, NormalStyle.Render("Press ^g to create your story."))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (s *Studio) editView() string {
	editor := s.pageView()
	if !s.session.ChatVisible {
		return editor
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, editor, s.chatView())
}

func (s *Studio) pageView() string {
	width := s.textArea.Width() + 4
	active := s.focus != focusTitle && s.focus != focusChat

	var b strings.Builder
	switch {
	case s.session.Generating:
		b.WriteString(s.spinner.View() + " Creating your story...")
		return GetBorderStyle(active).Width(width).Padding(0, 1).Render(b.String())
	case s.session.PageCount() == 0:
		b.WriteString(DescriptionStyle.Render("This story has no pages yet."))
		b.WriteString("\n")
		if s.session.CanGenerate() {
			b.WriteString(NormalStyle.Render("Press ^g to generate it or ^a to add a blank page."))
		} else {
			b.WriteString(NormalStyle.Render("Press ^a to add a page."))
		}
		return GetBorderStyle(active).Width(width).Padding(0, 1).Render(b.String())
	}

	text := s.registry.Text
	heading := fmt.Sprintf("Page %d of %d", s.session.PageNumber(), s.session.PageCount())
	b.WriteString(GetActiveHeaderStyle(s.focus == focusText).Render(heading))
	if badge := fieldBadge(text.Status(), text.Loading()); badge != "" {
		b.WriteString("  " + badge)
	}
	b.WriteString("\n")
	b.WriteString(s.textArea.View())
	if err := text.Err(); err != nil {
		b.WriteString("\n" + ErrorStyle.Render(err.Error()))
	}
	b.WriteString("\n\n")

	fields := s.registry.Fields
	row := func(area focusArea, label, value string) {
		b.WriteString(GetActiveHeaderStyle(s.focus == area).Render(fmt.Sprintf("%-12s", label)))
		b.WriteString(" " + value + "\n")
	}
	row(focusImagePrompt, "Illustration", s.promptInput.View())
	row(focusBackground, "Background", s.backgroundInput.View())
	row(focusPageCharacters, "Characters", s.pageCharsInput.View())
	row(focusPageStyle, "Style", "‹ "+styleTitle(s.shownFields.ImageStyle)+" ›")
	if badge := fieldBadge(fields.Status(), fields.Loading()); badge != "" {
		b.WriteString(badge)
	}
	if err := fields.Err(); err != nil {
		b.WriteString(" " + ErrorStyle.Render(err.Error()))
	}
	if n := s.registry.Retiring(); n > 0 {
		b.WriteString("\n" + DescriptionStyle.Render(fmt.Sprintf("Finishing %d earlier save(s)...", n)))
	}

	return GetBorderStyle(active).Width(width).Padding(0, 1).Render(b.String())
}

func (s *Studio) chatView() string {
	active := s.focus == focusChat
	var b strings.Builder
	b.WriteString(GetActiveHeaderStyle(active).Render("Assistant"))
	b.WriteString("\n")
	if len(s.session.Transcript) == 0 {
		b.WriteString(PlaceholderStyle.Render("Ask for changes to your story."))
		b.WriteString(strings.Repeat("\n", max(s.transcript.Height-1, 0)))
	} else {
		b.WriteString(s.transcript.View())
	}
	b.WriteString("\n")
	if s.session.Chatting {
		b.WriteString(s.spinner.View() + " ")
	}
	b.WriteString("> " + s.chatInput.View())

	return GetBorderStyle(active).
		Width(s.transcript.Width + 2).
		Padding(0, 1).
		Render(b.String())
}

func (s *Studio) footerView() string {
	var lines []string
	if s.confirm.Active() {
		lines = append(lines, s.confirm.ViewWithWidth(s.width))
	} else if text, statusType, ok := s.status.GetStatus(); ok {
		lines = append(lines, renderStatus(text, statusType))
	}
	lines = append(lines, s.keys.help(s.session.Mode == session.ModeEditing))
	return ContentPaddingStyle.Render(strings.Join(lines, "\n"))
}

func fieldBadge(status fieldsync.Status, loading bool) string {
	if loading {
		return DescriptionStyle.Render("Loading...")
	}
	return saveBadge(status)
}

func styleTitle(id string) string {
	if i := models.ArtStyleIndex(id); i >= 0 {
		return models.ArtStyles[i].Title
	}
	if id == "" {
		return "No style"
	}
	return id
}

// renderEntry renders one transcript entry wrapped to width
func renderEntry(e session.Entry, width int) string {
	var prefix string
	style := AssistantMessageStyle
	switch e.Role {
	case session.RoleUser:
		prefix = "You: "
		style = UserMessageStyle
	case session.RoleError:
		prefix = "× "
		style = ErrorStyle
	}
	if e.Provisional {
		style = PlaceholderStyle
	}
	return style.Render(wordwrap.String(prefix+e.Text, width))
}
