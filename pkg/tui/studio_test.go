package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pluqqy/pluqqy-studio/pkg/content/contenttest"
	"github.com/pluqqy/pluqqy-studio/pkg/fieldsync"
	"github.com/pluqqy/pluqqy-studio/pkg/models"
	"github.com/pluqqy/pluqqy-studio/pkg/session"
)

func existing(id string) session.Options {
	return session.Options{ProjectID: id, Entry: session.EntryExisting}
}

func pageTexts(t *testing.T, fake *contenttest.Fake, id string) []string {
	t.Helper()
	p, ok := fake.Project(id)
	require.True(t, ok)
	var out []string
	for _, page := range p.Pages {
		out = append(out, page.ScriptText)
	}
	return out
}

func TestStudio_OpensExistingProject(t *testing.T) {
	fake := contenttest.NewFake()
	fake.SeedPages("p1", "Moon", "one", "two")

	h := startStudio(t, fake, existing("p1"))
	s := h.studio

	assert.Equal(t, session.ModeEditing, s.session.Mode)
	assert.Equal(t, fieldsync.Key{ProjectID: "p1", Page: 1}, s.registry.PageKey())
	assert.Equal(t, "Moon", s.titleInput.Value())
	assert.Equal(t, "one", s.textArea.Value())
	assert.Equal(t, focusText, s.focus)
	assert.Contains(t, s.View(), "Page 1 of 2")
}

func TestStudio_TypingSavesAfterQuietPeriod(t *testing.T) {
	fake := contenttest.NewFake()
	fake.SeedPages("p1", "Moon", "one")
	h := startStudio(t, fake, existing("p1"))

	h.typeText("!?")
	assert.Equal(t, "one!?", h.studio.textArea.Value())
	assert.Empty(t, fake.Calls(contenttest.OpUpdatePage), "nothing is written while typing")

	h.fireTimers()
	calls := fake.Calls(contenttest.OpUpdatePage)
	require.Len(t, calls, 1, "a burst of keystrokes is one write")
	require.NotNil(t, calls[0].Update.ScriptText)
	assert.Equal(t, "one!?", *calls[0].Update.ScriptText)
	assert.Nil(t, calls[0].Update.ImagePrompt, "text writes leave page content alone")
	assert.Equal(t, fieldsync.StatusSaved, h.studio.registry.Text.Status())
	assert.Equal(t, []string{"one!?"}, pageTexts(t, fake, "p1"))
}

func TestStudio_PageSwitchWritesToThePreviousPage(t *testing.T) {
	fake := contenttest.NewFake()
	fake.SeedPages("p1", "Moon", "one", "two")
	h := startStudio(t, fake, existing("p1"))

	h.typeText("x")
	h.press(tea.KeyPgDown)

	assert.Equal(t, []string{"onex", "two"}, pageTexts(t, fake, "p1"))
	assert.Equal(t, "two", h.studio.textArea.Value())
	assert.Equal(t, 2, h.studio.registry.Page())

	// The old page's debounce timer must not write anything when it fires
	h.fireTimers()
	assert.Len(t, fake.Calls(contenttest.OpUpdatePage), 1)
}

func TestStudio_EditPageContent(t *testing.T) {
	fake := contenttest.NewFake()
	fake.SeedPages("p1", "Moon", "one")
	h := startStudio(t, fake, existing("p1"))

	h.studio.setFocus(focusImagePrompt)
	h.typeText("moon")
	h.studio.setFocus(focusPageCharacters)
	h.typeText("fox,owl")
	h.fireTimers()

	p, _ := fake.Project("p1")
	assert.Equal(t, "moon", p.Pages[0].ImagePrompt)
	assert.Equal(t, []string{"fox", "owl"}, p.Pages[0].CharacterIDs)
	assert.Equal(t, "one", p.Pages[0].ScriptText, "page content writes leave the text alone")

	h.studio.setFocus(focusPageStyle)
	h.press(tea.KeyRight)
	h.fireTimers()
	p, _ = fake.Project("p1")
	assert.Equal(t, models.ArtStyles[0].ID, p.Pages[0].ImageStyle, "an unset style starts at the first entry")
}

func TestStudio_DeleteFlushesThenRenumbers(t *testing.T) {
	fake := contenttest.NewFake()
	fake.SeedPages("p1", "Moon", "one", "two", "three")
	h := startStudio(t, fake, existing("p1"))

	h.press(tea.KeyPgDown)
	h.typeText("!")
	h.press(tea.KeyCtrlD)
	require.True(t, h.studio.confirm.Active())
	assert.Empty(t, fake.Calls(contenttest.OpDeletePage), "nothing happens before confirmation")

	h.typeText("y")

	var ops []string
	for _, c := range fake.Calls("") {
		if c.Op == contenttest.OpUpdatePage || c.Op == contenttest.OpDeletePage {
			ops = append(ops, c.Op)
		}
	}
	assert.Equal(t, []string{contenttest.OpUpdatePage, contenttest.OpDeletePage}, ops, "pending edits land before the numbering changes")
	assert.Equal(t, []string{"one", "three"}, pageTexts(t, fake, "p1"))

	s := h.studio
	assert.Equal(t, 2, s.session.PageNumber(), "the view stays on the same position")
	assert.Equal(t, fieldsync.Key{ProjectID: "p1", Page: 2}, s.registry.PageKey())
	assert.Equal(t, "three", s.textArea.Value())
	assert.False(t, s.Blocked())
}

func TestStudio_DeleteCancelled(t *testing.T) {
	fake := contenttest.NewFake()
	fake.SeedPages("p1", "Moon", "one", "two")
	h := startStudio(t, fake, existing("p1"))

	h.press(tea.KeyCtrlD)
	h.press(tea.KeyEsc)

	assert.False(t, h.studio.confirm.Active())
	assert.Empty(t, fake.Calls(contenttest.OpDeletePage))
	assert.False(t, h.quitSeen(), "esc only closes the prompt")
}


func TestStudio_DeleteDialogNamesTheRenumbering(t *testing.T) {
	fake := contenttest.NewFake()
	fake.SeedPages("p1", "Moon", "one", "two", "three")
	h := startStudio(t, fake, existing("p1"))
	h.studio.SetSize(120, 40)

	h.press(tea.KeyPgDown)
	h.press(tea.KeyCtrlD)
	view := h.studio.View()
	assert.Contains(t, view, "Page 2 of 3 will be removed")
	assert.Contains(t, view, "Pages after 2 move up by one")
	h.press(tea.KeyEsc)

	h.press(tea.KeyPgDown)
	h.press(tea.KeyCtrlD)
	view = h.studio.View()
	assert.Contains(t, view, "Page 3 of 3 will be removed")
	assert.NotContains(t, view, "move up", "the last page has nothing after it")
}
func TestStudio_AddPageShowsTheNewPage(t *testing.T) {
	fake := contenttest.NewFake()
	fake.SeedPages("p1", "Moon", "one")
	h := startStudio(t, fake, existing("p1"))

	h.press(tea.KeyCtrlA)

	require.Len(t, fake.Calls(contenttest.OpAddPage), 1)
	s := h.studio
	assert.Equal(t, 2, s.session.PageCount())
	assert.Equal(t, 2, s.session.PageNumber())
	assert.Equal(t, fieldsync.Key{ProjectID: "p1", Page: 2}, s.registry.PageKey())
	text, _, ok := s.status.GetStatus()
	require.True(t, ok)
	assert.Contains(t, text, "Added page 2")
}

func TestStudio_StructuralFailureIsReported(t *testing.T) {
	fake := contenttest.NewFake()
	fake.SeedPages("p1", "Moon", "one")
	fake.FailOn(contenttest.OpAddPage, errors.New("boom"))
	h := startStudio(t, fake, existing("p1"))

	h.press(tea.KeyCtrlA)

	text, statusType, ok := h.studio.status.GetStatus()
	require.True(t, ok)
	assert.Equal(t, StatusTypeError, statusType)
	assert.Contains(t, text, "failed to add page")
	assert.Equal(t, 1, h.studio.session.PageCount())
}

func TestStudio_GenerateFromPrompt(t *testing.T) {
	fake := contenttest.NewFake()
	fake.Seed(models.Project{ID: "p1", Title: "Untitled Story", Status: models.ProjectStatusDraft})
	h := startStudio(t, fake, session.Options{ProjectID: "p1", Entry: session.EntryPrompt, Prompt: "a fox"})
	s := h.studio

	assert.Equal(t, session.ModeConfiguring, s.session.Mode)
	assert.Equal(t, focusCharacters, s.focus, "a prompt entry asks for characters next")
	assert.Equal(t, "a fox", s.conceptInput.Value())

	h.typeText("owl")
	h.press(tea.KeyCtrlG)

	calls := fake.Calls(contenttest.OpGenerate)
	require.Len(t, calls, 1)
	assert.Equal(t, "a fox", calls[0].Request.Concept)
	assert.Equal(t, []string{"owl"}, calls[0].Request.CharacterIDs)
	assert.Equal(t, models.ArtStyles[0].ID, calls[0].Request.Style)

	assert.Equal(t, session.ModeEditing, s.session.Mode)
	assert.True(t, s.session.ChatVisible)
	assert.Equal(t, 3, s.session.PageCount())
	assert.Equal(t, "Page 1 of a fox", s.textArea.Value())
	require.NotEmpty(t, s.session.Transcript)
	assert.Contains(t, s.session.Transcript[len(s.session.Transcript)-1].Text, "3 pages")
}

func TestStudio_GenerateNeedsAConcept(t *testing.T) {
	fake := contenttest.NewFake()
	fake.Seed(models.Project{ID: "p1", Title: "Untitled Story", Status: models.ProjectStatusDraft})
	h := startStudio(t, fake, session.Options{ProjectID: "p1", Entry: session.EntryBlank})

	h.studio.setFocus(focusStyle)
	h.press(tea.KeyCtrlG)

	assert.Empty(t, fake.Calls(contenttest.OpGenerate))
	assert.Equal(t, focusConcept, h.studio.focus)
	assert.Equal(t, session.ModeConfiguring, h.studio.session.Mode)
}

func TestStudio_StyleCycling(t *testing.T) {
	fake := contenttest.NewFake()
	fake.Seed(models.Project{ID: "p1", Title: "Untitled Story", Status: models.ProjectStatusDraft})
	h := startStudio(t, fake, session.Options{ProjectID: "p1", Entry: session.EntryBlank})

	h.studio.setFocus(focusStyle)
	h.press(tea.KeyLeft)
	assert.Equal(t, models.ArtStyles[len(models.ArtStyles)-1].ID, h.studio.session.Config.Style)
	h.press(tea.KeyRight)
	assert.Equal(t, models.ArtStyles[0].ID, h.studio.session.Config.Style)
}

func TestStudio_ChatEditReloadsThePage(t *testing.T) {
	fake := contenttest.NewFake()
	fake.SeedPages("p1", "Moon", "one")
	h := startStudio(t, fake, existing("p1"))

	_, err := fake.UpdatePage(context.Background(), "p1", 1, models.PageUpdate{ScriptText: models.StringPtr("edited by the assistant")})
	require.NoError(t, err)
	fake.ChatReply = &models.ChatReply{AssistantMessage: "Done", Action: models.ChatActionEdit}

	h.studio.setFocus(focusChat)
	h.typeText("shorter")
	h.press(tea.KeyEnter)

	require.Len(t, fake.Calls(contenttest.OpChat), 1)
	assert.Equal(t, "shorter", fake.Calls(contenttest.OpChat)[0].Message)
	assert.Empty(t, h.studio.chatInput.Value())
	assert.Equal(t, "edited by the assistant", h.studio.textArea.Value())

	transcript := h.studio.session.Transcript
	require.Len(t, transcript, 2)
	assert.Equal(t, session.RoleUser, transcript[0].Role)
	assert.Equal(t, "Done", transcript[1].Text)
}

func TestStudio_CopyPageText(t *testing.T) {
	fake := contenttest.NewFake()
	fake.SeedPages("p1", "Moon", "one")
	h := startStudio(t, fake, existing("p1"))

	h.press(tea.KeyCtrlY)
	assert.Equal(t, []string{"one"}, h.copied)

	h.studio.copyText = func(string) error { return errors.New("no clipboard") }
	h.press(tea.KeyCtrlY)
	text, statusType, _ := h.studio.status.GetStatus()
	assert.Equal(t, StatusTypeError, statusType)
	assert.Contains(t, text, "no clipboard")
}

func TestStudio_QuitSavesFirst(t *testing.T) {
	fake := contenttest.NewFake()
	fake.SeedPages("p1", "Moon", "one")
	h := startStudio(t, fake, existing("p1"))

	h.typeText("!")
	h.press(tea.KeyEsc)

	assert.True(t, h.quitSeen())
	assert.Equal(t, []string{"one!"}, pageTexts(t, fake, "p1"))
}


func TestStudio_QuitAsksWhenASaveFailed(t *testing.T) {
	fake := contenttest.NewFake()
	fake.SeedPages("p1", "Moon", "one")
	fake.FailOn(contenttest.OpUpdatePage, errors.New("offline"))
	h := startStudio(t, fake, existing("p1"))
	h.studio.SetSize(120, 40)

	h.typeText("!")
	h.press(tea.KeyEsc)
	require.True(t, h.studio.confirm.Active())
	assert.False(t, h.quitSeen())
	assert.Contains(t, h.studio.View(), "Quit anyway?")

	h.typeText("n")
	assert.False(t, h.quitSeen())
	assert.Equal(t, "one!", h.studio.textArea.Value(), "the edit stays on screen")

	h.press(tea.KeyEsc)
	h.typeText("y")
	assert.True(t, h.quitSeen())
}
func TestStudio_RetiredWriteFailureIsShown(t *testing.T) {
	fake := contenttest.NewFake()
	fake.SeedPages("p1", "Moon", "one", "two")
	h := startStudio(t, fake, existing("p1"))

	fake.FailOn(contenttest.OpUpdatePage, errors.New("offline"))
	h.typeText("x")
	h.press(tea.KeyPgDown)

	text, statusType, ok := h.studio.status.GetStatus()
	require.True(t, ok)
	assert.Equal(t, StatusTypeError, statusType)
	assert.Contains(t, text, "An earlier edit was not saved")
	assert.Equal(t, 0, h.studio.registry.Retiring())
}

func TestStudio_LoadFailure(t *testing.T) {
	h := startStudio(t, contenttest.NewFake(), existing("missing"))

	require.Error(t, h.studio.session.LoadErr)
	assert.Contains(t, h.studio.View(), "failed to load project")
	assert.Equal(t, fieldsync.Key{}, h.studio.registry.PageKey(), "no controller is keyed to a project that did not load")
}

func TestStudio_FocusSkipsHiddenChat(t *testing.T) {
	fake := contenttest.NewFake()
	fake.SeedPages("p1", "Moon", "one")
	h := startStudio(t, fake, existing("p1"))

	h.studio.setFocus(focusChat)
	h.press(tea.KeyCtrlT)
	assert.False(t, h.studio.session.ChatVisible)
	assert.Equal(t, focusText, h.studio.focus)

	h.studio.setFocus(focusPageStyle)
	h.press(tea.KeyTab)
	assert.Equal(t, focusTitle, h.studio.focus)
}

func TestStudio_TitleEdit(t *testing.T) {
	fake := contenttest.NewFake()
	fake.SeedPages("p1", "Moon", "one")
	h := startStudio(t, fake, existing("p1"))

	h.studio.setFocus(focusTitle)
	h.typeText("lit")
	h.fireTimers()

	calls := fake.Calls(contenttest.OpUpdateTitle)
	require.Len(t, calls, 1)
	assert.Equal(t, "Moonlit", calls[0].Title)
	p, _ := fake.Project("p1")
	assert.Equal(t, "Moonlit", p.Title)
}
