package contentserver

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/pluqqy/pluqqy-studio/pkg/models"
)

// DraftTitle derives a title from the first words of a concept
func DraftTitle(concept string) string {
	words := strings.Fields(concept)
	if len(words) == 0 {
		return ""
	}
	if len(words) > 6 {
		words = words[:6]
	}
	for i, w := range words {
		w = strings.TrimFunc(w, func(r rune) bool { return unicode.IsPunct(r) })
		if w == "" {
			continue
		}
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

var arc = []struct {
	text       string
	background string
}{
	{"Once upon a time, %s.", "a quiet morning where the story begins"},
	{"One day something unexpected happened: %s could not stay the same.", "the place where the trouble starts"},
	{"Together they set out on an adventure, because %s.", "a winding path full of surprises"},
	{"In the end everyone learned something new, and %s became a happy memory.", "a warm evening as the story ends"},
}

// DraftPages turns a generation request into a short four-part story. The
// output depends only on the request so tests and demos are reproducible.
func DraftPages(req models.GenerationRequest) []models.PageContent {
	concept := strings.TrimRight(strings.TrimSpace(req.Concept), ".!? ")
	if concept == "" {
		concept = "a small adventure"
	}
	style := req.Style
	styleTitle := "Storybook"
	if i := models.ArtStyleIndex(style); i >= 0 {
		styleTitle = models.ArtStyles[i].Title
	} else {
		style = models.ArtStyles[0].ID
		styleTitle = models.ArtStyles[0].Title
	}
	ids := models.NormalizeCharacterIDs(req.CharacterIDs)
	cast := "the heroes"
	if len(ids) > 0 {
		cast = models.FormatCharacterIDs(ids)
	}

	pages := make([]models.PageContent, 0, len(arc))
	for _, beat := range arc {
		pages = append(pages, models.PageContent{
			ScriptText:            fmt.Sprintf(beat.text, lowerFirst(concept)),
			ImagePrompt:           fmt.Sprintf("%s illustration of %s in %s", styleTitle, cast, beat.background),
			ImageStyle:            style,
			CharacterIDs:          ids,
			BackgroundDescription: beat.background,
		})
	}
	return pages
}

func lowerFirst(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	if len(runes) > 1 && unicode.IsUpper(runes[0]) && unicode.IsUpper(runes[1]) {
		return s
	}
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

var (
	editVerbs = []string{"change", "make", "rewrite", "replace", "add", "remove", "rename", "shorten", "update"}
	pageRef   = regexp.MustCompile(`(?i)\bpage\s+(\d+)\b`)
)

// ClassifyChat decides whether a chat message asks for an edit or a question
func ClassifyChat(message string) string {
	first := strings.ToLower(strings.Trim(strings.SplitN(strings.TrimSpace(message), " ", 2)[0], ",.!?"))
	for _, verb := range editVerbs {
		if first == verb || first == "please" && strings.Contains(strings.ToLower(message), verb) {
			return models.ChatActionEdit
		}
	}
	return models.ChatActionQuestion
}

// EditTarget returns the page number an edit request refers to, or 0
func EditTarget(message string) int {
	m := pageRef.FindStringSubmatch(message)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}
