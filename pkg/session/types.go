package session

import "fmt"

// Mode decides which surface governs the screen
type Mode int

const (
	ModeConfiguring Mode = iota
	ModeEditing
)

func (m Mode) String() string {
	switch m {
	case ModeConfiguring:
		return "configuring"
	case ModeEditing:
		return "editing"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// EntryChannel is how the user arrived at the studio
type EntryChannel int

const (
	// EntryPrompt starts from a typed story prompt
	EntryPrompt EntryChannel = iota
	// EntryBlank starts from an empty new project
	EntryBlank
	// EntryExisting opens a project created earlier
	EntryExisting
)

func (e EntryChannel) String() string {
	switch e {
	case EntryPrompt:
		return "prompt"
	case EntryBlank:
		return "blank"
	case EntryExisting:
		return "existing"
	}
	return fmt.Sprintf("entry(%d)", int(e))
}

// Section is a first-time configuration area
type Section int

const (
	SectionNone Section = iota
	SectionConcept
	SectionCharacters
	SectionArtStyle
)

var sectionNames = map[Section]string{
	SectionNone:       "none",
	SectionConcept:    "concept",
	SectionCharacters: "characters",
	SectionArtStyle:   "art style",
}

func (s Section) String() string {
	if name, ok := sectionNames[s]; ok {
		return name
	}
	return fmt.Sprintf("section(%d)", int(s))
}

// Sections lists the configuration areas in display order
var Sections = []Section{SectionConcept, SectionCharacters, SectionArtStyle}

// Role identifies who produced a transcript entry
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleError     Role = "error"
)

// Entry is one line of the conversation transcript. Provisional entries
// stand in for a reply that has not arrived yet.
type Entry struct {
	Role        Role
	Text        string
	Provisional bool
}

// Config is the first-time generation setup of a project
type Config struct {
	Concept      string
	CharacterIDs []string
	Style        string
}
