package models

import "time"

// Project lifecycle states as reported by the content service
const (
	ProjectStatusDraft     = "draft"
	ProjectStatusGenerated = "generated"
)

// Project is a storybook: a title plus an ordered, densely numbered list of pages
type Project struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Status    string    `json:"status" yaml:"status"`
	Prompt    string    `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	Pages     []Page    `json:"pages" yaml:"pages"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// Generated reports whether the project has been through generation.
// Projects that already hold pages count as generated whatever their status says.
func (p *Project) Generated() bool {
	if p == nil {
		return false
	}
	return p.Status == ProjectStatusGenerated || len(p.Pages) > 0
}

// PageCount returns the number of pages
func (p *Project) PageCount() int {
	if p == nil {
		return 0
	}
	return len(p.Pages)
}

// Page is one page of a project. Number is 1-based and is the addressing key
// for every page operation.
type Page struct {
	ID                    string    `json:"id" yaml:"id"`
	ProjectID             string    `json:"project_id" yaml:"project_id"`
	Number                int       `json:"page_number" yaml:"page_number"`
	ScriptText            string    `json:"script_text" yaml:"script_text"`
	ImagePrompt           string    `json:"image_prompt" yaml:"image_prompt"`
	ImageStyle            string    `json:"image_style" yaml:"image_style"`
	CharacterIDs          []string  `json:"character_ids" yaml:"character_ids"`
	BackgroundDescription string    `json:"background_description" yaml:"background_description"`
	CreatedAt             time.Time `json:"created_at" yaml:"created_at"`
}

// Fields returns the structured (non-text) content of the page
func (p Page) Fields() PageFields {
	return PageFields{
		ImagePrompt:           p.ImagePrompt,
		ImageStyle:            p.ImageStyle,
		CharacterIDs:          append([]string(nil), p.CharacterIDs...),
		BackgroundDescription: p.BackgroundDescription,
	}
}

// PageFields is the generation metadata of a page, edited as one value
type PageFields struct {
	ImagePrompt           string
	ImageStyle            string
	CharacterIDs          []string
	BackgroundDescription string
}

// Equal compares two field sets, treating nil and empty character lists alike
func (f PageFields) Equal(other PageFields) bool {
	if f.ImagePrompt != other.ImagePrompt ||
		f.ImageStyle != other.ImageStyle ||
		f.BackgroundDescription != other.BackgroundDescription ||
		len(f.CharacterIDs) != len(other.CharacterIDs) {
		return false
	}
	for i := range f.CharacterIDs {
		if f.CharacterIDs[i] != other.CharacterIDs[i] {
			return false
		}
	}
	return true
}

// Update converts the fields into a partial update that leaves the script text alone
func (f PageFields) Update() PageUpdate {
	ids := NormalizeCharacterIDs(f.CharacterIDs)
	return PageUpdate{
		ImagePrompt:           StringPtr(f.ImagePrompt),
		ImageStyle:            StringPtr(f.ImageStyle),
		CharacterIDs:          &ids,
		BackgroundDescription: StringPtr(f.BackgroundDescription),
	}
}

// PageUpdate is a partial page update. Nil fields are left untouched by the server.
type PageUpdate struct {
	ScriptText            *string   `json:"script_text,omitempty"`
	ImagePrompt           *string   `json:"image_prompt,omitempty"`
	ImageStyle            *string   `json:"image_style,omitempty"`
	CharacterIDs          *[]string `json:"character_ids,omitempty"`
	BackgroundDescription *string   `json:"background_description,omitempty"`
}

// Empty reports whether the update touches no field
func (u PageUpdate) Empty() bool {
	return u.ScriptText == nil &&
		u.ImagePrompt == nil &&
		u.ImageStyle == nil &&
		u.CharacterIDs == nil &&
		u.BackgroundDescription == nil
}

// Apply merges the update into a page
func (u PageUpdate) Apply(p *Page) {
	if u.ScriptText != nil {
		p.ScriptText = *u.ScriptText
	}
	if u.ImagePrompt != nil {
		p.ImagePrompt = *u.ImagePrompt
	}
	if u.ImageStyle != nil {
		p.ImageStyle = *u.ImageStyle
	}
	if u.CharacterIDs != nil {
		p.CharacterIDs = NormalizeCharacterIDs(*u.CharacterIDs)
	}
	if u.BackgroundDescription != nil {
		p.BackgroundDescription = *u.BackgroundDescription
	}
}

// PageContent is the caller-supplied content of a new page
type PageContent struct {
	ScriptText            string   `json:"script_text,omitempty"`
	ImagePrompt           string   `json:"image_prompt,omitempty"`
	ImageStyle            string   `json:"image_style,omitempty"`
	CharacterIDs          []string `json:"character_ids,omitempty"`
	BackgroundDescription string   `json:"background_description,omitempty"`
}

// ProjectTitle is the title resource of a project
type ProjectTitle struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// GenerationRequest carries the first-time configuration of a project
type GenerationRequest struct {
	Concept      string   `json:"concept"`
	CharacterIDs []string `json:"character_ids"`
	Style        string   `json:"style,omitempty"`
}

// Chat actions reported by the content service
const (
	ChatActionQuestion = "question"
	ChatActionEdit     = "edit"
)

// ChatReply is the service's answer to a studio chat message
type ChatReply struct {
	AssistantMessage string `json:"assistant_message"`
	Action           string `json:"action"`
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}
