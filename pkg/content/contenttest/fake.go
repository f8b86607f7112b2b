// Package contenttest provides an in-memory content.Service for tests.
package contenttest

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pluqqy/pluqqy-studio/pkg/content"
	"github.com/pluqqy/pluqqy-studio/pkg/models"
)

// Operation names, matching the ones the HTTP client reports in errors
const (
	OpCreateProject = "create project"
	OpGetProject    = "get project"
	OpGetTitle      = "get title"
	OpUpdateTitle   = "update title"
	OpGetPage       = "get page"
	OpUpdatePage    = "update page"
	OpAddPage       = "add page"
	OpDeletePage    = "delete page"
	OpGenerate      = "generate"
	OpChat          = "chat"
)

// Call records one invocation of the fake
type Call struct {
	Op        string
	ProjectID string
	Page      int
	Title     string
	Update    models.PageUpdate
	Content   models.PageContent
	Request   models.GenerationRequest
	Message   string
}

// Fake is a goroutine-safe in-memory content service
type Fake struct {
	mu       sync.Mutex
	projects map[string]*models.Project
	calls    []Call
	errs     map[string]error
	nextID   int

	// ChatReply is returned by Chat when set
	ChatReply *models.ChatReply
}

var _ content.Service = (*Fake)(nil)

func NewFake() *Fake {
	return &Fake{
		projects: make(map[string]*models.Project),
		errs:     make(map[string]error),
	}
}

// Seed stores a copy of p, replacing any project with the same ID
func (f *Fake) Seed(p models.Project) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := cloneProject(&p)
	f.projects[p.ID] = cp
}

// SeedPages stores a generated project with one page per script text
func (f *Fake) SeedPages(id, title string, texts ...string) {
	p := models.Project{ID: id, Title: title, Status: models.ProjectStatusDraft}
	for i, text := range texts {
		p.Pages = append(p.Pages, models.Page{
			ID:         fmt.Sprintf("%s-page-%d", id, i+1),
			ProjectID:  id,
			Number:     i + 1,
			ScriptText: text,
		})
	}
	if len(texts) > 0 {
		p.Status = models.ProjectStatusGenerated
	}
	f.Seed(p)
}

// FailOn makes every call of op fail with err until cleared with a nil err
func (f *Fake) FailOn(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.errs, op)
		return
	}
	f.errs[op] = err
}

// Calls returns the recorded calls of op, or every call when op is empty
func (f *Fake) Calls(op string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Call
	for _, c := range f.calls {
		if op == "" || c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Project returns a copy of the stored project
func (f *Fake) Project(id string) (models.Project, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok {
		return models.Project{}, false
	}
	return *cloneProject(p), true
}

func (f *Fake) record(c Call) error {
	f.calls = append(f.calls, c)
	return f.errs[c.Op]
}

func (f *Fake) project(op, id string) (*models.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, &content.APIError{StatusCode: http.StatusNotFound, Detail: "Project not found", Op: op}
	}
	return p, nil
}

func (f *Fake) page(op string, p *models.Project, n int) (*models.Page, error) {
	if n < 1 || n > len(p.Pages) {
		return nil, &content.APIError{StatusCode: http.StatusNotFound, Detail: "Page not found", Op: op}
	}
	return &p.Pages[n-1], nil
}

func (f *Fake) CreateProject(ctx context.Context, title, prompt string) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Op: OpCreateProject, Title: title, Message: prompt}); err != nil {
		return nil, err
	}
	f.nextID++
	if title == "" {
		title = "Untitled Story"
	}
	p := &models.Project{
		ID:        fmt.Sprintf("project-%d", f.nextID),
		Title:     title,
		Prompt:    prompt,
		Status:    models.ProjectStatusDraft,
		CreatedAt: time.Now().UTC(),
	}
	f.projects[p.ID] = p
	return cloneProject(p), nil
}

func (f *Fake) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Op: OpGetProject, ProjectID: projectID}); err != nil {
		return nil, err
	}
	p, err := f.project(OpGetProject, projectID)
	if err != nil {
		return nil, err
	}
	return cloneProject(p), nil
}

func (f *Fake) GetTitle(ctx context.Context, projectID string) (models.ProjectTitle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Op: OpGetTitle, ProjectID: projectID}); err != nil {
		return models.ProjectTitle{}, err
	}
	p, err := f.project(OpGetTitle, projectID)
	if err != nil {
		return models.ProjectTitle{}, err
	}
	return models.ProjectTitle{ID: p.ID, Title: p.Title}, nil
}

func (f *Fake) UpdateTitle(ctx context.Context, projectID, title string) (models.ProjectTitle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Op: OpUpdateTitle, ProjectID: projectID, Title: title}); err != nil {
		return models.ProjectTitle{}, err
	}
	p, err := f.project(OpUpdateTitle, projectID)
	if err != nil {
		return models.ProjectTitle{}, err
	}
	if strings.TrimSpace(title) == "" {
		return models.ProjectTitle{}, &content.APIError{StatusCode: http.StatusUnprocessableEntity, Detail: "Title must not be empty", Op: OpUpdateTitle}
	}
	p.Title = title
	return models.ProjectTitle{ID: p.ID, Title: p.Title}, nil
}

func (f *Fake) GetPage(ctx context.Context, projectID string, pageNumber int) (models.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Op: OpGetPage, ProjectID: projectID, Page: pageNumber}); err != nil {
		return models.Page{}, err
	}
	p, err := f.project(OpGetPage, projectID)
	if err != nil {
		return models.Page{}, err
	}
	page, err := f.page(OpGetPage, p, pageNumber)
	if err != nil {
		return models.Page{}, err
	}
	return clonePage(*page), nil
}

func (f *Fake) UpdatePage(ctx context.Context, projectID string, pageNumber int, update models.PageUpdate) (models.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Op: OpUpdatePage, ProjectID: projectID, Page: pageNumber, Update: update}); err != nil {
		return models.Page{}, err
	}
	p, err := f.project(OpUpdatePage, projectID)
	if err != nil {
		return models.Page{}, err
	}
	page, err := f.page(OpUpdatePage, p, pageNumber)
	if err != nil {
		return models.Page{}, err
	}
	if update.Empty() {
		return models.Page{}, &content.APIError{StatusCode: http.StatusBadRequest, Detail: "No fields to update", Op: OpUpdatePage}
	}
	update.Apply(page)
	return clonePage(*page), nil
}

func (f *Fake) AddPage(ctx context.Context, projectID string, pc models.PageContent) (models.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Op: OpAddPage, ProjectID: projectID, Content: pc}); err != nil {
		return models.Page{}, err
	}
	p, err := f.project(OpAddPage, projectID)
	if err != nil {
		return models.Page{}, err
	}
	f.nextID++
	page := models.Page{
		ID:                    fmt.Sprintf("page-%d", f.nextID),
		ProjectID:             projectID,
		Number:                len(p.Pages) + 1,
		ScriptText:            pc.ScriptText,
		ImagePrompt:           pc.ImagePrompt,
		ImageStyle:            pc.ImageStyle,
		CharacterIDs:          models.NormalizeCharacterIDs(pc.CharacterIDs),
		BackgroundDescription: pc.BackgroundDescription,
		CreatedAt:             time.Now().UTC(),
	}
	p.Pages = append(p.Pages, page)
	return clonePage(page), nil
}

func (f *Fake) DeletePage(ctx context.Context, projectID string, pageNumber int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Op: OpDeletePage, ProjectID: projectID, Page: pageNumber}); err != nil {
		return err
	}
	p, err := f.project(OpDeletePage, projectID)
	if err != nil {
		return err
	}
	if _, err := f.page(OpDeletePage, p, pageNumber); err != nil {
		return err
	}
	p.Pages = append(p.Pages[:pageNumber-1], p.Pages[pageNumber:]...)
	for i := range p.Pages {
		p.Pages[i].Number = i + 1
	}
	return nil
}

func (f *Fake) Generate(ctx context.Context, projectID string, req models.GenerationRequest) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Op: OpGenerate, ProjectID: projectID, Request: req}); err != nil {
		return nil, err
	}
	p, err := f.project(OpGenerate, projectID)
	if err != nil {
		return nil, err
	}
	ids := models.NormalizeCharacterIDs(req.CharacterIDs)
	p.Pages = nil
	for i := 1; i <= 3; i++ {
		p.Pages = append(p.Pages, models.Page{
			ID:           fmt.Sprintf("%s-page-%d", projectID, i),
			ProjectID:    projectID,
			Number:       i,
			ScriptText:   fmt.Sprintf("Page %d of %s", i, req.Concept),
			ImageStyle:   req.Style,
			CharacterIDs: ids,
		})
	}
	p.Status = models.ProjectStatusGenerated
	return cloneProject(p), nil
}

func (f *Fake) Chat(ctx context.Context, projectID, message string) (models.ChatReply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Op: OpChat, ProjectID: projectID, Message: message}); err != nil {
		return models.ChatReply{}, err
	}
	if _, err := f.project(OpChat, projectID); err != nil {
		return models.ChatReply{}, err
	}
	if f.ChatReply != nil {
		return *f.ChatReply, nil
	}
	return models.ChatReply{AssistantMessage: "You said: " + message, Action: models.ChatActionQuestion}, nil
}

func clonePage(p models.Page) models.Page {
	p.CharacterIDs = append([]string(nil), p.CharacterIDs...)
	return p
}

func cloneProject(p *models.Project) *models.Project {
	cp := *p
	cp.Pages = make([]models.Page, len(p.Pages))
	for i, page := range p.Pages {
		cp.Pages[i] = clonePage(page)
	}
	return &cp
}
