package fieldsync

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pluqqy/pluqqy-studio/pkg/content"
	"github.com/pluqqy/pluqqy-studio/pkg/models"
)

// syncer is the type-erased view of a controller the registry needs
type syncer interface {
	ID() int
	Key() Key
	Name() string
	Update(msg tea.Msg) tea.Cmd
	FlushNow() tea.Cmd
	Pending() bool
	Busy() bool
	Dirty() bool
	Status() Status
	Err() error
}

// Registry owns the controllers of the active project and page.
//
// A key never has two controllers with work outstanding. Moving away from a
// key flushes its controllers and keeps them until their writes complete.
// Moving back while they are still finishing brings the same controllers
// back, so the loads and writes of a key stay in one sequence. Idle
// controllers are replaced, since page numbers may now name other pages.
type Registry struct {
	svc  content.Service
	opts []Option

	projectID string
	page      int

	Title  *Controller[string]
	Text   *Controller[string]
	Fields *Controller[models.PageFields]

	retiring      []syncer
	backgroundErr error
}

// NewRegistry creates a registry with unkeyed controllers
func NewRegistry(svc content.Service, opts ...Option) *Registry {
	r := &Registry{svc: svc, opts: opts}
	r.Title = New(Key{}, TitleBinding(svc), opts...)
	r.Text = New(Key{}, TextBinding(svc), opts...)
	r.Fields = New(Key{}, FieldsBinding(svc), opts...)
	return r
}

func (r *Registry) ProjectID() string { return r.projectID }
func (r *Registry) Page() int         { return r.page }

// PageKey is the key of the active page controllers
func (r *Registry) PageKey() Key {
	return Key{ProjectID: r.projectID, Page: r.page}
}

// SetProject re-keys every controller to projectID and page
func (r *Registry) SetProject(projectID string, page int) tea.Cmd {
	if projectID == r.projectID && page == r.page {
		return nil
	}
	r.projectID = projectID
	r.page = page

	var titleCmd tea.Cmd
	r.Title, titleCmd = rekey(r, r.Title, Key{ProjectID: projectID}, TitleBinding(r.svc))
	return tea.Batch(titleCmd, r.rekeyPage())
}

// SetPage re-keys the page controllers. The title controller is untouched.
func (r *Registry) SetPage(page int) tea.Cmd {
	if page == r.page {
		return nil
	}
	r.page = page
	return r.rekeyPage()
}

// Reload loads the page controllers for page again, typically after pages
// were added or removed or the service edited the page. Callers should wait
// for Idle first so no write targets a page number that has shifted.
// Unsaved edits survive the reload.
func (r *Registry) Reload(page int) tea.Cmd {
	r.page = page
	return r.rekeyPage()
}

func (r *Registry) rekeyPage() tea.Cmd {
	key := r.PageKey()
	var textCmd, fieldsCmd tea.Cmd
	r.Text, textCmd = rekey(r, r.Text, key, TextBinding(r.svc))
	r.Fields, fieldsCmd = rekey(r, r.Fields, key, FieldsBinding(r.svc))
	return tea.Batch(textCmd, fieldsCmd)
}

// rekey returns the controller for binding at key and the command loading it.
// A busy controller for key, current or retiring, is kept and reloaded.
// Otherwise the current controller is retired and a new one created.
func rekey[V any](r *Registry, current *Controller[V], key Key, binding Binding[V]) (*Controller[V], tea.Cmd) {
	if current.Key() == key && current.Busy() {
		return current, current.Load()
	}

	retireCmd := r.retire(current)
	next := revive[V](r, key, binding.Name)
	if next == nil {
		next = New(key, binding, r.opts...)
	}
	return next, tea.Batch(retireCmd, next.Load())
}

// revive removes and returns a busy retiring controller for key and name
func revive[V any](r *Registry, key Key, name string) *Controller[V] {
	for i, s := range r.retiring {
		c, ok := s.(*Controller[V])
		if ok && c.Key() == key && c.Name() == name && c.Busy() {
			r.retiring = append(r.retiring[:i], r.retiring[i+1:]...)
			return c
		}
	}
	return nil
}

func (r *Registry) retire(s syncer) tea.Cmd {
	var cmd tea.Cmd
	if s.Pending() {
		cmd = s.FlushNow()
	}
	if s.Busy() {
		r.retiring = append(r.retiring, s)
	}
	return cmd
}

// Update routes msg to the active and retiring controllers
func (r *Registry) Update(msg tea.Msg) tea.Cmd {
	cmds := []tea.Cmd{
		r.Title.Update(msg),
		r.Text.Update(msg),
		r.Fields.Update(msg),
	}

	kept := r.retiring[:0]
	for _, s := range r.retiring {
		cmds = append(cmds, s.Update(msg))
		if s.Busy() {
			kept = append(kept, s)
			continue
		}
		if err := s.Err(); err != nil {
			r.backgroundErr = err
		}
	}
	r.retiring = kept

	return tea.Batch(cmds...)
}

// FlushAll forces every pending write of the active controllers
func (r *Registry) FlushAll() tea.Cmd {
	var cmds []tea.Cmd
	for _, s := range r.active() {
		if s.Pending() {
			cmds = append(cmds, s.FlushNow())
		}
	}
	return tea.Batch(cmds...)
}

// Idle reports whether no controller has pending or in-flight work
func (r *Registry) Idle() bool {
	for _, s := range r.active() {
		if s.Busy() {
			return false
		}
	}
	return len(r.retiring) == 0
}

// Unsaved reports whether an active field holds an edit its last write failed to store
func (r *Registry) Unsaved() bool {
	for _, s := range r.active() {
		if s.Status() == StatusError && s.Dirty() {
			return true
		}
	}
	return false
}

// Retiring returns how many previous-key controllers are still finishing
func (r *Registry) Retiring() int {
	return len(r.retiring)
}

// BackgroundErr returns and clears the last error reported by a retired
// controller. Those errors would otherwise be invisible because the field is
// no longer on screen.
func (r *Registry) BackgroundErr() error {
	err := r.backgroundErr
	r.backgroundErr = nil
	return err
}

func (r *Registry) active() []syncer {
	return []syncer{r.Title, r.Text, r.Fields}
}
