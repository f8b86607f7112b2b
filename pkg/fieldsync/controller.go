// Package fieldsync keeps remote-backed fields responsive to local edits.
//
// A Controller owns one field: the value shown to the user, the last value
// the content service confirmed, and a save status. Edits are echoed locally
// at once and written after a quiet period. Controllers are driven from a
// bubbletea Update loop and are not safe for concurrent use.
package fieldsync

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
)

// Binding describes how a field is read and written
type Binding[V any] struct {
	Name string
	Get  func(ctx context.Context, key Key) (V, error)
	// Put writes value and returns the value the service echoed back
	Put func(ctx context.Context, key Key, value V) (V, error)
	// Ready reports whether key is complete enough to address the field
	Ready func(key Key) bool
	Equal func(a, b V) bool
}

var lastID int64

func nextID() int {
	return int(atomic.AddInt64(&lastID, 1))
}

type debounceMsg struct {
	id  int
	tag int
}

type decayMsg struct {
	id  int
	tag int
}

type loadedMsg[V any] struct {
	id    int
	seq   int
	value V
	err   error
}

type savedMsg[V any] struct {
	id    int
	seq   int
	value V
	err   error
}

// Controller synchronizes one field with the content service
type Controller[V any] struct {
	id       int
	key      Key
	binding  Binding[V]
	timing   Timing
	schedule Scheduler

	value       V
	remoteValue V
	status      Status
	lastErr     error

	loading         bool
	loaded          bool
	loadSeq         int
	editedSinceLoad bool
	// loadWriteSeq and loadWriting record the write state when the latest load was
	// issued. A load that overlaps a write may read the server before it.
	loadWriteSeq int
	loadWriting  bool

	// debounceTag identifies the only debounce tick still allowed to fire
	debounceTag int
	pending     bool
	decayTag    int

	// seq is the sequence number of the latest issued write
	seq              int
	inFlight         bool
	queued           bool
	editedSinceFlush bool
}

// New creates a controller for the field described by binding at key
func New[V any](key Key, binding Binding[V], opts ...Option) *Controller[V] {
	o := buildOptions(opts)
	if binding.Equal == nil {
		binding.Equal = func(a, b V) bool { return reflect.DeepEqual(a, b) }
	}
	return &Controller[V]{
		id:       nextID(),
		key:      key,
		binding:  binding,
		timing:   o.timing,
		schedule: o.schedule,
	}
}

func (c *Controller[V]) ID() int { return c.id }
func (c *Controller[V]) Key() Key { return c.key }
func (c *Controller[V]) Name() string { return c.binding.Name }
func (c *Controller[V]) Value() V { return c.value }
func (c *Controller[V]) RemoteValue() V { return c.remoteValue }
func (c *Controller[V]) Status() Status { return c.status }
func (c *Controller[V]) Err() error { return c.lastErr }
func (c *Controller[V]) Loading() bool { return c.loading }
func (c *Controller[V]) Loaded() bool { return c.loaded }
func (c *Controller[V]) Pending() bool { return c.pending }
func (c *Controller[V]) InFlight() bool { return c.inFlight }
func (c *Controller[V]) Dirty() bool { return !c.binding.Equal(c.value, c.remoteValue) }
func (c *Controller[V]) Busy() bool { return c.pending || c.inFlight || c.queued }
func (c *Controller[V]) ready() bool { return c.binding.Ready == nil || c.binding.Ready(c.key) }

// Load fetches the remote value. It does nothing until the key is ready.
// Unsaved local edits survive the load.
func (c *Controller[V]) Load() tea.Cmd {
	if !c.ready() || c.binding.Get == nil {
		return nil
	}

	c.loadSeq++
	c.loading = true
	c.editedSinceLoad = false
	c.loadWriteSeq = c.seq
	c.loadWriting = c.inFlight

	id, seq, key, get, timeout := c.id, c.loadSeq, c.key, c.binding.Get, c.timing.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		value, err := get(ctx, key)
		return loadedMsg[V]{id: id, seq: seq, value: value, err: err}
	}
}

// SetLocal replaces the displayed value and restarts the debounce window.
// The save status is left alone until the write actually starts.
func (c *Controller[V]) SetLocal(value V) tea.Cmd {
	c.value = value
	c.lastErr = nil
	c.editedSinceLoad = true
	if c.inFlight {
		c.editedSinceFlush = true
	}

	c.debounceTag++
	c.pending = true
	return c.schedule(c.timing.Debounce, debounceMsg{id: c.id, tag: c.debounceTag})
}

// FlushNow cancels the pending debounce and writes the current value. When a
// write is already in flight the flush runs as soon as it completes.
func (c *Controller[V]) FlushNow() tea.Cmd {
	c.debounceTag++
	c.pending = false
	return c.startFlush()
}

// Stop abandons pending work. An in-flight write still completes but nothing
// new is sent.
func (c *Controller[V]) Stop() {
	c.debounceTag++
	c.pending = false
	c.queued = false
}

func (c *Controller[V]) startFlush() tea.Cmd {
	if !c.ready() || c.binding.Put == nil {
		return nil
	}
	if c.inFlight {
		c.queued = true
		return nil
	}
	return c.flush()
}

func (c *Controller[V]) flush() tea.Cmd {
	c.seq++
	c.inFlight = true
	c.queued = false
	c.editedSinceFlush = false
	c.status = StatusSaving
	c.lastErr = nil
	c.decayTag++

	id, seq, key, put, timeout, value := c.id, c.seq, c.key, c.binding.Put, c.timing.RequestTimeout, c.value
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		echoed, err := put(ctx, key, value)
		return savedMsg[V]{id: id, seq: seq, value: echoed, err: err}
	}
}

// Update handles the controller's own timer and network messages and ignores
// everything else
func (c *Controller[V]) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case debounceMsg:
		if msg.id != c.id || msg.tag != c.debounceTag || !c.pending {
			return nil
		}
		c.pending = false
		return c.startFlush()

	case decayMsg:
		if msg.id != c.id || msg.tag != c.decayTag {
			return nil
		}
		if c.status == StatusSaved {
			c.status = StatusIdle
		}
		return nil

	case loadedMsg[V]:
		if msg.id != c.id || msg.seq != c.loadSeq {
			return nil
		}
		return c.handleLoaded(msg)

	case savedMsg[V]:
		if msg.id != c.id || msg.seq != c.seq || !c.inFlight {
			return nil
		}
		return c.handleSaved(msg)
	}
	return nil
}

func (c *Controller[V]) handleLoaded(msg loadedMsg[V]) tea.Cmd {
	c.loading = false
	if msg.err != nil {
		c.status = StatusError
		c.lastErr = fmt.Errorf("load %s: %w", c.binding.Name, msg.err)
		slog.Warn("field load failed", "field", c.binding.Name, "key", c.key.String(), "error", msg.err)
		return nil
	}

	// A write issued around the load is newer than what the load read
	if c.inFlight || c.loadWriting || c.seq != c.loadWriteSeq {
		c.loaded = true
		return nil
	}

	keep := c.editedSinceLoad || c.Busy() || (c.loaded && c.Dirty())
	c.loaded = true
	c.remoteValue = msg.value
	if !keep {
		c.value = msg.value
	}
	if c.status != StatusError || !keep {
		c.status = StatusIdle
	}
	return nil
}

func (c *Controller[V]) handleSaved(msg savedMsg[V]) tea.Cmd {
	c.inFlight = false

	var cmds []tea.Cmd
	if msg.err != nil {
		c.status = StatusError
		c.lastErr = fmt.Errorf("save %s: %w", c.binding.Name, msg.err)
		slog.Warn("field save failed", "field", c.binding.Name, "key", c.key.String(), "error", msg.err)
	} else {
		c.remoteValue = msg.value
		if !c.editedSinceFlush {
			c.value = msg.value
		}
		c.status = StatusSaved
		c.decayTag++
		cmds = append(cmds, c.schedule(c.timing.SavedDecay, decayMsg{id: c.id, tag: c.decayTag}))
		slog.Debug("field saved", "field", c.binding.Name, "key", c.key.String())
	}

	if c.queued {
		cmds = append(cmds, c.flush())
	}
	return tea.Batch(cmds...)
}
