package tui

import (
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pluqqy/pluqqy-studio/pkg/content/contenttest"
	"github.com/pluqqy/pluqqy-studio/pkg/fieldsync"
	"github.com/pluqqy/pluqqy-studio/pkg/session"
)

// manualClock records field sync timers so tests decide when they fire
type manualClock struct {
	timers []tea.Msg
}

func (c *manualClock) schedule(_ time.Duration, msg tea.Msg) tea.Cmd {
	c.timers = append(c.timers, msg)
	return nil
}

func (c *manualClock) take() []tea.Msg {
	out := c.timers
	c.timers = nil
	return out
}

// harness drives a Studio the way the bubbletea runtime would, running
// commands inline and feeding their messages back
type harness struct {
	t      *testing.T
	fake   *contenttest.Fake
	clock  *manualClock
	studio *Studio
	copied []string
	seen   []tea.Msg
}

func startStudio(t *testing.T, fake *contenttest.Fake, opts session.Options) *harness {
	t.Helper()
	clock := &manualClock{}
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = time.Second
	}
	s := NewStudio(fake, opts,
		fieldsync.WithScheduler(clock.schedule),
		fieldsync.WithTiming(fieldsync.Timing{
			Debounce:       time.Second,
			SavedDecay:     1200 * time.Millisecond,
			RequestTimeout: time.Second,
		}),
	)
	h := &harness{t: t, fake: fake, clock: clock, studio: s}
	s.copyText = func(text string) error {
		h.copied = append(h.copied, text)
		return nil
	}
	h.drain(s.Init())
	return h
}

func (h *harness) update(msg tea.Msg) tea.Cmd {
	_, cmd := h.studio.Update(msg)
	return cmd
}

func (h *harness) send(msg tea.Msg) {
	h.drain(h.update(msg))
}

func (h *harness) press(t tea.KeyType) {
	h.send(tea.KeyMsg{Type: t})
}

func (h *harness) typeText(text string) {
	for _, r := range text {
		h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// fireTimers delivers every pending debounce and decay timer
func (h *harness) fireTimers() {
	for _, msg := range h.clock.take() {
		h.send(msg)
	}
}

func (h *harness) quitSeen() bool {
	for _, msg := range h.seen {
		if _, ok := msg.(tea.QuitMsg); ok {
			return true
		}
	}
	return false
}

func (h *harness) drain(cmd tea.Cmd) {
	queue := h.run(cmd)
	for len(queue) > 0 {
		msg := queue[0]
		queue = queue[1:]
		h.seen = append(h.seen, msg)
		queue = append(queue, h.run(h.update(msg))...)
	}
}

// run executes cmd and flattens batches. Commands that wait on a real timer,
// such as cursor blinks and status decay, are dropped.
func (h *harness) run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(100 * time.Millisecond):
		return nil
	}

	switch msg := msg.(type) {
	case nil:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, h.run(c)...)
		}
		return out
	case spinner.TickMsg, cursor.BlinkMsg, ClearStatusMsg:
		return nil
	}
	return []tea.Msg{msg}
}
