package fieldsync

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type scheduled struct {
	delay time.Duration
	msg   tea.Msg
}

// manualClock records timer requests instead of sleeping. Tests fire them
// explicitly.
type manualClock struct {
	timers []scheduled
}

func (m *manualClock) schedule(d time.Duration, msg tea.Msg) tea.Cmd {
	m.timers = append(m.timers, scheduled{delay: d, msg: msg})
	return nil
}

// take returns and forgets every recorded timer
func (m *manualClock) take() []scheduled {
	out := m.timers
	m.timers = nil
	return out
}

// fire delivers every recorded timer to update and drains the resulting commands
func (m *manualClock) fire(update func(tea.Msg) tea.Cmd) {
	for _, s := range m.take() {
		drain(update, update(s.msg))
	}
}

func testOptions(clock *manualClock) []Option {
	return []Option{
		WithScheduler(clock.schedule),
		WithTiming(Timing{
			Debounce:       time.Second,
			SavedDecay:     1200 * time.Millisecond,
			RequestTimeout: time.Second,
		}),
	}
}

// collect runs cmd and flattens batches into their messages
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// drain runs cmd, feeds every message to update and repeats with the
// commands update returns until nothing is left
func drain(update func(tea.Msg) tea.Cmd, cmd tea.Cmd) {
	queue := collect(cmd)
	for len(queue) > 0 {
		msg := queue[0]
		queue = queue[1:]
		queue = append(queue, collect(update(msg))...)
	}
}
