package fieldsync

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Status is the visible save state of one field
type Status int

const (
	StatusIdle Status = iota
	StatusSaving
	StatusSaved
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSaving:
		return "saving"
	case StatusSaved:
		return "saved"
	case StatusError:
		return "error"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Key addresses one field on the content service. Page is zero for
// project-level fields.
type Key struct {
	ProjectID string
	Page      int
}

func (k Key) String() string {
	if k.Page == 0 {
		return k.ProjectID
	}
	return fmt.Sprintf("%s/pages/%d", k.ProjectID, k.Page)
}

// Timing holds the durations driving a controller
type Timing struct {
	Debounce       time.Duration
	SavedDecay     time.Duration
	RequestTimeout time.Duration
}

// DefaultTiming matches the editing surface defaults
func DefaultTiming() Timing {
	return Timing{
		Debounce:       1000 * time.Millisecond,
		SavedDecay:     1200 * time.Millisecond,
		RequestTimeout: 10 * time.Second,
	}
}

// Scheduler returns a command delivering msg after d
type Scheduler func(d time.Duration, msg tea.Msg) tea.Cmd

func tickScheduler(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return msg
	})
}

type options struct {
	timing   Timing
	schedule Scheduler
}

// Option configures controllers
type Option func(*options)

// WithTiming overrides the debounce, decay and timeout durations
func WithTiming(t Timing) Option {
	return func(o *options) {
		o.timing = t
	}
}

// WithScheduler replaces tea.Tick as the timer source
func WithScheduler(s Scheduler) Option {
	return func(o *options) {
		o.schedule = s
	}
}

func buildOptions(opts []Option) options {
	o := options{
		timing:   DefaultTiming(),
		schedule: tickScheduler,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
