// Package timer holds the chronometer state. Time is derived from stored
// timestamps on read, so nothing ticks in the background.
package timer

import (
	"strings"
	"time"
)

// Mode selects countdown or count-up behaviour.
type Mode string

const (
	Pomodoro  Mode = "POMODORO"
	Stopwatch Mode = "STOPWATCH"
)

// DefaultPomodoro is used when a countdown is started without a duration.
const DefaultPomodoro = 25 * time.Minute

// ParseMode maps free text to a Mode, defaulting to Pomodoro.
func ParseMode(s string) Mode {
	if Mode(strings.ToUpper(strings.TrimSpace(s))) == Stopwatch {
		return Stopwatch
	}
	return Pomodoro
}

// State is the read-only view of the chronometer at one instant.
type State struct {
	Running   bool   `json:"running"`
	Mode      Mode   `json:"mode"`
	Duration  int    `json:"duration"`  // seconds, zero for a stopwatch
	Elapsed   int    `json:"elapsed"`   // seconds
	Remaining int    `json:"remaining"` // seconds, zero for a stopwatch
	Finished  bool   `json:"finished"`
	StartedAt string `json:"startedAt,omitempty"`
}

// Timer is the single chronometer of a session.
type Timer struct {
	running  bool
	mode     Mode
	duration time.Duration
	started  time.Time
	stopped  time.Duration
}

// New returns an idle pomodoro timer.
func New() *Timer {
	return &Timer{mode: Pomodoro, duration: DefaultPomodoro}
}

// Start (re)starts the timer at now. A non-positive duration falls back to
// DefaultPomodoro for countdowns.
func (t *Timer) Start(now time.Time, d time.Duration, m Mode) {
	if m != Stopwatch && d <= 0 {
		d = DefaultPomodoro
	}
	if m == Stopwatch {
		d = 0
	}
	t.running = true
	t.mode = m
	t.duration = d
	t.started = now
	t.stopped = 0
}

// Stop freezes the elapsed time. It reports whether the timer was running.
func (t *Timer) Stop(now time.Time) bool {
	if !t.running {
		return false
	}
	t.stopped = now.Sub(t.started)
	t.running = false
	return true
}

// State computes the view at now.
func (t *Timer) State(now time.Time) State {
	elapsed := t.stopped
	if t.running {
		elapsed = now.Sub(t.started)
	}
	s := State{
		Running:  t.running,
		Mode:     t.mode,
		Duration: int(t.duration / time.Second),
		Elapsed:  int(elapsed / time.Second),
	}
	if !t.started.IsZero() {
		s.StartedAt = t.started.UTC().Format(time.RFC3339)
	}
	if t.mode == Pomodoro && t.duration > 0 {
		rem := t.duration - elapsed
		if rem <= 0 {
			rem = 0
			s.Finished = !t.started.IsZero()
			s.Running = false
		}
		s.Remaining = int(rem / time.Second)
	}
	return s
}
