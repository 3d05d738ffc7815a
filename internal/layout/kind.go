// Package layout implements the HUD window registry, its batch update
// algorithm and the bounded undo history of layout snapshots.
//
// None of the types in this package are safe for concurrent use; they are
// owned by the session event loop.
package layout

import "strings"

// Kind is a panel type. At most one window per kind is open at a time.
type Kind string

// Known panel kinds.
const (
	KindTasks     Kind = "TASKS"
	KindProjects  Kind = "PROJECTS"
	KindCalendar  Kind = "CALENDAR"
	KindChrono    Kind = "CHRONO"
	KindMemory    Kind = "MEMORY"
	KindBriefing  Kind = "BRIEFING"
	KindChat      Kind = "CHAT"
	KindCommand   Kind = "COMMAND"
	KindWeather   Kind = "WEATHER"
	KindDashboard Kind = "DASHBOARD"
	KindLogs      Kind = "LOGS"
)

var defaultTitles = map[Kind]string{
	KindTasks:     "TACTICAL OVERVIEW",
	KindProjects:  "SYLLABUS MATRIX",
	KindCalendar:  "TEMPORAL GRID",
	KindChrono:    "CHRONOMETER",
	KindMemory:    "CORE MEMORY",
	KindBriefing:  "VISION PROTOCOL",
	KindChat:      "SECURE COMMS",
	KindCommand:   "TERMINAL",
	KindWeather:   "ENVIRONMENTAL SENSORS",
	KindDashboard: "MASTER DASHBOARD",
	KindLogs:      "OPERATIONAL LOG",
}

// Kinds returns every known kind.
func Kinds() []Kind {
	return []Kind{
		KindTasks, KindProjects, KindCalendar, KindChrono, KindMemory, KindBriefing,
		KindChat, KindCommand, KindWeather, KindDashboard, KindLogs,
	}
}

// ParseKind normalises s (case-insensitive) to a known Kind.
func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := defaultTitles[k]
	return k, ok
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	_, ok := defaultTitles[k]
	return ok
}

// DefaultTitle returns the display label used when none is supplied.
func (k Kind) DefaultTitle() string {
	if t, ok := defaultTitles[k]; ok {
		return t
	}
	return string(k)
}

// Window is one visible panel.
type Window struct {
	ID     string  `json:"id"`
	Kind   Kind    `json:"type"`
	Title  string  `json:"title"`
	Weight float64 `json:"width"`
}

func newWindow(kind Kind, title string, weight float64) Window {
	if title == "" {
		title = kind.DefaultTitle()
	}
	return Window{ID: string(kind), Kind: kind, Title: title, Weight: weight}
}

func cloneWindows(in []Window) []Window {
	if in == nil {
		return []Window{}
	}
	out := make([]Window, len(in))
	copy(out, in)
	return out
}

func indexOf(ws []Window, kind Kind) int {
	for i, w := range ws {
		if w.Kind == kind {
			return i
		}
	}
	return -1
}
