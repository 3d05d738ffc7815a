package hud

import (
	"slices"

	"github.com/starford/jarvis/internal/approval"
	"github.com/starford/jarvis/internal/executor"
	"github.com/starford/jarvis/internal/layout"
	"github.com/starford/jarvis/internal/mode"
	"github.com/starford/jarvis/internal/models"
	"github.com/starford/jarvis/internal/sse"
	"github.com/starford/jarvis/internal/timer"
)

// LayoutView is the window part of the state.
type LayoutView struct {
	Windows   []layout.Window `json:"windows"`
	Focused   layout.Kind     `json:"focused,omitempty"`
	FocusLock bool            `json:"focusLock"`
	History   int             `json:"history"`
}

// ModeView is the mode/theme part of the state.
type ModeView struct {
	Mode           mode.Mode  `json:"mode"`
	Theme          mode.Theme `json:"theme"`
	EffectiveTheme mode.Theme `json:"effectiveTheme"`
	Alert          bool       `json:"alert"`
}

// WorkspaceView is the domain data part of the state.
type WorkspaceView struct {
	Tasks    []models.Task          `json:"tasks"`
	Events   []models.CalendarEvent `json:"events"`
	Projects []models.Project       `json:"projects"`
	Memory   []string               `json:"memory"`
	Macros   []models.LayoutMacro   `json:"macros"`
	Syllabus executor.SyllabusCursor `json:"syllabus"`
}

// StatusView reports collaborator health and in-flight commands.
type StatusView struct {
	Offline  bool     `json:"offline"`
	Busy     []string `json:"busy"`
	Persona  string   `json:"persona"`
	Loaded   bool     `json:"loaded"`
	Revision uint64   `json:"revision"`
}

// State is an immutable snapshot of the whole HUD.
type State struct {
	Layout       LayoutView             `json:"layout"`
	Mode         ModeView               `json:"mode"`
	Workspace    WorkspaceView          `json:"workspace"`
	Pending      []approval.Pending     `json:"pending"`
	Timer        timer.State            `json:"timer"`
	Notification *executor.Notification `json:"notification,omitempty"`
	Draft        *models.Task           `json:"draft,omitempty"`
	Briefing     string                 `json:"briefing,omitempty"`
	Status       StatusView             `json:"status"`
}

type topic uint8

const (
	topicLayout topic = 1 << iota
	topicApprovals
	topicMode
	topicWorkspace
	topicSettings
	topicStatus

	topicAll = topicLayout | topicApprovals | topicMode | topicWorkspace | topicSettings | topicStatus
)

func (s *Session) layoutView() LayoutView {
	return LayoutView{
		Windows:   s.layout.Windows(),
		Focused:   s.layout.Focused(),
		FocusLock: s.layout.FocusLocked(),
		History:   s.layout.HistoryLen(),
	}
}

func (s *Session) modeView() ModeView {
	return ModeView{
		Mode:           s.mode.Mode(),
		Theme:          s.mode.Theme(),
		EffectiveTheme: s.mode.EffectiveTheme(),
		Alert:          s.mode.Alert(),
	}
}

func (s *Session) workspaceView() WorkspaceView {
	return WorkspaceView{
		Tasks:    s.tasks.List(),
		Events:   s.tasks.Events(),
		Projects: s.projects.List(),
		Memory:   s.memory.List(),
		Macros:   s.macros.List(),
		Syllabus: s.cursor,
	}
}

func (s *Session) statusView() StatusView {
	busy := make([]string, 0, len(s.busy))
	for k := range s.busy {
		busy = append(busy, k)
	}
	slices.Sort(busy)
	return StatusView{
		Offline:  s.offline,
		Busy:     busy,
		Persona:  string(s.cfg.Persona),
		Loaded:   s.loaded,
		Revision: s.rev,
	}
}

func (s *Session) snapshot() State {
	st := State{
		Layout:    s.layoutView(),
		Mode:      s.modeView(),
		Workspace: s.workspaceView(),
		Pending:   s.queue.List(),
		Timer:     s.timer.State(s.now()),
		Briefing:  s.briefing,
		Status:    s.statusView(),
	}
	if s.lastNote != nil {
		n := *s.lastNote
		st.Notification = &n
	}
	if s.draft != nil {
		d := *s.draft
		st.Draft = &d
	}
	return st
}

// commit publishes the topics touched by a mutation, flushes queued
// notifications, and schedules a save when durable data changed.
func (s *Session) commit(t topic) {
	s.rev++
	var evs []sse.Event
	if t&topicLayout != 0 {
		evs = append(evs, sse.Event{Type: sse.TypeLayout, Data: s.layoutView()})
	}
	if t&topicApprovals != 0 {
		evs = append(evs, sse.Event{Type: sse.TypeApprovals, Data: s.queue.List()})
	}
	if t&topicMode != 0 {
		evs = append(evs, sse.Event{Type: sse.TypeMode, Data: s.modeView()})
	}
	if t&(topicWorkspace|topicSettings) != 0 {
		evs = append(evs, sse.Event{Type: sse.TypeWorkspace, Data: s.workspaceView()})
	}
	if t&topicStatus != 0 {
		evs = append(evs, sse.Event{Type: sse.TypeStatus, Data: s.statusView()})
	}
	for _, n := range s.notes {
		evs = append(evs, sse.Event{Type: sse.TypeNotification, Data: n})
	}
	s.notes = s.notes[:0]

	s.pub.PublishChange(evs, s.snapshot())

	if t&(topicWorkspace|topicSettings) != 0 && s.loaded {
		s.scheduleSave()
	}
}
