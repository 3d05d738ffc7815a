// Package intent models the structured results produced by the NLU layer.
//
// An Intent is a tagged union: Kind selects which payload pointer is
// meaningful. Every payload field is optional and consumers default absent
// fields instead of asserting presence.
package intent

import (
	"strings"

	"github.com/starford/jarvis/internal/models"
)

// Kind is the discriminant of an Intent. Values use the wire spelling.
type Kind string

// Kinds emitted by the NLU layer.
const (
	CreateTask       Kind = "CREATE_TASK"
	UpdateTask       Kind = "UPDATE_TASK"
	DeleteTask       Kind = "DELETE_TASK"
	CreateEvent      Kind = "CREATE_EVENT"
	CreateProject    Kind = "CREATE_PROJECT"
	BreakDownTask    Kind = "BREAK_DOWN_TASK"
	UpdateMemory     Kind = "UPDATE_MEMORY"
	StartTimer       Kind = "START_TIMER"
	StopTimer        Kind = "STOP_TIMER"
	ManageWindow     Kind = "MANAGE_WINDOW"
	UpdateTheme      Kind = "UPDATE_THEME"
	SwitchMode       Kind = "SWITCH_MODE"
	NavigateSyllabus Kind = "NAVIGATE_SYLLABUS"
	SaveMacro        Kind = "SAVE_MACRO"
	ActivateMacro    Kind = "ACTIVATE_MACRO"
	FocusLock        Kind = "FOCUS_LOCK"
	RevertView       Kind = "REVERT_VIEW"
	Query            Kind = "QUERY"
	Unknown          Kind = "UNKNOWN"
)

var known = map[Kind]struct{}{
	CreateTask: {}, UpdateTask: {}, DeleteTask: {}, CreateEvent: {}, CreateProject: {},
	BreakDownTask: {}, UpdateMemory: {}, StartTimer: {}, StopTimer: {}, ManageWindow: {},
	UpdateTheme: {}, SwitchMode: {}, NavigateSyllabus: {}, SaveMacro: {}, ActivateMacro: {},
	FocusLock: {}, RevertView: {}, Query: {}, Unknown: {},
}

// Known reports whether k is part of the closed tag set.
func (k Kind) Known() bool {
	_, ok := known[k]
	return ok
}

// ParseKind accepts both the wire spelling and the kebab-case spelling
// ("create-task").
func ParseKind(s string) Kind {
	return Kind(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
}

// Modifiable reports whether a pending k can be reopened as a manual-entry
// draft instead of being approved as is.
func (k Kind) Modifiable() bool {
	return k == CreateTask || k == CreateEvent
}

// Intent is one structured instruction from one utterance.
type Intent struct {
	Kind      Kind   `json:"action"`
	Reasoning string `json:"reasoning,omitempty"`
	UsedModel string `json:"usedModel,omitempty"`

	Task       *TaskData       `json:"taskData,omitempty"`
	Event      *EventData      `json:"eventData,omitempty"`
	Project    *ProjectData    `json:"projectData,omitempty"`
	Breakdown  *BreakdownData  `json:"breakdownData,omitempty"`
	Memory     *MemoryData     `json:"memoryData,omitempty"`
	Timer      *TimerData      `json:"timerData,omitempty"`
	Window     *WindowData     `json:"windowData,omitempty"`
	UI         *UIData         `json:"uiData,omitempty"`
	Mode       *ModeData       `json:"modeData,omitempty"`
	Navigation *NavigationData `json:"navigationData,omitempty"`
	Macro      *MacroData      `json:"macroData,omitempty"`
	Focus      *FocusData      `json:"focusData,omitempty"`

	QueryResponse string `json:"queryResponse,omitempty"`
}

// QueryIntent builds a query carrying only a response text. The NLU layer
// uses it to surface failures without raising errors.
func QueryIntent(text string) Intent {
	return Intent{Kind: Query, QueryResponse: text}
}

// TaskData is a partial task. Nil fields are left untouched on update.
type TaskData struct {
	ID         string                 `json:"id,omitempty"`
	Title      *string                `json:"title,omitempty"`
	Completed  *bool                  `json:"completed,omitempty"`
	Priority   *string                `json:"priority,omitempty"`
	DueDate    *string                `json:"dueDate,omitempty"`
	DueTime    *string                `json:"dueTime,omitempty"`
	StartTime  *string                `json:"startTime,omitempty"`
	EndTime    *string                `json:"endTime,omitempty"`
	ProjectID  *string                `json:"projectId,omitempty"`
	Details    *string                `json:"details,omitempty"`
	Recurrence *models.RecurrenceRule `json:"recurrence,omitempty"`
	Labels     []string               `json:"labels,omitempty"`
	Subtasks   Titles                 `json:"subtasks,omitempty"`
}

// EventData is a partial calendar event.
type EventData struct {
	Title      string                 `json:"title,omitempty"`
	StartTime  string                 `json:"startTime,omitempty"`
	EndTime    string                 `json:"endTime,omitempty"`
	Priority   string                 `json:"priority,omitempty"`
	Recurrence *models.RecurrenceRule `json:"recurrence,omitempty"`
}

// SubtopicData is a sparse subtopic.
type SubtopicData struct {
	ID     string `json:"id,omitempty"`
	Title  string `json:"title,omitempty"`
	Status string `json:"status,omitempty"`
}

// ChapterData is a sparse chapter.
type ChapterData struct {
	ID        string         `json:"id,omitempty"`
	Title     string         `json:"title,omitempty"`
	Progress  *int           `json:"progress,omitempty"`
	Subtopics []SubtopicData `json:"subtopics,omitempty"`
}

// ProjectData is a sparse project tree.
type ProjectData struct {
	ID       string                  `json:"id,omitempty"`
	Title    string                  `json:"title,omitempty"`
	Chapters []ChapterData           `json:"chapters,omitempty"`
	Metadata *models.ProjectMetadata `json:"metadata,omitempty"`
}

// BreakdownData asks for subtasks under a parent resolved by id or title.
type BreakdownData struct {
	ParentTaskID string `json:"parentTaskId,omitempty"`
	Subtasks     Titles `json:"subtasks,omitempty"`
}

// Memory operations.
const (
	MemoryAdd    = "add"
	MemoryRemove = "remove"
)

// MemoryData adds or removes one fact.
type MemoryData struct {
	Operation string `json:"operation,omitempty"`
	Fact      string `json:"fact,omitempty"`
}

// TimerData starts the chronometer. Duration is in minutes.
type TimerData struct {
	Duration *int   `json:"duration,omitempty"`
	Mode     string `json:"mode,omitempty"` // POMODORO or STOPWATCH
}

// UIData carries a theme change.
type UIData struct {
	Theme string `json:"theme,omitempty"`
}

// ModeData carries a layout preset change.
type ModeData struct {
	Mode string `json:"mode,omitempty"`
}

// NavigationData points at a syllabus location.
type NavigationData struct {
	ProjectID string `json:"projectId,omitempty"`
	ChapterID string `json:"chapterId,omitempty"`
}

// MacroData names a saved layout.
type MacroData struct {
	Name string `json:"name,omitempty"`
}

// FocusData toggles focus lock.
type FocusData struct {
	Lock bool `json:"lock"`
}
