// Package models defines the domain types persisted for a HUD user.
package models

import "github.com/starford/jarvis/internal/layout"

// Priority levels.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Subtopic statuses.
const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

// RecurrenceRule describes a repeating task or event.
type RecurrenceRule struct {
	Frequency     string   `json:"frequency"` // daily, weekly, monthly
	Interval      int      `json:"interval,omitempty"`
	EndDate       string   `json:"endDate,omitempty"`
	ExcludedDates []string `json:"excludedDates,omitempty"`
}

// Subtask is a checklist item under a task.
type Subtask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Task is a to-do or, when IsEvent is set, a calendar event.
type Task struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Completed  bool            `json:"completed"`
	DueDate    string          `json:"dueDate,omitempty"`
	DueTime    string          `json:"dueTime,omitempty"`
	StartTime  string          `json:"startTime,omitempty"`
	EndTime    string          `json:"endTime,omitempty"`
	ProjectID  string          `json:"projectId,omitempty"`
	ChapterID  string          `json:"chapterId,omitempty"`
	SubtopicID string          `json:"subtopicId,omitempty"`
	Priority   string          `json:"priority"`
	Recurrence *RecurrenceRule `json:"recurrence,omitempty"`
	Details    string          `json:"details,omitempty"`
	Subtasks   []Subtask       `json:"subtasks,omitempty"`
	Labels     []string        `json:"labels,omitempty"`
	IsEvent    bool            `json:"isEvent,omitempty"`
	TimeLogged int             `json:"timeLogged,omitempty"` // seconds
}

// CalendarEvent is the derived calendar view of a task.
type CalendarEvent struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Start      string          `json:"start"`
	End        string          `json:"end"`
	Type       string          `json:"type"` // task or event
	Priority   string          `json:"priority,omitempty"`
	Recurrence *RecurrenceRule `json:"recurrence,omitempty"`
}

// Subtopic is the leaf of a study project.
type Subtopic struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Status      string `json:"status"`
	TaskID      string `json:"taskId,omitempty"`
	LastStudied int64  `json:"lastStudied,omitempty"`
}

// Chapter groups subtopics.
type Chapter struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Progress  int        `json:"progress"`
	Subtopics []Subtopic `json:"subtopics"`
}

// ProjectMetadata carries optional project attributes.
type ProjectMetadata struct {
	Priority string   `json:"priority,omitempty"`
	Deadline string   `json:"deadline,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// Project is a study syllabus: project, chapters, subtopics.
type Project struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Chapters []Chapter        `json:"chapters"`
	Metadata *ProjectMetadata `json:"metadata,omitempty"`
}

// StudySessionLog records one tracked focus session.
type StudySessionLog struct {
	ID            string   `json:"id"`
	Timestamp     int64    `json:"timestamp"`
	Duration      int      `json:"duration"`
	TaskID        string   `json:"taskId"`
	FocusRating   int      `json:"focusRating,omitempty"`
	Interferences []string `json:"interferences,omitempty"`
	Notes         string   `json:"notes,omitempty"`
}

// LayoutMacro is a named, saved window layout.
type LayoutMacro struct {
	Name    string          `json:"name"`
	Windows []layout.Window `json:"windows"`
}

// ModelSelection maps personas to model names.
type ModelSelection struct {
	Jarvis        string `json:"jarvis,omitempty" yaml:"jarvis"`
	Friday        string `json:"friday,omitempty" yaml:"friday"`
	Vision        string `json:"vision,omitempty" yaml:"vision"`
	Transcription string `json:"transcription,omitempty" yaml:"transcription"`
}

// Settings are user-level preferences stored alongside the data.
type Settings struct {
	GroqAPIKey   string         `json:"groqApiKey,omitempty"`
	Models       ModelSelection `json:"models"`
	LayoutMacros []LayoutMacro  `json:"layoutMacros"`
}

// UserData is the unit of persistence for one user key.
type UserData struct {
	Tasks       []Task            `json:"tasks"`
	Events      []CalendarEvent   `json:"events"`
	Memory      []string          `json:"memory"`
	Projects    []Project         `json:"projects"`
	Settings    Settings          `json:"settings"`
	SessionLogs []StudySessionLog `json:"sessionLogs,omitempty"`
}

// Empty reports whether there is nothing worth restoring.
func (d *UserData) Empty() bool {
	return d == nil || (len(d.Tasks) == 0 && len(d.Memory) == 0 && len(d.Projects) == 0)
}
