package executor

import (
	"fmt"
	"strings"

	"github.com/starford/jarvis/internal/intent"
	"github.com/starford/jarvis/internal/models"
	"github.com/starford/jarvis/internal/workspace"
)

const (
	defaultTaskTitle  = "Untitled Task"
	defaultEventTitle = "Untitled Event"
)

// TaskFromData builds a new task from a sparse payload.
func TaskFromData(d *intent.TaskData) models.Task {
	var t models.Task
	if d == nil {
		t.Title = defaultTaskTitle
		return t
	}
	t.Title = deref(d.Title)
	t.Completed = deref(d.Completed)
	t.Priority = normalizePriority(deref(d.Priority))
	t.DueDate = deref(d.DueDate)
	t.DueTime = deref(d.DueTime)
	t.StartTime = deref(d.StartTime)
	t.EndTime = deref(d.EndTime)
	t.ProjectID = deref(d.ProjectID)
	t.Details = deref(d.Details)
	t.Labels = d.Labels
	if d.Recurrence != nil {
		r := *d.Recurrence
		t.Recurrence = &r
	}
	for _, s := range d.Subtasks {
		t.Subtasks = append(t.Subtasks, models.Subtask{Title: s})
	}
	if strings.TrimSpace(t.Title) == "" {
		t.Title = defaultTaskTitle
	}
	return t
}

// EventFromData builds an event-flavoured task from a sparse payload.
func EventFromData(d *intent.EventData) models.Task {
	t := models.Task{IsEvent: true}
	if d != nil {
		t.Title = d.Title
		t.StartTime = d.StartTime
		t.EndTime = d.EndTime
		t.Priority = normalizePriority(d.Priority)
		if d.Recurrence != nil {
			r := *d.Recurrence
			t.Recurrence = &r
		}
	}
	if strings.TrimSpace(t.Title) == "" {
		t.Title = defaultEventTitle
	}
	if t.StartTime != "" {
		t.DueDate, _, _ = strings.Cut(t.StartTime, "T")
	}
	return t
}

func patchFromData(d *intent.TaskData) workspace.TaskPatch {
	p := workspace.TaskPatch{
		Title:      d.Title,
		Completed:  d.Completed,
		DueDate:    d.DueDate,
		DueTime:    d.DueTime,
		StartTime:  d.StartTime,
		EndTime:    d.EndTime,
		ProjectID:  d.ProjectID,
		Details:    d.Details,
		Recurrence: d.Recurrence,
		Labels:     d.Labels,
	}
	if d.Priority != nil {
		pr := normalizePriority(*d.Priority)
		p.Priority = &pr
	}
	return p
}

func normalizePriority(p string) string {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case models.PriorityLow:
		return models.PriorityLow
	case models.PriorityHigh:
		return models.PriorityHigh
	case "":
		return ""
	default:
		return models.PriorityMedium
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func (e *Executor) createTask(in intent.Intent) Outcome {
	t := e.env.Tasks.Add(TaskFromData(in.Task))
	e.notify(LevelSuccess, "Task Created", t.Title)
	return Outcome{Kind: in.Kind, Status: Applied, Message: t.ID}
}

func (e *Executor) createEvent(in intent.Intent) Outcome {
	t := e.env.Tasks.Add(EventFromData(in.Event))
	e.notify(LevelSuccess, "Event Scheduled", t.Title)
	return Outcome{Kind: in.Kind, Status: Applied, Message: t.ID}
}

func (e *Executor) updateTask(in intent.Intent) Outcome {
	if in.Task == nil || in.Task.ID == "" {
		return e.malformed(in, "taskData.id")
	}
	t, ok := e.env.Tasks.Merge(in.Task.ID, patchFromData(in.Task))
	if !ok {
		e.notify(LevelWarning, "Task Not Found", fmt.Sprintf("No task with id %s.", in.Task.ID))
		return Outcome{Kind: in.Kind, Status: NotFound}
	}
	e.notify(LevelSuccess, "Task Updated", t.Title)
	return Outcome{Kind: in.Kind, Status: Applied, Message: t.ID}
}

func (e *Executor) deleteTask(in intent.Intent) Outcome {
	if in.Task == nil || in.Task.ID == "" {
		return e.malformed(in, "taskData.id")
	}
	if !e.env.Tasks.Delete(in.Task.ID) {
		e.notify(LevelWarning, "Task Not Found", fmt.Sprintf("No task with id %s.", in.Task.ID))
		return Outcome{Kind: in.Kind, Status: NotFound}
	}
	e.notify(LevelSuccess, "Task Deleted", "")
	return Outcome{Kind: in.Kind, Status: Applied, Message: in.Task.ID}
}

func (e *Executor) breakDownTask(in intent.Intent) Outcome {
	if in.Breakdown == nil || in.Breakdown.ParentTaskID == "" {
		return e.malformed(in, "breakdownData.parentTaskId")
	}
	ref := in.Breakdown.ParentTaskID
	parent, ok := e.env.Tasks.Find(ref)
	if !ok {
		parent, ok = e.env.Tasks.FindByTitle(ref)
	}
	if !ok {
		e.notify(LevelWarning, "Breakdown Failed", fmt.Sprintf("Could not find a task matching %q.", ref))
		return Outcome{Kind: in.Kind, Status: NotFound}
	}
	t, _ := e.env.Tasks.AddSubtasks(parent.ID, in.Breakdown.Subtasks)
	e.notify(LevelSuccess, "Task Broken Down",
		fmt.Sprintf("%d subtasks added to %s.", len(t.Subtasks)-len(parent.Subtasks), t.Title))
	return Outcome{Kind: in.Kind, Status: Applied, Message: t.ID}
}

// ProjectFromData builds a project tree, keeping any ids the payload carries.
func ProjectFromData(d *intent.ProjectData) models.Project {
	p := models.Project{Title: "Untitled Project"}
	if d == nil {
		return p
	}
	if d.Title != "" {
		p.Title = d.Title
	}
	if d.Metadata != nil {
		m := *d.Metadata
		p.Metadata = &m
	}
	for _, cd := range d.Chapters {
		c := models.Chapter{ID: cd.ID, Title: cd.Title, Progress: deref(cd.Progress)}
		for _, sd := range cd.Subtopics {
			c.Subtopics = append(c.Subtopics, models.Subtopic{ID: sd.ID, Title: sd.Title, Status: sd.Status})
		}
		p.Chapters = append(p.Chapters, c)
	}
	return p
}

func (e *Executor) createProject(in intent.Intent) Outcome {
	p := e.env.Projects.Add(ProjectFromData(in.Project))
	e.notify(LevelSuccess, "Project Initialized", p.Title)
	return Outcome{Kind: in.Kind, Status: Applied, Message: p.ID}
}

func (e *Executor) updateMemory(in intent.Intent) Outcome {
	if in.Memory == nil || strings.TrimSpace(in.Memory.Fact) == "" {
		return e.malformed(in, "memoryData.fact")
	}
	fact := strings.TrimSpace(in.Memory.Fact)
	if strings.EqualFold(in.Memory.Operation, intent.MemoryRemove) {
		if !e.env.Memory.Remove(fact) {
			e.notify(LevelWarning, "Memory Not Found", fact)
			return Outcome{Kind: in.Kind, Status: NotFound}
		}
		e.notify(LevelInfo, "Memory Purged", fact)
		return Outcome{Kind: in.Kind, Status: Applied}
	}
	e.env.Memory.Add(fact)
	e.notify(LevelInfo, "Memory Updated", fact)
	return Outcome{Kind: in.Kind, Status: Applied}
}
