package workspace

import (
	"slices"
	"strings"
	"time"

	"github.com/starford/jarvis/internal/models"
)

// TaskPatch is a partial task. Nil fields are left untouched by Merge.
type TaskPatch struct {
	Title      *string
	Completed  *bool
	Priority   *string
	DueDate    *string
	DueTime    *string
	StartTime  *string
	EndTime    *string
	ProjectID  *string
	Details    *string
	Recurrence *models.RecurrenceRule
	Labels     []string
}

// Tasks owns the task collection.
type Tasks struct {
	ids   *IDGen
	items []models.Task
}

// NewTasks creates an empty store.
func NewTasks(ids *IDGen) *Tasks {
	return &Tasks{ids: ids, items: []models.Task{}}
}

// List returns a copy of every task.
func (s *Tasks) List() []models.Task {
	out := make([]models.Task, len(s.items))
	for i, t := range s.items {
		out[i] = cloneTask(t)
	}
	return out
}

// Replace swaps in a loaded collection.
func (s *Tasks) Replace(ts []models.Task) {
	s.items = make([]models.Task, len(ts))
	for i, t := range ts {
		s.items[i] = cloneTask(t)
	}
}

// Add stores t under a fresh id, defaulting priority, and returns the stored copy.
func (s *Tasks) Add(t models.Task) models.Task {
	t = cloneTask(t)
	t.ID = s.ids.Next()
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == "" {
			t.Subtasks[i].ID = s.ids.Next()
		}
	}
	s.items = append(s.items, t)
	return cloneTask(t)
}

// Find returns the task with id.
func (s *Tasks) Find(id string) (models.Task, bool) {
	if i := s.index(id); i >= 0 {
		return cloneTask(s.items[i]), true
	}
	return models.Task{}, false
}

// FindByTitle returns the first task whose title contains q, ignoring case.
func (s *Tasks) FindByTitle(q string) (models.Task, bool) {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return models.Task{}, false
	}
	for _, t := range s.items {
		if strings.Contains(strings.ToLower(t.Title), q) {
			return cloneTask(t), true
		}
	}
	return models.Task{}, false
}

// Merge overlays the non-nil fields of p onto the task with id. It reports
// whether the task exists.
func (s *Tasks) Merge(id string, p TaskPatch) (models.Task, bool) {
	i := s.index(id)
	if i < 0 {
		return models.Task{}, false
	}
	t := &s.items[i]
	setIf(&t.Title, p.Title)
	setIf(&t.Completed, p.Completed)
	setIf(&t.Priority, p.Priority)
	setIf(&t.DueDate, p.DueDate)
	setIf(&t.DueTime, p.DueTime)
	setIf(&t.StartTime, p.StartTime)
	setIf(&t.EndTime, p.EndTime)
	setIf(&t.ProjectID, p.ProjectID)
	setIf(&t.Details, p.Details)
	if p.Recurrence != nil {
		r := *p.Recurrence
		t.Recurrence = &r
	}
	if p.Labels != nil {
		t.Labels = slices.Clone(p.Labels)
	}
	return cloneTask(*t), true
}

// Put overwrites the task with the same id, as the manual edit form does.
func (s *Tasks) Put(t models.Task) bool {
	i := s.index(t.ID)
	if i < 0 {
		return false
	}
	s.items[i] = cloneTask(t)
	return true
}

// Delete removes the task with id; absent ids are a no-op.
func (s *Tasks) Delete(id string) bool {
	before := len(s.items)
	s.items = slices.DeleteFunc(s.items, func(t models.Task) bool { return t.ID == id })
	return len(s.items) != before
}

// AddSubtasks appends new subtasks under parentID.
func (s *Tasks) AddSubtasks(parentID string, titles []string) (models.Task, bool) {
	i := s.index(parentID)
	if i < 0 {
		return models.Task{}, false
	}
	for _, title := range titles {
		if strings.TrimSpace(title) == "" {
			continue
		}
		s.items[i].Subtasks = append(s.items[i].Subtasks, models.Subtask{ID: s.ids.Next(), Title: title})
	}
	return cloneTask(s.items[i]), true
}

// ToggleSubtask flips one subtask's completion.
func (s *Tasks) ToggleSubtask(taskID, subtaskID string) bool {
	i := s.index(taskID)
	if i < 0 {
		return false
	}
	for j := range s.items[i].Subtasks {
		if s.items[i].Subtasks[j].ID == subtaskID {
			s.items[i].Subtasks[j].Completed = !s.items[i].Subtasks[j].Completed
			return true
		}
	}
	return false
}

// Events derives calendar entries from open tasks: explicit start/end for
// events, due date plus one hour for dated tasks.
func (s *Tasks) Events() []models.CalendarEvent {
	out := []models.CalendarEvent{}
	for _, t := range s.items {
		if t.Completed {
			continue
		}
		var start, end, typ string
		switch {
		case t.StartTime != "" && t.EndTime != "":
			start, end, typ = t.StartTime, t.EndTime, "event"
		case t.DueDate != "":
			at := t.DueTime
			if at == "" {
				at = "12:00"
			}
			date, _, _ := strings.Cut(t.DueDate, "T")
			start = date + "T" + at
			typ = "task"
			if ts, err := time.Parse("2006-01-02T15:04", start); err == nil {
				end = ts.Add(time.Hour).Format("2006-01-02T15:04")
			}
		default:
			continue
		}
		out = append(out, models.CalendarEvent{
			ID:         t.ID,
			Title:      t.Title,
			Start:      start,
			End:        end,
			Type:       typ,
			Priority:   t.Priority,
			Recurrence: t.Recurrence,
		})
	}
	return out
}

func (s *Tasks) index(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.items, func(t models.Task) bool { return t.ID == id })
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func cloneTask(t models.Task) models.Task {
	t.Subtasks = slices.Clone(t.Subtasks)
	t.Labels = slices.Clone(t.Labels)
	if t.Recurrence != nil {
		r := *t.Recurrence
		r.ExcludedDates = slices.Clone(r.ExcludedDates)
		t.Recurrence = &r
	}
	return t
}
