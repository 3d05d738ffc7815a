package executor

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/jarvis/internal/intent"
	"github.com/starford/jarvis/internal/layout"
	"github.com/starford/jarvis/internal/mode"
	"github.com/starford/jarvis/internal/models"
	"github.com/starford/jarvis/internal/timer"
	"github.com/starford/jarvis/internal/workspace"
)

type fixture struct {
	exec   *Executor
	env    Env
	notes  []Notification
	timer  *timer.Timer
	cursor SyllabusCursor
}

func newFixture(t *testing.T, tm Timer) *fixture {
	t.Helper()
	f := &fixture{timer: timer.New()}
	if tm == nil {
		tm = f.timer
	}
	ids := workspace.NewIDGen(nil)
	f.env = Env{
		Layout:   layout.NewRegistry(layout.DefaultHistoryCapacity),
		Mode:     mode.NewController(),
		Tasks:    workspace.NewTasks(ids),
		Projects: workspace.NewProjects(ids),
		Memory:   workspace.NewMemory(),
		Macros:   workspace.NewMacros(),
		Timer:    tm,
		Syllabus: &f.cursor,
		Notify:   func(n Notification) { f.notes = append(f.notes, n) },
		Now:      func() time.Time { return time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC) },
	}
	f.exec = New(f.env)
	return f
}

func (f *fixture) lastNote() Notification {
	if len(f.notes) == 0 {
		return Notification{}
	}
	return f.notes[len(f.notes)-1]
}

func ptr[T any](v T) *T { return &v }

func windowIntent(b layout.Batch) intent.Intent {
	return intent.Intent{Kind: intent.ManageWindow, Window: &intent.WindowData{Batch: b}}
}

type panickingTimer struct{}

func (panickingTimer) Start(time.Time, time.Duration, timer.Mode) { panic("timer exploded") }
func (panickingTimer) Stop(time.Time) bool                         { panic("timer exploded") }

func TestFaultContainment(t *testing.T) {
	t.Parallel()
	f := newFixture(t, panickingTimer{})

	out := f.exec.Execute(
		intent.Intent{Kind: intent.CreateTask, Task: &intent.TaskData{Title: ptr("before")}},
		intent.Intent{Kind: intent.StartTimer},
		intent.Intent{Kind: intent.UpdateMemory, Memory: &intent.MemoryData{Operation: "add", Fact: "after"}},
	)

	require.Len(t, out, 3)
	assert.Equal(t, Applied, out[0].Status)
	assert.Equal(t, Failed, out[1].Status)
	assert.Equal(t, Applied, out[2].Status)
	assert.Len(t, f.env.Tasks.List(), 1)
	assert.Equal(t, []string{"after"}, f.env.Memory.List())

	var sawError bool
	for _, n := range f.notes {
		if n.Level == LevelError {
			sawError = true
		}
	}
	assert.True(t, sawError)
}

func TestDeleteTaskIdempotent(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	task := f.env.Tasks.Add(models.Task{Title: "x"})
	del := intent.Intent{Kind: intent.DeleteTask, Task: &intent.TaskData{ID: task.ID}}

	out := f.exec.Execute(del, del)
	assert.Equal(t, Applied, out[0].Status)
	assert.Equal(t, NotFound, out[1].Status)
	assert.Empty(t, f.env.Tasks.List())

	out = f.exec.Execute(intent.Intent{Kind: intent.DeleteTask, Task: &intent.TaskData{ID: "ghost"}})
	assert.Equal(t, NotFound, out[0].Status)
}

func TestUpdateTaskPartialMerge(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	task := f.env.Tasks.Add(models.Task{Title: "Report", Priority: models.PriorityHigh, DueDate: "2026-05-02", Labels: []string{"work"}})

	f.exec.Execute(intent.Intent{Kind: intent.UpdateTask, Task: &intent.TaskData{ID: task.ID, Completed: ptr(true)}})

	got, ok := f.env.Tasks.Find(task.ID)
	require.True(t, ok)
	assert.True(t, got.Completed)
	assert.Equal(t, "Report", got.Title)
	assert.Equal(t, models.PriorityHigh, got.Priority)
	assert.Equal(t, "2026-05-02", got.DueDate)
	assert.Equal(t, []string{"work"}, got.Labels)
}

func TestUpdateTaskMissingID(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	out := f.exec.Execute(intent.Intent{Kind: intent.UpdateTask})
	assert.Equal(t, NoOp, out[0].Status)
	assert.Empty(t, f.notes)
}

func TestCreateDefaults(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	f.exec.Execute(
		intent.Intent{Kind: intent.CreateTask},
		intent.Intent{Kind: intent.CreateEvent, Event: &intent.EventData{Title: "Standup", StartTime: "2026-05-01T09:00", EndTime: "2026-05-01T09:15"}},
	)
	tasks := f.env.Tasks.List()
	require.Len(t, tasks, 2)
	assert.Equal(t, defaultTaskTitle, tasks[0].Title)
	assert.Equal(t, models.PriorityMedium, tasks[0].Priority)
	assert.True(t, tasks[1].IsEvent)
	assert.Equal(t, "2026-05-01", tasks[1].DueDate)
	assert.NotEqual(t, tasks[0].ID, tasks[1].ID)
}

func TestBreakDownByTitle(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	parent := f.env.Tasks.Add(models.Task{Title: "Launch Website"})

	out := f.exec.Execute(intent.Intent{Kind: intent.BreakDownTask, Breakdown: &intent.BreakdownData{
		ParentTaskID: "launch", Subtasks: intent.Titles{"DNS", "Deploy"},
	}})
	assert.Equal(t, Applied, out[0].Status)
	got, _ := f.env.Tasks.Find(parent.ID)
	assert.Len(t, got.Subtasks, 2)

	out = f.exec.Execute(intent.Intent{Kind: intent.BreakDownTask, Breakdown: &intent.BreakdownData{ParentTaskID: "nothing"}})
	assert.Equal(t, NotFound, out[0].Status)
	assert.Equal(t, "Breakdown Failed", f.lastNote().Title)
}

func TestCreateProjectTree(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	f.exec.Execute(intent.Intent{Kind: intent.CreateProject, Project: &intent.ProjectData{
		Title:    "Chemistry",
		Chapters: []intent.ChapterData{{Title: "Atoms", Subtopics: []intent.SubtopicData{{Title: "Electrons"}}}},
	}})
	ps := f.env.Projects.List()
	require.Len(t, ps, 1)
	require.Len(t, ps[0].Chapters, 1)
	assert.NotEmpty(t, ps[0].Chapters[0].ID)
	assert.Equal(t, models.StatusPending, ps[0].Chapters[0].Subtopics[0].Status)
}

func TestOneSnapshotPerBatch(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	_, _ = f.env.Layout.Open(layout.KindTasks, "")
	before := f.env.Layout.Windows()

	f.exec.Execute(
		windowIntent(layout.Batch{ClearHUD: true, Instructions: []layout.Instruction{{Target: layout.KindMemory, Action: layout.ActionOpen}}}),
		intent.Intent{Kind: intent.StartTimer, Timer: &intent.TimerData{Duration: ptr(10)}},
		intent.Intent{Kind: intent.NavigateSyllabus},
	)
	assert.Equal(t, 1, f.env.Layout.HistoryLen())
	assert.Equal(t, mode.Plan, f.env.Mode.Mode())

	f.exec.Execute(intent.Intent{Kind: intent.RevertView})
	assert.Equal(t, before, f.env.Layout.Windows())
	assert.Equal(t, "View Reverted", f.lastNote().Title)

	out := f.exec.Execute(intent.Intent{Kind: intent.RevertView})
	assert.Equal(t, NoOp, out[0].Status)
	assert.Equal(t, "No History Available", f.lastNote().Title)
}

func TestOpenThenResizeInOneBatch(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	f.exec.Execute(windowIntent(layout.Batch{Instructions: []layout.Instruction{
		{Target: layout.KindChrono, Action: layout.ActionOpen, Size: ptr(1.0)},
		{Target: layout.KindChrono, Action: layout.ActionResize, Size: ptr(2.0)},
	}}))
	ws := f.env.Layout.Windows()
	require.Len(t, ws, 1)
	assert.Equal(t, 2.0, ws[0].Weight)
}

func decodeIntent(t *testing.T, data string) intent.Intent {
	t.Helper()
	var in intent.Intent
	require.NoError(t, json.Unmarshal([]byte(data), &in))
	return in
}

func TestOpenWithSizeTakesShareOfRow(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	_, _ = f.env.Layout.Open(layout.KindCalendar, "")
	_, _ = f.env.Layout.Open(layout.KindChat, "")

	out := f.exec.Execute(decodeIntent(t,
		`{"action":"MANAGE_WINDOW","windowData":{"target":"TASKS","action":"OPEN","size":50}}`))
	require.Equal(t, Applied, out[0].Status)

	ws := f.env.Layout.Windows()
	require.Len(t, ws, 3)
	assert.Equal(t, layout.KindTasks, ws[2].Kind)
	assert.Equal(t, 50.0, ws[2].Weight)
	assert.Equal(t, 25.0, ws[0].Weight)
	assert.Equal(t, 25.0, ws[1].Weight)
}

func TestOpenWithZeroSizeUsesDefaultWeight(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	out := f.exec.Execute(decodeIntent(t,
		`{"action":"MANAGE_WINDOW","windowData":{"target":"TASKS","action":"OPEN","size":0}}`))
	require.Equal(t, Applied, out[0].Status)

	ws := f.env.Layout.Windows()
	require.Len(t, ws, 1)
	assert.Equal(t, layout.KindTasks, ws[0].Kind)
	assert.Equal(t, layout.DefaultWeight, ws[0].Weight)
}

func TestBlockedOpenLeavesNoHistory(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	_, _ = f.env.Layout.Open(layout.KindTasks, "")
	f.env.Layout.SetFocusLock(true)

	out := f.exec.Execute(windowIntent(layout.Batch{Instructions: []layout.Instruction{
		{Target: layout.KindChat, Action: layout.ActionOpen},
	}}))
	require.Equal(t, Blocked, out[0].Status)
	assert.Equal(t, 0, f.env.Layout.HistoryLen())

	out = f.exec.Execute(intent.Intent{Kind: intent.RevertView})
	assert.Equal(t, NoOp, out[0].Status)
	assert.Equal(t, "No History Available", f.lastNote().Title)
}

func TestStartTimerOpensChrono(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	f.exec.Execute(intent.Intent{Kind: intent.StartTimer, Timer: &intent.TimerData{Duration: ptr(15)}})
	assert.True(t, f.env.Layout.IsOpen(layout.KindChrono))
	s := f.timer.State(f.env.Now())
	assert.True(t, s.Running)
	assert.Equal(t, 15*60, s.Duration)

	out := f.exec.Execute(intent.Intent{Kind: intent.StopTimer})
	assert.Equal(t, Applied, out[0].Status)
}

func TestFocusLockBlocksNewPanels(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	_, _ = f.env.Layout.Open(layout.KindTasks, "")
	f.exec.Execute(intent.Intent{Kind: intent.FocusLock, Focus: &intent.FocusData{Lock: true}})

	out := f.exec.Execute(windowIntent(layout.Batch{Instructions: []layout.Instruction{
		{Target: layout.KindWeather, Action: layout.ActionOpen},
	}}))
	assert.Equal(t, Blocked, out[0].Status)
	assert.False(t, f.env.Layout.IsOpen(layout.KindWeather))

	out = f.exec.Execute(windowIntent(layout.Batch{Instructions: []layout.Instruction{
		{Target: layout.KindTasks, Action: layout.ActionClose},
	}}))
	assert.Equal(t, Applied, out[0].Status)
	assert.Empty(t, f.env.Layout.Windows())
}

func TestMacros(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	_, _ = f.env.Layout.Open(layout.KindTasks, "")
	_ = f.env.Layout.Resize(string(layout.KindTasks), 3)
	_, _ = f.env.Layout.Open(layout.KindMemory, "")
	saved := f.env.Layout.Windows()

	f.exec.Execute(intent.Intent{Kind: intent.SaveMacro, Macro: &intent.MacroData{Name: "Deep Work"}})
	f.env.Layout.Restore(nil)

	out := f.exec.Execute(intent.Intent{Kind: intent.ActivateMacro, Macro: &intent.MacroData{Name: "deep work"}})
	assert.Equal(t, Applied, out[0].Status)
	assert.Equal(t, saved, f.env.Layout.Windows())

	out = f.exec.Execute(intent.Intent{Kind: intent.ActivateMacro, Macro: &intent.MacroData{Name: "missing"}})
	assert.Equal(t, NotFound, out[0].Status)
}

func TestQueryAndUnknown(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	f.exec.Execute(intent.QueryIntent("It is sunny."))
	assert.True(t, f.env.Layout.IsOpen(layout.KindChat))
	assert.Equal(t, "It is sunny.", f.lastNote().Message)

	f.exec.Execute(intent.Intent{Kind: intent.Unknown})
	assert.Equal(t, "Command Unknown", f.lastNote().Title)

	out := f.exec.Execute(intent.Intent{Kind: "LAUNCH_ROCKET"})
	assert.Equal(t, Dropped, out[0].Status)
}

func TestThemeModeAndMemory(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	f.exec.Execute(
		intent.Intent{Kind: intent.UpdateTheme, UI: &intent.UIData{Theme: "amber"}},
		intent.Intent{Kind: intent.SwitchMode, Mode: &intent.ModeData{Mode: "intel"}},
		intent.Intent{Kind: intent.UpdateMemory, Memory: &intent.MemoryData{Fact: "prefers mornings"}},
		intent.Intent{Kind: intent.UpdateMemory, Memory: &intent.MemoryData{Operation: "remove", Fact: "prefers mornings"}},
	)
	assert.Equal(t, mode.Amber, f.env.Mode.Theme())
	assert.Equal(t, mode.Intel, f.env.Mode.Mode())
	assert.Empty(t, f.env.Memory.List())

	out := f.exec.Execute(intent.Intent{Kind: intent.UpdateTheme, UI: &intent.UIData{Theme: "purple"}})
	assert.Equal(t, NoOp, out[0].Status)
	assert.Equal(t, mode.Amber, f.env.Mode.Theme())
}

func TestNavigateSyllabusSizesProjects(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	_, _ = f.env.Layout.Open(layout.KindTasks, "")
	_, _ = f.env.Layout.Open(layout.KindCalendar, "")

	f.exec.Execute(intent.Intent{Kind: intent.NavigateSyllabus, Navigation: &intent.NavigationData{ProjectID: "p1", ChapterID: "c2"}})

	w, ok := f.env.Layout.Get(layout.KindProjects)
	require.True(t, ok)
	assert.Equal(t, 60.0, w.Weight)
	other, _ := f.env.Layout.Get(layout.KindTasks)
	assert.Equal(t, 20.0, other.Weight)
	assert.Equal(t, SyllabusCursor{ProjectID: "p1", ChapterID: "c2"}, f.cursor)
}
