// Package executor interprets structured intents against HUD state.
//
// Each intent is handled inside its own recover boundary so one malformed
// directive never stops the rest of a batch. Lookups that miss produce a
// NotFound outcome and a notification, never an error.
package executor

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/jarvis/internal/intent"
	"github.com/starford/jarvis/internal/layout"
	"github.com/starford/jarvis/internal/metrics"
	"github.com/starford/jarvis/internal/mode"
	"github.com/starford/jarvis/internal/timer"
	"github.com/starford/jarvis/internal/workspace"
)

// Status classifies what happened to one intent.
type Status string

const (
	Applied  Status = "applied"
	NoOp     Status = "noop"
	NotFound Status = "not_found"
	Blocked  Status = "blocked"
	Failed   Status = "failed"
	Dropped  Status = "dropped"
)

// Outcome is the result of executing one intent.
type Outcome struct {
	Kind    intent.Kind `json:"kind"`
	Status  Status      `json:"status"`
	Message string      `json:"message,omitempty"`
}

// Timer is the chronometer the executor drives.
type Timer interface {
	Start(now time.Time, d time.Duration, m timer.Mode)
	Stop(now time.Time) bool
}

// SyllabusCursor is the project/chapter the planning view points at.
type SyllabusCursor struct {
	ProjectID string `json:"projectId,omitempty"`
	ChapterID string `json:"chapterId,omitempty"`
}

// Env is the state an Executor mutates. Every field except Log, Metrics and
// Now is required.
type Env struct {
	Layout   *layout.Registry
	Mode     *mode.Controller
	Tasks    *workspace.Tasks
	Projects *workspace.Projects
	Memory   *workspace.Memory
	Macros   *workspace.Macros
	Timer    Timer
	Syllabus *SyllabusCursor
	Notify   func(Notification)
	Now      func() time.Time
	Log      *slog.Logger
	Metrics  *metrics.Metrics
}

// Executor applies intents to an Env.
type Executor struct {
	env Env
	log *slog.Logger
}

// New creates an Executor over env.
func New(env Env) *Executor {
	if env.Now == nil {
		env.Now = time.Now
	}
	if env.Log == nil {
		env.Log = slog.Default()
	}
	if env.Notify == nil {
		env.Notify = func(Notification) {}
	}
	return &Executor{env: env, log: env.Log}
}

// Execute runs intents in order as one batch.
func (e *Executor) Execute(ins ...intent.Intent) []Outcome {
	b := e.NewBatch()
	out := make([]Outcome, 0, len(ins))
	for _, in := range ins {
		out = append(out, b.Execute(in))
	}
	return out
}

// NewBatch starts a batch for the intents of one utterance.
func (e *Executor) NewBatch() *Batch {
	return &Batch{e: e}
}

// Batch executes the intents of one logical change. It records at most one
// layout snapshot, holding the layout from before the first intent that
// visibly changed it, so a single revert undoes the whole utterance.
type Batch struct {
	e           *Executor
	snapshotted bool
}

// Execute handles one intent. It never panics.
func (b *Batch) Execute(in intent.Intent) (out Outcome) {
	e := b.e
	defer func() {
		if r := recover(); r != nil {
			e.env.Metrics.Panicked()
			e.log.Error("executor: handler panic",
				slog.String("kind", string(in.Kind)),
				slog.String("error", fmt.Sprint(r)))
			e.notify(LevelError, "Execution Error", fmt.Sprintf("Could not complete %s.", in.Kind))
			out = Outcome{Kind: in.Kind, Status: Failed, Message: fmt.Sprint(r)}
		}
		e.env.Metrics.Executed(string(out.Kind), string(out.Status))
	}()

	if !altersLayout(in.Kind) || b.snapshotted {
		return e.handle(in)
	}
	before := e.env.Layout.Windows()
	out = e.handle(in)
	b.snapshotted = e.env.Layout.Record(before)
	return out
}

func altersLayout(k intent.Kind) bool {
	switch k {
	case intent.ManageWindow, intent.ActivateMacro, intent.NavigateSyllabus, intent.StartTimer:
		return true
	}
	return false
}

func (e *Executor) handle(in intent.Intent) Outcome {
	switch in.Kind {
	case intent.CreateTask:
		return e.createTask(in)
	case intent.CreateEvent:
		return e.createEvent(in)
	case intent.UpdateTask:
		return e.updateTask(in)
	case intent.DeleteTask:
		return e.deleteTask(in)
	case intent.BreakDownTask:
		return e.breakDownTask(in)
	case intent.CreateProject:
		return e.createProject(in)
	case intent.UpdateMemory:
		return e.updateMemory(in)
	case intent.StartTimer:
		return e.startTimer(in)
	case intent.StopTimer:
		return e.stopTimer(in)
	case intent.ManageWindow:
		return e.manageWindow(in)
	case intent.UpdateTheme:
		return e.updateTheme(in)
	case intent.SwitchMode:
		return e.switchMode(in)
	case intent.NavigateSyllabus:
		return e.navigateSyllabus(in)
	case intent.SaveMacro:
		return e.saveMacro(in)
	case intent.ActivateMacro:
		return e.activateMacro(in)
	case intent.FocusLock:
		return e.focusLock(in)
	case intent.RevertView:
		return e.revertView(in)
	case intent.Query:
		return e.query(in)
	case intent.Unknown:
		msg := in.Reasoning
		if msg == "" {
			msg = "Directive not recognised."
		}
		e.notify(LevelWarning, "Command Unknown", msg)
		return Outcome{Kind: in.Kind, Status: NoOp, Message: msg}
	default:
		e.log.Warn("executor: unrecognized intent dropped", slog.String("kind", string(in.Kind)))
		return Outcome{Kind: in.Kind, Status: Dropped}
	}
}

// malformed logs an intent whose required payload is missing.
func (e *Executor) malformed(in intent.Intent, field string) Outcome {
	e.log.Warn("executor: malformed intent",
		slog.String("kind", string(in.Kind)),
		slog.String("missing", field))
	return Outcome{Kind: in.Kind, Status: NoOp, Message: "missing " + field}
}

func (e *Executor) notify(level Level, title, msg string) {
	e.env.Notify(Notification{Level: level, Title: title, Message: msg, At: e.env.Now()})
}
