package executor

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/starford/jarvis/internal/apperr"
	"github.com/starford/jarvis/internal/intent"
	"github.com/starford/jarvis/internal/layout"
	"github.com/starford/jarvis/internal/mode"
	"github.com/starford/jarvis/internal/timer"
)

// SyllabusPercent is the share the projects panel takes when navigating.
const SyllabusPercent = 60

func (e *Executor) startTimer(in intent.Intent) Outcome {
	var (
		d time.Duration
		m = timer.Pomodoro
	)
	if in.Timer != nil {
		if in.Timer.Duration != nil && *in.Timer.Duration > 0 {
			d = time.Duration(*in.Timer.Duration) * time.Minute
		}
		m = timer.ParseMode(in.Timer.Mode)
	}
	e.env.Timer.Start(e.env.Now(), d, m)

	if _, err := e.env.Layout.Open(layout.KindChrono, ""); errors.Is(err, apperr.ErrFocusLocked) {
		e.notify(LevelWarning, "Focus Lock Active", "Timer started; chronometer panel blocked.")
		return Outcome{Kind: in.Kind, Status: Blocked}
	}
	label := "Stopwatch running."
	if m == timer.Pomodoro {
		if d <= 0 {
			d = timer.DefaultPomodoro
		}
		label = fmt.Sprintf("%d minute countdown.", int(d/time.Minute))
	}
	e.notify(LevelInfo, "Timer Started", label)
	return Outcome{Kind: in.Kind, Status: Applied}
}

func (e *Executor) stopTimer(in intent.Intent) Outcome {
	if !e.env.Timer.Stop(e.env.Now()) {
		return Outcome{Kind: in.Kind, Status: NoOp}
	}
	e.notify(LevelInfo, "Timer Stopped", "")
	return Outcome{Kind: in.Kind, Status: Applied}
}

func (e *Executor) manageWindow(in intent.Intent) Outcome {
	if in.Window == nil {
		return e.malformed(in, "windowData")
	}
	res := e.env.Layout.Apply(in.Window.Batch)
	for _, sk := range res.Skipped {
		e.log.Debug("executor: window instruction skipped",
			slog.String("target", string(sk.Target)),
			slog.String("action", string(sk.Action)))
	}
	if len(res.Blocked) > 0 {
		e.notify(LevelWarning, "Focus Lock Active", fmt.Sprintf("Blocked: %s.", joinKinds(res.Blocked)))
		if !res.Changed() {
			return Outcome{Kind: in.Kind, Status: Blocked}
		}
	}
	if !res.Changed() {
		return Outcome{Kind: in.Kind, Status: NoOp}
	}
	return Outcome{Kind: in.Kind, Status: Applied}
}

func (e *Executor) updateTheme(in intent.Intent) Outcome {
	if in.UI == nil {
		return e.malformed(in, "uiData.theme")
	}
	th, err := mode.ParseTheme(in.UI.Theme)
	if err != nil {
		return e.malformed(in, "uiData.theme")
	}
	e.env.Mode.SetTheme(th)
	return Outcome{Kind: in.Kind, Status: Applied, Message: string(th)}
}

func (e *Executor) switchMode(in intent.Intent) Outcome {
	if in.Mode == nil {
		return e.malformed(in, "modeData.mode")
	}
	m, err := mode.ParseMode(in.Mode.Mode)
	if err != nil {
		return e.malformed(in, "modeData.mode")
	}
	e.env.Mode.SetMode(m)
	e.notify(LevelInfo, "Mode Switched", string(m))
	return Outcome{Kind: in.Kind, Status: Applied, Message: string(m)}
}

func (e *Executor) navigateSyllabus(in intent.Intent) Outcome {
	e.env.Mode.SetMode(mode.Plan)

	if in.Navigation != nil && e.env.Syllabus != nil {
		if in.Navigation.ProjectID != "" {
			if _, ok := e.env.Projects.Find(in.Navigation.ProjectID); !ok {
				e.notify(LevelWarning, "Project Not Found", in.Navigation.ProjectID)
			}
		}
		*e.env.Syllabus = SyllabusCursor{ProjectID: in.Navigation.ProjectID, ChapterID: in.Navigation.ChapterID}
	}

	if _, err := e.env.Layout.Open(layout.KindProjects, ""); err != nil {
		e.notify(LevelWarning, "Focus Lock Active", "Syllabus panel blocked.")
		return Outcome{Kind: in.Kind, Status: Blocked}
	}
	_ = e.env.Layout.SetSizeByPercent(layout.KindProjects, SyllabusPercent)
	return Outcome{Kind: in.Kind, Status: Applied}
}

func (e *Executor) saveMacro(in intent.Intent) Outcome {
	if in.Macro == nil || strings.TrimSpace(in.Macro.Name) == "" {
		return e.malformed(in, "macroData.name")
	}
	name := strings.TrimSpace(in.Macro.Name)
	e.env.Macros.Put(name, e.env.Layout.Windows())
	e.notify(LevelSuccess, "Layout Saved", name)
	return Outcome{Kind: in.Kind, Status: Applied, Message: name}
}

func (e *Executor) activateMacro(in intent.Intent) Outcome {
	if in.Macro == nil || strings.TrimSpace(in.Macro.Name) == "" {
		return e.malformed(in, "macroData.name")
	}
	mc, ok := e.env.Macros.Find(in.Macro.Name)
	if !ok {
		e.notify(LevelWarning, "Macro Not Found", in.Macro.Name)
		return Outcome{Kind: in.Kind, Status: NotFound}
	}
	b := layout.Batch{ClearHUD: true, Instructions: make([]layout.Instruction, 0, len(mc.Windows))}
	for _, w := range mc.Windows {
		weight := w.Weight
		b.Instructions = append(b.Instructions, layout.Instruction{
			Target: w.Kind, Action: layout.ActionOpen, Size: &weight, Title: w.Title,
		})
	}
	res := e.env.Layout.Apply(b)
	if len(res.Blocked) > 0 {
		e.notify(LevelWarning, "Focus Lock Active", fmt.Sprintf("Blocked: %s.", joinKinds(res.Blocked)))
	}
	e.notify(LevelSuccess, "Layout Restored", mc.Name)
	return Outcome{Kind: in.Kind, Status: Applied, Message: mc.Name}
}

func (e *Executor) focusLock(in intent.Intent) Outcome {
	if in.Focus == nil {
		return e.malformed(in, "focusData.lock")
	}
	e.env.Layout.SetFocusLock(in.Focus.Lock)
	if in.Focus.Lock {
		e.notify(LevelInfo, "Focus Lock Engaged", "New panels are blocked.")
	} else {
		e.notify(LevelInfo, "Focus Lock Released", "")
	}
	return Outcome{Kind: in.Kind, Status: Applied}
}

func (e *Executor) revertView(in intent.Intent) Outcome {
	if !e.env.Layout.Revert() {
		e.notify(LevelInfo, "No History Available", "")
		return Outcome{Kind: in.Kind, Status: NoOp, Message: apperr.ErrNoHistory.Error()}
	}
	e.notify(LevelInfo, "View Reverted", "")
	return Outcome{Kind: in.Kind, Status: Applied}
}

func (e *Executor) query(in intent.Intent) Outcome {
	text := strings.TrimSpace(in.QueryResponse)
	if text == "" {
		text = strings.TrimSpace(in.Reasoning)
	}
	if text == "" {
		return Outcome{Kind: in.Kind, Status: NoOp}
	}
	e.notify(LevelInfo, "J.A.R.V.I.S.", text)
	// A blocked chat panel still leaves the notification visible.
	_, _ = e.env.Layout.Open(layout.KindChat, "")
	return Outcome{Kind: in.Kind, Status: Applied, Message: text}
}

func joinKinds(ks []layout.Kind) string {
	s := make([]string, len(ks))
	for i, k := range ks {
		s[i] = string(k)
	}
	return strings.Join(s, ", ")
}
