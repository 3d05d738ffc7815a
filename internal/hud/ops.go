package hud

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/jarvis/internal/apperr"
	"github.com/starford/jarvis/internal/approval"
	"github.com/starford/jarvis/internal/dispatch"
	"github.com/starford/jarvis/internal/executor"
	"github.com/starford/jarvis/internal/intent"
	"github.com/starford/jarvis/internal/layout"
	"github.com/starford/jarvis/internal/mode"
	"github.com/starford/jarvis/internal/models"
	"github.com/starford/jarvis/internal/nlu"
)

// Command is one typed or transcribed utterance.
type Command struct {
	Text          string `json:"text"`
	Surface       string `json:"surface,omitempty"`
	Persona       string `json:"persona,omitempty"`
	ContextTaskID string `json:"contextTaskId,omitempty"`
}

// State returns a snapshot of the HUD.
func (s *Session) State(ctx context.Context) (State, error) {
	return call(ctx, s, func() (State, error) { return s.snapshot(), nil })
}

// Submit resolves cmd through the NLU layer and dispatches the result. A
// second command from the same surface while one is outstanding fails with
// apperr.ErrBusy; other surfaces are independent.
func (s *Session) Submit(ctx context.Context, cmd Command) (dispatch.Report, error) {
	if strings.TrimSpace(cmd.Text) == "" {
		return dispatch.Report{}, fmt.Errorf("hud: empty command: %w", apperr.ErrInvalid)
	}
	surface := cmd.Surface
	if surface == "" {
		surface = DefaultSurface
	}

	// A dropped caller does not cancel an accepted utterance; the NLU
	// timeout still bounds the parse.
	ctx = context.WithoutCancel(ctx)

	req, err := call(ctx, s, func() (nlu.Request, error) {
		if s.busy[surface] {
			return nlu.Request{}, fmt.Errorf("hud: surface %s: %w", surface, apperr.ErrBusy)
		}
		s.busy[surface] = true
		s.commit(topicStatus)
		return s.nluRequest(cmd), nil
	})
	if err != nil {
		return dispatch.Report{}, err
	}
	defer func() {
		_ = s.do(context.Background(), func() {
			delete(s.busy, surface)
			s.commit(topicStatus)
		})
	}()

	intents := s.parser.Parse(ctx, req)
	s.log.Debug("hud: command parsed",
		slog.String("surface", surface),
		slog.Int("intents", len(intents)))

	return call(ctx, s, func() (dispatch.Report, error) {
		return s.dispatch(intents), nil
	})
}

func (s *Session) nluRequest(cmd Command) nlu.Request {
	persona := s.cfg.Persona
	if cmd.Persona != "" {
		persona = nlu.ParsePersona(cmd.Persona)
	}
	return nlu.Request{
		Text:          cmd.Text,
		APIKey:        s.settings.GroqAPIKey,
		Models:        s.settings.Models,
		Persona:       persona,
		Memory:        s.memory.List(),
		Tasks:         s.tasks.List(),
		Projects:      s.projects.List(),
		ContextTaskID: cmd.ContextTaskID,
		Now:           s.now(),
	}
}

// Dispatch routes pre-parsed intents, e.g. from MCP clients.
func (s *Session) Dispatch(ctx context.Context, intents []intent.Intent) (dispatch.Report, error) {
	return call(ctx, s, func() (dispatch.Report, error) {
		return s.dispatch(intents), nil
	})
}

func (s *Session) dispatch(intents []intent.Intent) dispatch.Report {
	rep := s.dispatcher.Dispatch(intents, s.mode.BypassApproval())
	s.commit(topicAll)
	return rep
}

// ToggleWindow closes kind if open and opens it otherwise.
func (s *Session) ToggleWindow(ctx context.Context, kind layout.Kind, title string) (bool, error) {
	return call(ctx, s, func() (bool, error) {
		open, err := s.layout.Toggle(kind, title)
		if err != nil {
			return false, err
		}
		s.commit(topicLayout)
		return open, nil
	})
}

// OpenWindow opens kind, reporting whether it was already open.
func (s *Session) OpenWindow(ctx context.Context, kind layout.Kind, title string) (layout.OpenResult, error) {
	return call(ctx, s, func() (layout.OpenResult, error) {
		res, err := s.layout.Open(kind, title)
		if err != nil {
			return res, err
		}
		if res == layout.Opened {
			s.commit(topicLayout)
		}
		return res, nil
	})
}

// CloseWindow closes kind. Closing is allowed under focus lock.
func (s *Session) CloseWindow(ctx context.Context, kind layout.Kind) (bool, error) {
	return call(ctx, s, func() (bool, error) {
		ok := s.layout.Close(string(kind))
		if ok {
			s.commit(topicLayout)
		}
		return ok, nil
	})
}

// ResizeWindow sets a raw weight on kind.
func (s *Session) ResizeWindow(ctx context.Context, kind layout.Kind, weight float64) error {
	_, err := call(ctx, s, func() (struct{}, error) {
		if weight <= 0 {
			return struct{}{}, fmt.Errorf("hud: weight %v: %w", weight, apperr.ErrInvalid)
		}
		if !s.layout.Resize(string(kind), weight) {
			return struct{}{}, fmt.Errorf("hud: resize %s: %w", kind, apperr.ErrNotFound)
		}
		s.commit(topicLayout)
		return struct{}{}, nil
	})
	return err
}

// SetWindowPercent gives kind percent of the row, spreading the rest.
func (s *Session) SetWindowPercent(ctx context.Context, kind layout.Kind, percent float64) error {
	_, err := call(ctx, s, func() (struct{}, error) {
		if err := s.layout.SetSizeByPercent(kind, percent); err != nil {
			return struct{}{}, err
		}
		s.commit(topicLayout)
		return struct{}{}, nil
	})
	return err
}

// ApplyLayout runs a batch as one undoable change.
func (s *Session) ApplyLayout(ctx context.Context, b layout.Batch) (layout.BatchResult, error) {
	return call(ctx, s, func() (layout.BatchResult, error) {
		before := s.layout.Windows()
		res := s.layout.Apply(b)
		s.layout.Record(before)
		s.commit(topicLayout)
		return res, nil
	})
}

// Revert undoes the last layout change. It reports false, without error,
// when there is no history.
func (s *Session) Revert(ctx context.Context) (bool, error) {
	return call(ctx, s, func() (bool, error) {
		ok := s.layout.Revert()
		if ok {
			s.notify(executor.Notification{Level: executor.LevelInfo, Title: "View Reverted", At: s.now()})
		} else {
			s.notify(executor.Notification{Level: executor.LevelInfo, Title: "No History Available", At: s.now()})
		}
		s.commit(topicLayout)
		return ok, nil
	})
}

// ApplyPreset switches to m and lays the HUD out with its preset.
func (s *Session) ApplyPreset(ctx context.Context, m mode.Mode) (layout.BatchResult, error) {
	return call(ctx, s, func() (layout.BatchResult, error) {
		before := s.layout.Windows()
		s.mode.SetMode(m)
		res := s.layout.Apply(mode.Preset(m))
		s.layout.Record(before)
		s.commit(topicLayout | topicMode)
		return res, nil
	})
}

// SetMode changes the mode without touching the layout.
func (s *Session) SetMode(ctx context.Context, m mode.Mode) error {
	return s.do(ctx, func() {
		s.mode.SetMode(m)
		s.commit(topicMode)
	})
}

// SetTheme changes the stored theme.
func (s *Session) SetTheme(ctx context.Context, t mode.Theme) error {
	return s.do(ctx, func() {
		s.mode.SetTheme(t)
		s.commit(topicMode)
	})
}

// SetAlert toggles combat mode: red effective theme and no approval gate.
func (s *Session) SetAlert(ctx context.Context, on bool) error {
	return s.do(ctx, func() {
		s.mode.SetAlert(on)
		s.commit(topicMode)
	})
}

// SetFocusLock toggles focus lock.
func (s *Session) SetFocusLock(ctx context.Context, on bool) error {
	return s.do(ctx, func() {
		s.layout.SetFocusLock(on)
		s.commit(topicLayout)
	})
}

// Pending lists the approval queue.
func (s *Session) Pending(ctx context.Context) ([]approval.Pending, error) {
	return call(ctx, s, func() ([]approval.Pending, error) { return s.queue.List(), nil })
}

// Approve executes one pending action.
func (s *Session) Approve(ctx context.Context, id string) (executor.Outcome, error) {
	return call(ctx, s, func() (executor.Outcome, error) {
		out, err := s.queue.Approve(id)
		if err != nil {
			return out, err
		}
		s.commit(topicAll)
		return out, nil
	})
}

// Reject discards one pending action.
func (s *Session) Reject(ctx context.Context, id string) error {
	_, err := call(ctx, s, func() (struct{}, error) {
		if err := s.queue.Reject(id); err != nil {
			return struct{}{}, err
		}
		s.commit(topicApprovals)
		return struct{}{}, nil
	})
	return err
}

// ApproveAll executes every pending action.
func (s *Session) ApproveAll(ctx context.Context) ([]executor.Outcome, error) {
	return call(ctx, s, func() ([]executor.Outcome, error) {
		out := s.queue.ApproveAll()
		s.commit(topicAll)
		return out, nil
	})
}

// RejectAll discards every pending action.
func (s *Session) RejectAll(ctx context.Context) (int, error) {
	return call(ctx, s, func() (int, error) {
		n := s.queue.RejectAll()
		s.commit(topicApprovals)
		return n, nil
	})
}

// Modify converts a pending creation into the manual-entry draft.
func (s *Session) Modify(ctx context.Context, id string) (models.Task, error) {
	return call(ctx, s, func() (models.Task, error) {
		draft, err := s.queue.Modify(id)
		if err != nil {
			return draft, err
		}
		s.draft = &draft
		s.commit(topicApprovals | topicStatus)
		return draft, nil
	})
}

// AddTask is the manual entry path. It clears any pending draft.
func (s *Session) AddTask(ctx context.Context, t models.Task) (models.Task, error) {
	return call(ctx, s, func() (models.Task, error) {
		if strings.TrimSpace(t.Title) == "" {
			return models.Task{}, fmt.Errorf("hud: task title: %w", apperr.ErrInvalid)
		}
		added := s.tasks.Add(t)
		s.draft = nil
		s.notify(executor.Notification{Level: executor.LevelSuccess, Title: "Task Created", Message: added.Title, At: s.now()})
		s.commit(topicWorkspace | topicStatus)
		return added, nil
	})
}

// UpdateTask replaces a task from the edit form.
func (s *Session) UpdateTask(ctx context.Context, t models.Task) (models.Task, error) {
	return call(ctx, s, func() (models.Task, error) {
		if !s.tasks.Put(t) {
			return models.Task{}, fmt.Errorf("hud: task %s: %w", t.ID, apperr.ErrNotFound)
		}
		s.commit(topicWorkspace)
		got, _ := s.tasks.Find(t.ID)
		return got, nil
	})
}

// ToggleSubtask flips a checklist item.
func (s *Session) ToggleSubtask(ctx context.Context, taskID, subtaskID string) error {
	_, err := call(ctx, s, func() (struct{}, error) {
		if !s.tasks.ToggleSubtask(taskID, subtaskID) {
			return struct{}{}, fmt.Errorf("hud: subtask %s/%s: %w", taskID, subtaskID, apperr.ErrNotFound)
		}
		s.commit(topicWorkspace)
		return struct{}{}, nil
	})
	return err
}

// DiscardDraft drops the manual-entry draft.
func (s *Session) DiscardDraft(ctx context.Context) error {
	return s.do(ctx, func() {
		s.draft = nil
		s.commit(topicStatus)
	})
}

// Brief generates the daily briefing and opens the briefing panel.
func (s *Session) Brief(ctx context.Context, username string) (string, error) {
	if s.briefer == nil {
		return "", fmt.Errorf("hud: briefing: %w", apperr.ErrNotFound)
	}
	req, err := call(ctx, s, func() (nlu.BriefRequest, error) {
		return nlu.BriefRequest{
			APIKey:   s.settings.GroqAPIKey,
			Model:    s.settings.Models.Vision,
			Username: username,
			Tasks:    s.tasks.List(),
			Events:   s.tasks.Events(),
			Memory:   s.memory.List(),
			Now:      s.now(),
		}, nil
	})
	if err != nil {
		return "", err
	}
	text := s.briefer.Brief(ctx, req)
	return call(ctx, s, func() (string, error) {
		s.briefing = text
		_, _ = s.layout.Open(layout.KindBriefing, "")
		s.commit(topicLayout | topicStatus)
		return text, nil
	})
}
