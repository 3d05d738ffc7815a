package hud

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/jarvis/internal/apperr"
	"github.com/starford/jarvis/internal/intent"
	"github.com/starford/jarvis/internal/layout"
	"github.com/starford/jarvis/internal/mode"
	"github.com/starford/jarvis/internal/models"
	"github.com/starford/jarvis/internal/nlu"
	"github.com/starford/jarvis/internal/sse"
)

type fakeParser struct {
	gate    chan struct{}
	intents []intent.Intent
	calls   chan nlu.Request
}

func (p *fakeParser) Parse(ctx context.Context, req nlu.Request) []intent.Intent {
	if p.calls != nil {
		p.calls <- req
	}
	if p.gate != nil {
		select {
		case <-p.gate:
		case <-ctx.Done():
		}
	}
	return p.intents
}

type fakeBriefer struct{ text string }

func (b fakeBriefer) Brief(context.Context, nlu.BriefRequest) string { return b.text }

type memStore struct {
	mu    sync.Mutex
	data  map[string]*models.UserData
	fail  bool
	saves chan *models.UserData
}

func newMemStore() *memStore {
	return &memStore{data: map[string]*models.UserData{}, saves: make(chan *models.UserData, 16)}
}

func (m *memStore) Load(_ context.Context, key string) (*models.UserData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memStore) Save(_ context.Context, key string, d *models.UserData) error {
	m.mu.Lock()
	fail := m.fail
	if !fail {
		m.data[key] = d
	}
	m.mu.Unlock()
	m.saves <- d
	if fail {
		return errors.New("backend unreachable")
	}
	return nil
}

type recorder struct {
	mu     sync.Mutex
	events []sse.Event
}

func (r *recorder) PublishChange(evs []sse.Event, _ any) {
	r.mu.Lock()
	r.events = append(r.events, evs...)
	r.mu.Unlock()
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

type env struct {
	s      *Session
	parser *fakeParser
	store  *memStore
	pub    *recorder
}

func start(t *testing.T, parser *fakeParser) *env {
	t.Helper()
	if parser == nil {
		parser = &fakeParser{}
	}
	e := &env{parser: parser, store: newMemStore(), pub: &recorder{}}
	e.s = New(Config{UserKey: "tony"}, Deps{
		Parser:    parser,
		Briefer:   fakeBriefer{text: "All systems nominal."},
		Store:     e.store,
		Publisher: e.pub,
		Logger:    slog.New(slog.NewJSONHandler(io.Discard, nil)),
	})
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); _ = e.s.Run(ctx) }()
	go func() { defer wg.Done(); _ = e.s.RunSaver(ctx) }()
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})
	return e
}

func title(s string) *string { return &s }

func TestLoadFallsBackToDemoData(t *testing.T) {
	e := start(t, nil)
	ctx := context.Background()
	require.NoError(t, e.s.Load(ctx))

	st, err := e.s.State(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, st.Workspace.Tasks)
	assert.NotEmpty(t, st.Workspace.Projects)
	assert.True(t, st.Status.Loaded)
	assert.False(t, st.Status.Offline)
}

func TestLoadRestoresStoredData(t *testing.T) {
	e := start(t, nil)
	e.store.data["tony"] = &models.UserData{
		Tasks: []models.Task{{ID: "1", Title: "Stored"}},
		Settings: models.Settings{LayoutMacros: []models.LayoutMacro{{
			Name: "Focus", Windows: []layout.Window{{Kind: layout.KindTasks}},
		}}},
	}
	ctx := context.Background()
	require.NoError(t, e.s.Load(ctx))

	st, _ := e.s.State(ctx)
	require.Len(t, st.Workspace.Tasks, 1)
	assert.Equal(t, "Stored", st.Workspace.Tasks[0].Title)
	assert.Len(t, st.Workspace.Macros, 1)
}

func TestSubmitApprovalFlow(t *testing.T) {
	e := start(t, &fakeParser{intents: []intent.Intent{
		{Kind: intent.CreateTask, Task: &intent.TaskData{Title: title("Pay rent")}},
		{Kind: intent.ManageWindow, Window: &intent.WindowData{Batch: layout.Batch{
			Instructions: []layout.Instruction{{Target: layout.KindTasks, Action: layout.ActionOpen}},
		}}},
	}})
	ctx := context.Background()
	require.NoError(t, e.s.Load(ctx))

	rep, err := e.s.Submit(ctx, Command{Text: "add pay rent and show tasks"})
	require.NoError(t, err)
	require.Len(t, rep.Queued, 1)

	st, _ := e.s.State(ctx)
	assert.Len(t, st.Pending, 1)
	assert.Equal(t, layout.KindTasks, st.Layout.Windows[0].Kind)
	before := len(st.Workspace.Tasks)

	_, err = e.s.Approve(ctx, rep.Queued[0].ID)
	require.NoError(t, err)
	st, _ = e.s.State(ctx)
	assert.Empty(t, st.Pending)
	assert.Len(t, st.Workspace.Tasks, before+1)
	assert.Contains(t, e.pub.types(), sse.TypeApprovals)
	assert.Contains(t, e.pub.types(), sse.TypeNotification)
}

func TestSubmitBusyPerSurface(t *testing.T) {
	p := &fakeParser{gate: make(chan struct{}), calls: make(chan nlu.Request, 4)}
	e := start(t, p)
	ctx := context.Background()

	first := make(chan error, 1)
	go func() {
		_, err := e.s.Submit(ctx, Command{Text: "one", Surface: "voice"})
		first <- err
	}()
	<-p.calls

	_, err := e.s.Submit(ctx, Command{Text: "two", Surface: "voice"})
	assert.ErrorIs(t, err, apperr.ErrBusy)

	other := make(chan error, 1)
	go func() {
		_, err := e.s.Submit(ctx, Command{Text: "three", Surface: "chat"})
		other <- err
	}()
	<-p.calls

	st, _ := e.s.State(ctx)
	assert.Equal(t, []string{"chat", "voice"}, st.Status.Busy)

	close(p.gate)
	require.NoError(t, <-first)
	require.NoError(t, <-other)

	_, err = e.s.Submit(ctx, Command{Text: "four", Surface: "voice"})
	assert.NoError(t, err)
}

func TestSubmitSurvivesCallerCancel(t *testing.T) {
	p := &fakeParser{
		gate:  make(chan struct{}),
		calls: make(chan nlu.Request, 1),
		intents: []intent.Intent{{Kind: intent.ManageWindow, Window: &intent.WindowData{Batch: layout.Batch{
			Instructions: []layout.Instruction{{Target: layout.KindTasks, Action: layout.ActionOpen}},
		}}}},
	}
	e := start(t, p)
	callerCtx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := e.s.Submit(callerCtx, Command{Text: "open tasks", Surface: "voice"})
		done <- err
	}()
	<-p.calls
	cancel()
	close(p.gate)
	require.NoError(t, <-done)

	st, err := e.s.State(context.Background())
	require.NoError(t, err)
	require.Len(t, st.Layout.Windows, 1)
	assert.Equal(t, layout.KindTasks, st.Layout.Windows[0].Kind)
	assert.Empty(t, st.Status.Busy)
}

func TestSubmitRejectsEmptyText(t *testing.T) {
	e := start(t, nil)
	_, err := e.s.Submit(context.Background(), Command{Text: "   "})
	assert.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestAlertBypassesApproval(t *testing.T) {
	e := start(t, nil)
	ctx := context.Background()
	require.NoError(t, e.s.SetAlert(ctx, true))

	rep, err := e.s.Dispatch(ctx, []intent.Intent{{Kind: intent.DeleteTask, Task: &intent.TaskData{ID: "t-1"}}})
	require.NoError(t, err)
	assert.Len(t, rep.Executed, 1)
	assert.Empty(t, rep.Queued)

	st, _ := e.s.State(ctx)
	assert.Equal(t, mode.Red, st.Mode.EffectiveTheme)
	assert.Equal(t, mode.Cyan, st.Mode.Theme)
}

func TestSaveFailureGoesOffline(t *testing.T) {
	e := start(t, nil)
	ctx := context.Background()
	require.NoError(t, e.s.Load(ctx))
	<-e.store.saves

	e.store.mu.Lock()
	e.store.fail = true
	e.store.mu.Unlock()

	added, err := e.s.AddTask(ctx, models.Task{Title: "kept locally"})
	require.NoError(t, err)
	<-e.store.saves

	assert.Eventually(t, func() bool {
		st, _ := e.s.State(ctx)
		return st.Status.Offline
	}, 2*time.Second, 10*time.Millisecond)

	st, _ := e.s.State(ctx)
	var found bool
	for _, task := range st.Workspace.Tasks {
		if task.ID == added.ID {
			found = true
		}
	}
	assert.True(t, found, "failed save must not roll back state")
}

func TestModifyProducesDraft(t *testing.T) {
	e := start(t, nil)
	ctx := context.Background()
	rep, err := e.s.Dispatch(ctx, []intent.Intent{{Kind: intent.CreateEvent, Event: &intent.EventData{Title: "Board meeting"}}})
	require.NoError(t, err)
	require.Len(t, rep.Queued, 1)

	draft, err := e.s.Modify(ctx, rep.Queued[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "draft", draft.ID)

	st, _ := e.s.State(ctx)
	require.NotNil(t, st.Draft)
	assert.Equal(t, "Board meeting", st.Draft.Title)
	assert.Empty(t, st.Pending)

	_, err = e.s.AddTask(ctx, *st.Draft)
	require.NoError(t, err)
	st, _ = e.s.State(ctx)
	assert.Nil(t, st.Draft)
}

func TestLayoutOperations(t *testing.T) {
	e := start(t, nil)
	ctx := context.Background()

	open, err := e.s.ToggleWindow(ctx, layout.KindTasks, "")
	require.NoError(t, err)
	assert.True(t, open)
	_, err = e.s.OpenWindow(ctx, layout.KindMemory, "")
	require.NoError(t, err)
	_, err = e.s.OpenWindow(ctx, layout.KindChat, "")
	require.NoError(t, err)

	require.NoError(t, e.s.SetWindowPercent(ctx, layout.KindTasks, 70))
	st, _ := e.s.State(ctx)
	assert.Equal(t, 70.0, st.Layout.Windows[0].Weight)
	assert.Equal(t, 15.0, st.Layout.Windows[1].Weight)

	assert.ErrorIs(t, e.s.ResizeWindow(ctx, layout.KindWeather, 2), apperr.ErrNotFound)
	assert.ErrorIs(t, e.s.SetWindowPercent(ctx, layout.KindWeather, 50), apperr.ErrNotFound)

	_, err = e.s.ApplyPreset(ctx, mode.Plan)
	require.NoError(t, err)
	st, _ = e.s.State(ctx)
	assert.Equal(t, mode.Plan, st.Mode.Mode)
	assert.Len(t, st.Layout.Windows, 2)

	ok, err := e.s.Revert(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	st, _ = e.s.State(ctx)
	assert.Len(t, st.Layout.Windows, 3)

	ok, err = e.s.Revert(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, e.s.SetFocusLock(ctx, true))
	_, err = e.s.OpenWindow(ctx, layout.KindWeather, "")
	assert.ErrorIs(t, err, apperr.ErrFocusLocked)
	closed, err := e.s.CloseWindow(ctx, layout.KindChat)
	require.NoError(t, err)
	assert.True(t, closed)
}

func TestBriefOpensPanel(t *testing.T) {
	e := start(t, nil)
	ctx := context.Background()
	text, err := e.s.Brief(ctx, "Tony")
	require.NoError(t, err)
	assert.Equal(t, "All systems nominal.", text)

	st, _ := e.s.State(ctx)
	assert.Equal(t, text, st.Briefing)
	assert.Equal(t, layout.KindBriefing, st.Layout.Windows[0].Kind)
}

func TestClosedSessionRejectsCalls(t *testing.T) {
	s := New(Config{UserKey: "tony"}, Deps{Parser: &fakeParser{}, Store: newMemStore(), Publisher: &recorder{}})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { _ = s.Run(ctx); close(done) }()
	cancel()
	<-done

	_, err := s.State(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestRunTwiceConflicts(t *testing.T) {
	e := start(t, nil)
	_, err := e.s.State(context.Background())
	require.NoError(t, err)
	assert.ErrorIs(t, e.s.Run(context.Background()), apperr.ErrConflict)
}
