package dispatch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/jarvis/internal/approval"
	"github.com/starford/jarvis/internal/executor"
	"github.com/starford/jarvis/internal/intent"
	"github.com/starford/jarvis/internal/layout"
	"github.com/starford/jarvis/internal/metrics"
	"github.com/starford/jarvis/internal/mode"
	"github.com/starford/jarvis/internal/timer"
	"github.com/starford/jarvis/internal/workspace"
)

type harness struct {
	d     *Dispatcher
	env   executor.Env
	queue *approval.Queue
}

func newHarness(t *testing.T, p *Policy) *harness {
	t.Helper()
	ids := workspace.NewIDGen(nil)
	env := executor.Env{
		Layout:   layout.NewRegistry(layout.DefaultHistoryCapacity),
		Mode:     mode.NewController(),
		Tasks:    workspace.NewTasks(ids),
		Projects: workspace.NewProjects(ids),
		Memory:   workspace.NewMemory(),
		Macros:   workspace.NewMacros(),
		Timer:    timer.New(),
		Syllabus: &executor.SyllabusCursor{},
	}
	m := metrics.New(prometheus.NewRegistry())
	exec := executor.New(env)
	q := approval.NewQueue(exec, m)
	return &harness{d: New(p, exec, q, quietLogger(), m), env: env, queue: q}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func title(s string) *string { return &s }

func openTasks() intent.Intent {
	return intent.Intent{Kind: intent.ManageWindow, Window: &intent.WindowData{Batch: layout.Batch{
		Instructions: []layout.Instruction{{Target: layout.KindTasks, Action: layout.ActionOpen}},
	}}}
}

func TestApprovalIsolation(t *testing.T) {
	t.Parallel()
	h := newHarness(t, DefaultPolicy())

	rep := h.d.Dispatch([]intent.Intent{
		{Kind: intent.CreateTask, Task: &intent.TaskData{Title: title("Pay rent")}},
		openTasks(),
	}, false)

	assert.Len(t, rep.Executed, 1)
	require.Len(t, rep.Queued, 1)
	assert.True(t, h.env.Layout.IsOpen(layout.KindTasks))
	assert.Empty(t, h.env.Tasks.List())
	assert.Equal(t, 1, h.queue.Len())

	_, err := h.queue.Approve(rep.Queued[0].ID)
	require.NoError(t, err)
	tasks := h.env.Tasks.List()
	require.Len(t, tasks, 1)
	assert.Equal(t, "Pay rent", tasks[0].Title)
	assert.Zero(t, h.queue.Len())
}

func TestBypassExecutesEverything(t *testing.T) {
	t.Parallel()
	h := newHarness(t, DefaultPolicy())
	rep := h.d.Dispatch([]intent.Intent{
		{Kind: intent.CreateTask},
		{Kind: intent.CreateProject},
	}, true)
	assert.Len(t, rep.Executed, 2)
	assert.Empty(t, rep.Queued)
	assert.Zero(t, h.queue.Len())
}

func TestUnknownAndQueryNeverQueue(t *testing.T) {
	t.Parallel()
	h := newHarness(t, NewPolicy(nil))
	rep := h.d.Dispatch([]intent.Intent{
		{Kind: intent.Unknown},
		intent.QueryIntent("hello"),
		{Kind: "SELF_DESTRUCT"},
	}, false)
	assert.Len(t, rep.Executed, 2)
	assert.Empty(t, rep.Queued)
	assert.Equal(t, []intent.Kind{"SELF_DESTRUCT"}, rep.Dropped)
}

func TestLaterIntentsSeeEarlierEffects(t *testing.T) {
	t.Parallel()
	h := newHarness(t, DefaultPolicy())
	size := 2.0
	h.d.Dispatch([]intent.Intent{
		openTasks(),
		{Kind: intent.ManageWindow, Window: &intent.WindowData{Batch: layout.Batch{
			Instructions: []layout.Instruction{{Target: layout.KindTasks, Action: layout.ActionResize, Size: &size}},
		}}},
	}, false)
	w, ok := h.env.Layout.Get(layout.KindTasks)
	require.True(t, ok)
	assert.Equal(t, 2.0, w.Weight)
	assert.Equal(t, 1, h.env.Layout.HistoryLen())
}

func TestLoadPolicyFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auto_execute:\n  - manage-window\n  - CREATE_TASK\n"), 0o644))

	kinds, err := LoadPolicyFile(path)
	require.NoError(t, err)
	assert.Equal(t, []intent.Kind{intent.ManageWindow, intent.CreateTask}, kinds)

	require.NoError(t, os.WriteFile(path, []byte("auto_execute: [launch-rockets]\n"), 0o644))
	_, err = LoadPolicyFile(path)
	assert.Error(t, err)
}

func TestWatchPolicyReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auto_execute: [query]\n"), 0o644))

	p := DefaultPolicy()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reloaded := make(chan struct{}, 4)
	go WatchPolicy(ctx, p, path, quietLogger(), func(*Policy) { reloaded <- struct{}{} })

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("auto_execute: [create-task]\n"), 0o644))

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("policy not reloaded")
	}
	assert.True(t, p.Allows(intent.CreateTask))
	assert.False(t, p.Allows(intent.ManageWindow))
}
