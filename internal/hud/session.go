// Package hud owns the live HUD state for one user and serialises every
// mutation through a single event-loop goroutine.
//
// Callers never touch the registry, queue or domain stores directly: each
// operation is a closure handed to the loop, so the core stays
// single-threaded. The only work done outside the loop is the NLU call and
// persistence I/O.
package hud

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/starford/jarvis/internal/apperr"
	"github.com/starford/jarvis/internal/approval"
	"github.com/starford/jarvis/internal/dispatch"
	"github.com/starford/jarvis/internal/executor"
	"github.com/starford/jarvis/internal/layout"
	"github.com/starford/jarvis/internal/metrics"
	"github.com/starford/jarvis/internal/mode"
	"github.com/starford/jarvis/internal/models"
	"github.com/starford/jarvis/internal/nlu"
	"github.com/starford/jarvis/internal/sse"
	"github.com/starford/jarvis/internal/store"
	"github.com/starford/jarvis/internal/timer"
	"github.com/starford/jarvis/internal/workspace"
)

// ErrClosed is returned once the session loop has stopped.
var ErrClosed = errors.New("hud: session closed")

// DefaultSurface is used when a command names no input surface.
const DefaultSurface = "command"

// Publisher receives state changes for the browser.
type Publisher interface {
	PublishChange(events []sse.Event, sync any)
}

// Config tunes a Session.
type Config struct {
	UserKey         string
	HistoryCapacity int
	Persona         nlu.Persona
	SaveTimeout     time.Duration
}

// Deps are the collaborators a Session talks to. Parser, Store and
// Publisher are required.
type Deps struct {
	Parser    nlu.Parser
	Briefer   nlu.Briefer
	Store     store.Provider
	Publisher Publisher
	Policy    *dispatch.Policy
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Now       func() time.Time
}

// Session is the HUD core for one user.
type Session struct {
	cfg     Config
	parser  nlu.Parser
	briefer nlu.Briefer
	store   store.Provider
	pub     Publisher
	log     *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	// Loop-owned state.
	layout     *layout.Registry
	mode       *mode.Controller
	tasks      *workspace.Tasks
	projects   *workspace.Projects
	memory     *workspace.Memory
	macros     *workspace.Macros
	timer      *timer.Timer
	cursor     executor.SyllabusCursor
	exec       *executor.Executor
	queue      *approval.Queue
	dispatcher *dispatch.Dispatcher
	settings   models.Settings
	logs       []models.StudySessionLog
	busy       map[string]bool
	notes      []executor.Notification
	lastNote   *executor.Notification
	draft      *models.Task
	briefing   string
	offline    bool
	loaded     bool
	rev        uint64

	cmds    chan func()
	saveCh  chan *models.UserData
	stopped chan struct{}
	running atomic.Bool
}

// New wires a Session. Call Run to start its loop.
func New(cfg Config, deps Deps) *Session {
	if cfg.HistoryCapacity <= 0 {
		cfg.HistoryCapacity = layout.DefaultHistoryCapacity
	}
	if cfg.Persona == "" {
		cfg.Persona = nlu.Jarvis
	}
	if cfg.SaveTimeout <= 0 {
		cfg.SaveTimeout = 10 * time.Second
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Policy == nil {
		deps.Policy = dispatch.DefaultPolicy()
	}

	ids := workspace.NewIDGen(deps.Now)
	s := &Session{
		cfg:      cfg,
		parser:   deps.Parser,
		briefer:  deps.Briefer,
		store:    deps.Store,
		pub:      deps.Publisher,
		log:      deps.Logger,
		metrics:  deps.Metrics,
		now:      deps.Now,
		layout:   layout.NewRegistry(cfg.HistoryCapacity),
		mode:     mode.NewController(),
		tasks:    workspace.NewTasks(ids),
		projects: workspace.NewProjects(ids),
		memory:   workspace.NewMemory(),
		macros:   workspace.NewMacros(),
		timer:    timer.New(),
		busy:     map[string]bool{},
		cmds:     make(chan func()),
		saveCh:   make(chan *models.UserData, 1),
		stopped:  make(chan struct{}),
	}
	s.exec = executor.New(executor.Env{
		Layout:   s.layout,
		Mode:     s.mode,
		Tasks:    s.tasks,
		Projects: s.projects,
		Memory:   s.memory,
		Macros:   s.macros,
		Timer:    s.timer,
		Syllabus: &s.cursor,
		Notify:   s.notify,
		Now:      s.now,
		Log:      s.log,
		Metrics:  s.metrics,
	})
	s.queue = approval.NewQueue(s.exec, s.metrics)
	s.dispatcher = dispatch.New(deps.Policy, s.exec, s.queue, s.log, s.metrics)
	return s
}

// Run processes operations until ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("hud: session already running: %w", apperr.ErrConflict)
	}
	defer close(s.stopped)
	s.log.Info("hud: session loop started", slog.String("user", s.cfg.UserKey))
	for {
		select {
		case <-ctx.Done():
			s.log.Info("hud: session loop stopped")
			return nil
		case fn := <-s.cmds:
			s.runOne(fn)
		}
	}
}

func (s *Session) runOne(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("hud: operation panic", slog.String("error", fmt.Sprint(r)))
		}
	}()
	fn()
}

// do runs fn on the loop and waits for it. Once fn is queued the call
// waits for it to finish even if ctx is cancelled, so results are never
// read concurrently with the loop.
func (s *Session) do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	op := func() {
		defer close(done)
		fn()
	}
	select {
	case s.cmds <- op:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.stopped:
		return ErrClosed
	}
	select {
	case <-done:
		return nil
	case <-s.stopped:
		return ErrClosed
	}
}

// call runs fn on the loop and returns its result.
func call[T any](ctx context.Context, s *Session, fn func() (T, error)) (T, error) {
	var (
		v   T
		err error
	)
	if loopErr := s.do(ctx, func() { v, err = fn() }); loopErr != nil {
		var zero T
		return zero, loopErr
	}
	return v, err
}

// notify is the executor's notification sink; it runs on the loop.
func (s *Session) notify(n executor.Notification) {
	s.notes = append(s.notes, n)
	s.lastNote = &n
}
