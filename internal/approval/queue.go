// Package approval holds intents awaiting explicit user authorization.
package approval

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/starford/jarvis/internal/apperr"
	"github.com/starford/jarvis/internal/executor"
	"github.com/starford/jarvis/internal/intent"
	"github.com/starford/jarvis/internal/metrics"
	"github.com/starford/jarvis/internal/models"
)

// DraftID marks a task pre-filled from a pending action but not yet saved.
const DraftID = "draft"

// Executor runs approved intents.
type Executor interface {
	Execute(ins ...intent.Intent) []executor.Outcome
}

// Pending is an intent wrapped with a queue-local id.
type Pending struct {
	ID         string        `json:"id"`
	Intent     intent.Intent `json:"intent"`
	Modifiable bool          `json:"modifiable"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// Queue is the single owner of pending actions. It is not safe for
// concurrent use.
type Queue struct {
	items   []Pending
	exec    Executor
	now     func() time.Time
	metrics *metrics.Metrics
}

// NewQueue creates an empty queue delegating approvals to exec.
func NewQueue(exec Executor, m *metrics.Metrics) *Queue {
	return &Queue{items: []Pending{}, exec: exec, now: time.Now, metrics: m}
}

// Enqueue wraps in with a fresh id and appends it.
func (q *Queue) Enqueue(in intent.Intent) Pending {
	p := Pending{ID: uuid.NewString(), Intent: in, Modifiable: in.Kind.Modifiable(), CreatedAt: q.now()}
	q.items = append(q.items, p)
	q.metrics.Pending(len(q.items))
	return p
}

// List returns the pending actions in arrival order.
func (q *Queue) List() []Pending {
	return slices.Clone(q.items)
}

// Len returns the number of pending actions.
func (q *Queue) Len() int { return len(q.items) }

// Approve executes the pending action with id and removes it.
func (q *Queue) Approve(id string) (executor.Outcome, error) {
	p, err := q.take(id)
	if err != nil {
		return executor.Outcome{}, err
	}
	return q.exec.Execute(p.Intent)[0], nil
}

// Reject discards the pending action with id without executing it.
func (q *Queue) Reject(id string) error {
	_, err := q.take(id)
	return err
}

// ApproveAll executes every pending action in order as one batch and
// empties the queue.
func (q *Queue) ApproveAll() []executor.Outcome {
	items := q.items
	q.items = []Pending{}
	q.metrics.Pending(0)
	if len(items) == 0 {
		return nil
	}
	ins := make([]intent.Intent, len(items))
	for i, p := range items {
		ins[i] = p.Intent
	}
	return q.exec.Execute(ins...)
}

// RejectAll empties the queue and returns how many actions were discarded.
func (q *Queue) RejectAll() int {
	n := len(q.items)
	q.items = []Pending{}
	q.metrics.Pending(0)
	return n
}

// Modify turns a pending create-task or create-event into an editable
// draft and removes it without executing. Other kinds are left queued.
func (q *Queue) Modify(id string) (models.Task, error) {
	i := q.index(id)
	if i < 0 {
		return models.Task{}, fmt.Errorf("approval: modify %s: %w", id, apperr.ErrNotFound)
	}
	in := q.items[i].Intent
	if !in.Kind.Modifiable() {
		return models.Task{}, fmt.Errorf("approval: modify %s: %w", in.Kind, apperr.ErrNotModifiable)
	}
	draft := executor.TaskFromData(in.Task)
	if in.Kind == intent.CreateEvent {
		draft = executor.EventFromData(in.Event)
	}
	draft.ID = DraftID
	if draft.Priority == "" {
		draft.Priority = models.PriorityMedium
	}
	_, _ = q.take(id)
	return draft, nil
}

func (q *Queue) take(id string) (Pending, error) {
	i := q.index(id)
	if i < 0 {
		return Pending{}, fmt.Errorf("approval: %s: %w", id, apperr.ErrNotFound)
	}
	p := q.items[i]
	q.items = slices.Delete(q.items, i, i+1)
	q.metrics.Pending(len(q.items))
	return p, nil
}

func (q *Queue) index(id string) int {
	return slices.IndexFunc(q.items, func(p Pending) bool { return p.ID == id })
}
