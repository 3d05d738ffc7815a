package dispatch

import (
	"log/slog"

	"github.com/starford/jarvis/internal/approval"
	"github.com/starford/jarvis/internal/executor"
	"github.com/starford/jarvis/internal/intent"
	"github.com/starford/jarvis/internal/metrics"
)

// Routes recorded in metrics.
const (
	routeExecuted = "executed"
	routeQueued   = "queued"
	routeDropped  = "dropped"
)

// Report summarises one Dispatch call.
type Report struct {
	Executed []executor.Outcome `json:"executed"`
	Queued   []approval.Pending `json:"queued"`
	Dropped  []intent.Kind      `json:"dropped"`
}

// Dispatcher classifies intents against a Policy.
type Dispatcher struct {
	policy  *Policy
	exec    *executor.Executor
	queue   *approval.Queue
	log     *slog.Logger
	metrics *metrics.Metrics
}

// New creates a Dispatcher.
func New(policy *Policy, exec *executor.Executor, queue *approval.Queue, log *slog.Logger, m *metrics.Metrics) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{policy: policy, exec: exec, queue: queue, log: log, metrics: m}
}

// Dispatch routes intents in array order. Allow-listed kinds, unknown and
// query always execute; other kinds execute only when bypassApproval is set
// and are queued otherwise. Tags outside the closed set are dropped.
func (d *Dispatcher) Dispatch(intents []intent.Intent, bypassApproval bool) Report {
	rep := Report{Executed: []executor.Outcome{}, Queued: []approval.Pending{}, Dropped: []intent.Kind{}}
	batch := d.exec.NewBatch()

	for _, in := range intents {
		kind := string(in.Kind)
		switch {
		case !in.Kind.Known():
			d.log.Warn("dispatch: unrecognized intent dropped", slog.String("kind", kind))
			rep.Dropped = append(rep.Dropped, in.Kind)
			d.metrics.Dispatched(kind, routeDropped)
		case in.Kind == intent.Unknown || in.Kind == intent.Query || d.policy.Allows(in.Kind) || bypassApproval:
			rep.Executed = append(rep.Executed, batch.Execute(in))
			d.metrics.Dispatched(kind, routeExecuted)
		default:
			p := d.queue.Enqueue(in)
			d.log.Info("dispatch: awaiting approval", slog.String("kind", kind), slog.String("id", p.ID))
			rep.Queued = append(rep.Queued, p)
			d.metrics.Dispatched(kind, routeQueued)
		}
	}
	return rep
}
