// Package metrics exposes the HUD's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "jarvis"

// Metrics groups every collector the core updates.
type Metrics struct {
	dispatched *prometheus.CounterVec
	executed   *prometheus.CounterVec
	panics     prometheus.Counter
	pending    prometheus.Gauge
	nluLatency *prometheus.HistogramVec
	saves      *prometheus.CounterVec
	sseClients prometheus.Gauge
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intents_dispatched_total",
			Help:      "Intents routed by the dispatcher, by kind and route (executed, queued, dropped).",
		}, []string{"kind", "route"}),
		executed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intents_executed_total",
			Help:      "Intents handled by the executor, by kind and status.",
		}, []string{"kind", "status"}),
		panics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "executor_panics_total",
			Help:      "Intent handlers that panicked and were contained.",
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "approval_queue_length",
			Help:      "Pending actions awaiting authorization.",
		}),
		nluLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "nlu_request_seconds",
			Help:      "Latency of NLU parse calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_saves_total",
			Help:      "Persistence saves, by result.",
		}, []string{"result"}),
		sseClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sse_clients",
			Help:      "Connected SSE subscribers.",
		}),
	}
	reg.MustRegister(m.dispatched, m.executed, m.panics, m.pending, m.nluLatency, m.saves, m.sseClients)
	return m
}

// Dispatched counts one routing decision.
func (m *Metrics) Dispatched(kind, route string) {
	if m == nil {
		return
	}
	m.dispatched.WithLabelValues(kind, route).Inc()
}

// Executed counts one executor outcome.
func (m *Metrics) Executed(kind, status string) {
	if m == nil {
		return
	}
	m.executed.WithLabelValues(kind, status).Inc()
}

// Panicked counts a contained handler panic.
func (m *Metrics) Panicked() {
	if m == nil {
		return
	}
	m.panics.Inc()
}

// Pending sets the approval queue length.
func (m *Metrics) Pending(n int) {
	if m == nil {
		return
	}
	m.pending.Set(float64(n))
}

// ObserveNLU records one parse call.
func (m *Metrics) ObserveNLU(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.nluLatency.WithLabelValues(outcome).Observe(seconds)
}

// Saved counts a persistence attempt.
func (m *Metrics) Saved(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.saves.WithLabelValues(result).Inc()
}

// SSEClients sets the subscriber gauge.
func (m *Metrics) SSEClients(n int) {
	if m == nil {
		return
	}
	m.sseClients.Set(float64(n))
}
