package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Dispatched("QUERY", "executed")
		m.Executed("QUERY", "applied")
		m.Panicked()
		m.Pending(3)
		m.ObserveNLU("ok", 0.1)
		m.Saved(false)
		m.SSEClients(1)
	})
}

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.Dispatched("CREATE_TASK", "queued")
	m.Dispatched("CREATE_TASK", "queued")
	m.Pending(2)
	m.Saved(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.dispatched.WithLabelValues("CREATE_TASK", "queued")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.pending))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.saves.WithLabelValues("ok")))
}
