package metrics

import (
	"bytes"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utkarsh5026/threadpool/pool"
)

func newTestCollector(t *testing.T) (*Collector, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	c, err := NewCollector("threadpool", reg)
	require.NoError(t, err)
	return c, reg
}

func histogramCount(t *testing.T, h prometheus.Histogram) uint64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, h.Write(&m))
	return m.GetHistogram().GetSampleCount()
}

func TestCollector_Observe(t *testing.T) {
	c, _ := newTestCollector(t)

	c.Observe(pool.Event{Kind: pool.EventWorkerStarted, WorkerID: 0})
	c.Observe(pool.Event{Kind: pool.EventWorkerStarted, WorkerID: 1})
	c.Observe(pool.Event{Kind: pool.EventTaskSubmitted, QueueDepth: 3})
	c.Observe(pool.Event{Kind: pool.EventTaskCompleted, Duration: 2 * time.Millisecond})
	c.Observe(pool.Event{Kind: pool.EventTaskPanicked, Duration: time.Millisecond})
	c.Observe(pool.Event{Kind: pool.EventTaskDequeued, QueueDepth: 1})
	c.Observe(pool.Event{Kind: pool.EventTerminateReceived, WorkerID: 1})
	c.Observe(pool.Event{Kind: pool.EventWorkerExited, WorkerID: 1})

	assert.Equal(t, 1.0, testutil.ToFloat64(c.submitted))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.completed.WithLabelValues(outcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.completed.WithLabelValues(outcomePanic)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.workers))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.queueDepth))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.terminates))
	assert.Equal(t, uint64(2), histogramCount(t, c.duration))
}

func TestCollector_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollector("threadpool", reg)
	require.NoError(t, err)

	_, err = NewCollector("threadpool", reg)
	assert.Error(t, err)
}

func TestCollector_WithPool(t *testing.T) {
	c, reg := newTestCollector(t)

	p, err := pool.New(3, pool.WithObserver(c))
	require.NoError(t, err)

	for i := range 20 {
		require.NoError(t, p.Submit(func() {
			if i%5 == 0 {
				panic("metric boom")
			}
		}))
	}
	require.NoError(t, p.Close())

	assert.Equal(t, 20.0, testutil.ToFloat64(c.submitted))
	assert.Equal(t, 16.0, testutil.ToFloat64(c.completed.WithLabelValues(outcomeOK)))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.completed.WithLabelValues(outcomePanic)))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.terminates))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.workers))
	assert.Equal(t, uint64(20), histogramCount(t, c.duration))

	n, err := testutil.GatherAndCount(reg, "threadpool_tasks_completed_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestWriteText(t *testing.T) {
	c, reg := newTestCollector(t)
	c.Observe(pool.Event{Kind: pool.EventTaskSubmitted, QueueDepth: 7})

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, reg))

	out := buf.String()
	assert.Contains(t, out, "# TYPE threadpool_tasks_submitted_total counter")
	assert.Contains(t, out, "threadpool_tasks_submitted_total 1")
	assert.Contains(t, out, "threadpool_queue_depth 7")
	assert.Contains(t, out, `threadpool_tasks_completed_total{outcome="panic"} 0`)
	assert.Contains(t, out, "threadpool_task_duration_seconds_bucket")
}
