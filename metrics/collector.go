// Package metrics exports pool lifecycle events as Prometheus metrics.
//
// A Collector is a pool.Observer: register it with pool.WithObserver and it
// keeps counters, gauges and a task duration histogram up to date.
//
//	reg := prometheus.NewRegistry()
//	c, err := metrics.NewCollector("threadpool", reg)
//	...
//	p, err := pool.New(8, pool.WithObserver(c))
//	...
//	metrics.WriteText(os.Stdout, reg)
package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/utkarsh5026/threadpool/pool"
)

const (
	outcomeOK    = "ok"
	outcomePanic = "panic"
)

// Collector turns pool events into Prometheus metrics.
type Collector struct {
	submitted  prometheus.Counter
	completed  *prometheus.CounterVec
	duration   prometheus.Histogram
	workers    prometheus.Gauge
	queueDepth prometheus.Gauge
	terminates prometheus.Counter
}

// NewCollector creates the pool metrics under namespace and registers them
// with reg.
func NewCollector(namespace string, reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_submitted_total",
			Help:      "Total number of tasks accepted by the pool",
		}),
		completed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_completed_total",
			Help:      "Total number of tasks that finished, by outcome",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_seconds",
			Help:      "Histogram of task execution time",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		workers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "workers_running",
			Help:      "Number of workers inside their receive loop",
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_depth",
			Help:      "Number of queued messages at the last submit or dequeue",
		}),
		terminates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "terminates_received_total",
			Help:      "Total number of terminate messages taken by workers",
		}),
	}

	// Pre-create both outcomes so they are exported at zero.
	c.completed.WithLabelValues(outcomeOK)
	c.completed.WithLabelValues(outcomePanic)

	for _, m := range []prometheus.Collector{c.submitted, c.completed, c.duration, c.workers, c.queueDepth, c.terminates} {
		if err := reg.Register(m); err != nil {
			return nil, fmt.Errorf("register pool metric: %w", err)
		}
	}
	return c, nil
}

// Observe implements pool.Observer.
func (c *Collector) Observe(e pool.Event) {
	switch e.Kind {
	case pool.EventWorkerStarted:
		c.workers.Inc()
	case pool.EventWorkerExited:
		c.workers.Dec()
	case pool.EventTaskSubmitted, pool.EventTaskDequeued:
		if e.Kind == pool.EventTaskSubmitted {
			c.submitted.Inc()
		}
		c.queueDepth.Set(float64(e.QueueDepth))
	case pool.EventTaskCompleted:
		c.completed.WithLabelValues(outcomeOK).Inc()
		c.duration.Observe(e.Duration.Seconds())
	case pool.EventTaskPanicked:
		c.completed.WithLabelValues(outcomePanic).Inc()
		c.duration.Observe(e.Duration.Seconds())
	case pool.EventTerminateReceived:
		c.terminates.Inc()
	}
}

// WriteText gathers every metric from g and writes it to w in the Prometheus
// text exposition format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
