package pool

import (
	"context"
	"log/slog"
	"time"
)

// EventKind identifies a lifecycle transition of a pool or one of its workers.
type EventKind string

const (
	// EventWorkerStarted is emitted when a worker begins its receive loop.
	EventWorkerStarted EventKind = "worker_started"
	// EventTaskSubmitted is emitted after a task is accepted into the queue.
	EventTaskSubmitted EventKind = "task_submitted"
	// EventTaskDequeued is emitted when a worker claims a task, before running it.
	EventTaskDequeued EventKind = "task_dequeued"
	// EventTaskCompleted is emitted when a task returns normally.
	EventTaskCompleted EventKind = "task_completed"
	// EventTaskPanicked is emitted when a task panics; Err holds the *TaskPanicError.
	EventTaskPanicked EventKind = "task_panicked"
	// EventTerminateReceived is emitted when a worker dequeues a terminate message.
	EventTerminateReceived EventKind = "terminate_received"
	// EventWorkerExited is emitted when a worker has left its loop.
	EventWorkerExited EventKind = "worker_exited"
	// EventTeardownBegin is emitted once, when Close starts.
	EventTeardownBegin EventKind = "teardown_begin"
	// EventTeardownEnd is emitted once, after every worker has been joined.
	EventTeardownEnd EventKind = "teardown_end"
)

// noWorker is the WorkerID of pool-level events.
const noWorker = -1

// Event describes one lifecycle transition.
//
// Events are delivered synchronously on the goroutine where the transition
// happens: worker events on the worker, submission events on the submitter,
// teardown events on the caller of Close. Observers must therefore be safe for
// concurrent use, and events from different goroutines carry no ordering
// guarantee relative to each other.
type Event struct {
	Kind   EventKind
	PoolID string
	// WorkerID is the worker the event refers to, or -1 for pool-level events.
	WorkerID int
	// QueueDepth is the number of queued messages observed right after the
	// transition. Only set for EventTaskSubmitted and EventTaskDequeued.
	QueueDepth int
	// Duration is the task run time for EventTaskCompleted and EventTaskPanicked.
	Duration time.Duration
	// Err is the failure for EventTaskPanicked.
	Err  error
	Time time.Time
}

// Observer receives pool lifecycle events.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(Event)

// Observe calls f(e).
func (f ObserverFunc) Observe(e Event) {
	f(e)
}

type multiObserver []Observer

func (m multiObserver) Observe(e Event) {
	for _, o := range m {
		o.Observe(e)
	}
}

// eventsEnabled reports whether emitting an event has any effect, so callers
// can skip computing event fields such as the queue depth.
func (c *config) eventsEnabled() bool {
	return len(c.observers) > 0 || c.logger.Enabled(context.Background(), slog.LevelDebug)
}

// emit stamps e and hands it to the logger and the observers.
func (c *config) emit(e Event) {
	e.PoolID = c.poolID
	e.Time = time.Now()

	c.logEvent(e)
	if len(c.observers) > 0 {
		c.observers.Observe(e)
	}
}

func (c *config) logEvent(e Event) {
	switch e.Kind {
	case EventWorkerStarted:
		c.logger.Debug("worker started", "worker", e.WorkerID)
	case EventTaskSubmitted:
		c.logger.Debug("task submitted", "queue_depth", e.QueueDepth)
	case EventTaskDequeued:
		c.logger.Debug("worker got a task; executing", "worker", e.WorkerID, "queue_depth", e.QueueDepth)
	case EventTaskCompleted:
		c.logger.Debug("task completed", "worker", e.WorkerID, "duration", e.Duration)
	case EventTaskPanicked:
		c.logger.Error("task panicked", "worker", e.WorkerID, "duration", e.Duration, "error", e.Err)
	case EventTerminateReceived:
		c.logger.Debug("worker was told to terminate", "worker", e.WorkerID)
	case EventWorkerExited:
		c.logger.Debug("worker exited", "worker", e.WorkerID)
	case EventTeardownBegin:
		c.logger.Debug("sending terminate message to all workers")
	case EventTeardownEnd:
		c.logger.Debug("all workers shut down")
	}
}
