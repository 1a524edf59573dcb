package pool

import (
	"errors"
	"fmt"
	"runtime"
	"time"
)

var (
	// ErrInvalidConfiguration is returned by New when the pool cannot be built
	// as requested, for example with a non-positive size.
	ErrInvalidConfiguration = errors.New("invalid pool configuration")

	// ErrPoolClosed is returned by Submit and Go once teardown has begun, and by
	// every Close call after the first.
	ErrPoolClosed = errors.New("pool is closed")

	// ErrNilTask is returned when a nil task is submitted.
	ErrNilTask = errors.New("task must not be nil")

	// ErrTimeout is returned by Future.GetWithTimeout when the task has not
	// finished in time.
	ErrTimeout = errors.New("timed out waiting for task")

	errQueueClosed   = errors.New("queue is closed")
	errAlreadyJoined = errors.New("worker already joined")
)

const panicStackSize = 4096

// TaskPanicError reports a panic raised by a task. The worker that ran the
// task recovers it and keeps serving the queue.
type TaskPanicError struct {
	// WorkerID is the id of the worker that was running the task.
	WorkerID int
	// Value is the value passed to panic.
	Value any
	// Stack is the goroutine stack captured at recovery time.
	Stack []byte
}

func (e *TaskPanicError) Error() string {
	return fmt.Sprintf("task panic on worker %d: %v", e.WorkerID, e.Value)
}

// Unwrap exposes the panic value when it is itself an error, so callers can
// match it with errors.Is and errors.As.
func (e *TaskPanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// runTask invokes task inside a fault boundary. A panic is converted into a
// TaskPanicError carrying the stack of the panicking goroutine.
func runTask(workerID int, task Task) (perr *TaskPanicError) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, panicStackSize)
			n := runtime.Stack(buf, false)
			perr = &TaskPanicError{WorkerID: workerID, Value: r, Stack: buf[:n]}
		}
	}()

	task()
	return nil
}

// waitUntil blocks until either the done channel is closed or the timeout is reached.
// A non-positive timeout waits forever.
func waitUntil(d <-chan struct{}, timeout time.Duration) error {
	if timeout <= 0 {
		<-d
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-d:
		return nil
	case <-timer.C:
		return ErrTimeout
	}
}
