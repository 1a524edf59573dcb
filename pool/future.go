package pool

import (
	"context"
	"time"
)

// Future is the result handle of a task submitted with Pool.Go.
// It is resolved exactly once, by the worker that ran the task.
type Future struct {
	done chan struct{}
	err  error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// resolve records the task outcome and releases every waiter.
func (f *Future) resolve(err error) {
	f.err = err
	close(f.done)
}

// Get blocks until the task has run and returns its error.
// Repeated calls return the same value.
func (f *Future) Get() error {
	<-f.done
	return f.err
}

// GetWithContext waits for the task like Get, but gives up when ctx is done
// and returns ctx.Err(). Giving up does not cancel the task.
func (f *Future) GetWithContext(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetWithTimeout waits for the task like Get for at most timeout and returns
// ErrTimeout if it has not finished by then. A non-positive timeout waits
// forever.
func (f *Future) GetWithTimeout(timeout time.Duration) error {
	if err := waitUntil(f.done, timeout); err != nil {
		return err
	}
	return f.err
}

// IsReady reports whether the task has finished, without blocking.
func (f *Future) IsReady() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Done returns a channel that is closed once the task has finished.
func (f *Future) Done() <-chan struct{} {
	return f.done
}
