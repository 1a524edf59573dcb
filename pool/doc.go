// Package pool provides a fixed-size pool of long-lived workers that drain a
// single shared queue of submitted tasks.
//
// The primary type is Pool, created with a positive worker count. By default each
// worker runs on its own OS thread and repeatedly takes the next message from one
// unbounded FIFO queue. Dequeuing is serialized through a mutex on the
// receiving end, but tasks execute after that mutex is released, so up to
// Size() tasks run in parallel.
//
// # Basic Usage
//
//	p, err := pool.New(4)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	for i := range 8 {
//	    _ = p.Submit(func() {
//	        fmt.Println("task", i)
//	    })
//	}
//
// # Teardown
//
// Close enqueues one terminate message per worker behind every task already
// accepted, then joins the workers in roster order. Running tasks are never
// interrupted: each worker finishes its current task, claims whatever is still
// queued ahead of the terminate messages, and exits. Close is one-shot; later
// calls return ErrPoolClosed, and so does Submit once teardown has begun.
//
// Close must not be called from inside a task, since the calling worker would
// wait on itself.
//
// # Result Handles
//
// Submit is fire-and-forget. When the caller needs to know how a task ended,
// Go returns a Future that resolves with the task's error:
//
//	future, _ := p.Go(func() error {
//	    return upload(ctx, blob)
//	})
//	if err := future.GetWithTimeout(5 * time.Second); err != nil {
//	    // handle error
//	}
//
// # Task Failures
//
// A panic inside a task is recovered by the worker that ran it. The worker
// stays alive, and the failure is surfaced as a *TaskPanicError through the
// handler installed with WithPanicHandler, the EventTaskPanicked observer
// event, an error-level log record, and the Future when the task was
// submitted with Go.
//
// # Observability
//
//   - WithLogger(l): structured lifecycle logging through log/slog (debug level)
//   - WithObserver(obs...): receive an Event at every lifecycle transition
//   - Stats(): snapshot of worker states, per-worker counters and queue depth
//
// Building with -tags debug routes the default logger to stderr.
package pool
