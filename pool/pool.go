package pool

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Pool is a fixed-size set of workers draining one shared FIFO queue.
//
// The roster is built once by New and never changes: worker ids are
// 0..Size()-1 for the pool's whole lifetime. Submit and Go may be called from
// any number of goroutines. Close tears the pool down exactly once.
type Pool struct {
	id      string
	conf    *config
	tx      sender
	rx      *receiver
	workers []*worker
	closing atomic.Bool
}

// WorkerStats is a point-in-time view of a single worker.
type WorkerStats struct {
	ID       int
	State    WorkerState
	Executed uint64 // tasks run, including the ones that panicked
	Panicked uint64
}

// Stats is a point-in-time view of a pool.
type Stats struct {
	PoolID     string
	Size       int
	QueueDepth int
	Closed     bool
	Workers    []WorkerStats
}

// New creates a pool of size workers and starts them. Every worker shares the
// receiving end of one unbounded queue.
//
// Parameters:
//   - size: Number of workers; must be positive
//   - opts: Variadic set of Option for logging, observers and thread placement
//
// Returns:
//   - *Pool: A running pool (call Close to tear it down)
//   - error: Wraps ErrInvalidConfiguration if size is not positive. No worker
//     is started in that case.
//
// Example:
//
//	p, err := pool.New(runtime.NumCPU(), pool.WithLogger(slog.Default()))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
func New(size int, opts ...Option) (*Pool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: size must be positive, got %d", ErrInvalidConfiguration, size)
	}

	conf := newConfig(opts...)
	id := uuid.NewString()
	conf.poolID = id

	attrs := []any{"pool", id}
	if conf.name != "" {
		attrs = append(attrs, "pool_name", conf.name)
	}
	conf.logger = conf.logger.With(attrs...)

	tx, rx := newSharedQueue()
	p := &Pool{
		id:      id,
		conf:    conf,
		tx:      tx,
		rx:      rx,
		workers: make([]*worker, size),
	}

	for i := range size {
		p.workers[i] = spawnWorker(i, rx, conf)
	}

	conf.logger.Debug("pool started", "size", size)
	return p, nil
}

// Submit enqueues task for execution by whichever worker dequeues it next.
// It never blocks on capacity: the queue is unbounded.
//
// Returns:
//   - error: ErrNilTask for a nil task, ErrPoolClosed once Close has begun
func (p *Pool) Submit(task Task) error {
	if task == nil {
		return ErrNilTask
	}
	return p.submit(newTaskMessage(task))
}

// Go submits fn and returns a Future that resolves when fn has run. The
// Future carries fn's returned error, or a *TaskPanicError if fn panicked.
//
// Returns:
//   - *Future: Handle for the task outcome (nil if submission failed)
//   - error: ErrNilTask for a nil fn, ErrPoolClosed once Close has begun
//
// Example:
//
//	future, err := p.Go(func() error {
//	    return resize(img)
//	})
//	if err != nil {
//	    return err
//	}
//	if err := future.Get(); err != nil {
//	    var perr *pool.TaskPanicError
//	    if errors.As(err, &perr) {
//	        log.Printf("worker %d panicked: %v", perr.WorkerID, perr.Value)
//	    }
//	}
func (p *Pool) Go(fn func() error) (*Future, error) {
	if fn == nil {
		return nil, ErrNilTask
	}

	f := newFuture()
	var ferr error
	msg := newTaskMessage(func() { ferr = fn() })
	msg.onDone = func(perr *TaskPanicError) {
		if perr != nil {
			f.resolve(perr)
			return
		}
		f.resolve(ferr)
	}

	if err := p.submit(msg); err != nil {
		return nil, err
	}
	return f, nil
}

func (p *Pool) submit(msg message) error {
	if err := p.tx.send(msg); err != nil {
		if errors.Is(err, errQueueClosed) {
			return ErrPoolClosed
		}
		return err
	}

	if p.conf.eventsEnabled() {
		p.conf.emit(Event{Kind: EventTaskSubmitted, WorkerID: noWorker, QueueDepth: p.tx.depth()})
	}
	return nil
}

// Close tears the pool down. It enqueues one terminate message per worker,
// in roster order, behind every task accepted so far, then joins every worker
// in roster order. Running and queued tasks finish first; nothing is
// interrupted.
//
// Close blocks until every worker has exited. It is one-shot: the first call
// performs teardown and every later call returns ErrPoolClosed immediately.
// Close must not be called from inside a task.
//
// Returns:
//   - error: ErrPoolClosed on repeated calls; otherwise nil unless a worker
//     could not be joined
func (p *Pool) Close() error {
	if !p.closing.CompareAndSwap(false, true) {
		return ErrPoolClosed
	}

	p.conf.emit(Event{Kind: EventTeardownBegin, WorkerID: noWorker})

	terminate := make([]message, len(p.workers))
	for i := range terminate {
		terminate[i] = terminateMessage()
	}
	if err := p.tx.sendFinal(terminate); err != nil {
		// The queue is only ever sealed here, behind the closing flag.
		return fmt.Errorf("seal queue: %w", err)
	}

	p.conf.logger.Debug("shutting down all workers", "size", len(p.workers))

	var errs []error
	for _, w := range p.workers {
		p.conf.logger.Debug("shutting down worker", "worker", w.id)
		if err := w.join(); err != nil {
			errs = append(errs, fmt.Errorf("join worker %d: %w", w.id, err))
		}
	}

	p.conf.emit(Event{Kind: EventTeardownEnd, WorkerID: noWorker})
	return errors.Join(errs...)
}

// Size returns the number of workers. It never changes.
func (p *Pool) Size() int {
	return len(p.workers)
}

// ID returns the unique id assigned to this pool at construction.
func (p *Pool) ID() string {
	return p.id
}

// Stats returns a snapshot of the pool. Counters are read without stopping the
// workers, so values taken while tasks run may be mutually inconsistent.
func (p *Pool) Stats() Stats {
	s := Stats{
		PoolID:     p.id,
		Size:       len(p.workers),
		QueueDepth: p.rx.depth(),
		Closed:     p.closing.Load(),
		Workers:    make([]WorkerStats, len(p.workers)),
	}
	for i, w := range p.workers {
		s.Workers[i] = w.stats()
	}
	return s
}
