package pool

import (
	"sync/atomic"
	"time"

	"github.com/utkarsh5026/threadpool/internal/cpu"
)

// WorkerState is the lifecycle state of a worker.
type WorkerState int32

const (
	// WorkerRunning: the worker is in its receive loop, idle or executing a task.
	WorkerRunning WorkerState = iota
	// WorkerTerminated: the worker left its loop and can be joined.
	WorkerTerminated
	// WorkerJoined: teardown has joined the worker. Final state.
	WorkerJoined
)

func (s WorkerState) String() string {
	switch s {
	case WorkerRunning:
		return "running"
	case WorkerTerminated:
		return "terminated"
	case WorkerJoined:
		return "joined"
	default:
		return "unknown"
	}
}

// worker owns one goroutine that drains the shared receiver until it takes a
// terminate message.
type worker struct {
	id    int
	state atomic.Int32
	done  chan struct{} // closed when the loop goroutine returns

	executed atomic.Uint64
	panicked atomic.Uint64
}

// spawnWorker starts a worker loop on rx and returns immediately.
func spawnWorker(id int, rx *receiver, conf *config) *worker {
	w := &worker{
		id:   id,
		done: make(chan struct{}),
	}
	go w.run(rx, conf)
	return w
}

// run is the receive/execute loop. The receiver mutex is held only inside
// rx.recv; the task runs after it has been released.
func (w *worker) run(rx *receiver, conf *config) {
	defer close(w.done)
	defer func() {
		w.state.Store(int32(WorkerTerminated))
		conf.emit(Event{Kind: EventWorkerExited, WorkerID: w.id})
	}()

	if conf.lockOSThread {
		release, err := cpu.Bind(w.id, conf.cpuAffinity)
		defer release()
		if err != nil {
			conf.logger.Warn("cpu pinning failed; worker continues unpinned", "worker", w.id, "error", err)
		}
	}

	conf.emit(Event{Kind: EventWorkerStarted, WorkerID: w.id})

	for {
		msg, err := rx.recv()
		if err != nil {
			// Only reachable when the queue is sealed with fewer terminate
			// messages than live workers.
			conf.logger.Error("receive failed; worker exiting", "worker", w.id, "error", err)
			return
		}

		if msg.kind == msgTerminate {
			conf.emit(Event{Kind: EventTerminateReceived, WorkerID: w.id})
			return
		}

		if conf.eventsEnabled() {
			conf.emit(Event{Kind: EventTaskDequeued, WorkerID: w.id, QueueDepth: rx.depth()})
		}
		w.execute(msg, conf)
	}
}

// execute runs one task inside a fault boundary and reports the outcome.
func (w *worker) execute(msg message, conf *config) {
	start := time.Now()
	perr := runTask(w.id, msg.task)
	elapsed := time.Since(start)

	w.executed.Add(1)

	if perr == nil {
		conf.emit(Event{Kind: EventTaskCompleted, WorkerID: w.id, Duration: elapsed})
	} else {
		w.panicked.Add(1)
		conf.emit(Event{Kind: EventTaskPanicked, WorkerID: w.id, Duration: elapsed, Err: perr})
		if conf.panicHandler != nil {
			conf.panicHandler(perr)
		}
	}

	if msg.onDone != nil {
		msg.onDone(perr)
	}
}

// join blocks until the worker loop has returned and moves the worker to
// WorkerJoined. It succeeds once; every later call returns errAlreadyJoined.
func (w *worker) join() error {
	if WorkerState(w.state.Load()) == WorkerJoined {
		return errAlreadyJoined
	}

	<-w.done

	if !w.state.CompareAndSwap(int32(WorkerTerminated), int32(WorkerJoined)) {
		return errAlreadyJoined
	}
	return nil
}

func (w *worker) stats() WorkerStats {
	return WorkerStats{
		ID:       w.id,
		State:    WorkerState(w.state.Load()),
		Executed: w.executed.Load(),
		Panicked: w.panicked.Load(),
	}
}
