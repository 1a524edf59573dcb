// Package cpu wires worker goroutines to OS threads and, where the platform
// allows, pins those threads to logical CPUs.
package cpu

import (
	"errors"
	"runtime"
)

// ErrUnsupported is returned by Bind when thread pinning is not available on
// this platform. The goroutine is still locked to its thread.
var ErrUnsupported = errors.New("cpu: thread affinity not supported on " + runtime.GOOS)

// NumCPU returns the number of logical CPUs usable by the process.
func NumCPU() int {
	return runtime.NumCPU()
}

// CoreFor maps a worker id onto a logical CPU index.
func CoreFor(workerID int) int {
	n := NumCPU()
	if workerID < 0 {
		workerID = -workerID
	}
	return workerID % n
}

// Bind locks the calling goroutine to its current OS thread. With pin set it
// also restricts that thread to CoreFor(workerID).
//
// The returned release func must be called when the goroutine is done with
// the thread, typically in a defer at the top of the worker loop. A thread
// that was pinned is never handed back to the scheduler: release leaves it
// locked, and the runtime discards it once the goroutine exits.
func Bind(workerID int, pin bool) (release func(), err error) {
	runtime.LockOSThread()

	if !pin {
		return runtime.UnlockOSThread, nil
	}

	if err := pinToCore(CoreFor(workerID)); err != nil {
		return runtime.UnlockOSThread, err
	}
	return func() {}, nil
}
