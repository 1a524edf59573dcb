//go:build linux

package cpu

import "golang.org/x/sys/unix"

// pinToCore restricts the current OS thread to a single CPU.
// Must be called after runtime.LockOSThread().
func pinToCore(core int) error {
	var mask unix.CPUSet
	mask.Zero()
	mask.Set(core)

	// pid 0 targets the calling thread.
	return unix.SchedSetaffinity(0, &mask)
}

// Affinity returns the CPUs the current OS thread may run on.
func Affinity() ([]int, error) {
	var mask unix.CPUSet
	if err := unix.SchedGetaffinity(0, &mask); err != nil {
		return nil, err
	}

	cores := make([]int, 0, mask.Count())
	for i := range NumCPU() {
		if mask.IsSet(i) {
			cores = append(cores, i)
		}
	}
	return cores, nil
}
