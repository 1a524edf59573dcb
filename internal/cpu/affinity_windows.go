//go:build windows

package cpu

import (
	"golang.org/x/sys/windows"
)

var (
	kernel32              = windows.NewLazySystemDLL("kernel32.dll")
	setThreadAffinityMask = kernel32.NewProc("SetThreadAffinityMask")
)

// pinToCore restricts the current OS thread to a single CPU.
// Must be called after runtime.LockOSThread().
func pinToCore(core int) error {
	// Bit N selects CPU N.
	mask := uintptr(1) << uint(core) // #nosec G115 -- core is in [0, NumCPU)

	prev, _, err := setThreadAffinityMask.Call(uintptr(windows.CurrentThread()), mask)
	if prev == 0 {
		return err
	}
	return nil
}

// Affinity is not implemented on Windows.
func Affinity() ([]int, error) {
	return nil, ErrUnsupported
}
