//go:build !linux && !windows

package cpu

func pinToCore(int) error {
	return ErrUnsupported
}

// Affinity is not implemented on this platform.
func Affinity() ([]int, error) {
	return nil, ErrUnsupported
}
