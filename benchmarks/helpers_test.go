package benchmarks

import (
	"math"
	"slices"
	"testing"
	"time"

	"github.com/utkarsh5026/threadpool/pool"
)

// placementConfig defines a benchmark configuration for a thread placement mode
type placementConfig struct {
	name string
	opts []pool.Option
}

// getAllPlacements returns every worker placement mode for benchmarking
func getAllPlacements() []placementConfig {
	return []placementConfig{
		{name: "Goroutine", opts: []pool.Option{pool.WithLockOSThread(false)}},
		{name: "LockedThread", opts: []pool.Option{pool.WithLockOSThread(true)}},
		{name: "PinnedThread", opts: []pool.Option{pool.WithCPUAffinity(true)}},
	}
}

// runPlacementBenchmark runs a benchmark function for all placements
func runPlacementBenchmark(b *testing.B, benchFunc func(b *testing.B, p placementConfig)) {
	for _, placement := range getAllPlacements() {
		b.Run(placement.name, func(b *testing.B) {
			benchFunc(b, placement)
		})
	}
}

func newPool(b *testing.B, workers int, opts ...pool.Option) *pool.Pool {
	b.Helper()
	p, err := pool.New(workers, opts...)
	if err != nil {
		b.Fatal(err)
	}
	return p
}

// reportThroughput reports tasks/sec given the number of tasks run per op
func reportThroughput(b *testing.B, tasksPerOp int) float64 {
	nsPerOp := float64(b.Elapsed().Nanoseconds()) / float64(b.N)
	tasksPerSec := (float64(tasksPerOp) / nsPerOp) * 1e9
	b.ReportMetric(tasksPerSec, "tasks/sec")
	return tasksPerSec
}

// cpuBoundWork simulates a CPU-intensive operation
func cpuBoundWork(iterations int, sink *int64) pool.Task {
	return func() {
		result := 0
		for i := range iterations {
			result += i * i
		}
		if result < 0 {
			*sink = int64(result)
		}
	}
}

// ioBoundWork simulates an I/O operation with a delay
func ioBoundWork(delay time.Duration) pool.Task {
	return func() {
		time.Sleep(delay)
	}
}

func percentile(latencies []time.Duration, p float64) time.Duration {
	if len(latencies) == 0 {
		return 0
	}

	sorted := slices.Clone(latencies)
	slices.Sort(sorted)

	// nearest-rank: p=0.50 over 100 elements is index 49
	index := max(int(math.Round(p*float64(len(sorted)-1))), 0)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}

func TestPercentile(t *testing.T) {
	latencies := make([]time.Duration, 100)
	for i := range latencies {
		latencies[len(latencies)-1-i] = time.Duration(i+1) * time.Millisecond
	}

	tests := []struct {
		p    float64
		want time.Duration
	}{
		{0, time.Millisecond},
		{0.5, 51 * time.Millisecond},
		{0.99, 99 * time.Millisecond},
		{1, 100 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := percentile(latencies, tt.p); got != tt.want {
			t.Errorf("p%.2f: expected %v, got %v", tt.p, tt.want, got)
		}
	}

	if got := percentile(nil, 0.5); got != 0 {
		t.Errorf("expected 0 for no samples, got %v", got)
	}
}
