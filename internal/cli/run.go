package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/utkarsh5026/threadpool/internal/config"
	"github.com/utkarsh5026/threadpool/internal/logger"
	"github.com/utkarsh5026/threadpool/metrics"
	"github.com/utkarsh5026/threadpool/pool"
)

// Report is the outcome of one workload run.
type Report struct {
	Config    config.Config
	Submitted int
	Rejected  int
	Panics    int
	Elapsed   time.Duration
	// Serial is the time the workload would take on a single worker.
	Serial time.Duration
	Stats  pool.Stats
	// Registry holds the pool metrics collected during the run.
	Registry *prometheus.Registry
}

// Speedup is Serial divided by Elapsed, or zero when either is unknown.
func (r *Report) Speedup() float64 {
	if r.Elapsed <= 0 || r.Serial <= 0 {
		return 0
	}
	return float64(r.Serial) / float64(r.Elapsed)
}

func newRunCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the synthetic workload and print a per-worker report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, closer, err := logger.New(a.cfg.Logging)
			if err != nil {
				return err
			}
			defer closer.Close()

			out := cmd.OutOrStdout()
			printHeader(out, a.cfg)

			report, err := runWorkload(cmd.Context(), *a.cfg, log, out)
			if err != nil {
				return err
			}
			return renderReport(out, report)
		},
	}
}

// runWorkload builds a pool from cfg, submits cfg.Workload.Tasks tasks from
// cfg.Workload.Submitters goroutines and tears the pool down. Tasks already
// accepted when ctx is cancelled still run before it returns.
func runWorkload(ctx context.Context, cfg config.Config, log *slog.Logger, out io.Writer) (*Report, error) {
	registry := prometheus.NewRegistry()
	collector, err := metrics.NewCollector(cfg.Metrics.Namespace, registry)
	if err != nil {
		return nil, err
	}

	var bar *progressbar.ProgressBar
	if cfg.Workload.Progress && cfg.Workload.Tasks > 0 {
		bar = progressbar.NewOptions(cfg.Workload.Tasks,
			progressbar.OptionSetWriter(out),
			progressbar.OptionSetDescription("Running tasks"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionOnCompletion(func() { _, _ = fmt.Fprintln(out) }),
		)
	}

	var panics atomic.Int64
	opts := []pool.Option{
		pool.WithName(cfg.Pool.Name),
		pool.WithLogger(log),
		pool.WithLockOSThread(cfg.Pool.LockOSThread),
		pool.WithCPUAffinity(cfg.Pool.CPUAffinity),
		pool.WithObserver(collector),
		pool.WithPanicHandler(func(perr *pool.TaskPanicError) {
			panics.Add(1)
			log.Warn("task failed", "worker", perr.WorkerID, "panic", perr.Value)
		}),
	}
	if bar != nil {
		opts = append(opts, pool.WithObserver(progressObserver(bar)))
	}

	p, err := pool.New(cfg.Pool.Workers, opts...)
	if err != nil {
		return nil, err
	}

	log.Info("workload started",
		"pool", p.ID(),
		"workers", p.Size(),
		"tasks", cfg.Workload.Tasks,
		"submitters", cfg.Workload.Submitters,
	)

	start := time.Now()
	submitted, rejected, submitErr := submitAll(ctx, p, cfg.Workload)
	closeErr := p.Close()
	elapsed := time.Since(start)

	if bar != nil {
		_ = bar.Finish()
	}

	log.Info("workload finished", "pool", p.ID(), "elapsed", elapsed, "submitted", submitted, "panics", panics.Load())

	if closeErr != nil {
		return nil, fmt.Errorf("close pool: %w", closeErr)
	}
	if submitErr != nil {
		return nil, submitErr
	}

	return &Report{
		Config:    cfg,
		Submitted: submitted,
		Rejected:  rejected,
		Panics:    int(panics.Load()),
		Elapsed:   elapsed,
		Serial:    time.Duration(submitted) * cfg.Workload.TaskDuration,
		Stats:     p.Stats(),
		Registry:  registry,
	}, nil
}

// submitAll spreads the task indices round-robin over the submitter
// goroutines, paced by a shared limiter when a rate is set.
func submitAll(ctx context.Context, p *pool.Pool, w config.WorkloadConfig) (submitted, rejected int, err error) {
	var limiter *rate.Limiter
	if w.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(w.Rate), w.Burst)
	}

	var accepted, refused atomic.Int64
	g, gctx := errgroup.WithContext(ctx)

	for s := range w.Submitters {
		g.Go(func() error {
			for i := s; i < w.Tasks; i += w.Submitters {
				if limiter != nil {
					if err := limiter.Wait(gctx); err != nil {
						return err
					}
				} else if err := gctx.Err(); err != nil {
					return err
				}

				if err := p.Submit(syntheticTask(i, w)); err != nil {
					refused.Add(1)
					return fmt.Errorf("submit task %d: %w", i, err)
				}
				accepted.Add(1)
			}
			return nil
		})
	}

	err = g.Wait()
	return int(accepted.Load()), int(refused.Load()), err
}

// syntheticTask keeps a worker busy for w.TaskDuration and panics when index
// i falls on w.PanicEvery.
func syntheticTask(i int, w config.WorkloadConfig) pool.Task {
	return func() {
		if w.TaskDuration > 0 {
			time.Sleep(w.TaskDuration)
		}
		if w.PanicEvery > 0 && (i+1)%w.PanicEvery == 0 {
			panic(fmt.Sprintf("synthetic failure in task %d", i))
		}
	}
}

func progressObserver(bar *progressbar.ProgressBar) pool.Observer {
	return pool.ObserverFunc(func(e pool.Event) {
		switch e.Kind {
		case pool.EventTaskCompleted, pool.EventTaskPanicked:
			_ = bar.Add(1)
		}
	})
}
