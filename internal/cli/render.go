package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/utkarsh5026/threadpool/internal/config"
	"github.com/utkarsh5026/threadpool/metrics"
)

var (
	bold   = color.New(color.Bold)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	cyan   = color.New(color.FgCyan)
)

const rule = "═══════════════════════════════════════════════════════════"

func printSectionHeader(out io.Writer, title string, descriptions ...string) {
	_, _ = fmt.Fprintln(out)
	_, _ = bold.Fprintln(out, rule)
	_, _ = bold.Fprintln(out, title)
	_, _ = bold.Fprintln(out, rule)
	for _, desc := range descriptions {
		_, _ = fmt.Fprintln(out, desc)
	}
	_, _ = fmt.Fprintln(out)
}

func printHeader(out io.Writer, cfg *config.Config) {
	placement := "goroutine"
	switch {
	case cfg.Pool.CPUAffinity:
		placement = "pinned OS thread"
	case cfg.Pool.LockOSThread:
		placement = "locked OS thread"
	}

	printSectionHeader(out, "THREAD POOL WORKLOAD",
		fmt.Sprintf("  • Workers:     %d (%s each)", cfg.Pool.Workers, placement),
		fmt.Sprintf("  • Tasks:       %d x %v", cfg.Workload.Tasks, cfg.Workload.TaskDuration),
		fmt.Sprintf("  • Submitters:  %d", cfg.Workload.Submitters),
		fmt.Sprintf("  • Rate limit:  %s", formatRate(cfg.Workload.Rate)),
	)
}

func formatRate(r float64) string {
	if r <= 0 {
		return "unlimited"
	}
	return fmt.Sprintf("%.0f tasks/sec", r)
}

// renderReport prints the per-worker table, the run summary and, when
// enabled, the metrics dump.
func renderReport(out io.Writer, r *Report) error {
	printSectionHeader(out, "PER-WORKER BREAKDOWN",
		"How the shared queue spread the tasks across the workers")

	table := tablewriter.NewWriter(out)
	table.Header("Worker", "State", "Executed", "Panicked", "Share")

	var total uint64
	for _, w := range r.Stats.Workers {
		total += w.Executed
	}
	for _, w := range r.Stats.Workers {
		_ = table.Append(
			fmt.Sprintf("%d", w.ID),
			w.State.String(),
			fmt.Sprintf("%d", w.Executed),
			fmt.Sprintf("%d", w.Panicked),
			formatShare(w.Executed, total),
		)
	}
	if err := table.Render(); err != nil {
		_, _ = red.Fprintln(out, "Error in rendering worker table")
		return fmt.Errorf("render worker table: %w", err)
	}

	_, _ = fmt.Fprintln(out)
	_, _ = cyan.Fprintf(out, "Pool %s\n", r.Stats.PoolID)
	_, _ = fmt.Fprintf(out, "Elapsed:  %v\n", r.Elapsed.Round(time.Millisecond))
	if s := r.Speedup(); s > 0 {
		_, _ = fmt.Fprintf(out, "Serial:   %v (%.2fx speedup)\n", r.Serial.Round(time.Millisecond), s)
	}

	if r.Panics > 0 {
		_, _ = yellow.Fprintf(out, "⚠ %d of %d tasks panicked; every worker kept serving\n", r.Panics, r.Submitted)
	}
	_, _ = green.Fprintf(out, "✅ Executed %d/%d tasks on %d workers\n", total, r.Submitted, r.Stats.Size)

	if r.Config.Metrics.Enabled {
		printSectionHeader(out, "METRICS")
		if err := metrics.WriteText(out, r.Registry); err != nil {
			return err
		}
	}
	return nil
}

func formatShare(n, total uint64) string {
	if total == 0 {
		return "-"
	}
	pct := float64(n) / float64(total) * 100
	return fmt.Sprintf("%5.1f%% %s", pct, strings.Repeat("▇", int(pct/5)))
}
