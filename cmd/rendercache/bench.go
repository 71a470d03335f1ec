package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/IvanBrykalov/rendercache/config"
	"github.com/IvanBrykalov/rendercache/virtual"
)

func newBenchCmd(rf *rootFlags) *cobra.Command {
	var (
		wl       workload
		duration time.Duration
		maxSize  int
		ttl      time.Duration
		private  bool
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Scroll synthetic lists over the cache and report hit rate",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := rf.load()
			if err != nil {
				return err
			}
			opt := config.SharedOptions[string, row, string](cfg)
			if private {
				opt = config.PrivateOptions[string, row, string](cfg)
			}
			if cmd.Flags().Changed("max-size") {
				opt.MaxSize = maxSize
			}
			if cmd.Flags().Changed("ttl") {
				opt.TTL = ttl
			}
			opt.Logger = log

			start := time.Now()
			sum, err := benchmark(cmd.Context(), opt, private, wl, duration, log)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			out := cmd.OutOrStdout()
			m := sum.Stats.Metrics
			fmt.Fprintf(out, "lists=%d datasets=%d items=%d window=%d max_size=%d ttl=%v dur=%v seed=%d\n",
				wl.lists, wl.datasets, wl.items, wl.window, opt.MaxSize, opt.TTL, elapsed.Round(time.Millisecond), wl.seed)
			fmt.Fprintf(out, "steps=%d (%.0f steps/s)  renders=%d  warmed=%d\n",
				sum.Steps, float64(sum.Steps)/elapsed.Seconds(), sum.Renders, sum.Warmed)
			fmt.Fprintf(out, "hits=%d  misses=%d  hit-rate=%.2f%%  evictions=%d\n",
				m.Hits, m.Misses, m.HitRate, m.Evictions)
			fmt.Fprintf(out, "size=%d/%d (%.1f%%)  instances=%d\n",
				sum.Stats.Size, sum.Stats.MaxSize, sum.Stats.UtilizationRate, m.InstanceCount)
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&wl.lists, "lists", 8, "number of concurrent lists")
	f.IntVar(&wl.datasets, "datasets", 2, "number of distinct datasets shared by the lists")
	f.IntVar(&wl.items, "items", 1_000, "rows per dataset")
	f.IntVar(&wl.window, "window", 20, "visible rows per list")
	f.IntVar(&wl.flipPct, "flip", 5, "percent chance per step to reverse direction")
	f.Int64Var(&wl.seed, "seed", time.Now().UnixNano(), "random seed")
	f.DurationVar(&duration, "duration", 5*time.Second, "benchmark duration")
	f.BoolVar(&private, "private", false, "give each list its own private cache instead of sharing one")
	f.IntVar(&maxSize, "max-size", 0, "cache capacity (default from config)")
	f.DurationVar(&ttl, "ttl", 0, "entry TTL (default from config)")
	return cmd
}

// benchmark runs the workload for d and summarizes it. Shared-mode stats
// are taken while the lists are still attached, since Detach releases
// their entries.
func benchmark(ctx context.Context, opt virtual.Options[string, row, string], private bool, wl workload, d time.Duration, log *slog.Logger) (summary, error) {
	var t tally
	if private {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		st, err := runPrivate(ctx, opt, wl, &t, log)
		return summarize(&t, st), err
	}

	shared := newShared(opt)
	defer func() { _ = shared.Close() }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- run(ctx, shared, wl, &t, log) }()

	select {
	case <-time.After(d):
	case err := <-done:
		return summarize(&t, shared.Stats()), err
	}
	sum := summarize(&t, shared.Stats())
	cancel()
	return sum, <-done
}
