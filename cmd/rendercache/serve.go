package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/IvanBrykalov/rendercache/cache"
	"github.com/IvanBrykalov/rendercache/config"
	pmet "github.com/IvanBrykalov/rendercache/metrics/prom"
)

func newServeCmd(rf *rootFlags) *cobra.Command {
	var (
		wl   workload
		addr string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scrolling workload and expose /stats, /metrics and pprof",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := rf.load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Server.Addr
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector())
			opt := config.SharedOptions[string, row, string](cfg)
			opt.Metrics = pmet.New(reg, "rendercache", "shared", nil)
			opt.Logger = log
			shared := newShared(opt)
			defer func() { _ = shared.Close() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var t tally
			go func() {
				if err := run(ctx, shared, wl, &t, log); err != nil {
					log.Error("workload stopped", "error", err)
				}
			}()

			srv := &http.Server{
				Addr:              addr,
				Handler:           newRouter(shared.Stats, &t, reg),
				ReadHeaderTimeout: 5 * time.Second,
			}
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			log.Info("serving", "addr", addr, "lists", wl.lists)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&addr, "addr", ":8080", "listen address (default from config)")
	f.IntVar(&wl.lists, "lists", 4, "number of concurrent lists")
	f.IntVar(&wl.datasets, "datasets", 2, "number of distinct datasets shared by the lists")
	f.IntVar(&wl.items, "items", 1_000, "rows per dataset")
	f.IntVar(&wl.window, "window", 20, "visible rows per list")
	f.IntVar(&wl.flipPct, "flip", 5, "percent chance per step to reverse direction")
	f.Int64Var(&wl.seed, "seed", time.Now().UnixNano(), "random seed")
	return cmd
}

// newRouter mounts the stats, Prometheus and pprof endpoints.
func newRouter(stats func() cache.Stats, t *tally, reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Get("/stats", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(summarize(t, stats()))
	})

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	r.Mount("/debug", middleware.Profiler())
	return r
}
