package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ScottDudley1/demo-dashboard/internal/config"
	"github.com/ScottDudley1/demo-dashboard/internal/daterange"
	"github.com/ScottDudley1/demo-dashboard/internal/httpx"
	"github.com/ScottDudley1/demo-dashboard/internal/ingest"
	"github.com/ScottDudley1/demo-dashboard/internal/metrics"
	"github.com/ScottDudley1/demo-dashboard/internal/store"
	"github.com/ScottDudley1/demo-dashboard/internal/telemetry"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("config", slog.String("err", err.Error()))
		os.Exit(1)
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	tm := telemetry.New(reg)

	clock := daterange.SystemClock{Loc: cfg.Location}
	st := store.NewMemoryStore()
	loader := ingest.NewLoader(ingest.NewFetcher(ingest.NewHTTPClient(cfg.HTTPTimeout), cfg.FetchRetries), st, logger, tm, cfg, clock)
	svc := metrics.NewService(st, tm, clock, cfg.DefaultRangeDays)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// a dataset that fails to load stays unready, the others keep serving
	go func() {
		if err := loader.LoadAll(ctx); err != nil {
			logger.Warn("initial load incomplete", slog.String("err", err.Error()))
		}
	}()

	r := httpx.NewRouter(httpx.Deps{
		Log:     logger,
		Loader:  loader,
		Service: svc,
		Store:   st,
		Metrics: tm,
		Clock:   clock,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdown)
	}()

	logger.Info("starting server", slog.String("port", cfg.Port), slog.Any("datasets", loader.Datasets()))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
}
