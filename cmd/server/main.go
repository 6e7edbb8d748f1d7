package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AngelCh415/metaads-dashboard/internal/config"
	"github.com/AngelCh415/metaads-dashboard/internal/httpx"
	"github.com/AngelCh415/metaads-dashboard/internal/ingest"
	"github.com/AngelCh415/metaads-dashboard/internal/logging"
	"github.com/AngelCh415/metaads-dashboard/internal/metrics"
	"github.com/AngelCh415/metaads-dashboard/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, closer := logging.New(cfg.LogLevel, cfg.LogFile)
	defer closer.Close()
	slog.SetDefault(logger)

	cl := ingest.NewHTTPClient(cfg.HTTPTimeout)
	st := store.NewMemoryStore(cfg.MaxDatasets, ingest.SampleDataset())
	loader := ingest.NewLoader(cl, st, logger, cfg)
	mSvc := metrics.NewService(st)

	r := httpx.NewRouter(logger, cfg, st, loader, mSvc)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.HTTPTimeout * 4,
		WriteTimeout:      cfg.HTTPTimeout * 4,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", slog.Duration("timeout", cfg.ShutdownTimeout))
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", slog.String("err", err.Error()))
		closer.Close()
		os.Exit(1)
	}
}
