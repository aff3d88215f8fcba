package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/calebdsmith/battleboats/internal/config"
	"github.com/calebdsmith/battleboats/internal/httpapi"
	"github.com/calebdsmith/battleboats/internal/hub"
	"github.com/calebdsmith/battleboats/internal/metrics"
	"github.com/calebdsmith/battleboats/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the match relay server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		log, err := newLogger(cfg.Debug)
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		reg := prometheus.NewRegistry()
		m := metrics.New(reg)
		h := hub.NewHub(ctx, log, m)

		var results httpapi.ResultStore
		if cfg.DatabaseURL != "" {
			st, err := store.Open(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			results = st
			log.Info("match history enabled")
		}

		srv := &http.Server{
			Addr:    cfg.Addr,
			Handler: httpapi.SetupRoutes(h, results, m, reg, log),
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info("listening", zap.String("addr", cfg.Addr))
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		h.Inbox() <- hub.ShutdownHub{}
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return nil
	},
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
