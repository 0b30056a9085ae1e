package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	qhttp "smartfarm/http"
	"smartfarm/ml"
	"smartfarm/monitoring"
	"smartfarm/recommend"
	"smartfarm/ui"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the recommendation form and JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd)
		},
	}
	cmd.Flags().IntP("port", "p", 0, "override http.port")
	return cmd
}

func (a *app) runServe(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		a.cfg.HTTP.Port = port
	}

	models, err := a.loadModels(ctx)
	if err != nil {
		return err
	}

	metrics := monitoring.NewMetricsCollector()
	rec := recommend.New(models,
		recommend.WithLogger(a.logger),
		recommend.WithObserver(metrics))

	handlers, err := qhttp.NewHandlers(rec, metrics, a.logger, ui.WithBranding(a.cfg.UI))
	if err != nil {
		return err
	}
	server, err := qhttp.NewServer(a.cfg.HTTP, handlers, a.logger)
	if err != nil {
		return err
	}

	if a.cfg.Models.Watch && a.cfg.Models.Registry == "" {
		watcher, err := ml.NewArtifactWatcher(a.logger, a.cfg.Artifacts())
		if err != nil {
			a.logger.Warn("artifact watcher disabled", zap.Error(err))
		} else {
			defer watcher.Close()
			go watcher.Run(ctx)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		return err
	}
	a.logger.Info("exiting")
	return nil
}
