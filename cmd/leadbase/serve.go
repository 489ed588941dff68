package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/leadbase/leadbase/internal/api"
	"github.com/leadbase/leadbase/internal/config"
	"github.com/leadbase/leadbase/internal/db"
	"github.com/leadbase/leadbase/internal/dispatch"
	"github.com/leadbase/leadbase/internal/metrics"
	"github.com/leadbase/leadbase/internal/pipeline"
	"github.com/leadbase/leadbase/internal/repository"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	metrics.SetGlobal(metrics.New())

	database, err := db.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		return err
	}

	campaigns := repository.NewCampaignRepository(database.DB)
	leads := repository.NewLeadRepository(database.DB)
	p := pipeline.New(database.DB, campaigns, leads, logger)

	client := dispatch.NewClient(cfg.Webhook.URL, cfg.Server.BaseURL, cfg.Webhook.Timeout)
	dispatcher := dispatch.NewDispatcher(campaigns, dispatch.NewSelector(leads), client, logger)

	server := api.NewServer(cfg, campaigns, leads, p, dispatcher, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Logging.Level)}

	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
