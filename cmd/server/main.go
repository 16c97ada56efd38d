package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/datasweeper/internal/config"
	"github.com/JonMunkholm/datasweeper/internal/core"
	"github.com/JonMunkholm/datasweeper/internal/logging"
	"github.com/JonMunkholm/datasweeper/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	service := core.NewService(core.Options{
		PreviewRows:       cfg.Preview.Rows,
		ChartMaxRows:      cfg.Chart.MaxRows,
		SessionTTL:        cfg.Session.TTL,
		MaxSessions:       cfg.Session.MaxSessions,
		MaxFiles:          cfg.Upload.MaxFiles,
		MaxFileSize:       cfg.Upload.MaxFileSize,
		MaxConcurrentRuns: cfg.Run.MaxConcurrent,
		RunMaxWait:        cfg.Run.MaxWait,
		RunTimeout:        cfg.Run.Timeout,
	})

	slog.Info("formats registered", "accepted", core.AcceptedExtensions())

	server := web.NewServer(service, cfg)

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	service.StartJanitor(jobCtx, cfg.Session.CleanupInterval)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		// Stop background jobs
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		// Wait for in-flight pipeline runs (with timeout)
		status := service.LimiterStatus()
		if status.Active > 0 {
			slog.Info("waiting for pipeline runs to complete", "active", status.Active)
			if err := service.WaitForRuns(shutdownCtx); err != nil {
				slog.Warn("pipeline runs did not complete in time", "error", err)
			} else {
				slog.Info("all pipeline runs completed")
			}
		}
	}()

	if err := server.Start(); err != nil {
		slog.Error("server stopped", "error", err)
		cancelJobs()
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}
