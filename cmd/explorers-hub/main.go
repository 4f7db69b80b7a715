package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/terra-clan/explorers-hub/internal/api"
	"github.com/terra-clan/explorers-hub/internal/catalog"
	"github.com/terra-clan/explorers-hub/internal/config"
	"github.com/terra-clan/explorers-hub/internal/progress"
	"github.com/terra-clan/explorers-hub/internal/refresh"
	"github.com/terra-clan/explorers-hub/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Log.Level,
	}))
	slog.SetDefault(logger)

	slog.Info("starting explorers-hub",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"storage", cfg.Storage.Backend,
	)

	// Load the project catalog
	var cat *catalog.Catalog
	if cfg.Catalog.Dir != "" {
		cat, err = catalog.LoadFromDir(cfg.Catalog.Dir)
	} else {
		cat, err = catalog.LoadDefault()
	}
	if err != nil {
		slog.Error("failed to load catalog", "dir", cfg.Catalog.Dir, "error", err)
		os.Exit(1)
	}

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	store, err := storage.Open(initCtx, cfg)
	if err != nil {
		slog.Error("failed to open store", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}

	tracker, err := progress.NewTracker(initCtx, cat, store, cfg.Storage.Key)
	if err != nil {
		slog.Error("failed to load progress", "error", err)
		_ = store.Close()
		os.Exit(1)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Pick up writes made by other instances sharing the store
	if cfg.Refresh.Interval > 0 {
		refresh.NewRefresher(tracker, cfg.Refresh.Interval).Start(ctx)
	}

	// Setup HTTP server. No WriteTimeout: the progress stream is long-lived,
	// regular routes are bounded by the router's timeout middleware.
	server := api.NewServer(cfg.Server, cat, tracker, store)
	httpServer := &http.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:     server.Router(),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down gracefully...")

	// Cancel context to stop the refresher
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	if err := store.Close(); err != nil {
		slog.Error("store close error", "error", err)
	}

	slog.Info("explorers-hub stopped")
}
