package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/noahxzhu/tabwake/internal/alarm"
	"github.com/noahxzhu/tabwake/internal/config"
	"github.com/noahxzhu/tabwake/internal/engine"
	"github.com/noahxzhu/tabwake/internal/materialize"
	"github.com/noahxzhu/tabwake/internal/storage"
	"github.com/noahxzhu/tabwake/internal/web"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig("configs/config.yaml")
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	var store storage.Store
	switch cfg.Storage.Driver {
	case "sqlite":
		store, err = storage.NewSQLiteStore(cfg.Storage.FilePath)
		if err != nil {
			slog.Error("Failed to open storage", "error", err)
			os.Exit(1)
		}
	default:
		store = storage.NewJSONStore(cfg.Storage.FilePath)
	}
	if err := store.Load(); err != nil {
		slog.Error("Failed to load storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Alarm signals route into the engine; eng is assigned before the first
	// alarm can be created, so the callback never sees it nil.
	var eng *engine.Engine
	alarms := alarm.New(ctx, func(id string) {
		if err := eng.HandleAlarm(id); err != nil {
			slog.Error("Failed to handle alarm", "id", id, "error", err)
		}
	})

	mat := materialize.NewBrowser(store)
	eng = engine.New(store, alarms, mat)

	// Alarms do not survive a restart; rebuild them from the collection and
	// wake whatever came due while we were down.
	if err := eng.Reconcile(); err != nil {
		slog.Error("Startup reconciliation failed", "error", err)
	}

	if js, ok := store.(*storage.JSONStore); ok {
		if err := js.Watch(ctx, func() {
			if err := eng.Reconcile(); err != nil {
				slog.Error("Reconciliation after external change failed", "error", err)
			}
		}); err != nil {
			slog.Error("Failed to watch storage", "error", err)
		}
	}

	srv := web.NewServer(store, eng)
	httpServer := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: srv,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.Server.Port, "url", "http://localhost"+cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down...")
	cancel() // stop alarms and watchers

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("Server exited")
}
